// Package typeof registers the "typeOf" built-in.
package typeof

import (
	"github.com/ember-lang/ember/internal/builtin"
	"github.com/ember-lang/ember/internal/vm"
)

func init() {
	builtin.Register(builtin.Spec{Name: "typeOf", Arity: 1, Fn: run})
}

func run(machine *vm.VM, args []vm.Value) (vm.Value, error) {
	return machine.StringValue(vm.TypeName(args[0])), nil
}
