// Package clock registers the "clock" built-in.
package clock

import (
	"time"

	"github.com/ember-lang/ember/internal/builtin"
	"github.com/ember-lang/ember/internal/vm"
)

func init() {
	builtin.Register(builtin.Spec{Name: "clock", Arity: 0, Fn: run})
}

func run(machine *vm.VM, args []vm.Value) (vm.Value, error) {
	return vm.Number(float64(time.Now().UnixNano()) / float64(time.Second)), nil
}
