// Package len registers the "len" built-in, valid on strings, arrays
// and tables.
package len

import (
	"fmt"

	"github.com/ember-lang/ember/internal/builtin"
	"github.com/ember-lang/ember/internal/vm"
)

func init() {
	builtin.Register(builtin.Spec{Name: "len", Arity: 1, Fn: run})
}

func run(machine *vm.VM, args []vm.Value) (vm.Value, error) {
	v := args[0]
	switch {
	case v.IsString():
		return vm.Number(float64(v.AsString().Len())), nil
	case v.IsArray():
		return vm.Number(float64(v.AsArray().Len())), nil
	case v.IsTable():
		return vm.Number(float64(v.AsTable().Len())), nil
	default:
		return vm.Nil(), fmt.Errorf("len: unsupported operand of type %s", vm.TypeName(v))
	}
}
