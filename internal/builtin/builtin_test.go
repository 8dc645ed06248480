package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-lang/ember/internal/compile"
	"github.com/ember-lang/ember/internal/vm"
)

func TestRegisterAndInstallAllBindsGlobals(t *testing.T) {
	saved := specs
	specs = nil
	defer func() { specs = saved }()

	Register(Spec{Name: "answer", Arity: 0, Fn: func(machine *vm.VM, args []vm.Value) (vm.Value, error) {
		return vm.Number(42), nil
	}})

	machine := vm.New()
	InstallAll(machine)

	fn, err := compile.Compile(machine, `fun __test() { return answer(); } var __result = __test();`, "test")
	require.NoError(t, err)
	_, err = machine.Interpret(fn)
	require.NoError(t, err)
	val, ok := machine.Global("__result")
	require.True(t, ok)
	assert.Equal(t, float64(42), val.AsNumber())
}
