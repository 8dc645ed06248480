package len

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-lang/ember/internal/compile"
	"github.com/ember-lang/ember/internal/vm"
)

func TestLenOfString(t *testing.T) {
	machine := vm.New()
	val, err := run(machine, []vm.Value{machine.StringValue("hello")})
	require.NoError(t, err)
	assert.Equal(t, float64(5), val.AsNumber())
}

func TestLenOfArrayAndTableViaScript(t *testing.T) {
	machine := vm.New()
	machine.RegisterNative("len", 1, run)

	fn, err := compile.Compile(machine, `
	fun __test() {
		var xs = [1, 2, 3];
		var t = {a = 1, b = 2};
		return len(xs) + len(t);
	}
	var __result = __test();
	`, "test")
	require.NoError(t, err)

	_, err = machine.Interpret(fn)
	require.NoError(t, err)
	val, ok := machine.Global("__result")
	require.True(t, ok)
	assert.Equal(t, float64(5), val.AsNumber())
}

func TestLenRejectsUnsupportedType(t *testing.T) {
	machine := vm.New()
	_, err := run(machine, []vm.Value{vm.Number(1)})
	assert.Error(t, err)
}
