package print

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-lang/ember/internal/vm"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	original := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = original }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintNonStringValuePrintsNaturalForm(t *testing.T) {
	machine := vm.New()
	out := captureStdout(t, func() {
		_, err := run(machine, []vm.Value{vm.Number(3)})
		require.NoError(t, err)
	})
	assert.Equal(t, "3\n", out)
}

func TestPrintSingleStringPrintsVerbatim(t *testing.T) {
	machine := vm.New()
	out := captureStdout(t, func() {
		_, err := run(machine, []vm.Value{machine.StringValue("hello")})
		require.NoError(t, err)
	})
	assert.Equal(t, "hello\n", out)
}

func TestPrintSubstitutesTrailingArguments(t *testing.T) {
	machine := vm.New()
	out := captureStdout(t, func() {
		_, err := run(machine, []vm.Value{
			machine.StringValue("%s is %s"),
			machine.StringValue("ember"),
			machine.StringValue("fast"),
		})
		require.NoError(t, err)
	})
	assert.Equal(t, "ember is fast\n", out)
}

func TestPrintWithNoArgumentsIsANoOp(t *testing.T) {
	machine := vm.New()
	out := captureStdout(t, func() {
		val, err := run(machine, nil)
		require.NoError(t, err)
		assert.True(t, val.IsNil())
	})
	assert.Equal(t, "", out)
}
