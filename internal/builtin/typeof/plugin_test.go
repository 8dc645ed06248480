package typeof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-lang/ember/internal/vm"
)

func TestTypeOfReportsRuntimeType(t *testing.T) {
	machine := vm.New()

	testCases := []struct {
		desc string
		arg  vm.Value
		want string
	}{
		{"nil", vm.Nil(), "nil"},
		{"bool", vm.Bool(true), "bool"},
		{"number", vm.Number(1), "number"},
		{"string", machine.StringValue("x"), "string"},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			val, err := run(machine, []vm.Value{tc.arg})
			require.NoError(t, err)
			assert.Equal(t, tc.want, val.AsString().String())
		})
	}
}
