package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-lang/ember/internal/vm"
)

func TestCompileSimpleExpressionStatement(t *testing.T) {
	machine := vm.New()
	fn, err := Compile(machine, `1 + 2;`, "test")
	require.NoError(t, err)
	assert.Equal(t, 0, fn.Arity)
	assert.NotEmpty(t, fn.Chunk.Code)
}

func TestCompileFunctionDeclarationSetsArityAndName(t *testing.T) {
	machine := vm.New()
	fn, err := Compile(machine, `fun add(a, b) { return a + b; }`, "test")
	require.NoError(t, err)

	var found *vm.ObjFunction
	for _, c := range fn.Chunk.Constants {
		if c.IsFunction() && c.AsFunction().Name != nil && c.AsFunction().Name.String() == "add" {
			found = c.AsFunction()
		}
	}
	require.NotNil(t, found, "expected a compiled constant for function add")
	assert.Equal(t, 2, found.Arity)
}

func TestCompileReportsSyntaxError(t *testing.T) {
	machine := vm.New()
	_, err := Compile(machine, `var x = ;`, "test")
	require.Error(t, err)
}

func TestCompileReportsMultipleErrorsAfterSynchronizing(t *testing.T) {
	machine := vm.New()
	_, err := Compile(machine, `
	var x = ;
	var y = ;
	`, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[line 2]")
	assert.Contains(t, err.Error(), "[line 3]")
}

func TestTopLevelReturnIsAnError(t *testing.T) {
	machine := vm.New()
	_, err := Compile(machine, `return 1;`, "test")
	require.Error(t, err)
}

func TestReturnValueFromInitializerIsAnError(t *testing.T) {
	machine := vm.New()
	_, err := Compile(machine, `
	class Foo {
		init() {
			return 1;
		}
	}
	`, "test")
	require.Error(t, err)
}

func TestThisOutsideClassIsAnError(t *testing.T) {
	machine := vm.New()
	_, err := Compile(machine, `fun f() { return this; }`, "test")
	require.Error(t, err)
}

func TestSuperOutsideClassIsAnError(t *testing.T) {
	machine := vm.New()
	_, err := Compile(machine, `fun f() { return super.foo(); }`, "test")
	require.Error(t, err)
}

func TestSuperWithoutSuperclassIsAnError(t *testing.T) {
	machine := vm.New()
	_, err := Compile(machine, `
	class Foo {
		bar() { return super.bar(); }
	}
	`, "test")
	require.Error(t, err)
}

func TestReadingLocalInItsOwnInitializerIsAnError(t *testing.T) {
	machine := vm.New()
	_, err := Compile(machine, `
	{
		var a = a;
	}
	`, "test")
	require.Error(t, err)
}

func TestDuplicateLocalInSameScopeIsAnError(t *testing.T) {
	machine := vm.New()
	_, err := Compile(machine, `
	{
		var a = 1;
		var a = 2;
	}
	`, "test")
	require.Error(t, err)
}

func TestClosureCompilesNestedFunctionAsUpvalue(t *testing.T) {
	machine := vm.New()
	fn, err := Compile(machine, `
	fun outer() {
		var x = 1;
		fun inner() {
			return x;
		}
		return inner;
	}
	`, "test")
	require.NoError(t, err)

	var outerFn *vm.ObjFunction
	for _, c := range fn.Chunk.Constants {
		if c.IsFunction() {
			outerFn = c.AsFunction()
		}
	}
	require.NotNil(t, outerFn)
	assert.Equal(t, 0, outerFn.UpvalueCount, "outer itself captures nothing")

	var innerFn *vm.ObjFunction
	for _, c := range outerFn.Chunk.Constants {
		if c.IsFunction() {
			innerFn = c.AsFunction()
		}
	}
	require.NotNil(t, innerFn)
	assert.Equal(t, 1, innerFn.UpvalueCount)
}
