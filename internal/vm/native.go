package vm

// NativeFn is a host-implemented callable invoked by OP_CALL exactly
// like a closure: it receives its arguments and returns a result or an
// error, which the VM surfaces as a runtime error.
type NativeFn func(vm *VM, args []Value) (Value, error)

// ObjNativeFun wraps a NativeFn as an ordinary callable Value so
// built-ins live in globals and dispatch through OP_CALL rather than
// through dedicated opcodes.
type ObjNativeFun struct {
	Obj
	name  string
	arity int // -1 means variadic
	fn    NativeFn
}

func newNativeFun(vm *VM, name string, arity int, fn NativeFn) *ObjNativeFun {
	n := &ObjNativeFun{name: name, arity: arity, fn: fn}
	initObj(&n.Obj, ObjTypeNativeFun, vm)
	return n
}

func (n *ObjNativeFun) destroy(vm *VM) {}
