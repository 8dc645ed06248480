package vm

// RegisterNative installs a host function as an ordinary global,
// callable from script code exactly like any user-defined function:
// built-ins are plain NativeFun values dispatched through OP_CALL,
// never dedicated opcodes.
func (vm *VM) RegisterNative(name string, arity int, fn NativeFn) {
	native := newNativeFun(vm, name, arity, fn)
	vm.DefineGlobal(name, objValue(native))
}
