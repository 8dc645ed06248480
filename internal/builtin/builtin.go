// Package builtin is a small plugin registry for host functions: each
// concern lives in its own subpackage that registers a Spec from an
// init() function, the way the teacher's per-builtin packages register
// themselves against a dedicated opcode. Here registration installs an
// ordinary global NativeFun instead, since built-ins dispatch through
// OP_CALL/OP_INVOKE like any user-defined function.
package builtin

import "github.com/ember-lang/ember/internal/vm"

// Spec describes one host function available to script code.
type Spec struct {
	Name  string
	Arity int // -1 for variadic
	Fn    vm.NativeFn
}

var specs []Spec

// Register adds a Spec to the set installed by InstallAll. Intended to
// be called from an init() function in a builtin subpackage.
func Register(s Spec) {
	specs = append(specs, s)
}

// InstallAll binds every registered Spec into machine's globals.
// Importing a builtin subpackage for its init() side effect, then
// calling InstallAll once a VM exists, is what actually makes a
// built-in callable from script code.
func InstallAll(machine *vm.VM) {
	for _, s := range specs {
		machine.RegisterNative(s.Name, s.Arity, s.Fn)
	}
}
