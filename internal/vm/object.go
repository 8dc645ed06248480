package vm

// ObjType tags the concrete kind of a heap object.
type ObjType uint8

const (
	ObjTypeString ObjType = iota
	ObjTypeArray
	ObjTypeTable
	ObjTypeFunction
	ObjTypeClosure
	ObjTypeUpvalue
	ObjTypeNativeFun
	ObjTypeClass
	ObjTypeInstance
	ObjTypeBoundMethod
)

func (t ObjType) String() string {
	switch t {
	case ObjTypeString:
		return "string"
	case ObjTypeArray:
		return "array"
	case ObjTypeTable:
		return "table"
	case ObjTypeFunction:
		return "function"
	case ObjTypeClosure:
		return "closure"
	case ObjTypeUpvalue:
		return "upvalue"
	case ObjTypeNativeFun:
		return "native function"
	case ObjTypeClass:
		return "class"
	case ObjTypeInstance:
		return "instance"
	case ObjTypeBoundMethod:
		return "bound method"
	default:
		return "object"
	}
}

// Obj is the common header embedded in every heap-allocated object.
// refs is a logical reference count layered on top of Go's own garbage
// collector: it lets destroy() run deterministically (decref'ing owned
// children) the moment the last owner lets go, the way
// the reference implementation frees objects, without the VM itself
// managing raw memory.
type Obj struct {
	kind  ObjType
	id    uint32
	refs  int
	alive bool
}

// heapObject is implemented by every concrete Obj* struct.
type heapObject interface {
	header() *Obj
	destroy(vm *VM)
}

func initObj(o *Obj, kind ObjType, vm *VM) {
	o.kind = kind
	o.refs = 1
	o.alive = true
	o.id = vm.nextUID()
}

func (o *Obj) header() *Obj { return o }

// nextUID hands out a debug-visible unique id using the reference
// implementation's xorshift generator, seeded from a fixed constant in
// New so runs are reproducible.
func (vm *VM) nextUID() uint32 {
	vm.uidState ^= vm.uidState << 13
	vm.uidState ^= vm.uidState >> 17
	vm.uidState ^= vm.uidState << 5
	if vm.uidState == 0 {
		vm.uidState = 0x9e3779b9
	}
	return vm.uidState
}

func incref(v Value) {
	if v.Kind == ValObj && v.obj != nil {
		v.obj.header().refs++
	}
}

func decref(vm *VM, v Value) {
	if v.Kind != ValObj || v.obj == nil {
		return
	}
	h := v.obj.header()
	h.refs--
	if h.refs <= 0 && h.alive {
		h.alive = false
		v.obj.destroy(vm)
	}
}

func retainAll(vs []Value) {
	for _, v := range vs {
		incref(v)
	}
}

func releaseAll(vm *VM, vs []Value) {
	for _, v := range vs {
		decref(vm, v)
	}
}
