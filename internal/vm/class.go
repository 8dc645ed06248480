package vm

// ObjClass is a single-inheritance class: a name plus a method table.
// Inheriting a superclass copies its method table wholesale
// (OP_INHERIT / addAll) rather than walking a chain at lookup time.
type ObjClass struct {
	Obj
	name    *ObjString
	methods *ObjTable
}

func newClass(vm *VM, name *ObjString) *ObjClass {
	c := &ObjClass{name: name, methods: newTable(vm)}
	initObj(&c.Obj, ObjTypeClass, vm)
	incref(objValue(name))
	incref(objValue(c.methods))
	return c
}

func (c *ObjClass) destroy(vm *VM) {
	decref(vm, objValue(c.name))
	decref(vm, objValue(c.methods))
}

// ObjInstance is a live object of some class: an open field table plus
// a back-pointer to its class for method lookup.
type ObjInstance struct {
	Obj
	class  *ObjClass
	fields *ObjTable
}

func newInstance(vm *VM, class *ObjClass) *ObjInstance {
	i := &ObjInstance{class: class, fields: newTable(vm)}
	initObj(&i.Obj, ObjTypeInstance, vm)
	incref(objValue(class))
	incref(objValue(i.fields))
	return i
}

func (i *ObjInstance) destroy(vm *VM) {
	decref(vm, objValue(i.class))
	decref(vm, objValue(i.fields))
}

// ObjBoundMethod pairs a receiver instance with one of its class's
// closures, produced by OP_GET_PROPERTY when the property names a
// method rather than a field. Calling it implicitly binds `this`.
type ObjBoundMethod struct {
	Obj
	receiver Value
	method   *ObjClosure
}

func newBoundMethod(vm *VM, receiver Value, method *ObjClosure) *ObjBoundMethod {
	b := &ObjBoundMethod{receiver: receiver, method: method}
	initObj(&b.Obj, ObjTypeBoundMethod, vm)
	incref(receiver)
	incref(objValue(method))
	return b
}

func (b *ObjBoundMethod) destroy(vm *VM) {
	decref(vm, b.receiver)
	decref(vm, objValue(b.method))
}
