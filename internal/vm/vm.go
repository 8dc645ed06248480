package vm

import (
	"fmt"

	"fortio.org/safecast"
)

// Default resource limits. A host can override both via SetLimits
// before calling Interpret, e.g. from values read out of ember.toml.
const (
	DefaultMaxStackSlots = 16384
	DefaultMaxCallFrames = 64
)

type callFrame struct {
	closure   *ObjClosure
	ip        int
	slotsBase int // index into vm.stack where this frame's window starts
}

// VM is the stack-based bytecode interpreter: one value stack shared by
// every call frame, a global environment, and a string interner shared
// with the compiler so identical literals collapse to one ObjString.
type VM struct {
	stack        []Value
	frames       []callFrame
	globals      *ObjTable
	strings      map[string]*ObjString
	openUpvalues []*ObjUpvalue // sorted descending by slot index
	initString   *ObjString
	uidState     uint32
	traceHook    TraceHook
	instLimit    int
	instCount    int

	maxStackSlots int
	maxCallFrames int
}

// New constructs a VM with empty globals and a fresh string interner.
func New() *VM {
	vm := &VM{
		stack:         make([]Value, 0, 256),
		frames:        make([]callFrame, 0, 8),
		strings:       make(map[string]*ObjString),
		uidState:      0x2545F491,
		maxStackSlots: DefaultMaxStackSlots,
		maxCallFrames: DefaultMaxCallFrames,
	}
	vm.globals = newTable(vm)
	vm.initString = vm.internString("init")
	return vm
}

// SetLimits overrides the stack-depth and call-frame ceilings, e.g.
// from a loaded ember.toml. A non-positive value leaves that limit
// unchanged.
func (vm *VM) SetLimits(maxStackSlots, maxCallFrames int) {
	if maxStackSlots > 0 {
		vm.maxStackSlots = maxStackSlots
	}
	if maxCallFrames > 0 {
		vm.maxCallFrames = maxCallFrames
	}
}

// SetTraceHook registers a callback for instruction-level tracing.
func (vm *VM) SetTraceHook(h TraceHook) { vm.traceHook = h }

// SetInstructionLimit caps instructions executed per Interpret call
// (0 = unlimited).
func (vm *VM) SetInstructionLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	vm.instLimit = limit
}

// DefineGlobal binds a value under name in the global environment,
// the same table OP_DEFINE_GLOBAL/OP_GET_GLOBAL use. It is how
// built-ins are installed before a script runs.
func (vm *VM) DefineGlobal(name string, v Value) {
	vm.globals.Set(vm, vm.StringValue(name), v)
}

// Global reads back a value bound in the global environment, e.g. for
// a host to collect a script's result after Interpret returns.
func (vm *VM) Global(name string) (Value, bool) {
	return vm.globals.Get(vm.StringValue(name))
}

// Interpret runs a freshly compiled top-level function to completion.
func (vm *VM) Interpret(fn *ObjFunction) (Value, error) {
	vm.instCount = 0
	closure := newClosure(vm, fn)
	vm.push(objValue(closure))
	if err := vm.callValue(objValue(closure), 0); err != nil {
		return Nil(), err
	}
	return vm.run()
}

func (vm *VM) push(v Value) {
	grew := len(vm.stack) == cap(vm.stack)
	vm.stack = append(vm.stack, v)
	if grew {
		// append moved the stack to a new backing array; open upvalues
		// must follow their slots there.
		for _, uv := range vm.openUpvalues {
			uv.location = &vm.stack[uv.slot]
		}
	}
}

func (vm *VM) pop() Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) currentFrame() *callFrame {
	return &vm.frames[len(vm.frames)-1]
}

func (vm *VM) run() (Value, error) {
	for {
		fr := vm.currentFrame()
		code := fr.closure.fn.Chunk.Code
		if fr.ip >= len(code) {
			return Nil(), vm.runtimeErrorf("frame ran off the end of its chunk")
		}
		op := OpCode(code[fr.ip])
		fr.ip++
		vm.instCount++
		if vm.instLimit > 0 && vm.instCount > vm.instLimit {
			return Nil(), vm.runtimeErrorf("instruction limit exceeded")
		}
		vm.trace(op)

		switch op {
		case OpConstant:
			idx := vm.readByte(fr)
			v := fr.closure.fn.Chunk.Constants[idx]
			incref(v)
			vm.push(v)
		case OpNil:
			vm.push(Nil())
		case OpTrue:
			vm.push(Bool(true))
		case OpFalse:
			vm.push(Bool(false))
		case OpPop:
			decref(vm, vm.pop())

		case OpGetLocal:
			slot := vm.readByte(fr)
			v := vm.stack[fr.slotsBase+int(slot)]
			incref(v)
			vm.push(v)
		case OpSetLocal:
			slot := vm.readByte(fr)
			v := vm.peek(0)
			incref(v)
			decref(vm, vm.stack[fr.slotsBase+int(slot)])
			vm.stack[fr.slotsBase+int(slot)] = v

		case OpGetGlobal:
			idx := vm.readByte(fr)
			name := fr.closure.fn.Chunk.Constants[idx]
			val, ok := vm.globals.Get(name)
			if !ok {
				return Nil(), vm.runtimeErrorf("undefined variable '%s'", name.AsString().chars)
			}
			incref(val)
			vm.push(val)
		case OpDefineGlobal:
			idx := vm.readByte(fr)
			name := fr.closure.fn.Chunk.Constants[idx]
			val := vm.pop()
			vm.globals.Set(vm, name, val)
			decref(vm, val)
		case OpSetGlobal:
			idx := vm.readByte(fr)
			name := fr.closure.fn.Chunk.Constants[idx]
			if _, existed := vm.globals.Get(name); !existed {
				return Nil(), vm.runtimeErrorf("undefined variable '%s'", name.AsString().chars)
			}
			vm.globals.Set(vm, name, vm.peek(0))

		case OpGetUpvalue:
			slot := vm.readByte(fr)
			v := fr.closure.upvalues[slot].get()
			incref(v)
			vm.push(v)
		case OpSetUpvalue:
			slot := vm.readByte(fr)
			v := vm.peek(0)
			incref(v)
			decref(vm, fr.closure.upvalues[slot].get())
			fr.closure.upvalues[slot].set(v)

		case OpGetProperty:
			idx := vm.readByte(fr)
			name := fr.closure.fn.Chunk.Constants[idx]
			receiver := vm.peek(0)
			if !receiver.IsInstance() {
				return Nil(), vm.runtimeErrorf("only instances have properties")
			}
			inst := receiver.AsInstance()
			if val, ok := inst.fields.Get(name); ok {
				incref(val)
				vm.pop()
				decref(vm, receiver)
				vm.push(val)
				break
			}
			bound, err := vm.bindMethod(inst.class, name, receiver)
			if err != nil {
				return Nil(), err
			}
			vm.pop()
			decref(vm, receiver)
			vm.push(bound)
		case OpSetProperty:
			idx := vm.readByte(fr)
			name := fr.closure.fn.Chunk.Constants[idx]
			val := vm.peek(0)
			receiver := vm.peek(1)
			if !receiver.IsInstance() {
				return Nil(), vm.runtimeErrorf("only instances have fields")
			}
			receiver.AsInstance().fields.Set(vm, name, val)
			vm.pop()
			vm.pop()
			decref(vm, receiver)
			vm.push(val)
		case OpGetSuper:
			idx := vm.readByte(fr)
			name := fr.closure.fn.Chunk.Constants[idx]
			superclassVal := vm.pop()
			receiver := vm.pop()
			bound, err := vm.bindMethod(superclassVal.AsClass(), name, receiver)
			if err != nil {
				return Nil(), err
			}
			decref(vm, superclassVal)
			decref(vm, receiver)
			vm.push(bound)

		case OpEqual:
			b, a := vm.pop(), vm.pop()
			res := Bool(Equals(a, b))
			decref(vm, a)
			decref(vm, b)
			vm.push(res)
		case OpNotEqual:
			b, a := vm.pop(), vm.pop()
			res := Bool(!Equals(a, b))
			decref(vm, a)
			decref(vm, b)
			vm.push(res)
		case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
			b, a := vm.pop(), vm.pop()
			res, err := compareNumbers(op, a, b)
			if err != nil {
				return Nil(), vm.runtimeErrorf("%s", err.Error())
			}
			decref(vm, a)
			decref(vm, b)
			vm.push(res)
		case OpAdd:
			b, a := vm.pop(), vm.pop()
			res, err := vm.add(a, b)
			if err != nil {
				return Nil(), vm.runtimeErrorf("%s", err.Error())
			}
			decref(vm, a)
			decref(vm, b)
			vm.push(res)
		case OpSubtract, OpMultiply, OpDivide:
			b, a := vm.pop(), vm.pop()
			if !a.IsNumber() || !b.IsNumber() {
				return Nil(), vm.runtimeErrorf("operands must be numbers")
			}
			res := arith(op, a.AsNumber(), b.AsNumber())
			decref(vm, a)
			decref(vm, b)
			vm.push(res)
		case OpNot:
			v := vm.pop()
			res := Bool(IsFalsey(v))
			decref(vm, v)
			vm.push(res)
		case OpNegate:
			v := vm.pop()
			if !v.IsNumber() {
				return Nil(), vm.runtimeErrorf("operand must be a number")
			}
			res := Number(-v.AsNumber())
			decref(vm, v)
			vm.push(res)

		case OpJump:
			offset := vm.readShort(fr)
			fr.ip += int(offset)
		case OpJumpIfFalse:
			offset := vm.readShort(fr)
			if IsFalsey(vm.peek(0)) {
				fr.ip += int(offset)
			}
		case OpLoop:
			offset := vm.readShort(fr)
			fr.ip -= int(offset)

		case OpCall:
			argCount := int(vm.readByte(fr))
			callee := vm.peek(argCount)
			if err := vm.callValue(callee, argCount); err != nil {
				return Nil(), err
			}
		case OpInvoke:
			idx := vm.readByte(fr)
			name := fr.closure.fn.Chunk.Constants[idx]
			argCount := int(vm.readByte(fr))
			if err := vm.invoke(name, argCount); err != nil {
				return Nil(), err
			}
		case OpSuperInvoke:
			idx := vm.readByte(fr)
			name := fr.closure.fn.Chunk.Constants[idx]
			argCount := int(vm.readByte(fr))
			superclassVal := vm.pop()
			if err := vm.invokeFromClass(superclassVal.AsClass(), name, argCount); err != nil {
				return Nil(), err
			}
			decref(vm, superclassVal)
		case OpClosure:
			idx := vm.readByte(fr)
			fn := fr.closure.fn.Chunk.Constants[idx].AsFunction()
			closure := newClosure(vm, fn)
			// Push before capturing: a function that refers to itself
			// captures the very slot this closure is about to occupy.
			vm.push(objValue(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := vm.readByte(fr)
				index := vm.readByte(fr)
				if isLocal == 1 {
					uv := vm.captureUpvalue(fr.slotsBase + int(index))
					retainOrReleaseUpvalue(vm, uv, true)
					closure.upvalues[i] = uv
				} else {
					uv := fr.closure.upvalues[index]
					retainOrReleaseUpvalue(vm, uv, true)
					closure.upvalues[i] = uv
				}
			}
		case OpCloseUpvalue:
			v := vm.pop()
			vm.closeUpvaluesFrom(len(vm.stack))
			decref(vm, v)
		case OpReturn:
			result := vm.pop()
			vm.closeUpvaluesFrom(fr.slotsBase)
			finishedFrame := fr
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				return result, nil
			}
			releaseAll(vm, vm.stack[finishedFrame.slotsBase:])
			vm.stack = vm.stack[:finishedFrame.slotsBase]
			vm.push(result)

		case OpClass:
			idx := vm.readByte(fr)
			name := fr.closure.fn.Chunk.Constants[idx]
			vm.push(objValue(newClass(vm, name.AsString())))
		case OpInherit:
			super := vm.peek(1)
			if !super.IsClass() {
				return Nil(), vm.runtimeErrorf("superclass must be a class")
			}
			sub := vm.peek(0).AsClass()
			sub.methods.addAll(vm, super.AsClass().methods)
			subVal := vm.pop() // subclass
			decref(vm, subVal)
		case OpMethod:
			idx := vm.readByte(fr)
			name := fr.closure.fn.Chunk.Constants[idx]
			method := vm.pop()
			class := vm.peek(0).AsClass()
			class.methods.Set(vm, name, method)
			decref(vm, method)

		case OpArray:
			count := int(vm.readShort(fr))
			items := make([]Value, count)
			copy(items, vm.stack[len(vm.stack)-count:])
			vm.stack = vm.stack[:len(vm.stack)-count]
			vm.push(objValue(newArray(vm, items)))
			releaseAll(vm, items)
		case OpTable:
			count := int(vm.readShort(fr))
			table := newTable(vm)
			base := len(vm.stack) - count*2
			for i := 0; i < count; i++ {
				key := vm.stack[base+i*2]
				val := vm.stack[base+i*2+1]
				table.Set(vm, key, val)
				decref(vm, key)
				decref(vm, val)
			}
			vm.stack = vm.stack[:base]
			vm.push(objValue(table))
		case OpGetIndex:
			index := vm.pop()
			target := vm.pop()
			val, err := vm.indexGet(target, index)
			if err != nil {
				return Nil(), err
			}
			decref(vm, index)
			decref(vm, target)
			vm.push(val)
		case OpSetIndex:
			val := vm.pop()
			index := vm.pop()
			target := vm.pop()
			if err := vm.indexSet(target, index, val); err != nil {
				return Nil(), err
			}
			decref(vm, index)
			decref(vm, target)
			vm.push(val)

		default:
			return Nil(), vm.runtimeErrorf("unknown opcode %d", op)
		}

		if len(vm.stack) > vm.maxStackSlots {
			return Nil(), vm.runtimeErrorf("stack overflow")
		}
	}
}

func (vm *VM) readByte(fr *callFrame) byte {
	b := fr.closure.fn.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (vm *VM) readShort(fr *callFrame) uint16 {
	hi, lo := fr.closure.fn.Chunk.Code[fr.ip], fr.closure.fn.Chunk.Code[fr.ip+1]
	fr.ip += 2
	return uint16(hi)<<8 | uint16(lo)
}

// callValue dispatches OP_CALL's callee by kind: closures push a frame,
// native functions and classes run synchronously and leave their
// result where the callee used to sit.
func (vm *VM) callValue(callee Value, argCount int) error {
	switch {
	case callee.IsClosure():
		return vm.callClosure(callee.AsClosure(), argCount)
	case callee.IsNativeFun():
		return vm.callNative(callee.AsNativeFun(), argCount)
	case callee.IsClass():
		return vm.instantiate(callee.AsClass(), argCount)
	case callee.IsBoundMethod():
		bound := callee.AsBoundMethod()
		slot := len(vm.stack) - argCount - 1
		incref(bound.receiver)
		decref(vm, vm.stack[slot])
		vm.stack[slot] = bound.receiver
		return vm.callClosure(bound.method, argCount)
	default:
		return vm.runtimeErrorf("can only call functions and classes")
	}
}

func (vm *VM) callClosure(closure *ObjClosure, argCount int) error {
	if argCount != closure.fn.Arity {
		return vm.runtimeErrorf("expected %d arguments but got %d", closure.fn.Arity, argCount)
	}
	if len(vm.frames) >= vm.maxCallFrames {
		return vm.runtimeErrorf("stack overflow")
	}
	vm.frames = append(vm.frames, callFrame{
		closure:   closure,
		ip:        0,
		slotsBase: len(vm.stack) - argCount - 1,
	})
	return nil
}

func (vm *VM) callNative(fn *ObjNativeFun, argCount int) error {
	if fn.arity >= 0 && argCount != fn.arity {
		return vm.runtimeErrorf("expected %d arguments but got %d", fn.arity, argCount)
	}
	args := make([]Value, argCount)
	copy(args, vm.stack[len(vm.stack)-argCount:])
	result, err := fn.fn(vm, args)
	if err != nil {
		return vm.wrapRuntimeError(err)
	}
	incref(result)
	releaseAll(vm, vm.stack[len(vm.stack)-argCount-1:])
	vm.stack = vm.stack[:len(vm.stack)-argCount-1]
	vm.push(result)
	return nil
}

func (vm *VM) instantiate(class *ObjClass, argCount int) error {
	base := len(vm.stack) - argCount - 1
	instance := newInstance(vm, class)
	decref(vm, vm.stack[base])
	vm.stack[base] = objValue(instance)
	if init, ok := class.methods.Get(objValue(vm.initString)); ok {
		return vm.callClosure(init.AsClosure(), argCount)
	}
	if argCount != 0 {
		return vm.runtimeErrorf("expected 0 arguments but got %d", argCount)
	}
	return nil
}

func (vm *VM) bindMethod(class *ObjClass, name Value, receiver Value) (Value, error) {
	method, ok := class.methods.Get(name)
	if !ok {
		return Nil(), vm.runtimeErrorf("undefined property '%s'", name.AsString().chars)
	}
	return objValue(newBoundMethod(vm, receiver, method.AsClosure())), nil
}

func (vm *VM) invoke(name Value, argCount int) error {
	receiver := vm.peek(argCount)
	if !receiver.IsInstance() {
		return vm.runtimeErrorf("only instances have methods")
	}
	inst := receiver.AsInstance()
	if val, ok := inst.fields.Get(name); ok {
		slot := len(vm.stack) - argCount - 1
		incref(val)
		decref(vm, vm.stack[slot])
		vm.stack[slot] = val
		return vm.callValue(val, argCount)
	}
	return vm.invokeFromClass(inst.class, name, argCount)
}

func (vm *VM) invokeFromClass(class *ObjClass, name Value, argCount int) error {
	method, ok := class.methods.Get(name)
	if !ok {
		return vm.runtimeErrorf("undefined property '%s'", name.AsString().chars)
	}
	return vm.callClosure(method.AsClosure(), argCount)
}

// captureUpvalue finds or creates the open upvalue for the stack slot
// at absolute index, keeping the VM's open list sorted by descending
// slot index the way the reference implementation threads it so
// closing a frame only has to scan down to its own window.
func (vm *VM) captureUpvalue(slot int) *ObjUpvalue {
	insertAt := 0
	for insertAt < len(vm.openUpvalues) {
		existing := vm.openUpvalues[insertAt]
		if existing.slot == slot {
			return existing
		}
		if existing.slot < slot {
			break
		}
		insertAt++
	}
	created := newUpvalue(vm, &vm.stack[slot], slot)
	vm.openUpvalues = append(vm.openUpvalues, nil)
	copy(vm.openUpvalues[insertAt+1:], vm.openUpvalues[insertAt:])
	vm.openUpvalues[insertAt] = created
	return created
}

// closeUpvaluesFrom closes every open upvalue whose slot is at or
// above the given stack index, typically a frame's own window when it
// returns or a block's locals when its scope ends.
func (vm *VM) closeUpvaluesFrom(slot int) {
	i := 0
	for i < len(vm.openUpvalues) && vm.openUpvalues[i].slot >= slot {
		vm.openUpvalues[i].close()
		i++
	}
	vm.openUpvalues = vm.openUpvalues[i:]
}

// arrayIndex narrows a number Value down to an int subscript, rejecting
// anything that isn't a whole number representable as an int (NaN, Inf,
// fractional values, and magnitudes outside the platform int range all
// fail the same way a Lox-family array index never meant to be a float
// in the first place should).
func arrayIndex(v Value) (int, error) {
	n, err := safecast.Convert[int](v.AsNumber())
	if err != nil {
		return 0, fmt.Errorf("array index %s is not a valid integer: %w", formatNumber(v.AsNumber()), err)
	}
	return n, nil
}

func (vm *VM) indexGet(target, index Value) (Value, error) {
	switch {
	case target.IsArray():
		if !index.IsNumber() {
			return Nil(), vm.runtimeErrorf("array index must be a number")
		}
		i, err := arrayIndex(index)
		if err != nil {
			return Nil(), vm.runtimeErrorf("%s", err.Error())
		}
		v, err := target.AsArray().Get(i)
		if err != nil {
			return Nil(), vm.runtimeErrorf("%s", err.Error())
		}
		incref(v)
		return v, nil
	case target.IsTable():
		val, ok := target.AsTable().Get(index)
		if !ok {
			return Nil(), vm.runtimeErrorf("key not found in table")
		}
		incref(val)
		return val, nil
	default:
		return Nil(), vm.runtimeErrorf("only arrays and tables support indexing")
	}
}

func (vm *VM) indexSet(target, index, val Value) error {
	switch {
	case target.IsArray():
		if !index.IsNumber() {
			return vm.runtimeErrorf("array index must be a number")
		}
		i, err := arrayIndex(index)
		if err != nil {
			return vm.runtimeErrorf("%s", err.Error())
		}
		if err := target.AsArray().Set(vm, i, val); err != nil {
			return vm.runtimeErrorf("%s", err.Error())
		}
		return nil
	case target.IsTable():
		target.AsTable().Set(vm, index, val)
		return nil
	default:
		return vm.runtimeErrorf("only arrays and tables support indexing")
	}
}

func (vm *VM) add(a, b Value) (Value, error) {
	if a.IsNumber() && b.IsNumber() {
		return Number(a.AsNumber() + b.AsNumber()), nil
	}
	if a.IsString() && b.IsString() {
		return vm.concatStrings(a.AsString(), b.AsString()), nil
	}
	return Nil(), fmt.Errorf("operands must be two numbers or two strings")
}

func arith(op OpCode, a, b float64) Value {
	switch op {
	case OpSubtract:
		return Number(a - b)
	case OpMultiply:
		return Number(a * b)
	case OpDivide:
		return Number(a / b)
	default:
		return Nil()
	}
}

func compareNumbers(op OpCode, a, b Value) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Nil(), fmt.Errorf("operands must be numbers")
	}
	x, y := a.AsNumber(), b.AsNumber()
	switch op {
	case OpGreater:
		return Bool(x > y), nil
	case OpGreaterEqual:
		return Bool(x >= y), nil
	case OpLess:
		return Bool(x < y), nil
	case OpLessEqual:
		return Bool(x <= y), nil
	default:
		return Nil(), fmt.Errorf("unsupported comparison")
	}
}
