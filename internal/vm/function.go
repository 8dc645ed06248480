package vm

// Chunk holds one function's compiled bytecode: a flat instruction
// stream, a constant pool it owns, and a line number for every byte of
// code (not run-length-encoded) so any offset maps straight back to a
// source line for diagnostics.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one instruction byte tagged with its source line.
func (c *Chunk) Write(b byte, line int) int {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// AddConstant appends a value to the constant pool and returns its
// index; equal values are not de-duplicated. The pool is limited to 255
// entries: constants are addressed by a single operand byte.
func (c *Chunk) AddConstant(v Value) (byte, bool) {
	if len(c.Constants) >= 255 {
		return 0, false
	}
	incref(v)
	c.Constants = append(c.Constants, v)
	return byte(len(c.Constants) - 1), true
}

func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}

// ObjFunction is a compiled, not-yet-closed-over function body. Every
// function literal compiles to one ObjFunction; OP_CLOSURE wraps it in
// an ObjClosure that carries its captured upvalues.
type ObjFunction struct {
	Obj
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         *ObjString // nil for the top-level script
}

func newFunction(vm *VM) *ObjFunction {
	f := &ObjFunction{Chunk: NewChunk()}
	initObj(&f.Obj, ObjTypeFunction, vm)
	return f
}

func (f *ObjFunction) destroy(vm *VM) {
	if f.Chunk != nil {
		releaseAll(vm, f.Chunk.Constants)
	}
	if f.Name != nil {
		decref(vm, objValue(f.Name))
	}
}

func (f *ObjFunction) displayName() string {
	if f.Name == nil {
		return "<script>"
	}
	return f.Name.chars
}
