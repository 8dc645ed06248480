package vm

import (
	"fmt"
	"io"
	"strconv"
)

// Disassembler formats compiled chunks as a readable assembly-style
// dump, recursing into nested function constants the way the reference
// disassembler walks a chunk's constant pool for closures.
type Disassembler struct {
	w       io.Writer
	visited map[*ObjFunction]bool
	printed bool
}

func NewDisassembler(w io.Writer) *Disassembler {
	return &Disassembler{w: w, visited: make(map[*ObjFunction]bool)}
}

func (d *Disassembler) DisassembleFunction(label string, fn *ObjFunction) error {
	if fn == nil || fn.Chunk == nil {
		return fmt.Errorf("nil function")
	}
	if d.visited[fn] {
		return nil
	}
	d.visited[fn] = true
	d.startSection()

	name := label
	if name == "" {
		name = fn.displayName()
	}
	fmt.Fprintf(d.w, "fun %s (arity=%d, upvalues=%d)\n", name, fn.Arity, fn.UpvalueCount)
	if err := d.disassembleChunk(fn.Chunk); err != nil {
		return err
	}
	for idx, c := range fn.Chunk.Constants {
		if !c.IsFunction() {
			continue
		}
		child := c.AsFunction()
		childName := child.displayName()
		if childName == "<script>" {
			childName = fmt.Sprintf("<fn@const:%d>", idx)
		}
		if err := d.DisassembleFunction(childName, child); err != nil {
			return err
		}
	}
	return nil
}

func (d *Disassembler) startSection() {
	if d.printed {
		fmt.Fprintln(d.w)
	}
	d.printed = true
}

func (d *Disassembler) disassembleChunk(chunk *Chunk) error {
	code := chunk.Code
	for ip := 0; ip < len(code); {
		offset := ip
		op := OpCode(code[ip])
		ip++
		line := chunk.LineAt(offset)
		lineStr := "-"
		if line > 0 {
			lineStr = strconv.Itoa(line)
		}
		operands, err := d.decodeOperands(op, chunk, &ip)
		if err != nil {
			return err
		}
		fmt.Fprintf(d.w, "%04d %4s %-18s", offset, lineStr, op.String())
		if operands != "" {
			fmt.Fprintf(d.w, " %s", operands)
		}
		fmt.Fprintln(d.w)
	}
	return nil
}

func (d *Disassembler) decodeOperands(op OpCode, chunk *Chunk, ip *int) (string, error) {
	switch op {
	case OpConstant, OpGetGlobal, OpSetGlobal, OpDefineGlobal, OpGetProperty, OpSetProperty, OpGetSuper, OpClass, OpMethod:
		idx, err := readU8(chunk.Code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d ; %s", idx, formatConstRef(chunk, idx)), nil
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall:
		idx, err := readU8(chunk.Code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", idx), nil
	case OpArray, OpTable:
		count, err := readU16(chunk.Code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", count), nil
	case OpInvoke, OpSuperInvoke:
		idx, err := readU8(chunk.Code, ip)
		if err != nil {
			return "", err
		}
		argc, err := readU8(chunk.Code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d %d ; %s", idx, argc, formatConstRef(chunk, idx)), nil
	case OpJump, OpJumpIfFalse, OpLoop:
		off, err := readU16(chunk.Code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", off), nil
	case OpClosure:
		idx, err := readU8(chunk.Code, ip)
		if err != nil {
			return "", err
		}
		upcount := 0
		if int(idx) < len(chunk.Constants) && chunk.Constants[idx].IsFunction() {
			upcount = chunk.Constants[idx].AsFunction().UpvalueCount
		}
		detail := fmt.Sprintf("%d ; %s", idx, formatConstRef(chunk, idx))
		for i := 0; i < upcount; i++ {
			isLocal, err := readU8(chunk.Code, ip)
			if err != nil {
				return "", err
			}
			slot, err := readU8(chunk.Code, ip)
			if err != nil {
				return "", err
			}
			kind := "upvalue"
			if isLocal == 1 {
				kind = "local"
			}
			detail += fmt.Sprintf(" (%s %d)", kind, slot)
		}
		return detail, nil
	default:
		return "", nil
	}
}

func readU8(code []byte, ip *int) (byte, error) {
	if *ip >= len(code) {
		return 0, fmt.Errorf("unexpected end of bytecode")
	}
	v := code[*ip]
	*ip++
	return v, nil
}

func readU16(code []byte, ip *int) (uint16, error) {
	if *ip+1 >= len(code) {
		return 0, fmt.Errorf("unexpected end of bytecode")
	}
	hi, lo := code[*ip], code[*ip+1]
	*ip += 2
	return uint16(hi)<<8 | uint16(lo), nil
}

func formatConstRef(chunk *Chunk, idx byte) string {
	if int(idx) >= len(chunk.Constants) {
		return "<invalid>"
	}
	return formatConst(chunk.Constants[idx])
}

func formatConst(v Value) string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		return ToString(v)
	case v.IsNumber():
		return ToString(v)
	case v.IsString():
		return strconv.Quote(v.AsString().chars)
	case v.IsFunction():
		return "fn " + v.AsFunction().displayName()
	default:
		return "<object>"
	}
}
