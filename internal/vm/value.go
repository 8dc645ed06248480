package vm

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind tags the tagged-union Value representation. The VM keeps a
// real typed field per case rather than NaN-boxing a float64, so Go's
// garbage collector can always see object pointers directly.
type ValueKind uint8

const (
	ValNil ValueKind = iota
	ValBool
	ValNumber
	ValObj
)

// Value is the VM's universal runtime representation. It is small
// enough to be copied freely on the value stack; heap objects are
// referenced through obj and managed with the logical refcount scheme
// in object.go.
type Value struct {
	Kind ValueKind
	num  float64
	b    bool
	obj  heapObject
}

func Nil() Value                 { return Value{Kind: ValNil} }
func Bool(b bool) Value          { return Value{Kind: ValBool, b: b} }
func Number(n float64) Value     { return Value{Kind: ValNumber, num: n} }
func objValue(o heapObject) Value { return Value{Kind: ValObj, obj: o} }

func (v Value) AsBool() bool   { return v.b }
func (v Value) AsNumber() float64 { return v.num }

func (v Value) IsNil() bool    { return v.Kind == ValNil }
func (v Value) IsBool() bool   { return v.Kind == ValBool }
func (v Value) IsNumber() bool { return v.Kind == ValNumber }
func (v Value) IsObj() bool    { return v.Kind == ValObj }

func (v Value) objType() (ObjType, bool) {
	if v.Kind != ValObj || v.obj == nil {
		return 0, false
	}
	return v.obj.header().kind, true
}

func (v Value) isObjType(t ObjType) bool {
	kind, ok := v.objType()
	return ok && kind == t
}

func (v Value) IsString() bool      { return v.isObjType(ObjTypeString) }
func (v Value) IsArray() bool       { return v.isObjType(ObjTypeArray) }
func (v Value) IsTable() bool       { return v.isObjType(ObjTypeTable) }
func (v Value) IsFunction() bool    { return v.isObjType(ObjTypeFunction) }
func (v Value) IsClosure() bool     { return v.isObjType(ObjTypeClosure) }
func (v Value) IsNativeFun() bool   { return v.isObjType(ObjTypeNativeFun) }
func (v Value) IsClass() bool       { return v.isObjType(ObjTypeClass) }
func (v Value) IsInstance() bool    { return v.isObjType(ObjTypeInstance) }
func (v Value) IsBoundMethod() bool { return v.isObjType(ObjTypeBoundMethod) }

func (v Value) AsString() *ObjString {
	s, _ := v.obj.(*ObjString)
	return s
}
func (v Value) AsArray() *ObjArray {
	a, _ := v.obj.(*ObjArray)
	return a
}
func (v Value) AsFunction() *ObjFunction {
	f, _ := v.obj.(*ObjFunction)
	return f
}
func (v Value) AsTable() *ObjTable {
	t, _ := v.obj.(*ObjTable)
	return t
}
func (v Value) AsClosure() *ObjClosure {
	c, _ := v.obj.(*ObjClosure)
	return c
}
func (v Value) AsNativeFun() *ObjNativeFun {
	n, _ := v.obj.(*ObjNativeFun)
	return n
}
func (v Value) AsClass() *ObjClass {
	c, _ := v.obj.(*ObjClass)
	return c
}
func (v Value) AsInstance() *ObjInstance {
	i, _ := v.obj.(*ObjInstance)
	return i
}
func (v Value) AsBoundMethod() *ObjBoundMethod {
	b, _ := v.obj.(*ObjBoundMethod)
	return b
}

// IsFalsey implements the language's truthiness rule: nil and false are
// falsey, everything else (including 0 and the empty string) is truthy.
func IsFalsey(v Value) bool {
	switch v.Kind {
	case ValNil:
		return true
	case ValBool:
		return !v.b
	default:
		return false
	}
}

// Equals implements value equality. Numbers compare by value; strings
// compare by content (but since strings are interned, pointer identity
// already agrees); every other object type compares by identity.
func Equals(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValNil:
		return true
	case ValBool:
		return a.b == b.b
	case ValNumber:
		return a.num == b.num
	case ValObj:
		if a.IsString() && b.IsString() {
			return a.AsString() == b.AsString()
		}
		return a.obj == b.obj
	default:
		return false
	}
}

// hashValue mirrors Equals: values that compare equal hash equal. It
// backs table keys, which may be any value, not only strings.
func hashValue(v Value) uint32 {
	switch v.Kind {
	case ValNil:
		return 1
	case ValBool:
		if v.b {
			return 3
		}
		return 2
	case ValNumber:
		n := v.num
		if n == 0 {
			n = 0 // -0 == 0, so both must hash alike
		}
		bits := math.Float64bits(n)
		return uint32(bits) ^ uint32(bits>>32)
	case ValObj:
		if v.IsString() {
			return v.AsString().hash
		}
		return v.obj.header().id
	default:
		return 0
	}
}

// ToString renders a value the way the print builtin does: numbers
// drop a trailing ".0", everything else uses its natural literal form.
func ToString(v Value) string {
	switch v.Kind {
	case ValNil:
		return "nil"
	case ValBool:
		if v.b {
			return "true"
		}
		return "false"
	case ValNumber:
		return formatNumber(v.num)
	case ValObj:
		return stringifyObj(v)
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if math.IsNaN(n) {
		return "nan"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func stringifyObj(v Value) string {
	switch {
	case v.IsString():
		return v.AsString().chars
	case v.IsArray():
		arr := v.AsArray()
		s := "["
		for i, el := range arr.items {
			if i > 0 {
				s += ", "
			}
			s += ToString(el)
		}
		return s + "]"
	case v.IsTable():
		return fmt.Sprintf("<table %d entries>", v.AsTable().count)
	case v.IsFunction():
		return "<fn " + v.AsFunction().displayName() + ">"
	case v.IsClosure():
		return "<fn " + v.AsClosure().fn.displayName() + ">"
	case v.IsNativeFun():
		return "<native fn " + v.AsNativeFun().name + ">"
	case v.IsClass():
		return v.AsClass().name.chars
	case v.IsInstance():
		return v.AsInstance().class.name.chars + " instance"
	case v.IsBoundMethod():
		return "<fn " + v.AsBoundMethod().method.fn.displayName() + ">"
	default:
		return "<object>"
	}
}

// TypeName names a value's runtime type, for diagnostics.
func TypeName(v Value) string {
	switch v.Kind {
	case ValNil:
		return "nil"
	case ValBool:
		return "bool"
	case ValNumber:
		return "number"
	case ValObj:
		kind, _ := v.objType()
		return kind.String()
	default:
		return "unknown"
	}
}
