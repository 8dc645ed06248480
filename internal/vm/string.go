package vm

import "hash/fnv"

// ObjString is an immutable, interned string. Equal content always
// shares one ObjString for the lifetime of a VM, so string equality and
// table lookups reduce to pointer comparison.
type ObjString struct {
	Obj
	chars string
	hash  uint32
}

func (s *ObjString) destroy(vm *VM) {
	delete(vm.strings, s.chars)
}

// String returns the string's text content.
func (s *ObjString) String() string { return s.chars }

// Len returns the string's length in bytes.
func (s *ObjString) Len() int { return len(s.chars) }

// hashString applies FNV-1a, the hash the reference implementation
// uses for both string interning and table probing.
func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// internString returns the canonical ObjString for s, creating and
// caching it on first use.
func (vm *VM) internString(s string) *ObjString {
	if existing, ok := vm.strings[s]; ok {
		incref(objValue(existing))
		return existing
	}
	obj := &ObjString{chars: s, hash: hashString(s)}
	initObj(&obj.Obj, ObjTypeString, vm)
	vm.strings[s] = obj
	return obj
}

// StringValue interns s and wraps it as a Value.
func (vm *VM) StringValue(s string) Value {
	return objValue(vm.internString(s))
}

// concatStrings implements `+` between two strings: the interner is
// consulted again for the combined text, mirroring the reference
// implementation's concat_string, which re-checks the table before
// allocating a fresh string object.
func (vm *VM) concatStrings(a, b *ObjString) Value {
	return vm.StringValue(a.chars + b.chars)
}
