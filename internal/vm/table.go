package vm

const tableMaxLoad = 0.75

type tableEntry struct {
	key     Value
	value   Value
	present bool // false for both an empty slot and a tombstone
}

// ObjTable is an open-addressing hash map with linear probing and
// tombstone deletion, keyed by arbitrary Values via Equals/hashValue.
type ObjTable struct {
	Obj
	entries  []tableEntry
	count    int // live entries, excludes tombstones
	occupied int // live entries + tombstones, drives the resize threshold
}

func newTable(vm *VM) *ObjTable {
	t := &ObjTable{}
	initObj(&t.Obj, ObjTypeTable, vm)
	return t
}

func (t *ObjTable) destroy(vm *VM) {
	for _, e := range t.entries {
		if e.present {
			decref(vm, e.key)
			decref(vm, e.value)
		}
	}
}

// findEntry locates the slot for key: either the entry already holding
// it, or the first tombstone/empty slot it would be inserted into.
func findEntry(entries []tableEntry, key Value) (int, bool) {
	if len(entries) == 0 {
		return -1, false
	}
	capacity := len(entries)
	idx := int(hashValue(key)) % capacity
	if idx < 0 {
		idx += capacity
	}
	var tombstone = -1
	for {
		e := &entries[idx]
		if !e.present {
			if e.key.IsNil() && e.value.IsNil() {
				if tombstone != -1 {
					return tombstone, false
				}
				return idx, false
			}
			// tombstone: key absent, marked by a sentinel true value
			if tombstone == -1 {
				tombstone = idx
			}
		} else if Equals(e.key, key) {
			return idx, true
		}
		idx = (idx + 1) % capacity
	}
}

func (t *ObjTable) adjustCapacity(newCap int) {
	fresh := make([]tableEntry, newCap)
	for _, e := range t.entries {
		if !e.present {
			continue
		}
		idx, _ := findEntry(fresh, e.key)
		fresh[idx] = tableEntry{key: e.key, value: e.value, present: true}
	}
	t.entries = fresh
	t.occupied = t.count
}

// Set installs key/value, growing the table first if needed. It
// returns true if this inserted a new key rather than overwriting one.
func (t *ObjTable) Set(vm *VM, key, value Value) bool {
	if float64(t.occupied+1) > float64(len(t.entries))*tableMaxLoad {
		newCap := 8
		if len(t.entries) > 0 {
			newCap = len(t.entries) * 2
		}
		t.adjustCapacity(newCap)
	}
	idx, _ := findEntry(t.entries, key)
	e := &t.entries[idx]
	isNew := !e.present
	if isNew {
		t.count++
		t.occupied++
		incref(key)
	} else {
		decref(vm, e.value)
	}
	incref(value)
	e.key = key
	e.value = value
	e.present = true
	return isNew
}

// Len reports the number of live entries, excluding tombstones.
func (t *ObjTable) Len() int { return t.count }

func (t *ObjTable) Get(key Value) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil(), false
	}
	idx, found := findEntry(t.entries, key)
	if !found {
		return Nil(), false
	}
	return t.entries[idx].value, true
}

func (t *ObjTable) Delete(vm *VM, key Value) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx, found := findEntry(t.entries, key)
	if !found {
		return false
	}
	e := &t.entries[idx]
	decref(vm, e.key)
	decref(vm, e.value)
	t.count--
	// Tombstone: present=false but key/value distinguish it from a
	// truly empty slot so linear probing keeps finding entries past it.
	e.key = Bool(true)
	e.value = Bool(true)
	e.present = false
	return true
}

// addAll copies every entry of src into t, used when a class inherits
// its superclass's method table.
func (t *ObjTable) addAll(vm *VM, src *ObjTable) {
	for _, e := range src.entries {
		if e.present {
			t.Set(vm, e.key, e.value)
		}
	}
}
