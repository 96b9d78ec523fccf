package vm

import (
	"github.com/vexlang/vex/internal/object"
)

// execIndexGet implements OP_INDEX_GET: pops index, receiver; pushes the
// element. Supports Array (int index), Dict (string key), String (int
// index yields a one-character substring), and Range (int offset from
// start).
func (m *Machine) execIndexGet() error {
	idx := m.pop()
	recv := m.pop()
	if !recv.IsObj() {
		return m.runtimeErrorf("value is not indexable: %s", recv.TypeName())
	}
	o := recv.AsObj()

	if arr, ok := object.AsArray(o); ok {
		if !idx.IsInt() {
			return m.runtimeErrorf("array index must be an integer")
		}
		i := int(idx.AsInt())
		if i < 0 || i >= len(arr.Elements) {
			return m.runtimeErrorf("array index out of range: %d", i)
		}
		return m.push(arr.Elements[i])
	}
	if d, ok := object.AsDict(o); ok {
		key, ok := object.AsString(idx.AsObj())
		if !idx.IsObj() || !ok {
			return m.runtimeErrorf("dict key must be a string")
		}
		v, found := d.Get(key.Value)
		if !found {
			return m.push(object.Nil)
		}
		return m.push(v)
	}
	if s, ok := object.AsString(o); ok {
		if !idx.IsInt() {
			return m.runtimeErrorf("string index must be an integer")
		}
		i := int(idx.AsInt())
		if i < 0 || i >= len(s.Value) {
			return m.runtimeErrorf("string index out of range: %d", i)
		}
		r, size := decodeRune(s.Value[i:])
		sub := m.heap.NewString(string(r))
		_ = size
		return m.push(object.Obj(&sub.Obj))
	}
	if r, ok := object.AsRange(o); ok {
		if !idx.IsInt() {
			return m.runtimeErrorf("range index must be an integer")
		}
		i := idx.AsInt()
		if i < 0 || i >= r.End-r.Start {
			return m.runtimeErrorf("range index out of range: %d", i)
		}
		return m.push(object.Int(r.Start + i))
	}
	return m.runtimeErrorf("value is not indexable: %s", object.TypeName(o))
}

// execIndexSet implements OP_INDEX_SET: pops value, index, receiver;
// pushes value back.
func (m *Machine) execIndexSet() error {
	val := m.pop()
	idx := m.pop()
	recv := m.pop()
	if !recv.IsObj() {
		return m.runtimeErrorf("value is not indexable: %s", recv.TypeName())
	}
	o := recv.AsObj()

	if arr, ok := object.AsArray(o); ok {
		if !idx.IsInt() {
			return m.runtimeErrorf("array index must be an integer")
		}
		i := int(idx.AsInt())
		if i < 0 || i >= len(arr.Elements) {
			return m.runtimeErrorf("array index out of range: %d", i)
		}
		arr.Elements[i] = val
		return m.push(val)
	}
	if d, ok := object.AsDict(o); ok {
		key, ok := object.AsString(idx.AsObj())
		if !idx.IsObj() || !ok {
			return m.runtimeErrorf("dict key must be a string")
		}
		d.Set(key.Value, val)
		return m.push(val)
	}
	return m.runtimeErrorf("value does not support index assignment: %s", object.TypeName(o))
}
