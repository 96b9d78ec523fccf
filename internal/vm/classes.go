package vm

import (
	"github.com/vexlang/vex/internal/object"
)

// construct implements instance construction on OP_CALL of a class
// (spec.md §4.7): allocate an Instance, replace the class on the stack
// with it, and dispatch init if present.
func (m *Machine) construct(cls *object.Class, argc int) error {
	inst := m.heap.NewInstance(cls)
	m.stack[m.sp-1-argc] = object.Obj(&inst.Obj)

	init, ok := cls.LookupMethod("init")
	if !ok {
		// Design Notes open question: a class call with no init method and
		// supplied arguments discards them without error (spec.md §9).
		m.sp -= argc
		return nil
	}
	return m.invokeClosure(init, argc, true)
}

// execInherit implements OP_INHERIT (spec.md §4.7): consumes a superclass
// below the subclass on the stack.
func (m *Machine) execInherit() error {
	subVal := m.pop()
	superVal := m.peek(0)
	sub, ok1 := object.AsClass(subVal.AsObj())
	super, ok2 := object.AsClass(superVal.AsObj())
	if !ok1 || !ok2 {
		return m.runtimeErrorf("superclass must be a class")
	}
	sub.Inherit(super)
	m.pop()
	m.push(subVal)
	return nil
}

// execMethod implements OP_METHOD name (spec.md §4.7): pops a callable,
// attaches it to the class beneath.
func (m *Machine) execMethod() {
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	methodVal := m.pop()
	cls, _ := object.AsClass(m.peek(0).AsObj())
	cl, _ := object.AsClosure(methodVal.AsObj())
	cls.AddMethod(name.Value, cl)
}

// execField implements OP_FIELD name (spec.md §4.7): registers a field
// slot on the class atop the stack.
func (m *Machine) execField() {
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	cls, _ := object.AsClass(m.peek(0).AsObj())
	cls.AddField(name.Value)
}

// execSetStatic implements OP_SET_STATIC name (spec.md §4.7): pops the
// initializer value and binds it on the class beneath, shared by every
// instance rather than copied per-instance like OP_FIELD.
func (m *Machine) execSetStatic() {
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	val := m.pop()
	cls, _ := object.AsClass(m.peek(0).AsObj())
	cls.AddStatic(name.Value, val)
}

func (m *Machine) instanceAt(v object.Value) (*object.Instance, bool) {
	if !v.IsObj() {
		return nil, false
	}
	return object.AsInstance(v.AsObj())
}

// execGetField implements OP_GET_FIELD name (spec.md §4.7): hash-table
// lookup on the instance's class, falling back to a method-name scan.
func (m *Machine) execGetField() error {
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	recv := m.pop()
	if recv.IsObj() {
		if cls, ok := object.AsClass(recv.AsObj()); ok {
			if v, ok := cls.Statics[name.Value]; ok {
				return m.push(v)
			}
			return m.runtimeErrorf("undefined static '%s' on %s", name.Value, cls.Name)
		}
	}
	inst, ok := m.instanceAt(recv)
	if !ok {
		return m.runtimeErrorf("cannot read field '%s' of non-instance %s", name.Value, recv.TypeName())
	}
	v, found := inst.GetField(name.Value)
	if !found {
		return m.runtimeErrorf("undefined field '%s' on %s", name.Value, inst.Class.Name)
	}
	return m.push(v)
}

// execSetField implements OP_SET_FIELD name (spec.md §4.7): set-miss on an
// unknown name dynamically adds a field slot.
func (m *Machine) execSetField() error {
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	val := m.pop()
	recv := m.pop()
	if recv.IsObj() {
		if cls, ok := object.AsClass(recv.AsObj()); ok {
			cls.AddStatic(name.Value, val)
			return m.push(val)
		}
	}
	inst, ok := m.instanceAt(recv)
	if !ok {
		return m.runtimeErrorf("cannot set field '%s' of non-instance %s", name.Value, recv.TypeName())
	}
	inst.SetField(name.Value, val)
	return m.push(val)
}

// execGetFieldIC implements OP_GET_FIELD_IC ic_slot, name (spec.md §4.7):
// monomorphic cache keyed on the instance's class.
func (m *Machine) execGetFieldIC() error {
	slot := int(m.readByte())
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	recv := m.pop()
	// A class-valued receiver is a static access (ClassName.field), which
	// the IC is never keyed on: fall through to the same uncached lookup
	// OP_GET_FIELD uses rather than treating it as a non-instance error.
	if recv.IsObj() {
		if cls, ok := object.AsClass(recv.AsObj()); ok {
			if v, ok := cls.Statics[name.Value]; ok {
				return m.push(v)
			}
			return m.runtimeErrorf("undefined static '%s' on %s", name.Value, cls.Name)
		}
	}
	inst, ok := m.instanceAt(recv)
	if !ok {
		return m.runtimeErrorf("cannot read field '%s' of non-instance %s", name.Value, recv.TypeName())
	}
	cache := &m.ics[slot]
	if fieldSlot, method, isMethod, hit := cache.lookup(inst.Class); hit {
		if isMethod {
			return m.push(object.Obj(&method.Obj))
		}
		return m.push(inst.Fields[fieldSlot])
	}
	if fieldSlot, ok := inst.Class.FieldHash[name.Value]; ok {
		cache.store(inst.Class, fieldSlot, false, nil)
		return m.push(inst.Fields[fieldSlot])
	}
	if method, ok := inst.Class.LookupMethod(name.Value); ok {
		cache.store(inst.Class, 0, true, method)
		return m.push(object.Obj(&method.Obj))
	}
	return m.runtimeErrorf("undefined field '%s' on %s", name.Value, inst.Class.Name)
}

func (m *Machine) execSetFieldIC() error {
	slot := int(m.readByte())
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	val := m.pop()
	recv := m.pop()
	// Same static-assignment fallthrough as execSetField: the IC is keyed on
	// instance classes only, so a class-valued receiver skips it entirely.
	if recv.IsObj() {
		if cls, ok := object.AsClass(recv.AsObj()); ok {
			cls.AddStatic(name.Value, val)
			return m.push(val)
		}
	}
	inst, ok := m.instanceAt(recv)
	if !ok {
		return m.runtimeErrorf("cannot set field '%s' of non-instance %s", name.Value, recv.TypeName())
	}
	cache := &m.ics[slot]
	if fieldSlot, _, isMethod, hit := cache.lookup(inst.Class); hit && !isMethod {
		inst.Fields[fieldSlot] = val
		return m.push(val)
	}
	inst.SetField(name.Value, val)
	if fieldSlot, ok := inst.Class.FieldHash[name.Value]; ok {
		cache.store(inst.Class, fieldSlot, false, nil)
	}
	return m.push(val)
}

func (m *Machine) execGetFieldPIC() error {
	slot := int(m.readByte())
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	recv := m.pop()
	if recv.IsObj() {
		if cls, ok := object.AsClass(recv.AsObj()); ok {
			if v, ok := cls.Statics[name.Value]; ok {
				return m.push(v)
			}
			return m.runtimeErrorf("undefined static '%s' on %s", name.Value, cls.Name)
		}
	}
	inst, ok := m.instanceAt(recv)
	if !ok {
		return m.runtimeErrorf("cannot read field '%s' of non-instance %s", name.Value, recv.TypeName())
	}
	cache := &m.pics[slot]
	if fieldSlot, method, isMethod, hit := cache.lookup(inst.Class); hit {
		if isMethod {
			return m.push(object.Obj(&method.Obj))
		}
		return m.push(inst.Fields[fieldSlot])
	}
	if fieldSlot, ok := inst.Class.FieldHash[name.Value]; ok {
		cache.store(inst.Class, fieldSlot, false, nil)
		return m.push(inst.Fields[fieldSlot])
	}
	if method, ok := inst.Class.LookupMethod(name.Value); ok {
		cache.store(inst.Class, 0, true, method)
		return m.push(object.Obj(&method.Obj))
	}
	return m.runtimeErrorf("undefined field '%s' on %s", name.Value, inst.Class.Name)
}

func (m *Machine) execSetFieldPIC() error {
	slot := int(m.readByte())
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	val := m.pop()
	recv := m.pop()
	if recv.IsObj() {
		if cls, ok := object.AsClass(recv.AsObj()); ok {
			cls.AddStatic(name.Value, val)
			return m.push(val)
		}
	}
	inst, ok := m.instanceAt(recv)
	if !ok {
		return m.runtimeErrorf("cannot set field '%s' of non-instance %s", name.Value, recv.TypeName())
	}
	cache := &m.pics[slot]
	if fieldSlot, _, isMethod, hit := cache.lookup(inst.Class); hit && !isMethod {
		inst.Fields[fieldSlot] = val
		return m.push(val)
	}
	inst.SetField(name.Value, val)
	if fieldSlot, ok := inst.Class.FieldHash[name.Value]; ok {
		cache.store(inst.Class, fieldSlot, false, nil)
	}
	return m.push(val)
}

// execInvoke implements OP_INVOKE name, arg_count (spec.md §4.7) and, when
// fromSuper is true, OP_SUPER_INVOKE: combined field lookup and call.
func (m *Machine) execInvoke(fromSuper bool) error {
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	argc := int(m.readByte())

	recv := m.peek(argc)
	inst, ok := m.instanceAt(recv)
	if !ok {
		return m.runtimeErrorf("cannot invoke '%s' on non-instance %s", name.Value, recv.TypeName())
	}

	class := inst.Class
	if fromSuper {
		if class.Super == nil {
			return m.runtimeErrorf("'%s' has no superclass", class.Name)
		}
		class = class.Super
	}

	if method, ok := class.LookupMethod(name.Value); ok {
		return m.invokeClosure(method, argc, false)
	}
	if !fromSuper {
		if v, ok := inst.GetField(name.Value); ok && v.IsObj() {
			if _, ok := object.AsClosure(v.AsObj()); ok {
				// Callable field value: call without binding the receiver
				// (spec.md §4.7); overwrite the receiver slot with the
				// callable itself before falling into the normal call path.
				m.stack[m.sp-argc-1] = v
				return m.call(argc)
			}
		}
	}
	return m.runtimeErrorf("undefined method '%s' on %s", name.Value, class.Name)
}

// execInvokeIC implements OP_INVOKE_IC name, arg_count, ic_slot: same as
// OP_INVOKE but checks a monomorphic cache first.
func (m *Machine) execInvokeIC() error {
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	argc := int(m.readByte())
	slot := int(m.readByte())

	recv := m.peek(argc)
	inst, ok := m.instanceAt(recv)
	if !ok {
		return m.runtimeErrorf("cannot invoke '%s' on non-instance %s", name.Value, recv.TypeName())
	}
	cache := &m.ics[slot]
	if _, method, isMethod, hit := cache.lookup(inst.Class); hit && isMethod {
		return m.invokeClosure(method, argc, false)
	}
	if method, ok := inst.Class.LookupMethod(name.Value); ok {
		cache.store(inst.Class, 0, true, method)
		return m.invokeClosure(method, argc, false)
	}
	if v, ok := inst.GetField(name.Value); ok && v.IsObj() {
		if _, ok := object.AsClosure(v.AsObj()); ok {
			// Callable field value, same fallback as execInvoke: call
			// without binding the receiver (spec.md §4.7).
			m.stack[m.sp-argc-1] = v
			return m.call(argc)
		}
	}
	return m.runtimeErrorf("undefined method '%s' on %s", name.Value, inst.Class.Name)
}

// execGetSuper implements OP_GET_SUPER name (spec.md §4.7): produces a
// BoundMethod over the instance and the resolved superclass closure.
func (m *Machine) execGetSuper() error {
	nameVal := m.readConstantLong()
	name, _ := object.AsString(nameVal.AsObj())
	recv := m.pop()
	inst, ok := m.instanceAt(recv)
	if !ok || inst.Class.Super == nil {
		return m.runtimeErrorf("'super' used outside of a subclass method")
	}
	method, ok := inst.Class.Super.LookupMethod(name.Value)
	if !ok {
		return m.runtimeErrorf("undefined method '%s' on superclass of %s", name.Value, inst.Class.Name)
	}
	bm := m.heap.NewBoundMethod(recv, method)
	return m.push(object.Obj(&bm.Obj))
}
