package vm

import (
	"testing"

	"github.com/vexlang/vex/internal/object"
)

// These exercise collectGarbage/mark directly, since no Vex source syntax
// reaches EXT_GC_COLLECT (spec.md §4.3) — only hand-assembled bytecode or,
// as here, a package-internal test does.

func TestCollectGarbageFreesUnreachableObjects(t *testing.T) {
	m := New() // New() already allocates the globals Dict, so it owns 1 object up front
	kept := m.heap.NewString("kept")
	m.heap.NewString("garbage")

	if m.heap.Count() != 3 {
		t.Fatalf("expected 3 tracked objects before GC (globals dict + 2 strings), got %d", m.heap.Count())
	}

	if err := m.push(object.Obj(&kept.Obj)); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	freed := m.collectGarbage()
	if freed != 1 {
		t.Errorf("expected 1 object freed, got %d", freed)
	}
	if m.heap.Count() != 2 {
		t.Errorf("expected 2 surviving objects (globals dict + kept string), got %d", m.heap.Count())
	}
	m.pop()
}

func TestCollectGarbageKeepsGlobals(t *testing.T) {
	m := New()
	s := m.heap.NewString("global value")
	m.globals.Set("g", object.Obj(&s.Obj))

	m.collectGarbage()

	if v, ok := m.globals.Get("g"); !ok || v.AsObj() != &s.Obj {
		t.Fatalf("expected a global binding to keep its object alive across GC")
	}
	if m.heap.Count() != 2 { // the string plus the globals dict itself
		t.Errorf("expected 2 surviving objects (dict + string), got %d", m.heap.Count())
	}
}

func TestCollectGarbageKeepsOpenUpvalues(t *testing.T) {
	m := New()
	slot := object.Obj(&m.heap.NewString("captured").Obj)
	uv := m.heap.NewUpvalue(0, &slot)
	uv.NextOpen = m.openUpvalues
	m.openUpvalues = uv

	m.collectGarbage()

	if m.heap.Count() != 3 { // globals dict + the upvalue + the string it points at
		t.Errorf("expected the upvalue and its referent to survive alongside the globals dict, got %d objects", m.heap.Count())
	}
}
