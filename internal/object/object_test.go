package object

import "testing"

func TestValueTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", Nil, false},
		{"false", False, false},
		{"true", True, true},
		{"zero int", Int(0), false},
		{"nonzero int", Int(1), true},
		{"zero float", Float(0), false},
		{"nonzero float", Float(0.5), true},
	}
	for _, tt := range tests {
		if got := tt.v.Truthy(); got != tt.want {
			t.Errorf("%s: Truthy() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEqualCrossesIntAndFloat(t *testing.T) {
	if !Equal(Int(3), Float(3.0)) {
		t.Errorf("expected Int(3) == Float(3.0)")
	}
	if Equal(Int(3), Float(3.5)) {
		t.Errorf("expected Int(3) != Float(3.5)")
	}
}

func TestEqualNilOnlyEqualsNil(t *testing.T) {
	if !Equal(Nil, Nil) {
		t.Errorf("expected Nil == Nil")
	}
	if Equal(Nil, Int(0)) {
		t.Errorf("expected Nil != Int(0), got equal")
	}
	if Equal(Nil, False) {
		t.Errorf("expected Nil != False, got equal")
	}
}

func TestEqualStringsByValue(t *testing.T) {
	h := NewHeap()
	a := h.NewString("hi")
	b := h.NewString("hi")
	if !Equal(Obj(&a.Obj), Obj(&b.Obj)) {
		t.Errorf("expected distinct String objects with equal contents to compare equal")
	}
}

func TestObjOfNilPointerCollapsesToNil(t *testing.T) {
	v := Obj(nil)
	if !v.IsNil() {
		t.Errorf("expected Obj(nil) to collapse to Nil")
	}
}

func TestHeapSweepFreesUnmarked(t *testing.T) {
	h := NewHeap()
	a := h.NewString("keep")
	_ = h.NewString("drop")
	if h.Count() != 2 {
		t.Fatalf("expected 2 tracked objects, got %d", h.Count())
	}

	a.Marked = true
	freed := h.Sweep()
	if freed != 1 {
		t.Errorf("expected 1 object freed, got %d", freed)
	}
	if h.Count() != 1 {
		t.Errorf("expected 1 object to survive, got %d", h.Count())
	}
	if a.Marked {
		t.Errorf("expected a survivor's Marked bit to be cleared after Sweep")
	}
}

func TestClassInheritCopiesFieldsAndMethods(t *testing.T) {
	h := NewHeap()
	base := h.NewClass("Animal")
	base.AddField("name")
	fn := h.NewFunction(Function{Name: "speak"})
	cl := h.NewClosure(fn, nil)
	base.AddMethod("speak", cl)

	derived := h.NewClass("Dog")
	derived.Inherit(base)

	if _, ok := derived.FieldHash["name"]; !ok {
		t.Errorf("expected Dog to inherit field 'name'")
	}
	if _, ok := derived.LookupMethod("speak"); !ok {
		t.Errorf("expected Dog to inherit method 'speak'")
	}
}

func TestClassAddStaticFirstWriteRegistersName(t *testing.T) {
	h := NewHeap()
	cls := h.NewClass("Config")
	cls.AddStatic("limit", Int(10))
	cls.AddStatic("limit", Int(20))
	if len(cls.StaticNames) != 1 {
		t.Fatalf("expected a repeated static name to register once, got %v", cls.StaticNames)
	}
	if v := cls.Statics["limit"]; v.AsInt() != 20 {
		t.Errorf("expected the second write to win, got %d", v.AsInt())
	}
}

func TestInstanceSetFieldDynamicallyAddsSlot(t *testing.T) {
	h := NewHeap()
	cls := h.NewClass("Point")
	cls.AddField("x")
	inst := h.NewInstance(cls)

	inst.SetField("x", Int(1))
	inst.SetField("y", Int(2)) // not declared on the class up front

	if v, ok := inst.GetField("x"); !ok || v.AsInt() != 1 {
		t.Fatalf("expected x == 1, got %#v ok=%v", v, ok)
	}
	if v, ok := inst.GetField("y"); !ok || v.AsInt() != 2 {
		t.Fatalf("expected dynamically added y == 2, got %#v ok=%v", v, ok)
	}
}

func TestInstanceGetFieldFallsBackToMethod(t *testing.T) {
	h := NewHeap()
	cls := h.NewClass("Greeter")
	fn := h.NewFunction(Function{Name: "hello"})
	cl := h.NewClosure(fn, nil)
	cls.AddMethod("hello", cl)
	inst := h.NewInstance(cls)

	v, ok := inst.GetField("hello")
	if !ok {
		t.Fatalf("expected GetField to fall back to a method lookup")
	}
	if _, ok := AsClosure(v.AsObj()); !ok {
		t.Errorf("expected the method value to be a Closure")
	}
}

func TestArrayPushGrows(t *testing.T) {
	h := NewHeap()
	arr := h.NewArray(nil)
	arr.Push(Int(1))
	arr.Push(Int(2))
	if len(arr.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(arr.Elements))
	}
}

func TestDictSetGetDelete(t *testing.T) {
	h := NewHeap()
	d := h.NewDict()
	d.Set("k", Int(42))
	if v, ok := d.Get("k"); !ok || v.AsInt() != 42 {
		t.Fatalf("expected k == 42, got %#v ok=%v", v, ok)
	}
	if !d.Delete("k") {
		t.Errorf("expected Delete to report success for an existing key")
	}
	if _, ok := d.Get("k"); ok {
		t.Errorf("expected k to be gone after Delete")
	}
}

func TestRangeNext(t *testing.T) {
	h := NewHeap()
	r := h.NewRange(1, 4)
	var got []int32
	for {
		v, ok := r.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	want := []int32{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestUpvalueCloseCopiesValue(t *testing.T) {
	h := NewHeap()
	slot := Int(9)
	uv := h.NewUpvalue(0, &slot)
	if !uv.IsOpen() {
		t.Fatalf("expected a freshly created upvalue to be open")
	}
	uv.Close()
	if uv.IsOpen() {
		t.Errorf("expected Close to make the upvalue closed")
	}
	if uv.Get().AsInt() != 9 {
		t.Errorf("expected the closed value to be preserved, got %d", uv.Get().AsInt())
	}
}
