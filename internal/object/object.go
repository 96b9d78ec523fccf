// Package object implements Vex's heap object model: the object taxonomy
// of spec.md §3.2, the intrusive linked list that threads every live object
// together for GC sweep (§3.3), and the tagged Value representation of
// §3.1 (kept in this package rather than a separate one because Array,
// Dict, Function, and friends all hold Values, and Value holds object
// pointers — the two are mutually recursive in any Go encoding that avoids
// literal NaN-boxing).
package object

// Type tags every heap object (spec.md §3.2: "every heap object carries a
// three-field header: a type tag, a GC-mark bit, and a next pointer").
type Type uint8

const (
	TypeString Type = iota
	TypeArray
	TypeDict
	TypeRange
	TypeFunction
	TypeUpvalue
	TypeClosure
	TypeClass
	TypeInstance
	TypeBoundMethod
	TypeGenerator
	TypePromise
	TypeModule
	TypeBytes
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeDict:
		return "dict"
	case TypeRange:
		return "range"
	case TypeFunction:
		return "function"
	case TypeUpvalue:
		return "upvalue"
	case TypeClosure:
		return "closure"
	case TypeClass:
		return "class"
	case TypeInstance:
		return "instance"
	case TypeBoundMethod:
		return "bound_method"
	case TypeGenerator:
		return "generator"
	case TypePromise:
		return "promise"
	case TypeModule:
		return "module"
	case TypeBytes:
		return "bytes"
	}
	return "unknown"
}

// Obj is the three-field header embedded at the front of every concrete
// heap object. Allocation prepends to the process-wide Heap list (§3.2:
// "Allocation prepends to that list").
type Obj struct {
	Type   Type
	Marked bool
	Next   *Obj
}

// Heap owns the intrusive linked list of every live object, mirroring
// spec.md §9's "Object ownership": the VM owns every heap object via its
// intrusive linked list; values merely refer to it. Garbage collection
// scheduling is explicitly left to the implementer (spec.md §1 OUT OF
// SCOPE); Heap supplies the mechanism (Track + Sweep) without forcing a
// policy — Sweep is never called automatically, matching the spec's
// "the specification does not mandate when GC runs".
type Heap struct {
	head  *Obj
	count int
}

// NewHeap creates an empty object heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Track prepends a freshly allocated object's header to the live list.
// Every constructor in this package (NewString, NewArray, ...) calls this
// exactly once so the invariant of §3.3 ("the object linked list contains
// every heap object") holds by construction.
func (h *Heap) Track(o *Obj) {
	o.Next = h.head
	h.head = o
	h.count++
}

// Count returns the number of objects currently tracked (live or
// unreached-but-unswept).
func (h *Heap) Count() int { return h.count }

// Sweep walks the list and frees (unlinks) every object whose Marked bit is
// false, clearing marks on survivors for the next cycle. Callers are
// responsible for having run a mark phase over their own roots (value
// stack, frames, open upvalues, globals, IC/PIC caches, the current
// exception slot, chunk constants — see spec.md §9) before calling Sweep;
// this package has no visibility into those roots by design.
func (h *Heap) Sweep() int {
	var freed int
	var prev *Obj
	cur := h.head
	for cur != nil {
		next := cur.Next
		if !cur.Marked {
			if prev == nil {
				h.head = next
			} else {
				prev.Next = next
			}
			h.count--
			freed++
		} else {
			cur.Marked = false
			prev = cur
		}
		cur = next
	}
	return freed
}

// Each calls fn for every live object, for use by a mark phase.
func (h *Heap) Each(fn func(*Obj)) {
	for cur := h.head; cur != nil; cur = cur.Next {
		fn(cur)
	}
}
