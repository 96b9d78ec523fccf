package vm

import "github.com/vexlang/vex/internal/object"

// monoCache is a monomorphic inline cache site (spec.md §4.7): OP_GET_FIELD_IC,
// OP_SET_FIELD_IC and OP_INVOKE_IC each own one slot, indexed by the
// compiler-assigned ic_slot operand.
type monoCache struct {
	class    *object.Class
	slot     int
	isMethod bool
	method   *object.Closure
	valid    bool
}

func (c *monoCache) lookup(klass *object.Class) (int, *object.Closure, bool, bool) {
	if c.valid && c.class == klass {
		return c.slot, c.method, c.isMethod, true
	}
	return 0, nil, false, false
}

func (c *monoCache) store(klass *object.Class, slot int, isMethod bool, method *object.Closure) {
	c.class, c.slot, c.isMethod, c.method, c.valid = klass, slot, isMethod, method, true
}

// picMaxEntries bounds the polymorphic cache's fixed capacity (spec.md §4.7:
// "typically ≤4 entries").
const picMaxEntries = 4

type picEntry struct {
	class    *object.Class
	slot     int
	isMethod bool
	method   *object.Closure
}

// polyCache is a polymorphic inline cache site, a small fixed-capacity
// class->resolution table. On overflow it degrades by evicting the oldest
// entry (round-robin), which keeps every cached entry correct — the
// required property (§8 law 10) — at the cost of cache-hit rate.
type polyCache struct {
	entries [picMaxEntries]picEntry
	count   int
	next    int // round-robin eviction cursor
}

func (c *polyCache) lookup(klass *object.Class) (int, *object.Closure, bool, bool) {
	for i := 0; i < c.count; i++ {
		if c.entries[i].class == klass {
			e := c.entries[i]
			return e.slot, e.method, e.isMethod, true
		}
	}
	return 0, nil, false, false
}

func (c *polyCache) store(klass *object.Class, slot int, isMethod bool, method *object.Closure) {
	for i := 0; i < c.count; i++ {
		if c.entries[i].class == klass {
			c.entries[i] = picEntry{klass, slot, isMethod, method}
			return
		}
	}
	if c.count < picMaxEntries {
		c.entries[c.count] = picEntry{klass, slot, isMethod, method}
		c.count++
		return
	}
	c.entries[c.next] = picEntry{klass, slot, isMethod, method}
	c.next = (c.next + 1) % picMaxEntries
}
