package compiler

import "github.com/vexlang/vex/internal/chunk"

// localVar is one compile-time local-variable binding: a name visible
// within the current block, permanently occupying slot in its function's
// frame. Slots are never reused across sibling blocks; a function's
// LocalsCount is simply the high-water mark of slots handed out.
type localVar struct {
	name  string
	slot  int
	depth int
}

// upvalueDesc mirrors the (isLocal, index) pair OP_CLOSURE reads
// (internal/vm/calls.go's makeClosure): isLocal true captures a slot in
// the immediately enclosing function's frame, false chains through that
// function's own upvalue array.
type upvalueDesc struct {
	index   int
	isLocal bool
}

type loopCtx struct {
	breaks    []int // patch list: offsets of OP_JUMP placeholders to patch to loop end
	continues []int // patch list: offsets of OP_JUMP placeholders to patch to the loop's increment/condition point
}

// funcScope tracks everything needed to compile one function body: its
// locals (including the top-level script, which is compiled as an
// implicit function of its own), captured upvalues, and active loops for
// break/continue patching.
//
// `let` inside any funcScope becomes a local; at top-level scope,
// `defineVariable` instead emits a global, since top-level bindings must
// be visible across separately-run REPL lines and imported modules
// without closure capture (spec.md §6.1, §6.3).
type funcScope struct {
	enclosing  *funcScope
	isTopLevel bool
	name       string

	locals     []localVar
	nextSlot   int
	blockDepth int

	upvalues []upvalueDesc

	loops []*loopCtx
}

func (c *Compiler) beginScope() {
	c.cur.blockDepth++
}

func (c *Compiler) endScope() {
	fs := c.cur
	fs.blockDepth--
	n := len(fs.locals)
	for n > 0 && fs.locals[n-1].depth > fs.blockDepth {
		n--
	}
	fs.locals = fs.locals[:n]
}

// declareLocal adds name as a new local of the current function scope,
// returning its slot.
func (c *Compiler) declareLocal(name string) int {
	fs := c.cur
	slot := fs.nextSlot
	fs.nextSlot++
	fs.locals = append(fs.locals, localVar{name: name, slot: slot, depth: fs.blockDepth})
	return slot
}

func resolveLocal(fs *funcScope, name string) (int, bool) {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			return fs.locals[i].slot, true
		}
	}
	return 0, false
}

// resolveUpvalue walks the enclosing function-scope chain, threading a
// capture descriptor through every intervening closure (spec.md §4.2).
func resolveUpvalue(fs *funcScope, name string) (int, bool) {
	if fs.enclosing == nil {
		return 0, false
	}
	if slot, ok := resolveLocal(fs.enclosing, name); ok {
		return addUpvalue(fs, slot, true), true
	}
	if idx, ok := resolveUpvalue(fs.enclosing, name); ok {
		return addUpvalue(fs, idx, false), true
	}
	return 0, false
}

func addUpvalue(fs *funcScope, index int, isLocal bool) int {
	for i, uv := range fs.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	fs.upvalues = append(fs.upvalues, upvalueDesc{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}

// defineVariable binds name to the value currently on top of the stack:
// a global at top-level scope, a freshly declared local otherwise.
func (c *Compiler) defineVariable(name string) {
	if c.cur.isTopLevel && c.cur.blockDepth == 0 {
		c.emit(chunk.OpDefineGlobal, 0)
		c.emitNameConstant(name, 0)
		return
	}
	slot := c.declareLocal(name)
	c.emit(chunk.OpSetLocal, 0)
	c.emitByte(byte(slot), 0)
	c.emit(chunk.OpPop, 0)
}

// resolveIdentifier emits the load sequence for name: local, then upvalue,
// then global, in that order (spec.md §4.2's scoping rule).
func (c *Compiler) resolveIdentifier(name string, line int) {
	if slot, ok := resolveLocal(c.cur, name); ok {
		c.emit(chunk.OpGetLocal, line)
		c.emitByte(byte(slot), line)
		return
	}
	if idx, ok := resolveUpvalue(c.cur, name); ok {
		c.emit(chunk.OpGetUpvalue, line)
		c.emitByte(byte(idx), line)
		return
	}
	c.emit(chunk.OpGetGlobal, line)
	c.emitNameConstant(name, line)
}

// assignIdentifier emits the store sequence for name, assuming the value
// to store is already on top of the stack.
func (c *Compiler) assignIdentifier(name string, line int) {
	if slot, ok := resolveLocal(c.cur, name); ok {
		c.emit(chunk.OpSetLocal, line)
		c.emitByte(byte(slot), line)
		return
	}
	if idx, ok := resolveUpvalue(c.cur, name); ok {
		c.emit(chunk.OpSetUpvalue, line)
		c.emitByte(byte(idx), line)
		return
	}
	c.emit(chunk.OpSetGlobal, line)
	c.emitNameConstant(name, line)
}

func (c *Compiler) pushFuncScope(name string) *funcScope {
	fs := &funcScope{enclosing: c.cur, name: name, nextSlot: 1}
	c.cur = fs
	return fs
}

func (c *Compiler) popFuncScope() *funcScope {
	fs := c.cur
	c.cur = fs.enclosing
	return fs
}

func (c *Compiler) currentLoop() *loopCtx {
	fs := c.cur
	if len(fs.loops) == 0 {
		return nil
	}
	return fs.loops[len(fs.loops)-1]
}

func (c *Compiler) pushLoop() *loopCtx {
	l := &loopCtx{}
	c.cur.loops = append(c.cur.loops, l)
	return l
}

func (c *Compiler) popLoop() {
	fs := c.cur
	fs.loops = fs.loops[:len(fs.loops)-1]
}
