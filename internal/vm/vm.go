package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/vexlang/vex/internal/chunk"
	"github.com/vexlang/vex/internal/object"
)

const (
	stackCapacity  = 65536
	framesCapacity = 1024
	handlerCapMax  = 256
)

// Machine is the bytecode interpreter (spec.md §4.2-§4.9): a value stack,
// a call-frame stack, an exception-handler stack, the open-upvalue list,
// a globals table, the object heap, and the per-chunk inline caches.
// Generalizes the teacher's VM (pkg/vm/vm.go), trading its interface{}
// stack and message-send dispatch for a fixed-capacity tagged-Value stack
// and a byte-opcode dispatch loop.
type Machine struct {
	chunk *chunk.Chunk

	stack [stackCapacity]object.Value
	sp    int

	frames     [framesCapacity]CallFrame
	frameCount int

	handlers     [handlerCapMax]Handler
	handlerCount int

	openUpvalues *object.Upvalue
	globals      *object.Dict
	heap         *object.Heap

	ics  []monoCache
	pics []polyCache

	exception object.Value // current in-flight exception, valid between THROW and CATCH

	trace   TraceStrategy
	debug   bool
	stdout  io.Writer
	stderr  io.Writer
}

// Status is the outcome of Interpret/Run, mirroring spec.md §6.1's
// {ok, compile_error, runtime_error} result taxonomy.
type Status int

const (
	StatusOK Status = iota
	StatusCompileError
	StatusRuntimeError
)

func New() *Machine {
	m := &Machine{
		heap:   object.NewHeap(),
		trace:  nullTraceStrategy{},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	m.globals = m.heap.NewDict()
	return m
}

// SetDebugMode toggles per-instruction tracing to stderr (spec.md §6.1).
func (m *Machine) SetDebugMode(on bool) { m.debug = on }

// Heap exposes the machine's object heap so the compiler can allocate
// string/function constants onto the same tracked list Run's GC mark
// phase walks, rather than owning a second untracked heap of its own.
func (m *Machine) Heap() *object.Heap { return m.heap }

// SetOutput redirects the print opcode's destination (used by tests and by
// embedders that don't want stdout).
func (m *Machine) SetOutput(w io.Writer) { m.stdout = w }

// SetTraceStrategy installs a native trace-compiler collaborator. The
// default is a permanently-cold null strategy (spec.md §1, §4.5).
func (m *Machine) SetTraceStrategy(t TraceStrategy) { m.trace = t }

func (m *Machine) push(v object.Value) error {
	if m.sp >= stackCapacity {
		return fmt.Errorf("stack overflow")
	}
	m.stack[m.sp] = v
	m.sp++
	return nil
}

func (m *Machine) pop() object.Value {
	m.sp--
	return m.stack[m.sp]
}

func (m *Machine) peek(depth int) object.Value {
	return m.stack[m.sp-1-depth]
}

func (m *Machine) frame() *CallFrame {
	return &m.frames[m.frameCount-1]
}

func (m *Machine) stackTrace() []TraceFrame {
	frames := make([]TraceFrame, 0, m.frameCount)
	for i := 0; i < m.frameCount; i++ {
		f := &m.frames[i]
		name := "<script>"
		if f.Fn != nil {
			name = f.Fn.Name
		}
		frames = append(frames, TraceFrame{FuncName: name, Line: m.chunk.LineAt(f.IP)})
	}
	return frames
}

func (m *Machine) runtimeErrorf(format string, args ...interface{}) *RuntimeError {
	return newRuntimeError(m.stackTrace(), format, args...)
}

// Run executes fn (normally the synthetic top-level script function) to
// completion starting from a fresh frame, per spec.md §6.1's interpret()
// contract: push a top-level nil sentinel, run until halt, top-level
// return, or error.
func (m *Machine) Run(c *chunk.Chunk, entry *object.Function) (Status, error) {
	m.chunk = c
	m.sp = 0
	m.frameCount = 0
	m.handlerCount = 0
	m.openUpvalues = nil
	m.exception = object.Nil
	m.ics = make([]monoCache, c.NumICSlots)
	m.pics = make([]polyCache, c.NumPICSlots)

	if err := m.push(object.Nil); err != nil {
		return StatusRuntimeError, err
	}
	m.frames[0] = CallFrame{Fn: entry, IP: entry.CodeStart, BP: 0}
	m.frameCount = 1

	if err := m.dispatch(); err != nil {
		m.sp = 0
		m.frameCount = 0
		if _, ok := err.(*RuntimeError); ok {
			fmt.Fprintln(m.stderr, err.Error())
			return StatusRuntimeError, err
		}
		return StatusRuntimeError, err
	}
	return StatusOK, nil
}
