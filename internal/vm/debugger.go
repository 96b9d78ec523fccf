package vm

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"

	"github.com/vexlang/vex/internal/chunk"
	"github.com/vexlang/vex/internal/object"
)

// traceInstruction generalizes the teacher's interactive Debugger
// (pkg/vm/debugger.go: ShowCurrentInstruction/ShowStack) into an
// always-on-when-enabled tracer: one colorized disassembled line per
// executed instruction, followed by the stack contents whenever the stack
// is non-empty. Unlike the teacher's
// version, there is no breakpoint/step prompt here — set_debug_mode just
// streams a trace, matching how the rest of this VM treats debug output as
// a side channel rather than a blocking console.
func (m *Machine) traceInstruction() {
	f := m.frame()

	header := color.New(color.FgCyan)
	header.Fprintf(m.stderr, "frame=%d ", m.frameCount-1)
	chunk.DisassembleInstruction(m.stderr, m.chunk, f.IP)

	if m.sp == 0 {
		return
	}
	stackLine := color.New(color.FgYellow)
	stackLine.Fprint(m.stderr, "  stack:")
	for i := 0; i < m.sp; i++ {
		fmt.Fprintf(m.stderr, " [%s]", m.stack[i].String())
	}
	fmt.Fprintln(m.stderr)

	top := m.stack[m.sp-1]
	if top.IsObj() {
		fmt.Fprint(m.stderr, dumpValue(top.AsObj()))
	}
}

// dumpValue renders a heap object's concrete struct with spew, for trace
// output that needs to see inside an Instance/Closure/Dict rather than its
// one-line String() form. A bare *object.Obj header only shows the type
// tag, so this resolves to the matching concrete pointer first.
func dumpValue(o *object.Obj) string {
	switch o.Type {
	case object.TypeInstance:
		inst, _ := object.AsInstance(o)
		return spew.Sdump(inst)
	case object.TypeClosure:
		cl, _ := object.AsClosure(o)
		return spew.Sdump(cl)
	case object.TypeDict:
		d, _ := object.AsDict(o)
		return spew.Sdump(d)
	case object.TypeArray:
		arr, _ := object.AsArray(o)
		return spew.Sdump(arr)
	default:
		return spew.Sdump(o)
	}
}
