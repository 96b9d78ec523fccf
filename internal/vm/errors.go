// Package vm implements Vex's stack-based bytecode dispatcher: a value
// stack, a call-frame stack, an exception-handler stack, a globals table,
// and the switch-dispatched opcode loop that drives them (spec.md §4-§5).
package vm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// TraceFrame records one live call for stack-trace rendering, generalizing
// the teacher's StackFrame (pkg/vm/errors.go) from a message-send record to
// a bytecode call-frame record.
type TraceFrame struct {
	FuncName string
	Line     int
}

// RuntimeError is a Vex runtime exception carrying the call stack at the
// point it was raised, mirroring the teacher's RuntimeError but wrapping
// causes with github.com/pkg/errors instead of losing them, so
// errors.Cause/errors.Unwrap still reach the underlying Go error when one
// exists (e.g. a builtin's I/O failure).
type RuntimeError struct {
	Message string
	Value   interface{} // not set by this package: catch clauses receive a thrown value through Machine.exception
	Stack   []TraceFrame
	cause   error
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Stack) > 0 {
		b.WriteString("\n\nstack trace:")
		for i := len(e.Stack) - 1; i >= 0; i-- {
			f := e.Stack[i]
			b.WriteString(fmt.Sprintf("\n  at %s [line %d]", f.FuncName, f.Line))
		}
	}
	return b.String()
}

func (e *RuntimeError) Unwrap() error { return e.cause }
func (e *RuntimeError) Cause() error  { return e.cause }

func newRuntimeError(stack []TraceFrame, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Stack: stack}
}

func wrapRuntimeError(cause error, stack []TraceFrame, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{
		Message: fmt.Sprintf(format, args...),
		Stack:   stack,
		cause:   errors.WithStack(cause),
	}
}
