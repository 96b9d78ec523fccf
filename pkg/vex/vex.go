// Package vex is the public embedding surface for the Vex runtime,
// mirroring the teacher's pkg/vm top-level doc-comment style but
// collapsing the whole pipeline behind one call instead of exposing the
// compiler and VM separately:
//
//   Source Text -> [imports] -> Lexer -> Parser -> AST -> Compiler -> Chunk -> Machine -> Status
//
// A Machine persists across Interpret calls, so a REPL can reuse one VM
// (and its globals) across successive inputs the way cmd/vex's repl
// subcommand does.
package vex

import (
	"io"

	"github.com/vexlang/vex/internal/imports"
	"github.com/vexlang/vex/internal/vm"
	"github.com/vexlang/vex/pkg/compiler"
	"github.com/vexlang/vex/pkg/parser"
)

// Status mirrors spec.md §6.1's {ok, compile_error, runtime_error} result.
type Status = vm.Status

const (
	StatusOK           = vm.StatusOK
	StatusCompileError = vm.StatusCompileError
	StatusRuntimeError = vm.StatusRuntimeError
)

// Machine wraps a persistent internal/vm.Machine, giving embedders
// init()/free()-style lifecycle control (spec.md §6.1) without exposing
// internal/vm's own package (which is internal by design).
type Machine struct {
	m *vm.Machine
}

// New creates a fresh Machine with its own heap, globals, and stack.
func New() *Machine {
	return &Machine{m: vm.New()}
}

// SetDebugMode toggles per-instruction tracing to stderr (spec.md §6.1).
func (vx *Machine) SetDebugMode(on bool) { vx.m.SetDebugMode(on) }

// SetOutput redirects the print opcode's destination.
func (vx *Machine) SetOutput(w io.Writer) { vx.m.SetOutput(w) }

// SetTraceStrategy installs a native trace-compiler collaborator (spec.md
// §4.5); omit this to keep the permanently-cold null strategy.
func (vx *Machine) SetTraceStrategy(t vm.TraceStrategy) { vx.m.SetTraceStrategy(t) }

// Interpret compiles source into a new chunk sharing the Machine's heap
// and runs it to completion (spec.md §6.1's interpret()). Import
// statements in source are left untouched; callers with multi-file
// programs should run HasImports/PreprocessImports first.
func (vx *Machine) Interpret(source string) (Status, error) {
	p := parser.New(source)
	program, err := p.Parse()
	if err != nil {
		return StatusCompileError, err
	}

	comp := compiler.New(vx.m.Heap())
	c, entry, err := comp.Compile(program)
	if err != nil {
		return StatusCompileError, err
	}

	return vx.m.Run(c, entry)
}

// HasImports reports whether source contains an import statement
// (spec.md §6.1's has_imports hook), so a caller can skip preprocessing
// for a self-contained script.
func HasImports(source string) bool {
	return imports.HasImports(source)
}

// PreprocessImports inlines every import statement in source, rooted at
// basePath (spec.md §6.1's preprocess_imports hook, §6.3's resolution
// rules).
func PreprocessImports(source, basePath string) (string, error) {
	return imports.PreprocessImports(source, basePath)
}
