// Command vex is the CLI front end for the Vex runtime, renamed from the
// teacher's cmd/smog and rebuilt on github.com/spf13/cobra's subcommand
// tree instead of the teacher's hand-rolled os.Args switch.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vexlang/vex/internal/chunk"
	"github.com/vexlang/vex/internal/object"
	"github.com/vexlang/vex/pkg/ast"
	"github.com/vexlang/vex/pkg/compiler"
	"github.com/vexlang/vex/pkg/parser"
	"github.com/vexlang/vex/pkg/vex"
)

const version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "vex",
		Short: "Vex is a small dynamically-typed scripting language",
	}
	root.AddCommand(
		runCmd(),
		replCmd(),
		compileCmd(),
		disasmCmd(),
		versionCmd(),
	)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vex version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vex version %s\n", version)
		},
	}
}

func runCmd() *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a .vex source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}
			m := vex.New()
			m.SetDebugMode(debug)
			status, err := m.Interpret(source)
			if err != nil {
				printRuntimeError(err)
			}
			os.Exit(exitCode(status))
			return nil
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "enable per-instruction tracing")
	return cmd
}

func compileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a .vex source file and report errors without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}
			if _, _, err := compileSource(source); err != nil {
				printCompileError(err)
				os.Exit(65)
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func disasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <file>",
		Short: "Compile a .vex source file and print its bytecode listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}
			c, _, err := compileSource(source)
			if err != nil {
				printCompileError(err)
				os.Exit(65)
			}
			chunk.Disassemble(os.Stdout, c, args[0])
			return nil
		},
	}
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			runREPL()
			return nil
		},
	}
}

func readSource(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// compileSource parses and compiles source against a throwaway heap:
// `compile`/`disasm` never run the resulting chunk, so there is no Machine
// whose GC sweep needs to agree with it.
func compileSource(source string) (*chunk.Chunk, *ast.Program, error) {
	p := parser.New(source)
	program, err := p.Parse()
	if err != nil {
		return nil, nil, err
	}
	comp := compiler.New(object.NewHeap())
	c, _, err := comp.Compile(program)
	return c, program, err
}

func exitCode(status vex.Status) int {
	switch status {
	case vex.StatusOK:
		return 0
	case vex.StatusCompileError:
		return 65
	default:
		return 70
	}
}

func printCompileError(err error) {
	red := color.New(color.FgRed)
	red.Fprintf(os.Stderr, "compile error: %v\n", err)
}

func printRuntimeError(err error) {
	red := color.New(color.FgRed)
	red.Fprintf(os.Stderr, "runtime error: %v\n", err)
}
