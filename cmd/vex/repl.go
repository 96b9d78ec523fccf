package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/vexlang/vex/pkg/vex"
)

// runREPL starts an interactive session, generalizing the teacher's
// bufio.Scanner loop (cmd/smog's runREPL) to a chzyer/readline-backed
// editor with history and multi-line brace continuation instead of the
// teacher's trailing-period heuristic, since Vex statements are brace- and
// semicolon-delimited rather than period-delimited.
//
// One vex.Machine persists for the whole session, so a `let` bound on one
// line is visible to every line after it.
func runREPL() {
	fmt.Printf("vex %s\n", version)
	fmt.Println("Type :help for help, :quit or :exit to leave")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vex> ",
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Println("readline unavailable:", err)
		return
	}
	defer rl.Close()

	m := vex.New()
	var buf strings.Builder
	depth := 0

	for {
		if buf.Len() == 0 {
			rl.SetPrompt("vex> ")
		} else {
			rl.SetPrompt("...> ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buf.Reset()
			depth = 0
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			return
		}

		if buf.Len() == 0 {
			switch strings.TrimSpace(line) {
			case ":quit", ":exit":
				return
			case ":help":
				printREPLHelp()
				continue
			case "":
				continue
			}
		}

		buf.WriteString(line)
		buf.WriteString("\n")
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth > 0 {
			continue
		}

		source := buf.String()
		buf.Reset()
		depth = 0

		status, err := m.Interpret(source)
		if err != nil {
			red := color.New(color.FgRed)
			switch status {
			case vex.StatusCompileError:
				red.Printf("compile error: %v\n", err)
			default:
				red.Printf("runtime error: %v\n", err)
			}
		}
	}
}

func printREPLHelp() {
	fmt.Println("  :help          show this message")
	fmt.Println("  :quit, :exit   leave the session")
	fmt.Println("  unterminated braces continue onto the next line")
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vex_history")
}
