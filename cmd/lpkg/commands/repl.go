package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"martianoff/lispkg/internal/script"
)

const historyFile = ".lpkg_history"

var (
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
)

var replCmd = &cobra.Command{
	Use:   "repl [script...]",
	Short: "Evaluate forms interactively",
	Long: `Start an interactive session. Scripts given as arguments are run first.
The prompt shows the current package. Type :quit or Ctrl+D to exit.`,
	Run: runRepl,
}

func runRepl(cmd *cobra.Command, args []string) {
	s, err := newSession(os.Stdout)
	if err != nil {
		fail("Error", err)
	}
	if err := s.runFiles(args); err != nil {
		fail("Error", err)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	var out strings.Builder
	interp := s.interp
	interp.SetOutput(&out)
	for {
		src, ok := readForm(ln, interp.Current().Name()+"> ")
		if !ok {
			fmt.Println()
			return
		}
		switch strings.TrimSpace(src) {
		case "":
			continue
		case ":quit":
			return
		}

		out.Reset()
		err := interp.Run("repl", src)
		fmt.Print(green(out.String()))
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}

// readForm reads lines until the parentheses and strings are balanced.
func readForm(ln *liner.State, prompt string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = strings.Repeat(" ", len(prompt)-2) + ". "
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !script.Incomplete(b.String()) {
			return b.String(), true
		}
	}
}
