// Package repl implements the interactive LGL shell.
package repl

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
	"github.com/sambeau/lgl/pkg/lgl/evaluator"
	"github.com/sambeau/lgl/pkg/lgl/lgl"
)

const PROMPT = "lgl> "
const CONTINUATION_PROMPT = "...  "

// Config holds REPL settings
type Config struct {
	Version string
	Prompt  string // Main prompt (default PROMPT)
	History string // History file; empty uses ~/.lgl_history, "none" disables
}

// Start runs the REPL with line editing, history, and tab completion until
// the user exits. Every entry is evaluated in session, so bindings persist.
func Start(out io.Writer, session *lgl.Session, cfg Config) {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	sh := NewShell(session, out)
	line.SetCompleter(sh.Complete)

	historyFile := historyPath(cfg.History)
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = PROMPT
	}

	fmt.Fprintln(out, "LGL v"+cfg.Version)
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	for {
		currentPrompt := prompt
		if sh.Pending() {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C - clear any buffered input and return to main prompt
				if sh.Pending() {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				sh.Clear()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		entry, quit := sh.Feed(input)
		if entry != "" {
			line.AppendHistory(entry)
		}
		if quit {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
	}
}

func historyPath(configured string) string {
	switch configured {
	case "none":
		return ""
	case "":
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), ".lgl_history")
		}
		return filepath.Join(home, ".lgl_history")
	default:
		return configured
	}
}

// Shell holds the line-by-line state of a REPL independent of the terminal.
type Shell struct {
	session *lgl.Session
	out     io.Writer
	buf     strings.Builder
	calls   *lgl.CallLog
}

// callLogLimit bounds the lines :calls keeps for one entry.
const callLogLimit = 200

// NewShell creates a Shell evaluating in session and printing to out.
func NewShell(session *lgl.Session, out io.Writer) *Shell {
	calls := lgl.NewCallLog(callLogLimit)
	session.AttachLogger(calls)
	return &Shell{session: session, out: out, calls: calls}
}

// Pending reports whether a multi-line entry is being collected.
func (s *Shell) Pending() bool { return s.buf.Len() > 0 }

// Clear drops any partially entered program.
func (s *Shell) Clear() { s.buf.Reset() }

// Feed handles one line of input. It returns the complete entry when one
// was evaluated (for history) and whether the user asked to quit.
func (s *Shell) Feed(input string) (entry string, quit bool) {
	trimmed := strings.TrimSpace(input)
	if !s.Pending() {
		if trimmed == "exit" || trimmed == "quit" {
			return "", true
		}
		if strings.HasPrefix(trimmed, ":") {
			s.command(trimmed)
			return "", false
		}
		if trimmed == "" {
			return "", false
		}
	}

	if s.Pending() {
		s.buf.WriteString("\n")
	}
	s.buf.WriteString(input)

	full := s.buf.String()
	if needsMoreInput(full) {
		return "", false
	}
	s.buf.Reset()

	s.calls.Reset()
	result, err := s.session.EvalString(full)
	if err != nil {
		printError(s.out, err)
		return full, false
	}
	fmt.Fprintln(s.out, result.Inspect())
	return full, false
}

// command handles REPL meta-commands that start with ':'
func (s *Shell) command(cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(s.out, "  :env            Show global bindings")
		fmt.Fprintln(s.out, "  :ops            List operations")
		fmt.Fprintln(s.out, "  :clear          Clear all global bindings")
		fmt.Fprintln(s.out, "  :calls          Show the calls made by the last entry")
		fmt.Fprintln(s.out, "  :trace          Show the number of trace events recorded")
		fmt.Fprintln(s.out, "  exit, quit      Exit the REPL")
		fmt.Fprintln(s.out, "")
		fmt.Fprintln(s.out, `Programs are JSON lists, e.g. ["add", 2, 3] or [1, "+", 2, "*", 3]`)

	case ":env":
		s.printEnvironment()

	case ":ops":
		for _, op := range evaluator.DescribeOperations() {
			fmt.Fprintf(s.out, "  %-9s %-4s %s\n", op.Name, op.Arity, op.Description)
		}

	case ":clear":
		s.session.Reset()
		fmt.Fprintln(s.out, "Environment cleared")

	case ":calls":
		s.printCalls()

	case ":trace":
		rec := s.session.Recorder()
		if rec == nil {
			fmt.Fprintln(s.out, "Tracing is off (start with --trace)")
			return
		}
		fmt.Fprintf(s.out, "%d events recorded\n", rec.Len())

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// printEnvironment displays all global bindings
func (s *Shell) printEnvironment() {
	names := s.session.Names()
	if len(names) == 0 {
		fmt.Fprintln(s.out, "(no bindings)")
		return
	}

	for _, name := range names {
		obj, _ := s.session.Lookup(name)
		value := obj.Inspect()
		// Truncate long values
		if len(value) > 60 {
			value = value[:57] + "..."
		}
		fmt.Fprintf(s.out, "  %s: %s = %s\n", name, obj.Type(), value)
	}
}

// printCalls shows the call and return lines of the last entry.
func (s *Shell) printCalls() {
	lines, dropped := s.calls.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(s.out, "(no calls)")
		return
	}
	if dropped > 0 {
		fmt.Fprintf(s.out, "  ... %d earlier lines\n", dropped)
	}
	for _, line := range lines {
		fmt.Fprintln(s.out, "  "+line)
	}
}

// Complete returns candidate lines for the name being typed inside a string.
func (s *Shell) Complete(line string) []string {
	start := strings.LastIndexByte(line, '"')
	if start < 0 || strings.Count(line, `"`)%2 == 0 {
		return nil
	}
	prefix := line[start+1:]
	if prefix == "" {
		return nil
	}

	words := append(evaluator.OperationNames(), s.session.Names()...)
	sort.Strings(words)

	var matches []string
	seen := make(map[string]bool)
	for _, word := range words {
		if strings.HasPrefix(word, prefix) && !seen[word] {
			seen[word] = true
			matches = append(matches, line[:start+1]+word+`"`)
		}
	}
	return matches
}

// needsMoreInput checks if the input has unclosed brackets outside strings
func needsMoreInput(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	bracketCount := 0
	inString := false
	escapeNext := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if inString && ch == '\\' {
			escapeNext = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '[':
			bracketCount++
		case ']':
			bracketCount--
		}
	}

	return bracketCount > 0 || inString
}

func printError(out io.Writer, err error) {
	var lerr *lerrors.LGLError
	if stderrors.As(err, &lerr) {
		io.WriteString(out, lerr.PrettyString())
		io.WriteString(out, "\n")
		return
	}
	fmt.Fprintf(out, "Error: %v\n", err)
}
