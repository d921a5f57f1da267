// Package cli holds the command line plumbing shared by lgl and lgl-report.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
)

// UsageError marks a command line mistake; main exits with status 2.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// Usagef builds a UsageError.
func Usagef(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	var uerr *UsageError
	if errors.As(err, &uerr) {
		return 2
	}
	return 1
}

// PrintError writes err to w, in full for LGL errors.
func PrintError(w io.Writer, err error) {
	var lerr *lerrors.LGLError
	if errors.As(err, &lerr) {
		fmt.Fprintln(w, lerr.PrettyString())
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// ParseInterleaved parses flags that may appear before or after positional
// arguments, as in "lgl prog.gsc --trace trace.log".
func ParseInterleaved(flags *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := flags.Parse(args); err != nil {
			return nil, err
		}
		args = flags.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}
