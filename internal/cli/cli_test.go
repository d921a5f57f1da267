package cli

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"testing"

	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
)

func TestParseInterleaved(t *testing.T) {
	tests := []struct {
		args       []string
		positional []string
		format     string
	}{
		{[]string{"trace.log"}, []string{"trace.log"}, ""},
		{[]string{"--format", "html", "trace.log"}, []string{"trace.log"}, "html"},
		{[]string{"trace.log", "--format", "html"}, []string{"trace.log"}, "html"},
		{[]string{"a", "--format", "md", "b"}, []string{"a", "b"}, "md"},
		{nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			flags := flag.NewFlagSet("test", flag.ContinueOnError)
			flags.SetOutput(io.Discard)
			format := flags.String("format", "", "")

			positional, err := ParseInterleaved(flags, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if strings.Join(positional, ",") != strings.Join(tt.positional, ",") {
				t.Errorf("positional = %q, want %q", positional, tt.positional)
			}
			if *format != tt.format {
				t.Errorf("format = %q, want %q", *format, tt.format)
			}
		})
	}

	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	if _, err := ParseInterleaved(flags, []string{"trace.log", "--bogus"}); err == nil {
		t.Error("expected error for unknown flag after a positional argument")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Usagef("expected one trace file"), 2},
		{fmt.Errorf("wrapped: %w", Usagef("bad")), 2},
		{errors.New("boom"), 1},
		{lerrors.New(lerrors.CodeDivisionByZero, map[string]any{"Function": "divide"}), 1},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.New("boom"))
	if buf.String() != "error: boom\n" {
		t.Errorf("plain error = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, lerrors.New(lerrors.CodeDivisionByZero, map[string]any{"Function": "divide"}))
	if !strings.Contains(buf.String(), "[OP-0002]") || !strings.Contains(buf.String(), "division by zero in `divide`") {
		t.Errorf("LGL error = %q", buf.String())
	}
}
