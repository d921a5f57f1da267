package lgl

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sambeau/lgl/pkg/lgl/evaluator"
)

// Logger receives the evaluator's [DEBUG] call and return lines.
type Logger = evaluator.Logger

type writerLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *writerLogger) Log(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.w, joinValues(values))
}

func (l *writerLogger) LogLine(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, joinValues(values))
}

// WriterLogger returns a logger that writes each line to w.
func WriterLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

// CallLog keeps the most recent call and return lines, up to a limit.
// The REPL resets it before each entry so :calls shows one evaluation.
type CallLog struct {
	mu      sync.Mutex
	limit   int
	lines   []string
	dropped int
	partial strings.Builder
}

// NewCallLog creates a CallLog holding at most limit lines.
// A limit of zero or less keeps every line.
func NewCallLog(limit int) *CallLog {
	return &CallLog{limit: limit}
}

func (c *CallLog) Log(values ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partial.WriteString(joinValues(values))
}

func (c *CallLog) LogLine(values ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	line := strings.TrimPrefix(c.partial.String()+joinValues(values), "[DEBUG] ")
	c.partial.Reset()

	c.lines = append(c.lines, line)
	if c.limit > 0 && len(c.lines) > c.limit {
		c.dropped += len(c.lines) - c.limit
		c.lines = c.lines[len(c.lines)-c.limit:]
	}
}

// Lines returns the kept lines, oldest first, and how many older lines
// were dropped to stay within the limit.
func (c *CallLog) Lines() ([]string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out, c.dropped
}

// Reset forgets every line.
func (c *CallLog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = c.lines[:0]
	c.dropped = 0
	c.partial.Reset()
}

// teeLogger sends every line to each of its loggers.
type teeLogger []Logger

func (t teeLogger) Log(values ...any) {
	for _, l := range t {
		l.Log(values...)
	}
}

func (t teeLogger) LogLine(values ...any) {
	for _, l := range t {
		l.LogLine(values...)
	}
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
