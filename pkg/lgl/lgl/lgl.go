// Package lgl provides a public API for embedding the LGL evaluator.
//
// Basic usage:
//
//	result, err := lgl.RunString(`["add", 2, 3]`)
//	fmt.Println(result.Inspect()) // 5
//
// With tracing and debug output:
//
//	rec := trace.NewRecorder(trace.DefaultRecorderConfig())
//	result, err := lgl.RunFile("prog.gsc",
//	    lgl.WithTracer(rec),
//	    lgl.WithLogger(lgl.WriterLogger(os.Stderr)),
//	)
//	trace.WriteFile("trace.log", rec.Events(), "default")
package lgl

import (
	"github.com/sambeau/lgl/pkg/lgl/ast"
	"github.com/sambeau/lgl/pkg/lgl/evaluator"
	"github.com/sambeau/lgl/pkg/lgl/trace"
)

// Version is the current LGL version
const Version = "0.1.0"

// Option configures a Session
type Option func(*config)

type config struct {
	maxDepth int
	logger   Logger
	recorder *trace.Recorder
}

func newConfig(opts []Option) *config {
	c := &config{maxDepth: evaluator.DefaultMaxDepth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithMaxDepth bounds nested calls. Zero means unbounded.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		c.maxDepth = n
	}
}

// WithLogger sends [DEBUG] call entry and exit lines to l.
func WithLogger(l Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithTracer records a start and a stop event around every call.
// A nil recorder disables tracing.
func WithTracer(r *trace.Recorder) Option {
	return func(c *config) {
		c.recorder = r
	}
}

// Session is one run of the evaluator. Bindings made by one Eval are seen
// by the next, so a REPL or watch loop keeps a Session per program.
type Session struct {
	stack    *evaluator.Stack
	recorder *trace.Recorder
}

// NewSession creates a Session with an empty global frame.
func NewSession(opts ...Option) *Session {
	c := newConfig(opts)

	stack := evaluator.NewStack()
	stack.MaxDepth = c.maxDepth
	stack.Logger = c.logger
	// a nil *Recorder must not become a non-nil Tracer
	if c.recorder != nil {
		stack.Tracer = c.recorder
	}

	return &Session{stack: stack, recorder: c.recorder}
}

// Eval evaluates a decoded program.
func (s *Session) Eval(node ast.Node) (evaluator.Object, error) {
	return evaluator.Run(node, s.stack)
}

// EvalString decodes a JSON program and evaluates it.
func (s *Session) EvalString(src string) (evaluator.Object, error) {
	node, err := ast.Parse([]byte(src))
	if err != nil {
		return nil, err
	}
	return s.Eval(node)
}

// EvalFile loads a JSON or YAML program from path and evaluates it.
func (s *Session) EvalFile(path string) (evaluator.Object, error) {
	node, err := ast.Load(path)
	if err != nil {
		return nil, err
	}
	return s.Eval(node)
}

// Names returns the global names, sorted.
func (s *Session) Names() []string {
	return s.stack.Global().Names()
}

// Lookup returns the global binding for name.
func (s *Session) Lookup(name string) (evaluator.Object, bool) {
	return s.stack.Global().Get(name)
}

// AttachLogger adds l to the loggers receiving [DEBUG] call lines,
// alongside any logger given with WithLogger.
func (s *Session) AttachLogger(l Logger) {
	switch cur := s.stack.Logger.(type) {
	case nil:
		s.stack.Logger = l
	case teeLogger:
		s.stack.Logger = append(cur, l)
	default:
		s.stack.Logger = teeLogger{cur, l}
	}
}

// Reset discards all global bindings.
func (s *Session) Reset() {
	stack := evaluator.NewStack()
	stack.MaxDepth = s.stack.MaxDepth
	stack.Logger = s.stack.Logger
	stack.Tracer = s.stack.Tracer
	s.stack = stack
}

// Recorder returns the trace recorder, or nil when tracing is off.
func (s *Session) Recorder() *trace.Recorder {
	return s.recorder
}

// Run evaluates a decoded program in a fresh Session.
func Run(node ast.Node, opts ...Option) (evaluator.Object, error) {
	return NewSession(opts...).Eval(node)
}

// RunString evaluates a JSON program in a fresh Session.
func RunString(src string, opts ...Option) (evaluator.Object, error) {
	return NewSession(opts...).EvalString(src)
}

// RunFile evaluates a program file in a fresh Session.
func RunFile(path string, opts ...Option) (evaluator.Object, error) {
	return NewSession(opts...).EvalFile(path)
}
