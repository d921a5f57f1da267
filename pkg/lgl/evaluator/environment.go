package evaluator

import (
	"fmt"
	"sort"
)

// DefaultMaxDepth bounds nested calls so runaway recursion fails cleanly.
const DefaultMaxDepth = 10000

// Environment represents one frame of variable bindings
type Environment struct {
	store map[string]Object
}

// NewEnvironment creates a new, empty frame
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

// Get retrieves a value from this frame only
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	return value, ok
}

// Set stores a value in this frame
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Names returns the names bound in this frame, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bindings in this frame.
func (e *Environment) Len() int { return len(e.store) }

// Stack is the environment stack of one run.
//
// Frame 0 is the global frame; it is created by NewStack and never popped.
// Lookups see only the top frame and the global frame, so a function body
// never sees the locals of the function that called it.
type Stack struct {
	frames []*Environment

	// Logger receives [DEBUG] call entry and exit lines. Nil disables them.
	Logger Logger
	// Tracer, when set, records a start and a stop event around every call.
	Tracer Tracer
	// MaxDepth bounds nested calls. Zero means unbounded.
	MaxDepth int
}

// NewStack creates a stack holding only the global frame.
func NewStack() *Stack {
	return &Stack{
		frames:   []*Environment{NewEnvironment()},
		MaxDepth: DefaultMaxDepth,
	}
}

// Global returns frame 0.
func (s *Stack) Global() *Environment { return s.frames[0] }

// Top returns the innermost frame.
func (s *Stack) Top() *Environment { return s.frames[len(s.frames)-1] }

// Depth returns the number of call frames above the global frame.
func (s *Stack) Depth() int { return len(s.frames) - 1 }

// Push makes env the top frame.
func (s *Stack) Push(env *Environment) {
	s.frames = append(s.frames, env)
}

// Pop removes env, which must be the current top frame.
// Popping the global frame or popping out of order is a programming error.
func (s *Stack) Pop(env *Environment) {
	if len(s.frames) == 1 {
		panic("evaluator: pop of global frame")
	}
	if s.Top() != env {
		panic(fmt.Sprintf("evaluator: pop of frame that is not on top (depth %d)", s.Depth()))
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
}

// Get resolves name in the top frame, then in the global frame.
func (s *Stack) Get(name string) (Object, bool) {
	if val, ok := s.Top().Get(name); ok {
		return val, true
	}
	return s.Global().Get(name)
}

// Set binds name in the top frame, shadowing any global of the same name.
func (s *Stack) Set(name string, val Object) Object {
	return s.Top().Set(name, val)
}

// VisibleNames returns the names Get can resolve, sorted and de-duplicated.
// Used for fuzzy matching in error messages and REPL completion.
func (s *Stack) VisibleNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, env := range []*Environment{s.Top(), s.Global()} {
		for name := range env.store {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func (s *Stack) debug(values ...any) {
	if s.Logger == nil {
		return
	}
	s.Logger.LogLine(append([]any{"[DEBUG]"}, values...)...)
}
