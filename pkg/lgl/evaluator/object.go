package evaluator

import (
	"strconv"
	"strings"

	"github.com/sambeau/lgl/pkg/lgl/ast"
	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
)

// ObjectType represents the type of objects in our language
type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	FLOAT_OBJ    = "FLOAT"
	STRING_OBJ   = "STRING"
	NULL_OBJ     = "NULL"
	FUNCTION_OBJ = "FUNCTION"
	ERROR_OBJ    = "ERROR"
)

// Object represents all values in our language
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer represents integer objects. Booleans are the integers 0 and 1.
type Integer struct {
	Value int64
}

func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Type() ObjectType { return INTEGER_OBJ }

// Float represents floating-point objects
type Float struct {
	Value float64
}

func (f *Float) Inspect() string  { return ast.FormatFloat(f.Value) }
func (f *Float) Type() ObjectType { return FLOAT_OBJ }

// String represents string objects
type String struct {
	Value string
}

func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }

// Null represents null objects
type Null struct{}

func (n *Null) Inspect() string  { return "null" }
func (n *Null) Type() ObjectType { return NULL_OBJ }

// NULL is the single null value.
var NULL = &Null{}

var (
	TRUE  = &Integer{Value: 1}
	FALSE = &Integer{Value: 0}
)

// Function is a parameter list and an unevaluated body, produced by func.
// Functions capture nothing; their bodies see their own frame and the global frame.
type Function struct {
	Params []string
	Body   ast.Node
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = strconv.Quote(p)
	}
	return `["func", [` + strings.Join(params, ", ") + "], " + f.Body.String() + "]"
}

// Error carries a failure up through evaluation.
// Every handler checks sub-results with isError and returns the first error unchanged.
type Error struct {
	Message string
	Class   lerrors.ErrorClass
	Code    string
	Hints   []string
	Data    map[string]any
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR: " + e.Message }

// ToLGLError converts this Error to an LGLError for callers outside the evaluator.
func (e *Error) ToLGLError() *lerrors.LGLError {
	class := e.Class
	if class == "" {
		class = lerrors.ClassType
	}
	return &lerrors.LGLError{
		Class:   class,
		Code:    e.Code,
		Message: e.Message,
		Hints:   e.Hints,
		Data:    e.Data,
	}
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

func nativeBoolToInteger(b bool) *Integer {
	if b {
		return TRUE
	}
	return FALSE
}

// typeName returns the lowercase name used in error messages.
func typeName(obj Object) string {
	if obj == nil {
		return "null"
	}
	return lerrors.TypeName(string(obj.Type()))
}

// Logger receives debug output from the evaluator.
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

// Tracer brackets each function call with a start and a stop record.
// Begin returns the id that End must be given for the same call.
type Tracer interface {
	Begin(function string) (int, error)
	End(id int, function string)
}
