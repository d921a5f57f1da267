// Package errors provides structured error types for the LGL language.
//
// This package defines LGLError, a unified error type that can represent
// program decoding, evaluation and trace errors with metadata for display
// and programmatic handling. Every LGL failure is fatal to the run that
// produced it; the error value only describes what went wrong.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Program decoding errors
	ClassType      ErrorClass = "type"      // Type mismatches
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Variable not found
	ClassOperator  ErrorClass = "operator"  // Unknown or invalid operations
	ClassCall      ErrorClass = "call"      // Function call failures
	ClassTrace     ErrorClass = "trace"     // Trace log and trace id errors
	ClassIO        ErrorClass = "io"        // File operations
)

// Error codes for the conditions callers most often test for.
const (
	CodeUnknownOperation  = "OP-0001"
	CodeDivisionByZero    = "OP-0002"
	CodeIntegerOverflow   = "OP-0003"
	CodeOperationArity    = "ARITY-0001"
	CodeArityMismatch     = "ARITY-0002"
	CodeUndefinedVariable = "UNDEF-0001"
	CodeNotAFunction      = "CALL-0001"
	CodeRecursionLimit    = "CALL-0002"
	CodeBooleanOperand    = "TYPE-0001"
	CodeOperandType       = "TYPE-0002"
	CodeNameLiteral       = "TYPE-0003"
	CodeParameterList     = "TYPE-0004"
	CodeMalformedInfix    = "TYPE-0005"
	CodeNumberOperand     = "TYPE-0006"
	CodeInvalidProgram    = "PARSE-0001"
	CodeUnsupportedValue  = "PARSE-0002"
	CodeIntegerRange      = "PARSE-0003"
	CodeMalformedTrace    = "TRACE-0001"
	CodeIDPoolExhausted   = "TRACE-0002"
)

// LGLError represents any error from decoding, evaluation or trace handling.
type LGLError struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "TYPE-0001")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line    int            `json:"line"`            // 1-based line (0 if unknown)
	Column  int            `json:"column"`          // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`  // File path (if known)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *LGLError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *LGLError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		if e.Column > 0 {
			sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
		} else {
			sb.WriteString(fmt.Sprintf("line %d: ", e.Line))
		}
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *LGLError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassParse:
		sb.WriteString("Program error")
	case ClassTrace:
		sb.WriteString("Trace error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d", e.Line))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d\n  ", e.Line))
	} else {
		sb.WriteString(":\n  ")
	}

	if e.Code != "" {
		sb.WriteString("[")
		sb.WriteString(e.Code)
		sb.WriteString("] ")
	}
	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  hint: ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *LGLError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *LGLError) WithFile(file string) *LGLError {
	copy := *e
	copy.File = file
	return &copy
}

// WithLine returns a copy of the error with the line set.
func (e *LGLError) WithLine(line int) *LGLError {
	copy := *e
	copy.Line = line
	return &copy
}

// Is reports whether target is an *LGLError with the same code.
// This lets callers write errors.Is(err, errors.New(CodeArityMismatch, nil)).
func (e *LGLError) Is(target error) bool {
	t, ok := target.(*LGLError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// HasCode reports whether err is an *LGLError carrying the given code.
func HasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	lerr, ok := err.(*LGLError)
	if !ok {
		type unwrapper interface{ Unwrap() error }
		if u, ok := err.(unwrapper); ok {
			return HasCode(u.Unwrap(), code)
		}
		return false
	}
	return lerr.Code == code
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Program decoding
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "invalid program: {{.GoError}}",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unsupported value in program: {{.Type}}",
		Hints:    []string{"programs are built from numbers, strings, null, booleans and lists"},
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "integer {{.Literal}} is out of range",
		Hints:    []string{"integers must fit in 64 bits; write 1e20 for an approximate value"},
	},

	// Operations
	"OP-0001": {
		Class:    ClassOperator,
		Template: "unknown operation {{.Name}}",
		// Hint "Did you mean `X`?" added dynamically by fuzzy matching
	},
	"OP-0002": {
		Class:    ClassOperator,
		Template: "division by zero in `{{.Function}}`",
	},
	"OP-0003": {
		Class:    ClassOperator,
		Template: "integer overflow in `{{.Function}}`",
		Hints:    []string{"use a float operand, e.g. 2.0, for values beyond 64 bits"},
	},

	// Types
	"TYPE-0001": {
		Class:    ClassType,
		Template: "`{{.Function}}` expects 0 or 1, got {{.Got}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "`{{.Function}}` not supported between {{.Left}} and {{.Right}}",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "`{{.Function}}` expects a name string, got {{.Got}}",
		Hints:    []string{`["{{.Function}}", "name", ...]`},
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "invalid parameter list for `func`: {{.Reason}}",
		Hints:    []string{`["func", ["a", "b"], body]`},
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "malformed infix expression: {{.Reason}}",
		Hints:    []string{`[1, "+", 2, "*", 3]`},
	},
	"TYPE-0006": {
		Class:    ClassType,
		Template: "`{{.Function}}` expects a number, got {{.Got}}",
	},

	// Arity
	"ARITY-0001": {
		Class:    ClassArity,
		Template: "wrong number of arguments to `{{.Function}}`. got={{.Got}}, want={{.Want}}",
	},
	"ARITY-0002": {
		Class:    ClassArity,
		Template: "`{{.Function}}` receives {{.Want}} argument(s), got {{.Got}}",
	},

	// Variables
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "name {{.Name}} not found",
	},

	// Calls
	"CALL-0001": {
		Class:    ClassCall,
		Template: "{{.Name}} is not a function (got {{.Type}})",
		Hints:    []string{`["set", "{{.Name}}", ["func", [params], body]]`},
	},
	"CALL-0002": {
		Class:    ClassCall,
		Template: "maximum call depth {{.Max}} exceeded calling `{{.Name}}`",
		Hints:    []string{"raise eval.max_depth in lgl.yaml, or set it to 0 for no limit"},
	},

	// Trace
	"TRACE-0001": {
		Class:    ClassTrace,
		Template: "malformed trace record: {{.Reason}}",
	},
	"TRACE-0002": {
		Class:    ClassTrace,
		Template: "trace id pool exhausted after {{.Issued}} ids",
	},

	// IO
	"IO-0001": {
		Class:    ClassIO,
		Template: "failed to read {{.Path}}: {{.GoError}}",
	},
	"IO-0002": {
		Class:    ClassIO,
		Template: "failed to write {{.Path}}: {{.GoError}}",
	},
}

// New creates an LGLError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *LGLError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &LGLError{
			Class:   ClassType,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &LGLError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithLine creates an LGLError with a line number.
func NewWithLine(code string, line int, data map[string]any) *LGLError {
	err := New(code, data)
	err.Line = line
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *LGLError {
	return &LGLError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// TypeName returns a lowercase type name for error messages.
// Converts "STRING" to "string", "INTEGER" to "integer", etc.
func TypeName(t string) string {
	return strings.ToLower(t)
}

// ============================================================================
// Fuzzy Matching - "Did you mean?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the best match if the distance is within the threshold, otherwise empty string.
// The threshold grows with the length of the input.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range sorted {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	// Short words (1-3): max 1 edit
	// Medium words (4-6): max 2 edits
	// Longer words (7+): max 3 edits
	threshold := 1
	if len(input) >= 4 && len(input) <= 6 {
		threshold = 2
	} else if len(input) >= 7 {
		threshold = 3
	}

	// Distance 0 is a case-only difference; still worth suggesting.
	if bestDistance < 0 || bestDistance > threshold || bestMatch == input {
		return ""
	}

	return bestMatch
}

// NewUnknownOperation creates an unknown operation error with optional fuzzy matching.
func NewUnknownOperation(name string, available []string) *LGLError {
	err := New(CodeUnknownOperation, map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, available); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}

// NewUndefinedVariable creates an undefined variable error with optional fuzzy matching.
func NewUndefinedVariable(name string, visible []string) *LGLError {
	err := New(CodeUndefinedVariable, map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, visible); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}
