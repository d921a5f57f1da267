package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestLGLError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *LGLError
		expected string
	}{
		{
			name:     "message only",
			err:      &LGLError{Message: "something went wrong"},
			expected: "something went wrong",
		},
		{
			name:     "with line and column",
			err:      &LGLError{Message: "bad value", Line: 5, Column: 10},
			expected: "line 5, column 10: bad value",
		},
		{
			name:     "with file",
			err:      &LGLError{Message: "invalid program", File: "prog.gsc", Line: 3},
			expected: "prog.gsc: line 3: invalid program",
		},
		{
			name: "with hints",
			err: &LGLError{
				Message: "unknown operation substract",
				Hints:   []string{"Did you mean `subtract`?"},
			},
			expected: "unknown operation substract\n  Did you mean `subtract`?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.String()
			if got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLGLError_PrettyString(t *testing.T) {
	tests := []struct {
		name     string
		err      *LGLError
		contains []string
	}{
		{
			name:     "parse error",
			err:      &LGLError{Class: ClassParse, Code: "PARSE-0001", Message: "invalid program: eof"},
			contains: []string{"Program error", "[PARSE-0001]", "invalid program: eof"},
		},
		{
			name:     "runtime error with file",
			err:      &LGLError{Class: ClassArity, Code: "ARITY-0002", Message: "wrong", File: "x.gsc"},
			contains: []string{"Runtime error", "in: x.gsc", "[ARITY-0002] wrong"},
		},
		{
			name:     "trace error with hint",
			err:      &LGLError{Class: ClassTrace, Message: "bad row", Hints: []string{"check the header"}},
			contains: []string{"Trace error", "hint: check the header"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.PrettyString()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("PrettyString() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestLGLError_ToJSON(t *testing.T) {
	err := New(CodeUndefinedVariable, map[string]any{"Name": "x"})

	data, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatalf("ToJSON() error: %v", jerr)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if decoded["class"] != "undefined" {
		t.Errorf("class = %v, want undefined", decoded["class"])
	}
	if decoded["code"] != "UNDEF-0001" {
		t.Errorf("code = %v, want UNDEF-0001", decoded["code"])
	}
	if decoded["message"] != "name x not found" {
		t.Errorf("message = %v", decoded["message"])
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		data      map[string]any
		wantClass ErrorClass
		wantMsg   string
		wantHints int
	}{
		{
			name:      "arity mismatch",
			code:      CodeArityMismatch,
			data:      map[string]any{"Function": "sq", "Want": 1, "Got": 2},
			wantClass: ClassArity,
			wantMsg:   "`sq` receives 1 argument(s), got 2",
		},
		{
			name:      "division by zero",
			code:      CodeDivisionByZero,
			data:      map[string]any{"Function": "divide"},
			wantClass: ClassOperator,
			wantMsg:   "division by zero in `divide`",
		},
		{
			name:      "not a function has hint",
			code:      CodeNotAFunction,
			data:      map[string]any{"Name": "x", "Type": "integer"},
			wantClass: ClassCall,
			wantMsg:   "x is not a function (got integer)",
			wantHints: 1,
		},
		{
			name:      "unknown code falls back",
			code:      "NOPE-9999",
			data:      map[string]any{"message": "custom"},
			wantClass: ClassType,
			wantMsg:   "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.data)
			if err.Class != tt.wantClass {
				t.Errorf("Class = %q, want %q", err.Class, tt.wantClass)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if len(err.Hints) != tt.wantHints {
				t.Errorf("Hints = %v, want %d", err.Hints, tt.wantHints)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestCatalogCodesHaveClass(t *testing.T) {
	for code, def := range ErrorCatalog {
		if def.Class == "" {
			t.Errorf("%s has no class", code)
		}
		if def.Template == "" {
			t.Errorf("%s has no template", code)
		}
	}
}

func TestIsAndHasCode(t *testing.T) {
	err := New(CodeRecursionLimit, map[string]any{"Name": "f", "Max": 10})
	wrapped := fmt.Errorf("run: %w", err)

	if !stderrors.Is(wrapped, New(CodeRecursionLimit, nil)) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(wrapped, New(CodeNotAFunction, nil)) {
		t.Error("errors.Is should not match a different code")
	}
	if !HasCode(wrapped, CodeRecursionLimit) {
		t.Error("HasCode should see through wrapping")
	}
	if HasCode(nil, CodeRecursionLimit) {
		t.Error("HasCode(nil) should be false")
	}
}

func TestFindClosestMatch(t *testing.T) {
	candidates := []string{"add", "subtract", "multiply", "divide", "print", "set", "get"}

	tests := []struct {
		input string
		want  string
	}{
		{"substract", "subtract"},
		{"ad", "add"},
		{"multipy", "multiply"},
		{"Print", "print"},
		{"frobnicate", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := FindClosestMatch(tt.input, candidates)
			if got != tt.want {
				t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewUnknownOperation(t *testing.T) {
	err := NewUnknownOperation("substract", []string{"add", "subtract"})
	if err.Code != CodeUnknownOperation {
		t.Fatalf("Code = %q", err.Code)
	}
	if len(err.Hints) != 1 || err.Hints[0] != "Did you mean `subtract`?" {
		t.Errorf("Hints = %v", err.Hints)
	}

	err = NewUnknownOperation("zzz", []string{"add"})
	if len(err.Hints) != 0 {
		t.Errorf("expected no hints, got %v", err.Hints)
	}
}
