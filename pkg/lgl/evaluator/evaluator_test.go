package evaluator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sambeau/lgl/pkg/lgl/ast"
	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
)

// Helper to decode and evaluate a JSON program on a fresh stack
func testEval(input string) Object {
	return testEvalWith(input, NewStack())
}

func testEvalWith(input string, stack *Stack) Object {
	node, err := ast.Parse([]byte(input))
	if err != nil {
		return &Error{Message: err.Error()}
	}
	return Eval(node, stack)
}

func testIntegerObject(t *testing.T, input string, obj Object, expected int64) {
	t.Helper()
	result, ok := obj.(*Integer)
	if !ok {
		t.Errorf("%s: expected INTEGER, got %T (%s)", input, obj, obj.Inspect())
		return
	}
	if result.Value != expected {
		t.Errorf("%s: expected %d, got %d", input, expected, result.Value)
	}
}

func testErrorCode(t *testing.T, input string, obj Object, code string) {
	t.Helper()
	errObj, ok := obj.(*Error)
	if !ok {
		t.Errorf("%s: expected error %s, got %T (%s)", input, code, obj, obj.Inspect())
		return
	}
	if errObj.Code != code {
		t.Errorf("%s: expected code %s, got %s (%s)", input, code, errObj.Code, errObj.Message)
	}
}

func TestEvalLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
		typ   ObjectType
	}{
		{`42`, "42", INTEGER_OBJ},
		{`-5`, "-5", INTEGER_OBJ},
		{`2.5`, "2.5", FLOAT_OBJ},
		{`3.0`, "3.0", FLOAT_OBJ},
		{`"hello"`, "hello", STRING_OBJ},
		{`"x"`, "x", STRING_OBJ},
		{`"NULL"`, "null", NULL_OBJ},
		{`null`, "null", NULL_OBJ},
		{`true`, "1", INTEGER_OBJ},
	}

	for _, tt := range tests {
		result := testEval(tt.input)
		if result.Type() != tt.typ {
			t.Errorf("%s: expected %s, got %s", tt.input, tt.typ, result.Type())
			continue
		}
		if result.Inspect() != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.input, tt.want, result.Inspect())
		}
	}
}

func TestTruthTables(t *testing.T) {
	tests := []struct {
		op   string
		a, b int64
		want int64
	}{
		{"and", 0, 0, 0}, {"and", 0, 1, 0}, {"and", 1, 0, 0}, {"and", 1, 1, 1},
		{"or", 0, 0, 0}, {"or", 0, 1, 1}, {"or", 1, 0, 1}, {"or", 1, 1, 1},
		{"xor", 0, 0, 0}, {"xor", 0, 1, 1}, {"xor", 1, 0, 1}, {"xor", 1, 1, 0},
	}

	for _, tt := range tests {
		prefix := fmt.Sprintf(`["%s", %d, %d]`, tt.op, tt.a, tt.b)
		testIntegerObject(t, prefix, testEval(prefix), tt.want)

		infix := fmt.Sprintf(`[%d, "%s", %d]`, tt.a, strings.ToUpper(tt.op), tt.b)
		testIntegerObject(t, infix, testEval(infix), tt.want)
	}
}

func TestBooleanOperandErrors(t *testing.T) {
	tests := []string{
		`["and", 2, 1]`,
		`["or", 1, "yes"]`,
		`[1, "XOR", null]`,
		`["and", 0, 5]`,
	}
	for _, input := range tests {
		testErrorCode(t, input, testEval(input), lerrors.CodeBooleanOperand)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  string
		typ   ObjectType
	}{
		{`["add", 2, 3]`, "5", INTEGER_OBJ},
		{`["subtract", 5, 3]`, "2", INTEGER_OBJ},
		{`["multiply", 4, 5]`, "20", INTEGER_OBJ},
		{`["divide", 10, 4]`, "2.5", FLOAT_OBJ},
		{`["divide", 8, 4]`, "2.0", FLOAT_OBJ},
		{`["abs", -7]`, "7", INTEGER_OBJ},
		{`["abs", -2.5]`, "2.5", FLOAT_OBJ},
		{`["abs", 3]`, "3", INTEGER_OBJ},
		{`["add", 1, 0.5]`, "1.5", FLOAT_OBJ},
		{`["add", "ab", "cd"]`, "abcd", STRING_OBJ},
		{`["multiply", 2.5, 2]`, "5.0", FLOAT_OBJ},
		{`["add", ["multiply", 2, 3], 1]`, "7", INTEGER_OBJ},
		{`["add", 9223372036854775806, 1]`, "9223372036854775807", INTEGER_OBJ},
		{`["subtract", -9223372036854775807, 1]`, "-9223372036854775808", INTEGER_OBJ},
		{`["multiply", -4611686018427387904, 2]`, "-9223372036854775808", INTEGER_OBJ},
		{`["multiply", -3, -3]`, "9", INTEGER_OBJ},
		{`["multiply", 0, -9223372036854775808]`, "0", INTEGER_OBJ},
		{`["abs", -9223372036854775807]`, "9223372036854775807", INTEGER_OBJ},
		{`["multiply", 9223372036854775807, 2.0]`, "1.8446744073709552e+19", FLOAT_OBJ},
	}

	for _, tt := range tests {
		result := testEval(tt.input)
		if result.Type() != tt.typ {
			t.Errorf("%s: expected %s, got %s (%s)", tt.input, tt.typ, result.Type(), result.Inspect())
			continue
		}
		if result.Inspect() != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.input, tt.want, result.Inspect())
		}
	}
}

func TestArithmeticErrors(t *testing.T) {
	tests := []struct {
		input string
		code  string
	}{
		{`["divide", 1, 0]`, lerrors.CodeDivisionByZero},
		{`[1, "/", 0.0]`, lerrors.CodeDivisionByZero},
		{`["add", 1, "x"]`, lerrors.CodeOperandType},
		{`["subtract", "a", "b"]`, lerrors.CodeOperandType},
		{`["multiply", null, 2]`, lerrors.CodeOperandType},
		{`["abs", "x"]`, lerrors.CodeNumberOperand},
		{`["add", 1]`, lerrors.CodeOperationArity},
		{`["abs", 1, 2]`, lerrors.CodeOperationArity},
		{`["sequence"]`, lerrors.CodeOperationArity},
		{`["add", 9223372036854775807, 1]`, lerrors.CodeIntegerOverflow},
		{`["subtract", -9223372036854775808, 1]`, lerrors.CodeIntegerOverflow},
		{`["multiply", 9223372036854775807, 2]`, lerrors.CodeIntegerOverflow},
		{`["multiply", -9223372036854775808, -1]`, lerrors.CodeIntegerOverflow},
		{`["multiply", 4611686018427387904, 2]`, lerrors.CodeIntegerOverflow},
		{`[9223372036854775807, "+", 1]`, lerrors.CodeIntegerOverflow},
		{`["abs", -9223372036854775808]`, lerrors.CodeIntegerOverflow},
	}

	for _, tt := range tests {
		testErrorCode(t, tt.input, testEval(tt.input), tt.code)
	}
}

func TestInfixFolding(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`[1, "+", 2]`, "3"},
		{`[1, "+", 2, "+", 3]`, "6"},
		{`[2, "*", 3, "+", 1]`, "7"},
		{`[1, "+", 2, "*", 3]`, "9"},
		{`[10, "-", 2, "-", 3]`, "5"},
		{`[9, "/", 2]`, "4.5"},
		{`[1, "AND", 1, "XOR", 1]`, "0"},
		{`[[1, "+", 1], "*", [2, "+", 2]]`, "8"},
		{`[2, "add", 3]`, "5"},
		{`[1, "and", 0]`, "0"},
		{`[6, "divide", 4, "multiply", 2]`, "3.0"},
		{`[1, "+", 2, "subtract", 4]`, "-1"},
		{`[0, "or", 1, "XOR", 1]`, "0"},
	}

	for _, tt := range tests {
		result := testEval(tt.input)
		if result.Inspect() != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.input, tt.want, result.Inspect())
		}
	}
}

func TestInfixMatchesNestedCalls(t *testing.T) {
	pairs := [][2]string{
		{`[2, "*", 3, "+", 1]`, `["add", ["multiply", 2, 3], 1]`},
		{`[8, "/", 2, "-", 1]`, `["subtract", ["divide", 8, 2], 1]`},
		{`[1, "OR", 0, "AND", 0]`, `["and", ["or", 1, 0], 0]`},
	}
	for _, p := range pairs {
		infix := testEval(p[0]).Inspect()
		nested := testEval(p[1]).Inspect()
		if infix != nested {
			t.Errorf("%s = %s, but %s = %s", p[0], infix, p[1], nested)
		}
	}
}

func TestSequenceSetGet(t *testing.T) {
	testIntegerObject(t, "sequence",
		testEval(`["sequence", ["set", "x", 1], ["set", "x", 2], ["get", "x"]]`), 2)

	stack := NewStack()
	testIntegerObject(t, "set", testEvalWith(`["set", "x", 10]`, stack), 10)
	testIntegerObject(t, "get", testEvalWith(`["get", "x"]`, stack), 10)

	// Text literals are never dereferenced.
	result := testEvalWith(`"x"`, stack)
	if s, ok := result.(*String); !ok || s.Value != "x" {
		t.Errorf(`"x" evaluated to %s`, result.Inspect())
	}
}

func TestBindingErrors(t *testing.T) {
	tests := []struct {
		input string
		code  string
	}{
		{`["get", "nope"]`, lerrors.CodeUndefinedVariable},
		{`["set", 1, 2]`, lerrors.CodeNameLiteral},
		{`["get", ["get", "x"]]`, lerrors.CodeNameLiteral},
		{`["func", [1], 2]`, lerrors.CodeParameterList},
		{`["func", ["a", "a"], 2]`, lerrors.CodeParameterList},
		{`["frobnicate", 1]`, lerrors.CodeUnknownOperation},
		{`[1, 2, 3]`, lerrors.CodeUnknownOperation},
		{`[]`, lerrors.CodeUnknownOperation},
	}

	for _, tt := range tests {
		testErrorCode(t, tt.input, testEval(tt.input), tt.code)
	}
}

func TestUnknownOperationHint(t *testing.T) {
	result := testEval(`["substract", 3, 1]`)
	errObj, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected error, got %s", result.Inspect())
	}
	if len(errObj.Hints) != 1 || errObj.Hints[0] != "Did you mean `subtract`?" {
		t.Errorf("hints = %v", errObj.Hints)
	}
}

func TestFunctionDefineAndCall(t *testing.T) {
	program := `["sequence",
		["set", "inc", ["func", ["n"], ["add", ["get", "n"], 1]]],
		["call", "inc", 3]
	]`
	testIntegerObject(t, "inc", testEval(program), 4)

	program = `["sequence",
		["set", "add_two", ["func", ["a", "b"], [["get", "a"], "+", ["get", "b"]]]],
		["call", "add_two", 3, 2]
	]`
	testIntegerObject(t, "add_two", testEval(program), 5)

	// A parameter list whose second name is an operation decodes as infix.
	program = `["sequence",
		["set", "f", ["func", ["x", "add", "y"], [["get", "x"], "*", ["get", "add"]]]],
		["call", "f", 2, 3, 4]
	]`
	testIntegerObject(t, "infix params", testEval(program), 6)

	program = `["sequence",
		["set", "seven", ["func", [], 7]],
		["call", "seven"]
	]`
	testIntegerObject(t, "seven", testEval(program), 7)
}

func TestFunctionInspect(t *testing.T) {
	result := testEval(`["func", ["n"], ["get", "n"]]`)
	want := `["func", ["n"], ["get", "n"]]`
	if result.Inspect() != want {
		t.Errorf("Inspect() = %s, want %s", result.Inspect(), want)
	}
}

func TestCallErrors(t *testing.T) {
	tests := []struct {
		input string
		code  string
	}{
		{`["sequence", ["set", "inc", ["func", ["n"], ["get", "n"]]], ["call", "inc", 1, 2]]`, lerrors.CodeArityMismatch},
		{`["sequence", ["set", "inc", ["func", ["n"], ["get", "n"]]], ["call", "inc"]]`, lerrors.CodeArityMismatch},
		{`["sequence", ["set", "x", 5], ["call", "x"]]`, lerrors.CodeNotAFunction},
		{`["call", "missing"]`, lerrors.CodeUndefinedVariable},
		{`["call", 5]`, lerrors.CodeNameLiteral},
		{`["call"]`, lerrors.CodeOperationArity},
	}

	for _, tt := range tests {
		testErrorCode(t, tt.input, testEval(tt.input), tt.code)
	}
}

func TestScopeVisibility(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, obj Object)
	}{
		{
			name: "callee locals invisible to caller",
			input: `["sequence",
				["set", "f", ["func", [], ["set", "local", 1]]],
				["call", "f"],
				["get", "local"]
			]`,
			check: func(t *testing.T, obj Object) { testErrorCode(t, "caller", obj, lerrors.CodeUndefinedVariable) },
		},
		{
			name: "caller locals invisible to callee",
			input: `["sequence",
				["set", "inner", ["func", [], ["get", "secret"]]],
				["set", "outer", ["func", ["secret"], ["call", "inner"]]],
				["call", "outer", 42]
			]`,
			check: func(t *testing.T, obj Object) { testErrorCode(t, "callee", obj, lerrors.CodeUndefinedVariable) },
		},
		{
			name: "globals visible at any depth",
			input: `["sequence",
				["set", "g", 9],
				["set", "inner", ["func", [], ["get", "g"]]],
				["set", "outer", ["func", [], ["call", "inner"]]],
				["call", "outer"]
			]`,
			check: func(t *testing.T, obj Object) { testIntegerObject(t, "global", obj, 9) },
		},
		{
			name: "set inside a call shadows the global",
			input: `["sequence",
				["set", "x", 1],
				["set", "f", ["func", [], ["sequence", ["set", "x", 2], ["get", "x"]]]],
				[["call", "f"], "*", 10, "+", ["get", "x"]]
			]`,
			check: func(t *testing.T, obj Object) { testIntegerObject(t, "shadow", obj, 21) },
		},
		{
			name: "arguments evaluated in caller scope",
			input: `["sequence",
				["set", "n", 100],
				["set", "id", ["func", ["n"], ["get", "n"]]],
				["call", "id", ["add", ["get", "n"], 1]]
			]`,
			check: func(t *testing.T, obj Object) { testIntegerObject(t, "args", obj, 101) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, testEval(tt.input))
		})
	}
}

func TestRecursion(t *testing.T) {
	// There are no conditionals, so only the depth limit ends this recursion.
	program := `["sequence",
		["set", "down", ["func", ["n"], ["call", "down", [["get", "n"], "-", 1]]]],
		["call", "down", 5]
	]`
	stack := NewStack()
	stack.MaxDepth = 50
	result := testEvalWith(program, stack)
	testErrorCode(t, "depth", result, lerrors.CodeRecursionLimit)
	if stack.Depth() != 0 {
		t.Errorf("stack depth after failure = %d, want 0", stack.Depth())
	}
}

func TestFrameNeverLeaksOnError(t *testing.T) {
	program := `["sequence",
		["set", "bad", ["func", ["x"], ["divide", ["get", "x"], 0]]],
		["call", "bad", 1]
	]`
	stack := NewStack()
	testErrorCode(t, "leak", testEvalWith(program, stack), lerrors.CodeDivisionByZero)
	if stack.Depth() != 0 {
		t.Fatalf("depth = %d after error, want 0", stack.Depth())
	}
	if _, ok := stack.Get("x"); ok {
		t.Error("parameter x leaked into the global frame")
	}
}

type fakeTracer struct {
	next   int
	events []string
	err    error
}

func (f *fakeTracer) Begin(function string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	f.events = append(f.events, fmt.Sprintf("%d,%s,start", f.next, function))
	return f.next, nil
}

func (f *fakeTracer) End(id int, function string) {
	f.events = append(f.events, fmt.Sprintf("%d,%s,stop", id, function))
}

func TestTracerBracketsCalls(t *testing.T) {
	program := `["sequence",
		["set", "inner", ["func", [], 1]],
		["set", "outer", ["func", ["v"], ["call", "inner"]]],
		["call", "outer", ["call", "inner"]]
	]`
	tracer := &fakeTracer{}
	stack := NewStack()
	stack.Tracer = tracer
	testIntegerObject(t, "traced", testEvalWith(program, stack), 1)

	want := []string{
		"1,outer,start",
		"2,inner,start",
		"2,inner,stop",
		"3,inner,start",
		"3,inner,stop",
		"1,outer,stop",
	}
	if strings.Join(tracer.events, "\n") != strings.Join(want, "\n") {
		t.Errorf("events =\n%s\nwant\n%s", strings.Join(tracer.events, "\n"), strings.Join(want, "\n"))
	}
}

func TestTracerError(t *testing.T) {
	stack := NewStack()
	stack.Tracer = &fakeTracer{err: lerrors.New(lerrors.CodeIDPoolExhausted, map[string]any{"Issued": 3})}
	result := testEvalWith(`["sequence", ["set", "f", ["func", [], 1]], ["call", "f"]]`, stack)
	testErrorCode(t, "tracer", result, lerrors.CodeIDPoolExhausted)
}

type lineLogger struct{ lines []string }

func (l *lineLogger) Log(values ...any) {}
func (l *lineLogger) LogLine(values ...any) {
	l.lines = append(l.lines, fmt.Sprintln(values...))
}

func TestDebugLogging(t *testing.T) {
	logger := &lineLogger{}
	stack := NewStack()
	stack.Logger = logger
	testEvalWith(`["sequence", ["set", "f", ["func", [], 1]], ["call", "f"]]`, stack)

	if len(logger.lines) != 2 {
		t.Fatalf("got %d lines: %v", len(logger.lines), logger.lines)
	}
	if !strings.HasPrefix(logger.lines[0], "[DEBUG] call f depth=1") {
		t.Errorf("line 0 = %q", logger.lines[0])
	}
	if !strings.HasPrefix(logger.lines[1], "[DEBUG] return f depth=1 value=1") {
		t.Errorf("line 1 = %q", logger.lines[1])
	}
}

func TestRun(t *testing.T) {
	node, err := ast.Parse([]byte(`["get", "y"]`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Run(node, NewStack())
	if !lerrors.HasCode(err, lerrors.CodeUndefinedVariable) {
		t.Fatalf("Run error = %v", err)
	}

	node, _ = ast.Parse([]byte(`[1, "+", 1]`))
	obj, err := Run(node, NewStack())
	if err != nil {
		t.Fatal(err)
	}
	if obj.Inspect() != "2" {
		t.Errorf("Run = %s", obj.Inspect())
	}
}

func TestStackPopDiscipline(t *testing.T) {
	stack := NewStack()
	frame := NewEnvironment()
	stack.Push(frame)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("popping a frame that is not on top should panic")
			}
		}()
		stack.Pop(NewEnvironment())
	}()

	stack.Pop(frame)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("popping the global frame should panic")
			}
		}()
		stack.Pop(stack.Global())
	}()
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"and", "or", "xor", "add", "subtract", "multiply", "divide",
		"abs", "sequence", "set", "get", "func", "call", "+", "-", "*", "/", "AND", "OR", "XOR"} {
		if _, ok := LookupOperation(name); !ok {
			t.Errorf("operation %q missing", name)
		}
	}
	for _, sym := range ast.InfixSymbols {
		entry, _ := LookupOperation(sym)
		if entry.Apply == nil {
			t.Errorf("infix symbol %q has no Apply", sym)
		}
	}
	if len(DescribeOperations()) != len(OperationNames()) {
		t.Error("DescribeOperations and OperationNames disagree")
	}
}

func TestCheckArity(t *testing.T) {
	tests := []struct {
		arity string
		got   int
		want  bool
	}{
		{"1", 1, true},
		{"1", 2, false},
		{"1+", 0, false},
		{"1+", 5, true},
		{"2", 2, true},
		{"0-1", 1, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		if got := checkArity(tt.arity, tt.got); got != tt.want {
			t.Errorf("checkArity(%q, %d) = %v, want %v", tt.arity, tt.got, got, tt.want)
		}
	}

	result := testEval(`["sequence"]`)
	errObj, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected error, got %s", result.Inspect())
	}
	if !strings.Contains(errObj.Message, "want=1 or more") {
		t.Errorf("message = %q", errObj.Message)
	}
}
