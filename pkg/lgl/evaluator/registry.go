package evaluator

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sambeau/lgl/pkg/lgl/ast"
)

// OperationFunc is the signature for all operation handlers.
// Arguments arrive unevaluated; each handler decides when to evaluate them.
type OperationFunc func(stack *Stack, args []ast.Node) Object

// BinaryFunc combines two already-evaluated operands.
type BinaryFunc func(left, right Object) Object

// OperationEntry defines a single operation with its implementation and metadata.
type OperationEntry struct {
	Fn          OperationFunc
	Apply       BinaryFunc // set for operations usable in infix position
	Arity       string     // exact ("2") or minimum ("1+")
	Description string
}

// Registry maps operation names to their entries.
type Registry map[string]OperationEntry

// Names returns a sorted list of operation names in this registry.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the entry for the given name, if it exists.
func (r Registry) Get(name string) (OperationEntry, bool) {
	entry, ok := r[name]
	return entry, ok
}

// OperationInfo describes an operation for help output.
type OperationInfo struct {
	Name        string
	Arity       string
	Description string
}

// operations is populated once in init and never written again.
var operations Registry

// infixAliases maps each infix symbol to the operation it stands for.
var infixAliases = map[string]string{
	"+":   "add",
	"-":   "subtract",
	"*":   "multiply",
	"/":   "divide",
	"AND": "and",
	"OR":  "or",
	"XOR": "xor",
}

func init() {
	operations = Registry{
		"and":      binaryOperation("and", "logical and of two 0/1 values", logicAnd),
		"or":       binaryOperation("or", "logical or of two 0/1 values", logicOr),
		"xor":      binaryOperation("xor", "logical exclusive or of two 0/1 values", logicXor),
		"add":      binaryOperation("add", "sum of two numbers, or two strings joined", addValues),
		"subtract": binaryOperation("subtract", "difference of two numbers", subtractValues),
		"multiply": binaryOperation("multiply", "product of two numbers", multiplyValues),
		"divide":   binaryOperation("divide", "real quotient of two numbers", divideValues),
		"abs": {
			Fn:          evalAbs,
			Arity:       "1",
			Description: "magnitude of a number",
		},
		"sequence": {
			Fn:          evalSequence,
			Arity:       "1+",
			Description: "evaluate each expression in order, return the last",
		},
		"set": {
			Fn:          evalSet,
			Arity:       "2",
			Description: "bind a name in the current frame, return the value",
		},
		"get": {
			Fn:          evalGet,
			Arity:       "1",
			Description: "value of a name in the current or global frame",
		},
		"func": {
			Fn:          evalFunc,
			Arity:       "2",
			Description: "function from a parameter list and a body",
		},
		"call": {
			Fn:          evalCall,
			Arity:       "1+",
			Description: "call a named function with arguments",
		},
	}
	for alias, name := range infixAliases {
		operations[alias] = operations[name]
	}
}

// binaryOperation builds an entry that evaluates both arguments, then applies fn.
func binaryOperation(name, description string, fn func(op string, left, right Object) Object) OperationEntry {
	apply := func(left, right Object) Object {
		return fn(name, left, right)
	}
	return OperationEntry{
		Fn: func(stack *Stack, args []ast.Node) Object {
			left := Eval(args[0], stack)
			if isError(left) {
				return left
			}
			right := Eval(args[1], stack)
			if isError(right) {
				return right
			}
			return apply(left, right)
		},
		Apply:       apply,
		Arity:       "2",
		Description: description,
	}
}

// LookupOperation returns the registry entry for name.
func LookupOperation(name string) (OperationEntry, bool) {
	return operations.Get(name)
}

// OperationNames returns every operation name, infix aliases included, sorted.
func OperationNames() []string {
	return operations.Names()
}

// DescribeOperations returns the operations sorted by name.
func DescribeOperations() []OperationInfo {
	infos := make([]OperationInfo, 0, len(operations))
	for _, name := range operations.Names() {
		entry := operations[name]
		infos = append(infos, OperationInfo{
			Name:        name,
			Arity:       entry.Arity,
			Description: entry.Description,
		})
	}
	return infos
}

// checkArity reports whether got satisfies an exact ("2") or minimum ("1+") arity.
func checkArity(arity string, got int) bool {
	if least, ok := strings.CutSuffix(arity, "+"); ok {
		n, err := strconv.Atoi(least)
		return err == nil && got >= n
	}
	n, err := strconv.Atoi(arity)
	return err == nil && got == n
}
