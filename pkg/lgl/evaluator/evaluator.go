// Package evaluator interprets LGL syntax trees.
//
// Evaluation is a recursive walk over ast nodes against a Stack of frames.
// Failures travel upward as *Error objects; Run converts them into
// *errors.LGLError values for callers outside the package.
package evaluator

import (
	"fmt"

	"github.com/sambeau/lgl/pkg/lgl/ast"
	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
)

// Eval evaluates node against stack.
func Eval(node ast.Node, stack *Stack) Object {
	switch node := node.(type) {
	case *ast.Literal:
		return evalLiteral(node)
	case *ast.Infix:
		return evalInfix(node, stack)
	case *ast.Form:
		return evalForm(node, stack)
	case *ast.List:
		if len(node.Elements) == 0 {
			return newUnknownOperation("[]")
		}
		return newUnknownOperation(node.Elements[0].String())
	case nil:
		return NULL
	}
	return newStructuredError(lerrors.CodeUnsupportedValue, map[string]any{"Type": fmt.Sprintf("%T", node)})
}

// evalLiteral never treats text as a variable reference; only get does lookups.
func evalLiteral(lit *ast.Literal) Object {
	switch v := lit.Value.(type) {
	case int64:
		return &Integer{Value: v}
	case float64:
		return &Float{Value: v}
	case string:
		if v == "NULL" {
			return NULL
		}
		return &String{Value: v}
	case nil:
		return NULL
	}
	return newStructuredError(lerrors.CodeUnsupportedValue, map[string]any{"Type": fmt.Sprintf("%T", lit.Value)})
}

func evalForm(form *ast.Form, stack *Stack) Object {
	entry, ok := operations.Get(form.Op)
	if !ok {
		return newUnknownOperation(form.Op)
	}
	if !checkArity(entry.Arity, len(form.Args)) {
		return newArityErrorFromArity(form.Op, entry.Arity, len(form.Args))
	}
	return entry.Fn(stack, form.Args)
}

// evalInfix folds strictly left to right with no precedence:
// [2, "*", 3, "+", 1] is ["add", ["multiply", 2, 3], 1].
func evalInfix(in *ast.Infix, stack *Stack) Object {
	result := Eval(in.Operands[0], stack)
	if isError(result) {
		return result
	}
	for i, op := range in.Operators {
		entry, ok := operations.Get(op)
		if !ok || entry.Apply == nil {
			return newUnknownOperation(op)
		}
		right := Eval(in.Operands[i+1], stack)
		if isError(right) {
			return right
		}
		result = entry.Apply(result, right)
		if isError(result) {
			return result
		}
	}
	return result
}

// Run evaluates node and returns a Go error for any failure.
func Run(node ast.Node, stack *Stack) (Object, error) {
	result := Eval(node, stack)
	if errObj, ok := result.(*Error); ok {
		return nil, errObj.ToLGLError()
	}
	return result, nil
}
