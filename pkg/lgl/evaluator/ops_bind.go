package evaluator

import (
	"fmt"

	"github.com/sambeau/lgl/pkg/lgl/ast"
)

func evalSequence(stack *Stack, args []ast.Node) Object {
	var result Object = NULL
	for _, expr := range args {
		result = Eval(expr, stack)
		if isError(result) {
			return result
		}
	}
	return result
}

// evalSet always writes the top frame, even when the name is bound globally.
func evalSet(stack *Stack, args []ast.Node) Object {
	name, ok := ast.Name(args[0])
	if !ok {
		return newNameError("set", args[0])
	}
	val := Eval(args[1], stack)
	if isError(val) {
		return val
	}
	return stack.Set(name, val)
}

func evalGet(stack *Stack, args []ast.Node) Object {
	name, ok := ast.Name(args[0])
	if !ok {
		return newNameError("get", args[0])
	}
	val, ok := stack.Get(name)
	if !ok {
		return newUndefinedVariable(name, stack)
	}
	return val
}

// evalFunc stores the body unevaluated.
func evalFunc(stack *Stack, args []ast.Node) Object {
	params, ok := ast.Names(args[0])
	if !ok {
		return newParamsError(fmt.Sprintf("%s is not a list of names", args[0]))
	}
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if seen[p] {
			return newParamsError(fmt.Sprintf("parameter %q appears more than once", p))
		}
		seen[p] = true
	}
	return &Function{Params: params, Body: args[1]}
}
