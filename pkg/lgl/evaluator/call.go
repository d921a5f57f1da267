package evaluator

import (
	"strconv"

	"github.com/sambeau/lgl/pkg/lgl/ast"
	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
)

// evalCall handles ["call", name, args...]. When the stack has a Tracer,
// the whole call, argument evaluation included, sits between its start
// and stop records.
func evalCall(stack *Stack, args []ast.Node) Object {
	name, ok := ast.Name(args[0])
	if !ok {
		return newNameError("call", args[0])
	}

	if stack.Tracer == nil {
		return callFunction(stack, name, args[1:])
	}

	id, err := stack.Tracer.Begin(name)
	if err != nil {
		return fromGoError(err)
	}
	result := callFunction(stack, name, args[1:])
	stack.Tracer.End(id, name)
	return result
}

func callFunction(stack *Stack, name string, argExprs []ast.Node) Object {
	// Arguments are evaluated in the caller's scope.
	argv := make([]Object, 0, len(argExprs))
	for _, expr := range argExprs {
		val := Eval(expr, stack)
		if isError(val) {
			return val
		}
		argv = append(argv, val)
	}

	val, ok := stack.Get(name)
	if !ok {
		return newUndefinedVariable(name, stack)
	}
	fn, ok := val.(*Function)
	if !ok {
		return newStructuredError(lerrors.CodeNotAFunction, map[string]any{
			"Name": name,
			"Type": typeName(val),
		})
	}

	if len(argv) != len(fn.Params) {
		return newStructuredError(lerrors.CodeArityMismatch, map[string]any{
			"Function": name,
			"Want":     len(fn.Params),
			"Got":      len(argv),
		})
	}

	if stack.MaxDepth > 0 && stack.Depth() >= stack.MaxDepth {
		return newStructuredError(lerrors.CodeRecursionLimit, map[string]any{
			"Name": name,
			"Max":  stack.MaxDepth,
		})
	}

	frame := NewEnvironment()
	for i, param := range fn.Params {
		frame.Set(param, argv[i])
	}

	stack.Push(frame)
	defer stack.Pop(frame)

	stack.debug("call", name, "depth="+strconv.Itoa(stack.Depth()))
	result := Eval(fn.Body, stack)
	if stack.Logger != nil {
		if isError(result) {
			stack.debug("fail", name, "depth="+strconv.Itoa(stack.Depth()))
		} else {
			stack.debug("return", name, "depth="+strconv.Itoa(stack.Depth()), "value="+result.Inspect())
		}
	}
	return result
}
