// eval_errors.go - Error creation helpers for the LGL evaluator
//
// All functions return *Error objects that handlers return directly.

package evaluator

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/sambeau/lgl/pkg/lgl/ast"
	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
)

// newStructuredError creates a structured error from the catalog.
func newStructuredError(code string, data map[string]any) *Error {
	return fromLGLError(lerrors.New(code, data))
}

func fromLGLError(lerr *lerrors.LGLError) *Error {
	return &Error{
		Class:   lerr.Class,
		Code:    lerr.Code,
		Message: lerr.Message,
		Hints:   lerr.Hints,
		Data:    lerr.Data,
	}
}

// fromGoError wraps an error returned by a collaborator such as the tracer.
func fromGoError(err error) *Error {
	var lerr *lerrors.LGLError
	if stderrors.As(err, &lerr) {
		return fromLGLError(lerr)
	}
	return &Error{Class: lerrors.ClassIO, Message: err.Error()}
}

// newArityError creates an arity error for an operation.
func newArityError(op string, got int, want string) *Error {
	return newStructuredError(lerrors.CodeOperationArity, map[string]any{
		"Function": op,
		"Got":      got,
		"Want":     want,
	})
}

// newArityErrorFromArity creates an arity error from an entry's Arity.
func newArityErrorFromArity(op, arity string, got int) *Error {
	if least, ok := strings.CutSuffix(arity, "+"); ok {
		return newArityError(op, got, least+" or more")
	}
	return newArityError(op, got, arity)
}

func newUnknownOperation(name string) *Error {
	return fromLGLError(lerrors.NewUnknownOperation(name, OperationNames()))
}

func newUndefinedVariable(name string, stack *Stack) *Error {
	return fromLGLError(lerrors.NewUndefinedVariable(name, stack.VisibleNames()))
}

// newNameError reports an argument that had to be a string literal naming a variable.
func newNameError(op string, got ast.Node) *Error {
	return newStructuredError(lerrors.CodeNameLiteral, map[string]any{
		"Function": op,
		"Got":      got.String(),
	})
}

func newOperandError(op string, left, right Object) *Error {
	return newStructuredError(lerrors.CodeOperandType, map[string]any{
		"Function": op,
		"Left":     typeName(left),
		"Right":    typeName(right),
	})
}

func newBooleanError(op string, got Object) *Error {
	return newStructuredError(lerrors.CodeBooleanOperand, map[string]any{
		"Function": op,
		"Got":      describe(got),
	})
}

func newNumberError(op string, got Object) *Error {
	return newStructuredError(lerrors.CodeNumberOperand, map[string]any{
		"Function": op,
		"Got":      typeName(got),
	})
}

func newParamsError(reason string) *Error {
	return newStructuredError(lerrors.CodeParameterList, map[string]any{"Reason": reason})
}

// describe renders a value with its type, quoting strings.
func describe(obj Object) string {
	switch obj := obj.(type) {
	case *String:
		return fmt.Sprintf("string %q", obj.Value)
	case *Integer, *Float:
		return fmt.Sprintf("%s %s", typeName(obj), obj.Inspect())
	default:
		return typeName(obj)
	}
}
