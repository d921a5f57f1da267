package evaluator

import (
	"math"
	"math/bits"

	"github.com/sambeau/lgl/pkg/lgl/ast"
	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
)

// toFloat returns the numeric value of an Integer or Float.
func toFloat(obj Object) (float64, bool) {
	switch obj := obj.(type) {
	case *Integer:
		return float64(obj.Value), true
	case *Float:
		return obj.Value, true
	}
	return 0, false
}

// arithmetic applies intOp when both operands are integers, floatOp when
// either is a float, and fails on anything else. intOp reports false when
// the result does not fit in an int64.
func arithmetic(op string, left, right Object, intOp func(a, b int64) (int64, bool), floatOp func(a, b float64) float64) Object {
	if l, ok := left.(*Integer); ok {
		if r, ok := right.(*Integer); ok {
			v, ok := intOp(l.Value, r.Value)
			if !ok {
				return newStructuredError(lerrors.CodeIntegerOverflow, map[string]any{"Function": op})
			}
			return &Integer{Value: v}
		}
	}
	l, lok := toFloat(left)
	r, rok := toFloat(right)
	if !lok || !rok {
		return newOperandError(op, left, right)
	}
	return &Float{Value: floatOp(l, r)}
}

func addInt(a, b int64) (int64, bool) {
	sum := a + b
	return sum, (a^sum)&(b^sum) >= 0
}

func subtractInt(a, b int64) (int64, bool) {
	diff := a - b
	return diff, (a^b)&(a^diff) >= 0
}

func multiplyInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	hi, lo := bits.Mul64(absUint(a), absUint(b))
	negative := (a < 0) != (b < 0)
	switch {
	case hi != 0:
		return 0, false
	case negative && lo == 1<<63:
		return math.MinInt64, true
	case lo >= 1<<63:
		return 0, false
	case negative:
		return -int64(lo), true
	}
	return int64(lo), true
}

func absUint(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

func addValues(op string, left, right Object) Object {
	if l, ok := left.(*String); ok {
		if r, ok := right.(*String); ok {
			return &String{Value: l.Value + r.Value}
		}
	}
	return arithmetic(op, left, right,
		addInt,
		func(a, b float64) float64 { return a + b })
}

func subtractValues(op string, left, right Object) Object {
	return arithmetic(op, left, right,
		subtractInt,
		func(a, b float64) float64 { return a - b })
}

func multiplyValues(op string, left, right Object) Object {
	return arithmetic(op, left, right,
		multiplyInt,
		func(a, b float64) float64 { return a * b })
}

// divideValues always produces a Float: 10 / 4 is 2.5.
func divideValues(op string, left, right Object) Object {
	l, lok := toFloat(left)
	r, rok := toFloat(right)
	if !lok || !rok {
		return newOperandError(op, left, right)
	}
	if r == 0 {
		return newStructuredError(lerrors.CodeDivisionByZero, map[string]any{"Function": op})
	}
	return &Float{Value: l / r}
}

func evalAbs(stack *Stack, args []ast.Node) Object {
	val := Eval(args[0], stack)
	if isError(val) {
		return val
	}
	switch val := val.(type) {
	case *Integer:
		if val.Value == math.MinInt64 {
			return newStructuredError(lerrors.CodeIntegerOverflow, map[string]any{"Function": "abs"})
		}
		if val.Value < 0 {
			return &Integer{Value: -val.Value}
		}
		return val
	case *Float:
		return &Float{Value: math.Abs(val.Value)}
	}
	return newNumberError("abs", val)
}
