package evaluator

// truthValue accepts exactly the numbers 0 and 1.
func truthValue(obj Object) (bool, bool) {
	switch obj := obj.(type) {
	case *Integer:
		switch obj.Value {
		case 0:
			return false, true
		case 1:
			return true, true
		}
	case *Float:
		switch obj.Value {
		case 0:
			return false, true
		case 1:
			return true, true
		}
	}
	return false, false
}

// logic validates both operands before combining them. There is no short-circuit.
func logic(op string, left, right Object, combine func(a, b bool) bool) Object {
	l, ok := truthValue(left)
	if !ok {
		return newBooleanError(op, left)
	}
	r, ok := truthValue(right)
	if !ok {
		return newBooleanError(op, right)
	}
	return nativeBoolToInteger(combine(l, r))
}

func logicAnd(op string, left, right Object) Object {
	return logic(op, left, right, func(a, b bool) bool { return a && b })
}

func logicOr(op string, left, right Object) Object {
	return logic(op, left, right, func(a, b bool) bool { return a || b })
}

func logicXor(op string, left, right Object) Object {
	return logic(op, left, right, func(a, b bool) bool { return a != b })
}
