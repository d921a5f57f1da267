// Package ast defines the list-structured syntax tree of LGL programs.
//
// A program is a nested structure of numbers, strings, null and lists.
// Lists are classified once, at decode time, into forms (operation calls),
// infix chains and plain lists, so the evaluator can switch on a closed
// set of node types.
package ast

import (
	"strconv"
	"strings"
)

// Node represents any node in the AST.
// The unexported marker method closes the set of implementations.
type Node interface {
	String() string
	node()
}

// Literal is a self-evaluating value: int64, float64, string or nil.
type Literal struct {
	Value any
}

func (l *Literal) node() {}

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "null"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return FormatFloat(v)
	case string:
		return strconv.Quote(v)
	default:
		return "?"
	}
}

// Form is a list whose first element names an operation: ["add", 1, 2].
type Form struct {
	Op   string
	Args []Node
}

func (f *Form) node() {}

func (f *Form) String() string {
	parts := make([]string, 0, len(f.Args)+1)
	parts = append(parts, strconv.Quote(f.Op))
	for _, a := range f.Args {
		parts = append(parts, a.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Infix is an operand/operator alternation: [1, "+", 2, "*", 3].
// len(Operands) == len(Operators)+1 always holds.
type Infix struct {
	Operands  []Node
	Operators []string
}

func (in *Infix) node() {}

func (in *Infix) String() string {
	parts := make([]string, 0, len(in.Operands)+len(in.Operators))
	for i, operand := range in.Operands {
		if i > 0 {
			parts = append(parts, strconv.Quote(in.Operators[i-1]))
		}
		parts = append(parts, operand.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// List is any other sequence, such as [1, 2] or [].
type List struct {
	Elements []Node
}

func (l *List) node() {}

func (l *List) String() string {
	parts := make([]string, 0, len(l.Elements))
	for _, e := range l.Elements {
		parts = append(parts, e.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// InfixSymbols lists the operator names accepted in infix position:
// the symbol aliases and the binary operations they stand for.
var InfixSymbols = []string{
	"+", "-", "*", "/", "AND", "OR", "XOR",
	"add", "subtract", "multiply", "divide", "and", "or", "xor",
}

// IsInfixSymbol reports whether s may appear in an infix operator position.
func IsInfixSymbol(s string) bool {
	for _, sym := range InfixSymbols {
		if s == sym {
			return true
		}
	}
	return false
}

// Name returns the text of a string literal.
func Name(n Node) (string, bool) {
	lit, ok := n.(*Literal)
	if !ok {
		return "", false
	}
	s, ok := lit.Value.(string)
	return s, ok
}

// Names returns the strings of a parameter list.
// ["a", "b"] decodes as a Form whose Op is "a" and ["x", "add", "y"] as an
// Infix, so a Form, an Infix or a List of string literals is accepted.
func Names(n Node) ([]string, bool) {
	switch n := n.(type) {
	case *Infix:
		names := make([]string, 0, len(n.Operands)+len(n.Operators))
		for i, e := range n.Operands {
			if i > 0 {
				names = append(names, n.Operators[i-1])
			}
			s, ok := Name(e)
			if !ok {
				return nil, false
			}
			names = append(names, s)
		}
		return names, true
	case *List:
		names := make([]string, 0, len(n.Elements))
		for _, e := range n.Elements {
			s, ok := Name(e)
			if !ok {
				return nil, false
			}
			names = append(names, s)
		}
		return names, true
	case *Form:
		names := make([]string, 0, len(n.Args)+1)
		names = append(names, n.Op)
		for _, e := range n.Args {
			s, ok := Name(e)
			if !ok {
				return nil, false
			}
			names = append(names, s)
		}
		return names, true
	}
	return nil, false
}

// FormatFloat renders f so that it always reads back as a float.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
