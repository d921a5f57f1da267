package ast

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
)

// Parse decodes a JSON program.
func Parse(src []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, syntaxError(src, err)
	}
	// A program is exactly one value.
	if _, err := dec.Token(); err != io.EOF {
		return nil, lerrors.New(lerrors.CodeInvalidProgram, map[string]any{
			"GoError": "unexpected data after program",
		})
	}
	return FromValue(raw)
}

// ParseYAML decodes a program written as YAML flow or block sequences.
func ParseYAML(src []byte) (Node, error) {
	var raw any
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, lerrors.New(lerrors.CodeInvalidProgram, map[string]any{"GoError": err.Error()})
	}
	return FromValue(raw)
}

// Load reads and decodes a program file.
// Files ending in .yaml or .yml are YAML, everything else is JSON.
func Load(path string) (Node, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, lerrors.New("IO-0001", map[string]any{"Path": path, "GoError": err.Error()})
	}

	var node Node
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		node, err = ParseYAML(src)
	default:
		node, err = Parse(src)
	}
	if err != nil {
		var lerr *lerrors.LGLError
		if stderrors.As(err, &lerr) {
			return nil, lerr.WithFile(path)
		}
		return nil, err
	}
	return node, nil
}

// FromValue converts a generic decoded value into a Node.
// Accepted values are the ones produced by encoding/json (with UseNumber)
// and gopkg.in/yaml.v3: numbers, strings, booleans, nil and slices.
func FromValue(v any) (Node, error) {
	switch v := v.(type) {
	case nil:
		return &Literal{Value: nil}, nil
	case bool:
		if v {
			return &Literal{Value: int64(1)}, nil
		}
		return &Literal{Value: int64(0)}, nil
	case string:
		return &Literal{Value: v}, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return &Literal{Value: i}, nil
		}
		if !strings.ContainsAny(v.String(), ".eE") {
			return nil, lerrors.New(lerrors.CodeIntegerRange, map[string]any{"Literal": v.String()})
		}
		f, err := v.Float64()
		if err != nil {
			return nil, lerrors.New(lerrors.CodeInvalidProgram, map[string]any{"GoError": err.Error()})
		}
		return &Literal{Value: f}, nil
	case int:
		return &Literal{Value: int64(v)}, nil
	case int64:
		return &Literal{Value: v}, nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, lerrors.New(lerrors.CodeIntegerRange, map[string]any{"Literal": strconv.FormatUint(v, 10)})
		}
		return &Literal{Value: int64(v)}, nil
	case float64:
		return &Literal{Value: v}, nil
	case []any:
		return fromSlice(v)
	default:
		return nil, lerrors.New(lerrors.CodeUnsupportedValue, map[string]any{"Type": typeLabel(v)})
	}
}

func fromSlice(items []any) (Node, error) {
	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		n, err := FromValue(item)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}

	if len(items) >= 3 {
		if sym, ok := items[1].(string); ok && IsInfixSymbol(sym) {
			return newInfix(nodes, items)
		}
	}

	if len(items) > 0 {
		if op, ok := items[0].(string); ok {
			return &Form{Op: op, Args: nodes[1:]}, nil
		}
	}

	return &List{Elements: nodes}, nil
}

func newInfix(nodes []Node, items []any) (Node, error) {
	if len(items)%2 == 0 {
		return nil, lerrors.New(lerrors.CodeMalformedInfix, map[string]any{
			"Reason": fmt.Sprintf("%d elements, an infix chain needs an odd number", len(items)),
		})
	}

	in := &Infix{}
	for i, n := range nodes {
		if i%2 == 0 {
			in.Operands = append(in.Operands, n)
			continue
		}
		sym, ok := items[i].(string)
		if !ok || !IsInfixSymbol(sym) {
			return nil, lerrors.New(lerrors.CodeMalformedInfix, map[string]any{
				"Reason": fmt.Sprintf("element %d is %s, want one of %s", i, n.String(), strings.Join(InfixSymbols, " ")),
			})
		}
		in.Operators = append(in.Operators, sym)
	}
	return in, nil
}

// syntaxError turns a JSON decode failure into a PARSE-0001 error with a line number.
func syntaxError(src []byte, err error) error {
	perr := lerrors.New(lerrors.CodeInvalidProgram, map[string]any{"GoError": err.Error()})

	var offset int64 = -1
	var serr *json.SyntaxError
	var terr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &serr):
		offset = serr.Offset
	case stderrors.As(err, &terr):
		offset = terr.Offset
	case stderrors.Is(err, io.EOF), stderrors.Is(err, io.ErrUnexpectedEOF):
		offset = int64(len(src))
	}
	if offset >= 0 {
		if offset > int64(len(src)) {
			offset = int64(len(src))
		}
		perr.Line = bytes.Count(src[:offset], []byte("\n")) + 1
	}
	return perr
}

func typeLabel(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
