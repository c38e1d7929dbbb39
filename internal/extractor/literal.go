package extractor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/toyz/pluginmeta/internal/jsast"
)

type literalKind int

const (
	literalString literalKind = iota
	literalNumber
	literalBool
	literalNull
)

// literal is the value of an accepted literal node
type literal struct {
	kind    literalKind
	str     string
	number  float64
	boolean bool
}

// integer returns the literal as an int when it is an integral number
func (l literal) integer() (int, bool) {
	if l.kind != literalNumber || l.number != math.Trunc(l.number) {
		return 0, false
	}
	if l.number > math.MaxInt32 || l.number < math.MinInt32 {
		return 0, false
	}
	return int(l.number), true
}

// evalLiteral maps a value node onto the closed set of accepted shapes: a
// literal, or a unary-negated numeric literal. accepted is false for every
// other node. A unary operator applied to a literal that does not produce a
// number is an error.
func evalLiteral(t *jsast.Tree, n *sitter.Node) (value literal, accepted bool, err error) {
	switch n.Type() {
	case jsast.NodeString:
		s, err := t.StringValue(n)
		if err != nil {
			return literal{}, false, err
		}
		return literal{kind: literalString, str: s}, true, nil
	case jsast.NodeNumber:
		f, err := parseNumber(t.Text(n))
		if err != nil {
			return literal{}, false, err
		}
		return literal{kind: literalNumber, number: f}, true, nil
	case jsast.NodeTrue, jsast.NodeFalse:
		return literal{kind: literalBool, boolean: n.Type() == jsast.NodeTrue}, true, nil
	case jsast.NodeNull:
		return literal{kind: literalNull}, true, nil
	case jsast.NodeUnaryExpression:
		return evalUnary(t, n)
	default:
		return literal{}, false, nil
	}
}

func evalUnary(t *jsast.Tree, n *sitter.Node) (literal, bool, error) {
	arg := n.ChildByFieldName("argument")
	if arg == nil {
		return literal{}, false, nil
	}
	switch arg.Type() {
	case jsast.NodeString, jsast.NodeNumber, jsast.NodeTrue, jsast.NodeFalse, jsast.NodeNull:
	default:
		return literal{}, false, nil
	}

	operator := ""
	if op := n.ChildByFieldName("operator"); op != nil {
		operator = t.Text(op)
	}
	raw := t.Text(arg)
	if operator != "-" || arg.Type() != jsast.NodeNumber {
		return literal{}, false, fmt.Errorf("unsupported unary expression %q", operator+raw)
	}

	f, err := parseNumber(raw)
	if err != nil {
		return literal{}, false, err
	}
	return literal{kind: literalNumber, number: -f}, true, nil
}

// parseNumber decodes a JavaScript numeric literal's raw text
func parseNumber(raw string) (float64, error) {
	clean := strings.ReplaceAll(raw, "_", "")
	clean = strings.TrimSuffix(clean, "n")

	if len(clean) > 1 && clean[0] == '0' {
		switch clean[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			v, err := strconv.ParseInt(clean, 0, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid numeric literal %q: %w", raw, err)
			}
			return float64(v), nil
		}
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric literal %q: %w", raw, err)
	}
	return v, nil
}
