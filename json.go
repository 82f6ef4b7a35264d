package symdiff

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// ============================================================
// JSON Serialization
// ============================================================

// MaxDepth bounds the nesting of decoded trees. Both engines recurse once per
// level, so untrusted input deeper than this is rejected up front.
const MaxDepth = 512

func ToJSON(e Expr) (string, error) {
	b, err := MarshalExpr(e)
	return string(b), err
}

func MarshalExpr(e Expr) ([]byte, error) {
	if e == nil {
		return nil, newError(ErrUnsupportedNode, nil, "nil expression")
	}
	return json.Marshal(e.toJSON())
}

// UnmarshalExpr decodes a JSON tree and validates it.
func UnmarshalExpr(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "invalid JSON")
	}
	return FromJSON(m)
}

// FromJSON builds a tree from its decoded JSON object form, rejecting
// unknown node types, unknown function names, arity mismatches and trees
// deeper than MaxDepth.
func FromJSON(data map[string]interface{}) (Expr, error) {
	return FromJSONDepth(data, MaxDepth)
}

// FromJSONDepth is FromJSON with a caller-chosen depth limit.
func FromJSONDepth(data map[string]interface{}, maxDepth int) (Expr, error) {
	e, err := fromJSON(data, 1, maxDepth)
	if err != nil {
		return nil, err
	}
	if err := Validate(e); err != nil {
		return nil, err
	}
	return e, nil
}

func fromJSON(data map[string]interface{}, depth, maxDepth int) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("expression nested deeper than %d", maxDepth)
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	sub := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := fromJSON(m, depth+1, maxDepth)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subPair := func(lf, rf string) (Expr, Expr, error) {
		l, err := sub(lf)
		if err != nil {
			return nil, nil, err
		}
		r, err := sub(rf)
		if err != nil {
			return nil, nil, err
		}
		return l, r, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		var val int64
		switch v := data["value"].(type) {
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid num value: %s", v)
			}
			val = n
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("num: value %v is not an integer", v)
			}
			if v < -(1<<63) || v >= 1<<63 {
				return nil, fmt.Errorf("num: value %v overflows int64", v)
			}
			val = int64(v)
		case nil:
			return nil, fmt.Errorf("num: missing 'value'")
		default:
			return nil, fmt.Errorf("num: 'value' must be an integer string")
		}
		return N(val), nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "add", "sub", "mul", "div":
		l, r, err := subPair("left", "right")
		if err != nil {
			return nil, err
		}
		switch typ {
		case "add":
			return AddOf(l, r), nil
		case "sub":
			return SubOf(l, r), nil
		case "mul":
			return MulOf(l, r), nil
		}
		return DivOf(l, r), nil

	case "pow":
		base, exp, err := subPair("base", "exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "neg", "stmt":
		x, err := sub("expr")
		if err != nil {
			return nil, err
		}
		if typ == "neg" {
			return NegOf(x), nil
		}
		return StmtOf(x), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		var raw []interface{}
		if v, ok := data["args"]; ok && v != nil {
			raw, ok = v.([]interface{})
			if !ok {
				return nil, fmt.Errorf("func: 'args' must be an array")
			}
		}
		args := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("func: args[%d] must be an object", i)
			}
			a, err := fromJSON(m, depth+1, maxDepth)
			if err != nil {
				return nil, fmt.Errorf("func: args[%d]: %w", i, err)
			}
			args[i] = a
		}
		return &Func{name: name, args: args}, nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": n.exprType(), "value": strconv.FormatInt(n.val, 10)}
}

func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": s.exprType(), "name": s.name}
}

func jsonOf(e Expr) interface{} {
	if e == nil {
		return nil
	}
	return e.toJSON()
}

func (b binary) pairJSON(typ, lf, rf string) map[string]interface{} {
	return map[string]interface{}{"type": typ, lf: jsonOf(b.left), rf: jsonOf(b.right)}
}

func (a *Add) toJSON() map[string]interface{} { return a.pairJSON(a.exprType(), "left", "right") }
func (s *Sub) toJSON() map[string]interface{} { return s.pairJSON(s.exprType(), "left", "right") }
func (m *Mul) toJSON() map[string]interface{} { return m.pairJSON(m.exprType(), "left", "right") }
func (d *Div) toJSON() map[string]interface{} { return d.pairJSON(d.exprType(), "left", "right") }
func (p *Pow) toJSON() map[string]interface{} { return p.pairJSON(p.exprType(), "base", "exp") }

func (n *Neg) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": n.exprType(), "expr": jsonOf(n.x)}
}

func (f *Func) toJSON() map[string]interface{} {
	args := make([]interface{}, len(f.args))
	for i, a := range f.args {
		args[i] = jsonOf(a)
	}
	return map[string]interface{}{"type": f.exprType(), "name": f.name, "args": args}
}

func (s *Stmt) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": s.exprType(), "expr": jsonOf(s.x)}
}
