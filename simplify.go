package symdiff

import (
	"math"

	"github.com/pkg/errors"
)

// ============================================================
// Simplification
// ============================================================

// Simplify rewrites e bottom-up into its reduced form. Children are
// simplified first, then one local rule fires on the simplified children.
// Rules that produce a node of another kind go through that kind's local
// rule, so Simplify(Simplify(e)) equals Simplify(e).
//
// No term collection is done across a sum: x + 2 + x stays as it is, only
// terms already grouped as k*t (+|-) m*t are folded.
func Simplify(e Expr) (Expr, error) {
	s, err := simplifyExpr(e)
	if err != nil {
		return nil, errors.Wrap(err, "simplify")
	}
	return s, nil
}

func simplifyExpr(e Expr) (Expr, error) {
	if e == nil {
		return nil, newError(ErrUnsupportedNode, nil, "nil expression")
	}
	return e.simplify()
}

func simplifyPair(b binary) (Expr, Expr, error) {
	l, err := simplifyExpr(b.left)
	if err != nil {
		return nil, nil, err
	}
	r, err := simplifyExpr(b.right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func (n *Num) simplify() (Expr, error) { return n.copy(), nil }
func (s *Sym) simplify() (Expr, error) { return s.copy(), nil }

func (a *Add) simplify() (Expr, error) {
	l, r, err := simplifyPair(a.binary)
	if err != nil {
		return nil, err
	}
	return simplifyAdd(l, r), nil
}

func (s *Sub) simplify() (Expr, error) {
	l, r, err := simplifyPair(s.binary)
	if err != nil {
		return nil, err
	}
	return simplifySub(l, r), nil
}

func (m *Mul) simplify() (Expr, error) {
	l, r, err := simplifyPair(m.binary)
	if err != nil {
		return nil, err
	}
	return simplifyMul(l, r), nil
}

func (d *Div) simplify() (Expr, error) {
	l, r, err := simplifyPair(d.binary)
	if err != nil {
		return nil, err
	}
	return simplifyDiv(l, r)
}

func (p *Pow) simplify() (Expr, error) {
	l, r, err := simplifyPair(p.binary)
	if err != nil {
		return nil, err
	}
	return simplifyPow(l, r, powNode)
}

func (n *Neg) simplify() (Expr, error) {
	x, err := simplifyExpr(n.x)
	if err != nil {
		return nil, err
	}
	return simplifyNeg(x), nil
}

func (f *Func) simplify() (Expr, error) {
	args := make([]Expr, len(f.args))
	for i, a := range f.args {
		s, err := simplifyExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = s
	}
	if f.name != "pow" {
		// no identities are applied to other functions
		return &Func{name: f.name, args: args}, nil
	}
	if _, err := lookupFunc(f); err != nil {
		return nil, err
	}
	return simplifyPow(args[0], args[1], powCall)
}

func (s *Stmt) simplify() (Expr, error) {
	x, err := simplifyExpr(s.x)
	if err != nil {
		return nil, err
	}
	return StmtOf(x), nil
}

// ============================================================
// Local rules. Arguments are already simplified.
// ============================================================

func simplifyAdd(l, r Expr) Expr {
	switch {
	case IsZero(r):
		return l
	case IsZero(l):
		return r
	}
	if a, b, ok := intPair(l, r); ok {
		if s, ok := addInt(a, b); ok {
			return N(s)
		}
		return AddOf(l, r)
	}
	if c, t, ok := likeTerms(l, r, addInt); ok {
		return simplifyMul(N(c), t)
	}
	return AddOf(l, r)
}

func simplifySub(l, r Expr) Expr {
	switch {
	case IsZero(l):
		return simplifyNeg(r)
	case IsZero(r):
		return l
	}
	if a, b, ok := intPair(l, r); ok {
		if s, ok := subInt(a, b); ok {
			return N(s)
		}
		return SubOf(l, r)
	}
	if c, t, ok := likeTerms(l, r, subInt); ok {
		return simplifyMul(N(c), t)
	}
	return SubOf(l, r)
}

func simplifyMul(l, r Expr) Expr {
	switch {
	case IsZero(l) || IsZero(r):
		return N(0)
	case IsUnity(l):
		return r
	case IsUnity(r):
		return l
	}
	if a, b, ok := intPair(l, r); ok {
		if p, ok := mulInt(a, b); ok {
			return N(p)
		}
		return MulOf(l, r)
	}
	// a*(b*t) -> (a*b)*t
	if a, ok := l.(*Num); ok {
		if inner, ok := r.(*Mul); ok {
			if b, ok := inner.left.(*Num); ok {
				if p, ok := mulInt(a.val, b.val); ok {
					return simplifyMul(N(p), inner.right)
				}
			}
		}
	}
	return MulOf(l, r)
}

func simplifyDiv(l, r Expr) (Expr, error) {
	switch {
	case IsZero(r):
		return nil, newError(ErrDivisionByZero, DivOf(l, r), "divisor is 0")
	case IsZero(l):
		return N(0), nil
	case IsUnity(r):
		return l, nil
	}
	if a, b, ok := intPair(l, r); ok {
		if q, ok := divIntExact(a, b); ok {
			return N(q), nil
		}
	}
	return DivOf(l, r), nil
}

// powForm builds a power in the representation it was found in.
type powForm func(base, exp Expr) Expr

func powNode(base, exp Expr) Expr { return PowOf(base, exp) }
func powCall(base, exp Expr) Expr { return Call("pow", base, exp) }

func simplifyPow(l, r Expr, mk powForm) (Expr, error) {
	switch {
	case IsZero(l) && IsZero(r):
		return nil, newError(ErrIndeterminateForm, mk(l, r), "0^0")
	case IsZero(l):
		if isNegativeNum(r) {
			return nil, newError(ErrDivisionByZero, mk(l, r), "0 raised to a negative power")
		}
		return N(0), nil
	case IsUnity(l) || IsZero(r):
		return N(1), nil
	case IsUnity(r):
		return l, nil
	}
	if a, b, ok := intPair(l, r); ok && b >= 0 {
		if p, ok := powInt(a, b); ok {
			return N(p), nil
		}
		return mk(l, r), nil
	}
	// (u^a)^b -> u^(a*b)
	if base, exp, ok := powParts(l); ok {
		return simplifyPow(base, simplifyMul(exp, r), mk)
	}
	return mk(l, r), nil
}

func simplifyNeg(x Expr) Expr {
	switch v := x.(type) {
	case *Neg:
		return v.x
	case *Num:
		if v.val != math.MinInt64 {
			return N(-v.val)
		}
	}
	return NegOf(x)
}

// powParts splits a power in either representation.
func powParts(e Expr) (Expr, Expr, bool) {
	switch v := e.(type) {
	case *Pow:
		return v.left, v.right, true
	case *Func:
		if v.name == "pow" && len(v.args) == 2 {
			return v.args[0], v.args[1], true
		}
	}
	return nil, nil, false
}

// coefficient splits k*t into (k, t); anything else is 1*e.
func coefficient(e Expr) (int64, Expr) {
	if m, ok := e.(*Mul); ok {
		if k, ok := m.left.(*Num); ok {
			return k.val, m.right
		}
	}
	return 1, e
}

// likeTerms folds a*t op b*t into (a op b, t).
func likeTerms(l, r Expr, op func(a, b int64) (int64, bool)) (int64, Expr, bool) {
	if IsIntegerConstant(l) || IsIntegerConstant(r) {
		return 0, nil, false
	}
	a, tl := coefficient(l)
	b, tr := coefficient(r)
	if !Equal(tl, tr) {
		return 0, nil, false
	}
	c, ok := op(a, b)
	if !ok {
		return 0, nil, false
	}
	return c, tl, true
}

func intPair(l, r Expr) (int64, int64, bool) {
	a, ok := l.(*Num)
	if !ok {
		return 0, 0, false
	}
	b, ok := r.(*Num)
	if !ok {
		return 0, 0, false
	}
	return a.val, b.val, true
}

// ============================================================
// Checked int64 arithmetic
// ============================================================

func addInt(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

func subInt(a, b int64) (int64, bool) {
	s := a - b
	if (b > 0 && s > a) || (b < 0 && s < a) {
		return 0, false
	}
	return s, true
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

func divIntExact(a, b int64) (int64, bool) {
	if b == 0 || (a == math.MinInt64 && b == -1) || a%b != 0 {
		return 0, false
	}
	return a / b, true
}

// powInt computes a^b for b >= 0 by squaring.
func powInt(a, b int64) (int64, bool) {
	result := int64(1)
	for b > 0 {
		var ok bool
		if b&1 == 1 {
			if result, ok = mulInt(result, a); !ok {
				return 0, false
			}
		}
		b >>= 1
		if b > 0 {
			if a, ok = mulInt(a, a); !ok {
				return 0, false
			}
		}
	}
	return result, true
}
