package symdiff

import (
	"sort"

	"github.com/pkg/errors"
)

// ============================================================
// Differentiation
// ============================================================

// Diff returns the derivative of e with respect to varName. The result is not
// simplified; compose with Simplify, or use DiffSimplify.
func Diff(e Expr, varName string) (Expr, error) {
	d, err := diffExpr(e, varName)
	if err != nil {
		return nil, errors.Wrapf(err, "d/d%s", varName)
	}
	return d, nil
}

// DiffSimplify returns Simplify(Diff(e, varName)).
func DiffSimplify(e Expr, varName string) (Expr, error) {
	d, err := Diff(e, varName)
	if err != nil {
		return nil, err
	}
	return Simplify(d)
}

// DiffN returns the n-th derivative of e, simplifying after every pass.
func DiffN(e Expr, varName string, n int) (Expr, error) {
	if n < 0 {
		return nil, errors.Errorf("derivative order must be non-negative, got %d", n)
	}
	result := Copy(e)
	if result == nil {
		return nil, newError(ErrUnsupportedNode, nil, "nil expression")
	}
	for i := 0; i < n; i++ {
		d, err := DiffSimplify(result, varName)
		if err != nil {
			return nil, errors.Wrapf(err, "order %d", i+1)
		}
		result = d
	}
	return result, nil
}

func diffExpr(e Expr, varName string) (Expr, error) {
	if e == nil {
		return nil, newError(ErrUnsupportedNode, nil, "nil expression")
	}
	return e.diff(varName)
}

func diffPair(b binary, varName string) (Expr, Expr, error) {
	dl, err := diffExpr(b.left, varName)
	if err != nil {
		return nil, nil, err
	}
	dr, err := diffExpr(b.right, varName)
	if err != nil {
		return nil, nil, err
	}
	return dl, dr, nil
}

func (n *Num) diff(string) (Expr, error) { return N(0), nil }

func (s *Sym) diff(varName string) (Expr, error) {
	if s.name == varName {
		return N(1), nil
	}
	return N(0), nil
}

func (a *Add) diff(varName string) (Expr, error) {
	dl, dr, err := diffPair(a.binary, varName)
	if err != nil {
		return nil, err
	}
	return AddOf(dl, dr), nil
}

func (s *Sub) diff(varName string) (Expr, error) {
	dl, dr, err := diffPair(s.binary, varName)
	if err != nil {
		return nil, err
	}
	return SubOf(dl, dr), nil
}

// (uv)' = u'v + uv'
func (m *Mul) diff(varName string) (Expr, error) {
	du, dv, err := diffPair(m.binary, varName)
	if err != nil {
		return nil, err
	}
	return AddOf(
		MulOf(du, Copy(m.right)),
		MulOf(Copy(m.left), dv),
	), nil
}

// (u/v)' = (u'v - uv') / v^2
func (d *Div) diff(varName string) (Expr, error) {
	du, dv, err := diffPair(d.binary, varName)
	if err != nil {
		return nil, err
	}
	return DivOf(
		SubOf(MulOf(du, Copy(d.right)), MulOf(Copy(d.left), dv)),
		PowOf(Copy(d.right), N(2)),
	), nil
}

func (p *Pow) diff(varName string) (Expr, error) {
	return powerRule(p.left, p.right, varName, func(b, e Expr) Expr { return PowOf(b, e) })
}

// powerRule differentiates base^exp where mk builds the power node in the
// caller's representation (Pow node or pow call).
//
// When exp is free of varName the plain rule e*b^(e-1)*b' is returned.
// Otherwise the logarithmic form
//
//	e*b^(e-1)*b' + b^e*log(b)*e'
//
// is used, which reduces to the plain rule when e' simplifies to 0.
func powerRule(base, exp Expr, varName string, mk func(b, e Expr) Expr) (Expr, error) {
	db, err := diffExpr(base, varName)
	if err != nil {
		return nil, err
	}
	// A malformed exponent is an error even when it is free of varName.
	de, err := diffExpr(exp, varName)
	if err != nil {
		return nil, err
	}
	plain := MulOf(
		MulOf(Copy(exp), mk(Copy(base), SubOf(Copy(exp), N(1)))),
		db,
	)
	if !DependsOn(exp, varName) {
		return plain, nil
	}
	return AddOf(
		plain,
		MulOf(MulOf(mk(Copy(base), Copy(exp)), Call("log", Copy(base))), de),
	), nil
}

func (n *Neg) diff(varName string) (Expr, error) {
	dx, err := diffExpr(n.x, varName)
	if err != nil {
		return nil, err
	}
	return NegOf(dx), nil
}

func (f *Func) diff(varName string) (Expr, error) {
	spec, err := lookupFunc(f)
	if err != nil {
		return nil, err
	}
	if f.name == "pow" {
		return powerRule(f.args[0], f.args[1], varName, func(b, e Expr) Expr { return Call("pow", b, e) })
	}
	if spec.arity == 0 {
		return spec.outer(nil), nil
	}
	du, err := diffExpr(f.args[0], varName)
	if err != nil {
		return nil, err
	}
	return MulOf(spec.outer(copyAll(f.args)), du), nil
}

func (s *Stmt) diff(varName string) (Expr, error) {
	dx, err := diffExpr(s.x, varName)
	if err != nil {
		return nil, err
	}
	return StmtOf(dx), nil
}

// ============================================================
// Free symbols
// ============================================================

// DependsOn reports whether varName occurs anywhere in e.
func DependsOn(e Expr, varName string) bool {
	found := false
	walk(e, func(x Expr) bool {
		if s, ok := x.(*Sym); ok && s.name == varName {
			found = true
		}
		return !found
	})
	return found
}

// FreeSymbols returns the sorted, de-duplicated variable names of e.
func FreeSymbols(e Expr) []string {
	seen := map[string]struct{}{}
	walk(e, func(x Expr) bool {
		if s, ok := x.(*Sym); ok {
			seen[s.name] = struct{}{}
		}
		return true
	})
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// walk visits e in pre-order until fn returns false. nil nodes are skipped.
func walk(e Expr, fn func(Expr) bool) bool {
	if e == nil {
		return true
	}
	if !fn(e) {
		return false
	}
	for _, c := range e.children() {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
