package symdiff

import (
	"math"

	"github.com/pkg/errors"
)

// ============================================================
// Numeric evaluation
// ============================================================

// ErrUnboundVariable is returned by Eval for a variable missing from env.
var ErrUnboundVariable = errors.New("unbound variable")

// Eval evaluates e in float64 with variables bound by env. The result may be
// NaN or ±Inf when a function is applied outside its domain.
func Eval(e Expr, env map[string]float64) (float64, error) {
	v, err := evalExpr(e, env)
	if err != nil {
		return 0, errors.Wrap(err, "eval")
	}
	return v, nil
}

func evalExpr(e Expr, env map[string]float64) (float64, error) {
	if e == nil {
		return 0, newError(ErrUnsupportedNode, nil, "nil expression")
	}
	return e.eval(env)
}

func evalPair(b binary, env map[string]float64) (float64, float64, error) {
	l, err := evalExpr(b.left, env)
	if err != nil {
		return 0, 0, err
	}
	r, err := evalExpr(b.right, env)
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}

func (n *Num) eval(map[string]float64) (float64, error) { return float64(n.val), nil }

func (s *Sym) eval(env map[string]float64) (float64, error) {
	v, ok := env[s.name]
	if !ok {
		return 0, &Error{Kind: ErrUnboundVariable, Expr: s, Msg: s.name}
	}
	return v, nil
}

func (a *Add) eval(env map[string]float64) (float64, error) {
	l, r, err := evalPair(a.binary, env)
	return l + r, err
}

func (s *Sub) eval(env map[string]float64) (float64, error) {
	l, r, err := evalPair(s.binary, env)
	return l - r, err
}

func (m *Mul) eval(env map[string]float64) (float64, error) {
	l, r, err := evalPair(m.binary, env)
	return l * r, err
}

func (d *Div) eval(env map[string]float64) (float64, error) {
	l, r, err := evalPair(d.binary, env)
	if err != nil {
		return 0, err
	}
	if r == 0 {
		return 0, newError(ErrDivisionByZero, d, "divisor evaluates to 0")
	}
	return l / r, nil
}

func (p *Pow) eval(env map[string]float64) (float64, error) {
	l, r, err := evalPair(p.binary, env)
	if err != nil {
		return 0, err
	}
	return evalPow(p, l, r)
}

func evalPow(e Expr, base, exp float64) (float64, error) {
	if base == 0 && exp == 0 {
		return 0, newError(ErrIndeterminateForm, e, "0^0")
	}
	return math.Pow(base, exp), nil
}

func (n *Neg) eval(env map[string]float64) (float64, error) {
	x, err := evalExpr(n.x, env)
	return -x, err
}

var funcImpl = map[string]func(a []float64) float64{
	"sin":   func(a []float64) float64 { return math.Sin(a[0]) },
	"cos":   func(a []float64) float64 { return math.Cos(a[0]) },
	"tan":   func(a []float64) float64 { return math.Tan(a[0]) },
	"asin":  func(a []float64) float64 { return math.Asin(a[0]) },
	"acos":  func(a []float64) float64 { return math.Acos(a[0]) },
	"atan":  func(a []float64) float64 { return math.Atan(a[0]) },
	"sinh":  func(a []float64) float64 { return math.Sinh(a[0]) },
	"cosh":  func(a []float64) float64 { return math.Cosh(a[0]) },
	"tanh":  func(a []float64) float64 { return math.Tanh(a[0]) },
	"asinh": func(a []float64) float64 { return math.Asinh(a[0]) },
	"acosh": func(a []float64) float64 { return math.Acosh(a[0]) },
	"atanh": func(a []float64) float64 { return math.Atanh(a[0]) },
	"exp":   func(a []float64) float64 { return math.Exp(a[0]) },
	"expm1": func(a []float64) float64 { return math.Expm1(a[0]) },
	"log":   func(a []float64) float64 { return math.Log(a[0]) },
	"log10": func(a []float64) float64 { return math.Log10(a[0]) },
	"log1p": func(a []float64) float64 { return math.Log1p(a[0]) },
	"sqrt":  func(a []float64) float64 { return math.Sqrt(a[0]) },
	"pi":    func([]float64) float64 { return math.Pi },
}

func (f *Func) eval(env map[string]float64) (float64, error) {
	if _, err := lookupFunc(f); err != nil {
		return 0, err
	}
	args := make([]float64, len(f.args))
	for i, a := range f.args {
		v, err := evalExpr(a, env)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	if f.name == "pow" {
		return evalPow(f, args[0], args[1])
	}
	return funcImpl[f.name](args), nil
}

func (s *Stmt) eval(env map[string]float64) (float64, error) { return evalExpr(s.x, env) }
