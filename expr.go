// Package symdiff provides a small computer-algebra core for Go: symbolic
// differentiation of expression trees followed by algebraic simplification.
//
// Design goals:
//   - Closed set of immutable node kinds; every engine handles every kind
//   - Exact int64 arithmetic, folds that would overflow are left unfolded
//   - Sound, total and idempotent simplification
//   - Errors instead of silent defaults for malformed trees
//   - JSON and MCP-ready APIs for CLI tools and agent backends
package symdiff

import (
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable expression tree node. The set of implementations is
// closed: only the node kinds of this package satisfy it.
type Expr interface {
	String() string

	exprType() string
	children() []Expr
	copy() Expr
	equal(other Expr) bool
	diff(varName string) (Expr, error)
	simplify() (Expr, error)
	eval(env map[string]float64) (float64, error)
	subst(varName string, value Expr) Expr
	validate(path string, reterr error) error
	toJSON() map[string]interface{}
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.equal(b)
}

// Copy returns a fresh, independently owned duplicate of e.
func Copy(e Expr) Expr {
	if e == nil {
		return nil
	}
	return e.copy()
}

func copyAll(es []Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = Copy(e)
	}
	return out
}

// ============================================================
// Num — integer constant
// ============================================================

type Num struct{ val int64 }

func N(n int64) *Num { return &Num{val: n} }

func (n *Num) Value() int64          { return n.val }
func (n *Num) String() string        { return strconv.FormatInt(n.val, 10) }
func (n *Num) exprType() string      { return "num" }
func (n *Num) children() []Expr      { return nil }
func (n *Num) copy() Expr            { return &Num{val: n.val} }
func (n *Num) equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val == o.val }

// ============================================================
// Sym — variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Name() string          { return s.name }
func (s *Sym) String() string        { return s.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) children() []Expr      { return nil }
func (s *Sym) copy() Expr            { return &Sym{name: s.name} }
func (s *Sym) equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }

// ============================================================
// Binary nodes: Add, Sub, Mul, Div, Pow
// ============================================================

type binary struct{ left, right Expr }

func (b binary) Left() Expr  { return b.left }
func (b binary) Right() Expr { return b.right }

func (b binary) children() []Expr { return []Expr{b.left, b.right} }

func (b binary) format(op string) string {
	return "(" + exprString(b.left) + " " + op + " " + exprString(b.right) + ")"
}

func (b binary) equalTo(o binary) bool {
	return Equal(b.left, o.left) && Equal(b.right, o.right)
}

func (b binary) dup() binary { return binary{left: Copy(b.left), right: Copy(b.right)} }

type Add struct{ binary }

func AddOf(left, right Expr) *Add { return &Add{binary{left: left, right: right}} }

func (a *Add) String() string        { return a.format("+") }
func (a *Add) exprType() string      { return "add" }
func (a *Add) copy() Expr            { return &Add{a.dup()} }
func (a *Add) equal(other Expr) bool { o, ok := other.(*Add); return ok && a.equalTo(o.binary) }

type Sub struct{ binary }

func SubOf(left, right Expr) *Sub { return &Sub{binary{left: left, right: right}} }

func (s *Sub) String() string        { return s.format("-") }
func (s *Sub) exprType() string      { return "sub" }
func (s *Sub) copy() Expr            { return &Sub{s.dup()} }
func (s *Sub) equal(other Expr) bool { o, ok := other.(*Sub); return ok && s.equalTo(o.binary) }

type Mul struct{ binary }

func MulOf(left, right Expr) *Mul { return &Mul{binary{left: left, right: right}} }

func (m *Mul) String() string        { return m.format("*") }
func (m *Mul) exprType() string      { return "mul" }
func (m *Mul) copy() Expr            { return &Mul{m.dup()} }
func (m *Mul) equal(other Expr) bool { o, ok := other.(*Mul); return ok && m.equalTo(o.binary) }

type Div struct{ binary }

func DivOf(left, right Expr) *Div { return &Div{binary{left: left, right: right}} }

func (d *Div) String() string        { return d.format("/") }
func (d *Div) exprType() string      { return "div" }
func (d *Div) copy() Expr            { return &Div{d.dup()} }
func (d *Div) equal(other Expr) bool { o, ok := other.(*Div); return ok && d.equalTo(o.binary) }

// Pow is base^exponent. Left is the base, Right the exponent.
type Pow struct{ binary }

func PowOf(base, exp Expr) *Pow { return &Pow{binary{left: base, right: exp}} }

func (p *Pow) Base() Expr            { return p.left }
func (p *Pow) ExpExpr() Expr         { return p.right }
func (p *Pow) String() string        { return p.format("^") }
func (p *Pow) exprType() string      { return "pow" }
func (p *Pow) copy() Expr            { return &Pow{p.dup()} }
func (p *Pow) equal(other Expr) bool { o, ok := other.(*Pow); return ok && p.equalTo(o.binary) }

// ============================================================
// Neg — unary minus
// ============================================================

type Neg struct{ x Expr }

func NegOf(x Expr) *Neg { return &Neg{x: x} }

func (n *Neg) Operand() Expr         { return n.x }
func (n *Neg) String() string        { return "(-" + exprString(n.x) + ")" }
func (n *Neg) exprType() string      { return "neg" }
func (n *Neg) children() []Expr      { return []Expr{n.x} }
func (n *Neg) copy() Expr            { return &Neg{x: Copy(n.x)} }
func (n *Neg) equal(other Expr) bool { o, ok := other.(*Neg); return ok && Equal(n.x, o.x) }

// ============================================================
// Func — named function application
// ============================================================

type Func struct {
	name string
	args []Expr
}

// Call builds a function application. The argument slice is copied; arity is
// checked by the engines, not here.
func Call(name string, args ...Expr) *Func {
	return &Func{name: name, args: append([]Expr(nil), args...)}
}

func (f *Func) FuncName() string { return f.name }
func (f *Func) Args() []Expr     { return append([]Expr(nil), f.args...) }

// Arg returns the i-th argument or nil when it is missing.
func (f *Func) Arg(i int) Expr {
	if i < 0 || i >= len(f.args) {
		return nil
	}
	return f.args[i]
}

func (f *Func) String() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = exprString(a)
	}
	return f.name + "(" + strings.Join(parts, ", ") + ")"
}

func (f *Func) exprType() string { return "func" }
func (f *Func) children() []Expr { return f.Args() }
func (f *Func) copy() Expr       { return &Func{name: f.name, args: copyAll(f.args)} }

func (f *Func) equal(other Expr) bool {
	o, ok := other.(*Func)
	if !ok || f.name != o.name || len(f.args) != len(o.args) {
		return false
	}
	for i := range f.args {
		if !Equal(f.args[i], o.args[i]) {
			return false
		}
	}
	return true
}

// ============================================================
// Stmt — expression used as a standalone statement
// ============================================================

type Stmt struct{ x Expr }

func StmtOf(x Expr) *Stmt { return &Stmt{x: x} }

func (s *Stmt) Expr() Expr            { return s.x }
func (s *Stmt) String() string        { return exprString(s.x) + ";" }
func (s *Stmt) exprType() string      { return "stmt" }
func (s *Stmt) children() []Expr      { return []Expr{s.x} }
func (s *Stmt) copy() Expr            { return &Stmt{x: Copy(s.x)} }
func (s *Stmt) equal(other Expr) bool { o, ok := other.(*Stmt); return ok && Equal(s.x, o.x) }

func exprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}
