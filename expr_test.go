package symdiff_test

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"

	"github.com/njchilds90/symdiff"
)

var (
	x = symdiff.S("x")
	y = symdiff.S("y")
	z = symdiff.S("z")
)

func n(v int64) symdiff.Expr { return symdiff.N(v) }

// requireTree fails with a readable diff when got is not structurally want.
func requireTree(t *testing.T, want, got symdiff.Expr) {
	t.Helper()
	if !symdiff.Equal(want, got) {
		t.Fatalf("tree mismatch (-got +want):\n%s", pretty.Compare(treeString(got), treeString(want)))
	}
}

func treeString(e symdiff.Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

// ============================================================
// Equal
// ============================================================

func TestEqual_NumTrue(t *testing.T) {
	assert.True(t, symdiff.Equal(n(3), n(3)))
}

func TestEqual_NumFalse(t *testing.T) {
	assert.False(t, symdiff.Equal(n(3), n(4)))
}

func TestEqual_SymTrue(t *testing.T) {
	assert.True(t, symdiff.Equal(symdiff.S("x"), x))
}

func TestEqual_CrossType(t *testing.T) {
	assert.False(t, symdiff.Equal(symdiff.AddOf(x, y), symdiff.SubOf(x, y)))
	assert.False(t, symdiff.Equal(symdiff.PowOf(x, n(2)), symdiff.Call("pow", x, n(2))))
	assert.False(t, symdiff.Equal(n(1), symdiff.S("1")))
}

func TestEqual_Order(t *testing.T) {
	assert.False(t, symdiff.Equal(symdiff.AddOf(x, y), symdiff.AddOf(y, x)))
}

func TestEqual_Func(t *testing.T) {
	assert.True(t, symdiff.Equal(symdiff.Call("sin", x), symdiff.Call("sin", symdiff.S("x"))))
	assert.False(t, symdiff.Equal(symdiff.Call("sin", x), symdiff.Call("cos", x)))
	assert.False(t, symdiff.Equal(symdiff.Call("pow", x), symdiff.Call("pow", x, n(2))))
}

func TestEqual_Nil(t *testing.T) {
	assert.True(t, symdiff.Equal(nil, nil))
	assert.False(t, symdiff.Equal(x, nil))
	assert.False(t, symdiff.Equal(nil, x))
	assert.False(t, symdiff.Equal(symdiff.AddOf(x, nil), symdiff.AddOf(x, y)))
}

// ============================================================
// Copy
// ============================================================

func TestCopy_Structural(t *testing.T) {
	e := symdiff.StmtOf(symdiff.AddOf(
		symdiff.MulOf(n(2), symdiff.PowOf(x, n(3))),
		symdiff.NegOf(symdiff.Call("pow", symdiff.DivOf(x, y), symdiff.SubOf(z, n(1)))),
	))
	c := symdiff.Copy(e)
	requireTree(t, e, c)
	assert.NotSame(t, e, c)
}

func TestCopy_FreshChildren(t *testing.T) {
	e := symdiff.MulOf(x, y)
	c := symdiff.Copy(e).(*symdiff.Mul)
	assert.NotSame(t, e.Left(), c.Left())
	assert.NotSame(t, e.Right(), c.Right())
}

func TestCopy_Nil(t *testing.T) {
	assert.Nil(t, symdiff.Copy(nil))
}

func TestFunc_ArgsIsACopy(t *testing.T) {
	f := symdiff.Call("sin", x)
	args := f.Args()
	args[0] = y
	requireTree(t, symdiff.Call("sin", x), f)
	assert.Nil(t, f.Arg(1))
	assert.Nil(t, f.Arg(-1))
}

// ============================================================
// Debug rendering
// ============================================================

func TestString(t *testing.T) {
	tests := []struct {
		expr symdiff.Expr
		want string
	}{
		{n(-4), "-4"},
		{x, "x"},
		{symdiff.AddOf(x, n(1)), "(x + 1)"},
		{symdiff.SubOf(x, n(1)), "(x - 1)"},
		{symdiff.MulOf(n(2), x), "(2 * x)"},
		{symdiff.DivOf(n(1), x), "(1 / x)"},
		{symdiff.PowOf(x, n(4)), "(x ^ 4)"},
		{symdiff.NegOf(x), "(-x)"},
		{symdiff.Call("pow", x, y), "pow(x, y)"},
		{symdiff.Call("pi"), "pi()"},
		{symdiff.StmtOf(x), "x;"},
		{symdiff.AddOf(x, nil), "(x + <nil>)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.expr.String())
	}
}

func TestAccessors(t *testing.T) {
	p := symdiff.PowOf(x, n(2))
	assert.Same(t, x, p.Base())
	assert.Equal(t, int64(2), p.ExpExpr().(*symdiff.Num).Value())
	assert.Equal(t, "x", symdiff.NegOf(x).Operand().String())
	assert.Equal(t, "sin", symdiff.Call("sin", x).FuncName())
	assert.Equal(t, "x", symdiff.StmtOf(x).Expr().String())
}

// ============================================================
// Numeric predicates
// ============================================================

func TestPredicates(t *testing.T) {
	tests := []struct {
		expr                 symdiff.Expr
		zero, unity, integer bool
	}{
		{n(0), true, false, true},
		{n(1), false, true, true},
		{n(-1), false, false, true},
		{n(42), false, false, true},
		{x, false, false, false},
		{symdiff.NegOf(n(0)), false, false, false},
		{symdiff.AddOf(n(0), n(0)), false, false, false},
		{symdiff.Call("pi"), false, false, false},
		{nil, false, false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.zero, symdiff.IsZero(tt.expr), "IsZero(%v)", tt.expr)
		assert.Equal(t, tt.unity, symdiff.IsUnity(tt.expr), "IsUnity(%v)", tt.expr)
		assert.Equal(t, tt.integer, symdiff.IsIntegerConstant(tt.expr), "IsIntegerConstant(%v)", tt.expr)
	}
}

// ============================================================
// Free symbols
// ============================================================

func TestFreeSymbols(t *testing.T) {
	e := symdiff.AddOf(symdiff.MulOf(y, x), symdiff.Call("sin", symdiff.PowOf(x, z)))
	assert.Equal(t, []string{"x", "y", "z"}, symdiff.FreeSymbols(e))
}

func TestFreeSymbols_Constant(t *testing.T) {
	assert.Empty(t, symdiff.FreeSymbols(symdiff.AddOf(n(1), symdiff.Call("pi"))))
}

func TestDependsOn(t *testing.T) {
	e := symdiff.Call("pow", n(2), symdiff.NegOf(y))
	assert.True(t, symdiff.DependsOn(e, "y"))
	assert.False(t, symdiff.DependsOn(e, "x"))
	assert.False(t, symdiff.DependsOn(nil, "x"))
}
