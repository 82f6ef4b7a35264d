package symdiff

import "sort"

// ============================================================
// Function derivative table
// ============================================================

// outerRule returns the derivative of a function with respect to its own
// argument list. The arguments passed in are already fresh copies.
type outerRule func(args []Expr) Expr

type funcSpec struct {
	arity int
	outer outerRule // nil for pow, which the engine handles itself
}

func one() Expr                   { return N(1) }
func sq(u Expr) Expr              { return PowOf(u, N(2)) }
func recip(den Expr) Expr         { return DivOf(one(), den) }
func fn(name string, u Expr) Expr { return Call(name, u) }

var funcTable = map[string]funcSpec{
	"sin": {1, func(a []Expr) Expr { return fn("cos", a[0]) }},
	"cos": {1, func(a []Expr) Expr { return NegOf(fn("sin", a[0])) }},
	"tan": {1, func(a []Expr) Expr { return recip(sq(fn("cos", a[0]))) }},

	"asin": {1, func(a []Expr) Expr { return recip(fn("sqrt", SubOf(one(), sq(a[0])))) }},
	"acos": {1, func(a []Expr) Expr { return NegOf(recip(fn("sqrt", SubOf(one(), sq(a[0]))))) }},
	"atan": {1, func(a []Expr) Expr { return recip(AddOf(one(), sq(a[0]))) }},

	"sinh": {1, func(a []Expr) Expr { return fn("cosh", a[0]) }},
	"cosh": {1, func(a []Expr) Expr { return fn("sinh", a[0]) }},
	"tanh": {1, func(a []Expr) Expr { return recip(sq(fn("cosh", a[0]))) }},

	"asinh": {1, func(a []Expr) Expr { return recip(fn("sqrt", AddOf(sq(a[0]), one()))) }},
	"acosh": {1, func(a []Expr) Expr { return recip(fn("sqrt", SubOf(sq(a[0]), one()))) }},
	"atanh": {1, func(a []Expr) Expr { return recip(SubOf(one(), sq(a[0]))) }},

	"exp":   {1, func(a []Expr) Expr { return fn("exp", a[0]) }},
	"expm1": {1, func(a []Expr) Expr { return fn("exp", a[0]) }},
	"log":   {1, func(a []Expr) Expr { return recip(a[0]) }},
	"log10": {1, func(a []Expr) Expr { return recip(MulOf(a[0], fn("log", N(10)))) }},
	"log1p": {1, func(a []Expr) Expr { return recip(AddOf(one(), a[0])) }},
	"sqrt":  {1, func(a []Expr) Expr { return recip(MulOf(N(2), fn("sqrt", a[0]))) }},

	"pi":  {0, func([]Expr) Expr { return N(0) }},
	"pow": {2, nil},
}

// FunctionNames returns the sorted function vocabulary the engines accept.
func FunctionNames() []string {
	names := make([]string, 0, len(funcTable))
	for name := range funcTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Arity returns the number of arguments name takes, and false when name is
// not a known function.
func Arity(name string) (int, bool) {
	spec, ok := funcTable[name]
	return spec.arity, ok
}

// OuterDerivative returns the chain-rule outer factor of name evaluated on a
// copy of args. pow has no single outer factor and is rejected here.
func OuterDerivative(name string, args ...Expr) (Expr, error) {
	f := Call(name, args...)
	spec, err := lookupFunc(f)
	if err != nil {
		return nil, err
	}
	if spec.outer == nil {
		return nil, newError(ErrUnsupportedNode, f, "%s has no single outer derivative", name)
	}
	return spec.outer(copyAll(f.args)), nil
}

// lookupFunc resolves f against the table and checks its arguments.
func lookupFunc(f *Func) (funcSpec, error) {
	spec, err := checkArity(f)
	if err != nil {
		return funcSpec{}, err
	}
	for i, a := range f.args {
		if a == nil {
			return funcSpec{}, newError(ErrMissingOperand, f, "%s: argument %d is nil", f.name, i)
		}
	}
	return spec, nil
}

// checkArity resolves f by name. Too few arguments is a missing operand; an
// unknown name or too many arguments is unsupported.
func checkArity(f *Func) (funcSpec, error) {
	spec, ok := funcTable[f.name]
	if !ok {
		return funcSpec{}, newError(ErrUnsupportedNode, f, "unknown function %q", f.name)
	}
	if len(f.args) < spec.arity {
		return funcSpec{}, newError(ErrMissingOperand, f, "%s takes %d argument(s), got %d", f.name, spec.arity, len(f.args))
	}
	if len(f.args) > spec.arity {
		return funcSpec{}, newError(ErrUnsupportedNode, f, "%s takes %d argument(s), got %d", f.name, spec.arity, len(f.args))
	}
	return spec, nil
}
