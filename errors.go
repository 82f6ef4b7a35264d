package symdiff

import (
	"fmt"

	"github.com/pkg/errors"
)

// ============================================================
// Error kinds
// ============================================================

var (
	// ErrUnsupportedNode is returned when a node kind or function name has
	// no rule in the engine that received it.
	ErrUnsupportedNode = errors.New("unsupported node")
	// ErrMissingOperand is returned when a function call lacks a required
	// argument, such as pow without its exponent.
	ErrMissingOperand = errors.New("missing operand")
	// ErrDivisionByZero is returned when a divisor simplifies to 0.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrIndeterminateForm is returned for 0^0.
	ErrIndeterminateForm = errors.New("indeterminate form")
)

// Error describes a terminal failure of an engine together with the
// offending subexpression.
type Error struct {
	Kind error
	Expr Expr
	Msg  string
}

func newError(kind error, e Expr, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Expr: e, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	s := e.Kind.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Expr != nil {
		s += " in " + e.Expr.String()
	}
	return s
}

// Unwrap returns the error kind, so errors.Is(err, ErrDivisionByZero) works.
func (e *Error) Unwrap() error { return e.Kind }

// KindOf returns a stable short name for the kind of err, or "" when err is
// not one of the engine error kinds.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedNode):
		return "unsupported_node"
	case errors.Is(err, ErrMissingOperand):
		return "missing_operand"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, ErrIndeterminateForm):
		return "indeterminate_form"
	case errors.Is(err, ErrUnboundVariable):
		return "unbound_variable"
	}
	return ""
}

// OffendingExpr returns the subexpression attached to err, if any.
func OffendingExpr(err error) Expr {
	var e *Error
	if errors.As(err, &e) {
		return e.Expr
	}
	return nil
}
