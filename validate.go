package symdiff

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// ============================================================
// Structural validation
// ============================================================

// Validate checks the structural invariants of e: no nil children, every
// function name known and every call with the right arity. All problems are
// reported together as a *multierror.Error.
func Validate(e Expr) error {
	if e == nil {
		return newError(ErrUnsupportedNode, nil, "nil expression")
	}
	return e.validate("$", nil)
}

func validateChild(e Expr, path string, reterr error) error {
	if e == nil {
		return multierror.Append(reterr, newError(ErrMissingOperand, nil, "%s is nil", path))
	}
	return e.validate(path, reterr)
}

func (b binary) validatePair(path string, reterr error) error {
	reterr = validateChild(b.left, path+".left", reterr)
	return validateChild(b.right, path+".right", reterr)
}

func (n *Num) validate(_ string, reterr error) error { return reterr }
func (s *Sym) validate(path string, reterr error) error {
	if s.name == "" {
		return multierror.Append(reterr, newError(ErrUnsupportedNode, s, "%s: empty variable name", path))
	}
	return reterr
}

func (a *Add) validate(path string, reterr error) error { return a.validatePair(path, reterr) }
func (s *Sub) validate(path string, reterr error) error { return s.validatePair(path, reterr) }
func (m *Mul) validate(path string, reterr error) error { return m.validatePair(path, reterr) }
func (d *Div) validate(path string, reterr error) error { return d.validatePair(path, reterr) }
func (p *Pow) validate(path string, reterr error) error { return p.validatePair(path, reterr) }

func (n *Neg) validate(path string, reterr error) error {
	return validateChild(n.x, path+".expr", reterr)
}

func (f *Func) validate(path string, reterr error) error {
	if _, err := checkArity(f); err != nil {
		reterr = multierror.Append(reterr, errors.Wrap(err, path))
	}
	for i, a := range f.args {
		reterr = validateChild(a, fmt.Sprintf("%s.args[%d]", path, i), reterr)
	}
	return reterr
}

func (s *Stmt) validate(path string, reterr error) error {
	return validateChild(s.x, path+".expr", reterr)
}
