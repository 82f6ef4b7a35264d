package symdiff

// ============================================================
// Substitution
// ============================================================

// Substitute returns a copy of e with every occurrence of varName replaced by
// its own copy of value. The result is not simplified.
func Substitute(e Expr, varName string, value Expr) (Expr, error) {
	if e == nil || value == nil {
		return nil, newError(ErrUnsupportedNode, nil, "nil expression")
	}
	if err := Validate(e); err != nil {
		return nil, err
	}
	return e.subst(varName, value), nil
}

func (n *Num) subst(string, Expr) Expr { return n.copy() }

func (s *Sym) subst(varName string, value Expr) Expr {
	if s.name == varName {
		return Copy(value)
	}
	return s.copy()
}

func (b binary) substPair(varName string, value Expr) (Expr, Expr) {
	return b.left.subst(varName, value), b.right.subst(varName, value)
}

func (a *Add) subst(varName string, value Expr) Expr { return AddOf(a.substPair(varName, value)) }
func (s *Sub) subst(varName string, value Expr) Expr { return SubOf(s.substPair(varName, value)) }
func (m *Mul) subst(varName string, value Expr) Expr { return MulOf(m.substPair(varName, value)) }
func (d *Div) subst(varName string, value Expr) Expr { return DivOf(d.substPair(varName, value)) }
func (p *Pow) subst(varName string, value Expr) Expr { return PowOf(p.substPair(varName, value)) }
func (n *Neg) subst(varName string, value Expr) Expr { return NegOf(n.x.subst(varName, value)) }

func (f *Func) subst(varName string, value Expr) Expr {
	args := make([]Expr, len(f.args))
	for i, a := range f.args {
		args[i] = a.subst(varName, value)
	}
	return &Func{name: f.name, args: args}
}

func (s *Stmt) subst(varName string, value Expr) Expr { return StmtOf(s.x.subst(varName, value)) }
