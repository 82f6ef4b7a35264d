package symdiff

// ============================================================
// Numeric predicates
// ============================================================

// IsZero reports whether e is the integer constant 0.
func IsZero(e Expr) bool { return isNumEqual(e, 0) }

// IsUnity reports whether e is the integer constant 1.
func IsUnity(e Expr) bool { return isNumEqual(e, 1) }

// IsIntegerConstant reports whether e is an integer constant.
func IsIntegerConstant(e Expr) bool { _, ok := e.(*Num); return ok }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.val == v
}

func isNegativeNum(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.val < 0
}
