// Package lvalue classifies expressions as lvalues or not, the
// contract the borrow checker relies on to decide which expressions
// produce an AccessPath. Grounded in sema/LValueMarker.hpp.
package lvalue

import (
	"fmt"

	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/location"
)

// Is reports whether e is an lvalue: exactly a NameExp, a DerefExp, an
// arrow ProjectExp, a dot ProjectExp whose base is itself an lvalue, or
// an AscripExp whose ascriptee is an lvalue.
func Is(e ast.Exp) bool {
	switch exp := e.(type) {
	case *ast.NameExp:
		return true
	case *ast.DerefExp:
		return true
	case *ast.ProjectExp:
		if exp.IsArrow {
			return true
		}
		return Is(exp.Base)
	case *ast.AscripExp:
		return Is(exp.Inner)
	default:
		return false
	}
}

// Check walks e and every descendant, reporting every AddrOfExp whose
// Base is not an lvalue and every AssignExp whose LHS is not an
// lvalue. This is the standalone LValueMarker phase; the borrow
// checker additionally guards move/unmove/assign operands itself so
// it never misclassifies a path when this phase is skipped in tests
// that exercise it directly.
func Check(e ast.Exp) []error {
	var errs []error
	var walk func(ast.Exp)
	walk = func(e ast.Exp) {
		if e == nil {
			return
		}
		switch exp := e.(type) {
		case *ast.AddrOfExp:
			if !Is(exp.Base) {
				errs = append(errs, &ErrNotLValue{Loc: exp.Base.GetLoc(), Context: "address-of"})
			}
		case *ast.AssignExp:
			if !Is(exp.LHS) {
				errs = append(errs, &ErrNotLValue{Loc: exp.LHS.GetLoc(), Context: "assignment"})
			}
		}
		for _, child := range e.Children() {
			walk(child)
		}
	}
	walk(e)
	return errs
}

// ErrNotLValue reports an expression used in a position (address-of
// operand, assignment target) that requires an lvalue.
type ErrNotLValue struct {
	Loc     location.Location
	Context string
}

func (e *ErrNotLValue) Error() string {
	return fmt.Sprintf("%s requires an lvalue operand", e.Context)
}
