package unify

import (
	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/typesys"
)

// Resolver is the fourth of the per-declaration phases: it scrubs
// every TypeVar from a unified AST, defaulting any constraint that
// unification left unresolved (numeric -> i32, decimal -> f64) rather
// than treating it as an error, per the Resolver Open Question decided
// in DESIGN.md. Grounded in typer/Resolver.hpp.
type Resolver struct {
	tc *typesys.TypeContext
}

// NewResolver creates a Resolver sharing tc with the Unifier that
// produced the TypeVars being resolved.
func NewResolver(tc *typesys.TypeContext) *Resolver {
	return &Resolver{tc: tc}
}

// ResolveFunc resolves f's parameter types, return type, and body.
func (r *Resolver) ResolveFunc(f *ast.FunctionDecl) {
	for i := range f.Params {
		f.Params[i].Type = r.ResolveType(f.Params[i].Type)
	}
	f.RetType = r.ResolveType(f.RetType)
	if f.Body != nil {
		r.ResolveExp(f.Body)
	}
}

// ResolveExp recursively replaces every node's type with its resolved,
// TypeVar-free form.
func (r *Resolver) ResolveExp(e ast.Exp) {
	if e == nil {
		return
	}
	e.SetType(r.ResolveType(e.GetType()))
	for _, child := range e.Children() {
		r.ResolveExp(child)
	}
}

// ResolveType removes all TypeVars from t, descending into RefType.
func (r *Resolver) ResolveType(t typesys.Type) typesys.Type {
	if t == nil {
		return nil
	}
	switch ty := resolveDeep(t).(type) {
	case *typesys.TypeVar:
		// Still unbound after unification: default its would-be
		// constraint. A bare unbound TypeVar with no constraint
		// history defaults to i32, matching the numeric default.
		return r.tc.Primitive(typesys.PrimI32)
	case *typesys.Constraint:
		return r.tc.Primitive(ty.Kind.DefaultPrimitive())
	case *typesys.RefType:
		return r.tc.Ref(r.ResolveType(ty.Inner), ty.IsOwned)
	default:
		return ty
	}
}
