// Package unify implements Hindley-Milner style type unification over
// a union-find of TypeVars, plus a Resolver pass that scrubs every
// TypeVar from a typed AST once unification succeeds. Grounded in two
// original prototypes that disagree on node representation but agree
// on algorithm shape (typer/Typer.hpp's early node-numbered unify, and
// typer/Unifier.hpp's TVar/Addr<> version), re-derived here against the
// final common/Type.hpp raw-pointer Type/TypeVar shape.
package unify

import (
	"fmt"

	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/location"
	"github.com/rowlandz/miscr/internal/ontology"
	"github.com/rowlandz/miscr/internal/typesys"
)

// Unifier performs type inference over a single declaration's body. A
// fresh Unifier runs per function (or expression); the union-find
// tables it operates on are expected to outlive it (shared with the
// Resolver that runs right after).
type Unifier struct {
	ont    *ontology.Ontology
	tc     *typesys.TypeContext
	locals map[string]typesys.Type
	errs   []error
}

// New creates a Unifier with no locals. UnifyFunc seeds the locals with
// the function's parameter types; UnifyExp sees only the locals already
// recorded.
func New(ont *ontology.Ontology, tc *typesys.TypeContext) *Unifier {
	return &Unifier{ont: ont, tc: tc, locals: make(map[string]typesys.Type)}
}

// Errors returns every unification error accumulated so far.
func (u *Unifier) Errors() []error {
	return u.errs
}

// UnifyFunc type-checks f's body against its declared parameter and
// return types.
func (u *Unifier) UnifyFunc(f *ast.FunctionDecl) {
	for _, p := range f.Params {
		u.locals[p.Name] = p.Type
	}
	if f.Body == nil {
		return
	}
	bodyTy := u.UnifyExp(f.Body)
	u.unify(f.Body.GetLoc(), bodyTy, f.RetType)
}

// UnifyExp infers and assigns a type to every node in e, returning e's
// own (possibly still-unresolved) type.
func (u *Unifier) UnifyExp(e ast.Exp) typesys.Type {
	if e == nil {
		return nil
	}

	switch exp := e.(type) {
	case *ast.LiteralExp:
		var t typesys.Type
		switch exp.Kind {
		case ast.LitInt:
			t = u.freshConstrained(typesys.ConstraintNumeric)
		case ast.LitFloat:
			t = u.freshConstrained(typesys.ConstraintDecimal)
		case ast.LitBool:
			t = u.tc.Primitive(typesys.PrimBool)
		case ast.LitString:
			t = u.tc.Primitive(typesys.PrimString)
		}
		exp.SetType(t)
		return t

	case *ast.NameExp:
		t := u.locals[exp.Name]
		if t == nil {
			t = u.tc.FreshVar()
			u.locals[exp.Name] = t
		}
		exp.SetType(t)
		return t

	case *ast.BinopExp:
		lt := u.UnifyExp(exp.LHS)
		rt := u.UnifyExp(exp.RHS)
		switch exp.Op {
		case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
			u.unify(exp.GetLoc(), rt, lt)
			t := u.tc.Primitive(typesys.PrimBool)
			exp.SetType(t)
			return t
		case ast.OpAnd, ast.OpOr:
			bt := u.tc.Primitive(typesys.PrimBool)
			u.unify(exp.GetLoc(), lt, bt)
			u.unify(exp.GetLoc(), rt, bt)
			exp.SetType(bt)
			return bt
		default:
			numeric := u.tc.Constraint(typesys.ConstraintNumeric)
			u.unify(exp.GetLoc(), lt, numeric)
			u.unify(exp.GetLoc(), rt, lt)
			exp.SetType(lt)
			return lt
		}

	case *ast.CallExp:
		var retTy typesys.Type = u.tc.FreshVar()
		if fn, ok := u.ont.LookupFunction(exp.FuncName); ok {
			if decl, ok := fn.Decl.(*ast.FunctionDecl); ok {
				for i, arg := range exp.Args {
					at := u.UnifyExp(arg)
					if i < len(decl.Params) {
						u.unify(arg.GetLoc(), at, decl.Params[i].Type)
					}
				}
				if decl.RetType != nil {
					retTy = decl.RetType
				}
				exp.SetType(retTy)
				return retTy
			}
		}
		for _, arg := range exp.Args {
			u.UnifyExp(arg)
		}
		exp.SetType(retTy)
		return retTy

	case *ast.ConstrExp:
		structTy := u.tc.Name(exp.StructName)
		if sd, ok := u.ont.StructDecl(exp.StructName); ok {
			for i, arg := range exp.Args {
				at := u.UnifyExp(arg)
				if i < len(sd.Fields) {
					u.unify(arg.GetLoc(), at, sd.Fields[i].Type)
				}
			}
		} else {
			for _, arg := range exp.Args {
				u.UnifyExp(arg)
			}
		}
		exp.SetType(structTy)
		return structTy

	case *ast.ProjectExp:
		baseTy := u.UnifyExp(exp.Base)
		fieldTy := u.fieldType(baseTy, exp.Field)
		if fieldTy == nil {
			fieldTy = u.tc.FreshVar()
			u.errs = append(u.errs, &ErrUnification{Loc: exp.GetLoc(),
				Message: fmt.Sprintf("type '%s' has no field '%s'", typeString(baseTy), exp.Field)})
		}
		exp.SetType(fieldTy)
		return fieldTy

	case *ast.ArrayAccessExp:
		baseTy := u.UnifyExp(exp.Base)
		u.UnifyExp(exp.Index)
		elemTy := u.elementType(baseTy)
		if elemTy == nil {
			elemTy = u.tc.FreshVar()
		}
		exp.SetType(elemTy)
		return elemTy

	case *ast.DerefExp:
		baseTy := u.UnifyExp(exp.Base)
		var innerTy typesys.Type
		if ref, ok := resolveShallow(baseTy).(*typesys.RefType); ok {
			innerTy = ref.Inner
		} else {
			innerTy = u.tc.FreshVar()
			u.errs = append(u.errs, &ErrUnification{Loc: exp.GetLoc(),
				Message: fmt.Sprintf("cannot dereference non-reference type '%s'", typeString(baseTy))})
		}
		exp.SetType(innerTy)
		return innerTy

	case *ast.AddrOfExp:
		baseTy := u.UnifyExp(exp.Base)
		refTy := u.tc.Ref(baseTy, false)
		exp.SetType(refTy)
		return refTy

	case *ast.AscripExp:
		innerTy := u.UnifyExp(exp.Inner)
		u.unify(exp.GetLoc(), innerTy, exp.AscribedType)
		exp.SetType(exp.AscribedType)
		return exp.AscribedType

	case *ast.LetExp:
		valTy := u.UnifyExp(exp.Value)
		prev, had := u.locals[exp.Name]
		u.locals[exp.Name] = valTy
		bodyTy := u.UnifyExp(exp.Body)
		if had {
			u.locals[exp.Name] = prev
		} else {
			delete(u.locals, exp.Name)
		}
		exp.SetType(bodyTy)
		return bodyTy

	case *ast.ArrayInitExp:
		var elemTy typesys.Type = u.tc.FreshVar()
		for _, el := range exp.Elems {
			et := u.UnifyExp(el)
			u.unify(el.GetLoc(), et, elemTy)
		}
		exp.SetType(elemTy)
		return elemTy

	case *ast.IfExp:
		condTy := u.UnifyExp(exp.Cond)
		u.unify(exp.Cond.GetLoc(), condTy, u.tc.Primitive(typesys.PrimBool))
		thenTy := u.UnifyExp(exp.Then)
		if exp.Else == nil {
			unitTy := u.tc.Primitive(typesys.PrimUnit)
			exp.SetType(unitTy)
			return unitTy
		}
		elseTy := u.UnifyExp(exp.Else)
		u.unify(exp.GetLoc(), elseTy, thenTy)
		exp.SetType(thenTy)
		return thenTy

	case *ast.BlockExp:
		var last typesys.Type = u.tc.Primitive(typesys.PrimUnit)
		for _, s := range exp.Stmts {
			last = u.UnifyExp(s)
		}
		exp.SetType(last)
		return last

	case *ast.MoveExp:
		t := u.UnifyExp(exp.Inner)
		exp.SetType(t)
		return t

	case *ast.UnmoveExp:
		innerTy := u.UnifyExp(exp.Inner)
		valTy := u.UnifyExp(exp.Value)
		u.unify(exp.GetLoc(), valTy, innerTy)
		unitTy := u.tc.Primitive(typesys.PrimUnit)
		exp.SetType(unitTy)
		return unitTy

	case *ast.BorrowExp:
		innerTy := u.UnifyExp(exp.Inner)
		var resultTy typesys.Type
		if ref, ok := resolveShallow(innerTy).(*typesys.RefType); ok && ref.IsOwned {
			resultTy = u.tc.Ref(ref.Inner, false)
		} else {
			resultTy = u.tc.Ref(u.tc.FreshVar(), false)
			u.errs = append(u.errs, &ErrUnification{Loc: exp.GetLoc(),
				Message: fmt.Sprintf("cannot borrow non-owned reference of type '%s'", typeString(innerTy))})
		}
		exp.SetType(resultTy)
		return resultTy

	case *ast.UnaryExp:
		innerTy := u.UnifyExp(exp.Inner)
		switch exp.Op {
		case ast.OpNot:
			boolTy := u.tc.Primitive(typesys.PrimBool)
			u.unify(exp.GetLoc(), innerTy, boolTy)
			exp.SetType(boolTy)
			return boolTy
		default: // OpNeg
			u.unify(exp.GetLoc(), innerTy, u.tc.Constraint(typesys.ConstraintNumeric))
			exp.SetType(innerTy)
			return innerTy
		}

	case *ast.WhileExp:
		condTy := u.UnifyExp(exp.Cond)
		u.unify(exp.Cond.GetLoc(), condTy, u.tc.Primitive(typesys.PrimBool))
		u.UnifyExp(exp.Body)
		unitTy := u.tc.Primitive(typesys.PrimUnit)
		exp.SetType(unitTy)
		return unitTy

	case *ast.ReturnExp:
		if exp.Value != nil {
			u.UnifyExp(exp.Value)
		}
		unitTy := u.tc.Primitive(typesys.PrimUnit)
		exp.SetType(unitTy)
		return unitTy

	case *ast.AssignExp:
		lt := u.UnifyExp(exp.LHS)
		rt := u.UnifyExp(exp.RHS)
		u.unify(exp.GetLoc(), rt, lt)
		unitTy := u.tc.Primitive(typesys.PrimUnit)
		exp.SetType(unitTy)
		return unitTy
	}

	return nil
}

func (u *Unifier) fieldType(baseTy typesys.Type, field string) typesys.Type {
	nt, ok := resolveShallow(baseTy).(*typesys.NameType)
	if !ok {
		return nil
	}
	sd, ok := u.ont.StructDecl(nt.FQN)
	if !ok {
		return nil
	}
	for _, f := range sd.Fields {
		if f.Name == field {
			return f.Type
		}
	}
	return nil
}

func (u *Unifier) elementType(baseTy typesys.Type) typesys.Type {
	if ref, ok := resolveShallow(baseTy).(*typesys.RefType); ok {
		return ref.Inner
	}
	return nil
}

// freshConstrained allocates a fresh TypeVar pre-bound to kind's
// constraint. A literal's own type slot must stay a TypeVar (not the
// shared, immutable Constraint value itself) so that later unification
// against a concrete context type can rebind the literal's own slot to
// that more specific primitive instead of leaving it stuck at the
// constraint for the Resolver to default blindly.
func (u *Unifier) freshConstrained(kind typesys.ConstraintKind) *typesys.TypeVar {
	v := u.tc.FreshVar()
	v.Bound = u.tc.Constraint(kind)
	return v
}

// unify enforces that a and b resolve to the same type, widening
// constraints as needed and rebinding whichever side is (or resolves
// to) a TypeVar so that "the more specific type wins": a TypeVar bound
// only to a Constraint gets upgraded to a concrete primitive the
// moment one is unified against it. It never panics; a mismatch is
// recorded as an error and the call proceeds using a's (post-widening)
// type so later inference keeps propagating instead of cascading into
// `nil`s.
func (u *Unifier) unify(loc location.Location, a, b typesys.Type) {
	if a == nil || b == nil {
		return
	}
	va, ba := resolveVar(a)
	vb, bb := resolveVar(b)

	switch {
	case va != nil && vb != nil:
		if va == vb {
			return
		}
		merged := u.unifyBound(loc, ba, bb)
		vb.Parent = va
		va.Bound = merged

	case va != nil:
		va.Bound = u.unifyBound(loc, ba, bb)

	case vb != nil:
		vb.Bound = u.unifyBound(loc, bb, ba)

	default:
		u.unifyConcrete(loc, ba, bb)
	}
}

// unifyBound merges a TypeVar's current bound (x, possibly nil if
// still wholly unconstrained) against the type it's being unified with
// (y), returning the type that should become the var's new bound. A
// nil side simply adopts the other; two non-nil sides widen via
// unifyConcrete exactly as two already-concrete types would.
func (u *Unifier) unifyBound(loc location.Location, x, y typesys.Type) typesys.Type {
	if x == nil {
		return y
	}
	if y == nil {
		return x
	}
	return u.unifyConcrete(loc, x, y)
}

// unifyConcrete unifies two types that are not themselves (or don't
// resolve through a TypeVar to) further variables, returning the more
// specific of the two on success. A Constraint unified against a
// compatible concrete primitive yields that primitive; two Constraints
// of the same kind yield the constraint unchanged; everything else
// requires a syntactic match, recursing into RefType's inner type
// (which may itself still bottom out in a TypeVar).
func (u *Unifier) unifyConcrete(loc location.Location, a, b typesys.Type) typesys.Type {
	if ca, ok := a.(*typesys.Constraint); ok {
		if pb, ok := b.(*typesys.PrimitiveType); ok && ca.Kind.AllowsPrimitive(pb.Kind) {
			return pb
		}
		if cb, ok := b.(*typesys.Constraint); ok && cb.Kind == ca.Kind {
			return ca
		}
		u.mismatch(loc, a, b)
		return a
	}
	if cb, ok := b.(*typesys.Constraint); ok {
		if pa, ok := a.(*typesys.PrimitiveType); ok && cb.Kind.AllowsPrimitive(pa.Kind) {
			return pa
		}
		u.mismatch(loc, a, b)
		return a
	}

	if pa, ok := a.(*typesys.PrimitiveType); ok {
		if pb, ok := b.(*typesys.PrimitiveType); ok && pa.Kind == pb.Kind {
			return pa
		}
		u.mismatch(loc, a, b)
		return a
	}

	if na, ok := a.(*typesys.NameType); ok {
		if nb, ok := b.(*typesys.NameType); ok && na.FQN == nb.FQN {
			return na
		}
		u.mismatch(loc, a, b)
		return a
	}

	if refa, ok := a.(*typesys.RefType); ok {
		if refb, ok := b.(*typesys.RefType); ok && refa.IsOwned == refb.IsOwned {
			u.unify(loc, refa.Inner, refb.Inner)
			return refa
		}
		u.mismatch(loc, a, b)
		return a
	}

	u.mismatch(loc, a, b)
	return a
}

func (u *Unifier) mismatch(loc location.Location, a, b typesys.Type) {
	u.errs = append(u.errs, &ErrUnification{
		Loc:     loc,
		Message: fmt.Sprintf("cannot unify '%s' with '%s'", typeString(a), typeString(b)),
	})
}

func typeString(t typesys.Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

// find returns the representative TypeVar of v's equivalence class,
// with path compression.
func find(v *typesys.TypeVar) *typesys.TypeVar {
	if v.Parent == nil {
		return v
	}
	root := find(v.Parent)
	v.Parent = root
	return root
}

// resolveVar reports whether t is (or chases through Parent links to)
// a TypeVar, returning its union-find root and that root's current
// bound type (nil if the variable is still wholly unconstrained). For
// a non-TypeVar t, it returns (nil, t) unchanged.
func resolveVar(t typesys.Type) (*typesys.TypeVar, typesys.Type) {
	v, ok := t.(*typesys.TypeVar)
	if !ok {
		return nil, t
	}
	root := find(v)
	return root, root.Bound
}

// resolveShallow follows TypeVar bindings until a non-TypeVar (or an
// unbound terminal TypeVar) is reached, without descending into
// compound types.
func resolveShallow(t typesys.Type) typesys.Type {
	return resolveDeep(t)
}

// resolveDeep is the shared TypeVar-chasing resolution used by both
// unify and the callers above; it's a no-op for non-TypeVar types.
func resolveDeep(t typesys.Type) typesys.Type {
	v, ok := t.(*typesys.TypeVar)
	if !ok {
		return t
	}
	root := find(v)
	if root.Bound != nil {
		return root.Bound
	}
	return root
}

// ErrUnification reports a type mismatch the unifier could not resolve.
type ErrUnification struct {
	Loc     location.Location
	Message string
}

func (e *ErrUnification) Error() string { return e.Message }
