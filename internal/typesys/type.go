// Package typesys defines the Type lattice used by semantic analysis:
// primitive types, widening constraints, owned/borrowed reference
// types, named (struct) types, and the type variables the unifier
// solves for. A TypeContext hash-conses Type values so that pointer
// equality implies structural equality everywhere else in this module.
package typesys

import "fmt"

// Type is any member of the type lattice. As with ast.Exp, Go
// interface + marker method + type switch stands in for the tag+
// downcast polymorphism of the implementation this was derived from.
type Type interface {
	typeNode()
	String() string
}

// Primitive enumerates concrete primitive type kinds.
type Primitive uint8

const (
	PrimBool Primitive = iota
	PrimI8
	PrimI32
	PrimI64
	PrimF32
	PrimF64
	PrimUnit
	PrimString
)

func (p Primitive) String() string {
	switch p {
	case PrimBool:
		return "bool"
	case PrimI8:
		return "i8"
	case PrimI32:
		return "i32"
	case PrimI64:
		return "i64"
	case PrimF32:
		return "f32"
	case PrimF64:
		return "f64"
	case PrimUnit:
		return "unit"
	case PrimString:
		return "string"
	default:
		return "<?primitive>"
	}
}

// PrimitiveType is a concrete primitive type.
type PrimitiveType struct {
	Kind Primitive
}

func (*PrimitiveType) typeNode()          {}
func (t *PrimitiveType) String() string   { return t.Kind.String() }

// ConstraintKind enumerates widenable literal type classes.
type ConstraintKind uint8

const (
	ConstraintNumeric ConstraintKind = iota
	ConstraintDecimal
)

func (c ConstraintKind) String() string {
	if c == ConstraintDecimal {
		return "decimal"
	}
	return "numeric"
}

// AllowsPrimitive reports whether p is one of the primitives this
// constraint may widen to.
func (c ConstraintKind) AllowsPrimitive(p Primitive) bool {
	switch c {
	case ConstraintNumeric:
		return p == PrimI8 || p == PrimI32 || p == PrimI64
	case ConstraintDecimal:
		return p == PrimF32 || p == PrimF64
	default:
		return false
	}
}

// DefaultPrimitive is the primitive an unresolved constraint defaults
// to if the Resolver reaches it still unbound.
func (c ConstraintKind) DefaultPrimitive() Primitive {
	if c == ConstraintDecimal {
		return PrimF64
	}
	return PrimI32
}

// Constraint is an unresolved literal type class (e.g. an integer
// literal before it's unified against a concrete width).
type Constraint struct {
	Kind ConstraintKind
}

func (*Constraint) typeNode()        {}
func (c *Constraint) String() string { return c.Kind.String() }

// RefType is an owned or borrowed reference to Inner.
type RefType struct {
	Inner   Type
	IsOwned bool
}

func (*RefType) typeNode() {}
func (t *RefType) String() string {
	if t.IsOwned {
		return "own " + t.Inner.String()
	}
	return "ref " + t.Inner.String()
}

// NameType references a cataloged struct by its fully qualified name.
type NameType struct {
	FQN string
}

func (*NameType) typeNode()        {}
func (t *NameType) String() string { return t.FQN }

// TypeVar is a union-find node used during unification. A TypeVar
// either points at another TypeVar (Parent != nil, not yet the root of
// its equivalence class) or is terminal, in which case Bound (if
// non-nil) is the concrete type it has been unified to.
type TypeVar struct {
	id     uint64
	Parent *TypeVar
	Bound  Type
}

func (*TypeVar) typeNode() {}
func (v *TypeVar) String() string {
	if v.Bound != nil {
		return v.Bound.String()
	}
	return fmt.Sprintf("?t%d", v.id)
}
