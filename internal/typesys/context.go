package typesys

import (
	"sync"

	"github.com/hashicorp/go-set/v2"
)

// TypeContext hash-conses Type values so that two structurally equal
// types are the same pointer, and allocates fresh TypeVars for
// unification. Safe for concurrent use from multiple declaration-level
// analysis goroutines once cataloging has finished.
type TypeContext struct {
	mu sync.RWMutex

	primitives map[Primitive]*PrimitiveType
	constraint map[ConstraintKind]*Constraint
	refs       map[refKey]*RefType
	names      map[string]*NameType

	// interned tracks every distinct Type this context has produced,
	// primarily so tests and debugging tools can enumerate the live
	// set without walking the AST.
	interned *set.Set[Type]

	nextVarID uint64
}

type refKey struct {
	inner   Type
	isOwned bool
}

// NewTypeContext creates an empty context.
func NewTypeContext() *TypeContext {
	return &TypeContext{
		primitives: make(map[Primitive]*PrimitiveType),
		constraint: make(map[ConstraintKind]*Constraint),
		refs:       make(map[refKey]*RefType),
		names:      make(map[string]*NameType),
		interned:   set.New[Type](64),
	}
}

// Primitive returns the uniqued PrimitiveType for kind.
func (tc *TypeContext) Primitive(kind Primitive) *PrimitiveType {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if t, ok := tc.primitives[kind]; ok {
		return t
	}
	t := &PrimitiveType{Kind: kind}
	tc.primitives[kind] = t
	tc.interned.Insert(t)
	return t
}

// Constraint returns the uniqued Constraint for kind.
func (tc *TypeContext) Constraint(kind ConstraintKind) *Constraint {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if t, ok := tc.constraint[kind]; ok {
		return t
	}
	t := &Constraint{Kind: kind}
	tc.constraint[kind] = t
	tc.interned.Insert(t)
	return t
}

// Ref returns the uniqued RefType wrapping inner.
func (tc *TypeContext) Ref(inner Type, isOwned bool) *RefType {
	key := refKey{inner: inner, isOwned: isOwned}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if t, ok := tc.refs[key]; ok {
		return t
	}
	t := &RefType{Inner: inner, IsOwned: isOwned}
	tc.refs[key] = t
	tc.interned.Insert(t)
	return t
}

// Name returns the uniqued NameType for a fully qualified struct name.
func (tc *TypeContext) Name(fqn string) *NameType {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if t, ok := tc.names[fqn]; ok {
		return t
	}
	t := &NameType{FQN: fqn}
	tc.names[fqn] = t
	tc.interned.Insert(t)
	return t
}

// FreshVar allocates a new, unbound TypeVar.
func (tc *TypeContext) FreshVar() *TypeVar {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.nextVarID++
	v := &TypeVar{id: tc.nextVarID}
	tc.interned.Insert(v)
	return v
}

// InternedCount returns how many distinct Type values this context has
// produced; used by tests asserting uniquing actually happened.
func (tc *TypeContext) InternedCount() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.interned.Size()
}
