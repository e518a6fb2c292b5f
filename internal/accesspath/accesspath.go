// Package accesspath provides the symbolic lvalue representation the
// borrow checker tracks state against. Grounded in
// borrowchecker/AccessPath.hpp, including its DEREF/PROJECT
// normalization rewrite and structural hash-consing.
package accesspath

import (
	"fmt"
	"sync"

	"github.com/rowlandz/miscr/internal/ast"
)

// AccessPath is a symbolic lvalue: a root binding optionally followed
// by field projections, array offsets, and dereferences.
type AccessPath interface {
	accessPathNode()
	key() string
}

// Root is a named binding (parameter or let-bound local).
type Root struct {
	Name string
}

func (*Root) accessPathNode() {}
func (p *Root) key() string   { return "R:" + p.Name }

// Project is a field projection. IsAddrCalc marks a projection that
// only computes an address (produced while still inside a `&expr`
// context) as opposed to one that has been dereferenced through.
type Project struct {
	Base       AccessPath
	Field      string
	IsAddrCalc bool
}

func (*Project) accessPathNode() {}
func (p *Project) key() string {
	return fmt.Sprintf("P:%s.%s:%v", p.Base.key(), p.Field, p.IsAddrCalc)
}

// ArrayOffset is an array element access at a (symbolically opaque)
// expression index; two ArrayOffsets over the same base but different
// index expressions are treated as distinct paths, matching the
// original's conservative treatment of dynamic indices.
type ArrayOffset struct {
	Base  AccessPath
	Index ast.Exp
}

func (*ArrayOffset) accessPathNode() {}
func (p *ArrayOffset) key() string {
	return fmt.Sprintf("A:%s[%p]", p.Base.key(), p.Index)
}

// Deref is a dereference of a reference-typed base.
type Deref struct {
	Base AccessPath
}

func (*Deref) accessPathNode() {}
func (p *Deref) key() string   { return "D:" + p.Base.key() }

// Manager hash-conses AccessPath values by structural key so that
// pointer equality implies structural equality, and applies the
// DEREF/PROJECT normalization rewrite: `B[.f]!` (a Deref of an
// address-calculating Project) normalizes to `B!.f` (a non-address-
// calculating Project of a Deref), since dereferencing an address
// calculation and then reading it is the same access as dereferencing
// first and then projecting. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	interned map[string]AccessPath
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{interned: make(map[string]AccessPath)}
}

func (m *Manager) intern(p AccessPath) AccessPath {
	k := p.key()
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.interned[k]; ok {
		return existing
	}
	m.interned[k] = p
	return p
}

// Root returns the uniqued root path for name.
func (m *Manager) Root(name string) AccessPath {
	return m.intern(&Root{Name: name})
}

// Project returns the uniqued projection of base.field. It applies no
// rewrite of its own; the normalization rewrite happens in Deref.
func (m *Manager) Project(base AccessPath, field string, isAddrCalc bool) AccessPath {
	return m.intern(&Project{Base: base, Field: field, IsAddrCalc: isAddrCalc})
}

// ArrayOffset returns the uniqued array-element path.
func (m *Manager) ArrayOffset(base AccessPath, index ast.Exp) AccessPath {
	return m.intern(&ArrayOffset{Base: base, Index: index})
}

// Deref returns the uniqued dereference of base, rewriting
// Deref(Project(b, f, isAddrCalc=true)) to
// Project(Deref(b), f, isAddrCalc=false).
func (m *Manager) Deref(base AccessPath) AccessPath {
	if proj, ok := base.(*Project); ok && proj.IsAddrCalc {
		inner := m.Deref(proj.Base)
		return m.Project(inner, proj.Field, false)
	}
	return m.intern(&Deref{Base: base})
}

// ReplacePrefix rewrites every occurrence of oldPrefix as a prefix of
// p into newPrefix, used to rebase tracked paths when a move changes
// the root a derived path hangs off of. Returns p unchanged if
// oldPrefix is not in fact a prefix of p.
func (m *Manager) ReplacePrefix(p, oldPrefix, newPrefix AccessPath) AccessPath {
	if p.key() == oldPrefix.key() {
		return newPrefix
	}
	switch path := p.(type) {
	case *Project:
		return m.Project(m.ReplacePrefix(path.Base, oldPrefix, newPrefix), path.Field, path.IsAddrCalc)
	case *ArrayOffset:
		return m.ArrayOffset(m.ReplacePrefix(path.Base, oldPrefix, newPrefix), path.Index)
	case *Deref:
		return m.Deref(m.ReplacePrefix(path.Base, oldPrefix, newPrefix))
	default:
		return p
	}
}

// String renders p in the original's surface-syntax-like notation,
// useful for diagnostics and test failure output.
func String(p AccessPath) string {
	switch path := p.(type) {
	case *Root:
		return path.Name
	case *Project:
		if path.IsAddrCalc {
			return fmt.Sprintf("%s[.%s]", String(path.Base), path.Field)
		}
		return fmt.Sprintf("%s.%s", String(path.Base), path.Field)
	case *ArrayOffset:
		return fmt.Sprintf("%s[_]", String(path.Base))
	case *Deref:
		return fmt.Sprintf("%s!", String(path.Base))
	default:
		return "?"
	}
}
