// Package ontology tracks every declared name in a program across its
// three disjoint namespaces, keyed by fully-qualified name (FQN). It is
// built once by the cataloger and then read only by every later phase.
package ontology

import (
	"fmt"

	"github.com/hashicorp/go-set/v2"

	"github.com/rowlandz/miscr/internal/ast"
)

// Namespace identifies which of the three disjoint FQN spaces an entry
// belongs to. TYPE and FUNCTION must never share an FQN; MODULE may
// overlap with either.
type Namespace uint8

const (
	NamespaceType Namespace = iota
	NamespaceFunction
	NamespaceModule
)

func (n Namespace) String() string {
	switch n {
	case NamespaceType:
		return "type"
	case NamespaceFunction:
		return "function"
	case NamespaceModule:
		return "module"
	default:
		return "?"
	}
}

// Entry is one cataloged name. ShortName is the name external tooling
// (diagnostics, the entry-point check, codegen symbol tables) should
// show instead of the FQN: "main" for the program's entry point, the
// unqualified name for an extern function (externs are declared at
// link scope, not module scope), and the FQN itself for everything
// else.
type Entry struct {
	FQN       string
	ShortName string
	Namespace Namespace
	Decl      ast.Decl
}

// Ontology is the immutable, queryable result of cataloging a program.
type Ontology struct {
	types      map[string]*Entry
	functions  map[string]*Entry
	modules    *set.Set[string]
	entryPoint string
}

// New creates an empty Ontology, populated only by the cataloger.
func New() *Ontology {
	return &Ontology{
		types:     make(map[string]*Entry),
		functions: make(map[string]*Entry),
		modules:   set.New[string](16),
	}
}

// ErrCollision reports a name already claimed in a namespace that
// cannot share it with the new declaration.
type ErrCollision struct {
	FQN       string
	Namespace Namespace
	Existing  ast.Decl
	New       ast.Decl
}

func (e *ErrCollision) Error() string {
	return fmt.Sprintf("%s '%s' is already declared", e.Namespace, e.FQN)
}

// DeclareType records a TYPE-namespace entry, erroring if the FQN is
// already claimed in TYPE or FUNCTION (the two must stay disjoint).
func (o *Ontology) DeclareType(fqn string, decl ast.Decl) error {
	if existing, ok := o.functions[fqn]; ok {
		return &ErrCollision{FQN: fqn, Namespace: NamespaceFunction, Existing: existing.Decl, New: decl}
	}
	if existing, ok := o.types[fqn]; ok {
		return &ErrCollision{FQN: fqn, Namespace: NamespaceType, Existing: existing.Decl, New: decl}
	}
	o.types[fqn] = &Entry{FQN: fqn, ShortName: fqn, Namespace: NamespaceType, Decl: decl}
	return nil
}

// DeclareFunction records a FUNCTION-namespace entry (ordinary function
// or struct constructor), erroring on collision with TYPE or FUNCTION.
// shortName is the entry's external short name (see Entry.ShortName);
// callers pass fqn itself when no shorter external name applies.
func (o *Ontology) DeclareFunction(fqn, shortName string, decl ast.Decl) error {
	if existing, ok := o.types[fqn]; ok {
		return &ErrCollision{FQN: fqn, Namespace: NamespaceType, Existing: existing.Decl, New: decl}
	}
	if existing, ok := o.functions[fqn]; ok {
		return &ErrCollision{FQN: fqn, Namespace: NamespaceFunction, Existing: existing.Decl, New: decl}
	}
	o.functions[fqn] = &Entry{FQN: fqn, ShortName: shortName, Namespace: NamespaceFunction, Decl: decl}
	return nil
}

// SetEntryPoint records fqn as the program's main entry point. Called
// by the cataloger for every function named "main" at any scope; the
// last call wins.
func (o *Ontology) SetEntryPoint(fqn string) {
	o.entryPoint = fqn
}

// EntryPoint returns the cataloged entry point's FQN and whether one
// was found.
func (o *Ontology) EntryPoint() (string, bool) {
	return o.entryPoint, o.entryPoint != ""
}

// DeclareModule records a MODULE-namespace entry. Modules may freely
// overlap TYPE or FUNCTION FQNs (a module and a function may share a
// name) but not another module.
func (o *Ontology) DeclareModule(fqn string, decl ast.Decl) error {
	if o.modules.Contains(fqn) {
		return &ErrCollision{FQN: fqn, Namespace: NamespaceModule, New: decl}
	}
	o.modules.Insert(fqn)
	return nil
}

// LookupType returns the TYPE entry for fqn, if any.
func (o *Ontology) LookupType(fqn string) (*Entry, bool) {
	e, ok := o.types[fqn]
	return e, ok
}

// LookupFunction returns the FUNCTION entry for fqn, if any.
func (o *Ontology) LookupFunction(fqn string) (*Entry, bool) {
	e, ok := o.functions[fqn]
	return e, ok
}

// HasModule reports whether fqn names a known module.
func (o *Ontology) HasModule(fqn string) bool {
	return o.modules.Contains(fqn)
}

// StructDecl returns the StructDecl cataloged under fqn, if the TYPE
// entry there is in fact a struct.
func (o *Ontology) StructDecl(fqn string) (*ast.StructDecl, bool) {
	e, ok := o.types[fqn]
	if !ok {
		return nil, false
	}
	sd, ok := e.Decl.(*ast.StructDecl)
	return sd, ok
}
