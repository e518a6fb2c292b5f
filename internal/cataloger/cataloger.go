// Package cataloger builds the program-wide Ontology by walking the
// full declaration tree exactly once, before any per-declaration
// analysis begins. It is grounded in the collision-detection contract
// of the original implementation's Cataloger (both the early
// DataDecl-based prototype and the final StructDecl-based version):
// type/function name collisions, module name collisions, and multiple
// program entry points are all reported here, as early as possible.
package cataloger

import (
	"github.com/hashicorp/go-multierror"

	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/ontology"
)

const entryPointName = "main"

// Cataloger walks a DeclList and populates an Ontology.
type Cataloger struct {
	ont        *ontology.Ontology
	errs       *multierror.Error
	entryCount int
}

// New creates a Cataloger writing into a fresh Ontology.
func New() *Cataloger {
	return &Cataloger{ont: ontology.New()}
}

// Run catalogs decls under scope (the empty string for the program
// root) and returns the populated Ontology plus any collision errors
// accumulated across the whole program.
func (c *Cataloger) Run(decls []ast.Decl, scope string) (*ontology.Ontology, error) {
	c.runDeclList(decls, scope)
	if c.entryCount > 1 {
		c.errs = multierror.Append(c.errs, &ErrMultipleEntryPoints{Count: c.entryCount})
	}
	if c.errs == nil {
		return c.ont, nil
	}
	return c.ont, c.errs
}

func (c *Cataloger) runDeclList(decls []ast.Decl, scope string) {
	for _, d := range decls {
		c.runDecl(d, scope)
	}
}

func (c *Cataloger) runDecl(d ast.Decl, scope string) {
	switch decl := d.(type) {
	case *ast.StructDecl:
		fqn := qualify(scope, decl.Name)
		if err := c.ont.DeclareType(fqn, decl); err != nil {
			c.errs = multierror.Append(c.errs, err)
		}
		// The struct constructor shares the FUNCTION namespace, and is
		// never the entry point or an extern, so its short name is its FQN.
		if err := c.ont.DeclareFunction(fqn, fqn, decl); err != nil {
			c.errs = multierror.Append(c.errs, err)
		}

	case *ast.DataDecl:
		fqn := qualify(scope, decl.Name)
		if err := c.ont.DeclareType(fqn, decl); err != nil {
			c.errs = multierror.Append(c.errs, err)
		}

	case *ast.FunctionDecl:
		fqn := qualify(scope, decl.Name)
		shortName := fqn
		switch {
		case decl.Name == entryPointName:
			shortName = entryPointName
			c.entryCount++
			c.ont.SetEntryPoint(fqn)
		case decl.IsExtern:
			// Externs are declared at link scope: the linker resolves
			// them by their bare, unqualified name, not the FQN.
			shortName = decl.Name
		}
		if err := c.ont.DeclareFunction(fqn, shortName, decl); err != nil {
			c.errs = multierror.Append(c.errs, err)
		}

	case *ast.ModuleDecl:
		fqn := qualify(scope, decl.Name)
		if err := c.ont.DeclareModule(fqn, decl); err != nil {
			c.errs = multierror.Append(c.errs, err)
		}
		c.runDeclList(decl.Decls, fqn)
	}
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "::" + name
}

// ErrMultipleEntryPoints reports more than one `main` function declared
// across the program.
type ErrMultipleEntryPoints struct {
	Count int
}

func (e *ErrMultipleEntryPoints) Error() string {
	return "program declares more than one entry point (main)"
}
