// Package borrowcheck implements the borrow checker as symbolic
// evaluation: it walks a function body once, computing the AccessPath
// of every (l)value it touches and updating a BorrowState accordingly,
// exactly as borrowchecker/BorrowChecker.hpp does over the final AST.
// This is the engineering center of gravity of this module: move/use-
// once tracking, loose-extension seeding, and branch/loop merging all
// live here.
//
// A unique reference's loose extensions are consumed at these sites
// only: a call's arguments, a struct constructor's field arguments, an
// array initializer's elements, an assignment's right-hand side, an
// unmove's value, each if arm's result, and the function body's final
// value. An assignment's left-hand side is marked unmoved rather than
// consumed, and a while body's result is not consumed. Merely naming a
// value (NameExp, DerefExp, ProjectExp, ArrayAccessExp) computes its
// AccessPath without touching the borrow state; Move, Unmove, and
// Borrow make their own explicit state transitions.
package borrowcheck

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-set/v2"

	"github.com/rowlandz/miscr/internal/accesspath"
	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/borrowstate"
	"github.com/rowlandz/miscr/internal/location"
	"github.com/rowlandz/miscr/internal/lvalue"
	"github.com/rowlandz/miscr/internal/ontology"
	"github.com/rowlandz/miscr/internal/typesys"
)

// Checker borrow-checks one function at a time.
type Checker struct {
	ont  *ontology.Ontology
	apm  *accesspath.Manager
	errs *multierror.Error

	synthCounter int
}

// New creates a Checker over ont, sharing apm with whatever else needs
// to reason about the same access paths (e.g. diagnostics rendering).
func New(ont *ontology.Ontology, apm *accesspath.Manager) *Checker {
	return &Checker{ont: ont, apm: apm}
}

// Errors returns every diagnostic accumulated across CheckFunc calls.
func (c *Checker) Errors() error {
	if c.errs == nil {
		return nil
	}
	return c.errs
}

// CheckFunc borrow-checks f's body, seeding each parameter (and its
// loose extensions) as in scope and requiring every owned path be
// restored or consumed by the time the function returns.
func (c *Checker) CheckFunc(f *ast.FunctionDecl) {
	if f.Body == nil {
		return
	}
	c.synthCounter = 0
	st := borrowstate.New()
	for _, p := range f.Params {
		root := c.apm.Root(p.Name)
		c.introduceUnused(st, root, p.Type, p.Loc)
	}
	bodyPath, st := c.evalExp(f.Body, st)
	c.consume(st, bodyPath, f.Body.GetType(), f.Body.GetLoc())
	for _, err := range st.FinalCheck() {
		c.errs = multierror.Append(c.errs, err)
	}
}

// freshSynthetic mints the next anonymous internal variable ($1, $2,
// ...) representing a value with no (or not-yet-known) stable name,
// per function.
func (c *Checker) freshSynthetic() accesspath.AccessPath {
	c.synthCounter++
	return c.apm.Root(fmt.Sprintf("$%d", c.synthCounter))
}

// looseExtensions returns every additional owned-reference path that
// comes bundled with a value of type ty rooted at path: path itself
// when ty is an owned reference, recursing through struct fields and
// further owned-reference chains, stopping at borrowed references and
// primitives. visited holds the struct types on the current recursion
// path, so a struct that contains itself (by value or through owned
// references) is expanded only once along that path; cataloging does
// not check struct definitions for cycles.
func (c *Checker) looseExtensions(path accesspath.AccessPath, ty typesys.Type) []accesspath.AccessPath {
	var out []accesspath.AccessPath
	c.collectLooseExtensions(path, ty, set.New[string](8), &out)
	return out
}

func (c *Checker) collectLooseExtensions(path accesspath.AccessPath, ty typesys.Type, visited *set.Set[string], out *[]accesspath.AccessPath) {
	switch t := ty.(type) {
	case *typesys.RefType:
		if !t.IsOwned {
			return
		}
		*out = append(*out, path)
		c.collectLooseExtensions(c.apm.Deref(path), t.Inner, visited, out)

	case *typesys.NameType:
		if visited.Contains(t.FQN) {
			return
		}
		visited.Insert(t.FQN)
		sd, ok := c.ont.StructDecl(t.FQN)
		if !ok {
			return
		}
		for _, field := range sd.Fields {
			c.collectLooseExtensions(c.apm.Project(path, field.Name, false), field.Type, visited, out)
		}
		visited.Remove(t.FQN)

	default:
		// Primitive or constraint: no further extensions.
	}
}

func (c *Checker) introduceUnused(st *borrowstate.State, path accesspath.AccessPath, ty typesys.Type, loc location.Location) {
	if path == nil || ty == nil {
		return
	}
	for _, p := range c.looseExtensions(path, ty) {
		st.Seed(p, loc)
	}
}

func (c *Checker) consume(st *borrowstate.State, path accesspath.AccessPath, ty typesys.Type, loc location.Location) {
	if path == nil || ty == nil {
		return
	}
	_ = loc
	for _, p := range c.looseExtensions(path, ty) {
		if err := st.Use(p); err != nil {
			c.errs = multierror.Append(c.errs, err)
		}
	}
}

func (c *Checker) markMoved(st *borrowstate.State, path accesspath.AccessPath, ty typesys.Type, loc location.Location) {
	if path == nil || ty == nil {
		return
	}
	for _, p := range c.looseExtensions(path, ty) {
		if err := st.Move(p, loc); err != nil {
			c.errs = multierror.Append(c.errs, err)
		}
	}
}

func (c *Checker) markUnmoved(st *borrowstate.State, path accesspath.AccessPath, ty typesys.Type, loc location.Location) {
	if path == nil || ty == nil {
		return
	}
	for _, p := range c.looseExtensions(path, ty) {
		if err := st.Unmove(p, loc); err != nil {
			c.errs = multierror.Append(c.errs, err)
		}
	}
}

// evalExp symbolically evaluates e against st, returning the
// AccessPath e denotes (absent/nil for expressions with no reference
// content) and the resulting state.
func (c *Checker) evalExp(e ast.Exp, st *borrowstate.State) (accesspath.AccessPath, *borrowstate.State) {
	if e == nil {
		return nil, st
	}

	switch exp := e.(type) {
	case *ast.LiteralExp:
		return nil, st

	case *ast.NameExp:
		return c.apm.Root(exp.Name), st

	case *ast.UnaryExp:
		_, st = c.evalExp(exp.Inner, st)
		return nil, st

	case *ast.BinopExp:
		_, st = c.evalExp(exp.LHS, st)
		_, st = c.evalExp(exp.RHS, st)
		return nil, st

	case *ast.CallExp:
		for _, a := range exp.Args {
			var argPath accesspath.AccessPath
			argPath, st = c.evalExp(a, st)
			c.consume(st, argPath, a.GetType(), a.GetLoc())
		}
		fresh := c.freshSynthetic()
		c.introduceUnused(st, fresh, exp.GetType(), exp.GetLoc())
		return fresh, st

	case *ast.ConstrExp:
		for _, a := range exp.Args {
			var argPath accesspath.AccessPath
			argPath, st = c.evalExp(a, st)
			c.consume(st, argPath, a.GetType(), a.GetLoc())
		}
		fresh := c.freshSynthetic()
		c.introduceUnused(st, fresh, exp.GetType(), exp.GetLoc())
		return fresh, st

	case *ast.ProjectExp:
		var basePath accesspath.AccessPath
		basePath, st = c.evalExp(exp.Base, st)
		if basePath == nil {
			return nil, st
		}
		if exp.IsArrow {
			return c.apm.Project(c.apm.Deref(basePath), exp.Field, false), st
		}
		return c.apm.Project(basePath, exp.Field, false), st

	case *ast.ArrayAccessExp:
		var basePath accesspath.AccessPath
		basePath, st = c.evalExp(exp.Base, st)
		_, st = c.evalExp(exp.Index, st)
		if basePath == nil {
			return nil, st
		}
		return c.apm.ArrayOffset(basePath, exp.Index), st

	case *ast.DerefExp:
		var basePath accesspath.AccessPath
		basePath, st = c.evalExp(exp.Base, st)
		if basePath == nil {
			return nil, st
		}
		return c.apm.Deref(basePath), st

	case *ast.AddrOfExp:
		_, st = c.evalExp(exp.Base, st)
		return c.freshSynthetic(), st

	case *ast.AscripExp:
		return c.evalExp(exp.Inner, st)

	case *ast.LetExp:
		var valPath accesspath.AccessPath
		valPath, st = c.evalExp(exp.Value, st)
		nameRoot := c.apm.Root(exp.Name)
		if valPath != nil {
			st.Rebase(c.apm, valPath, nameRoot)
		}
		var bodyPath accesspath.AccessPath
		bodyPath, st = c.evalExp(exp.Body, st)
		return bodyPath, st

	case *ast.ArrayInitExp:
		for _, el := range exp.Elems {
			var elPath accesspath.AccessPath
			elPath, st = c.evalExp(el, st)
			c.consume(st, elPath, el.GetType(), el.GetLoc())
		}
		return nil, st

	case *ast.IfExp:
		_, st = c.evalExp(exp.Cond, st)
		previous := st
		thenSt := previous.Clone()
		var thenPath accesspath.AccessPath
		thenPath, thenSt = c.evalExp(exp.Then, thenSt)
		c.consume(thenSt, thenPath, exp.Then.GetType(), exp.Then.GetLoc())

		if exp.Else == nil {
			// An else-less if has no value of its own to seed as
			// unused (it types as unit); merging the then-branch's
			// post-state against the pre-branch state directly is
			// the same shape WhileExp's loop-body merge uses.
			merged, errs := borrowstate.MergeBranches(previous, thenSt, previous)
			for _, err := range errs {
				c.errs = multierror.Append(c.errs, err)
			}
			return nil, merged
		}

		elseSt := previous.Clone()
		var elsePath accesspath.AccessPath
		elsePath, elseSt = c.evalExp(exp.Else, elseSt)
		c.consume(elseSt, elsePath, exp.Else.GetType(), exp.Else.GetLoc())

		merged, errs := borrowstate.MergeBranches(previous, thenSt, elseSt)
		for _, err := range errs {
			c.errs = multierror.Append(c.errs, err)
		}
		result := c.freshSynthetic()
		c.introduceUnused(merged, result, exp.GetType(), exp.GetLoc())
		return result, merged

	case *ast.WhileExp:
		_, st = c.evalExp(exp.Cond, st)
		previous := st
		bodySt := previous.Clone()
		_, bodySt = c.evalExp(exp.Body, bodySt)
		merged, errs := borrowstate.MergeBranches(previous, bodySt, previous)
		for _, err := range errs {
			c.errs = multierror.Append(c.errs, err)
		}
		return nil, merged

	case *ast.BlockExp:
		var path accesspath.AccessPath
		for _, s := range exp.Stmts {
			path, st = c.evalExp(s, st)
		}
		return path, st

	case *ast.MoveExp:
		if !lvalue.Is(exp.Inner) {
			c.errs = multierror.Append(c.errs, &ErrNotLValue{Loc: exp.Inner.GetLoc(), Op: "move"})
			return nil, st
		}
		var innerPath accesspath.AccessPath
		innerPath, st = c.evalExp(exp.Inner, st)
		c.markMoved(st, innerPath, exp.Inner.GetType(), exp.GetLoc())
		fresh := c.freshSynthetic()
		c.introduceUnused(st, fresh, exp.GetType(), exp.GetLoc())
		return fresh, st

	case *ast.UnmoveExp:
		var valPath accesspath.AccessPath
		valPath, st = c.evalExp(exp.Value, st)
		c.consume(st, valPath, exp.Value.GetType(), exp.Value.GetLoc())
		if !lvalue.Is(exp.Inner) {
			c.errs = multierror.Append(c.errs, &ErrNotLValue{Loc: exp.Inner.GetLoc(), Op: "unmove"})
			return nil, st
		}
		var innerPath accesspath.AccessPath
		innerPath, st = c.evalExp(exp.Inner, st)
		c.markUnmoved(st, innerPath, exp.Inner.GetType(), exp.GetLoc())
		return nil, st

	case *ast.AssignExp:
		var rhsPath accesspath.AccessPath
		rhsPath, st = c.evalExp(exp.RHS, st)
		c.consume(st, rhsPath, exp.RHS.GetType(), exp.GetLoc())
		if !lvalue.Is(exp.LHS) {
			c.errs = multierror.Append(c.errs, &ErrNotLValue{Loc: exp.LHS.GetLoc(), Op: "assign"})
			return nil, st
		}
		var lhsPath accesspath.AccessPath
		lhsPath, st = c.evalExp(exp.LHS, st)
		c.markUnmoved(st, lhsPath, exp.LHS.GetType(), exp.GetLoc())
		return nil, st

	case *ast.BorrowExp:
		var innerPath accesspath.AccessPath
		innerPath, st = c.evalExp(exp.Inner, st)
		if innerPath != nil {
			for _, p := range c.looseExtensions(innerPath, exp.Inner.GetType()) {
				if status, ok := st.StatusOf(p); ok && status == borrowstate.Used {
					c.errs = multierror.Append(c.errs, &ErrBorrowAfterUse{Path: p})
				}
			}
		}
		return nil, st

	case *ast.ReturnExp:
		if exp.Value != nil {
			_, st = c.evalExp(exp.Value, st)
		}
		return nil, st

	default:
		return nil, st
	}
}

// ErrNotLValue reports a move/unmove/assign applied to a non-lvalue
// operand. The lvalue.Check phase is expected to catch this earlier
// and short-circuit before borrow checking runs; this is a defensive
// second check so the borrow checker never panics walking a
// malformed tree when invoked directly (e.g. in tests).
type ErrNotLValue struct {
	Loc location.Location
	Op  string
}

func (e *ErrNotLValue) Error() string {
	return fmt.Sprintf("operand of %s must be an lvalue", e.Op)
}

// ErrBorrowAfterUse reports borrowing a unique reference that has
// already been consumed.
type ErrBorrowAfterUse struct {
	Path accesspath.AccessPath
}

func (e *ErrBorrowAfterUse) Error() string {
	return fmt.Sprintf("'%s' was already used, cannot be borrowed later", accesspath.String(e.Path))
}
