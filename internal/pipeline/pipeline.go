// Package pipeline orchestrates the whole analysis: catalog once, then
// run canonicalization, unification, lvalue checking, resolution, and
// borrow checking per top-level function, matching the EXPANDED
// concurrency model: cataloging is a hard barrier (every name must be
// known before any cross-declaration lookup happens), but declarations
// are otherwise independent and run concurrently over a worker pool,
// each against the same concurrent-safe TypeContext/AccessPath Manager.
// Grounded in the teacher's `internal/validator`'s phase-sequencing
// shape (collect -> resolve -> validate -> analyze), generalized from
// a single-goroutine pass to a fan-out over declarations.
package pipeline

import (
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/rowlandz/miscr/internal/accesspath"
	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/borrowcheck"
	"github.com/rowlandz/miscr/internal/borrowstate"
	"github.com/rowlandz/miscr/internal/canonicalizer"
	"github.com/rowlandz/miscr/internal/cataloger"
	"github.com/rowlandz/miscr/internal/diagnostic"
	"github.com/rowlandz/miscr/internal/location"
	"github.com/rowlandz/miscr/internal/lvalue"
	"github.com/rowlandz/miscr/internal/ontology"
	"github.com/rowlandz/miscr/internal/semalog"
	"github.com/rowlandz/miscr/internal/typesys"
	"github.com/rowlandz/miscr/internal/unify"
)

// Result is everything a caller needs after a full analysis run.
type Result struct {
	Ontology *ontology.Ontology
	TC       *typesys.TypeContext
	APM      *accesspath.Manager
	Diags    *diagnostic.List
}

// Run catalogs decls, then analyzes every function declaration
// concurrently against source's text (used only for diagnostic
// rendering). If cataloging reports any error, no function is analyzed.
// logger may be semalog.Noop() for silent operation.
func Run(decls []ast.Decl, source string, logger hclog.Logger) *Result {
	if logger == nil {
		logger = semalog.Noop()
	}

	cat := cataloger.New()
	ont, catErr := cat.Run(decls, "")

	diags := diagnostic.NewList(source)
	appendErr(diags, catErr)

	tc := typesys.NewTypeContext()
	apm := accesspath.NewManager()
	if catErr != nil {
		return &Result{Ontology: ont, TC: tc, APM: apm, Diags: diags}
	}

	funcs := collectFunctions(decls, "")

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workerCount())

	for _, f := range funcs {
		f := f
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			errs := analyzeFunc(ont, tc, apm, f.decl, f.scope, logger)
			if len(errs) == 0 {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, err := range errs {
				appendErr(diags, err)
			}
		}()
	}
	wg.Wait()

	return &Result{Ontology: ont, TC: tc, APM: apm, Diags: diags}
}

func workerCount() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

type scopedFunc struct {
	decl  *ast.FunctionDecl
	scope string
}

// collectFunctions walks decls, descending into modules, gathering every
// FunctionDecl with a body (externs have nothing to analyze) alongside
// its enclosing scope.
func collectFunctions(decls []ast.Decl, scope string) []scopedFunc {
	var out []scopedFunc
	for _, d := range decls {
		switch decl := d.(type) {
		case *ast.FunctionDecl:
			if decl.Body != nil {
				out = append(out, scopedFunc{decl: decl, scope: scope})
			}
		case *ast.ModuleDecl:
			fqn := qualify(scope, decl.Name)
			out = append(out, collectFunctions(decl.Decls, fqn)...)
		}
	}
	return out
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "::" + name
}

// analyzeFunc runs canonicalization, unification + lvalue checking,
// resolution, and borrow checking over one function, in that order,
// stopping after the first phase that reports any error, so a later
// phase only runs on a function the earlier ones accepted.
func analyzeFunc(ont *ontology.Ontology, tc *typesys.TypeContext, apm *accesspath.Manager, f *ast.FunctionDecl, scope string, logger hclog.Logger) []error {
	fqn := qualify(scope, f.Name)
	var errs []error

	semalog.PhaseStart(logger, "canonicalize", fqn)
	can := canonicalizer.New(ont, tc)
	can.RunFunc(f, scope)
	errs = append(errs, can.Errors()...)
	semalog.PhaseDone(logger, "canonicalize", fqn, len(can.Errors()))
	if len(errs) > 0 {
		return errs
	}

	semalog.PhaseStart(logger, "unify", fqn)
	u := unify.New(ont, tc)
	u.UnifyFunc(f)
	errs = append(errs, u.Errors()...)
	errs = append(errs, lvalue.Check(f.Body)...)
	semalog.PhaseDone(logger, "unify", fqn, len(u.Errors()))
	if len(errs) > 0 {
		return errs
	}

	semalog.PhaseStart(logger, "resolve", fqn)
	unify.NewResolver(tc).ResolveFunc(f)
	semalog.PhaseDone(logger, "resolve", fqn, 0)

	semalog.PhaseStart(logger, "borrowcheck", fqn)
	bc := borrowcheck.New(ont, apm)
	bc.CheckFunc(f)
	if bcErr := bc.Errors(); bcErr != nil {
		if me, ok := bcErr.(*multierror.Error); ok {
			errs = append(errs, me.Errors...)
		} else {
			errs = append(errs, bcErr)
		}
	}
	semalog.PhaseDone(logger, "borrowcheck", fqn, len(errs))

	return errs
}

func appendErr(diags *diagnostic.List, err error) {
	if err == nil {
		return
	}
	if me, ok := err.(*multierror.Error); ok {
		for _, e := range me.Errors {
			addDiag(diags, e)
		}
		return
	}
	addDiag(diags, err)
}

func addDiag(diags *diagnostic.List, err error) {
	loc, code := classify(err)
	diags.AddError(code, loc, "%s", err.Error())
}

// classify maps a phase's concrete error type to a rendering location
// and a stable diagnostic code. Errors mapped to location.None (multiple
// entry points, a path left moved at function exit, a branch
// inconsistency, among others) render without a source snippet.
func classify(err error) (location.Location, diagnostic.Code) {
	switch e := err.(type) {
	case *ontology.ErrCollision:
		switch e.Namespace {
		case ontology.NamespaceType:
			return locOf(e.New), diagnostic.CodeTypeCollision
		case ontology.NamespaceModule:
			return locOf(e.New), diagnostic.CodeModuleCollision
		default:
			return locOf(e.New), diagnostic.CodeFunctionCollision
		}
	case *cataloger.ErrMultipleEntryPoints:
		return location.None, diagnostic.CodeMultipleEntryPoint
	case *canonicalizer.ErrUnresolvedName:
		return e.Loc, diagnostic.CodeUnresolvedName
	case *unify.ErrUnification:
		return e.Loc, diagnostic.CodeUnificationFailure
	case *lvalue.ErrNotLValue:
		return e.Loc, diagnostic.CodeNotLValue
	case *borrowcheck.ErrNotLValue:
		return e.Loc, diagnostic.CodeNotLValue
	case *borrowstate.ErrUseOfMoved:
		return location.None, diagnostic.CodeUseOfMoved
	case *borrowstate.ErrAlreadyUsed:
		return e.IntroLoc, diagnostic.CodeUseOfMoved
	case *borrowstate.ErrNotMoved:
		return location.None, diagnostic.CodeUseOfMoved
	case *borrowstate.ErrNotRestored:
		return location.None, diagnostic.CodeNotRestored
	case *borrowstate.ErrNeverUsed:
		return e.Loc, diagnostic.CodeNotRestored
	case *borrowstate.ErrInconsistentBranch:
		return location.None, diagnostic.CodeInconsistentBranch
	case *borrowcheck.ErrBorrowAfterUse:
		return location.None, diagnostic.CodeUseOfMoved
	default:
		return location.None, diagnostic.CodeUnificationFailure
	}
}

func locOf(d ast.Decl) location.Location {
	if d == nil {
		return location.None
	}
	return d.GetLoc()
}
