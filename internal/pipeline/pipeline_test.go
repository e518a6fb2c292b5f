package pipeline

import (
	"testing"

	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/diagnostic"
	"github.com/rowlandz/miscr/internal/testsupport"
	"github.com/rowlandz/miscr/internal/typesys"
)

func ownedI32(tc *typesys.TypeContext) typesys.Type {
	return tc.Ref(tc.Primitive(typesys.PrimI32), true)
}

// TestRunCleanProgramHasNoErrors mirrors scenario 1 end-to-end: a
// parameter's owned reference passed exactly once to a consuming extern
// call produces no diagnostics anywhere in the pipeline.
func TestRunCleanProgramHasNoErrors(t *testing.T) {
	tc := typesys.NewTypeContext()
	unitTy := tc.Primitive(typesys.PrimUnit)
	ownedTy := ownedI32(tc)

	freeExtern := testsupport.Extern(testsupport.L(1, 1), "free",
		[]ast.Param{testsupport.Param(testsupport.L(1, 1), "x", ownedTy)}, unitTy)

	mainBody := testsupport.Block(testsupport.L(3, 1),
		testsupport.Call(testsupport.L(3, 1), "free", testsupport.Name(testsupport.L(3, 6), "p")))
	mainFunc := testsupport.Func(testsupport.L(2, 1), "main",
		[]ast.Param{testsupport.Param(testsupport.L(2, 1), "p", ownedTy)}, unitTy, mainBody)

	decls := []ast.Decl{freeExtern, mainFunc}
	result := Run(decls, "", nil)

	if result.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", result.Diags.Items())
	}
}

// TestRunMissingFreeReportsNotRestoredDiagnostic mirrors scenario 2:
// an owned parameter never consumed surfaces as a not-restored
// diagnostic by the time Run returns.
func TestRunMissingFreeReportsNotRestoredDiagnostic(t *testing.T) {
	tc := typesys.NewTypeContext()
	unitTy := tc.Primitive(typesys.PrimUnit)
	ownedTy := ownedI32(tc)

	mainBody := testsupport.Block(testsupport.L(2, 1))
	mainFunc := testsupport.Func(testsupport.L(1, 1), "main",
		[]ast.Param{testsupport.Param(testsupport.L(1, 1), "p", ownedTy)}, unitTy, mainBody)

	decls := []ast.Decl{mainFunc}
	result := Run(decls, "", nil)

	if !result.Diags.HasErrors() {
		t.Fatal("expected a diagnostic for the never-used owned parameter")
	}
	found := false
	for _, d := range result.Diags.Items() {
		if d.Code == diagnostic.CodeNotRestored {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s diagnostic, got %v", diagnostic.CodeNotRestored, result.Diags.Items())
	}
}

// TestRunDetectsMultipleEntryPoints exercises cataloging's hard-barrier
// error surfacing all the way through Run.
func TestRunDetectsMultipleEntryPoints(t *testing.T) {
	first := testsupport.Func(testsupport.L(1, 1), "main", nil, nil, nil)
	second := testsupport.Module(testsupport.L(2, 1), "sub",
		testsupport.Func(testsupport.L(3, 1), "main", nil, nil, nil))
	decls := []ast.Decl{first, second}

	result := Run(decls, "", nil)
	if !result.Diags.HasErrors() {
		t.Fatal("expected a multiple-entry-point diagnostic")
	}
	found := false
	for _, d := range result.Diags.Items() {
		if d.Code == diagnostic.CodeMultipleEntryPoint {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s diagnostic, got %v", diagnostic.CodeMultipleEntryPoint, result.Diags.Items())
	}
}

// TestRunDetectsUnresolvedCall exercises canonicalization's error
// surfacing through Run.
func TestRunDetectsUnresolvedCall(t *testing.T) {
	body := testsupport.Call(testsupport.L(1, 1), "doesNotExist")
	f := testsupport.Func(testsupport.L(1, 1), "main", nil, nil, body)

	result := Run([]ast.Decl{f}, "", nil)
	if !result.Diags.HasErrors() {
		t.Fatal("expected an unresolved-name diagnostic")
	}
	found := false
	for _, d := range result.Diags.Items() {
		if d.Code == diagnostic.CodeUnresolvedName {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s diagnostic, got %v", diagnostic.CodeUnresolvedName, result.Diags.Items())
	}
}
