package api

import (
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/testsupport"
	"github.com/rowlandz/miscr/internal/typesys"
)

func TestCheckCleanProgramIsOK(t *testing.T) {
	tc := typesys.NewTypeContext()
	unitTy := tc.Primitive(typesys.PrimUnit)
	ownedI32 := tc.Ref(tc.Primitive(typesys.PrimI32), true)

	freeExtern := testsupport.Extern(testsupport.L(1, 1), "free",
		[]ast.Param{testsupport.Param(testsupport.L(1, 1), "x", ownedI32)}, unitTy)
	mainBody := testsupport.Block(testsupport.L(3, 1),
		testsupport.Call(testsupport.L(3, 1), "free", testsupport.Name(testsupport.L(3, 6), "p")))
	mainFunc := testsupport.Func(testsupport.L(2, 1), "main",
		[]ast.Param{testsupport.Param(testsupport.L(2, 1), "p", ownedI32)}, unitTy, mainBody)

	result := Check([]ast.Decl{freeExtern, mainFunc}, CheckOptions{LogLevel: hclog.Off})
	if !result.OK {
		t.Errorf("expected OK, got diagnostics: %+v", result.Diagnostics)
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %+v", result.Diagnostics)
	}
}

func TestCheckReportsDiagnosticFields(t *testing.T) {
	body := testsupport.Call(testsupport.L(5, 3), "doesNotExist")
	f := testsupport.Func(testsupport.L(1, 1), "main", nil, nil, body)

	result := Check([]ast.Decl{f}, CheckOptions{Source: "", LogLevel: hclog.Off})
	if result.OK {
		t.Fatal("expected the unresolved call to be reported")
	}
	if len(result.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
	d := result.Diagnostics[0]
	if d.Severity != "error" {
		t.Errorf("Severity = %q, want %q", d.Severity, "error")
	}
	if d.Code != "unresolved-name" {
		t.Errorf("Code = %q, want %q", d.Code, "unresolved-name")
	}
	if d.Row != 5 || d.Col != 3 {
		t.Errorf("Row/Col = %d/%d, want 5/3", d.Row, d.Col)
	}
}

func TestCheckLogLevelOffProducesNoLogNoise(t *testing.T) {
	f := testsupport.Func(testsupport.L(1, 1), "main", nil, nil, testsupport.Block(testsupport.L(1, 1)))
	// Regression guard: LogLevel: hclog.Off must not panic building the
	// logger (NewNullLogger path) and must still run the pipeline.
	result := Check([]ast.Decl{f}, CheckOptions{LogLevel: hclog.Off})
	if !result.OK {
		t.Errorf("unexpected diagnostics: %+v", result.Diagnostics)
	}
}
