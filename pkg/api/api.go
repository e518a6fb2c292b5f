// Package api provides the public entry point for running semantic
// analysis over an already-parsed program.
//
// This package is intended for programmatic use of the analyzer. For
// CLI usage, see cmd/semacheck.
package api

import (
	"github.com/hashicorp/go-hclog"

	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/pipeline"
)

// CheckOptions controls analysis behavior.
type CheckOptions struct {
	// Source is the original program text, used only to render
	// diagnostic snippets. May be empty if snippets aren't needed.
	Source string

	// LogLevel controls the verbosity of the ambient phase logging.
	// Leave zero (hclog.NoLevel) to get the default (Info); pass
	// hclog.Off to silence logging entirely.
	LogLevel hclog.Level
}

// CheckResult contains the outcome of analyzing a program.
type CheckResult struct {
	// Diagnostics holds every error and warning produced, in the
	// order each phase produced them.
	Diagnostics []Diagnostic

	// OK is true when no error-severity diagnostic was produced.
	OK bool
}

// Diagnostic is one rendered compiler message.
type Diagnostic struct {
	Severity string
	Code     string
	Message  string
	Row, Col int
}

// Check runs the full analysis pipeline (cataloging, canonicalization,
// type unification, lvalue checking, and borrow checking) over decls
// and returns every diagnostic produced.
func Check(decls []ast.Decl, opts CheckOptions) CheckResult {
	level := opts.LogLevel
	var logger hclog.Logger
	if level == hclog.Off {
		logger = hclog.NewNullLogger()
	} else {
		if level == hclog.NoLevel {
			level = hclog.Info
		}
		logger = hclog.New(&hclog.LoggerOptions{Name: "sema", Level: level})
	}

	result := pipeline.Run(decls, opts.Source, logger)

	items := result.Diags.Items()
	out := make([]Diagnostic, len(items))
	for i, d := range items {
		out[i] = Diagnostic{
			Severity: d.Severity.String(),
			Code:     string(d.Code),
			Message:  d.Message,
			Row:      d.Loc.Row,
			Col:      d.Loc.Col,
		}
	}

	return CheckResult{
		Diagnostics: out,
		OK:          !result.Diags.HasErrors(),
	}
}
