// Package diagnostic provides lazily-rendered, ANSI-colored compiler
// diagnostics. A Diagnostic stores only a Location and a message; the
// source text needed to render a code snippet is supplied at render
// time, not at construction time, so diagnostics can be produced on a
// hot path without formatting anything that might never be printed.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/rowlandz/miscr/internal/location"
)

// Severity distinguishes hard errors from advisory warnings.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Code is a short, stable identifier for a diagnostic's cause, usable
// for filtering or machine consumption.
type Code string

const (
	CodeTypeCollision      Code = "type-collision"
	CodeFunctionCollision  Code = "function-collision"
	CodeModuleCollision    Code = "module-collision"
	CodeMultipleEntryPoint Code = "multiple-entry-points"
	CodeUnresolvedName     Code = "unresolved-name"
	CodeUnificationFailure Code = "unification-failure"
	CodeNotLValue          Code = "not-lvalue"
	CodeUseOfMoved         Code = "use-of-moved"
	CodeNotRestored        Code = "not-restored"
	CodeInconsistentBranch Code = "inconsistent-branch"
)

// Diagnostic is one compiler message anchored at a source Location.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Loc      location.Location
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// List accumulates diagnostics for a single source file and renders
// them against it on demand.
type List struct {
	source string
	table  *location.Table
	items  []Diagnostic
}

// NewList creates a diagnostic list rendering against source.
func NewList(source string) *List {
	return &List{source: source, table: location.NewTable(source)}
}

// Add appends a diagnostic with an explicit code.
func (l *List) Add(sev Severity, code Code, loc location.Location, format string, args ...any) {
	l.items = append(l.items, Diagnostic{
		Severity: sev,
		Code:     code,
		Loc:      loc,
		Message:  fmt.Sprintf(format, args...),
	})
}

// AddError appends an error-severity diagnostic.
func (l *List) AddError(code Code, loc location.Location, format string, args ...any) {
	l.Add(SeverityError, code, loc, format, args...)
}

// AddWarning appends a warning-severity diagnostic.
func (l *List) AddWarning(code Code, loc location.Location, format string, args ...any) {
	l.Add(SeverityWarning, code, loc, format, args...)
}

// HasErrors reports whether any error-severity diagnostic was added.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Items returns all accumulated diagnostics in insertion order.
func (l *List) Items() []Diagnostic {
	return l.items
}

// Filter keeps only diagnostics whose Code is not excluded.
type Filter struct {
	excluded map[Code]bool
}

// NewFilter creates an empty filter that excludes nothing.
func NewFilter() *Filter {
	return &Filter{excluded: make(map[Code]bool)}
}

// Exclude marks a code to be dropped by Apply.
func (f *Filter) Exclude(code Code) {
	f.excluded[code] = true
}

// Apply returns the subset of items not excluded by f.
func (f *Filter) Apply(items []Diagnostic) []Diagnostic {
	if f == nil {
		return items
	}
	out := items[:0:0]
	for _, d := range items {
		if !f.excluded[d.Code] {
			out = append(out, d)
		}
	}
	return out
}

// Render renders a single diagnostic as a colored code snippet with an
// underline beneath the offending span (for single-line spans).
func (l *List) Render(d Diagnostic) string {
	var b strings.Builder
	bold := color.New(color.Bold, color.FgBlue)
	magenta := color.New(color.FgMagenta)

	if d.Loc.IsNone() {
		fmt.Fprintf(&b, "%s: %s\n", d.Severity, d.Message)
		return b.String()
	}

	fmt.Fprintf(&b, "%s:%d:%d: %s\n", bold.Sprint("source"), d.Loc.Row, d.Loc.Col, d.Message)

	lines := l.spannedLines(d.Loc)
	for _, row := range lines {
		text := l.table.Line(row)
		fmt.Fprintf(&b, "%4d | %s\n", row, text)
		if row == d.Loc.Row && len(lines) == 1 {
			fmt.Fprintf(&b, "     | %s%s\n", strings.Repeat(" ", d.Loc.Col-1), magenta.Sprint(strings.Repeat("^", max(1, d.Loc.Size))))
		}
	}
	return b.String()
}

// spannedLines returns the row numbers a location's span covers,
// computed from Row and a Size that may run past the first line's end.
func (l *List) spannedLines(loc location.Location) []int {
	start := l.table.RowOffset(loc.Row) + loc.Col - 1
	last := l.table.FindRow(start + max(1, loc.Size) - 1)
	rows := []int{loc.Row}
	for row := loc.Row + 1; row <= last; row++ {
		rows = append(rows, row)
	}
	return rows
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
