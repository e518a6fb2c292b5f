package testsupport

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Suite groups related subtests under one *testing.T, adapted from
// internal/test/test.go's Suite (same subtest-dispatch shape, no
// string-diff machinery since this module's assertions are structural).
type Suite struct {
	t *testing.T
}

// NewSuite creates a Suite over t.
func NewSuite(t *testing.T) *Suite {
	return &Suite{t: t}
}

// Run runs a named subtest.
func (s *Suite) Run(name string, fn func(t *testing.T)) {
	s.t.Run(name, fn)
}

// RequireNoErrors fails the test immediately if errs is non-empty.
func RequireNoErrors(t *testing.T, errs []error) {
	t.Helper()
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %d: %v", len(errs), errs)
	}
}

// RequireErrorCount fails the test if len(errs) != want.
func RequireErrorCount(t *testing.T, errs []error, want int) {
	t.Helper()
	if len(errs) != want {
		t.Fatalf("expected %d errors, got %d: %v", want, len(errs), errs)
	}
}

// AssertErrorAs fails the test unless some error in errs satisfies the
// supplied predicate, which stands in for a concrete-type check (since
// this module's error types don't implement the stdlib errors.As
// unwrap chain).
func AssertErrorAs(t *testing.T, errs []error, matches func(error) bool, what string) {
	t.Helper()
	for _, err := range errs {
		if matches(err) {
			return
		}
	}
	t.Errorf("expected an error matching %s, got: %v", what, errs)
}

// Diff returns a structural diff between want and got. Callers
// comparing values that carry unexported hash-consing bookkeeping
// (typesys.TypeVar's id, accesspath's interning state) should pass an
// appropriate cmp.Exporter/Comparer option rather than relying on a
// one-size-fits-all ignore list here.
func Diff(want, got any, opts ...cmp.Option) string {
	return cmp.Diff(want, got, opts...)
}
