package borrowstate

import (
	"testing"

	"github.com/rowlandz/miscr/internal/accesspath"
	"github.com/rowlandz/miscr/internal/location"
)

func TestSeedUseLifecycle(t *testing.T) {
	m := accesspath.NewManager()
	st := New()
	p := m.Root("x")

	st.Seed(p, location.Location{Row: 1, Col: 1})
	if status, ok := st.StatusOf(p); !ok || status != Unused {
		t.Fatalf("expected Unused after Seed, got %v, %v", status, ok)
	}

	if err := st.Use(p); err != nil {
		t.Fatalf("unexpected error using a fresh path: %v", err)
	}
	if status, _ := st.StatusOf(p); status != Used {
		t.Fatalf("expected Used after Use, got %v", status)
	}
}

func TestUseTwiceFails(t *testing.T) {
	m := accesspath.NewManager()
	st := New()
	p := m.Root("x")
	st.Seed(p, location.Location{Row: 1, Col: 1})

	if err := st.Use(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := st.Use(p)
	if err == nil {
		t.Fatal("expected an error reusing an already-used path")
	}
	if _, ok := err.(*ErrAlreadyUsed); !ok {
		t.Errorf("expected *ErrAlreadyUsed, got %T", err)
	}
}

func TestMoveThenUnmove(t *testing.T) {
	m := accesspath.NewManager()
	st := New()
	p := m.Root("x")
	st.Seed(p, location.Location{Row: 1, Col: 1})

	if err := st.Move(p, location.Location{Row: 2, Col: 1}); err != nil {
		t.Fatalf("unexpected error moving: %v", err)
	}
	if status, _ := st.StatusOf(p); status != Moved {
		t.Fatalf("expected Moved, got %v", status)
	}

	if err := st.Unmove(p, location.Location{Row: 3, Col: 1}); err != nil {
		t.Fatalf("unexpected error unmoving: %v", err)
	}
	if status, _ := st.StatusOf(p); status != Unmoved {
		t.Fatalf("expected Unmoved, got %v", status)
	}
}

func TestUseOfMovedFails(t *testing.T) {
	m := accesspath.NewManager()
	st := New()
	p := m.Root("x")
	st.Seed(p, location.Location{Row: 1, Col: 1})
	if err := st.Move(p, location.Location{Row: 2, Col: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := st.Use(p)
	if err == nil {
		t.Fatal("expected an error using a moved path")
	}
	if _, ok := err.(*ErrUseOfMoved); !ok {
		t.Errorf("expected *ErrUseOfMoved, got %T", err)
	}
}

func TestUnmoveWithoutMoveFails(t *testing.T) {
	m := accesspath.NewManager()
	st := New()
	p := m.Root("x")
	st.Seed(p, location.Location{Row: 1, Col: 1})
	err := st.Unmove(p, location.Location{Row: 2, Col: 1})
	if err == nil {
		t.Fatal("expected an error unmoving a path that was never moved")
	}
	if _, ok := err.(*ErrNotMoved); !ok {
		t.Errorf("expected *ErrNotMoved, got %T", err)
	}
}

func TestFinalCheckFlagsUnusedAndUnrestored(t *testing.T) {
	m := accesspath.NewManager()
	st := New()
	unused := m.Root("a")
	moved := m.Root("b")
	st.Seed(unused, location.Location{Row: 1, Col: 1})
	st.Seed(moved, location.Location{Row: 1, Col: 1})
	if err := st.Move(moved, location.Location{Row: 2, Col: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	errs := st.FinalCheck()
	if len(errs) != 2 {
		t.Fatalf("expected 2 final-check errors, got %d: %v", len(errs), errs)
	}
	var sawUnused, sawUnrestored bool
	for _, err := range errs {
		switch err.(type) {
		case *ErrNeverUsed:
			sawUnused = true
		case *ErrNotRestored:
			sawUnrestored = true
		}
	}
	if !sawUnused || !sawUnrestored {
		t.Errorf("expected both ErrNeverUsed and ErrNotRestored, got %v", errs)
	}
}

func TestFinalCheckClean(t *testing.T) {
	m := accesspath.NewManager()
	st := New()
	p := m.Root("x")
	st.Seed(p, location.Location{Row: 1, Col: 1})
	if err := st.Use(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errs := st.FinalCheck(); len(errs) != 0 {
		t.Errorf("expected no final-check errors, got %v", errs)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := accesspath.NewManager()
	st := New()
	p := m.Root("x")
	st.Seed(p, location.Location{Row: 1, Col: 1})

	clone := st.Clone()
	if err := clone.Use(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if status, _ := st.StatusOf(p); status != Unused {
		t.Errorf("mutating the clone should not affect the original, got %v", status)
	}
	if status, _ := clone.StatusOf(p); status != Used {
		t.Errorf("clone should reflect its own mutation, got %v", status)
	}
}

func TestRebaseRenamesTrackedPaths(t *testing.T) {
	apm := accesspath.NewManager()
	st := New()
	synth := apm.Root("$1")
	st.Seed(synth, location.Location{Row: 1, Col: 1})

	named := apm.Root("x")
	st.Rebase(apm, synth, named)

	if _, ok := st.StatusOf(synth); ok {
		t.Error("old synthetic key should no longer be tracked after rebase")
	}
	if status, ok := st.StatusOf(named); !ok || status != Unused {
		t.Errorf("expected the renamed path to carry over Unused status, got %v, %v", status, ok)
	}
}

func TestMergeBranchesConsistentNoErrors(t *testing.T) {
	apm := accesspath.NewManager()
	pre := New()
	p := apm.Root("x")
	pre.Seed(p, location.Location{Row: 1, Col: 1})

	thenSt := pre.Clone()
	if err := thenSt.Use(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elseSt := pre.Clone()
	if err := elseSt.Use(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, errs := MergeBranches(pre, thenSt, elseSt)
	if len(errs) != 0 {
		t.Errorf("expected no merge errors when both branches use p, got %v", errs)
	}
}

func TestMergeBranchesInconsistentUseFlagsError(t *testing.T) {
	apm := accesspath.NewManager()
	pre := New()
	p := apm.Root("x")
	pre.Seed(p, location.Location{Row: 1, Col: 1})

	thenSt := pre.Clone()
	if err := thenSt.Use(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elseSt := pre.Clone() // else branch leaves p untouched (still Unused)

	_, errs := MergeBranches(pre, thenSt, elseSt)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one inconsistency, got %d: %v", len(errs), errs)
	}
	inconsistent, ok := errs[0].(*ErrInconsistentBranch)
	if !ok {
		t.Fatalf("expected *ErrInconsistentBranch, got %T", errs[0])
	}
	if inconsistent.Reason != "not used in both branches" {
		t.Errorf("reason = %q, want %q", inconsistent.Reason, "not used in both branches")
	}
}

func TestMergeBranchesInconsistentRestoreFlagsError(t *testing.T) {
	apm := accesspath.NewManager()
	pre := New()
	p := apm.Root("x")
	pre.Seed(p, location.Location{Row: 1, Col: 1})
	if err := pre.Move(p, location.Location{Row: 2, Col: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	thenSt := pre.Clone()
	if err := thenSt.Unmove(p, location.Location{Row: 3, Col: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elseSt := pre.Clone() // else leaves p moved, never restored

	_, errs := MergeBranches(pre, thenSt, elseSt)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one inconsistency, got %d: %v", len(errs), errs)
	}
	inconsistent, ok := errs[0].(*ErrInconsistentBranch)
	if !ok {
		t.Fatalf("expected *ErrInconsistentBranch, got %T", errs[0])
	}
	if inconsistent.Reason != "not replaced in both branches" {
		t.Errorf("reason = %q, want %q", inconsistent.Reason, "not replaced in both branches")
	}
}
