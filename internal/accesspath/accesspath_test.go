package accesspath

import (
	"testing"

	"github.com/rowlandz/miscr/internal/ast"
)

func TestRootUniqued(t *testing.T) {
	m := NewManager()
	a := m.Root("x")
	b := m.Root("x")
	if a != b {
		t.Errorf("Root(%q) produced distinct objects", "x")
	}
	c := m.Root("y")
	if a == c {
		t.Errorf("distinct roots were not distinguished")
	}
}

func TestProjectUniqued(t *testing.T) {
	m := NewManager()
	base := m.Root("p")
	a := m.Project(base, "name", false)
	b := m.Project(base, "name", false)
	if a != b {
		t.Error("same projection path was not uniqued")
	}
	c := m.Project(base, "age", false)
	if a == c {
		t.Error("different field projections were unified")
	}
}

func TestDerefUniqued(t *testing.T) {
	m := NewManager()
	base := m.Root("p")
	a := m.Deref(base)
	b := m.Deref(base)
	if a != b {
		t.Error("same deref path was not uniqued")
	}
}

func TestArrayOffsetDistinctPerIndexExpr(t *testing.T) {
	m := NewManager()
	base := m.Root("arr")
	idx1 := &ast.LiteralExp{Kind: ast.LitInt, Value: "0"}
	idx2 := &ast.LiteralExp{Kind: ast.LitInt, Value: "1"}
	a := m.ArrayOffset(base, idx1)
	b := m.ArrayOffset(base, idx2)
	if a == b {
		t.Error("array offsets over distinct index expressions should not be unified")
	}
	c := m.ArrayOffset(base, idx1)
	if a != c {
		t.Error("array offset over the same index expression should be uniqued")
	}
}

// TestDerefProjectNormalization verifies `B[.f]!` normalizes to `B!.f`:
// Deref(Project(base, f, isAddrCalc=true)) == Project(Deref(base), f, false).
func TestDerefProjectNormalization(t *testing.T) {
	m := NewManager()
	base := m.Root("b")
	addrCalc := m.Project(base, "f", true)
	normalized := m.Deref(addrCalc)

	expected := m.Project(m.Deref(base), "f", false)
	if normalized != expected {
		t.Errorf("Deref(Project(b,f,true)) = %s, want %s", String(normalized), String(expected))
	}
}

// TestNestedBracketNormalization verifies the rewrite applies
// transitively: B[.f1][.f2]! normalizes to B!.f1.f2.
func TestNestedBracketNormalization(t *testing.T) {
	m := NewManager()
	base := m.Root("b")
	nested := m.Project(m.Project(base, "f1", true), "f2", true)
	normalized := m.Deref(nested)

	expected := m.Project(m.Project(m.Deref(base), "f1", false), "f2", false)
	if normalized != expected {
		t.Errorf("nested normalization mismatch: got %s, want %s", String(normalized), String(expected))
	}
}

func TestReplacePrefixRoundTrip(t *testing.T) {
	m := NewManager()
	p := m.Project(m.Root("x"), "field", false)
	q := m.Root("y")

	// replacePrefix(p, p, q) == q
	if got := m.ReplacePrefix(p, p, q); got != q {
		t.Errorf("replacePrefix(p,p,q) = %s, want %s", String(got), String(q))
	}

	// replacePrefix(p, r, r) == p when r is a prefix of p.
	r := m.Root("x")
	if got := m.ReplacePrefix(p, r, r); got != p {
		t.Errorf("replacePrefix(p,r,r) = %s, want %s (identity)", String(got), String(p))
	}
}

func TestReplacePrefixRebasesDeepPath(t *testing.T) {
	m := NewManager()
	oldRoot := m.Root("$1")
	newRoot := m.Root("x")
	path := m.Project(m.Deref(oldRoot), "field", false)

	got := m.ReplacePrefix(path, oldRoot, newRoot)
	want := m.Project(m.Deref(newRoot), "field", false)
	if got != want {
		t.Errorf("ReplacePrefix rebase = %s, want %s", String(got), String(want))
	}
}

func TestReplacePrefixNoMatchReturnsUnchanged(t *testing.T) {
	m := NewManager()
	p := m.Project(m.Root("a"), "f", false)
	unrelated := m.Root("b")
	other := m.Root("c")

	got := m.ReplacePrefix(p, unrelated, other)
	if got != p {
		t.Errorf("ReplacePrefix with a non-matching prefix should return p unchanged, got %s", String(got))
	}
}

func TestStringRendering(t *testing.T) {
	m := NewManager()
	base := m.Root("p")
	proj := m.Project(base, "name", false)
	if String(proj) != "p.name" {
		t.Errorf("String(proj) = %q, want %q", String(proj), "p.name")
	}
	deref := m.Deref(base)
	if String(deref) != "p!" {
		t.Errorf("String(deref) = %q, want %q", String(deref), "p!")
	}
}
