package ontology

import (
	"testing"

	"github.com/rowlandz/miscr/internal/ast"
)

func TestDeclareTypeAndLookup(t *testing.T) {
	o := New()
	sd := &ast.StructDecl{Name: "Point"}
	if err := o.DeclareType("Point", sd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := o.LookupType("Point")
	if !ok {
		t.Fatal("expected Point to be found")
	}
	if got.Decl != ast.Decl(sd) {
		t.Errorf("wrong decl returned")
	}
}

func TestDeclareTypeCollision(t *testing.T) {
	o := New()
	first := &ast.StructDecl{Name: "Point"}
	second := &ast.StructDecl{Name: "Point"}
	if err := o.DeclareType("Point", first); err != nil {
		t.Fatalf("unexpected error on first declare: %v", err)
	}
	err := o.DeclareType("Point", second)
	if err == nil {
		t.Fatal("expected a collision error")
	}
	if _, ok := err.(*ErrCollision); !ok {
		t.Errorf("expected *ErrCollision, got %T", err)
	}
}

func TestTypeAndFunctionNamespacesDisjoint(t *testing.T) {
	o := New()
	if err := o.DeclareType("foo", &ast.StructDecl{Name: "foo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := o.DeclareFunction("foo", "foo", &ast.FunctionDecl{Name: "foo"})
	if err == nil {
		t.Fatal("expected a collision when a function claims a type's FQN")
	}
}

func TestModuleMayOverlapTypeOrFunction(t *testing.T) {
	o := New()
	if err := o.DeclareFunction("foo", "foo", &ast.FunctionDecl{Name: "foo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := o.DeclareModule("foo", &ast.ModuleDecl{Name: "foo"}); err != nil {
		t.Errorf("module should be allowed to share an FQN with a function: %v", err)
	}
}

func TestDeclareFunctionRecordsShortName(t *testing.T) {
	o := New()
	if err := o.DeclareFunction("m::puts", "puts", &ast.FunctionDecl{Name: "puts", IsExtern: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := o.LookupFunction("m::puts")
	if !ok {
		t.Fatal("expected m::puts to be found")
	}
	if got.ShortName != "puts" {
		t.Errorf("expected extern short name 'puts', got %q", got.ShortName)
	}
}

func TestEntryPointRecorded(t *testing.T) {
	o := New()
	if _, ok := o.EntryPoint(); ok {
		t.Fatal("expected no entry point before one is set")
	}
	o.SetEntryPoint("main")
	fqn, ok := o.EntryPoint()
	if !ok || fqn != "main" {
		t.Errorf("expected entry point 'main', got %q, %v", fqn, ok)
	}
}

func TestModuleCollision(t *testing.T) {
	o := New()
	if err := o.DeclareModule("m", &ast.ModuleDecl{Name: "m"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := o.DeclareModule("m", &ast.ModuleDecl{Name: "m"}); err == nil {
		t.Fatal("expected a collision declaring the same module twice")
	}
}

func TestStructDeclLookup(t *testing.T) {
	o := New()
	sd := &ast.StructDecl{Name: "Pair", Fields: []ast.Field{{Name: "a"}, {Name: "b"}}}
	if err := o.DeclareType("Pair", sd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := o.StructDecl("Pair")
	if !ok || got != sd {
		t.Errorf("StructDecl lookup failed: got %v, %v", got, ok)
	}
	if _, ok := o.StructDecl("NoSuchThing"); ok {
		t.Errorf("expected lookup miss for unknown FQN")
	}
}
