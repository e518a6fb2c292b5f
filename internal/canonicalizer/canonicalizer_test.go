package canonicalizer

import (
	"testing"

	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/cataloger"
	"github.com/rowlandz/miscr/internal/testsupport"
	"github.com/rowlandz/miscr/internal/typesys"
)

func TestResolvesCallInEnclosingModule(t *testing.T) {
	// module outer { func helper(): unit = {}; module inner { func f(): unit = helper(); } }
	helper := testsupport.Func(testsupport.L(1, 1), "helper", nil, nil, testsupport.Block(testsupport.L(1, 1)))
	call := testsupport.Call(testsupport.L(3, 1), "helper")
	f := testsupport.Func(testsupport.L(3, 1), "f", nil, nil, call)
	tree := []ast.Decl{
		testsupport.Module(testsupport.L(1, 1), "outer", helper,
			testsupport.Module(testsupport.L(2, 1), "inner", f)),
	}

	cat := cataloger.New()
	ont, err := cat.Run(tree, "")
	if err != nil {
		t.Fatalf("cataloging failed: %v", err)
	}

	tc := typesys.NewTypeContext()
	c := New(ont, tc)
	c.RunFunc(f, "outer::inner")
	if len(c.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", c.Errors())
	}
	if call.FuncName != "outer::helper" {
		t.Errorf("FuncName = %q, want %q", call.FuncName, "outer::helper")
	}
}

func TestUnresolvedNameReportsError(t *testing.T) {
	call := testsupport.Call(testsupport.L(1, 1), "doesNotExist")
	f := testsupport.Func(testsupport.L(1, 1), "f", nil, nil, call)

	cat := cataloger.New()
	ont, err := cat.Run([]ast.Decl{f}, "")
	if err != nil {
		t.Fatalf("cataloging failed: %v", err)
	}

	tc := typesys.NewTypeContext()
	c := New(ont, tc)
	c.RunFunc(f, "")
	if len(c.Errors()) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(c.Errors()), c.Errors())
	}
	if _, ok := c.Errors()[0].(*ErrUnresolvedName); !ok {
		t.Errorf("expected *ErrUnresolvedName, got %T", c.Errors()[0])
	}
}

func TestCanonicalizerIsIdempotent(t *testing.T) {
	helper := testsupport.Func(testsupport.L(1, 1), "helper", nil, nil, testsupport.Block(testsupport.L(1, 1)))
	call := testsupport.Call(testsupport.L(2, 1), "helper")
	f := testsupport.Func(testsupport.L(2, 1), "f", nil, nil, call)
	tree := []ast.Decl{helper, f}

	cat := cataloger.New()
	ont, err := cat.Run(tree, "")
	if err != nil {
		t.Fatalf("cataloging failed: %v", err)
	}
	tc := typesys.NewTypeContext()

	c1 := New(ont, tc)
	c1.RunFunc(f, "")
	firstPass := call.FuncName

	c2 := New(ont, tc)
	c2.RunFunc(f, "")
	secondPass := call.FuncName

	if firstPass != secondPass {
		t.Errorf("canonicalization not idempotent: %q then %q", firstPass, secondPass)
	}
	if len(c2.Errors()) != 0 {
		t.Errorf("second pass over an already-canonicalized FQN should not error: %v", c2.Errors())
	}
}

func TestLocalBindingsAreNotRewritten(t *testing.T) {
	// let x = 1; x  -- `x` is never declared globally, so it must be left alone.
	name := testsupport.Name(testsupport.L(1, 10), "x")
	let := testsupport.Let(testsupport.L(1, 1), "x", testsupport.Int(testsupport.L(1, 9), "1"), name)
	f := testsupport.Func(testsupport.L(1, 1), "f", nil, nil, let)

	cat := cataloger.New()
	ont, err := cat.Run([]ast.Decl{f}, "")
	if err != nil {
		t.Fatalf("cataloging failed: %v", err)
	}
	tc := typesys.NewTypeContext()
	c := New(ont, tc)
	c.RunFunc(f, "")
	if len(c.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", c.Errors())
	}
	if name.Name != "x" {
		t.Errorf("local binding reference was rewritten to %q", name.Name)
	}
}
