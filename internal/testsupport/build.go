// Package testsupport provides AST builder helpers and small assertion
// wrappers shared by this module's package tests (and by cmd/semacheck's
// demonstration program loader, which needs the same node-construction
// primitives a test would). Adapted from internal/test/test.go's Suite
// pattern, rebuilt around this module's AST/type domain instead of
// asserting on minifier string output.
package testsupport

import (
	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/location"
	"github.com/rowlandz/miscr/internal/typesys"
)

// L is a throwaway source location for tests that don't care about
// exact positions but still want every node to carry a real one (not
// the location.None sentinel, which several phases treat specially).
func L(row, col int) location.Location {
	return location.Location{Row: row, Col: col, Size: 1}
}

// Name builds a NameExp.
func Name(loc location.Location, name string) *ast.NameExp {
	n := &ast.NameExp{Name: name}
	n.Loc = loc
	return n
}

// Int builds an integer LiteralExp.
func Int(loc location.Location, value string) *ast.LiteralExp {
	e := &ast.LiteralExp{Kind: ast.LitInt, Value: value}
	e.Loc = loc
	return e
}

// Bool builds a boolean LiteralExp.
func Bool(loc location.Location, value bool) *ast.LiteralExp {
	v := "false"
	if value {
		v = "true"
	}
	e := &ast.LiteralExp{Kind: ast.LitBool, Value: v}
	e.Loc = loc
	return e
}

// Binop builds a BinopExp.
func Binop(loc location.Location, op ast.BinOp, lhs, rhs ast.Exp) *ast.BinopExp {
	e := &ast.BinopExp{Op: op, LHS: lhs, RHS: rhs}
	e.Loc = loc
	return e
}

// Unary builds a UnaryExp.
func Unary(loc location.Location, op ast.UnOp, inner ast.Exp) *ast.UnaryExp {
	e := &ast.UnaryExp{Op: op, Inner: inner}
	e.Loc = loc
	return e
}

// Call builds a CallExp.
func Call(loc location.Location, funcName string, args ...ast.Exp) *ast.CallExp {
	e := &ast.CallExp{FuncName: funcName, Args: args}
	e.Loc = loc
	return e
}

// Constr builds a ConstrExp.
func Constr(loc location.Location, structName string, args ...ast.Exp) *ast.ConstrExp {
	e := &ast.ConstrExp{StructName: structName, Args: args}
	e.Loc = loc
	return e
}

// Project builds a dot or arrow ProjectExp.
func Project(loc location.Location, base ast.Exp, field string, isArrow bool) *ast.ProjectExp {
	e := &ast.ProjectExp{Base: base, Field: field, IsArrow: isArrow}
	e.Loc = loc
	return e
}

// ArrayAccess builds an ArrayAccessExp.
func ArrayAccess(loc location.Location, base, index ast.Exp) *ast.ArrayAccessExp {
	e := &ast.ArrayAccessExp{Base: base, Index: index}
	e.Loc = loc
	return e
}

// Deref builds a DerefExp.
func Deref(loc location.Location, base ast.Exp) *ast.DerefExp {
	e := &ast.DerefExp{Base: base}
	e.Loc = loc
	return e
}

// AddrOf builds an AddrOfExp.
func AddrOf(loc location.Location, base ast.Exp) *ast.AddrOfExp {
	e := &ast.AddrOfExp{Base: base}
	e.Loc = loc
	return e
}

// Ascrip builds an AscripExp.
func Ascrip(loc location.Location, inner ast.Exp, ty ast.Type) *ast.AscripExp {
	e := &ast.AscripExp{Inner: inner, AscribedType: ty}
	e.Loc = loc
	return e
}

// Let builds a LetExp.
func Let(loc location.Location, name string, value, body ast.Exp) *ast.LetExp {
	e := &ast.LetExp{Name: name, Value: value, Body: body}
	e.Loc = loc
	return e
}

// ArrayInit builds an ArrayInitExp.
func ArrayInit(loc location.Location, elems ...ast.Exp) *ast.ArrayInitExp {
	e := &ast.ArrayInitExp{Elems: elems}
	e.Loc = loc
	return e
}

// If builds an IfExp.
func If(loc location.Location, cond, then, els ast.Exp) *ast.IfExp {
	e := &ast.IfExp{Cond: cond, Then: then, Else: els}
	e.Loc = loc
	return e
}

// While builds a WhileExp.
func While(loc location.Location, cond, body ast.Exp) *ast.WhileExp {
	e := &ast.WhileExp{Cond: cond, Body: body}
	e.Loc = loc
	return e
}

// Block builds a BlockExp.
func Block(loc location.Location, stmts ...ast.Exp) *ast.BlockExp {
	e := &ast.BlockExp{Stmts: stmts}
	e.Loc = loc
	return e
}

// Move builds a MoveExp.
func Move(loc location.Location, inner ast.Exp) *ast.MoveExp {
	e := &ast.MoveExp{Inner: inner}
	e.Loc = loc
	return e
}

// Unmove builds an UnmoveExp.
func Unmove(loc location.Location, inner, value ast.Exp) *ast.UnmoveExp {
	e := &ast.UnmoveExp{Inner: inner, Value: value}
	e.Loc = loc
	return e
}

// Borrow builds a BorrowExp.
func Borrow(loc location.Location, inner ast.Exp) *ast.BorrowExp {
	e := &ast.BorrowExp{Inner: inner}
	e.Loc = loc
	return e
}

// Return builds a ReturnExp. value may be nil for a bare `return;`.
func Return(loc location.Location, value ast.Exp) *ast.ReturnExp {
	e := &ast.ReturnExp{Value: value}
	e.Loc = loc
	return e
}

// Assign builds an AssignExp.
func Assign(loc location.Location, lhs, rhs ast.Exp) *ast.AssignExp {
	e := &ast.AssignExp{LHS: lhs, RHS: rhs}
	e.Loc = loc
	return e
}

// Param builds a function parameter.
func Param(loc location.Location, name string, ty ast.Type) ast.Param {
	return ast.Param{Loc: loc, Name: name, Type: ty}
}

// Func builds a FunctionDecl with a body.
func Func(loc location.Location, name string, params []ast.Param, retType ast.Type, body ast.Exp) *ast.FunctionDecl {
	return &ast.FunctionDecl{Loc: loc, Name: name, Params: params, RetType: retType, Body: body}
}

// Extern builds a bodyless FunctionDecl.
func Extern(loc location.Location, name string, params []ast.Param, retType ast.Type) *ast.FunctionDecl {
	return &ast.FunctionDecl{Loc: loc, Name: name, Params: params, RetType: retType, IsExtern: true}
}

// Field builds a struct field.
func Field(loc location.Location, name string, ty ast.Type) ast.Field {
	return ast.Field{Loc: loc, Name: name, Type: ty}
}

// Struct builds a StructDecl.
func Struct(loc location.Location, name string, fields ...ast.Field) *ast.StructDecl {
	return &ast.StructDecl{Loc: loc, Name: name, Fields: fields}
}

// Module builds a ModuleDecl.
func Module(loc location.Location, name string, decls ...ast.Decl) *ast.ModuleDecl {
	return &ast.ModuleDecl{Loc: loc, Name: name, Decls: decls}
}

// Prim returns the uniqued primitive type for kind, via tc.
func Prim(tc *typesys.TypeContext, kind typesys.Primitive) typesys.Type {
	return tc.Primitive(kind)
}

// Ref returns the uniqued owned or borrowed reference type wrapping
// inner, via tc.
func Ref(tc *typesys.TypeContext, inner typesys.Type, owned bool) typesys.Type {
	return tc.Ref(inner, owned)
}

// NameTy returns the uniqued named-struct type for fqn, via tc.
func NameTy(tc *typesys.TypeContext, fqn string) typesys.Type {
	return tc.Name(fqn)
}
