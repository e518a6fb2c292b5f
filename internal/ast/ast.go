// Package ast defines the AST node set consumed by semantic analysis:
// declarations, expressions, and types. Polymorphism follows Go idiom
// (an interface with a private marker method, dispatched with a type
// switch) rather than the tagged-union/downcast style of the original
// implementation this was derived from.
package ast

import (
	"github.com/rowlandz/miscr/internal/location"
	"github.com/rowlandz/miscr/internal/typesys"
)

// Type is the type-system's Type, aliased here so AST node fields read
// naturally without every call site importing typesys directly.
type Type = typesys.Type

// Decl is any top-level or nested declaration.
type Decl interface {
	declNode()
	GetLoc() location.Location
}

// DeclList is an ordered sequence of sibling declarations sharing a
// scope, e.g. a module's body or the whole program.
type DeclList struct {
	Decls []Decl
}

// ModuleDecl introduces a named nested scope.
type ModuleDecl struct {
	Loc   location.Location
	Name  string
	Decls []Decl
}

func (*ModuleDecl) declNode()                     {}
func (d *ModuleDecl) GetLoc() location.Location    { return d.Loc }

// Param is one function parameter.
type Param struct {
	Loc  location.Location
	Name string
	Type Type
}

// FunctionDecl is a function or extern declaration. Body is nil for
// extern functions.
type FunctionDecl struct {
	Loc      location.Location
	Name     string
	Params   []Param
	RetType  Type
	Body     Exp
	IsExtern bool
}

func (*FunctionDecl) declNode()                  {}
func (d *FunctionDecl) GetLoc() location.Location { return d.Loc }

// Field is one struct member.
type Field struct {
	Loc  location.Location
	Name string
	Type Type
}

// StructDecl declares a struct type and its implicit constructor
// function (sharing the FUNCTION namespace with ordinary functions).
type StructDecl struct {
	Loc    location.Location
	Name   string
	Fields []Field
}

func (*StructDecl) declNode()                  {}
func (d *StructDecl) GetLoc() location.Location { return d.Loc }

// DataDecl is a type alias.
type DataDecl struct {
	Loc  location.Location
	Name string
	Type Type
}

func (*DataDecl) declNode()                  {}
func (d *DataDecl) GetLoc() location.Location { return d.Loc }

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// Exp is any expression node. miscr is expression-oriented: there is no
// separate statement hierarchy, blocks and lets are expressions.
type Exp interface {
	expNode()
	GetLoc() location.Location
	GetType() Type
	SetType(Type)
	Children() []Exp
}

// base carries the fields every expression has: its source location
// and (once the unifier has run) its resolved type.
type base struct {
	Loc location.Location
	Ty  Type
}

func (b *base) GetLoc() location.Location { return b.Loc }
func (b *base) GetType() Type             { return b.Ty }
func (b *base) SetType(t Type)            { b.Ty = t }

// LiteralKind distinguishes literal categories.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitString
)

// LiteralExp is an integer/float/bool/string literal.
type LiteralExp struct {
	base
	Kind  LiteralKind
	Value string
}

func (*LiteralExp) expNode()          {}
func (*LiteralExp) Children() []Exp   { return nil }

// NameExp is a (possibly unqualified) reference to a binding, struct
// constructor, or function. The canonicalizer rewrites Name in place.
type NameExp struct {
	base
	Name string
}

func (*NameExp) expNode()        {}
func (*NameExp) Children() []Exp { return nil }

// BinOp enumerates binary operators.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

// BinopExp is a binary arithmetic/comparison/logical expression.
type BinopExp struct {
	base
	Op       BinOp
	LHS, RHS Exp
}

func (*BinopExp) expNode()        {}
func (e *BinopExp) Children() []Exp { return []Exp{e.LHS, e.RHS} }

// CallExp is a function call. FuncName is canonicalized in place by
// the canonicalizer, the same as NameExp.Name.
type CallExp struct {
	base
	FuncName string
	Args     []Exp
}

func (*CallExp) expNode() {}
func (e *CallExp) Children() []Exp {
	return e.Args
}

// ConstrExp constructs a struct value. StructName is canonicalized the
// same way as CallExp.FuncName (struct constructors share the
// FUNCTION namespace).
type ConstrExp struct {
	base
	StructName string
	Args       []Exp
}

func (*ConstrExp) expNode() {}
func (e *ConstrExp) Children() []Exp {
	return e.Args
}

// ProjectExp is a field projection, `.field` or (IsArrow) `->field`.
type ProjectExp struct {
	base
	Base    Exp
	Field   string
	IsArrow bool
}

func (*ProjectExp) expNode()        {}
func (e *ProjectExp) Children() []Exp { return []Exp{e.Base} }

// ArrayAccessExp is `Base[Index]`.
type ArrayAccessExp struct {
	base
	Base  Exp
	Index Exp
}

func (*ArrayAccessExp) expNode()        {}
func (e *ArrayAccessExp) Children() []Exp { return []Exp{e.Base, e.Index} }

// DerefExp is `Base!`, dereferencing a reference.
type DerefExp struct {
	base
	Base Exp
}

func (*DerefExp) expNode()        {}
func (e *DerefExp) Children() []Exp { return []Exp{e.Base} }

// AddrOfExp is `&Base`, taking a reference to an lvalue.
type AddrOfExp struct {
	base
	Base Exp
}

func (*AddrOfExp) expNode()        {}
func (e *AddrOfExp) Children() []Exp { return []Exp{e.Base} }

// AscripExp is `Inner : AscribedType`.
type AscripExp struct {
	base
	Inner        Exp
	AscribedType Type
}

func (*AscripExp) expNode()        {}
func (e *AscripExp) Children() []Exp { return []Exp{e.Inner} }

// LetExp is `let Name = Value; Body`.
type LetExp struct {
	base
	Name  string
	Value Exp
	Body  Exp
}

func (*LetExp) expNode() {}
func (e *LetExp) Children() []Exp {
	return []Exp{e.Value, e.Body}
}

// ArrayInitExp is an array literal `[e0, e1, ...]`.
type ArrayInitExp struct {
	base
	Elems []Exp
}

func (*ArrayInitExp) expNode() {}
func (e *ArrayInitExp) Children() []Exp {
	return e.Elems
}

// IfExp is `if Cond then Then` or `if Cond then Then else Else`. Else
// is nil for an else-less if, which types as unit regardless of
// Then's type (see the unifier/borrow checker).
type IfExp struct {
	base
	Cond, Then, Else Exp
}

func (*IfExp) expNode() {}
func (e *IfExp) Children() []Exp {
	if e.Else == nil {
		return []Exp{e.Cond, e.Then}
	}
	return []Exp{e.Cond, e.Then, e.Else}
}

// BlockExp sequences expressions; the value of the last is the block's
// value.
type BlockExp struct {
	base
	Stmts []Exp
}

func (*BlockExp) expNode() {}
func (e *BlockExp) Children() []Exp {
	return e.Stmts
}

// MoveExp moves an owned reference out of its binding.
type MoveExp struct {
	base
	Inner Exp
}

func (*MoveExp) expNode()        {}
func (e *MoveExp) Children() []Exp { return []Exp{e.Inner} }

// UnmoveExp restores a moved binding with a fresh Value.
type UnmoveExp struct {
	base
	Inner Exp
	Value Exp
}

func (*UnmoveExp) expNode() {}
func (e *UnmoveExp) Children() []Exp {
	return []Exp{e.Inner, e.Value}
}

// BorrowExp converts an owned reference into a borrowed one without
// consuming the underlying allocation. Borrowing a value that has
// already been used is rejected by the borrow checker.
type BorrowExp struct {
	base
	Inner Exp
}

func (*BorrowExp) expNode()        {}
func (e *BorrowExp) Children() []Exp { return []Exp{e.Inner} }

// UnOp enumerates unary operators.
type UnOp uint8

const (
	OpNot UnOp = iota
	OpNeg
)

// UnaryExp is a unary NOT or NEG expression.
type UnaryExp struct {
	base
	Op    UnOp
	Inner Exp
}

func (*UnaryExp) expNode()        {}
func (e *UnaryExp) Children() []Exp { return []Exp{e.Inner} }

// WhileExp loops while Cond holds, discarding Body's value. Its own
// type is always unit.
type WhileExp struct {
	base
	Cond, Body Exp
}

func (*WhileExp) expNode() {}
func (e *WhileExp) Children() []Exp {
	return []Exp{e.Cond, e.Body}
}

// ReturnExp exits the enclosing function with Value (nil for a bare
// `return;` of unit type).
type ReturnExp struct {
	base
	Value Exp
}

func (*ReturnExp) expNode() {}
func (e *ReturnExp) Children() []Exp {
	if e.Value == nil {
		return nil
	}
	return []Exp{e.Value}
}

// AssignExp writes RHS into the lvalue denoted by LHS.
type AssignExp struct {
	base
	LHS, RHS Exp
}

func (*AssignExp) expNode() {}
func (e *AssignExp) Children() []Exp {
	return []Exp{e.LHS, e.RHS}
}
