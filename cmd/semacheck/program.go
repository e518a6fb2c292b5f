package main

import (
	"fmt"

	"github.com/rowlandz/miscr/internal/ast"
	"github.com/rowlandz/miscr/internal/testsupport"
	"github.com/rowlandz/miscr/internal/typesys"
)

// programDoc is the JSON program description semacheck reads in place
// of parsing real miscr source. Source is carried through only to let
// diagnostics render a snippet; it need not actually correspond to the
// JSON below it unless the caller wants meaningful line numbers.
type programDoc struct {
	Source string    `json:"source"`
	Decls  []declDoc `json:"decls"`
}

type declDoc struct {
	Kind   string     `json:"kind"` // "func", "extern", "struct", "module"
	Name   string     `json:"name"`
	Params []paramDoc `json:"params,omitempty"`
	Ret    *typeDoc   `json:"ret,omitempty"`
	Body   *exprDoc   `json:"body,omitempty"`
	Fields []paramDoc `json:"fields,omitempty"`
	Decls  []declDoc  `json:"decls,omitempty"`
}

type paramDoc struct {
	Name string  `json:"name"`
	Type typeDoc `json:"type"`
}

type typeDoc struct {
	Kind  string   `json:"kind"` // "prim", "ref", "name"
	Name  string   `json:"name,omitempty"`
	Owned bool     `json:"owned,omitempty"`
	Inner *typeDoc `json:"inner,omitempty"`
}

type exprDoc struct {
	Kind     string    `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Literal  string    `json:"value,omitempty"`
	Bool     bool      `json:"bool,omitempty"`
	Op       string    `json:"op,omitempty"`
	Func     string    `json:"func,omitempty"`
	Struct   string    `json:"struct,omitempty"`
	Field    string    `json:"field,omitempty"`
	Arrow    bool      `json:"arrow,omitempty"`
	Base     *exprDoc  `json:"base,omitempty"`
	Index    *exprDoc  `json:"index,omitempty"`
	Inner    *exprDoc  `json:"inner,omitempty"`
	LHS      *exprDoc  `json:"lhs,omitempty"`
	RHS      *exprDoc  `json:"rhs,omitempty"`
	Cond     *exprDoc  `json:"cond,omitempty"`
	Then     *exprDoc  `json:"then,omitempty"`
	Else     *exprDoc  `json:"else,omitempty"`
	Body     *exprDoc  `json:"body,omitempty"`
	ValueExp *exprDoc  `json:"valueExp,omitempty"`
	Type     *typeDoc  `json:"type,omitempty"`
	Args     []exprDoc `json:"args,omitempty"`
	Elems    []exprDoc `json:"elems,omitempty"`
	Stmts    []exprDoc `json:"stmts,omitempty"`
}

var binOps = map[string]ast.BinOp{
	"add": ast.OpAdd, "sub": ast.OpSub, "mul": ast.OpMul, "div": ast.OpDiv,
	"eq": ast.OpEq, "ne": ast.OpNe, "lt": ast.OpLt, "le": ast.OpLe,
	"gt": ast.OpGt, "ge": ast.OpGe, "and": ast.OpAnd, "or": ast.OpOr,
}

func buildDecls(doc programDoc) ([]ast.Decl, error) {
	tc := typesys.NewTypeContext()
	return buildDeclList(doc.Decls, tc)
}

func buildDeclList(docs []declDoc, tc *typesys.TypeContext) ([]ast.Decl, error) {
	out := make([]ast.Decl, 0, len(docs))
	for _, d := range docs {
		decl, err := buildDecl(d, tc)
		if err != nil {
			return nil, err
		}
		out = append(out, decl)
	}
	return out, nil
}

func buildDecl(d declDoc, tc *typesys.TypeContext) (ast.Decl, error) {
	switch d.Kind {
	case "func", "extern":
		params, err := buildParams(d.Params, tc)
		if err != nil {
			return nil, err
		}
		var ret ast.Type
		if d.Ret != nil {
			ret, err = buildType(*d.Ret, tc)
			if err != nil {
				return nil, err
			}
		} else {
			ret = tc.Primitive(typesys.PrimUnit)
		}
		if d.Kind == "extern" {
			return testsupport.Extern(testsupport.L(1, 1), d.Name, params, ret), nil
		}
		if d.Body == nil {
			return nil, fmt.Errorf("function %q has no body", d.Name)
		}
		body, err := buildExpr(*d.Body, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Func(testsupport.L(1, 1), d.Name, params, ret, body), nil

	case "struct":
		fields := make([]ast.Field, 0, len(d.Fields))
		for _, f := range d.Fields {
			ty, err := buildType(f.Type, tc)
			if err != nil {
				return nil, err
			}
			fields = append(fields, testsupport.Field(testsupport.L(1, 1), f.Name, ty))
		}
		return testsupport.Struct(testsupport.L(1, 1), d.Name, fields...), nil

	case "module":
		inner, err := buildDeclList(d.Decls, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Module(testsupport.L(1, 1), d.Name, inner...), nil

	default:
		return nil, fmt.Errorf("unknown declaration kind %q", d.Kind)
	}
}

func buildParams(docs []paramDoc, tc *typesys.TypeContext) ([]ast.Param, error) {
	out := make([]ast.Param, 0, len(docs))
	for _, p := range docs {
		ty, err := buildType(p.Type, tc)
		if err != nil {
			return nil, err
		}
		out = append(out, testsupport.Param(testsupport.L(1, 1), p.Name, ty))
	}
	return out, nil
}

func buildType(d typeDoc, tc *typesys.TypeContext) (ast.Type, error) {
	switch d.Kind {
	case "prim":
		kind, ok := primKinds[d.Name]
		if !ok {
			return nil, fmt.Errorf("unknown primitive type %q", d.Name)
		}
		return tc.Primitive(kind), nil
	case "ref":
		if d.Inner == nil {
			return nil, fmt.Errorf("ref type missing inner")
		}
		inner, err := buildType(*d.Inner, tc)
		if err != nil {
			return nil, err
		}
		return tc.Ref(inner, d.Owned), nil
	case "name":
		return tc.Name(d.Name), nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", d.Kind)
	}
}

var primKinds = map[string]typesys.Primitive{
	"bool": typesys.PrimBool, "i8": typesys.PrimI8, "i32": typesys.PrimI32,
	"i64": typesys.PrimI64, "f32": typesys.PrimF32, "f64": typesys.PrimF64,
	"unit": typesys.PrimUnit, "string": typesys.PrimString,
}

func buildExpr(d exprDoc, tc *typesys.TypeContext) (ast.Exp, error) {
	loc := testsupport.L(1, 1)
	switch d.Kind {
	case "name":
		return testsupport.Name(loc, d.Name), nil
	case "int":
		return testsupport.Int(loc, d.Literal), nil
	case "bool":
		return testsupport.Bool(loc, d.Bool), nil
	case "binop":
		op, ok := binOps[d.Op]
		if !ok {
			return nil, fmt.Errorf("unknown binop %q", d.Op)
		}
		lhs, err := buildExpr(*d.LHS, tc)
		if err != nil {
			return nil, err
		}
		rhs, err := buildExpr(*d.RHS, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Binop(loc, op, lhs, rhs), nil
	case "unary":
		inner, err := buildExpr(*d.Inner, tc)
		if err != nil {
			return nil, err
		}
		op := ast.OpNeg
		if d.Op == "not" {
			op = ast.OpNot
		}
		return testsupport.Unary(loc, op, inner), nil
	case "call":
		args, err := buildExprs(d.Args, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Call(loc, d.Func, args...), nil
	case "constr":
		args, err := buildExprs(d.Args, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Constr(loc, d.Struct, args...), nil
	case "project":
		base, err := buildExpr(*d.Base, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Project(loc, base, d.Field, d.Arrow), nil
	case "index":
		base, err := buildExpr(*d.Base, tc)
		if err != nil {
			return nil, err
		}
		index, err := buildExpr(*d.Index, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.ArrayAccess(loc, base, index), nil
	case "deref":
		base, err := buildExpr(*d.Base, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Deref(loc, base), nil
	case "addrof":
		base, err := buildExpr(*d.Base, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.AddrOf(loc, base), nil
	case "ascrip":
		inner, err := buildExpr(*d.Inner, tc)
		if err != nil {
			return nil, err
		}
		if d.Type == nil {
			return nil, fmt.Errorf("ascrip missing type")
		}
		ty, err := buildType(*d.Type, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Ascrip(loc, inner, ty), nil
	case "let":
		value, err := buildExpr(*d.ValueExp, tc)
		if err != nil {
			return nil, err
		}
		body, err := buildExpr(*d.Body, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Let(loc, d.Name, value, body), nil
	case "arrayinit":
		elems, err := buildExprs(d.Elems, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.ArrayInit(loc, elems...), nil
	case "if":
		cond, err := buildExpr(*d.Cond, tc)
		if err != nil {
			return nil, err
		}
		then, err := buildExpr(*d.Then, tc)
		if err != nil {
			return nil, err
		}
		var els ast.Exp
		if d.Else != nil {
			els, err = buildExpr(*d.Else, tc)
			if err != nil {
				return nil, err
			}
		}
		return testsupport.If(loc, cond, then, els), nil
	case "while":
		cond, err := buildExpr(*d.Cond, tc)
		if err != nil {
			return nil, err
		}
		body, err := buildExpr(*d.Body, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.While(loc, cond, body), nil
	case "block":
		stmts, err := buildExprs(d.Stmts, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Block(loc, stmts...), nil
	case "move":
		inner, err := buildExpr(*d.Inner, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Move(loc, inner), nil
	case "unmove":
		inner, err := buildExpr(*d.Inner, tc)
		if err != nil {
			return nil, err
		}
		value, err := buildExpr(*d.ValueExp, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Unmove(loc, inner, value), nil
	case "borrow":
		inner, err := buildExpr(*d.Inner, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Borrow(loc, inner), nil
	case "return":
		if d.ValueExp == nil {
			return testsupport.Return(loc, nil), nil
		}
		value, err := buildExpr(*d.ValueExp, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Return(loc, value), nil
	case "assign":
		lhs, err := buildExpr(*d.LHS, tc)
		if err != nil {
			return nil, err
		}
		rhs, err := buildExpr(*d.RHS, tc)
		if err != nil {
			return nil, err
		}
		return testsupport.Assign(loc, lhs, rhs), nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", d.Kind)
	}
}

func buildExprs(docs []exprDoc, tc *typesys.TypeContext) ([]ast.Exp, error) {
	out := make([]ast.Exp, 0, len(docs))
	for _, d := range docs {
		e, err := buildExpr(d, tc)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
