package ir

import (
	"cfront/ast"
	"cfront/scope"
)

// collectLocals implements §4.9 step 1: walk fn's parameter list and body
// once, in source order, allocating one Local per AST local variable
// (parameters first, then each DeclStmt as it is found), and marking a
// local's Referenced flag when its address is ever taken via `&name`.
// This happens as a dedicated pass ahead of instruction lowering so a
// local's frame-slot-vs-register-candidate classification is already
// settled by the time the main walk needs it (e.g. to decide whether a
// NameRef load can stay in a register or must read through memory).
func collectLocals(fn *ast.FunctionDeclaration) ([]*Local, map[*ast.ValueDeclaration]*Local) {
	byDecl := make(map[*ast.ValueDeclaration]*Local)
	var locals []*Local

	add := func(decl *ast.ValueDeclaration, isParam bool) *Local {
		if existing, ok := byDecl[decl]; ok {
			return existing
		}
		l := &Local{Index: len(locals), Name: decl.Name, Type: decl.Type, IsParam: isParam}
		locals = append(locals, l)
		byDecl[decl] = l
		return l
	}

	for _, p := range fn.Parameters {
		add(p, true)
	}

	var walkStmt func(ast.Statement)
	var walkExpr func(ast.Expression)

	walkExpr = func(e ast.Expression) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.Unary:
			walkExpr(n.Argument)
			if n.Op == ast.URef {
				if l := localOfExpr(byDecl, n.Argument); l != nil {
					l.Referenced = true
				}
			}
		case *ast.Binary:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.Ternary:
			walkExpr(n.Condition)
			walkExpr(n.IfTrue)
			walkExpr(n.IfFalse)
		case *ast.Cast:
			walkExpr(n.Argument)
		case *ast.Call:
			walkExpr(n.Callee)
			for _, a := range n.Arguments {
				walkExpr(a)
			}
		case *ast.FieldAccess:
			walkExpr(n.Receiver)
		case *ast.CompoundLiteral:
			walkInitializer(n.Initializer, walkExpr)
		case *ast.BlockExpr:
			walkStmt(n.Body)
		case *ast.VaArg:
			walkExpr(n.VaList)
		case *ast.Paren:
			walkExpr(n.Inner)
		case *ast.BitExtend:
			walkExpr(n.Argument)
		}
	}

	walkStmt = func(s ast.Statement) {
		if s == nil {
			return
		}
		switch n := s.(type) {
		case *ast.Block:
			for _, st := range n.Statements {
				walkStmt(st)
			}
		case *ast.ExprStmt:
			walkExpr(n.Expression)
		case *ast.If:
			walkExpr(n.Condition)
			walkStmt(n.ThenBranch)
			walkStmt(n.ElseBranch)
		case *ast.Switch:
			walkExpr(n.Condition)
			walkStmt(n.Body)
		case *ast.Loop:
			walkStmt(n.Init)
			walkExpr(n.Condition)
			walkExpr(n.Step)
			walkStmt(n.Body)
		case *ast.Jump:
			walkExpr(n.Target)
			walkExpr(n.ReturnValue)
		case *ast.Labeled:
			walkStmt(n.Body)
		case *ast.DeclStmt:
			for d := n.Declaration; d != nil; d = d.Next {
				add(d, false)
				if d.Initializer != nil {
					walkInitializer(d.Initializer, walkExpr)
				}
			}
		}
	}

	if fn.Body != nil {
		walkStmt(fn.Body)
	}
	return locals, byDecl
}

// walkInitializer descends an Initializer tree (ast/initializer.go),
// visiting every leaf expression so a compound literal's or a
// declarator's nested `&x` designated initializers still mark their
// target local referenced.
func walkInitializer(init *ast.Initializer, visit func(ast.Expression)) {
	if init == nil {
		return
	}
	if init.Expression != nil {
		visit(init.Expression)
	}
	for _, c := range init.Children {
		walkInitializer(c, visit)
	}
}

// localOfExpr resolves a (possibly parenthesized) NameRef expression to
// its Local, or nil if e does not name a local variable.
func localOfExpr(byDecl map[*ast.ValueDeclaration]*Local, e ast.Expression) *Local {
	for {
		p, ok := e.(*ast.Paren)
		if !ok {
			break
		}
		e = p.Inner
	}
	nr, ok := e.(*ast.NameRef)
	if !ok {
		return nil
	}
	sym, ok := nr.Symbol.(*scope.Symbol)
	if !ok {
		return nil
	}
	decl, ok := sym.Node.(*ast.ValueDeclaration)
	if !ok {
		return nil
	}
	return byDecl[decl]
}
