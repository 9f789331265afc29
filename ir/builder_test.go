package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cfront/ast"
	"cfront/dominance"
	"cfront/ir"
	"cfront/scope"
	"cfront/token"
	"cfront/types"
)

func intType() *types.TypeRef { return types.Value(types.Primitive(types.S4), 0) }

// nameRef builds a NameRef expression resolved to decl, wiring the
// *scope.Symbol/Node back-reference the same way the semantic analyzer
// does (§4.4 symbol resolution) so ir.BuildFunction's localFor lookup
// succeeds.
func nameRef(decl *ast.ValueDeclaration) *ast.NameRef {
	sym := &scope.Symbol{Kind: scope.ValueSymbol, Name: decl.Name, Node: decl}
	return ast.NewNameRef(token.Coordinates{}, decl.Type, decl.Name, sym)
}

// addFunction builds `int add(int a, int b) { return a + b; }` directly
// as a typed AST, bypassing the parser/sema pipeline, to exercise
// ir.BuildFunction and dominance.Compute against a known-shape CFG (a
// single straight-line block).
func addFunction() *ast.FunctionDeclaration {
	a := ast.NewValueDeclaration(token.Coordinates{}, ast.DeclParameter, intType(), "a", 0, 0)
	b := ast.NewValueDeclaration(token.Coordinates{}, ast.DeclParameter, intType(), "b", 1, 0)

	sum := ast.NewBinary(token.Coordinates{}, intType(), ast.BAdd, nameRef(a), nameRef(b))
	ret := ast.NewJump(token.Coordinates{}, ast.JumpReturn)
	ret.ReturnValue = sum
	body := ast.NewBlock(token.Coordinates{}, []ast.Statement{ret}, nil)

	fnType := types.Function(intType(), []*types.TypeRef{a.Type, b.Type}, false)
	fn := ast.NewFunctionDeclaration(token.Coordinates{}, "add", fnType, []*ast.ValueDeclaration{a, b})
	fn.Body = body
	return fn
}

// maxFunction builds:
//
//	int max(int a, int b) {
//	  if (a > b) return a;
//	  return b;
//	}
//
// lowering to the diamond-shaped CFG an if/else without an else
// produces (§4.9 scenario S5): entry branches to a then-block and
// falls through to a shared tail.
func maxFunction() *ast.FunctionDeclaration {
	a := ast.NewValueDeclaration(token.Coordinates{}, ast.DeclParameter, intType(), "a", 0, 0)
	b := ast.NewValueDeclaration(token.Coordinates{}, ast.DeclParameter, intType(), "b", 1, 0)

	cond := ast.NewBinary(token.Coordinates{}, types.Value(types.Primitive(types.Bool), 0), ast.BGt, nameRef(a), nameRef(b))
	retA := ast.NewJump(token.Coordinates{}, ast.JumpReturn)
	retA.ReturnValue = nameRef(a)
	ifStmt := ast.NewIf(token.Coordinates{}, cond, retA, nil)

	retB := ast.NewJump(token.Coordinates{}, ast.JumpReturn)
	retB.ReturnValue = nameRef(b)

	body := ast.NewBlock(token.Coordinates{}, []ast.Statement{ifStmt, retB}, nil)

	fnType := types.Function(intType(), []*types.TypeRef{a.Type, b.Type}, false)
	fn := ast.NewFunctionDeclaration(token.Coordinates{}, "max", fnType, []*ast.ValueDeclaration{a, b})
	fn.Body = body
	return fn
}

// loopFunction builds:
//
//	int sum(int n) {
//	  int total = 0;
//	  while (n > 0) {
//	    total = total + n;
//	    n = n - 1;
//	  }
//	  return total;
//	}
//
// lowering to an entry, a loop header with two successors, a body
// block branching back to the header, and an exit.
func loopFunction() *ast.FunctionDeclaration {
	n := ast.NewValueDeclaration(token.Coordinates{}, ast.DeclParameter, intType(), "n", 0, 0)
	total := ast.NewValueDeclaration(token.Coordinates{}, ast.DeclVariable, intType(), "total", 0, 0)
	zero := ast.NewConst(token.Coordinates{}, intType(), ast.ConstInt)
	total.Initializer = ast.NewExpressionInitializer(intType(), 0, zero)
	declStmt := ast.NewDeclStmt(token.Coordinates{}, total)

	cond := ast.NewBinary(token.Coordinates{}, types.Value(types.Primitive(types.Bool), 0), ast.BGt, nameRef(n), ast.NewConst(token.Coordinates{}, intType(), ast.ConstInt))

	addTotal := ast.NewBinary(token.Coordinates{}, intType(), ast.BAdd, nameRef(total), nameRef(n))
	assignTotal := ast.NewBinary(token.Coordinates{}, intType(), ast.BAssign, nameRef(total), addTotal)
	subN := ast.NewBinary(token.Coordinates{}, intType(), ast.BSub, nameRef(n), ast.NewConst(token.Coordinates{}, intType(), ast.ConstInt))
	assignN := ast.NewBinary(token.Coordinates{}, intType(), ast.BAssign, nameRef(n), subN)

	loopBody := ast.NewBlock(token.Coordinates{}, []ast.Statement{
		ast.NewExprStmt(token.Coordinates{}, assignTotal),
		ast.NewExprStmt(token.Coordinates{}, assignN),
	}, nil)
	loop := ast.NewLoop(token.Coordinates{}, ast.LoopWhile, nil, cond, nil, loopBody)

	ret := ast.NewJump(token.Coordinates{}, ast.JumpReturn)
	ret.ReturnValue = nameRef(total)

	body := ast.NewBlock(token.Coordinates{}, []ast.Statement{declStmt, loop, ret}, nil)

	fnType := types.Function(intType(), []*types.TypeRef{n.Type}, false)
	fn := ast.NewFunctionDeclaration(token.Coordinates{}, "sum", fnType, []*ast.ValueDeclaration{n})
	fn.Body = body
	return fn
}

func TestBuildFunctionStraightLineHasSingleExitPath(t *testing.T) {
	fn := ir.BuildFunction(addFunction())

	require.Len(t, fn.Locals, 3)
	require.Equal(t, "a", fn.Locals[0].Name)
	require.Equal(t, "b", fn.Locals[1].Name)

	entry := fn.Block(fn.Entry)
	require.NotNil(t, entry)
	require.Empty(t, entry.Predecessors)

	last := entry.Instructions[len(entry.Instructions)-1]
	require.Equal(t, ir.OpBranch, last.Op)
}

func TestBuildFunctionReturnsThroughSharedExitBlock(t *testing.T) {
	fn := ir.BuildFunction(addFunction())

	var exit *ir.BasicBlock
	for _, b := range fn.Blocks {
		if b.Name == "exit" {
			exit = b
		}
	}
	require.NotNil(t, exit)
	require.NotEmpty(t, exit.Instructions)

	terminator := exit.Instructions[len(exit.Instructions)-1]
	require.Equal(t, ir.OpReturn, terminator.Op)
}

func TestBuildFunctionWirePredecessorsMatchesSuccessors(t *testing.T) {
	fn := ir.BuildFunction(maxFunction())

	for _, b := range fn.Blocks {
		for _, succID := range b.Successors {
			succ := fn.Block(succID)
			require.NotNil(t, succ)
			require.Contains(t, succ.Predecessors, b.ID)
		}
	}
}

func dominanceBuild(decl *ast.FunctionDeclaration) *ir.Function {
	fn := ir.BuildFunction(decl)
	dominance.Compute(fn)
	return fn
}

func TestDiamondCFGStrictDominatorsAndSharedExit(t *testing.T) {
	fn := dominanceBuild(maxFunction())

	entry := fn.Block(fn.Entry)
	for _, b := range fn.Blocks {
		if b.ID == entry.ID {
			continue
		}
		require.Equalf(t, entry.ID, b.StrictDominator, "block %d (%s) is strictly dominated by entry", b.ID, b.Name)
	}

	var exit *ir.BasicBlock
	for _, b := range fn.Blocks {
		if b.Name == "exit" {
			exit = b
		}
	}
	require.NotNil(t, exit)
	require.GreaterOrEqual(t, len(exit.Predecessors), 2, "max's two return paths should rejoin at the shared exit block")
}

func TestLoopCFGHeaderDominatesBodyAndIsInOwnFrontier(t *testing.T) {
	fn := dominanceBuild(loopFunction())

	var header *ir.BasicBlock
	for _, b := range fn.Blocks {
		if len(b.Predecessors) >= 2 && len(b.Successors) == 2 {
			header = b
		}
	}
	require.NotNil(t, header, "loop lowering should produce a header block with a back edge and two successors")
	for _, pred := range header.Predecessors {
		if pred != fn.Entry {
			require.Equalf(t, header.ID, fn.Block(pred).StrictDominator, "loop body block %d is strictly dominated by the header", pred)
		}
	}
	require.Contains(t, header.Frontier, header.ID, "a loop header dominates a predecessor of itself without strictly dominating itself")
}
