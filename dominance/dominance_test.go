package dominance

import (
	"testing"

	"cfront/ir"

	"github.com/stretchr/testify/require"
)

// block is a small test helper building a detached *ir.BasicBlock with
// its successor list already set. Compute reads Predecessors, which
// would normally come from ir.BuildFunction's wirePredecessors, so
// these fixtures wire both lists by hand to stay independent of the
// builder.
func block(id int, succs ...int) *ir.BasicBlock {
	b := &ir.BasicBlock{ID: ir.BlockID(id)}
	for _, s := range succs {
		b.Successors = append(b.Successors, ir.BlockID(s))
	}
	return b
}

func wire(fn *ir.Function) {
	for _, b := range fn.Blocks {
		for _, succ := range b.Successors {
			target := fn.Block(succ)
			target.Predecessors = append(target.Predecessors, b.ID)
		}
	}
}

// diamondFunction builds entry -> {thenB, elseB} -> merge, the shape
// an `if`/`else` lowers to (§4.9, scenario S5).
func diamondFunction() *ir.Function {
	entry := block(0, 1, 2)
	thenB := block(1, 3)
	elseB := block(2, 3)
	merge := block(3)
	fn := &ir.Function{Entry: 0, Blocks: []*ir.BasicBlock{entry, thenB, elseB, merge}}
	wire(fn)
	return fn
}

// loopFunction builds entry -> header -> body -> header (back edge),
// header -> exit, the shape a `while` loop lowers to.
func loopFunction() *ir.Function {
	entry := block(0, 1)
	header := block(1, 2, 3)
	body := block(2, 1)
	exit := block(3)
	fn := &ir.Function{Entry: 0, Blocks: []*ir.BasicBlock{entry, header, body, exit}}
	wire(fn)
	return fn
}

func TestComputeDiamondStrictDominators(t *testing.T) {
	fn := diamondFunction()
	Compute(fn)

	require.Equal(t, ir.BlockID(0), fn.Block(0).StrictDominator)
	require.Equal(t, ir.BlockID(0), fn.Block(1).StrictDominator)
	require.Equal(t, ir.BlockID(0), fn.Block(2).StrictDominator)
	require.Equal(t, ir.BlockID(0), fn.Block(3).StrictDominator)
}

func TestComputeDiamondDominanceFrontier(t *testing.T) {
	fn := diamondFunction()
	Compute(fn)

	require.ElementsMatch(t, []ir.BlockID{3}, fn.Block(1).Frontier)
	require.ElementsMatch(t, []ir.BlockID{3}, fn.Block(2).Frontier)
	require.Empty(t, fn.Block(0).Frontier)
	require.Empty(t, fn.Block(3).Frontier)
}

func TestComputeDiamondDominateesIsFrontierInverse(t *testing.T) {
	fn := diamondFunction()
	Compute(fn)

	require.ElementsMatch(t, []ir.BlockID{1, 2}, fn.Block(3).Dominatees)
	require.Empty(t, fn.Block(0).Dominatees)
}

func TestComputeLoopStrictDominators(t *testing.T) {
	fn := loopFunction()
	Compute(fn)

	require.Equal(t, ir.BlockID(0), fn.Block(1).StrictDominator)
	require.Equal(t, ir.BlockID(1), fn.Block(2).StrictDominator)
	require.Equal(t, ir.BlockID(1), fn.Block(3).StrictDominator)
}

func TestComputeLoopHeaderIsInItsOwnFrontier(t *testing.T) {
	fn := loopFunction()
	Compute(fn)

	require.Contains(t, fn.Block(1).Frontier, ir.BlockID(1))
	require.Contains(t, fn.Block(2).Frontier, ir.BlockID(1))
}

func TestComputeUnreachableBlockLeftZeroValue(t *testing.T) {
	fn := diamondFunction()
	unreachable := block(4)
	fn.Blocks = append(fn.Blocks, unreachable)

	Compute(fn)

	require.Empty(t, fn.Block(4).Frontier)
	require.Empty(t, fn.Block(4).Dominatees)
	require.NotEqual(t, ir.BlockID(3), fn.Block(4).StrictDominator, "unreachable block must never be assigned a real dominator")
}
