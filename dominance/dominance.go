// Package dominance computes strict dominators and dominance frontiers
// over an already-built ir.Function's control-flow graph (§4.9), the
// last step of the front end's per-function pipeline before a caller
// would hand the result to an SSA-construction pass.
//
// Grounded on spec §4.9's stated algorithm rather than any example
// repo: no pack repo builds a CFG of its own, so this package has no
// teacher file to adapt and instead implements the classic Cooper/
// Harvey/Kennedy iterative post-order data-flow formulation the spec
// names directly ("initialize sdom(entry) = entry; repeatedly
// intersect the sdom sets of a block's predecessors until fixed
// point").
package dominance

import (
	"cfront/ast"
	"cfront/ir"
)

// BuildFunction lowers fn (§4.9 steps 1-3, package ir) and immediately
// computes its dominator tree and frontiers (§4.9's final step), so
// every ir.Function this front end hands to a caller already has
// StrictDominator/Frontier/Dominatees fully populated. ir.BuildFunction
// cannot call Compute itself: package ir is dominance's dependency, not
// the reverse, so this wrapper is the pipeline's single entry point in
// place of calling ir.BuildFunction directly.
func BuildFunction(fn *ast.FunctionDeclaration) *ir.Function {
	built := ir.BuildFunction(fn)
	Compute(built)
	return built
}

// Compute fills in StrictDominator, Frontier and Dominatees on every
// block of fn reachable from its entry block. Blocks unreachable from
// entry (dead code reachable only through a goto the builder never
// wired, or simply none) are left with their zero-value fields.
func Compute(fn *ir.Function) {
	order := postorder(fn)
	if len(order) == 0 {
		return
	}

	// rpo is fn's blocks in reverse postorder; rpoIndex is its inverse,
	// so entry (first in reverse postorder) gets index 0 and the
	// "finger" comparisons in intersect walk toward smaller indices.
	rpo := make([]ir.BlockID, len(order))
	for i, id := range order {
		rpo[len(order)-1-i] = id
	}
	rpoIndex := make(map[ir.BlockID]int, len(rpo))
	for i, id := range rpo {
		rpoIndex[id] = i
	}

	idom := make(map[ir.BlockID]ir.BlockID, len(rpo))
	entry := fn.Entry
	idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == entry {
				continue
			}
			block := fn.Block(b)
			var newIdom ir.BlockID
			haveFirst := false
			for _, p := range block.Predecessors {
				if _, ok := idom[p]; !ok {
					continue
				}
				if !haveFirst {
					newIdom = p
					haveFirst = true
					continue
				}
				newIdom = intersect(newIdom, p, idom, rpoIndex)
			}
			if !haveFirst {
				continue
			}
			if cur, ok := idom[b]; !ok || cur != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	for b, d := range idom {
		block := fn.Block(b)
		if block == nil {
			continue
		}
		block.StrictDominator = d
	}

	computeFrontiers(fn, idom)
}

// intersect walks the two candidate dominators up the (partially
// built) dominator tree, using reverse-postorder index as the
// "finger" comparison, until they meet (§4.9's "intersect the sdom
// sets ... until fixed point").
func intersect(a, b ir.BlockID, idom map[ir.BlockID]ir.BlockID, rpoIndex map[ir.BlockID]int) ir.BlockID {
	for a != b {
		for rpoIndex[a] > rpoIndex[b] {
			a = idom[a]
		}
		for rpoIndex[b] > rpoIndex[a] {
			b = idom[b]
		}
	}
	return a
}

// computeFrontiers implements §4.9/§9's definition directly: Y is in
// DF(B) iff B dominates some predecessor of Y but does not strictly
// dominate Y itself. Dominatees is the inverse of that relation
// (spec §4.9 "Dominatees are the inverse relation").
func computeFrontiers(fn *ir.Function, idom map[ir.BlockID]ir.BlockID) {
	for _, block := range fn.Blocks {
		if len(block.Predecessors) < 2 {
			continue
		}
		for _, p := range block.Predecessors {
			if _, ok := idom[p]; !ok {
				continue
			}
			runner := p
			for runner != idom[block.ID] {
				addFrontier(fn.Block(runner), block.ID)
				addDominatee(fn.Block(block.ID), runner)
				if runner == idom[runner] {
					break
				}
				runner = idom[runner]
			}
		}
	}
}

func addFrontier(block *ir.BasicBlock, y ir.BlockID) {
	for _, existing := range block.Frontier {
		if existing == y {
			return
		}
	}
	block.Frontier = append(block.Frontier, y)
}

// addDominatee records onto the block at the frontier (y) that runner
// is one of the blocks whose frontier it appears in, i.e. Dominatees
// lives on the member of the frontier set, not on the dominating block.
func addDominatee(yBlock *ir.BasicBlock, runner ir.BlockID) {
	for _, existing := range yBlock.Dominatees {
		if existing == runner {
			return
		}
	}
	yBlock.Dominatees = append(yBlock.Dominatees, runner)
}

// postorder walks fn's CFG depth-first from its entry block and
// returns blocks in postorder (a block is appended only after all of
// its successors have been visited).
func postorder(fn *ir.Function) []ir.BlockID {
	visited := make(map[ir.BlockID]bool, len(fn.Blocks))
	var order []ir.BlockID

	var visit func(id ir.BlockID)
	visit = func(id ir.BlockID) {
		if visited[id] {
			return
		}
		visited[id] = true
		block := fn.Block(id)
		if block == nil {
			return
		}
		for _, succ := range block.Successors {
			visit(succ)
		}
		order = append(order, id)
	}
	visit(fn.Entry)
	return order
}
