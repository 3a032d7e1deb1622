// Package cfg builds the control-flow graph of a function and computes its
// dominance structure (spec.md §4.3): reverse-postorder block numbering,
// predecessor/successor lists, immediate dominators by the
// Cooper-Harvey-Kennedy iterative algorithm, dominance frontiers by the
// Cytron et al. algorithm, and dominator-tree children.
package cfg

import "github.com/vellum-lang/vellumc/internal/ir"

// Graph holds the successor/predecessor relation of a function's blocks
// and their reverse-postorder numbering from the entry block. A block not
// reachable from entry is simply absent from RPO and RPONumber (spec.md
// §4.3 failure semantics: "an unreachable block ... has no dominator and
// is simply skipped by later passes").
type Graph struct {
	Func *ir.Function

	// RPO lists every block reachable from entry, in reverse postorder.
	RPO []ir.BlockID
	// RPONumber maps a reachable block to its index in RPO (entry is 0).
	RPONumber map[ir.BlockID]int

	Preds map[ir.BlockID][]ir.BlockID
	Succs map[ir.BlockID][]ir.BlockID
}

// Build constructs the CFG for fn. fn must have at least one block.
func Build(fn *ir.Function) *Graph {
	g := &Graph{
		Func:  fn,
		Preds: make(map[ir.BlockID][]ir.BlockID),
		Succs: make(map[ir.BlockID][]ir.BlockID),
	}

	for _, b := range fn.Blocks {
		g.Preds[b.ID] = nil
		g.Succs[b.ID] = nil
	}
	for _, b := range fn.Blocks {
		if b.Terminator == nil {
			continue
		}
		for _, succ := range b.Terminator.Successors() {
			g.Succs[b.ID] = append(g.Succs[b.ID], succ)
			g.Preds[succ] = append(g.Preds[succ], b.ID)
		}
	}

	entry := fn.Entry()
	if entry == nil {
		g.RPONumber = make(map[ir.BlockID]int)
		return g
	}

	postorder := g.postorderFrom(entry.ID)
	g.RPO = make([]ir.BlockID, len(postorder))
	for i, id := range postorder {
		g.RPO[len(postorder)-1-i] = id
	}
	g.RPONumber = make(map[ir.BlockID]int, len(g.RPO))
	for i, id := range g.RPO {
		g.RPONumber[id] = i
	}
	return g
}

// postorderFrom returns the blocks reachable from start in postorder,
// via an explicit-stack DFS (no recursion depth concerns for large CFGs).
func (g *Graph) postorderFrom(start ir.BlockID) []ir.BlockID {
	type frame struct {
		id      ir.BlockID
		nextIdx int
	}

	visited := map[ir.BlockID]bool{start: true}
	order := make([]ir.BlockID, 0)
	stack := []frame{{id: start}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := g.Succs[top.id]
		if top.nextIdx < len(succs) {
			next := succs[top.nextIdx]
			top.nextIdx++
			if !visited[next] {
				visited[next] = true
				stack = append(stack, frame{id: next})
			}
			continue
		}
		order = append(order, top.id)
		stack = stack[:len(stack)-1]
	}
	return order
}

// Reachable reports whether a block is reachable from the entry block.
func (g *Graph) Reachable(id ir.BlockID) bool {
	_, ok := g.RPONumber[id]
	return ok
}
