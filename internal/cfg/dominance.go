package cfg

import "github.com/vellum-lang/vellumc/internal/ir"

// Dominance holds the immediate-dominator map, the dominance-frontier map,
// and the dominator-tree children map for one function's CFG.
type Dominance struct {
	Graph *Graph

	// IDom maps a reachable non-entry block to its immediate dominator.
	// The entry block maps to itself, matching the Cooper-Harvey-Kennedy
	// initialization convention (spec.md §4.3: "initialize entry to
	// itself"). Unreachable blocks have no entry in this map.
	IDom map[ir.BlockID]ir.BlockID

	// Frontier maps a block to its dominance frontier (spec.md §4.3,
	// Cytron et al.).
	Frontier map[ir.BlockID][]ir.BlockID

	// Children maps a block to its immediate children in the dominator
	// tree.
	Children map[ir.BlockID][]ir.BlockID
}

// Compute runs the full dominance analysis over g: immediate dominators
// by the iterative Cooper-Harvey-Kennedy algorithm driven by g's
// reverse-postorder numbering, then dominance frontiers, then
// dominator-tree children.
func Compute(g *Graph) *Dominance {
	d := &Dominance{Graph: g}
	d.computeIDoms()
	d.computeFrontiers()
	d.computeChildren()
	return d
}

// computeIDoms implements spec.md §4.3's immediate-dominator algorithm:
// initialize entry to itself and all others to undefined; iterate RPO,
// intersecting immediate dominators of already-processed predecessors
// until a fixed point is reached. Intersection walks both chains upward
// by RPO index, using the higher-index pointer as the "finger".
func (d *Dominance) computeIDoms() {
	g := d.Graph
	d.IDom = make(map[ir.BlockID]ir.BlockID)
	if len(g.RPO) == 0 {
		return
	}

	entry := g.RPO[0]
	d.IDom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range g.RPO[1:] {
			var newIDom ir.BlockID
			haveNewIDom := false

			for _, pred := range g.Preds[b] {
				if _, ok := d.IDom[pred]; !ok {
					continue
				}
				if !haveNewIDom {
					newIDom = pred
					haveNewIDom = true
					continue
				}
				newIDom = d.intersect(pred, newIDom)
			}

			if !haveNewIDom {
				continue
			}
			if cur, ok := d.IDom[b]; !ok || cur != newIDom {
				d.IDom[b] = newIDom
				changed = true
			}
		}
	}
}

// intersect walks both chains upward toward the entry by RPO index,
// advancing whichever finger currently sits at the higher (i.e. later in
// reverse postorder, farther from the entry) RPO index, until the two
// fingers meet.
func (d *Dominance) intersect(a, b ir.BlockID) ir.BlockID {
	g := d.Graph
	for a != b {
		for g.RPONumber[a] > g.RPONumber[b] {
			a = d.IDom[a]
		}
		for g.RPONumber[b] > g.RPONumber[a] {
			b = d.IDom[b]
		}
	}
	return a
}

// computeFrontiers implements the Cytron et al. dominance-frontier
// algorithm (spec.md §4.3): for each block with >= 2 predecessors, for
// each predecessor walk up the dominator tree until reaching the block's
// immediate dominator, adding the block to each visited node's frontier.
func (d *Dominance) computeFrontiers() {
	g := d.Graph
	d.Frontier = make(map[ir.BlockID][]ir.BlockID, len(g.RPO))
	for _, b := range g.RPO {
		d.Frontier[b] = nil
	}

	seen := make(map[ir.BlockID]map[ir.BlockID]bool)
	addToFrontier := func(node, block ir.BlockID) {
		if seen[node] == nil {
			seen[node] = make(map[ir.BlockID]bool)
		}
		if seen[node][block] {
			return
		}
		seen[node][block] = true
		d.Frontier[node] = append(d.Frontier[node], block)
	}

	for _, b := range g.RPO {
		if len(g.Preds[b]) < 2 {
			continue
		}
		idomB, ok := d.IDom[b]
		if !ok {
			continue
		}
		for _, pred := range g.Preds[b] {
			if !g.Reachable(pred) {
				continue
			}
			runner := pred
			for runner != idomB {
				addToFrontier(runner, b)
				next, ok := d.IDom[runner]
				if !ok || next == runner {
					break
				}
				runner = next
			}
		}
	}
}

// computeChildren builds the dominator tree's children map: for each
// reachable block != entry, add it as a child of its immediate dominator.
func (d *Dominance) computeChildren() {
	g := d.Graph
	d.Children = make(map[ir.BlockID][]ir.BlockID, len(g.RPO))
	for _, b := range g.RPO {
		d.Children[b] = nil
	}
	if len(g.RPO) == 0 {
		return
	}
	entry := g.RPO[0]
	for _, b := range g.RPO {
		if b == entry {
			continue
		}
		idom := d.IDom[b]
		d.Children[idom] = append(d.Children[idom], b)
	}
}

// Dominates reports whether a dominates b (inclusive: a dominates a).
func (d *Dominance) Dominates(a, b ir.BlockID) bool {
	if !d.Graph.Reachable(a) || !d.Graph.Reachable(b) {
		return false
	}
	for cur := b; ; {
		if cur == a {
			return true
		}
		next, ok := d.IDom[cur]
		if !ok || next == cur {
			return cur == a
		}
		cur = next
	}
}
