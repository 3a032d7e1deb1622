// Package ssa turns the Lowerer's alloca/load/store block IR into pruned
// SSA form (spec.md §4.4) and, after every other pass has run, destroys it
// back into a form the C printer can emit directly (spec.md §4.5): phi
// nodes replaced by parallel copies scheduled at predecessor block ends.
//
// The two passes are grounded on the teacher's internal/mir/ssa package's
// variable-version-stack shape, but that package's rename walk is an
// admitted stub (it only ever substitutes *mir.Assign and never rewrites
// terminator operands or recurses the dominator tree in the general case).
// Promote below is a complete rewrite of that idea against the real
// dominance structure in internal/cfg and the real operand classification
// in internal/ir.RewriteOperands.
package ssa

import (
	"sort"

	"github.com/vellum-lang/vellumc/internal/cfg"
	"github.com/vellum-lang/vellumc/internal/ir"
)

// promotable records one stack-allocation this pass will remove, and the
// blocks where it is defined (stored to) — the seed set for phi placement.
type promotable struct {
	id       ir.ValueID
	elemType ir.Type
	defs     map[ir.BlockID]bool
}

// Promote runs memory-to-register promotion over fn in place: every
// Alloca that is only ever used through Load/Store of its own address is
// removed, and its loads are replaced by the dominating in-scope value —
// a phi at any block where control-flow join requires one (spec.md §4.4).
//
// Promote must be called after fn.Seal() (every block terminated) and
// assumes g/d were built from fn's current (pre-promotion) shape. Promote
// ends by running Verify over its own output: every invariant it checks
// is one only a bug in this pass (or a caller who fed it a stale g/d)
// could violate, so catching it here rather than downstream in Destruct
// or the printer points straight at the cause (spec.md §7.2).
func Promote(fn *ir.Function, g *cfg.Graph, d *cfg.Dominance) {
	allocs := classify(fn)
	if len(allocs) == 0 {
		return
	}

	phis := placePhis(fn, g, d, allocs)
	rename(fn, g, d, allocs, phis)
	eliminateTrivialPhis(fn, g)
	Verify(fn, g)
}

// classify finds every Alloca in fn whose result value-id is used only as
// the Addr operand of a Load or a Store (spec.md §4.4 step 1: "an alloca
// escapes, and is not promotable, if its address is taken by anything
// other than a load or a store through it").
func classify(fn *ir.Function) []*promotable {
	candidates := make(map[ir.ValueID]*promotable)
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if a, ok := instr.(*ir.Alloca); ok {
				candidates[a.Dest] = &promotable{id: a.Dest, elemType: a.ElemType, defs: map[ir.BlockID]bool{}}
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	disqualified := make(map[ir.ValueID]bool)
	disqualify := func(id ir.ValueID) {
		if _, ok := candidates[id]; ok {
			disqualified[id] = true
		}
	}

	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			switch in := instr.(type) {
			case *ir.Alloca:
				// defines nothing to disqualify against itself

			case *ir.Load:
				// Addr referencing a candidate is the promotable use; any
				// other reference to a candidate id within a Load cannot
				// occur (Load has no other operand fields).

			case *ir.Store:
				if ref, ok := in.Addr.(*ir.ValueRef); ok {
					if _, isCandidate := candidates[ref.ID]; isCandidate {
						candidates[ref.ID].defs[b.ID] = true
					}
				}
				if ref, ok := in.Value.(*ir.ValueRef); ok {
					disqualify(ref.ID)
				}

			default:
				for _, id := range operandIDs(instr) {
					disqualify(id)
				}
			}
		}
		if b.Terminator != nil {
			for _, id := range terminatorOperandIDs(b.Terminator) {
				disqualify(id)
			}
		}
	}

	ids := make([]ir.ValueID, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []*promotable
	for _, id := range ids {
		if !disqualified[id] {
			result = append(result, candidates[id])
		}
	}
	return result
}

// operandIDs returns every value-id referenced by instr's operand fields,
// via RewriteOperands' classification (the single source of truth for
// what counts as an operand).
func operandIDs(instr ir.Instruction) []ir.ValueID {
	var ids []ir.ValueID
	ir.RewriteOperands(instr, func(op ir.Operand) ir.Operand {
		if ref, ok := op.(*ir.ValueRef); ok {
			ids = append(ids, ref.ID)
		}
		return op
	})
	return ids
}

func terminatorOperandIDs(term ir.Terminator) []ir.ValueID {
	var ids []ir.ValueID
	ir.RewriteTerminatorOperands(term, func(op ir.Operand) ir.Operand {
		if ref, ok := op.(*ir.ValueRef); ok {
			ids = append(ids, ref.ID)
		}
		return op
	})
	return ids
}

// placePhis computes, for each promotable allocation, the iterated
// dominance frontier of its definition-block set and places one phi per
// block in that set (spec.md §4.4 step 2, Cytron et al.'s worklist
// formulation).
func placePhis(fn *ir.Function, g *cfg.Graph, d *cfg.Dominance, allocs []*promotable) map[ir.BlockID]map[ir.ValueID]*ir.Phi {
	placed := make(map[ir.BlockID]map[ir.ValueID]*ir.Phi)

	for _, a := range allocs {
		hasPhi := make(map[ir.BlockID]bool)
		worklist := make([]ir.BlockID, 0, len(a.defs))
		for b := range a.defs {
			worklist = append(worklist, b)
		}
		sort.Slice(worklist, func(i, j int) bool { return g.RPONumber[worklist[i]] < g.RPONumber[worklist[j]] })

		for len(worklist) > 0 {
			b := worklist[0]
			worklist = worklist[1:]
			for _, f := range d.Frontier[b] {
				if hasPhi[f] {
					continue
				}
				hasPhi[f] = true
				if placed[f] == nil {
					placed[f] = make(map[ir.ValueID]*ir.Phi)
				}
				placed[f][a.id] = &ir.Phi{Dest: fn.FreshValue(), ElemType: a.elemType}
				if !a.defs[f] {
					worklist = append(worklist, f)
				}
			}
		}
	}

	for block, byAlloc := range placed {
		b := fn.BlockByID(block)
		ids := make([]ir.ValueID, 0, len(byAlloc))
		for id := range byAlloc {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			b.Phis = append(b.Phis, byAlloc[id])
		}
	}

	return placed
}

// renameState is the per-allocation stack of currently-reaching operands
// (either a reference to some earlier-defined value or a constant), plus
// a map from an eliminated load's own result id to the operand it was
// replaced by — needed because later instructions (in this block or any
// block this one dominates) reference that load's result by its own
// value-id, not by the allocation's id (spec.md §4.4 step 3). Tracking
// operands rather than bare value-ids lets a constant stored through a
// promoted allocation flow straight into a later load or phi incoming
// slot without ever needing a fresh value-id to carry it.
type renameState struct {
	stacks map[ir.ValueID][]ir.Operand
	alias  map[ir.ValueID]ir.Operand
}

func newRenameState(allocs []*promotable) *renameState {
	s := &renameState{
		stacks: make(map[ir.ValueID][]ir.Operand, len(allocs)),
		alias:  make(map[ir.ValueID]ir.Operand),
	}
	for _, a := range allocs {
		s.stacks[a.id] = nil
	}
	return s
}

// top returns the current reaching operand for alloc, or the reserved
// ir.UndefValue sentinel if control reaches this point with no prior store
// (spec.md §7.2: a read before any write is an internal-consistency
// failure, surfaced by the undef sentinel making its way into a final
// operand unresolved).
func (s *renameState) top(alloc ir.ValueID, elemType ir.Type) ir.Operand {
	stack := s.stacks[alloc]
	if len(stack) == 0 {
		return ir.NewValueRef(ir.UndefValue, elemType)
	}
	return stack[len(stack)-1]
}

// rename walks the dominator tree from the entry block, substituting every
// load of a promoted allocation's address with the current top-of-stack
// operand for that allocation, recording stores as pushes, filling in phi
// incoming-slots of successor blocks, and recursing into dominator-tree
// children before popping exactly what this block pushed (spec.md §4.4
// step 3). Unlike the teacher's stub, every instruction kind and every
// terminator is rewritten via ir.RewriteOperands/RewriteTerminatorOperands,
// not just assignments.
func rename(fn *ir.Function, g *cfg.Graph, d *cfg.Dominance, allocs []*promotable, phis map[ir.BlockID]map[ir.ValueID]*ir.Phi) {
	byID := make(map[ir.ValueID]*promotable, len(allocs))
	for _, a := range allocs {
		byID[a.id] = a
	}

	entry := fn.Entry()
	if entry == nil {
		return
	}
	state := newRenameState(allocs)
	walkRename(fn, g, d, byID, phis, state, entry.ID)
}

func walkRename(fn *ir.Function, g *cfg.Graph, d *cfg.Dominance, byID map[ir.ValueID]*promotable, phis map[ir.BlockID]map[ir.ValueID]*ir.Phi, state *renameState, blockID ir.BlockID) {
	b := fn.BlockByID(blockID)
	pushCounts := make(map[ir.ValueID]int)

	if byAlloc := phis[blockID]; byAlloc != nil {
		ids := sortedAllocIDs(byAlloc)
		for _, allocID := range ids {
			phi := byAlloc[allocID]
			state.stacks[allocID] = append(state.stacks[allocID], ir.NewValueRef(phi.Dest, phi.ElemType))
			pushCounts[allocID]++
		}
	}

	subst := func(op ir.Operand) ir.Operand {
		ref, ok := op.(*ir.ValueRef)
		if !ok {
			return op
		}
		if v, ok := state.alias[ref.ID]; ok {
			return v
		}
		return op
	}

	newInstrs := make([]ir.Instruction, 0, len(b.Instrs))
	for _, instr := range b.Instrs {
		switch in := instr.(type) {
		case *ir.Alloca:
			if _, promoted := byID[in.Dest]; promoted {
				continue
			}
			newInstrs = append(newInstrs, in)

		case *ir.Load:
			if ref, ok := in.Addr.(*ir.ValueRef); ok {
				if a, promoted := byID[ref.ID]; promoted {
					state.alias[in.Dest] = state.top(ref.ID, a.elemType)
					continue
				}
			}
			newInstrs = append(newInstrs, ir.RewriteOperands(instr, subst))

		case *ir.Store:
			if ref, ok := in.Addr.(*ir.ValueRef); ok {
				if _, promoted := byID[ref.ID]; promoted {
					state.stacks[ref.ID] = append(state.stacks[ref.ID], subst(in.Value))
					pushCounts[ref.ID]++
					continue
				}
			}
			newInstrs = append(newInstrs, ir.RewriteOperands(instr, subst))

		default:
			newInstrs = append(newInstrs, ir.RewriteOperands(instr, subst))
		}
	}
	b.Instrs = newInstrs

	if b.Terminator != nil {
		b.Terminator = ir.RewriteTerminatorOperands(b.Terminator, subst)
	}

	for _, succ := range g.Succs[blockID] {
		byAlloc := phis[succ]
		if byAlloc == nil {
			continue
		}
		for allocID, phi := range byAlloc {
			phi.SetIncomingFrom(blockID, state.top(allocID, byID[allocID].elemType))
		}
	}

	for _, child := range d.Children[blockID] {
		walkRename(fn, g, d, byID, phis, state, child)
	}

	for allocID, n := range pushCounts {
		stack := state.stacks[allocID]
		state.stacks[allocID] = stack[:len(stack)-n]
	}
}

func sortedAllocIDs(byAlloc map[ir.ValueID]*ir.Phi) []ir.ValueID {
	ids := make([]ir.ValueID, 0, len(byAlloc))
	for id := range byAlloc {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
