package ssa

import (
	"sort"

	"github.com/vellum-lang/vellumc/internal/cfg"
	"github.com/vellum-lang/vellumc/internal/ir"
)

// Destruct converts fn out of SSA form (spec.md §4.5): every phi is removed
// and replaced by one ir.Copy per incoming edge, placed at the end of the
// corresponding predecessor block (or, when that edge is critical, at the
// end of a freshly split intermediate block). The copies within one
// predecessor are semantically simultaneous — phi destinations can appear
// as other phis' incoming values — so they are sequenced to preserve that
// semantics, breaking any dependency cycle with exactly one temporary
// (the classic parallel-copy sequentialization result; no teacher
// equivalent exists, since the teacher's MIR has no SSA form to destroy).
//
// Destruct must run after Promote and after every other pass needing SSA
// form; g must reflect fn's current (pre-destruction) shape.
func Destruct(fn *ir.Function, g *cfg.Graph) {
	type edge struct{ from, to ir.BlockID }

	criticalEdges := make(map[edge]bool)
	for _, b := range fn.Blocks {
		if len(b.Phis) == 0 {
			continue
		}
		for _, pred := range g.Preds[b.ID] {
			if len(g.Succs[pred]) > 1 && len(g.Preds[b.ID]) > 1 {
				criticalEdges[edge{pred, b.ID}] = true
			}
		}
	}

	splitAt := make(map[edge]ir.BlockID, len(criticalEdges))
	for e := range criticalEdges {
		mid := splitEdge(fn, e.from, e.to)
		splitAt[edge{e.from, e.to}] = mid.ID
	}

	for _, b := range fn.Blocks {
		if len(b.Phis) == 0 {
			continue
		}
		preds := append([]ir.BlockID(nil), g.Preds[b.ID]...)
		for _, pred := range preds {
			var copies []copyPair
			for _, phi := range b.Phis {
				v, ok := phi.IncomingFrom(pred)
				if !ok {
					continue
				}
				copies = append(copies, copyPair{dest: phi.Dest, elemType: phi.ElemType, src: v})
			}
			if len(copies) == 0 {
				continue
			}

			targetID := pred
			if mid, ok := splitAt[edge{pred, b.ID}]; ok {
				targetID = mid
			}
			target := fn.BlockByID(targetID)
			target.Instrs = append(target.Instrs, sequentialize(fn, copies)...)
		}
		b.Phis = nil
	}
}

// splitEdge inserts a new block between from and to: from's terminator is
// rewritten to target the new block in place of to, and the new block
// unconditionally jumps on to to.
func splitEdge(fn *ir.Function, from, to ir.BlockID) *ir.Block {
	mid := fn.FreshBlock()
	mid.Terminator = &ir.JumpTerm{Target: to}

	fromBlock := fn.BlockByID(from)
	fromBlock.Terminator = retarget(fromBlock.Terminator, to, mid.ID)
	return mid
}

func retarget(term ir.Terminator, from, to ir.BlockID) ir.Terminator {
	switch t := term.(type) {
	case *ir.JumpTerm:
		if t.Target == from {
			return &ir.JumpTerm{Target: to}
		}
		return t

	case *ir.BranchTerm:
		tt, ft := t.TrueTarget, t.FalseTarget
		if tt == from {
			tt = to
		}
		if ft == from {
			ft = to
		}
		return &ir.BranchTerm{Condition: t.Condition, TrueTarget: tt, FalseTarget: ft}

	case *ir.SwitchTerm:
		cases := make([]ir.SwitchCaseTarget, len(t.Cases))
		for i, c := range t.Cases {
			target := c.Target
			if target == from {
				target = to
			}
			cases[i] = ir.SwitchCaseTarget{Value: c.Value, Target: target}
		}
		def := t.Default
		if def == from {
			def = to
		}
		return &ir.SwitchTerm{Subject: t.Subject, Cases: cases, Default: def}

	default:
		return term
	}
}

// copyPair is one phi-incoming pair awaiting sequentialization into a Copy.
type copyPair struct {
	dest     ir.ValueID
	elemType ir.Type
	src      ir.Operand
}

// sequentialize orders a set of semantically-simultaneous copies into a
// sequence of ir.Copy instructions, breaking any cycle among them with
// exactly one temporary (spec.md §4.5). A copy is safe to emit as soon as
// its destination is not needed as another pending copy's source; a
// dependency cycle is broken by first saving the about-to-be-overwritten
// value into a fresh temporary and redirecting every pending reader of it
// to read the temporary instead, which frees exactly one copy to proceed.
func sequentialize(fn *ir.Function, copies []copyPair) []ir.Instruction {
	pending := make(map[ir.ValueID]*copyPair, len(copies))
	order := make([]ir.ValueID, 0, len(copies))
	for i := range copies {
		c := &copies[i]
		if ref, ok := c.src.(*ir.ValueRef); ok && ref.ID == c.dest {
			continue // self-copy, a no-op
		}
		pending[c.dest] = c
		order = append(order, c.dest)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	readers := func(id ir.ValueID) int {
		n := 0
		for _, c := range pending {
			if ref, ok := c.src.(*ir.ValueRef); ok && ref.ID == id {
				n++
			}
		}
		return n
	}

	var out []ir.Instruction
	for len(pending) > 0 {
		progressed := false
		for _, d := range order {
			c, ok := pending[d]
			if !ok {
				continue
			}
			if readers(d) == 0 {
				out = append(out, &ir.Copy{Dest: c.dest, Src: c.src})
				delete(pending, d)
				progressed = true
			}
		}
		if progressed {
			continue
		}

		// A cycle remains: every pending copy's destination is read by
		// some other pending copy. Pick the lowest-id one, save its
		// current value into a fresh temporary, and redirect every
		// reader of it to the temporary — this frees it to proceed.
		var d0 ir.ValueID
		found := false
		for _, d := range order {
			if _, ok := pending[d]; ok {
				d0 = d
				found = true
				break
			}
		}
		if !found {
			break
		}
		c0 := pending[d0]
		temp := fn.FreshValue()
		out = append(out, &ir.Copy{Dest: temp, Src: ir.NewValueRef(d0, c0.elemType)})
		for _, c := range pending {
			if ref, ok := c.src.(*ir.ValueRef); ok && ref.ID == d0 {
				c.src = ir.NewValueRef(temp, c0.elemType)
			}
		}
	}
	return out
}
