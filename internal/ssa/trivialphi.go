package ssa

import (
	"github.com/vellum-lang/vellumc/internal/cfg"
	"github.com/vellum-lang/vellumc/internal/ir"
)

// eliminateTrivialPhis removes every phi whose incoming operands, ignoring
// any incoming that is a self-reference to the phi's own result, all agree
// on one operand (or there are none at all) — replacing every use of the
// phi's result with that common operand, then deleting the phi (spec.md
// §4.4 step 4). This runs to a fixed point: eliminating one trivial phi can
// make another phi trivial, mirroring the mark/filter/rebuild shape the
// teacher uses for dead-code elimination (internal/mir/optimize/dce.go),
// adapted here to substitute-then-delete instead of reachability-then-keep.
func eliminateTrivialPhis(fn *ir.Function, g *cfg.Graph) {
	for {
		trivial := findTrivialPhis(fn)
		if len(trivial) == 0 {
			return
		}
		for blockID, byDest := range trivial {
			b := fn.BlockByID(blockID)
			for dest, replacement := range byDest {
				substituteValue(fn, dest, replacement)
			}
			b.Phis = filterPhis(b.Phis, byDest)
		}
	}
}

// findTrivialPhis scans every block's phis once and returns, per block, the
// map of trivial phi dest -> its replacement operand.
func findTrivialPhis(fn *ir.Function) map[ir.BlockID]map[ir.ValueID]ir.Operand {
	result := make(map[ir.BlockID]map[ir.ValueID]ir.Operand)
	for _, b := range fn.Blocks {
		for _, phi := range b.Phis {
			repl, ok := trivialReplacement(phi)
			if !ok {
				continue
			}
			if result[b.ID] == nil {
				result[b.ID] = make(map[ir.ValueID]ir.Operand)
			}
			result[b.ID][phi.Dest] = repl
		}
	}
	return result
}

// trivialReplacement reports whether phi's incomings, discounting any
// self-reference, collapse to one common operand, and if so returns it. A
// phi with zero non-self incomings (only possible if every predecessor
// looped back through itself, i.e. an unreachable merge) has no well-defined
// replacement and is left alone rather than guessed at.
func trivialReplacement(phi *ir.Phi) (ir.Operand, bool) {
	var common ir.Operand
	seen := false
	for _, in := range phi.Incoming {
		if ref, ok := in.Value.(*ir.ValueRef); ok && ref.ID == phi.Dest {
			continue
		}
		if !seen {
			common = in.Value
			seen = true
			continue
		}
		if !operandsEqual(common, in.Value) {
			return nil, false
		}
	}
	if !seen {
		return nil, false
	}
	return common, true
}

func operandsEqual(a, b ir.Operand) bool {
	ar, aok := a.(*ir.ValueRef)
	br, bok := b.(*ir.ValueRef)
	if aok && bok {
		return ar.ID == br.ID
	}
	if aok != bok {
		return false
	}
	return constOperandsEqual(a, b)
}

func constOperandsEqual(a, b ir.Operand) bool {
	switch av := a.(type) {
	case *ir.ConstInt:
		bv, ok := b.(*ir.ConstInt)
		return ok && av.Value == bv.Value && av.ElemType == bv.ElemType
	case *ir.ConstFloat:
		bv, ok := b.(*ir.ConstFloat)
		return ok && av.Value == bv.Value && av.ElemType == bv.ElemType
	case *ir.ConstBool:
		bv, ok := b.(*ir.ConstBool)
		return ok && av.Value == bv.Value
	case *ir.ConstString:
		bv, ok := b.(*ir.ConstString)
		return ok && av.Value == bv.Value
	case *ir.ConstNullPtr:
		_, ok := b.(*ir.ConstNullPtr)
		return ok
	default:
		return false
	}
}

// substituteValue replaces every use of dest across fn's instructions,
// terminators, and remaining phi incomings with replacement.
func substituteValue(fn *ir.Function, dest ir.ValueID, replacement ir.Operand) {
	subst := func(op ir.Operand) ir.Operand {
		if ref, ok := op.(*ir.ValueRef); ok && ref.ID == dest {
			return replacement
		}
		return op
	}

	for _, b := range fn.Blocks {
		for _, phi := range b.Phis {
			for i, in := range phi.Incoming {
				phi.Incoming[i].Value = subst(in.Value)
			}
		}
		for i, instr := range b.Instrs {
			b.Instrs[i] = ir.RewriteOperands(instr, subst)
		}
		if b.Terminator != nil {
			b.Terminator = ir.RewriteTerminatorOperands(b.Terminator, subst)
		}
	}
}

// filterPhis returns phis with every phi named in removed dropped, in its
// original order.
func filterPhis(phis []*ir.Phi, removed map[ir.ValueID]ir.Operand) []*ir.Phi {
	out := make([]*ir.Phi, 0, len(phis))
	for _, p := range phis {
		if _, gone := removed[p.Dest]; gone {
			continue
		}
		out = append(out, p)
	}
	return out
}
