package ssa

import (
	"fmt"

	"github.com/vellum-lang/vellumc/internal/cfg"
	"github.com/vellum-lang/vellumc/internal/diag"
	"github.com/vellum-lang/vellumc/internal/ir"
)

// Verify checks fn against the internal-consistency invariants spec.md
// §7.2 names for the promotion/destruction pipeline, panicking with a
// diag.InternalError at the first violation found. It is meant to run
// immediately after Promote (while phis are still in place, before
// Destruct removes them): a violation here is always a bug in Promote or
// one of its helpers, never a property of the source program, which is
// exactly the class of failure spec.md §7.1 says should fail fatally
// rather than propagate as an ordinary error.
func Verify(fn *ir.Function, g *cfg.Graph) {
	verifyTerminated(fn)
	verifyPhiPredecessors(fn, g)
	verifyNoUndef(fn)
}

func verifyTerminated(fn *ir.Function) {
	for _, b := range fn.Blocks {
		if b.Terminator == nil {
			panic(diag.NewInternalError(diag.CodeMirNonTerminatedBlock,
				fmt.Sprintf("block %s has no terminator after promotion", b.ID)))
		}
	}
}

// verifyPhiPredecessors checks that every phi's incoming set is exactly
// the block's actual predecessor set — no predecessor missing an
// incoming value, and no incoming value naming a block that isn't
// actually a predecessor (spec.md §4.4 step 3.3: a phi must have exactly
// one incoming value per predecessor edge).
func verifyPhiPredecessors(fn *ir.Function, g *cfg.Graph) {
	for _, b := range fn.Blocks {
		if len(b.Phis) == 0 {
			continue
		}
		preds := make(map[ir.BlockID]bool, len(g.Preds[b.ID]))
		for _, p := range g.Preds[b.ID] {
			preds[p] = true
		}
		for _, phi := range b.Phis {
			seen := make(map[ir.BlockID]bool, len(phi.Incoming))
			for _, in := range phi.Incoming {
				if !preds[in.From] {
					panic(diag.NewInternalError(diag.CodeMirPhiPredecessorMismatch,
						fmt.Sprintf("phi %s in %s has an incoming edge from %s, which is not a predecessor", phi.Dest, b.ID, in.From)))
				}
				seen[in.From] = true
			}
			if len(seen) != len(preds) {
				panic(diag.NewInternalError(diag.CodeMirPhiPredecessorMismatch,
					fmt.Sprintf("phi %s in %s has %d incoming edges, block has %d predecessors", phi.Dest, b.ID, len(seen), len(preds))))
			}
		}
	}
}

// verifyNoUndef walks every operand fn produces — instruction operands,
// terminator operands, and phi incoming values — looking for the reserved
// ir.UndefValue sentinel (spec.md §7.2: its survival past promotion is
// always a bug, either the source program's fault or an internal-
// consistency failure in rename).
func verifyNoUndef(fn *ir.Function) {
	check := func(op ir.Operand) ir.Operand {
		if ref, ok := op.(*ir.ValueRef); ok && ref.ID == ir.UndefValue {
			panic(diag.NewInternalError(diag.CodeMirUndefSurvived,
				fmt.Sprintf("undef value of type %s survived into a final operand", ref.ElemType)))
		}
		return op
	}
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			ir.RewriteOperands(instr, check)
		}
		if b.Terminator != nil {
			ir.RewriteTerminatorOperands(b.Terminator, check)
		}
		for _, phi := range b.Phis {
			for _, in := range phi.Incoming {
				check(in.Value)
			}
		}
	}
}
