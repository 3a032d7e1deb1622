package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// lowerIfExpr lowers an if/else-if/else chain used as a value (spec.md
// §4.2.1, §4.2.5): each arm gets its own block, an else-less chain is
// rejected (the checker guarantees every value-producing if has one), and
// the merge block carries a phi over however many arms actually reach it.
// While an arm's body is being lowered, l.ifExprArmDepth is held nonzero so
// any `return` statement reached within it — at any nesting depth, not
// just directly — is rejected rather than silently treated as a diverging
// arm (spec.md §9's Open Question): an if-expression arm may diverge via
// `throw`/`catch`-propagation, which are not escapes from a lexical
// statement the checker should have already rejected, but not via `return`.
func (l *Lowerer) lowerIfExpr(e *ast.IfExpr) (ir.Operand, types.Type, error) {
	if e.Else == nil {
		return nil, nil, internalError("if-expression used as a value has no else arm")
	}
	mergeBlock := l.newBlock()
	resultType := l.typeOf(e)

	type incoming struct {
		from  ir.BlockID
		value ir.Operand
	}
	var incomings []incoming

	for _, clause := range e.Clauses {
		cond, _, err := l.lowerExprTyped(clause.Condition)
		if err != nil {
			return nil, nil, err
		}
		thenBlock := l.newBlock()
		elseBlock := l.newBlock()
		l.emitTerm(&ir.BranchTerm{Condition: cond, TrueTarget: thenBlock.ID, FalseTarget: elseBlock.ID})

		l.startBlock(thenBlock)
		l.ifExprArmDepth++
		val, _, err := l.lowerNestedBlockExpr(clause.Body)
		l.ifExprArmDepth--
		if err != nil {
			return nil, nil, err
		}
		if !l.terminated() {
			incomings = append(incomings, incoming{from: l.currentBlock.ID, value: val})
			l.emitTerm(&ir.JumpTerm{Target: mergeBlock.ID})
		}

		l.startBlock(elseBlock)
	}

	l.ifExprArmDepth++
	val, _, err := l.lowerNestedBlockExpr(e.Else)
	l.ifExprArmDepth--
	if err != nil {
		return nil, nil, err
	}
	if !l.terminated() {
		incomings = append(incomings, incoming{from: l.currentBlock.ID, value: val})
		l.emitTerm(&ir.JumpTerm{Target: mergeBlock.ID})
	}

	l.startBlock(mergeBlock)
	if len(incomings) == 0 {
		// Every arm diverges (returns/throws); the merge block is
		// unreachable and gets sealed as such at function-seal time.
		return nil, resultType, nil
	}
	if len(incomings) == 1 {
		return incomings[0].value, resultType, nil
	}
	phiDest := l.fresh()
	phi := &ir.Phi{Dest: phiDest, ElemType: resultType}
	for _, in := range incomings {
		phi.SetIncomingFrom(in.from, in.value)
	}
	mergeBlock.Phis = append(mergeBlock.Phis, phi)
	return ir.NewValueRef(phiDest, resultType), resultType, nil
}
