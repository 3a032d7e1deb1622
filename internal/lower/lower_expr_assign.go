package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// lowerAssignExpr computes the target's address — an identifier whose slot
// is known, a field chain, or an index chain — then stores (spec.md
// §4.2.1). An index-set on a struct with a resolved operator-overload
// method dispatches to a three-argument call (self, index, value) instead.
func (l *Lowerer) lowerAssignExpr(e *ast.AssignExpr) (ir.Operand, types.Type, error) {
	if idx, ok := e.Target.(*ast.IndexExpr); ok {
		if res, ok := l.Operators[e]; ok {
			return l.lowerOperatorCall(res, []ast.Expr{idx.Target, idx.Index, e.Value}, e)
		}
	}

	addr, elemType, err := l.lowerAddressable(e.Target)
	if err != nil {
		return nil, nil, err
	}
	val, _, err := l.lowerExprTyped(e.Value)
	if err != nil {
		return nil, nil, err
	}
	l.emit(&ir.Store{Addr: addr, Value: val})
	return val, elemType, nil
}
