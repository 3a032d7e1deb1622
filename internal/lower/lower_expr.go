package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// lowerExprTyped dispatches on the expression's concrete kind. Every
// expression produces a fresh value in at most a constant number of
// instructions; the returned type is the checker's resolved type for expr
// when present, else the operand's own type.
func (l *Lowerer) lowerExprTyped(expr ast.Expr) (ir.Operand, types.Type, error) {
	switch e := expr.(type) {
	case *ast.IntegerLit:
		return l.lowerIntegerLit(e)
	case *ast.FloatLit:
		return l.lowerFloatLit(e)
	case *ast.BoolLit:
		return &ir.ConstBool{Value: e.Value}, types.TypeBool, nil
	case *ast.StringLit:
		return &ir.ConstString{Value: e.Value}, types.TypeString, nil
	case *ast.NilLit:
		return l.lowerNilLit(e)
	case *ast.Ident:
		return l.lowerIdent(e)
	case *ast.StructLiteral:
		return l.lowerStructLiteral(e)
	case *ast.ArrayLiteral:
		return l.lowerArrayLiteral(e)
	case *ast.FieldExpr:
		return l.lowerFieldExpr(e)
	case *ast.IndexExpr:
		return l.lowerIndexExpr(e)
	case *ast.CallExpr:
		return l.lowerCallExpr(e)
	case *ast.CatchExpr:
		return l.lowerCatchExpr(e)
	case *ast.InfixExpr:
		return l.lowerInfixExpr(e)
	case *ast.PrefixExpr:
		return l.lowerPrefixExpr(e)
	case *ast.AssignExpr:
		return l.lowerAssignExpr(e)
	case *ast.IfExpr:
		return l.lowerIfExpr(e)
	case *ast.CastExpr:
		return l.lowerCastExpr(e)
	case *ast.SizeOfExpr:
		return l.lowerSizeOfExpr(e)
	case *ast.MoveExpr:
		return l.lowerMoveExpr(e)
	case *ast.BlockExpr:
		return l.lowerNestedBlockExpr(e)
	case *ast.UnsafeBlock:
		return l.lowerNestedBlockExpr(e.Block)
	default:
		return nil, nil, internalError("unhandled expression kind %T", expr)
	}
}

// lowerExpr discards the static type of the result, for call sites that
// only need the operand.
func (l *Lowerer) lowerExpr(expr ast.Expr) (ir.Operand, error) {
	op, _, err := l.lowerExprTyped(expr)
	return op, err
}

// constOperand lowers a const-context expression (a ConstDecl's value, or
// a switch case's value) to an operand without requiring an open block —
// literals and negated literals only.
func (l *Lowerer) constOperand(expr ast.Expr) (ir.Operand, types.Type, error) {
	switch e := expr.(type) {
	case *ast.IntegerLit:
		return l.lowerIntegerLit(e)
	case *ast.FloatLit:
		return l.lowerFloatLit(e)
	case *ast.BoolLit:
		return &ir.ConstBool{Value: e.Value}, types.TypeBool, nil
	case *ast.StringLit:
		return &ir.ConstString{Value: e.Value}, types.TypeString, nil
	case *ast.PrefixExpr:
		if e.Op == ast.OpNeg {
			inner, typ, err := l.constOperand(e.Expr)
			if err != nil {
				return nil, nil, err
			}
			switch c := inner.(type) {
			case *ir.ConstInt:
				return &ir.ConstInt{ElemType: c.ElemType, Value: -c.Value}, typ, nil
			case *ir.ConstFloat:
				return &ir.ConstFloat{ElemType: c.ElemType, Value: -c.Value}, typ, nil
			}
		}
		return nil, nil, internalError("non-constant expression in constant context")
	default:
		return nil, nil, internalError("non-constant expression in constant context")
	}
}

// lowerNestedBlockExpr lowers a block used directly as an expression (an
// `unsafe { ... }` body, or any bare block expression): its statements run
// in a fresh scope and its tail expression (if any) is the result.
func (l *Lowerer) lowerNestedBlockExpr(block *ast.BlockExpr) (ir.Operand, types.Type, error) {
	l.pushScope()
	if err := l.lowerStmtList(block.Stmts); err != nil {
		return nil, nil, err
	}
	var result ir.Operand
	var typ types.Type
	exempt := ""
	if block.Tail != nil && !l.terminated() {
		var err error
		result, typ, err = l.lowerExprTyped(block.Tail)
		if err != nil {
			return nil, nil, err
		}
		exempt = identName(block.Tail)
	}
	if !l.terminated() {
		l.destroyScope(l.scopes[len(l.scopes)-1], exempt)
	}
	l.popScopeNoDestroy()
	return result, typ, nil
}
