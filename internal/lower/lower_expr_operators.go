package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

var binOpKinds = map[ast.Op]ir.BinOpKind{
	ast.OpAdd:    ir.Add,
	ast.OpSub:    ir.Sub,
	ast.OpMul:    ir.Mul,
	ast.OpDiv:    ir.Div,
	ast.OpMod:    ir.Mod,
	ast.OpEq:     ir.Eq,
	ast.OpNeq:    ir.Neq,
	ast.OpLt:     ir.Lt,
	ast.OpGt:     ir.Gt,
	ast.OpLte:    ir.Lte,
	ast.OpGte:    ir.Gte,
	ast.OpBitAnd: ir.BitAnd,
	ast.OpBitOr:  ir.BitOr,
	ast.OpBitXor: ir.BitXor,
	ast.OpShl:    ir.Shl,
	ast.OpShr:    ir.Shr,
}

// lowerInfixExpr lowers a binary expression (spec.md §4.2.1): `&&`/`||`
// short-circuit via a diamond of blocks merged by a boolean phi; an
// operator resolved by the checker to a user-defined method dispatches to
// a call instead of a primitive binop; everything else is a direct BinOp.
func (l *Lowerer) lowerInfixExpr(e *ast.InfixExpr) (ir.Operand, types.Type, error) {
	if e.Op == ast.OpAnd || e.Op == ast.OpOr {
		return l.lowerShortCircuit(e)
	}
	if res, ok := l.Operators[e]; ok {
		return l.lowerOperatorCall(res, []ast.Expr{e.Left, e.Right}, e)
	}

	left, leftType, err := l.lowerExprTyped(e.Left)
	if err != nil {
		return nil, nil, err
	}
	right, _, err := l.lowerExprTyped(e.Right)
	if err != nil {
		return nil, nil, err
	}
	kind, ok := binOpKinds[e.Op]
	if !ok {
		return nil, nil, internalError("unsupported binary operator %q", e.Op)
	}
	resultType := l.typeOf(e)
	if resultType == nil {
		resultType = leftType
		if isComparison(kind) {
			resultType = types.TypeBool
		}
	}
	dest := l.fresh()
	instr := &ir.BinOp{Dest: dest, Op: kind, Left: left, Right: right, ResultType: resultType}
	if isComparison(kind) && resultType != leftType {
		instr.OperandType = leftType
	}
	l.emit(instr)
	return ir.NewValueRef(dest, resultType), resultType, nil
}

func isComparison(k ir.BinOpKind) bool {
	switch k {
	case ir.Eq, ir.Neq, ir.Lt, ir.Gt, ir.Lte, ir.Gte:
		return true
	default:
		return false
	}
}

// lowerShortCircuit lowers `&&`/`||` to a diamond of blocks with a boolean
// phi at the merge (spec.md §4.2.1): the right operand is only evaluated
// when its value can change the result.
func (l *Lowerer) lowerShortCircuit(e *ast.InfixExpr) (ir.Operand, types.Type, error) {
	left, _, err := l.lowerExprTyped(e.Left)
	if err != nil {
		return nil, nil, err
	}
	entryBlock := l.currentBlock

	rhsBlock := l.newBlock()
	mergeBlock := l.newBlock()

	if e.Op == ast.OpAnd {
		l.emitTerm(&ir.BranchTerm{Condition: left, TrueTarget: rhsBlock.ID, FalseTarget: mergeBlock.ID})
	} else {
		l.emitTerm(&ir.BranchTerm{Condition: left, TrueTarget: mergeBlock.ID, FalseTarget: rhsBlock.ID})
	}

	l.startBlock(rhsBlock)
	right, _, err := l.lowerExprTyped(e.Right)
	if err != nil {
		return nil, nil, err
	}
	rhsExit := l.currentBlock
	if !l.terminated() {
		l.emitTerm(&ir.JumpTerm{Target: mergeBlock.ID})
	}

	l.startBlock(mergeBlock)
	phiDest := l.fresh()
	phi := &ir.Phi{Dest: phiDest, ElemType: types.TypeBool}
	phi.SetIncomingFrom(entryBlock.ID, left)
	phi.SetIncomingFrom(rhsExit.ID, right)
	mergeBlock.Phis = append(mergeBlock.Phis, phi)
	return ir.NewValueRef(phiDest, types.TypeBool), types.TypeBool, nil
}

var prefixOpKinds = map[ast.Op]ir.UnOpKind{
	ast.OpNeg:    ir.Neg,
	ast.OpNot:    ir.Not,
	ast.OpBitNot: ir.BitNot,
}

func (l *Lowerer) lowerPrefixExpr(e *ast.PrefixExpr) (ir.Operand, types.Type, error) {
	if res, ok := l.Operators[e]; ok {
		return l.lowerOperatorCall(res, []ast.Expr{e.Expr}, e)
	}
	val, typ, err := l.lowerExprTyped(e.Expr)
	if err != nil {
		return nil, nil, err
	}
	kind, ok := prefixOpKinds[e.Op]
	if !ok {
		return nil, nil, internalError("unsupported prefix operator %q", e.Op)
	}
	resultType := typ
	if kind == ir.Not {
		resultType = types.TypeBool
	}
	dest := l.fresh()
	l.emit(&ir.UnOp{Dest: dest, Op: kind, Elem: val, Type: resultType})
	return ir.NewValueRef(dest, resultType), resultType, nil
}

// lowerOperatorCall dispatches an operator expression the checker resolved
// to a user-defined method (spec.md §4.2.1): a plain call to that method,
// named by the struct prefix and method name.
func (l *Lowerer) lowerOperatorCall(res *OperatorResolution, args []ast.Expr, node ast.Node) (ir.Operand, types.Type, error) {
	operands := make([]ir.Operand, len(args))
	for i, a := range args {
		op, _, err := l.lowerExprTyped(a)
		if err != nil {
			return nil, nil, err
		}
		operands[i] = op
	}
	retType := res.Signature.Return
	var dest ir.ValueID = ir.UndefValue
	if retType != nil {
		dest = l.fresh()
	}
	l.emit(&ir.Call{Dest: dest, Callee: res.MangledName, Args: operands, ReturnType: retType})
	if retType == nil {
		return nil, nil, nil
	}
	return ir.NewValueRef(dest, retType), retType, nil
}

func (l *Lowerer) lowerCastExpr(e *ast.CastExpr) (ir.Operand, types.Type, error) {
	val, _, err := l.lowerExprTyped(e.Value)
	if err != nil {
		return nil, nil, err
	}
	target := l.typeOf(e)
	if target == nil {
		return nil, nil, internalError("cast expression has no resolved target type")
	}
	dest := l.fresh()
	l.emit(&ir.Cast{Dest: dest, Value: val, Target: target})
	return ir.NewValueRef(dest, target), target, nil
}

func (l *Lowerer) lowerSizeOfExpr(e *ast.SizeOfExpr) (ir.Operand, types.Type, error) {
	target := l.typeOf(e.Type)
	if target == nil {
		return nil, nil, internalError("sizeof expression has no resolved operand type")
	}
	dest := l.fresh()
	l.emit(&ir.SizeOfInstr{Dest: dest, Of: target})
	return ir.NewValueRef(dest, types.TypeUInt64), types.TypeUInt64, nil
}

// lowerMoveExpr marks the named variable as moved in the current scope
// stack so it is not destroyed on scope exit (spec.md §4.2.1), and
// evaluates to its current value exactly as a plain identifier would.
func (l *Lowerer) lowerMoveExpr(e *ast.MoveExpr) (ir.Operand, types.Type, error) {
	op, typ, err := l.lowerIdent(&ast.Ident{Name: e.Target.Name})
	if err != nil {
		return nil, nil, err
	}
	l.markMoved(e.Target.Name)
	return op, typ, nil
}
