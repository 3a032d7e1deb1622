package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// lowerStmtList lowers a statement sequence, stopping as soon as one
// statement terminates the current block — every statement after a
// return/throw/break/continue is dead code the checker is assumed to have
// already flagged, and emitting past a terminator would corrupt the block.
func (l *Lowerer) lowerStmtList(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := l.lowerStmt(stmt); err != nil {
			return err
		}
		if l.terminated() {
			return nil
		}
	}
	return nil
}

// lowerStmt dispatches one statement (spec.md §4.2.5).
func (l *Lowerer) lowerStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return l.lowerLetStmt(s)
	case *ast.ReturnStmt:
		return l.lowerReturn(s.Value)
	case *ast.ThrowStmt:
		return l.lowerThrowStmt(s)
	case *ast.MoveStmt:
		l.markMoved(s.Name.Name)
		return nil
	case *ast.ExprStmt:
		_, err := l.lowerExpr(s.Expr)
		return err
	case *ast.IfStmt:
		return l.lowerIfStmt(s)
	case *ast.WhileStmt:
		return l.lowerWhileStmt(s)
	case *ast.ForStmt:
		return l.lowerForStmt(s)
	case *ast.SwitchStmt:
		return l.lowerSwitchStmt(s)
	case *ast.BreakStmt:
		return l.lowerBreakStmt(s)
	case *ast.ContinueStmt:
		return l.lowerContinueStmt(s)
	default:
		return internalError("unhandled statement kind %T", stmt)
	}
}

func (l *Lowerer) lowerLetStmt(s *ast.LetStmt) error {
	val, typ, err := l.lowerExprTyped(s.Value)
	if err != nil {
		return err
	}
	if typ == nil {
		typ = l.typeOf(s)
	}
	slot := l.declareLocal(s.Name.Name, typ)
	l.emit(&ir.Store{Addr: ir.NewValueRef(slot, &types.Pointer{Elem: typ}), Value: val})
	return nil
}

// lowerIfStmt lowers an if/else-if/else chain used as a statement: no
// value is merged, so a missing else simply falls through to the shared
// exit block.
func (l *Lowerer) lowerIfStmt(s *ast.IfStmt) error {
	exitBlock := l.newBlock()

	for _, clause := range s.Clauses {
		cond, _, err := l.lowerExprTyped(clause.Condition)
		if err != nil {
			return err
		}
		thenBlock := l.newBlock()
		elseBlock := l.newBlock()
		l.emitTerm(&ir.BranchTerm{Condition: cond, TrueTarget: thenBlock.ID, FalseTarget: elseBlock.ID})

		l.startBlock(thenBlock)
		if _, _, err := l.lowerNestedBlockExpr(clause.Body); err != nil {
			return err
		}
		if !l.terminated() {
			l.emitTerm(&ir.JumpTerm{Target: exitBlock.ID})
		}

		l.startBlock(elseBlock)
	}

	if s.Else != nil {
		if _, _, err := l.lowerNestedBlockExpr(s.Else); err != nil {
			return err
		}
	}
	if !l.terminated() {
		l.emitTerm(&ir.JumpTerm{Target: exitBlock.ID})
	}

	// exitBlock is unreachable (and sealed as such at function-seal time)
	// when every arm diverged.
	l.startBlock(exitBlock)
	return nil
}

// lowerWhileStmt lowers the header/body/exit three-block shape of spec.md
// §4.2.5.
func (l *Lowerer) lowerWhileStmt(s *ast.WhileStmt) error {
	headerBlock := l.newBlock()
	bodyBlock := l.newBlock()
	exitBlock := l.newBlock()

	l.emitTerm(&ir.JumpTerm{Target: headerBlock.ID})
	l.startBlock(headerBlock)
	cond, _, err := l.lowerExprTyped(s.Condition)
	if err != nil {
		return err
	}
	l.emitTerm(&ir.BranchTerm{Condition: cond, TrueTarget: bodyBlock.ID, FalseTarget: exitBlock.ID})

	l.startBlock(bodyBlock)
	baseDepth := len(l.scopes)
	l.loopStack = append(l.loopStack, &loopCtx{continueTarget: headerBlock.ID, breakTarget: exitBlock.ID, baseDepth: baseDepth})
	l.pushScope()
	if err := l.lowerStmtList(s.Body.Stmts); err != nil {
		return err
	}
	if !l.terminated() {
		l.destroyScope(l.scopes[len(l.scopes)-1], "")
	}
	l.popScopeNoDestroy()
	l.loopStack = l.loopStack[:len(l.loopStack)-1]
	if !l.terminated() {
		l.emitTerm(&ir.JumpTerm{Target: headerBlock.ID})
	}

	l.startBlock(exitBlock)
	return nil
}

// lowerForStmt desugars `for i in a..b { body }` to a slot holding the
// iterator plus a header/body/continue-increment shape (spec.md §4.2.5).
func (l *Lowerer) lowerForStmt(s *ast.ForStmt) error {
	endVal, endType, err := l.lowerExprTyped(s.Iterable.End)
	if err != nil {
		return err
	}
	iterType := endType
	var startVal ir.Operand
	if s.Iterable.Start != nil {
		startVal, iterType, err = l.lowerExprTyped(s.Iterable.Start)
		if err != nil {
			return err
		}
	} else {
		prim, _ := endType.(*types.Primitive)
		startVal = &ir.ConstInt{ElemType: prim, Value: 0}
	}

	l.pushScope()
	slot := l.declareLocal(s.Iterator.Name, iterType)
	l.emit(&ir.Store{Addr: ir.NewValueRef(slot, &types.Pointer{Elem: iterType}), Value: startVal})

	headerBlock := l.newBlock()
	bodyBlock := l.newBlock()
	incBlock := l.newBlock()
	exitBlock := l.newBlock()

	l.emitTerm(&ir.JumpTerm{Target: headerBlock.ID})
	l.startBlock(headerBlock)
	curDest := l.fresh()
	l.emit(&ir.Load{Dest: curDest, Addr: ir.NewValueRef(slot, &types.Pointer{Elem: iterType}), ElemType: iterType})
	cmpDest := l.fresh()
	l.emit(&ir.BinOp{Dest: cmpDest, Op: ir.Lt, Left: ir.NewValueRef(curDest, iterType), Right: endVal, ResultType: types.TypeBool})
	l.emitTerm(&ir.BranchTerm{Condition: ir.NewValueRef(cmpDest, types.TypeBool), TrueTarget: bodyBlock.ID, FalseTarget: exitBlock.ID})

	l.startBlock(bodyBlock)
	baseDepth := len(l.scopes)
	l.loopStack = append(l.loopStack, &loopCtx{continueTarget: incBlock.ID, breakTarget: exitBlock.ID, baseDepth: baseDepth})
	l.pushScope()
	if err := l.lowerStmtList(s.Body.Stmts); err != nil {
		return err
	}
	if !l.terminated() {
		l.destroyScope(l.scopes[len(l.scopes)-1], "")
	}
	l.popScopeNoDestroy()
	l.loopStack = l.loopStack[:len(l.loopStack)-1]
	if !l.terminated() {
		l.emitTerm(&ir.JumpTerm{Target: incBlock.ID})
	}

	l.startBlock(incBlock)
	incCurDest := l.fresh()
	l.emit(&ir.Load{Dest: incCurDest, Addr: ir.NewValueRef(slot, &types.Pointer{Elem: iterType}), ElemType: iterType})
	nextDest := l.fresh()
	prim, _ := iterType.(*types.Primitive)
	l.emit(&ir.BinOp{Dest: nextDest, Op: ir.Add, Left: ir.NewValueRef(incCurDest, iterType), Right: &ir.ConstInt{ElemType: prim, Value: 1}, ResultType: iterType})
	l.emit(&ir.Store{Addr: ir.NewValueRef(slot, &types.Pointer{Elem: iterType}), Value: ir.NewValueRef(nextDest, iterType)})
	l.emitTerm(&ir.JumpTerm{Target: headerBlock.ID})

	l.startBlock(exitBlock)
	l.destroyScope(l.scopes[len(l.scopes)-1], "")
	l.popScopeNoDestroy()
	return nil
}

// lowerSwitchStmt lowers to ir.SwitchTerm with a synthesized default
// (spec.md §4.2.5): each case's value is a constant expression, lowered
// without an open block via constOperand.
func (l *Lowerer) lowerSwitchStmt(s *ast.SwitchStmt) error {
	subject, _, err := l.lowerExprTyped(s.Subject)
	if err != nil {
		return err
	}

	exitBlock := l.newBlock()
	defaultBlock := l.newBlock()
	caseBlocks := make([]*ir.Block, len(s.Cases))
	cases := make([]ir.SwitchCaseTarget, len(s.Cases))
	for i, c := range s.Cases {
		val, _, err := l.constOperand(c.Value)
		if err != nil {
			return err
		}
		cb := l.newBlock()
		caseBlocks[i] = cb
		cases[i] = ir.SwitchCaseTarget{Value: val, Target: cb.ID}
	}
	l.emitTerm(&ir.SwitchTerm{Subject: subject, Cases: cases, Default: defaultBlock.ID})

	for i, c := range s.Cases {
		l.startBlock(caseBlocks[i])
		if _, _, err := l.lowerNestedBlockExpr(c.Body); err != nil {
			return err
		}
		if !l.terminated() {
			l.emitTerm(&ir.JumpTerm{Target: exitBlock.ID})
		}
	}

	l.startBlock(defaultBlock)
	if s.Default != nil {
		if _, _, err := l.lowerNestedBlockExpr(s.Default); err != nil {
			return err
		}
	}
	if !l.terminated() {
		l.emitTerm(&ir.JumpTerm{Target: exitBlock.ID})
	}

	l.startBlock(exitBlock)
	return nil
}

func (l *Lowerer) currentLoop() *loopCtx {
	if len(l.loopStack) == 0 {
		return nil
	}
	return l.loopStack[len(l.loopStack)-1]
}

// destroyScopesAbove emits destroys (innermost first) for every scope
// pushed since a loop's body began, without popping them — the enclosing
// pushScope/popScope call frames still unwind normally and, finding the
// block already terminated, skip re-emitting destroys of their own.
func (l *Lowerer) destroyScopesAbove(baseDepth int) {
	for i := len(l.scopes) - 1; i >= baseDepth; i-- {
		l.destroyScope(l.scopes[i], "")
	}
}

func (l *Lowerer) lowerBreakStmt(s *ast.BreakStmt) error {
	ctx := l.currentLoop()
	if ctx == nil {
		return internalError("break outside a loop")
	}
	l.destroyScopesAbove(ctx.baseDepth)
	l.emitTerm(&ir.JumpTerm{Target: ctx.breakTarget})
	return nil
}

func (l *Lowerer) lowerContinueStmt(s *ast.ContinueStmt) error {
	ctx := l.currentLoop()
	if ctx == nil {
		return internalError("continue outside a loop")
	}
	l.destroyScopesAbove(ctx.baseDepth)
	l.emitTerm(&ir.JumpTerm{Target: ctx.continueTarget})
	return nil
}
