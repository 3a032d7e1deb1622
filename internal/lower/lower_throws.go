package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// errorTypeName recovers the declared name of an error (always a struct)
// type, used to match a thrown value or a catch arm against a function's
// ordered throws list (spec.md §4.2.3, §4.2.4: "remaps by building a
// switch keyed on error-type name equality").
func errorTypeName(t types.Type) string {
	switch tt := types.Resolve(t).(type) {
	case *types.Struct:
		return tt.Name
	default:
		return ""
	}
}

// throwTag returns the 1-based position of name within throws (0 if
// absent), matching the i32 tag convention of spec.md §4.2.3.
func throwTag(throws []types.Type, name string) int {
	for i, t := range throws {
		if errorTypeName(t) == name {
			return i + 1
		}
	}
	return 0
}

func sameThrowsOrder(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if errorTypeName(a[i]) != errorTypeName(b[i]) {
			return false
		}
	}
	return true
}

// lowerReturn lowers `return v;` (or a function body's implicit tail
// return) for both throwing and non-throwing functions (spec.md §4.2.3):
// a throwing function stores the value through __out and returns tag 0; a
// plain function returns the value directly. Scope destroys run for every
// enclosing scope first, exempting the variable the returned value names,
// if any (spec.md §4.2.2).
func (l *Lowerer) lowerReturn(valueExpr ast.Expr) error {
	if l.ifExprArmDepth > 0 {
		return ErrEarlyReturnInIfExpr
	}

	exempt := ""
	if valueExpr != nil {
		exempt = identName(valueExpr)
	}

	if l.throwCtx == nil {
		if valueExpr == nil {
			l.destroyAllScopes(exempt)
			l.emitTerm(&ir.ReturnVoidTerm{})
			return nil
		}
		val, _, err := l.lowerExprTyped(valueExpr)
		if err != nil {
			return err
		}
		l.destroyAllScopes(exempt)
		l.emitTerm(&ir.ReturnValueTerm{Value: val})
		return nil
	}

	if valueExpr != nil {
		val, _, err := l.lowerExprTyped(valueExpr)
		if err != nil {
			return err
		}
		outAddr := ir.NewValueRef(l.throwCtx.outParam, l.throwCtx.outType)
		l.emit(&ir.Store{Addr: outAddr, Value: val})
	}
	l.destroyAllScopes(exempt)
	l.emitTerm(&ir.ReturnValueTerm{Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: 0}})
	return nil
}

// lowerThrowStmt lowers `throw E{...}` (spec.md §4.2.3): stores the error
// value through __err, destroys every enclosing scope with no returned-
// value exemption, and returns the error's 1-based tag.
func (l *Lowerer) lowerThrowStmt(s *ast.ThrowStmt) error {
	if l.throwCtx == nil {
		return internalError("throw statement outside a throwing function")
	}
	name := s.Value.Name.Name
	tag := throwTag(l.throwCtx.throws, name)
	if tag == 0 {
		return internalError("throw of undeclared error type %q", name)
	}
	errAddr := ir.NewValueRef(l.throwCtx.errParam, l.throwCtx.errType)
	if err := l.lowerErrorInto(errAddr, s.Value); err != nil {
		return err
	}
	l.destroyAllScopes("")
	l.emitTerm(&ir.ReturnValueTerm{Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: int64(tag)}})
	return nil
}

// lowerErrorInto stores lit's fields through an opaque __err byte pointer,
// casting it to the error struct's concrete pointer type first. A
// fieldless error variant needs no store.
func (l *Lowerer) lowerErrorInto(errPtr ir.Operand, lit *ast.StructLiteral) error {
	st, ok := l.Structs[lit.Name.Name]
	if !ok {
		return internalError("throw names unresolved error struct %q", lit.Name.Name)
	}
	if len(st.Fields) == 0 {
		return nil
	}
	castDest := l.fresh()
	target := &types.Pointer{Elem: st}
	l.emit(&ir.Cast{Dest: castDest, Value: errPtr, Target: target})
	base := ir.NewValueRef(castDest, target)
	for _, fl := range lit.Fields {
		field := st.FieldByName(fl.Name.Name)
		if field == nil {
			return internalError("error struct %q has no field %q", st.Name, fl.Name.Name)
		}
		val, _, err := l.lowerExprTyped(fl.Value)
		if err != nil {
			return err
		}
		addrDest := l.fresh()
		l.emit(&ir.FieldAddr{Dest: addrDest, Base: base, FieldName: fl.Name.Name, FieldType: field.Type})
		l.emit(&ir.Store{Addr: ir.NewValueRef(addrDest, &types.Pointer{Elem: field.Type}), Value: val})
	}
	return nil
}

// lowerCatchExpr lowers `callee(args) catch ...` (spec.md §4.2.3): the
// caller allocates __out/__err slots (catch-throw instead forwards the
// caller's own __err directly, so a propagated error is never copied),
// invokes the callee via ThrowsCall, and dispatches on the tag according
// to the catch kind.
func (l *Lowerer) lowerCatchExpr(e *ast.CatchExpr) (ir.Operand, types.Type, error) {
	res, ok := l.Calls[e.Call]
	if !ok || !res.Signature.Throwing() {
		return nil, nil, internalError("catch clause on a call with no resolved throwing signature")
	}

	successType := res.Signature.Return
	outElem := successType
	if outElem == nil || outElem == types.TypeVoid {
		outElem = types.TypeUInt8
	}
	outSlot := l.fresh()
	l.emit(&ir.Alloca{Dest: outSlot, ElemType: outElem})
	outOperand := ir.NewValueRef(outSlot, &types.Pointer{Elem: outElem})

	var errOperand ir.Operand
	if e.Catch.Kind == ast.CatchThrow {
		if l.throwCtx == nil {
			return nil, nil, internalError("catch throw used outside a throwing function")
		}
		errOperand = ir.NewValueRef(l.throwCtx.errParam, l.throwCtx.errType)
	} else {
		errSlot := l.fresh()
		l.emit(&ir.Alloca{Dest: errSlot, ElemType: types.TypeUInt8})
		errOperand = ir.NewValueRef(errSlot, &types.Pointer{Elem: types.TypeUInt8})
	}

	args, err := l.lowerCallArgs(e.Call)
	if err != nil {
		return nil, nil, err
	}
	calleeName := l.resolvedCalleeName(e.Call.Callee, res)
	tagDest := l.fresh()
	l.emit(&ir.ThrowsCall{Dest: tagDest, Callee: calleeName, Args: args, Out: outOperand, Err: errOperand, SuccessType: successType})
	tagVal := ir.NewValueRef(tagDest, types.TypeInt32)

	switch e.Catch.Kind {
	case ast.CatchPanic:
		return l.lowerCatchPanic(tagVal, outOperand, outElem, successType)
	case ast.CatchThrow:
		return l.lowerCatchThrow(tagVal, outOperand, outElem, successType, res.Signature.Throws)
	default:
		return l.lowerCatchMatch(e, tagVal, outOperand, outElem, successType, errOperand, res.Signature.Throws)
	}
}

func (l *Lowerer) loadSuccess(outOperand ir.Operand, outElem, successType types.Type) (ir.Operand, types.Type) {
	if successType == nil || successType == types.TypeVoid {
		return nil, nil
	}
	dest := l.fresh()
	l.emit(&ir.Load{Dest: dest, Addr: outOperand, ElemType: outElem})
	return ir.NewValueRef(dest, successType), successType
}

// lowerCatchPanic lowers `catch panic`: any non-zero tag calls the
// runtime's panic ABI entry point and never returns (spec.md §4.2.3, §6).
func (l *Lowerer) lowerCatchPanic(tagVal ir.Operand, outOperand ir.Operand, outElem, successType types.Type) (ir.Operand, types.Type, error) {
	panicBlock := l.newBlock()
	contBlock := l.newBlock()
	cmpDest := l.fresh()
	l.emit(&ir.BinOp{Dest: cmpDest, Op: ir.Neq, Left: tagVal, Right: &ir.ConstInt{ElemType: types.TypeInt32, Value: 0}, ResultType: types.TypeBool})
	l.emitTerm(&ir.BranchTerm{Condition: ir.NewValueRef(cmpDest, types.TypeBool), TrueTarget: panicBlock.ID, FalseTarget: contBlock.ID})

	l.startBlock(panicBlock)
	l.emit(&ir.ExternCall{Dest: ir.UndefValue, Callee: "panic", Args: []ir.Operand{tagVal}, ReturnType: nil})
	l.emitTerm(&ir.UnreachableTerm{})

	l.startBlock(contBlock)
	val, typ := l.loadSuccess(outOperand, outElem, successType)
	return val, typ, nil
}

// lowerCatchThrow lowers `catch throw`: a zero tag continues; a non-zero
// tag re-propagates immediately, unchanged if the callee's throws list
// matches the caller's own, else remapped through a switch on error-type
// name equality (spec.md §4.2.3, §4.2.4).
func (l *Lowerer) lowerCatchThrow(tagVal ir.Operand, outOperand ir.Operand, outElem, successType types.Type, calleeThrows []types.Type) (ir.Operand, types.Type, error) {
	propagateBlock := l.newBlock()
	contBlock := l.newBlock()
	cmpDest := l.fresh()
	l.emit(&ir.BinOp{Dest: cmpDest, Op: ir.Neq, Left: tagVal, Right: &ir.ConstInt{ElemType: types.TypeInt32, Value: 0}, ResultType: types.TypeBool})
	l.emitTerm(&ir.BranchTerm{Condition: ir.NewValueRef(cmpDest, types.TypeBool), TrueTarget: propagateBlock.ID, FalseTarget: contBlock.ID})

	l.startBlock(propagateBlock)
	l.lowerCatchThrowPropagation(tagVal, calleeThrows)

	l.startBlock(contBlock)
	val, typ := l.loadSuccess(outOperand, outElem, successType)
	return val, typ, nil
}

func (l *Lowerer) lowerCatchThrowPropagation(tagVal ir.Operand, calleeThrows []types.Type) {
	if sameThrowsOrder(calleeThrows, l.throwCtx.throws) {
		l.destroyAllScopes("")
		l.emitTerm(&ir.ReturnValueTerm{Value: tagVal})
		return
	}

	defaultBlock := l.newBlock()
	cases := make([]ir.SwitchCaseTarget, len(calleeThrows))
	caseBlocks := make([]*ir.Block, len(calleeThrows))
	for i := range calleeThrows {
		cb := l.newBlock()
		caseBlocks[i] = cb
		cases[i] = ir.SwitchCaseTarget{Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: int64(i + 1)}, Target: cb.ID}
	}
	l.emitTerm(&ir.SwitchTerm{Subject: tagVal, Cases: cases, Default: defaultBlock.ID})

	for i, t := range calleeThrows {
		l.startBlock(caseBlocks[i])
		callerTag := throwTag(l.throwCtx.throws, errorTypeName(t))
		l.destroyAllScopes("")
		l.emitTerm(&ir.ReturnValueTerm{Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: int64(callerTag)}})
	}

	l.startBlock(defaultBlock)
	l.destroyAllScopes("")
	l.emitTerm(&ir.ReturnValueTerm{Value: tagVal})
}

// lowerCatchMatch lowers `catch { T_1 x_1: ...; ...; default y: ... }`
// (spec.md §4.2.3): a switch on the tag dispatches to one block per arm,
// each binding its named error pointer (cast from the opaque __err
// buffer) as a local before lowering its body. Arms are expected to
// diverge (return/throw/break/continue); one that falls through
// contributes no value to the expression's result, matching how a catch
// block is used in source — as an escape hatch, not a producer of a
// value of its own.
func (l *Lowerer) lowerCatchMatch(e *ast.CatchExpr, tagVal ir.Operand, outOperand ir.Operand, outElem, successType types.Type, errOperand ir.Operand, calleeThrows []types.Type) (ir.Operand, types.Type, error) {
	contBlock := l.newBlock()
	var defaultArm *ast.CatchArm
	var namedArms []*ast.CatchArm
	for _, arm := range e.Catch.Arms {
		if arm.ErrType == nil {
			defaultArm = arm
		} else {
			namedArms = append(namedArms, arm)
		}
	}

	defaultBlock := l.newBlock()
	cases := make([]ir.SwitchCaseTarget, 0, len(namedArms))
	caseBlocks := make([]*ir.Block, len(namedArms))
	armTypes := make([]*types.Struct, len(namedArms))
	for i, arm := range namedArms {
		name := typeNameOf(arm.ErrType)
		tag := throwTag(calleeThrows, name)
		if tag == 0 {
			return nil, nil, internalError("catch arm names undeclared error type %q", name)
		}
		st, ok := l.Structs[name]
		if !ok {
			return nil, nil, internalError("catch arm names unresolved error struct %q", name)
		}
		armTypes[i] = st
		cb := l.newBlock()
		caseBlocks[i] = cb
		cases = append(cases, ir.SwitchCaseTarget{Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: int64(tag)}, Target: cb.ID})
	}
	l.emitTerm(&ir.SwitchTerm{Subject: tagVal, Cases: cases, Default: defaultBlock.ID})

	for i, arm := range namedArms {
		l.startBlock(caseBlocks[i])
		l.pushScope()
		if arm.Binding != nil {
			ptrType := &types.Pointer{Elem: armTypes[i]}
			castDest := l.fresh()
			l.emit(&ir.Cast{Dest: castDest, Value: errOperand, Target: ptrType})
			slot := l.declareLocal(arm.Binding.Name, ptrType)
			l.emit(&ir.Store{Addr: ir.NewValueRef(slot, &types.Pointer{Elem: ptrType}), Value: ir.NewValueRef(castDest, ptrType)})
		}
		if err := l.lowerStmtList(arm.Body.Stmts); err != nil {
			return nil, nil, err
		}
		if arm.Body.Tail != nil && !l.terminated() {
			if _, _, err := l.lowerExprTyped(arm.Body.Tail); err != nil {
				return nil, nil, err
			}
		}
		if !l.terminated() {
			l.destroyScope(l.scopes[len(l.scopes)-1], "")
			l.emitTerm(&ir.JumpTerm{Target: contBlock.ID})
		}
		l.popScopeNoDestroy()
	}

	l.startBlock(defaultBlock)
	if defaultArm != nil {
		l.pushScope()
		if defaultArm.Binding != nil {
			slot := l.declareLocal(defaultArm.Binding.Name, errOperand.Type())
			l.emit(&ir.Store{Addr: ir.NewValueRef(slot, &types.Pointer{Elem: errOperand.Type()}), Value: errOperand})
		}
		if err := l.lowerStmtList(defaultArm.Body.Stmts); err != nil {
			return nil, nil, err
		}
		if defaultArm.Body.Tail != nil && !l.terminated() {
			if _, _, err := l.lowerExprTyped(defaultArm.Body.Tail); err != nil {
				return nil, nil, err
			}
		}
		if !l.terminated() {
			l.destroyScope(l.scopes[len(l.scopes)-1], "")
			l.emitTerm(&ir.JumpTerm{Target: contBlock.ID})
		}
		l.popScopeNoDestroy()
	} else {
		l.emit(&ir.ExternCall{Dest: ir.UndefValue, Callee: "panic", Args: []ir.Operand{tagVal}, ReturnType: nil})
		l.emitTerm(&ir.UnreachableTerm{})
	}

	l.startBlock(contBlock)
	return l.loadSuccess(outOperand, outElem, successType)
}

// typeNameOf recovers a TypeExpr's bare name, used for catch-arm error
// types (always a simple named type in source).
func typeNameOf(t ast.TypeExpr) string {
	if nt, ok := t.(*ast.NamedType); ok {
		return nt.Name.Name
	}
	return ""
}
