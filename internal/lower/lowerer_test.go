package lower

import (
	"strconv"
	"testing"

	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// This package has no parser or checker of its own to drive it (both are
// external collaborators per spec.md §1); these tests build the checker's
// output tables by hand instead of parsing source text, the same shape
// NewLowerer expects from the driver.

func sp() ast.Span { return ast.Span{} }

func id(name string) *ast.Ident { return ast.NewIdent(name, sp()) }

func blk(stmts []ast.Stmt, tail ast.Expr) *ast.BlockExpr {
	return ast.NewBlockExpr(stmts, tail, sp())
}

func intLit(v int64) *ast.IntegerLit {
	return ast.NewIntegerLit(strconv.FormatInt(v, 10), sp())
}

// newTestLowerer builds a Lowerer over the given struct table, with empty
// enum/auto-lifecycle tables and no module-wide type table (tests that need
// per-node type annotations pass their own TypeInfo via FunctionInput).
func newTestLowerer(structs map[string]*types.Struct) *Lowerer {
	if structs == nil {
		structs = map[string]*types.Struct{}
	}
	return NewLowerer(nil, structs, map[string]*types.Enum{}, map[string]bool{})
}

// lowerBody lowers body as a function's whole definition under
// the given params/return/throws and type table, returning the finished IR.
func lowerBody(t *testing.T, l *Lowerer, params []types.Param, ret types.Type, throws []types.Type, typeInfo map[ast.Node]types.Type, body *ast.BlockExpr) *ir.Function {
	t.Helper()
	astParams := make([]*ast.Param, len(params))
	for i, p := range params {
		astParams[i] = ast.NewParam(id(p.Name), nil, false, sp())
	}
	decl := ast.NewFnDecl(false, false, false, id("f"), nil, astParams, nil, nil, body, sp())
	fn, err := l.Lower(&FunctionInput{
		Name:       "f",
		Decl:       decl,
		Params:     params,
		ReturnType: ret,
		Throws:     throws,
		TypeInfo:   typeInfo,
	})
	if err != nil {
		t.Fatalf("lower error: %v", err)
	}
	return fn
}

func TestLower_ReturnLiteral(t *testing.T) {
	l := newTestLowerer(nil)
	body := blk(nil, nil)
	body.Stmts = []ast.Stmt{ast.NewReturnStmt(intLit(42), sp())}

	fn := lowerBody(t, l, nil, types.TypeInt32, nil, nil, body)

	if fn.Throwing() {
		t.Fatal("expected a non-throwing function")
	}
	entry := fn.Entry()
	if entry == nil || !entry.Sealed() {
		t.Fatal("expected a sealed entry block")
	}
	ret, ok := entry.Terminator.(*ir.ReturnValueTerm)
	if !ok {
		t.Fatalf("expected ReturnValueTerm, got %T", entry.Terminator)
	}
	ci, ok := ret.Value.(*ir.ConstInt)
	if !ok || ci.Value != 42 {
		t.Fatalf("expected ConstInt(42), got %#v", ret.Value)
	}
}

func TestLower_ImplicitVoidReturn(t *testing.T) {
	l := newTestLowerer(nil)
	body := blk(nil, nil)

	fn := lowerBody(t, l, nil, nil, nil, nil, body)

	entry := fn.Entry()
	if _, ok := entry.Terminator.(*ir.ReturnVoidTerm); !ok {
		t.Fatalf("expected ReturnVoidTerm, got %T", entry.Terminator)
	}
}

// A string-typed local never returned must be destroyed on the function's
// fallthrough exit (spec.md §4.2.2).
func TestLower_ScopeDestroysUnmovedLocal(t *testing.T) {
	l := newTestLowerer(nil)
	letStmt := ast.NewLetStmt(false, id("s"), nil, ast.NewStringLit("hi", sp()), sp())
	body := blk([]ast.Stmt{letStmt}, nil)

	fn := lowerBody(t, l, nil, nil, nil, nil, body)

	entry := fn.Entry()
	var sawDestroy bool
	for _, instr := range entry.Instrs {
		if _, ok := instr.(*ir.Destroy); ok {
			sawDestroy = true
		}
	}
	if !sawDestroy {
		t.Fatal("expected a Destroy instruction for the unmoved string local")
	}
	if _, ok := entry.Terminator.(*ir.ReturnVoidTerm); !ok {
		t.Fatalf("expected ReturnVoidTerm, got %T", entry.Terminator)
	}
}

// `move s;` before the implicit return suppresses s's destroy.
func TestLower_MoveSuppressesDestroy(t *testing.T) {
	l := newTestLowerer(nil)
	letStmt := ast.NewLetStmt(false, id("s"), nil, ast.NewStringLit("hi", sp()), sp())
	moveStmt := ast.NewMoveStmt(id("s"), sp())
	body := blk([]ast.Stmt{letStmt, moveStmt}, nil)

	fn := lowerBody(t, l, nil, nil, nil, nil, body)

	entry := fn.Entry()
	for _, instr := range entry.Instrs {
		if _, ok := instr.(*ir.Destroy); ok {
			t.Fatalf("expected no Destroy after move, found one: %#v", instr)
		}
	}
}

// `return s;` exempts s itself from the destroy pass, even though it is a
// string local going out of scope (spec.md §4.2.2, §4.2.3).
func TestLower_ReturnExemptsNamedLocal(t *testing.T) {
	l := newTestLowerer(nil)
	letStmt := ast.NewLetStmt(false, id("s"), nil, ast.NewStringLit("hi", sp()), sp())
	retStmt := ast.NewReturnStmt(id("s"), sp())
	body := blk([]ast.Stmt{letStmt, retStmt}, nil)

	fn := lowerBody(t, l, nil, types.TypeString, nil, nil, body)

	entry := fn.Entry()
	for _, instr := range entry.Instrs {
		if _, ok := instr.(*ir.Destroy); ok {
			t.Fatalf("expected no Destroy of the returned local, found one: %#v", instr)
		}
	}
	if _, ok := entry.Terminator.(*ir.ReturnValueTerm); !ok {
		t.Fatalf("expected ReturnValueTerm, got %T", entry.Terminator)
	}
}

// An if-expression used as a value merges both arms through a phi.
func TestLower_IfExprPhiMerge(t *testing.T) {
	l := newTestLowerer(nil)
	typeInfo := map[ast.Node]types.Type{}

	thenBlock := blk(nil, intLit(1))
	elseBlock := blk(nil, intLit(2))
	ifExpr := ast.NewIfExpr(
		[]*ast.IfClause{ast.NewIfClause(ast.NewBoolLit(true, sp()), thenBlock, sp())},
		elseBlock, sp(),
	)
	typeInfo[ifExpr] = types.TypeInt32
	letStmt := ast.NewLetStmt(false, id("x"), nil, ifExpr, sp())
	body := blk([]ast.Stmt{letStmt}, nil)

	fn := lowerBody(t, l, nil, nil, nil, typeInfo, body)

	var phis int
	for _, b := range fn.Blocks {
		phis += len(b.Phis)
	}
	if phis != 1 {
		t.Fatalf("expected exactly one merge phi, found %d", phis)
	}
	var phi *ir.Phi
	for _, b := range fn.Blocks {
		if len(b.Phis) == 1 {
			phi = b.Phis[0]
		}
	}
	if len(phi.Incoming) != 2 {
		t.Fatalf("expected 2 incoming values on the merge phi, got %d", len(phi.Incoming))
	}
}

// A bare `return` statement inside an if-expression arm's body is rejected
// rather than silently dropped from the phi merge (spec.md §9's Open
// Question: an if-expression's arms are accepted only when every arm
// terminates with a value-producing tail expression).
func TestLower_IfExprRejectsEarlyReturn(t *testing.T) {
	l := newTestLowerer(nil)
	typeInfo := map[ast.Node]types.Type{}

	thenBlock := blk([]ast.Stmt{ast.NewReturnStmt(intLit(1), sp())}, nil)
	elseBlock := blk(nil, intLit(2))
	ifExpr := ast.NewIfExpr(
		[]*ast.IfClause{ast.NewIfClause(ast.NewBoolLit(true, sp()), thenBlock, sp())},
		elseBlock, sp(),
	)
	typeInfo[ifExpr] = types.TypeInt32
	letStmt := ast.NewLetStmt(false, id("x"), nil, ifExpr, sp())
	body := blk([]ast.Stmt{letStmt}, nil)

	_, err := l.Lower(&FunctionInput{
		Name:       "f",
		Decl:       ast.NewFnDecl(false, false, false, id("f"), nil, nil, nil, nil, body, sp()),
		ReturnType: types.TypeInt32,
		TypeInfo:   typeInfo,
	})
	if err != ErrEarlyReturnInIfExpr {
		t.Fatalf("expected ErrEarlyReturnInIfExpr, got %v", err)
	}
}

// The same rejection applies to a `return` nested arbitrarily deep inside
// an if-expression arm (through a further if-statement), not just one
// written directly in the arm's own statement list.
func TestLower_IfExprRejectsNestedEarlyReturn(t *testing.T) {
	l := newTestLowerer(nil)
	typeInfo := map[ast.Node]types.Type{}

	innerReturn := blk([]ast.Stmt{ast.NewReturnStmt(intLit(1), sp())}, nil)
	innerIfStmt := ast.NewIfStmt(
		[]*ast.IfClause{ast.NewIfClause(ast.NewBoolLit(true, sp()), innerReturn, sp())},
		nil, sp(),
	)
	thenBlock := blk([]ast.Stmt{innerIfStmt}, intLit(3))
	elseBlock := blk(nil, intLit(2))
	ifExpr := ast.NewIfExpr(
		[]*ast.IfClause{ast.NewIfClause(ast.NewBoolLit(true, sp()), thenBlock, sp())},
		elseBlock, sp(),
	)
	typeInfo[ifExpr] = types.TypeInt32
	letStmt := ast.NewLetStmt(false, id("x"), nil, ifExpr, sp())
	body := blk([]ast.Stmt{letStmt}, nil)

	_, err := l.Lower(&FunctionInput{
		Name:       "f",
		Decl:       ast.NewFnDecl(false, false, false, id("f"), nil, nil, nil, nil, body, sp()),
		ReturnType: types.TypeInt32,
		TypeInfo:   typeInfo,
	})
	if err != ErrEarlyReturnInIfExpr {
		t.Fatalf("expected ErrEarlyReturnInIfExpr, got %v", err)
	}
}

// An if-expression with no else is rejected (the checker is assumed to
// guarantee one exists for every value-producing if).
func TestLower_IfExprRequiresElse(t *testing.T) {
	l := newTestLowerer(nil)
	thenBlock := blk(nil, intLit(1))
	ifExpr := ast.NewIfExpr(
		[]*ast.IfClause{ast.NewIfClause(ast.NewBoolLit(true, sp()), thenBlock, sp())},
		nil, sp(),
	)
	body := blk([]ast.Stmt{ast.NewExprStmt(ifExpr, sp())}, nil)

	_, err := l.Lower(&FunctionInput{
		Name: "f",
		Decl: ast.NewFnDecl(false, false, false, id("f"), nil, nil, nil, nil, body, sp()),
	})
	if err == nil {
		t.Fatal("expected an internal-consistency error for an else-less if-expression")
	}
}

// A while loop has the header/body/exit three-block shape, with the
// condition evaluated in the header and the body jumping back to it.
func TestLower_WhileLoopShape(t *testing.T) {
	l := newTestLowerer(nil)
	whileStmt := ast.NewWhileStmt(ast.NewBoolLit(true, sp()), blk(nil, nil), sp())
	body := blk([]ast.Stmt{whileStmt}, nil)

	fn := lowerBody(t, l, nil, nil, nil, nil, body)

	// entry -> header; header ends in a BranchTerm; body ends in a JumpTerm
	// back to header; there is a distinct exit block.
	entry := fn.Entry()
	jump, ok := entry.Terminator.(*ir.JumpTerm)
	if !ok {
		t.Fatalf("expected entry to jump to the loop header, got %T", entry.Terminator)
	}
	header := fn.BlockByID(jump.Target)
	branch, ok := header.Terminator.(*ir.BranchTerm)
	if !ok {
		t.Fatalf("expected header to branch, got %T", header.Terminator)
	}
	bodyBlock := fn.BlockByID(branch.TrueTarget)
	bodyJump, ok := bodyBlock.Terminator.(*ir.JumpTerm)
	if !ok || bodyJump.Target != header.ID {
		t.Fatalf("expected body to jump back to the header, got %#v", bodyBlock.Terminator)
	}
	if branch.FalseTarget == header.ID || branch.FalseTarget == bodyBlock.ID {
		t.Fatal("expected a distinct exit block")
	}
}

// break inside a while loop destroys the scopes opened since the loop body
// began and jumps straight to the exit block, not back through the header.
func TestLower_BreakDestroysLoopScopeAndExits(t *testing.T) {
	l := newTestLowerer(nil)
	letStmt := ast.NewLetStmt(false, id("s"), nil, ast.NewStringLit("hi", sp()), sp())
	breakStmt := ast.NewBreakStmt(sp())
	loopBody := blk([]ast.Stmt{letStmt, breakStmt}, nil)
	whileStmt := ast.NewWhileStmt(ast.NewBoolLit(true, sp()), loopBody, sp())
	body := blk([]ast.Stmt{whileStmt}, nil)

	fn := lowerBody(t, l, nil, nil, nil, nil, body)

	entry := fn.Entry()
	headerJump := entry.Terminator.(*ir.JumpTerm)
	header := fn.BlockByID(headerJump.Target)
	branch := header.Terminator.(*ir.BranchTerm)
	bodyBlock := fn.BlockByID(branch.TrueTarget)

	var sawDestroy bool
	for _, instr := range bodyBlock.Instrs {
		if _, ok := instr.(*ir.Destroy); ok {
			sawDestroy = true
		}
	}
	if !sawDestroy {
		t.Fatal("expected break to destroy the string local declared in the loop body")
	}
	jump, ok := bodyBlock.Terminator.(*ir.JumpTerm)
	if !ok || jump.Target == header.ID {
		t.Fatalf("expected break to jump straight to the exit block, got %#v", bodyBlock.Terminator)
	}
}

// A throwing function's transformed signature appends __out/__err params
// and returns an i32 tag.
func TestLower_ThrowingSignature(t *testing.T) {
	l := newTestLowerer(map[string]*types.Struct{
		"NotFound": {Name: "NotFound"},
	})
	body := blk(nil, nil)

	fn := lowerBody(t, l, nil, types.TypeInt32, []types.Type{&types.Struct{Name: "NotFound"}}, nil, body)

	if !fn.Throwing() {
		t.Fatal("expected a throwing function")
	}
	if fn.ReturnType != types.TypeInt32 {
		t.Fatalf("expected the transformed return type to be i32, got %v", fn.ReturnType)
	}
	if fn.SuccessType != types.TypeInt32 {
		t.Fatalf("expected SuccessType to carry the declared return type, got %v", fn.SuccessType)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected exactly __out/__err params, got %d", len(fn.Params))
	}
	if fn.Params[0].Name != "__out" || fn.Params[1].Name != "__err" {
		t.Fatalf("expected __out/__err params in order, got %q/%q", fn.Params[0].Name, fn.Params[1].Name)
	}
}

// `throw E{...}` stores the error through __err and returns E's 1-based tag.
func TestLower_ThrowStmtReturnsTag(t *testing.T) {
	notFound := &types.Struct{Name: "NotFound"}
	l := newTestLowerer(map[string]*types.Struct{"NotFound": notFound})
	throwStmt := ast.NewThrowStmt(ast.NewStructLiteral(id("NotFound"), nil, sp()), sp())
	body := blk([]ast.Stmt{throwStmt}, nil)

	fn := lowerBody(t, l, nil, types.TypeInt32, []types.Type{notFound}, nil, body)

	entry := fn.Entry()
	ret, ok := entry.Terminator.(*ir.ReturnValueTerm)
	if !ok {
		t.Fatalf("expected ReturnValueTerm, got %T", entry.Terminator)
	}
	ci, ok := ret.Value.(*ir.ConstInt)
	if !ok || ci.Value != 1 {
		t.Fatalf("expected tag 1 for the first declared throws type, got %#v", ret.Value)
	}
}

// `throw` of a type never declared in the function's throws list is an
// internal-consistency error (spec.md §7.1).
func TestLower_ThrowOfUndeclaredType(t *testing.T) {
	l := newTestLowerer(map[string]*types.Struct{"NotFound": {Name: "NotFound"}})
	throwStmt := ast.NewThrowStmt(ast.NewStructLiteral(id("NotFound"), nil, sp()), sp())
	body := blk([]ast.Stmt{throwStmt}, nil)

	_, err := l.Lower(&FunctionInput{
		Name:       "f",
		Decl:       ast.NewFnDecl(false, false, false, id("f"), nil, nil, nil, nil, body, sp()),
		ReturnType: types.TypeInt32,
		Throws:     nil,
	})
	if err == nil {
		t.Fatal("expected an internal-consistency error for a throw with no declared throws list")
	}
}

// `&&` short-circuits through a diamond of blocks merged by a boolean phi;
// the right operand's block is only reached when the left is true.
func TestLower_ShortCircuitAndDiamond(t *testing.T) {
	l := newTestLowerer(nil)
	infix := ast.NewInfixExpr(ast.OpAnd, ast.NewBoolLit(true, sp()), ast.NewPrefixExpr(ast.OpNot, ast.NewBoolLit(false, sp()), sp()), sp())
	letStmt := ast.NewLetStmt(false, id("x"), nil, infix, sp())
	body := blk([]ast.Stmt{letStmt}, nil)

	fn := lowerBody(t, l, nil, nil, nil, nil, body)

	entry := fn.Entry()
	branch, ok := entry.Terminator.(*ir.BranchTerm)
	if !ok {
		t.Fatalf("expected entry to branch on the left operand, got %T", entry.Terminator)
	}
	rhsBlock := fn.BlockByID(branch.TrueTarget)
	if len(rhsBlock.Instrs) == 0 {
		t.Fatal("expected the right operand to be evaluated in its own block")
	}
	mergeBlock := fn.BlockByID(branch.FalseTarget)
	if mergeBlock.ID == rhsBlock.ID {
		t.Fatal("expected a merge block distinct from the rhs block")
	}
}

// break/continue outside any loop is an internal-consistency error.
func TestLower_BreakOutsideLoop(t *testing.T) {
	l := newTestLowerer(nil)
	body := blk([]ast.Stmt{ast.NewBreakStmt(sp())}, nil)

	_, err := l.Lower(&FunctionInput{
		Name: "f",
		Decl: ast.NewFnDecl(false, false, false, id("f"), nil, nil, nil, nil, body, sp()),
	})
	if err == nil {
		t.Fatal("expected an internal-consistency error for break outside a loop")
	}
}

// A switch statement always synthesizes a default target, even when the
// source omitted one.
func TestLower_SwitchSynthesizesDefault(t *testing.T) {
	l := newTestLowerer(nil)
	cases := []*ast.SwitchCase{
		ast.NewSwitchCase(intLit(1), blk(nil, nil), sp()),
	}
	switchStmt := ast.NewSwitchStmt(intLit(1), cases, nil, sp())
	body := blk([]ast.Stmt{switchStmt}, nil)

	fn := lowerBody(t, l, nil, nil, nil, nil, body)

	entry := fn.Entry()
	sw, ok := entry.Terminator.(*ir.SwitchTerm)
	if !ok {
		t.Fatalf("expected SwitchTerm, got %T", entry.Terminator)
	}
	defaultBlock := fn.BlockByID(sw.Default)
	if defaultBlock == nil {
		t.Fatal("expected a synthesized default block")
	}
	if _, ok := defaultBlock.Terminator.(*ir.JumpTerm); !ok {
		t.Fatalf("expected the empty default arm to fall through, got %T", defaultBlock.Terminator)
	}
}

// A call to a name imported from a module where it is overloaded ignores
// the checker's CallResolution.MangledName (which cannot name more than one
// candidate) and instead recomputes the overload-mangle rule itself from
// the call's own resolved parameter types against the driver-recorded
// qualified base (spec.md §4.7).
func TestLower_OverloadedImportRecomputesMangle(t *testing.T) {
	l := newTestLowerer(nil)
	l.OverloadedImports["add"] = "math_add"

	callExpr := ast.NewCallExpr(id("add"), []ast.Expr{intLit(1)}, sp())
	l.Calls[callExpr] = &CallResolution{
		// Deliberately wrong: proves the overloaded-import path ignores this
		// and recomputes the mangle itself.
		MangledName: "math_add_WRONG",
		Signature:   &types.Function{Params: []types.Param{{Name: "x", Type: types.TypeInt32}}, Return: types.TypeInt32},
	}

	body := blk(nil, callExpr)
	typeInfo := map[ast.Node]types.Type{callExpr: types.TypeInt32}
	fn := lowerBody(t, l, nil, types.TypeInt32, nil, typeInfo, body)

	entry := fn.Entry()
	var call *ir.Call
	for _, instr := range entry.Instrs {
		if c, ok := instr.(*ir.Call); ok {
			call = c
			break
		}
	}
	if call == nil {
		t.Fatalf("expected a Call instruction, got %+v", entry.Instrs)
	}
	if call.Callee != "math_add_i32" {
		t.Errorf("expected recomputed overload mangle %q, got %q", "math_add_i32", call.Callee)
	}
}
