package ssa_test

import (
	"testing"

	"github.com/vellum-lang/vellumc/internal/cfg"
	"github.com/vellum-lang/vellumc/internal/diag"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/ssa"
	"github.com/vellum-lang/vellumc/internal/types"
)

func buildAndPromote(fn *ir.Function) *ir.Function {
	fn.Seal()
	g := cfg.Build(fn)
	d := cfg.Compute(g)
	ssa.Promote(fn, g, d)
	return fn
}

// buildDiamondWithAssignment builds:
//
//	entry: alloca x; branch cond, then, else
//	then:  store x, 1; jump merge
//	else:  store x, 2; jump merge
//	merge: %v = load x; return %v
//
// matching spec.md §8 scenario 6: a merge point requiring a phi.
func buildDiamondWithAssignment() (*ir.Function, ir.BlockID) {
	fn := ir.NewFunction("f", nil, types.TypeInt32, nil)
	entry := fn.FreshBlock()
	thenB := fn.FreshBlock()
	elseB := fn.FreshBlock()
	merge := fn.FreshBlock()

	allocID := fn.FreshValue()
	entry.Instrs = append(entry.Instrs, &ir.Alloca{Dest: allocID, ElemType: types.TypeInt32})
	entry.Terminator = &ir.BranchTerm{
		Condition:   &ir.ConstBool{Value: true},
		TrueTarget:  thenB.ID,
		FalseTarget: elseB.ID,
	}

	thenB.Instrs = append(thenB.Instrs, &ir.Store{
		Addr:  ir.NewValueRef(allocID, types.TypeInt32),
		Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: 1},
	})
	thenB.Terminator = &ir.JumpTerm{Target: merge.ID}

	elseB.Instrs = append(elseB.Instrs, &ir.Store{
		Addr:  ir.NewValueRef(allocID, types.TypeInt32),
		Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: 2},
	})
	elseB.Terminator = &ir.JumpTerm{Target: merge.ID}

	loadDest := fn.FreshValue()
	merge.Instrs = append(merge.Instrs, &ir.Load{Dest: loadDest, Addr: ir.NewValueRef(allocID, types.TypeInt32), ElemType: types.TypeInt32})
	merge.Terminator = &ir.ReturnValueTerm{Value: ir.NewValueRef(loadDest, types.TypeInt32)}

	return fn, merge.ID
}

func TestPromoteDiamondPlacesPhiAtMerge(t *testing.T) {
	fn, mergeID := buildDiamondWithAssignment()
	fn = buildAndPromote(fn)

	merge := fn.BlockByID(mergeID)
	if len(merge.Phis) != 1 {
		t.Fatalf("expected exactly one phi at the merge block, got %d", len(merge.Phis))
	}
	if len(merge.Phis[0].Incoming) != 2 {
		t.Fatalf("expected phi to have 2 incoming edges, got %d", len(merge.Phis[0].Incoming))
	}

	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if _, isAlloca := instr.(*ir.Alloca); isAlloca {
				t.Fatalf("expected the promoted alloca to be removed, found one in %s", b.ID)
			}
			if _, isLoad := instr.(*ir.Load); isLoad {
				t.Fatalf("expected the promoted load to be removed, found one in %s", b.ID)
			}
			if _, isStore := instr.(*ir.Store); isStore {
				t.Fatalf("expected the promoted store to be removed, found one in %s", b.ID)
			}
		}
	}

	ret, ok := merge.Terminator.(*ir.ReturnValueTerm)
	if !ok {
		t.Fatalf("expected a return-value terminator, got %T", merge.Terminator)
	}
	ref, ok := ret.Value.(*ir.ValueRef)
	if !ok || ref.ID != merge.Phis[0].Dest {
		t.Fatalf("expected the return to reference the phi's result, got %#v", ret.Value)
	}
}

// buildLoopWithAccumulator builds a loop incrementing an accumulator,
// matching spec.md §8 scenario 3: a loop-carried variable needs a phi at
// the header, and the increment at the end of the body must reference it.
func buildLoopWithAccumulator() (*ir.Function, ir.BlockID) {
	fn := ir.NewFunction("f", nil, types.TypeInt32, nil)
	entry := fn.FreshBlock()
	header := fn.FreshBlock()
	body := fn.FreshBlock()
	exit := fn.FreshBlock()

	allocID := fn.FreshValue()
	entry.Instrs = append(entry.Instrs, &ir.Alloca{Dest: allocID, ElemType: types.TypeInt32})
	entry.Instrs = append(entry.Instrs, &ir.Store{
		Addr:  ir.NewValueRef(allocID, types.TypeInt32),
		Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: 0},
	})
	entry.Terminator = &ir.JumpTerm{Target: header.ID}

	header.Terminator = &ir.BranchTerm{
		Condition:   &ir.ConstBool{Value: true},
		TrueTarget:  body.ID,
		FalseTarget: exit.ID,
	}

	loadDest := fn.FreshValue()
	incDest := fn.FreshValue()
	body.Instrs = append(body.Instrs,
		&ir.Load{Dest: loadDest, Addr: ir.NewValueRef(allocID, types.TypeInt32), ElemType: types.TypeInt32},
		&ir.BinOp{Dest: incDest, Op: ir.Add, Left: ir.NewValueRef(loadDest, types.TypeInt32), Right: &ir.ConstInt{ElemType: types.TypeInt32, Value: 1}, ResultType: types.TypeInt32},
		&ir.Store{Addr: ir.NewValueRef(allocID, types.TypeInt32), Value: ir.NewValueRef(incDest, types.TypeInt32)},
	)
	body.Terminator = &ir.JumpTerm{Target: header.ID}

	finalLoad := fn.FreshValue()
	exit.Instrs = append(exit.Instrs, &ir.Load{Dest: finalLoad, Addr: ir.NewValueRef(allocID, types.TypeInt32), ElemType: types.TypeInt32})
	exit.Terminator = &ir.ReturnValueTerm{Value: ir.NewValueRef(finalLoad, types.TypeInt32)}

	return fn, header.ID
}

func TestPromoteLoopPlacesPhiAtHeader(t *testing.T) {
	fn, headerID := buildLoopWithAccumulator()
	fn = buildAndPromote(fn)

	header := fn.BlockByID(headerID)
	if len(header.Phis) != 1 {
		t.Fatalf("expected exactly one phi at the loop header, got %d", len(header.Phis))
	}
	phi := header.Phis[0]
	if len(phi.Incoming) != 2 {
		t.Fatalf("expected the header phi to have 2 incoming edges (preheader, back-edge), got %d", len(phi.Incoming))
	}
}

// buildDiamondSameValue builds a diamond where both arms store the same
// constant, so the merge phi must be eliminated as trivial.
func buildDiamondSameValue() (*ir.Function, ir.BlockID) {
	fn := ir.NewFunction("f", nil, types.TypeInt32, nil)
	entry := fn.FreshBlock()
	thenB := fn.FreshBlock()
	elseB := fn.FreshBlock()
	merge := fn.FreshBlock()

	allocID := fn.FreshValue()
	entry.Instrs = append(entry.Instrs, &ir.Alloca{Dest: allocID, ElemType: types.TypeInt32})
	entry.Terminator = &ir.BranchTerm{Condition: &ir.ConstBool{Value: true}, TrueTarget: thenB.ID, FalseTarget: elseB.ID}

	thenB.Instrs = append(thenB.Instrs, &ir.Store{Addr: ir.NewValueRef(allocID, types.TypeInt32), Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: 7}})
	thenB.Terminator = &ir.JumpTerm{Target: merge.ID}

	elseB.Instrs = append(elseB.Instrs, &ir.Store{Addr: ir.NewValueRef(allocID, types.TypeInt32), Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: 7}})
	elseB.Terminator = &ir.JumpTerm{Target: merge.ID}

	loadDest := fn.FreshValue()
	merge.Instrs = append(merge.Instrs, &ir.Load{Dest: loadDest, Addr: ir.NewValueRef(allocID, types.TypeInt32), ElemType: types.TypeInt32})
	merge.Terminator = &ir.ReturnValueTerm{Value: ir.NewValueRef(loadDest, types.TypeInt32)}

	return fn, merge.ID
}

func TestPromoteEliminatesTrivialPhiWhenBothArmsAgree(t *testing.T) {
	fn, mergeID := buildDiamondSameValue()
	fn = buildAndPromote(fn)

	merge := fn.BlockByID(mergeID)
	if len(merge.Phis) != 0 {
		t.Fatalf("expected the trivial phi to be eliminated, found %d", len(merge.Phis))
	}
	ret, ok := merge.Terminator.(*ir.ReturnValueTerm)
	if !ok {
		t.Fatalf("expected a return-value terminator, got %T", merge.Terminator)
	}
	c, ok := ret.Value.(*ir.ConstInt)
	if !ok || c.Value != 7 {
		t.Fatalf("expected the return to have collapsed to the constant 7, got %#v", ret.Value)
	}
}

// buildMergeWithPhi builds a two-predecessor merge block with an explicit
// phi already in place (as mem2reg would have left it), for exercising
// Destruct directly.
func buildMergeWithPhi() (fn *ir.Function, pred1, pred2, merge ir.BlockID, phiDest ir.ValueID) {
	fn = ir.NewFunction("f", nil, types.TypeInt32, nil)
	entry := fn.FreshBlock()
	p1 := fn.FreshBlock()
	p2 := fn.FreshBlock()
	m := fn.FreshBlock()

	entry.Terminator = &ir.BranchTerm{Condition: &ir.ConstBool{Value: true}, TrueTarget: p1.ID, FalseTarget: p2.ID}
	p1.Terminator = &ir.JumpTerm{Target: m.ID}
	p2.Terminator = &ir.JumpTerm{Target: m.ID}

	dest := fn.FreshValue()
	phi := &ir.Phi{Dest: dest, ElemType: types.TypeInt32}
	phi.SetIncomingFrom(p1.ID, &ir.ConstInt{ElemType: types.TypeInt32, Value: 1})
	phi.SetIncomingFrom(p2.ID, &ir.ConstInt{ElemType: types.TypeInt32, Value: 2})
	m.Phis = append(m.Phis, phi)
	m.Terminator = &ir.ReturnValueTerm{Value: ir.NewValueRef(dest, types.TypeInt32)}

	return fn, p1.ID, p2.ID, m.ID, dest
}

func TestDestructReplacesPhiWithCopiesInPredecessors(t *testing.T) {
	fn, pred1, pred2, mergeID, _ := buildMergeWithPhi()
	g := cfg.Build(fn)
	ssa.Destruct(fn, g)

	merge := fn.BlockByID(mergeID)
	if len(merge.Phis) != 0 {
		t.Fatalf("expected no phis remaining after destruction, got %d", len(merge.Phis))
	}

	for _, predID := range []ir.BlockID{pred1, pred2} {
		pred := fn.BlockByID(predID)
		if len(pred.Instrs) != 1 {
			t.Fatalf("expected exactly one copy inserted into %s, got %d", predID, len(pred.Instrs))
		}
		if _, ok := pred.Instrs[0].(*ir.Copy); !ok {
			t.Fatalf("expected a Copy instruction in %s, got %T", predID, pred.Instrs[0])
		}
	}
}

// buildSwapCycle builds two phis in a merge block whose incoming values
// from one predecessor swap each other's destinations, forcing the cycle-
// breaking path of sequentialize.
func buildSwapCycle() (fn *ir.Function, pred ir.BlockID, merge ir.BlockID) {
	fn = ir.NewFunction("f", nil, types.TypeInt32, nil)
	entry := fn.FreshBlock()
	loop := fn.FreshBlock()
	exit := fn.FreshBlock()

	entry.Terminator = &ir.JumpTerm{Target: loop.ID}

	aDest := fn.FreshValue()
	bDest := fn.FreshValue()
	phiA := &ir.Phi{Dest: aDest, ElemType: types.TypeInt32}
	phiB := &ir.Phi{Dest: bDest, ElemType: types.TypeInt32}
	phiA.SetIncomingFrom(entry.ID, &ir.ConstInt{ElemType: types.TypeInt32, Value: 0})
	phiB.SetIncomingFrom(entry.ID, &ir.ConstInt{ElemType: types.TypeInt32, Value: 1})
	// The back-edge swaps a and b.
	phiA.SetIncomingFrom(loop.ID, ir.NewValueRef(bDest, types.TypeInt32))
	phiB.SetIncomingFrom(loop.ID, ir.NewValueRef(aDest, types.TypeInt32))
	loop.Phis = append(loop.Phis, phiA, phiB)

	loop.Terminator = &ir.BranchTerm{Condition: &ir.ConstBool{Value: true}, TrueTarget: loop.ID, FalseTarget: exit.ID}
	exit.Terminator = &ir.ReturnValueTerm{Value: ir.NewValueRef(aDest, types.TypeInt32)}

	return fn, loop.ID, loop.ID
}

func TestDestructBreaksCycleWithOneTemporary(t *testing.T) {
	fn, _, mergeID := buildSwapCycle()
	g := cfg.Build(fn)
	nextBefore := fn.NextValue

	// The loop block is its own predecessor via the back-edge, and also
	// has 2 successors (itself and exit) while having 2 predecessors
	// (entry and itself) — a critical edge, so Destruct must split it
	// before placing the back-edge's copies.
	ssa.Destruct(fn, g)

	merge := fn.BlockByID(mergeID)
	if len(merge.Phis) != 0 {
		t.Fatalf("expected no phis remaining after destruction")
	}

	// Total copies: 2 independent ones for the entry edge (constants 0
	// and 1, no cycle) plus 3 for the back-edge's 2-cycle swap (one
	// temporary, two final assignments) = 5.
	var copies int
	var maxInOneBlock int
	for _, b := range fn.Blocks {
		n := 0
		for _, instr := range b.Instrs {
			if _, ok := instr.(*ir.Copy); ok {
				n++
			}
		}
		copies += n
		if n > maxInOneBlock {
			maxInOneBlock = n
		}
	}
	if copies != 5 {
		t.Fatalf("expected 5 total copies (2 independent + 3 cycle-broken), got %d", copies)
	}
	if maxInOneBlock != 3 {
		t.Fatalf("expected the cycle-broken edge to contribute exactly 3 copies to one block, got max %d", maxInOneBlock)
	}
	if fn.NextValue <= nextBefore {
		t.Fatalf("expected a fresh temporary value-id to have been allocated for cycle-breaking")
	}
}

// A load with no preceding store on any path promotes to the reserved
// undef sentinel (spec.md §4.4 step 3.4) rather than a nil operand, and
// Promote's own post-pass Verify catches its survival and panics with a
// diag.Diagnostic-carrying CodeMirUndefSurvived error (spec.md §7.2)
// instead of letting it silently reach the printer.
func TestPromoteReadBeforeAnyWriteProducesUndef(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.TypeInt32, nil)
	entry := fn.FreshBlock()

	allocID := fn.FreshValue()
	loadDest := fn.FreshValue()
	entry.Instrs = append(entry.Instrs,
		&ir.Alloca{Dest: allocID, ElemType: types.TypeInt32},
		&ir.Load{Dest: loadDest, Addr: ir.NewValueRef(allocID, types.TypeInt32), ElemType: types.TypeInt32},
	)
	entry.Terminator = &ir.ReturnValueTerm{Value: ir.NewValueRef(loadDest, types.TypeInt32)}

	fn.Seal()
	g := cfg.Build(fn)
	d := cfg.Compute(g)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected Promote to panic on undef survival, got no panic")
		}
		ierr, ok := r.(*diag.InternalError)
		if !ok {
			t.Fatalf("expected a *diag.InternalError panic, got %#v", r)
		}
		if ierr.Diagnostic.Code != diag.CodeMirUndefSurvived {
			t.Fatalf("expected code %q, got %q", diag.CodeMirUndefSurvived, ierr.Diagnostic.Code)
		}
	}()
	ssa.Promote(fn, g, d)
}
