package ir_test

import (
	"testing"

	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

func TestFunctionFreshValueAndBlock(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.TypeInt32, nil)
	v0 := fn.FreshValue()
	v1 := fn.FreshValue()
	if v0 == v1 {
		t.Fatalf("expected distinct value ids, got %s and %s", v0, v1)
	}

	b0 := fn.FreshBlock()
	b1 := fn.FreshBlock()
	if b0.ID == b1.ID {
		t.Fatalf("expected distinct block ids, got %s and %s", b0.ID, b1.ID)
	}
	if fn.Entry() != b0 {
		t.Fatalf("expected first block to be entry")
	}
}

func TestSealDefaultsUnterminatedLastBlockToReturnVoid(t *testing.T) {
	fn := ir.NewFunction("f", nil, nil, nil)
	fn.FreshBlock()
	fn.Seal()

	if _, ok := fn.Blocks[0].Terminator.(*ir.ReturnVoidTerm); !ok {
		t.Fatalf("expected return-void terminator, got %T", fn.Blocks[0].Terminator)
	}
}

func TestSealDefaultsUnterminatedLastBlockToSuccessTagForThrowsFunction(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.TypeInt32, []ir.Type{types.TypeInt32})
	fn.FreshBlock()
	fn.Seal()

	term, ok := fn.Blocks[0].Terminator.(*ir.ReturnValueTerm)
	if !ok {
		t.Fatalf("expected return-value terminator, got %T", fn.Blocks[0].Terminator)
	}
	c, ok := term.Value.(*ir.ConstInt)
	if !ok || c.Value != 0 {
		t.Fatalf("expected success tag constant 0, got %#v", term.Value)
	}
}

func TestSealDefaultsEarlierUnterminatedBlockToUnreachable(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.TypeVoid, nil)
	first := fn.FreshBlock()
	second := fn.FreshBlock()
	second.Terminator = &ir.ReturnVoidTerm{}

	fn.Seal()

	if _, ok := first.Terminator.(*ir.UnreachableTerm); !ok {
		t.Fatalf("expected unreachable terminator on non-final block, got %T", first.Terminator)
	}
}

func TestSwitchTermSuccessorsIncludesDefault(t *testing.T) {
	term := &ir.SwitchTerm{
		Subject: &ir.ConstInt{ElemType: types.TypeInt32, Value: 1},
		Cases: []ir.SwitchCaseTarget{
			{Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: 1}, Target: 1},
			{Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: 2}, Target: 2},
		},
		Default: 3,
	}
	succs := term.Successors()
	if len(succs) != 3 || succs[2] != 3 {
		t.Fatalf("expected 3 successors ending in default block, got %v", succs)
	}
}

func TestPhiIncomingFromAndSetIncomingFrom(t *testing.T) {
	v := func(id ir.ValueID) *ir.ValueRef { return ir.NewValueRef(id, types.TypeInt32) }

	p := &ir.Phi{Dest: 5, ElemType: types.TypeInt32}
	p.SetIncomingFrom(0, v(1))
	p.SetIncomingFrom(1, v(2))
	p.SetIncomingFrom(0, v(9))

	got, ok := p.IncomingFrom(0)
	if !ok || got.(*ir.ValueRef).ID != 9 {
		t.Fatalf("expected updated incoming value 9, got %v (ok=%v)", got, ok)
	}
	if len(p.Incoming) != 2 {
		t.Fatalf("expected 2 distinct incomings, got %d", len(p.Incoming))
	}
}
