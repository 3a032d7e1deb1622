package ir_test

import (
	"reflect"
	"testing"

	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// TestRewriteOperandsIdentity exercises the round-trip law of spec.md §8:
// operand-rewrite with the identity mapping is the identity on every
// instruction and terminator kind.
func TestRewriteOperandsIdentity(t *testing.T) {
	v := func(id ir.ValueID) *ir.ValueRef { return ir.NewValueRef(id, types.TypeInt32) }

	instrs := []ir.Instruction{
		&ir.Alloca{Dest: 1, ElemType: types.TypeInt32},
		&ir.Load{Dest: 2, Addr: v(1), ElemType: types.TypeInt32},
		&ir.Store{Addr: v(1), Value: v(2)},
		&ir.FieldAddr{Dest: 3, Base: v(1), FieldName: "x", FieldType: types.TypeInt32},
		&ir.ElemAddr{Dest: 4, Base: v(1), Index: v(2), ElemType: types.TypeInt32},
		&ir.BinOp{Dest: 5, Op: ir.Add, Left: v(2), Right: v(3), ResultType: types.TypeInt32},
		&ir.UnOp{Dest: 6, Op: ir.Neg, Elem: v(2), Type: types.TypeInt32},
		&ir.Call{Dest: 7, Callee: "f", Args: []ir.Operand{v(2)}, ReturnType: types.TypeInt32},
		&ir.ExternCall{Dest: 8, Callee: "g", Args: []ir.Operand{v(2)}, ReturnType: types.TypeInt32},
		&ir.ThrowsCall{Dest: 9, Callee: "h", Args: []ir.Operand{v(2)}, Out: v(1), Err: v(2), SuccessType: types.TypeInt32},
		&ir.Cast{Dest: 10, Value: v(2), Target: types.TypeInt64},
		&ir.SizeOfInstr{Dest: 11, Of: types.TypeInt32},
		&ir.Destroy{Addr: v(1), ElemType: types.TypeString},
		&ir.OnCopy{Dest: 12, Value: v(2), ElemType: types.TypeString},
		&ir.Move{Dest: 13, Source: v(2), ElemType: types.TypeInt32},
		&ir.BoundsCheck{Index: v(2), Length: v(3)},
		&ir.NullCheck{Ptr: v(1)},
		&ir.Assert{Condition: v(2), Message: v(3)},
		&ir.Require{Condition: v(2), Message: v(3)},
		&ir.Copy{Dest: 14, Src: v(2)},
	}

	for _, instr := range instrs {
		got := ir.RewriteOperands(instr, ir.IdentityOperand)
		if !reflect.DeepEqual(got, instr) {
			t.Errorf("identity rewrite changed %T: got %+v, want %+v", instr, got, instr)
		}
	}
}

func TestRewriteTerminatorOperandsIdentity(t *testing.T) {
	v := func(id ir.ValueID) *ir.ValueRef { return ir.NewValueRef(id, types.TypeBool) }

	terms := []ir.Terminator{
		&ir.ReturnValueTerm{Value: v(1)},
		&ir.ReturnVoidTerm{},
		&ir.JumpTerm{Target: 2},
		&ir.BranchTerm{Condition: v(1), TrueTarget: 2, FalseTarget: 3},
		&ir.SwitchTerm{
			Subject: v(1),
			Cases:   []ir.SwitchCaseTarget{{Value: &ir.ConstInt{ElemType: types.TypeInt32, Value: 1}, Target: 2}},
			Default: 3,
		},
		&ir.UnreachableTerm{},
	}

	for _, term := range terms {
		got := ir.RewriteTerminatorOperands(term, ir.IdentityOperand)
		if !reflect.DeepEqual(got, term) {
			t.Errorf("identity rewrite changed %T: got %+v, want %+v", term, got, term)
		}
	}
}

func TestRewriteOperandsSubstitutesOnlyOperands(t *testing.T) {
	v := func(id ir.ValueID) *ir.ValueRef { return ir.NewValueRef(id, types.TypeInt32) }
	instr := &ir.BinOp{Dest: 1, Op: ir.Add, Left: v(2), Right: v(3), ResultType: types.TypeInt32}

	remap := ir.RemapValueIDs(func(id ir.ValueID) ir.ValueID {
		if id == 2 {
			return 20
		}
		return id
	})
	got := ir.RewriteOperands(instr, remap).(*ir.BinOp)

	if got.Dest != 1 {
		t.Fatalf("Dest must not be touched by operand remap, got %s", got.Dest)
	}
	if got.Left.(*ir.ValueRef).ID != 20 {
		t.Fatalf("expected Left remapped to 20, got %s", got.Left.(*ir.ValueRef).ID)
	}
	if got.Right.(*ir.ValueRef).ID != 3 {
		t.Fatalf("expected Right left unchanged at 3, got %s", got.Right.(*ir.ValueRef).ID)
	}
}
