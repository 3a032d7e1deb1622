package ir

// RewriteOperands is the single source of truth for which fields of each
// instruction kind are operands (spec.md §4.1). Given an instruction and a
// substitution function over operands, it returns a new instruction with
// every operand — and only operands — passed through subst; fields that
// are not operands (types, field names, the instruction's own
// result id) pass through unchanged. subst takes a whole Operand rather
// than a bare value-id so that a pass (mem2reg's rename, in particular)
// can replace a reference to a promoted allocation's load with either
// another value reference or, when the reaching definition was itself a
// constant, a constant operand directly — no fresh value-id required.
// Every later pass that needs to substitute values (SSA rename,
// trivial-phi elimination, SSA destruction) must go through this helper
// rather than hand-rolling a type switch of its own.
func RewriteOperands(instr Instruction, subst func(Operand) Operand) Instruction {
	switch in := instr.(type) {
	case *Alloca:
		return in

	case *Load:
		return &Load{Dest: in.Dest, Addr: substOperand(in.Addr, subst), ElemType: in.ElemType}

	case *Store:
		return &Store{Addr: substOperand(in.Addr, subst), Value: substOperand(in.Value, subst)}

	case *FieldAddr:
		return &FieldAddr{Dest: in.Dest, Base: substOperand(in.Base, subst), FieldName: in.FieldName, FieldType: in.FieldType}

	case *ElemAddr:
		return &ElemAddr{Dest: in.Dest, Base: substOperand(in.Base, subst), Index: substOperand(in.Index, subst), ElemType: in.ElemType}

	case *BinOp:
		return &BinOp{Dest: in.Dest, Op: in.Op, Left: substOperand(in.Left, subst), Right: substOperand(in.Right, subst), ResultType: in.ResultType, OperandType: in.OperandType}

	case *UnOp:
		return &UnOp{Dest: in.Dest, Op: in.Op, Elem: substOperand(in.Elem, subst), Type: in.Type}

	case *Call:
		return &Call{Dest: in.Dest, Callee: in.Callee, Args: substOperands(in.Args, subst), ReturnType: in.ReturnType}

	case *ExternCall:
		return &ExternCall{Dest: in.Dest, Callee: in.Callee, Args: substOperands(in.Args, subst), ReturnType: in.ReturnType}

	case *ThrowsCall:
		return &ThrowsCall{
			Dest:        in.Dest,
			Callee:      in.Callee,
			Args:        substOperands(in.Args, subst),
			Out:         substOperand(in.Out, subst),
			Err:         substOperand(in.Err, subst),
			SuccessType: in.SuccessType,
		}

	case *Cast:
		return &Cast{Dest: in.Dest, Value: substOperand(in.Value, subst), Target: in.Target}

	case *SizeOfInstr:
		return in

	case *Destroy:
		return &Destroy{Addr: substOperand(in.Addr, subst), ElemType: in.ElemType}

	case *OnCopy:
		return &OnCopy{Dest: in.Dest, Value: substOperand(in.Value, subst), ElemType: in.ElemType}

	case *Move:
		return &Move{Dest: in.Dest, Source: substOperand(in.Source, subst), ElemType: in.ElemType}

	case *BoundsCheck:
		return &BoundsCheck{Index: substOperand(in.Index, subst), Length: substOperand(in.Length, subst)}

	case *NullCheck:
		return &NullCheck{Ptr: substOperand(in.Ptr, subst)}

	case *Assert:
		return &Assert{Condition: substOperand(in.Condition, subst), Message: substOperand(in.Message, subst)}

	case *Require:
		return &Require{Condition: substOperand(in.Condition, subst), Message: substOperand(in.Message, subst)}

	case *Copy:
		return &Copy{Dest: in.Dest, Src: substOperand(in.Src, subst)}

	default:
		return instr
	}
}

// RewriteTerminatorOperands is RewriteOperands' symmetric counterpart for
// terminators (spec.md §4.1).
func RewriteTerminatorOperands(term Terminator, subst func(Operand) Operand) Terminator {
	switch t := term.(type) {
	case *ReturnValueTerm:
		return &ReturnValueTerm{Value: substOperand(t.Value, subst)}

	case *ReturnVoidTerm:
		return t

	case *JumpTerm:
		return t

	case *BranchTerm:
		return &BranchTerm{Condition: substOperand(t.Condition, subst), TrueTarget: t.TrueTarget, FalseTarget: t.FalseTarget}

	case *SwitchTerm:
		cases := make([]SwitchCaseTarget, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = SwitchCaseTarget{Value: substOperand(c.Value, subst), Target: c.Target}
		}
		return &SwitchTerm{Subject: substOperand(t.Subject, subst), Cases: cases, Default: t.Default}

	case *UnreachableTerm:
		return t

	default:
		return term
	}
}

// RewriteOperand applies subst to a single bare operand — the same rule
// RewriteOperands applies per-field, exposed directly for callers (such as
// internal/ssa's phi handling) that hold an Operand rather than a whole
// Instruction.
func RewriteOperand(op Operand, subst func(Operand) Operand) Operand {
	return substOperand(op, subst)
}

func substOperand(op Operand, subst func(Operand) Operand) Operand {
	if op == nil {
		return nil
	}
	return subst(op)
}

func substOperands(ops []Operand, subst func(Operand) Operand) []Operand {
	if ops == nil {
		return nil
	}
	out := make([]Operand, len(ops))
	for i, op := range ops {
		out[i] = substOperand(op, subst)
	}
	return out
}

// IdentityOperand is the no-op operand substitution; RewriteOperands/
// RewriteTerminatorOperands with IdentityOperand must be the identity on
// every instruction and terminator (spec.md §8 round-trip law).
func IdentityOperand(op Operand) Operand { return op }

// RemapValueIDs adapts a bare value-id remapping (e.g. a simple renumbering
// pass has no need to swap an operand's kind, only its id) into the
// Operand-level substitution RewriteOperands expects: a *ValueRef has its
// id remapped, any other operand kind (a constant) passes through
// unchanged.
func RemapValueIDs(remap func(ValueID) ValueID) func(Operand) Operand {
	return func(op Operand) Operand {
		ref, ok := op.(*ValueRef)
		if !ok {
			return op
		}
		newID := remap(ref.ID)
		if newID == ref.ID {
			return ref
		}
		return &ValueRef{ID: newID, ElemType: ref.ElemType}
	}
}

// Identity is the no-op value-id mapping, for use with RemapValueIDs.
func Identity(id ValueID) ValueID { return id }
