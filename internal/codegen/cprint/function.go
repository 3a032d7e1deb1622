package cprint

import (
	"fmt"
	"strings"

	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// printFunction emits one function's complete C definition: its
// signature, every value-id's hoisted local declaration (so goto may
// freely jump across what would otherwise be an initializer's scope),
// then every block as a label followed by its instructions and
// terminator (spec.md §4.6).
func (p *Printer) printFunction(fn *ir.Function) error {
	paramTypes := make([]ir.Type, len(fn.Params))
	paramNames := make([]string, len(fn.Params))
	for i, prm := range fn.Params {
		paramTypes[i] = prm.Type
		paramNames[i] = valueName(prm.ID)
	}
	sig, err := p.functionSignature(fn.Name, paramTypes, fn.ReturnType, paramNames)
	if err != nil {
		return err
	}
	p.writeLine(sig + " {")

	if err := p.printLocals(fn); err != nil {
		return err
	}

	for _, b := range fn.Blocks {
		if len(b.Phis) != 0 {
			return internalError("function %q reached the printer with an unresolved phi in %s", fn.Name, blockLabel(b.ID))
		}
		p.writeLine(fmt.Sprintf("%s:;", blockLabel(b.ID)))
		for _, instr := range b.Instrs {
			if err := p.printInstr(instr); err != nil {
				return err
			}
		}
		if b.Terminator == nil {
			return internalError("function %q block %s has no terminator", fn.Name, blockLabel(b.ID))
		}
		if err := p.printTerminator(b.Terminator); err != nil {
			return err
		}
	}

	p.writeLine("}")
	p.writeLine("")
	return nil
}

// printLocals hoists one declaration per distinct result value-id. A
// value-id can be the Result() of more than one instruction after SSA
// destruction — every Copy sequentializing one phi's incoming edges
// targets the same destination from a different predecessor block — so
// the first instruction to define an id wins its declaration and later
// ones are plain reassignments (spec.md §4.5).
func (p *Printer) printLocals(fn *ir.Function) error {
	declared := make(map[ir.ValueID]bool)
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			dest := instr.Result()
			if dest == ir.UndefValue || declared[dest] {
				continue
			}
			declared[dest] = true
			decl, err := p.localDecl(instr)
			if err != nil {
				return err
			}
			p.writeLine("    " + decl)
		}
	}
	return nil
}

// localDecl renders the hoisted C declaration for one instruction's
// result value-id. Alloca gets two declarations (backing storage plus the
// pointer value it yields, spec.md §4.1's "a stack-allocation result");
// Copy's declared type follows its source operand's type since ir.Copy
// itself carries none; everything else declares straight from its own
// result-type field.
func (p *Printer) localDecl(instr ir.Instruction) (string, error) {
	name := valueName(instr.Result())
	switch in := instr.(type) {
	case *ir.Alloca:
		if arr, ok := in.ElemType.(*types.Array); ok {
			elem, err := p.cType(arr.Elem)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s %s_storage[%d]; %s* %s = %s_storage;", elem, name, arr.Len, elem, name, name), nil
		}
		elem, err := p.cType(in.ElemType)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s_storage; %s* %s = &%s_storage;", elem, name, elem, name, name), nil
	case *ir.Copy:
		typ, err := p.cType(in.Src.Type())
		if err != nil {
			return "", err
		}
		return typ + " " + name + ";", nil
	default:
		t, err := instrResultType(instr)
		if err != nil {
			return "", err
		}
		decl, err := p.declareVar(name, t)
		if err != nil {
			return "", err
		}
		return decl + ";", nil
	}
}

// instrResultType returns the IR type of the value an instruction defines,
// for every kind except Alloca (handled specially in localDecl: its
// result is always a pointer, but to storage localDecl itself owns) and
// Copy (typed from its source operand instead).
func instrResultType(instr ir.Instruction) (ir.Type, error) {
	switch in := instr.(type) {
	case *ir.Load:
		return in.ElemType, nil
	case *ir.FieldAddr:
		return &types.Pointer{Elem: in.FieldType}, nil
	case *ir.ElemAddr:
		return &types.Pointer{Elem: in.ElemType}, nil
	case *ir.BinOp:
		return in.ResultType, nil
	case *ir.UnOp:
		return in.Type, nil
	case *ir.Call:
		return in.ReturnType, nil
	case *ir.ExternCall:
		return in.ReturnType, nil
	case *ir.ThrowsCall:
		return types.TypeInt32, nil
	case *ir.Cast:
		return in.Target, nil
	case *ir.SizeOfInstr:
		return types.TypeUInt64, nil
	case *ir.OnCopy:
		return in.ElemType, nil
	case *ir.Move:
		return in.ElemType, nil
	default:
		return nil, internalError("instruction %T defines a value but has no printable result type", instr)
	}
}

func (p *Printer) printInstr(instr ir.Instruction) error {
	switch in := instr.(type) {
	case *ir.Alloca:
		return nil // fully expressed by its hoisted declaration

	case *ir.Load:
		addr, err := p.operand(in.Addr)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %s = *%s;", valueName(in.Dest), addr))
		return nil

	case *ir.Store:
		addr, err := p.operand(in.Addr)
		if err != nil {
			return err
		}
		val, err := p.operand(in.Value)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    *%s = %s;", addr, val))
		return nil

	case *ir.FieldAddr:
		base, err := p.operand(in.Base)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %s = &%s->%s;", valueName(in.Dest), base, sanitizeName(in.FieldName)))
		return nil

	case *ir.ElemAddr:
		base, err := p.operand(in.Base)
		if err != nil {
			return err
		}
		idx, err := p.operand(in.Index)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %s = &%s[%s];", valueName(in.Dest), base, idx))
		return nil

	case *ir.BinOp:
		return p.printBinOp(in)

	case *ir.UnOp:
		elem, err := p.operand(in.Elem)
		if err != nil {
			return err
		}
		sym, err := unOpSymbol(in.Op)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %s = %s%s;", valueName(in.Dest), sym, elem))
		return nil

	case *ir.Call:
		return p.printCallLike(in.Dest, in.Callee, in.Args)

	case *ir.ExternCall:
		return p.printCallLike(in.Dest, in.Callee, in.Args)

	case *ir.ThrowsCall:
		return p.printThrowsCall(in)

	case *ir.Cast:
		val, err := p.operand(in.Value)
		if err != nil {
			return err
		}
		typ, err := p.cType(in.Target)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %s = (%s)%s;", valueName(in.Dest), typ, val))
		return nil

	case *ir.SizeOfInstr:
		typ, err := p.cType(in.Of)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %s = sizeof(%s);", valueName(in.Dest), typ))
		return nil

	case *ir.Destroy:
		addr, err := p.operand(in.Addr)
		if err != nil {
			return err
		}
		call, err := destroyCall(in.ElemType, addr)
		if err != nil {
			return err
		}
		p.writeLine("    " + call + ";")
		return nil

	case *ir.OnCopy:
		val, err := p.operand(in.Value)
		if err != nil {
			return err
		}
		call, err := onCopyExpr(in.ElemType, val)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %s = %s;", valueName(in.Dest), call))
		return nil

	case *ir.Move:
		src, err := p.operand(in.Source)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %s = %s;", valueName(in.Dest), src))
		return nil

	case *ir.BoundsCheck:
		idx, err := p.operand(in.Index)
		if err != nil {
			return err
		}
		length, err := p.operand(in.Length)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %sbounds_check(%s, %s);", runtimePrefix, idx, length))
		return nil

	case *ir.NullCheck:
		ptr, err := p.operand(in.Ptr)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %snull_check(%s);", runtimePrefix, ptr))
		return nil

	case *ir.Assert:
		cond, err := p.operand(in.Condition)
		if err != nil {
			return err
		}
		msg, err := p.operand(in.Message)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %sassert(%s, %s);", runtimePrefix, cond, msg))
		return nil

	case *ir.Require:
		cond, err := p.operand(in.Condition)
		if err != nil {
			return err
		}
		msg, err := p.operand(in.Message)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %srequire(%s, %s);", runtimePrefix, cond, msg))
		return nil

	case *ir.Copy:
		src, err := p.operand(in.Src)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    %s = %s;", valueName(in.Dest), src))
		return nil

	default:
		return internalError("unhandled instruction kind %T reached the printer", instr)
	}
}

// printBinOp special-cases string equality/inequality, which the checker
// lowers to a plain BinOp (internal/lower's lowerInfixExpr) but which C
// cannot compare with a bare operator since a string is an opaque runtime
// struct — everything else is a direct infix expression.
func (p *Printer) printBinOp(in *ir.BinOp) error {
	left, err := p.operand(in.Left)
	if err != nil {
		return err
	}
	right, err := p.operand(in.Right)
	if err != nil {
		return err
	}
	if isStringType(in.EffectiveOperandType()) && (in.Op == ir.Eq || in.Op == ir.Neq) {
		call := fmt.Sprintf("%sstring_eq(%s, %s)", runtimePrefix, left, right)
		if in.Op == ir.Neq {
			call = "!" + call
		}
		p.writeLine(fmt.Sprintf("    %s = %s;", valueName(in.Dest), call))
		return nil
	}
	sym, err := binOpSymbol(in.Op)
	if err != nil {
		return err
	}
	p.writeLine(fmt.Sprintf("    %s = %s %s %s;", valueName(in.Dest), left, sym, right))
	return nil
}

func (p *Printer) printCallLike(dest ir.ValueID, callee string, args []ir.Operand) error {
	argStrs := make([]string, len(args))
	for i, a := range args {
		s, err := p.operand(a)
		if err != nil {
			return err
		}
		argStrs[i] = s
	}
	call := fmt.Sprintf("%s(%s)", sanitizeName(callee), strings.Join(argStrs, ", "))
	if dest == ir.UndefValue {
		p.writeLine("    " + call + ";")
		return nil
	}
	p.writeLine(fmt.Sprintf("    %s = %s;", valueName(dest), call))
	return nil
}

// printThrowsCall appends the __out/__err buffer arguments after the
// callee's declared argument list, matching the transformed signature
// internal/lower's Lower builds for a throwing function (spec.md §4.2.3).
func (p *Printer) printThrowsCall(in *ir.ThrowsCall) error {
	argStrs := make([]string, 0, len(in.Args)+2)
	for _, a := range in.Args {
		s, err := p.operand(a)
		if err != nil {
			return err
		}
		argStrs = append(argStrs, s)
	}
	out, err := p.operand(in.Out)
	if err != nil {
		return err
	}
	errOperand, err := p.operand(in.Err)
	if err != nil {
		return err
	}
	argStrs = append(argStrs, out, errOperand)
	p.writeLine(fmt.Sprintf("    %s = %s(%s);", valueName(in.Dest), sanitizeName(in.Callee), strings.Join(argStrs, ", ")))
	return nil
}

func (p *Printer) printTerminator(term ir.Terminator) error {
	switch t := term.(type) {
	case *ir.ReturnValueTerm:
		val, err := p.operand(t.Value)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    return %s;", val))
		return nil

	case *ir.ReturnVoidTerm:
		p.writeLine("    return;")
		return nil

	case *ir.JumpTerm:
		p.writeLine(fmt.Sprintf("    goto %s;", blockLabel(t.Target)))
		return nil

	case *ir.BranchTerm:
		cond, err := p.operand(t.Condition)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    if (%s) goto %s; else goto %s;", cond, blockLabel(t.TrueTarget), blockLabel(t.FalseTarget)))
		return nil

	case *ir.SwitchTerm:
		subj, err := p.operand(t.Subject)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("    switch (%s) {", subj))
		for _, c := range t.Cases {
			val, err := p.operand(c.Value)
			if err != nil {
				return err
			}
			p.writeLine(fmt.Sprintf("    case %s: goto %s;", val, blockLabel(c.Target)))
		}
		p.writeLine(fmt.Sprintf("    default: goto %s;", blockLabel(t.Default)))
		p.writeLine("    }")
		return nil

	case *ir.UnreachableTerm:
		p.writeLine(fmt.Sprintf("    %spanic(\"unreachable\");", runtimePrefix))
		return nil

	default:
		return internalError("unhandled terminator kind %T reached the printer", term)
	}
}
