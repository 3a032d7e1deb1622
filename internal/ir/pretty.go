package ir

import (
	"fmt"
	"strings"
)

// PrettyPrint returns a human-readable textual rendering of a module.
// This is test-only tooling (the printer contract of spec.md §4.6 is the
// only format the Lowerer's output must support in production); it exists
// so the construction, promotion, and destruction passes can be exercised
// and asserted on without a C backend.
func (m *Module) PrettyPrint() string {
	var b strings.Builder
	for i, fn := range m.Funcs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fn.PrettyPrint())
	}
	return b.String()
}

// PrettyPrint returns a human-readable rendering of a function.
func (f *Function) PrettyPrint() string {
	var b strings.Builder

	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, typeString(p.Type))
	}
	b.WriteString(fmt.Sprintf("fn %s(%s)", f.Name, strings.Join(params, ", ")))
	if len(f.Throws) > 0 {
		throws := make([]string, len(f.Throws))
		for i, t := range f.Throws {
			throws[i] = typeString(t)
		}
		b.WriteString(" throws " + strings.Join(throws, ", "))
	}
	b.WriteString(" -> " + typeString(f.ReturnType) + " {\n")

	for _, block := range f.Blocks {
		b.WriteString(block.PrettyPrint())
	}

	b.WriteString("}")
	return b.String()
}

// PrettyPrint returns a human-readable rendering of a basic block.
func (b *Block) PrettyPrint() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s:\n", b.ID))

	for _, phi := range b.Phis {
		sb.WriteString("    " + phi.PrettyPrint() + "\n")
	}
	for _, instr := range b.Instrs {
		sb.WriteString("    " + prettyPrintInstr(instr) + "\n")
	}
	if b.Terminator != nil {
		sb.WriteString("    " + prettyPrintTerminator(b.Terminator) + "\n")
	}
	return sb.String()
}

// PrettyPrint renders a phi node as `%dest = phi <type> [from1: v1, from2: v2]`.
func (p *Phi) PrettyPrint() string {
	incomings := make([]string, len(p.Incoming))
	for i, in := range p.Incoming {
		incomings[i] = fmt.Sprintf("%s: %s", in.From, operandString(in.Value))
	}
	return fmt.Sprintf("%s = phi %s [%s]", p.Dest, typeString(p.ElemType), strings.Join(incomings, ", "))
}

func prettyPrintInstr(instr Instruction) string {
	switch in := instr.(type) {
	case *Alloca:
		return fmt.Sprintf("%s = alloca %s", in.Dest, typeString(in.ElemType))
	case *Load:
		return fmt.Sprintf("%s = load %s, %s", in.Dest, typeString(in.ElemType), operandString(in.Addr))
	case *Store:
		return fmt.Sprintf("store %s, %s", operandString(in.Value), operandString(in.Addr))
	case *FieldAddr:
		return fmt.Sprintf("%s = field_addr %s.%s", in.Dest, operandString(in.Base), in.FieldName)
	case *ElemAddr:
		return fmt.Sprintf("%s = elem_addr %s[%s]", in.Dest, operandString(in.Base), operandString(in.Index))
	case *BinOp:
		return fmt.Sprintf("%s = %s %s, %s", in.Dest, in.Op, operandString(in.Left), operandString(in.Right))
	case *UnOp:
		return fmt.Sprintf("%s = %s %s", in.Dest, in.Op, operandString(in.Elem))
	case *Call:
		return fmt.Sprintf("%s = call %s(%s)", resultString(in.Dest), in.Callee, operandsString(in.Args))
	case *ExternCall:
		return fmt.Sprintf("%s = extern_call %s(%s)", resultString(in.Dest), in.Callee, operandsString(in.Args))
	case *ThrowsCall:
		return fmt.Sprintf("%s = throws_call %s(%s) out=%s err=%s", in.Dest, in.Callee, operandsString(in.Args), operandString(in.Out), operandString(in.Err))
	case *Cast:
		return fmt.Sprintf("%s = cast %s to %s", in.Dest, operandString(in.Value), typeString(in.Target))
	case *SizeOfInstr:
		return fmt.Sprintf("%s = sizeof(%s)", in.Dest, typeString(in.Of))
	case *Destroy:
		return fmt.Sprintf("destroy %s", operandString(in.Addr))
	case *OnCopy:
		return fmt.Sprintf("%s = oncopy %s", in.Dest, operandString(in.Value))
	case *Move:
		return fmt.Sprintf("%s = move %s", in.Dest, operandString(in.Source))
	case *BoundsCheck:
		return fmt.Sprintf("bounds_check %s, %s", operandString(in.Index), operandString(in.Length))
	case *NullCheck:
		return fmt.Sprintf("null_check %s", operandString(in.Ptr))
	case *Assert:
		return fmt.Sprintf("assert %s, %s", operandString(in.Condition), operandString(in.Message))
	case *Require:
		return fmt.Sprintf("require %s, %s", operandString(in.Condition), operandString(in.Message))
	case *Copy:
		return fmt.Sprintf("%s = copy %s", in.Dest, operandString(in.Src))
	default:
		return fmt.Sprintf("<?instr:%T>", instr)
	}
}

func prettyPrintTerminator(term Terminator) string {
	switch t := term.(type) {
	case *ReturnValueTerm:
		return fmt.Sprintf("return %s", operandString(t.Value))
	case *ReturnVoidTerm:
		return "return"
	case *JumpTerm:
		return fmt.Sprintf("jump %s", t.Target)
	case *BranchTerm:
		return fmt.Sprintf("branch %s, %s, %s", operandString(t.Condition), t.TrueTarget, t.FalseTarget)
	case *SwitchTerm:
		cases := make([]string, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = fmt.Sprintf("%s: %s", operandString(c.Value), c.Target)
		}
		return fmt.Sprintf("switch %s [%s] default %s", operandString(t.Subject), strings.Join(cases, ", "), t.Default)
	case *UnreachableTerm:
		return "unreachable"
	default:
		return fmt.Sprintf("<?terminator:%T>", term)
	}
}

func resultString(id ValueID) string {
	if id == UndefValue {
		return "_"
	}
	return id.String()
}

func operandString(op Operand) string {
	switch o := op.(type) {
	case *ValueRef:
		return o.ID.String()
	case *ConstInt:
		return fmt.Sprintf("%d", o.Value)
	case *ConstFloat:
		return fmt.Sprintf("%g", o.Value)
	case *ConstBool:
		if o.Value {
			return "true"
		}
		return "false"
	case *ConstString:
		return fmt.Sprintf("%q", o.Value)
	case *ConstNullPtr:
		return "null"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<?operand:%T>", op)
	}
}

func operandsString(ops []Operand) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = operandString(op)
	}
	return strings.Join(parts, ", ")
}

func typeString(t Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}
