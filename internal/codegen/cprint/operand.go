package cprint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// valueName renders an SSA value-id as a C identifier. Every value-id,
// parameter or instruction result alike, becomes v<id> — the Lowerer's
// naming freedom stops at mangled function/global names (spec.md §4.6);
// a temporary's number is not itself a mangle the printer must honor. It is
// called for parameters, destinations and value-ref operands alike;
// operand rejects ir.UndefValue before it gets here.
func valueName(id ir.ValueID) string {
	return fmt.Sprintf("v%d", int64(id))
}

func blockLabel(id ir.BlockID) string {
	return fmt.Sprintf("bb%d", int64(id))
}

func (p *Printer) operand(op ir.Operand) (string, error) {
	switch o := op.(type) {
	case nil:
		return "", internalError("nil operand reached the printer")
	case *ir.ValueRef:
		if o.ID == ir.UndefValue {
			return "", internalError("undef value of type %s reached the printer (read before any write)", o.ElemType)
		}
		return valueName(o.ID), nil
	case *ir.ConstInt:
		return fmt.Sprintf("%d", o.Value), nil
	case *ir.ConstFloat:
		return formatFloat(o.Value), nil
	case *ir.ConstBool:
		if o.Value {
			return "true", nil
		}
		return "false", nil
	case *ir.ConstString:
		return fmt.Sprintf("%sstring_literal(%q)", runtimePrefix, o.Value), nil
	case *ir.ConstNullPtr:
		return "NULL", nil
	default:
		return "", internalError("unhandled operand kind %T reached the printer", op)
	}
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func isStringType(t ir.Type) bool {
	prim, ok := t.(*types.Primitive)
	return ok && prim.Kind == types.Str
}

func binOpSymbol(op ir.BinOpKind) (string, error) {
	switch op {
	case ir.Add:
		return "+", nil
	case ir.Sub:
		return "-", nil
	case ir.Mul:
		return "*", nil
	case ir.Div:
		return "/", nil
	case ir.Mod:
		return "%", nil
	case ir.Eq:
		return "==", nil
	case ir.Neq:
		return "!=", nil
	case ir.Lt:
		return "<", nil
	case ir.Gt:
		return ">", nil
	case ir.Lte:
		return "<=", nil
	case ir.Gte:
		return ">=", nil
	case ir.And:
		return "&&", nil
	case ir.Or:
		return "||", nil
	case ir.BitAnd:
		return "&", nil
	case ir.BitOr:
		return "|", nil
	case ir.BitXor:
		return "^", nil
	case ir.Shl:
		return "<<", nil
	case ir.Shr:
		return ">>", nil
	default:
		return "", internalError("unhandled binary operator %q reached the printer", op)
	}
}

func unOpSymbol(op ir.UnOpKind) (string, error) {
	switch op {
	case ir.Neg:
		return "-", nil
	case ir.Not:
		return "!", nil
	case ir.BitNot:
		return "~", nil
	default:
		return "", internalError("unhandled unary operator %q reached the printer", op)
	}
}

// destroyCall renders the destructor invocation for a lifecycle-bearing
// type: the runtime's string_destroy for a string, or the struct's
// synthesized ___destroy hook (spec.md §4.2.2, internal/lower's
// synthesizeDestroy) for a struct.
func destroyCall(t ir.Type, addr string) (string, error) {
	switch tt := t.(type) {
	case *types.Primitive:
		if tt.Kind == types.Str {
			return fmt.Sprintf("%sstring_destroy(%s)", runtimePrefix, addr), nil
		}
		return "", internalError("destroy of non-lifecycle primitive %s reached the printer", tt.Kind)
	case *types.Struct:
		return fmt.Sprintf("%s(%s)", sanitizeName(tt.Name+"___destroy"), addr), nil
	default:
		return "", internalError("unsupported destroy element type %T reached the printer", t)
	}
}

// onCopyExpr renders the copy-hook invocation for a lifecycle-bearing
// value: the runtime's string_copy for a string, or the struct's
// synthesized ___oncopy hook for a struct — which takes its argument by
// address and returns a pointer, so valueExpr (always a plain local
// identifier here, never a sub-expression) is addressed directly.
func onCopyExpr(t ir.Type, valueExpr string) (string, error) {
	switch tt := t.(type) {
	case *types.Primitive:
		if tt.Kind == types.Str {
			return fmt.Sprintf("%sstring_copy(%s)", runtimePrefix, valueExpr), nil
		}
		return "", internalError("oncopy of non-lifecycle primitive %s reached the printer", tt.Kind)
	case *types.Struct:
		return fmt.Sprintf("*%s(&%s)", sanitizeName(tt.Name+"___oncopy"), valueExpr), nil
	default:
		return "", internalError("unsupported oncopy element type %T reached the printer", t)
	}
}
