package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// lowerIntegerLit chooses the smallest signed 32-bit type for a literal in
// the i32 range, otherwise 64-bit signed (spec.md §4.2.1), unless the
// checker has already refined the type via an enclosing annotation.
func (l *Lowerer) lowerIntegerLit(e *ast.IntegerLit) (ir.Operand, types.Type, error) {
	v, err := parseInt(e.Text)
	if err != nil {
		return nil, nil, err
	}
	typ := types.TypeInt64
	if fitsInt32(v) {
		typ = types.TypeInt32
	}
	if annotated, ok := l.typeOf(e).(*types.Primitive); ok && annotated.IsInteger() {
		typ = annotated
	}
	return &ir.ConstInt{ElemType: typ, Value: v}, typ, nil
}

func (l *Lowerer) lowerFloatLit(e *ast.FloatLit) (ir.Operand, types.Type, error) {
	v, err := parseFloat(e.Text)
	if err != nil {
		return nil, nil, err
	}
	typ := types.TypeFloat64
	if annotated, ok := l.typeOf(e).(*types.Primitive); ok && annotated.IsFloat() {
		typ = annotated
	}
	return &ir.ConstFloat{ElemType: typ, Value: v}, typ, nil
}

func (l *Lowerer) lowerNilLit(e *ast.NilLit) (ir.Operand, types.Type, error) {
	ptr, ok := l.typeOf(e).(*types.Pointer)
	if !ok {
		return nil, nil, internalError("nil literal has no resolved pointer type")
	}
	return &ir.ConstNullPtr{ElemType: ptr}, ptr, nil
}
