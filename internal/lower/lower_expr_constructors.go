package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// lowerStructLiteral allocates a stack slot, computes each field's address
// and stores its value (spec.md §4.2.1). The result is the pointer to the
// slot; consumers load on demand (lowerFieldExpr, lowerAddressable).
func (l *Lowerer) lowerStructLiteral(e *ast.StructLiteral) (ir.Operand, types.Type, error) {
	st, ok := l.Structs[e.Name.Name]
	if !ok {
		return nil, nil, internalError("struct literal names unresolved struct %q", e.Name.Name)
	}
	slot := l.fresh()
	l.emit(&ir.Alloca{Dest: slot, ElemType: st})
	base := ir.NewValueRef(slot, &types.Pointer{Elem: st})
	for _, fl := range e.Fields {
		field := st.FieldByName(fl.Name.Name)
		if field == nil {
			return nil, nil, internalError("struct %q has no field %q", st.Name, fl.Name.Name)
		}
		val, _, err := l.lowerExprTyped(fl.Value)
		if err != nil {
			return nil, nil, err
		}
		addrDest := l.fresh()
		l.emit(&ir.FieldAddr{Dest: addrDest, Base: base, FieldName: fl.Name.Name, FieldType: field.Type})
		l.emit(&ir.Store{Addr: ir.NewValueRef(addrDest, &types.Pointer{Elem: field.Type}), Value: val})
	}
	return base, st, nil
}

// lowerArrayLiteral allocates a slot of array type; for each element,
// computes element-address from a typed integer-constant index and stores
// (spec.md §4.2.1).
func (l *Lowerer) lowerArrayLiteral(e *ast.ArrayLiteral) (ir.Operand, types.Type, error) {
	arr, ok := l.typeOf(e).(*types.Array)
	if !ok {
		return nil, nil, internalError("array literal has no resolved array type")
	}
	slot := l.fresh()
	l.emit(&ir.Alloca{Dest: slot, ElemType: arr})
	base := ir.NewValueRef(slot, &types.Pointer{Elem: arr})
	for i, elemExpr := range e.Elements {
		val, _, err := l.lowerExprTyped(elemExpr)
		if err != nil {
			return nil, nil, err
		}
		addrDest := l.fresh()
		idx := &ir.ConstInt{ElemType: types.TypeInt64, Value: int64(i)}
		l.emit(&ir.ElemAddr{Dest: addrDest, Base: base, Index: idx, ElemType: arr.Elem})
		l.emit(&ir.Store{Addr: ir.NewValueRef(addrDest, &types.Pointer{Elem: arr.Elem}), Value: val})
	}
	return base, arr, nil
}
