package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// lowerIdent looks up the current value for a name: a local/parameter is a
// stack slot, explicitly loaded (spec.md §4.2.1); a module constant is
// substituted directly; an imported name is resolved through the driver's
// table first.
func (l *Lowerer) lowerIdent(e *ast.Ident) (ir.Operand, types.Type, error) {
	if v := l.lookupVar(e.Name); v != nil {
		dest := l.fresh()
		l.emit(&ir.Load{Dest: dest, Addr: ir.NewValueRef(v.slot, &types.Pointer{Elem: v.typ}), ElemType: v.typ})
		return ir.NewValueRef(dest, v.typ), v.typ, nil
	}
	name := e.Name
	if mangled, ok := l.ImportedNames[name]; ok {
		name = mangled
	}
	if g, ok := l.Globals[name]; ok {
		return g.Value, g.Type, nil
	}
	return nil, nil, internalError("identifier %q has no binding", e.Name)
}

// lowerFieldExpr lowers a field access (spec.md §4.2.1): if the base is
// already a pointer (a variable's slot, or another field-address chain),
// compute field-address directly; if the base is a plain value, spill it
// to a fresh slot first.
func (l *Lowerer) lowerFieldExpr(e *ast.FieldExpr) (ir.Operand, types.Type, error) {
	addr, elemType, err := l.fieldAddr(e)
	if err != nil {
		return nil, nil, err
	}
	dest := l.fresh()
	l.emit(&ir.Load{Dest: dest, Addr: addr, ElemType: elemType})
	return ir.NewValueRef(dest, elemType), elemType, nil
}

// fieldAddr computes the address of e's named field without loading it,
// shared by field-read, field-write (assignment), and method-call self
// lowering.
func (l *Lowerer) fieldAddr(e *ast.FieldExpr) (ir.Operand, types.Type, error) {
	baseAddr, baseType, err := l.lowerAddressable(e.Target)
	if err != nil {
		return nil, nil, err
	}
	st := structOf(baseType)
	if st == nil {
		return nil, nil, internalError("field access %q on non-struct type", e.Field.Name)
	}
	field := st.FieldByName(e.Field.Name)
	if field == nil {
		return nil, nil, internalError("struct %q has no field %q", st.Name, e.Field.Name)
	}
	dest := l.fresh()
	l.emit(&ir.FieldAddr{Dest: dest, Base: baseAddr, FieldName: e.Field.Name, FieldType: field.Type})
	return ir.NewValueRef(dest, field.Type), field.Type, nil
}

// lowerAddressable produces a pointer operand to expr's storage: an
// identifier's own slot, a nested field/index chain's computed address, or
// — for any other (non-lvalue) expression — a spill to a fresh slot holding
// its value (spec.md §4.2.1: "if the base is a value, spill to a slot
// first").
func (l *Lowerer) lowerAddressable(expr ast.Expr) (ir.Operand, types.Type, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		if v := l.lookupVar(e.Name); v != nil {
			if ptr, ok := types.Resolve(v.typ).(*types.Pointer); ok {
				// The variable itself already holds an address (e.g. a
				// method's self parameter, or a pointer-typed local): load
				// the pointer value rather than addressing the slot that
				// holds it, or field/elem-address would see a pointer to
				// the pointer instead of to the struct.
				dest := l.fresh()
				l.emit(&ir.Load{Dest: dest, Addr: ir.NewValueRef(v.slot, &types.Pointer{Elem: v.typ}), ElemType: v.typ})
				return ir.NewValueRef(dest, v.typ), ptr.Elem, nil
			}
			return ir.NewValueRef(v.slot, &types.Pointer{Elem: v.typ}), v.typ, nil
		}
	case *ast.FieldExpr:
		return l.fieldAddr(e)
	case *ast.IndexExpr:
		return l.elemAddr(e)
	}
	val, typ, err := l.lowerExprTyped(expr)
	if err != nil {
		return nil, nil, err
	}
	slot := l.fresh()
	l.emit(&ir.Alloca{Dest: slot, ElemType: typ})
	l.emit(&ir.Store{Addr: ir.NewValueRef(slot, &types.Pointer{Elem: typ}), Value: val})
	return ir.NewValueRef(slot, &types.Pointer{Elem: typ}), typ, nil
}

// lowerIndexExpr lowers target[index]: bounds-check then element-address
// then load (spec.md §4.2.1). The bounds check is emitted only for a
// fixed-length array; indexing a slice gets no bounds check.
func (l *Lowerer) lowerIndexExpr(e *ast.IndexExpr) (ir.Operand, types.Type, error) {
	addr, elemType, err := l.elemAddr(e)
	if err != nil {
		return nil, nil, err
	}
	dest := l.fresh()
	l.emit(&ir.Load{Dest: dest, Addr: addr, ElemType: elemType})
	return ir.NewValueRef(dest, elemType), elemType, nil
}

func (l *Lowerer) elemAddr(e *ast.IndexExpr) (ir.Operand, types.Type, error) {
	baseAddr, baseType, err := l.lowerAddressable(e.Target)
	if err != nil {
		return nil, nil, err
	}
	idx, _, err := l.lowerExprTyped(e.Index)
	if err != nil {
		return nil, nil, err
	}
	elemType, length := arrayElemAndLen(baseType)
	if elemType == nil {
		return nil, nil, internalError("index expression on non-array/slice type")
	}
	if length >= 0 {
		l.emit(&ir.BoundsCheck{Index: idx, Length: &ir.ConstInt{ElemType: types.TypeInt64, Value: int64(length)}})
	}
	dest := l.fresh()
	l.emit(&ir.ElemAddr{Dest: dest, Base: baseAddr, Index: idx, ElemType: elemType})
	return ir.NewValueRef(dest, elemType), elemType, nil
}

func structOf(t types.Type) *types.Struct {
	switch tt := types.Resolve(t).(type) {
	case *types.Struct:
		return tt
	case *types.Pointer:
		return structOf(tt.Elem)
	default:
		return nil
	}
}

func arrayElemAndLen(t types.Type) (types.Type, int) {
	switch tt := t.(type) {
	case *types.Array:
		return tt.Elem, tt.Len
	case *types.Slice:
		return tt.Elem, -1
	case *types.Pointer:
		return arrayElemAndLen(tt.Elem)
	default:
		return nil, -1
	}
}
