package lower

import (
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// synthesizeDestroy builds the auto-generated __destroy hook for a struct
// the checker flagged as needing one (spec.md §4.2.2, §6 external
// interfaces item 3): destroy each field carrying its own lifecycle hook,
// in reverse declaration order, mirroring scope-exit destruction.
func (l *Lowerer) synthesizeDestroy(st *types.Struct) *ir.Function {
	fn := ir.NewFunction(st.Name+"___destroy", nil, nil, nil)
	l.currentFunc = fn
	l.currentBlock = fn.FreshBlock()

	selfType := &types.Pointer{Elem: st}
	selfID := fn.FreshValue()
	fn.Params = []ir.Param{{ID: selfID, Name: "self", Type: selfType}}
	self := ir.NewValueRef(selfID, selfType)

	for i := len(st.Fields) - 1; i >= 0; i-- {
		f := st.Fields[i]
		if !hasLifecycleHook(f.Type) {
			continue
		}
		addrDest := l.fresh()
		l.emit(&ir.FieldAddr{Dest: addrDest, Base: self, FieldName: f.Name, FieldType: f.Type})
		l.emit(&ir.Destroy{Addr: ir.NewValueRef(addrDest, &types.Pointer{Elem: f.Type}), ElemType: f.Type})
	}
	l.emitTerm(&ir.ReturnVoidTerm{})
	fn.Seal()
	return fn
}

// synthesizeOnCopy builds the auto-generated __oncopy hook: a fresh
// struct whose fields are copied from self, recursing into each field's
// own __oncopy hook when its type carries a lifecycle (spec.md §4.2.2).
// The result is returned as the pointer to its slot, matching every other
// struct-valued expression in this Lowerer (lowerStructLiteral), so the
// function's declared return type is a pointer to st rather than st
// itself.
func (l *Lowerer) synthesizeOnCopy(st *types.Struct) *ir.Function {
	fn := ir.NewFunction(st.Name+"___oncopy", nil, &types.Pointer{Elem: st}, nil)
	l.currentFunc = fn
	l.currentBlock = fn.FreshBlock()

	selfType := &types.Pointer{Elem: st}
	selfID := fn.FreshValue()
	fn.Params = []ir.Param{{ID: selfID, Name: "self", Type: selfType}}
	self := ir.NewValueRef(selfID, selfType)

	outSlot := l.fresh()
	l.emit(&ir.Alloca{Dest: outSlot, ElemType: st})
	outBase := ir.NewValueRef(outSlot, &types.Pointer{Elem: st})

	for _, f := range st.Fields {
		srcAddrDest := l.fresh()
		l.emit(&ir.FieldAddr{Dest: srcAddrDest, Base: self, FieldName: f.Name, FieldType: f.Type})
		srcAddr := ir.NewValueRef(srcAddrDest, &types.Pointer{Elem: f.Type})
		loadDest := l.fresh()
		l.emit(&ir.Load{Dest: loadDest, Addr: srcAddr, ElemType: f.Type})

		var val ir.Operand = ir.NewValueRef(loadDest, f.Type)
		if hasLifecycleHook(f.Type) {
			copyDest := l.fresh()
			l.emit(&ir.OnCopy{Dest: copyDest, Value: val, ElemType: f.Type})
			val = ir.NewValueRef(copyDest, f.Type)
		}

		dstAddrDest := l.fresh()
		l.emit(&ir.FieldAddr{Dest: dstAddrDest, Base: outBase, FieldName: f.Name, FieldType: f.Type})
		l.emit(&ir.Store{Addr: ir.NewValueRef(dstAddrDest, &types.Pointer{Elem: f.Type}), Value: val})
	}

	l.emitTerm(&ir.ReturnValueTerm{Value: outBase})
	fn.Seal()
	return fn
}
