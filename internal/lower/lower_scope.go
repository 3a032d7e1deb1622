package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// Scope lifecycle (spec.md §4.2.2): a stack of lexical scopes, each holding
// the variables declared directly in it in declaration order. Leaving a
// scope destroys its variables in reverse declaration order, skipping any
// that were moved.

func (l *Lowerer) pushScope() {
	l.scopes = append(l.scopes, &scope{})
}

// popScopeNoDestroy discards the innermost scope without emitting destroys,
// for use after a path that has already run every exit-time destroy itself
// (a return, throw, or break/continue).
func (l *Lowerer) popScopeNoDestroy() {
	l.scopes = l.scopes[:len(l.scopes)-1]
}

// popScope emits the innermost scope's destroys (if the current block is
// still open) and discards it.
func (l *Lowerer) popScope() {
	if !l.terminated() {
		l.destroyScope(l.scopes[len(l.scopes)-1], "")
	}
	l.popScopeNoDestroy()
}

// declareLocal allocates a stack slot for a new local variable, registers
// it in the innermost scope, and returns the slot's value-id.
func (l *Lowerer) declareLocal(name string, typ types.Type) ir.ValueID {
	slot := l.fresh()
	l.emit(&ir.Alloca{Dest: slot, ElemType: typ})
	s := l.scopes[len(l.scopes)-1]
	s.vars = append(s.vars, &scopeVar{name: name, slot: slot, typ: typ})
	return slot
}

// lookupVar finds the named variable in the nearest enclosing scope,
// innermost first.
func (l *Lowerer) lookupVar(name string) *scopeVar {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		s := l.scopes[i]
		for j := len(s.vars) - 1; j >= 0; j-- {
			if s.vars[j].name == name {
				return s.vars[j]
			}
		}
	}
	return nil
}

func (l *Lowerer) markMoved(name string) {
	if v := l.lookupVar(name); v != nil {
		v.moved = true
	}
}

// destroyScope emits a Destroy for each variable in s whose type carries a
// lifecycle hook, in reverse declaration order, skipping moved variables
// and the single variable (by name) exempt from this exit — the returned
// value at a `return ident;` or a tail-expression identifier whose value is
// being handed to the caller (spec.md §4.2.2, §4.2.3).
func (l *Lowerer) destroyScope(s *scope, exempt string) {
	for i := len(s.vars) - 1; i >= 0; i-- {
		v := s.vars[i]
		if v.moved || v.name == exempt && exempt != "" {
			continue
		}
		if !hasLifecycleHook(v.typ) {
			continue
		}
		l.emit(&ir.Destroy{Addr: ir.NewValueRef(v.slot, &types.Pointer{Elem: v.typ}), ElemType: v.typ})
	}
}

// destroyAllScopes walks every open scope, innermost first, emitting
// destroys for an early exit (return, throw, break, continue) — spec.md
// §4.2.2: "early exits ... must emit destroys for every enclosing scope
// before transferring control".
func (l *Lowerer) destroyAllScopes(exempt string) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		l.destroyScope(l.scopes[i], exempt)
	}
}

func hasLifecycleHook(t types.Type) bool {
	switch tt := t.(type) {
	case *types.Primitive:
		return tt.Kind == types.Str
	case *types.Struct:
		return tt.HasLifecycleHooks()
	case *types.Array:
		return hasLifecycleHook(tt.Elem)
	default:
		return false
	}
}

// identName returns expr's name if it is a bare identifier, else "".
func identName(expr ast.Expr) string {
	if id, ok := expr.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}
