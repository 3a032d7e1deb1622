package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// lowerCallExpr lowers an ordinary (non-throwing) call (spec.md §4.2.1):
// the callee's signature is resolved via l.Calls, and its emitted name via
// resolvedCalleeName (ordinarily l.Calls' own mangle, except for a call to
// a name imported from a module where it is overloaded, spec.md §4.7);
// methods invoked on a value pass the value's address as the first (self)
// argument. A throwing callee reaching here without a CatchExpr wrapper is
// a checker gap.
func (l *Lowerer) lowerCallExpr(e *ast.CallExpr) (ir.Operand, types.Type, error) {
	res, ok := l.Calls[e]
	if !ok {
		return nil, nil, internalError("call to %q has no resolved signature", getCalleeName(e.Callee))
	}
	if res.Signature.Throwing() {
		return nil, nil, internalError("throwing call to %q reached without a catch clause", res.MangledName)
	}

	args, err := l.lowerCallArgs(e)
	if err != nil {
		return nil, nil, err
	}

	calleeName := l.resolvedCalleeName(e.Callee, res)
	retType := res.Signature.Return
	var dest ir.ValueID = ir.UndefValue
	if retType != nil {
		dest = l.fresh()
	}
	if res.Signature.Extern {
		l.emit(&ir.ExternCall{Dest: dest, Callee: calleeName, Args: args, ReturnType: retType})
	} else {
		l.emit(&ir.Call{Dest: dest, Callee: calleeName, Args: args, ReturnType: retType})
	}
	if retType == nil {
		return nil, nil, nil
	}
	return ir.NewValueRef(dest, retType), retType, nil
}

// lowerCallArgs lowers a call's self (if a method call) and positional
// arguments, left to right (spec.md §4.2.1).
func (l *Lowerer) lowerCallArgs(e *ast.CallExpr) ([]ir.Operand, error) {
	var args []ir.Operand
	if e.Self != nil {
		selfAddr, _, err := l.lowerAddressable(e.Self)
		if err != nil {
			return nil, err
		}
		args = append(args, selfAddr)
	}
	for _, a := range e.Args {
		val, _, err := l.lowerExprTyped(a)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return args, nil
}
