package lower

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/types"
)

// mangleDefinitionName computes the emitted name for an ordinary (non-
// monomorphized) declaration (spec.md §4.2.4): raw name when unique and
// root, module-prefixed when not root, overload-mangled when the checker's
// signature needs disambiguating. Externs never reach this helper (they
// keep their raw name at every call site).
func (l *Lowerer) mangleDefinitionName(name, structPrefix string, fnType *types.Function) string {
	base := name
	if structPrefix != "" {
		base = structPrefix + "_" + base
	}
	if l.ModulePrefix != "" {
		base = l.ModulePrefix + "_" + base
	}
	if needsOverloadMangle(fnType) {
		base = overloadMangle(base, fnType.Params)
	}
	return base
}

// needsOverloadMangle reports whether a signature's parameter types must be
// folded into its name. The checker has already decided which names are
// actually ambiguous; lacking that table here, the Lowerer mangles every
// non-extern signature that declares at least one parameter —
// conservative but stable, since the mangle is recomputed
// identically at call sites from the same resolved signature.
func needsOverloadMangle(fnType *types.Function) bool {
	return fnType != nil && len(fnType.Params) > 0
}

func overloadMangle(base string, params []types.Param) string {
	var b strings.Builder
	b.WriteString(base)
	for _, p := range params {
		b.WriteByte('_')
		b.WriteString(typeTag(p.Type))
	}
	return b.String()
}

// monomorphMangle computes the mangle for a monomorphized generic instance
// (spec.md §4.2.4): <base>_<t1>_<t2>_....
func monomorphMangle(base string, typeArgs []types.Type) string {
	var b strings.Builder
	b.WriteString(base)
	for _, t := range typeArgs {
		b.WriteByte('_')
		b.WriteString(typeTag(t))
	}
	return b.String()
}

// typeTag computes the short type tag used by both overload- and
// monomorphization-mangling (spec.md §4.2.4).
func typeTag(t types.Type) string {
	switch tt := t.(type) {
	case nil:
		return "void"
	case *types.Primitive:
		return string(tt.Kind)
	case *types.Pointer:
		return "ptr_" + typeTag(tt.Elem)
	case *types.Array:
		return fmt.Sprintf("arr%d_%s", tt.Len, typeTag(tt.Elem))
	case *types.Slice:
		return "slice_" + typeTag(tt.Elem)
	case *types.Struct:
		return tt.Name
	case *types.Enum:
		return tt.Name
	case *types.Named:
		return tt.Name
	case *types.TypeParam:
		return tt.Name
	default:
		return "unk"
	}
}

// getCalleeName recovers a callable's source-level name from a callee
// expression, used only to report internal-consistency errors with a
// useful name (the actual mangle ordinarily comes from l.Calls, except for
// the overloaded-import case resolvedCalleeName handles).
func getCalleeName(callee ast.Expr) string {
	switch c := callee.(type) {
	case *ast.Ident:
		return c.Name
	case *ast.FieldExpr:
		return c.Field.Name
	case *ast.IndexExpr:
		return getCalleeName(c.Target)
	default:
		return "<anonymous>"
	}
}

// resolvedCalleeName returns the mangled name to emit for a call to a
// plain identifier callee. The checker's resolved CallResolution.MangledName
// is authoritative for every ordinary call — local, or imported under a
// name that is unambiguous in its source module. It is not authoritative
// for a name flagged in l.OverloadedImports: the driver's ImportedNames
// table can carry only one mangled candidate per local name, so an
// overloaded import has no single resolved mangle for the driver to hand
// the Lowerer ahead of time. Instead the Lowerer recomputes the
// overload-mangle rule itself (spec.md §4.2.4) from the call's own
// resolved parameter types against the qualified base the driver recorded
// (spec.md §4.7: "the overload-mangle rule is applied at call sites even
// though the local module declares a single import").
func (l *Lowerer) resolvedCalleeName(callee ast.Expr, res *CallResolution) string {
	if ident, ok := callee.(*ast.Ident); ok {
		if base, overloaded := l.OverloadedImports[ident.Name]; overloaded {
			return overloadMangle(base, res.Signature.Params)
		}
	}
	return res.MangledName
}

func parseInt(text string) (int64, error) {
	val, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		uval, uerr := strconv.ParseUint(text, 10, 64)
		if uerr != nil {
			return 0, internalError("invalid integer literal %q", text)
		}
		return int64(uval), nil
	}
	return val, nil
}

func parseFloat(text string) (float64, error) {
	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, internalError("invalid float literal %q", text)
	}
	return val, nil
}

// fitsInt32 reports whether the smallest signed 32-bit type can represent
// v, per the integer-literal lowering rule of spec.md §4.2.1.
func fitsInt32(v int64) bool {
	return v >= -2147483648 && v <= 2147483647
}
