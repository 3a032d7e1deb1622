package cprint

import (
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// sanitizeName escapes characters not valid in a C identifier by a fixed
// substitution (spec.md §4.6: "the details are a printer concern"),
// adapted from the teacher's mir2llvm.sanitizeName: the same
// replace-with-underscore scheme and leading-digit prefix, minus the
// mir2llvm variant's allowance for '.', which LLVM accepts in an
// identifier and C does not.
func sanitizeName(name string) string {
	result := make([]rune, 0, len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	if len(result) == 0 {
		return "_"
	}
	if result[0] >= '0' && result[0] <= '9' {
		return "_" + string(result)
	}
	return string(result)
}

// cType maps an IR type to its C spelling (spec.md §4.6 type-mapping
// rules). A fixed-length array maps to its decayed element pointer here;
// callers that need the sized array form (a struct field or a tagged-union
// payload) use declareVar instead, and localDecl declares an Alloca's
// backing storage itself.
func (p *Printer) cType(t ir.Type) (string, error) {
	switch tt := t.(type) {
	case nil:
		return "void", nil
	case *types.Primitive:
		return primitiveCType(tt), nil
	case *types.Pointer:
		elem, err := p.cType(tt.Elem)
		if err != nil {
			return "", err
		}
		return elem + "*", nil
	case *types.Array:
		elem, err := p.cType(tt.Elem)
		if err != nil {
			return "", err
		}
		return elem + "*", nil
	case *types.Slice:
		elem, err := p.cType(tt.Elem)
		if err != nil {
			return "", err
		}
		return elem + "*", nil
	case *types.Struct:
		return "struct " + sanitizeName(tt.Name), nil
	case *ir.TaggedUnion:
		return "struct " + sanitizeName(tt.Name), nil
	case *types.Named:
		resolved := types.Resolve(tt)
		if resolved == types.Type(tt) {
			return "", internalError("unresolved named type %q reached the printer", tt.Name)
		}
		return p.cType(resolved)
	default:
		return "", internalError("unmapped type %T reached the printer", t)
	}
}

func primitiveCType(pr *types.Primitive) string {
	switch pr.Kind {
	case types.Int8:
		return "int8_t"
	case types.Int16:
		return "int16_t"
	case types.Int32:
		return "int32_t"
	case types.Int64:
		return "int64_t"
	case types.UInt8:
		return "uint8_t"
	case types.UInt16:
		return "uint16_t"
	case types.UInt32:
		return "uint32_t"
	case types.UInt64:
		return "uint64_t"
	case types.Float32:
		return "float"
	case types.Float64:
		return "double"
	case types.Bool:
		return "bool"
	case types.Str:
		return runtimePrefix + "string_t"
	default:
		return "void"
	}
}
