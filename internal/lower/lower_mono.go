package lower

import (
	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// MonoFuncInstance is one pre-resolved monomorphized function instantiation
// (spec.md §6 external interfaces item 2): a concrete specialization of a
// generic declaration, already produced by the checker with every type
// parameter substituted and the original declaration's concrete signature
// computed. Name is the declared (unmangled) name; TypeArgs is the
// instantiation's type-argument vector in declaration order, the same
// input monomorphMangle takes at a generic call site (spec.md §4.2.4) —
// the Lowerer computes the mangled name itself so it stays the single
// source of truth for every name it emits, the same guarantee ordinary
// (non-generic) declarations get from mangleDefinitionName.
type MonoFuncInstance struct {
	Name       string
	TypeArgs   []types.Type
	Decl       *ast.FnDecl
	Params     []types.Param
	ReturnType types.Type
	Throws     []types.Type
	TypeInfo   map[ast.Node]types.Type
}

// MonoStructInstance is one pre-resolved monomorphized struct
// instantiation: Struct carries the concrete (already type-argument-
// substituted) field list under its original declared name, which
// LowerMonomorphized overwrites with the mangled instantiation name before
// the struct enters the module's type list.
type MonoStructInstance struct {
	TypeArgs []types.Type
	Struct   *types.Struct
	Methods  []MonoFuncInstance
}

// MonoTable collects every monomorphized instance the checker resolved for
// one module (spec.md §6 item 2). Grounded on the teacher's
// Monomorphizer.instantiations/specializedFuncs cache
// (internal/mir/monomorphize.go): the same "one entry per mangled
// instantiation, lowered once" shape, but populated ahead of time by an
// external resolver instead of being discovered mid-pass from generic call
// sites — that discovery is the generic-resolution half of
// monomorphization this system leaves to the checker.
type MonoTable struct {
	Funcs   []MonoFuncInstance
	Structs []MonoStructInstance
}

// LowerMonomorphized lowers every instance in table into module, alongside
// whatever LowerModule already contributed for the same module. A
// monomorphized struct does not receive a synthesized lifecycle hook: the
// checker's AutoLifecycle flag is keyed by a generic declaration's
// unspecialized name, and whether a given instantiation's concrete fields
// actually need one can change per type argument (a struct generic over T
// needs __destroy only when T itself does) — recomputing that from
// AutoLifecycle's unspecialized table is a checker-level decision, not the
// Lowerer's.
func (l *Lowerer) LowerMonomorphized(table *MonoTable, module *ir.Module) error {
	if table == nil {
		return nil
	}
	for _, si := range table.Structs {
		mangledName := l.monoStructName(si.Struct.Name, si.TypeArgs)
		si.Struct.Name = mangledName
		module.Types = append(module.Types, si.Struct)
		for _, mi := range si.Methods {
			fn, err := l.lowerMonoFunc(mi, mangledName, false)
			if err != nil {
				return err
			}
			module.Funcs = append(module.Funcs, fn)
		}
	}
	for _, fi := range table.Funcs {
		fn, err := l.lowerMonoFunc(fi, "", true)
		if err != nil {
			return err
		}
		module.Funcs = append(module.Funcs, fn)
	}
	return nil
}

// monoStructName computes the mangled name of a monomorphized struct
// instantiation, applying ModulePrefix the same way mangleDefinitionName
// does for an ordinary declaration before handing off to monomorphMangle.
func (l *Lowerer) monoStructName(name string, typeArgs []types.Type) string {
	base := name
	if l.ModulePrefix != "" {
		base = l.ModulePrefix + "_" + base
	}
	return monomorphMangle(base, typeArgs)
}

// monoFuncName computes the mangled name of a monomorphized function or
// method instantiation. structPrefix is the method's owning instantiated
// struct's already-mangled name, or "" for a free function.
func (l *Lowerer) monoFuncName(name, structPrefix string, typeArgs []types.Type) string {
	base := name
	if structPrefix != "" {
		base = structPrefix + "_" + base
	}
	if l.ModulePrefix != "" {
		base = l.ModulePrefix + "_" + base
	}
	return monomorphMangle(base, typeArgs)
}

// lowerMonoFunc lowers one instance under its computed mangled name.
// exportable is true only for a free function: a struct method is never a
// target of a use declaration on its own, so it never enters l.Exports,
// matching LowerModule's own ordinary-method handling.
func (l *Lowerer) lowerMonoFunc(inst MonoFuncInstance, structPrefix string, exportable bool) (*ir.Function, error) {
	name := l.monoFuncName(inst.Name, structPrefix, inst.TypeArgs)

	typeInfo := inst.TypeInfo
	if typeInfo == nil {
		typeInfo = l.TypeInfo
	}
	fn, err := l.Lower(&FunctionInput{
		Name:       name,
		Decl:       inst.Decl,
		Params:     inst.Params,
		ReturnType: inst.ReturnType,
		Throws:     inst.Throws,
		TypeInfo:   typeInfo,
	})
	if err != nil {
		return nil, err
	}
	if exportable {
		l.Exports[inst.Name] = append(l.Exports[inst.Name], fn.Name)
	}
	return fn, nil
}
