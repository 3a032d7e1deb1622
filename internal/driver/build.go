package driver

import (
	"github.com/pkg/errors"

	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/lower"
)

// Build lowers every registered module in dependency order and merges their
// output into one ir.Module (spec.md §4.7): each non-root module's
// functions, globals, and types are mangled under its own prefix; extern
// declarations merge by name, first occurrence wins; cycles are reported
// before any module is lowered.
func (d *Driver) Build() (*ir.Module, error) {
	if d.opts.Root != "" {
		if _, ok := d.modules[d.opts.Root]; !ok {
			return nil, errors.Errorf("driver: root module %q was never added", d.opts.Root)
		}
	}

	order, err := d.topoSort()
	if err != nil {
		return nil, err
	}

	out := ir.NewModule(d.opts.OutputName)
	externSeen := make(map[string]bool)
	exports := make(map[string]map[string][]string)
	globalsByModule := make(map[string]map[string]*ir.Global)

	for _, name := range order {
		m := d.modules[name]
		lw := lower.NewLowerer(m.TypeInfo, m.Structs, m.Enums, m.AutoLifecycle)
		if name != d.opts.Root {
			lw.ModulePrefix = name
		}

		if err := wireImports(lw, m, exports, globalsByModule); err != nil {
			return nil, err
		}

		startExterns := len(out.Externs)
		startGlobals := len(out.Globals)

		if err := lw.LowerModule(m.File, out); err != nil {
			return nil, errors.Wrapf(err, "module %q", name)
		}

		dedupExterns(out, startExterns, externSeen)

		modGlobals := make(map[string]*ir.Global, len(out.Globals)-startGlobals)
		for _, g := range out.Globals[startGlobals:] {
			modGlobals[g.Name] = g
		}
		globalsByModule[name] = modGlobals
		exports[name] = lw.Exports
	}

	return out, nil
}

// wireImports populates lw's ImportedNames/OverloadedImports/Globals ahead
// of lowering m, from the export tables of modules already lowered earlier
// in dependency order (spec.md §4.7: "two auxiliary tables... populated by
// the driver ahead of lowering"). origName (the name as declared in the
// dependency) and localName (origName, or the import's alias when one is
// given) are tracked separately: depExports is always keyed by origName,
// while everything the Lowerer sees locally — ImportedNames,
// OverloadedImports, and the name it resolves identifiers/calls by — is
// keyed by localName.
func wireImports(lw *lower.Lowerer, m *ModuleInput, exports map[string]map[string][]string, globalsByModule map[string]map[string]*ir.Global) error {
	for _, u := range m.File.Uses {
		if len(u.Path) == 0 {
			continue
		}
		depName := u.Path[0].Name
		origName := u.Path[len(u.Path)-1].Name
		localName := origName
		if u.Alias != nil {
			localName = u.Alias.Name
		}

		depExports, ok := exports[depName]
		if !ok {
			return errors.Errorf("driver: module %q imports from %q, which has not been lowered yet", m.Name, depName)
		}
		mangled := depExports[origName]
		switch len(mangled) {
		case 0:
			return errors.Errorf("driver: module %q imports unknown name %q from %q", m.Name, origName, depName)
		case 1:
			lw.ImportedNames[localName] = mangled[0]
			if g, ok := globalsByModule[depName][mangled[0]]; ok {
				lw.Globals[mangled[0]] = g
			}
		default:
			// More than one overload was exported under origName: a
			// single ImportedNames entry can't pick one, so the Lowerer
			// recomputes the overload-mangle rule itself at each call
			// site from this qualified-but-not-yet-mangled base (spec.md
			// §4.7), using the call's own resolved parameter types.
			lw.OverloadedImports[localName] = depName + "_" + origName
		}
	}
	return nil
}

// dedupExterns keeps only the first occurrence of each extern name across
// every module lowered so far (spec.md §4.7: "the first wins, later
// duplicates are dropped"), trimming out.Externs in place back to the
// externs this module actually contributed.
func dedupExterns(out *ir.Module, start int, seen map[string]bool) {
	added := out.Externs[start:]
	out.Externs = out.Externs[:start]
	for _, e := range added {
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		out.Externs = append(out.Externs, e)
	}
}
