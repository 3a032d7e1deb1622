// Package lower implements the middle end's Lowerer (spec.md §4.2): it
// walks a checker-typed syntax tree and emits one IR function per source
// function, per struct method, and per auto-generated lifecycle hook. Every
// local variable — including parameters — is allocated as a stack slot;
// internal/ssa's memory-to-register pass is expected to run afterward and
// promote whichever of them qualify.
//
// Grounded on the teacher's internal/mir.Lowerer: the same
// currentFunc/currentBlock bookkeeping and per-block register allocator
// shape, generalized from the teacher's channel/spawn-oriented MIR to this
// spec's throws/catch protocol and scope-destructor lifecycle.
package lower

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vellum-lang/vellumc/internal/ast"
	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// CallResolution is the checker's resolved answer for one call expression:
// the exact mangled callee name to emit and its concrete signature (used to
// decide the throws protocol and to size the throws buffers).
type CallResolution struct {
	MangledName string
	Signature   *types.Function
}

// OperatorResolution is the checker's resolved answer for an operator
// expression dispatched to a user-defined method (spec.md §4.2.1): the
// mangled method name and its signature.
type OperatorResolution struct {
	MangledName string
	Signature   *types.Function
}

// FunctionInput is everything the Lowerer needs to lower one function body:
// a final name (already mangled by the caller — mangleDefinitionName for an
// ordinary declaration, lower_mono.go's monoFuncName for a monomorphized
// instance), its concrete signature, and the per-expression type table
// scoped to Decl (spec.md §6 external interfaces).
type FunctionInput struct {
	Name       string
	Decl       *ast.FnDecl
	Params     []types.Param
	ReturnType types.Type
	Throws     []types.Type
	TypeInfo   map[ast.Node]types.Type
}

// Lowerer holds the checker's output tables for one module and the
// transient per-function state used while lowering. A single Lowerer value
// lowers every function of one module; the driver (spec.md §4.7) creates
// one per module and merges their output.
type Lowerer struct {
	// TypeInfo is the module-wide per-expression type table for ordinary
	// (non-monomorphized) declarations.
	TypeInfo map[ast.Node]types.Type
	// Calls resolves each call expression to its mangled callee and
	// signature.
	Calls map[*ast.CallExpr]*CallResolution
	// Operators resolves an InfixExpr/PrefixExpr/index-assignment node to a
	// user-defined operator-overload method, when the checker found one.
	Operators map[ast.Node]*OperatorResolution
	// Structs and Enums hold every struct/enum type visible to this module,
	// keyed by name, for field/method/variant lookup.
	Structs map[string]*types.Struct
	Enums   map[string]*types.Enum
	// AutoLifecycle names the structs the checker flagged as needing a
	// synthesized __destroy and/or __oncopy hook (spec.md §6 external
	// interfaces item 3).
	AutoLifecycle map[string]bool
	// ModulePrefix is "" for the root module, else the prefix a
	// non-root module's declarations are mangled under (spec.md §4.7).
	ModulePrefix string
	// ImportedNames maps a locally-used name to its already-mangled
	// resolved name — valid only when the source module declared exactly
	// one overload of it. OverloadedImports maps a locally-used name that
	// is overloaded in its source module to its qualified-but-not-yet-
	// overload-mangled base (<module>_<name>): a single ImportedNames
	// entry cannot pick one of several candidate mangles, so a call site
	// recomputes the overload-mangle rule itself from the call's own
	// resolved parameter types against this base (spec.md §4.7). Both
	// tables are populated by the driver ahead of lowering.
	ImportedNames     map[string]string
	OverloadedImports map[string]string
	// Globals resolves a module-level constant name to its lowered global,
	// for identifier lookups that miss every open scope.
	Globals map[string]*ir.Global
	// Exports maps each top-level function or constant's declared source
	// name to every mangled name it produced (more than one entry means
	// the declared name is overloaded within this module). The driver
	// reads this after lowering one module to populate the next
	// importing module's ImportedNames/OverloadedImports (spec.md §4.7).
	Exports map[string][]string

	currentFunc  *ir.Function
	currentBlock *ir.Block
	typeInfo     map[ast.Node]types.Type // the active table: TypeInfo or a FunctionInput's override
	scopes       []*scope
	loopStack    []*loopCtx
	throwCtx     *throwContext
	// ifExprArmDepth counts how many if-expression arm bodies are
	// currently being lowered (nested if-expressions increment it
	// further). While it is nonzero, a `return` statement is an early
	// exit from a value-producing context and is rejected rather than
	// silently treated as a diverging arm (spec.md §9's Open Question:
	// "reject early returns inside if-expression arms at the statement
	// level").
	ifExprArmDepth int
}

type scope struct {
	vars []*scopeVar
}

type scopeVar struct {
	name  string
	slot  ir.ValueID
	typ   types.Type
	moved bool
}

type loopCtx struct {
	continueTarget ir.BlockID
	breakTarget    ir.BlockID
	// baseDepth is len(l.scopes) at the moment the loop's body scope was
	// about to be pushed: break/continue destroys every scope from there
	// to the top (spec.md §4.2.2), leaving scopes below it untouched.
	baseDepth int
}

// throwContext is non-nil while lowering a function that uses the throws
// calling convention (spec.md §4.2.3).
type throwContext struct {
	throws      []types.Type
	successType types.Type
	outParam    ir.ValueID
	outType     types.Type
	errParam    ir.ValueID
	errType     types.Type
}

// NewLowerer constructs a Lowerer over one module's checker output tables.
func NewLowerer(typeInfo map[ast.Node]types.Type, structs map[string]*types.Struct, enums map[string]*types.Enum, autoLifecycle map[string]bool) *Lowerer {
	return &Lowerer{
		TypeInfo:          typeInfo,
		Calls:             make(map[*ast.CallExpr]*CallResolution),
		Operators:         make(map[ast.Node]*OperatorResolution),
		Structs:           structs,
		Enums:             enums,
		AutoLifecycle:     autoLifecycle,
		ImportedNames:     make(map[string]string),
		OverloadedImports: make(map[string]string),
		Exports:           make(map[string][]string),
	}
}

// internalError reports a shape the checker should have prevented from
// reaching the Lowerer (spec.md §7.1): fatal, never recovered.
func internalError(format string, args ...any) error {
	return errors.Errorf("lower: internal consistency error: "+format, args...)
}

// ErrEarlyReturnInIfExpr is returned when a `return` statement appears
// directly within an if-expression arm's body (spec.md §9's Open
// Question): an if-expression's arms are accepted only when every arm
// terminates with a value-producing tail expression, and a `return` is a
// statement-level early exit the checker is assumed to reject before the
// Lowerer ever sees it — so this is a fatal internal-consistency error,
// not a recoverable one, matching spec.md §7.1's treatment of every other
// "impossible shape".
var ErrEarlyReturnInIfExpr = errors.New("lower: early return inside if-expression arm")

// LowerModule lowers every declaration of file into module, appending
// functions, globals, extern declarations, and named types. module is the
// caller's (the driver's) accumulator, already named for this compilation
// unit.
func (l *Lowerer) LowerModule(file *ast.File, module *ir.Module) error {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FnDecl:
			if d.Extern {
				module.Externs = append(module.Externs, l.lowerExternFromFnDecl(d))
				continue
			}
			fn, err := l.lowerTopLevelFn(d, "")
			if err != nil {
				return err
			}
			module.Funcs = append(module.Funcs, fn)
			l.Exports[d.Name.Name] = append(l.Exports[d.Name.Name], fn.Name)

		case *ast.StructDecl:
			st := l.Structs[d.Name.Name]
			if st == nil {
				return internalError("struct %q has no resolved type", d.Name.Name)
			}
			module.Types = append(module.Types, st)
			for _, m := range d.Methods {
				fn, err := l.lowerTopLevelFn(m, d.Name.Name)
				if err != nil {
					return err
				}
				module.Funcs = append(module.Funcs, fn)
			}
			if l.AutoLifecycle[d.Name.Name] {
				if fn := l.synthesizeDestroy(st); fn != nil {
					module.Funcs = append(module.Funcs, fn)
				}
				if fn := l.synthesizeOnCopy(st); fn != nil {
					module.Funcs = append(module.Funcs, fn)
				}
			}

		case *ast.EnumDecl:
			en := l.Enums[d.Name.Name]
			if en == nil {
				return internalError("enum %q has no resolved type", d.Name.Name)
			}
			module.Types = append(module.Types, toTaggedUnion(en))

		case *ast.ConstDecl:
			g, err := l.lowerConst(d)
			if err != nil {
				return err
			}
			module.Globals = append(module.Globals, g)
			l.Exports[d.Name.Name] = append(l.Exports[d.Name.Name], g.Name)

		case *ast.ExternDecl:
			module.Externs = append(module.Externs, l.lowerExternDecl(d))

		case *ast.UseDecl, *ast.TypeAliasDecl:
			// Carries no IR: imports are resolved into ImportedNames by the
			// driver ahead of lowering; aliases are transparent to the
			// checker's type table by the time it reaches here.
		}
	}
	return nil
}

// lowerTopLevelFn lowers an ordinary (non-monomorphized) function or method
// declaration, computing its mangled name from the checker's type table.
func (l *Lowerer) lowerTopLevelFn(decl *ast.FnDecl, structPrefix string) (*ir.Function, error) {
	fnType, ok := l.TypeInfo[decl].(*types.Function)
	if !ok {
		return nil, internalError("function %q has no resolved signature", decl.Name.Name)
	}
	name := l.mangleDefinitionName(decl.Name.Name, structPrefix, fnType)
	return l.Lower(&FunctionInput{
		Name:       name,
		Decl:       decl,
		Params:     fnType.Params,
		ReturnType: fnType.Return,
		Throws:     fnType.Throws,
		TypeInfo:   l.TypeInfo,
	})
}

// Lower lowers one function body under input's resolved signature. It is
// the entry point for both ordinary declarations (via lowerTopLevelFn) and
// monomorphized instances (via LowerMonomorphized).
func (l *Lowerer) Lower(input *FunctionInput) (*ir.Function, error) {
	l.typeInfo = input.TypeInfo
	if l.typeInfo == nil {
		l.typeInfo = l.TypeInfo
	}
	l.scopes = nil
	l.loopStack = nil
	l.throwCtx = nil
	l.ifExprArmDepth = 0

	throwing := len(input.Throws) > 0
	fnReturnType := input.ReturnType
	if throwing {
		fnReturnType = types.TypeInt32
	}

	fn := ir.NewFunction(input.Name, nil, fnReturnType, input.Throws)
	fn.SuccessType = input.ReturnType
	l.currentFunc = fn

	entry := fn.FreshBlock()
	l.currentBlock = entry

	params := make([]ir.Param, 0, len(input.Params)+2)
	for _, p := range input.Params {
		id := fn.FreshValue()
		params = append(params, ir.Param{ID: id, Name: p.Name, Type: p.Type})
	}
	if throwing {
		outType := successPointerType(input.ReturnType)
		errType := &types.Pointer{Elem: types.TypeUInt8}
		outID := fn.FreshValue()
		errID := fn.FreshValue()
		params = append(params,
			ir.Param{ID: outID, Name: "__out", Type: outType},
			ir.Param{ID: errID, Name: "__err", Type: errType},
		)
		l.throwCtx = &throwContext{
			throws:      input.Throws,
			successType: input.ReturnType,
			outParam:    outID,
			outType:     outType,
			errParam:    errID,
			errType:     errType,
		}
	}
	fn.Params = params

	l.pushScope()
	for i, p := range input.Params {
		slot := l.declareLocal(p.Name, p.Type)
		l.emit(&ir.Store{Addr: ir.NewValueRef(slot, &types.Pointer{Elem: p.Type}), Value: ir.NewValueRef(fn.Params[i].ID, p.Type)})
	}

	if err := l.lowerStmtList(input.Decl.Body.Stmts); err != nil {
		return nil, err
	}
	if !l.terminated() {
		if err := l.lowerReturn(input.Decl.Body.Tail); err != nil {
			return nil, err
		}
	}
	l.popScopeNoDestroy()

	fn.Seal()
	return fn, nil
}

func successPointerType(ret types.Type) types.Type {
	if ret == nil || ret == types.TypeVoid {
		return &types.Pointer{Elem: types.TypeUInt8}
	}
	return &types.Pointer{Elem: ret}
}

// lowerConst lowers a module-level constant to an IR global, prefixed the
// same way a non-root module's functions are (spec.md §4.7: "Each non-root
// module contributes its functions, globals, and types under its prefix").
func (l *Lowerer) lowerConst(decl *ast.ConstDecl) (*ir.Global, error) {
	op, typ, err := l.constOperand(decl.Value)
	if err != nil {
		return nil, err
	}
	name := decl.Name.Name
	if l.ModulePrefix != "" {
		name = l.ModulePrefix + "_" + name
	}
	return &ir.Global{Name: name, Type: typ, Value: op}, nil
}

func (l *Lowerer) lowerExternFromFnDecl(d *ast.FnDecl) *ir.ExternDecl {
	fnType, _ := l.TypeInfo[d].(*types.Function)
	params := make([]ir.Type, len(d.Params))
	var ret ir.Type
	if fnType != nil {
		for i, p := range fnType.Params {
			params[i] = p.Type
		}
		ret = fnType.Return
	}
	return &ir.ExternDecl{Name: d.Name.Name, Params: params, ReturnType: ret}
}

func (l *Lowerer) lowerExternDecl(d *ast.ExternDecl) *ir.ExternDecl {
	fnType, _ := l.TypeInfo[d].(*types.Function)
	params := make([]ir.Type, len(d.Params))
	var ret ir.Type
	if fnType != nil {
		for i, p := range fnType.Params {
			params[i] = p.Type
		}
		ret = fnType.Return
	}
	return &ir.ExternDecl{Name: d.Name.Name, Params: params, ReturnType: ret}
}

func toTaggedUnion(en *types.Enum) *ir.TaggedUnion {
	variants := make([]ir.TaggedUnionVariant, len(en.Variants))
	for i, v := range en.Variants {
		var payload *types.Struct
		if len(v.Payload) > 0 {
			fields := make([]types.Field, len(v.Payload))
			for j, t := range v.Payload {
				fields[j] = types.Field{Name: fmt.Sprintf("_%d", j), Type: t}
			}
			payload = &types.Struct{Name: en.Name + "_" + v.Name, Fields: fields}
		}
		variants[i] = ir.TaggedUnionVariant{Name: v.Name, Tag: en.DiscriminantValue(i), Payload: payload}
	}
	return &ir.TaggedUnion{Name: en.Name, Base: en.DiscriminantType(), Variants: variants}
}

// --- block/value plumbing ---

func (l *Lowerer) emit(instr ir.Instruction) ir.Instruction {
	l.currentBlock.Instrs = append(l.currentBlock.Instrs, instr)
	return instr
}

func (l *Lowerer) emitTerm(term ir.Terminator) {
	l.currentBlock.Terminator = term
}

func (l *Lowerer) terminated() bool {
	return l.currentBlock.Sealed()
}

func (l *Lowerer) startBlock(b *ir.Block) {
	l.currentBlock = b
}

func (l *Lowerer) newBlock() *ir.Block {
	return l.currentFunc.FreshBlock()
}

func (l *Lowerer) fresh() ir.ValueID {
	return l.currentFunc.FreshValue()
}

func (l *Lowerer) typeOf(node ast.Node) types.Type {
	return l.typeInfo[node]
}
