// Package cprint implements the C printer contract of spec.md §4.6: it
// renders a post-SSA-destruction ir.Module as C99 source text. Every
// instruction and terminator becomes one C statement, every basic block
// becomes a label, and every jump or branch becomes a goto. The printer
// has no freedom in names — every identifier it emits is exactly the
// mangle the Lowerer produced, passed through sanitizeName for C's
// stricter identifier alphabet.
//
// This is a toy reference implementation, not the full contract surface:
// it is enough to print one procedure or module end-to-end for the
// scenarios spec.md §8 describes, grounded on the teacher's
// internal/codegen.Generator (a type switch dispatching one case per
// AST/IR node, accumulated into a string builder) and its
// internal/codegen/mir2llvm package (the closer structural analogue: a
// typed IR walked block by block to emit textual instructions),
// retargeted from Go source / LLVM textual IR to C.
package cprint

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// runtimePrefix names the support-library ABI the printer emits extern
// calls against (spec.md §6): <runtime>_string_literal, _bounds_check,
// and so on.
const runtimePrefix = "vlc_"

// Printer renders one ir.Module to C source text. A Printer is single-use:
// construct one per PrintModule call.
type Printer struct {
	b strings.Builder
}

// NewPrinter constructs an empty Printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// internalError reports a shape the IR should never present to a correct
// printer (spec.md §4.6: "any observable divergence from the IR is a
// printer bug").
func internalError(format string, args ...any) error {
	return errors.Errorf("cprint: internal consistency error: "+format, args...)
}

func (p *Printer) writeLine(s string) {
	p.b.WriteString(s)
	p.b.WriteByte('\n')
}

// PrintModule renders m as a complete C translation unit: runtime
// declarations, type declarations, extern declarations, globals, forward
// declarations for every function, then each function's definition in
// module order.
func (p *Printer) PrintModule(m *ir.Module) (string, error) {
	p.b.Reset()

	p.writeLine("#include <stdbool.h>")
	p.writeLine("#include <stddef.h>")
	p.writeLine("#include <stdint.h>")
	p.writeLine("")
	p.writeRuntimeDecls()
	p.writeLine("")

	if err := p.printTypes(m); err != nil {
		return "", err
	}
	if err := p.printExterns(m); err != nil {
		return "", err
	}
	if err := p.printGlobals(m); err != nil {
		return "", err
	}
	if err := p.printForwardDecls(m); err != nil {
		return "", err
	}

	for _, fn := range m.Funcs {
		if err := p.printFunction(fn); err != nil {
			return "", err
		}
	}

	return p.b.String(), nil
}

func (p *Printer) writeRuntimeDecls() {
	rt := runtimePrefix
	p.writeLine(fmt.Sprintf("typedef struct %sstring %sstring_t;", rt, rt))
	p.writeLine(fmt.Sprintf("extern %sstring_t %sstring_literal(const char*);", rt, rt))
	p.writeLine(fmt.Sprintf("extern %sstring_t %sstring_concat(%sstring_t, %sstring_t);", rt, rt, rt, rt))
	p.writeLine(fmt.Sprintf("extern bool %sstring_eq(%sstring_t, %sstring_t);", rt, rt, rt))
	p.writeLine(fmt.Sprintf("extern %sstring_t %sstring_copy(%sstring_t);", rt, rt, rt))
	p.writeLine(fmt.Sprintf("extern void %sstring_destroy(%sstring_t*);", rt, rt))
	p.writeLine(fmt.Sprintf("extern void %sbounds_check(int64_t, int64_t);", rt))
	p.writeLine(fmt.Sprintf("extern void %snull_check(const void*);", rt))
	p.writeLine(fmt.Sprintf("extern void %sassert(bool, %sstring_t);", rt, rt))
	p.writeLine(fmt.Sprintf("extern void %srequire(bool, %sstring_t);", rt, rt))
	p.writeLine(fmt.Sprintf("extern void %spanic(const char*);", rt))
}

// printTypes emits a forward tag declaration for every struct (including
// tagged-union payload structs, which never appear in m.Types directly)
// and every tagged union, then every body. Forward tags make pointer
// cycles through struct fields safe regardless of declaration order
// (spec.md §9 "Cyclic structures").
func (p *Printer) printTypes(m *ir.Module) error {
	seen := make(map[string]bool)
	var structsInOrder []*types.Struct
	var unionsInOrder []*ir.TaggedUnion

	addStruct := func(st *types.Struct) {
		if st == nil || seen[st.Name] {
			return
		}
		seen[st.Name] = true
		structsInOrder = append(structsInOrder, st)
	}

	for _, t := range m.Types {
		switch tt := t.(type) {
		case *types.Struct:
			addStruct(tt)
		case *ir.TaggedUnion:
			unionsInOrder = append(unionsInOrder, tt)
		}
	}
	for _, tu := range unionsInOrder {
		for _, v := range tu.Variants {
			addStruct(v.Payload)
		}
	}

	for _, st := range structsInOrder {
		p.writeLine(fmt.Sprintf("struct %s;", sanitizeName(st.Name)))
	}
	for _, tu := range unionsInOrder {
		p.writeLine(fmt.Sprintf("struct %s;", sanitizeName(tu.Name)))
	}
	p.writeLine("")

	for _, st := range structsInOrder {
		if err := p.printStruct(st); err != nil {
			return err
		}
	}
	for _, tu := range unionsInOrder {
		if err := p.printTaggedUnion(tu); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printStruct(st *types.Struct) error {
	name := sanitizeName(st.Name)
	p.writeLine(fmt.Sprintf("struct %s {", name))
	for _, f := range st.Fields {
		decl, err := p.declareVar(sanitizeName(f.Name), f.Type)
		if err != nil {
			return err
		}
		p.writeLine("    " + decl + ";")
	}
	p.writeLine("};")
	p.writeLine("")
	return nil
}

// printTaggedUnion emits the fixed shape spec.md §4.6 requires: a tag
// field followed by a union of variant payload structs, plus one #define
// per variant naming its discriminant value.
func (p *Printer) printTaggedUnion(tu *ir.TaggedUnion) error {
	name := sanitizeName(tu.Name)
	tagType, err := p.cType(tu.Base)
	if err != nil {
		return err
	}

	for _, v := range tu.Variants {
		p.writeLine(fmt.Sprintf("#define %s_%s %d", strings.ToUpper(name), strings.ToUpper(sanitizeName(v.Name)), v.Tag))
	}
	p.writeLine(fmt.Sprintf("struct %s {", name))
	p.writeLine("    " + tagType + " tag;")
	p.writeLine("    union {")
	for _, v := range tu.Variants {
		if v.Payload == nil {
			continue
		}
		decl, err := p.declareVar(sanitizeName(v.Name), v.Payload)
		if err != nil {
			return err
		}
		p.writeLine("        " + decl + ";")
	}
	p.writeLine("    } data;")
	p.writeLine("};")
	p.writeLine("")
	return nil
}

func (p *Printer) printExterns(m *ir.Module) error {
	for _, e := range m.Externs {
		sig, err := p.functionSignature(e.Name, e.Params, e.ReturnType, nil)
		if err != nil {
			return err
		}
		p.writeLine("extern " + sig + ";")
	}
	p.writeLine("")
	return nil
}

func (p *Printer) printGlobals(m *ir.Module) error {
	for _, g := range m.Globals {
		typ, err := p.cType(g.Type)
		if err != nil {
			return err
		}
		val, err := p.operand(g.Value)
		if err != nil {
			return err
		}
		p.writeLine(fmt.Sprintf("static %s %s = %s;", typ, sanitizeName(g.Name), val))
	}
	p.writeLine("")
	return nil
}

func (p *Printer) printForwardDecls(m *ir.Module) error {
	for _, fn := range m.Funcs {
		paramTypes := make([]ir.Type, len(fn.Params))
		for i, prm := range fn.Params {
			paramTypes[i] = prm.Type
		}
		sig, err := p.functionSignature(fn.Name, paramTypes, fn.ReturnType, nil)
		if err != nil {
			return err
		}
		p.writeLine(sig + ";")
	}
	p.writeLine("")
	return nil
}

func (p *Printer) functionSignature(name string, paramTypes []ir.Type, ret ir.Type, paramNames []string) (string, error) {
	retC, err := p.cType(ret)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(paramTypes))
	for i, pt := range paramTypes {
		pc, err := p.cType(pt)
		if err != nil {
			return "", err
		}
		if paramNames != nil {
			parts[i] = pc + " " + paramNames[i]
		} else {
			parts[i] = pc
		}
	}
	if len(parts) == 0 {
		parts = []string{"void"}
	}
	return fmt.Sprintf("%s %s(%s)", retC, sanitizeName(name), strings.Join(parts, ", ")), nil
}

// declareVar renders a C declaration for name of type t, special-casing
// a fixed-length array so its size appears after the name rather than
// decaying to a bare pointer (needed for struct fields and tagged-union
// payloads; everywhere else an array value is addressed through an
// already-decayed element pointer, see localDecl's Alloca case).
func (p *Printer) declareVar(name string, t ir.Type) (string, error) {
	if arr, ok := t.(*types.Array); ok {
		elem, err := p.cType(arr.Elem)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s[%d]", elem, name, arr.Len), nil
	}
	typ, err := p.cType(t)
	if err != nil {
		return "", err
	}
	return typ + " " + name, nil
}
