package cprint

import (
	"strings"
	"testing"

	"github.com/vellum-lang/vellumc/internal/ir"
	"github.com/vellum-lang/vellumc/internal/types"
)

// fn f() -> i32 { return 1 + 2; } (spec.md §8 scenario 1, post-promotion
// shape: one block, a single return of an add of two constants).
func TestPrintModule_ReturnAdd(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.TypeInt32, nil)
	entry := fn.FreshBlock()
	dest := fn.FreshValue()
	entry.Instrs = append(entry.Instrs, &ir.BinOp{
		Dest:       dest,
		Op:         ir.Add,
		Left:       &ir.ConstInt{ElemType: types.TypeInt32, Value: 1},
		Right:      &ir.ConstInt{ElemType: types.TypeInt32, Value: 2},
		ResultType: types.TypeInt32,
	})
	entry.Terminator = &ir.ReturnValueTerm{Value: ir.NewValueRef(dest, types.TypeInt32)}

	m := ir.NewModule("main")
	m.Funcs = append(m.Funcs, fn)

	out, err := NewPrinter().PrintModule(m)
	if err != nil {
		t.Fatalf("PrintModule: %v", err)
	}
	if !strings.Contains(out, "int32_t f(void)") {
		t.Errorf("missing function signature, got:\n%s", out)
	}
	if !strings.Contains(out, "v0 = 1 + 2;") {
		t.Errorf("missing add statement, got:\n%s", out)
	}
	if !strings.Contains(out, "return v0;") {
		t.Errorf("missing return statement, got:\n%s", out)
	}
	if !strings.Contains(out, "bb0:;") {
		t.Errorf("missing block label, got:\n%s", out)
	}
}

// The diamond CFG scenario (spec.md §8 scenario 6) past SSA destruction:
// each branch ends with one copy into the same value-id, the merge block
// has no phi, and the merge reads that value-id directly.
func TestPrintModule_BranchWithCopies(t *testing.T) {
	fn := ir.NewFunction("pick", nil, types.TypeInt32, nil)
	condID := fn.FreshValue()
	fn.Params = []ir.Param{{ID: condID, Name: "cond", Type: types.TypeBool}}

	entry := fn.FreshBlock()
	thenBlk := fn.FreshBlock()
	elseBlk := fn.FreshBlock()
	merge := fn.FreshBlock()
	merged := fn.FreshValue()

	entry.Terminator = &ir.BranchTerm{
		Condition:   ir.NewValueRef(condID, types.TypeBool),
		TrueTarget:  thenBlk.ID,
		FalseTarget: elseBlk.ID,
	}
	thenBlk.Instrs = append(thenBlk.Instrs, &ir.Copy{Dest: merged, Src: &ir.ConstInt{ElemType: types.TypeInt32, Value: 1}})
	thenBlk.Terminator = &ir.JumpTerm{Target: merge.ID}
	elseBlk.Instrs = append(elseBlk.Instrs, &ir.Copy{Dest: merged, Src: &ir.ConstInt{ElemType: types.TypeInt32, Value: 2}})
	elseBlk.Terminator = &ir.JumpTerm{Target: merge.ID}
	merge.Terminator = &ir.ReturnValueTerm{Value: ir.NewValueRef(merged, types.TypeInt32)}

	m := ir.NewModule("main")
	m.Funcs = append(m.Funcs, fn)

	out, err := NewPrinter().PrintModule(m)
	if err != nil {
		t.Fatalf("PrintModule: %v", err)
	}
	if strings.Count(out, "int32_t v1;") != 1 {
		t.Errorf("expected the phi-destination to be declared exactly once, got:\n%s", out)
	}
	if !strings.Contains(out, "if (v0) goto bb1; else goto bb2;") {
		t.Errorf("missing branch statement, got:\n%s", out)
	}
	if strings.Count(out, "v1 = ") != 2 {
		t.Errorf("expected two assignments to the merged value, got:\n%s", out)
	}
}

// Throws call emission (spec.md §4.2.3): the __out/__err arguments are
// appended after the callee's declared arguments.
func TestPrintModule_ThrowsCall(t *testing.T) {
	fn := ir.NewFunction("caller", nil, types.TypeInt32, nil)
	entry := fn.FreshBlock()
	outSlot := fn.FreshValue()
	errSlot := fn.FreshValue()
	tagDest := fn.FreshValue()

	entry.Instrs = append(entry.Instrs,
		&ir.Alloca{Dest: outSlot, ElemType: types.TypeInt32},
		&ir.Alloca{Dest: errSlot, ElemType: types.TypeUInt8},
		&ir.ThrowsCall{
			Dest:   tagDest,
			Callee: "getUser",
			Args:   []ir.Operand{&ir.ConstInt{ElemType: types.TypeInt32, Value: 10}},
			Out:    ir.NewValueRef(outSlot, &types.Pointer{Elem: types.TypeInt32}),
			Err:    ir.NewValueRef(errSlot, &types.Pointer{Elem: types.TypeUInt8}),
		},
	)
	entry.Terminator = &ir.ReturnValueTerm{Value: ir.NewValueRef(tagDest, types.TypeInt32)}

	m := ir.NewModule("main")
	m.Funcs = append(m.Funcs, fn)

	out, err := NewPrinter().PrintModule(m)
	if err != nil {
		t.Fatalf("PrintModule: %v", err)
	}
	if !strings.Contains(out, "v2 = getUser(10, v0, v1);") {
		t.Errorf("missing throws-call statement, got:\n%s", out)
	}
}

func TestPrintStruct_FieldOrder(t *testing.T) {
	st := &types.Struct{
		Name: "Point",
		Fields: []types.Field{
			{Name: "x", Type: types.TypeInt32},
			{Name: "y", Type: types.TypeInt32},
		},
	}
	m := ir.NewModule("main")
	m.Types = append(m.Types, st)

	out, err := NewPrinter().PrintModule(m)
	if err != nil {
		t.Fatalf("PrintModule: %v", err)
	}
	wantOrder := []string{"struct Point {", "int32_t x;", "int32_t y;", "};"}
	last := -1
	for _, want := range wantOrder {
		idx := strings.Index(out, want)
		if idx < 0 {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
		if idx < last {
			t.Errorf("field order violated at %q", want)
		}
		last = idx
	}
}

func TestPrintTaggedUnion(t *testing.T) {
	payload := &types.Struct{Name: "Result_Err", Fields: []types.Field{{Name: "_0", Type: types.TypeInt32}}}
	tu := &ir.TaggedUnion{
		Name: "Result",
		Base: types.TypeInt32,
		Variants: []ir.TaggedUnionVariant{
			{Name: "Ok", Tag: 0},
			{Name: "Err", Tag: 1, Payload: payload},
		},
	}
	m := ir.NewModule("main")
	m.Types = append(m.Types, tu)

	out, err := NewPrinter().PrintModule(m)
	if err != nil {
		t.Fatalf("PrintModule: %v", err)
	}
	for _, want := range []string{
		"#define RESULT_OK 0",
		"#define RESULT_ERR 1",
		"struct Result {",
		"int32_t tag;",
		"union {",
		"struct Result_Err Err;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestDestroyCall_Struct(t *testing.T) {
	st := &types.Struct{Name: "Buffer"}
	call, err := destroyCall(st, "v3")
	if err != nil {
		t.Fatalf("destroyCall: %v", err)
	}
	if call != "Buffer___destroy(v3)" {
		t.Errorf("got %q", call)
	}
}

func TestDestroyCall_String(t *testing.T) {
	call, err := destroyCall(types.TypeString, "v3")
	if err != nil {
		t.Fatalf("destroyCall: %v", err)
	}
	if call != "vlc_string_destroy(v3)" {
		t.Errorf("got %q", call)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain", "plain"},
		{"Point", "Point"},
		{"mod.fn", "mod_fn"},
		{"0leading", "_0leading"},
		{"", "_"},
		{"a-b c", "a_b_c"},
	}
	for _, c := range cases {
		if got := sanitizeName(c.in); got != c.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCType_PointerAndStruct(t *testing.T) {
	p := NewPrinter()
	st := &types.Struct{Name: "Widget"}
	got, err := p.cType(&types.Pointer{Elem: st})
	if err != nil {
		t.Fatalf("cType: %v", err)
	}
	if got != "struct Widget*" {
		t.Errorf("got %q", got)
	}
}

// A read before any write survives mem2reg as the reserved ir.UndefValue
// sentinel (spec.md §7.2); the printer must reject it as an internal-
// consistency failure rather than emit it as if it were an ordinary value.
func TestPrintModule_UndefOperandIsRejected(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.TypeInt32, nil)
	entry := fn.FreshBlock()
	entry.Terminator = &ir.ReturnValueTerm{Value: ir.NewValueRef(ir.UndefValue, types.TypeInt32)}

	m := ir.NewModule("main")
	m.Funcs = append(m.Funcs, fn)

	_, err := NewPrinter().PrintModule(m)
	if err == nil {
		t.Fatal("expected an error for an undef operand, got nil")
	}
	if !strings.Contains(err.Error(), "undef") {
		t.Errorf("expected the error to mention undef, got: %v", err)
	}
}
