package ir

import "github.com/vellum-lang/vellumc/internal/types"

// ConstInt is a typed integer constant operand (spec.md §3.3). Integer
// literals in source are lowered to the smallest signed 32-bit type when
// they fit in the i32 range, otherwise 64-bit signed (spec.md §4.2.1),
// though any concrete integer type can appear here once context (e.g. an
// explicit annotation) has refined it.
type ConstInt struct {
	ElemType *types.Primitive
	Value    int64
}

func (*ConstInt) operandNode() {}
func (c *ConstInt) Type() Type { return c.ElemType }

// ConstFloat is a typed floating-point constant operand.
type ConstFloat struct {
	ElemType *types.Primitive
	Value    float64
}

func (*ConstFloat) operandNode() {}
func (c *ConstFloat) Type() Type { return c.ElemType }

// ConstBool is a boolean constant operand.
type ConstBool struct {
	Value bool
}

func (*ConstBool) operandNode() {}
func (c *ConstBool) Type() Type { return types.TypeBool }

// ConstString is a string constant operand (emitted by the printer as a
// call to the runtime's string_literal ABI entry point, spec.md §6).
type ConstString struct {
	Value string
}

func (*ConstString) operandNode() {}
func (c *ConstString) Type() Type { return types.TypeString }

// ConstNullPtr is a null-pointer constant of a given pointee type.
type ConstNullPtr struct {
	ElemType *types.Pointer
}

func (*ConstNullPtr) operandNode() {}
func (c *ConstNullPtr) Type() Type { return c.ElemType }
