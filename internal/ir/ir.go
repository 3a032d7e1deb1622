// Package ir defines the block IR produced by the Lowerer: a typed,
// basic-block structured intermediate form consumed by the dominance pass,
// the memory-to-register promotion pass, SSA destruction, and finally the C
// printer. IR types are the checker's semantic types after erasure of
// module/type-parameter/null/error kinds, with tagged unions lowered to a
// tag-plus-variant-union representation (TaggedUnion below); the IR itself
// carries no generic parameters, since every generic site it sees has
// already been monomorphized upstream.
package ir

import (
	"fmt"

	"github.com/vellum-lang/vellumc/internal/types"
)

// ValueID is an opaque, per-function monotonically increasing identifier
// for an SSA value (or, pre-promotion, a stack-allocation result).
type ValueID int64

// UndefValue is the reserved sentinel the rename phase produces when a
// promoted allocation's definition stack is empty at a use site (spec.md
// §4.4 step 3.4, §7.2). Its survival into a final operand is always a bug:
// either the source program's fault (a read before any write) or an
// internal-consistency failure in the rename walk.
const UndefValue ValueID = -1

func (v ValueID) String() string {
	if v == UndefValue {
		return "undef"
	}
	return fmt.Sprintf("%%%d", v)
}

// BlockID is an opaque, per-function identifier for a basic block. Blocks
// are linked by id rather than by pointer so that CFG and dominance
// computations (internal/cfg) can address blocks by small integers and so
// that cloning a function's block list for a pass (spec.md §3.5: "SSA
// construction and destruction replace instructions and terminators
// wholesale on clones of the blocks") never has to fix up pointers.
type BlockID int64

func (b BlockID) String() string { return fmt.Sprintf("bb%d", b) }

// Type is the IR's own value-type interface. It reuses the semantic type
// system directly for every kind that survives erasure unchanged (ints,
// floats, bool, string, pointer, array, slice, struct) and adds
// TaggedUnion for the one shape that does not: a named tagged-union type,
// which by the time it reaches the IR has already been split into a tag
// field and a union of variant payload structs.
type Type = types.Type

// TaggedUnion is the IR-level representation of a semantic Enum: a 32-bit
// (or explicitly-based) discriminant plus a union of the variants' payload
// structs. Lowering emits it as a type declaration only; no IR instruction
// addresses a variant's payload (spec.md §4.6 printer contract:
// "tagged union -> struct { int32_t tag; union { ... } data; }").
type TaggedUnion struct {
	Name     string
	Base     *types.Primitive
	Variants []TaggedUnionVariant
}

// TaggedUnionVariant names one lowered variant's tag value and payload
// struct type (nil payload for a unit variant).
type TaggedUnionVariant struct {
	Name    string
	Tag     int64
	Payload *types.Struct
}

func (t *TaggedUnion) String() string { return t.Name }
func (t *TaggedUnion) IsType()        {}

// Operand is anything that can appear as an instruction or terminator
// input: a reference to a previously defined value, or an inline constant.
type Operand interface {
	operandNode()
	Type() Type
}

// ValueRef is an operand referring to a previously defined SSA value
// (the result of an instruction, a phi, or a function parameter).
type ValueRef struct {
	ID       ValueID
	ElemType Type
}

func (*ValueRef) operandNode()    {}
func (v *ValueRef) Type() Type    { return v.ElemType }
func (v *ValueRef) String() string { return v.ID.String() }

// NewValueRef constructs a reference operand to an already-defined value.
func NewValueRef(id ValueID, typ Type) *ValueRef {
	return &ValueRef{ID: id, ElemType: typ}
}

// Instruction is a non-terminating operation within a basic block.
type Instruction interface {
	instrNode()
	// Result returns the value-id this instruction defines, or UndefValue
	// if it does not define a value (spec.md §4.1: "an instruction either
	// defines a value ... or does not").
	Result() ValueID
}

// Terminator is the single control-transfer operation that ends a block.
type Terminator interface {
	terminatorNode()
	// Successors returns the block ids control may transfer to, in a fixed
	// order (spec.md §4.3: jump has one, branch two, switch one per case
	// plus default, return/unreachable none).
	Successors() []BlockID
}

// Phi is the pseudo-instruction placed at the top of a block that selects
// a value depending on which predecessor control arrived from. Phi is the
// only IR construct whose inputs span multiple predecessor blocks
// (spec.md §4.1). An incoming value is an Operand rather than a bare
// value-id so that a promoted allocation whose reaching definition is a
// constant (never assigned a value-id) can flow into a phi without first
// being materialized by a dummy instruction.
type Phi struct {
	Dest     ValueID
	ElemType Type
	Incoming []PhiIncoming
}

// PhiIncoming is one (predecessor, value) pair of a Phi.
type PhiIncoming struct {
	From  BlockID
	Value Operand
}

func (p *Phi) instrNode()      {}
func (p *Phi) Result() ValueID { return p.Dest }

// IncomingFrom returns the incoming value from the given predecessor, and
// whether one was found.
func (p *Phi) IncomingFrom(from BlockID) (Operand, bool) {
	for _, in := range p.Incoming {
		if in.From == from {
			return in.Value, true
		}
	}
	return nil, false
}

// SetIncomingFrom overwrites (or appends) the incoming value for the given
// predecessor.
func (p *Phi) SetIncomingFrom(from BlockID, value Operand) {
	for i := range p.Incoming {
		if p.Incoming[i].From == from {
			p.Incoming[i].Value = value
			return
		}
	}
	p.Incoming = append(p.Incoming, PhiIncoming{From: from, Value: value})
}

// Block is a basic block: an ordered phi list, an ordered instruction
// list, and exactly one terminator (spec.md §3.5). A block without a
// terminator is only valid while the Lowerer still owns it; at seal time a
// block lacking one defaults to Unreachable.
type Block struct {
	ID         BlockID
	Phis       []*Phi
	Instrs     []Instruction
	Terminator Terminator
}

// NewBlock constructs an empty, unterminated block with the given id.
func NewBlock(id BlockID) *Block {
	return &Block{ID: id}
}

// Sealed reports whether the block has a terminator.
func (b *Block) Sealed() bool { return b.Terminator != nil }

// Clone returns a shallow copy of the block with independent Phis and
// Instrs slices, so a pass may rewrite its copy without mutating the
// original (spec.md §3.5 ownership note).
func (b *Block) Clone() *Block {
	clone := &Block{ID: b.ID, Terminator: b.Terminator}
	clone.Phis = append(clone.Phis, b.Phis...)
	clone.Instrs = append(clone.Instrs, b.Instrs...)
	return clone
}

// Param is a function parameter: a fixed value-id bound to its type at
// function entry.
type Param struct {
	ID   ValueID
	Name string
	Type Type
}

// Function is one lowered function: ordered parameters, a return type, an
// ordered block list (the first block is the entry), a fresh-value-id
// counter, and — for a function using the throws protocol — its ordered
// throws-type list (spec.md §3.5, §4.2.3).
type Function struct {
	Name       string
	Params     []Param
	ReturnType Type
	Blocks     []*Block
	NextValue  ValueID
	NextBlock  BlockID
	// Throws is non-empty exactly when this function's transformed
	// signature appends __out/__err and returns an i32 tag instead of
	// ReturnType directly (spec.md §4.2.3).
	Throws []Type
	// SuccessType is the function's declared (pre-transform) return type
	// when Throws is non-empty; ReturnType itself becomes the i32 tag in
	// that case. Unused when Throws is empty.
	SuccessType Type
}

// NewFunction constructs an empty function scaffold ready for the
// Lowerer to append blocks to.
func NewFunction(name string, params []Param, returnType Type, throws []Type) *Function {
	return &Function{Name: name, Params: params, ReturnType: returnType, Throws: throws}
}

// Throwing reports whether the function uses the throws calling
// convention.
func (f *Function) Throwing() bool { return len(f.Throws) > 0 }

// FreshValue allocates and returns the next unused value-id.
func (f *Function) FreshValue() ValueID {
	id := f.NextValue
	f.NextValue++
	return id
}

// FreshBlock allocates a new block, appends it to the function, and
// returns it.
func (f *Function) FreshBlock() *Block {
	id := f.NextBlock
	f.NextBlock++
	b := NewBlock(id)
	f.Blocks = append(f.Blocks, b)
	return b
}

// Entry returns the function's entry block (the first block produced by
// the lowerer), or nil if the function has no blocks.
func (f *Function) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// BlockByID returns the block with the given id, or nil if absent.
func (f *Function) BlockByID(id BlockID) *Block {
	for _, b := range f.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Seal finalizes every block lacking an explicit terminator: a function
// whose last block has none defaults to a success tag for a throws
// function, to return-void for a void function, and to Unreachable for a
// function with any other return type; any earlier unterminated block
// defaults to Unreachable (spec.md §4.2.5, §7.2).
func (f *Function) Seal() {
	for i, b := range f.Blocks {
		if b.Sealed() {
			continue
		}
		if i == len(f.Blocks)-1 {
			if f.Throwing() {
				b.Terminator = &ReturnValueTerm{Value: &ConstInt{ElemType: types.TypeInt32, Value: 0}}
			} else if f.ReturnType == nil || f.ReturnType == types.TypeVoid {
				b.Terminator = &ReturnVoidTerm{}
			} else {
				b.Terminator = &UnreachableTerm{}
			}
		} else {
			b.Terminator = &UnreachableTerm{}
		}
	}
}

// Global represents a module-level constant, lowered from a ConstDecl
// (spec.md §3.5).
type Global struct {
	Name  string
	Type  Type
	Value Operand
}

// ExternDecl is an ordered extern function declaration carried by a
// module (spec.md §3.5, §4.7): never mangled, merged by name across
// modules by the driver.
type ExternDecl struct {
	Name       string
	Params     []Type
	ReturnType Type
}

// Module carries a name, ordered globals, ordered functions, ordered
// named-type declarations, and ordered extern declarations (spec.md §3.5).
type Module struct {
	Name     string
	Globals  []*Global
	Funcs    []*Function
	Types    []Type
	Externs  []*ExternDecl
}

// NewModule constructs an empty module with the given name.
func NewModule(name string) *Module {
	return &Module{Name: name}
}
