// Package types models the semantic type system handed to the middle end by
// the checker (spec.md §3.1). Name resolution, generic *resolution*, and
// type inference are external collaborators; this package only needs to
// represent the types they have already computed.
package types

import "strings"

// Type represents a fully resolved semantic type.
type Type interface {
	String() string
	// IsType is a marker method to ensure type safety.
	IsType()
}

// PrimitiveKind distinguishes the scalar primitive types.
type PrimitiveKind string

const (
	Int8    PrimitiveKind = "i8"
	Int16   PrimitiveKind = "i16"
	Int32   PrimitiveKind = "i32"
	Int64   PrimitiveKind = "i64"
	UInt8   PrimitiveKind = "u8"
	UInt16  PrimitiveKind = "u16"
	UInt32  PrimitiveKind = "u32"
	UInt64  PrimitiveKind = "u64"
	Float32 PrimitiveKind = "f32"
	Float64 PrimitiveKind = "f64"
	Bool    PrimitiveKind = "bool"
	Str     PrimitiveKind = "string"
	Nil     PrimitiveKind = "nil"
	Void    PrimitiveKind = "void"
)

// Primitive represents a scalar primitive type with an explicit bit width
// where one applies (spec.md §3.1: signed/unsigned integers of width
// {8,16,32,64}, floats of width {32,64}, bool, void, string).
type Primitive struct {
	Kind PrimitiveKind
}

func (p *Primitive) String() string { return string(p.Kind) }
func (p *Primitive) IsType()        {}

// Width reports the primitive's bit width, or 0 for kinds with no fixed
// width (Bool, Str, Nil, Void).
func (p *Primitive) Width() int {
	switch p.Kind {
	case Int8, UInt8:
		return 8
	case Int16, UInt16:
		return 16
	case Int32, UInt32, Float32:
		return 32
	case Int64, UInt64, Float64:
		return 64
	default:
		return 0
	}
}

// Signed reports whether the primitive is a signed integer kind.
func (p *Primitive) Signed() bool {
	switch p.Kind {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// IsInteger reports whether the primitive is any integer kind.
func (p *Primitive) IsInteger() bool {
	switch p.Kind {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether the primitive is a floating-point kind.
func (p *Primitive) IsFloat() bool {
	return p.Kind == Float32 || p.Kind == Float64
}

// Common primitive instances, interned so pointer comparison is valid for
// these canonical cases.
var (
	TypeInt8    = &Primitive{Kind: Int8}
	TypeInt16   = &Primitive{Kind: Int16}
	TypeInt32   = &Primitive{Kind: Int32}
	TypeInt64   = &Primitive{Kind: Int64}
	TypeUInt8   = &Primitive{Kind: UInt8}
	TypeUInt16  = &Primitive{Kind: UInt16}
	TypeUInt32  = &Primitive{Kind: UInt32}
	TypeUInt64  = &Primitive{Kind: UInt64}
	TypeFloat32 = &Primitive{Kind: Float32}
	TypeFloat64 = &Primitive{Kind: Float64}
	TypeBool    = &Primitive{Kind: Bool}
	TypeString  = &Primitive{Kind: Str}
	TypeNil     = &Primitive{Kind: Nil}
	TypeVoid    = &Primitive{Kind: Void}
)

// TypeParam represents a generic-parameter placeholder carried on a struct,
// enum, or function type (spec.md §3.1). Its Bounds are opaque to the
// middle end: the checker has already used them to validate the original
// declaration, and monomorphization has already substituted concrete types
// for every reference at each call/instantiation site the Lowerer sees.
type TypeParam struct {
	Name string
}

func (t *TypeParam) String() string { return t.Name }
func (t *TypeParam) IsType()        {}

// Pointer represents a raw pointer to a pointee type.
type Pointer struct {
	Elem Type
}

func (p *Pointer) String() string { return "*" + p.Elem.String() }
func (p *Pointer) IsType()        {}

// Array represents a fixed-length array of Elem × Len.
type Array struct {
	Elem Type
	Len  int
}

func (a *Array) String() string { return "[" + a.Elem.String() + "; N]" }
func (a *Array) IsType()        {}

// Slice represents a runtime-length slice of Elem.
type Slice struct {
	Elem Type
}

func (s *Slice) String() string { return "[]" + s.Elem.String() }
func (s *Slice) IsType()        {}

// Range represents a range-of-element value produced by a range expression
// (spec.md §3.1, consumed by `for i in a..b`).
type Range struct {
	Elem Type
}

func (r *Range) String() string { return "range<" + r.Elem.String() + ">" }
func (r *Range) IsType()        {}

// Module represents a reference to a module namespace (spec.md §3.1,
// §4.7), used only in name-resolution bookkeeping the driver performs
// ahead of per-module lowering.
type Module struct {
	Path string
}

func (m *Module) String() string { return m.Path }
func (m *Module) IsType()        {}

// Field represents one named, ordered struct field. Field order is part of
// the type's identity and dictates the emitted C struct's layout
// (spec.md §3.1).
type Field struct {
	Name string
	Type Type
}

// Method describes one entry of a struct's method table: the method's
// declared name mapped to its (already-mangled-independent) function type.
// The Lowerer consults this table to resolve `value.method(args)` calls and
// operator-overload dispatch (spec.md §4.2.1).
type Method struct {
	Name string
	Fn   *Function
}

// Struct represents a named struct type.
type Struct struct {
	Name       string
	TypeParams []*TypeParam
	Fields     []Field
	Methods    []Method
	// Unsafe marks a struct that transitively holds a raw pointer field and
	// so must supply its own __destroy/__oncopy lifecycle hooks rather than
	// having them auto-generated (spec.md §3.1).
	Unsafe bool
}

func (s *Struct) String() string { return s.Name }
func (s *Struct) IsType()        {}

// FieldByName returns the field with the given name, or nil if absent.
func (s *Struct) FieldByName(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// FieldIndex returns the 0-based index of the named field, or -1 if absent.
func (s *Struct) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// MethodByName returns the method with the given name, or nil if absent.
func (s *Struct) MethodByName(name string) *Method {
	for i := range s.Methods {
		if s.Methods[i].Name == name {
			return &s.Methods[i]
		}
	}
	return nil
}

// HasLifecycleHooks reports whether the struct needs destructor/copy-hook
// emission: either it is marked unsafe, or it transitively holds a string
// field or a field whose own struct type already has hooks (spec.md §3.1
// auto-acquisition rule).
func (s *Struct) HasLifecycleHooks() bool {
	if s.Unsafe {
		return true
	}
	for _, f := range s.Fields {
		if hasDestructibleType(f.Type) {
			return true
		}
	}
	return false
}

func hasDestructibleType(t Type) bool {
	switch tt := t.(type) {
	case *Primitive:
		return tt.Kind == Str
	case *Struct:
		return tt.HasLifecycleHooks()
	case *Array:
		return hasDestructibleType(tt.Elem)
	default:
		return false
	}
}

// Variant represents one tagged-union variant: an optional ordered payload
// field list, and an optional explicit discriminant value. A nil
// Discriminant means the variant's 0-based position in the owning Enum's
// Variants slice is its discriminant (spec.md §3.1).
type Variant struct {
	Name         string
	Payload      []Type
	Discriminant *int64
}

// Enum represents a named tagged-union type.
type Enum struct {
	Name       string
	TypeParams []*TypeParam
	// BaseType is the optional explicit backing integer primitive for the
	// discriminant; nil means the default (i32) applies.
	BaseType *Primitive
	Variants []Variant
}

func (e *Enum) String() string { return e.Name }
func (e *Enum) IsType()        {}

// DiscriminantType returns the enum's effective discriminant primitive.
func (e *Enum) DiscriminantType() *Primitive {
	if e.BaseType != nil {
		return e.BaseType
	}
	return TypeInt32
}

// VariantIndex returns the 0-based declaration index of the named variant,
// or -1 if absent.
func (e *Enum) VariantIndex(name string) int {
	for i, v := range e.Variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// DiscriminantValue returns the effective discriminant for the variant at
// the given declaration index: its explicit Discriminant if set, otherwise
// its declaration index.
func (e *Enum) DiscriminantValue(index int) int64 {
	v := e.Variants[index]
	if v.Discriminant != nil {
		return *v.Discriminant
	}
	return int64(index)
}

// Param represents one function parameter with its per-parameter move flag
// (spec.md §3.1): Move marks an argument that the callee consumes, so the
// caller's own destroy obligation for the argument local is suppressed.
type Param struct {
	Name string
	Type Type
	Move bool
}

// Function represents a function type.
type Function struct {
	TypeParams []*TypeParam
	Params     []Param
	Return     Type
	// Throws is the ordered list of declared throws types (spec.md §4.2.3);
	// empty for a function that cannot throw.
	Throws []Type
	// Extern marks a function whose name is never mangled and that uses the
	// plain C calling convention, not the throws tag+out/err convention
	// (spec.md §3.1, §4.2.4).
	Extern bool
}

func (f *Function) String() string {
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, p.Type.String())
	}
	ret := "void"
	if f.Return != nil {
		ret = f.Return.String()
	}
	s := "fn(" + strings.Join(params, ", ") + ")"
	if len(f.Throws) > 0 {
		throws := make([]string, 0, len(f.Throws))
		for _, t := range f.Throws {
			throws = append(throws, t.String())
		}
		s += " throws " + strings.Join(throws, ", ")
	}
	return s + " -> " + ret
}
func (f *Function) IsType() {}

// Throwing reports whether the function uses the throws calling convention.
func (f *Function) Throwing() bool { return len(f.Throws) > 0 }

// ThrowIndex returns the 1-based tag value for the named throws type, or 0
// if it is not one of the function's declared throws types. Tag 0 is
// reserved for success (spec.md §4.2.3).
func (f *Function) ThrowIndex(name string) int {
	for i, t := range f.Throws {
		if named, ok := t.(*Named); ok && named.Name == name {
			return i + 1
		}
		if s, ok := t.(*Struct); ok && s.Name == name {
			return i + 1
		}
	}
	return 0
}

// Equal reports ordinary type equality: for function types, only parameter
// types and return type participate (throws list, generics, and the extern
// flag participate in overload resolution and mangling, not type identity;
// spec.md §3.1).
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case *Primitive:
		bt, ok := b.(*Primitive)
		return ok && at.Kind == bt.Kind
	case *Pointer:
		bt, ok := b.(*Pointer)
		return ok && Equal(at.Elem, bt.Elem)
	case *Array:
		bt, ok := b.(*Array)
		return ok && at.Len == bt.Len && Equal(at.Elem, bt.Elem)
	case *Slice:
		bt, ok := b.(*Slice)
		return ok && Equal(at.Elem, bt.Elem)
	case *Range:
		bt, ok := b.(*Range)
		return ok && Equal(at.Elem, bt.Elem)
	case *Struct:
		bt, ok := b.(*Struct)
		return ok && at.Name == bt.Name
	case *Enum:
		bt, ok := b.(*Enum)
		return ok && at.Name == bt.Name
	case *Function:
		bt, ok := b.(*Function)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i].Type, bt.Params[i].Type) {
				return false
			}
		}
		return equalReturn(at.Return, bt.Return)
	case *Named:
		bt, ok := b.(*Named)
		return ok && at.Name == bt.Name
	case *TypeParam:
		bt, ok := b.(*TypeParam)
		return ok && at.Name == bt.Name
	default:
		return false
	}
}

func equalReturn(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Equal(a, b)
}

// Named represents a reference to a named type (struct or enum) that has
// not yet been resolved to its full definition, or is carried as a
// lightweight reference where the full definition is unnecessary.
type Named struct {
	Name string
	Ref  Type // the actual type it refers to, once resolved
}

func (n *Named) String() string { return n.Name }
func (n *Named) IsType()        {}

// Resolve follows a Named reference to its underlying type, or returns the
// Named itself if unresolved.
func Resolve(t Type) Type {
	for {
		n, ok := t.(*Named)
		if !ok || n.Ref == nil {
			return t
		}
		t = n.Ref
	}
}
