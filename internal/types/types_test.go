package types

import "testing"

func TestEqual(t *testing.T) {
	userA := &Struct{Name: "User", Fields: []Field{{Name: "id", Type: TypeInt32}}}
	userB := &Struct{Name: "User", Fields: []Field{{Name: "id", Type: TypeInt64}}}
	result := &Struct{Name: "Result"}

	tests := []struct {
		name     string
		a, b     Type
		expected bool
	}{
		{"same primitive kind", TypeInt32, TypeInt32, true},
		{"different primitive kind", TypeInt32, TypeInt64, false},
		{"pointer to equal elem", &Pointer{Elem: TypeInt32}, &Pointer{Elem: TypeInt32}, true},
		{"pointer to different elem", &Pointer{Elem: TypeInt32}, &Pointer{Elem: TypeInt64}, false},
		{"array same len and elem", &Array{Elem: TypeInt8, Len: 4}, &Array{Elem: TypeInt8, Len: 4}, true},
		{"array different len", &Array{Elem: TypeInt8, Len: 4}, &Array{Elem: TypeInt8, Len: 5}, false},
		{"slice same elem", &Slice{Elem: TypeString}, &Slice{Elem: TypeString}, true},
		{"struct same name, fields ignored", userA, userB, true},
		{"struct different name", userA, result, false},
		{"function params and return only", &Function{Params: []Param{{Type: TypeInt32}}, Return: TypeBool, Throws: []Type{userA}},
			&Function{Params: []Param{{Type: TypeInt32}}, Return: TypeBool}, true},
		{"function different param", &Function{Params: []Param{{Type: TypeInt32}}}, &Function{Params: []Param{{Type: TypeInt64}}}, false},
		{"function void return both nil", &Function{Return: nil}, &Function{Return: nil}, true},
		{"function void vs non-void", &Function{Return: nil}, &Function{Return: TypeInt32}, false},
		{"mismatched kinds", TypeInt32, &Pointer{Elem: TypeInt32}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.expected {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	leaf := &Struct{Name: "Leaf"}
	mid := &Named{Name: "Mid", Ref: leaf}
	outer := &Named{Name: "Outer", Ref: mid}
	unresolved := &Named{Name: "Unresolved"}

	tests := []struct {
		name string
		in   Type
		want Type
	}{
		{"chain of named refs resolves to the leaf", outer, leaf},
		{"single named ref resolves directly", mid, leaf},
		{"unresolved named returns itself", unresolved, unresolved},
		{"non-named type passes through", TypeInt32, TypeInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.in); got != tt.want {
				t.Errorf("Resolve(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStructHasLifecycleHooks(t *testing.T) {
	withString := &Struct{Name: "Named", Fields: []Field{{Name: "label", Type: TypeString}}}
	plain := &Struct{Name: "Point", Fields: []Field{{Name: "x", Type: TypeInt32}, {Name: "y", Type: TypeInt32}}}
	nested := &Struct{Name: "Wrapper", Fields: []Field{{Name: "inner", Type: withString}}}
	arrayOfStrings := &Struct{Name: "Lines", Fields: []Field{{Name: "data", Type: &Array{Elem: TypeString, Len: 3}}}}
	unsafePlain := &Struct{Name: "Raw", Unsafe: true}

	tests := []struct {
		name     string
		s        *Struct
		expected bool
	}{
		{"plain struct with no string/struct fields", plain, false},
		{"struct with a direct string field", withString, true},
		{"struct nesting a struct that has hooks", nested, true},
		{"struct with an array of strings", arrayOfStrings, true},
		{"unsafe struct always needs hooks", unsafePlain, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.HasLifecycleHooks(); got != tt.expected {
				t.Errorf("HasLifecycleHooks(%s) = %v, want %v", tt.s.Name, got, tt.expected)
			}
		})
	}
}

func TestFunctionThrowIndex(t *testing.T) {
	notFound := &Struct{Name: "NotFound"}
	dbError := &Struct{Name: "DbError"}
	fn := &Function{Throws: []Type{notFound, dbError}}

	tests := []struct {
		name     string
		errName  string
		expected int
	}{
		{"first declared error is tag 1", "NotFound", 1},
		{"second declared error is tag 2", "DbError", 2},
		{"undeclared error type is tag 0", "Unrelated", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fn.ThrowIndex(tt.errName); got != tt.expected {
				t.Errorf("ThrowIndex(%q) = %d, want %d", tt.errName, got, tt.expected)
			}
		})
	}

	if !fn.Throwing() {
		t.Error("Throwing() = false for a function with a non-empty Throws list")
	}
	if (&Function{}).Throwing() {
		t.Error("Throwing() = true for a function with no Throws list")
	}
}

func TestEnumDiscriminant(t *testing.T) {
	explicit := int64(42)
	e := &Enum{
		Name: "Status",
		Variants: []Variant{
			{Name: "Ok"},
			{Name: "Error", Discriminant: &explicit},
			{Name: "Pending"},
		},
	}

	tests := []struct {
		name     string
		index    int
		expected int64
	}{
		{"implicit discriminant is declaration index", 0, 0},
		{"explicit discriminant overrides index", 1, 42},
		{"implicit discriminant after an explicit one still uses its own index", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.DiscriminantValue(tt.index); got != tt.expected {
				t.Errorf("DiscriminantValue(%d) = %d, want %d", tt.index, got, tt.expected)
			}
		})
	}

	if got := e.VariantIndex("Error"); got != 1 {
		t.Errorf("VariantIndex(%q) = %d, want 1", "Error", got)
	}
	if got := e.VariantIndex("Missing"); got != -1 {
		t.Errorf("VariantIndex(%q) = %d, want -1", "Missing", got)
	}

	withBase := &Enum{BaseType: TypeUInt8}
	if got := withBase.DiscriminantType(); got != TypeUInt8 {
		t.Errorf("DiscriminantType() = %v, want explicit base %v", got, TypeUInt8)
	}
	withoutBase := &Enum{}
	if got := withoutBase.DiscriminantType(); got != TypeInt32 {
		t.Errorf("DiscriminantType() = %v, want default %v", got, TypeInt32)
	}
}

func TestStructFieldLookup(t *testing.T) {
	s := &Struct{
		Name: "Pair",
		Fields: []Field{
			{Name: "first", Type: TypeInt32},
			{Name: "second", Type: TypeBool},
		},
		Methods: []Method{
			{Name: "swap", Fn: &Function{}},
		},
	}

	if f := s.FieldByName("second"); f == nil || f.Type != TypeBool {
		t.Errorf("FieldByName(%q) = %v, want field of type %v", "second", f, TypeBool)
	}
	if f := s.FieldByName("missing"); f != nil {
		t.Errorf("FieldByName(%q) = %v, want nil", "missing", f)
	}
	if idx := s.FieldIndex("second"); idx != 1 {
		t.Errorf("FieldIndex(%q) = %d, want 1", "second", idx)
	}
	if idx := s.FieldIndex("missing"); idx != -1 {
		t.Errorf("FieldIndex(%q) = %d, want -1", "missing", idx)
	}
	if m := s.MethodByName("swap"); m == nil {
		t.Errorf("MethodByName(%q) = nil, want a method", "swap")
	}
	if m := s.MethodByName("missing"); m != nil {
		t.Errorf("MethodByName(%q) = %v, want nil", "missing", m)
	}
}
