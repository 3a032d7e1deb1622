package ir

// Alloca allocates a typed stack slot and yields a pointer to it. An
// Alloca is *promotable* (spec.md §4.4 step 1) when its result is used
// only by Load and Store — never by FieldAddr, ElemAddr, or as a
// throws-call's __out/__err argument.
type Alloca struct {
	Dest     ValueID
	ElemType Type
}

func (*Alloca) instrNode()      {}
func (a *Alloca) Result() ValueID { return a.Dest }

// Load reads the value stored at a pointer operand.
type Load struct {
	Dest     ValueID
	Addr     Operand
	ElemType Type
}

func (*Load) instrNode()      {}
func (l *Load) Result() ValueID { return l.Dest }

// Store writes a value through a pointer operand. Store does not define a
// value (spec.md §4.1).
type Store struct {
	Addr  Operand
	Value Operand
}

func (*Store) instrNode()        {}
func (*Store) Result() ValueID { return UndefValue }

// FieldAddr computes the address of a named field of a struct pointer.
// An Alloca used as a FieldAddr base fails the promotability test.
type FieldAddr struct {
	Dest      ValueID
	Base      Operand
	FieldName string
	FieldType Type
}

func (*FieldAddr) instrNode()      {}
func (f *FieldAddr) Result() ValueID { return f.Dest }

// ElemAddr computes the address of an integer-indexed element of an array
// pointer. An Alloca used as an ElemAddr base fails the promotability
// test.
type ElemAddr struct {
	Dest     ValueID
	Base     Operand
	Index    Operand
	ElemType Type
}

func (*ElemAddr) instrNode()      {}
func (e *ElemAddr) Result() ValueID { return e.Dest }
