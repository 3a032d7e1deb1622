package ir

// Destroy invokes a struct's __destroy hook on a pointer to a slot
// (spec.md §3.3, §4.2.2). It does not define a value.
type Destroy struct {
	Addr     Operand
	ElemType Type
}

func (*Destroy) instrNode()        {}
func (*Destroy) Result() ValueID { return UndefValue }

// OnCopy invokes a struct's __oncopy hook on a value (spec.md §3.3). It
// defines the copied result.
type OnCopy struct {
	Dest     ValueID
	Value    Operand
	ElemType Type
}

func (*OnCopy) instrNode()      {}
func (o *OnCopy) Result() ValueID { return o.Dest }

// Move renames one SSA value as another, semantically invalidating the
// source (spec.md §3.3). It defines Dest as an alias of Source; later
// passes that walk definitions must treat it as a def like any other
// instruction.
type Move struct {
	Dest     ValueID
	Source   Operand
	ElemType Type
}

func (*Move) instrNode()      {}
func (m *Move) Result() ValueID { return m.Dest }
