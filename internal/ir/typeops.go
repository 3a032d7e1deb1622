package ir

// Cast performs an explicit reinterpretation or numeric conversion, with
// no runtime check (spec.md §4.2.1).
type Cast struct {
	Dest   ValueID
	Value  Operand
	Target Type
}

func (*Cast) instrNode()      {}
func (c *Cast) Result() ValueID { return c.Dest }

// SizeOfInstr computes the compile-time size, in bytes, of a type.
type SizeOfInstr struct {
	Dest ValueID
	Of   Type
}

func (*SizeOfInstr) instrNode()      {}
func (s *SizeOfInstr) Result() ValueID { return s.Dest }
