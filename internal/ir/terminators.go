package ir

// ReturnValueTerm returns a value from the function.
type ReturnValueTerm struct {
	Value Operand
}

func (*ReturnValueTerm) terminatorNode()        {}
func (*ReturnValueTerm) Successors() []BlockID { return nil }

// ReturnVoidTerm returns with no value.
type ReturnVoidTerm struct{}

func (*ReturnVoidTerm) terminatorNode()        {}
func (*ReturnVoidTerm) Successors() []BlockID { return nil }

// JumpTerm is an unconditional jump to a single successor.
type JumpTerm struct {
	Target BlockID
}

func (*JumpTerm) terminatorNode()      {}
func (j *JumpTerm) Successors() []BlockID { return []BlockID{j.Target} }

// BranchTerm is a two-way branch on a boolean condition.
type BranchTerm struct {
	Condition   Operand
	TrueTarget  BlockID
	FalseTarget BlockID
}

func (*BranchTerm) terminatorNode() {}
func (b *BranchTerm) Successors() []BlockID {
	return []BlockID{b.TrueTarget, b.FalseTarget}
}

// SwitchCaseTarget is one (value, target) arm of a SwitchTerm.
type SwitchCaseTarget struct {
	Value  Operand
	Target BlockID
}

// SwitchTerm is an n-way switch on an integer value with a default
// successor (spec.md §3.4, §4.2.5: case values are value-ids of integer
// constants, and a default block is always synthesized).
type SwitchTerm struct {
	Subject Operand
	Cases   []SwitchCaseTarget
	Default BlockID
}

func (*SwitchTerm) terminatorNode() {}
func (s *SwitchTerm) Successors() []BlockID {
	targets := make([]BlockID, 0, len(s.Cases)+1)
	for _, c := range s.Cases {
		targets = append(targets, c.Target)
	}
	return append(targets, s.Default)
}

// UnreachableTerm marks a block that cannot be reached at runtime (the
// default terminator for any block left unterminated at seal time,
// spec.md §3.4, §7.2).
type UnreachableTerm struct{}

func (*UnreachableTerm) terminatorNode()        {}
func (*UnreachableTerm) Successors() []BlockID { return nil }
