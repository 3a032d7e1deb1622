package ir

// Copy assigns Src to Dest verbatim. It is the only instruction kind SSA
// destruction introduces (spec.md §4.5): a phi is replaced by one Copy per
// incoming edge, placed at the end of the corresponding predecessor (or a
// split critical edge's intermediate block), sequenced so that a cycle
// among several copies is broken using exactly one temporary.
//
// Copy is distinct from Move: Move carries the source language's transfer-
// of-ownership semantics during lowering, while Copy is a plain, untyped-
// in-intent value assignment with no lifecycle meaning — the C printer
// emits it as a bare `dest = src;`.
type Copy struct {
	Dest ValueID
	Src  Operand
}

func (*Copy) instrNode()        {}
func (c *Copy) Result() ValueID { return c.Dest }
