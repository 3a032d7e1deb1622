package ir

// Call is an ordinary call to a function defined in this compilation,
// resolved to its final mangled name by the Lowerer (spec.md §4.2.4).
// Dest is UndefValue when the callee returns void.
type Call struct {
	Dest       ValueID
	Callee     string
	Args       []Operand
	ReturnType Type
}

func (*Call) instrNode()      {}
func (c *Call) Result() ValueID { return c.Dest }

// ExternCall is a call to a declared extern function (spec.md §3.3): the
// callee name is never mangled. Dest is UndefValue when the callee
// returns void.
type ExternCall struct {
	Dest       ValueID
	Callee     string
	Args       []Operand
	ReturnType Type
}

func (*ExternCall) instrNode()      {}
func (c *ExternCall) Result() ValueID { return c.Dest }

// ThrowsCall invokes a function using the throws calling convention
// (spec.md §4.2.3): the callee's transformed signature appends pointer
// operands for __out (sized for SuccessType, ignored if void) and __err
// (sized for the largest declared error variant), and Dest receives the
// i32 result tag (0 = success, i >= 1 = the i-th declared throws type).
type ThrowsCall struct {
	Dest        ValueID
	Callee      string
	Args        []Operand
	Out         Operand
	Err         Operand
	SuccessType Type
}

func (*ThrowsCall) instrNode()      {}
func (c *ThrowsCall) Result() ValueID { return c.Dest }
