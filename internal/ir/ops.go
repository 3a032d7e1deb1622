package ir

// BinOpKind enumerates the binary arithmetic/logical/comparison opcodes
// (spec.md §3.3).
type BinOpKind string

const (
	Add    BinOpKind = "add"
	Sub    BinOpKind = "sub"
	Mul    BinOpKind = "mul"
	Div    BinOpKind = "div"
	Mod    BinOpKind = "mod"
	Eq     BinOpKind = "eq"
	Neq    BinOpKind = "neq"
	Lt     BinOpKind = "lt"
	Gt     BinOpKind = "gt"
	Lte    BinOpKind = "lte"
	Gte    BinOpKind = "gte"
	And    BinOpKind = "and"
	Or     BinOpKind = "or"
	BitAnd BinOpKind = "bit_and"
	BitOr  BinOpKind = "bit_or"
	BitXor BinOpKind = "bit_xor"
	Shl    BinOpKind = "shl"
	Shr    BinOpKind = "shr"
)

// UnOpKind enumerates the unary opcodes (spec.md §3.3).
type UnOpKind string

const (
	Neg    UnOpKind = "neg"
	Not    UnOpKind = "not"
	BitNot UnOpKind = "bit_not"
)

// BinOp is a binary arithmetic/logical/comparison instruction. OperandType
// is set only when it differs from ResultType (e.g. string equality
// yields bool from two string operands); otherwise it may be left nil and
// ResultType used for both.
type BinOp struct {
	Dest        ValueID
	Op          BinOpKind
	Left, Right Operand
	ResultType  Type
	OperandType Type
}

func (*BinOp) instrNode()      {}
func (b *BinOp) Result() ValueID { return b.Dest }

// EffectiveOperandType returns OperandType if set, else ResultType.
func (b *BinOp) EffectiveOperandType() Type {
	if b.OperandType != nil {
		return b.OperandType
	}
	return b.ResultType
}

// UnOp is a unary negate/logical-not/bitwise-not instruction.
type UnOp struct {
	Dest ValueID
	Op   UnOpKind
	Elem Operand
	Type Type
}

func (*UnOp) instrNode()      {}
func (u *UnOp) Result() ValueID { return u.Dest }
