package ast

// Span represents a location in source code. The AST is a standalone input
// contract to the middle end: it does not import the lexer or parser
// packages (lexing and parsing are out of scope for this repository, spec.md
// §1), so it carries its own minimal position type.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// Node represents any AST node with an associated source span.
type Node interface {
	Span() Span
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl represents a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// TypeExpr represents a type annotation expression.
type TypeExpr interface {
	Node
	typeNode()
}

// Op identifies a unary or binary operator token. The concrete spelling
// matches the checker's surface syntax; the Lowerer maps it to an IR
// arithmetic/logical opcode (spec.md §3.3) unless the checker has annotated
// the expression with a resolved operator-overload method (spec.md §4.2.1).
type Op string

const (
	OpAdd    Op = "+"
	OpSub    Op = "-"
	OpMul    Op = "*"
	OpDiv    Op = "/"
	OpMod    Op = "%"
	OpEq     Op = "=="
	OpNeq    Op = "!="
	OpLt     Op = "<"
	OpGt     Op = ">"
	OpLte    Op = "<="
	OpGte    Op = ">="
	OpAnd    Op = "&&"
	OpOr     Op = "||"
	OpBitAnd Op = "&"
	OpBitOr  Op = "|"
	OpBitXor Op = "^"
	OpShl    Op = "<<"
	OpShr    Op = ">>"

	OpNeg    Op = "unary-"
	OpNot    Op = "unary!"
	OpBitNot Op = "unary~"
)

// File represents a parsed compilation unit.
type File struct {
	Package *PackageDecl
	Mods    []*ModDecl
	Uses    []*UseDecl
	Decls   []Decl
	span    Span
}

func (f *File) Span() Span { return f.span }

func NewFile(span Span) *File { return &File{span: span} }

func (f *File) SetSpan(span Span) { f.span = span }

// PackageDecl represents a package declaration.
type PackageDecl struct {
	Name *Ident
	span Span
}

func (d *PackageDecl) Span() Span { return d.span }

func NewPackageDecl(name *Ident, span Span) *PackageDecl {
	return &PackageDecl{Name: name, span: span}
}

func (d *PackageDecl) SetSpan(span Span) { d.span = span }

// ModDecl represents a nested module declaration used by the multi-module
// driver (spec.md §4.7) to determine module boundaries.
type ModDecl struct {
	Name *Ident
	span Span
}

func (d *ModDecl) Span() Span { return d.span }

func (d *ModDecl) SetSpan(span Span) { d.span = span }

func NewModDecl(name *Ident, span Span) *ModDecl {
	return &ModDecl{Name: name, span: span}
}

func (*ModDecl) declNode() {}

// UseDecl represents a use/import declaration, consumed by the driver to
// build the local-name-to-mangled-name and overloaded-import tables of
// spec.md §4.7.
type UseDecl struct {
	Path  []*Ident
	Alias *Ident
	span  Span
}

func (d *UseDecl) Span() Span { return d.span }

func (d *UseDecl) SetSpan(span Span) { d.span = span }

func NewUseDecl(path []*Ident, alias *Ident, span Span) *UseDecl {
	return &UseDecl{Path: path, Alias: alias, span: span}
}

func (*UseDecl) declNode() {}

// FnDecl represents a function declaration, including the throws protocol
// (spec.md §4.2.3): Throws is the ordered, 1-indexed list of error types the
// function may raise, used both for the transformed return-tag convention
// and for §4.2.4 mangling.
type FnDecl struct {
	Pub        bool
	Unsafe     bool
	Extern     bool
	Name       *Ident
	TypeParams []GenericParam
	Params     []*Param
	ReturnType TypeExpr
	Throws     []TypeExpr
	Body       *BlockExpr
	span       Span
}

func (d *FnDecl) Span() Span { return d.span }

func NewFnDecl(isPub, isUnsafe, isExtern bool, name *Ident, typeParams []GenericParam, params []*Param, returnType TypeExpr, throws []TypeExpr, body *BlockExpr, span Span) *FnDecl {
	return &FnDecl{
		Pub:        isPub,
		Unsafe:     isUnsafe,
		Extern:     isExtern,
		Name:       name,
		TypeParams: typeParams,
		Params:     params,
		ReturnType: returnType,
		Throws:     throws,
		Body:       body,
		span:       span,
	}
}

func (d *FnDecl) SetSpan(span Span) { d.span = span }

func (*FnDecl) declNode() {}

// GenericParam represents either a type or const generic parameter.
type GenericParam interface {
	Node
	genericParamNode()
}

// TypeParam represents a generic type parameter. Generic *resolution* is out
// of scope (spec.md §1); this node survives into the original declaration
// record so a monomorphized instance (spec.md §6) can be traced back to it.
type TypeParam struct {
	Name   *Ident
	Bounds []TypeExpr
	span   Span
}

func (p *TypeParam) Span() Span { return p.span }

func NewTypeParam(name *Ident, bounds []TypeExpr, span Span) *TypeParam {
	return &TypeParam{Name: name, Bounds: bounds, span: span}
}

func (p *TypeParam) SetSpan(span Span) { p.span = span }

func (*TypeParam) genericParamNode() {}

// Param represents a function parameter. Move marks a per-parameter move
// flag (spec.md §3.1): passing an argument to a Move parameter consumes it,
// so the caller's destroy obligation for that local is suppressed exactly
// as if the caller had written `move x` at the call site.
type Param struct {
	Name *Ident
	Type TypeExpr
	Move bool
	span Span
}

func (p *Param) Span() Span { return p.span }

func NewParam(name *Ident, typ TypeExpr, move bool, span Span) *Param {
	return &Param{Name: name, Type: typ, Move: move, span: span}
}

func (p *Param) SetSpan(span Span) { p.span = span }

// BlockExpr represents a block of statements with an optional tail
// expression (its value if used where an expression is expected).
type BlockExpr struct {
	Stmts []Stmt
	Tail  Expr
	span  Span
}

func (b *BlockExpr) Span() Span { return b.span }

func NewBlockExpr(stmts []Stmt, tail Expr, span Span) *BlockExpr {
	return &BlockExpr{Stmts: stmts, Tail: tail, span: span}
}

func (b *BlockExpr) SetSpan(span Span) { b.span = span }

func (*BlockExpr) exprNode() {}

// UnsafeBlock represents an unsafe block (unsafe { ... }).
type UnsafeBlock struct {
	Block *BlockExpr
	span  Span
}

func (b *UnsafeBlock) Span() Span { return b.span }

func (b *UnsafeBlock) SetSpan(span Span) { b.span = span }

func (*UnsafeBlock) exprNode() {}

func NewUnsafeBlock(block *BlockExpr, span Span) *UnsafeBlock {
	return &UnsafeBlock{Block: block, span: span}
}

// LetStmt represents a let binding statement.
type LetStmt struct {
	Mutable bool
	Name    *Ident
	Type    TypeExpr
	Value   Expr
	span    Span
}

func (s *LetStmt) Span() Span { return s.span }

func NewLetStmt(mutable bool, name *Ident, typ TypeExpr, value Expr, span Span) *LetStmt {
	return &LetStmt{Mutable: mutable, Name: name, Type: typ, Value: value, span: span}
}

func (s *LetStmt) SetSpan(span Span) { s.span = span }

func (*LetStmt) stmtNode() {}

// StructDecl represents a struct declaration with fields. Unsafe marks a
// struct that may transitively hold a raw pointer field and so must supply
// its own __destroy/__oncopy hooks rather than having them auto-generated
// (spec.md §3.1).
type StructDecl struct {
	Pub        bool
	Unsafe     bool
	Name       *Ident
	TypeParams []GenericParam
	Fields     []*StructField
	Methods    []*FnDecl
	span       Span
}

func (d *StructDecl) Span() Span { return d.span }

func NewStructDecl(isPub, isUnsafe bool, name *Ident, typeParams []GenericParam, fields []*StructField, methods []*FnDecl, span Span) *StructDecl {
	return &StructDecl{
		Pub:        isPub,
		Unsafe:     isUnsafe,
		Name:       name,
		TypeParams: typeParams,
		Fields:     fields,
		Methods:    methods,
		span:       span,
	}
}

func (d *StructDecl) SetSpan(span Span) { d.span = span }

func (*StructDecl) declNode() {}

// StructField represents a field within a struct declaration. Field order is
// part of the type's identity (spec.md §3.1) and dictates C struct layout.
type StructField struct {
	Name *Ident
	Type TypeExpr
	span Span
}

func (f *StructField) Span() Span { return f.span }

func NewStructField(name *Ident, typ TypeExpr, span Span) *StructField {
	return &StructField{Name: name, Type: typ, span: span}
}

func (f *StructField) SetSpan(span Span) { f.span = span }

// EnumDecl represents a named tagged-union declaration. BaseType is the
// optional explicit backing integer type for the discriminant.
type EnumDecl struct {
	Pub        bool
	Name       *Ident
	TypeParams []GenericParam
	BaseType   TypeExpr
	Variants   []*EnumVariant
	span       Span
}

func (d *EnumDecl) Span() Span { return d.span }

func NewEnumDecl(isPub bool, name *Ident, typeParams []GenericParam, baseType TypeExpr, variants []*EnumVariant, span Span) *EnumDecl {
	return &EnumDecl{
		Pub:        isPub,
		Name:       name,
		TypeParams: typeParams,
		BaseType:   baseType,
		Variants:   variants,
		span:       span,
	}
}

func (d *EnumDecl) SetSpan(span Span) { d.span = span }

func (*EnumDecl) declNode() {}

// EnumVariant represents a single tagged-union variant. Discriminant is the
// optional explicit tag value; when nil the variant's 0-based position in
// Variants is its discriminant.
type EnumVariant struct {
	Name         *Ident
	Fields       []TypeExpr
	Discriminant Expr
	span         Span
}

func (v *EnumVariant) Span() Span { return v.span }

func NewEnumVariant(name *Ident, fields []TypeExpr, discriminant Expr, span Span) *EnumVariant {
	return &EnumVariant{Name: name, Fields: fields, Discriminant: discriminant, span: span}
}

func (v *EnumVariant) SetSpan(span Span) { v.span = span }

// TypeAliasDecl represents a type alias declaration.
type TypeAliasDecl struct {
	Pub        bool
	Name       *Ident
	TypeParams []GenericParam
	Target     TypeExpr
	span       Span
}

func (d *TypeAliasDecl) Span() Span { return d.span }

func NewTypeAliasDecl(isPub bool, name *Ident, typeParams []GenericParam, target TypeExpr, span Span) *TypeAliasDecl {
	return &TypeAliasDecl{Pub: isPub, Name: name, TypeParams: typeParams, Target: target, span: span}
}

func (d *TypeAliasDecl) SetSpan(span Span) { d.span = span }

func (*TypeAliasDecl) declNode() {}

// ConstDecl represents a module-level constant, lowered to an IR global
// (spec.md §3.5).
type ConstDecl struct {
	Pub   bool
	Name  *Ident
	Type  TypeExpr
	Value Expr
	span  Span
}

func (d *ConstDecl) Span() Span { return d.span }

func NewConstDecl(isPub bool, name *Ident, typ TypeExpr, value Expr, span Span) *ConstDecl {
	return &ConstDecl{Pub: isPub, Name: name, Type: typ, Value: value, span: span}
}

func (d *ConstDecl) SetSpan(span Span) { d.span = span }

func (*ConstDecl) declNode() {}

// ExternDecl represents an extern function declaration (spec.md §3.3, §4.7):
// never mangled, and merged by name across modules (first wins).
type ExternDecl struct {
	Name       *Ident
	Params     []*Param
	ReturnType TypeExpr
	span       Span
}

func (d *ExternDecl) Span() Span { return d.span }

func NewExternDecl(name *Ident, params []*Param, returnType TypeExpr, span Span) *ExternDecl {
	return &ExternDecl{Name: name, Params: params, ReturnType: returnType, span: span}
}

func (d *ExternDecl) SetSpan(span Span) { d.span = span }

func (*ExternDecl) declNode() {}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	Value Expr
	span  Span
}

func (s *ReturnStmt) Span() Span { return s.span }

func (s *ReturnStmt) SetSpan(span Span) { s.span = span }

func NewReturnStmt(value Expr, span Span) *ReturnStmt {
	return &ReturnStmt{Value: value, span: span}
}

func (*ReturnStmt) stmtNode() {}

// ThrowStmt represents `throw E{...}` (spec.md §4.2.3).
type ThrowStmt struct {
	Value *StructLiteral
	span  Span
}

func (s *ThrowStmt) Span() Span { return s.span }

func (s *ThrowStmt) SetSpan(span Span) { s.span = span }

func NewThrowStmt(value *StructLiteral, span Span) *ThrowStmt {
	return &ThrowStmt{Value: value, span: span}
}

func (*ThrowStmt) stmtNode() {}

// MoveStmt represents `move x;` as a statement, marking the named local as
// moved in the current scope (spec.md §4.2.1, §4.2.2).
type MoveStmt struct {
	Name *Ident
	span Span
}

func (s *MoveStmt) Span() Span { return s.span }

func (s *MoveStmt) SetSpan(span Span) { s.span = span }

func NewMoveStmt(name *Ident, span Span) *MoveStmt {
	return &MoveStmt{Name: name, span: span}
}

func (*MoveStmt) stmtNode() {}

// ExprStmt represents an expression statement.
type ExprStmt struct {
	Expr Expr
	span Span
}

func (s *ExprStmt) Span() Span { return s.span }

func (s *ExprStmt) SetSpan(span Span) { s.span = span }

func NewExprStmt(expr Expr, span Span) *ExprStmt {
	return &ExprStmt{Expr: expr, span: span}
}

func (*ExprStmt) stmtNode() {}

// IfClause represents a single conditional branch within an if chain.
type IfClause struct {
	Condition Expr
	Body      *BlockExpr
	span      Span
}

func (c *IfClause) Span() Span { return c.span }

func (c *IfClause) SetSpan(span Span) { c.span = span }

func NewIfClause(condition Expr, body *BlockExpr, span Span) *IfClause {
	return &IfClause{Condition: condition, Body: body, span: span}
}

// IfExpr represents an if / else if / else expression chain whose arms must
// each produce a value of the same IR type (spec.md §4.2.1). Per spec.md §9,
// the checker is assumed to reject early `return` inside an if-expression
// arm at the statement level; the Lowerer treats encountering one as an
// internal-consistency failure (spec.md §7.1).
type IfExpr struct {
	Clauses []*IfClause
	Else    *BlockExpr
	span    Span
}

func (e *IfExpr) Span() Span { return e.span }

func (e *IfExpr) SetSpan(span Span) { e.span = span }

func NewIfExpr(clauses []*IfClause, elseBlock *BlockExpr, span Span) *IfExpr {
	return &IfExpr{Clauses: clauses, Else: elseBlock, span: span}
}

func (*IfExpr) exprNode() {}

// IfStmt represents an if / else if / else statement chain used for plain
// control flow (no merged value).
type IfStmt struct {
	Clauses []*IfClause
	Else    *BlockExpr
	span    Span
}

func (s *IfStmt) Span() Span { return s.span }

func (s *IfStmt) SetSpan(span Span) { s.span = span }

func NewIfStmt(clauses []*IfClause, elseBlock *BlockExpr, span Span) *IfStmt {
	return &IfStmt{Clauses: clauses, Else: elseBlock, span: span}
}

func (*IfStmt) stmtNode() {}

// WhileStmt represents a while loop (spec.md §4.2.5).
type WhileStmt struct {
	Condition Expr
	Body      *BlockExpr
	span      Span
}

func (s *WhileStmt) Span() Span { return s.span }

func (s *WhileStmt) SetSpan(span Span) { s.span = span }

func NewWhileStmt(condition Expr, body *BlockExpr, span Span) *WhileStmt {
	return &WhileStmt{Condition: condition, Body: body, span: span}
}

func (*WhileStmt) stmtNode() {}

// ForStmt represents `for i in a..b { body }` (spec.md §4.2.5).
type ForStmt struct {
	Iterator *Ident
	Iterable *RangeExpr
	Body     *BlockExpr
	span     Span
}

func (s *ForStmt) Span() Span { return s.span }

func (s *ForStmt) SetSpan(span Span) { s.span = span }

func NewForStmt(iterator *Ident, iterable *RangeExpr, body *BlockExpr, span Span) *ForStmt {
	return &ForStmt{Iterator: iterator, Iterable: iterable, Body: body, span: span}
}

func (*ForStmt) stmtNode() {}

// BreakStmt represents a break statement.
type BreakStmt struct {
	span Span
}

func (s *BreakStmt) Span() Span { return s.span }

func (s *BreakStmt) SetSpan(span Span) { s.span = span }

func NewBreakStmt(span Span) *BreakStmt { return &BreakStmt{span: span} }

func (*BreakStmt) stmtNode() {}

// ContinueStmt represents a continue statement.
type ContinueStmt struct {
	span Span
}

func (s *ContinueStmt) Span() Span { return s.span }

func (s *ContinueStmt) SetSpan(span Span) { s.span = span }

func NewContinueStmt(span Span) *ContinueStmt { return &ContinueStmt{span: span} }

func (*ContinueStmt) stmtNode() {}

// SwitchCase represents a single `case v:` arm of a switch statement. Value
// must be an integer-constant expression (spec.md §4.2.5).
type SwitchCase struct {
	Value Expr
	Body  *BlockExpr
	span  Span
}

func (c *SwitchCase) Span() Span { return c.span }

func (c *SwitchCase) SetSpan(span Span) { c.span = span }

func NewSwitchCase(value Expr, body *BlockExpr, span Span) *SwitchCase {
	return &SwitchCase{Value: value, Body: body, span: span}
}

// SwitchStmt represents `switch x { case v_i: ...; default: ... }`. A
// default block is always synthesized by the Lowerer even if the source
// omitted one (spec.md §4.2.5).
type SwitchStmt struct {
	Subject Expr
	Cases   []*SwitchCase
	Default *BlockExpr
	span    Span
}

func (s *SwitchStmt) Span() Span { return s.span }

func (s *SwitchStmt) SetSpan(span Span) { s.span = span }

func NewSwitchStmt(subject Expr, cases []*SwitchCase, def *BlockExpr, span Span) *SwitchStmt {
	return &SwitchStmt{Subject: subject, Cases: cases, Default: def, span: span}
}

func (*SwitchStmt) stmtNode() {}

// CatchKind distinguishes the three `catch` forms of spec.md §4.2.3.
type CatchKind int

const (
	CatchPanic CatchKind = iota
	CatchThrow
	CatchMatch
)

// CatchArm represents one `T_i x_i: body_i` arm of a `catch { ... }` clause.
// ErrType is nil for the `default y: body_d` fallback arm.
type CatchArm struct {
	ErrType TypeExpr
	Binding *Ident
	Body    *BlockExpr
	span    Span
}

func (a *CatchArm) Span() Span { return a.span }

func (a *CatchArm) SetSpan(span Span) { a.span = span }

func NewCatchArm(errType TypeExpr, binding *Ident, body *BlockExpr, span Span) *CatchArm {
	return &CatchArm{ErrType: errType, Binding: binding, Body: body, span: span}
}

// CatchClause represents the `catch ...` suffix of a throwing call
// (spec.md §4.2.3). Arms is empty for CatchPanic and CatchThrow.
type CatchClause struct {
	Kind Kind
	Arms []*CatchArm
	span Span
}

// Kind is CatchClause's own discriminant alias, kept distinct from CatchKind
// so call sites read `CatchClause.Kind` rather than the longer type name.
type Kind = CatchKind

func (c *CatchClause) Span() Span { return c.span }

func (c *CatchClause) SetSpan(span Span) { c.span = span }

func NewCatchClause(kind CatchKind, arms []*CatchArm, span Span) *CatchClause {
	return &CatchClause{Kind: kind, Arms: arms, span: span}
}

// CatchExpr wraps a throwing call with its catch clause:
// `c = callee(args) catch ...`.
type CatchExpr struct {
	Call  *CallExpr
	Catch *CatchClause
	span  Span
}

func (e *CatchExpr) Span() Span { return e.span }

func (e *CatchExpr) SetSpan(span Span) { e.span = span }

func NewCatchExpr(call *CallExpr, catch *CatchClause, span Span) *CatchExpr {
	return &CatchExpr{Call: call, Catch: catch, span: span}
}

func (*CatchExpr) exprNode() {}

// Ident represents an identifier.
type Ident struct {
	Name string
	span Span
}

func (i *Ident) Span() Span { return i.span }

func (*Ident) exprNode() {}

func NewIdent(name string, span Span) *Ident { return &Ident{Name: name, span: span} }

func (i *Ident) SetSpan(span Span) { i.span = span }

// IntegerLit represents an integer literal (spec.md §4.2.1: the smallest
// signed 32-bit type is chosen for literals in the i32 range, otherwise
// 64-bit signed, unless the checker's type table records another type for
// the literal).
type IntegerLit struct {
	Text string
	span Span
}

func (l *IntegerLit) Span() Span { return l.span }

func NewIntegerLit(text string, span Span) *IntegerLit {
	return &IntegerLit{Text: text, span: span}
}

func (l *IntegerLit) SetSpan(span Span) { l.span = span }

func (*IntegerLit) exprNode() {}

// StringLit represents a string literal.
type StringLit struct {
	Value string
	span  Span
}

func (l *StringLit) Span() Span { return l.span }

func NewStringLit(value string, span Span) *StringLit {
	return &StringLit{Value: value, span: span}
}

func (l *StringLit) SetSpan(span Span) { l.span = span }

func (*StringLit) exprNode() {}

// BoolLit represents a boolean literal.
type BoolLit struct {
	Value bool
	span  Span
}

func (l *BoolLit) Span() Span { return l.span }

func NewBoolLit(value bool, span Span) *BoolLit { return &BoolLit{Value: value, span: span} }

func (l *BoolLit) SetSpan(span Span) { l.span = span }

func (*BoolLit) exprNode() {}

// FloatLit represents a floating-point literal.
type FloatLit struct {
	Text string
	span Span
}

func (l *FloatLit) Span() Span { return l.span }

func (l *FloatLit) SetSpan(span Span) { l.span = span }

func NewFloatLit(text string, span Span) *FloatLit { return &FloatLit{Text: text, span: span} }

func (*FloatLit) exprNode() {}

// NilLit represents the null-pointer literal.
type NilLit struct {
	span Span
}

func (l *NilLit) Span() Span { return l.span }

func NewNilLit(span Span) *NilLit { return &NilLit{span: span} }

func (l *NilLit) SetSpan(span Span) { l.span = span }

func (*NilLit) exprNode() {}

// ArrayLiteral represents a fixed-array or slice literal.
type ArrayLiteral struct {
	Type     TypeExpr // optional explicit type
	Elements []Expr
	span     Span
}

func (a *ArrayLiteral) Span() Span { return a.span }

func NewArrayLiteral(elements []Expr, span Span) *ArrayLiteral {
	return &ArrayLiteral{Elements: elements, span: span}
}

func NewTypedArrayLiteral(typ TypeExpr, elements []Expr, span Span) *ArrayLiteral {
	return &ArrayLiteral{Type: typ, Elements: elements, span: span}
}

func (a *ArrayLiteral) SetSpan(span Span) { a.span = span }

func (*ArrayLiteral) exprNode() {}

// PrefixExpr represents a prefix (unary) expression.
type PrefixExpr struct {
	Op   Op
	Expr Expr
	span Span
}

func (e *PrefixExpr) Span() Span { return e.span }

func NewPrefixExpr(op Op, expr Expr, span Span) *PrefixExpr {
	return &PrefixExpr{Op: op, Expr: expr, span: span}
}

func (e *PrefixExpr) SetSpan(span Span) { e.span = span }

func (*PrefixExpr) exprNode() {}

// InfixExpr represents an infix binary expression, possibly dispatched to a
// resolved operator-overload method by the checker (spec.md §4.2.1).
type InfixExpr struct {
	Op    Op
	Left  Expr
	Right Expr
	span  Span
}

func (e *InfixExpr) Span() Span { return e.span }

func NewInfixExpr(op Op, left, right Expr, span Span) *InfixExpr {
	return &InfixExpr{Op: op, Left: left, Right: right, span: span}
}

func (e *InfixExpr) SetSpan(span Span) { e.span = span }

func (*InfixExpr) exprNode() {}

// AssignExpr represents an assignment expression.
type AssignExpr struct {
	Target Expr
	Value  Expr
	span   Span
}

func (e *AssignExpr) Span() Span { return e.span }

func NewAssignExpr(target, value Expr, span Span) *AssignExpr {
	return &AssignExpr{Target: target, Value: value, span: span}
}

func (e *AssignExpr) SetSpan(span Span) { e.span = span }

func (*AssignExpr) exprNode() {}

// CallExpr represents a function or method call.
type CallExpr struct {
	Callee Expr
	Self   Expr // non-nil for a method call invoked on a value (spec.md §4.2.1)
	Args   []Expr
	span   Span
}

func (e *CallExpr) Span() Span { return e.span }

func NewCallExpr(callee Expr, args []Expr, span Span) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, span: span}
}

func NewMethodCallExpr(self Expr, callee Expr, args []Expr, span Span) *CallExpr {
	return &CallExpr{Callee: callee, Self: self, Args: args, span: span}
}

func (e *CallExpr) SetSpan(span Span) { e.span = span }

func (*CallExpr) exprNode() {}

// FieldExpr represents a field access expression.
type FieldExpr struct {
	Target Expr
	Field  *Ident
	span   Span
}

func (e *FieldExpr) Span() Span { return e.span }

func NewFieldExpr(target Expr, field *Ident, span Span) *FieldExpr {
	return &FieldExpr{Target: target, Field: field, span: span}
}

func (e *FieldExpr) SetSpan(span Span) { e.span = span }

func (*FieldExpr) exprNode() {}

// IndexExpr represents target[index].
type IndexExpr struct {
	Target Expr
	Index  Expr
	span   Span
}

func (e *IndexExpr) Span() Span { return e.span }

func NewIndexExpr(target Expr, index Expr, span Span) *IndexExpr {
	return &IndexExpr{Target: target, Index: index, span: span}
}

func (e *IndexExpr) SetSpan(span Span) { e.span = span }

func (*IndexExpr) exprNode() {}

// CastExpr represents an explicit cast (`x as T`, spec.md §4.2.1).
type CastExpr struct {
	Value Expr
	Type  TypeExpr
	span  Span
}

func (e *CastExpr) Span() Span { return e.span }

func NewCastExpr(value Expr, typ TypeExpr, span Span) *CastExpr {
	return &CastExpr{Value: value, Type: typ, span: span}
}

func (e *CastExpr) SetSpan(span Span) { e.span = span }

func (*CastExpr) exprNode() {}

// SizeOfExpr represents compile-time `sizeof(T)` (spec.md §3.3).
type SizeOfExpr struct {
	Type TypeExpr
	span Span
}

func (e *SizeOfExpr) Span() Span { return e.span }

func NewSizeOfExpr(typ TypeExpr, span Span) *SizeOfExpr {
	return &SizeOfExpr{Type: typ, span: span}
}

func (e *SizeOfExpr) SetSpan(span Span) { e.span = span }

func (*SizeOfExpr) exprNode() {}

// MoveExpr represents `move x` used as an expression (spec.md §4.2.1).
type MoveExpr struct {
	Target *Ident
	span   Span
}

func (e *MoveExpr) Span() Span { return e.span }

func NewMoveExpr(target *Ident, span Span) *MoveExpr {
	return &MoveExpr{Target: target, span: span}
}

func (e *MoveExpr) SetSpan(span Span) { e.span = span }

func (*MoveExpr) exprNode() {}

// NamedType represents a named type reference.
type NamedType struct {
	Name *Ident
	span Span
}

func (t *NamedType) Span() Span { return t.span }

func (*NamedType) typeNode() {}

func NewNamedType(name *Ident, span Span) *NamedType { return &NamedType{Name: name, span: span} }

func (t *NamedType) SetSpan(span Span) { t.span = span }

// GenericTypeExpr represents a generic type instantiation (e.g. Box[int]).
type GenericTypeExpr struct {
	Base TypeExpr
	Args []TypeExpr
	span Span
}

func (t *GenericTypeExpr) Span() Span { return t.span }

func (t *GenericTypeExpr) SetSpan(span Span) { t.span = span }

func NewGenericTypeExpr(base TypeExpr, args []TypeExpr, span Span) *GenericTypeExpr {
	return &GenericTypeExpr{Base: base, Args: args, span: span}
}

func (*GenericTypeExpr) typeNode() {}

// FunctionType represents a function type annotation (fn(A, B) throws E -> C).
type FunctionType struct {
	TypeParams []GenericParam
	Params     []TypeExpr
	Return     TypeExpr
	Throws     []TypeExpr
	Extern     bool
	span       Span
}

func (t *FunctionType) Span() Span { return t.span }

func (t *FunctionType) SetSpan(span Span) { t.span = span }

func (*FunctionType) typeNode() {}

func NewFunctionType(typeParams []GenericParam, params []TypeExpr, ret TypeExpr, throws []TypeExpr, extern bool, span Span) *FunctionType {
	return &FunctionType{TypeParams: typeParams, Params: params, Return: ret, Throws: throws, Extern: extern, span: span}
}

// StructLiteralField represents a field assignment in a struct literal.
type StructLiteralField struct {
	Name  *Ident
	Value Expr
	span  Span
}

func (f *StructLiteralField) Span() Span { return f.span }

func NewStructLiteralField(name *Ident, value Expr, span Span) *StructLiteralField {
	return &StructLiteralField{Name: name, Value: value, span: span}
}

func (f *StructLiteralField) SetSpan(span Span) { f.span = span }

// StructLiteral represents a struct instantiation, also used directly by
// ThrowStmt to construct the thrown error value (spec.md §4.2.3).
type StructLiteral struct {
	Name   *Ident
	Fields []*StructLiteralField
	span   Span
}

func (l *StructLiteral) Span() Span { return l.span }

func NewStructLiteral(name *Ident, fields []*StructLiteralField, span Span) *StructLiteral {
	return &StructLiteral{Name: name, Fields: fields, span: span}
}

func (l *StructLiteral) SetSpan(span Span) { l.span = span }

func (*StructLiteral) exprNode() {}
