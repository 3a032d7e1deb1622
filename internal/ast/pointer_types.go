package ast

// PointerType represents a raw pointer type (*T).
type PointerType struct {
	Elem TypeExpr
	span Span
}

// Span returns the pointer type span.
func (t *PointerType) Span() Span { return t.span }

// SetSpan updates the pointer type span.
func (t *PointerType) SetSpan(span Span) {
	t.span = span
}

// typeNode marks PointerType as a type expression.
func (*PointerType) typeNode() {}

// NewPointerType constructs a pointer type node.
func NewPointerType(elem TypeExpr, span Span) *PointerType {
	return &PointerType{
		Elem: elem,
		span: span,
	}
}
