package diag_test

import (
	"testing"

	"github.com/vellum-lang/vellumc/internal/diag"
)

func TestNewBuildsDiagnostic(t *testing.T) {
	span := diag.Span{Filename: "a.mlp", Line: 1, Column: 3, Start: 2, End: 6}
	d := diag.New(diag.StageLexer, diag.SeverityError, diag.CodeLexerUnterminatedString, "unterminated string literal", span)

	if d.Stage != diag.StageLexer {
		t.Fatalf("expected stage %q, got %q", diag.StageLexer, d.Stage)
	}
	if d.Code != diag.CodeLexerUnterminatedString {
		t.Fatalf("expected code %q, got %q", diag.CodeLexerUnterminatedString, d.Code)
	}
	if d.Severity != diag.SeverityError {
		t.Fatalf("expected severity %q, got %q", diag.SeverityError, d.Severity)
	}
	if d.Span != span {
		t.Fatalf("expected span %+v, got %+v", span, d.Span)
	}
}

func TestSpanIsValid(t *testing.T) {
	tests := []struct {
		name string
		span diag.Span
		want bool
	}{
		{"zero value", diag.Span{}, false},
		{"has line", diag.Span{Line: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.IsValid(); got != tt.want {
				t.Fatalf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMirDiagnosticCodes(t *testing.T) {
	span := diag.Span{Line: 4, Column: 1}
	d := diag.New(diag.StageMir, diag.SeverityError, diag.CodeMirNonTerminatedBlock, "block has no terminator", span)
	if d.Stage != diag.StageMir {
		t.Fatalf("expected stage %q, got %q", diag.StageMir, d.Stage)
	}
}
