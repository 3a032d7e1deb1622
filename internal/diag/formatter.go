package diag

import (
	"fmt"
	"os"
	"strings"
)

// Formatter formats diagnostics in a Rust-style format with source code
// snippets, caching loaded source files by name.
type Formatter struct {
	sourceCache map[string]string
}

// NewFormatter creates a new diagnostic formatter.
func NewFormatter() *Formatter {
	return &Formatter{
		sourceCache: make(map[string]string),
	}
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format formats and prints a diagnostic in Rust-style format.
func (f *Formatter) Format(d Diagnostic) {
	f.printHeader(d)

	if d.Span.IsValid() {
		src, err := f.LoadSource(d.Span.Filename)
		if err == nil && src != "" {
			f.printSourceLine(d.Span, src)
		} else {
			fmt.Fprintf(os.Stderr, "  --> %s\n", d.Span.String())
		}
	}

	for _, note := range d.Notes {
		fmt.Fprintf(os.Stderr, "  = note: %s\n", note)
	}
	for _, related := range d.Related {
		if related.IsValid() {
			fmt.Fprintf(os.Stderr, "  = note: related location at %s\n", related.String())
		}
	}
	if d.Help != "" {
		fmt.Fprintf(os.Stderr, "help: %s\n", d.Help)
	}
}

func (f *Formatter) printHeader(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = "error"
	}
	if d.Code != "" {
		fmt.Fprintf(os.Stderr, "%s[%s]: %s\n", severity, d.Code, d.Message)
	} else {
		fmt.Fprintf(os.Stderr, "%s: %s\n", severity, d.Message)
	}
}

func (f *Formatter) printSourceLine(span Span, src string) {
	lines := strings.Split(src, "\n")
	if span.Line < 1 || span.Line > len(lines) {
		fmt.Fprintf(os.Stderr, "  --> %s\n", span.String())
		return
	}
	lineContent := lines[span.Line-1]
	lineNumStr := fmt.Sprintf("%d", span.Line)

	fmt.Fprintf(os.Stderr, "  --> %s\n", span.String())
	fmt.Fprintf(os.Stderr, "   %s |\n", strings.Repeat(" ", len(lineNumStr)))
	fmt.Fprintf(os.Stderr, " %s | %s\n", lineNumStr, lineContent)

	width := span.End - span.Start
	if width < 1 {
		width = 1
	}
	col := span.Column - 1
	if col < 0 {
		col = 0
	}
	underline := strings.Repeat(" ", col) + strings.Repeat("^", width)
	fmt.Fprintf(os.Stderr, "   %s | %s\n", strings.Repeat(" ", len(lineNumStr)), underline)
}
