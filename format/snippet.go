package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhamidi/ncss/java/parser"
)

// Snippet renders a syntax error together with the offending source line,
// its neighbours and a caret under the unexpected token. Errors that are
// not syntax errors are rendered by their Error method alone.
func Snippet(err error, src []byte) string {
	var serr *parser.SyntaxError
	if !errors.As(err, &serr) {
		return err.Error()
	}

	lines := strings.Split(string(src), "\n")
	line := min(max(serr.Pos.Line, 1), len(lines))
	col := max(serr.Pos.Column, 1)

	width := 1
	if tok := serr.Token; tok != nil && tok.Kind != parser.TokenEOF && tok.Span.End.Line == tok.Span.Start.Line {
		width = max(tok.Span.End.Column-tok.Span.Start.Column, 1)
	}

	var b strings.Builder
	b.WriteString(serr.Error())
	b.WriteString("\n\n")
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	text := strings.TrimRight(lines[line-1], "\r")
	fmt.Fprintf(&b, "%4d | %s\n", line, text)
	fmt.Fprintf(&b, "     | %s%s\n", caretPadding(text, col-1), strings.Repeat("^", width))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, strings.TrimRight(lines[line], "\r"))
	}
	return b.String()
}

// caretPadding covers the first n bytes of text with one blank per rune,
// keeping tabs so that the caret lines up in a terminal.
func caretPadding(text string, n int) string {
	prefix := text[:min(n, len(text))]
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString(strings.Repeat(" ", n-len(prefix)))
	return b.String()
}
