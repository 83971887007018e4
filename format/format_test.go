package format

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/ncss/java/metrics"
	"github.com/dhamidi/ncss/java/parser"
)

const shapes = `package geo;

/** A shape. */
public class Square {
    private final int side;

    public Square(int side) { this.side = side; }

    public int area() {
        if (side < 0) {
            throw new IllegalStateException();
        }
        return side * side;
    }
}
`

func report(t *testing.T) *metrics.Report {
	t.Helper()
	unit, err := parser.Parse(context.Background(), []byte(shapes), parser.WithFile("Square.java"))
	require.NoError(t, err)

	totals := metrics.NewTotals()
	totals.Add(unit)
	totals.Fail("Broken.java", errors.New("Broken.java:3:1: syntax error"))
	return totals.Report()
}

func TestTextEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextEncoder(&buf, AllSections).Encode(report(t)))
	out := buf.String()

	assert.Contains(t, out, "Nr.  Classes  Functions  NCSS  Javadocs  Package\n")
	assert.Contains(t, out, "geo\n")
	assert.Contains(t, out, "geo.Square\n")
	assert.Contains(t, out, "geo.Square.Square(int)\n")
	assert.Contains(t, out, "geo.Square.area()\n")
	assert.Contains(t, out, "Files:")
	assert.Contains(t, out, "Average Function CCN:")
	assert.Contains(t, out, "failed\tBroken.java\tBroken.java:3:1: syntax error\n")
}

func TestTextEncoderSections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextEncoder(&buf, Sections{Functions: true}).Encode(report(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Nr.  NCSS  CCN  JVDC  Function\n"), out)
	assert.NotContains(t, out, "Package")
	assert.NotContains(t, out, "geo.Square\n")
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf, Sections{Packages: true, Functions: true}).Encode(report(t)))

	var decoded jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, 1, decoded.Files)
	assert.Equal(t, 1, decoded.Total.Classes)
	require.Len(t, decoded.Packages, 1)
	assert.Equal(t, "geo", decoded.Packages[0].Name)
	assert.Equal(t, decoded.Total.NCSS, decoded.Packages[0].NCSS)
	assert.Empty(t, decoded.Classes)
	require.Len(t, decoded.Functions, 2)
	assert.Equal(t, "geo.Square.Square(int)", decoded.Functions[0].Name)
	assert.Equal(t, "geo.Square.area()", decoded.Functions[1].Name)
	require.Len(t, decoded.Failures, 1)
	assert.Equal(t, "Broken.java", decoded.Failures[0].File)
}

func TestNewEncoder(t *testing.T) {
	var buf bytes.Buffer

	enc, err := NewEncoder("json", &buf, AllSections)
	require.NoError(t, err)
	assert.IsType(t, &JSONEncoder{}, enc)

	enc, err = NewEncoder("", &buf, AllSections)
	require.NoError(t, err)
	assert.IsType(t, &TextEncoder{}, enc)

	_, err = NewEncoder("html", &buf, AllSections)
	assert.Error(t, err)
}

func TestSnippet(t *testing.T) {
	src := []byte("class A {\n  int x = ;\n}\n")
	_, err := parser.Parse(context.Background(), src)
	require.Error(t, err)

	var serr *parser.SyntaxError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, 2, serr.Pos.Line)

	out := Snippet(err, src)
	lines := strings.Split(out, "\n")
	assert.Equal(t, serr.Error(), lines[0])
	assert.Equal(t, "   1 | class A {", lines[2])
	assert.Equal(t, "   2 |   int x = ;", lines[3])
	assert.Equal(t, "     | "+strings.Repeat(" ", serr.Pos.Column-1)+"^", lines[4])
	assert.Equal(t, "   3 | }", lines[5])
}

func TestSnippetPlainError(t *testing.T) {
	assert.Equal(t, "boom", Snippet(errors.New("boom"), nil))
}

func TestCaretPadding(t *testing.T) {
	assert.Equal(t, "\t  ", caretPadding("\tab", 3))
	assert.Equal(t, " ", caretPadding("é", 2), "one blank per rune")
	assert.Equal(t, "    ", caretPadding("ab", 4))
}
