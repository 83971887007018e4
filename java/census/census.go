// Package census counts class and function declarations with tree-sitter.
// The counts are an independent check of the records produced by the
// metrics parser.
package census

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/dhamidi/ncss/java/metrics"
)

// ErrSyntax is returned when tree-sitter finds errors in the source.
var ErrSyntax = errors.New("tree-sitter reported syntax errors")

// Counts holds the number of class and function declarations of a file.
// Classes include nested, local and anonymous classes and enum constants
// with a body. Functions include methods, constructors, annotation
// elements and initializer blocks.
type Counts struct {
	Classes   int
	Functions int
}

func (c Counts) String() string {
	return fmt.Sprintf("%d classes, %d functions", c.Classes, c.Functions)
}

var classNodes = map[string]bool{
	"class_declaration":           true,
	"interface_declaration":       true,
	"enum_declaration":            true,
	"record_declaration":          true,
	"annotation_type_declaration": true,
}

var functionNodes = map[string]bool{
	"method_declaration":                  true,
	"constructor_declaration":             true,
	"compact_constructor_declaration":     true,
	"annotation_type_element_declaration": true,
	"static_initializer":                  true,
}

// Census wraps a tree-sitter parser. It is not safe for concurrent use.
type Census struct {
	parser *sitter.Parser
}

func New() *Census {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &Census{parser: p}
}

func (c *Census) Close() {
	c.parser.Close()
}

// Count parses src and counts its declarations.
func (c *Census) Count(ctx context.Context, src []byte) (Counts, error) {
	tree, err := c.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return Counts{}, fmt.Errorf("tree-sitter: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return Counts{}, ErrSyntax
	}

	var counts Counts
	walk(root, &counts)
	return counts, nil
}

func walk(n *sitter.Node, counts *Counts) {
	typ := n.Type()
	switch {
	case classNodes[typ]:
		counts.Classes++
	case functionNodes[typ]:
		counts.Functions++
	case typ == "class_body":
		// anonymous class or enum constant body
		if parent := n.Parent(); parent != nil {
			switch parent.Type() {
			case "object_creation_expression", "enum_constant":
				counts.Classes++
			}
		}
	case typ == "block":
		// instance initializer
		if parent := n.Parent(); parent != nil {
			switch parent.Type() {
			case "class_body", "enum_body_declarations":
				counts.Functions++
			}
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), counts)
	}
}

// FromUnit derives the same counts from a metrics unit.
func FromUnit(u *metrics.Unit) Counts {
	counts := Counts{Functions: len(u.Functions)}
	for _, c := range u.Classes {
		counts.Classes += c.Classes + 1
	}
	return counts
}

// Comparison is the result of checking one file.
type Comparison struct {
	File   string
	Parser Counts
	Census Counts
}

func (c Comparison) Match() bool {
	return c.Parser == c.Census
}

func (c Comparison) String() string {
	if c.Match() {
		return fmt.Sprintf("%s: ok (%s)", c.File, c.Parser)
	}
	return fmt.Sprintf("%s: mismatch: parser found %s, tree-sitter found %s", c.File, c.Parser, c.Census)
}

// Compare counts src with tree-sitter and checks the result against unit.
func (c *Census) Compare(ctx context.Context, file string, src []byte, unit *metrics.Unit) (Comparison, error) {
	counts, err := c.Count(ctx, src)
	if err != nil {
		return Comparison{}, fmt.Errorf("%s: %w", file, err)
	}
	return Comparison{File: file, Parser: FromUnit(unit), Census: counts}, nil
}
