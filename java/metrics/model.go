// Package metrics holds the records produced by parsing a Java compilation
// unit: per-class, per-function and per-package source statement counts,
// cyclomatic complexity and documentation coverage.
package metrics

import (
	"slices"
	"strings"
)

// DefaultPackage names the unnamed package of files without a package
// declaration.
const DefaultPackage = "."

// ClassMetric describes one top-level type declaration. Nested, local and
// anonymous classes are folded into the record of their top-level class.
type ClassMetric struct {
	Name           string
	NCSS           int
	Functions      int
	Classes        int
	EndLine        int
	EndColumn      int
	Javadocs       int
	JavadocLines   int
	SingleComments int
	MultiComments  int
}

// FunctionMetric describes a method, constructor or initializer block at
// any nesting depth.
type FunctionMetric struct {
	Name      string
	NCSS      int
	CCN       int
	Javadocs  int
	BeginLine int
	EndLine   int

	// LocalClasses and LocalFunctions count the classes and functions
	// declared inside the body.
	LocalClasses   int
	LocalFunctions int
}

// Signature returns the parameter list part of the function name.
func (f *FunctionMetric) Signature() string {
	if i := strings.IndexByte(f.Name, '('); i >= 0 {
		return f.Name[i:]
	}
	return ""
}

// PackageMetric aggregates the top-level declarations of one package.
type PackageMetric struct {
	Name           string
	NCSS           int
	Functions      int
	Classes        int
	Javadocs       int
	JavadocLines   int
	SingleComments int
	MultiComments  int
}

func (p *PackageMetric) Add(other *PackageMetric) {
	p.NCSS += other.NCSS
	p.Functions += other.Functions
	p.Classes += other.Classes
	p.Javadocs += other.Javadocs
	p.JavadocLines += other.JavadocLines
	p.SingleComments += other.SingleComments
	p.MultiComments += other.MultiComments
}

// AddClass merges a flushed top-level class into the package. The class
// itself and every class nested in it are counted.
func (p *PackageMetric) AddClass(c *ClassMetric) {
	p.NCSS += c.NCSS
	p.Functions += c.Functions
	p.Classes += c.Classes + 1
	p.Javadocs += c.Javadocs
	p.JavadocLines += c.JavadocLines
	p.SingleComments += c.SingleComments
	p.MultiComments += c.MultiComments
}

type Import struct {
	Name        string
	Wildcard    bool
	Static      bool
	BeginLine   int
	BeginColumn int
	EndLine     int
	EndColumn   int
}

// Unit is everything recorded for one compilation unit.
type Unit struct {
	File      string
	Package   string
	Classes   []*ClassMetric
	Functions []*FunctionMetric
	Packages  map[string]*PackageMetric
	Imports   []Import
	NCSS      int

	// Partial is set when parsing stopped at an error. Only declarations
	// completed before the error are present.
	Partial bool
}

func NewUnit(file string) *Unit {
	return &Unit{
		File:     file,
		Package:  DefaultPackage,
		Packages: map[string]*PackageMetric{},
	}
}

// PackageMetric returns the record for name, creating it on first use.
func (u *Unit) PackageMetric(name string) *PackageMetric {
	if pkg, ok := u.Packages[name]; ok {
		return pkg
	}
	pkg := &PackageMetric{Name: name}
	u.Packages[name] = pkg
	return pkg
}

// PackageNames returns the keys of Packages in sorted order.
func (u *Unit) PackageNames() []string {
	names := make([]string, 0, len(u.Packages))
	for name := range u.Packages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FunctionAt returns the innermost function whose line range contains
// line, or nil.
func (u *Unit) FunctionAt(line int) *FunctionMetric {
	var best *FunctionMetric
	for _, fn := range u.Functions {
		if line < fn.BeginLine || line > fn.EndLine {
			continue
		}
		if best == nil || fn.EndLine-fn.BeginLine < best.EndLine-best.BeginLine {
			best = fn
		}
	}
	return best
}
