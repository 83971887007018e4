package parser

import (
	"strconv"

	"github.com/dhamidi/ncss/java/metrics"
)

// counters only ever grow during a parse. Records are computed as the
// difference between two snapshots.
type counters struct {
	ncss         int
	single       int
	multi        int
	javadocs     int
	javadocLines int
}

// classScope is the part of the parse state owned by the innermost class
// body being parsed.
type classScope struct {
	path       string
	depth      int
	publicSeen bool
	// implicitPublic marks interface and annotation bodies, whose members
	// are public unless declared private.
	implicitPublic bool
	// components is the header signature of a record, used to name its
	// compact constructor.
	components string
	functions  int
	classes    int
	anonymous  int
}

// functionScope is the part of the parse state owned by the innermost
// function body being parsed.
type functionScope struct {
	name           string
	active         bool
	ccn            int
	returnSeen     bool
	excluded       int
	localClasses   int
	localFunctions int
}

// state is threaded through the productions. Scopes are saved in Go locals
// on entry and restored on exit, so the call stack mirrors the nesting.
type state struct {
	pkg   string
	class classScope
	fn    functionScope
}

// declaration is a declaration whose first token has been seen.
type declaration struct {
	start *Token
	snap  counters
	own   int
	mods  modifiers
}

// beginDeclaration snapshots the counters before the declaration at the
// current token. When counted is set the declaration itself contributes
// one statement.
func (p *Parser) beginDeclaration(counted bool) *declaration {
	d := &declaration{start: p.cur.peek(), snap: p.n}
	if counted {
		d.own = 1
		p.count()
	}
	return d
}

// count records one non-commenting source statement.
func (p *Parser) count() {
	if p.cur.speculating() {
		return
	}
	p.n.ncss++
}

// branch records one decision point of the current function.
func (p *Parser) branch() {
	if p.cur.speculating() || !p.st.fn.active {
		return
	}
	p.st.fn.ccn++
}

func (p *Parser) sawReturn() {
	if p.cur.speculating() {
		return
	}
	p.st.fn.returnSeen = true
}

// commitComments counts the comments attached to a committed token.
// Javadoc comments are only counted when attributed to a declaration.
func (p *Parser) commitComments(tok *Token) {
	for s := tok.Special; s != nil; s = s.Special {
		switch {
		case s.Kind == TokenLineComment:
			p.n.single++
		case s.IsJavadoc():
		default:
			p.n.multi += s.Lines()
		}
	}
}

// javadocVisible reports whether javadoc on a declaration with mods is
// counted.
func (p *Parser) javadocVisible(mods modifiers) bool {
	if p.privateJavadoc {
		return true
	}
	public := mods.has(modPublic|modProtected) || (p.st.class.implicitPublic && !mods.has(modPrivate))
	return public && p.st.class.publicSeen
}

// attributeJavadoc walks the comments before the first token of d, closest
// first. Line comments are skipped, the first javadoc comment is counted if
// visible, and any other block comment ends the walk.
func (p *Parser) attributeJavadoc(d *declaration) int {
	if p.cur.speculating() {
		return 0
	}
	for s := d.start.Special; s != nil; s = s.Special {
		switch {
		case s.Kind == TokenLineComment:
			continue
		case s.IsJavadoc():
			if !p.javadocVisible(d.mods) {
				return 0
			}
			p.n.javadocs++
			p.n.javadocLines += s.Lines()
			return 1
		default:
			return 0
		}
	}
	return 0
}

// nestedName returns the class path for a named class declared in the
// current scope.
func (p *Parser) nestedName(name string) string {
	if p.st.class.path == "" {
		return name
	}
	return p.st.class.path + "." + name
}

// anonymousName returns the class path for the next anonymous class of the
// current scope.
func (p *Parser) anonymousName() string {
	if p.cur.speculating() {
		return p.st.class.path + "$"
	}
	p.st.class.anonymous++
	return p.st.class.path + "$" + strconv.Itoa(p.st.class.anonymous)
}

func (p *Parser) qualify(name string) string {
	if p.st.pkg == "" {
		return name
	}
	return p.st.pkg + "." + name
}

// classBody runs body as the body of the class at path. On the way out it
// flushes a class record when the class is top level, or folds its counts
// into the enclosing scope when it is nested.
func (p *Parser) classBody(d *declaration, path string, members classScope, body func()) {
	if p.cur.speculating() {
		body()
		return
	}
	p.attributeJavadoc(d)

	outerClass, outerFn := p.st.class, p.st.fn
	members.path = path
	members.depth = outerClass.depth + 1
	p.st.class = members
	p.st.fn = functionScope{}

	body()

	end := p.cur.last()
	inner := p.st.class
	if inner.depth != outerClass.depth+1 {
		p.internal("class %s left at depth %d, entered at %d", path, inner.depth, outerClass.depth+1)
	}
	p.st.class, p.st.fn = outerClass, outerFn

	ncss := p.n.ncss - d.snap.ncss
	if outerClass.depth == 0 {
		p.flushClass(&metrics.ClassMetric{
			Name:           p.qualify(path),
			NCSS:           ncss,
			Functions:      inner.functions,
			Classes:        inner.classes,
			EndLine:        end.Span.Start.Line,
			EndColumn:      end.Span.Start.Column,
			Javadocs:       p.n.javadocs - d.snap.javadocs,
			JavadocLines:   p.n.javadocLines - d.snap.javadocLines,
			SingleComments: p.n.single - d.snap.single,
			MultiComments:  p.n.multi - d.snap.multi,
		})
		return
	}

	p.st.class.functions += inner.functions
	p.st.class.classes += inner.classes + 1
	if p.st.fn.active {
		p.st.fn.localFunctions += inner.functions
		p.st.fn.localClasses += inner.classes + 1
		p.st.fn.excluded += ncss - d.own
	}
}

// functionBody runs body as the body of the function name, then records it.
func (p *Parser) functionBody(d *declaration, name string, body func()) {
	if p.cur.speculating() {
		body()
		return
	}
	javadocs := p.attributeJavadoc(d)

	outer := p.st.fn
	p.st.fn = functionScope{name: name, active: true, ccn: 1}

	body()

	end := p.cur.last()
	fn := p.st.fn
	p.st.fn = outer

	ccn := fn.ccn
	if fn.returnSeen {
		ccn--
	}
	p.pending = append(p.pending, &metrics.FunctionMetric{
		Name:           p.qualify(p.st.class.path + "." + name),
		NCSS:           p.n.ncss - d.snap.ncss - fn.excluded,
		CCN:            ccn,
		Javadocs:       javadocs,
		BeginLine:      d.start.Span.Start.Line,
		EndLine:        end.Span.End.Line,
		LocalClasses:   fn.localClasses,
		LocalFunctions: fn.localFunctions,
	})
	p.st.class.functions++
}

// flushClass publishes a completed top-level class together with every
// function recorded inside it.
func (p *Parser) flushClass(c *metrics.ClassMetric) {
	p.unit.Classes = append(p.unit.Classes, c)
	p.unit.Functions = append(p.unit.Functions, p.pending...)
	p.pending = p.pending[:0]
	p.unit.PackageMetric(p.packageName()).AddClass(c)
	p.flushed.ncss += c.NCSS
	p.flushed.single += c.SingleComments
	p.flushed.multi += c.MultiComments
	p.flushed.javadocs += c.Javadocs
	p.flushed.javadocLines += c.JavadocLines
}

func (p *Parser) packageName() string {
	if p.st.pkg == "" {
		return metrics.DefaultPackage
	}
	return p.st.pkg
}
