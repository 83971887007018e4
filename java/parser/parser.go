package parser

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/ncss/java/metrics"
)

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

// WithPrivateJavadoc makes javadoc count for every declaration, not only
// for public and protected ones.
func WithPrivateJavadoc(enabled bool) Option {
	return func(p *Parser) {
		p.privateJavadoc = enabled
	}
}

// WithLogger replaces the "ncss.parser" logger, which receives debug
// output only.
func WithLogger(log commonlog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// Parser parses one compilation unit at a time. It is not safe for
// concurrent use; parse different files with different parsers.
type Parser struct {
	file           string
	privateJavadoc bool
	log            commonlog.Logger

	cur      *cursor
	memo     memo
	diag     *expectation
	st       state
	n        counters
	flushed  counters
	unit     *metrics.Unit
	pending  []*metrics.FunctionMetric
	trials   int
	noLambda int

	typeDeclAlts []alternative
	memberAlts   []alternative
	blockAlts    []alternative
	parenAlts    []alternative
}

func New(opts ...Option) *Parser {
	p := &Parser{log: commonlog.GetLogger("ncss.parser")}
	for _, opt := range opts {
		opt(p)
	}
	p.initAlternatives()
	return p
}

// Parse lexes and parses src. See (*Parser).ParseTokens. A lexical error
// is reported even if the token stream around it parses.
func Parse(ctx context.Context, src []byte, opts ...Option) (*metrics.Unit, error) {
	p := New(opts...)
	tokens, lexErr := Tokenize(src, p.file)
	unit, err := p.ParseTokens(ctx, tokens)
	if err == nil && lexErr != nil {
		unit.Partial = true
		return unit, lexErr
	}
	return unit, err
}

// ParseTokens parses a token sequence produced by Tokenize and returns the
// metrics of the compilation unit.
//
// On a syntax error the returned unit is marked Partial and holds the
// top-level declarations completed before the error, and the error is a
// *SyntaxError. The context is checked between top-level declarations.
func (p *Parser) ParseTokens(ctx context.Context, tokens []Token) (unit *metrics.Unit, err error) {
	p.reset(tokens)
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *SyntaxError:
				err = e
			case *InternalError:
				err = e
			default:
				panic(r)
			}
		}
		if err != nil {
			p.unit.Partial = true
			p.unit.NCSS = p.flushed.ncss
		}
		p.log.Debugf("%s: %d classes, %d functions, %d trials", p.file, len(p.unit.Classes), len(p.unit.Functions), p.trials)
		unit = p.unit
	}()

	if err := p.compilationUnit(ctx); err != nil {
		return p.unit, fmt.Errorf("parse %s: %w", p.file, err)
	}
	p.finishUnit()
	return p.unit, nil
}

func (p *Parser) reset(tokens []Token) {
	p.cur = newCursor(tokens)
	p.memo.reset()
	p.diag = nil
	p.st = state{class: classScope{publicSeen: true}}
	p.n = counters{}
	p.flushed = counters{}
	p.unit = metrics.NewUnit(p.file)
	p.pending = nil
	p.trials = 0
	p.noLambda = 0
}

// finishUnit adds the statements and comments outside any class to the
// package record.
func (p *Parser) finishUnit() {
	pkg := p.unit.PackageMetric(p.packageName())
	pkg.NCSS += p.n.ncss - p.flushed.ncss
	pkg.SingleComments += p.n.single - p.flushed.single
	pkg.MultiComments += p.n.multi - p.flushed.multi
	p.unit.NCSS = p.n.ncss
}

// Token helpers.

func (p *Parser) kind() TokenKind {
	return p.cur.peekKind(0)
}

func (p *Parser) at(kinds ...TokenKind) bool {
	return slices.Contains(kinds, p.cur.peekKind(0))
}

func (p *Parser) atN(n int, kinds ...TokenKind) bool {
	return slices.Contains(kinds, p.cur.peekKind(n))
}

// next consumes the next token whatever its kind.
func (p *Parser) next() *Token {
	if p.cur.exhausted() {
		panic(trialSatisfied)
	}
	tok := p.cur.advance()
	if !p.cur.speculating() {
		p.commitComments(tok)
	}
	return tok
}

func (p *Parser) expect(kind TokenKind) *Token {
	if p.kind() != kind {
		p.fail(kind)
	}
	return p.next()
}

func (p *Parser) accept(kind TokenKind) bool {
	if p.kind() != kind {
		return false
	}
	p.next()
	return true
}

// identifierKinds are the kinds usable as a name. Restricted identifiers
// such as var, record and yield are keywords only in specific positions.
var identifierKinds = []TokenKind{
	TokenIdent, TokenVar, TokenYield, TokenRecord, TokenSealed, TokenPermits, TokenWhen,
	TokenModule, TokenOpen, TokenRequires, TokenExports, TokenOpens, TokenUses,
	TokenProvides, TokenTo, TokenWith, TokenTransitive,
}

func isIdentifier(k TokenKind) bool {
	return k == TokenIdent || (k.IsContextual() && k != TokenNonSealed)
}

func (p *Parser) atIdent() bool {
	return isIdentifier(p.kind())
}

func (p *Parser) ident() *Token {
	if !p.atIdent() {
		p.fail(TokenIdent)
	}
	return p.next()
}

// expectGT consumes a closing '>' of type arguments or parameters, splitting
// it off a longer operator if needed.
func (p *Parser) expectGT() {
	switch p.kind() {
	case TokenGT, TokenShr, TokenUShr, TokenGE, TokenShrAssign, TokenUShrAssign:
	default:
		p.fail(TokenGT)
	}
	if p.cur.exhausted() {
		panic(trialSatisfied)
	}
	tok := p.cur.advanceAngle()
	if !p.cur.speculating() {
		p.commitComments(tok)
	}
}

// textSince renders the tokens consumed since m without whitespace, except
// between adjacent words. Annotations are left out.
func (p *Parser) textSince(m Mark) string {
	var b strings.Builder
	prevWord := false
	for _, lit := range dropAnnotations(p.cur.literalsSince(m)) {
		word := isWordLiteral(lit)
		if word && prevWord {
			b.WriteByte(' ')
		}
		b.WriteString(lit)
		prevWord = word
	}
	return b.String()
}

// dropAnnotations removes "@Name", "@pkg.Name" and "@Name(...)" runs.
func dropAnnotations(lits []string) []string {
	var out []string
	for i := 0; i < len(lits); i++ {
		if lits[i] != "@" {
			out = append(out, lits[i])
			continue
		}
		i++
		for i+2 < len(lits) && lits[i+1] == "." && isWordLiteral(lits[i+2]) {
			i += 2
		}
		if i+1 >= len(lits) || lits[i+1] != "(" {
			continue
		}
		depth := 0
		for i++; i < len(lits); i++ {
			switch lits[i] {
			case "(":
				depth++
			case ")":
				depth--
			}
			if depth == 0 {
				break
			}
		}
	}
	return out
}

func isWordLiteral(lit string) bool {
	if lit == "?" {
		return true
	}
	for _, r := range lit {
		return isJavaStart(r) || (r >= '0' && r <= '9')
	}
	return false
}

// Compilation unit.

func (p *Parser) compilationUnit(ctx context.Context) error {
	if p.at(TokenAt, TokenPackage) && p.speculate(decPackage, unbounded, p.packagePrefix) {
		p.packageDeclaration()
	}
	for p.at(TokenImport, TokenSemicolon) {
		if !p.accept(TokenSemicolon) {
			p.importDeclaration()
		}
	}
	for !p.at(TokenEOF) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.accept(TokenSemicolon) {
			continue
		}
		if p.at(TokenAt, TokenOpen, TokenModule) && p.speculate(decModule, unbounded, p.modulePrefix) {
			p.moduleDeclaration()
			continue
		}
		p.typeDeclaration()
	}
	p.expect(TokenEOF)
	return nil
}

func (p *Parser) annotations() {
	for p.at(TokenAt) && !p.atN(1, TokenInterface) {
		p.annotation()
	}
}

func (p *Parser) packagePrefix() {
	p.annotations()
	p.expect(TokenPackage)
}

func (p *Parser) packageDeclaration() {
	p.count()
	p.annotations()
	p.expect(TokenPackage)
	name := p.qualifiedName()
	p.expect(TokenSemicolon)
	p.st.pkg = name
	p.unit.Package = name
}

func (p *Parser) importDeclaration() {
	start := p.expect(TokenImport)
	p.count()
	imp := metrics.Import{
		BeginLine:   start.Span.Start.Line,
		BeginColumn: start.Span.Start.Column,
	}
	imp.Static = p.accept(TokenStatic)
	imp.Name = p.qualifiedName()
	if p.accept(TokenDot) {
		p.expect(TokenStar)
		imp.Wildcard = true
	}
	end := p.expect(TokenSemicolon)
	imp.EndLine = end.Span.End.Line
	imp.EndColumn = end.Span.End.Column
	if !p.cur.speculating() {
		p.unit.Imports = append(p.unit.Imports, imp)
	}
}

// qualifiedName consumes a dotted name and stops before ".*".
func (p *Parser) qualifiedName() string {
	var b strings.Builder
	b.WriteString(p.ident().Literal)
	for p.at(TokenDot) && isIdentifier(p.cur.peekKind(1)) {
		p.next()
		b.WriteByte('.')
		b.WriteString(p.ident().Literal)
	}
	return b.String()
}

// Modules carry no metrics; they are parsed so that module-info.java files
// are accepted.

func (p *Parser) modulePrefix() {
	p.annotations()
	p.accept(TokenOpen)
	p.expect(TokenModule)
}

func (p *Parser) moduleDeclaration() {
	p.annotations()
	p.accept(TokenOpen)
	p.expect(TokenModule)
	p.qualifiedName()
	p.expect(TokenLBrace)
	for !p.at(TokenRBrace, TokenEOF) {
		p.moduleDirective()
	}
	p.expect(TokenRBrace)
}

func (p *Parser) moduleDirective() {
	switch p.kind() {
	case TokenRequires:
		p.next()
		for p.at(TokenTransitive, TokenStatic) && !p.atN(1, TokenSemicolon, TokenDot) {
			p.next()
		}
		p.qualifiedName()
	case TokenExports, TokenOpens:
		p.next()
		p.qualifiedName()
		if p.accept(TokenTo) {
			p.qualifiedNames()
		}
	case TokenUses:
		p.next()
		p.qualifiedName()
	case TokenProvides:
		p.next()
		p.qualifiedName()
		p.expect(TokenWith)
		p.qualifiedNames()
	default:
		p.fail(TokenRequires, TokenExports, TokenOpens, TokenUses, TokenProvides, TokenRBrace)
	}
	p.expect(TokenSemicolon)
}

func (p *Parser) qualifiedNames() {
	p.qualifiedName()
	for p.accept(TokenComma) {
		p.qualifiedName()
	}
}
