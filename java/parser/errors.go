package parser

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SyntaxError reports input that no production accepts. Parsing of the
// compilation unit stops at the first syntax error.
type SyntaxError struct {
	Token    *Token
	Pos      Position
	Expected []TokenKind
	Message  string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	b.WriteString(e.Pos.String())
	b.WriteString(": syntax error: ")
	if e.Message != "" {
		b.WriteString(e.Message)
		b.WriteString(", ")
	}
	if e.Token != nil {
		b.WriteString("unexpected ")
		b.WriteString(e.Token.describe())
	}
	switch len(e.Expected) {
	case 0:
	case 1:
		b.WriteString(", expected ")
		b.WriteString(strconv.Quote(e.Expected[0].String()))
	default:
		b.WriteString(", expected one of ")
		for i, k := range e.Expected {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k.String()))
		}
	}
	return b.String()
}

// Expects reports whether kind is among the token kinds the parser would
// have accepted at the error position.
func (e *SyntaxError) Expects(kind TokenKind) bool {
	return slices.Contains(e.Expected, kind)
}

// InternalError reports violated parser bookkeeping. It indicates a bug in
// the parser rather than a problem with the input.
type InternalError struct {
	Pos     Position
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: internal parser error: %s", e.Pos, e.Message)
}

// expectation collects the kinds expected at a failure position while
// live attempts are replayed.
type expectation struct {
	pos   int
	kinds []TokenKind
}

func (x *expectation) add(kinds ...TokenKind) {
	for _, k := range kinds {
		if !slices.Contains(x.kinds, k) {
			x.kinds = append(x.kinds, k)
		}
	}
}

// fail aborts the current production. Inside a trial it unwinds to the
// trial boundary; in committed parsing it raises a *SyntaxError that
// unwinds to Parse.
func (p *Parser) fail(expected ...TokenKind) {
	if p.cur.speculating() {
		if p.cur.exhausted() {
			panic(trialSatisfied)
		}
		if p.diag != nil && p.cur.pos == p.diag.pos {
			p.diag.add(expected...)
		}
		panic(trialFailed)
	}
	panic(p.syntaxError(expected))
}

func (p *Parser) syntaxError(expected []TokenKind) *SyntaxError {
	x := &expectation{pos: p.cur.pos}
	x.add(expected...)
	p.replay(x)
	slices.Sort(x.kinds)

	tok := *p.cur.peek()
	tok.Special = nil
	err := &SyntaxError{
		Token:    &tok,
		Pos:      tok.Span.Start,
		Expected: x.kinds,
	}
	if tok.Kind == TokenError {
		err.Message = "invalid token"
	}
	p.log.Debugf("%s", err)
	return err
}

// replay re-runs the live attempts that started at the failure position to
// learn which tokens they would have accepted there. Alternatives with a
// first set contribute it directly; the others are re-tried.
func (p *Parser) replay(x *expectation) {
	live := p.memo.live(p.cur.pos, p.cur.gen)
	p.diag = x
	defer func() { p.diag = nil }()
	for _, a := range live {
		for _, alt := range a.alts {
			if alt.first != nil {
				x.add(alt.first...)
				continue
			}
			if alt.trial != nil {
				p.try(a.budget, alt.trial)
			}
		}
	}
}

// internal raises an InternalError at the current token.
func (p *Parser) internal(format string, args ...any) {
	panic(&InternalError{Pos: p.cur.peek().Pos(), Message: fmt.Sprintf(format, args...)})
}
