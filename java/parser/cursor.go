package parser

// Mark is a cursor snapshot taken by mark and restored by rewind.
type Mark struct {
	pos   int
	split int
	gen   uint64
}

// unbounded is the lookahead budget of a trial that runs until its rule
// succeeds or fails on its own.
const unbounded = -1

// cursor walks the main token sequence. The generation counter advances
// only when a token is consumed outside of a trial, so it identifies how
// much input has been committed.
type cursor struct {
	tokens []Token
	pos    int
	gen    uint64

	// split counts the '>' characters already consumed from the current
	// token when a shift operator closes nested type arguments; part holds
	// the remainder of that token.
	split int
	part  Token

	// trial is the depth of nested trials; zero means committed parsing.
	trial int
	// budget is the number of tokens the innermost trial may still consume,
	// or unbounded.
	budget int
}

func newCursor(tokens []Token) *cursor {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		var end Position
		if len(tokens) > 0 {
			end = tokens[len(tokens)-1].Span.End
		}
		tokens = append(tokens, Token{Kind: TokenEOF, Span: Span{Start: end, End: end}})
	}
	return &cursor{tokens: tokens, budget: unbounded}
}

// peek returns the next token without consuming it. Past the end of the
// sequence the terminal EOF token is returned.
func (c *cursor) peek() *Token {
	return c.peekN(0)
}

func (c *cursor) peekN(n int) *Token {
	if n == 0 && c.split > 0 {
		return &c.part
	}
	i := c.pos + n
	if i >= len(c.tokens) {
		i = len(c.tokens) - 1
	}
	return &c.tokens[i]
}

func (c *cursor) peekKind(n int) TokenKind {
	return c.peekN(n).Kind
}

// last returns the most recently consumed token.
func (c *cursor) last() *Token {
	if c.pos == 0 {
		return &c.tokens[0]
	}
	return &c.tokens[c.pos-1]
}

// advance consumes and returns the next token. Consuming EOF leaves the
// cursor on EOF.
func (c *cursor) advance() *Token {
	tok := c.peek()
	if c.split > 0 {
		c.split = 0
	}
	if c.pos < len(c.tokens)-1 {
		c.pos++
	}
	c.consumed()
	return tok
}

func (c *cursor) consumed() {
	if c.trial == 0 {
		c.gen++
	} else if c.budget > 0 {
		c.budget--
	}
}

var angleRemainders = map[string]TokenKind{
	">":   TokenGT,
	">>":  TokenShr,
	">=":  TokenGE,
	">>=": TokenShrAssign,
	"=":   TokenAssign,
}

// advanceAngle consumes one '>' from the front of the next token. The rest
// of a ">>", ">>>", ">=" or similar operator stays in place as a token of
// its own.
func (c *cursor) advanceAngle() *Token {
	tok := c.peek()
	if len(tok.Literal) <= 1 {
		return c.advance()
	}
	first := *tok
	first.Kind = TokenGT
	first.Literal = ">"
	c.setSplit(c.split + 1)
	first.Span.End = c.part.Span.Start
	c.consumed()
	return &first
}

func (c *cursor) setSplit(n int) {
	c.split = n
	if n == 0 {
		return
	}
	tok := &c.tokens[c.pos]
	rest := tok.Literal[n:]
	start := tok.Span.Start
	start.Offset += n
	start.Column += n
	c.part = Token{
		Kind:    angleRemainders[rest],
		Span:    Span{Start: start, End: tok.Span.End},
		Literal: rest,
	}
}

// exhausted reports whether the innermost trial has used up its budget.
func (c *cursor) exhausted() bool {
	return c.trial > 0 && c.budget == 0
}

func (c *cursor) mark() Mark {
	return Mark{pos: c.pos, split: c.split, gen: c.gen}
}

// rewind restores the position recorded in m. The generation is never
// rolled back: tokens committed after m stay committed.
func (c *cursor) rewind(m Mark) {
	c.pos = m.pos
	c.setSplit(m.split)
}

func (c *cursor) speculating() bool {
	return c.trial > 0
}

// literalsSince returns the literals consumed since m, in order.
func (c *cursor) literalsSince(m Mark) []string {
	var out []string
	for i := m.pos; i <= c.pos && i < len(c.tokens); i++ {
		lit := c.tokens[i].Literal
		lo, hi := 0, len(lit)
		if i == m.pos {
			lo = m.split
		}
		if i == c.pos {
			hi = c.split
		}
		if lo < hi {
			out = append(out, lit[lo:hi])
		}
	}
	return out
}
