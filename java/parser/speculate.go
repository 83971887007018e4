package parser

import "slices"

// alternative is one way of continuing at a decision point.
type alternative struct {
	name string
	// first lists the token kinds the alternative can start with. A nil
	// first set means any token may start it.
	first []TokenKind
	// trial recognizes a distinguishing prefix of the alternative. It runs
	// without side effects and is always rewound. A nil trial accepts as
	// soon as the first set matches.
	trial func()
	// parse is the committed production, run after the trial succeeded.
	parse func()
}

func (a alternative) startsWith(kind TokenKind) bool {
	return a.first == nil || slices.Contains(a.first, kind)
}

// trialSignal unwinds a trial. It is only ever raised and recovered inside
// speculate and try.
type trialSignal int

const (
	trialFailed trialSignal = iota
	trialSatisfied
)

// speculate runs rule as a trial for decision d and reports whether it
// matched. The cursor is rewound in both cases and no parse state changes.
// A trial that consumes budget tokens without failing counts as a match.
func (p *Parser) speculate(d decision, budget int, rule func()) bool {
	p.memo.record(d, p.cur.pos, p.cur.gen, budget, []alternative{{name: d.String(), trial: rule}})
	return p.try(budget, rule)
}

// choose commits to the first alternative, in order, whose first set admits
// the next token and whose trial matches. Its parse function then runs for
// real. If no alternative matches, a syntax error is raised with the union
// of the alternatives' first sets.
func (p *Parser) choose(d decision, budget int, alts ...alternative) {
	p.memo.record(d, p.cur.pos, p.cur.gen, budget, alts)
	kind := p.cur.peekKind(0)
	for _, alt := range alts {
		if !alt.startsWith(kind) {
			continue
		}
		if alt.trial != nil && !p.try(budget, alt.trial) {
			continue
		}
		alt.parse()
		return
	}
	var expected []TokenKind
	for _, alt := range alts {
		expected = append(expected, alt.first...)
	}
	p.fail(expected...)
}

func (p *Parser) try(budget int, rule func()) (ok bool) {
	m := p.cur.mark()
	outer := p.cur.budget
	p.cur.trial++
	p.cur.budget = budget
	p.trials++
	defer func() {
		r := recover()
		p.cur.trial--
		p.cur.budget = outer
		p.cur.rewind(m)
		switch r {
		case nil:
		case trialFailed:
			ok = false
		case trialSatisfied:
			ok = true
		default:
			panic(r)
		}
	}()
	rule()
	return true
}
