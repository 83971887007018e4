package parser

// decision identifies a grammar decision point resolved by speculation.
// The set is fixed; each decision owns one memo slot.
type decision int

const (
	decPackage decision = iota
	decModule
	decTypeDecl
	decMember
	decBlockStatement
	decLambda
	decForHeader
	decForInit
	decParenthesized
	decConstructorCall
	decTypeReference
	decSwitchLabel
	decResource
	decAnnotationElement
	decDims
	numDecisions
)

var decisionNames = [numDecisions]string{
	decPackage:           "package declaration",
	decModule:            "module declaration",
	decTypeDecl:          "type declaration",
	decMember:            "class member",
	decBlockStatement:    "block statement",
	decLambda:            "lambda",
	decForHeader:         "for header",
	decForInit:           "for initializer",
	decParenthesized:     "parenthesized expression",
	decConstructorCall:   "constructor invocation",
	decTypeReference:     "type reference",
	decSwitchLabel:       "switch label",
	decResource:          "resource",
	decAnnotationElement: "annotation element",
	decDims:              "array dimensions",
}

func (d decision) String() string {
	if d >= 0 && d < numDecisions {
		return decisionNames[d]
	}
	return "unknown decision"
}

// attempt is the most recent trial run for a decision.
type attempt struct {
	decision decision
	start    int
	gen      uint64
	budget   int
	alts     []alternative
	valid    bool
}

// memo keeps the latest attempt per decision. An attempt is live while no
// token has been committed since it started; only live attempts at the
// failure position are replayed when a syntax error is reported.
type memo struct {
	slots [numDecisions]attempt
}

func (m *memo) record(d decision, start int, gen uint64, budget int, alts []alternative) {
	m.slots[d] = attempt{
		decision: d,
		start:    start,
		gen:      gen,
		budget:   budget,
		alts:     alts,
		valid:    true,
	}
}

// live returns copies of the attempts that started at pos in generation gen,
// in decision order.
func (m *memo) live(pos int, gen uint64) []attempt {
	var out []attempt
	for _, a := range m.slots {
		if a.valid && a.start == pos && a.gen == gen {
			out = append(out, a)
		}
	}
	return out
}

func (m *memo) reset() {
	m.slots = [numDecisions]attempt{}
}
