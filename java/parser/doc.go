// Package parser measures Java source code while parsing it.
//
// # Overview
//
// The parser is a backtracking recursive-descent parser for Java 21. It
// builds no syntax tree. Instead it counts as it goes: non-commenting
// source statements (NCSS), cyclomatic complexity (CCN) and javadoc
// comments, recorded per package, per top-level class and per function.
//
// # Architecture
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Source    │────▶│  Tokenize   │────▶│   cursor    │
//	│  (bytes)    │     │ (+comments) │     │ mark/rewind │
//	└─────────────┘     └─────────────┘     └──────┬──────┘
//	                                               │
//	                    ┌─────────────┐     ┌──────▼──────┐
//	                    │    memo     │◀────│  speculate  │
//	                    │ (per slot)  │     │   choose    │
//	                    └─────────────┘     └──────┬──────┘
//	                                               │
//	                                        ┌──────▼──────┐
//	                                        │ productions │───▶ metrics.Unit
//	                                        │  + state    │
//	                                        └─────────────┘
//
// # Tokens and comments
//
// Tokenize drops whitespace and attaches comments to the next significant
// token as a chain of special tokens, closest first. The parser counts a
// comment when its owning token is consumed for real. Javadoc comments are
// only counted when they are attributed to a declaration.
//
// # Speculation
//
// Java has many places where a fixed amount of lookahead cannot decide
// between productions: a cast and a parenthesized expression, a lambda and
// either of them, a local variable declaration and an expression
// statement. At such a decision the parser runs a trial: the production is
// run in trial mode, where tokens are matched but no counter or record
// changes, and the cursor is rewound afterwards whatever the outcome. A
// trial may carry a token budget; consuming the whole budget without a
// mismatch counts as a match.
//
// Once a trial matched, the chosen production runs again for real, and
// only that pass updates the metrics:
//
//	p.choose(decParenthesized, unbounded,
//	    alternative{name: "lambda", trial: p.lambdaStart, parse: p.lambda},
//	    alternative{name: "cast", trial: p.castStart, parse: p.cast},
//	    alternative{name: "parenthesized expression", parse: p.postfix},
//	)
//
// # Generations
//
// The cursor counts committed tokens in a generation number. Every decision
// remembers its latest attempt together with the position and generation
// it started at. When committed parsing fails, the attempts that started at
// the failing token in the current generation are replayed to report every
// token that would have been accepted there.
//
// # Metrics
//
// Class records are only produced for top-level declarations. A nested or
// local class adds to the counts of its enclosing class, and a class
// declared inside a function adds to that function's local class and
// function counts. Functions are named after their owner and parameter
// types:
//
//	com.example.Outer.Inner.put(String,List<Integer>)
//
// The complexity of a function starts at 1 and grows with every if, while,
// do, for, catch, case, ?: and every && or ||. A function body containing
// a return statement has its complexity lowered by one.
//
// # Errors
//
// Parsing stops at the first syntax error. The returned unit is then
// marked Partial and holds the top-level declarations completed before
// the error.
//
//	unit, err := parser.Parse(ctx, src, parser.WithFile("Foo.java"))
//	var serr *parser.SyntaxError
//	if errors.As(err, &serr) {
//	    fmt.Println(serr.Pos, serr.Expected)
//	}
package parser
