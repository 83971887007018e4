package parser

import "slices"

// expressionFirst lists the token kinds an expression can start with.
var expressionFirst = append([]TokenKind{
	TokenIntLiteral, TokenFloatLiteral, TokenCharLiteral, TokenStringLiteral, TokenTextBlock,
	TokenTrue, TokenFalse, TokenNull, TokenThis, TokenSuper, TokenNew, TokenSwitch,
	TokenLParen, TokenNot, TokenBitNot, TokenPlus, TokenMinus, TokenIncrement, TokenDecrement,
	TokenVoid, TokenBoolean, TokenByte, TokenChar, TokenShort, TokenInt, TokenLong,
	TokenFloat, TokenDouble,
}, identifierKinds...)

// statementFirst lists the token kinds a statement can start with.
var statementFirst = append([]TokenKind{
	TokenLBrace, TokenSemicolon, TokenIf, TokenWhile, TokenDo, TokenFor, TokenSwitch,
	TokenTry, TokenReturn, TokenBreak, TokenContinue, TokenThrow, TokenSynchronized,
	TokenAssert,
}, expressionFirst...)

var assignmentKinds = []TokenKind{
	TokenAssign, TokenPlusAssign, TokenMinusAssign, TokenStarAssign, TokenSlashAssign,
	TokenPercentAssign, TokenAndAssign, TokenOrAssign, TokenXorAssign, TokenShlAssign,
	TokenShrAssign, TokenUShrAssign,
}

// binaryLevels lists the binary operators from the loosest to the
// tightest binding.
var binaryLevels = [][]TokenKind{
	{TokenOr},
	{TokenAnd},
	{TokenBitOr},
	{TokenBitXor},
	{TokenBitAnd},
	{TokenEQ, TokenNE},
	{TokenLT, TokenGT, TokenLE, TokenGE, TokenInstanceof},
	{TokenShl, TokenShr, TokenUShr},
	{TokenPlus, TokenMinus},
	{TokenStar, TokenSlash, TokenPercent},
}

func (p *Parser) startsExpression() bool {
	return p.atIdent() || slices.Contains(expressionFirst, p.kind())
}

func (p *Parser) expression() {
	if p.identLambdaFollows() {
		p.lambda()
		return
	}
	p.ternary()
	if p.at(assignmentKinds...) {
		p.next()
		p.expression()
	}
}

// identLambdaFollows reports whether the next tokens are "name ->".
func (p *Parser) identLambdaFollows() bool {
	if p.noLambda > 0 || !p.atIdent() {
		return false
	}
	return p.speculate(decLambda, 2, func() {
		p.ident()
		p.expect(TokenArrow)
	})
}

func (p *Parser) ternary() {
	p.binary(0)
	if !p.at(TokenQuestion) {
		return
	}
	p.branch()
	p.next()
	p.expression()
	p.expect(TokenColon)
	if p.identLambdaFollows() {
		p.lambda()
		return
	}
	p.ternary()
}

func (p *Parser) binary(level int) {
	if level == len(binaryLevels) {
		p.unary()
		return
	}
	p.binary(level + 1)
	for p.at(binaryLevels[level]...) {
		switch p.kind() {
		case TokenInstanceof:
			p.instanceofRest()
			continue
		case TokenAnd, TokenOr:
			p.branch()
		}
		p.next()
		p.binary(level + 1)
	}
}

// instanceofRest parses the type or pattern after instanceof.
func (p *Parser) instanceofRest() {
	p.expect(TokenInstanceof)
	p.modifiers()
	p.typ()
	switch {
	case p.at(TokenLParen):
		p.next()
		for !p.at(TokenRParen) {
			p.pattern()
			if !p.accept(TokenComma) {
				break
			}
		}
		p.expect(TokenRParen)
	case p.atIdent():
		p.next()
	}
}

func (p *Parser) unary() {
	switch p.kind() {
	case TokenPlus, TokenMinus, TokenIncrement, TokenDecrement, TokenNot, TokenBitNot:
		p.next()
		p.unary()
	case TokenLParen:
		p.choose(decParenthesized, unbounded, p.parenAlts...)
	default:
		p.postfix()
	}
}

// castStart recognizes a parenthesized type followed by something that
// can only be a cast operand. A primitive cast accepts any unary
// expression; a reference cast excludes operators such as + and -.
func (p *Parser) castStart() {
	p.expect(TokenLParen)
	primitive := primitiveKinds[p.kind()] && p.atN(1, TokenRParen)
	p.typ()
	for p.accept(TokenBitAnd) {
		p.typ()
	}
	p.expect(TokenRParen)
	if primitive && p.startsExpression() {
		return
	}
	switch p.kind() {
	case TokenPlus, TokenMinus, TokenIncrement, TokenDecrement:
		p.fail()
	}
	if !p.startsExpression() {
		p.fail(expressionFirst...)
	}
}

func (p *Parser) cast() {
	p.expect(TokenLParen)
	p.typ()
	for p.accept(TokenBitAnd) {
		p.typ()
	}
	p.expect(TokenRParen)
	if p.identLambdaFollows() {
		p.lambda()
		return
	}
	p.unary()
}

func (p *Parser) postfix() {
	p.primary()
	p.selectors()
	for p.at(TokenIncrement, TokenDecrement) {
		p.next()
	}
}

func (p *Parser) primary() {
	switch p.kind() {
	case TokenIntLiteral, TokenFloatLiteral, TokenCharLiteral, TokenStringLiteral, TokenTextBlock,
		TokenTrue, TokenFalse, TokenNull:
		p.next()
	case TokenThis, TokenSuper:
		p.next()
		if p.at(TokenLParen) {
			p.arguments()
		}
	case TokenNew:
		p.creator()
	case TokenLParen:
		p.next()
		p.expression()
		p.expect(TokenRParen)
	case TokenSwitch:
		p.switchConstruct()
	case TokenVoid, TokenBoolean, TokenByte, TokenChar, TokenShort, TokenInt, TokenLong,
		TokenFloat, TokenDouble:
		// int.class, int[].class, int[]::new
		p.next()
		p.dims()
		if !p.at(TokenDot, TokenColonColon) {
			p.fail(TokenDot, TokenColonColon)
		}
	default:
		if !p.atIdent() {
			p.fail(expressionFirst...)
		}
		if p.atN(1, TokenLT) && p.speculate(decTypeReference, unbounded, p.typeReferenceStart) {
			p.typ()
			return
		}
		p.next()
		if p.at(TokenLParen) {
			p.arguments()
		}
	}
}

// typeReferenceStart recognizes a generic type used as the target of a
// method reference, as in List<String>::new.
func (p *Parser) typeReferenceStart() {
	p.typ()
	p.expect(TokenColonColon)
}

func (p *Parser) selectors() {
	for {
		switch p.kind() {
		case TokenDot:
			p.next()
			p.memberSelector()
		case TokenLBracket:
			if p.atN(1, TokenRBracket) {
				p.dims()
				if !p.at(TokenDot, TokenColonColon) {
					p.fail(TokenDot, TokenColonColon)
				}
				continue
			}
			p.next()
			p.expression()
			p.expect(TokenRBracket)
		case TokenColonColon:
			p.next()
			p.typeArgumentsOpt()
			if !p.accept(TokenNew) {
				p.ident()
			}
		default:
			return
		}
	}
}

// memberSelector parses what follows a '.' in an expression.
func (p *Parser) memberSelector() {
	switch p.kind() {
	case TokenNew:
		p.creator()
	case TokenClass:
		p.next()
	case TokenThis:
		p.next()
	case TokenSuper:
		p.next()
		if p.at(TokenLParen) {
			p.arguments()
		}
	case TokenLT:
		p.typeArguments()
		if !p.accept(TokenSuper) && !p.accept(TokenThis) {
			p.ident()
		}
		p.arguments()
	default:
		p.ident()
		if p.at(TokenLParen) {
			p.arguments()
		}
	}
}

func (p *Parser) creator() {
	p.expect(TokenNew)
	p.typeArgumentsOpt()
	p.annotations()
	if primitiveKinds[p.kind()] {
		p.next()
	} else {
		p.classType()
	}
	if p.at(TokenLBracket) {
		p.arrayCreatorRest()
		return
	}
	p.arguments()
	if p.at(TokenLBrace) {
		p.anonymousClass()
	}
}

func (p *Parser) arrayCreatorRest() {
	for p.at(TokenLBracket) {
		p.next()
		if p.accept(TokenRBracket) {
			continue
		}
		p.expression()
		p.expect(TokenRBracket)
	}
	if p.at(TokenLBrace) {
		p.arrayInitializer()
	}
}

// arguments parses an argument list. Lambdas are allowed again inside it
// even when the surrounding context excludes them.
func (p *Parser) arguments() {
	outer := p.noLambda
	p.noLambda = 0
	defer func() { p.noLambda = outer }()

	p.expect(TokenLParen)
	if !p.at(TokenRParen) {
		p.expressionList()
	}
	p.expect(TokenRParen)
}

func (p *Parser) lambdaStart() {
	if p.noLambda > 0 {
		p.fail()
	}
	p.lambdaParameters()
	p.expect(TokenArrow)
}

// lambda parses a lambda expression. A return inside a lambda body returns
// from the lambda, not from the enclosing function.
func (p *Parser) lambda() {
	p.lambdaParameters()
	p.expect(TokenArrow)
	if !p.at(TokenLBrace) {
		p.expression()
		return
	}
	returned := p.st.fn.returnSeen
	p.block()
	if !p.cur.speculating() {
		p.st.fn.returnSeen = returned
	}
}

func (p *Parser) lambdaParameters() {
	if p.atIdent() {
		p.next()
		return
	}
	p.expect(TokenLParen)
	for !p.at(TokenRParen) {
		p.modifiers()
		if p.atIdent() && p.atN(1, TokenComma, TokenRParen) {
			p.next()
		} else {
			p.typ()
			p.annotations()
			p.accept(TokenEllipsis)
			p.ident()
			p.dims()
		}
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenRParen)
}
