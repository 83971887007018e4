package parser

func (p *Parser) block() {
	p.expect(TokenLBrace)
	p.blockStatements()
	p.expect(TokenRBrace)
}

// blockStatements parses statements up to the end of a block or the next
// switch label.
func (p *Parser) blockStatements() {
	for !p.at(TokenRBrace, TokenEOF, TokenCase, TokenDefault) {
		p.blockStatement()
	}
}

func (p *Parser) blockStatement() {
	p.choose(decBlockStatement, unbounded, p.blockAlts...)
}

// localVariableStart recognizes a local variable declaration up to its
// first declarator name.
func (p *Parser) localVariableStart() {
	p.modifiers()
	p.typ()
	p.ident()
	if !p.at(TokenAssign, TokenComma, TokenSemicolon, TokenLBracket) {
		p.fail(TokenAssign, TokenComma, TokenSemicolon, TokenLBracket)
	}
}

func (p *Parser) localVariableStatement() {
	p.count()
	p.localVariableDeclaration()
	p.expect(TokenSemicolon)
}

func (p *Parser) localVariableDeclaration() {
	p.modifiers()
	p.typ()
	p.variableDeclarators()
}

// yieldStart tells a yield statement from an expression statement using a
// variable named yield.
func (p *Parser) yieldStart() {
	p.expect(TokenYield)
	switch p.kind() {
	case TokenAssign, TokenPlusAssign, TokenMinusAssign, TokenStarAssign, TokenSlashAssign,
		TokenPercentAssign, TokenAndAssign, TokenOrAssign, TokenXorAssign, TokenShlAssign,
		TokenShrAssign, TokenUShrAssign, TokenDot, TokenLBracket, TokenIncrement,
		TokenDecrement, TokenArrow, TokenSemicolon, TokenColonColon:
		p.fail(expressionFirst...)
	}
}

func (p *Parser) yieldStatement() {
	p.count()
	p.expect(TokenYield)
	p.expression()
	p.expect(TokenSemicolon)
}

func (p *Parser) labeledStatement() {
	p.count()
	p.ident()
	p.expect(TokenColon)
	p.statement()
}

func (p *Parser) statement() {
	switch p.kind() {
	case TokenLBrace:
		p.block()
	case TokenSemicolon:
		p.next()
	case TokenIf:
		p.ifStatement()
	case TokenWhile:
		p.count()
		p.branch()
		p.next()
		p.parExpression()
		p.statement()
	case TokenDo:
		p.count()
		p.branch()
		p.next()
		p.statement()
		p.expect(TokenWhile)
		p.parExpression()
		p.expect(TokenSemicolon)
	case TokenFor:
		p.forStatement()
	case TokenSwitch:
		p.count()
		p.switchConstruct()
	case TokenTry:
		p.tryStatement()
	case TokenReturn:
		p.count()
		p.sawReturn()
		p.next()
		if !p.at(TokenSemicolon) {
			p.expression()
		}
		p.expect(TokenSemicolon)
	case TokenBreak, TokenContinue:
		p.count()
		p.next()
		if p.atIdent() {
			p.next()
		}
		p.expect(TokenSemicolon)
	case TokenThrow:
		p.count()
		p.next()
		p.expression()
		p.expect(TokenSemicolon)
	case TokenSynchronized:
		p.count()
		p.next()
		p.parExpression()
		p.block()
	case TokenAssert:
		p.count()
		p.next()
		p.expression()
		if p.accept(TokenColon) {
			p.expression()
		}
		p.expect(TokenSemicolon)
	case TokenYield:
		if p.speculate(decBlockStatement, unbounded, p.yieldStart) {
			p.yieldStatement()
			return
		}
		p.expressionStatement()
	default:
		if p.atIdent() && p.atN(1, TokenColon) {
			p.labeledStatement()
			return
		}
		p.expressionStatement()
	}
}

func (p *Parser) expressionStatement() {
	if !p.startsExpression() {
		p.fail(statementFirst...)
	}
	p.count()
	p.expression()
	p.expect(TokenSemicolon)
}

func (p *Parser) parExpression() {
	p.expect(TokenLParen)
	p.expression()
	p.expect(TokenRParen)
}

// ifStatement counts the if and, when present, the else. An else-if chain
// is an else holding another if statement.
func (p *Parser) ifStatement() {
	p.count()
	p.branch()
	p.expect(TokenIf)
	p.parExpression()
	p.statement()
	if p.accept(TokenElse) {
		p.count()
		p.statement()
	}
}

func (p *Parser) forStatement() {
	p.count()
	p.branch()
	p.expect(TokenFor)
	p.expect(TokenLParen)
	if p.speculate(decForHeader, unbounded, p.forEachStart) {
		p.localVariableDeclarationHead()
		p.expect(TokenColon)
		p.expression()
	} else {
		p.forInit()
		p.expect(TokenSemicolon)
		if !p.at(TokenSemicolon) {
			p.expression()
		}
		p.expect(TokenSemicolon)
		if !p.at(TokenRParen) {
			p.expressionList()
		}
	}
	p.expect(TokenRParen)
	p.statement()
}

// forEachStart recognizes "Type name :" in an enhanced for header.
func (p *Parser) forEachStart() {
	p.localVariableDeclarationHead()
	p.expect(TokenColon)
}

func (p *Parser) localVariableDeclarationHead() {
	p.modifiers()
	p.typ()
	p.ident()
	p.dims()
}

func (p *Parser) forInit() {
	if p.at(TokenSemicolon) {
		return
	}
	if p.speculate(decForInit, unbounded, p.localVariableStart) {
		p.localVariableDeclaration()
		return
	}
	p.expressionList()
}

func (p *Parser) expressionList() {
	p.expression()
	for p.accept(TokenComma) {
		p.expression()
	}
}

func (p *Parser) tryStatement() {
	p.count()
	p.expect(TokenTry)
	resources := p.at(TokenLParen)
	if resources {
		p.resourceSpecification()
	}
	p.block()
	handled := false
	for p.at(TokenCatch) {
		handled = true
		p.count()
		p.branch()
		p.next()
		p.expect(TokenLParen)
		p.modifiers()
		p.typ()
		for p.accept(TokenBitOr) {
			p.typ()
		}
		p.ident()
		p.expect(TokenRParen)
		p.block()
	}
	if p.at(TokenFinally) {
		handled = true
		p.count()
		p.next()
		p.block()
	}
	if !handled && !resources {
		p.fail(TokenCatch, TokenFinally)
	}
}

func (p *Parser) resourceSpecification() {
	p.expect(TokenLParen)
	for !p.at(TokenRParen) {
		p.resource()
		if !p.accept(TokenSemicolon) {
			break
		}
	}
	p.expect(TokenRParen)
}

// resource is either a declaration with an initializer or a reference to
// an effectively final variable.
func (p *Parser) resource() {
	if p.speculate(decResource, unbounded, p.resourceStart) {
		p.modifiers()
		p.typ()
		p.ident()
		p.expect(TokenAssign)
		p.expression()
		return
	}
	p.expression()
}

func (p *Parser) resourceStart() {
	p.modifiers()
	p.typ()
	p.ident()
	p.expect(TokenAssign)
}

// switchConstruct parses a switch statement or expression. Each label
// counts as a statement and each case label is a decision.
func (p *Parser) switchConstruct() {
	p.expect(TokenSwitch)
	p.parExpression()
	p.expect(TokenLBrace)
	for !p.at(TokenRBrace, TokenEOF) {
		arrow := p.switchLabel()
		if arrow {
			p.switchRuleBody()
			continue
		}
		p.blockStatements()
	}
	p.expect(TokenRBrace)
}

// switchLabel parses one label and reports whether it introduces a rule
// ("->") rather than a group of statements (":").
func (p *Parser) switchLabel() bool {
	switch p.kind() {
	case TokenDefault:
		p.count()
		p.next()
	case TokenCase:
		p.count()
		p.branch()
		p.next()
		p.caseLabelElements()
	default:
		p.fail(TokenCase, TokenDefault, TokenRBrace)
	}
	if p.accept(TokenArrow) {
		return true
	}
	p.expect(TokenColon)
	return false
}

func (p *Parser) caseLabelElements() {
	for {
		p.caseLabelElement()
		if !p.accept(TokenComma) {
			break
		}
	}
	if p.accept(TokenWhen) {
		p.noLambda++
		defer func() { p.noLambda-- }()
		p.expression()
	}
}

// caseLabelElement is "default", null, a type pattern, a record pattern or
// a constant expression.
func (p *Parser) caseLabelElement() {
	if p.accept(TokenDefault) {
		return
	}
	if p.speculate(decSwitchLabel, unbounded, p.patternStart) {
		p.pattern()
		return
	}
	p.noLambda++
	defer func() { p.noLambda-- }()
	p.ternary()
}

// patternStart recognizes the start of a type or record pattern: a type
// followed by a binding name or a component list.
func (p *Parser) patternStart() {
	p.modifiers()
	p.typ()
	if p.at(TokenLParen) {
		return
	}
	p.ident()
}

func (p *Parser) pattern() {
	p.modifiers()
	p.typ()
	if p.at(TokenLParen) {
		p.next()
		for !p.at(TokenRParen) {
			p.pattern()
			if !p.accept(TokenComma) {
				break
			}
		}
		p.expect(TokenRParen)
		if p.atIdent() {
			p.next()
		}
		return
	}
	p.ident()
}

// switchRuleBody parses what follows "->": a block, a throw statement, or
// an expression that counts as one statement.
func (p *Parser) switchRuleBody() {
	switch p.kind() {
	case TokenLBrace:
		p.block()
	case TokenThrow:
		p.statement()
	default:
		p.count()
		p.expression()
		p.expect(TokenSemicolon)
	}
}
