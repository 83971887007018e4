package parser

import "strings"

// initAlternatives builds the alternative lists of the decisions that are
// taken for every member, statement and parenthesis.
func (p *Parser) initAlternatives() {
	p.typeDeclAlts = []alternative{
		{
			name:  "class",
			first: withModifiers(TokenClass),
			trial: func() { p.modifiers(); p.expect(TokenClass) },
			parse: p.classDeclaration,
		},
		{
			name:  "enum",
			first: withModifiers(TokenEnum),
			trial: func() { p.modifiers(); p.expect(TokenEnum) },
			parse: p.enumDeclaration,
		},
		{
			name:  "interface",
			first: withModifiers(TokenInterface),
			trial: func() { p.modifiers(); p.expect(TokenInterface) },
			parse: p.interfaceDeclaration,
		},
		{
			name:  "annotation type",
			first: withModifiers(),
			trial: func() { p.modifiers(); p.expect(TokenAt); p.expect(TokenInterface) },
			parse: p.annotationTypeDeclaration,
		},
		{
			name:  "record",
			first: withModifiers(TokenRecord),
			trial: func() { p.modifiers(); p.recordStart() },
			parse: p.recordDeclaration,
		},
	}

	p.memberAlts = []alternative{
		{
			name:  "empty declaration",
			first: []TokenKind{TokenSemicolon},
			parse: func() { p.next() },
		},
		{
			name:  "initializer",
			first: []TokenKind{TokenStatic, TokenLBrace},
			trial: func() { p.accept(TokenStatic); p.expect(TokenLBrace) },
			parse: p.initializer,
		},
		{
			name:  "member type",
			first: withModifiers(TokenClass, TokenEnum, TokenInterface, TokenRecord),
			trial: p.typeDeclarationStart,
			parse: p.typeDeclaration,
		},
		{
			name:  "constructor",
			first: withModifiers(append([]TokenKind{TokenLT}, identifierKinds...)...),
			trial: func() { p.modifiers(); p.typeParametersOpt(); p.ident(); p.expect(TokenLParen) },
			parse: p.constructorDeclaration,
		},
		{
			name:  "compact constructor",
			first: withModifiers(identifierKinds...),
			trial: func() { p.modifiers(); p.ident(); p.expect(TokenLBrace) },
			parse: p.compactConstructorDeclaration,
		},
		{
			name:  "method",
			trial: func() { p.modifiers(); p.typeParametersOpt(); p.resultType(); p.ident(); p.expect(TokenLParen) },
			parse: p.methodDeclaration,
		},
		{
			name:  "field",
			trial: p.fieldStart,
			parse: p.fieldDeclaration,
		},
	}

	p.blockAlts = []alternative{
		{
			name:  "local class",
			first: withModifiers(TokenClass, TokenEnum, TokenInterface, TokenRecord),
			trial: p.typeDeclarationStart,
			parse: p.typeDeclaration,
		},
		{
			name:  "yield",
			first: []TokenKind{TokenYield},
			trial: p.yieldStart,
			parse: p.yieldStatement,
		},
		{
			name:  "local variable",
			trial: p.localVariableStart,
			parse: p.localVariableStatement,
		},
		{
			name:  "labeled statement",
			first: identifierKinds,
			trial: func() { p.ident(); p.expect(TokenColon) },
			parse: p.labeledStatement,
		},
		{
			name:  "statement",
			parse: p.statement,
		},
	}

	p.parenAlts = []alternative{
		{
			name:  "lambda",
			first: []TokenKind{TokenLParen},
			trial: p.lambdaStart,
			parse: p.lambda,
		},
		{
			name:  "cast",
			first: []TokenKind{TokenLParen},
			trial: p.castStart,
			parse: p.cast,
		},
		{
			name:  "parenthesized expression",
			first: []TokenKind{TokenLParen},
			parse: p.postfix,
		},
	}
}

func (p *Parser) typeDeclaration() {
	p.choose(decTypeDecl, unbounded, p.typeDeclAlts...)
}

// typeDeclarationStart recognizes the modifiers and keyword that open a
// class, enum, interface, annotation type or record declaration.
func (p *Parser) typeDeclarationStart() {
	p.modifiers()
	switch p.kind() {
	case TokenClass, TokenEnum, TokenInterface:
		p.next()
	case TokenAt:
		p.next()
		p.expect(TokenInterface)
	default:
		p.recordStart()
	}
}

// recordStart recognizes "record Name(" and "record Name<", where record is
// a restricted identifier.
func (p *Parser) recordStart() {
	p.expect(TokenRecord)
	p.ident()
	if !p.at(TokenLParen, TokenLT) {
		p.fail(TokenLParen, TokenLT)
	}
}

// memberScope returns the scope for the members of a class declared with
// mods in the current scope.
func (p *Parser) memberScope(mods modifiers, implicitPublic bool) classScope {
	public := mods.has(modPublic|modProtected) || (p.st.class.implicitPublic && !mods.has(modPrivate))
	return classScope{
		publicSeen:     public && p.st.class.publicSeen && !p.st.fn.active,
		implicitPublic: implicitPublic,
	}
}

func (p *Parser) classDeclaration() {
	d := p.beginDeclaration(true)
	d.mods = p.modifiers()
	p.expect(TokenClass)
	name := p.ident()
	p.typeParametersOpt()
	if p.accept(TokenExtends) {
		p.typ()
	}
	if p.accept(TokenImplements) {
		p.typeList()
	}
	if p.accept(TokenPermits) {
		p.typeList()
	}
	p.classBody(d, p.nestedName(name.Literal), p.memberScope(d.mods, false), p.classMembers)
}

func (p *Parser) interfaceDeclaration() {
	d := p.beginDeclaration(true)
	d.mods = p.modifiers()
	p.expect(TokenInterface)
	name := p.ident()
	p.typeParametersOpt()
	if p.accept(TokenExtends) {
		p.typeList()
	}
	if p.accept(TokenPermits) {
		p.typeList()
	}
	p.classBody(d, p.nestedName(name.Literal), p.memberScope(d.mods, true), p.classMembers)
}

func (p *Parser) annotationTypeDeclaration() {
	d := p.beginDeclaration(true)
	d.mods = p.modifiers()
	p.expect(TokenAt)
	p.expect(TokenInterface)
	name := p.ident()
	p.classBody(d, p.nestedName(name.Literal), p.memberScope(d.mods, true), p.classMembers)
}

func (p *Parser) enumDeclaration() {
	d := p.beginDeclaration(true)
	d.mods = p.modifiers()
	p.expect(TokenEnum)
	name := p.ident()
	if p.accept(TokenImplements) {
		p.typeList()
	}
	p.classBody(d, p.nestedName(name.Literal), p.memberScope(d.mods, false), p.enumMembers)
}

func (p *Parser) recordDeclaration() {
	d := p.beginDeclaration(true)
	d.mods = p.modifiers()
	p.expect(TokenRecord)
	name := p.ident()
	p.typeParametersOpt()
	components := p.formalParameters()
	if p.accept(TokenImplements) {
		p.typeList()
	}
	scope := p.memberScope(d.mods, false)
	p.classBody(d, p.nestedName(name.Literal), scope, func() {
		if !p.cur.speculating() {
			p.st.class.components = components
		}
		p.classMembers()
	})
}

func (p *Parser) classMembers() {
	p.expect(TokenLBrace)
	for !p.at(TokenRBrace, TokenEOF) {
		p.member()
	}
	p.expect(TokenRBrace)
}

func (p *Parser) member() {
	p.choose(decMember, unbounded, p.memberAlts...)
}

func (p *Parser) enumMembers() {
	p.expect(TokenLBrace)
	for p.atIdent() || p.at(TokenAt) {
		p.enumConstant()
		if !p.accept(TokenComma) {
			break
		}
	}
	if p.accept(TokenSemicolon) {
		for !p.at(TokenRBrace, TokenEOF) {
			p.member()
		}
	}
	p.expect(TokenRBrace)
}

// enumConstant parses a constant. A constant with a body is an anonymous
// class of the enum.
func (p *Parser) enumConstant() {
	p.annotations()
	p.ident()
	if p.at(TokenLParen) {
		p.arguments()
	}
	if p.at(TokenLBrace) {
		p.anonymousClass()
	}
}

func (p *Parser) anonymousClass() {
	d := p.beginDeclaration(false)
	p.classBody(d, p.anonymousName(), classScope{}, p.classMembers)
}

func (p *Parser) initializer() {
	d := p.beginDeclaration(true)
	name := "<init>()"
	if p.accept(TokenStatic) {
		d.mods = modStatic
		name = "<clinit>()"
	}
	p.functionBody(d, name, p.block)
}

func (p *Parser) constructorDeclaration() {
	d := p.beginDeclaration(true)
	d.mods = p.modifiers()
	p.typeParametersOpt()
	name := p.ident()
	params := p.formalParameters()
	p.throwsOpt()
	p.functionBody(d, name.Literal+params, p.constructorBody)
}

// compactConstructorDeclaration parses a record constructor without a
// parameter list. Its signature is the record header.
func (p *Parser) compactConstructorDeclaration() {
	d := p.beginDeclaration(true)
	d.mods = p.modifiers()
	name := p.ident()
	params := p.st.class.components
	if params == "" {
		params = "()"
	}
	p.functionBody(d, name.Literal+params, p.block)
}

func (p *Parser) constructorBody() {
	p.expect(TokenLBrace)
	if p.at(TokenThis, TokenSuper, TokenLT) && p.speculate(decConstructorCall, unbounded, p.constructorCall) {
		p.constructorCall()
	}
	p.blockStatements()
	p.expect(TokenRBrace)
}

// constructorCall parses an unqualified this(...) or super(...) call.
// Qualified superclass calls such as outer.super(...) are expression
// statements.
func (p *Parser) constructorCall() {
	p.count()
	p.typeArgumentsOpt()
	if !p.at(TokenThis, TokenSuper) {
		p.fail(TokenThis, TokenSuper)
	}
	p.next()
	p.arguments()
	p.expect(TokenSemicolon)
}

func (p *Parser) methodDeclaration() {
	d := p.beginDeclaration(true)
	d.mods = p.modifiers()
	p.typeParametersOpt()
	p.resultType()
	name := p.ident()
	params := p.formalParameters()
	p.dims()
	p.throwsOpt()
	p.functionBody(d, name.Literal+params, p.methodBody)
}

// methodBody parses a block, the ";" of an abstract method, or the default
// value of an annotation type element.
func (p *Parser) methodBody() {
	switch p.kind() {
	case TokenLBrace:
		p.block()
	case TokenDefault:
		p.next()
		p.elementValue()
		p.expect(TokenSemicolon)
	default:
		if !p.at(TokenSemicolon) {
			p.fail(TokenLBrace, TokenSemicolon, TokenDefault, TokenThrows)
		}
		p.next()
	}
}

func (p *Parser) throwsOpt() {
	if p.accept(TokenThrows) {
		p.typeList()
	}
}

func (p *Parser) fieldStart() {
	p.modifiers()
	p.typ()
	p.ident()
	if !p.at(TokenAssign, TokenComma, TokenSemicolon, TokenLBracket) {
		p.fail(TokenAssign, TokenComma, TokenSemicolon, TokenLBracket)
	}
}

func (p *Parser) fieldDeclaration() {
	d := p.beginDeclaration(true)
	d.mods = p.modifiers()
	p.typ()
	p.variableDeclarators()
	p.expect(TokenSemicolon)
	p.attributeJavadoc(d)
}

func (p *Parser) variableDeclarators() {
	for {
		p.ident()
		p.dims()
		if p.accept(TokenAssign) {
			p.variableInitializer()
		}
		if !p.accept(TokenComma) {
			return
		}
	}
}

func (p *Parser) variableInitializer() {
	if p.at(TokenLBrace) {
		p.arrayInitializer()
		return
	}
	p.expression()
}

func (p *Parser) arrayInitializer() {
	p.expect(TokenLBrace)
	for !p.at(TokenRBrace) {
		p.variableInitializer()
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenRBrace)
}

// formalParameters parses a parameter list and returns its signature: the
// parameter types in order, comma separated and without whitespace.
// Receiver parameters are not part of the signature.
func (p *Parser) formalParameters() string {
	p.expect(TokenLParen)
	var types []string
	if !p.at(TokenRParen) {
		for {
			if t, ok := p.formalParameter(); ok {
				types = append(types, t)
			}
			if !p.accept(TokenComma) {
				break
			}
		}
	}
	p.expect(TokenRParen)
	return "(" + strings.Join(types, ",") + ")"
}

func (p *Parser) formalParameter() (string, bool) {
	p.modifiers()
	m := p.cur.mark()
	p.typ()
	text := p.textSince(m)
	p.annotations()
	if p.accept(TokenEllipsis) {
		text += "..."
	}
	if p.accept(TokenThis) {
		return "", false
	}
	p.ident()
	if p.at(TokenDot) && p.atN(1, TokenThis) {
		p.next()
		p.next()
		return "", false
	}
	text += strings.Repeat("[]", p.dims())
	return text, true
}
