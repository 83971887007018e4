package parser

type modifiers uint32

const (
	modPublic modifiers = 1 << iota
	modProtected
	modPrivate
	modStatic
	modAbstract
	modFinal
	modNative
	modSynchronized
	modTransient
	modVolatile
	modStrictfp
	modDefault
	modSealed
	modNonSealed
	modAnnotated
)

func (m modifiers) has(flags modifiers) bool {
	return m&flags != 0
}

var modifierKinds = map[TokenKind]modifiers{
	TokenPublic:       modPublic,
	TokenProtected:    modProtected,
	TokenPrivate:      modPrivate,
	TokenStatic:       modStatic,
	TokenAbstract:     modAbstract,
	TokenFinal:        modFinal,
	TokenNative:       modNative,
	TokenSynchronized: modSynchronized,
	TokenTransient:    modTransient,
	TokenVolatile:     modVolatile,
	TokenStrictfp:     modStrictfp,
	TokenDefault:      modDefault,
	TokenSealed:       modSealed,
	TokenNonSealed:    modNonSealed,
}

// modifierFirst lists every token that can start a modifier list.
var modifierFirst = []TokenKind{
	TokenAt, TokenPublic, TokenProtected, TokenPrivate, TokenStatic, TokenAbstract,
	TokenFinal, TokenNative, TokenSynchronized, TokenTransient, TokenVolatile,
	TokenStrictfp, TokenDefault, TokenSealed, TokenNonSealed,
}

func withModifiers(kinds ...TokenKind) []TokenKind {
	return append(append([]TokenKind{}, modifierFirst...), kinds...)
}

var primitiveKinds = map[TokenKind]bool{
	TokenBoolean: true,
	TokenByte:    true,
	TokenChar:    true,
	TokenShort:   true,
	TokenInt:     true,
	TokenLong:    true,
	TokenFloat:   true,
	TokenDouble:  true,
}

// modifiers consumes modifier keywords and annotations in any order.
// "sealed" is only a modifier when a declaration keeps going after it.
func (p *Parser) modifiers() modifiers {
	var mods modifiers
	for {
		kind := p.kind()
		switch {
		case kind == TokenAt && !p.atN(1, TokenInterface):
			p.annotation()
			mods |= modAnnotated
		case kind == TokenSealed:
			next := p.cur.peekKind(1)
			if modifierKinds[next] == 0 && next != TokenAt && next != TokenClass && next != TokenInterface {
				return mods
			}
			p.next()
			mods |= modSealed
		case modifierKinds[kind] != 0:
			p.next()
			mods |= modifierKinds[kind]
		default:
			return mods
		}
	}
}

func (p *Parser) annotation() {
	p.expect(TokenAt)
	p.qualifiedName()
	if !p.accept(TokenLParen) {
		return
	}
	if !p.at(TokenRParen) {
		p.choose(decAnnotationElement, 2,
			alternative{
				name:  "element value pairs",
				first: identifierKinds,
				trial: func() { p.ident(); p.expect(TokenAssign) },
				parse: p.elementValuePairs,
			},
			alternative{name: "element value", parse: p.elementValue},
		)
	}
	p.expect(TokenRParen)
}

func (p *Parser) elementValuePairs() {
	for {
		p.ident()
		p.expect(TokenAssign)
		p.elementValue()
		if !p.accept(TokenComma) {
			return
		}
	}
}

func (p *Parser) elementValue() {
	switch p.kind() {
	case TokenAt:
		p.annotation()
	case TokenLBrace:
		p.next()
		for !p.at(TokenRBrace) {
			p.elementValue()
			if !p.accept(TokenComma) {
				break
			}
		}
		p.expect(TokenRBrace)
	default:
		p.ternary()
	}
}

// typ consumes a type, including array dimensions.
func (p *Parser) typ() {
	p.annotations()
	if primitiveKinds[p.kind()] {
		p.next()
	} else {
		p.classType()
	}
	p.dims()
}

func (p *Parser) classType() {
	p.ident()
	p.typeArgumentsOpt()
	for p.at(TokenDot) && (isIdentifier(p.cur.peekKind(1)) || p.atN(1, TokenAt)) {
		p.next()
		p.annotations()
		p.ident()
		p.typeArgumentsOpt()
	}
}

// dims consumes empty bracket pairs, each optionally preceded by type
// annotations, and returns how many there were.
func (p *Parser) dims() int {
	n := 0
	for {
		switch {
		case p.at(TokenLBracket) && p.atN(1, TokenRBracket):
		case p.at(TokenAt) && p.speculate(decDims, unbounded, p.annotatedDim):
			p.annotations()
		default:
			return n
		}
		p.expect(TokenLBracket)
		p.expect(TokenRBracket)
		n++
	}
}

func (p *Parser) annotatedDim() {
	p.annotations()
	p.expect(TokenLBracket)
	p.expect(TokenRBracket)
}

func (p *Parser) typeList() {
	p.typ()
	for p.accept(TokenComma) {
		p.typ()
	}
}

func (p *Parser) resultType() {
	if !p.accept(TokenVoid) {
		p.typ()
	}
}

func (p *Parser) typeArgumentsOpt() {
	if p.at(TokenLT) {
		p.typeArguments()
	}
}

// typeArguments also accepts the diamond "<>".
func (p *Parser) typeArguments() {
	p.expect(TokenLT)
	if p.at(TokenGT) {
		p.expectGT()
		return
	}
	for {
		p.typeArgument()
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expectGT()
}

func (p *Parser) typeArgument() {
	p.annotations()
	if !p.accept(TokenQuestion) {
		p.typ()
		return
	}
	if p.accept(TokenExtends) || p.accept(TokenSuper) {
		p.typ()
	}
}

func (p *Parser) typeParametersOpt() {
	if !p.accept(TokenLT) {
		return
	}
	for {
		p.annotations()
		p.ident()
		if p.accept(TokenExtends) {
			p.typ()
			for p.accept(TokenBitAnd) {
				p.typ()
			}
		}
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expectGT()
}
