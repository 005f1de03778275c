package formula

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokDice
	tokVar
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int

	num  float64
	dice diceSpec
}

type keepMode int

const (
	keepAll keepMode = iota
	keepHighest
	keepLowest
)

type diceSpec struct {
	count int
	faces int
	keep  keepMode
	n     int
}

// lex splits a formula into tokens. Whitespace is ignored.
func lex(src string) ([]token, error) {
	var tokens []token
	rs := []rune(src)
	i := 0

	for i < len(rs) {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case unicode.IsDigit(r) || (r == 'd' && i+1 < len(rs) && (unicode.IsDigit(rs[i+1]) || rs[i+1] == '%')):
			start := i
			for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
				i++
			}
			if i < len(rs) && rs[i] == 'd' && i+1 < len(rs) && (unicode.IsDigit(rs[i+1]) || rs[i+1] == '%') {
				tok, next, err := lexDice(rs, start, i)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, tok)
				i = next
				continue
			}
			text := string(rs[start:i])
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, errors.InvalidArgumentf("invalid number %q at %d", text, start)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, pos: start, num: num})

		case r == '@':
			start := i
			i++
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '.' || rs[i] == '_') {
				i++
			}
			path := strings.Trim(string(rs[start+1:i]), ".")
			if path == "" {
				return nil, errors.InvalidArgumentf("empty variable at %d", start)
			}
			tokens = append(tokens, token{kind: tokVar, text: path, pos: start})

		case unicode.IsLetter(r):
			start := i
			for i < len(rs) && unicode.IsLetter(rs[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: strings.ToLower(string(rs[start:i])), pos: start})

		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++

		case strings.ContainsRune("+-*/%", r):
			tokens = append(tokens, token{kind: tokOp, text: string(r), pos: i})
			i++

		case strings.ContainsRune("<>=!", r):
			start := i
			i++
			if i < len(rs) && rs[i] == '=' {
				i++
			}
			op := string(rs[start:i])
			if op == "=" || op == "!" {
				return nil, errors.InvalidArgumentf("unexpected %q at %d", op, start)
			}
			tokens = append(tokens, token{kind: tokOp, text: op, pos: start})

		default:
			return nil, errors.InvalidArgumentf("unexpected %q at %d", string(r), i)
		}
	}

	return append(tokens, token{kind: tokEOF, pos: len(rs)}), nil
}

// lexDice reads NdM[kh|kl][K] where rs[start:dPos] holds the optional count
func lexDice(rs []rune, start, dPos int) (token, int, error) {
	spec := diceSpec{count: 1}
	if dPos > start {
		count, err := strconv.Atoi(string(rs[start:dPos]))
		if err != nil {
			return token{}, 0, errors.InvalidArgumentf("invalid dice count at %d", start)
		}
		spec.count = count
	}

	i := dPos + 1
	if rs[i] == '%' {
		spec.faces = 100
		i++
	} else {
		facesStart := i
		for i < len(rs) && unicode.IsDigit(rs[i]) {
			i++
		}
		faces, err := strconv.Atoi(string(rs[facesStart:i]))
		if err != nil {
			return token{}, 0, errors.InvalidArgumentf("invalid die faces at %d", facesStart)
		}
		spec.faces = faces
	}

	if i+1 < len(rs) && rs[i] == 'k' && (rs[i+1] == 'h' || rs[i+1] == 'l') {
		spec.keep = keepHighest
		if rs[i+1] == 'l' {
			spec.keep = keepLowest
		}
		i += 2
		nStart := i
		for i < len(rs) && unicode.IsDigit(rs[i]) {
			i++
		}
		spec.n = 1
		if i > nStart {
			spec.n, _ = strconv.Atoi(string(rs[nStart:i]))
		}
	}

	if spec.count <= 0 || spec.faces <= 0 {
		return token{}, 0, errors.InvalidArgumentf("dice count and faces must be positive: %s", string(rs[start:i]))
	}
	if spec.keep != keepAll && (spec.n <= 0 || spec.n > spec.count) {
		return token{}, 0, errors.InvalidArgumentf("cannot keep %d of %d dice", spec.n, spec.count)
	}

	return token{kind: tokDice, text: string(rs[start:i]), pos: start, dice: spec}, i, nil
}

// node is an element of the parsed formula tree
type node interface{}

type numberNode struct{ value float64 }

type diceNode struct{ spec diceSpec }

type varNode struct{ path string }

type unaryNode struct{ operand node }

type binaryNode struct {
	op          string
	left, right node
}

type callNode struct {
	name string
	args []node
}

var functions = map[string]struct{ minArgs, maxArgs int }{
	"min":   {1, -1},
	"max":   {1, -1},
	"abs":   {1, 1},
	"floor": {1, 1},
	"ceil":  {1, 1},
	"round": {1, 1},
}

type parser struct {
	tokens []token
	pos    int
}

func parse(src string) (node, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.InvalidArgument("formula is empty")
	}
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	n, err := p.comparison()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, errors.InvalidArgumentf("unexpected %q at %d", tok.text, tok.pos)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isOp(ops ...string) bool {
	tok := p.peek()
	if tok.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if tok.text == op {
			return true
		}
	}
	return false
}

func (p *parser) comparison() (node, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	if p.isOp("<", ">", "<=", ">=", "==", "!=") {
		op := p.next().text
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: op, left: left, right: right}, nil
	}
	return left, nil
}

func (p *parser) additive() (node, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) multiplicative() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*", "/", "%") {
		op := p.next().text
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.isOp("-") {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{operand: operand}, nil
	}
	if p.isOp("+") {
		p.next()
		return p.unary()
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return &numberNode{value: tok.num}, nil
	case tokDice:
		return &diceNode{spec: tok.dice}, nil
	case tokVar:
		return &varNode{path: tok.text}, nil
	case tokLParen:
		inner, err := p.comparison()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, errors.InvalidArgumentf("expected ) at %d", closing.pos)
		}
		return inner, nil
	case tokIdent:
		return p.call(tok)
	case tokEOF:
		return nil, errors.InvalidArgument("unexpected end of formula")
	default:
		return nil, errors.InvalidArgumentf("unexpected %q at %d", tok.text, tok.pos)
	}
}

func (p *parser) call(name token) (node, error) {
	arity, ok := functions[name.text]
	if !ok {
		return nil, errors.InvalidArgumentf("unknown function %q at %d", name.text, name.pos)
	}
	if open := p.next(); open.kind != tokLParen {
		return nil, errors.InvalidArgumentf("expected ( after %s", name.text)
	}

	var args []node
	for {
		arg, err := p.comparison()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		tok := p.next()
		if tok.kind == tokRParen {
			break
		}
		if tok.kind != tokComma {
			return nil, errors.InvalidArgumentf("expected , or ) at %d", tok.pos)
		}
	}

	if len(args) < arity.minArgs || (arity.maxArgs > 0 && len(args) > arity.maxArgs) {
		return nil, errors.InvalidArgumentf("%s takes %d argument(s), got %d", name.text, arity.minArgs, len(args))
	}
	return &callNode{name: name.text, args: args}, nil
}
