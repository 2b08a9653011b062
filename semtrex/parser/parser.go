// Package parser turns a semtrex pattern string into a pattern tree
// tagged with SEMTREX_* symbols, by hand-rolled recursive descent over
// the §4.3 grammar — the same style LAB_2/regexlib builds its regex
// AST in, generalized from a linear token stream to a tree grammar.
package parser

import (
	"fmt"

	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/semtrex/lexer"
	"github.com/driftwood-labs/semtrex/tree"
)

// UnexpectedTokenError reports a token the grammar did not expect at
// that position.
type UnexpectedTokenError struct {
	Pos      int
	Expected string
	Got      string
}

func (e UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token at byte %d: expected %s, got %s", e.Pos, e.Expected, e.Got)
}

// UnknownSymbolError reports a label with no registered symbol.
type UnknownSymbolError struct {
	Pos   int
	Label string
}

func (e UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %q at byte %d", e.Label, e.Pos)
}

// UnterminatedConstructError reports EOF reached inside an open
// construct (group, braces, parentheses).
type UnterminatedConstructError struct {
	Pos     int
	Wanting string
}

func (e UnterminatedConstructError) Error() string {
	return fmt.Sprintf("unterminated construct at byte %d: wanted %s before EOF", e.Pos, e.Wanting)
}

// Resolver resolves a source-text label to the registry's symbol id.
// *id.Registry satisfies it directly via SymbolByName.
type Resolver interface {
	SymbolByName(label string) (id.ID, bool)
}

func (p *parser) resolve(label string, pos int) (id.ID, error) {
	sym, ok := p.reg.SymbolByName(label)
	if !ok {
		return id.ID{}, UnknownSymbolError{Pos: pos, Label: label}
	}
	return sym, nil
}

type parser struct {
	toks []lexer.Token
	pos  int
	reg  Resolver
	b    id.Builtins
}

// Parse compiles pattern into a pattern tree rooted at SEMTREX's
// top-level siblings production, resolving every label against reg.
func Parse(pattern string, reg Resolver, builtins id.Builtins) (*tree.Node, error) {
	lx, err := lexer.New(pattern)
	if err != nil {
		return nil, err
	}
	var toks []lexer.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			switch e := err.(type) {
			case lexer.UnterminatedError:
				if e.Char {
					return nil, UnterminatedConstructError{Pos: e.Pos, Wanting: "closing '"}
				}
				return nil, UnterminatedConstructError{Pos: e.Pos, Wanting: `closing "`}
			default:
				return nil, err
			}
		}
		toks = append(toks, tok)
		if tok.Kind == lexer.EOF {
			break
		}
	}
	p := &parser{toks: toks, reg: reg, b: builtins}
	if !p.consume(lexer.Slash) {
		return nil, p.unexpected("/")
	}
	n, err := p.siblings()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.EOF) {
		return nil, p.unexpected("EOF")
	}
	return n, nil
}

func (p *parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) consume(k lexer.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) unexpected(expected string) error {
	return UnexpectedTokenError{Pos: p.cur().Pos, Expected: expected, Got: p.cur().Kind.String()}
}

// siblings = orExpr
func (p *parser) siblings() (*tree.Node, error) {
	return p.orExpr()
}

// orExpr = seqExpr ("|" seqExpr)*
func (p *parser) orExpr() (*tree.Node, error) {
	left, err := p.seqExpr()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Pipe) {
		p.advance()
		right, err := p.seqExpr()
		if err != nil {
			return nil, err
		}
		or := tree.New(p.b.Or, tree.Null)
		tree.AddChild(or, left)
		tree.AddChild(or, right)
		left = or
	}
	return left, nil
}

// seqExpr = element ("," element)*
func (p *parser) seqExpr() (*tree.Node, error) {
	first, err := p.element()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.Comma) {
		return first, nil
	}
	seq := tree.New(p.b.Sequence, tree.Null)
	tree.AddChild(seq, first)
	for p.consume(lexer.Comma) {
		next, err := p.element()
		if err != nil {
			return nil, err
		}
		tree.AddChild(seq, next)
	}
	return seq, nil
}

// element = walk | not | group (postfix)? | atom (postfix)?
func (p *parser) element() (*tree.Node, error) {
	switch p.cur().Kind {
	case lexer.Percent:
		return p.walk()
	case lexer.Tilde:
		return p.not()
	case lexer.LAngle:
		n, err := p.group()
		if err != nil {
			return nil, err
		}
		return p.postfix(n)
	default:
		n, err := p.atom()
		if err != nil {
			return nil, err
		}
		return p.postfix(n)
	}
}

// walk = "%" element → SEMTREX_WALK(element)
func (p *parser) walk() (*tree.Node, error) {
	p.advance()
	inner, err := p.element()
	if err != nil {
		return nil, err
	}
	w := tree.New(p.b.Walk, tree.Null)
	tree.AddChild(w, inner)
	return w, nil
}

// not = "~" element → SEMTREX_NOT(element)
func (p *parser) not() (*tree.Node, error) {
	p.advance()
	inner, err := p.element()
	if err != nil {
		return nil, err
	}
	n := tree.New(p.b.Not, tree.Null)
	tree.AddChild(n, inner)
	return n, nil
}

// group = "<" LABEL ":" siblings ">" → SEMTREX_GROUP, surface=label-as-symbol, child=body
func (p *parser) group() (*tree.Node, error) {
	p.advance() // "<"
	if !p.at(lexer.Label) {
		return nil, p.unexpected("LABEL")
	}
	labelTok := p.advance()
	sym, err := p.resolve(labelTok.Text, labelTok.Pos)
	if err != nil {
		return nil, err
	}
	if !p.consume(lexer.Colon) {
		return nil, p.unexpected(":")
	}
	body, err := p.siblings()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.EOF) {
		return nil, UnterminatedConstructError{Pos: p.cur().Pos, Wanting: ">"}
	}
	if !p.consume(lexer.RAngle) {
		return nil, p.unexpected(">")
	}
	g := tree.New(p.b.Group, tree.Identifier(sym))
	tree.AddChild(g, body)
	return g, nil
}

// atom = "/" element | "." | "(" siblings ")" | "!" (LABEL | "{" symset "}")
//      | LABEL postValue? | "{" symset "}"
func (p *parser) atom() (*tree.Node, error) {
	switch p.cur().Kind {
	case lexer.Slash:
		p.advance()
		inner, err := p.element()
		if err != nil {
			return nil, err
		}
		d := tree.New(p.b.Descend, tree.Null)
		tree.AddChild(d, inner)
		return d, nil
	case lexer.Dot:
		p.advance()
		return tree.New(p.b.SymbolAny, tree.Null), nil
	case lexer.LParen:
		p.advance()
		inner, err := p.siblings()
		if err != nil {
			return nil, err
		}
		if p.at(lexer.EOF) {
			return nil, UnterminatedConstructError{Pos: p.cur().Pos, Wanting: ")"}
		}
		if !p.consume(lexer.RParen) {
			return nil, p.unexpected(")")
		}
		return inner, nil
	case lexer.Bang:
		p.advance()
		if p.at(lexer.LBrace) {
			set, err := p.symset()
			if err != nil {
				return nil, err
			}
			lit := tree.New(p.b.SymbolLiteralNot, tree.Null)
			tree.AddChild(lit, set)
			return lit, nil
		}
		if !p.at(lexer.Label) {
			return nil, p.unexpected("LABEL or {")
		}
		labelTok := p.advance()
		sym, err := p.resolve(labelTok.Text, labelTok.Pos)
		if err != nil {
			return nil, err
		}
		lit := tree.New(p.b.SymbolLiteralNot, tree.Null)
		tree.AddChild(lit, singleSymbol(p.b, sym))
		return lit, nil
	case lexer.LBrace:
		set, err := p.symset()
		if err != nil {
			return nil, err
		}
		lit := tree.New(p.b.SymbolLiteral, tree.Null)
		tree.AddChild(lit, set)
		return lit, nil
	case lexer.Label:
		labelTok := p.advance()
		sym, err := p.resolve(labelTok.Text, labelTok.Pos)
		if err != nil {
			return nil, err
		}
		return p.postValue(sym)
	default:
		return nil, p.unexpected("atom")
	}
}

// symset = LABEL ("," LABEL)* → SEMTREX_SYMBOL_SET(...)
func (p *parser) symset() (*tree.Node, error) {
	if !p.consume(lexer.LBrace) {
		return nil, p.unexpected("{")
	}
	set := tree.New(p.b.SymbolSet, tree.Null)
	for {
		if !p.at(lexer.Label) {
			return nil, p.unexpected("LABEL")
		}
		labelTok := p.advance()
		sym, err := p.resolve(labelTok.Text, labelTok.Pos)
		if err != nil {
			return nil, err
		}
		tree.NewChild(set, p.b.SymbolSym, tree.Identifier(sym))
		if !p.consume(lexer.Comma) {
			break
		}
	}
	if p.at(lexer.EOF) {
		return nil, UnterminatedConstructError{Pos: p.cur().Pos, Wanting: "}"}
	}
	if !p.consume(lexer.RBrace) {
		return nil, p.unexpected("}")
	}
	return set, nil
}

func singleSymbol(b id.Builtins, sym id.ID) *tree.Node {
	return tree.New(b.SymbolSym, tree.Identifier(sym))
}

// postValue = "!" "=" value(set) → SEMTREX_VALUE_LITERAL_NOT
//           | "=" value(set)     → SEMTREX_VALUE_LITERAL
//           | "/" element        → SEMTREX_SYMBOL_LITERAL with descent child
//           | ε                  → SEMTREX_SYMBOL_LITERAL
func (p *parser) postValue(sym id.ID) (*tree.Node, error) {
	switch p.cur().Kind {
	case lexer.Bang:
		// "!" only starts postValue here when followed by "=".
		save := p.pos
		p.advance()
		if !p.consume(lexer.Equals) {
			p.pos = save
			return p.plainSymbolLiteral(sym), nil
		}
		val, err := p.valueSet()
		if err != nil {
			return nil, err
		}
		lit := tree.New(p.b.SymbolLiteral, tree.Null)
		tree.AddChild(lit, singleSymbol(p.b, sym))
		neg := tree.New(p.b.ValueLiteralNot, tree.Null)
		tree.AddChild(neg, val)
		tree.AddChild(lit, neg)
		return lit, nil
	case lexer.Equals:
		p.advance()
		val, err := p.valueSet()
		if err != nil {
			return nil, err
		}
		lit := tree.New(p.b.SymbolLiteral, tree.Null)
		tree.AddChild(lit, singleSymbol(p.b, sym))
		pos := tree.New(p.b.ValueLiteral, tree.Null)
		tree.AddChild(pos, val)
		tree.AddChild(lit, pos)
		return lit, nil
	case lexer.Slash:
		p.advance()
		inner, err := p.element()
		if err != nil {
			return nil, err
		}
		lit := tree.New(p.b.SymbolLiteral, tree.Null)
		tree.AddChild(lit, singleSymbol(p.b, sym))
		tree.AddChild(lit, inner)
		return lit, nil
	default:
		return p.plainSymbolLiteral(sym), nil
	}
}

// plainSymbolLiteral wraps sym in the SEMTREX_SYMBOL child the data
// model requires (§3): a SYMBOL_LITERAL's own surface stays null, and
// its first child carries the resolved symbol id.
func (p *parser) plainSymbolLiteral(sym id.ID) *tree.Node {
	lit := tree.New(p.b.SymbolLiteral, tree.Null)
	tree.AddChild(lit, singleSymbol(p.b, sym))
	return lit
}

// value(set) = value | "{" value ("," value)* "}" → VALUE or SEMTREX_VALUE_SET
func (p *parser) valueSet() (*tree.Node, error) {
	if p.at(lexer.LBrace) {
		p.advance()
		set := tree.New(p.b.ValueSet, tree.Null)
		for {
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			tree.AddChild(set, v)
			if !p.consume(lexer.Comma) {
				break
			}
		}
		if p.at(lexer.EOF) {
			return nil, UnterminatedConstructError{Pos: p.cur().Pos, Wanting: "}"}
		}
		if !p.consume(lexer.RBrace) {
			return nil, p.unexpected("}")
		}
		return set, nil
	}
	return p.value()
}

// value = INT | FLOAT | CHAR_LIT | STRING_LIT — represented as a leaf
// node carrying the literal's surface directly (no SEMTREX wrapper
// symbol is specified for bare values; the wrapper is VALUE_LITERAL).
func (p *parser) value() (*tree.Node, error) {
	switch p.cur().Kind {
	case lexer.Int:
		t := p.advance()
		return tree.New(id.NullSymbol, tree.Number(float64(t.IntVal))), nil
	case lexer.Float:
		t := p.advance()
		return tree.New(id.NullSymbol, tree.Number(t.FloatVal)), nil
	case lexer.CharLit:
		t := p.advance()
		return tree.New(id.NullSymbol, tree.String(string(t.CharVal))), nil
	case lexer.StringLit:
		t := p.advance()
		return tree.New(id.NullSymbol, tree.String(t.StringVal)), nil
	default:
		return nil, p.unexpected("value literal")
	}
}

// postfix = ("*"|"+"|"?")? → wrap in ZERO_OR_MORE|ONE_OR_MORE|ZERO_OR_ONE
func (p *parser) postfix(n *tree.Node) (*tree.Node, error) {
	switch p.cur().Kind {
	case lexer.Star:
		p.advance()
		return wrap(p.b.ZeroOrMore, n), nil
	case lexer.Plus:
		p.advance()
		return wrap(p.b.OneOrMore, n), nil
	case lexer.Question:
		p.advance()
		return wrap(p.b.ZeroOrOne, n), nil
	default:
		return n, nil
	}
}

func wrap(sym id.ID, inner *tree.Node) *tree.Node {
	n := tree.New(sym, tree.Null)
	tree.AddChild(n, inner)
	return n
}
