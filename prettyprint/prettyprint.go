// Package prettyprint turns a SEMTREX_* pattern tree back into §4.3
// surface syntax, the same way LAB_3_Drone/ast's String() method
// family turns its AST back into drone-language source: each node
// prints itself by gluing its children's printed forms with the
// operator's own punctuation, recursing depth-first.
package prettyprint

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/tree"
)

func fixedSymbol(num int) id.ID { return id.ID{Context: 0, Kind: id.SYMBOL, Num: num} }

// These mirror id.Builtins' SEMTREX_* ids directly from their fixed
// §6 numbers, rather than threading an id.Builtins value through —
// the ids are fixed in context 0 regardless of which registry called
// RegisterBuiltins, so Print only needs the registry for resolving
// user-defined labels.
var (
	symSymbolLiteral    = fixedSymbol(id.SymbolLiteralNum)
	symSymbolLiteralNot = fixedSymbol(id.SymbolLiteralNotNum)
	symSymbolSym        = fixedSymbol(id.SemtrexSymbolNum)
	symSymbolSet        = fixedSymbol(id.SymbolSetNum)
	symSymbolAny        = fixedSymbol(id.SymbolAnyNum)
	symSequence         = fixedSymbol(id.SequenceNum)
	symOr               = fixedSymbol(id.OrNum)
	symNot              = fixedSymbol(id.NotNum)
	symZeroOrMore       = fixedSymbol(id.ZeroOrMoreNum)
	symOneOrMore        = fixedSymbol(id.OneOrMoreNum)
	symZeroOrOne        = fixedSymbol(id.ZeroOrOneNum)
	symValueLiteral     = fixedSymbol(id.ValueLiteralNum)
	symValueLiteralNot  = fixedSymbol(id.ValueLiteralNotNum)
	symValueSet         = fixedSymbol(id.ValueSetNum)
	symGroup            = fixedSymbol(id.GroupNum)
	symDescend          = fixedSymbol(id.DescendNum)
	symWalk             = fixedSymbol(id.WalkNum)
)

// UnresolvedSymbolError reports a symbol id in the pattern tree with
// no label in the registry, which makes it unprintable.
type UnresolvedSymbolError struct {
	Symbol id.ID
}

func (e UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("no label registered for %v", e.Symbol)
}

// UnprintableNodeError reports a node this printer doesn't recognize
// as a SEMTREX_* pattern construct.
type UnprintableNodeError struct {
	Symbol id.ID
}

func (e UnprintableNodeError) Error() string {
	return fmt.Sprintf("not a printable pattern node: %v", e.Symbol)
}

type printer struct {
	reg *id.Registry
}

// Print renders patternTree as semtrex surface syntax, resolving
// every user symbol through reg. The result always begins with "/"
// per §4.3's top-level grammar.
func Print(patternTree *tree.Node, reg *id.Registry) (string, error) {
	p := &printer{reg: reg}
	body, err := p.element(patternTree)
	if err != nil {
		return "", err
	}
	return "/" + body, nil
}

func (p *printer) label(sym id.ID) (string, error) {
	l, ok := p.reg.LabelOf(sym)
	if !ok {
		return "", UnresolvedSymbolError{Symbol: sym}
	}
	return l, nil
}

// element prints n in "siblings" position, where a bare "," or "|"
// chain needs no enclosing parens.
func (p *printer) element(n *tree.Node) (string, error) {
	switch n.Symbol {
	case symSequence:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			s, err := p.element(c)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil

	case symOr:
		left, err := p.element(n.Children[0])
		if err != nil {
			return "", err
		}
		right, err := p.element(n.Children[1])
		if err != nil {
			return "", err
		}
		return left + "|" + right, nil

	case symNot:
		inner, err := p.elementGrouped(n.Children[0])
		if err != nil {
			return "", err
		}
		return "~" + inner, nil

	case symWalk:
		inner, err := p.elementGrouped(n.Children[0])
		if err != nil {
			return "", err
		}
		return "%" + inner, nil

	case symZeroOrMore:
		inner, err := p.elementGrouped(n.Children[0])
		if err != nil {
			return "", err
		}
		return inner + "*", nil

	case symOneOrMore:
		inner, err := p.elementGrouped(n.Children[0])
		if err != nil {
			return "", err
		}
		return inner + "+", nil

	case symZeroOrOne:
		inner, err := p.elementGrouped(n.Children[0])
		if err != nil {
			return "", err
		}
		return inner + "?", nil

	case symDescend:
		inner, err := p.elementGrouped(n.Children[0])
		if err != nil {
			return "", err
		}
		return "/" + inner, nil

	case symGroup:
		label, err := p.label(n.Surface.ID)
		if err != nil {
			return "", err
		}
		body, err := p.element(n.Children[0])
		if err != nil {
			return "", err
		}
		return "<" + label + ":" + body + ">", nil

	case symSymbolAny:
		return ".", nil

	case symSymbolLiteral:
		return p.symbolLiteral(n)

	case symSymbolLiteralNot:
		return p.symbolLiteralNot(n)

	default:
		return "", UnprintableNodeError{Symbol: n.Symbol}
	}
}

// elementGrouped prints n the way a prefix operator (~, %, postfix
// quantifiers, /) needs its single operand printed: wrapped in
// parens when n is itself a sequence or alternation, since those
// only ever appear there when the original source wrapped them in
// "(...)" — without the parens the operator would bind to just the
// last element instead of the whole group.
func (p *printer) elementGrouped(n *tree.Node) (string, error) {
	s, err := p.element(n)
	if err != nil {
		return "", err
	}
	if n.Symbol == symSequence || n.Symbol == symOr {
		return "(" + s + ")", nil
	}
	return s, nil
}

func (p *printer) symbolLiteral(n *tree.Node) (string, error) {
	head, err := p.symbolHead(n.Children[0])
	if err != nil {
		return "", err
	}
	if len(n.Children) == 1 {
		return head, nil
	}
	second := n.Children[1]
	switch second.Symbol {
	case symValueLiteral:
		suffix, err := p.valueSuffix(second, "=")
		if err != nil {
			return "", err
		}
		return head + suffix, nil
	case symValueLiteralNot:
		suffix, err := p.valueSuffix(second, "!=")
		if err != nil {
			return "", err
		}
		return head + suffix, nil
	default:
		target, err := p.elementGrouped(second)
		if err != nil {
			return "", err
		}
		return head + "/" + target, nil
	}
}

func (p *printer) symbolLiteralNot(n *tree.Node) (string, error) {
	head, err := p.symbolHead(n.Children[0])
	if err != nil {
		return "", err
	}
	return "!" + head, nil
}

// symbolHead prints either a bare SEMTREX_SYMBOL leaf or a
// SEMTREX_SYMBOL_SET — the two shapes a SYMBOL_LITERAL's first child
// (or a SYMBOL_LITERAL_NOT's only child) can take.
func (p *printer) symbolHead(n *tree.Node) (string, error) {
	switch n.Symbol {
	case symSymbolSym:
		return p.label(n.Surface.ID)
	case symSymbolSet:
		return p.symbolSet(n)
	default:
		return "", UnprintableNodeError{Symbol: n.Symbol}
	}
}

func (p *printer) symbolSet(n *tree.Node) (string, error) {
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		l, err := p.label(c.Surface.ID)
		if err != nil {
			return "", err
		}
		parts[i] = l
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

func (p *printer) valueSuffix(n *tree.Node, op string) (string, error) {
	v := n.Children[0]
	if v.Symbol == symValueSet {
		parts := make([]string, len(v.Children))
		for i, c := range v.Children {
			s, err := printValue(c)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return op + "{" + strings.Join(parts, ",") + "}", nil
	}
	s, err := printValue(v)
	if err != nil {
		return "", err
	}
	return op + s, nil
}

// UnprintableValueError reports a value leaf whose surface isn't one
// of the literal kinds §4.3's value grammar produces.
type UnprintableValueError struct {
	Surface tree.Surface
}

func (e UnprintableValueError) Error() string {
	return fmt.Sprintf("not a printable value literal: %v", e.Surface)
}

func printValue(n *tree.Node) (string, error) {
	switch n.Surface.Kind {
	case tree.SurfaceNumber:
		if n.Surface.Num == math.Trunc(n.Surface.Num) {
			return strconv.FormatFloat(n.Surface.Num, 'f', 0, 64), nil
		}
		return strconv.FormatFloat(n.Surface.Num, 'g', -1, 64), nil
	case tree.SurfaceString:
		if len([]rune(n.Surface.Str)) == 1 {
			return "'" + escapeLiteral(n.Surface.Str, '\'') + "'", nil
		}
		return `"` + escapeLiteral(n.Surface.Str, '"') + `"`, nil
	default:
		return "", UnprintableValueError{Surface: n.Surface}
	}
}

func escapeLiteral(s string, quote rune) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case quote:
			b.WriteByte('\\')
			b.WriteRune(quote)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
