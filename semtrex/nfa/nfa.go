// Package nfa lowers a semtrex pattern tree into a Thompson-style state
// graph, the tree analogue of LAB_2/regexlib/nfa.go's nfaFrag/patchOuts
// machinery: every constructed fragment exports a start state and a
// list of currently-unpatched successor slots, composed by patching one
// fragment's outputs to the next fragment's start.
package nfa

import (
	"fmt"
	"math"

	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/tree"
)

// None is the transition sentinel for a non-cursor-consuming edge: the
// cursor is unchanged when this edge is followed.
const None = math.MinInt32

// Kind discriminates a state's role in the graph.
type Kind int

const (
	KMatch Kind = iota
	KSymbol
	KValue
	KAny
	KSplit
	KGroupOpen
	KGroupClose
	KDescend
	KNot
	KWalk
)

// Consuming reports whether a state of this kind reads the node under
// the cursor — Symbol, Any, and Value do; the rest are purely
// structural. The matcher fails these three on a null cursor, and also
// fails Descend and Walk when entered with no cursor.
func (k Kind) Consuming() bool {
	switch k {
	case KSymbol, KValue, KAny:
		return true
	default:
		return false
	}
}

// Edge is one successor slot: a target state index (-1 or zero until
// patched) and the cursor motion applied when it is followed. Transition values
// follow §4.5: +1 descends to the first child, 0 moves to the next
// sibling, -k pops k levels then advances, None leaves the cursor
// untouched.
type Edge struct {
	Target     int
	Transition int
}

// State is one arena-indexed node of the graph. Which fields are
// meaningful depends on Kind.
type State struct {
	Kind Kind

	Out  Edge
	Out1 Edge // Split's alternate, Not's post-negation continuation

	// KSymbol / KValue payload.
	Not     bool
	Set     bool
	Symbols []id.ID
	Values  []tree.Surface // KValue only; paired against the single entry in Symbols

	// KGroupOpen / KGroupClose.
	GroupID     int
	GroupSymbol id.ID
}

// Graph is the arena-indexed state graph a Build call produces. States
// are owned by index, not by reference, so the graph's cycles (from
// repetition and WALK loops) need no reference counting.
type Graph struct {
	States []*State
	Start  int
	Accept int
}

// BadArityError is a programmer error: a pattern-tree node tagged with
// a SEMTREX_* operator symbol has the wrong number of children for
// that operator.
type BadArityError struct {
	Op       string
	Got      int
	Expected int
}

func (e BadArityError) Error() string {
	return fmt.Sprintf("bad arity for %s: got %d children, expected %d", e.Op, e.Got, e.Expected)
}

// UnknownOperatorError is a programmer error: a pattern-tree node's
// symbol is not one of the SEMTREX_* operators the builder knows.
type UnknownOperatorError struct {
	Symbol id.ID
}

func (e UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown pattern operator %v", e.Symbol)
}

type outRef struct {
	state int
	which int // 0 = Out, 1 = Out1
}

type frag struct {
	start int
	outs  []outRef
}

type builder struct {
	g        *Graph
	b        id.Builtins
	level    int
	groupSeq int
}

// Build lowers pattern into a state graph, patching every remaining
// output to a single shared accept state. The group-id counter is
// local to this call, per §5/§9.
func Build(pattern *tree.Node, b id.Builtins) (*Graph, error) {
	bd := &builder{g: &Graph{}, b: b}
	bd.g.Accept = bd.alloc(&State{Kind: KMatch})
	f, err := bd.compile(pattern)
	if err != nil {
		return nil, err
	}
	bd.patch(f.outs, bd.g.Accept)
	bd.g.Start = f.start
	return bd.g, nil
}

func (bd *builder) alloc(s *State) int {
	bd.g.States = append(bd.g.States, s)
	return len(bd.g.States) - 1
}

func (bd *builder) nextGroupID() int {
	bd.groupSeq++
	return bd.groupSeq
}

func (bd *builder) edgeOf(o outRef) *Edge {
	st := bd.g.States[o.state]
	if o.which == 0 {
		return &st.Out
	}
	return &st.Out1
}

// patch finalizes a list of pending successor slots to target,
// subtracting the current level from each edge's pending transition
// (per §4.4's "adjusted by adding -level to it").
func (bd *builder) patch(outs []outRef, target int) {
	for _, o := range outs {
		e := bd.edgeOf(o)
		e.Transition -= bd.level
		e.Target = target
	}
}

func concat(a, b []outRef) []outRef {
	out := make([]outRef, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func (bd *builder) compile(n *tree.Node) (frag, error) {
	switch n.Symbol {
	case bd.b.SymbolLiteral, bd.b.SymbolLiteralNot:
		return bd.compileSymbolLiteral(n)
	case bd.b.SymbolAny:
		return bd.compileAny(n)
	case bd.b.Sequence:
		return bd.compileSequence(n)
	case bd.b.Or:
		return bd.compileOr(n)
	case bd.b.ZeroOrMore:
		return bd.compileZeroOrMore(n)
	case bd.b.OneOrMore:
		return bd.compileOneOrMore(n)
	case bd.b.ZeroOrOne:
		return bd.compileZeroOrOne(n)
	case bd.b.Group:
		return bd.compileGroup(n)
	case bd.b.Descend:
		return bd.compileDescend(n)
	case bd.b.Not:
		return bd.compileNot(n)
	case bd.b.Walk:
		return bd.compileWalk(n)
	default:
		return frag{}, UnknownOperatorError{Symbol: n.Symbol}
	}
}

func (bd *builder) compileAny(n *tree.Node) (frag, error) {
	if len(n.Children) != 0 {
		return frag{}, BadArityError{Op: "SEMTREX_SYMBOL_ANY", Got: len(n.Children), Expected: 0}
	}
	idx := bd.alloc(&State{Kind: KAny, Out: Edge{Target: -1, Transition: bd.level}})
	return frag{start: idx, outs: []outRef{{idx, 0}}}, nil
}

// compileSymbolLiteral handles a SYMBOL_LITERAL(_NOT) node: its first
// child is always a SEMTREX_SYMBOL (single label) or SEMTREX_SYMBOL_SET
// (brace set), per §3's data model. An optional second child is either
// a VALUE_LITERAL/_NOT wrapper (from "=" / "!=" postValue) or, for any
// other shape, the descent-sugar pattern from "LABEL / element" — kept
// as a plain second child rather than wrapped in DESCEND so the
// builder can see it needs a level adjustment.
func (bd *builder) compileSymbolLiteral(n *tree.Node) (frag, error) {
	if len(n.Children) < 1 {
		return frag{}, BadArityError{Op: "SEMTREX_SYMBOL_LITERAL", Got: len(n.Children), Expected: 1}
	}
	not := n.Symbol == bd.b.SymbolLiteralNot
	symChild := n.Children[0]

	var syms []id.ID
	var set bool
	switch symChild.Symbol {
	case bd.b.SymbolSet:
		set = true
		syms = make([]id.ID, len(symChild.Children))
		for i, c := range symChild.Children {
			syms[i] = c.Surface.ID
		}
	case bd.b.SymbolSym:
		syms = []id.ID{symChild.Surface.ID}
	default:
		return frag{}, BadArityError{Op: "SEMTREX_SYMBOL_LITERAL", Got: len(n.Children), Expected: 1}
	}

	if len(n.Children) == 1 {
		idx := bd.alloc(&State{
			Kind: KSymbol, Not: not, Set: set,
			Symbols: syms,
			Out:     Edge{Target: -1, Transition: bd.level},
		})
		return frag{start: idx, outs: []outRef{{idx, 0}}}, nil
	}

	second := n.Children[1]
	switch second.Symbol {
	case bd.b.ValueLiteral, bd.b.ValueLiteralNot:
		if len(second.Children) != 1 {
			return frag{}, BadArityError{Op: "SEMTREX_VALUE_LITERAL", Got: len(second.Children), Expected: 1}
		}
		valNot := second.Symbol == bd.b.ValueLiteralNot
		values, valSet := bd.collectValues(second.Children[0])
		idx := bd.alloc(&State{
			Kind: KValue, Not: valNot, Set: valSet,
			Symbols: syms,
			Values:  values,
			Out:     Edge{Target: -1, Transition: bd.level},
		})
		return frag{start: idx, outs: []outRef{{idx, 0}}}, nil

	default:
		symIdx := bd.alloc(&State{Kind: KSymbol, Not: not, Set: set, Symbols: syms})
		bd.level--
		inner, err := bd.compile(second)
		bd.level++
		if err != nil {
			return frag{}, err
		}
		bd.g.States[symIdx].Out = Edge{Target: inner.start, Transition: 1}
		return frag{start: symIdx, outs: inner.outs}, nil
	}
}

func (bd *builder) collectValues(n *tree.Node) ([]tree.Surface, bool) {
	if n.Symbol == bd.b.ValueSet {
		out := make([]tree.Surface, len(n.Children))
		for i, c := range n.Children {
			out[i] = c.Surface
		}
		return out, true
	}
	return []tree.Surface{n.Surface}, false
}

func (bd *builder) compileSequence(n *tree.Node) (frag, error) {
	if len(n.Children) < 1 {
		return frag{}, BadArityError{Op: "SEMTREX_SEQUENCE", Got: 0, Expected: 1}
	}
	frags := make([]frag, len(n.Children))
	for i, c := range n.Children {
		f, err := bd.compile(c)
		if err != nil {
			return frag{}, err
		}
		frags[i] = f
	}
	for i := 0; i < len(frags)-1; i++ {
		bd.patch(frags[i].outs, frags[i+1].start)
	}
	return frag{start: frags[0].start, outs: frags[len(frags)-1].outs}, nil
}

func (bd *builder) compileOr(n *tree.Node) (frag, error) {
	if len(n.Children) != 2 {
		return frag{}, BadArityError{Op: "SEMTREX_OR", Got: len(n.Children), Expected: 2}
	}
	a, err := bd.compile(n.Children[0])
	if err != nil {
		return frag{}, err
	}
	c, err := bd.compile(n.Children[1])
	if err != nil {
		return frag{}, err
	}
	idx := bd.alloc(&State{
		Kind: KSplit,
		Out:  Edge{Target: a.start, Transition: None},
		Out1: Edge{Target: c.start, Transition: None},
	})
	return frag{start: idx, outs: concat(a.outs, c.outs)}, nil
}

func (bd *builder) compileZeroOrMore(n *tree.Node) (frag, error) {
	if len(n.Children) != 1 {
		return frag{}, BadArityError{Op: "SEMTREX_ZERO_OR_MORE", Got: len(n.Children), Expected: 1}
	}
	e, err := bd.compile(n.Children[0])
	if err != nil {
		return frag{}, err
	}
	idx := bd.alloc(&State{Kind: KSplit, Out: Edge{Target: e.start, Transition: None}})
	bd.patch(e.outs, idx)
	return frag{start: idx, outs: []outRef{{idx, 1}}}, nil
}

func (bd *builder) compileOneOrMore(n *tree.Node) (frag, error) {
	if len(n.Children) != 1 {
		return frag{}, BadArityError{Op: "SEMTREX_ONE_OR_MORE", Got: len(n.Children), Expected: 1}
	}
	e, err := bd.compile(n.Children[0])
	if err != nil {
		return frag{}, err
	}
	idx := bd.alloc(&State{Kind: KSplit, Out: Edge{Target: e.start, Transition: None}})
	bd.patch(e.outs, idx)
	return frag{start: e.start, outs: []outRef{{idx, 1}}}, nil
}

func (bd *builder) compileZeroOrOne(n *tree.Node) (frag, error) {
	if len(n.Children) != 1 {
		return frag{}, BadArityError{Op: "SEMTREX_ZERO_OR_ONE", Got: len(n.Children), Expected: 1}
	}
	e, err := bd.compile(n.Children[0])
	if err != nil {
		return frag{}, err
	}
	idx := bd.alloc(&State{Kind: KSplit, Out: Edge{Target: e.start, Transition: None}})
	return frag{start: idx, outs: append(append([]outRef{}, e.outs...), outRef{idx, 1})}, nil
}

func (bd *builder) compileGroup(n *tree.Node) (frag, error) {
	if len(n.Children) != 1 {
		return frag{}, BadArityError{Op: "SEMTREX_GROUP", Got: len(n.Children), Expected: 1}
	}
	gid := bd.nextGroupID()
	openIdx := bd.alloc(&State{Kind: KGroupOpen, GroupID: gid, GroupSymbol: n.Surface.ID})
	closeIdx := bd.alloc(&State{Kind: KGroupClose, GroupID: gid, GroupSymbol: n.Surface.ID})
	e, err := bd.compile(n.Children[0])
	if err != nil {
		return frag{}, err
	}
	bd.g.States[openIdx].Out = Edge{Target: e.start, Transition: None}
	bd.patch(e.outs, closeIdx)
	return frag{start: openIdx, outs: []outRef{{closeIdx, 0}}}, nil
}

func (bd *builder) compileDescend(n *tree.Node) (frag, error) {
	if len(n.Children) != 1 {
		return frag{}, BadArityError{Op: "SEMTREX_DESCEND", Got: len(n.Children), Expected: 1}
	}
	idx := bd.alloc(&State{Kind: KDescend})
	bd.level--
	inner, err := bd.compile(n.Children[0])
	bd.level++
	if err != nil {
		return frag{}, err
	}
	bd.g.States[idx].Out = Edge{Target: inner.start, Transition: None}
	return frag{start: idx, outs: inner.outs}, nil
}

// compileNot gives the negated body its own private accept marker
// rather than literally threading its outputs into the outer fragment:
// the matcher runs NOT's body as an independent sub-match (§4.5), and
// "independent" is easiest to keep honest by never letting the body's
// successors leak into the surrounding graph.
func (bd *builder) compileNot(n *tree.Node) (frag, error) {
	if len(n.Children) != 1 {
		return frag{}, BadArityError{Op: "SEMTREX_NOT", Got: len(n.Children), Expected: 1}
	}
	e, err := bd.compile(n.Children[0])
	if err != nil {
		return frag{}, err
	}
	innerAccept := bd.alloc(&State{Kind: KMatch})
	bd.patch(e.outs, innerAccept)
	idx := bd.alloc(&State{Kind: KNot, Out: Edge{Target: e.start, Transition: None}})
	return frag{start: idx, outs: []outRef{{idx, 1}}}, nil
}

func (bd *builder) compileWalk(n *tree.Node) (frag, error) {
	if len(n.Children) != 1 {
		return frag{}, BadArityError{Op: "SEMTREX_WALK", Got: len(n.Children), Expected: 1}
	}
	e, err := bd.compile(n.Children[0])
	if err != nil {
		return frag{}, err
	}
	idx := bd.alloc(&State{Kind: KWalk, Out: Edge{Target: e.start, Transition: None}})
	return frag{start: idx, outs: e.outs}, nil
}
