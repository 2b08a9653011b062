// Package match executes a compiled semtrex state graph against a
// target tree, per §4.5: an explicit backtracking stack of branch
// points, an open-capture stack for nested groups, and a completed
// capture list built depth-first as groups close.
package match

import (
	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/semtrex/nfa"
	"github.com/driftwood-labs/semtrex/tree"
)

// Capture is one completed capture group: the matched subtree's
// symbol, its path from the target root, the count of siblings it
// spans, and any nested captures completed inside it.
type Capture struct {
	Symbol        id.ID
	Path          tree.Path
	SiblingsCount int
	Children      []Capture
}

type openFrame struct {
	groupID   int
	symbol    id.ID
	startPath tree.Path
	startNode *tree.Node
	children  []Capture
}

type branchKind int

const (
	bpSplit branchKind = iota
	bpWalk
)

type branchPoint struct {
	kind   branchKind
	state  int
	cursor *tree.Node // meaningful for bpSplit only
	walker *tree.Walker

	openStack []openFrame
	completed []Capture
}

// Match runs g against the tree rooted at root and returns every
// top-level completed capture, in pre-order. A false result with a nil
// slice means "no match" — per §7 that is not an error.
func Match(g *nfa.Graph, root *tree.Node) (bool, []Capture) {
	m := &machine{g: g}
	return m.run(g.Start, root)
}

// MatchBool is Match without the capture payload.
func MatchBool(g *nfa.Graph, root *tree.Node) bool {
	ok, _ := Match(g, root)
	return ok
}

// GetMatchBySymbol searches results depth-first for the first capture
// tagged with sym.
func GetMatchBySymbol(results []Capture, sym id.ID) (Capture, bool) {
	for _, c := range results {
		if c.Symbol == sym {
			return c, true
		}
		if found, ok := GetMatchBySymbol(c.Children, sym); ok {
			return found, true
		}
	}
	return Capture{}, false
}

// GetMatchedNodes resolves result's path against tree and returns the
// slice of matched siblings: result.path itself plus
// siblingsCount-1 further nextSibling steps.
func GetMatchedNodes(root *tree.Node, result Capture) []*tree.Node {
	start, ok := tree.GetByPath(root, result.Path)
	if !ok {
		return nil
	}
	nodes := []*tree.Node{start}
	n := start
	for i := 1; i < result.SiblingsCount; i++ {
		next, ok := n.NextSibling()
		if !ok {
			break
		}
		nodes = append(nodes, next)
		n = next
	}
	return nodes
}

type machine struct {
	g      *nfa.Graph
	branch []branchPoint
}

func (m *machine) run(startState int, cursor *tree.Node) (bool, []Capture) {
	state := startState
	var openStack []openFrame
	var completed []Capture

	fail := func() bool {
		ok, bState, bCursor, bOpen, bCompleted := m.backtrack()
		if !ok {
			return false
		}
		state, cursor, openStack, completed = bState, bCursor, bOpen, bCompleted
		return true
	}

	for {
		st := m.g.States[state]
		switch st.Kind {
		case nfa.KMatch:
			return true, completed

		case nfa.KSymbol:
			if cursor == nil || !symbolMatches(st, cursor) {
				if !fail() {
					return false, nil
				}
				continue
			}
			cursor = advanceCursor(cursor, st.Out.Transition)
			state = st.Out.Target

		case nfa.KValue:
			if cursor == nil || !valueMatches(st, cursor) {
				if !fail() {
					return false, nil
				}
				continue
			}
			cursor = advanceCursor(cursor, st.Out.Transition)
			state = st.Out.Target

		case nfa.KAny:
			if cursor == nil {
				if !fail() {
					return false, nil
				}
				continue
			}
			cursor = advanceCursor(cursor, st.Out.Transition)
			state = st.Out.Target

		case nfa.KSplit:
			m.branch = append(m.branch, branchPoint{
				kind: bpSplit, state: st.Out1.Target, cursor: cursor,
				openStack: cloneOpen(openStack), completed: cloneCaptures(completed),
			})
			state = st.Out.Target

		case nfa.KGroupOpen:
			path, _ := tree.GetPath(rootOf(cursor), cursor)
			openStack = append(openStack, openFrame{
				groupID: st.GroupID, symbol: st.GroupSymbol,
				startPath: path, startNode: cursor,
			})
			state = st.Out.Target

		case nfa.KGroupClose:
			frame := openStack[len(openStack)-1]
			openStack = openStack[:len(openStack)-1]
			cap := Capture{
				Symbol:        frame.symbol,
				Path:          frame.startPath,
				SiblingsCount: siblingsCount(frame.startNode, cursor),
				Children:      frame.children,
			}
			if len(openStack) > 0 {
				openStack[len(openStack)-1].children = append(openStack[len(openStack)-1].children, cap)
			} else {
				completed = append(completed, cap)
			}
			state = st.Out.Target

		case nfa.KDescend:
			if cursor == nil {
				if !fail() {
					return false, nil
				}
				continue
			}
			child, ok := cursor.ChildAt(1)
			if !ok {
				cursor = nil
			} else {
				cursor = child
			}
			state = st.Out.Target

		case nfa.KWalk:
			if cursor == nil {
				if !fail() {
					return false, nil
				}
				continue
			}
			walker := tree.NewWalker(cursor)
			origin, ok := walker.StepInWalk()
			if !ok {
				if !fail() {
					return false, nil
				}
				continue
			}
			m.branch = append(m.branch, branchPoint{
				kind: bpWalk, state: st.Out.Target, walker: walker,
				openStack: cloneOpen(openStack), completed: cloneCaptures(completed),
			})
			cursor = origin
			state = st.Out.Target

		case nfa.KNot:
			sub := &machine{g: m.g}
			innerMatched, _ := sub.run(st.Out.Target, cursor)
			if innerMatched {
				if !fail() {
					return false, nil
				}
				continue
			}
			state = st.Out1.Target

		default:
			if !fail() {
				return false, nil
			}
		}
	}
}

func (m *machine) backtrack() (bool, int, *tree.Node, []openFrame, []Capture) {
	for len(m.branch) > 0 {
		bp := &m.branch[len(m.branch)-1]
		switch bp.kind {
		case bpSplit:
			m.branch = m.branch[:len(m.branch)-1]
			return true, bp.state, bp.cursor, cloneOpen(bp.openStack), cloneCaptures(bp.completed)
		case bpWalk:
			next, ok := bp.walker.StepInWalk()
			if !ok {
				m.branch = m.branch[:len(m.branch)-1]
				continue
			}
			return true, bp.state, next, cloneOpen(bp.openStack), cloneCaptures(bp.completed)
		}
	}
	return false, 0, nil, nil, nil
}

func symbolMatches(st *nfa.State, cursor *tree.Node) bool {
	matched := false
	for _, s := range st.Symbols {
		if cursor.Symbol == s {
			matched = true
			break
		}
	}
	if st.Not {
		matched = !matched
	}
	return matched
}

func valueMatches(st *nfa.State, cursor *tree.Node) bool {
	symOK := cursor.Symbol == st.Symbols[0]
	surfOK := false
	for _, v := range st.Values {
		if cursor.Surface.Equal(v) {
			surfOK = true
			break
		}
	}
	matched := symOK && surfOK
	if st.Not {
		matched = !matched
	}
	return matched
}

// advanceCursor applies a consuming state's transition: +1 descends to
// the cursor's first child, 0 moves to the next sibling, -k pops k
// levels then advances, and nfa.None leaves the cursor untouched.
func advanceCursor(cursor *tree.Node, transition int) *tree.Node {
	if transition == nfa.None {
		return cursor
	}
	if transition >= 1 {
		child, ok := cursor.ChildAt(1)
		if !ok {
			return nil
		}
		return child
	}
	n := cursor
	for k := -transition; k > 0; k-- {
		p, ok := n.GetParent()
		if !ok {
			return nil
		}
		n = p
	}
	next, ok := n.NextSibling()
	if !ok {
		return nil
	}
	return next
}

// siblingsCount implements §9's resolution of the open question: count
// consecutive nextSibling steps from startNode until endNode is
// reached or siblings are exhausted, clamped to a minimum of 1.
func siblingsCount(startNode, endNode *tree.Node) int {
	if startNode == nil {
		return 1
	}
	count := 0
	n := startNode
	for n != nil && n != endNode {
		next, ok := n.NextSibling()
		if !ok {
			break
		}
		n = next
		count++
	}
	if count < 1 {
		count = 1
	}
	return count
}

// rootOf walks n's Parent chain to the tree's root, so GroupOpen can
// compute an absolute path without the matcher threading the target
// root through every state transition.
func rootOf(n *tree.Node) *tree.Node {
	if n == nil {
		return nil
	}
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

func cloneOpen(in []openFrame) []openFrame {
	if in == nil {
		return nil
	}
	out := make([]openFrame, len(in))
	for i, f := range in {
		out[i] = openFrame{
			groupID: f.groupID, symbol: f.symbol,
			startPath: append(tree.Path(nil), f.startPath...),
			startNode: f.startNode,
			children:  cloneCaptures(f.children),
		}
	}
	return out
}

func cloneCaptures(in []Capture) []Capture {
	if in == nil {
		return nil
	}
	out := make([]Capture, len(in))
	for i, c := range in {
		out[i] = Capture{
			Symbol:        c.Symbol,
			Path:          append(tree.Path(nil), c.Path...),
			SiblingsCount: c.SiblingsCount,
			Children:      cloneCaptures(c.Children),
		}
	}
	return out
}
