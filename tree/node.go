// Package tree implements the ordered, parent-pointed trees that
// semtrex patterns are compiled against and matched over: strictly
// owned children, 1-indexed navigation and paths, a depth-first
// walker, and the small set of mutation primitives (clone, detach,
// morph, insertAt, replaceNode) patterns and matches are built from.
package tree

import (
	"hash/fnv"
	"io"
	"math"

	"github.com/driftwood-labs/semtrex/id"
)

// Node is an ordered tree node. Children are owned: a Node never
// appears as a child of two parents at once, and Parent is always
// consistent with the owning parent's Children slice.
type Node struct {
	Symbol   id.ID
	Surface  Surface
	Children []*Node
	Parent   *Node
}

// New creates a detached (root) node.
func New(symbol id.ID, surface Surface) *Node {
	return &Node{Symbol: symbol, Surface: surface}
}

// NewChild creates a node and appends it as the last child of parent.
func NewChild(parent *Node, symbol id.ID, surface Surface) *Node {
	n := New(symbol, surface)
	AddChild(parent, n)
	return n
}

// ChildCount returns the number of children n owns.
func (n *Node) ChildCount() int {
	if n == nil {
		return 0
	}
	return len(n.Children)
}

// ChildAt returns n's i-th child, 1-indexed. It reports false, rather
// than an error, for an out-of-range i (navigation off the end of a
// tree is non-error per §7).
func (n *Node) ChildAt(i int) (*Node, bool) {
	if n == nil || i < 1 || i > len(n.Children) {
		return nil, false
	}
	return n.Children[i-1], true
}

// NodeIndex returns n's 1-indexed position among its parent's
// children, or false if n has no parent.
func (n *Node) NodeIndex() (int, bool) {
	if n == nil || n.Parent == nil {
		return 0, false
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i + 1, true
		}
	}
	return 0, false
}

// NextSibling returns the node immediately after n among its
// parent's children, or false if n is the last child or has no
// parent.
func (n *Node) NextSibling() (*Node, bool) {
	idx, ok := n.NodeIndex()
	if !ok {
		return nil, false
	}
	return n.Parent.ChildAt(idx + 1)
}

// GetParent returns n's parent, or false at the root.
func (n *Node) GetParent() (*Node, bool) {
	if n == nil || n.Parent == nil {
		return nil, false
	}
	return n.Parent, true
}

// AddChild detaches c from its prior parent (if any) and appends it
// as p's last child.
func AddChild(p, c *Node) {
	if c.Parent != nil {
		Detach(c)
	}
	p.Children = append(p.Children, c)
	c.Parent = p
}

// InsertAt inserts c as p's i-th child (1-indexed), shifting later
// children back. i may be len(p.Children)+1 to append. Any other
// out-of-range i is an OutOfRangeError — unlike navigation, mutation on
// an invalid index is an error per §7.
func InsertAt(p *Node, i int, c *Node) error {
	if i < 1 || i > len(p.Children)+1 {
		return OutOfRangeError{Index: i, Len: len(p.Children)}
	}
	if c.Parent != nil {
		Detach(c)
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[i:], p.Children[i-1:])
	p.Children[i-1] = c
	c.Parent = p
	return nil
}

// Detach removes n from its parent's children and returns n as an
// ownership-transferring root. Detaching an already-detached node is a
// no-op.
func Detach(n *Node) *Node {
	if n.Parent == nil {
		return n
	}
	p := n.Parent
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = nil
	return n
}

// Clone deep-copies n and returns a new, parentless root.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := &Node{Symbol: n.Symbol, Surface: n.Surface}
	for _, child := range n.Children {
		cc := Clone(child)
		cc.Parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// Morph overwrites only dst's Symbol and Surface with src's, leaving
// dst's children and parent untouched.
func Morph(dst, src *Node) {
	dst.Symbol = src.Symbol
	dst.Surface = src.Surface
}

// ReplaceNode transfers src's children into dst — reparenting each one
// to dst — and empties src. dst's own Symbol/Surface/parent are
// untouched.
func ReplaceNode(dst, src *Node) {
	for _, c := range src.Children {
		c.Parent = dst
	}
	dst.Children = append(dst.Children, src.Children...)
	src.Children = nil
}

// Hash computes a structural hash of n's subtree: symbol, surface, and
// children all contribute, in order, so two structurally identical
// subtrees hash identically regardless of node identity.
func Hash(n *Node) uint64 {
	h := fnv.New64a()
	hashInto(h, n)
	return h.Sum64()
}

func hashInto(h io.Writer, n *Node) {
	if n == nil {
		h.Write([]byte{0})
		return
	}
	writeInt := func(i int) {
		buf := make([]byte, 8)
		for k := 0; k < 8; k++ {
			buf[k] = byte(i >> (8 * k))
		}
		h.Write(buf)
	}
	writeInt(n.Symbol.Context)
	writeInt(int(n.Symbol.Kind))
	writeInt(n.Symbol.Num)
	writeInt(int(n.Surface.Kind))
	switch n.Surface.Kind {
	case SurfaceNumber:
		bits := math.Float64bits(n.Surface.Num)
		buf := make([]byte, 8)
		for k := 0; k < 8; k++ {
			buf[k] = byte(bits >> (8 * k))
		}
		h.Write(buf)
	case SurfaceBool:
		if n.Surface.Bool {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case SurfaceString:
		h.Write([]byte(n.Surface.Str))
	case SurfaceBytes:
		h.Write(n.Surface.Bytes)
	case SurfaceID:
		writeInt(n.Surface.ID.Context)
		writeInt(int(n.Surface.ID.Kind))
		writeInt(n.Surface.ID.Num)
	}
	writeInt(len(n.Children))
	for _, c := range n.Children {
		hashInto(h, c)
	}
}

