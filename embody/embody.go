// Package embody rebuilds trees from a matcher's capture results: the
// §6 embody/replace collaborator that turns {bool, captures} into new
// or mutated trees, in the tree-walking "evaluate a node, build a new
// object" style generalized here to "walk a capture, build a new
// tree.Node."
package embody

import (
	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/semtrex/match"
	"github.com/driftwood-labs/semtrex/semtrex/nfa"
	"github.com/driftwood-labs/semtrex/tree"
)

// EmbodyFromMatch builds a new node out of results, resolving captured
// paths against root. A single top-level capture becomes the returned
// node directly; multiple captures are wrapped under a root tagged with
// the first capture's symbol. Nested captures recurse.
func EmbodyFromMatch(results []match.Capture, root *tree.Node) *tree.Node {
	if len(results) == 0 {
		return nil
	}
	if len(results) == 1 {
		return embodyOne(results[0], root)
	}
	out := tree.New(results[0].Symbol, tree.Null)
	for _, c := range results {
		tree.AddChild(out, embodyOne(c, root))
	}
	return out
}

func embodyOne(c match.Capture, root *tree.Node) *tree.Node {
	out := tree.New(c.Symbol, tree.Null)
	if len(c.Children) > 0 {
		for _, nc := range c.Children {
			tree.AddChild(out, embodyOne(nc, root))
		}
		return out
	}
	matched := match.GetMatchedNodes(root, c)
	if len(matched) == 1 && matched[0].ChildCount() == 0 {
		out.Surface = matched[0].Surface
		return out
	}
	for _, m := range matched {
		tree.AddChild(out, tree.Clone(m))
	}
	return out
}

// StxReplace matches g against root, then for every top-level capture
// locates the matched node by path and replaces it in its parent with a
// deep clone of replacement. It returns the captures the match
// produced (nil if g did not match).
func StxReplace(g *nfa.Graph, root, replacement *tree.Node) []match.Capture {
	ok, results := match.Match(g, root)
	if !ok {
		return nil
	}
	for _, c := range results {
		target, ok := tree.GetByPath(root, c.Path)
		if !ok {
			continue
		}
		parent, ok := target.GetParent()
		if !ok {
			continue
		}
		idx, ok := target.NodeIndex()
		if !ok {
			continue
		}
		tree.Detach(target)
		tree.InsertAt(parent, idx, tree.Clone(replacement))
	}
	return results
}

// MatchResultsToSemMap builds a SEMANTIC_MAP root with one SEMANTIC_LINK
// per capture (a USAGE node naming the capture's symbol, plus a
// REPLACEMENT_VALUE holding a clone of the matched subtree). Nested
// captures are flattened depth-first into the same map.
func MatchResultsToSemMap(b id.Builtins, results []match.Capture, root *tree.Node) *tree.Node {
	semMap := tree.New(b.SemanticMap, tree.Null)
	var flatten func(c match.Capture)
	flatten = func(c match.Capture) {
		link := tree.NewChild(semMap, b.SemanticLink, tree.Null)
		tree.NewChild(link, b.Usage, tree.Identifier(c.Symbol))
		repl := tree.NewChild(link, b.ReplacementValue, tree.Null)
		for _, m := range match.GetMatchedNodes(root, c) {
			tree.AddChild(repl, tree.Clone(m))
		}
		for _, nc := range c.Children {
			flatten(nc)
		}
	}
	for _, c := range results {
		flatten(c)
	}
	return semMap
}
