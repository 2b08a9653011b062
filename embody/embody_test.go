package embody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/semtrex/match"
	"github.com/driftwood-labs/semtrex/semtrex/nfa"
	"github.com/driftwood-labs/semtrex/semtrex/parser"
	"github.com/driftwood-labs/semtrex/tree"
)

func newRegistry(labels ...string) (*id.Registry, id.Builtins) {
	r := id.NewRegistry()
	b := id.RegisterBuiltins(r)
	for _, l := range labels {
		r.DefineSymbol(0, id.NullStructure, l)
	}
	return r, b
}

func buildGraph(t *testing.T, pattern string, r *id.Registry, b id.Builtins) *nfa.Graph {
	t.Helper()
	n, err := parser.Parse(pattern, r, b)
	require.NoError(t, err)
	g, err := nfa.Build(n, b)
	require.NoError(t, err)
	return g
}

func TestEmbodyFromMatchSingleLeafCapture(t *testing.T) {
	r, b := newRegistry("HomeLocation", "lat", "lon")
	home := tree.New(mustSym(t, r, "HomeLocation"), tree.Null)
	tree.NewChild(home, mustSym(t, r, "lat"), tree.Number(42.25))
	tree.NewChild(home, mustSym(t, r, "lon"), tree.Number(73.25))

	g := buildGraph(t, "/HomeLocation/(<lat:lat>,<lon:lon>)", r, b)
	ok, caps := match.Match(g, home)
	require.True(t, ok)
	require.Len(t, caps, 2)

	latNode := EmbodyFromMatch([]match.Capture{caps[0]}, home)
	assert.Equal(t, mustSym(t, r, "lat"), latNode.Symbol)
	assert.True(t, latNode.Surface.Equal(tree.Number(42.25)))
	assert.Equal(t, 0, latNode.ChildCount())
}

func TestEmbodyFromMatchMultipleCapturesWrapped(t *testing.T) {
	r, b := newRegistry("HomeLocation", "lat", "lon")
	home := tree.New(mustSym(t, r, "HomeLocation"), tree.Null)
	tree.NewChild(home, mustSym(t, r, "lat"), tree.Number(42.25))
	tree.NewChild(home, mustSym(t, r, "lon"), tree.Number(73.25))

	g := buildGraph(t, "/HomeLocation/(<lat:lat>,<lon:lon>)", r, b)
	_, caps := match.Match(g, home)

	root := EmbodyFromMatch(caps, home)
	require.Equal(t, mustSym(t, r, "lat"), root.Symbol)
	require.Len(t, root.Children, 2)
	assert.True(t, root.Children[0].Surface.Equal(tree.Number(42.25)))
	assert.True(t, root.Children[1].Surface.Equal(tree.Number(73.25)))
}

func TestStxReplaceSwapsMatchedNode(t *testing.T) {
	r, b := newRegistry("HomeLocation", "lat", "lon", "unknown")
	home := tree.New(mustSym(t, r, "HomeLocation"), tree.Null)
	tree.NewChild(home, mustSym(t, r, "lat"), tree.Number(42.25))
	tree.NewChild(home, mustSym(t, r, "lon"), tree.Number(73.25))

	g := buildGraph(t, "/HomeLocation/<lat:lat>", r, b)
	replacement := tree.New(mustSym(t, r, "unknown"), tree.Number(0))

	caps := StxReplace(g, home, replacement)
	require.Len(t, caps, 1)

	got, ok := home.ChildAt(1)
	require.True(t, ok)
	assert.Equal(t, mustSym(t, r, "unknown"), got.Symbol)
	assert.True(t, got.Surface.Equal(tree.Number(0)))
}

func TestMatchResultsToSemMap(t *testing.T) {
	r, b := newRegistry("HomeLocation", "lat", "lon")
	home := tree.New(mustSym(t, r, "HomeLocation"), tree.Null)
	tree.NewChild(home, mustSym(t, r, "lat"), tree.Number(42.25))
	tree.NewChild(home, mustSym(t, r, "lon"), tree.Number(73.25))

	g := buildGraph(t, "/HomeLocation/(<lat:lat>,<lon:lon>)", r, b)
	_, caps := match.Match(g, home)

	semMap := MatchResultsToSemMap(b, caps, home)
	require.Equal(t, b.SemanticMap, semMap.Symbol)
	require.Len(t, semMap.Children, 2)

	link := semMap.Children[0]
	require.Equal(t, b.SemanticLink, link.Symbol)
	require.Len(t, link.Children, 2)
	usage, repl := link.Children[0], link.Children[1]
	assert.Equal(t, b.Usage, usage.Symbol)
	assert.Equal(t, mustSym(t, r, "lat"), usage.Surface.ID)
	assert.Equal(t, b.ReplacementValue, repl.Symbol)
	require.Len(t, repl.Children, 1)
	assert.True(t, repl.Children[0].Surface.Equal(tree.Number(42.25)))
}

func mustSym(t *testing.T, r *id.Registry, label string) id.ID {
	t.Helper()
	s, ok := r.SymbolByName(label)
	require.True(t, ok)
	return s
}
