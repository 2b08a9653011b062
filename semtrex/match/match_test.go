package match

import (
	"testing"

	"github.com/driftwood-labs/semtrex/id"
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

func sym(t *testing.T, r *id.Registry, label string) id.ID {
	t.Helper()
	s, ok := r.SymbolByName(label)
	if !ok {
		t.Fatalf("missing symbol %q", label)
	}
	return s
}

func buildGraph(t *testing.T, pattern string, r *id.Registry, b id.Builtins) *nfa.Graph {
	t.Helper()
	n, err := parser.Parse(pattern, r, b)
	if err != nil {
		t.Fatalf("parse %q: %v", pattern, err)
	}
	g, err := nfa.Build(n, b)
	if err != nil {
		t.Fatalf("build %q: %v", pattern, err)
	}
	return g
}

func child(parent *tree.Node, sym id.ID, surface tree.Surface) *tree.Node {
	return tree.NewChild(parent, sym, surface)
}

func TestTaskPrefixSequence(t *testing.T) {
	r, b := newRegistry("TASK", "TITLE", "STATUS", "PRIORITY")
	task := tree.New(sym(t, r, "TASK"), tree.Null)
	child(task, sym(t, r, "TITLE"), tree.String("Build semtrex"))
	child(task, sym(t, r, "STATUS"), tree.String("in-progress"))
	child(task, sym(t, r, "PRIORITY"), tree.Number(1))

	cases := []struct {
		pattern string
		want    bool
	}{
		{"/TASK/(TITLE,STATUS,.*)", true},
		{"/TASK/(TITLE,.,PRIORITY)", true},
		{"/TASK/(TITLE,STATUS)", true},
	}
	for _, c := range cases {
		g := buildGraph(t, c.pattern, r, b)
		if ok := MatchBool(g, task); ok != c.want {
			t.Errorf("pattern %q: got %v want %v", c.pattern, ok, c.want)
		}
	}
}

func TestHomeLocationCaptures(t *testing.T) {
	r, b := newRegistry("HomeLocation", "lat", "lon")
	home := tree.New(sym(t, r, "HomeLocation"), tree.Null)
	child(home, sym(t, r, "lat"), tree.Number(42.25))
	child(home, sym(t, r, "lon"), tree.Number(73.25))

	g := buildGraph(t, "/HomeLocation/(<lat:lat>,<lon:lon>)", r, b)
	ok, caps := Match(g, home)
	if !ok {
		t.Fatalf("expected match")
	}
	if len(caps) != 2 {
		t.Fatalf("expected 2 captures, got %d", len(caps))
	}
	if caps[0].Symbol != sym(t, r, "lat") || !tree.PathEqual(caps[0].Path, tree.Path{1}) {
		t.Fatalf("unexpected first capture: %+v", caps[0])
	}
	if caps[1].Symbol != sym(t, r, "lon") || !tree.PathEqual(caps[1].Path, tree.Path{2}) {
		t.Fatalf("unexpected second capture: %+v", caps[1])
	}

	latNode, ok := tree.GetByPath(home, caps[0].Path)
	if !ok {
		t.Fatalf("expected to resolve lat capture path")
	}
	if latNode.Symbol != sym(t, r, "lat") || !latNode.Surface.Equal(tree.Number(42.25)) {
		t.Fatalf("unexpected lat node: %+v", latNode)
	}
}

func TestWalkFindsNestedSymbol(t *testing.T) {
	r, b := newRegistry("PARENT", "child1", "DEEP", "DEEPER", "A")
	parent := tree.New(sym(t, r, "PARENT"), tree.Null)
	c1 := child(parent, sym(t, r, "child1"), tree.Null)
	deep := child(c1, sym(t, r, "DEEP"), tree.Null)
	child(deep, sym(t, r, "DEEPER"), tree.Null)

	if !MatchBool(buildGraph(t, "/%DEEPER", r, b), parent) {
		t.Errorf("expected /%%DEEPER to match")
	}
	if !MatchBool(buildGraph(t, "/%DEEP/DEEPER", r, b), parent) {
		t.Errorf("expected /%%DEEP/DEEPER to match")
	}
	if MatchBool(buildGraph(t, "/%DEEP/A", r, b), parent) {
		t.Errorf("expected /%%DEEP/A to fail")
	}
}

func TestBooleanCombinators(t *testing.T) {
	r, b := newRegistry("A", "B")
	root := tree.New(sym(t, r, "A"), tree.Null)

	if !MatchBool(buildGraph(t, "/A|B", r, b), root) {
		t.Errorf("expected /A|B to match")
	}
	if MatchBool(buildGraph(t, "/~A", r, b), root) {
		t.Errorf("expected /~A to fail")
	}
	if MatchBool(buildGraph(t, "/!A", r, b), root) {
		t.Errorf("expected /!A to fail")
	}
	if MatchBool(buildGraph(t, "/!{A,B}", r, b), root) {
		t.Errorf("expected /!{A,B} to fail")
	}
}

func TestPlusVsStarOnEmptyChildren(t *testing.T) {
	r, b := newRegistry("P", "A", "B", "C")
	full := tree.New(sym(t, r, "P"), tree.Null)
	child(full, sym(t, r, "A"), tree.Null)
	child(full, sym(t, r, "B"), tree.Null)
	child(full, sym(t, r, "C"), tree.Null)
	empty := tree.New(sym(t, r, "P"), tree.Null)

	plus := buildGraph(t, "/P/.+", r, b)
	star := buildGraph(t, "/P/.*", r, b)

	if !MatchBool(plus, full) {
		t.Errorf("expected /P/.+ to match a P with children")
	}
	if MatchBool(plus, empty) {
		t.Errorf("expected /P/.+ to fail against an empty P")
	}
	if !MatchBool(star, empty) {
		t.Errorf("expected /P/.* to match an empty P")
	}
}

func TestValueLiteralSetsAndNegation(t *testing.T) {
	r, b := newRegistry("MY_INT")
	n := tree.New(sym(t, r, "MY_INT"), tree.Number(42))

	if !MatchBool(buildGraph(t, "/MY_INT={1,2,42}", r, b), n) {
		t.Errorf("expected /MY_INT={1,2,42} to match")
	}
	if MatchBool(buildGraph(t, "/MY_INT!={1,2,42}", r, b), n) {
		t.Errorf("expected /MY_INT!={1,2,42} to fail")
	}
	if !MatchBool(buildGraph(t, "/MY_INT!=99", r, b), n) {
		t.Errorf("expected /MY_INT!=99 to match")
	}
}

func TestNotInvolution(t *testing.T) {
	r, b := newRegistry("X", "Y")
	root := tree.New(sym(t, r, "X"), tree.Null)

	plain := MatchBool(buildGraph(t, "/X", r, b), root)
	double := MatchBool(buildGraph(t, "/~~X", r, b), root)
	if plain != double {
		t.Errorf("expected ~~X to agree with X: got %v vs %v", double, plain)
	}

	rootY := tree.New(sym(t, r, "Y"), tree.Null)
	plainY := MatchBool(buildGraph(t, "/X", r, b), rootY)
	doubleY := MatchBool(buildGraph(t, "/~~X", r, b), rootY)
	if plainY != doubleY {
		t.Errorf("expected ~~X to agree with X on a non-matching root: got %v vs %v", doubleY, plainY)
	}
}
