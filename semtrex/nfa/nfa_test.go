package nfa

import (
	"testing"

	"github.com/driftwood-labs/semtrex/id"
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

func mustParse(t *testing.T, pattern string, r *id.Registry, b id.Builtins) *tree.Node {
	t.Helper()
	n, err := parser.Parse(pattern, r, b)
	if err != nil {
		t.Fatalf("parse %q: %v", pattern, err)
	}
	return n
}

func mustSym(t *testing.T, r *id.Registry, label string) id.ID {
	t.Helper()
	sym, ok := r.SymbolByName(label)
	if !ok {
		t.Fatalf("missing symbol %q", label)
	}
	return sym
}

func TestBuildSimpleSymbol(t *testing.T) {
	r, b := newRegistry("A")
	n := mustParse(t, "/A", r, b)
	g, err := Build(n, b)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	start := g.States[g.Start]
	if start.Kind != KSymbol {
		t.Fatalf("expected start state to be KSymbol, got %v", start.Kind)
	}
	if start.Out.Target != g.Accept {
		t.Fatalf("expected symbol's out to reach accept directly, got %d want %d", start.Out.Target, g.Accept)
	}
	if start.Out.Transition != 0 {
		t.Fatalf("expected sibling-move transition 0 at top level, got %d", start.Out.Transition)
	}
}

func TestBuildSequenceChains(t *testing.T) {
	r, b := newRegistry("A", "B")
	n := mustParse(t, "/A,B", r, b)
	g, err := Build(n, b)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	first := g.States[g.Start]
	if first.Kind != KSymbol || first.Symbols[0] != mustSym(t, r, "A") {
		t.Fatalf("expected first state to be symbol A, got %+v", first)
	}
	second := g.States[first.Out.Target]
	if second.Kind != KSymbol || second.Symbols[0] != mustSym(t, r, "B") {
		t.Fatalf("expected second state to be symbol B, got %+v", second)
	}
	if second.Out.Target != g.Accept {
		t.Fatalf("expected B's out to reach accept")
	}
}

func TestBuildDescendPopsLevel(t *testing.T) {
	r, b := newRegistry("DEEP", "DEEPER")
	n := mustParse(t, "/DEEP/DEEPER", r, b)
	g, err := Build(n, b)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	outer := g.States[g.Start]
	if outer.Kind != KSymbol || outer.Out.Transition != 1 {
		t.Fatalf("expected outer symbol with descend transition +1, got %+v", outer)
	}
	inner := g.States[outer.Out.Target]
	if inner.Kind != KSymbol {
		t.Fatalf("expected inner symbol state, got %v", inner.Kind)
	}
	if inner.Out.Transition != -1 {
		t.Fatalf("expected pop-1 transition back to accept, got %d", inner.Out.Transition)
	}
}

func TestBuildOrProducesSplit(t *testing.T) {
	r, b := newRegistry("A", "B")
	n := mustParse(t, "/A|B", r, b)
	g, err := Build(n, b)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	split := g.States[g.Start]
	if split.Kind != KSplit {
		t.Fatalf("expected split at start, got %v", split.Kind)
	}
	if g.States[split.Out.Target].Kind != KSymbol || g.States[split.Out1.Target].Kind != KSymbol {
		t.Fatalf("expected both split arms to be symbol states")
	}
}

func TestBuildZeroOrMoreLoopsBack(t *testing.T) {
	r, b := newRegistry("A")
	n := mustParse(t, "/A*", r, b)
	g, err := Build(n, b)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	split := g.States[g.Start]
	if split.Kind != KSplit {
		t.Fatalf("expected split at start, got %v", split.Kind)
	}
	a := g.States[split.Out.Target]
	if a.Kind != KSymbol {
		t.Fatalf("expected symbol A, got %v", a.Kind)
	}
	if a.Out.Target != g.Start {
		t.Fatalf("expected A to loop back into the split, got target %d want %d", a.Out.Target, g.Start)
	}
	if a.Out.Transition != None {
		t.Fatalf("expected loop-back transition to be None, got %d", a.Out.Transition)
	}
}

func TestBuildGroupOpenClose(t *testing.T) {
	r, b := newRegistry("HomeLocation", "lat")
	n := mustParse(t, "/HomeLocation/<lat:lat>", r, b)
	g, err := Build(n, b)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	home := g.States[g.Start]
	open := g.States[home.Out.Target]
	if open.Kind != KGroupOpen {
		t.Fatalf("expected GroupOpen, got %v", open.Kind)
	}
	lat := g.States[open.Out.Target]
	if lat.Kind != KSymbol {
		t.Fatalf("expected symbol lat inside group, got %v", lat.Kind)
	}
	closeSt := g.States[lat.Out.Target]
	if closeSt.Kind != KGroupClose || closeSt.GroupID != open.GroupID {
		t.Fatalf("expected matching GroupClose, got %+v", closeSt)
	}
}

func TestBuildBadArityOnMalformedTree(t *testing.T) {
	r, b := newRegistry("A", "B")
	a := mustParse(t, "/A", r, b)
	bogusOr := tree.New(b.Or, tree.Null)
	tree.AddChild(bogusOr, a) // SEMTREX_OR requires exactly 2 children, not 1

	_, err := Build(bogusOr, b)
	if _, ok := err.(BadArityError); !ok {
		t.Fatalf("expected BadArityError, got %v (%T)", err, err)
	}
}
