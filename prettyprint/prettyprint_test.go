package prettyprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/semtrex/parser"
)

func newRegistry(labels ...string) (*id.Registry, id.Builtins) {
	r := id.NewRegistry()
	b := id.RegisterBuiltins(r)
	for _, l := range labels {
		r.DefineSymbol(0, id.NullStructure, l)
	}
	return r, b
}

func roundTrip(t *testing.T, r *id.Registry, b id.Builtins, pattern string) string {
	t.Helper()
	n, err := parser.Parse(pattern, r, b)
	require.NoError(t, err)
	out, err := Print(n, r)
	require.NoError(t, err)
	again, err := parser.Parse(out, r, b)
	require.NoError(t, err)
	reprinted, err := Print(again, r)
	require.NoError(t, err)
	assert.Equal(t, out, reprinted)
	return out
}

func TestPrintSequenceAndGroup(t *testing.T) {
	r, b := newRegistry("TASK", "TITLE", "STATUS")
	out := roundTrip(t, r, b, "/TASK/(TITLE,STATUS,.*)")
	assert.Equal(t, "/TASK/(TITLE,STATUS,.*)", out)
}

func TestPrintGroupLabel(t *testing.T) {
	r, b := newRegistry("HomeLocation", "lat", "lon")
	out := roundTrip(t, r, b, "/HomeLocation/(<lat:lat>,<lon:lon>)")
	assert.Equal(t, "/HomeLocation/(<lat:lat>,<lon:lon>)", out)
}

func TestPrintBooleanCombinators(t *testing.T) {
	r, b := newRegistry("A", "B")
	assert.Equal(t, "/A|B", roundTrip(t, r, b, "/A|B"))
	assert.Equal(t, "/~A", roundTrip(t, r, b, "/~A"))
	assert.Equal(t, "/!A", roundTrip(t, r, b, "/!A"))
	assert.Equal(t, "/!{A,B}", roundTrip(t, r, b, "/!{A,B}"))
}

func TestPrintValueLiteralsAndSets(t *testing.T) {
	r, b := newRegistry("MY_INT")
	assert.Equal(t, "/MY_INT={1,2,42}", roundTrip(t, r, b, "/MY_INT={1,2,42}"))
	assert.Equal(t, "/MY_INT!=99", roundTrip(t, r, b, "/MY_INT!=99"))
}

func TestPrintWalkAndQuantifiers(t *testing.T) {
	r, b := newRegistry("DEEP", "DEEPER")
	assert.Equal(t, "/%DEEPER", roundTrip(t, r, b, "/%DEEPER"))
	assert.Equal(t, "/DEEP/DEEPER+", roundTrip(t, r, b, "/DEEP/DEEPER+"))
}

func TestPrintParenthesizesCompoundPostfixOperand(t *testing.T) {
	r, b := newRegistry("A", "B")
	assert.Equal(t, "/(A,B)*", roundTrip(t, r, b, "/(A,B)*"))
	assert.Equal(t, "/(A|B)+", roundTrip(t, r, b, "/(A|B)+"))
}

func TestPrintUnresolvedSymbolError(t *testing.T) {
	r, b := newRegistry("A")
	n, err := parser.Parse("/A", r, b)
	require.NoError(t, err)

	fresh := id.NewRegistry()
	_, err = Print(n, fresh)
	require.Error(t, err)
	var unresolved UnresolvedSymbolError
	require.ErrorAs(t, err, &unresolved)
}
