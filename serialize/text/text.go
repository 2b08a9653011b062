// Package text implements the §6 human-readable tree format,
// `(LABEL[:surface] child*)`, using github.com/alecthomas/participle/v2
// for the struct-tag grammar. The format is simple enough that a
// declarative grammar is the idiomatic choice here, unlike the semtrex
// pattern language itself, which stays hand-rolled per §4.3's own
// prescription.
package text

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/tree"
)

type wireIdent struct {
	Context int64 `parser:"@Int ','"`
	Kind    int64 `parser:"@Int ','"`
	Num     int64 `parser:"@Int"`
}

type wireSurface struct {
	Str   *string    `parser:"  @String"`
	Float *float64   `parser:"| @Float"`
	Int   *int64     `parser:"| @Int"`
	True  bool       `parser:"| @'true'"`
	False bool       `parser:"| @'false'"`
	Null  bool       `parser:"| @'null'"`
	Ident *wireIdent `parser:"| '{' @@ '}'"`
	Blob  *int64     `parser:"| '<' 'blob' ':' @Int '>'"`
}

type wireNode struct {
	Label    string       `parser:"'(' @Ident"`
	Surface  *wireSurface `parser:"(':' @@)?"`
	Children []*wireNode  `parser:"@@* ')'"`
}

var textLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(\\.|[^"])*"`},
	{Name: "Float", Pattern: `-?\d+\.\d+`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[(){}:,<>]`},
})

var textParser = participle.MustBuild[wireNode](
	participle.Lexer(textLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// Resolver resolves a node's LABEL to the symbol id it names.
type Resolver interface {
	SymbolByName(label string) (id.ID, bool)
}

// Labeler resolves a symbol id back to the label it was defined with.
type Labeler interface {
	LabelOf(i id.ID) (string, bool)
}

// UnknownLabelError reports a LABEL with no matching registry entry.
type UnknownLabelError struct {
	Label string
}

func (e UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown label %q", e.Label)
}

// MissingLabelError reports a symbol id with no registered label, which
// makes it unprintable in text form.
type MissingLabelError struct {
	Symbol id.ID
}

func (e MissingLabelError) Error() string {
	return fmt.Sprintf("no label registered for %v", e.Symbol)
}

// Parse reads one `(LABEL[:surface] child*)` tree from text, resolving
// every node's label against reg.
func Parse(text string, reg Resolver) (*tree.Node, error) {
	w, err := textParser.ParseString("", text)
	if err != nil {
		return nil, err
	}
	return toNode(w, reg)
}

func toNode(w *wireNode, reg Resolver) (*tree.Node, error) {
	sym, ok := reg.SymbolByName(w.Label)
	if !ok {
		return nil, UnknownLabelError{Label: w.Label}
	}
	surface, err := toSurface(w.Surface)
	if err != nil {
		return nil, err
	}
	n := tree.New(sym, surface)
	for _, wc := range w.Children {
		c, err := toNode(wc, reg)
		if err != nil {
			return nil, err
		}
		tree.AddChild(n, c)
	}
	return n, nil
}

func toSurface(s *wireSurface) (tree.Surface, error) {
	switch {
	case s == nil || s.Null:
		return tree.Null, nil
	case s.Str != nil:
		return tree.String(*s.Str), nil
	case s.Float != nil:
		return tree.Number(*s.Float), nil
	case s.Int != nil:
		return tree.Number(float64(*s.Int)), nil
	case s.True:
		return tree.Bool(true), nil
	case s.False:
		return tree.Bool(false), nil
	case s.Ident != nil:
		return tree.Identifier(id.ID{
			Context: int(s.Ident.Context),
			Kind:    id.Kind(s.Ident.Kind),
			Num:     int(s.Ident.Num),
		}), nil
	case s.Blob != nil:
		// §6: blob surfaces are inflated as zeroed arrays on re-parse —
		// the text form carries only the byte count, never the bytes.
		return tree.Blob(make([]byte, *s.Blob)), nil
	default:
		return tree.Null, nil
	}
}

// Encode writes n's subtree in `(LABEL[:surface] child*)` form,
// resolving every node's symbol to a label via lbl.
func Encode(n *tree.Node, lbl Labeler) (string, error) {
	var b strings.Builder
	if err := encodeNode(&b, n, lbl); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeNode(b *strings.Builder, n *tree.Node, lbl Labeler) error {
	label, ok := lbl.LabelOf(n.Symbol)
	if !ok {
		return MissingLabelError{Symbol: n.Symbol}
	}
	b.WriteByte('(')
	b.WriteString(label)
	if n.Surface.Kind != tree.SurfaceNull {
		b.WriteByte(':')
		if err := encodeSurface(b, n.Surface); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		b.WriteByte(' ')
		if err := encodeNode(b, c, lbl); err != nil {
			return err
		}
	}
	b.WriteByte(')')
	return nil
}

func encodeSurface(b *strings.Builder, s tree.Surface) error {
	switch s.Kind {
	case tree.SurfaceNumber:
		b.WriteString(strconv.FormatFloat(s.Num, 'g', -1, 64))
	case tree.SurfaceString:
		quoted, err := json.Marshal(s.Str)
		if err != nil {
			return err
		}
		b.Write(quoted)
	case tree.SurfaceBool:
		if s.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case tree.SurfaceBytes:
		fmt.Fprintf(b, "<blob:%d>", len(s.Bytes))
	case tree.SurfaceID:
		fmt.Fprintf(b, "{%d,%d,%d}", s.ID.Context, int(s.ID.Kind), s.ID.Num)
	}
	return nil
}
