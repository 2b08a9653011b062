// Package json implements the §6 JSON tree wire format: it mirrors the
// binary tag set (null/number/string/bool/bytes/identifier) through a
// custom MarshalJSON/UnmarshalJSON pair on a wire-shape struct, rather
// than a naive field-for-field encoding of tree.Node — the same reason
// serialize/binary hand-rolls its byte layout: the wire shape is fully
// specified by §6, not left to encoding/json's defaults.
package json

import (
	"encoding/json"
	"fmt"

	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/tree"
)

// wireSurface is the on-the-wire shape of a tree.Surface: tag mirrors
// serialize/binary's tag set, with only that tag's payload fields
// populated (none for null, context/kind/id for an identifier, one
// field otherwise).
type wireSurface struct {
	Tag     int     `json:"tag"`
	Num     float64 `json:"num,omitempty"`
	Str     string  `json:"str,omitempty"`
	Bool    bool    `json:"bool,omitempty"`
	Bytes   []byte  `json:"bytes,omitempty"`
	Context int     `json:"context,omitempty"`
	Kind    int     `json:"kind,omitempty"`
	ID      int     `json:"id,omitempty"`
}

// wireNode is the on-the-wire shape of a tree.Node.
type wireNode struct {
	Context  int         `json:"context"`
	Kind     int         `json:"kind"`
	ID       int         `json:"id"`
	Surface  wireSurface `json:"surface"`
	Children []wireNode  `json:"children,omitempty"`
}

const (
	tagNull   = 0
	tagNumber = 1
	tagString = 2
	tagBool   = 3
	tagBytes  = 4
	tagID     = 5
)

// UnknownSurfaceTagError reports a wire-format tag this decoder doesn't
// recognize.
type UnknownSurfaceTagError struct {
	Tag int
}

func (e UnknownSurfaceTagError) Error() string {
	return fmt.Sprintf("unknown surface tag %d", e.Tag)
}

func toWireSurface(s tree.Surface) wireSurface {
	switch s.Kind {
	case tree.SurfaceNull:
		return wireSurface{Tag: tagNull}
	case tree.SurfaceNumber:
		return wireSurface{Tag: tagNumber, Num: s.Num}
	case tree.SurfaceString:
		return wireSurface{Tag: tagString, Str: s.Str}
	case tree.SurfaceBool:
		return wireSurface{Tag: tagBool, Bool: s.Bool}
	case tree.SurfaceBytes:
		return wireSurface{Tag: tagBytes, Bytes: s.Bytes}
	case tree.SurfaceID:
		return wireSurface{Tag: tagID, Context: s.ID.Context, Kind: int(s.ID.Kind), ID: s.ID.Num}
	default:
		return wireSurface{Tag: tagNull}
	}
}

func fromWireSurface(w wireSurface) (tree.Surface, error) {
	switch w.Tag {
	case tagNull:
		return tree.Null, nil
	case tagNumber:
		return tree.Number(w.Num), nil
	case tagString:
		return tree.String(w.Str), nil
	case tagBool:
		return tree.Bool(w.Bool), nil
	case tagBytes:
		return tree.Blob(w.Bytes), nil
	case tagID:
		return tree.Identifier(id.ID{Context: w.Context, Kind: id.Kind(w.Kind), Num: w.ID}), nil
	default:
		return tree.Surface{}, UnknownSurfaceTagError{Tag: w.Tag}
	}
}

func toWireNode(n *tree.Node) wireNode {
	w := wireNode{
		Context: n.Symbol.Context,
		Kind:    int(n.Symbol.Kind),
		ID:      n.Symbol.Num,
		Surface: toWireSurface(n.Surface),
	}
	for _, c := range n.Children {
		w.Children = append(w.Children, toWireNode(c))
	}
	return w
}

func fromWireNode(w wireNode) (*tree.Node, error) {
	surface, err := fromWireSurface(w.Surface)
	if err != nil {
		return nil, err
	}
	n := tree.New(id.ID{Context: w.Context, Kind: id.Kind(w.Kind), Num: w.ID}, surface)
	for _, wc := range w.Children {
		c, err := fromWireNode(wc)
		if err != nil {
			return nil, err
		}
		tree.AddChild(n, c)
	}
	return n, nil
}

// Marshal encodes n's subtree as JSON in the §6 wire shape.
func Marshal(n *tree.Node) ([]byte, error) {
	return json.Marshal(toWireNode(n))
}

// Unmarshal decodes a §6-shaped JSON tree.
func Unmarshal(data []byte) (*tree.Node, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWireNode(w)
}
