package tree

import (
	"bytes"

	"github.com/driftwood-labs/semtrex/id"
)

// SurfaceKind discriminates the scalar payload a node's Surface carries.
type SurfaceKind int

const (
	SurfaceNull SurfaceKind = iota
	SurfaceNumber
	SurfaceBool
	SurfaceString
	SurfaceBytes
	SurfaceID
)

// Surface is the tagged-union scalar value a tree node may carry.
// Numbers (integers and floats alike) are held as float64; the
// grammar's integer/float token distinction lives in the parser, not
// here — a matched VALUE_LITERAL compares by value, not by which
// literal form produced it.
type Surface struct {
	Kind  SurfaceKind
	Num   float64
	Bool  bool
	Str   string
	Bytes []byte
	ID    id.ID
}

// Null is the absence of a surface value.
var Null = Surface{Kind: SurfaceNull}

// Number builds a numeric surface.
func Number(n float64) Surface { return Surface{Kind: SurfaceNumber, Num: n} }

// Bool builds a boolean surface.
func Bool(b bool) Surface { return Surface{Kind: SurfaceBool, Bool: b} }

// String builds a string surface.
func String(s string) Surface { return Surface{Kind: SurfaceString, Str: s} }

// Blob builds a byte-array surface.
func Blob(b []byte) Surface { return Surface{Kind: SurfaceBytes, Bytes: b} }

// Identifier builds an identifier surface.
func Identifier(i id.ID) Surface { return Surface{Kind: SurfaceID, ID: i} }

// Equal reports structural equality: same kind, and equal payload.
// Byte-array equality is by content; identifier equality is
// component-wise (ID is a plain comparable struct).
func (s Surface) Equal(o Surface) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case SurfaceNull:
		return true
	case SurfaceNumber:
		return s.Num == o.Num
	case SurfaceBool:
		return s.Bool == o.Bool
	case SurfaceString:
		return s.Str == o.Str
	case SurfaceBytes:
		return bytes.Equal(s.Bytes, o.Bytes)
	case SurfaceID:
		return s.ID == o.ID
	default:
		return false
	}
}
