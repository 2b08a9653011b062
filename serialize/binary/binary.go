// Package binary implements the §6 binary tree wire format: each node
// is [context:i32][kind:i32][id:i32][childCount:u32][surfaceTag:u8]
// [surface bytes], followed immediately by its children, depth-first.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/tree"
)

// Surface tags, per §6.
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
	Tag byte
}

func (e UnknownSurfaceTagError) Error() string {
	return fmt.Sprintf("unknown surface tag %d", e.Tag)
}

// Encode writes n's subtree to w in the §6 binary format.
func Encode(w io.Writer, n *tree.Node) error {
	if err := writeInt32(w, int32(n.Symbol.Context)); err != nil {
		return err
	}
	if err := writeInt32(w, int32(n.Symbol.Kind)); err != nil {
		return err
	}
	if err := writeInt32(w, int32(n.Symbol.Num)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(n.Children))); err != nil {
		return err
	}
	if err := encodeSurface(w, n.Surface); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := Encode(w, c); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads one node (and its full subtree) from r.
func Decode(r io.Reader) (*tree.Node, error) {
	ctx, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	kind, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	num, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	childCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	surface, err := decodeSurface(r)
	if err != nil {
		return nil, err
	}
	n := tree.New(id.ID{Context: int(ctx), Kind: id.Kind(kind), Num: int(num)}, surface)
	for i := uint32(0); i < childCount; i++ {
		c, err := Decode(r)
		if err != nil {
			return nil, err
		}
		tree.AddChild(n, c)
	}
	return n, nil
}

func encodeSurface(w io.Writer, s tree.Surface) error {
	switch s.Kind {
	case tree.SurfaceNull:
		return writeByte(w, tagNull)
	case tree.SurfaceNumber:
		if err := writeByte(w, tagNumber); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, s.Num)
	case tree.SurfaceString:
		if err := writeByte(w, tagString); err != nil {
			return err
		}
		b := []byte(s.Str)
		if err := writeUint32(w, uint32(len(b))); err != nil {
			return err
		}
		_, err := w.Write(b)
		return err
	case tree.SurfaceBool:
		if err := writeByte(w, tagBool); err != nil {
			return err
		}
		var b byte
		if s.Bool {
			b = 1
		}
		return writeByte(w, b)
	case tree.SurfaceBytes:
		if err := writeByte(w, tagBytes); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(len(s.Bytes))); err != nil {
			return err
		}
		_, err := w.Write(s.Bytes)
		return err
	case tree.SurfaceID:
		if err := writeByte(w, tagID); err != nil {
			return err
		}
		if err := writeInt32(w, int32(s.ID.Context)); err != nil {
			return err
		}
		if err := writeInt32(w, int32(s.ID.Kind)); err != nil {
			return err
		}
		return writeInt32(w, int32(s.ID.Num))
	default:
		return fmt.Errorf("unknown surface kind %d", s.Kind)
	}
}

func decodeSurface(r io.Reader) (tree.Surface, error) {
	tag, err := readByte(r)
	if err != nil {
		return tree.Surface{}, err
	}
	switch tag {
	case tagNull:
		return tree.Null, nil
	case tagNumber:
		var v float64
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return tree.Surface{}, err
		}
		return tree.Number(v), nil
	case tagString:
		n, err := readUint32(r)
		if err != nil {
			return tree.Surface{}, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return tree.Surface{}, err
		}
		return tree.String(string(buf)), nil
	case tagBool:
		b, err := readByte(r)
		if err != nil {
			return tree.Surface{}, err
		}
		return tree.Bool(b != 0), nil
	case tagBytes:
		n, err := readUint32(r)
		if err != nil {
			return tree.Surface{}, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return tree.Surface{}, err
		}
		return tree.Blob(buf), nil
	case tagID:
		ctx, err := readInt32(r)
		if err != nil {
			return tree.Surface{}, err
		}
		kind, err := readInt32(r)
		if err != nil {
			return tree.Surface{}, err
		}
		num, err := readInt32(r)
		if err != nil {
			return tree.Surface{}, err
		}
		return tree.Identifier(id.ID{Context: int(ctx), Kind: id.Kind(kind), Num: int(num)}), nil
	default:
		return tree.Surface{}, UnknownSurfaceTagError{Tag: tag}
	}
}

func writeInt32(w io.Writer, v int32) error   { return binary.Write(w, binary.BigEndian, v) }
func writeUint32(w io.Writer, v uint32) error { return binary.Write(w, binary.BigEndian, v) }
func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readInt32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
