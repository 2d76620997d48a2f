package per

import (
	"fmt"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// EnumeratedCodec implements the PER-unaligned ENUMERATED encoding:
// root values are numbered 0..R-1 in declaration order; if Extensible,
// one leading bit selects root vs. extension, and extension values are
// indexed with a normally-small non-negative integer.
type EnumeratedCodec struct {
	Root       []string
	Extension  []string
	Extensible bool
}

// NewEnumerated constructs an ENUMERATED codec.
func NewEnumerated(root, extension []string, extensible bool) *EnumeratedCodec {
	return &EnumeratedCodec{Root: root, Extension: extension, Extensible: extensible}
}

func (c *EnumeratedCodec) Kind() Kind { return KindEnumerated }

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func (c *EnumeratedCodec) Encode(buf *bitstream.BitBuffer, value interface{}) (err error) {
	defer internal.Recover(&err)
	name, ok := value.(string)
	if !ok {
		internal.Panic(&internal.ConstraintViolationError{Kind: "enum-name", Detail: fmt.Sprintf("expected string, got %T", value)})
	}
	rootIdx := indexOf(c.Root, name)
	if !c.Extensible {
		if rootIdx < 0 {
			internal.Panic(&internal.ConstraintViolationError{Kind: "enum-name", Detail: fmt.Sprintf("unknown enumerated value %q", name)})
		}
		writeConstrainedInt(buf, bigInt(rootIdx), bigInt(0), bigInt(len(c.Root)-1))
		return nil
	}
	if rootIdx >= 0 {
		buf.WriteBit(0)
		writeConstrainedInt(buf, bigInt(rootIdx), bigInt(0), bigInt(len(c.Root)-1))
		return nil
	}
	extIdx := indexOf(c.Extension, name)
	if extIdx < 0 {
		internal.Panic(&internal.ConstraintViolationError{Kind: "enum-name", Detail: fmt.Sprintf("unknown enumerated value %q", name)})
	}
	buf.WriteBit(1)
	writeNormallySmall(buf, uint64(extIdx))
	return nil
}

func (c *EnumeratedCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	return decodeViaNode(c, buf)
}

func (c *EnumeratedCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error) {
	return decodeWithMetadata(c, buf)
}

func (c *EnumeratedCodec) decodeNode(buf *bitstream.BitBuffer) *Node {
	v, meta := bracket(buf, KindEnumerated, func() interface{} {
		inExt := false
		if c.Extensible {
			inExt = buf.ReadBit() == 1
		}
		if !inExt {
			idx := readConstrainedInt(buf, bigInt(0), bigInt(len(c.Root)-1))
			return c.Root[int(idx.Int64())]
		}
		idx := int(readNormallySmall(buf))
		if idx < len(c.Extension) {
			return c.Extension[idx]
		}
		return fmt.Sprintf("<unknown-%d>", idx)
	})
	return &Node{Value: v, Meta: meta, Present: true}
}
