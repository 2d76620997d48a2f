package per

import (
	"fmt"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// OctetStringCodec implements the PER-unaligned OCTET STRING encoding: a
// size determinant for the byte count, then that many bytes with no
// padding (this is unaligned PER).
type OctetStringCodec struct {
	Size SizeConstraint
}

// NewOctetString constructs an OCTET STRING codec.
func NewOctetString(size SizeConstraint) *OctetStringCodec { return &OctetStringCodec{Size: size} }

func (c *OctetStringCodec) Kind() Kind { return KindOctetString }

func (c *OctetStringCodec) checkSize(n uint64) error {
	switch {
	case c.Size.isFixed():
		if n != *c.Size.FixedSize {
			return &internal.ConstraintViolationError{Kind: "size", Detail: fmt.Sprintf("octet string length %d != fixed size %d", n, *c.Size.FixedSize)}
		}
	case c.Size.isBounded():
		if (n < *c.Size.MinSize || n > *c.Size.MaxSize) && !c.Size.Extensible {
			return &internal.ConstraintViolationError{Kind: "size", Detail: fmt.Sprintf("octet string length %d outside [%d,%d]", n, *c.Size.MinSize, *c.Size.MaxSize)}
		}
	}
	return nil
}

func (c *OctetStringCodec) Encode(buf *bitstream.BitBuffer, value interface{}) (err error) {
	defer internal.Recover(&err)
	data, ok := value.([]byte)
	if !ok {
		internal.Panic(&internal.ConstraintViolationError{Kind: "octetstring-type", Detail: fmt.Sprintf("expected []byte, got %T", value)})
	}
	internal.Panic(c.checkSize(uint64(len(data))))

	writeSizeFramed(buf, c.Size, uint64(len(data)), func(from, to uint64) {
		buf.WriteOctets(data[from:to])
	})
	return nil
}

func (c *OctetStringCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	return decodeViaNode(c, buf)
}

func (c *OctetStringCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error) {
	return decodeWithMetadata(c, buf)
}

func (c *OctetStringCodec) decodeNode(buf *bitstream.BitBuffer) *Node {
	v, meta := bracket(buf, KindOctetString, func() interface{} {
		var out []byte
		readSizeFramed(buf, c.Size, func(n uint64) {
			out = append(out, buf.ReadOctets(uint(n))...)
		})
		if out == nil {
			out = []byte{}
		}
		return out
	})
	return &Node{Value: v, Meta: meta, Present: true}
}
