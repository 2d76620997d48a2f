package per

import (
	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// NullCodec implements the zero-bit NULL encoding.
type NullCodec struct{}

// NewNull constructs a NULL codec.
func NewNull() *NullCodec { return &NullCodec{} }

func (c *NullCodec) Kind() Kind { return KindNull }

func (c *NullCodec) Encode(buf *bitstream.BitBuffer, value interface{}) (err error) {
	defer internal.Recover(&err)
	switch value.(type) {
	case Null, nil, struct{}:
	default:
		internal.Panic(&internal.ConstraintViolationError{Kind: "null-type", Detail: "expected Null/nil"})
	}
	return nil
}

func (c *NullCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	return decodeViaNode(c, buf)
}

func (c *NullCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error) {
	return decodeWithMetadata(c, buf)
}

func (c *NullCodec) decodeNode(buf *bitstream.BitBuffer) *Node {
	_, meta := bracket(buf, KindNull, func() interface{} { return Null{} })
	return &Node{Value: Null{}, Meta: meta, Present: true}
}
