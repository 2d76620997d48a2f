package per

import (
	"fmt"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// BooleanCodec implements the one-bit BOOLEAN encoding: 0 false, 1 true.
type BooleanCodec struct{}

// NewBoolean constructs a BOOLEAN codec.
func NewBoolean() *BooleanCodec { return &BooleanCodec{} }

func (c *BooleanCodec) Kind() Kind { return KindBoolean }

func (c *BooleanCodec) Encode(buf *bitstream.BitBuffer, value interface{}) (err error) {
	defer internal.Recover(&err)
	b, ok := value.(bool)
	if !ok {
		internal.Panic(&internal.ConstraintViolationError{Kind: "boolean-type", Detail: fmt.Sprintf("expected bool, got %T", value)})
	}
	buf.WriteBit(boolBit(b))
	return nil
}

func (c *BooleanCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	return decodeViaNode(c, buf)
}

func (c *BooleanCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error) {
	return decodeWithMetadata(c, buf)
}

func (c *BooleanCodec) decodeNode(buf *bitstream.BitBuffer) *Node {
	v, meta := bracket(buf, KindBoolean, func() interface{} {
		return buf.ReadBit() == 1
	})
	return &Node{Value: v, Meta: meta, Present: true}
}
