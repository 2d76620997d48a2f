package per

import (
	"fmt"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// OIDCodec implements OBJECT IDENTIFIER encoding: the canonical BER arc
// packing (first octet 40*a1+a2, subsequent arcs base-128 big-endian with
// the continuation bit set on all but the last byte of each arc), framed
// as an unconstrained octet string.
type OIDCodec struct{}

// NewOID constructs an OBJECT IDENTIFIER codec.
func NewOID() *OIDCodec { return &OIDCodec{} }

func (c *OIDCodec) Kind() Kind { return KindOID }

func validateOIDArcs(arcs ObjectIdentifier) error {
	if len(arcs) < 2 {
		return &internal.ConstraintViolationError{Kind: "size", Detail: "object identifier needs at least 2 arcs"}
	}
	if arcs[0] > 2 {
		return &internal.ConstraintViolationError{Kind: "oid-arc", Detail: "first arc must be 0, 1, or 2"}
	}
	if arcs[0] <= 1 && arcs[1] > 39 {
		return &internal.ConstraintViolationError{Kind: "oid-arc", Detail: "second arc must be in [0,39] when first arc is 0 or 1"}
	}
	return nil
}

func encodeBase128(v uint64) []byte {
	if v == 0 {
		return []byte{0}
	}
	var groups []byte
	for v > 0 {
		groups = append([]byte{byte(v & 0x7F)}, groups...)
		v >>= 7
	}
	for i := 0; i < len(groups)-1; i++ {
		groups[i] |= 0x80
	}
	return groups
}

func encodeOIDArcs(arcs ObjectIdentifier) []byte {
	out := []byte{byte(40*arcs[0] + arcs[1])}
	for _, arc := range arcs[2:] {
		out = append(out, encodeBase128(arc)...)
	}
	return out
}

func decodeOIDBytes(data []byte) (ObjectIdentifier, error) {
	if len(data) == 0 {
		return nil, &internal.WireFormatError{Detail: "empty object identifier encoding"}
	}
	b0 := data[0]
	var first, second uint64
	switch {
	case b0 < 40:
		first, second = 0, uint64(b0)
	case b0 < 80:
		first, second = 1, uint64(b0)-40
	default:
		first, second = 2, uint64(b0)-80
	}
	arcs := ObjectIdentifier{first, second}
	var cur uint64
	inArc := false
	for _, b := range data[1:] {
		cur = cur<<7 | uint64(b&0x7F)
		inArc = true
		if b&0x80 == 0 {
			arcs = append(arcs, cur)
			cur = 0
			inArc = false
		}
	}
	if inArc {
		return nil, &internal.WireFormatError{Detail: "truncated object identifier arc"}
	}
	return arcs, nil
}

func (c *OIDCodec) Encode(buf *bitstream.BitBuffer, value interface{}) (err error) {
	defer internal.Recover(&err)
	arcs, ok := value.(ObjectIdentifier)
	if !ok {
		if s, ok2 := value.([]uint64); ok2 {
			arcs, ok = ObjectIdentifier(s), true
		}
	}
	if !ok {
		internal.Panic(&internal.ConstraintViolationError{Kind: "oid-type", Detail: fmt.Sprintf("expected ObjectIdentifier, got %T", value)})
	}
	internal.Panic(validateOIDArcs(arcs))
	data := encodeOIDArcs(arcs)
	writeSizeFramed(buf, SizeConstraint{}, uint64(len(data)), func(from, to uint64) {
		buf.WriteOctets(data[from:to])
	})
	return nil
}

func (c *OIDCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	return decodeViaNode(c, buf)
}

func (c *OIDCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error) {
	return decodeWithMetadata(c, buf)
}

func (c *OIDCodec) decodeNode(buf *bitstream.BitBuffer) *Node {
	v, meta := bracket(buf, KindOID, func() interface{} {
		var data []byte
		readSizeFramed(buf, SizeConstraint{}, func(n uint64) {
			data = append(data, buf.ReadOctets(uint(n))...)
		})
		arcs, err := decodeOIDBytes(data)
		internal.Panic(err)
		return arcs
	})
	return &Node{Value: v, Meta: meta, Present: true}
}
