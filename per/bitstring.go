package per

import (
	"fmt"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// BitStringCodec implements the PER-unaligned BIT STRING encoding: a size
// determinant for the bit count, followed by that many bits copied
// verbatim.
type BitStringCodec struct {
	Size SizeConstraint
}

// NewBitString constructs a BIT STRING codec.
func NewBitString(size SizeConstraint) *BitStringCodec { return &BitStringCodec{Size: size} }

func (c *BitStringCodec) Kind() Kind { return KindBitString }

func (c *BitStringCodec) checkSize(n uint64) error {
	switch {
	case c.Size.isFixed():
		if n != *c.Size.FixedSize {
			return &internal.ConstraintViolationError{Kind: "size", Detail: fmt.Sprintf("bit string length %d != fixed size %d", n, *c.Size.FixedSize)}
		}
	case c.Size.isBounded():
		if (n < *c.Size.MinSize || n > *c.Size.MaxSize) && !c.Size.Extensible {
			return &internal.ConstraintViolationError{Kind: "size", Detail: fmt.Sprintf("bit string length %d outside [%d,%d]", n, *c.Size.MinSize, *c.Size.MaxSize)}
		}
	}
	return nil
}

func (c *BitStringCodec) Encode(buf *bitstream.BitBuffer, value interface{}) (err error) {
	defer internal.Recover(&err)
	bs, ok := value.(BitString)
	if !ok {
		if p, ok2 := value.(*BitString); ok2 {
			bs, ok = *p, true
		}
	}
	if !ok {
		internal.Panic(&internal.ConstraintViolationError{Kind: "bitstring-type", Detail: fmt.Sprintf("expected BitString, got %T", value)})
	}
	internal.Panic(c.checkSize(uint64(bs.BitLen)))

	writeSizeFramed(buf, c.Size, uint64(bs.BitLen), func(from, to uint64) {
		for i := from; i < to; i++ {
			idx, bit := i/8, 7-(i%8)
			v := (bs.Bytes[idx] >> bit) & 1
			buf.WriteBit(uint(v))
		}
	})
	return nil
}

func (c *BitStringCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	return decodeViaNode(c, buf)
}

func (c *BitStringCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error) {
	return decodeWithMetadata(c, buf)
}

func (c *BitStringCodec) decodeNode(buf *bitstream.BitBuffer) *Node {
	v, meta := bracket(buf, KindBitString, func() interface{} {
		return decodeBitStringBits(buf, c.Size)
	})
	return &Node{Value: v, Meta: meta, Present: true}
}

// decodeBitStringBits reads a size-framed run of bits into a BitString,
// tracking a running bit cursor across however many chunks the size
// determinant's fragmentation splits the read into.
func decodeBitStringBits(buf *bitstream.BitBuffer, size SizeConstraint) BitString {
	var out []byte
	var bitPos uint64
	readSizeFramed(buf, size, func(count uint64) {
		neededBytes := (bitPos + count + 7) / 8
		if uint64(len(out)) < neededBytes {
			grown := make([]byte, neededBytes)
			copy(grown, out)
			out = grown
		}
		for i := uint64(0); i < count; i++ {
			if buf.ReadBit() != 0 {
				idx, bit := (bitPos+i)/8, 7-((bitPos+i)%8)
				out[idx] |= 1 << bit
			}
		}
		bitPos += count
	})
	return BitString{Bytes: out, BitLen: uint(bitPos)}
}
