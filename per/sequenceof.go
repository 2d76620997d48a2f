package per

import (
	"fmt"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// SequenceOfCodec implements the PER-unaligned SEQUENCE OF encoding: a size
// determinant for the element count, then each element encoded in turn
// with no further framing, per spec.md §4.4.
type SequenceOfCodec struct {
	Item Codec
	Size SizeConstraint
}

// NewSequenceOf constructs a SEQUENCE OF codec over a homogeneous item
// codec.
func NewSequenceOf(item Codec, size SizeConstraint) *SequenceOfCodec {
	return &SequenceOfCodec{Item: item, Size: size}
}

func (c *SequenceOfCodec) Kind() Kind { return KindSequenceOf }

func (c *SequenceOfCodec) checkSize(n uint64) error {
	switch {
	case c.Size.isFixed():
		if n != *c.Size.FixedSize {
			return &internal.ConstraintViolationError{Kind: "size", Detail: fmt.Sprintf("sequence-of length %d != fixed size %d", n, *c.Size.FixedSize)}
		}
	case c.Size.isBounded():
		if (n < *c.Size.MinSize || n > *c.Size.MaxSize) && !c.Size.Extensible {
			return &internal.ConstraintViolationError{Kind: "size", Detail: fmt.Sprintf("sequence-of length %d outside [%d,%d]", n, *c.Size.MinSize, *c.Size.MaxSize)}
		}
	}
	return nil
}

func (c *SequenceOfCodec) Encode(buf *bitstream.BitBuffer, value interface{}) (err error) {
	defer internal.Recover(&err)
	items, ok := value.([]interface{})
	if !ok {
		internal.Panic(&internal.ConstraintViolationError{Kind: "sequence-of-type", Detail: fmt.Sprintf("expected []interface{}, got %T", value)})
	}
	internal.Panic(c.checkSize(uint64(len(items))))

	writeSizeFramed(buf, c.Size, uint64(len(items)), func(from, to uint64) {
		for i := from; i < to; i++ {
			func(idx uint64) {
				defer func() {
					if r := recover(); r != nil {
						if e, ok := r.(error); ok {
							panic(internal.WithPath(fmt.Sprintf("[%d]", idx), e))
						}
						panic(r)
					}
				}()
				internal.Panic(c.Item.Encode(buf, items[idx]))
			}(i)
		}
	})
	return nil
}

func (c *SequenceOfCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	return decodeViaNode(c, buf)
}

func (c *SequenceOfCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error) {
	return decodeWithMetadata(c, buf)
}

func (c *SequenceOfCodec) decodeNode(buf *bitstream.BitBuffer) *Node {
	v, meta := bracket(buf, KindSequenceOf, func() interface{} {
		items := make([]*Node, 0)
		readSizeFramed(buf, c.Size, func(n uint64) {
			for i := uint64(0); i < n; i++ {
				idx := len(items)
				node, err := c.Item.DecodeWithMetadata(buf)
				if err != nil {
					panic(internal.WithPath(fmt.Sprintf("[%d]", idx), err))
				}
				items = append(items, node)
			}
		})
		return items
	})
	return &Node{Value: v, Meta: meta, Present: true}
}
