package per

import (
	"fmt"
	"math/big"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// IntegerCodec implements the PER-unaligned INTEGER encoding of spec.md
// §3/§4.2: constrained, semi-constrained, unconstrained, and extensible
// variants of each.
type IntegerCodec struct {
	Constraint IntegerConstraint
}

// NewInteger constructs an INTEGER codec for the given constraint.
func NewInteger(c IntegerConstraint) *IntegerCodec { return &IntegerCodec{Constraint: c} }

func (c *IntegerCodec) Kind() Kind { return KindInteger }

// toBigInt accepts *big.Int, int, or int64 for ergonomic call sites and
// normalizes to *big.Int, per spec.md §9's accommodation for a 53/64-bit
// fast path over the arbitrary-precision model.
func toBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return v, nil
	case big.Int:
		return &v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, &internal.ConstraintViolationError{Kind: "integer-type", Detail: fmt.Sprintf("unsupported integer value type %T", value)}
	}
}

func (c *IntegerCodec) inRoot(v *big.Int) bool {
	switch c.Constraint.shape() {
	case shapeConstrained:
		return v.Cmp(c.Constraint.Min) >= 0 && v.Cmp(c.Constraint.Max) <= 0
	case shapeSemiConstrained:
		return v.Cmp(c.Constraint.Min) >= 0
	default:
		return true
	}
}

func (c *IntegerCodec) Encode(buf *bitstream.BitBuffer, value interface{}) (err error) {
	defer internal.Recover(&err)
	v, cerr := toBigInt(value)
	internal.Panic(cerr)
	inRoot := c.inRoot(v)
	if !inRoot && !c.Constraint.Extensible {
		internal.Panic(&internal.ConstraintViolationError{
			Kind:   "integer-range",
			Detail: fmt.Sprintf("%s outside declared bounds", v.String()),
		})
	}
	if c.Constraint.Extensible {
		buf.WriteBit(boolBit(!inRoot))
	}
	if inRoot {
		c.encodeRoot(buf, v)
	} else {
		writeUnconstrainedInt(buf, v)
	}
	return nil
}

func (c *IntegerCodec) encodeRoot(buf *bitstream.BitBuffer, v *big.Int) {
	switch c.Constraint.shape() {
	case shapeConstrained:
		writeConstrainedInt(buf, v, c.Constraint.Min, c.Constraint.Max)
	case shapeSemiConstrained:
		writeSemiConstrainedInt(buf, v, c.Constraint.Min)
	default:
		writeUnconstrainedInt(buf, v)
	}
}

func (c *IntegerCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	return decodeViaNode(c, buf)
}

func (c *IntegerCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error) {
	return decodeWithMetadata(c, buf)
}

func (c *IntegerCodec) decodeNode(buf *bitstream.BitBuffer) *Node {
	v, meta := bracket(buf, KindInteger, func() interface{} {
		inExt := false
		if c.Constraint.Extensible {
			inExt = buf.ReadBit() == 1
		}
		if inExt {
			return readUnconstrainedInt(buf)
		}
		switch c.Constraint.shape() {
		case shapeConstrained:
			return readConstrainedInt(buf, c.Constraint.Min, c.Constraint.Max)
		case shapeSemiConstrained:
			return readSemiConstrainedInt(buf, c.Constraint.Min)
		default:
			return readUnconstrainedInt(buf)
		}
	})
	return &Node{Value: v, Meta: meta, Present: true}
}
