// Package per implements ITU-T X.691 Packed Encoding Rules, unaligned
// variant (PER-unaligned), for the value shapes described in spec.md: a
// family of primitive and composite codecs over a bitstream.BitBuffer,
// plus a lossless decoded-node tree that annotates every decoded value
// with its bit-range and source bytes.
package per

import (
	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// Kind tags which codec produced a Node, so that StripMetadata can
// dispatch without an instanceof-style type switch over codec identity.
// This follows the design-note guidance to replace dispatch-by-codec-
// identity with a tagged variant carried in the decoded node itself.
type Kind int

const (
	KindBoolean Kind = iota
	KindInteger
	KindEnumerated
	KindBitString
	KindOctetString
	KindIA5String
	KindVisibleString
	KindUTF8String
	KindOID
	KindNull
	KindSequence
	KindSequenceOf
	KindChoice
)

// Meta carries the bit-range and source-byte provenance of a decoded node.
type Meta struct {
	Kind      Kind
	BitOffset uint
	BitLength uint
	RawBytes  []byte
}

// Node pairs a decoded value with its Meta. For SEQUENCE, Value is a
// map[string]*Node; for SEQUENCE OF, []*Node; for CHOICE, *ChoiceValue;
// for every primitive codec, the decoded semantic Go value.
//
// Present and IsDefault apply to a Node reached as a SEQUENCE field: a
// field that was syntactically absent has BitLength 0 and Present false;
// a field that used its schema default has IsDefault true.
type Node struct {
	Value     interface{}
	Meta      Meta
	Present   bool
	IsDefault bool
}

// ChoiceValue is the Value held by a Node whose Meta.Kind is KindChoice.
type ChoiceValue struct {
	Key   string
	Value *Node
}

// Choice is the plain semantic value of a CHOICE, as returned by Decode
// and by StripMetadata: an (alternative-name, value) pair.
type Choice struct {
	Alt   string
	Value interface{}
}

// BitString is the semantic value of a BIT STRING: a byte buffer together
// with the number of significant bits (big-endian within Bytes).
type BitString struct {
	Bytes   []byte
	BitLen  uint
}

// ObjectIdentifier is the semantic value of an OBJECT IDENTIFIER: a
// non-empty sequence of arcs.
type ObjectIdentifier []uint64

// Null is the semantic value of a NULL.
type Null struct{}

// Codec is implemented by every PER-unaligned type codec.
type Codec interface {
	// Kind reports the tag used in decoded-node metadata.
	Kind() Kind

	// Encode appends value's wire encoding to buf. It fails with a
	// *internal.ConstraintViolationError if value does not satisfy the
	// codec's constraints (wrapped in an *internal.PathError when raised
	// by a child of a composite codec). Primitive codecs validate before
	// writing, so a rejected value leaves buf unchanged; a composite codec
	// whose child fails leaves in buf the bits it wrote before the failure.
	Encode(buf *bitstream.BitBuffer, value interface{}) error

	// Decode consumes value's wire encoding from buf.
	Decode(buf *bitstream.BitBuffer) (interface{}, error)

	// DecodeWithMetadata is like Decode but returns the full decoded-node
	// tree, bracketing the read cursor around the decode.
	DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error)
}

// decodeNoder is implemented by every codec's internal, panic-based decode
// step; decodeViaNode and the exported DecodeWithMetadata wrappers are
// built on top of it.
type decodeNoder interface {
	// decodeNode performs the actual (panicking) decode and returns a
	// fully-populated Node, without any panic/recover boundary of its own.
	decodeNode(buf *bitstream.BitBuffer) *Node
}

// decodeWithMetadata is the shared Decode-with-metadata boundary used by
// every codec: recover panics into a typed error, otherwise return the
// node built by decodeNode.
func decodeWithMetadata(dn decodeNoder, buf *bitstream.BitBuffer) (node *Node, err error) {
	defer internal.Recover(&err)
	node = dn.decodeNode(buf)
	return node, nil
}

// decodeViaNode implements Codec.Decode in terms of DecodeWithMetadata and
// StripMetadata, which is what makes testable property #5 (strip
// equivalence) true by construction rather than by coincidence.
func decodeViaNode(c Codec, buf *bitstream.BitBuffer) (interface{}, error) {
	node, err := c.DecodeWithMetadata(buf)
	if err != nil {
		return nil, err
	}
	return StripMetadata(node), nil
}

// bracket records the read cursor before and after fn runs and returns a
// Meta with the given kind describing the span fn consumed. Primitive
// codecs use this directly; composite codecs build their own Meta after
// assembling child nodes, but still via bracket so the span math is never
// duplicated.
func bracket(buf *bitstream.BitBuffer, kind Kind, fn func() interface{}) (interface{}, Meta) {
	start := buf.ReadPos()
	v := fn()
	end := buf.ReadPos()
	length := end - start
	return v, Meta{
		Kind:      kind,
		BitOffset: start,
		BitLength: length,
		RawBytes:  buf.Bytes(start, length),
	}
}

// StripMetadata walks a decoded-node tree and yields the plain value
// identical to what Decode would have returned directly.
func StripMetadata(n *Node) interface{} {
	if n == nil {
		return nil
	}
	switch n.Meta.Kind {
	case KindSequence:
		fields := n.Value.(map[string]*Node)
		out := make(map[string]interface{}, len(fields))
		for name, child := range fields {
			if !child.Present && !child.IsDefault {
				continue
			}
			out[name] = StripMetadata(child)
		}
		return out
	case KindSequenceOf:
		items := n.Value.([]*Node)
		out := make([]interface{}, len(items))
		for i, child := range items {
			out[i] = StripMetadata(child)
		}
		return out
	case KindChoice:
		cv := n.Value.(*ChoiceValue)
		return Choice{Alt: cv.Key, Value: StripMetadata(cv.Value)}
	default:
		return n.Value
	}
}
