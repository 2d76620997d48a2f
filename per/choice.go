package per

import (
	"fmt"
	"math/big"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// ChoiceCodec implements the PER-unaligned CHOICE encoding: a constrained
// index into the root alternative list (plus a leading extension-presence
// bit if Extensible), or, for an extension alternative, a normally-small
// index and an open-type-wrapped value, per spec.md §4.5.
type ChoiceCodec struct {
	Fields          []Field
	ExtensionFields []Field
	Extensible      bool
}

// NewChoice constructs a CHOICE codec.
func NewChoice(fields, extensionFields []Field, extensible bool) *ChoiceCodec {
	return &ChoiceCodec{Fields: fields, ExtensionFields: extensionFields, Extensible: extensible}
}

func (c *ChoiceCodec) Kind() Kind { return KindChoice }

func fieldIndex(fields []Field, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (c *ChoiceCodec) Encode(buf *bitstream.BitBuffer, value interface{}) (err error) {
	defer internal.Recover(&err)
	ch, ok := value.(Choice)
	if !ok {
		internal.Panic(&internal.ConstraintViolationError{Kind: "choice-type", Detail: fmt.Sprintf("expected Choice, got %T", value)})
	}

	if idx := fieldIndex(c.Fields, ch.Alt); idx >= 0 {
		if c.Extensible {
			buf.WriteBit(0)
		}
		writeConstrainedInt(buf, bigInt(idx), bigInt(0), bigInt(len(c.Fields)-1))
		f := c.Fields[idx]
		func() {
			defer func() {
				if r := recover(); r != nil {
					if e, ok := r.(error); ok {
						panic(internal.WithPath(f.Name, e))
					}
					panic(r)
				}
			}()
			internal.Panic(f.Codec.Encode(buf, ch.Value))
		}()
		return nil
	}

	if !c.Extensible {
		internal.Panic(&internal.ConstraintViolationError{Kind: "choice-alt", Detail: fmt.Sprintf("unknown choice alternative %q", ch.Alt)})
	}
	idx := fieldIndex(c.ExtensionFields, ch.Alt)
	if idx < 0 {
		internal.Panic(&internal.ConstraintViolationError{Kind: "choice-alt", Detail: fmt.Sprintf("unknown choice alternative %q", ch.Alt)})
	}
	buf.WriteBit(1)
	writeNormallySmall(buf, uint64(idx))
	f := c.ExtensionFields[idx]
	data := encodeOpenType(f.Codec, ch.Value)
	writeOpenType(buf, data)
	return nil
}

func (c *ChoiceCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	return decodeViaNode(c, buf)
}

func (c *ChoiceCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error) {
	return decodeWithMetadata(c, buf)
}

func (c *ChoiceCodec) decodeNode(buf *bitstream.BitBuffer) *Node {
	v, meta := bracket(buf, KindChoice, func() interface{} {
		inExt := false
		if c.Extensible {
			inExt = buf.ReadBit() == 1
		}
		if !inExt {
			idxBig := readConstrainedInt(buf, big.NewInt(0), bigInt(len(c.Fields)-1))
			idx := int(idxBig.Int64())
			f := c.Fields[idx]
			node := decodeFieldNode(buf, f)
			return &ChoiceValue{Key: f.Name, Value: node}
		}
		idx := int(readNormallySmall(buf))
		if idx < len(c.ExtensionFields) {
			f := c.ExtensionFields[idx]
			node := decodeOpenTypeNode(buf, f.Codec)
			return &ChoiceValue{Key: f.Name, Value: node}
		}
		// Unknown extension alternative: surface the raw open-type
		// payload rather than failing the whole decode.
		raw := readOpenTypeBytes(buf)
		return &ChoiceValue{
			Key: "<unknown>",
			Value: &Node{
				Value:   raw,
				Meta:    Meta{Kind: KindOctetString, RawBytes: raw, BitLength: uint(len(raw)) * 8},
				Present: true,
			},
		}
	})
	return &Node{Value: v, Meta: meta, Present: true}
}
