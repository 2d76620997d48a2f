package per

import (
	"fmt"
	"reflect"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// SequenceCodec implements the PER-unaligned SEQUENCE encoding: a root
// preamble bit per OPTIONAL/DEFAULT field, the root fields in declaration
// order, and (if Extensible) an extension bitmap of open-type-wrapped
// extension fields, per spec.md §4.3.
type SequenceCodec struct {
	Fields          []Field
	ExtensionFields []Field
	Extensible      bool
}

// NewSequence constructs a SEQUENCE codec.
func NewSequence(fields, extensionFields []Field, extensible bool) *SequenceCodec {
	return &SequenceCodec{Fields: fields, ExtensionFields: extensionFields, Extensible: extensible}
}

func (c *SequenceCodec) Kind() Kind { return KindSequence }

// equalValues reports whether a and b are the same value for the purpose
// of DEFAULT elision. INTEGER defaults are always normalized to *big.Int
// by the schema builder, but per.IntegerCodec.Encode's ergonomic fast path
// (per/integer.go's toBigInt) also accepts a plain int/int64 for the same
// field, so a and b are run through that same normalization first; if
// either side isn't an integer-shaped value, toBigInt fails for it and
// the comparison falls back to reflect.DeepEqual, which dereferences
// *big.Int correctly when both sides already share that type.
func equalValues(a, b interface{}) bool {
	if ai, err := toBigInt(a); err == nil {
		if bi, err := toBigInt(b); err == nil {
			return ai.Cmp(bi) == 0
		}
	}
	return reflect.DeepEqual(a, b)
}

func (c *SequenceCodec) Encode(buf *bitstream.BitBuffer, value interface{}) (err error) {
	defer internal.Recover(&err)
	fields, ok := value.(map[string]interface{})
	if !ok {
		internal.Panic(&internal.ConstraintViolationError{Kind: "sequence-type", Detail: fmt.Sprintf("expected map[string]interface{}, got %T", value)})
	}

	// present[i] reports whether Fields[i] is encoded in the root; a
	// DEFAULT field that carries exactly its default value is elided.
	present := make([]bool, len(c.Fields))
	for i, f := range c.Fields {
		v, ok := fields[f.Name]
		switch {
		case !f.Optional && !f.HasDefault:
			if !ok {
				internal.Panic(&internal.ConstraintViolationError{Kind: "sequence-field", Detail: fmt.Sprintf("missing mandatory field %q", f.Name)})
			}
			present[i] = true
		case f.HasDefault:
			present[i] = ok && !equalValues(v, f.Default)
		default: // Optional
			present[i] = ok
		}
	}

	var extPresent []string
	if c.Extensible {
		for _, f := range c.ExtensionFields {
			if _, ok := fields[f.Name]; ok {
				extPresent = append(extPresent, f.Name)
			}
		}
		buf.WriteBit(boolBit(len(extPresent) > 0))
	}

	for i, f := range c.Fields {
		if f.hasPreambleBit() {
			buf.WriteBit(boolBit(present[i]))
		}
	}

	for i, f := range c.Fields {
		if !present[i] {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					if e, ok := r.(error); ok {
						panic(internal.WithPath(f.Name, e))
					}
					panic(r)
				}
			}()
			internal.Panic(f.Codec.Encode(buf, fields[f.Name]))
		}()
	}

	if c.Extensible && len(extPresent) > 0 {
		writeNormallySmall(buf, uint64(len(c.ExtensionFields)-1))
		for _, f := range c.ExtensionFields {
			present := false
			for _, name := range extPresent {
				if name == f.Name {
					present = true
					break
				}
			}
			buf.WriteBit(boolBit(present))
		}
		for _, f := range c.ExtensionFields {
			for _, name := range extPresent {
				if name != f.Name {
					continue
				}
				data := encodeOpenType(f.Codec, fields[f.Name])
				writeOpenType(buf, data)
			}
		}
	}
	return nil
}

func (c *SequenceCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	return decodeViaNode(c, buf)
}

func (c *SequenceCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error) {
	return decodeWithMetadata(c, buf)
}

func (c *SequenceCodec) decodeNode(buf *bitstream.BitBuffer) *Node {
	v, meta := bracket(buf, KindSequence, func() interface{} {
		extPresent := false
		if c.Extensible {
			extPresent = buf.ReadBit() == 1
		}

		rootPresent := make([]bool, len(c.Fields))
		for i, f := range c.Fields {
			if f.hasPreambleBit() {
				rootPresent[i] = buf.ReadBit() == 1
			} else {
				rootPresent[i] = true
			}
		}

		out := make(map[string]*Node, len(c.Fields)+len(c.ExtensionFields))
		for i, f := range c.Fields {
			if !rootPresent[i] {
				if f.HasDefault {
					out[f.Name] = &Node{Value: f.Default, Present: false, IsDefault: true}
				} else {
					out[f.Name] = &Node{Present: false}
				}
				continue
			}
			out[f.Name] = decodeFieldNode(buf, f)
		}

		if c.Extensible && extPresent {
			countMinus1 := readNormallySmall(buf)
			k := int(countMinus1) + 1
			bits := make([]bool, k)
			for i := range bits {
				bits[i] = buf.ReadBit() == 1
			}
			for i := 0; i < k; i++ {
				if !bits[i] {
					continue
				}
				if i < len(c.ExtensionFields) {
					f := c.ExtensionFields[i]
					out[f.Name] = decodeOpenTypeNode(buf, f.Codec)
				} else {
					// Unknown extension field beyond what this schema
					// knows about: skip its open-type payload.
					readOpenTypeBytes(buf)
				}
			}
		}
		for _, f := range c.ExtensionFields {
			if _, ok := out[f.Name]; !ok {
				out[f.Name] = &Node{Present: false}
			}
		}
		return out
	})
	return &Node{Value: v, Meta: meta, Present: true}
}

func decodeFieldNode(buf *bitstream.BitBuffer, f Field) *Node {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				panic(internal.WithPath(f.Name, e))
			}
			panic(r)
		}
	}()
	node, err := f.Codec.DecodeWithMetadata(buf)
	internal.Panic(err)
	return node
}
