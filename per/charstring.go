package per

import (
	"fmt"
	"unicode/utf8"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// CharacterStringCodec implements the PER-unaligned encoding for IA5String,
// VisibleString, and UTF8String. UTF8String is byte-length framed with no
// per-character compaction; the others pack each character into a fixed
// bit width, either its raw code point or its index into a permitted
// alphabet.
type CharacterStringCodec struct {
	Constraint CharStringConstraint

	// alphaIndex/alphaList are derived once at construction, per the
	// design note on permitted-alphabet lookup tables: a forward
	// character->index map and a reverse index->character list, rather
	// than scanning the alphabet on every character.
	alphaIndex map[rune]int
	alphaList  []rune
	bitsPerChar uint
}

// NewCharacterString constructs a character-string codec for the given
// constraint, deriving the alphabet lookup tables up front.
func NewCharacterString(c CharStringConstraint) *CharacterStringCodec {
	cc := &CharacterStringCodec{Constraint: c}
	if len(c.Alphabet) > 0 {
		cc.alphaList = append([]rune(nil), c.Alphabet...)
		cc.alphaIndex = make(map[rune]int, len(cc.alphaList))
		for i, r := range cc.alphaList {
			cc.alphaIndex[r] = i
		}
		cc.bitsPerChar = ceilLog2(len(cc.alphaList))
	} else {
		cc.bitsPerChar = 7
	}
	return cc
}

func ceilLog2(n int) uint {
	if n <= 1 {
		return 0
	}
	bits := uint(0)
	for (1 << bits) < n {
		bits++
	}
	return bits
}

func (c *CharacterStringCodec) Kind() Kind {
	switch c.Constraint.Kind {
	case VisibleString:
		return KindVisibleString
	case UTF8String:
		return KindUTF8String
	default:
		return KindIA5String
	}
}

func (c *CharacterStringCodec) validateChar(r rune) error {
	if c.alphaIndex != nil {
		if _, ok := c.alphaIndex[r]; !ok {
			return &internal.ConstraintViolationError{Kind: "alphabet", Detail: fmt.Sprintf("character %q not in permitted alphabet", r)}
		}
		return nil
	}
	if c.Constraint.Kind == VisibleString && (r < 0x20 || r > 0x7E) {
		return &internal.ConstraintViolationError{Kind: "alphabet", Detail: fmt.Sprintf("character %q outside VisibleString range", r)}
	}
	if r > 0x7F {
		return &internal.ConstraintViolationError{Kind: "alphabet", Detail: fmt.Sprintf("character %q outside 7-bit range", r)}
	}
	return nil
}

func (c *CharacterStringCodec) checkSize(n uint64) error {
	s := c.Constraint.Size
	switch {
	case s.isFixed():
		if n != *s.FixedSize {
			return &internal.ConstraintViolationError{Kind: "size", Detail: fmt.Sprintf("string length %d != fixed size %d", n, *s.FixedSize)}
		}
	case s.isBounded():
		if (n < *s.MinSize || n > *s.MaxSize) && !s.Extensible {
			return &internal.ConstraintViolationError{Kind: "size", Detail: fmt.Sprintf("string length %d outside [%d,%d]", n, *s.MinSize, *s.MaxSize)}
		}
	}
	return nil
}

func (c *CharacterStringCodec) Encode(buf *bitstream.BitBuffer, value interface{}) (err error) {
	defer internal.Recover(&err)
	s, ok := value.(string)
	if !ok {
		internal.Panic(&internal.ConstraintViolationError{Kind: "charstring-type", Detail: fmt.Sprintf("expected string, got %T", value)})
	}

	if c.Constraint.Kind == UTF8String {
		data := []byte(s)
		internal.Panic(c.checkSize(uint64(len(data))))
		writeSizeFramed(buf, c.Constraint.Size, uint64(len(data)), func(from, to uint64) {
			buf.WriteOctets(data[from:to])
		})
		return nil
	}

	runes := []rune(s)
	internal.Panic(c.checkSize(uint64(len(runes))))
	for _, r := range runes {
		internal.Panic(c.validateChar(r))
	}
	writeSizeFramed(buf, c.Constraint.Size, uint64(len(runes)), func(from, to uint64) {
		for i := from; i < to; i++ {
			r := runes[i]
			var v uint64
			if c.alphaIndex != nil {
				v = uint64(c.alphaIndex[r])
			} else {
				v = uint64(r)
			}
			buf.WriteBits(v, c.bitsPerChar)
		}
	})
	return nil
}

func (c *CharacterStringCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	return decodeViaNode(c, buf)
}

func (c *CharacterStringCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*Node, error) {
	return decodeWithMetadata(c, buf)
}

func (c *CharacterStringCodec) decodeNode(buf *bitstream.BitBuffer) *Node {
	v, meta := bracket(buf, c.Kind(), func() interface{} {
		if c.Constraint.Kind == UTF8String {
			var out []byte
			readSizeFramed(buf, c.Constraint.Size, func(n uint64) {
				out = append(out, buf.ReadOctets(uint(n))...)
			})
			if !utf8.Valid(out) {
				panic(&internal.WireFormatError{Detail: "invalid UTF-8 in UTF8String"})
			}
			return string(out)
		}
		var sb []rune
		readSizeFramed(buf, c.Constraint.Size, func(n uint64) {
			for i := uint64(0); i < n; i++ {
				idx := buf.ReadBits(c.bitsPerChar)
				if c.alphaList != nil {
					if int(idx) >= len(c.alphaList) {
						panic(&internal.WireFormatError{Detail: "character index outside permitted alphabet"})
					}
					sb = append(sb, c.alphaList[idx])
				} else {
					sb = append(sb, rune(idx))
				}
			}
		})
		return string(sb)
	})
	return &Node{Value: v, Meta: meta, Present: true}
}
