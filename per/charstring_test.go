package per

import (
	"testing"

	"github.com/go-asn1/per/bitstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIA5StringRoundTrip(t *testing.T) {
	min, max := uint64(1), uint64(20)
	c := NewCharacterString(CharStringConstraint{Kind: IA5String, Size: SizeConstraint{MinSize: &min, MaxSize: &max}})
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, "hello"))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestVisibleStringRejectsControlCharacters(t *testing.T) {
	c := NewCharacterString(CharStringConstraint{Kind: VisibleString})
	buf := bitstream.New()
	err := c.Encode(buf, "hi\tthere")
	assert.Error(t, err)
}

func TestCharacterStringPermittedAlphabetRoundTrip(t *testing.T) {
	c := NewCharacterString(CharStringConstraint{Kind: IA5String, Alphabet: []rune("ABCDEF")})
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, "BEAD"))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, "BEAD", got)
}

func TestCharacterStringAlphabetRejectsOutsideChar(t *testing.T) {
	c := NewCharacterString(CharStringConstraint{Kind: IA5String, Alphabet: []rune("ABC")})
	buf := bitstream.New()
	err := c.Encode(buf, "ABZ")
	assert.Error(t, err)
}

func TestUTF8StringRoundTrip(t *testing.T) {
	c := NewCharacterString(CharStringConstraint{Kind: UTF8String})
	buf := bitstream.New()
	s := "héllo wörld 中文"
	require.NoError(t, c.Encode(buf, s))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}
