package per

import (
	"testing"

	"github.com/go-asn1/per/bitstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoiceRootAlternativeRoundTrip(t *testing.T) {
	c := NewChoice([]Field{
		{Name: "asBool", Codec: NewBoolean()},
		{Name: "asNull", Codec: NewNull()},
	}, nil, false)

	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, Choice{Alt: "asBool", Value: true}))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, Choice{Alt: "asBool", Value: true}, got)
}

func TestChoiceRejectsUnknownAlternativeWhenNotExtensible(t *testing.T) {
	c := NewChoice([]Field{{Name: "a", Codec: NewBoolean()}}, nil, false)
	buf := bitstream.New()
	err := c.Encode(buf, Choice{Alt: "ghost", Value: true})
	assert.Error(t, err)
}

func TestChoiceExtensionAlternativeRoundTrip(t *testing.T) {
	c := NewChoice(
		[]Field{{Name: "a", Codec: NewBoolean()}},
		[]Field{{Name: "b", Codec: NewNull()}},
		true,
	)
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, Choice{Alt: "b", Value: Null{}}))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, Choice{Alt: "b", Value: Null{}}, got)
}

func TestChoiceUnknownExtensionAlternativeDecodesAsRawBytes(t *testing.T) {
	writer := NewChoice(
		[]Field{{Name: "a", Codec: NewBoolean()}},
		[]Field{{Name: "b", Codec: NewNull()}, {Name: "c", Codec: NewBoolean()}},
		true,
	)
	buf := bitstream.New()
	require.NoError(t, writer.Encode(buf, Choice{Alt: "c", Value: true}))

	reader := NewChoice(
		[]Field{{Name: "a", Codec: NewBoolean()}},
		[]Field{{Name: "b", Codec: NewNull()}},
		true,
	)
	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := reader.Decode(rd)
	require.NoError(t, err)
	ch := got.(Choice)
	assert.Equal(t, "<unknown>", ch.Alt)
	assert.Equal(t, []byte{0x80}, ch.Value)
}
