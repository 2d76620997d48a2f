package per

import (
	"math/big"
	"testing"

	"github.com/go-asn1/per/bitstream"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeEqualsStripMetadata exercises testable property #5 from the
// design: Decode(buf) must equal StripMetadata(DecodeWithMetadata(buf))
// for every codec shape, not just primitives.
func TestDecodeEqualsStripMetadata(t *testing.T) {
	seq := NewSequence(
		[]Field{
			intField("id", 0, 1000),
			{Name: "active", Codec: NewBoolean(), HasDefault: true, Default: true},
			{Name: "nickname", Codec: NewCharacterString(CharStringConstraint{Kind: IA5String}), Optional: true},
		},
		[]Field{
			{Name: "tags", Codec: NewSequenceOf(NewCharacterString(CharStringConstraint{Kind: IA5String}), SizeConstraint{})},
		},
		true,
	)

	in := map[string]interface{}{
		"id":       42,
		"active":   false,
		"nickname": "bob",
		"tags":     []interface{}{"x", "y"},
	}

	buf := bitstream.New()
	require.NoError(t, seq.Encode(buf, in))

	rd1 := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	viaDecode, err := seq.Decode(rd1)
	require.NoError(t, err)

	rd2 := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	node, err := seq.DecodeWithMetadata(rd2)
	require.NoError(t, err)
	viaStrip := StripMetadata(node)

	if diff := cmp.Diff(viaStrip, viaDecode, bigIntComparer); diff != "" {
		t.Fatalf("StripMetadata(DecodeWithMetadata(buf)) != Decode(buf):\n%s", diff)
	}

	m := viaDecode.(map[string]interface{})
	assert.Equal(t, big.NewInt(42), m["id"])
	assert.Equal(t, false, m["active"])
	assert.Equal(t, "bob", m["nickname"])
	assert.Equal(t, []interface{}{"x", "y"}, m["tags"])
}

func TestDecodeEqualsStripMetadataForChoice(t *testing.T) {
	c := NewChoice([]Field{
		{Name: "n", Codec: NewInteger(IntegerConstraint{Min: big.NewInt(0), Max: big.NewInt(15)})},
		{Name: "b", Codec: NewBoolean()},
	}, nil, false)

	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, Choice{Alt: "b", Value: true}))

	rd1 := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	viaDecode, err := c.Decode(rd1)
	require.NoError(t, err)

	rd2 := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	node, err := c.DecodeWithMetadata(rd2)
	require.NoError(t, err)
	viaStrip := StripMetadata(node)

	if diff := cmp.Diff(viaStrip, viaDecode, bigIntComparer); diff != "" {
		t.Fatalf("StripMetadata(DecodeWithMetadata(buf)) != Decode(buf):\n%s", diff)
	}
	assert.Equal(t, Choice{Alt: "b", Value: true}, viaDecode)
}

// bigIntComparer lets cmp.Diff compare decoded trees containing *big.Int
// leaves (INTEGER values), whose unexported fields cmp cannot traverse.
var bigIntComparer = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})
