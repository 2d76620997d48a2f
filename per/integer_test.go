package per

import (
	"math/big"
	"testing"

	"github.com/go-asn1/per/bitstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerConstrainedRoundTrip(t *testing.T) {
	c := NewInteger(IntegerConstraint{Min: big.NewInt(0), Max: big.NewInt(255)})
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, 200))
	assert.Equal(t, uint(8), buf.BitLength())

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), got)
}

func TestIntegerConstrainedSingleValueUsesZeroBits(t *testing.T) {
	c := NewInteger(IntegerConstraint{Min: big.NewInt(7), Max: big.NewInt(7)})
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, 7))
	assert.Equal(t, uint(0), buf.BitLength())
}

func TestIntegerRejectsOutOfRangeWhenNotExtensible(t *testing.T) {
	c := NewInteger(IntegerConstraint{Min: big.NewInt(0), Max: big.NewInt(10)})
	buf := bitstream.New()
	err := c.Encode(buf, 11)
	assert.Error(t, err)
}

func TestIntegerExtensibleOutOfRangeUsesUnconstrainedForm(t *testing.T) {
	c := NewInteger(IntegerConstraint{Min: big.NewInt(0), Max: big.NewInt(10), Extensible: true})
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, 1000))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), got)
}

func TestIntegerSemiConstrainedRoundTrip(t *testing.T) {
	c := NewInteger(IntegerConstraint{Min: big.NewInt(0)})
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, 70000))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(70000), got)
}

func TestIntegerUnconstrainedNegativeRoundTrip(t *testing.T) {
	c := NewInteger(IntegerConstraint{})
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, -12345))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(-12345), got)
}

func TestIntegerAcceptsBigIntValueType(t *testing.T) {
	c := NewInteger(IntegerConstraint{})
	buf := bitstream.New()
	v := big.NewInt(99999999999)
	require.NoError(t, c.Encode(buf, v))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}
