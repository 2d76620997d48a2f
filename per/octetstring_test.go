package per

import (
	"testing"

	"github.com/go-asn1/per/bitstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOctetStringBoundedRoundTrip(t *testing.T) {
	min, max := uint64(1), uint64(10)
	c := NewOctetString(SizeConstraint{MinSize: &min, MaxSize: &max})
	buf := bitstream.New()
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, c.Encode(buf, data))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestOctetStringEmptyUnconstrainedRoundTrip(t *testing.T) {
	c := NewOctetString(SizeConstraint{})
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, []byte{}))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, []byte{}, got)
}

func TestOctetStringRejectsOutOfBoundsSize(t *testing.T) {
	min, max := uint64(2), uint64(4)
	c := NewOctetString(SizeConstraint{MinSize: &min, MaxSize: &max})
	buf := bitstream.New()
	err := c.Encode(buf, []byte{0x01})
	assert.Error(t, err)
}

func TestOctetStringLargeUnconstrainedFragmentsAcrossChunks(t *testing.T) {
	c := NewOctetString(SizeConstraint{})
	data := make([]byte, 70000)
	for i := range data {
		data[i] = byte(i)
	}
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, data))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
