package per

import (
	"testing"

	"github.com/go-asn1/per/bitstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOIDRoundTrip(t *testing.T) {
	c := NewOID()
	buf := bitstream.New()
	oid := ObjectIdentifier{1, 2, 840, 113549, 1}
	require.NoError(t, c.Encode(buf, oid))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, oid, got)
}

func TestOIDRejectsSingleArc(t *testing.T) {
	c := NewOID()
	buf := bitstream.New()
	err := c.Encode(buf, ObjectIdentifier{2})
	assert.Error(t, err)
}

func TestOIDRejectsSecondArcOutOfRange(t *testing.T) {
	c := NewOID()
	buf := bitstream.New()
	err := c.Encode(buf, ObjectIdentifier{0, 40})
	assert.Error(t, err)
}

func TestOIDAcceptsPlainUint64Slice(t *testing.T) {
	c := NewOID()
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, []uint64{2, 5, 6}))

	rd := bitstream.FromBytes(buf.ToBytes(), buf.BitLength())
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, ObjectIdentifier{2, 5, 6}, got)
}
