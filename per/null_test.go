package per

import (
	"testing"

	"github.com/go-asn1/per/bitstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullEncodesZeroBits(t *testing.T) {
	c := NewNull()
	buf := bitstream.New()
	require.NoError(t, c.Encode(buf, Null{}))
	assert.Equal(t, uint(0), buf.BitLength())
}

func TestNullAcceptsNilAndEmptyStruct(t *testing.T) {
	c := NewNull()
	for _, v := range []interface{}{nil, struct{}{}, Null{}} {
		buf := bitstream.New()
		assert.NoError(t, c.Encode(buf, v))
	}
}

func TestNullDecode(t *testing.T) {
	c := NewNull()
	rd := bitstream.FromBytes(nil)
	got, err := c.Decode(rd)
	require.NoError(t, err)
	assert.Equal(t, Null{}, got)
}
