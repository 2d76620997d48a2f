package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBitGenBasic(t *testing.T) {
	buf, err := DecodeBitGen("1 0110 H8:ff X:dead")
	require.NoError(t, err)
	assert.Equal(t, uint(1+4+8+16), buf.BitLength())
	assert.Equal(t, uint64(1), buf.ReadBits(1))
	assert.Equal(t, uint64(0b0110), buf.ReadBits(4))
	assert.Equal(t, uint64(0xff), buf.ReadBits(8))
	assert.Equal(t, []byte{0xde, 0xad}, buf.ReadOctets(2))
}

func TestDecodeBitGenQuantifier(t *testing.T) {
	buf, err := DecodeBitGen("1*3 0*2")
	require.NoError(t, err)
	assert.Equal(t, uint(5), buf.BitLength())
	assert.Equal(t, uint64(0b11100), buf.ReadBits(5))
}

func TestDecodeBitGenRejectsInvalidToken(t *testing.T) {
	_, err := DecodeBitGen("notatoken")
	assert.Error(t, err)
}

func TestDecodeBitGenIgnoresComments(t *testing.T) {
	buf, err := DecodeBitGen("1 # a leading presence bit\n0 # absent")
	require.NoError(t, err)
	assert.Equal(t, uint(2), buf.BitLength())
}
