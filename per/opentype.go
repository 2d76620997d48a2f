package per

import (
	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// encodeOpenType encodes value with codec into its own bit buffer, pads to
// the next whole byte (the X.691 rule for open types, per spec.md §4.6's
// Open Question), and returns the padded bytes.
func encodeOpenType(codec Codec, value interface{}) []byte {
	sub := bitstream.New()
	err := codec.Encode(sub, value)
	internal.Panic(err)
	return sub.ToBytes()
}

// writeOpenType frames data as an unconstrained octet string: a length
// determinant followed by the bytes, unaligned.
func writeOpenType(buf *bitstream.BitBuffer, data []byte) {
	writeSizeFramed(buf, SizeConstraint{}, uint64(len(data)), func(from, to uint64) {
		buf.WriteOctets(data[from:to])
	})
}

// readOpenTypeBytes reads a length-prefixed open-type payload and returns
// its raw bytes, without interpreting them.
func readOpenTypeBytes(buf *bitstream.BitBuffer) []byte {
	var data []byte
	readSizeFramed(buf, SizeConstraint{}, func(n uint64) {
		data = append(data, buf.ReadOctets(uint(n))...)
	})
	if data == nil {
		data = []byte{}
	}
	return data
}

// decodeOpenTypeNode reads an open-type payload and decodes it with codec,
// returning the child Node built from the padded-to-byte sub-buffer.
func decodeOpenTypeNode(buf *bitstream.BitBuffer, codec Codec) *Node {
	data := readOpenTypeBytes(buf)
	sub := bitstream.FromBytes(data)
	node, err := codec.DecodeWithMetadata(sub)
	internal.Panic(err)
	return node
}
