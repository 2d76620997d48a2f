// Package bitstream implements the bit-addressed byte buffer that backs
// every PER-unaligned codec in this module. It plays the same role that
// flate's bitReader plays for DEFLATE: a small, allocation-light type that
// tracks a sub-byte cursor and panics on underrun, to be recovered at a
// codec's public Encode/Decode boundary rather than checked at every call
// site.
package bitstream

import "github.com/go-asn1/per/internal"

// BitBuffer is a growable, bit-addressed byte container with two
// interleaved positions: bitLen (total bits appended so far, advanced by
// the Write* methods) and readPos (bits consumed so far, advanced by the
// Read* methods). Bytes are big-endian within the stream: bit 7 of byte 0
// is the first bit written or read.
//
// BitBuffer is ephemeral per encode/decode operation. It is not safe for
// concurrent use.
type BitBuffer struct {
	buf     []byte
	bitLen  uint // total bits written
	readPos uint // bits consumed so far; readPos <= bitLen
}

// New returns an empty BitBuffer ready for writing.
func New() *BitBuffer {
	return &BitBuffer{}
}

// FromBytes returns a BitBuffer preloaded with buf for reading. If
// bitLength is given it overrides len(buf)*8 as the logical bit-length
// (used when the final byte is only partially significant); bitLength
// must not exceed len(buf)*8.
func FromBytes(buf []byte, bitLength ...uint) *BitBuffer {
	bl := uint(len(buf)) * 8
	if len(bitLength) > 0 {
		internal.Assert(bitLength[0] <= bl, &internal.WireFormatError{
			Detail: "bitLength exceeds len(buf)*8",
		})
		bl = bitLength[0]
	}
	cp := make([]byte, len(buf))
	copy(cp, buf)
	return &BitBuffer{buf: cp, bitLen: bl}
}

// byteAt returns the byte index and bit-within-byte (0 = MSB) for a global
// bit position.
func byteAt(pos uint) (idx int, bit uint) {
	return int(pos / 8), pos % 8
}

func (b *BitBuffer) growTo(bits uint) {
	need := int((bits + 7) / 8)
	if need <= len(b.buf) {
		return
	}
	grown := make([]byte, need, need*3/2+1)
	copy(grown, b.buf)
	b.buf = grown
}

// WriteBit appends one bit (0/1) to the stream.
func (b *BitBuffer) WriteBit(v uint) {
	b.growTo(b.bitLen + 1)
	idx, bit := byteAt(b.bitLen)
	if v != 0 {
		b.buf[idx] |= 1 << (7 - bit)
	} else {
		b.buf[idx] &^= 1 << (7 - bit)
	}
	b.bitLen++
}

// WriteBits appends the low n bits of value, most-significant-bit first.
// n must fit within 64 bits.
func (b *BitBuffer) WriteBits(value uint64, n uint) {
	internal.Assert(n <= 64, &internal.WireFormatError{Detail: "writeBits: n exceeds 64"})
	for i := n; i > 0; i-- {
		b.WriteBit(uint((value >> (i - 1)) & 1))
	}
}

// WriteOctets appends whole bytes. Because this is PER-unaligned, if the
// current write position is not byte-aligned, bytes are written bit by
// bit rather than forcing alignment.
func (b *BitBuffer) WriteOctets(data []byte) {
	if b.bitLen%8 == 0 {
		b.growTo(b.bitLen + uint(len(data))*8)
		idx, _ := byteAt(b.bitLen)
		copy(b.buf[idx:], data)
		b.bitLen += uint(len(data)) * 8
		return
	}
	for _, c := range data {
		b.WriteBits(uint64(c), 8)
	}
}

// ReadBit consumes and returns the next bit. It panics with a
// *internal.BufferUnderrunError if no bit remains.
func (b *BitBuffer) ReadBit() uint {
	if b.readPos >= b.bitLen {
		panic(&internal.BufferUnderrunError{Requested: 1, Available: b.Remaining()})
	}
	idx, bit := byteAt(b.readPos)
	v := (b.buf[idx] >> (7 - bit)) & 1
	b.readPos++
	return uint(v)
}

// ReadBits consumes and returns the next n bits as an unsigned integer,
// most-significant-bit first. It panics with a *internal.BufferUnderrunError
// if fewer than n bits remain.
func (b *BitBuffer) ReadBits(n uint) uint64 {
	internal.Assert(n <= 64, &internal.WireFormatError{Detail: "readBits: n exceeds 64"})
	if b.Remaining() < n {
		panic(&internal.BufferUnderrunError{Requested: n, Available: b.Remaining()})
	}
	var v uint64
	for i := uint(0); i < n; i++ {
		v = v<<1 | uint64(b.ReadBit())
	}
	return v
}

// ReadOctets consumes and returns the next n bytes. Because this is
// PER-unaligned, bytes are reassembled bit by bit when the read cursor is
// not byte-aligned.
func (b *BitBuffer) ReadOctets(n uint) []byte {
	if b.Remaining() < n*8 {
		panic(&internal.BufferUnderrunError{Requested: n * 8, Available: b.Remaining()})
	}
	out := make([]byte, n)
	if b.readPos%8 == 0 {
		idx, _ := byteAt(b.readPos)
		copy(out, b.buf[idx:idx+int(n)])
		b.readPos += n * 8
		return out
	}
	for i := range out {
		out[i] = byte(b.ReadBits(8))
	}
	return out
}

// Remaining returns the number of unread bits.
func (b *BitBuffer) Remaining() uint {
	return b.bitLen - b.readPos
}

// BitLength returns the total number of bits written so far.
func (b *BitBuffer) BitLength() uint { return b.bitLen }

// ReadPos returns the current read cursor, in bits from the start.
func (b *BitBuffer) ReadPos() uint { return b.readPos }

// SeekRead sets the read cursor to an absolute bit position, previously
// obtained from ReadPos. Used to roll back a failed partial read.
func (b *BitBuffer) SeekRead(pos uint) {
	internal.Assert(pos <= b.bitLen, &internal.WireFormatError{Detail: "seek past bit-length"})
	b.readPos = pos
}

// ToBytes materializes the encoded region. If the final byte is partial,
// its unused low bits are zero.
func (b *BitBuffer) ToBytes() []byte {
	n := (b.bitLen + 7) / 8
	out := make([]byte, n)
	copy(out, b.buf[:n])
	if rem := b.bitLen % 8; rem != 0 {
		mask := byte(0xFF) << (8 - rem)
		out[n-1] &= mask
	}
	return out
}

// Bytes returns a copy of the source bytes covering the bit range
// [offset, offset+length), with any trailing bits in the last byte beyond
// length zero-padded. Used to produce decoded-node metadata's rawBytes.
func (b *BitBuffer) Bytes(offset, length uint) []byte {
	n := (length + 7) / 8
	out := make([]byte, n)
	for i := uint(0); i < length; i++ {
		idx, bit := byteAt(offset + i)
		if idx >= len(b.buf) {
			break
		}
		v := (b.buf[idx] >> (7 - bit)) & 1
		if v != 0 {
			outIdx, outBit := byteAt(i)
			out[outIdx] |= 1 << (7 - outBit)
		}
	}
	return out
}
