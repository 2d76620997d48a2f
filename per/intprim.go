// Shared integer and length-determinant primitives used by every codec in
// this package: the constrained/semi-constrained/unconstrained integer
// forms, the PER-unaligned length determinant (with fragmentation), the
// normally-small non-negative integer, and the size determinant built on
// top of them. Kept free of any one type's concerns so that Integer,
// Enumerated, BitString, OctetString, CharacterString and SequenceOf can
// all share one implementation, per spec.md §4.2.
package per

import (
	"math/big"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/internal"
)

// bigInt is a terse constructor for small non-negative big.Int literals,
// used throughout the enumerated/choice/size-determinant code where the
// bound is always a small Go int (an index or a declaration count).
func bigInt(i int) *big.Int { return big.NewInt(int64(i)) }

func bitsNeeded(rangeVal *big.Int) uint {
	// ceil(log2(range)) for range >= 1.
	if rangeVal.Cmp(big.NewInt(1)) <= 0 {
		return 0
	}
	n := new(big.Int).Sub(rangeVal, big.NewInt(1))
	bits := uint(n.BitLen())
	return bits
}

// writeConstrainedInt writes value-min as ceil(log2(range)) bits, or zero
// bits if range == 1.
func writeConstrainedInt(buf *bitstream.BitBuffer, value, min, max *big.Int) {
	rangeVal := new(big.Int).Sub(max, min)
	rangeVal.Add(rangeVal, big.NewInt(1))
	if rangeVal.Cmp(big.NewInt(1)) == 0 {
		return
	}
	nb := bitsNeeded(rangeVal)
	off := new(big.Int).Sub(value, min)
	writeBigUint(buf, off, nb)
}

func readConstrainedInt(buf *bitstream.BitBuffer, min, max *big.Int) *big.Int {
	rangeVal := new(big.Int).Sub(max, min)
	rangeVal.Add(rangeVal, big.NewInt(1))
	if rangeVal.Cmp(big.NewInt(1)) == 0 {
		return new(big.Int).Set(min)
	}
	nb := bitsNeeded(rangeVal)
	off := readBigUint(buf, nb)
	return off.Add(off, min)
}

// writeBigUint writes v as an n-bit unsigned big-endian value, most
// significant bit first, using 64-bit chunks.
func writeBigUint(buf *bitstream.BitBuffer, v *big.Int, n uint) {
	for n > 64 {
		top := new(big.Int).Rsh(v, n-64)
		buf.WriteBits(top.Uint64(), 64)
		n -= 64
	}
	mask := new(big.Int).Lsh(big.NewInt(1), n)
	mask.Sub(mask, big.NewInt(1))
	masked := new(big.Int).And(v, mask)
	buf.WriteBits(masked.Uint64(), n)
}

func readBigUint(buf *bitstream.BitBuffer, n uint) *big.Int {
	v := new(big.Int)
	for n > 64 {
		chunk := buf.ReadBits(64)
		v.Lsh(v, 64)
		v.Or(v, new(big.Int).SetUint64(chunk))
		n -= 64
	}
	chunk := buf.ReadBits(n)
	v.Lsh(v, n)
	v.Or(v, new(big.Int).SetUint64(chunk))
	return v
}

// byteLenUnsigned returns the minimum number of bytes (at least 1) needed
// to hold v (v >= 0) as an unsigned big-endian integer.
func byteLenUnsigned(v *big.Int) int {
	n := (v.BitLen() + 7) / 8
	if n == 0 {
		n = 1
	}
	return n
}

// byteLenSigned returns the minimum number of bytes (at least 1) needed to
// hold v as a two's-complement big-endian integer.
func byteLenSigned(v *big.Int) int {
	if v.Sign() >= 0 {
		n := (v.BitLen() + 1 + 7) / 8
		if n == 0 {
			n = 1
		}
		return n
	}
	// -v-1 has the same bit pattern magnitude needed for two's complement.
	mag := new(big.Int).Add(v, big.NewInt(1))
	mag.Neg(mag)
	n := (mag.BitLen() + 1 + 7) / 8
	if n == 0 {
		n = 1
	}
	return n
}

func writeSemiConstrainedInt(buf *bitstream.BitBuffer, value, min *big.Int) {
	off := new(big.Int).Sub(value, min)
	n := byteLenUnsigned(off)
	writeLengthDeterminant(buf, uint64(n), nil)
	writeBigUint(buf, off, uint(n)*8)
}

func readSemiConstrainedInt(buf *bitstream.BitBuffer, min *big.Int) *big.Int {
	n := readSmallLengthOnly(buf)
	off := readBigUint(buf, uint(n)*8)
	return off.Add(off, min)
}

func twosComplementBytes(v *big.Int, n int) []byte {
	out := make([]byte, n)
	if v.Sign() >= 0 {
		b := v.Bytes()
		copy(out[n-len(b):], b)
		return out
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(n*8))
	mod.Add(mod, v)
	b := mod.Bytes()
	copy(out[n-len(b):], b)
	return out
}

func fromTwosComplementBytes(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		v.Sub(v, mod)
	}
	return v
}

func writeUnconstrainedInt(buf *bitstream.BitBuffer, value *big.Int) {
	n := byteLenSigned(value)
	b := twosComplementBytes(value, n)
	writeLengthDeterminant(buf, uint64(n), nil)
	buf.WriteOctets(b)
}

func readUnconstrainedInt(buf *bitstream.BitBuffer) *big.Int {
	n := readSmallLengthOnly(buf)
	b := buf.ReadOctets(n)
	return fromTwosComplementBytes(b)
}

// readSmallLengthOnly reads a length determinant that callers already know
// will fit in a single (possibly fragmented) pass with the content read
// immediately after each chunk header; used for integers, where the
// "chunk" is always the whole byte run.
func readSmallLengthOnly(buf *bitstream.BitBuffer) uint {
	var total uint64
	readLengthDeterminant(buf, func(uint64) {}, &total)
	return uint(total)
}

// writeLengthDeterminant writes the PER-unaligned length determinant for
// n, invoking writeChunk(count) after each chunk header (including the
// final, non-fragmented chunk) so the caller can interleave writing the
// chunk's content. writeChunk may be nil when the caller writes the whole
// payload itself immediately afterward (e.g. integers, whose content is
// never split across fragments by this library).
func writeLengthDeterminant(buf *bitstream.BitBuffer, n uint64, writeChunk func(count uint64)) {
	remaining := n
	for remaining >= 16384 {
		chunkUnits := remaining / 16384
		if chunkUnits > 4 {
			chunkUnits = 4
		}
		buf.WriteBits(0b11, 2)
		buf.WriteBits(chunkUnits, 6)
		count := chunkUnits * 16384
		if writeChunk != nil {
			writeChunk(count)
		}
		remaining -= count
	}
	writeSmallLengthDeterminant(buf, remaining)
	if writeChunk != nil {
		writeChunk(remaining)
	}
}

func writeSmallLengthDeterminant(buf *bitstream.BitBuffer, n uint64) {
	if n < 128 {
		buf.WriteBit(0)
		buf.WriteBits(n, 7)
		return
	}
	internal.Assert(n < 16384, &internal.WireFormatError{Detail: "small length determinant exceeds 16383"})
	buf.WriteBits(0b10, 2)
	buf.WriteBits(n, 14)
}

// readLengthDeterminant reads a full (possibly fragmented) length
// determinant, invoking readChunk(count) after each chunk header so the
// caller can read that many items/bytes immediately, and accumulates the
// grand total into *total.
func readLengthDeterminant(buf *bitstream.BitBuffer, readChunk func(count uint64), total *uint64) {
	*total = 0
	for {
		b0 := buf.ReadBit()
		if b0 == 0 {
			v := buf.ReadBits(7)
			readChunk(v)
			*total += v
			return
		}
		b1 := buf.ReadBit()
		if b1 == 0 {
			v := buf.ReadBits(14)
			readChunk(v)
			*total += v
			return
		}
		chunkUnits := buf.ReadBits(6)
		if chunkUnits < 1 || chunkUnits > 4 {
			panic(&internal.WireFormatError{Detail: "length determinant reserved bits set"})
		}
		count := chunkUnits * 16384
		readChunk(count)
		*total += count
	}
}

// writeNormallySmall writes v as a normally-small non-negative integer: 1
// bit 0 then 6 bits for v in [0,63], otherwise 1 bit 1 then a
// semi-constrained integer with min 0.
func writeNormallySmall(buf *bitstream.BitBuffer, v uint64) {
	if v <= 63 {
		buf.WriteBit(0)
		buf.WriteBits(v, 6)
		return
	}
	buf.WriteBit(1)
	writeSemiConstrainedInt(buf, new(big.Int).SetUint64(v), big.NewInt(0))
}

func readNormallySmall(buf *bitstream.BitBuffer) uint64 {
	if buf.ReadBit() == 0 {
		return buf.ReadBits(6)
	}
	v := readSemiConstrainedInt(buf, big.NewInt(0))
	return v.Uint64()
}

func boolBit(b bool) uint {
	if b {
		return 1
	}
	return 0
}

// writeSizeFramed writes the size determinant for a size-constrained
// container holding count items (spec.md §4.2's "Size determinant"
// rules), then calls writeItems(from, to) for each contiguous run of item
// indices that must be written immediately after that framing — a single
// run [0,count) for every shape except unconstrained/out-of-range/large
// bounded, where the length determinant's fragmentation interleaves
// headers with runs of up to 64K items at a time.
func writeSizeFramed(buf *bitstream.BitBuffer, size SizeConstraint, count uint64, writeItems func(from, to uint64)) {
	switch {
	case size.isFixed():
		writeItems(0, count)
	case size.Extensible && size.isBounded():
		inRange := count >= *size.MinSize && count <= *size.MaxSize
		buf.WriteBit(boolBit(!inRange))
		if inRange {
			writeConstrainedInt(buf, big.NewInt(int64(count)), big.NewInt(int64(*size.MinSize)), big.NewInt(int64(*size.MaxSize)))
			writeItems(0, count)
		} else {
			writeFragmentedRuns(buf, count, writeItems)
		}
	case size.isBounded() && (*size.MaxSize-*size.MinSize) < 65536:
		writeConstrainedInt(buf, big.NewInt(int64(count)), big.NewInt(int64(*size.MinSize)), big.NewInt(int64(*size.MaxSize)))
		writeItems(0, count)
	default:
		writeFragmentedRuns(buf, count, writeItems)
	}
}

func writeFragmentedRuns(buf *bitstream.BitBuffer, count uint64, writeItems func(from, to uint64)) {
	var written uint64
	writeLengthDeterminant(buf, count, func(chunk uint64) {
		writeItems(written, written+chunk)
		written += chunk
	})
}

// readSizeFramed reads the size determinant and calls readItems(n) once
// per contiguous run of n items that the caller must read immediately,
// returning the total item count. Mirrors writeSizeFramed.
func readSizeFramed(buf *bitstream.BitBuffer, size SizeConstraint, readItems func(n uint64)) uint64 {
	switch {
	case size.isFixed():
		n := *size.FixedSize
		readItems(n)
		return n
	case size.Extensible && size.isBounded():
		outOfRange := buf.ReadBit() == 1
		if !outOfRange {
			v := readConstrainedInt(buf, big.NewInt(int64(*size.MinSize)), big.NewInt(int64(*size.MaxSize)))
			n := v.Uint64()
			readItems(n)
			return n
		}
		return readFragmentedRuns(buf, readItems)
	case size.isBounded() && (*size.MaxSize-*size.MinSize) < 65536:
		v := readConstrainedInt(buf, big.NewInt(int64(*size.MinSize)), big.NewInt(int64(*size.MaxSize)))
		n := v.Uint64()
		readItems(n)
		return n
	default:
		return readFragmentedRuns(buf, readItems)
	}
}

func readFragmentedRuns(buf *bitstream.BitBuffer, readItems func(n uint64)) uint64 {
	var total uint64
	readLengthDeterminant(buf, readItems, &total)
	return total
}
