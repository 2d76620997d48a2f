// Package testutil provides a small bit-string mini-language for hand
// authoring PER-unaligned wire fixtures in tests, without forcing every
// test to build its expected bytes bit by bit through bitstream.BitBuffer
// calls.
package testutil

import (
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-asn1/per/bitstream"
)

var (
	reBin = regexp.MustCompile(`^[01]{1,64}$`)
	reDec = regexp.MustCompile(`^D[0-9]+:[0-9]+$`)
	reHex = regexp.MustCompile(`^H[0-9]+:[0-9a-fA-F]{1,16}$`)
	reRaw = regexp.MustCompile(`^X:[0-9a-fA-F]+$`)
	reQnt = regexp.MustCompile(`[*][0-9]+$`)
)

// DecodeBitGen decodes a BitGen string into a ready-to-read BitBuffer.
// PER-unaligned is always most-significant-bit first, so unlike a
// multi-format bit-packer there is no bit-order mode to select: every
// token is written MSB-first, in the order it appears.
//
// Tokens, separated by any whitespace, with "#" starting a line comment:
//
//   - "[01]{1,64}"      a literal bit-string, e.g. "10110"
//   - "D<n>:<v>"        the unsigned decimal v, written as n bits
//   - "H<n>:<v>"        the unsigned hexadecimal v, written as n bits
//   - "X:<hex>"         literal bytes, written at the current bit position
//     (no byte alignment is required)
//
// Any token may be suffixed with "*<n>" to repeat it n times.
//
// Example:
//
//	D7:42          # a 7-bit constrained integer
//	1              # an OPTIONAL presence bit
//	X:deadbeef     # four literal octets
func DecodeBitGen(str string) (*bitstream.BitBuffer, error) {
	var toks []string
	for _, line := range strings.Split(str, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, t := range strings.Fields(line) {
			toks = append(toks, t)
		}
	}

	buf := bitstream.New()
	for _, t := range toks {
		rep := 1
		if reQnt.MatchString(t) {
			i := strings.LastIndexByte(t, '*')
			tt, tn := t[:i], t[i+1:]
			n, err := strconv.Atoi(tn)
			if err != nil {
				return nil, errors.New("testutil: invalid quantified token: " + t)
			}
			t, rep = tt, n
		}

		switch {
		case reBin.MatchString(t):
			var v uint64
			for _, b := range t {
				v = v<<1 | uint64(b-'0')
			}
			for i := 0; i < rep; i++ {
				buf.WriteBits(v, uint(len(t)))
			}
		case reDec.MatchString(t) || reHex.MatchString(t):
			i := strings.IndexByte(t, ':')
			tb, tn, tv := t[0], t[1:i], t[i+1:]
			base := 10
			if tb == 'H' {
				base = 16
			}
			n, err1 := strconv.Atoi(tn)
			v, err2 := strconv.ParseUint(tv, base, 64)
			if err1 != nil || err2 != nil || n > 64 {
				return nil, errors.New("testutil: invalid numeric token: " + t)
			}
			if n < 64 && v&((1<<uint(n))-1) != v {
				return nil, errors.New("testutil: integer overflow on token: " + t)
			}
			for i := 0; i < rep; i++ {
				buf.WriteBits(v, uint(n))
			}
		case reRaw.MatchString(t):
			b, err := hex.DecodeString(t[2:])
			if err != nil {
				return nil, errors.New("testutil: invalid raw bytes token: " + t)
			}
			for i := 0; i < rep; i++ {
				buf.WriteOctets(b)
			}
		default:
			return nil, errors.New("testutil: invalid token: " + t)
		}
	}
	return bitstream.FromBytes(buf.ToBytes(), buf.BitLength()), nil
}
