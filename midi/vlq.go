package midi

import "github.com/pkg/errors"

// MaxVLQ is the largest magnitude a variable length quantity may carry in a
// MIDI file (four bytes of seven bits each).
const MaxVLQ = 0x0FFFFFFF

const (
	vlqContinue = 0x80
	vlqMask     = 0x7F
	vlqMaxBytes = 4
)

// VLQ is a variable length quantity, the big-endian base-128 number used for
// delta times and payload lengths.
type VLQ uint32

// NewVLQ returns v as a VLQ or ErrUnsupportedValue if it does not fit.
func NewVLQ(v uint32) (VLQ, error) {
	if v > MaxVLQ {
		return 0, errors.Wrapf(ErrUnsupportedValue, "vlq %#x exceeds %#x", v, MaxVLQ)
	}
	return VLQ(v), nil
}

// Binary returns the minimal encoding of v.
func (v VLQ) Binary() []byte {
	return v.appendTo(make([]byte, 0, v.Len()))
}

func (v VLQ) appendTo(dst []byte) []byte {
	n := v.Len()
	for i := n - 1; i >= 0; i-- {
		b := byte(uint32(v)>>(7*uint(i))) & vlqMask
		if i > 0 {
			b |= vlqContinue
		}
		dst = append(dst, b)
	}
	return dst
}

// Len returns the number of bytes Binary would produce.
func (v VLQ) Len() int {
	x, n := uint32(v), 1
	for ; x >= vlqContinue; n++ {
		x >>= 7
	}
	return n
}

// ReadVLQ decodes a VLQ from the start of buf and returns it with the number
// of bytes consumed.
func ReadVLQ(buf []byte) (VLQ, int, error) {
	var v uint32
	for i, b := range buf {
		if i == vlqMaxBytes {
			return 0, 0, errors.Wrap(ErrUnsupportedValue, "vlq longer than 4 bytes")
		}
		v = v<<7 | uint32(b&vlqMask)
		if b&vlqContinue == 0 {
			return VLQ(v), i + 1, nil
		}
	}
	return 0, 0, errors.Wrap(ErrTruncatedInput, "vlq not terminated")
}
