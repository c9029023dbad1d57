package midi

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// LookupCharset returns the encoding for a label such as "shift_jis" or
// "latin1". An empty label means the text is stored as is.
func LookupCharset(label string) (encoding.Encoding, error) {
	if label == "" {
		return encoding.Nop, nil
	}
	enc, _ := charset.Lookup(label)
	if enc == nil {
		return nil, errors.Errorf("unknown charset %q", label)
	}
	return enc, nil
}

// NewText returns a text meta event. A nil transformer stores text unchanged;
// otherwise text is encoded with it (e.g. enc.NewEncoder()).
func NewText(delta uint32, kind MetaKind, text string, t transform.Transformer) (MetaEvent, error) {
	data := []byte(text)
	if t != nil {
		var err error
		if data, _, err = transform.Bytes(t, data); err != nil {
			return MetaEvent{}, errors.Wrapf(err, "encode %s", kind)
		}
	}
	return MetaEvent{DeltaTime: VLQ(delta), Kind: kind, Data: data}, nil
}

// Text decodes the payload with t, or returns it unchanged when t is nil.
func (m MetaEvent) Text(t transform.Transformer) (string, error) {
	if t == nil {
		return string(m.Data), nil
	}
	s, _, err := transform.String(t, string(m.Data))
	if err != nil {
		return "", errors.Wrapf(err, "decode %s", m.Kind)
	}
	return s, nil
}

// NewTempo returns a SetTempo event for bpm quarter notes per minute.
func NewTempo(delta uint32, bpm float64) MetaEvent {
	us := uint32(60e6 / bpm)
	return MetaEvent{
		DeltaTime: VLQ(delta),
		Kind:      MetaSetTempo,
		Data:      []byte{byte(us >> 16), byte(us >> 8), byte(us)},
	}
}

// Tempo returns the microseconds per quarter note and the equivalent bpm of
// a SetTempo event.
func (m MetaEvent) Tempo() (us uint32, bpm float64, ok bool) {
	if m.Kind != MetaSetTempo || len(m.Data) != 3 {
		return 0, 0, false
	}
	us = uint32(m.Data[0])<<16 | uint32(m.Data[1])<<8 | uint32(m.Data[2])
	if us == 0 {
		return 0, 0, false
	}
	return us, 60e6 / float64(us), true
}

// NewTimeSignature returns a TimeSignature event. denominator must be a
// power of two up to 128.
func NewTimeSignature(delta uint32, numerator, denominator uint8) (MetaEvent, error) {
	if denominator == 0 || denominator&(denominator-1) != 0 || denominator > 128 {
		return MetaEvent{}, errors.Wrapf(ErrUnsupportedValue, "time signature denominator %d", denominator)
	}
	d := uint8(math.Log2(float64(denominator)))
	return MetaEvent{
		DeltaTime: VLQ(delta),
		Kind:      MetaTimeSignature,
		Data:      []byte{numerator, d, 0x18, 0x08},
	}, nil
}

// TimeSignature returns numerator and denominator of a TimeSignature event.
func (m MetaEvent) TimeSignature() (numerator, denominator uint8, ok bool) {
	if m.Kind != MetaTimeSignature || len(m.Data) < 2 || m.Data[1] > 7 {
		return 0, 0, false
	}
	return m.Data[0], 1 << m.Data[1], true
}
