package midi

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"go-smf/debug"
)

// DefaultTimeBase is the ticks per quarter note a new Writer uses.
const DefaultTimeBase = 480

func writeBE(w io.Writer, data any) error {
	return binary.Write(w, binary.BigEndian, data)
}

// encodeContext is the running status state of the track being encoded.
type encodeContext struct {
	runningStatus bool
	status        byte // last emitted channel status, 0 after meta/sysex
}

func (c *encodeContext) appendMessage(dst []byte, m Message) []byte {
	switch m := m.(type) {
	case MidiEvent:
		status := m.Event.Status()
		if _, unknown := m.Event.(UnknownVoice); unknown {
			c.status = 0
			return append(dst, m.Binary()...)
		}
		if c.runningStatus && status == c.status {
			dst = m.DeltaTime.appendTo(dst)
			return append(dst, m.Event.Binary()[1:]...)
		}
		c.status = status
		return append(dst, m.Binary()...)
	case MetaEvent, SysExEvent:
		c.status = 0
	}
	return append(dst, m.Binary()...)
}

// Writer accumulates messages and serializes them as a format 1 file by
// default. Each TrackChange starts a new track. The caller is responsible
// for ending every track with an EndOfTrack meta event.
type Writer struct {
	messages      []Message
	runningStatus bool
	format        uint16
	timeBase      uint16
}

// NewWriter returns a Writer with running status off and DefaultTimeBase.
func NewWriter() *Writer {
	return &Writer{format: 1, timeBase: DefaultTimeBase}
}

// SetRunningStatus turns status byte elision on or off.
func (w *Writer) SetRunningStatus(on bool) {
	w.runningStatus = on
}

func (w *Writer) SetTimeBase(ticks uint16) {
	w.timeBase = ticks
}

func (w *Writer) SetFormat(format uint16) {
	w.format = format
}

// Push appends m to the current track.
func (w *Writer) Push(m Message) {
	w.messages = append(w.messages, m)
}

func (w *Writer) PushAll(ms ...Message) {
	w.messages = append(w.messages, ms...)
}

// Tracks returns the pushed messages split at each TrackChange.
func (w *Writer) Tracks() [][]Message {
	return SplitTracks(w.messages)
}

// SplitTracks splits ms at each TrackChange. An empty list has no tracks;
// otherwise n track changes give n+1 tracks, the last possibly empty.
func SplitTracks(ms []Message) [][]Message {
	if len(ms) == 0 {
		return nil
	}
	tracks := [][]Message{{}}
	for _, m := range ms {
		if _, ok := m.(TrackChange); ok {
			tracks = append(tracks, []Message{})
			continue
		}
		last := len(tracks) - 1
		tracks[last] = append(tracks[last], m)
	}
	return tracks
}

func validate(m Message) error {
	if m == nil {
		return errors.Wrap(ErrFormat, "nil message")
	}
	if m.Delta() > MaxVLQ {
		return errors.Wrapf(ErrUnsupportedValue, "delta time %d in %s", m.Delta(), m)
	}
	var n int
	switch m := m.(type) {
	case MidiEvent:
		if m.Event == nil {
			return errors.Wrap(ErrFormat, "midi event without a voice event")
		}
		if u, ok := m.Event.(UnknownVoice); ok && !systemStatus(u.StatusByte) {
			return errors.Wrapf(ErrFormat, "unknown status %#02x", u.StatusByte)
		}
	case MetaEvent:
		n = len(m.Data)
	case SysExEvent:
		if byte(m.Kind) < byte(SysExF0) || byte(m.Kind) == MetaStatus {
			return errors.Wrapf(ErrFormat, "sysex kind %#02x", byte(m.Kind))
		}
		n = len(m.Payload())
	}
	if n > MaxVLQ {
		return errors.Wrapf(ErrUnsupportedValue, "payload of %d bytes", n)
	}
	return nil
}

// systemStatus reports whether b reads back as a lone status byte: anything
// from 0xF1 to 0xFE except the F7 sysex escape.
func systemStatus(b byte) bool {
	return b > byte(SysExF0) && b < MetaStatus && b != byte(SysExF7)
}

func (w *Writer) encodeTrack(track []Message) ([]byte, error) {
	ctx := encodeContext{runningStatus: w.runningStatus}
	var events []byte
	for _, m := range track {
		if err := validate(m); err != nil {
			return nil, err
		}
		events = ctx.appendMessage(events, m)
	}
	return events, nil
}

// Bytes returns the encoded file.
func (w *Writer) Bytes() ([]byte, error) {
	tracks := w.Tracks()
	if len(tracks) > math.MaxUint16 {
		return nil, errors.Wrapf(ErrUnsupportedValue, "%d tracks", len(tracks))
	}
	var buf bytes.Buffer

	buf.Write(TagHeader.Binary())
	writeBE(&buf, uint32(headerLength))
	writeBE(&buf, []uint16{w.format, uint16(len(tracks)), w.timeBase})

	for i, track := range tracks {
		events, err := w.encodeTrack(track)
		if err != nil {
			return nil, errors.Wrapf(err, "track %d", i)
		}
		buf.Write(TagTrack.Binary())
		writeBE(&buf, uint32(len(events)))
		buf.Write(events)
		debug.Log("writer", "track %d: %d messages, %d bytes", i, len(track), len(events))
	}
	return buf.Bytes(), nil
}

// WriteTo encodes the file and writes it to dst. Nothing is written when
// encoding fails; a failing dst may be left with a partial file.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	data, err := w.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := dst.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// WriteFile creates or truncates path and writes the file to it.
func (w *Writer) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = w.WriteTo(f)
	return err
}
