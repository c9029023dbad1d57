package midi_test

import (
	"bytes"
	"errors"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "go-smf/midi"
)

// tempoScenario is a conductor track with a 102 bpm tempo and a note track.
func tempoScenario() []Message {
	tempo := uint32(60 * 1000000 / 102)
	return []Message{
		MetaEvent{DeltaTime: 0, Kind: MetaSetTempo, Data: []byte{byte(tempo >> 16), byte(tempo >> 8), byte(tempo)}},
		EndOfTrack(0),
		TrackChange{},
		MidiEvent{DeltaTime: 0, Event: NoteOn{Channel: 0, Note: 0x3c, Velocity: 0x7f}},
		MidiEvent{DeltaTime: 192, Event: NoteOn{Channel: 0, Note: 0x40, Velocity: 0}},
		EndOfTrack(0),
	}
}

func TestWriteTempoScenario(t *testing.T) {
	w := NewWriter()
	w.SetRunningStatus(true)
	for _, m := range tempoScenario() {
		w.Push(m)
	}
	var buf bytes.Buffer
	n, err := w.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	want := []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, 2, 0x01, 0xe0,
		'M', 'T', 'r', 'k', 0, 0, 0, 0x0b,
		0, 0xff, 0x51, 3, 0x08, 0xf9, 0xcb,
		0, 0xff, 0x2f, 0,
		'M', 'T', 'r', 'k', 0, 0, 0, 0x0c,
		0, 0x90, 0x3c, 0x7f,
		0x81, 0x40, 0x40, 0,
		0, 0xff, 0x2f, 0,
	}
	assert.Equal(t, want, buf.Bytes())

	var h countingHandler
	require.NoError(t, NewReader(&h, buf.Bytes()).Read())
	assert.Equal(t, uint16(2), h.FileHeader.Tracks)
	assert.Equal(t, 1, h.trackChanges)
	assert.Equal(t, tempoScenario(), h.Messages)

	us, bpm, ok := h.Messages[0].(MetaEvent).Tempo()
	require.True(t, ok)
	assert.Equal(t, uint32(588235), us)
	assert.InDelta(t, 102, bpm, 0.01)
}

func TestRunningStatusElidesOneByte(t *testing.T) {
	plain, err := Encode(480, false, tempoScenario()...)
	require.NoError(t, err)
	compressed, err := Encode(480, true, tempoScenario()...)
	require.NoError(t, err)

	assert.Equal(t, len(plain)-1, len(compressed))
	assert.Equal(t, bytes.Count(plain, []byte{0x90})-1, bytes.Count(compressed, []byte{0x90}))

	_, a, err := Decode(plain)
	require.NoError(t, err)
	_, b, err := Decode(compressed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunningStatusResetByMetaAndSysEx(t *testing.T) {
	note := MidiEvent{Event: NoteOn{Channel: 1, Note: 60, Velocity: 1}}
	messages := []Message{
		note,
		note,
		MetaEvent{Kind: MetaMarker, Data: []byte("a")},
		note,
		SysExEvent{Kind: SysExF0, Data: []byte{1, 0xf7}},
		note,
		MidiEvent{Event: NoteOn{Channel: 2, Note: 60, Velocity: 1}},
		note,
		EndOfTrack(0),
	}
	data, err := Encode(96, true, messages...)
	require.NoError(t, err)
	// the second note is the only one sent without its status byte
	assert.Equal(t, 4, bytes.Count(data, []byte{0x91, 60, 1}))

	_, got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, messages[0], got[1])
	assert.Len(t, got, len(messages))
}

func TestRunningStatusResetByTrackChange(t *testing.T) {
	note := MidiEvent{Event: NoteOn{Channel: 0, Note: 60, Velocity: 1}}
	data, err := Encode(96, true, note, EndOfTrack(0), TrackChange{}, note, EndOfTrack(0))
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte{0x90, 60, 1}))
}

func TestWriteSysExF0RoundTrip(t *testing.T) {
	data, err := Encode(96, false,
		SysExEvent{Kind: SysExF0, Data: []byte{0xf0, 1, 2, 3}},
		EndOfTrack(0),
	)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte{0, 0xf0, 3, 1, 2, 3, 0}))

	_, messages, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, SysExEvent{Kind: SysExF0, Data: []byte{1, 2, 3}}, messages[0])
}

func TestTrackChangeCount(t *testing.T) {
	for n := 1; n <= 6; n++ {
		w := NewWriter()
		for i := 0; i < n; i++ {
			if i > 0 {
				w.Push(TrackChange{})
			}
			w.Push(MidiEvent{Event: ProgramChange{Channel: uint8(i), Program: uint8(i)}})
			w.Push(EndOfTrack(0))
		}
		assert.Len(t, w.Tracks(), n)

		var buf bytes.Buffer
		_, err := w.WriteTo(&buf)
		require.NoError(t, err)

		var h countingHandler
		require.NoError(t, NewReader(&h, buf.Bytes()).Read())
		assert.Equal(t, uint16(n), h.FileHeader.Tracks)
		assert.Equal(t, n-1, h.trackChanges)
	}
}

func TestWriteMessageRoundTrip(t *testing.T) {
	messages := []Message{
		MetaEvent{DeltaTime: 0, Kind: MetaSequenceOrTrackName, Data: []byte("piano")},
		MetaEvent{DeltaTime: 0, Kind: MetaKind(0x60), Data: []byte{9, 9}},
		MidiEvent{DeltaTime: 0, Event: ProgramChange{Channel: 3, Program: 0}},
		MidiEvent{DeltaTime: 0x0FFFFFFF, Event: NoteOn{Channel: 3, Note: 127, Velocity: 127}},
		MidiEvent{DeltaTime: 0x80, Event: NoteOff{Channel: 3, Note: 127, Velocity: 64}},
		MidiEvent{DeltaTime: 1, Event: PolyphonicKeyPressure{Channel: 3, Note: 1, Pressure: 2}},
		MidiEvent{DeltaTime: 1, Event: ControlChange{Channel: 3, Controller: 64, Value: 127}},
		MidiEvent{DeltaTime: 1, Event: ChannelPressure{Channel: 3, Pressure: 90}},
		MidiEvent{DeltaTime: 1, Event: PitchBendChange{Channel: 3, Value: -4000}},
		MidiEvent{DeltaTime: 1, Event: PitchBendChange{Channel: 3, Value: 8191}},
		SysExEvent{DeltaTime: 7, Kind: SysExF7, Data: []byte{0x7f, 0x7f}},
		EndOfTrack(0),
	}
	for _, running := range []bool{false, true} {
		data, err := Encode(480, running, messages...)
		require.NoError(t, err)
		_, got, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, messages, got, "running status %v", running)
	}
}

func TestWriteEmptyAndTrailingTrackChange(t *testing.T) {
	data, err := NewWriter().Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, 0, 0x01, 0xe0}, data)

	w := NewWriter()
	w.PushAll(EndOfTrack(0), TrackChange{})
	assert.Len(t, w.Tracks(), 2)
	data, err = w.Bytes()
	require.NoError(t, err)
	hdr, _, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), hdr.Tracks)
}

func TestWriteFormatAndTimeBase(t *testing.T) {
	w := NewWriter()
	w.SetFormat(0)
	w.SetTimeBase(96)
	w.Push(EndOfTrack(0))
	data, err := w.Bytes()
	require.NoError(t, err)

	hdr, _, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, Header{Format: 0, Tracks: 1, TimeBase: 96}, hdr)
}

func TestWriteRejectsOutOfRangeValues(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter()
	w.Push(MidiEvent{DeltaTime: MaxVLQ + 1, Event: NoteOn{}})
	_, err := w.WriteTo(&buf)
	assert.ErrorIs(t, err, ErrUnsupportedValue)
	assert.Zero(t, buf.Len())

	w = NewWriter()
	w.Push(MidiEvent{})
	_, err = w.WriteTo(&buf)
	assert.ErrorIs(t, err, ErrFormat)

	w = NewWriter()
	w.Push(nil)
	_, err = w.WriteTo(&buf)
	assert.ErrorIs(t, err, ErrFormat)
}

// Statuses the Reader would take for a data byte, a voice event or a meta
// event are refused.
func TestWriteRejectsUnreadableStatus(t *testing.T) {
	for _, st := range []byte{0x00, 0x7f, 0x80, 0x90, 0xef, 0xf0, 0xf7, 0xff} {
		_, err := Encode(96, false,
			MidiEvent{Event: UnknownVoice{StatusByte: st}},
			MidiEvent{Event: NoteOn{Note: 60, Velocity: 1}},
			EndOfTrack(0),
		)
		assert.ErrorIs(t, err, ErrFormat, "status %#02x", st)
	}
	for _, kind := range []SysExKind{0x42, 0x90, 0xef, 0xff} {
		_, err := Encode(96, false, SysExEvent{Kind: kind, Data: []byte{1}}, EndOfTrack(0))
		assert.ErrorIs(t, err, ErrFormat, "kind %#02x", byte(kind))
	}
	// other system kinds are written as given
	data, err := Encode(96, false, SysExEvent{Kind: 0xf5, Data: []byte{1}}, EndOfTrack(0))
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte{0, 0xf5, 1, 1, 0, 0xff, 0x2f, 0}))

	for _, st := range []byte{0xf1, 0xf6, 0xf8, 0xfe} {
		messages := []Message{
			MidiEvent{Event: NoteOn{Note: 60, Velocity: 1}},
			MidiEvent{Event: UnknownVoice{StatusByte: st}},
			MidiEvent{Event: NoteOn{Note: 60, Velocity: 0}},
			EndOfTrack(0),
		}
		data, err := Encode(96, true, messages...)
		require.NoError(t, err, "status %#02x", st)
		_, got, err := Decode(data)
		require.NoError(t, err, "status %#02x", st)
		assert.Equal(t, messages, got)
	}
}

func TestWriteTooManyTracks(t *testing.T) {
	w := NewWriter()
	for i := 0; i < math.MaxUint16; i++ {
		w.Push(TrackChange{})
	}
	require.Len(t, w.Tracks(), math.MaxUint16+1)
	_, err := w.Bytes()
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

type failingWriter struct {
	err error
	n   int
}

func (f failingWriter) Write(p []byte) (int, error) {
	return min(f.n, len(p)), f.err
}

func TestWriteSinkFailure(t *testing.T) {
	diskFull := errors.New("disk full")
	w := NewWriter()
	w.PushAll(tempoScenario()...)

	_, err := w.WriteTo(failingWriter{err: diskFull})
	assert.ErrorIs(t, err, diskFull)

	n, err := w.WriteTo(failingWriter{n: 10})
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, int64(10), n)
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mid")
	w := NewWriter()
	w.SetRunningStatus(true)
	w.PushAll(tempoScenario()...)
	require.NoError(t, w.WriteFile(path))

	hdr, messages, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), hdr.Tracks)
	assert.Equal(t, tempoScenario(), messages)

	err = w.WriteFile(filepath.Join(t.TempDir(), "missing", "out.mid"))
	assert.Error(t, err)
}
