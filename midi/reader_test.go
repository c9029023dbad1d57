package midi_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "go-smf/midi"
)

// standardSample is the four track example file from the Standard MIDI Files 1.0
// document. The music tracks rely on running status.
func standardSample() []byte {
	return []byte{
		// MThd, length 6, format 1, 4 tracks, 96 ticks per quarter note
		0x4d, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 1, 0, 4, 0, 0x60,
		// MTrk: time signature, tempo, end of track
		0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x14,
		0, 0xff, 0x58, 4, 4, 2, 0x18, 8,
		0, 0xff, 0x51, 3, 7, 0xa1, 0x20,
		0x83, 0, 0xff, 0x2f, 0,
		// MTrk: program change, note on, note on vel 0 under running status
		0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x10,
		0, 0xc0, 5,
		0x81, 0x40, 0x90, 0x4c, 0x20,
		0x81, 0x40, 0x4c, 0,
		0, 0xff, 0x2f, 0,
		// MTrk
		0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0xf,
		0, 0xc1, 0x2e,
		0x60, 0x91, 0x43, 0x40,
		0x82, 0x20, 0x43, 0,
		0, 0xff, 0x2f, 0,
		// MTrk
		0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x15,
		0, 0xc2, 0x46,
		0, 0x92, 0x30, 0x60,
		0, 0x3c, 0x60,
		0x83, 0, 0x30, 0,
		0, 0x3c, 0,
		0, 0xff, 0x2f, 0,
	}
}

// countingHandler records callback counts next to a Collector.
type countingHandler struct {
	Collector
	headers      int
	trackChanges int
}

func (h *countingHandler) Header(format, tracks, timeBase uint16) {
	h.headers++
	h.Collector.Header(format, tracks, timeBase)
}

func (h *countingHandler) TrackChange() {
	h.trackChanges++
	h.Collector.TrackChange()
}

func TestReadStandardSample(t *testing.T) {
	var h countingHandler
	err := NewReader(&h, standardSample()).Read()
	require.NoError(t, err)

	assert.Equal(t, 1, h.headers)
	assert.Equal(t, Header{Format: 1, Tracks: 4, TimeBase: 96}, h.FileHeader)
	assert.Equal(t, 3, h.trackChanges)

	tracks := h.Tracks()
	require.Len(t, tracks, 4)

	assert.Equal(t, []Message{
		MetaEvent{DeltaTime: 0, Kind: MetaTimeSignature, Data: []byte{4, 2, 0x18, 8}},
		MetaEvent{DeltaTime: 0, Kind: MetaSetTempo, Data: []byte{7, 0xa1, 0x20}},
		MetaEvent{DeltaTime: 384, Kind: MetaEndOfTrack, Data: []byte{}},
	}, tracks[0])

	assert.Equal(t, []Message{
		MidiEvent{DeltaTime: 0, Event: ProgramChange{Channel: 0, Program: 5}},
		MidiEvent{DeltaTime: 192, Event: NoteOn{Channel: 0, Note: 0x4c, Velocity: 0x20}},
		MidiEvent{DeltaTime: 192, Event: NoteOn{Channel: 0, Note: 0x4c, Velocity: 0}},
		MetaEvent{DeltaTime: 0, Kind: MetaEndOfTrack, Data: []byte{}},
	}, tracks[1])

	assert.Equal(t, []Message{
		MidiEvent{DeltaTime: 0, Event: ProgramChange{Channel: 2, Program: 0x46}},
		MidiEvent{DeltaTime: 0, Event: NoteOn{Channel: 2, Note: 0x30, Velocity: 0x60}},
		MidiEvent{DeltaTime: 0, Event: NoteOn{Channel: 2, Note: 0x3c, Velocity: 0x60}},
		MidiEvent{DeltaTime: 384, Event: NoteOn{Channel: 2, Note: 0x30, Velocity: 0}},
		MidiEvent{DeltaTime: 0, Event: NoteOn{Channel: 2, Note: 0x3c, Velocity: 0}},
		MetaEvent{DeltaTime: 0, Kind: MetaEndOfTrack, Data: []byte{}},
	}, tracks[3])
}

func TestRewriteStandardSampleIsByteExact(t *testing.T) {
	header, messages, err := Decode(standardSample())
	require.NoError(t, err)

	out, err := Encode(header.TimeBase, true, messages...)
	require.NoError(t, err)
	assert.Equal(t, standardSample(), out)
}

func TestReadIsNotRepeated(t *testing.T) {
	var h countingHandler
	r := NewReader(&h, standardSample())
	require.NoError(t, r.Read())
	require.NoError(t, r.Read())
	assert.Equal(t, 1, h.headers)
	assert.Equal(t, uint16(4), r.Header().Tracks)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.mid")
	require.NoError(t, os.WriteFile(path, standardSample(), 0644))

	var c Collector
	require.NoError(t, ReadFile(&c, path))
	assert.Len(t, c.Tracks(), 4)

	err := ReadFile(&c, filepath.Join(t.TempDir(), "missing.mid"))
	assert.True(t, os.IsNotExist(err))
}

func TestReadFrom(t *testing.T) {
	var c Collector
	require.NoError(t, ReadFrom(&c, bytes.NewReader(standardSample())))
	assert.Equal(t, uint16(96), c.FileHeader.TimeBase)
}

func header(tracks uint16) []byte {
	return []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, byte(tracks), 0, 0x60}
}

func track(events ...byte) []byte {
	n := len(events)
	b := []byte{'M', 'T', 'r', 'k', byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	return append(b, events...)
}

func file(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestReadErrors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"short tag", []byte("MTh"), ErrTruncatedInput},
		{"wrong header tag", []byte("RIFF\x00\x00\x00\x06\x00\x01\x00\x01\x00\x60"), ErrUnexpectedTag},
		{"header length 5", []byte("MThd\x00\x00\x00\x05\x00\x01\x00\x01\x00"), ErrFormat},
		{"short header", []byte("MThd\x00\x00\x00\x06\x00\x01"), ErrTruncatedInput},
		{"format 3", []byte("MThd\x00\x00\x00\x06\x00\x03\x00\x00\x00\x60"), ErrUnsupportedFormat},
		{"no tracks after header", header(1), ErrTruncatedInput},
		{"wrong track tag", file(header(1), []byte("MTrx\x00\x00\x00\x00")), ErrUnexpectedTag},
		{"track longer than file", file(header(1), []byte("MTrk\x00\x00\x00\x10\x00\xff\x2f\x00")), ErrTruncatedInput},
		{"data byte without status", file(header(1), track(0, 0x3c, 0x40, 0, 0xff, 0x2f, 0)), ErrFormat},
		{"event overruns chunk", file(header(1), track(0, 0x90, 0x3c)), ErrFormat},
		{"meta payload overruns chunk", file(header(1), track(0, 0xff, 0x01, 0x05, 'a')), ErrFormat},
		{"vlq overruns chunk", file(header(1), track(0x81)), ErrFormat},
		{"status inside event", file(header(1), track(0, 0x90, 0x3c, 0x80, 0x40)), ErrFormat},
		{"track count mismatch", file(header(2), track(0, 0xff, 0x2f, 0)), ErrFormat},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var h Collector
			err := NewReader(&h, c.data).Read()
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestReadErrorKeepsDispatchedEvents(t *testing.T) {
	data := file(header(2),
		track(0, 0x90, 0x3c, 0x40, 0x10, 0x80, 0x3c, 0x00, 0, 0xff, 0x2f, 0),
		track(0, 0xc0),
	)
	var h countingHandler
	err := NewReader(&h, data).Read()
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "offset")

	assert.Equal(t, 1, h.headers)
	assert.Equal(t, 1, h.trackChanges)
	assert.Equal(t, []Message{
		MidiEvent{DeltaTime: 0, Event: NoteOn{Channel: 0, Note: 0x3c, Velocity: 0x40}},
		MidiEvent{DeltaTime: 0x10, Event: NoteOff{Channel: 0, Note: 0x3c, Velocity: 0}},
		MetaEvent{DeltaTime: 0, Kind: MetaEndOfTrack, Data: []byte{}},
		TrackChange{},
	}, h.Messages)
}

func TestReadContinuesAfterEndOfTrack(t *testing.T) {
	data := file(header(1), track(0, 0xff, 0x2f, 0, 0, 0xff, 0x01, 1, 'x'))
	_, messages, err := Decode(data)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestReadEmptyTrackAndZeroTracks(t *testing.T) {
	hdr, messages, err := Decode(header(0))
	require.NoError(t, err)
	assert.Equal(t, uint16(0), hdr.Tracks)
	assert.Empty(t, messages)

	_, messages, err = Decode(file(header(2), track(), track()))
	require.NoError(t, err)
	assert.Equal(t, []Message{TrackChange{}}, messages)
}

func TestReadSysEx(t *testing.T) {
	data := file(header(1), track(
		0, 0xf0, 3, 1, 2, 3,
		0, 0xf7, 2, 0x43, 0xf7,
		0, 0xff, 0x2f, 0,
	))
	_, messages, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, SysExEvent{Kind: SysExF0, Data: []byte{1, 2, 3}}, messages[0])
	assert.Equal(t, SysExEvent{Kind: SysExF7, Data: []byte{0x43, 0xf7}}, messages[1])
}

func TestReadRunningStatusSurvivesMeta(t *testing.T) {
	data := file(header(1), track(
		0, 0x90, 0x3c, 0x40,
		0, 0xff, 0x06, 1, 'A',
		0, 0x3c, 0,
		0, 0xff, 0x2f, 0,
	))
	_, messages, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MidiEvent{Event: NoteOn{Note: 0x3c}}, messages[2])
}

func TestRunningStatusResetsPerTrack(t *testing.T) {
	data := file(header(2),
		track(0, 0x90, 0x3c, 0x40, 0, 0xff, 0x2f, 0),
		track(0, 0x3c, 0, 0, 0xff, 0x2f, 0),
	)
	_, _, err := Decode(data)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReadIgnoresBytesAfterDeclaredTracks(t *testing.T) {
	eot := track(0, 0xff, 0x2f, 0)
	for name, data := range map[string][]byte{
		"padding":     file(header(1), eot, []byte{0, 0}),
		"extra track": file(header(1), eot, track(0, 0xc0, 1, 0, 0xff, 0x2f, 0)),
	} {
		t.Run(name, func(t *testing.T) {
			var h countingHandler
			require.NoError(t, NewReader(&h, data).Read())
			assert.Equal(t, 0, h.trackChanges)
			assert.Equal(t, []Message{EndOfTrack(0)}, h.Messages)
		})
	}
}

func TestReadTrackChangeNeedsTrackTag(t *testing.T) {
	eot := track(0, 0xff, 0x2f, 0)
	for name, tail := range map[string][]byte{
		"short tag": {0, 0},
		"wrong tag": []byte("XTrk\x00\x00\x00\x00"),
	} {
		t.Run(name, func(t *testing.T) {
			var h countingHandler
			err := NewReader(&h, file(header(2), eot, tail)).Read()
			assert.Error(t, err)
			assert.Equal(t, 0, h.trackChanges)
		})
	}
}
