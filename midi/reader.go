package midi

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"go-smf/debug"
)

const (
	headerLength = 6
	chunkHeader  = 8 // tag + u32 length
	maxFormat    = 2
)

// Handler receives decoded events synchronously and in file order.
type Handler interface {
	Header(format, tracks, timeBase uint16)
	MetaEvent(delta uint32, kind MetaKind, data []byte)
	MidiEvent(delta uint32, ev VoiceEvent)
	SysExEvent(delta uint32, kind SysExKind, data []byte)
	// TrackChange is called between two track chunks, never before the first.
	TrackChange()
}

type readState int

const (
	expectHeader readState = iota
	expectTrack
	expectEvent
	trackComplete
	readDone
	readFailed
)

// decodeContext is the state of the track chunk being decoded.
type decodeContext struct {
	end        int  // offset one past the last byte of the chunk
	status     byte // running status, 0 when none is in effect
	endOfTrack bool
	events     int
}

// Reader decodes one complete SMF byte buffer.
type Reader struct {
	handler Handler
	data    []byte
	pos     int
	state   readState
	header  Header
	tracks  int
	err     error
}

// NewReader returns a Reader that reports the events of data to h.
func NewReader(h Handler, data []byte) *Reader {
	return &Reader{handler: h, data: data}
}

// ReadFrom reads src to the end and decodes it.
func ReadFrom(h Handler, src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	return NewReader(h, data).Read()
}

// ReadFile decodes the file at path. The file is closed before returning.
func ReadFile(h Handler, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReadFrom(h, f)
}

// Read runs the decoder to completion. It stops at the first error; events
// dispatched before it stay delivered. Calling Read again returns the same
// result without decoding twice.
func (r *Reader) Read() error {
	var ctx decodeContext
	for {
		var err error
		switch r.state {
		case expectHeader:
			err = r.readHeader()
		case expectTrack:
			ctx, err = r.readTrackHeader()
		case expectEvent:
			err = r.readEvent(&ctx)
		case trackComplete:
			err = r.completeTrack(&ctx)
		case readDone:
			return nil
		case readFailed:
			return r.err
		}
		if err != nil {
			debug.Log("reader", "failed: %v", err)
			r.state, r.err = readFailed, err
		}
	}
}

// Header returns the header chunk fields once they have been read.
func (r *Reader) Header() Header {
	return r.header
}

func (r *Reader) take(n int, what string) ([]byte, error) {
	if len(r.data)-r.pos < n {
		return nil, errAt(ErrTruncatedInput, r.pos, "%s needs %d bytes, %d left", what, n, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) readTag(want Tag) error {
	b, err := r.take(len(want), "chunk tag")
	if err != nil {
		return err
	}
	if Tag(b) != want {
		return errAt(ErrUnexpectedTag, r.pos-len(want), "got %q, want %q", b, want.String())
	}
	return nil
}

func (r *Reader) readHeader() error {
	if err := r.readTag(TagHeader); err != nil {
		return err
	}
	b, err := r.take(4, "header length")
	if err != nil {
		return err
	}
	if n := binary.BigEndian.Uint32(b); n != headerLength {
		return errAt(ErrFormat, r.pos-4, "header length %d, want %d", n, headerLength)
	}
	b, err = r.take(headerLength, "header")
	if err != nil {
		return err
	}
	r.header = Header{
		Format:   binary.BigEndian.Uint16(b[0:2]),
		Tracks:   binary.BigEndian.Uint16(b[2:4]),
		TimeBase: binary.BigEndian.Uint16(b[4:6]),
	}
	if r.header.Format > maxFormat {
		return errAt(ErrUnsupportedFormat, r.pos-headerLength, "format %d", r.header.Format)
	}
	debug.Log("reader", "header format=%d tracks=%d timebase=%d",
		r.header.Format, r.header.Tracks, r.header.TimeBase)
	r.handler.Header(r.header.Format, r.header.Tracks, r.header.TimeBase)
	r.state = r.afterTrack()
	if r.state == readDone && r.header.Tracks > 0 {
		return errAt(ErrTruncatedInput, r.pos, "header declares %d tracks, none follow", r.header.Tracks)
	}
	return nil
}

func (r *Reader) readTrackHeader() (decodeContext, error) {
	if err := r.readTag(TagTrack); err != nil {
		return decodeContext{}, err
	}
	if r.tracks > 0 {
		r.handler.TrackChange()
	}
	b, err := r.take(4, "track length")
	if err != nil {
		return decodeContext{}, err
	}
	n := binary.BigEndian.Uint32(b)
	if uint64(n) > uint64(len(r.data)-r.pos) {
		return decodeContext{}, errAt(ErrTruncatedInput, r.pos-chunkHeader,
			"track %d declares %d bytes, %d left", r.tracks, n, len(r.data)-r.pos)
	}
	ctx := decodeContext{end: r.pos + int(n)}
	debug.Log("reader", "track %d at %d, %d bytes", r.tracks, r.pos-chunkHeader, n)
	r.state = expectEvent
	if n == 0 {
		r.state = trackComplete
	}
	return ctx, nil
}

// next returns the following byte of the current track chunk.
func (r *Reader) next(ctx *decodeContext) (byte, error) {
	if r.pos >= ctx.end {
		return 0, errAt(ErrFormat, r.pos, "event overruns end of track %d", r.tracks)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) readVLQ(ctx *decodeContext) (VLQ, error) {
	v, n, err := ReadVLQ(r.data[r.pos:ctx.end])
	if err != nil {
		if errors.Is(err, ErrTruncatedInput) {
			return 0, errAt(ErrFormat, r.pos, "vlq overruns end of track %d", r.tracks)
		}
		return 0, errAt(err, r.pos, "vlq")
	}
	r.pos += n
	return v, nil
}

// readPayload reads a VLQ length followed by that many bytes of the chunk.
func (r *Reader) readPayload(ctx *decodeContext) ([]byte, error) {
	n, err := r.readVLQ(ctx)
	if err != nil {
		return nil, err
	}
	if int(n) > ctx.end-r.pos {
		return nil, errAt(ErrFormat, r.pos, "payload of %d bytes overruns end of track %d", n, r.tracks)
	}
	data := make([]byte, n)
	copy(data, r.data[r.pos:])
	r.pos += int(n)
	return data, nil
}

func (r *Reader) readEvent(ctx *decodeContext) error {
	delta, err := r.readVLQ(ctx)
	if err != nil {
		return err
	}
	at := r.pos
	b, err := r.next(ctx)
	if err != nil {
		return err
	}

	switch {
	case b < 0x80:
		if ctx.status == 0 {
			return errAt(ErrFormat, at, "data byte %#02x without running status", b)
		}
		err = r.readVoice(ctx, uint32(delta), ctx.status, &b)
	case b == MetaStatus:
		err = r.readMeta(ctx, uint32(delta))
	case b == byte(SysExF0) || b == byte(SysExF7):
		var data []byte
		if data, err = r.readPayload(ctx); err == nil {
			r.handler.SysExEvent(uint32(delta), SysExKind(b), data)
		}
	default:
		ctx.status = 0
		if b < 0xF0 {
			ctx.status = b
		}
		err = r.readVoice(ctx, uint32(delta), b, nil)
	}
	if err != nil {
		return err
	}

	ctx.events++
	debug.LogEvery(256, "reader", "track %d status %#02x at %d", r.tracks, b, at)
	if r.pos == ctx.end {
		r.state = trackComplete
	}
	return nil
}

func (r *Reader) readMeta(ctx *decodeContext, delta uint32) error {
	kind, err := r.next(ctx)
	if err != nil {
		return err
	}
	data, err := r.readPayload(ctx)
	if err != nil {
		return err
	}
	if MetaKind(kind) == MetaEndOfTrack {
		ctx.endOfTrack = true
	}
	r.handler.MetaEvent(delta, MetaKind(kind), data)
	return nil
}

// readVoice builds a channel voice event. first is the data byte already
// consumed when the event uses running status.
func (r *Reader) readVoice(ctx *decodeContext, delta uint32, status byte, first *byte) error {
	builder := NewEventBuilder(status)
	if first != nil {
		builder.Push(*first)
	}
	for builder.Shortage() > 0 {
		at := r.pos
		b, err := r.next(ctx)
		if err != nil {
			return err
		}
		if b >= 0x80 {
			return errAt(ErrFormat, at, "status byte %#02x inside event %#02x", b, status)
		}
		builder.Push(b)
	}
	r.handler.MidiEvent(delta, builder.Build())
	return nil
}

func (r *Reader) completeTrack(ctx *decodeContext) error {
	if !ctx.endOfTrack {
		debug.Log("reader", "track %d has no end of track event", r.tracks)
	}
	debug.Log("reader", "track %d done, %d events", r.tracks, ctx.events)
	r.tracks++
	r.state = r.afterTrack()
	if r.state == readDone && r.tracks != int(r.header.Tracks) {
		return errAt(ErrFormat, r.pos, "header declares %d tracks, file has %d", r.header.Tracks, r.tracks)
	}
	return nil
}

// afterTrack stops once the declared number of tracks has been read. Bytes
// left over after that are ignored.
func (r *Reader) afterTrack() readState {
	if r.tracks == int(r.header.Tracks) {
		if n := len(r.data) - r.pos; n > 0 {
			debug.Log("reader", "ignoring %d bytes after track %d", n, r.tracks)
		}
		return readDone
	}
	if r.pos == len(r.data) {
		return readDone
	}
	return expectTrack
}
