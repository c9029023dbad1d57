// Package midi reads and writes Standard MIDI Files.
//
// A file is decoded by a Reader that walks the header and track chunks and
// reports every event to a Handler in file order. A Writer collects Message
// values, splits them into tracks at each TrackChange and serializes the
// whole file, optionally compressing repeated status bytes (running status).
package midi

// Message is one entry of a track as pushed to a Writer or collected from a
// Reader: MetaEvent, MidiEvent, SysExEvent or TrackChange.
type Message interface {
	// Binary returns the wire encoding of the message, delta time included,
	// with the status byte always present.
	Binary() []byte
	// Len returns len(Binary()) without encoding.
	Len() int
	// Delta returns the delta time in ticks.
	Delta() uint32
	String() string
	isMessage()
}

// TrackChange separates tracks in a message sequence. It has no encoding of
// its own; the Writer starts a new track chunk when it sees one.
type TrackChange struct{}

func (TrackChange) isMessage()     {}
func (TrackChange) Delta() uint32  { return 0 }
func (TrackChange) Binary() []byte { return nil }
func (TrackChange) Len() int       { return 0 }
func (TrackChange) String() string { return "track change" }

// Header holds the three fields of the MThd chunk.
type Header struct {
	Format   uint16
	Tracks   uint16
	TimeBase uint16
}

// EndOfTrack returns the meta event that must close every track.
func EndOfTrack(delta uint32) MetaEvent {
	return MetaEvent{DeltaTime: VLQ(delta), Kind: MetaEndOfTrack, Data: []byte{}}
}
