package midi

import "fmt"

// Channel voice status nibbles.
const (
	StatusNoteOff               = 0x80
	StatusNoteOn                = 0x90
	StatusPolyphonicKeyPressure = 0xA0
	StatusControlChange         = 0xB0
	StatusProgramChange         = 0xC0
	StatusChannelPressure       = 0xD0
	StatusPitchBendChange       = 0xE0

	typeMask    = 0xF0
	channelMask = 0x0F
	dataMask    = 0x7F
)

// PitchBendCenter is the wire value of an unbent wheel.
const PitchBendCenter = 8192

// VoiceEvent is a channel voice message. The concrete types are NoteOff,
// NoteOn, PolyphonicKeyPressure, ControlChange, ProgramChange,
// ChannelPressure, PitchBendChange and UnknownVoice.
type VoiceEvent interface {
	// Status returns the status byte, type nibble | channel.
	Status() byte
	// Binary returns the status byte followed by the parameter bytes.
	Binary() []byte
	Len() int
	String() string
	isVoice()
}

type NoteOff struct {
	Channel  uint8
	Note     uint8
	Velocity uint8
}

func (NoteOff) isVoice()         {}
func (e NoteOff) Status() byte   { return StatusNoteOff | e.Channel&channelMask }
func (e NoteOff) Len() int       { return 3 }
func (e NoteOff) Binary() []byte { return []byte{e.Status(), e.Note & dataMask, e.Velocity & dataMask} }
func (e NoteOff) String() string {
	return fmt.Sprintf("NoteOff ch=%d note=%d vel=%d", e.Channel, e.Note, e.Velocity)
}

type NoteOn struct {
	Channel  uint8
	Note     uint8
	Velocity uint8
}

func (NoteOn) isVoice()         {}
func (e NoteOn) Status() byte   { return StatusNoteOn | e.Channel&channelMask }
func (e NoteOn) Len() int       { return 3 }
func (e NoteOn) Binary() []byte { return []byte{e.Status(), e.Note & dataMask, e.Velocity & dataMask} }
func (e NoteOn) String() string {
	return fmt.Sprintf("NoteOn ch=%d note=%d vel=%d", e.Channel, e.Note, e.Velocity)
}

type PolyphonicKeyPressure struct {
	Channel  uint8
	Note     uint8
	Pressure uint8
}

func (PolyphonicKeyPressure) isVoice()       {}
func (e PolyphonicKeyPressure) Status() byte { return StatusPolyphonicKeyPressure | e.Channel&channelMask }
func (e PolyphonicKeyPressure) Len() int     { return 3 }
func (e PolyphonicKeyPressure) Binary() []byte {
	return []byte{e.Status(), e.Note & dataMask, e.Pressure & dataMask}
}
func (e PolyphonicKeyPressure) String() string {
	return fmt.Sprintf("PolyphonicKeyPressure ch=%d note=%d pressure=%d", e.Channel, e.Note, e.Pressure)
}

type ControlChange struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

func (ControlChange) isVoice()       {}
func (e ControlChange) Status() byte { return StatusControlChange | e.Channel&channelMask }
func (e ControlChange) Len() int     { return 3 }
func (e ControlChange) Binary() []byte {
	return []byte{e.Status(), e.Controller & dataMask, e.Value & dataMask}
}
func (e ControlChange) String() string {
	return fmt.Sprintf("ControlChange ch=%d control=%d value=%d", e.Channel, e.Controller, e.Value)
}

type ProgramChange struct {
	Channel uint8
	Program uint8
}

func (ProgramChange) isVoice()         {}
func (e ProgramChange) Status() byte   { return StatusProgramChange | e.Channel&channelMask }
func (e ProgramChange) Len() int       { return 2 }
func (e ProgramChange) Binary() []byte { return []byte{e.Status(), e.Program & dataMask} }
func (e ProgramChange) String() string {
	return fmt.Sprintf("ProgramChange ch=%d program=%d", e.Channel, e.Program)
}

type ChannelPressure struct {
	Channel  uint8
	Pressure uint8
}

func (ChannelPressure) isVoice()         {}
func (e ChannelPressure) Status() byte   { return StatusChannelPressure | e.Channel&channelMask }
func (e ChannelPressure) Len() int       { return 2 }
func (e ChannelPressure) Binary() []byte { return []byte{e.Status(), e.Pressure & dataMask} }
func (e ChannelPressure) String() string {
	return fmt.Sprintf("ChannelPressure ch=%d pressure=%d", e.Channel, e.Pressure)
}

// PitchBendChange carries the wheel position centered on zero, so Value
// ranges from -8192 to 8191.
type PitchBendChange struct {
	Channel uint8
	Value   int16
}

func (PitchBendChange) isVoice()       {}
func (e PitchBendChange) Status() byte { return StatusPitchBendChange | e.Channel&channelMask }
func (e PitchBendChange) Len() int     { return 3 }

// Binary emits the 14 bit wire value least significant byte first.
func (e PitchBendChange) Binary() []byte {
	w := e.Wire()
	return []byte{e.Status(), byte(w & dataMask), byte(w >> 7 & dataMask)}
}

// Wire returns the unsigned 14 bit value sent on the wire.
func (e PitchBendChange) Wire() uint16 {
	return uint16(int32(e.Value)+PitchBendCenter) & 0x3FFF
}

func (e PitchBendChange) String() string {
	return fmt.Sprintf("PitchBendChange ch=%d value=%d", e.Channel, e.Value)
}

// UnknownVoice is any status byte outside the channel voice range that
// reached the event builder. It has no parameter bytes.
type UnknownVoice struct {
	StatusByte byte
}

func (UnknownVoice) isVoice()         {}
func (e UnknownVoice) Status() byte   { return e.StatusByte }
func (e UnknownVoice) Channel() uint8 { return e.StatusByte & channelMask }
func (e UnknownVoice) Len() int       { return 1 }
func (e UnknownVoice) Binary() []byte { return []byte{e.StatusByte} }
func (e UnknownVoice) String() string {
	return fmt.Sprintf("Unknown status=%#02x", e.StatusByte)
}

// MidiEvent is a channel voice event with its delta time.
type MidiEvent struct {
	DeltaTime VLQ
	Event     VoiceEvent
}

func (MidiEvent) isMessage() {}

// Delta returns the delta time in ticks.
func (m MidiEvent) Delta() uint32 { return uint32(m.DeltaTime) }

func (m MidiEvent) Binary() []byte {
	return append(m.DeltaTime.appendTo(make([]byte, 0, m.Len())), m.Event.Binary()...)
}

func (m MidiEvent) Len() int {
	return m.DeltaTime.Len() + m.Event.Len()
}

func (m MidiEvent) String() string {
	return fmt.Sprintf("delta=%d %s", m.DeltaTime, m.Event)
}
