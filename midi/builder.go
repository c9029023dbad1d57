package midi

// EventBuilder collects the parameter bytes of a channel voice event. The
// Reader keeps feeding bytes while Shortage is non-zero.
type EventBuilder struct {
	status   byte
	shortage uint8
	data     [2]byte
	n        int
}

// NewEventBuilder starts an event for status. The number of parameter bytes
// follows from the high nibble.
func NewEventBuilder(status byte) *EventBuilder {
	return &EventBuilder{status: status, shortage: paramCount(status)}
}

func paramCount(status byte) uint8 {
	switch status & typeMask {
	case StatusNoteOff, StatusNoteOn, StatusPolyphonicKeyPressure, StatusControlChange, StatusPitchBendChange:
		return 2
	case StatusProgramChange, StatusChannelPressure:
		return 1
	}
	return 0
}

// Push appends a parameter byte. Bytes beyond the required count are ignored.
func (b *EventBuilder) Push(data byte) {
	if b.shortage == 0 {
		return
	}
	b.data[b.n] = data & dataMask
	b.n++
	b.shortage--
}

// Shortage returns how many parameter bytes are still missing.
func (b *EventBuilder) Shortage() uint8 {
	return b.shortage
}

// Status returns the status byte the builder was started with.
func (b *EventBuilder) Status() byte {
	return b.status
}

// Build returns the event. Missing parameter bytes read as zero.
func (b *EventBuilder) Build() VoiceEvent {
	ch := b.status & channelMask
	switch b.status & typeMask {
	case StatusNoteOff:
		return NoteOff{Channel: ch, Note: b.data[0], Velocity: b.data[1]}
	case StatusNoteOn:
		return NoteOn{Channel: ch, Note: b.data[0], Velocity: b.data[1]}
	case StatusPolyphonicKeyPressure:
		return PolyphonicKeyPressure{Channel: ch, Note: b.data[0], Pressure: b.data[1]}
	case StatusControlChange:
		return ControlChange{Channel: ch, Controller: b.data[0], Value: b.data[1]}
	case StatusProgramChange:
		return ProgramChange{Channel: ch, Program: b.data[0]}
	case StatusChannelPressure:
		return ChannelPressure{Channel: ch, Pressure: b.data[0]}
	case StatusPitchBendChange:
		w := int32(b.data[0]) | int32(b.data[1])<<7
		return PitchBendChange{Channel: ch, Value: int16(w - PitchBendCenter)}
	}
	return UnknownVoice{StatusByte: b.status}
}
