package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// ToGomidi converts ev to a gomidi message, for sending it to a port or
// printing it with gomidi's formatting.
func ToGomidi(ev VoiceEvent) gomidi.Message {
	switch e := ev.(type) {
	case NoteOff:
		return gomidi.NoteOffVelocity(e.Channel, e.Note, e.Velocity)
	case NoteOn:
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	case PolyphonicKeyPressure:
		return gomidi.PolyAfterTouch(e.Channel, e.Note, e.Pressure)
	case ControlChange:
		return gomidi.ControlChange(e.Channel, e.Controller, e.Value)
	case ProgramChange:
		return gomidi.ProgramChange(e.Channel, e.Program)
	case ChannelPressure:
		return gomidi.AfterTouch(e.Channel, e.Pressure)
	case PitchBendChange:
		return gomidi.Pitchbend(e.Channel, e.Value)
	}
	return gomidi.Message(ev.Binary())
}

// FromGomidi converts a channel voice gomidi message. It reports false for
// anything else, including running-status fragments.
func FromGomidi(msg gomidi.Message) (VoiceEvent, bool) {
	b := []byte(msg)
	if len(b) == 0 || b[0] < 0x80 || b[0] >= 0xF0 {
		return nil, false
	}
	builder := NewEventBuilder(b[0])
	for _, d := range b[1:] {
		builder.Push(d)
	}
	if builder.Shortage() > 0 {
		return nil, false
	}
	return builder.Build(), true
}

// SysExToGomidi wraps the payload of an F0 event in F0 ... F7 framing as
// gomidi expects for realtime transmission. F7 events carry escaped bytes
// rather than a message start and report false.
func SysExToGomidi(m SysExEvent) (gomidi.Message, bool) {
	if m.Kind != SysExF0 {
		return nil, false
	}
	payload := m.Payload()
	if n := len(payload); n > 0 && payload[n-1] == byte(SysExF7) {
		payload = payload[:n-1]
	}
	return gomidi.SysEx(payload), true
}

// Describe renders ev using gomidi's message formatting.
func Describe(ev VoiceEvent) string {
	return ToGomidi(ev).String()
}
