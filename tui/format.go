package tui

import (
	"fmt"

	"golang.org/x/text/transform"

	"go-smf/midi"
)

// Row is a message with its absolute position in the track
type Row struct {
	Tick uint64
	Msg  midi.Message
}

// Rows accumulates delta times into absolute ticks
func Rows(track []midi.Message) []Row {
	rows := make([]Row, 0, len(track))
	var tick uint64
	for _, m := range track {
		tick += uint64(m.Delta())
		rows = append(rows, Row{Tick: tick, Msg: m})
	}
	return rows
}

// Summary is the one-line text for a message. Text meta events are decoded
// with dec when it is non-nil.
func Summary(m midi.Message, dec transform.Transformer) string {
	switch m := m.(type) {
	case midi.MetaEvent:
		if m.Kind.IsText() {
			if s, err := m.Text(dec); err == nil {
				return fmt.Sprintf("%s %q", m.Kind, s)
			}
		}
		if _, bpm, ok := m.Tempo(); ok {
			return fmt.Sprintf("%s %.2f bpm", m.Kind, bpm)
		}
		if num, den, ok := m.TimeSignature(); ok {
			return fmt.Sprintf("%s %d/%d", m.Kind, num, den)
		}
		return fmt.Sprintf("%s % x", m.Kind, m.Data)
	case midi.MidiEvent:
		return m.Event.String()
	case midi.SysExEvent:
		return fmt.Sprintf("SysEx %s % x", m.Kind, m.Data)
	}
	return m.String()
}

// Detail describes the wire bytes of a message; voice events also get
// gomidi's reading of them
func Detail(m midi.Message) string {
	s := fmt.Sprintf("bytes: % x", m.Binary())
	if ev, ok := m.(midi.MidiEvent); ok {
		s += "  gomidi: " + midi.Describe(ev.Event)
	}
	return s
}
