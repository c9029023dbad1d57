package midi

import "fmt"

// MetaStatus is the status byte shared by every meta event.
const MetaStatus = 0xFF

// MetaKind is the type byte following 0xFF. Values without a named constant
// are unknown kinds and are carried through unchanged.
type MetaKind uint8

const (
	MetaSequenceNumber      MetaKind = 0x00
	MetaText                MetaKind = 0x01
	MetaCopyrightNotice     MetaKind = 0x02
	MetaSequenceOrTrackName MetaKind = 0x03
	MetaInstrumentName      MetaKind = 0x04
	MetaLyric               MetaKind = 0x05
	MetaMarker              MetaKind = 0x06
	MetaCuePoint            MetaKind = 0x07
	MetaMIDIChannelPrefix   MetaKind = 0x20
	MetaEndOfTrack          MetaKind = 0x2F
	MetaSetTempo            MetaKind = 0x51
	MetaSMPTEOffset         MetaKind = 0x54
	MetaTimeSignature       MetaKind = 0x58
	MetaKeySignature        MetaKind = 0x59
	MetaSequencerSpecific   MetaKind = 0x7F
)

var metaNames = map[MetaKind]string{
	MetaSequenceNumber:      "SequenceNumber",
	MetaText:                "TextEvent",
	MetaCopyrightNotice:     "CopyrightNotice",
	MetaSequenceOrTrackName: "SequenceOrTrackName",
	MetaInstrumentName:      "InstrumentName",
	MetaLyric:               "Lyric",
	MetaMarker:              "Marker",
	MetaCuePoint:            "CuePoint",
	MetaMIDIChannelPrefix:   "MIDIChannelPrefix",
	MetaEndOfTrack:          "EndOfTrack",
	MetaSetTempo:            "SetTempo",
	MetaSMPTEOffset:         "SMPTEOffset",
	MetaTimeSignature:       "TimeSignature",
	MetaKeySignature:        "KeySignature",
	MetaSequencerSpecific:   "SequencerSpecificMetaEvent",
}

// Known reports whether k is one of the named meta kinds.
func (k MetaKind) Known() bool {
	_, ok := metaNames[k]
	return ok
}

// IsText reports whether the payload of k is text (0x01-0x07).
func (k MetaKind) IsText() bool {
	return k >= MetaText && k <= MetaCuePoint
}

func (k MetaKind) String() string {
	if name, ok := metaNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%#02x)", uint8(k))
}

// MetaEvent is a 0xFF event with a length-prefixed payload.
type MetaEvent struct {
	DeltaTime VLQ
	Kind      MetaKind
	Data      []byte
}

func (MetaEvent) isMessage() {}

// Delta returns the delta time in ticks.
func (m MetaEvent) Delta() uint32 { return uint32(m.DeltaTime) }

// Binary encodes the event: delta, 0xFF, kind, length, data.
func (m MetaEvent) Binary() []byte {
	buf := make([]byte, 0, m.Len())
	buf = m.DeltaTime.appendTo(buf)
	buf = append(buf, MetaStatus, byte(m.Kind))
	buf = VLQ(len(m.Data)).appendTo(buf)
	return append(buf, m.Data...)
}

func (m MetaEvent) Len() int {
	return m.DeltaTime.Len() + 2 + VLQ(len(m.Data)).Len() + len(m.Data)
}

func (m MetaEvent) String() string {
	if m.Kind.IsText() {
		return fmt.Sprintf("delta=%d meta %s %q", m.DeltaTime, m.Kind, m.Data)
	}
	return fmt.Sprintf("delta=%d meta %s % x", m.DeltaTime, m.Kind, m.Data)
}
