package midi

import "fmt"

// SysExKind is the status byte of a system exclusive event.
type SysExKind uint8

const (
	SysExF0 SysExKind = 0xF0 // start of a system exclusive message
	SysExF7 SysExKind = 0xF7 // continuation or escaped bytes
)

func (k SysExKind) String() string {
	switch k {
	case SysExF0:
		return "F0"
	case SysExF7:
		return "F7"
	}
	return fmt.Sprintf("Unknown(%#02x)", uint8(k))
}

// SysExEvent is a system exclusive event. For F0 events a leading 0xF0 in
// Data is dropped on encode, and decoding never puts it back.
type SysExEvent struct {
	DeltaTime VLQ
	Kind      SysExKind
	Data      []byte
}

func (SysExEvent) isMessage() {}

// Delta returns the delta time in ticks.
func (m SysExEvent) Delta() uint32 { return uint32(m.DeltaTime) }

// Payload returns the bytes that follow the length on the wire.
func (m SysExEvent) Payload() []byte {
	if m.Kind == SysExF0 && len(m.Data) > 0 && m.Data[0] == byte(SysExF0) {
		return m.Data[1:]
	}
	return m.Data
}

func (m SysExEvent) Binary() []byte {
	payload := m.Payload()
	buf := make([]byte, 0, m.Len())
	buf = m.DeltaTime.appendTo(buf)
	buf = append(buf, byte(m.Kind))
	buf = VLQ(len(payload)).appendTo(buf)
	return append(buf, payload...)
}

func (m SysExEvent) Len() int {
	n := len(m.Payload())
	return m.DeltaTime.Len() + 1 + VLQ(n).Len() + n
}

func (m SysExEvent) String() string {
	return fmt.Sprintf("delta=%d sysex %s % x", m.DeltaTime, m.Kind, m.Data)
}
