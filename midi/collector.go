package midi

import "bytes"

// Collector is a Handler that stores every callback as a Message, with a
// TrackChange between tracks. Its Messages can be pushed to a Writer as is.
type Collector struct {
	FileHeader Header
	Messages   []Message
}

func (c *Collector) Header(format, tracks, timeBase uint16) {
	c.FileHeader = Header{Format: format, Tracks: tracks, TimeBase: timeBase}
}

func (c *Collector) MetaEvent(delta uint32, kind MetaKind, data []byte) {
	c.Messages = append(c.Messages, MetaEvent{DeltaTime: VLQ(delta), Kind: kind, Data: data})
}

func (c *Collector) MidiEvent(delta uint32, ev VoiceEvent) {
	c.Messages = append(c.Messages, MidiEvent{DeltaTime: VLQ(delta), Event: ev})
}

func (c *Collector) SysExEvent(delta uint32, kind SysExKind, data []byte) {
	c.Messages = append(c.Messages, SysExEvent{DeltaTime: VLQ(delta), Kind: kind, Data: data})
}

func (c *Collector) TrackChange() {
	c.Messages = append(c.Messages, TrackChange{})
}

// Tracks splits the collected messages at each TrackChange.
func (c *Collector) Tracks() [][]Message {
	return SplitTracks(c.Messages)
}

// Decode reads a whole file held in data.
func Decode(data []byte) (Header, []Message, error) {
	var c Collector
	err := NewReader(&c, data).Read()
	return c.FileHeader, c.Messages, err
}

// DecodeFile reads the file at path.
func DecodeFile(path string) (Header, []Message, error) {
	var c Collector
	err := ReadFile(&c, path)
	return c.FileHeader, c.Messages, err
}

// Encode writes messages with the given settings and returns the file bytes.
func Encode(timeBase uint16, runningStatus bool, messages ...Message) ([]byte, error) {
	w := NewWriter()
	w.SetTimeBase(timeBase)
	w.SetRunningStatus(runningStatus)
	w.PushAll(messages...)
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
