package midi

// Tag is the four byte identifier that opens every chunk.
type Tag [4]byte

var (
	TagHeader = Tag{'M', 'T', 'h', 'd'}
	TagTrack  = Tag{'M', 'T', 'r', 'k'}
)

// Binary returns the tag bytes.
func (t Tag) Binary() []byte {
	return t[:]
}

func (t Tag) String() string {
	return string(t[:])
}
