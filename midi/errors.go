package midi

import "github.com/pkg/errors"

// Decode and encode failures. Returned errors wrap one of these with the byte
// offset where decoding stopped, so match them with errors.Is.
var (
	ErrFormat            = errors.New("malformed midi file")
	ErrUnexpectedTag     = errors.New("unexpected chunk tag")
	ErrTruncatedInput    = errors.New("truncated input")
	ErrUnsupportedFormat = errors.New("unsupported smf format")
	ErrUnsupportedValue  = errors.New("value out of range")
)

func errAt(err error, offset int, format string, args ...any) error {
	return errors.Wrapf(err, "offset %d: "+format, append([]any{offset}, args...)...)
}
