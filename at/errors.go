package at

import "errors"

var (
	// ErrTimeout is returned when the modem does not produce the expected
	// reply before the active timeout elapses.
	ErrTimeout = errors.New("at: reply timeout")

	// ErrUnexpectedReply is returned when a complete reply arrived but it
	// is not the one the command expects (for example ERROR instead of OK).
	ErrUnexpectedReply = errors.New("at: unexpected reply")

	// ErrMalformedReply is returned when a reply has the wrong shape for
	// the requested field: wrong length, or non-hex or non-decimal content.
	ErrMalformedReply = errors.New("at: malformed reply")
)
