package modem

import (
	"errors"

	"i4.energy/across/sigfox/at"
)

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// that has not been successfully initialized.
	//
	// This can occur if initialization failed or if the Modem was not created
	// via New.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Modem that has
	// already been closed, and by every operation after Close.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrInvalidTimeout is returned by Build when the extended timeout is
	// shorter than the default one.
	ErrInvalidTimeout = errors.New("extended timeout shorter than default timeout")

	// ErrFrameLength is returned by SendFrame for an empty payload or one
	// longer than MaxFrameLength. Nothing is written to the transport.
	ErrFrameLength = errors.New("frame length out of range")

	// ErrInvalidPowerMode is returned by SetPowerMode for a mode outside
	// the known set. Nothing is written to the transport.
	ErrInvalidPowerMode = errors.New("invalid power mode")

	// ErrRepeatMismatch is returned by SetTransmitRepeat when the modem
	// accepted the new value but reports a different one on read-back.
	ErrRepeatMismatch = errors.New("transmit repeat read-back mismatch")
)

// Reply errors reported by the underlying parser. They are re-exported so
// callers only need this package to tell failures apart.
var (
	// ErrTimeout means no matching reply arrived within the active timeout.
	ErrTimeout = at.ErrTimeout
	// ErrUnexpectedReply means a complete reply arrived but was not the
	// expected one, e.g. ERROR instead of OK.
	ErrUnexpectedReply = at.ErrUnexpectedReply
	// ErrMalformedReply means a reply could not be decoded.
	ErrMalformedReply = at.ErrMalformedReply
)
