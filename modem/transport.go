package modem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -destination=mock_transport_test.go -package=modem . Transport,Dialer

// DefaultBaudRate is the fixed UART speed of Wisol Sigfox modems.
const DefaultBaudRate = 9600

// Transport represents an established, bidirectional byte stream to a Sigfox
// modem.
//
// A Transport is assumed to be already connected and ready for use. Besides
// the I/O primitives it lets the driver change the read timeout between
// commands: a Read that returns no data and a nil error is a timeout.
// go.bug.st/serial ports satisfy this interface as is.
type Transport interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Dialer opens a Transport to a Sigfox modem.
//
// Dialer abstracts how the modem connection is created (for example, via a
// serial port or a test double) and is used during modem construction only.
// Once a Transport is obtained, the Dialer is no longer needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport.
	// It returns an error if the transport cannot be established.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens a Sigfox modem over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. "/dev/ttyUSB0".
	PortName string
	// BaudRate overrides DefaultBaudRate when Mode is nil.
	BaudRate int
	// Mode overrides the default 8N1 framing entirely.
	Mode *serial.Mode
}

// Dial opens the serial port. The context is only checked before opening;
// opening a port does not block.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("sigfox: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("sigfox: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	port, err := serial.Open(d.PortName, d.mode())
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", d.PortName, err)
	}
	return port, nil
}

// mode returns the explicit Mode, or 8N1 at BaudRate (DefaultBaudRate when
// unset).
func (d SerialDialer) mode() *serial.Mode {
	if d.Mode != nil {
		return d.Mode
	}
	baud := d.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}
