package at

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// readChunk is the size of a single transport read.
const readChunk = 256

// Port is the byte stream a Parser drives. A Read returning 0 bytes and a
// nil error means the read timeout expired, as with go.bug.st/serial.
type Port interface {
	io.ReadWriter
	SetReadTimeout(t time.Duration) error
}

// Options configures a Parser.
type Options struct {
	// Profile selects the line-ending convention.
	Profile Profile
	// Echo logs every byte sent and received at debug level.
	Echo bool
	// Logger receives the echo output. Nil disables echo.
	Logger *slog.Logger
}

// Parser sends commands over a Port and matches the replies. It keeps the
// bytes received but not yet consumed, so a reply split over several reads,
// or several replies delivered by one read, are both handled.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	port    Port
	profile Profile
	timeout time.Duration
	echo    bool
	logger  *slog.Logger

	buf   []byte
	chunk []byte
}

// NewParser returns a Parser with an empty receive buffer. The read timeout
// is not touched; call SetTimeout before the first exchange.
func NewParser(port Port, opts Options) *Parser {
	profile := opts.Profile
	if profile.CommandTerminator == "" {
		profile = ProfileA
	}
	return &Parser{
		port:    port,
		profile: profile,
		echo:    opts.Echo && opts.Logger != nil,
		logger:  opts.Logger,
		chunk:   make([]byte, readChunk),
	}
}

// Profile returns the wire profile in use.
func (p *Parser) Profile() Profile {
	return p.profile
}

// Timeout returns the active reply timeout.
func (p *Parser) Timeout() time.Duration {
	return p.timeout
}

// SetTimeout installs d as the reply timeout, both in the parser and on the
// port. On error the previous timeout stays active.
func (p *Parser) SetTimeout(d time.Duration) error {
	if err := p.port.SetReadTimeout(d); err != nil {
		return fmt.Errorf("set read timeout %s: %w", d, err)
	}
	p.timeout = d
	return nil
}

// Send writes cmd followed by the profile's command terminator as a single
// write. Bytes left unread by the previous exchange are dropped first.
func (p *Parser) Send(ctx context.Context, cmd string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(p.buf) > 0 && p.echo {
		p.logger.Debug("discarding unread bytes", "data", string(p.buf))
	}
	p.buf = p.buf[:0]
	return p.write([]byte(cmd + p.profile.CommandTerminator))
}

// SendRaw writes a single byte with no terminator.
func (p *Parser) SendRaw(ctx context.Context, b byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.write([]byte{b})
}

// ReadLine returns the next non-empty reply line without its terminator.
func (p *Parser) ReadLine(ctx context.Context) (string, error) {
	deadline := time.Now().Add(p.timeout)
	for {
		for {
			advance, token, _ := Splitter(p.buf, false)
			if advance == 0 {
				break
			}
			line := string(token)
			p.buf = p.buf[advance:]
			if line != "" {
				return line, nil
			}
		}
		if err := p.fill(ctx, deadline); err != nil {
			return "", err
		}
	}
}

// ExpectOK waits for the OK acknowledgment. Any other complete line is
// reported as ErrUnexpectedReply.
func (p *Parser) ExpectOK(ctx context.Context) error {
	if p.profile.AckTerminated {
		line, err := p.ReadLine(ctx)
		if err != nil {
			return err
		}
		if line != OK {
			return fmt.Errorf("%w: want %s, got %q", ErrUnexpectedReply, OK, line)
		}
		return nil
	}

	deadline := time.Now().Add(p.timeout)
	for {
		p.buf = p.buf[trimLeadingBlank(p.buf):]
		if len(p.buf) >= len(OK) {
			if bytes.HasPrefix(p.buf, []byte(OK)) {
				p.buf = p.buf[len(OK):]
				return nil
			}
			if advance, token, _ := Splitter(p.buf, false); advance > 0 {
				line := string(token)
				p.buf = p.buf[advance:]
				return fmt.Errorf("%w: want %s, got %q", ErrUnexpectedReply, OK, line)
			}
		}
		if err := p.fill(ctx, deadline); err != nil {
			return err
		}
	}
}

func (p *Parser) write(b []byte) error {
	if p.echo {
		p.logger.Debug("tx", "data", string(b))
	}
	n, err := p.port.Write(b)
	if err != nil {
		return fmt.Errorf("write %q: %w", b, err)
	}
	if n != len(b) {
		return fmt.Errorf("write %q: %w", b, io.ErrShortWrite)
	}
	return nil
}

// fill performs one read and appends the result to the receive buffer.
func (p *Parser) fill(ctx context.Context, deadline time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !time.Now().Before(deadline) {
		return fmt.Errorf("%w after %s", ErrTimeout, p.timeout)
	}

	n, err := p.port.Read(p.chunk)
	if n > 0 {
		if p.echo {
			p.logger.Debug("rx", "data", string(p.chunk[:n]))
		}
		p.buf = append(p.buf, p.chunk[:n]...)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}
	return fmt.Errorf("%w after %s", ErrTimeout, p.timeout)
}
