package modem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"i4.energy/across/sigfox/at"
)

// Modem represents a Wisol Sigfox modem that communicates via AT commands.
//
// Every operation is a synchronous exchange: the command is written, then
// the calling goroutine blocks until the expected reply arrives or the active
// timeout expires. Operations are serialized by an internal mutex, so at most
// one command is in flight on the transport at any time.
type Modem struct {
	mu sync.Mutex

	// transport provides the physical connection to the modem
	transport Transport
	// config contains the modem configuration settings
	config Config
	// logger is the diagnostic side channel
	logger *slog.Logger
	// parser matches replies; rebuilt by every Init
	parser *at.Parser
	// closed indicates if the modem has been shut down
	closed bool
	// restorePending is set when the default timeout could not be put back
	// after a transmission; the next exchange retries it.
	restorePending bool
}

// PollConfig defines configuration for polling operations like waiting for
// the modem to wake up.
type PollConfig struct {
	// Interval is the time between polling attempts
	Interval time.Duration
	// Timeout is the maximum time to wait for the condition
	Timeout time.Duration
	// MaxRetries is the maximum number of polling attempts
	MaxRetries int
}

// New creates a new Modem instance with the given configuration.
// It establishes the transport connection and checks that the modem answers.
//
// Returns an error if the transport connection or modem initialization
// fails.
func New(ctx context.Context, config Config) (*Modem, error) {
	if config.Dialer == nil {
		return nil, ErrNoDialer
	}
	config.setDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}

	m := &Modem{
		transport: transport,
		config:    config,
		logger:    config.Logger,
	}

	initCtx := ctx
	if config.InitTimeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, config.InitTimeout)
		defer cancel()
	}

	if err := m.Init(initCtx, config.Debug); err != nil {
		if cerr := transport.Close(); cerr != nil {
			m.logger.Error("failed to close transport", "error", cerr)
		}
		return nil, fmt.Errorf("initialize modem: %w", err)
	}

	return m, nil
}

// Init resets the reply parser and checks communication with the modem.
// debug enables the echo of all traffic to the logger.
//
// Init may be called again at any time; partially received replies from
// earlier exchanges are discarded.
func (m *Modem) Init(ctx context.Context, debug bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrAlreadyClosed
	}
	if m.transport == nil {
		return ErrNotInitialized
	}

	m.logger.Debug("init", "profile", m.config.Profile.Name, "debug", debug)

	p := at.NewParser(m.transport, at.Options{
		Profile: m.config.Profile,
		Echo:    debug,
		Logger:  m.logger,
	})
	if err := p.SetTimeout(m.config.Timeout); err != nil {
		return err
	}
	m.parser = p
	m.restorePending = false

	if err := m.expectOK(ctx, at.CmdAt); err != nil {
		m.logger.Error("no response", "error", err)
		return fmt.Errorf("modem not responding: %w", err)
	}

	m.logger.Info("alive")
	return nil
}

// Timeout returns the reply timeout currently installed.
func (m *Modem) Timeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.parser == nil {
		return 0
	}
	return m.parser.Timeout()
}

// Close releases the transport. After calling Close(), the modem cannot be
// reused.
func (m *Modem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrAlreadyClosed
	}

	m.closed = true

	if m.transport != nil {
		return m.transport.Close()
	}

	return nil
}

// WaitReady polls the modem with AT until it acknowledges. This is needed
// after a reset or a wake-up break, when the modem ignores commands for a
// short while.
func (m *Modem) WaitReady(ctx context.Context, config PollConfig) error {
	var (
		pollInterval = config.Interval
		timeout      = config.Timeout
		maxRetries   = config.MaxRetries
	)

	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = max(int(timeout/pollInterval), 1)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	retries := 0

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("modem not ready: %w", ctx.Err())
		case <-ticker.C:
			retries++
			if retries > maxRetries {
				return fmt.Errorf("modem not ready after %d retries", maxRetries)
			}
			err := m.ping(ctx)
			if err == nil {
				return nil
			}
			// Fail fast on critical errors
			if errors.Is(err, ErrAlreadyClosed) || errors.Is(err, ErrNotInitialized) {
				return fmt.Errorf("ready check failed: %w", err)
			}
		}
	}
}

func (m *Modem) ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return err
	}
	return m.expectOK(ctx, at.CmdAt)
}

// ready reports whether operations may use the parser and puts back the
// default timeout if an earlier restore failed. Callers hold mu.
func (m *Modem) ready() error {
	if m.closed {
		return ErrAlreadyClosed
	}
	if m.parser == nil {
		return ErrNotInitialized
	}
	if m.restorePending {
		if err := m.parser.SetTimeout(m.config.Timeout); err != nil {
			return fmt.Errorf("restore default timeout: %w", err)
		}
		m.restorePending = false
	}
	return nil
}

// expectOK sends cmd and waits for the OK acknowledgment.
func (m *Modem) expectOK(ctx context.Context, cmd string) error {
	if err := m.parser.Send(ctx, cmd); err != nil {
		return err
	}
	if err := m.parser.ExpectOK(ctx); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

// query sends cmd and returns the first reply line.
func (m *Modem) query(ctx context.Context, cmd string) (string, error) {
	if err := m.parser.Send(ctx, cmd); err != nil {
		return "", err
	}
	line, err := m.parser.ReadLine(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	return line, nil
}

// withExtendedTimeout runs fn with the extended timeout installed. The
// default timeout is restored on every exit path; if the port refuses, the
// restore is retried before the next exchange.
func (m *Modem) withExtendedTimeout(fn func() error) (err error) {
	if err := m.parser.SetTimeout(m.config.ExtendedTimeout); err != nil {
		return err
	}
	defer func() {
		if rerr := m.parser.SetTimeout(m.config.Timeout); rerr != nil {
			m.logger.Error("failed to restore timeout", "error", rerr)
			m.restorePending = true
			if err == nil {
				err = rerr
			}
		}
	}()
	return fn()
}
