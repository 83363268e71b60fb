package modem

import (
	"context"
	"fmt"

	"i4.energy/across/sigfox/at"
)

const (
	// IDLength is the size of a Sigfox device ID in bytes.
	IDLength = 4
	// PACLength is the size of a porting authorization code in bytes.
	PACLength = 8
	// MaxFrameLength is the largest uplink payload in bytes.
	MaxFrameLength = 12
)

// ID is the Sigfox device identifier.
type ID [IDLength]byte

func (id ID) String() string {
	return at.EncodeHex(id[:])
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// PAC is the porting authorization code needed to move the device to
// another Sigfox contract.
type PAC [PACLength]byte

func (p PAC) String() string {
	return at.EncodeHex(p[:])
}

func (p PAC) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// PowerMode selects the modem power state.
type PowerMode uint8

const (
	PowerReset PowerMode = iota
	PowerSleep
	PowerDeepSleep
)

var powerModeNames = map[PowerMode]string{
	PowerReset:     "reset",
	PowerSleep:     "sleep",
	PowerDeepSleep: "deep-sleep",
}

func (p PowerMode) String() string {
	if name, ok := powerModeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PowerMode(%d)", uint8(p))
}

// ParsePowerMode returns the mode named by s ("reset", "sleep", "deep-sleep").
func ParsePowerMode(s string) (PowerMode, error) {
	for mode, name := range powerModeNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPowerMode, s)
}

// Downlink is a message received from the network after an uplink.
type Downlink struct {
	// Text is the reply exactly as the modem printed it, without the RX= marker.
	Text string
}

// Bytes decodes the downlink payload.
func (d Downlink) Bytes() ([]byte, error) {
	return at.DecodeDownlink(d.Text)
}

// ID reads the device identifier.
func (m *Modem) ID(ctx context.Context) (ID, error) {
	var id ID
	m.logger.Debug("getting ID")
	if err := m.readHexTuple(ctx, at.CmdID, id[:]); err != nil {
		return ID{}, fmt.Errorf("query ID: %w", err)
	}
	m.logger.Info("ID", "id", id.String())
	return id, nil
}

// PAC reads the porting authorization code.
func (m *Modem) PAC(ctx context.Context) (PAC, error) {
	var pac PAC
	m.logger.Debug("getting PAC")
	if err := m.readHexTuple(ctx, at.CmdPAC, pac[:]); err != nil {
		return PAC{}, fmt.Errorf("query PAC: %w", err)
	}
	m.logger.Info("PAC", "pac", pac.String())
	return pac, nil
}

func (m *Modem) readHexTuple(ctx context.Context, cmd string, out []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return err
	}
	line, err := m.query(ctx, cmd)
	if err != nil {
		return err
	}
	b, err := at.ParseHexTuple(line, len(out))
	if err != nil {
		m.logger.Error("couldn't parse reply", "cmd", cmd, "error", err)
		return err
	}
	copy(out, b)
	return nil
}

// SetPowerMode switches the modem power state.
func (m *Modem) SetPowerMode(ctx context.Context, mode PowerMode) error {
	if _, ok := powerModeNames[mode]; !ok {
		return fmt.Errorf("%w: %d", ErrInvalidPowerMode, mode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return err
	}
	m.logger.Debug("setting power mode", "mode", mode.String())
	if err := m.expectOK(ctx, at.CmdPowerModeFor(uint8(mode))); err != nil {
		return fmt.Errorf("set power mode %s: %w", mode, err)
	}
	return nil
}

// Reset performs a software reset.
func (m *Modem) Reset(ctx context.Context) error {
	return m.SetPowerMode(ctx, PowerReset)
}

// SendBreak writes the pseudo break byte that wakes the modem from sleep.
// Deep sleep needs a hardware reset instead. No reply is expected; use
// WaitReady to know when the modem accepts commands again.
func (m *Modem) SendBreak(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return err
	}
	m.logger.Debug("sending break")
	return m.parser.SendRaw(ctx, at.Break)
}

// SendBit transmits a single bit. When downlink is true the modem asks the
// network for a reply and SendBit waits for it; otherwise the returned
// Downlink is nil.
func (m *Modem) SendBit(ctx context.Context, bit, downlink bool) (*Downlink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return nil, err
	}
	m.logger.Debug("sending bit", "bit", bit, "downlink", downlink)

	var dl *Downlink
	err := m.withExtendedTimeout(func() error {
		var err error
		dl, err = m.transmit(ctx, at.CmdSendBitFor(bit, downlink), downlink)
		return err
	})
	if err != nil {
		m.logger.Error("sending failed", "error", err)
		return nil, fmt.Errorf("send bit: %w", err)
	}
	return dl, nil
}

// SendFrame transmits data, 1 to MaxFrameLength bytes, as an uplink frame.
// The length is checked before anything is written. When downlink is true
// SendFrame also waits for the network reply; otherwise the returned
// Downlink is nil.
func (m *Modem) SendFrame(ctx context.Context, data []byte, downlink bool) (*Downlink, error) {
	if len(data) == 0 || len(data) > MaxFrameLength {
		return nil, fmt.Errorf("%w: %d bytes, want 1 to %d", ErrFrameLength, len(data), MaxFrameLength)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return nil, err
	}
	m.logger.Debug("sending frame", "length", len(data), "data", at.EncodeHex(data), "downlink", downlink)

	var dl *Downlink
	err := m.withExtendedTimeout(func() error {
		var err error
		dl, err = m.transmit(ctx, at.CmdSendFrameFor(data, downlink), downlink)
		return err
	})
	if err != nil {
		m.logger.Error("sending failed", "error", err)
		return nil, fmt.Errorf("send frame: %w", err)
	}
	return dl, nil
}

// transmit sends an uplink command, waits for the acknowledgment and, if
// requested, for the downlink line.
func (m *Modem) transmit(ctx context.Context, cmd string, downlink bool) (*Downlink, error) {
	if err := m.expectOK(ctx, cmd); err != nil {
		return nil, err
	}
	m.logger.Info("sent")
	if !downlink {
		return nil, nil
	}

	m.logger.Debug("waiting for downlink")
	line, err := m.parser.ReadLine(ctx)
	if err != nil {
		return nil, fmt.Errorf("await downlink: %w", err)
	}
	text, err := at.ParseDownlink(line)
	if err != nil {
		return nil, fmt.Errorf("await downlink: %w", err)
	}
	m.logger.Info("downlink", "text", text)
	return &Downlink{Text: text}, nil
}

// SetTransmitRepeat sets how many times each frame is repeated over the air
// and reads the value back. A modem reporting a different value than the one
// just set yields ErrRepeatMismatch.
func (m *Modem) SetTransmitRepeat(ctx context.Context, repeats uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return err
	}
	m.logger.Debug("setting transmit repeat", "repeats", repeats)
	if err := m.expectOK(ctx, at.CmdSetRepeatFor(repeats)); err != nil {
		return fmt.Errorf("set transmit repeat: %w", err)
	}

	got, err := m.transmitRepeat(ctx)
	if err != nil {
		return fmt.Errorf("verify transmit repeat: %w", err)
	}
	if got != repeats {
		return fmt.Errorf("%w: set %d, modem reports %d", ErrRepeatMismatch, repeats, got)
	}
	return nil
}

// TransmitRepeat reads the configured number of frame repeats.
func (m *Modem) TransmitRepeat(ctx context.Context) (uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return 0, err
	}
	n, err := m.transmitRepeat(ctx)
	if err != nil {
		return 0, fmt.Errorf("query transmit repeat: %w", err)
	}
	return n, nil
}

func (m *Modem) transmitRepeat(ctx context.Context) (uint8, error) {
	line, err := m.query(ctx, at.CmdGetRepeat)
	if err != nil {
		return 0, err
	}
	return at.ParseUint8(line)
}

// Temperature reads the modem temperature in tenths of a degree Celsius.
func (m *Modem) Temperature(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return 0, err
	}
	m.logger.Debug("getting temperature")
	line, err := m.query(ctx, at.CmdTemperature)
	if err != nil {
		return 0, fmt.Errorf("query temperature: %w", err)
	}
	temp, err := at.ParseInt(line)
	if err != nil {
		return 0, fmt.Errorf("query temperature: %w", err)
	}
	m.logger.Info("temperature", "value", temp)
	return temp, nil
}

// Voltage reads the supply voltage in mV, now and during the last
// transmission. Both values are zero on error.
func (m *Modem) Voltage(ctx context.Context) (current, last int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return 0, 0, err
	}
	m.logger.Debug("getting voltage")

	// first line is the current voltage
	line, err := m.query(ctx, at.CmdVoltage)
	if err != nil {
		return 0, 0, fmt.Errorf("query voltage: %w", err)
	}
	cur, err := at.ParseInt(line)
	if err != nil {
		return 0, 0, fmt.Errorf("query voltage: %w", err)
	}

	// second line is the voltage during the last transmission
	line, err = m.parser.ReadLine(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("query voltage: %w", err)
	}
	lst, err := at.ParseInt(line)
	if err != nil {
		return 0, 0, fmt.Errorf("query voltage: %w", err)
	}

	m.logger.Info("voltage", "current", cur, "last", lst)
	return cur, lst, nil
}
