package modem

import (
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"i4.energy/across/sigfox/at"
)

// TestTransport is a test helper that simulates a Wisol modem in memory.
// Each command written to it queues the reply a real modem would send.
// Reads never block: with nothing queued they report a timeout, like a
// serial port whose read timeout expired.
type TestTransport struct {
	mu       sync.Mutex
	pending  []byte
	replies  map[string][]string
	writes   []string
	timeouts []time.Duration
	repeats  uint8
	closed   bool

	// ID and PAC are returned by AT$I=10 and AT$I=11.
	ID  ID
	PAC PAC
	// Temperature and Voltage answer AT$T? and AT$V?.
	Temperature          int
	Voltage, VoltageLast int
	// Downlink is sent after the OK of an uplink that requests one.
	Downlink string
}

// NewTestTransport creates a simulated modem with plausible defaults.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		replies:     make(map[string][]string),
		repeats:     2,
		ID:          ID{0x00, 0x12, 0xAB, 0x34},
		PAC:         PAC{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF},
		Temperature: 254,
		Voltage:     3300,
		VoltageLast: 3280,
		Downlink:    "RX=48 65 6C 6C 6F 00 00 00",
	}
}

// Reply overrides the reply lines for cmd. No lines means no reply at all.
func (t *TestTransport) Reply(cmd string, lines ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies[cmd] = lines
}

// Writes returns everything written so far, one entry per Write call.
func (t *TestTransport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.writes...)
}

// Timeouts returns every read timeout installed so far.
func (t *TestTransport) Timeouts() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.timeouts...)
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	t.writes = append(t.writes, string(p))

	cmd := strings.TrimRight(string(p), at.CRLF)
	if cmd == "" || p[0] == at.Break {
		return len(p), nil
	}
	for _, line := range t.respond(cmd) {
		t.pending = append(t.pending, line+at.CRLF...)
	}
	return len(p), nil
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.EOF
	}
	n = copy(p, t.pending)
	t.pending = t.pending[n:]
	return n, nil
}

func (t *TestTransport) SetReadTimeout(d time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeouts = append(t.timeouts, d)
	return nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// respond returns the reply lines for cmd. Callers hold mu.
func (t *TestTransport) respond(cmd string) []string {
	if lines, ok := t.replies[cmd]; ok {
		return lines
	}

	switch {
	case cmd == at.CmdAt:
		return []string{at.OK}
	case cmd == at.CmdID:
		return []string{t.ID.String()}
	case cmd == at.CmdPAC:
		return []string{t.PAC.String()}
	case cmd == at.CmdTemperature:
		return []string{strconv.Itoa(t.Temperature)}
	case cmd == at.CmdVoltage:
		return []string{strconv.Itoa(t.Voltage), strconv.Itoa(t.VoltageLast), at.OK}
	case cmd == at.CmdGetRepeat:
		return []string{strconv.Itoa(int(t.repeats)), at.OK}
	case strings.HasPrefix(cmd, at.CmdSetRepeat):
		n, err := strconv.ParseUint(strings.TrimPrefix(cmd, at.CmdSetRepeat), 10, 8)
		if err != nil {
			return []string{at.ERROR}
		}
		t.repeats = uint8(n)
		return []string{at.OK}
	case strings.HasPrefix(cmd, at.CmdPowerMode):
		return []string{at.OK}
	case strings.HasPrefix(cmd, at.CmdSendBit):
		return t.uplink(strings.HasSuffix(cmd, ",1"))
	case strings.HasPrefix(cmd, at.CmdSendFrame):
		return t.uplink(strings.HasSuffix(cmd, ",1"))
	}
	return []string{at.ERROR}
}

func (t *TestTransport) uplink(downlink bool) []string {
	if !downlink {
		return []string{at.OK}
	}
	return []string{at.OK, t.Downlink}
}
