package modem_test

import (
	"time"

	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/sigfox/at"
	"i4.energy/across/sigfox/modem"
)

const (
	testTimeout         = time.Second
	testExtendedTimeout = time.Minute
)

type MockSequenceBuilder struct {
	transport  *modem.MockTransport
	terminator string
	calls      []any
}

func NewMockSequence(transport *modem.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport:  transport,
		terminator: at.ProfileA.CommandTerminator,
		calls:      []any{},
	}
}

// Profile switches the command terminator expected by later Command calls.
func (b *MockSequenceBuilder) Profile(p at.Profile) *MockSequenceBuilder {
	b.terminator = p.CommandTerminator
	return b
}

// Init covers the handshake run by New and Init.
func (b *MockSequenceBuilder) Init() *MockSequenceBuilder {
	return b.Timeout(testTimeout).Command("AT").Reply("OK\r\n")
}

// Command expects cmd followed by the current command terminator.
func (b *MockSequenceBuilder) Command(cmd string) *MockSequenceBuilder {
	wire := cmd + b.terminator
	b.calls = append(b.calls,
		b.transport.EXPECT().Write([]byte(wire)).Return(len(wire), nil),
	)
	return b
}

// Reply makes the next read return resp.
func (b *MockSequenceBuilder) Reply(resp string) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			return copy(p, resp), nil
		}),
	)
	return b
}

// Silence makes the next read time out.
func (b *MockSequenceBuilder) Silence() *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Read(gomock.Any()).Return(0, nil),
	)
	return b
}

// Timeout expects the read timeout to be set to d.
func (b *MockSequenceBuilder) Timeout(d time.Duration) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().SetReadTimeout(d).Return(nil),
	)
	return b
}

// TimeoutFails expects the read timeout to be set to d and rejects it.
func (b *MockSequenceBuilder) TimeoutFails(d time.Duration, err error) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().SetReadTimeout(d).Return(err),
	)
	return b
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}

func initMockCalls(transport *modem.MockTransport) []any {
	return NewMockSequence(transport).Init().Build()
}

func testConfig(dialer modem.Dialer) *modem.ConfigBuilder {
	return modem.NewConfigBuilder().
		WithDialer(dialer).
		WithTimeout(testTimeout).
		WithExtendedTimeout(testExtendedTimeout)
}
