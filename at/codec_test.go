package at_test

import (
	"bytes"
	"errors"
	"testing"

	"i4.energy/across/sigfox/at"
)

func TestEncodeHex(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{name: "Mixed nibbles", input: []byte{0xA1, 0x0B}, expected: "A10B"},
		{name: "Leading zero", input: []byte{0x00, 0x01}, expected: "0001"},
		{name: "Full frame", input: []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 1, 2, 3, 4, 5, 6, 0xFF}, expected: "DEADBEEF00010203040506FF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := at.EncodeHex(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseHexTupleRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{0x00, 0x00, 0x00, 0x00},
		{0x00, 0x12, 0xAB, 0x34},
		{0xFF, 0xFE, 0x01, 0x80},
		{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF},
		{0xF0, 0x0F, 0x00, 0xFF, 0x10, 0x01, 0x7F, 0x80},
	}

	for _, in := range inputs {
		got, err := at.ParseHexTuple(at.EncodeHex(in), len(in))
		if err != nil {
			t.Fatalf("unexpected error for % X: %v", in, err)
		}
		if !bytes.Equal(got, in) {
			t.Errorf("round trip mismatch: expected % X, got % X", in, got)
		}
	}
}

func TestParseHexTuple(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		n        int
		expected []byte
		wantErr  bool
	}{
		{name: "Most significant group first", line: "0012AB34", n: 4, expected: []byte{0x00, 0x12, 0xAB, 0x34}},
		{name: "Lowercase accepted", line: "0012ab34", n: 4, expected: []byte{0x00, 0x12, 0xAB, 0x34}},
		{name: "Short reply", line: "0012AB", n: 4, wantErr: true},
		{name: "Overlong reply", line: "0012AB3400", n: 4, wantErr: true},
		{name: "Non-hex digit", line: "0012AG34", n: 4, wantErr: true},
		{name: "Error reply", line: "ERROR", n: 4, wantErr: true},
		{name: "PAC", line: "0123456789ABCDEF", n: 8, expected: []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := at.ParseHexTuple(tt.line, tt.n)
			if tt.wantErr {
				if !errors.Is(err, at.ErrMalformedReply) {
					t.Errorf("expected ErrMalformedReply, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("expected % X, got % X", tt.expected, got)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected int
		wantErr  bool
	}{
		{name: "Positive", line: "254", expected: 254},
		{name: "Negative", line: "-45", expected: -45},
		{name: "Surrounding spaces", line: " 3300 ", expected: 3300},
		{name: "Not a number", line: "OK", wantErr: true},
		{name: "Empty", line: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := at.ParseInt(tt.line)
			if tt.wantErr {
				if !errors.Is(err, at.ErrMalformedReply) {
					t.Errorf("expected ErrMalformedReply, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestParseUint8(t *testing.T) {
	if v, err := at.ParseUint8("5"); err != nil || v != 5 {
		t.Errorf("expected 5, got %d (err %v)", v, err)
	}
	for _, line := range []string{"-1", "256", "two"} {
		if _, err := at.ParseUint8(line); !errors.Is(err, at.ErrMalformedReply) {
			t.Errorf("%q: expected ErrMalformedReply, got: %v", line, err)
		}
	}
}

func TestParseDownlink(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
		wantErr  error
	}{
		{name: "Bare text is kept unmodified", line: "48656C6C6F", expected: "48656C6C6F"},
		{name: "Bare spaced groups", line: "48 65 6c", expected: "48 65 6c"},
		{name: "RX marker stripped", line: "RX=48 65 6C 6C 6F", expected: "48 65 6C 6C 6F"},
		{name: "Explicit empty downlink", line: "RX=", expected: ""},
		{name: "Error", line: "ERROR", wantErr: at.ErrUnexpectedReply},
		{name: "Second acknowledgment", line: "OK", wantErr: at.ErrUnexpectedReply},
		{name: "Not hex groups", line: "BUSY", wantErr: at.ErrMalformedReply},
		{name: "Only spaces", line: "  ", wantErr: at.ErrMalformedReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := at.ParseDownlink(tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestDecodeDownlink(t *testing.T) {
	got, err := at.DecodeDownlink("48 65 6C 6C 6F")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "Hello" {
		t.Errorf("expected Hello, got %q", got)
	}

	if _, err := at.DecodeDownlink("4"); !errors.Is(err, at.ErrMalformedReply) {
		t.Errorf("expected ErrMalformedReply, got: %v", err)
	}
}

func TestCommandBuilders(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "Power mode sleep", got: at.CmdPowerModeFor(1), expected: "AT$P=1"},
		{name: "Bit without downlink", got: at.CmdSendBitFor(true, false), expected: "AT$SB=1,0"},
		{name: "Bit with downlink", got: at.CmdSendBitFor(false, true), expected: "AT$SB=0,1"},
		{name: "Frame without downlink", got: at.CmdSendFrameFor([]byte{0xA1, 0x0B}, false), expected: "AT$SF=A10B"},
		{name: "Frame with downlink", got: at.CmdSendFrameFor([]byte{0xA1, 0x0B}, true), expected: "AT$SF=A10B,1"},
		{name: "Transmit repeat", got: at.CmdSetRepeatFor(255), expected: "AT$TR=255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}
