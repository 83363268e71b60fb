package at

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// EncodeHex renders data as uppercase hex digits, high nibble first,
// without separators. This is the body format of AT$SF.
func EncodeHex(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}

// ParseHexTuple decodes a reply made of exactly n two-digit hex groups.
// The first group is the most significant byte of the result.
func ParseHexTuple(line string, n int) ([]byte, error) {
	if len(line) != 2*n {
		return nil, fmt.Errorf("%w: want %d hex digits, got %q", ErrMalformedReply, 2*n, line)
	}
	out, err := hex.DecodeString(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedReply, line, err)
	}
	return out, nil
}

// ParseInt decodes a signed decimal reply.
func ParseInt(line string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a decimal", ErrMalformedReply, line)
	}
	return v, nil
}

// ParseUint8 decodes an unsigned decimal reply in the range 0..255.
func ParseUint8(line string) (uint8, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(line), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an unsigned byte", ErrMalformedReply, line)
	}
	return uint8(v), nil
}

// ParseDownlink extracts the downlink text from a reply line. The RX= marker
// is optional; "RX=" alone is the modem's explicit empty downlink. Without
// the marker the line must consist of hex groups.
func ParseDownlink(line string) (string, error) {
	if text, ok := strings.CutPrefix(line, DownlinkPrefix); ok {
		return text, nil
	}
	if line == OK || line == ERROR {
		return "", fmt.Errorf("%w: want downlink, got %q", ErrUnexpectedReply, line)
	}
	if !isHexGroups(line) {
		return "", fmt.Errorf("%w: downlink %q", ErrMalformedReply, line)
	}
	return line, nil
}

func isHexGroups(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c == ' ', '0' <= c && c <= '9', 'A' <= c && c <= 'F', 'a' <= c && c <= 'f':
		default:
			return false
		}
	}
	return true
}

// DecodeDownlink converts downlink text into bytes. The modem separates byte
// groups with single spaces; those are ignored.
func DecodeDownlink(text string) ([]byte, error) {
	compact := strings.ReplaceAll(text, " ", "")
	out, err := hex.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("%w: downlink %q: %v", ErrMalformedReply, text, err)
	}
	return out, nil
}

// CmdPowerModeFor builds AT$P=<mode>.
func CmdPowerModeFor(mode uint8) string {
	return CmdPowerMode + strconv.FormatUint(uint64(mode), 10)
}

// CmdSendBitFor builds AT$SB=<bit>,<downlink>.
func CmdSendBitFor(bit, downlink bool) string {
	return CmdSendBit + flag(bit) + "," + flag(downlink)
}

// CmdSendFrameFor builds AT$SF=<hex>, adding ",1" when a downlink is requested.
func CmdSendFrameFor(data []byte, downlink bool) string {
	cmd := CmdSendFrame + EncodeHex(data)
	if downlink {
		cmd += ",1"
	}
	return cmd
}

// CmdSetRepeatFor builds AT$TR=<n>.
func CmdSetRepeatFor(n uint8) string {
	return CmdSetRepeat + strconv.FormatUint(uint64(n), 10)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
