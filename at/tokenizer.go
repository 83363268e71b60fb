package at

import (
	"bufio"
	"bytes"
)

// Splitter is used for tokenizing Sigfox modem replies. It uses the
// signature of bufio.SplitFunc so it can be directly used with bufio.Scanner.
//
// Lines end with LF. A CR right before the LF is dropped, so the splitter
// serves both wire profiles. Empty lines are returned as empty tokens and
// left to the caller to skip.
//
// Unlike a plain line scanner, an unterminated tail is only returned at EOF.
// A reply cut short by a read timeout therefore never produces a token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, bytes.TrimSuffix(data[0:i], []byte(CR)), nil
	}

	if atEOF {
		return len(data), bytes.TrimSuffix(data, []byte(CR)), nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// trimLeadingBlank returns how many line terminator bytes start data.
func trimLeadingBlank(data []byte) int {
	n := 0
	for n < len(data) && (data[n] == '\r' || data[n] == '\n') {
		n++
	}
	return n
}
