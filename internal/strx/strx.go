// Package strx scans raw buffers for printable strings.
//
// Two encodings are supported: runs of printable ASCII bytes and
// UTF-16LE runs of printable ASCII code units. Offsets are byte offsets
// of the first byte of the run within the scanned buffer.
package strx

import "errors"

// MinLength is the default minimum number of characters for an extracted
// string to be reported.
const MinLength = 4

// ErrMinLength is returned when a caller asks for strings shorter than
// one character.
var ErrMinLength = errors.New("strx: minimum string length must be at least 1")

// String is one extracted string and the byte offset it starts at.
type String struct {
	S      string
	Offset int
}

func printable(b byte) bool {
	return b >= 0x20 && b <= 0x7e
}

// BufFilledWith reports whether buf is non-empty and consists of a single
// repeated byte. Such buffers are padding, not meaningful string data.
func BufFilledWith(buf []byte, b byte) bool {
	if len(buf) == 0 {
		return false
	}
	for _, c := range buf {
		if c != b {
			return false
		}
	}
	return true
}

// ASCII extracts printable ASCII strings of at least minLen characters.
// Buffers filled with a single repeated byte are padding and yield no
// strings even when that byte is printable.
func ASCII(buf []byte, minLen int) ([]String, error) {
	if minLen < 1 {
		return nil, ErrMinLength
	}
	if len(buf) > 0 && BufFilledWith(buf, buf[0]) {
		return nil, nil
	}
	var out []String
	start := -1
	for i := 0; i <= len(buf); i++ {
		if i < len(buf) && printable(buf[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= minLen {
			out = append(out, String{S: string(buf[start:i]), Offset: start})
		}
		start = -1
	}
	return out, nil
}

// UTF16 extracts UTF-16LE strings whose code units are printable ASCII
// and that are at least minLen characters long. Single-byte-filled
// buffers are treated as padding, as in ASCII.
func UTF16(buf []byte, minLen int) ([]String, error) {
	if minLen < 1 {
		return nil, ErrMinLength
	}
	if len(buf) > 0 && BufFilledWith(buf, buf[0]) {
		return nil, nil
	}
	var out []String
	var run []byte
	start := -1
	flush := func() {
		if start >= 0 && len(run) >= minLen {
			out = append(out, String{S: string(run), Offset: start})
		}
		run = nil
		start = -1
	}
	for i := 0; i+1 < len(buf); i += 2 {
		if printable(buf[i]) && buf[i+1] == 0x00 {
			if start < 0 {
				start = i
			}
			run = append(run, buf[i])
			continue
		}
		flush()
	}
	flush()
	return out, nil
}

// IsPrintable reports whether every rune in s is printable ASCII or
// common whitespace. The empty string is printable.
func IsPrintable(s string) bool {
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if r < 0x20 || r > 0x7e {
			return false
		}
	}
	return true
}
