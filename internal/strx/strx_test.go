package strx

import (
	"bytes"
	"errors"
	"testing"
)

func TestBufFilledWith(t *testing.T) {
	if !BufFilledWith(bytes.Repeat([]byte{0x00}, 8), 0x00) {
		t.Error("all-zero buffer not detected")
	}
	if !BufFilledWith(bytes.Repeat([]byte{0xff}, 8), 0xff) {
		t.Error("all-0xff buffer not detected")
	}
	if BufFilledWith(bytes.Repeat([]byte{0x00, 0x01}, 8), 0x00) {
		t.Error("mixed buffer detected as filled")
	}
	if BufFilledWith(nil, 0x00) {
		t.Error("empty buffer detected as filled")
	}
	if !BufFilledWith([]byte{0x00}, 0x00) {
		t.Error("single byte buffer not detected")
	}
}

func TestASCII(t *testing.T) {
	got, err := ASCII(nil, MinLength)
	if err != nil {
		t.Fatalf("ASCII(nil): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty buffer yielded %d strings", len(got))
	}

	got, err = ASCII([]byte("Hello World\x00This is a test\x00"), MinLength)
	if err != nil {
		t.Fatal(err)
	}
	want := []String{
		{S: "Hello World", Offset: 0},
		{S: "This is a test", Offset: 12},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d strings, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("string %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// Minimum length filters short runs.
	got, _ = ASCII([]byte("Hi\x00Test\x00"), 4)
	if len(got) != 1 || got[0] != (String{S: "Test", Offset: 3}) {
		t.Errorf("min length: got %+v", got)
	}

	// Non-ASCII bytes split runs.
	got, _ = ASCII([]byte("Hello\xffWorld\x00"), MinLength)
	if len(got) != 2 || got[0].S != "Hello" || got[1] != (String{S: "World", Offset: 6}) {
		t.Errorf("split runs: got %+v", got)
	}

	// Leading padding does not shift offsets.
	buf := append(bytes.Repeat([]byte{0x00}, 8), []byte("ValidString\x00")...)
	got, _ = ASCII(buf, MinLength)
	if len(got) != 1 || got[0] != (String{S: "ValidString", Offset: 8}) {
		t.Errorf("padding: got %+v", got)
	}
}

func TestASCIIMinLengths(t *testing.T) {
	buf := []byte("a\x00ab\x00abc\x00abcd\x00abcde\x00")
	cases := []struct {
		minLen int
		want   []string
	}{
		{1, []string{"a", "ab", "abc", "abcd", "abcde"}},
		{3, []string{"abc", "abcd", "abcde"}},
		{5, []string{"abcde"}},
	}
	for _, tc := range cases {
		got, err := ASCII(buf, tc.minLen)
		if err != nil {
			t.Fatalf("minLen=%d: %v", tc.minLen, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("minLen=%d: got %d strings, want %d", tc.minLen, len(got), len(tc.want))
		}
		for i, w := range tc.want {
			if got[i].S != w {
				t.Errorf("minLen=%d: string %d = %q, want %q", tc.minLen, i, got[i].S, w)
			}
		}
	}
}

func TestFilledBufferSuppressed(t *testing.T) {
	// A run of one repeated printable byte is padding, not a string.
	got, err := ASCII(bytes.Repeat([]byte{'A'}, 300), MinLength)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("ASCII filled buffer yielded %+v", got)
	}

	got, _ = ASCII(bytes.Repeat([]byte{' '}, 64), MinLength)
	if len(got) != 0 {
		t.Errorf("ASCII space-filled buffer yielded %+v", got)
	}

	got, _ = UTF16(bytes.Repeat([]byte{'A'}, 300), MinLength)
	if len(got) != 0 {
		t.Errorf("UTF16 filled buffer yielded %+v", got)
	}

	// Suppression is whole-buffer: one differing byte keeps real runs.
	buf := append(bytes.Repeat([]byte{'A'}, 8), []byte("Hello World\x00")...)
	got, _ = ASCII(buf, MinLength)
	if len(got) != 1 || got[0] != (String{S: "AAAAAAAAHello World", Offset: 0}) {
		t.Errorf("near-filled buffer: got %+v", got)
	}
}

func TestInvalidMinLength(t *testing.T) {
	if _, err := ASCII([]byte("test"), 0); !errors.Is(err, ErrMinLength) {
		t.Errorf("ASCII minLen=0: err = %v", err)
	}
	if _, err := ASCII([]byte("test"), -1); !errors.Is(err, ErrMinLength) {
		t.Errorf("ASCII minLen=-1: err = %v", err)
	}
	if _, err := UTF16([]byte("test"), 0); !errors.Is(err, ErrMinLength) {
		t.Errorf("UTF16 minLen=0: err = %v", err)
	}
}

func TestUTF16(t *testing.T) {
	got, err := UTF16([]byte("H\x00e\x00l\x00l\x00o\x00\x00\x00"), MinLength)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != (String{S: "Hello", Offset: 0}) {
		t.Errorf("got %+v", got)
	}

	// Minimum length applies in characters, offset is in bytes.
	got, _ = UTF16([]byte("H\x00i\x00\x00\x00T\x00e\x00s\x00t\x00\x00\x00"), 4)
	if len(got) != 1 || got[0] != (String{S: "Test", Offset: 6}) {
		t.Errorf("min length: got %+v", got)
	}

	// A non-printable code unit breaks the run.
	got, _ = UTF16([]byte("H\x00\xff\x00l\x00l\x00o\x00\x00\x00"), MinLength)
	if len(got) != 0 {
		t.Errorf("invalid unit: got %+v", got)
	}

	// Leading padding is skipped.
	buf := append(bytes.Repeat([]byte{0x00}, 8), []byte("V\x00a\x00l\x00i\x00d\x00\x00\x00")...)
	got, _ = UTF16(buf, MinLength)
	if len(got) != 1 || got[0] != (String{S: "Valid", Offset: 8}) {
		t.Errorf("padding: got %+v", got)
	}
}

func TestIsPrintable(t *testing.T) {
	for _, s := range []string{"Hello World", "123!@#", "\t\n\r", "", " "} {
		if !IsPrintable(s) {
			t.Errorf("IsPrintable(%q) = false", s)
		}
	}
	for _, s := range []string{"\x00\x01\x02", "Hello\x07World", "\x1b[31m", "\x7f"} {
		if IsPrintable(s) {
			t.Errorf("IsPrintable(%q) = true", s)
		}
	}
}
