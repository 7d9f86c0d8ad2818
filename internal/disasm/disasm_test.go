package disasm

import (
	"encoding/binary"
	"strings"
	"testing"
)

func encode(words ...uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

func TestDisassemble(t *testing.T) {
	data := encode(rawNOP, rawRET)
	insts := Disassemble(data, Options{BaseAddr: 0x401000})
	if len(insts) != 2 {
		t.Fatalf("got %d insts, want 2", len(insts))
	}
	if insts[0].Addr != 0x401000 || insts[1].Addr != 0x401004 {
		t.Errorf("addrs = 0x%x, 0x%x", insts[0].Addr, insts[1].Addr)
	}
	if insts[0].Raw != rawNOP || insts[1].Raw != rawRET {
		t.Errorf("raw = 0x%08x, 0x%08x", insts[0].Raw, insts[1].Raw)
	}
	for _, in := range insts {
		if in.Size != 4 {
			t.Errorf("size = %d", in.Size)
		}
		if in.Mnemonic == "" || in.Text == "" {
			t.Errorf("undecoded inst at 0x%x: %+v", in.Addr, in)
		}
	}
}

func TestDisassembleBadWord(t *testing.T) {
	insts := Disassemble(encode(0xFFFFFFFF), Options{BaseAddr: 0x1000})
	if len(insts) != 1 {
		t.Fatalf("got %d insts, want 1", len(insts))
	}
	if insts[0].Mnemonic != ".word" {
		t.Errorf("mnemonic = %q, want .word", insts[0].Mnemonic)
	}
}

func TestDisassembleMaxSteps(t *testing.T) {
	data := encode(rawNOP, rawNOP, rawNOP, rawRET)
	insts := Disassemble(data, Options{BaseAddr: 0, MaxSteps: 2})
	if len(insts) != 2 {
		t.Errorf("got %d insts, want 2", len(insts))
	}
}

func TestFormat(t *testing.T) {
	insts := Disassemble(encode(rawNOP), Options{BaseAddr: 0x401000})
	lookup := func(addr uint64) (string, bool) {
		if addr == 0x401000 {
			return "entry", true
		}
		return "", false
	}
	out := Format(insts, lookup)
	if !strings.Contains(out, "0x00401000") {
		t.Errorf("missing address: %q", out)
	}
	if !strings.Contains(out, "; <entry>") {
		t.Errorf("missing symbol comment: %q", out)
	}
}
