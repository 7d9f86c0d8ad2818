package elfx

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type symSpec struct {
	name  string
	value uint64
	size  uint64
	info  byte
}

// buildELF assembles a minimal 64-bit little-endian AArch64 ELF with a
// single PT_LOAD segment at vaddr 0x400000 covering the file, plus a
// static symbol table.
func buildELF(syms []symSpec) []byte {
	const loadVA = 0x400000
	const bodyEnd = 0x1100 // header + padding + a little code room

	strtab := []byte{0}
	nameOff := make([]uint32, len(syms))
	for i, s := range syms {
		nameOff[i] = uint32(len(strtab))
		strtab = append(strtab, s.name...)
		strtab = append(strtab, 0)
	}
	shstr := []byte("\x00.text\x00.symtab\x00.strtab\x00.shstrtab\x00")

	symOff := bodyEnd
	symSize := 24 * (len(syms) + 1)
	strOff := symOff + symSize
	shstrOff := strOff + len(strtab)
	shOff := (shstrOff + len(shstr) + 7) &^ 7

	buf := make([]byte, shOff+5*64)
	le := binary.LittleEndian

	copy(buf, []byte{0x7f, 'E', 'L', 'F', 2, 1, 1})
	le.PutUint16(buf[16:], 2)   // ET_EXEC
	le.PutUint16(buf[18:], 183) // EM_AARCH64
	le.PutUint32(buf[20:], 1)
	le.PutUint64(buf[24:], loadVA+0x1000)
	le.PutUint64(buf[32:], 64)
	le.PutUint64(buf[40:], uint64(shOff))
	le.PutUint16(buf[52:], 64)
	le.PutUint16(buf[54:], 56)
	le.PutUint16(buf[56:], 1)
	le.PutUint16(buf[58:], 64)
	le.PutUint16(buf[60:], 5)
	le.PutUint16(buf[62:], 4)

	ph := buf[64:]
	le.PutUint32(ph[0:], 1) // PT_LOAD
	le.PutUint32(ph[4:], 5)
	le.PutUint64(ph[16:], loadVA)
	le.PutUint64(ph[24:], loadVA)
	le.PutUint64(ph[32:], bodyEnd)
	le.PutUint64(ph[40:], bodyEnd)
	le.PutUint64(ph[48:], 0x1000)

	for i, s := range syms {
		off := symOff + 24*(i+1)
		le.PutUint32(buf[off:], nameOff[i])
		buf[off+4] = s.info
		le.PutUint16(buf[off+6:], 1)
		le.PutUint64(buf[off+8:], s.value)
		le.PutUint64(buf[off+16:], s.size)
	}
	copy(buf[strOff:], strtab)
	copy(buf[shstrOff:], shstr)

	sh := func(i int, name, typ uint32, flags, addrV, off, size uint64, link, info uint32, entsize uint64) {
		b := buf[shOff+i*64:]
		le.PutUint32(b[0:], name)
		le.PutUint32(b[4:], typ)
		le.PutUint64(b[8:], flags)
		le.PutUint64(b[16:], addrV)
		le.PutUint64(b[24:], off)
		le.PutUint64(b[32:], size)
		le.PutUint32(b[40:], link)
		le.PutUint32(b[44:], info)
		le.PutUint64(b[48:], 8)
		le.PutUint64(b[56:], entsize)
	}
	sh(1, 1, 1, 0x6, loadVA+0x1000, 0x1000, 0x100, 0, 0, 0)
	sh(2, 7, 2, 0, 0, uint64(symOff), uint64(symSize), 3, 1, 24)
	sh(3, 15, 3, 0, 0, uint64(strOff), uint64(len(strtab)), 0, 0, 0)
	sh(4, 23, 3, 0, 0, uint64(shstrOff), uint64(len(shstr)), 0, 0, 0)
	return buf
}

func TestNewRejectsGarbage(t *testing.T) {
	_, err := New([]byte("not an ELF file at all"))
	if !errors.Is(err, ErrNotELF) {
		t.Fatalf("err = %v, want ErrNotELF", err)
	}
}

func TestNewRejects32Bit(t *testing.T) {
	buf := buildELF(nil)
	buf[4] = 1 // ELFCLASS32
	if _, err := New(buf); err == nil {
		t.Fatal("expected error for 32-bit ELF")
	}
}

func TestNewRejectsOtherMachine(t *testing.T) {
	buf := buildELF(nil)
	binary.LittleEndian.PutUint16(buf[18:], 62) // EM_X86_64
	if _, err := New(buf); !errors.Is(err, ErrNotARM64) {
		t.Fatalf("err = %v, want ErrNotARM64", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.so")
	if err := os.WriteFile(path, buildELF(nil), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.FileSize() == 0 {
		t.Error("file size is 0")
	}
}

func TestImageBase(t *testing.T) {
	f, err := New(buildELF(nil))
	if err != nil {
		t.Fatal(err)
	}
	base, ok := f.ImageBase()
	if !ok {
		t.Fatal("no PT_LOAD segment found")
	}
	if base != 0x400000 {
		t.Errorf("base = 0x%x, want 0x400000", base)
	}
}

func TestVAToFileOffset(t *testing.T) {
	f, err := New(buildELF(nil))
	if err != nil {
		t.Fatal(err)
	}
	off, err := f.VAToFileOffset(0x401000)
	if err != nil {
		t.Fatal(err)
	}
	if off != 0x1000 {
		t.Errorf("offset = 0x%x, want 0x1000", off)
	}
	if _, err := f.VAToFileOffset(0xDEADBEEF00000000); !errors.Is(err, ErrNoSegment) {
		t.Errorf("err = %v, want ErrNoSegment", err)
	}
}

func TestReadBytesAtVAClamps(t *testing.T) {
	f, err := New(buildELF(nil))
	if err != nil {
		t.Fatal(err)
	}
	buf, err := f.ReadBytesAtVA(0x401000, 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) == 0 || len(buf) >= 1<<20 {
		t.Errorf("read %d bytes, want clamped nonzero count", len(buf))
	}
}

func TestFunctionSymbols(t *testing.T) {
	f, err := New(buildELF([]symSpec{
		{name: "b", value: 0x401010, size: 8, info: 0x12},  // GLOBAL FUNC
		{name: "a", value: 0x401000, size: 16, info: 0x12}, // GLOBAL FUNC
		{name: "a2", value: 0x401000, size: 16, info: 0x12},
		{name: "data", value: 0x401020, size: 4, info: 0x11}, // GLOBAL OBJECT
	}))
	if err != nil {
		t.Fatal(err)
	}
	syms := f.FunctionSymbols()
	if len(syms) != 2 {
		t.Fatalf("got %d symbols, want 2 (dedup by address, functions only)", len(syms))
	}
	if syms[0].Addr != 0x401000 || syms[1].Addr != 0x401010 {
		t.Errorf("symbols not sorted: %+v", syms)
	}
	if syms[0].Name != "a" {
		t.Errorf("first symbol = %q, want a (first wins on duplicate address)", syms[0].Name)
	}
}

func TestSectionNames(t *testing.T) {
	f, err := New(buildELF(nil))
	if err != nil {
		t.Fatal(err)
	}
	names := make(map[string]bool)
	for _, s := range f.SectionNames() {
		names[s.Name] = true
	}
	for _, want := range []string{".text", ".symtab", ".strtab", ".shstrtab"} {
		if !names[want] {
			t.Errorf("missing section %q", want)
		}
	}
}
