// Package elfx provides ELF loading helpers for AArch64 samples.
package elfx

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"slices"
)

var (
	ErrNotELF    = errors.New("elfx: not an ELF file")
	ErrNotARM64  = errors.New("elfx: not ARM64 (EM_AARCH64)")
	ErrNot64Bit  = errors.New("elfx: not 64-bit ELF")
	ErrNoSegment = errors.New("elfx: no PT_LOAD segment covers address")
)

// File is an ELF image loaded fully into memory, with helpers for
// address translation and symbol enumeration.
type File struct {
	ELF *elf.File
	buf []byte
}

// Open reads path into memory and validates it is a 64-bit AArch64
// executable or shared object.
func Open(path string) (*File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("elfx: read: %w", err)
	}
	return New(buf)
}

// New loads an ELF image from an in-memory buffer.
func New(buf []byte) (*File, error) {
	ef, err := elf.NewFile(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotELF, err)
	}
	if ef.Class != elf.ELFCLASS64 {
		return nil, ErrNot64Bit
	}
	if ef.Machine != elf.EM_AARCH64 {
		return nil, ErrNotARM64
	}
	return &File{ELF: ef, buf: buf}, nil
}

// Bytes returns the raw file contents.
func (f *File) Bytes() []byte { return f.buf }

// FileSize returns the size of the underlying file.
func (f *File) FileSize() int64 { return int64(len(f.buf)) }

// ImageBase returns the lowest PT_LOAD virtual address.
func (f *File) ImageBase() (uint64, bool) {
	base := uint64(0)
	found := false
	for _, p := range f.ELF.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if !found || p.Vaddr < base {
			base = p.Vaddr
			found = true
		}
	}
	return base, found
}

// VAToFileOffset converts a virtual address to a file offset using the
// PT_LOAD segments.
func (f *File) VAToFileOffset(va uint64) (uint64, error) {
	for _, p := range f.ELF.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if va >= p.Vaddr && va < p.Vaddr+p.Memsz {
			offset := va - p.Vaddr + p.Off
			if offset >= uint64(len(f.buf)) {
				return 0, fmt.Errorf("elfx: VA 0x%x maps to offset 0x%x beyond file size 0x%x", va, offset, len(f.buf))
			}
			return offset, nil
		}
	}
	return 0, fmt.Errorf("%w: VA 0x%x", ErrNoSegment, va)
}

// ReadBytesAtVA reads up to n bytes starting at the given virtual
// address, clamped to the end of the file.
func (f *File) ReadBytesAtVA(va uint64, n int) ([]byte, error) {
	off, err := f.VAToFileOffset(va)
	if err != nil {
		return nil, err
	}
	end := int(off) + n
	if end > len(f.buf) {
		end = len(f.buf)
	}
	return f.buf[off:end], nil
}

// FuncSymbol is one defined symbol from the symbol tables.
type FuncSymbol struct {
	Addr uint64
	Size uint64
	Name string
}

// FunctionSymbols returns the defined STT_FUNC symbols from both the
// static and dynamic symbol tables, deduplicated by address and sorted
// ascending. Samples without symbol tables return an empty list, not an
// error.
func (f *File) FunctionSymbols() []FuncSymbol {
	seen := make(map[uint64]struct{})
	var out []FuncSymbol
	collect := func(syms []elf.Symbol) {
		for _, s := range syms {
			if elf.ST_TYPE(s.Info) != elf.STT_FUNC {
				continue
			}
			if s.Value == 0 || s.Section == elf.SHN_UNDEF {
				continue
			}
			if _, dup := seen[s.Value]; dup {
				continue
			}
			seen[s.Value] = struct{}{}
			out = append(out, FuncSymbol{Addr: s.Value, Size: s.Size, Name: s.Name})
		}
	}
	if syms, err := f.ELF.Symbols(); err == nil {
		collect(syms)
	}
	if syms, err := f.ELF.DynamicSymbols(); err == nil {
		collect(syms)
	}
	slices.SortFunc(out, func(a, b FuncSymbol) int {
		switch {
		case a.Addr < b.Addr:
			return -1
		case a.Addr > b.Addr:
			return 1
		}
		return 0
	})
	return out
}

// Exports returns the defined function and object symbols visible to
// other modules: named, non-zero value, not SHN_UNDEF.
func (f *File) Exports() []FuncSymbol {
	syms, err := f.ELF.DynamicSymbols()
	if err != nil {
		return nil
	}
	var out []FuncSymbol
	for _, s := range syms {
		typ := elf.ST_TYPE(s.Info)
		if typ != elf.STT_FUNC && typ != elf.STT_OBJECT {
			continue
		}
		if s.Name == "" || s.Value == 0 || s.Section == elf.SHN_UNDEF {
			continue
		}
		out = append(out, FuncSymbol{Addr: s.Value, Size: s.Size, Name: s.Name})
	}
	return out
}

// ImportNames returns the undefined dynamic symbol names the sample
// expects its loader to resolve.
func (f *File) ImportNames() []string {
	syms, err := f.ELF.ImportedSymbols()
	if err != nil {
		return nil
	}
	var out []string
	for _, s := range syms {
		if s.Name != "" {
			out = append(out, s.Name)
		}
	}
	return out
}

// SectionNames returns the named sections with their virtual addresses.
func (f *File) SectionNames() []FuncSymbol {
	var out []FuncSymbol
	for _, s := range f.ELF.Sections {
		if s.Name == "" {
			continue
		}
		out = append(out, FuncSymbol{Addr: s.Addr, Name: s.Name})
	}
	return out
}

// ByteOrder returns the ELF byte order.
func (f *File) ByteOrder() binary.ByteOrder {
	return f.ELF.ByteOrder
}
