// Package native extracts capability features from AArch64 ELF samples.
//
// Functions are discovered from the symbol tables, disassembled in
// process, and walked block by block over the recovered control-flow
// graph. Loading is two-phase: Load is the fallible half and returns no
// partial sample on malformed input; New (in extractor.go) is
// infallible.
package native

import (
	"fmt"

	"bincap/internal/elfx"
	"bincap/internal/extract"
)

// Function is one defined function discovered in the image.
type Function struct {
	Addr uint64
	Size uint64
	Name string
}

// Sample is a loaded native sample.
type Sample struct {
	File   *elfx.File
	Hashes extract.SampleHashes
	Base   uint64
	Funcs  []Function // ascending by address
}

// Load parses an in-memory ELF image and discovers its functions.
func Load(buf []byte) (*Sample, error) {
	f, err := elfx.New(buf)
	if err != nil {
		return nil, fmt.Errorf("native: %w", err)
	}

	base, _ := f.ImageBase()

	syms := f.FunctionSymbols()
	funcs := make([]Function, 0, len(syms))
	for i, s := range syms {
		size := s.Size
		if size == 0 {
			// Stripped-down symbol tables sometimes omit sizes; extend to
			// the next function when we can, otherwise skip.
			if i+1 < len(syms) {
				size = syms[i+1].Addr - s.Addr
			} else {
				continue
			}
		}
		funcs = append(funcs, Function{Addr: s.Addr, Size: size, Name: s.Name})
	}

	return &Sample{
		File:   f,
		Hashes: extract.HashBytes(buf),
		Base:   base,
		Funcs:  funcs,
	}, nil
}

// LoadFile loads a native sample from disk.
func LoadFile(path string) (*Sample, error) {
	f, err := elfx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("native: %w", err)
	}
	return Load(f.Bytes())
}
