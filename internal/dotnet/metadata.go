// Package dotnet extracts capability features from managed CIL programs.
//
// The package consumes token-indexed metadata tables and decoded method
// instruction streams produced by an external metadata parser; it does
// not parse the PE/CLI container itself. From those tables it builds a
// token cache for O(1) symbol resolution, derives the inter-procedural
// call graph by scanning call operands, and implements the extraction
// contract from bincap/internal/extract.
package dotnet

import (
	"errors"
	"fmt"

	"bincap/internal/extract"
)

var (
	ErrNoMetadata = errors.New("dotnet: no metadata")
	// ErrDuplicateToken indicates two symbols of the same category share a
	// metadata token. Tokens are unique per table by format contract, so
	// this is a corrupt or adversarial sample; the load is rejected rather
	// than resolved by last-write-wins.
	ErrDuplicateToken = errors.New("dotnet: duplicate metadata token")
)

// Symbol is one resolved metadata entity: a managed import, an unmanaged
// (P/Invoke) import, a method definition, a field, or a type. Symbols are
// immutable once constructed and owned by the token cache for the
// lifetime of the sample.
type Symbol struct {
	Token     uint32 `json:"token"`
	Module    string `json:"module,omitempty"` // defining module, unmanaged imports only
	Namespace string `json:"namespace,omitempty"`
	Class     string `json:"class,omitempty"`
	Name      string `json:"name,omitempty"` // member name, empty for type symbols
}

// FullName renders the human-readable qualified name: "module.func" for
// unmanaged imports, "Namespace.Class::Member" for managed members, and
// "Namespace.Class" for types.
func (s Symbol) FullName() string {
	if s.Module != "" {
		return s.Module + "." + s.Name
	}
	qual := s.Class
	if s.Namespace != "" {
		qual = s.Namespace + "." + s.Class
	}
	if s.Name == "" {
		return qual
	}
	return qual + "::" + s.Name
}

// MethodBody is one method definition with a decoded instruction stream.
// Offset is the file offset of the method body header; instruction
// offsets are file offsets too, so the offset of an instruction relative
// to the start of the instruction stream is
// insn.Offset - (body.Offset + body.HeaderSize).
type MethodBody struct {
	Token      uint32 `json:"token"`
	Offset     int64  `json:"offset"`
	HeaderSize int64  `json:"header_size"`
	Insns      []Insn `json:"instructions"`
}

// Insn is one decoded CIL instruction.
type Insn struct {
	Offset  int64  `json:"offset"` // file offset
	Op      Op     `json:"op"`
	Operand uint64 `json:"operand,omitempty"` // token or immediate, op-dependent
}

// Metadata holds the token-indexed tables exposed by the metadata parser.
type Metadata struct {
	Arch          string            `json:"arch,omitempty"` // "i386", "amd64", or "any"
	Imports       []Symbol          `json:"imports,omitempty"`
	NativeImports []Symbol          `json:"native_imports,omitempty"`
	Methods       []Symbol          `json:"methods,omitempty"`
	Fields        []Symbol          `json:"fields,omitempty"`
	Types         []Symbol          `json:"types,omitempty"`
	Bodies        []MethodBody      `json:"bodies,omitempty"`
	UserStrings   map[uint32]string `json:"user_strings,omitempty"` // #US heap, by 0x70-prefixed token
}

// UserString resolves a user-string heap token. Missing tokens are an
// absence, never an error.
func (m *Metadata) UserString(token uint32) (string, bool) {
	s, ok := m.UserStrings[token]
	return s, ok
}

// Sample is a loaded managed sample: validated metadata plus the caches
// built once at load time. Construction is two-phase: Load is the
// fallible half, New (in extractor.go) is infallible.
type Sample struct {
	Metadata *Metadata
	Hashes   extract.SampleHashes
	Cache    *TokenCache
}

// Load validates the parsed metadata, builds the token cache and hashes
// the raw sample bytes. Malformed tables fail here; no partial sample is
// returned.
func Load(md *Metadata, raw []byte) (*Sample, error) {
	if md == nil {
		return nil, ErrNoMetadata
	}
	cache, err := BuildTokenCache(md)
	if err != nil {
		return nil, fmt.Errorf("dotnet: load: %w", err)
	}
	return &Sample{
		Metadata: md,
		Hashes:   extract.HashBytes(raw),
		Cache:    cache,
	}, nil
}
