// Package extract defines the backend-independent extraction contract.
//
// A backend (native ELF disassembly, managed CIL metadata) implements
// Extractor; callers walk the sample scope by scope: global features
// once, then functions, then per function its basic blocks, then per
// block its instructions. At each step the backend yields zero or more
// (feature, address) pairs. The caller never needs to know which backend
// produced a feature.
package extract

import (
	"slices"

	"bincap/internal/addr"
	"bincap/internal/feature"
)

// FeatureAt is one extracted feature attributed to an address.
type FeatureAt struct {
	Feature feature.Feature
	Address addr.Address
}

// FunctionState is the typed per-function side channel attached to a
// function handle. It is created once per function when the function
// walker runs and is shared, not copied, by the basic-block and
// instruction handles derived from that function.
//
// CallsTo holds the addresses of in-module functions known to call this
// function; entries are always valid function definition addresses.
// CallsFrom holds every call-site target reachable from this function,
// including targets with no in-module definition (imported members).
// Both sets are write-once during the call-graph pass and read-only
// afterwards.
type FunctionState struct {
	CallsTo   map[addr.Address]struct{}
	CallsFrom map[addr.Address]struct{}
}

// NewFunctionState returns a state with empty call edge sets.
func NewFunctionState() *FunctionState {
	return &FunctionState{
		CallsTo:   make(map[addr.Address]struct{}),
		CallsFrom: make(map[addr.Address]struct{}),
	}
}

// FunctionHandle identifies one function scope. Inner holds the backend's
// own function object and is only inspected by the backend that created
// the handle. Function handles outlive the block and instruction handles
// derived from them.
type FunctionHandle struct {
	Address addr.Address
	State   *FunctionState
	Inner   any
}

// BlockHandle identifies one basic-block scope within a function.
type BlockHandle struct {
	Address addr.Address
	Inner   any
}

// InsnHandle identifies one instruction scope within a basic block.
type InsnHandle struct {
	Address addr.Address
	Inner   any
}

// Extractor is the capability contract implemented by both backends.
//
// Feature methods are pure functions of their handles plus the
// sample-wide caches built at load time; the one sanctioned mutation is
// the call-graph pass, which runs to completion inside Functions before
// the first handle is returned. Enumeration methods skip scopes they
// cannot decode and report them through the backend's diagnostic logger;
// a malformed function never aborts extraction of its siblings.
type Extractor interface {
	// Hashes identifies the sample by its content.
	Hashes() SampleHashes

	// BaseAddress returns the image base, or addr.NoAddress when the
	// backend has no meaningful load address.
	BaseAddress() addr.Address

	// GlobalFeatures replays the format/OS/arch features precomputed at
	// construction. Idempotent.
	GlobalFeatures() []FeatureAt

	// FileFeatures derives features from whole-file metadata: headers,
	// imports, exports, and strings above the minimum length.
	FileFeatures() ([]FeatureAt, error)

	// Functions enumerates every defined function in ascending address
	// order, with freshly initialized per-function state. The call-graph
	// pass has fully completed for all functions before this returns.
	Functions() ([]*FunctionHandle, error)

	FunctionFeatures(f *FunctionHandle) ([]FeatureAt, error)
	BasicBlocks(f *FunctionHandle) ([]BlockHandle, error)
	BasicBlockFeatures(f *FunctionHandle, b BlockHandle) ([]FeatureAt, error)
	Instructions(f *FunctionHandle, b BlockHandle) ([]InsnHandle, error)
	InstructionFeatures(f *FunctionHandle, b BlockHandle, in InsnHandle) ([]FeatureAt, error)

	// IsLibraryFunction reports whether the function at the given address
	// matches known-library code. Backends without the concept return
	// false.
	IsLibraryFunction(a addr.Address) bool

	// FunctionName resolves a function address to a symbolic name.
	FunctionName(a addr.Address) (string, bool)
}

// SortedAddrs returns the members of a call edge set in ascending
// address order.
func SortedAddrs(set map[addr.Address]struct{}) []addr.Address {
	out := make([]addr.Address, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	slices.SortFunc(out, addr.Compare)
	return out
}
