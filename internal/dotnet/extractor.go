package dotnet

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"bincap/internal/addr"
	"bincap/internal/extract"
	"bincap/internal/feature"
	"bincap/internal/strx"
)

// Options configures a managed extractor.
type Options struct {
	// MinStringLength is the minimum length for extracted strings.
	// Zero means strx.MinLength.
	MinStringLength int
	// Logger receives scope diagnostics. Pass zerolog.Nop() to discard.
	Logger zerolog.Logger
}

// Extractor implements extract.Extractor over a loaded managed sample.
// Construction never fails: all fallible work happened in Load.
type Extractor struct {
	sample *Sample
	minStr int
	log    zerolog.Logger
	global []extract.FeatureAt
}

var _ extract.Extractor = (*Extractor)(nil)

// New builds an extractor from a loaded sample. Global features are
// precomputed here and replayed identically on every call.
func New(s *Sample, opts Options) *Extractor {
	minStr := opts.MinStringLength
	if minStr <= 0 {
		minStr = strx.MinLength
	}
	arch := s.Metadata.Arch
	if arch == "" {
		arch = "any"
	}
	return &Extractor{
		sample: s,
		minStr: minStr,
		log:    opts.Logger,
		global: []extract.FeatureAt{
			{Feature: feature.New(feature.Format, "dotnet"), Address: addr.NoAddress},
			{Feature: feature.New(feature.OS, "any"), Address: addr.NoAddress},
			{Feature: feature.New(feature.Arch, arch), Address: addr.NoAddress},
		},
	}
}

func (e *Extractor) Hashes() extract.SampleHashes { return e.sample.Hashes }

// BaseAddress returns the no-address sentinel: managed token addresses
// are not relative to a load base.
func (e *Extractor) BaseAddress() addr.Address { return addr.NoAddress }

func (e *Extractor) GlobalFeatures() []extract.FeatureAt {
	return slices.Clone(e.global)
}

// Functions enumerates every method body in ascending token order and
// runs the call-graph pass to completion before returning, so function
// scope extraction may read either call edge set. The returned handles
// carry freshly initialized state; calling Functions again rebuilds the
// handles and re-derives the edges.
func (e *Extractor) Functions() ([]*extract.FunctionHandle, error) {
	md := e.sample.Metadata
	methods := make(map[addr.Address]*extract.FunctionHandle, len(md.Bodies))
	for i := range md.Bodies {
		body := &md.Bodies[i]
		a := addr.Token(body.Token)
		// Method tokens are unique; a collision means corrupt metadata and
		// would silently merge two functions' call edges.
		if _, dup := methods[a]; dup {
			return nil, fmt.Errorf("dotnet: method address collision at %s", a)
		}
		methods[a] = &extract.FunctionHandle{
			Address: a,
			State:   extract.NewFunctionState(),
			Inner:   body,
		}
	}

	buildCallEdges(methods)

	handles := make([]*extract.FunctionHandle, 0, len(methods))
	for _, fh := range methods {
		handles = append(handles, fh)
	}
	slices.SortFunc(handles, func(a, b *extract.FunctionHandle) int {
		return addr.Compare(a.Address, b.Address)
	})
	return handles, nil
}

// FunctionFeatures derives call-relationship characteristics from the
// edge sets populated by the call-graph pass.
func (e *Extractor) FunctionFeatures(f *extract.FunctionHandle) ([]extract.FeatureAt, error) {
	var out []extract.FeatureAt
	for _, a := range extract.SortedAddrs(f.State.CallsTo) {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Characteristic, "calls to"),
			Address: a,
		})
	}
	for _, a := range extract.SortedAddrs(f.State.CallsFrom) {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Characteristic, "calls from"),
			Address: a,
		})
	}
	if _, ok := f.State.CallsFrom[f.Address]; ok {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Characteristic, "recursive call"),
			Address: f.Address,
		})
	}
	return out, nil
}

// BasicBlocks treats each method body as exactly one block: the managed
// backend performs no control-flow analysis.
func (e *Extractor) BasicBlocks(f *extract.FunctionHandle) ([]extract.BlockHandle, error) {
	return []extract.BlockHandle{{Address: f.Address, Inner: f.Inner}}, nil
}

// BasicBlockFeatures yields nothing: the format offers no block-granular
// signal beyond what function and instruction scope already capture.
func (e *Extractor) BasicBlockFeatures(f *extract.FunctionHandle, b extract.BlockHandle) ([]extract.FeatureAt, error) {
	return nil, nil
}

// Instructions enumerates the method's instruction stream in program
// order. Each instruction is addressed by the method token plus its
// offset relative to the start of the instruction stream, after the
// method header.
func (e *Extractor) Instructions(f *extract.FunctionHandle, b extract.BlockHandle) ([]extract.InsnHandle, error) {
	body := b.Inner.(*MethodBody)
	out := make([]extract.InsnHandle, 0, len(body.Insns))
	for _, insn := range body.Insns {
		out = append(out, extract.InsnHandle{
			Address: addr.TokenOffset{
				Token:  addr.Token(body.Token),
				Offset: insn.Offset - (body.Offset + body.HeaderSize),
			},
			Inner: insn,
		})
	}
	return out, nil
}

// InstructionFeatures resolves instruction operands through the token
// cache. Tokens that resolve to nothing are a valid unknown reference,
// not an error.
func (e *Extractor) InstructionFeatures(f *extract.FunctionHandle, b extract.BlockHandle, in extract.InsnHandle) ([]extract.FeatureAt, error) {
	insn := in.Inner.(Insn)
	cache := e.sample.Cache
	var out []extract.FeatureAt

	if insn.Op.IsCall() {
		token := uint32(insn.Operand)
		if imp, ok := cache.GetImport(token); ok {
			out = append(out, extract.FeatureAt{
				Feature: feature.New(feature.API, imp.FullName()),
				Address: in.Address,
			})
		} else if nat, ok := cache.GetNativeImport(token); ok {
			out = append(out,
				extract.FeatureAt{
					Feature: feature.New(feature.API, nat.FullName()),
					Address: in.Address,
				},
				extract.FeatureAt{
					Feature: feature.New(feature.Characteristic, "unmanaged call"),
					Address: in.Address,
				},
			)
		}
		// In-module destinations surface through the call edge sets at
		// function scope.
		return out, nil
	}

	switch insn.Op {
	case OpLdstr:
		if s, ok := e.sample.Metadata.UserString(uint32(insn.Operand)); ok {
			if len(s) >= e.minStr && strx.IsPrintable(s) {
				out = append(out, extract.FeatureAt{
					Feature: feature.New(feature.String, s),
					Address: in.Address,
				})
			}
		}
	case OpLdcI4, OpLdcI4S, OpLdcI8:
		out = append(out, extract.FeatureAt{
			Feature: feature.Num(insn.Operand),
			Address: in.Address,
		})
	case OpLdfld, OpLdsfld, OpStfld, OpStsfld:
		if fld, ok := cache.GetField(uint32(insn.Operand)); ok {
			out = append(out, extract.FeatureAt{
				Feature: feature.New(feature.Property, fld.FullName()),
				Address: in.Address,
			})
		}
	}
	return out, nil
}

// IsLibraryFunction always reports false: there is no library signature
// concept for managed methods.
func (e *Extractor) IsLibraryFunction(a addr.Address) bool { return false }

// FunctionName resolves a method definition token to its qualified name.
func (e *Extractor) FunctionName(a addr.Address) (string, bool) {
	t, ok := a.(addr.Token)
	if !ok {
		return "", false
	}
	sym, ok := e.sample.Cache.GetMethod(uint32(t))
	if !ok {
		return "", false
	}
	return sym.FullName(), true
}
