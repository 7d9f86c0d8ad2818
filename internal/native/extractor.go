package native

import (
	"debug/elf"
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/zboralski/lattice"

	"bincap/internal/addr"
	"bincap/internal/callgraph"
	"bincap/internal/disasm"
	"bincap/internal/extract"
	"bincap/internal/feature"
	"bincap/internal/strx"
)

// stringCacheSize bounds the cache of C strings read from data
// references; many instructions reference the same literal.
const stringCacheSize = 4096

// maxStringRead caps how many bytes one data reference may pull in.
const maxStringRead = 256

// Options configures a native extractor.
type Options struct {
	// MinStringLength is the minimum length for extracted strings.
	// Zero means strx.MinLength.
	MinStringLength int
	// MaxSteps caps per-function disassembly; zero uses the disasm
	// default.
	MaxSteps int
	// Signatures are known-library prologue signatures for
	// IsLibraryFunction.
	Signatures []Signature
	// Logger receives scope diagnostics. Pass zerolog.Nop() to discard.
	Logger zerolog.Logger
}

// funcInner is the backend object behind a native function handle.
type funcInner struct {
	fn    Function
	insts []disasm.Inst
	calls []disasm.Call
}

// Extractor implements extract.Extractor over a loaded native sample.
type Extractor struct {
	sample     *Sample
	minStr     int
	maxSteps   int
	log        zerolog.Logger
	global     []extract.FeatureAt
	nameByAddr map[uint64]string
	sigs       *SigSet
	strCache   *lru.Cache[uint64, string]
}

var _ extract.Extractor = (*Extractor)(nil)

// New builds an extractor from a loaded sample. Global features and the
// symbol name index are precomputed here.
func New(s *Sample, opts Options) *Extractor {
	minStr := opts.MinStringLength
	if minStr <= 0 {
		minStr = strx.MinLength
	}

	nameByAddr := make(map[uint64]string, len(s.Funcs))
	for _, fn := range s.Funcs {
		if fn.Name != "" {
			nameByAddr[fn.Addr] = fn.Name
		}
	}

	cache, _ := lru.New[uint64, string](stringCacheSize)

	return &Extractor{
		sample:     s,
		minStr:     minStr,
		maxSteps:   opts.MaxSteps,
		log:        opts.Logger,
		nameByAddr: nameByAddr,
		sigs:       NewSigSet(opts.Signatures),
		strCache:   cache,
		global: []extract.FeatureAt{
			{Feature: feature.New(feature.Format, "elf"), Address: addr.NoAddress},
			{Feature: feature.New(feature.OS, osName(s.File.ELF.OSABI)), Address: addr.NoAddress},
			{Feature: feature.New(feature.Arch, "aarch64"), Address: addr.NoAddress},
		},
	}
}

func osName(abi elf.OSABI) string {
	switch abi {
	case elf.ELFOSABI_FREEBSD:
		return "freebsd"
	case elf.ELFOSABI_OPENBSD:
		return "openbsd"
	case elf.ELFOSABI_NETBSD:
		return "netbsd"
	default:
		// ELFOSABI_NONE is what mainstream linkers emit on Linux.
		return "linux"
	}
}

func (e *Extractor) Hashes() extract.SampleHashes { return e.sample.Hashes }

func (e *Extractor) BaseAddress() addr.Address {
	return addr.Absolute(e.sample.Base)
}

func (e *Extractor) GlobalFeatures() []extract.FeatureAt {
	return slices.Clone(e.global)
}

// Functions disassembles every discovered function and derives the
// direct-call graph before returning. A function whose body cannot be
// read is skipped with a diagnostic; its siblings still enumerate.
func (e *Extractor) Functions() ([]*extract.FunctionHandle, error) {
	handles := make([]*extract.FunctionHandle, 0, len(e.sample.Funcs))
	byAddr := make(map[addr.Address]*extract.FunctionHandle, len(e.sample.Funcs))

	for _, fn := range e.sample.Funcs {
		data, err := e.sample.File.ReadBytesAtVA(fn.Addr, int(fn.Size))
		if err != nil {
			e.log.Warn().Err(err).Uint64("addr", fn.Addr).Str("name", fn.Name).
				Msg("skipping unreadable function")
			continue
		}
		insts := disasm.Disassemble(data, disasm.Options{BaseAddr: fn.Addr, MaxSteps: e.maxSteps})
		fh := &extract.FunctionHandle{
			Address: addr.Absolute(fn.Addr),
			State:   extract.NewFunctionState(),
			Inner:   &funcInner{fn: fn, insts: insts, calls: disasm.Calls(insts)},
		}
		handles = append(handles, fh)
		byAddr[fh.Address] = fh
	}

	// Direct-call graph pass: must complete for all functions before any
	// function's features are extracted. Indirect calls carry no static
	// target and contribute no edges.
	for _, fh := range handles {
		inner := fh.Inner.(*funcInner)
		for _, c := range inner.calls {
			if c.Indirect {
				continue
			}
			target := addr.Absolute(c.Target)
			if dest, ok := byAddr[target]; ok {
				dest.State.CallsTo[fh.Address] = struct{}{}
			}
			fh.State.CallsFrom[target] = struct{}{}
		}
	}

	return handles, nil
}

func (e *Extractor) FunctionFeatures(f *extract.FunctionHandle) ([]extract.FeatureAt, error) {
	inner := f.Inner.(*funcInner)
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
	if disasm.BuildCFG(inner.insts).HasLoop() {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Characteristic, "loop"),
			Address: f.Address,
		})
	}
	return out, nil
}

func (e *Extractor) BasicBlocks(f *extract.FunctionHandle) ([]extract.BlockHandle, error) {
	inner := f.Inner.(*funcInner)
	cfg := disasm.BuildCFG(inner.insts)
	out := make([]extract.BlockHandle, 0, len(cfg.Blocks))
	for _, b := range cfg.Blocks {
		out = append(out, extract.BlockHandle{
			Address: addr.Absolute(b.Start),
			Inner:   b,
		})
	}
	return out, nil
}

// BasicBlockFeatures reports the tight-loop characteristic for blocks
// that branch back to their own start.
func (e *Extractor) BasicBlockFeatures(f *extract.FunctionHandle, b extract.BlockHandle) ([]extract.FeatureAt, error) {
	blk := b.Inner.(disasm.BasicBlock)
	if !blk.SelfLoop() {
		return nil, nil
	}
	return []extract.FeatureAt{{
		Feature: feature.New(feature.Characteristic, "tight loop"),
		Address: b.Address,
	}}, nil
}

func (e *Extractor) Instructions(f *extract.FunctionHandle, b extract.BlockHandle) ([]extract.InsnHandle, error) {
	blk := b.Inner.(disasm.BasicBlock)
	out := make([]extract.InsnHandle, 0, len(blk.Insts))
	for _, in := range blk.Insts {
		out = append(out, extract.InsnHandle{
			Address: addr.Absolute(in.Addr),
			Inner:   in,
		})
	}
	return out, nil
}

func (e *Extractor) InstructionFeatures(f *extract.FunctionHandle, b extract.BlockHandle, in extract.InsnHandle) ([]extract.FeatureAt, error) {
	inst := in.Inner.(disasm.Inst)
	var out []extract.FeatureAt

	if inst.Mnemonic != "" && inst.Mnemonic != ".word" {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Mnemonic, inst.Mnemonic),
			Address: in.Address,
		})
	}

	if c, ok := disasm.DecodeCall(inst.Raw, inst.Addr); ok {
		if c.Indirect {
			out = append(out, extract.FeatureAt{
				Feature: feature.New(feature.Characteristic, "indirect call"),
				Address: in.Address,
			})
		} else if name, ok := e.nameByAddr[c.Target]; ok {
			out = append(out, extract.FeatureAt{
				Feature: feature.New(feature.API, name),
				Address: in.Address,
			})
		}
		return out, nil
	}

	if imm, ok := disasm.DecodeMOVZ(inst.Raw); ok {
		out = append(out, extract.FeatureAt{
			Feature: feature.Num(imm),
			Address: in.Address,
		})
	}

	if target, ok := disasm.DecodeADR(inst.Raw, inst.Addr); ok {
		if s, ok := e.readString(target); ok {
			out = append(out, extract.FeatureAt{
				Feature: feature.New(feature.String, s),
				Address: in.Address,
			})
		}
	}

	return out, nil
}

// readString reads a NUL-terminated printable string at the given
// virtual address, through the sample-wide cache.
func (e *Extractor) readString(va uint64) (string, bool) {
	if s, ok := e.strCache.Get(va); ok {
		return s, true
	}
	buf, err := e.sample.File.ReadBytesAtVA(va, maxStringRead)
	if err != nil {
		return "", false
	}
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	s := string(buf[:n])
	if len(s) < e.minStr || !strx.IsPrintable(s) {
		return "", false
	}
	e.strCache.Add(va, s)
	return s, true
}

// IsLibraryFunction matches the function's prologue bytes against the
// known-library signature set.
func (e *Extractor) IsLibraryFunction(a addr.Address) bool {
	av, ok := a.(addr.Absolute)
	if !ok {
		return false
	}
	for _, fn := range e.sample.Funcs {
		if fn.Addr != uint64(av) {
			continue
		}
		body, err := e.sample.File.ReadBytesAtVA(fn.Addr, SignatureWindow)
		if err != nil {
			return false
		}
		_, matched := e.sigs.Match(body)
		return matched
	}
	return false
}

func (e *Extractor) FunctionName(a addr.Address) (string, bool) {
	av, ok := a.(addr.Absolute)
	if !ok {
		return "", false
	}
	name, ok := e.nameByAddr[uint64(av)]
	return name, ok
}

// FuncCFGs builds a lattice CFG for every disassembled function, for
// DOT export from the CLI.
func (e *Extractor) FuncCFGs() ([]*lattice.FuncCFG, error) {
	funcs, err := e.Functions()
	if err != nil {
		return nil, err
	}
	resolve := func(target uint64) string { return e.nameByAddr[target] }
	out := make([]*lattice.FuncCFG, 0, len(funcs))
	for _, f := range funcs {
		inner := f.Inner.(*funcInner)
		out = append(out, callgraph.BuildFuncCFG(
			e.funcLabel(inner.fn),
			disasm.BuildCFG(inner.insts),
			inner.calls,
			resolve,
		))
	}
	return out, nil
}

// Disassembly renders every function's formatted instruction listing,
// annotated with symbol names.
func (e *Extractor) Disassembly() (string, error) {
	funcs, err := e.Functions()
	if err != nil {
		return "", err
	}
	lookup := func(a uint64) (string, bool) {
		name, ok := e.nameByAddr[a]
		return name, ok
	}
	var b strings.Builder
	for _, f := range funcs {
		inner := f.Inner.(*funcInner)
		b.WriteString(disasm.Format(inner.insts, lookup))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func (e *Extractor) funcLabel(fn Function) string {
	if fn.Name != "" {
		return fn.Name
	}
	return fmt.Sprintf("sub_%x", fn.Addr)
}
