// Package pipeline drives a full extraction over one sample.
//
// The walk is ordered by scope: global and file features first, then the
// function enumeration, which doubles as the call-graph barrier. Only
// after every function's call edges are final does per-function
// extraction begin, so function features may be computed in parallel
// without observing a half-built graph.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bincap/internal/addr"
	"bincap/internal/extract"
)

// Options configures a pipeline run.
type Options struct {
	// Workers bounds per-function extraction concurrency. Zero or
	// negative means one goroutine per available CPU.
	Workers int
	// Logger receives scope diagnostics. Pass zerolog.Nop() to discard.
	Logger zerolog.Logger
}

// Result is the complete extraction output for one sample.
type Result struct {
	Hashes    extract.SampleHashes
	Base      addr.Address
	Global    []extract.FeatureAt
	File      []extract.FeatureAt
	Functions []FunctionResult
}

// FunctionResult holds one function's features and nested scopes.
type FunctionResult struct {
	Address  addr.Address
	Name     string
	Library  bool
	Features []extract.FeatureAt
	Blocks   []BlockResult
}

// BlockResult holds one basic block's features and instructions.
type BlockResult struct {
	Address  addr.Address
	Features []extract.FeatureAt
	Insns    []InsnResult
}

// InsnResult holds one instruction's features.
type InsnResult struct {
	Address  addr.Address
	Features []extract.FeatureAt
}

// FeatureCount returns the total number of features across all scopes.
func (r *Result) FeatureCount() int {
	n := len(r.Global) + len(r.File)
	for _, f := range r.Functions {
		n += len(f.Features)
		for _, b := range f.Blocks {
			n += len(b.Features)
			for _, in := range b.Insns {
				n += len(in.Features)
			}
		}
	}
	return n
}

// Run walks every scope of the sample and collects its features.
// A scope that fails to extract is logged and skipped; only a failed
// function enumeration aborts the run.
func Run(ctx context.Context, ex extract.Extractor, opts Options) (*Result, error) {
	log := opts.Logger

	res := &Result{
		Hashes: ex.Hashes(),
		Base:   ex.BaseAddress(),
		Global: ex.GlobalFeatures(),
	}

	file, err := ex.FileFeatures()
	if err != nil {
		log.Warn().Err(err).Msg("file feature extraction failed")
	} else {
		res.File = file
	}

	funcs, err := ex.Functions()
	if err != nil {
		return nil, fmt.Errorf("pipeline: enumerate functions: %w", err)
	}

	res.Functions = make([]FunctionResult, len(funcs))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, f := range funcs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res.Functions[i] = extractFunction(ex, f, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return res, nil
}

func extractFunction(ex extract.Extractor, f *extract.FunctionHandle, log zerolog.Logger) FunctionResult {
	fr := FunctionResult{
		Address: f.Address,
		Library: ex.IsLibraryFunction(f.Address),
	}
	fr.Name, _ = ex.FunctionName(f.Address)

	feats, err := ex.FunctionFeatures(f)
	if err != nil {
		log.Warn().Err(err).Stringer("func", f.Address).Msg("function features failed")
	} else {
		fr.Features = feats
	}

	blocks, err := ex.BasicBlocks(f)
	if err != nil {
		log.Warn().Err(err).Stringer("func", f.Address).Msg("basic block enumeration failed")
		return fr
	}
	for _, b := range blocks {
		br := BlockResult{Address: b.Address}
		if feats, err := ex.BasicBlockFeatures(f, b); err != nil {
			log.Warn().Err(err).Stringer("block", b.Address).Msg("block features failed")
		} else {
			br.Features = feats
		}

		insns, err := ex.Instructions(f, b)
		if err != nil {
			log.Warn().Err(err).Stringer("block", b.Address).Msg("instruction enumeration failed")
			fr.Blocks = append(fr.Blocks, br)
			continue
		}
		for _, in := range insns {
			feats, err := ex.InstructionFeatures(f, b, in)
			if err != nil {
				log.Warn().Err(err).Stringer("insn", in.Address).Msg("instruction features failed")
				continue
			}
			br.Insns = append(br.Insns, InsnResult{Address: in.Address, Features: feats})
		}
		fr.Blocks = append(fr.Blocks, br)
	}
	return fr
}
