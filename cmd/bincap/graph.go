package main

import (
	"flag"
	"fmt"
	"os"

	"bincap/internal/callgraph"
	"bincap/internal/native"
	"bincap/internal/output"
)

func cmdGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	in := fs.String("in", "", "path to the sample")
	metaPath := fs.String("metadata", "", "managed metadata sidecar (JSON)")
	outDir := fs.String("out", "", "output directory (default: stdout)")
	cfgMode := fs.Bool("cfg", false, "per-function control-flow graphs instead of the call graph")
	verbose := fs.Bool("verbose", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("--in is required")
	}

	logger := newLogger(*verbose)
	ex, err := loadExtractor(*in, *metaPath, "", 0, logger)
	if err != nil {
		return err
	}

	if *cfgMode {
		ne, ok := ex.(*native.Extractor)
		if !ok {
			return fmt.Errorf("--cfg requires a native sample: managed methods have no block structure")
		}
		cfgs, err := ne.FuncCFGs()
		if err != nil {
			return err
		}
		dot := callgraph.DOTCFG(cfgs, "bincap control flow")
		if *outDir == "" {
			fmt.Print(dot)
			return nil
		}
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		return output.WriteCFGDOT(*outDir, dot)
	}

	funcs, err := ex.Functions()
	if err != nil {
		return err
	}

	g := callgraph.Build(ex, funcs)
	dot := callgraph.DOT(g, "bincap call graph")

	if *outDir == "" {
		fmt.Print(dot)
		return nil
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	return output.WriteGraphDOT(*outDir, dot)
}
