package main

import (
	"context"
	"flag"
	"fmt"

	"bincap/internal/pipeline"
)

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	in := fs.String("in", "", "path to the sample")
	metaPath := fs.String("metadata", "", "managed metadata sidecar (JSON)")
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

	res, err := pipeline.Run(context.Background(), ex, pipeline.Options{Logger: logger})
	if err != nil {
		return err
	}

	h := res.Hashes
	fmt.Printf("md5:      %s\n", h.MD5)
	fmt.Printf("sha1:     %s\n", h.SHA1)
	fmt.Printf("sha256:   %s\n", h.SHA256)
	fmt.Printf("base:     %s\n", res.Base)

	blocks, insns := 0, 0
	for _, fn := range res.Functions {
		blocks += len(fn.Blocks)
		for _, b := range fn.Blocks {
			insns += len(b.Insns)
		}
	}
	fmt.Printf("functions:    %d\n", len(res.Functions))
	fmt.Printf("basic blocks: %d\n", blocks)
	fmt.Printf("instructions: %d\n", insns)
	fmt.Printf("features:     %d\n", res.FeatureCount())
	return nil
}
