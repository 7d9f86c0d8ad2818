package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bincap/internal/output"
	"bincap/internal/pipeline"
)

func cmdExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	in := fs.String("in", "", "path to the sample")
	metaPath := fs.String("metadata", "", "managed metadata sidecar (JSON)")
	outDir := fs.String("out", "", "output directory (default: stdout)")
	minStr := fs.Int("min-string", 0, "minimum extracted string length")
	sigPath := fs.String("sigs", "", "library prologue signatures (JSON)")
	workers := fs.Int("workers", 0, "per-function extraction concurrency")
	verbose := fs.Bool("verbose", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("--in is required")
	}

	logger := newLogger(*verbose)
	ex, err := loadExtractor(*in, *metaPath, *sigPath, *minStr, logger)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(context.Background(), ex, pipeline.Options{
		Workers: *workers,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	report := output.NewReport(res)
	if *outDir == "" {
		return report.Encode(os.Stdout)
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := output.WriteReportJSON(*outDir, report); err != nil {
		return err
	}
	if err := output.WriteFunctionsJSONL(*outDir, report); err != nil {
		return err
	}
	logger.Info().Str("dir", *outDir).Int("features", res.FeatureCount()).
		Msg("extraction complete")
	return nil
}
