package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"bincap/internal/dotnet"
	"bincap/internal/extract"
	"bincap/internal/native"
)

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}

// loadExtractor builds the backend for a sample: managed CIL when a
// metadata sidecar is given, native AArch64 ELF otherwise.
func loadExtractor(in, metaPath, sigPath string, minStr int, logger zerolog.Logger) (extract.Extractor, error) {
	if metaPath != "" {
		buf, err := os.ReadFile(in)
		if err != nil {
			return nil, fmt.Errorf("read sample: %w", err)
		}
		raw, err := os.ReadFile(metaPath)
		if err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}
		var md dotnet.Metadata
		if err := json.Unmarshal(raw, &md); err != nil {
			return nil, fmt.Errorf("parse metadata: %w", err)
		}
		sample, err := dotnet.Load(&md, buf)
		if err != nil {
			return nil, err
		}
		return dotnet.New(sample, dotnet.Options{
			MinStringLength: minStr,
			Logger:          logger,
		}), nil
	}

	var sigs []native.Signature
	if sigPath != "" {
		raw, err := os.ReadFile(sigPath)
		if err != nil {
			return nil, fmt.Errorf("read signatures: %w", err)
		}
		if err := json.Unmarshal(raw, &sigs); err != nil {
			return nil, fmt.Errorf("parse signatures: %w", err)
		}
	}

	sample, err := native.LoadFile(in)
	if err != nil {
		return nil, err
	}
	return native.New(sample, native.Options{
		MinStringLength: minStr,
		Signatures:      sigs,
		Logger:          logger,
	}), nil
}
