package main

import (
	"flag"
	"fmt"
	"os"

	"bincap/internal/native"
	"bincap/internal/output"
)

func cmdDisasm(args []string) error {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	in := fs.String("in", "", "path to the sample")
	outDir := fs.String("out", "", "output directory (default: stdout)")
	verbose := fs.Bool("verbose", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("--in is required")
	}

	sample, err := native.LoadFile(*in)
	if err != nil {
		return err
	}
	e := native.New(sample, native.Options{Logger: newLogger(*verbose)})

	text, err := e.Disassembly()
	if err != nil {
		return err
	}

	if *outDir == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	return output.WriteASM(*outDir, text)
}
