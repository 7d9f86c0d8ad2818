package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "extract":
		err = cmdExtract(os.Args[2:])
	case "info":
		err = cmdInfo(os.Args[2:])
	case "graph":
		err = cmdGraph(os.Args[2:])
	case "disasm":
		err = cmdDisasm(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `bincap — capability feature extractor for native and managed binaries

Usage:
  bincap extract --in <path> [--out <dir>]      Extract features from a sample
  bincap info    --in <path>                    Print sample hashes and counts
  bincap graph   --in <path> [--out <dir>]      Export the call graph as DOT
  bincap disasm  --in <path> [--out <dir>]      Formatted disassembly (native only)

Flags:
  --in <path>         Path to the sample (AArch64 ELF, or raw managed image)
  --metadata <path>   Managed metadata sidecar (JSON); selects the CIL backend
  --out <dir>         Output directory (default: stdout)
  --cfg               graph: per-function control-flow graphs instead
  --min-string <n>    Minimum extracted string length
  --sigs <path>       Library prologue signatures (JSON, native only)
  --workers <n>       Per-function extraction concurrency
  --verbose           Debug logging
`)
}
