// Package output writes extraction results to files.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bincap/internal/extract"
	"bincap/internal/pipeline"
)

// FeatureEntry is one feature in serialized form. Addresses are encoded
// as their display strings so every address kind shares one shape.
type FeatureEntry struct {
	Kind    string `json:"kind"`
	Value   string `json:"value"`
	Address string `json:"address"`
}

// InsnEntry is one instruction scope.
type InsnEntry struct {
	Address  string         `json:"address"`
	Features []FeatureEntry `json:"features,omitempty"`
}

// BlockEntry is one basic-block scope.
type BlockEntry struct {
	Address      string         `json:"address"`
	Features     []FeatureEntry `json:"features,omitempty"`
	Instructions []InsnEntry    `json:"instructions,omitempty"`
}

// FunctionEntry is one function scope.
type FunctionEntry struct {
	Address  string         `json:"address"`
	Name     string         `json:"name,omitempty"`
	Library  bool           `json:"library,omitempty"`
	Features []FeatureEntry `json:"features,omitempty"`
	Blocks   []BlockEntry   `json:"blocks,omitempty"`
}

// Report is the serialized form of a pipeline result.
type Report struct {
	MD5       string          `json:"md5"`
	SHA1      string          `json:"sha1"`
	SHA256    string          `json:"sha256"`
	Base      string          `json:"base"`
	Global    []FeatureEntry  `json:"global,omitempty"`
	File      []FeatureEntry  `json:"file,omitempty"`
	Functions []FunctionEntry `json:"functions,omitempty"`
}

// NewReport converts a pipeline result into its serialized form.
func NewReport(res *pipeline.Result) *Report {
	r := &Report{
		MD5:    res.Hashes.MD5,
		SHA1:   res.Hashes.SHA1,
		SHA256: res.Hashes.SHA256,
		Base:   res.Base.String(),
		Global: featureEntries(res.Global),
		File:   featureEntries(res.File),
	}
	for _, fn := range res.Functions {
		fe := FunctionEntry{
			Address:  fn.Address.String(),
			Name:     fn.Name,
			Library:  fn.Library,
			Features: featureEntries(fn.Features),
		}
		for _, b := range fn.Blocks {
			be := BlockEntry{
				Address:  b.Address.String(),
				Features: featureEntries(b.Features),
			}
			for _, in := range b.Insns {
				be.Instructions = append(be.Instructions, InsnEntry{
					Address:  in.Address.String(),
					Features: featureEntries(in.Features),
				})
			}
			fe.Blocks = append(fe.Blocks, be)
		}
		r.Functions = append(r.Functions, fe)
	}
	return r
}

func featureEntries(feats []extract.FeatureAt) []FeatureEntry {
	if len(feats) == 0 {
		return nil
	}
	out := make([]FeatureEntry, 0, len(feats))
	for _, f := range feats {
		out = append(out, FeatureEntry{
			Kind:    string(f.Feature.Kind),
			Value:   f.Feature.Value,
			Address: f.Address.String(),
		})
	}
	return out
}

// Encode writes the report as indented JSON.
func (r *Report) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("output: encode report: %w", err)
	}
	return nil
}

// WriteReportJSON writes the report to features.json in dir.
func WriteReportJSON(dir string, r *Report) error {
	return writeJSON(filepath.Join(dir, "features.json"), r)
}

// WriteFunctionsJSONL writes one function entry per line to
// functions.jsonl in dir, for streaming consumers.
func WriteFunctionsJSONL(dir string, r *Report) error {
	path := filepath.Join(dir, "functions.jsonl")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, fn := range r.Functions {
		if err := enc.Encode(fn); err != nil {
			return fmt.Errorf("output: encode %s: %w", path, err)
		}
	}
	return nil
}

// WriteGraphDOT writes rendered DOT to callgraph.dot in dir.
func WriteGraphDOT(dir string, dot string) error {
	return writeText(filepath.Join(dir, "callgraph.dot"), dot)
}

// WriteCFGDOT writes rendered per-function CFG DOT to cfg.dot in dir.
func WriteCFGDOT(dir string, dot string) error {
	return writeText(filepath.Join(dir, "cfg.dot"), dot)
}

// WriteASM writes a formatted disassembly listing to asm.txt in dir.
func WriteASM(dir string, text string) error {
	return writeText(filepath.Join(dir, "asm.txt"), text)
}

func writeText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return nil
}
