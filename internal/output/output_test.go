package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bincap/internal/addr"
	"bincap/internal/extract"
	"bincap/internal/feature"
	"bincap/internal/pipeline"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Hashes: extract.SampleHashes{MD5: "m", SHA1: "s1", SHA256: "s256"},
		Base:   addr.Absolute(0x400000),
		Global: []extract.FeatureAt{
			{Feature: feature.New(feature.Format, "elf"), Address: addr.NoAddress},
		},
		Functions: []pipeline.FunctionResult{
			{
				Address: addr.Absolute(0x401000),
				Name:    "main",
				Blocks: []pipeline.BlockResult{
					{
						Address: addr.Absolute(0x401000),
						Insns: []pipeline.InsnResult{
							{
								Address: addr.Absolute(0x401000),
								Features: []extract.FeatureAt{
									{Feature: feature.New(feature.Mnemonic, "nop"), Address: addr.Absolute(0x401000)},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestNewReport(t *testing.T) {
	r := NewReport(sampleResult())

	assert.Equal(t, "s256", r.SHA256)
	assert.Equal(t, "0x400000", r.Base)
	require.Len(t, r.Global, 1)
	assert.Equal(t, FeatureEntry{Kind: "format", Value: "elf", Address: "global"}, r.Global[0])

	require.Len(t, r.Functions, 1)
	fn := r.Functions[0]
	assert.Equal(t, "0x401000", fn.Address)
	assert.Equal(t, "main", fn.Name)
	require.Len(t, fn.Blocks, 1)
	require.Len(t, fn.Blocks[0].Instructions, 1)
	assert.Equal(t, "nop", fn.Blocks[0].Instructions[0].Features[0].Value)
}

func TestEncodeRoundTrip(t *testing.T) {
	r := NewReport(sampleResult())

	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf))

	var back Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, *r, back)
}

func TestWriteReportJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteReportJSON(dir, NewReport(sampleResult())))

	raw, err := os.ReadFile(filepath.Join(dir, "features.json"))
	require.NoError(t, err)
	var back Report
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "main", back.Functions[0].Name)
}

func TestWriteFunctionsJSONL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFunctionsJSONL(dir, NewReport(sampleResult())))

	raw, err := os.ReadFile(filepath.Join(dir, "functions.jsonl"))
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(raw), []byte("\n"))
	require.Len(t, lines, 1)
	var fn FunctionEntry
	require.NoError(t, json.Unmarshal(lines[0], &fn))
	assert.Equal(t, "main", fn.Name)
}

func TestWriteGraphDOT(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteGraphDOT(dir, "digraph g {}\n"))

	raw, err := os.ReadFile(filepath.Join(dir, "callgraph.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "digraph")
}

func TestWriteCFGDOT(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCFGDOT(dir, "digraph cfg {}\n"))

	raw, err := os.ReadFile(filepath.Join(dir, "cfg.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "digraph")
}

func TestWriteASM(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteASM(dir, "0x00401000  1f 20 03 d5  NOP\n"))

	raw, err := os.ReadFile(filepath.Join(dir, "asm.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "NOP")
}
