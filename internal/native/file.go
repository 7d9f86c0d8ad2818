package native

import (
	"bincap/internal/addr"
	"bincap/internal/extract"
	"bincap/internal/feature"
	"bincap/internal/strx"
)

// FileFeatures derives features from whole-file metadata: exported and
// imported symbols, section names, and strings above the minimum length.
func (e *Extractor) FileFeatures() ([]extract.FeatureAt, error) {
	var out []extract.FeatureAt

	for _, s := range e.sample.File.Exports() {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Export, s.Name),
			Address: addr.Absolute(s.Addr),
		})
	}

	// Imported symbols have no address until the loader resolves them.
	for _, name := range e.sample.File.ImportNames() {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Import, name),
			Address: addr.NoAddress,
		})
	}

	for _, s := range e.sample.File.SectionNames() {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Section, s.Name),
			Address: addr.Absolute(s.Addr),
		})
	}

	out = append(out, e.fileStrings()...)
	return out, nil
}

// fileStrings scans the raw file for ASCII and UTF-16LE strings.
// Offsets are file offsets, reported as absolute addresses.
func (e *Extractor) fileStrings() []extract.FeatureAt {
	buf := e.sample.File.Bytes()
	var out []extract.FeatureAt

	ascii, err := strx.ASCII(buf, e.minStr)
	if err == nil {
		for _, s := range ascii {
			out = append(out, extract.FeatureAt{
				Feature: feature.New(feature.String, s.S),
				Address: addr.Absolute(s.Offset),
			})
		}
	}

	wide, err := strx.UTF16(buf, e.minStr)
	if err == nil {
		for _, s := range wide {
			out = append(out, extract.FeatureAt{
				Feature: feature.New(feature.String, s.S),
				Address: addr.Absolute(s.Offset),
			})
		}
	}

	return out
}
