package dotnet

import (
	"slices"

	"bincap/internal/addr"
	"bincap/internal/extract"
	"bincap/internal/feature"
	"bincap/internal/strx"
)

// FileFeatures derives features from whole-file metadata: imports,
// method names, user strings, namespaces, classes, and the mixed-mode
// characteristic.
func (e *Extractor) FileFeatures() ([]extract.FeatureAt, error) {
	var out []extract.FeatureAt
	for _, handler := range []func() []extract.FeatureAt{
		e.fileImports,
		e.fileFunctionNames,
		e.fileStrings,
		e.fileNamespaces,
		e.fileClasses,
		e.fileMixedMode,
	} {
		out = append(out, handler()...)
	}
	return out, nil
}

func (e *Extractor) fileImports() []extract.FeatureAt {
	md := e.sample.Metadata
	out := make([]extract.FeatureAt, 0, len(md.Imports)+len(md.NativeImports))
	for _, imp := range md.Imports {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Import, imp.FullName()),
			Address: addr.Token(imp.Token),
		})
	}
	for _, imp := range md.NativeImports {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Import, imp.FullName()),
			Address: addr.Token(imp.Token),
		})
	}
	return out
}

func (e *Extractor) fileFunctionNames() []extract.FeatureAt {
	var out []extract.FeatureAt
	for _, m := range e.sample.Metadata.Methods {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.FunctionName, m.FullName()),
			Address: addr.Token(m.Token),
		})
	}
	return out
}

func (e *Extractor) fileStrings() []extract.FeatureAt {
	md := e.sample.Metadata
	tokens := make([]uint32, 0, len(md.UserStrings))
	for t := range md.UserStrings {
		tokens = append(tokens, t)
	}
	slices.Sort(tokens)

	var out []extract.FeatureAt
	for _, t := range tokens {
		s := md.UserStrings[t]
		if len(s) < e.minStr || !strx.IsPrintable(s) {
			e.log.Debug().Uint32("token", t).Msg("skipping short or unprintable user string")
			continue
		}
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.String, s),
			Address: addr.Token(t),
		})
	}
	return out
}

func (e *Extractor) fileNamespaces() []extract.FeatureAt {
	seen := make(map[string]struct{})
	var names []string
	for _, t := range e.sample.Metadata.Types {
		if t.Namespace == "" {
			continue
		}
		if _, ok := seen[t.Namespace]; ok {
			continue
		}
		seen[t.Namespace] = struct{}{}
		names = append(names, t.Namespace)
	}
	slices.Sort(names)

	out := make([]extract.FeatureAt, 0, len(names))
	for _, ns := range names {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Namespace, ns),
			Address: addr.NoAddress,
		})
	}
	return out
}

func (e *Extractor) fileClasses() []extract.FeatureAt {
	var out []extract.FeatureAt
	for _, t := range e.sample.Metadata.Types {
		out = append(out, extract.FeatureAt{
			Feature: feature.New(feature.Class, t.FullName()),
			Address: addr.Token(t.Token),
		})
	}
	return out
}

// fileMixedMode reports the mixed-mode characteristic when the sample
// declares unmanaged imports alongside managed code.
func (e *Extractor) fileMixedMode() []extract.FeatureAt {
	if len(e.sample.Metadata.NativeImports) == 0 {
		return nil
	}
	return []extract.FeatureAt{{
		Feature: feature.New(feature.Characteristic, "mixed mode"),
		Address: addr.NoAddress,
	}}
}
