// Package feature defines the capability feature values yielded by the
// extraction pipeline. A feature is an atomic observation (an API call, a
// string, a file format) paired with the scope address it was observed at;
// the pipeline attributes features but never interprets them, that is the
// job of a downstream rule matcher.
package feature

import "fmt"

// Kind classifies a feature value.
type Kind string

const (
	Format         Kind = "format"
	OS             Kind = "os"
	Arch           Kind = "arch"
	String         Kind = "string"
	Import         Kind = "import"
	Export         Kind = "export"
	Section        Kind = "section"
	API            Kind = "api"
	Namespace      Kind = "namespace"
	Class          Kind = "class"
	FunctionName   Kind = "function name"
	Property       Kind = "property"
	Number         Kind = "number"
	Mnemonic       Kind = "mnemonic"
	Characteristic Kind = "characteristic"
)

// Feature is one capability observation. Values are opaque strings; two
// features are the same observation iff kind and value are both equal.
// The same feature may legitimately be yielded from multiple scopes.
type Feature struct {
	Kind  Kind
	Value string
}

func (f Feature) String() string {
	return fmt.Sprintf("%s(%s)", f.Kind, f.Value)
}

// New builds a feature of the given kind.
func New(kind Kind, value string) Feature {
	return Feature{Kind: kind, Value: value}
}

// Num builds a number feature from an immediate operand value.
func Num(v uint64) Feature {
	return Feature{Kind: Number, Value: fmt.Sprintf("0x%x", v)}
}
