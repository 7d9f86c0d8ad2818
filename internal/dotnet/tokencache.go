package dotnet

import "fmt"

// TokenCache maps metadata tokens to resolved symbols, one mapping per
// symbol category. It is built by a single pass over each metadata table
// at load time and is read-only afterwards, so it may be shared freely
// across concurrent per-function extraction.
//
// Lookups are total: a missing token is an absence, never an error.
type TokenCache struct {
	imports       map[uint32]Symbol
	nativeImports map[uint32]Symbol
	methods       map[uint32]Symbol
	fields        map[uint32]Symbol
	types         map[uint32]Symbol
}

// BuildTokenCache indexes every metadata table by token. A duplicate
// token within one category fails the build with ErrDuplicateToken.
func BuildTokenCache(md *Metadata) (*TokenCache, error) {
	c := &TokenCache{
		imports:       make(map[uint32]Symbol, len(md.Imports)),
		nativeImports: make(map[uint32]Symbol, len(md.NativeImports)),
		methods:       make(map[uint32]Symbol, len(md.Methods)),
		fields:        make(map[uint32]Symbol, len(md.Fields)),
		types:         make(map[uint32]Symbol, len(md.Types)),
	}
	tables := []struct {
		category string
		dst      map[uint32]Symbol
		rows     []Symbol
	}{
		{"import", c.imports, md.Imports},
		{"native import", c.nativeImports, md.NativeImports},
		{"method", c.methods, md.Methods},
		{"field", c.fields, md.Fields},
		{"type", c.types, md.Types},
	}
	for _, t := range tables {
		for _, s := range t.rows {
			if _, dup := t.dst[s.Token]; dup {
				return nil, fmt.Errorf("%w: %s 0x%08x", ErrDuplicateToken, t.category, s.Token)
			}
			t.dst[s.Token] = s
		}
	}
	return c, nil
}

// GetImport resolves a managed import (external call target) token.
func (c *TokenCache) GetImport(token uint32) (Symbol, bool) {
	s, ok := c.imports[token]
	return s, ok
}

// GetNativeImport resolves an unmanaged (P/Invoke) import token.
func (c *TokenCache) GetNativeImport(token uint32) (Symbol, bool) {
	s, ok := c.nativeImports[token]
	return s, ok
}

// GetMethod resolves a method definition token.
func (c *TokenCache) GetMethod(token uint32) (Symbol, bool) {
	s, ok := c.methods[token]
	return s, ok
}

// GetField resolves a field definition token.
func (c *TokenCache) GetField(token uint32) (Symbol, bool) {
	s, ok := c.fields[token]
	return s, ok
}

// GetType resolves a type definition token.
func (c *TokenCache) GetType(token uint32) (Symbol, bool) {
	s, ok := c.types[token]
	return s, ok
}
