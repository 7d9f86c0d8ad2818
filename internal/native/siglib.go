package native

import "github.com/zeebo/xxh3"

// SignatureWindow is the number of prologue bytes hashed to identify
// known-library code.
const SignatureWindow = 64

// Signature identifies one known-library function by a hash of its
// prologue bytes.
type Signature struct {
	Name string `json:"name"`
	Hash uint64 `json:"hash"`
}

// SigSet is an indexed set of library signatures.
type SigSet struct {
	byHash map[uint64]string
}

// NewSigSet indexes signatures by hash.
func NewSigSet(sigs []Signature) *SigSet {
	s := &SigSet{byHash: make(map[uint64]string, len(sigs))}
	for _, sig := range sigs {
		s.byHash[sig.Hash] = sig.Name
	}
	return s
}

// HashPrologue hashes the first SignatureWindow bytes of a function
// body. Shorter bodies hash whole.
func HashPrologue(body []byte) uint64 {
	if len(body) > SignatureWindow {
		body = body[:SignatureWindow]
	}
	return xxh3.Hash(body)
}

// Match looks up a function prologue against the signature set.
func (s *SigSet) Match(body []byte) (string, bool) {
	name, ok := s.byHash[HashPrologue(body)]
	return name, ok
}
