package extract

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// SampleHashes identifies a sample by its raw content. The cryptographic
// digests are reported alongside extraction results; ID is a fast 64-bit
// content hash used as a cheap map key for per-sample caches.
type SampleHashes struct {
	MD5    string `json:"md5"`
	SHA1   string `json:"sha1"`
	SHA256 string `json:"sha256"`
	ID     uint64 `json:"-"`
}

// HashBytes computes all sample hashes from the raw input bytes.
func HashBytes(buf []byte) SampleHashes {
	m := md5.Sum(buf)
	s1 := sha1.Sum(buf)
	s256 := sha256.Sum256(buf)
	return SampleHashes{
		MD5:    hex.EncodeToString(m[:]),
		SHA1:   hex.EncodeToString(s1[:]),
		SHA256: hex.EncodeToString(s256[:]),
		ID:     xxh3.Hash(buf),
	}
}
