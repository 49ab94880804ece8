// Package sha256 fingerprints output documents. The digest is taken over the
// exact bytes handed to every sink, so a local file, its GCS mirror and the
// published run summary can be checked against one another.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher implements scrape.Hasher for OutputSummary.SHA256.
type Hasher struct{}

// New returns a document hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash returns the lowercase hex SHA-256 of an encoded document. It never
// fails.
func (h *Hasher) Hash(document []byte) (string, error) {
	sum := sha256.Sum256(document)
	return hex.EncodeToString(sum[:]), nil
}
