// Package checksum fingerprints raw note records so that an UPDATE
// carrying an unchanged record can be skipped.
package checksum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of a record. Whitespace around
// the record is ignored, so the same record read after a different command
// separator has the same sum.
func Sum(record []byte) string {
	h := sha256.Sum256(bytes.TrimSpace(record))
	return hex.EncodeToString(h[:])
}
