package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns a stable hex digest for a piece of lecture content.
// Used to collapse identical in-flight analysis requests onto one upstream call.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
