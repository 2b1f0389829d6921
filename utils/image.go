package utils

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Digest Hex encoded blake2b-256 digest of an image payload
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ETag Strong entity tag for an image payload, quoted as required in the header
func ETag(data []byte) string {
	return fmt.Sprintf("%q", Digest(data))
}
