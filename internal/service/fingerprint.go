package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintLength is the number of hex characters kept from the digest
const FingerprintLength = 16

// ComputeFingerprint derives the visitor dedup key from the client address
// and user agent: the first 16 hex characters of SHA-256("<ip>-<ua>").
// 64 bits is plenty for a visit counter but not for identifying anyone.
func ComputeFingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "-" + userAgent))
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}
