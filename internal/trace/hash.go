package trace

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeTraceHash computes the deterministic hash of a canonical trace encoding.
//
// Requirements:
//   - Must cover the emission order of events (order is the observable).
//   - Must be stable across architectures/compilers.
//
// This function assumes the input bytes are already a canonical encoding
// (e.g., from LifecycleTrace.CanonicalJSON()).
//
// Hash function: sha256 over the canonical bytes, hex-encoded.
func ComputeTraceHash(canonicalEncoding []byte) string {
	if len(canonicalEncoding) == 0 {
		return ""
	}
	sum := sha256.Sum256(canonicalEncoding)
	return hex.EncodeToString(sum[:])
}
