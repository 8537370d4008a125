package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Digest returns the hex fingerprint of a payload. Identical bytes always
// produce identical digests, which is what lets a client's stored validator
// short-circuit a full body transfer.
func Digest(payload []byte) string {
	sum := md5.Sum(payload)
	return hex.EncodeToString(sum[:])
}

// ETag derives the weak validation token for a response payload.
func ETag(payload []byte) string {
	return `W/"` + Digest(payload) + `"`
}

// etagMatch reports whether an If-None-Match header value matches token.
// The header may carry a comma-separated list or the wildcard form.
func etagMatch(header, token string) bool {
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimSpace(candidate) == token {
			return true
		}
	}
	return false
}
