package ratelimit

import (
	"net/http"
	"strings"
)

// UnknownClient is the key used when no proxy header identifies the
// caller. All such callers share one quota bucket.
const UnknownClient = "unknown"

// ClientKey derives a best-effort client key from proxy-supplied
// headers, favoring the outermost proxy's view of the client:
//
//  1. X-Forwarded-For — first comma-separated entry, trimmed
//  2. X-Real-IP
//  3. "unknown"
//
// This is key material for throttling, not a security-grade client
// identifier: any client that controls its own headers can spoof it in
// non-proxied deployments.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return UnknownClient
}
