// Package metadata captures client IP and User-Agent for audit enrichment.
package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"recouvro/pkg/requestcontext"
)

// ClientMetadata extracts the client IP address and a condensed User-Agent
// summary from the request and adds them to the context for handlers and
// services. Apply early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIPFromRequest(r)
		ua := Summarize(r.Header.Get("User-Agent"))

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, ua)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Summarize condenses a raw User-Agent string into "Browser/Version (OS)".
// Audit events store the summary rather than the raw header, which can be
// arbitrarily long and carries no extra forensic value.
func Summarize(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	var b strings.Builder
	b.WriteString(name)
	if version != "" {
		b.WriteString("/")
		b.WriteString(version)
	}
	if os := ua.OS(); os != "" {
		b.WriteString(" (")
		b.WriteString(os)
		b.WriteString(")")
	}
	return b.String()
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs; the first is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (direct connection), stripping the port.
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
