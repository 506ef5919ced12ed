package http

import (
	"net"
	"net/http"
	"strings"
)

// callerIdentity is the anonymous player identity used for attempt limits:
// the first X-Forwarded-For entry, else the connection host.
func callerIdentity(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
