package http

import (
	"net/http/httptest"
	"testing"
)

func TestCallerIdentity(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.10:5123"
	if got := callerIdentity(req); got != "192.0.2.10" {
		t.Fatalf("expected remote host, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", " 203.0.113.5 , 10.0.0.1")
	if got := callerIdentity(req); got != "203.0.113.5" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", " , 10.0.0.1")
	if got := callerIdentity(req); got != "192.0.2.10" {
		t.Fatalf("expected fallback to remote host, got %q", got)
	}
}
