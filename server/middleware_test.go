package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"nightdrive/config"
)

func TestClientIPPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		cfHeader   string
		xffHeader  string
		remoteAddr string
		want       string
	}{
		{"cloudflare wins", false, "203.0.113.7", "198.51.100.9", "10.0.0.1:1234", "203.0.113.7"},
		{"xff trusted behind proxy", true, "", "198.51.100.9, 10.0.0.2", "10.0.0.1:1234", "198.51.100.9"},
		{"xff ignored without trust", false, "", "198.51.100.9", "10.0.0.1:1234", "10.0.0.1"},
		{"remote addr fallback", false, "", "", "192.0.2.4:9999", "192.0.2.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &config.Config{Env: "test", TrustProxy: tt.trustProxy})
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.cfHeader != "" {
				r.Header.Set("CF-Connecting-IP", tt.cfHeader)
			}
			if tt.xffHeader != "" {
				r.Header.Set("X-Forwarded-For", tt.xffHeader)
			}

			if got := s.clientIP(r); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterPrunesIdleClients(t *testing.T) {
	rl := newRateLimiter()

	rl.allow(apiRule, "1.2.3.4")
	rl.mu.Lock()
	rl.clients["api:1.2.3.4"].lastSeen = time.Now().Add(-idleExpiry - time.Minute)
	rl.lastPrune = time.Now().Add(-pruneInterval - time.Minute)
	rl.mu.Unlock()

	rl.allow(apiRule, "5.6.7.8")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.clients["api:1.2.3.4"]; ok {
		t.Error("idle bucket survived the prune")
	}
	if _, ok := rl.clients["api:5.6.7.8"]; !ok {
		t.Error("live bucket was dropped")
	}
}

func TestRateLimiterBucketsAreIndependent(t *testing.T) {
	rl := newRateLimiter()

	for i := 0; i < newsletterRule.burst; i++ {
		if !rl.allow(newsletterRule, "1.2.3.4") {
			t.Fatalf("request %d denied inside the burst allowance", i+1)
		}
	}
	if rl.allow(newsletterRule, "1.2.3.4") {
		t.Error("request past the burst was allowed")
	}

	// A different IP and a different bucket both start fresh.
	if !rl.allow(newsletterRule, "5.6.7.8") {
		t.Error("fresh ip was denied")
	}
	if !rl.allow(contactRule, "1.2.3.4") {
		t.Error("same ip on another bucket was denied")
	}
}
