package handlers

import (
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalLimiters_EvictsIdleKeys(t *testing.T) {
	limiters := newLocalLimiters(1, time.Minute)
	start := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for i, key := range []string{"ip:1", "ip:2", "ip:3"} {
		limiters.allow(key, start.Add(time.Duration(i)*time.Second))
	}
	assert.Equal(t, 3, limiters.size())

	// a full window later only the caller that came back is tracked
	allowed, _ := limiters.allow("ip:3", start.Add(2*time.Minute))
	assert.True(t, allowed)
	assert.Equal(t, 1, limiters.size())
}

func TestClientIP(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name      string
		remote    string
		forwarded string
		realIP    string
		trusted   []netip.Prefix
		want      string
	}{
		{"peer address", "203.0.113.9:5000", "", "", nil, "203.0.113.9"},
		{"forwarded ignored without trusted proxies", "203.0.113.9:5000", "198.51.100.1", "198.51.100.2", nil, "203.0.113.9"},
		{"forwarded ignored from untrusted peer", "203.0.113.9:5000", "198.51.100.1", "", proxies, "203.0.113.9"},
		{"first untrusted hop from the right", "10.0.0.1:5000", "198.51.100.1, 203.0.113.4, 10.0.0.7", "", proxies, "203.0.113.4"},
		{"real ip from trusted peer", "10.0.0.1:5000", "", "198.51.100.2", proxies, "198.51.100.2"},
		{"only trusted hops", "10.0.0.1:5000", "10.0.0.2", "", proxies, "10.0.0.1"},
		{"remote without port", "203.0.113.9", "", "", nil, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/ai-assistant", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trusted))
		})
	}
}
