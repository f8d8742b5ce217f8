package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-seat-booking/internal/config"
)

func newTestContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(target)
	return c
}

func TestCurrentUserIDClaimTypes(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "jwt numeric sub arrives as float64", value: float64(42), want: "42"},
		{name: "string sub", value: "7", want: "7"},
		{name: "uint64", value: uint64(9), want: "9"},
		{name: "unset", value: nil, want: "anon"},
		{name: "empty string", value: "", want: "anon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext(t, "/v1/bookings")
			if tt.value != nil {
				c.Set("user_id", tt.value)
			}
			assert.Equal(t, tt.want, currentUserID(c))
		})
	}
}

func TestBuildRateKeyStrategies(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}
	c := newTestContext(t, "/v1/seats")

	key := buildRateKey(cfg, c)
	assert.Contains(t, key, "rl:ip:")
	assert.Contains(t, key, "route:GET /v1/seats")
	assert.NotContains(t, key, "anon", "ip_route keys must not carry a user segment")

	// An authenticated group sees the numeric sub claim in the key.
	cfg.KeyStrategy = "user_route"
	c.Set("user_id", float64(42))
	key = buildRateKey(cfg, c)
	assert.Contains(t, key, "user:42")
}

func TestCacheableHeaderStripsCacheMarker(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Add("Vary", "Accept")
	h.Set("X-Cache", "MISS")

	out := cacheableHeader(h)
	assert.Empty(t, out.Get("X-Cache"))
	assert.Equal(t, "application/json", out.Get("Content-Type"))
	assert.Equal(t, []string{"Accept"}, out["Vary"])

	// The copy must be independent of the live response headers.
	out.Set("Content-Type", "text/plain")
	assert.Equal(t, "application/json", h.Get("Content-Type"))
}

func TestCachedPayloadRoundTripHasNoStaleMarker(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-Cache", "MISS")

	payload, err := encodePayload(http.StatusOK, cacheableHeader(h), []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, hdr, body, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, hdr.Get("X-Cache"))
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))
}
