package discover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func newLookupServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestDiscover tests combined IPv4/IPv6 discovery outcomes
func TestDiscover(t *testing.T) {
	testCases := []struct {
		name       string
		v4Status   int
		v4Body     string
		v6Status   int
		v6Body     string
		expectIPv4 string
		expectIPv6 string
	}{
		{
			name:       "both available",
			v4Status:   http.StatusOK,
			v4Body:     "1.2.3.4\n",
			v6Status:   http.StatusOK,
			v6Body:     "2001:db8::1",
			expectIPv4: "1.2.3.4",
			expectIPv6: "2001:db8::1",
		},
		{
			name:       "ipv6 endpoint failing degrades to ipv4 only",
			v4Status:   http.StatusOK,
			v4Body:     "9.9.9.9",
			v6Status:   http.StatusInternalServerError,
			v6Body:     "boom",
			expectIPv4: "9.9.9.9",
			expectIPv6: "",
		},
		{
			name:       "garbage bodies degrade to nothing",
			v4Status:   http.StatusOK,
			v4Body:     "not-an-ip",
			v6Status:   http.StatusOK,
			v6Body:     "<html>error</html>",
			expectIPv4: "",
			expectIPv6: "",
		},
		{
			name:       "link-local ipv6 is rejected",
			v4Status:   http.StatusOK,
			v4Body:     "9.9.9.9",
			v6Status:   http.StatusOK,
			v6Body:     "fe80::1",
			expectIPv4: "9.9.9.9",
			expectIPv6: "",
		},
		{
			name:       "wrong family is rejected",
			v4Status:   http.StatusOK,
			v4Body:     "2001:db8::1",
			v6Status:   http.StatusOK,
			v6Body:     "1.2.3.4",
			expectIPv4: "",
			expectIPv6: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v4 := newLookupServer(t, tc.v4Status, tc.v4Body)
			v6 := newLookupServer(t, tc.v6Status, tc.v6Body)

			client := New(Config{
				IPv4URL: v4.URL,
				IPv6URL: v6.URL,
				Timeout: 2 * time.Second,
			}, zaptest.NewLogger(t))

			ipv4, ipv6 := client.Discover(context.Background())
			assert.Equal(t, tc.expectIPv4, ipv4)
			assert.Equal(t, tc.expectIPv6, ipv6)
		})
	}
}

// TestDiscoverUnreachableEndpoint tests transport failure degradation
func TestDiscoverUnreachableEndpoint(t *testing.T) {
	v4 := newLookupServer(t, http.StatusOK, "1.2.3.4")

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	down.Close()

	client := New(Config{
		IPv4URL: v4.URL,
		IPv6URL: down.URL,
		Timeout: 2 * time.Second,
	}, zaptest.NewLogger(t))

	ipv4, ipv6 := client.Discover(context.Background())
	assert.Equal(t, "1.2.3.4", ipv4)
	assert.Empty(t, ipv6)
}

// TestConfigDefaults tests default endpoint and timeout wiring
func TestConfigDefaults(t *testing.T) {
	cfg := (&Config{}).SetDefaults()
	assert.Equal(t, DefaultIPv4URL, cfg.IPv4URL)
	assert.Equal(t, DefaultIPv6URL, cfg.IPv6URL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}
