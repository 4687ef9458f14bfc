package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"casadns/internal/casadns"
	"casadns/internal/discover"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoad tests loading with defaults and domain normalization
func TestLoad(t *testing.T) {
	path := writeConfig(t, `
casadns:
  domains: " Home.casadns.eu , SERVER ,,office "
  token: secret-token
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "home,server,office", cfg.CasaDNS.Domains)
	assert.Equal(t, "secret-token", cfg.CasaDNS.Token)
	assert.Equal(t, DefaultInterval, cfg.CasaDNS.Interval)
	assert.Equal(t, casadns.DefaultEndpoint, cfg.CasaDNS.Endpoint)

	assert.Equal(t, discover.DefaultIPv4URL, cfg.Discovery.IPv4URL)
	assert.Equal(t, discover.DefaultIPv6URL, cfg.Discovery.IPv6URL)
	assert.Equal(t, discover.DefaultTimeout, cfg.Discovery.Timeout)

	assert.Equal(t, ":8645", cfg.API.Address)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

// TestLoadExplicitValues tests that configured values survive loading
func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
casadns:
  domains: home
  token: secret
  interval: 5m
  endpoint: https://example.com/update
discovery:
  ipv4_url: https://v4.example.com
  ipv6_url: https://v6.example.com
  timeout: 3s
api:
  enabled: true
  address: ":9999"
storage:
  enabled: true
  path: /tmp/casadns-test.db
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.CasaDNS.Interval)
	assert.Equal(t, "https://example.com/update", cfg.CasaDNS.Endpoint)
	assert.Equal(t, "https://v4.example.com", cfg.Discovery.IPv4URL)
	assert.Equal(t, 3*time.Second, cfg.Discovery.Timeout)
	assert.True(t, cfg.API.Enabled)
	assert.Equal(t, ":9999", cfg.API.Address)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "/tmp/casadns-test.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoadValidation tests rejection of invalid configurations
func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			name: "missing token",
			content: `
casadns:
  domains: home
`,
		},
		{
			name: "empty domains",
			content: `
casadns:
  domains: " ,, "
  token: secret
`,
		},
		{
			name: "invalid domain label",
			content: `
casadns:
  domains: "home,bad_label!"
  token: secret
`,
		},
		{
			name: "interval below minimum",
			content: `
casadns:
  domains: home
  token: secret
  interval: 30s
`,
		},
		{
			name: "invalid log level",
			content: `
casadns:
  domains: home
  token: secret
log:
  level: loud
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

// TestLoadMissingFile tests the error path for an absent config file
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
