package discover

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"casadns/internal/utils"
	"casadns/internal/version"

	"go.uber.org/zap"
)

// Default lookup endpoints. The first resolves only over IPv4, the
// second only over IPv6, so each reports the address of its family.
const (
	DefaultIPv4URL = "https://ipv4.api.ipify.org"
	DefaultIPv6URL = "https://ipv6.api.ipify.org"
)

// DefaultTimeout bounds each individual lookup request
const DefaultTimeout = 10 * time.Second

// Config represents discovery configuration
type Config struct {
	IPv4URL string        `mapstructure:"ipv4_url"`
	IPv6URL string        `mapstructure:"ipv6_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SetDefaults fills in zero values with defaults
func (cfg *Config) SetDefaults() *Config {
	if cfg.IPv4URL == "" {
		cfg.IPv4URL = DefaultIPv4URL
	}
	if cfg.IPv6URL == "" {
		cfg.IPv6URL = DefaultIPv6URL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}

// Client discovers the caller's public addresses
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a new discovery client
func New(cfg Config, logger *zap.Logger) *Client {
	cfg.SetDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
		logger: logger,
	}
}

// Discover queries both lookup endpoints and returns the current public
// IPv4 and IPv6 addresses. A failed or invalid lookup degrades that
// address to empty; Discover itself never fails and never retries.
func (c *Client) Discover(ctx context.Context) (string, string) {
	var (
		wg         sync.WaitGroup
		ipv4, ipv6 string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ipv4 = c.lookup(ctx, c.cfg.IPv4URL, false)
	}()
	go func() {
		defer wg.Done()
		ipv6 = c.lookup(ctx, c.cfg.IPv6URL, true)
	}()
	wg.Wait()

	return ipv4, ipv6
}

// lookup queries a single endpoint for an address of the given family
func (c *Client) lookup(ctx context.Context, endpoint string, wantV6 bool) string {
	family := "IPv4"
	if wantV6 {
		family = "IPv6"
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	ip, err := c.query(ctx, endpoint, wantV6)
	if err != nil {
		c.logger.Warn("Public address lookup failed",
			zap.String("family", family),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return ""
	}

	c.logger.Debug("Public address lookup ok",
		zap.String("family", family),
		zap.String("ip", ip))
	return ip
}

func (c *Client) query(ctx context.Context, endpoint string, wantV6 bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "text/plain")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	ip := strings.TrimSpace(string(body))
	if !utils.IsValidIP(ip, wantV6) {
		return "", fmt.Errorf("endpoint returned invalid address %q", ip)
	}

	// A lookup behind a misconfigured resolver can report a link-local
	// or loopback address; those are useless as DNS targets.
	if wantV6 && !utils.IsGlobalIPv6(net.ParseIP(ip)) {
		return "", fmt.Errorf("endpoint returned non-global address %q", ip)
	}

	return ip, nil
}
