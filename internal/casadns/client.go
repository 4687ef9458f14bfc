package casadns

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"casadns/internal/version"

	"go.uber.org/zap"
)

// DefaultEndpoint is the CasaDNS update endpoint
const DefaultEndpoint = "https://casadns.eu/update"

// requestTimeout bounds a single update call
const requestTimeout = 10 * time.Second

// Client performs CasaDNS update calls for a fixed domain set and token
type Client struct {
	endpoint string
	domains  string
	token    string
	client   *http.Client
	logger   *zap.Logger
}

// Result represents the outcome of a single update call.
// Err is set only on transport-level failures; a completed request
// carries its HTTP status regardless of success.
type Result struct {
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
	Err    error  `json:"-"`
}

// NewClient creates a new CasaDNS client
func NewClient(endpoint, domains, token string, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint: endpoint,
		domains:  domains,
		token:    token,
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
		logger: logger,
	}
}

// updateURL builds the update request URL for the given addresses.
// The ip parameter prefers IPv4; ipv6 is passed explicitly whenever
// present so the remote side sees it even when ip already carries it.
// clear=true drops stale records before the new ones are applied.
func (c *Client) updateURL(ipv4, ipv6 string) string {
	params := url.Values{}
	params.Set("domains", c.domains)
	params.Set("token", c.token)
	params.Set("clear", "true")

	if ipv4 != "" {
		params.Set("ip", ipv4)
	} else if ipv6 != "" {
		params.Set("ip", ipv6)
	}

	if ipv6 != "" {
		params.Set("ipv6", ipv6)
	}

	return c.endpoint + "?" + params.Encode()
}

// Push applies the given addresses to the configured domains.
// At least one address must be non-empty; the caller guards that.
func (c *Client) Push(ctx context.Context, ipv4, ipv6 string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.updateURL(ipv4, ipv6), nil)
	if err != nil {
		return Result{Err: err}
	}

	req.Header.Set("Content-Type", "text/html")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("CasaDNS update request failed", zap.Error(err))
		return Result{Err: err}
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	body, _ := io.ReadAll(resp.Body)
	text := strings.TrimSpace(string(body))

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("CasaDNS update failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", text))
	} else {
		c.logger.Debug("CasaDNS update ok", zap.String("body", text))
	}

	return Result{Status: resp.StatusCode, Body: text}
}
