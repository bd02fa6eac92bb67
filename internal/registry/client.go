// Package registry is the HTTP client for the external offer registry. It
// owns the bearer token lifecycle and the create-or-acknowledge product
// registration handshake, and fetches the authoritative offer set per
// product for reconciliation.
package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client calls the external offer registry. All calls carry a bounded
// timeout via the underlying http.Client and are paced by a shared rate
// limiter so fan-out bursts do not hammer the registry.
type Client struct {
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
	tokens  *TokenProvider
	logger  *log.Logger
}

// Config carries the settings needed to talk to the registry.
type Config struct {
	BaseURL      string
	ClientSecret string
	TokenTTL     time.Duration
	Timeout      time.Duration
	RateLimitRPS float64
}

// New builds a Client and its token provider.
func New(cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 10
	}
	// Fractional rates still need a burst of one, or Wait can never admit
	// a request.
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	httpc := &http.Client{Timeout: timeout}
	base := strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		baseURL: base,
		httpc:   httpc,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		tokens:  NewTokenProvider(base+"/api/v1/auth", cfg.ClientSecret, cfg.TokenTTL, httpc, logger),
		logger:  logger,
	}
}

// Tokens exposes the token provider, mainly for tests and warm-up.
func (c *Client) Tokens() *TokenProvider {
	return c.tokens
}

func (c *Client) url(format string, args ...interface{}) string {
	return c.baseURL + fmt.Sprintf(format, args...)
}

func decodeJSON(body io.Reader, v interface{}) error {
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
