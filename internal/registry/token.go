package registry

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"catalog-sync/internal/domain"
)

// TokenProvider caches the single process-wide bearer token for the offer
// registry and refreshes it against the auth endpoint. Refreshes are
// serialized under the mutex; concurrent callers block until the in-flight
// refresh completes and then observe the new value.
type TokenProvider struct {
	authURL string
	secret  string
	ttl     time.Duration
	httpc   *http.Client
	logger  *log.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenProvider builds a provider with an empty cache; the first Token
// call performs the initial fetch.
func NewTokenProvider(authURL, secret string, ttl time.Duration, httpc *http.Client, logger *log.Logger) *TokenProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TokenProvider{
		authURL: authURL,
		secret:  secret,
		ttl:     ttl,
		httpc:   httpc,
		logger:  logger,
	}
}

// Token returns the cached token, refreshing it when absent or expired.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" && time.Now().Before(p.expiresAt) {
		return p.token, nil
	}
	return p.refreshLocked(ctx)
}

// ForceRefresh discards the stale token the caller saw rejected and fetches
// a replacement. When another caller already replaced it, the cached
// replacement is returned without a second auth call, so a herd of
// simultaneous 401s costs one refresh.
func (p *TokenProvider) ForceRefresh(ctx context.Context, stale string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" && p.token != stale && time.Now().Before(p.expiresAt) {
		return p.token, nil
	}
	return p.refreshLocked(ctx)
}

// refreshLocked performs the auth call. The caller must hold p.mu.
func (p *TokenProvider) refreshLocked(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.authURL, nil)
	if err != nil {
		return "", fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Bearer", p.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Printf("registry auth: rejected status=%d", resp.StatusCode)
		return "", &domain.RegistryError{StatusCode: resp.StatusCode, Op: "auth"}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := decodeJSON(resp.Body, &payload); err != nil {
		return "", domain.ErrAuthFieldMissing
	}
	if payload.AccessToken == "" {
		return "", domain.ErrAuthFieldMissing
	}

	p.token = payload.AccessToken
	p.expiresAt = time.Now().Add(p.ttl)
	p.logger.Printf("registry auth: token refreshed, valid for %s", p.ttl)
	return p.token, nil
}
