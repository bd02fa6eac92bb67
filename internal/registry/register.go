package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"catalog-sync/internal/domain"
	"github.com/google/uuid"
)

// RegistrationOutcome is the registry's answer to a product registration.
type RegistrationOutcome int

const (
	// OutcomeCreated means the registry created the product.
	OutcomeCreated RegistrationOutcome = iota
	// OutcomeConflict means the registry already knew the product id.
	OutcomeConflict
)

// RegisterProduct performs the create-or-acknowledge handshake for a product.
// A single 401 triggers one forced token refresh and one repeat of the call;
// a second 401 is fatal. A created response whose id differs from the
// requested one is ErrIdentityMismatch.
func (c *Client) RegisterProduct(ctx context.Context, product domain.Product) (RegistrationOutcome, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, err
	}

	resp, err := c.doRegister(ctx, product, token)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		token, err = c.tokens.ForceRefresh(ctx, token)
		if err != nil {
			return 0, err
		}
		resp, err = c.doRegister(ctx, product, token)
		if err != nil {
			return 0, err
		}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var payload struct {
			ID string `json:"id"`
		}
		if err := decodeJSON(resp.Body, &payload); err != nil {
			return 0, fmt.Errorf("register product %s: %w", product.ID, err)
		}
		if !sameID(payload.ID, product.ID) {
			c.logger.Printf("registry register: id mismatch requested=%s returned=%s", product.ID, payload.ID)
			return 0, domain.ErrIdentityMismatch
		}
		c.logger.Printf("registry register: created id=%s", product.ID)
		return OutcomeCreated, nil
	case http.StatusConflict:
		c.logger.Printf("registry register: conflict id=%s", product.ID)
		return OutcomeConflict, nil
	default:
		return 0, &domain.RegistryError{StatusCode: resp.StatusCode, Op: "register product"}
	}
}

func (c *Client) doRegister(ctx context.Context, product domain.Product, token string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}{product.ID, product.Name, product.Description})
	if err != nil {
		return nil, fmt.Errorf("encode product %s: %w", product.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/v1/products/register"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build register request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("register product %s: %w", product.ID, err)
	}
	return resp, nil
}

// sameID compares two product ids, tolerating case differences in the UUID
// textual form.
func sameID(a, b string) bool {
	ua, errA := uuid.Parse(a)
	ub, errB := uuid.Parse(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ua == ub
}
