package registry

import (
	"context"
	"fmt"
	"net/http"

	"catalog-sync/internal/domain"
)

type remoteOffer struct {
	ID           string `json:"id"`
	Price        int64  `json:"price"`
	ItemsInStock int64  `json:"items_in_stock"`
}

// FetchOffers pulls the authoritative offer set for one product. A single
// 401 triggers one forced token refresh and one repeat; every failure is
// wrapped in a SyncError for the product so the task layer retries the whole
// reconciliation unit.
func (c *Client) FetchOffers(ctx context.Context, productID string) ([]domain.Offer, error) {
	offers, err := c.fetchOffers(ctx, productID)
	if err != nil {
		return nil, &domain.SyncError{ProductID: productID, Err: err}
	}
	return offers, nil
}

func (c *Client) fetchOffers(ctx context.Context, productID string) ([]domain.Offer, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.doFetch(ctx, productID, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		token, err = c.tokens.ForceRefresh(ctx, token)
		if err != nil {
			return nil, err
		}
		resp, err = c.doFetch(ctx, productID, token)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.RegistryError{StatusCode: resp.StatusCode, Op: "list offers"}
	}

	var payload []remoteOffer
	if err := decodeJSON(resp.Body, &payload); err != nil {
		return nil, err
	}

	offers := make([]domain.Offer, 0, len(payload))
	for _, ro := range payload {
		offers = append(offers, domain.Offer{
			ID:           ro.ID,
			Price:        ro.Price,
			ItemsInStock: ro.ItemsInStock,
			ProductID:    productID,
		})
	}
	c.logger.Printf("registry offers: fetched product_id=%s count=%d", productID, len(offers))
	return offers, nil
}

func (c *Client) doFetch(ctx context.Context, productID, token string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/api/v1/products/%s/offers", productID), nil)
	if err != nil {
		return nil, fmt.Errorf("build offers request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return resp, nil
}
