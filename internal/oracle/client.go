package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrStalePrice marks a feed reading older than the caller tolerates.
var ErrStalePrice = errors.New("stale price feed")

// Price is one feed reading: Value in settlement minor units per whole
// token, Timestamp when the feed observed it.
type Price struct {
	Value     int64     `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Source yields spot prices for tokens.
type Source interface {
	TokenPrice(ctx context.Context, token string) (Price, error)
}

// Client reads prices from the oracle's HTTP API. It implements Source.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type priceResponse struct {
	Price     int64     `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *Client) TokenPrice(ctx context.Context, token string) (Price, error) {
	q := url.Values{}
	q.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/price?"+q.Encode(), nil)
	if err != nil {
		return Price{}, fmt.Errorf("price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Price{}, fmt.Errorf("price %s: %w", token, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return Price{}, fmt.Errorf("price %s: status %d: %s", token, resp.StatusCode, string(body))
	}

	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return Price{}, fmt.Errorf("decode price response: %w", err)
	}
	return Price{Value: pr.Price, Timestamp: pr.Timestamp}, nil
}
