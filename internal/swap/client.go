package swap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the aggregator's HTTP API. It implements Aggregator.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type quoteResponse struct {
	AmountIn    int64  `json:"amount_in"`
	ExpectedOut int64  `json:"expected_out"`
	Route       string `json:"route"`
}

func (c *Client) QuoteOut(ctx context.Context, sourceToken, destToken string, amountOut int64) (Quote, error) {
	q := url.Values{}
	q.Set("input_token", sourceToken)
	q.Set("output_token", destToken)
	q.Set("amount_out", fmt.Sprintf("%d", amountOut))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/quote?"+q.Encode(), nil)
	if err != nil {
		return Quote{}, fmt.Errorf("quote request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("quote %s->%s: %w", sourceToken, destToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return Quote{}, fmt.Errorf("quote %s->%s: status %d: %s", sourceToken, destToken, resp.StatusCode, string(body))
	}

	var qr quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return Quote{}, fmt.Errorf("decode quote response: %w", err)
	}
	return Quote{
		SourceToken: sourceToken,
		DestToken:   destToken,
		AmountIn:    qr.AmountIn,
		ExpectedOut: qr.ExpectedOut,
		Route:       qr.Route,
	}, nil
}

type swapRequest struct {
	SourceToken  string `json:"source_token"`
	DestToken    string `json:"dest_token"`
	AmountIn     int64  `json:"amount_in"`
	MinAmountOut int64  `json:"min_amount_out"`
	Route        string `json:"route"`
}

type swapResponse struct {
	AmountOut int64 `json:"amount_out"`
}

func (c *Client) Swap(ctx context.Context, quote Quote, minAmountOut int64) (int64, error) {
	body, err := json.Marshal(swapRequest{
		SourceToken:  quote.SourceToken,
		DestToken:    quote.DestToken,
		AmountIn:     quote.AmountIn,
		MinAmountOut: minAmountOut,
		Route:        quote.Route,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/swap", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("swap %s->%s: %w", quote.SourceToken, quote.DestToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("swap %s->%s: status %d: %s", quote.SourceToken, quote.DestToken, resp.StatusCode, string(respBody))
	}

	var sr swapResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("decode swap response: %w", err)
	}
	return sr.AmountOut, nil
}
