// Package tradebridge provides a Go SDK for the tradebridge-server API.
// The types here mirror the server's wire format so consumers do not
// depend on server internals.
package tradebridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client provides a Go SDK for interacting with the tradebridge-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new tradebridge API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// OrderIntent is one order in a webhook batch.
type OrderIntent struct {
	Symbol    string   `json:"symbol"`
	Action    string   `json:"action,omitempty"`
	Qty       int64    `json:"qty,omitempty"`
	OrderType string   `json:"order_type,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	AuxPrice  *float64 `json:"aux_price,omitempty"`
	Position  *int64   `json:"position,omitempty"`
}

// OrderResult is the outcome of one order in a batch.
type OrderResult struct {
	Index   int            `json:"order"`
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// BatchResponse summarizes a processed batch.
type BatchResponse struct {
	Status           string        `json:"status"`
	TotalOrders      int           `json:"total_orders"`
	SuccessfulOrders int           `json:"successful_orders"`
	FailedOrders     int           `json:"failed_orders"`
	Results          []OrderResult `json:"results"`
}

// BatchRecord is one journalled batch returned by RecentBatches.
type BatchRecord struct {
	ID         int64         `json:"id"`
	ReceivedAt time.Time     `json:"received_at"`
	Source     string        `json:"source"`
	Status     string        `json:"status"`
	Total      int           `json:"total_orders"`
	Successful int           `json:"successful_orders"`
	Failed     int           `json:"failed_orders"`
	Results    []OrderResult `json:"results,omitempty"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tradebridge: HTTP %d: %s", e.StatusCode, e.Message)
}

// SendBatch posts a batch of order intents to the webhook endpoint.
// When the server rejects the whole batch (conflict, empty batch,
// connection failure) the returned error is an *APIError and the
// response is nil. A batch where every order failed returns both the
// decoded response and an *APIError.
func (c *Client) SendBatch(ctx context.Context, orders []OrderIntent) (*BatchResponse, error) {
	body, err := json.Marshal(map[string]any{"orders": orders})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/webhook/tradingview", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out BatchResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "undecodable response body"}
	}

	if resp.StatusCode != http.StatusOK {
		if out.Status == "" {
			// Batch-level rejection carries {"error": "..."} instead.
			var rejection struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(respBody, &rejection)
			return nil, &APIError{StatusCode: resp.StatusCode, Message: rejection.Error}
		}
		return &out, &APIError{StatusCode: resp.StatusCode, Message: out.Status}
	}
	return &out, nil
}

// RecentBatches retrieves journalled batch outcomes, newest first.
func (c *Client) RecentBatches(ctx context.Context, limit int) ([]BatchRecord, error) {
	url := c.baseURL + "/api/batches"
	if limit > 0 {
		url += "?limit=" + strconv.Itoa(limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var batches []BatchRecord
	if err := json.NewDecoder(resp.Body).Decode(&batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// Health checks the server's health endpoint and returns the configured
// broker provider name.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.decodeError(resp)
	}

	var out struct {
		Status string `json:"status"`
		Broker string `json:"broker"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Broker, nil
}

func (c *Client) decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}
