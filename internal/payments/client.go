// internal/payments/client.go
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIError is a non-2xx answer from the payment gateway.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment gateway returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the crypto payment gateway's invoice API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type InvoiceRequest struct {
	PriceAmount    float64 `json:"price_amount"`
	PriceCurrency  string  `json:"price_currency"`
	PayCurrency    string  `json:"pay_currency,omitempty"`
	IPNCallbackURL string  `json:"ipn_callback_url,omitempty"`
	OrderID        string  `json:"order_id,omitempty"`
	SuccessURL     string  `json:"success_url,omitempty"`
	CancelURL      string  `json:"cancel_url,omitempty"`
}

type CreatedInvoice struct {
	ID         json.Number `json:"id"`
	InvoiceURL string      `json:"invoice_url"`
}

// CreateInvoice asks the gateway for a hosted payment page. The request is
// plain outbound HTTP; it must never run inside a database transaction.
func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (*CreatedInvoice, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoice", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build invoice request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("invoice request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var invoice CreatedInvoice
	if err := json.Unmarshal(respBody, &invoice); err != nil {
		return nil, fmt.Errorf("failed to decode invoice response: %w", err)
	}
	return &invoice, nil
}
