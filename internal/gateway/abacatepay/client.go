// Package abacatepay is a thin client for the AbacatePay REST API, covering
// the three calls the reservation flow needs: customer registration, PIX
// QR-code creation and status check.
package abacatepay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusExpired = "EXPIRED"
)

var ErrInvalidResponse = errors.New("invalid response from payment gateway")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type Customer struct {
	Name      string `json:"name"`
	Cellphone string `json:"cellphone"`
	Email     string `json:"email"`
	TaxID     string `json:"taxId"`
}

type CreatePixChargeInput struct {
	Amount      int64
	ExpiresIn   int
	Description string
	Customer    Customer
	ExternalID  string
}

type PixCharge struct {
	ID           string    `json:"id"`
	BRCode       string    `json:"brCode"`
	BRCodeBase64 string    `json:"brCodeBase64"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type envelope struct {
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

// CreateCustomer registers the buyer and returns the gateway's customer id.
func (c *Client) CreateCustomer(ctx context.Context, customer Customer) (string, error) {
	var data struct {
		ID string `json:"id"`
	}

	if err := c.do(ctx, http.MethodPost, "/customer/create", customer, &data); err != nil {
		return "", err
	}
	if data.ID == "" {
		return "", fmt.Errorf("%w: missing customer id", ErrInvalidResponse)
	}

	return data.ID, nil
}

// CreatePixCharge creates a one-time PIX QR code. The external id travels as
// gateway-side metadata and comes back in webhook payloads for correlation.
func (c *Client) CreatePixCharge(ctx context.Context, input CreatePixChargeInput) (PixCharge, error) {
	body := map[string]any{
		"amount":      input.Amount,
		"expiresIn":   input.ExpiresIn,
		"description": input.Description,
		"customer":    input.Customer,
		"metadata": map[string]string{
			"externalId": input.ExternalID,
		},
	}

	var charge PixCharge
	if err := c.do(ctx, http.MethodPost, "/pixQrCode/create", body, &charge); err != nil {
		return PixCharge{}, err
	}
	if charge.ID == "" {
		return PixCharge{}, fmt.Errorf("%w: missing charge id", ErrInvalidResponse)
	}

	return charge, nil
}

// CheckPixCharge fetches the current status of a PIX QR code.
func (c *Client) CheckPixCharge(ctx context.Context, chargeID string) (PixCharge, error) {
	endpoint := "/pixQrCode/check?id=" + url.QueryEscape(chargeID)

	var charge PixCharge
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &charge); err != nil {
		return PixCharge{}, err
	}

	return charge, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("json.Marshal -> %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("c.httpClient.Do -> %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err = json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if env.Error != "" {
		return fmt.Errorf("gateway error: %v", env.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if env.Data == nil {
		return fmt.Errorf("%w: missing data", ErrInvalidResponse)
	}

	if err = json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}
