// Package turnstile verifies bot-challenge tokens submitted with public forms.
package turnstile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is Cloudflare's siteverify URL.
const DefaultEndpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Verifier checks a client token. Implementations report whether the token
// was accepted; err is reserved for transport or decoding failures.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// Client posts secret+token pairs to a siteverify endpoint.
type Client struct {
	Secret   string
	Endpoint string
	HTTP     *http.Client
}

// New returns a Client for secret with a 10 second timeout.
func New(secret string) *Client {
	return &Client{
		Secret:   secret,
		Endpoint: DefaultEndpoint,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token. An empty token is rejected without a request.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}
	form := url.Values{}
	form.Set("secret", c.Secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("turnstile: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, fmt.Errorf("turnstile: verify: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("turnstile: verify: unexpected status %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("turnstile: decode response: %w", err)
	}
	return out.Success, nil
}

// Func adapts a function to Verifier.
type Func func(ctx context.Context, token, remoteIP string) (bool, error)

func (f Func) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return f(ctx, token, remoteIP)
}
