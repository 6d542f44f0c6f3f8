// Package apiclient is the outbound HTTP boundary of the dashboard. It
// talks to the remote REST backend, injects the stored bearer token and
// normalizes the backend's heterogeneous response shapes into the
// canonical types the rest of the app works with.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenStore is the persistent home of the bearer token. Implemented by
// the session store; tests use an in-memory map.
type TokenStore interface {
	Token(ctx context.Context) string
	SaveToken(ctx context.Context, token string)
	ClearToken(ctx context.Context)
}

type Client struct {
	baseURL    string
	tokens     TokenStore
	httpClient *http.Client
}

func NewClient(baseURL string, tokens TokenStore) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// request issues one JSON request against the backend and returns the raw
// body. Non-2xx responses come back as *Error with the message extracted
// from whatever error shape the backend chose. A 401 clears the stored
// token as a side effect.
func (c *Client) request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, &Error{Message: msgNoBaseURL}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classifyNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classifyNetworkError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.ClearToken(ctx)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Status:  resp.StatusCode,
			Message: extractErrorMessage(resp.StatusCode, raw),
		}
	}

	return json.RawMessage(raw), nil
}
