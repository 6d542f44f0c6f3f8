package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. The backend speaks the
// OAuth2 password grant: form-encoded, email in the username field. The
// token is persisted to the token store before returning.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	if c.baseURL == "" {
		return nil, &Error{Message: msgNoBaseURL}
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classifyNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classifyNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := extractErrorMessage(resp.StatusCode, raw)
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "could not validate user") ||
			strings.Contains(lower, "invalid credentials") ||
			strings.Contains(lower, "incorrect password") ||
			strings.Contains(lower, "user not found") {
			msg = "Usuario no validado. Verifica tu email y contraseña."
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}

	var tokens TokenResponse
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, &DecodeError{What: "la respuesta de login no es un objeto JSON"}
	}
	if tokens.AccessToken == "" {
		return nil, &Error{Message: "No se recibió access_token del servidor"}
	}

	c.tokens.SaveToken(ctx, tokens.AccessToken)
	return &tokens, nil
}

// Register creates an account and, when the response carries a token in
// any of its known fields, persists it like a login would.
func (c *Client) Register(ctx context.Context, email, username, password string) (*User, error) {
	raw, err := c.request(ctx, http.MethodPost, "/auth/", NewUser{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var tokenFields struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &tokenFields); err == nil {
		if token := firstNonEmpty(tokenFields.Token, tokenFields.AccessToken); token != "" {
			c.tokens.SaveToken(ctx, token)
		}
	}

	u, err := decodeUser(unwrapUser(raw))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CheckEmailExists probes the registration pre-check endpoint. The
// backend signals existence three different ways: a bare boolean body,
// an {"exists": bool} object, or plain 200-vs-404 status.
func (c *Client) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	if c.baseURL == "" {
		return false, &Error{Message: msgNoBaseURL}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/email/"+url.PathEscape(email), nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, c.classifyNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, &Error{Status: resp.StatusCode, Message: fmt.Sprintf("Error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, c.classifyNetworkError(err)
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		// 200 sin cuerpo: el endpoint responde por status.
		return true, nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var obj struct {
		Exists *bool `json:"exists"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Exists != nil {
		return *obj.Exists, nil
	}

	return true, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
