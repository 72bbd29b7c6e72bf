// ABOUTME: Authentication endpoints of the operations API
// ABOUTME: Password login, Google consent URL and authorization code exchange

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// TokenResponse is returned by the login and code exchange endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type authURLResponse struct {
	URL string `json:"url"`
}

// Login calls POST /auth/login and returns the issued credential.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.requestToken(ctx, "/auth/login", loginRequest{Email: email, Password: password})
}

// ExchangeGoogleCode calls POST /auth/google/token with an authorization code.
func (c *Client) ExchangeGoogleCode(ctx context.Context, code string) (string, error) {
	return c.requestToken(ctx, "/auth/google/token", codeRequest{Code: code})
}

// GoogleAuthURL calls GET /auth/google/url and returns the consent page URL.
func (c *Client) GoogleAuthURL(ctx context.Context) (string, error) {
	const path = "/auth/google/url"

	raw, err := c.Execute(ctx, path, nil)
	if err != nil {
		return "", err
	}

	var resp authURLResponse
	if err := decodeInto(raw, &resp); err != nil {
		return "", fmt.Errorf("invalid response from %s: %w", path, err)
	}
	if resp.URL == "" {
		return "", &ContractError{Endpoint: path, Field: "url"}
	}
	return resp.URL, nil
}

func (c *Client) requestToken(ctx context.Context, path string, body any) (string, error) {
	raw, err := c.Execute(ctx, path, &RequestOptions{Method: http.MethodPost, Body: body})
	if err != nil {
		return "", err
	}

	var resp TokenResponse
	if err := decodeInto(raw, &resp); err != nil {
		return "", fmt.Errorf("invalid response from %s: %w", path, err)
	}
	if resp.AccessToken == "" {
		return "", &ContractError{Endpoint: path, Field: "access_token"}
	}
	return resp.AccessToken, nil
}

// decodeInto unmarshals raw into v; absent bodies and non-object shapes
// leave v at its zero value.
func decodeInto(raw json.RawMessage, v any) error {
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	return json.Unmarshal(raw, v)
}
