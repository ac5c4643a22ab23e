package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LoginPath is the credential exchange endpoint.
const LoginPath = "/api/v1/auth/login"

// ErrLoginRejected is returned when the server answers a login with anything
// other than 200.
var ErrLoginRejected = ErrAuthenticationFailed.New("Login failed. Check your credentials.")

// LoginUser is the user object returned with a token.
type LoginUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        *LoginUser `json:"user"`
}

// Login exchanges credentials for a token. It does not need a token itself, so
// the client is usually built with a StaticConfig holding only the URL.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	resp, err := c.Do(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   LoginPath,
		Body: map[string]string{
			"username": username,
			"password": password,
		},
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ErrLoginRejected.Err().SetStatusCode(resp.StatusCode)
	}

	var lr LoginResponse
	if err := json.Unmarshal(resp.Body, &lr); err != nil {
		return nil, ErrRequestFailed.MsgErr(fmt.Sprintf("Request failed: invalid login response: %v", err), err)
	}
	if lr.AccessToken == "" {
		return nil, ErrRequestFailed.New("Request failed: login response has no access_token")
	}
	return &lr, nil
}
