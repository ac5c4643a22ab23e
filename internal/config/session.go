// Package config holds the session configuration persisted between CLI
// invocations: the API endpoint, the bearer token of the logged in user and the
// default account, workspace and project identifiers.
package config

import (
	"strings"

	"github.com/securepipe/securepipe/pkg/types"
)

// DefaultAPIURL is used by login when neither a stored configuration nor
// SECUREPIPE_API_URL provides one.
const DefaultAPIURL = "http://localhost:8000"

// User is the identity returned by the server at login.
type User struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Session is the persisted configuration document. A session without a token
// is configured but logged out.
type Session struct {
	APIURL             string               `json:"api_url"`
	APIToken           types.NullableString `json:"api_token"`
	CurrentUser        *User                `json:"current_user"`
	DefaultAccountID   types.NullableString `json:"default_account_id"`
	DefaultWorkspaceID types.NullableString `json:"default_workspace_id"`
	DefaultProjectID   types.NullableString `json:"default_project_id"`
}

// NewSession returns an empty session pointing at apiURL.
func NewSession(apiURL string) *Session {
	return &Session{APIURL: apiURL}
}

// GetServerURL returns the API base URL exactly as configured.
func (s *Session) GetServerURL() string {
	return s.APIURL
}

// GetToken returns the bearer token, or "" when logged out.
func (s *Session) GetToken() string {
	return strings.TrimSpace(s.APIToken.String())
}

// HasToken reports whether a bearer token is stored.
func (s *Session) HasToken() bool {
	return s.GetToken() != ""
}

// SetCredentials records a successful login.
func (s *Session) SetCredentials(token string, user *User) {
	s.APIToken.Set(token)
	s.CurrentUser = user
}

// ClearCredentials forgets the token and the current user.
func (s *Session) ClearCredentials() {
	s.APIToken.Clear()
	s.CurrentUser = nil
}
