package cli

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/securepipe/securepipe/internal/common/apperrors"
	"github.com/securepipe/securepipe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginHandler(w http.ResponseWriter, r *http.Request) {
	var creds map[string]string
	_ = json.NewDecoder(r.Body).Decode(&creds)
	if creds["username"] != "alice" || creds["password"] != "s3cret" {
		respond(http.StatusUnauthorized, `{"detail":"Incorrect username or password"}`)(w, r)
		return
	}
	respond(http.StatusOK, `{"access_token":"tok-new","token_type":"bearer","user":{"username":"alice","email":"alice@example.com"}}`)(w, r)
}

func TestLoginPromptsAndStoresCredentials(t *testing.T) {
	t.Setenv(config.EnvAPIURL, "")
	h := newHarness(t, nil, "alice\ns3cret\n")
	h.backend.Post("/api/v1/auth/login", loginHandler)

	code := h.run("auth", "login")
	require.Equal(t, 0, code, h.errOut.String())

	assert.Contains(t, h.errOut.String(), "Username: ")
	assert.Contains(t, h.errOut.String(), "Password: ")
	assert.Equal(t, "✅ Login successful!\n👤 User: alice\n📧 Email: alice@example.com\n", h.out.String())

	s := h.session()
	require.NotNil(t, s)
	assert.Equal(t, config.DefaultAPIURL, s.APIURL)
	assert.Equal(t, "tok-new", s.GetToken())
	assert.Equal(t, &config.User{Username: "alice", Email: "alice@example.com"}, s.CurrentUser)

	req := h.backend.last()
	assert.Empty(t, req.Auth)
	assert.JSONEq(t, `{"username":"alice","password":"s3cret"}`, string(req.Body))
}

func TestLoginKeepsExistingDefaults(t *testing.T) {
	s := loggedIn("42", "7", "")
	s.ClearCredentials()
	h := newHarness(t, s, "")
	h.backend.Post("/api/v1/auth/login", loginHandler)

	require.Equal(t, 0, h.run("auth", "login", "-u", "alice", "-p", "s3cret"))
	got := h.session()
	assert.Equal(t, "http://api.test", got.APIURL)
	assert.Equal(t, "42", got.DefaultAccountID.String())
	assert.Equal(t, "7", got.DefaultWorkspaceID.String())
	assert.Equal(t, "tok-new", got.GetToken())
}

func TestLoginAPIURLFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvAPIURL, "https://securepipe.example.com")
	h := newHarness(t, nil, "")
	h.backend.Post("/api/v1/auth/login", loginHandler)

	require.Equal(t, 0, h.run("auth", "login", "-u", "alice", "-p", "s3cret"))
	assert.Equal(t, "https://securepipe.example.com", h.session().APIURL)

	require.Equal(t, 0, h.run("auth", "login", "-u", "alice", "-p", "s3cret", "--api-url", "http://other:9000"))
	assert.Equal(t, "http://other:9000", h.session().APIURL)
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t, nil, "")
	h.backend.Post("/api/v1/auth/login", loginHandler)

	code := h.run("auth", "login", "-u", "alice", "-p", "wrong")
	assert.Equal(t, apperrors.ExitAuthenticationFailed, code)
	assert.Equal(t, "❌ Login failed. Check your credentials.\n", h.errOut.String())
	assert.False(t, h.store.Exists())
}

type failingTransport struct{ err error }

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) { return nil, f.err }

func TestLoginBackendUnreachable(t *testing.T) {
	h := newHarness(t, nil, "")
	h.app.Transport = failingTransport{err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}

	code := h.run("auth", "login", "-u", "alice", "-p", "s3cret")
	assert.Equal(t, apperrors.ExitBackendUnreachable, code)
	assert.Equal(t, "❌ Login failed: Cannot connect to SecurePipe API. Is the backend running?\n", h.errOut.String())
}

func TestLogout(t *testing.T) {
	h := newHarness(t, loggedIn("42", "", ""), "")

	require.Equal(t, 0, h.run("auth", "logout"))
	assert.Equal(t, "✅ Logged out successfully\n", h.out.String())
	s := h.session()
	assert.False(t, s.HasToken())
	assert.Nil(t, s.CurrentUser)
	assert.Equal(t, "42", s.DefaultAccountID.String())

	// without a configuration logout still succeeds and writes nothing
	h = newHarness(t, nil, "")
	require.Equal(t, 0, h.run("auth", "logout"))
	assert.False(t, h.store.Exists())
}

func TestStatusNotAuthenticated(t *testing.T) {
	for name, s := range map[string]*config.Session{
		"no configuration": nil,
		"logged out":       config.NewSession("http://api.test"),
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, s, "")
			assert.Equal(t, apperrors.ExitNotAuthenticated, h.run("auth", "status"))
			assert.Equal(t, "❌ Not authenticated\n", h.errOut.String())
			assert.Zero(t, h.backend.count())
		})
	}
}

func TestStatusAuthenticated(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	s := loggedIn("", "", "")
	s.SetCredentials(token, s.CurrentUser)
	h := newHarness(t, s, "")
	h.backend.Get("/api/v1/auth/me", respond(http.StatusOK, `{"id":1,"username":"alice","email":"alice@example.com"}`))

	require.Equal(t, 0, h.run("auth", "status"), h.errOut.String())
	assert.Contains(t, h.out.String(), "✅ Authenticated\n👤 User: alice\n📧 Email: alice@example.com\n")
	assert.Contains(t, h.out.String(), "⏰ Token expires: "+exp.Local().Format(time.RFC3339))
	assert.Equal(t, "Bearer "+token, h.backend.last().Auth)
}

func TestStatusTokenRejected(t *testing.T) {
	h := newHarness(t, loggedIn("", "", ""), "")
	h.backend.Get("/api/v1/auth/me", respond(http.StatusUnauthorized, `{"detail":"expired"}`))

	assert.Equal(t, apperrors.ExitAuthenticationFailed, h.run("auth", "status"))
	assert.Equal(t,
		"❌ Authentication check failed: Authentication failed. Run 'securepipe auth login' to re-authenticate.\n",
		h.errOut.String())
}

func TestTokenExpiry(t *testing.T) {
	_, ok := tokenExpiry("opaque-token")
	assert.False(t, ok)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = tokenExpiry(noExp)
	assert.False(t, ok)

	when := time.Unix(1700000000, 0)
	withExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": when.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	got, ok := tokenExpiry(withExp)
	assert.True(t, ok)
	assert.True(t, when.Equal(got))
}
