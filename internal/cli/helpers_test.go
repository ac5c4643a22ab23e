package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/securepipe/securepipe/internal/common/httpclient"
	"github.com/securepipe/securepipe/internal/config"
	"github.com/securepipe/securepipe/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type recordedRequest struct {
	Method string
	URI    string
	Auth   string
	Body   []byte
}

// mockBackend is a chi router that records every request it serves.
type mockBackend struct {
	*chi.Mux
	mu       sync.Mutex
	requests []recordedRequest
}

func newMockBackend() *mockBackend {
	b := &mockBackend{Mux: chi.NewRouter()}
	b.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			b.mu.Lock()
			b.requests = append(b.requests, recordedRequest{
				Method: r.Method,
				URI:    r.URL.RequestURI(),
				Auth:   r.Header.Get("Authorization"),
				Body:   body,
			})
			b.mu.Unlock()
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	})
	return b
}

func (b *mockBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *mockBackend) last() recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return recordedRequest{}
	}
	return b.requests[len(b.requests)-1]
}

// respond returns a handler writing status and body.
func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

type harness struct {
	t       *testing.T
	app     *App
	store   *config.MemStore
	backend *mockBackend
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

// newHarness runs commands against an in-memory store and a mock backend.
// input is the text typed at prompts.
func newHarness(t *testing.T, s *config.Session, input string) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		store:   config.NewMemStore(s),
		backend: newMockBackend(),
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
	}
	h.app = NewApp(strings.NewReader(input), h.out, h.errOut)
	h.app.Store = h.store
	h.app.Transport = httpclient.NewTestTransport(h.backend)
	return h
}

// run executes one command line and returns the exit code.
func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.errOut.Reset()
	return h.app.Run(context.Background(), args)
}

func (h *harness) session() *config.Session {
	h.t.Helper()
	s, err := h.store.Load()
	require.NoError(h.t, err)
	return s
}

// loggedIn returns a session with a token and the given default IDs.
func loggedIn(accountID, workspaceID, projectID string) *config.Session {
	s := config.NewSession("http://api.test")
	s.SetCredentials("tok-abc", &config.User{Username: "alice", Email: "alice@example.com"})
	if accountID != "" {
		s.DefaultAccountID = types.NullableStringFrom(accountID)
	}
	if workspaceID != "" {
		s.DefaultWorkspaceID = types.NullableStringFrom(workspaceID)
	}
	if projectID != "" {
		s.DefaultProjectID = types.NullableStringFrom(projectID)
	}
	return s
}
