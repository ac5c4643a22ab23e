package cli

import (
	"net/http"
	"testing"

	"github.com/securepipe/securepipe/internal/common/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	h := newHarness(t, nil, "")

	require.Equal(t, 0, h.run("version"))
	assert.Equal(t, "SecurePipe, version 1.1.0\nConfig file: memory\n", h.out.String())

	require.Equal(t, 0, h.run("--version"))
	assert.Equal(t, "SecurePipe, version 1.1.0\n", h.out.String())

	require.Equal(t, 0, h.run("version", "-o", "json"))
	assert.JSONEq(t, `{"version":"1.1.0","config_file":"memory"}`, h.out.String())

	require.Equal(t, 0, h.run("version", "-o", "YAML"))
	assert.Contains(t, h.out.String(), "config_file: memory\n")
	assert.Contains(t, h.out.String(), "version: 1.1.0")
}

func TestGlobalFlagValidation(t *testing.T) {
	h := newHarness(t, loggedIn("", "", ""), "")

	assert.Equal(t, apperrors.ExitValidation, h.run("version", "-o", "xml"))
	assert.Equal(t, "❌ Invalid output format \"xml\": must be one of text, json, yaml\n", h.errOut.String())

	assert.Equal(t, apperrors.ExitValidation, h.run("account", "list", "--timeout", "0s"))
	assert.Equal(t, "❌ Timeout must be positive\n", h.errOut.String())

	assert.Equal(t, apperrors.ExitValidation, h.run("account", "list", "--no-such-flag"))
	assert.Contains(t, h.errOut.String(), "unknown flag: --no-such-flag")
	assert.Zero(t, h.backend.count())
}

func TestUsageErrorsAreValidationFailures(t *testing.T) {
	h := newHarness(t, loggedIn("", "", ""), "")

	assert.Equal(t, apperrors.ExitValidation, h.run("workspace", "show", "1", "2"))
	assert.Equal(t, "❌ accepts at most 1 arg(s), received 2\n", h.errOut.String())

	assert.Equal(t, apperrors.ExitValidation, h.run("workspace", "list", "extra"))
	assert.Contains(t, h.errOut.String(), `unknown command "extra" for "securepipe workspace list"`)

	assert.Equal(t, apperrors.ExitValidation, h.run("bogus"))
	assert.Contains(t, h.errOut.String(), `unknown command "bogus" for "securepipe"`)

	assert.Equal(t, apperrors.ExitValidation, h.run("workspace", "bogus"))
	assert.Contains(t, h.errOut.String(), `unknown command "bogus" for "securepipe workspace"`)

	assert.Equal(t, apperrors.ExitValidation, h.run("pipelin"))
	assert.Contains(t, h.errOut.String(), "Did you mean this?\n\tpipeline")
	assert.Zero(t, h.backend.count())
}

func TestGroupWithoutSubcommandShowsHelp(t *testing.T) {
	h := newHarness(t, nil, "")
	require.Equal(t, 0, h.run("workspace"))
	assert.Contains(t, h.out.String(), "Available Commands:")
	assert.Empty(t, h.errOut.String())
}

func TestErrorsAsJSON(t *testing.T) {
	h := newHarness(t, loggedIn("", "", ""), "")
	h.backend.Get("/api/v1/projects/{id}", respond(http.StatusNotFound, `{"detail":"Project not found"}`))

	assert.Equal(t, apperrors.ExitAPIError, h.run("project", "show", "7", "-o", "json"))
	assert.JSONEq(t, `{"error":"Failed to show project: Project not found (Status: 404)","exit_code":5,"status":404}`, h.out.String())
	assert.Empty(t, h.errOut.String())

	assert.Equal(t, apperrors.ExitValidation, h.run("project", "show", "-o", "json"))
	assert.JSONEq(t, `{"error":"Project ID is required","exit_code":2}`, h.out.String())
}

func TestDebugLogsRequests(t *testing.T) {
	h := newHarness(t, loggedIn("", "", ""), "")
	h.backend.Get("/api/v1/accounts/", respond(http.StatusOK, `[]`))

	require.Equal(t, 0, h.run("account", "list", "--debug"))
	assert.Contains(t, h.errOut.String(), "sending request")
	assert.Contains(t, h.errOut.String(), "/api/v1/accounts/")

	require.Equal(t, 0, h.run("account", "list"))
	assert.Empty(t, h.errOut.String())
}

func TestDebugLogsErrorCauses(t *testing.T) {
	h := newHarness(t, loggedIn("", "", ""), "")
	h.backend.Get("/api/v1/projects/{id}", respond(http.StatusNotFound, `{"detail":"Project not found"}`))

	assert.Equal(t, apperrors.ExitAPIError, h.run("project", "show", "7", "--debug"))
	assert.Contains(t, h.errOut.String(), "command failed: Failed to show project: Project not found")
	assert.Contains(t, h.errOut.String(), "exit_code=5")
	assert.Contains(t, h.errOut.String(), "❌ Failed to show project: Project not found (Status: 404)\n")

	assert.Equal(t, apperrors.ExitAPIError, h.run("project", "show", "7"))
	assert.Equal(t, "❌ Failed to show project: Project not found (Status: 404)\n", h.errOut.String())
}

func TestRequestHeaders(t *testing.T) {
	h := newHarness(t, loggedIn("", "", ""), "")
	var userAgent, requestID string
	h.backend.Get("/api/v1/accounts/", func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		requestID = r.Header.Get("X-Request-ID")
		respond(http.StatusOK, `[]`)(w, r)
	})

	require.Equal(t, 0, h.run("account", "list"))
	assert.Equal(t, "securepipe-cli/1.1.0", userAgent)
	assert.NotEmpty(t, requestID)
}

func TestRootWithoutCommandShowsHelp(t *testing.T) {
	h := newHarness(t, nil, "")
	require.Equal(t, 0, h.run())
	assert.Contains(t, h.out.String(), "SecurePipe CLI is a command line interface")
	assert.Contains(t, h.out.String(), "pipeline")
}
