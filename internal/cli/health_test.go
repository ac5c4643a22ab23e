package cli

import (
	"net/http"
	"testing"

	"github.com/securepipe/securepipe/internal/common/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthWithoutConfiguration(t *testing.T) {
	h := newHarness(t, nil, "")
	h.backend.Get("/health", respond(http.StatusOK, `{"status":"healthy","version":"1.4.2"}`))

	require.Equal(t, 0, h.run("health", "status"), h.errOut.String())
	assert.Equal(t, "{\n"+
		"  \"status\": \"healthy\",\n"+
		"  \"version\": \"1.4.2\"\n"+
		"}\n"+
		"🔗 Server version 1.4.2 is compatible with this CLI (1.1.0)\n", h.out.String())
	assert.Empty(t, h.backend.last().Auth)
}

func TestHealthProbes(t *testing.T) {
	h := newHarness(t, loggedIn("", "", ""), "")
	h.backend.Get("/health/detailed", respond(http.StatusOK, `{"database":"ok","cache":"ok"}`))
	h.backend.Get("/health/ready", respond(http.StatusServiceUnavailable, `{"detail":"database not ready"}`))

	require.Equal(t, 0, h.run("health", "detailed"))
	assert.Equal(t, "Bearer tok-abc", h.backend.last().Auth)
	assert.Contains(t, h.out.String(), `"database": "ok"`)
	assert.NotContains(t, h.out.String(), "compatible")

	assert.Equal(t, apperrors.ExitAPIError, h.run("health", "ready"))
	assert.Equal(t, "❌ Health check failed: database not ready (Status: 503)\n", h.errOut.String())
}

func TestHealthJSONOutput(t *testing.T) {
	h := newHarness(t, nil, "")
	h.backend.Get("/health", respond(http.StatusOK, `{"status":"healthy","version":"2.0.0"}`))

	require.Equal(t, 0, h.run("health", "status", "-o", "json"))
	assert.JSONEq(t, `{"status":"healthy","version":"2.0.0"}`, h.out.String())
}

func TestCompatibility(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"1.0.0", "🔗 Server version 1.0.0 is compatible with this CLI (1.1.0)\n"},
		{"v1.9.3-rc.1", "🔗 Server version v1.9.3-rc.1 is compatible with this CLI (1.1.0)\n"},
		{"2.0.0", "⚠️  Server version 2.0.0 may not be compatible with this CLI (1.1.0)\n"},
		{"0.9.0", "⚠️  Server version 0.9.0 may not be compatible with this CLI (1.1.0)\n"},
		{"latest", "⚠️  Server reported an unrecognized version \"latest\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			h := newHarness(t, nil, "")
			printCompatibility(h.out, tt.version)
			assert.Equal(t, tt.want, h.out.String())
		})
	}
}
