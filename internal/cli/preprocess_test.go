package cli

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTemplate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		env      map[string]string
		expected string
		errMsg   string
	}{
		{
			name:     "simple substitution",
			input:    "api_key: {{ .ENV.API_KEY }}",
			env:      map[string]string{"API_KEY": "secret123"},
			expected: "api_key: secret123",
		},
		{
			name:     "multiple variables",
			input:    "host: {{ .ENV.HOST }}\nport: {{ .ENV.PORT }}",
			env:      map[string]string{"HOST": "localhost", "PORT": "8080"},
			expected: "host: localhost\nport: 8080",
		},
		{
			name:     "special characters",
			input:    "password: {{ .ENV.DB_PASSWORD }}",
			env:      map[string]string{"DB_PASSWORD": "p@ssw0rd!@#"},
			expected: "password: p@ssw0rd!@#",
		},
		{
			name:     "empty value",
			input:    "empty: {{ .ENV.EMPTY_VAR }}",
			env:      map[string]string{"EMPTY_VAR": ""},
			expected: "empty: ",
		},
		{
			name:     "no placeholders",
			input:    "simple: yaml\ncontent: here",
			expected: "simple: yaml\ncontent: here",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "value is not re-expanded",
			input:    "{{ .ENV.RECURSIVE_VAR }}",
			env:      map[string]string{"RECURSIVE_VAR": "{{ .ENV.RECURSIVE_VAR }}"},
			expected: "{{ .ENV.RECURSIVE_VAR }}",
		},
		{
			name:     "index and conditionals",
			input:    `{{ if .ENV.A }}{{ index .ENV "A" }}{{ end }}`,
			env:      map[string]string{"A": "x"},
			expected: "x",
		},
		{
			name:   "missing variable",
			input:  "missing: {{ .ENV.MISSING_VAR }}",
			errMsg: "missing environment variable: MISSING_VAR (set it in your shell or .env file)",
		},
		{
			name:   "invalid template syntax",
			input:  "invalid: {{ .ENV.VAR }",
			env:    map[string]string{"VAR": "value"},
			errMsg: "template error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := expandTemplate([]byte(tt.input), tt.env)
			if tt.errMsg != "" {
				assert.ErrorIs(t, err, ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestExpandTemplateLargeInput(t *testing.T) {
	input := strings.Repeat("{{ .ENV.V }}", 10000)
	result, err := expandTemplate([]byte(input), map[string]string{"V": "ab"})
	require.NoError(t, err)
	assert.Len(t, result, 20000)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestExpandEnvReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(".env", []byte("SP_DOTENV_KEY=from_env_file\nSP_DOTENV_HOST=db.internal\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SP_DOTENV_KEY")
		os.Unsetenv("SP_DOTENV_HOST")
	})
	t.Setenv("SP_DOTENV_KEY", "from_environment")

	result, err := expandEnv([]byte("key: {{ .ENV.SP_DOTENV_KEY }}\nhost: {{ .ENV.SP_DOTENV_HOST }}"))
	require.NoError(t, err)
	assert.Equal(t, "key: from_environment\nhost: db.internal", string(result))
}

func TestExpandEnvWithoutDotEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SP_COMPLEX_VAR", "key=value&another=thing")

	result, err := expandEnv([]byte("config: {{ .ENV.SP_COMPLEX_VAR }}"))
	require.NoError(t, err)
	assert.Equal(t, "config: key=value&another=thing", string(result))
}
