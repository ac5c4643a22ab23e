package cli

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"

	"github.com/securepipe/securepipe/internal/config"
)

// templateContext is the data pipeline files are rendered with.
type templateContext struct {
	ENV map[string]string
}

var missingKeyRegex = regexp.MustCompile(`map has no entry for key "(.*?)"`)

// expandEnv replaces {{ .ENV.VAR }} placeholders with values from the process
// environment. A .env file in the working directory fills in variables that
// are not already set.
func expandEnv(input []byte) ([]byte, error) {
	config.LoadDotEnv()
	return expandTemplate(input, environMap())
}

func environMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// expandTemplate renders input with env as .ENV. Unknown variables are an
// error rather than an empty string.
func expandTemplate(input []byte, env map[string]string) ([]byte, error) {
	tmpl, err := template.New("pipeline").Option("missingkey=error").Parse(string(input))
	if err != nil {
		return nil, ErrValidation.MsgErr(fmt.Sprintf("template error: %v", err), err)
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, templateContext{ENV: env}); err != nil {
		if m := missingKeyRegex.FindStringSubmatch(err.Error()); len(m) == 2 {
			return nil, ErrValidation.New(fmt.Sprintf("missing environment variable: %s (set it in your shell or .env file)", m[1]))
		}
		return nil, ErrValidation.MsgErr(fmt.Sprintf("template error: %v", err), err)
	}
	return out.Bytes(), nil
}
