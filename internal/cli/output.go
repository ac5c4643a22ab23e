package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/securepipe/securepipe/internal/common/apperrors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"sigs.k8s.io/yaml"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	okLabel    = color.New(color.FgGreen)
	errorLabel = color.New(color.FgRed)
	warnLabel  = color.New(color.FgYellow)
	headLabel  = color.New(color.Bold)
)

// render prints a server payload in the selected output format. text is
// called only for text output.
func (a *App) render(raw []byte, text func(w io.Writer) error) error {
	switch a.output {
	case outputJSON:
		return a.printRawJSON(raw)
	case outputYAML:
		return a.printRawYAML(raw)
	default:
		return text(a.Out)
	}
}

// printValue prints a locally built value as JSON or YAML.
func (a *App) printValue(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if a.output == outputYAML {
		return a.printRawYAML(raw)
	}
	return a.printRawJSON(raw)
}

func (a *App) printRawJSON(raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("failed to format JSON output: invalid JSON")
	}
	out := pretty.Pretty(raw)
	if a.Colorize {
		out = pretty.Color(out, nil)
	}
	_, err := a.Out.Write(out)
	return err
}

func (a *App) printRawYAML(raw []byte) error {
	y, err := yaml.JSONToYAML(raw)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	_, err = a.Out.Write(y)
	return err
}

// printError is the single place errors reach the user.
func (a *App) printError(err error) {
	var appErr apperrors.Error
	if errors.As(err, &appErr) {
		log.Debug().Int("exit_code", appErr.ExitCode()).Msg("command failed: " + appErr.ErrorAll())
	}
	if a.output == outputJSON {
		kv := map[string]any{
			"error":     err.Error(),
			"exit_code": apperrors.ExitCodeOf(err),
		}
		if status := apperrors.StatusCodeOf(err); status != 0 {
			kv["status"] = status
		}
		raw, _ := json.Marshal(kv)
		a.Out.Write(pretty.Pretty(raw))
		return
	}
	if errors.Is(err, ErrAborted) {
		fmt.Fprintln(a.Err, err.Error())
		return
	}
	errorLabel.Fprintf(a.Err, "❌ %s\n", err.Error())
}

// orUnknown substitutes "Unknown" for absent values.
func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// orDefault returns s, or def when s is empty.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// optionalLine prints "label: value" only when value is set.
func optionalLine(w io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(w, "%s: %s\n", label, value)
	}
}
