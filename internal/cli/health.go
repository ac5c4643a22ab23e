package cli

import (
	"fmt"
	"io"
	"net/http"

	"github.com/Masterminds/semver/v3"
	"github.com/securepipe/securepipe/internal/common/httpclient"
	"github.com/securepipe/securepipe/internal/config"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// newHealthCmd creates the health command group. Health checks work without a
// stored configuration; the API URL then comes from $SECUREPIPE_API_URL or
// the default.
func newHealthCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Service health commands",
	}
	cmd.AddCommand(
		newHealthProbeCmd(a, "status", "Show basic service health", "/health"),
		newHealthProbeCmd(a, "detailed", "Show detailed health of every component", "/health/detailed"),
		newHealthProbeCmd(a, "ready", "Check whether the service is ready for traffic", "/health/ready"),
	)
	return cmd
}

func newHealthProbeCmd(a *App, use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSession()
			if err != nil {
				return err
			}
			var cfg httpclient.Configurator = httpclient.StaticConfig{ServerURL: config.DefaultAPIURLFromEnv()}
			if s != nil {
				cfg = s
			}

			raw, err := a.newClient(cfg).Request(cmd.Context(), httpclient.RequestOptions{
				Method: http.MethodGet,
				Path:   path,
			})
			if err != nil {
				return failed("Health check failed", err)
			}

			return a.render(raw, func(w io.Writer) error {
				out := pretty.Pretty(raw)
				if a.Colorize {
					out = pretty.Color(out, nil)
				}
				if _, err := w.Write(out); err != nil {
					return err
				}
				if v := gjson.GetBytes(raw, "version"); v.Exists() && v.String() != "" {
					printCompatibility(w, v.String())
				}
				return nil
			})
		},
	}
}

// compatible reports whether the server version has the CLI's major version.
func compatible(serverVersion string) (bool, error) {
	sv, err := semver.NewVersion(serverVersion)
	if err != nil {
		return false, err
	}
	cli := semver.MustParse(Version)
	c, err := semver.NewConstraint(fmt.Sprintf(">= %d.0.0-0, < %d.0.0-0", cli.Major(), cli.Major()+1))
	if err != nil {
		return false, err
	}
	return c.Check(sv), nil
}

func printCompatibility(w io.Writer, serverVersion string) {
	ok, err := compatible(serverVersion)
	switch {
	case err != nil:
		warnLabel.Fprintf(w, "⚠️  Server reported an unrecognized version %q\n", serverVersion)
	case ok:
		okLabel.Fprintf(w, "🔗 Server version %s is compatible with this CLI (%s)\n", serverVersion, Version)
	default:
		warnLabel.Fprintf(w, "⚠️  Server version %s may not be compatible with this CLI (%s)\n", serverVersion, Version)
	}
}
