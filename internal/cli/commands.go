package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/securepipe/securepipe/internal/common/apperrors"
	"github.com/securepipe/securepipe/internal/common/httpclient"
	"github.com/securepipe/securepipe/internal/common/logtrace"
	"github.com/securepipe/securepipe/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version of the CLI.
const Version = "1.1.0"

// App carries everything a command needs. Commands never touch process globals
// directly, so tests can run the whole tree against in-memory state.
type App struct {
	Store     config.Store      // nil means a FileStore at --config or the default path
	Prompter  Prompter          // nil means prompts read from In
	Transport http.RoundTripper // nil means http.DefaultTransport
	In        io.Reader
	Out       io.Writer
	Err       io.Writer
	Colorize  bool // colorize JSON output

	configPath string
	output     string
	timeout    time.Duration
	debug      bool

	session       *config.Session
	sessionLoaded bool
}

// NewApp returns an App bound to the given streams.
func NewApp(in io.Reader, out, errOut io.Writer) *App {
	return &App{In: in, Out: out, Err: errOut}
}

// Execute runs the CLI with the process arguments and returns the exit code.
// This is called by main.main().
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	config.LoadDotEnv()
	app := NewApp(os.Stdin, os.Stdout, os.Stderr)
	app.Colorize = isatty.IsTerminal(os.Stdout.Fd())
	return app.Run(ctx, os.Args[1:])
}

// Run executes one command line and reports errors the way the binary does.
func (a *App) Run(ctx context.Context, args []string) int {
	a.session, a.sessionLoaded = nil, false
	logtrace.InitLoggerTo(a.Err, false)
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	root := NewRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return apperrors.ExitOK
	}
	a.printError(err)
	return apperrors.ExitCodeOf(err)
}

// NewRootCmd builds the command tree.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "securepipe [command] [flags]",
		Short: "SecurePipe CLI - Secure Infrastructure Pipeline Management",
		Long: `SecurePipe CLI is a command line interface for the SecurePipe API.
It manages accounts, workspaces, projects, applications and pipelines, and
reads audit logs and service health.

Examples:
  # Log in and remember a default account
  securepipe auth login -u alice
  securepipe config set --account-id 42

  # List workspaces of the default account
  securepipe workspace list

  # Show a pipeline as YAML
  securepipe pipeline show 7 -o yaml`,
		Version:           Version,
		SilenceErrors:     true, // errors are printed by Run
		SilenceUsage:      true,
		PersistentPreRunE: a.preRun,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	root.SetVersionTemplate("SecurePipe, version {{.Version}}\n")
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return ErrValidation.New(err.Error())
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to configuration file to override default")
	flags.StringVarP(&a.output, "output", "o", outputText, "Output format: text, json or yaml")
	flags.DurationVar(&a.timeout, "timeout", httpclient.DefaultTimeout, "Timeout for each API request")
	flags.BoolVar(&a.debug, "debug", false, "Log requests to stderr")

	root.AddCommand(newVersionCmd(a))
	root.AddCommand(newAuthCmd(a))
	for _, c := range resourceCommands(a) {
		root.AddCommand(c)
	}
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newAuditCmd(a))
	root.AddCommand(newHealthCmd(a))
	markUsageErrors(root)
	return root
}

// markUsageErrors makes positional argument and unknown command errors exit
// as validation failures throughout the tree.
func markUsageErrors(c *cobra.Command) {
	if validate := c.Args; validate != nil {
		c.Args = func(cmd *cobra.Command, args []string) error {
			if err := validate(cmd, args); err != nil {
				return ErrValidation.New(err.Error())
			}
			return nil
		}
	} else if c.HasSubCommands() {
		c.Args = unknownSubcommand
		if !c.Runnable() {
			c.RunE = func(cmd *cobra.Command, _ []string) error {
				return cmd.Help()
			}
		}
	}
	for _, sub := range c.Commands() {
		markUsageErrors(sub)
	}
}

func unknownSubcommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	msg := fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath())
	if suggestions := cmd.SuggestionsFor(args[0]); len(suggestions) > 0 {
		msg += "\n\nDid you mean this?\n\t" + strings.Join(suggestions, "\n\t")
	}
	return ErrValidation.New(msg)
}

// preRun handles persistent flags before command execution.
func (a *App) preRun(cmd *cobra.Command, args []string) error {
	logtrace.InitLoggerTo(a.Err, a.debug)

	switch a.output = strings.ToLower(a.output); a.output {
	case outputText, outputJSON, outputYAML:
	default:
		return ErrValidation.New(fmt.Sprintf("Invalid output format %q: must be one of text, json, yaml", a.output))
	}
	if a.timeout <= 0 {
		return ErrValidation.New("Timeout must be positive")
	}

	if a.Store == nil {
		path := a.configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		a.Store = config.NewFileStore(path)
	}
	if a.Prompter == nil {
		a.Prompter = NewPrompter(a.In, a.Err)
	}
	return nil
}

// loadSession returns the stored session, or nil if none exists. The store is
// read once per invocation.
func (a *App) loadSession() (*config.Session, error) {
	if a.sessionLoaded {
		return a.session, nil
	}
	s, err := a.Store.Load()
	if err != nil {
		return nil, err
	}
	a.session, a.sessionLoaded = s, true
	return s, nil
}

func (a *App) saveSession(s *config.Session) error {
	if err := a.Store.Save(s); err != nil {
		return err
	}
	a.session, a.sessionLoaded = s, true
	return nil
}

// newClient creates a gateway client for cfg using the invocation's options.
func (a *App) newClient(cfg httpclient.Configurator) *httpclient.Client {
	return httpclient.NewClient(cfg, httpclient.ClientOptions{
		Timeout:   a.timeout,
		Transport: a.Transport,
		UserAgent: "securepipe-cli/" + Version,
	})
}

// gateway returns a client for the stored session. Without a session every
// request fails with NotAuthenticated.
func (a *App) gateway() (httpclient.Gateway, error) {
	s, err := a.loadSession()
	if err != nil {
		return nil, err
	}
	var cfg httpclient.Configurator
	if s != nil {
		cfg = s
	}
	return a.newClient(cfg), nil
}

// newVersionCmd creates and returns a new version command
func newVersionCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of securepipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := a.Store.Path()
			if a.output != outputText {
				return a.printValue(map[string]string{
					"version":     Version,
					"config_file": configPath,
				})
			}
			fmt.Fprintf(a.Out, "SecurePipe, version %s\n", Version)
			fmt.Fprintf(a.Out, "Config file: %s\n", configPath)
			return nil
		},
	}
}

// stringFlag returns the trimmed value of a string flag.
func stringFlag(flags *pflag.FlagSet, name string) string {
	v, _ := flags.GetString(name)
	return strings.TrimSpace(v)
}
