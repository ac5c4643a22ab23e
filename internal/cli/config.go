package cli

import (
	"fmt"

	"github.com/securepipe/securepipe/internal/common/httpclient"
	"github.com/securepipe/securepipe/internal/config"
	"github.com/securepipe/securepipe/pkg/types"
	"github.com/spf13/cobra"
)

// newConfigCmd creates the config command group.
func newConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
		Long: `Show and change the local configuration: the API URL, the stored
token and the default account, workspace and project IDs used when a
command is given no explicit ID.

Examples:
  securepipe config show
  securepipe config set --account-id 42 --workspace-id 7
  securepipe config reset --yes`,
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigSetCmd(a), newConfigResetCmd(a))
	return cmd
}

func newConfigShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSession()
			if err != nil {
				return err
			}
			if s == nil {
				return httpclient.ErrNotAuthenticated.New("No configuration found")
			}

			if a.output != outputText {
				kv := map[string]any{
					"api_url":              s.APIURL,
					"has_token":            s.HasToken(),
					"default_account_id":   s.DefaultAccountID,
					"default_workspace_id": s.DefaultWorkspaceID,
					"default_project_id":   s.DefaultProjectID,
					"config_file":          a.Store.Path(),
				}
				if exp, ok := tokenExpiry(s.GetToken()); ok {
					kv["token_expires_at"] = exp
				}
				return a.printValue(kv)
			}

			w := a.Out
			headLabel.Fprintln(w, "📋 Configuration:")
			fmt.Fprintf(w, "  API URL: %s\n", orDefault(s.APIURL, "Not set"))
			hasToken := "No"
			if s.HasToken() {
				hasToken = "Yes"
			}
			fmt.Fprintf(w, "  Has Token: %s\n", hasToken)
			if exp, ok := tokenExpiry(s.GetToken()); ok {
				fmt.Fprint(w, "  ")
				printExpiry(w, exp)
			}
			fmt.Fprintf(w, "  Account ID: %s\n", s.DefaultAccountID.OrDefault("Not set"))
			fmt.Fprintf(w, "  Workspace ID: %s\n", s.DefaultWorkspaceID.OrDefault("Not set"))
			fmt.Fprintf(w, "  Project ID: %s\n", s.DefaultProjectID.OrDefault("Not set"))
			fmt.Fprintf(w, "  Config File: %s\n", a.Store.Path())
			return nil
		},
	}
}

func newConfigSetCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID := stringFlag(cmd.Flags(), "account-id")
			workspaceID := stringFlag(cmd.Flags(), "workspace-id")
			projectID := stringFlag(cmd.Flags(), "project-id")
			apiURL := stringFlag(cmd.Flags(), "api-url")
			if accountID == "" && workspaceID == "" && projectID == "" && apiURL == "" {
				return ErrValidation.New("At least one configuration value must be specified")
			}

			s, err := a.loadSession()
			if err != nil {
				return err
			}
			if s == nil {
				s = config.NewSession(config.DefaultAPIURLFromEnv())
			}
			setIfGiven(&s.DefaultAccountID, accountID)
			setIfGiven(&s.DefaultWorkspaceID, workspaceID)
			setIfGiven(&s.DefaultProjectID, projectID)
			if apiURL != "" {
				s.APIURL = apiURL
			}
			if err := a.saveSession(s); err != nil {
				return err
			}
			okLabel.Fprintln(a.Out, "✅ Configuration updated")
			return nil
		},
	}
	cmd.Flags().StringP("account-id", "a", "", "Default account ID")
	cmd.Flags().StringP("workspace-id", "w", "", "Default workspace ID")
	cmd.Flags().StringP("project-id", "p", "", "Default project ID")
	cmd.Flags().String("api-url", "", "SecurePipe API URL")
	return cmd
}

func setIfGiven(ns *types.NullableString, v string) {
	if v != "" {
		ns.Set(v)
	}
}

func newConfigResetCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := a.Prompter.Confirm("Are you sure you want to reset the configuration?")
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			if err := a.Store.Reset(); err != nil {
				return err
			}
			a.session, a.sessionLoaded = nil, true
			okLabel.Fprintln(a.Out, "✅ Configuration reset")
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Confirm the action without prompting")
	return cmd
}
