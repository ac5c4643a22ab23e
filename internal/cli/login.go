package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/securepipe/securepipe/internal/common/httpclient"
	"github.com/securepipe/securepipe/internal/config"
	"github.com/spf13/cobra"
)

// newAuthCmd creates the auth command group.
func newAuthCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}
	cmd.AddCommand(newLoginCmd(a), newLogoutCmd(a), newStatusCmd(a))
	return cmd
}

// newLoginCmd creates and returns a new login command
func newLoginCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to SecurePipe",
		Long: `Login to the SecurePipe API to obtain an access token.
The token and the user are stored in the configuration file. Missing
credentials are prompted for; the password is not echoed.

The API URL is taken from --api-url, the stored configuration,
$SECUREPIPE_API_URL or http://localhost:8000, in that order.

Examples:
  securepipe auth login -u alice
  securepipe auth login --api-url https://securepipe.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			username := stringFlag(cmd.Flags(), "username")
			if username == "" {
				if username, err = a.Prompter.Prompt("Username"); err != nil {
					return err
				}
			}
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				if password, err = a.Prompter.Password("Password"); err != nil {
					return err
				}
			}

			s, err := a.loadSession()
			if err != nil {
				return err
			}
			apiURL := stringFlag(cmd.Flags(), "api-url")
			switch {
			case apiURL != "":
			case s != nil && s.APIURL != "":
				apiURL = s.APIURL
			default:
				apiURL = config.DefaultAPIURLFromEnv()
			}

			client := a.newClient(httpclient.StaticConfig{ServerURL: apiURL})
			lr, err := client.Login(cmd.Context(), username, password)
			if err != nil {
				if errors.Is(err, httpclient.ErrLoginRejected) {
					return err
				}
				return failed("Login failed", err)
			}

			if s == nil {
				s = config.NewSession(apiURL)
			}
			s.APIURL = apiURL
			var user *config.User
			if lr.User != nil {
				user = &config.User{Username: lr.User.Username, Email: lr.User.Email}
			}
			s.SetCredentials(lr.AccessToken, user)
			if err := a.saveSession(s); err != nil {
				return err
			}

			if a.output != outputText {
				return a.printValue(map[string]any{
					"status": "success",
					"user":   user,
				})
			}
			okLabel.Fprintln(a.Out, "✅ Login successful!")
			var name, email string
			if user != nil {
				name, email = user.Username, user.Email
			}
			fmt.Fprintf(a.Out, "👤 User: %s\n", orUnknown(name))
			fmt.Fprintf(a.Out, "📧 Email: %s\n", orUnknown(email))
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "Username")
	cmd.Flags().StringP("password", "p", "", "Password")
	cmd.Flags().String("api-url", "", "SecurePipe API URL")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from SecurePipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSession()
			if err != nil {
				return err
			}
			if s != nil {
				s.ClearCredentials()
				if err := a.saveSession(s); err != nil {
					return err
				}
			}
			okLabel.Fprintln(a.Out, "✅ Logged out successfully")
			return nil
		},
	}
}

func newStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSession()
			if err != nil {
				return err
			}
			if s == nil || !s.HasToken() {
				return httpclient.ErrNotAuthenticated.New("Not authenticated")
			}

			gw, err := a.gateway()
			if err != nil {
				return err
			}
			raw, err := gw.Request(cmd.Context(), httpclient.RequestOptions{
				Method: http.MethodGet,
				Path:   apiPrefix + "auth/me",
			})
			if err != nil {
				return failed("Authentication check failed", err)
			}
			return a.render(raw, func(w io.Writer) error {
				u, err := decodeRecord[User](raw)
				if err != nil {
					return err
				}
				okLabel.Fprintln(w, "✅ Authenticated")
				fmt.Fprintf(w, "👤 User: %s\n", orUnknown(u.Username))
				fmt.Fprintf(w, "📧 Email: %s\n", orUnknown(u.Email))
				if exp, ok := tokenExpiry(s.GetToken()); ok {
					printExpiry(w, exp)
				}
				return nil
			})
		},
	}
}

// tokenExpiry reads the exp claim of a JWT without verifying it. Tokens that
// are not JWTs or carry no expiry report false.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func printExpiry(w io.Writer, exp time.Time) {
	if time.Now().After(exp) {
		warnLabel.Fprintf(w, "⏰ Token expired: %s\n", exp.Local().Format(time.RFC3339))
		return
	}
	fmt.Fprintf(w, "⏰ Token expires: %s\n", exp.Local().Format(time.RFC3339))
}
