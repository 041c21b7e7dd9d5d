package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marketplace/storefront/internal/domain/cart"
)

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	*RootOptions
	Username      string
	Password      string
	PasswordStdin bool
}

// LoginOutput is the output of the login command
type LoginOutput struct {
	Username  string         `json:"username"`
	ExpiresIn int            `json:"expires_in"`
	SyncState cart.SyncState `json:"sync_state"`
	Pending   int            `json:"pending"`
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and merge the local cart into your account",
		Example: `  cartctl login -u demo -p demo-password
  echo "$PASSWORD" | cartctl login -u demo --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.PasswordStdin {
				password, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				opts.Password = password
			}
			if opts.Username == "" || opts.Password == "" {
				return NewExitError(ExitCommandError, "username and password are required")
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, out *OutputFormatter) error {
				return runLogin(ctx, app, out, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "account password")
	cmd.Flags().BoolVar(&opts.PasswordStdin, "password-stdin", false, "read the password from stdin")

	return cmd
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", WrapExitError(ExitCommandError, "failed to read password", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(ctx context.Context, app *App, out *OutputFormatter, opts *LoginOptions) error {
	result, err := app.Client.Login(ctx, opts.Username, opts.Password)
	if err != nil {
		return out.Fail("login failed", err)
	}
	// Observers run on the token change, so the local cart is merged here.
	if err := app.Session.SetToken(ctx, result.AccessToken); err != nil {
		return out.Fail("failed to store token", err)
	}

	output := LoginOutput{
		Username:  result.Username,
		ExpiresIn: result.ExpiresIn,
		SyncState: app.Provider.SyncState(),
		Pending:   app.Store.Len(),
	}
	return out.Success(output, func(w io.Writer) {
		fmt.Fprintf(w, "Signed in as %s\n", output.Username)
		if output.Pending > 0 {
			fmt.Fprintf(w, "%d local item(s) could not be merged yet; run \"cartctl sync\" to retry\n", output.Pending)
		}
	})
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and return to the local cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, runLogout)
		},
	}
}

func runLogout(ctx context.Context, app *App, out *OutputFormatter) error {
	wasSignedIn := app.Session.IsAuthenticated()
	if err := app.Session.ClearToken(ctx); err != nil {
		return out.Fail("logout failed", err)
	}

	return out.Success(map[string]bool{"signed_out": wasSignedIn}, func(w io.Writer) {
		if wasSignedIn {
			fmt.Fprintln(w, "Signed out")
			return
		}
		fmt.Fprintln(w, "Not signed in")
	})
}
