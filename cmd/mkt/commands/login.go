package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// loginOptions holds the login flags. Exactly one flow runs: identity
// provider, authorization code, or username and password.
type loginOptions struct {
	username     string
	password     string
	idpID        string
	idpClientID  string
	idpToken     string
	code         string
	redirectURI  string
	codeVerifier string
}

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var opts loginOptions

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the marketplace API",
		Long: `Authenticate as a marketplace user and keep the token in the token store.

Without flags the username and password are prompted for. Use --idp-id,
--idp-client-id and --idp-token to log in with an identity provider token, or
--code, --redirect-uri and --code-verifier to complete a login-as flow.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			return withClient(ctx, func(client sdk.Client) error {
				err := runLogin(ctx, client, &opts, cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}

				info, err := client.AuthInfo(ctx)
				if err != nil {
					return fmt.Errorf("failed to read auth info: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Login successful")

				return displayAuthInfo(cmd.OutOrStdout(), viper.GetString("output"), info)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "username (email)")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&opts.idpID, "idp-id", "", "identity provider ID")
	cmd.Flags().StringVar(&opts.idpClientID, "idp-client-id", "", "identity provider client ID")
	cmd.Flags().StringVar(&opts.idpToken, "idp-token", "", "identity provider token")
	cmd.Flags().StringVar(&opts.code, "code", "", "authorization code")
	cmd.Flags().StringVar(&opts.redirectURI, "redirect-uri", "", "authorization code redirect URI")
	cmd.Flags().StringVar(&opts.codeVerifier, "code-verifier", "", "PKCE code verifier")

	return cmd
}

func runLogin(ctx context.Context, client sdk.AuthClient, opts *loginOptions, in io.Reader, out io.Writer) error {
	switch {
	case opts.idpID != "" || opts.idpToken != "":
		_, err := client.LoginWithIdp(ctx, sdk.IdpParams{
			IdpID:       opts.idpID,
			IdpClientID: opts.idpClientID,
			IdpToken:    opts.idpToken,
		})
		if err != nil {
			return fmt.Errorf("identity provider login failed: %w", err)
		}

		return nil
	case opts.code != "":
		_, err := client.LoginAs(ctx, sdk.LoginAsParams{
			Code:         opts.code,
			RedirectURI:  opts.redirectURI,
			CodeVerifier: opts.codeVerifier,
		})
		if err != nil {
			return fmt.Errorf("login-as failed: %w", err)
		}

		return nil
	}

	err := promptCredentials(opts, in, out)
	if err != nil {
		return err
	}

	_, err = client.Login(ctx, opts.username, opts.password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	return nil
}

// promptCredentials asks for whatever credential is missing. The password
// is read without echo when stdin is a terminal.
func promptCredentials(opts *loginOptions, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	if opts.username == "" {
		_, _ = fmt.Fprint(out, "Username: ")
		line, _ := reader.ReadString('\n')
		opts.username = strings.TrimSpace(line)
	}

	if opts.username == "" {
		return constants.ErrUsernameRequired
	}

	if opts.password == "" {
		_, _ = fmt.Fprint(out, "Password: ")

		fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int
		if in == os.Stdin && term.IsTerminal(fd) {
			bytePassword, err := term.ReadPassword(fd)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			opts.password = string(bytePassword)
		} else {
			line, _ := reader.ReadString('\n')
			opts.password = strings.TrimSpace(line)
		}

		_, _ = fmt.Fprintln(out)
	}

	if opts.password == "" {
		return constants.ErrPasswordRequired
	}

	return nil
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the marketplace API",
		Long:  "Revoke the stored refresh token and clear the token store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			return withClient(ctx, func(client sdk.Client) error {
				_, err := client.Logout(ctx)
				if err != nil {
					return fmt.Errorf("logout failed: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

				return nil
			})
		},
	}
}
