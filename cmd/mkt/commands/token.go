package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage authentication tokens",
		Long:  "Commands for inspecting, exchanging and clearing the stored token",
	}

	cmd.AddCommand(newTokenShowCommand())
	cmd.AddCommand(newTokenExchangeCommand())
	cmd.AddCommand(newTokenClearCommand())

	return cmd
}

func newTokenShowCommand() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored token",
		Long:  "Display the token held in the token store with credentials masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closer, err := openTokenStore(loadConfig())
			if err != nil {
				return err
			}

			defer func() {
				_ = closer.Close()
			}()

			token, err := store.GetToken(context.Background())
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}

			if !token.Valid() {
				return constants.ErrNotAuthenticated
			}

			return displayToken(cmd.OutOrStdout(), viper.GetString("output"), buildTokenStatus(token, reveal))
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "print tokens unmasked")

	return cmd
}

func newTokenExchangeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exchange",
		Short: "Exchange the user token for a trusted token",
		Long:  "Trade the stored user token for a trusted:user token. Requires the client secret.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			return withClient(ctx, func(client sdk.Client) error {
				_, err := client.ExchangeToken(ctx)
				if err != nil {
					return fmt.Errorf("token exchange failed: %w", err)
				}

				info, err := client.AuthInfo(ctx)
				if err != nil {
					return fmt.Errorf("failed to read auth info: %w", err)
				}

				return displayAuthInfo(cmd.OutOrStdout(), viper.GetString("output"), info)
			})
		},
	}
}

func newTokenClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token without revoking it",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closer, err := openTokenStore(loadConfig())
			if err != nil {
				return err
			}

			defer func() {
				_ = closer.Close()
			}()

			err = store.RemoveToken(context.Background())
			if err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Token removed")

			return nil
		},
	}
}

// tokenStatus is the displayable view of a stored token.
type tokenStatus struct {
	AccessToken      string   `json:"access_token"            yaml:"access_token"`
	TokenType        string   `json:"token_type"              yaml:"token_type"`
	ExpiresIn        int      `json:"expires_in"              yaml:"expires_in"`
	Scopes           []string `json:"scopes"                  yaml:"scopes"`
	RefreshToken     string   `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	RefreshAvailable bool     `json:"refresh_token_available" yaml:"refresh_token_available"`
}

func buildTokenStatus(token *tokenstore.Token, reveal bool) *tokenStatus {
	status := &tokenStatus{
		AccessToken:      token.AccessToken,
		TokenType:        token.TokenType,
		ExpiresIn:        token.ExpiresIn,
		Scopes:           token.Scopes(),
		RefreshToken:     token.RefreshToken,
		RefreshAvailable: token.HasRefreshToken(),
	}

	if !reveal {
		status.AccessToken = maskToken(status.AccessToken)

		if status.RefreshToken != "" {
			status.RefreshToken = maskToken(status.RefreshToken)
		}
	}

	return status
}

func displayToken(w io.Writer, format string, status *tokenStatus) error {
	handled, err := writeStructured(w, format, status)
	if handled {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	rows := [][]string{
		{"Access Token", status.AccessToken},
		{"Token Type", valueOrDefault(status.TokenType, constants.NotAvailable)},
		{"Expires In", strconv.Itoa(status.ExpiresIn) + "s"},
		{"Scopes", fmt.Sprintf("%v", status.Scopes)},
		{"Refresh Token Available", strconv.FormatBool(status.RefreshAvailable)},
	}

	for _, row := range rows {
		err := table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append token row: %w", err)
		}
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render token table: %w", err)
	}

	return nil
}
