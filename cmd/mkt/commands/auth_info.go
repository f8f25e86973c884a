package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewAuthInfoCommand creates the auth-info command
func NewAuthInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "auth-info",
		Short: "Show authentication state",
		Long:  "Describe the stored token: whether it is anonymous, its scopes and its grant type",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			return withClient(ctx, func(client sdk.Client) error {
				info, err := client.AuthInfo(ctx)
				if err != nil {
					return fmt.Errorf("failed to read auth info: %w", err)
				}

				return displayAuthInfo(cmd.OutOrStdout(), viper.GetString("output"), info)
			})
		},
	}
}

func displayAuthInfo(w io.Writer, format string, info *sdk.AuthInfo) error {
	handled, err := writeStructured(w, format, info)
	if handled {
		return err
	}

	if info.GrantType == "" {
		_, _ = fmt.Fprintln(w, "Not authenticated")

		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	scopes := strings.Join(info.Scopes, " ")
	if scopes == "" {
		scopes = constants.None
	}

	rows := [][]string{
		{"Anonymous", strconv.FormatBool(info.IsAnonymous)},
		{"Logged In As", strconv.FormatBool(info.IsLoggedInAs)},
		{"Grant Type", info.GrantType},
		{"Scopes", scopes},
	}

	for _, row := range rows {
		err := table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append auth info row: %w", err)
		}
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
