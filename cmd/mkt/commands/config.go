package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const configDirName = ".mkt"

// Config represents the CLI configuration.
type Config struct {
	BaseURL      string `json:"base_url,omitempty"      yaml:"base_url,omitempty"`
	APIVersion   string `json:"api_version,omitempty"   yaml:"api_version,omitempty"`
	ClientID     string `json:"client_id,omitempty"     yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	WireFormat   string `json:"wire_format,omitempty"   yaml:"wire_format,omitempty"`
	Output       string `json:"output,omitempty"        yaml:"output,omitempty"`

	TokenStore TokenStoreConfig `json:"token_store" yaml:"token_store"`
}

// TokenStoreConfig selects where the CLI keeps the access token.
type TokenStoreConfig struct {
	Type       string `json:"type,omitempty"        yaml:"type,omitempty"`
	Path       string `json:"path,omitempty"        yaml:"path,omitempty"`
	NATSURL    string `json:"nats_url,omitempty"    yaml:"nats_url,omitempty"`
	NATSBucket string `json:"nats_bucket,omitempty" yaml:"nats_bucket,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage mkt CLI configuration including API credentials and token storage",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			masked := *config

			if masked.ClientSecret != "" {
				masked.ClientSecret = constants.MaskedSecret
			}

			return displayConfig(cmd.OutOrStdout(), viper.GetString("output"), &masked)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + joinKeys() + ".",
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value so the default applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

// ConfigDir returns ~/.mkt.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, configDirName), nil
}

// loadConfig reads the effective configuration from viper: flags,
// MKT_ environment variables and the config file.
func loadConfig() *Config {
	return &Config{
		BaseURL:      viper.GetString("base_url"),
		APIVersion:   viper.GetString("api_version"),
		ClientID:     viper.GetString("client_id"),
		ClientSecret: viper.GetString("client_secret"),
		WireFormat:   viper.GetString("wire_format"),
		Output:       viper.GetString("output"),
		TokenStore: TokenStoreConfig{
			Type:       viper.GetString("token_store.type"),
			Path:       viper.GetString("token_store.path"),
			NATSURL:    viper.GetString("token_store.nats_url"),
			NATSBucket: viper.GetString("token_store.nats_bucket"),
		},
	}
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configDir, err := ConfigDir()
		if err != nil {
			return err
		}

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// configSetters maps config keys to field setters. An empty value resets
// the field.
var configSetters = map[string]func(*Config, string) error{
	"base_url":      stringSetter(func(c *Config) *string { return &c.BaseURL }),
	"api_version":   stringSetter(func(c *Config) *string { return &c.APIVersion }),
	"client_id":     stringSetter(func(c *Config) *string { return &c.ClientID }),
	"client_secret": stringSetter(func(c *Config) *string { return &c.ClientSecret }),
	"output": func(c *Config, v string) error {
		switch v {
		case "", constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			c.Output = v

			return nil
		default:
			return fmt.Errorf("%w: output %q", constants.ErrUnknownConfigKey, v)
		}
	},
	"wire_format": func(c *Config, v string) error {
		switch v {
		case "", constants.WireFormatJSON, constants.WireFormatTransit:
			c.WireFormat = v

			return nil
		default:
			return fmt.Errorf("%w: %q", constants.ErrUnknownWireFormat, v)
		}
	},
	"token_store.type": func(c *Config, v string) error {
		switch tokenstore.StoreType(v) {
		case "", tokenstore.StoreTypeMemory, tokenstore.StoreTypeFile,
			tokenstore.StoreTypeBadger, tokenstore.StoreTypeNATS:
			c.TokenStore.Type = v

			return nil
		default:
			return fmt.Errorf("%w: %q", constants.ErrUnknownStoreType, v)
		}
	},
	"token_store.path":        stringSetter(func(c *Config) *string { return &c.TokenStore.Path }),
	"token_store.nats_url":    stringSetter(func(c *Config) *string { return &c.TokenStore.NATSURL }),
	"token_store.nats_bucket": stringSetter(func(c *Config) *string { return &c.TokenStore.NATSBucket }),
}

func stringSetter(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v

		return nil
	}
}

func setConfigValue(config *Config, key, value string) error {
	setter, ok := configSetters[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return setter(config, value)
}

func joinKeys() string {
	keys := make([]string, 0, len(configSetters))
	for key := range configSetters {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return strings.Join(keys, ", ")
}

func displayConfig(w io.Writer, format string, config *Config) error {
	handled, err := writeStructured(w, format, config)
	if handled {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	rows := [][]string{
		{"Base URL", valueOrDefault(config.BaseURL, constants.DefaultBaseURL)},
		{"API Version", valueOrDefault(config.APIVersion, constants.DefaultAPIVersion)},
		{"Client ID", valueOrDefault(config.ClientID, constants.NotAvailable)},
		{"Client Secret", valueOrDefault(config.ClientSecret, constants.None)},
		{"Wire Format", valueOrDefault(config.WireFormat, constants.WireFormatTransit)},
		{"Token Store", valueOrDefault(config.TokenStore.Type, string(tokenstore.StoreTypeFile))},
		{"Token Store Path", valueOrDefault(config.TokenStore.Path, constants.NotAvailable)},
	}

	if config.TokenStore.NATSURL != "" {
		rows = append(rows,
			[]string{"NATS URL", config.TokenStore.NATSURL},
			[]string{"NATS Bucket", valueOrDefault(config.TokenStore.NATSBucket, constants.NotAvailable)},
		)
	}

	for _, row := range rows {
		err := table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append config row: %w", err)
		}
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
