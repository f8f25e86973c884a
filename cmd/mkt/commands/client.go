package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdkclient"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
)

const (
	defaultTokenFile  = "token.json"
	defaultBadgerDir  = "tokens.db"
	defaultNATSBucket = "mkt_tokens"
)

// newLogger returns the CLI logger. --verbose lowers the level to debug.
func newLogger(w io.Writer) hclog.Logger {
	level := hclog.Warn
	if viper.GetBool("verbose") || viper.GetBool("debug") {
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "mkt",
		Level:  level,
		Output: w,
	})
}

// tokenStoreConfig resolves the configured backend, placing file and
// badger stores under ~/.mkt when no path is given. Entries are keyed by
// client ID so several clients can share one store.
func tokenStoreConfig(config *Config) (*tokenstore.Config, error) {
	storeType := tokenstore.StoreType(config.TokenStore.Type)
	if storeType == "" {
		storeType = tokenstore.StoreTypeFile
	}

	path := config.TokenStore.Path

	defaultPath := func(name string) (string, error) {
		if path != "" {
			return path, nil
		}

		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}

		return filepath.Join(dir, name), nil
	}

	key := "token:" + config.ClientID

	switch storeType {
	case tokenstore.StoreTypeMemory:
		return &tokenstore.Config{Type: storeType}, nil
	case tokenstore.StoreTypeFile:
		file, err := defaultPath(defaultTokenFile)
		if err != nil {
			return nil, err
		}

		return &tokenstore.Config{Type: storeType, FilePath: file}, nil
	case tokenstore.StoreTypeBadger:
		dir, err := defaultPath(defaultBadgerDir)
		if err != nil {
			return nil, err
		}

		return &tokenstore.Config{
			Type:   storeType,
			Badger: &tokenstore.BadgerConfig{Dir: dir, Key: key},
		}, nil
	case tokenstore.StoreTypeNATS:
		bucket := config.TokenStore.NATSBucket
		if bucket == "" {
			bucket = defaultNATSBucket
		}

		return &tokenstore.Config{
			Type: storeType,
			NATS: &tokenstore.NATSConfig{
				URL:    valueOrDefault(config.TokenStore.NATSURL, "nats://127.0.0.1:4222"),
				Bucket: bucket,
				Key:    "token." + config.ClientID,
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", constants.ErrUnknownStoreType, storeType)
	}
}

// openTokenStore opens the configured token store. The closer must be
// closed when the command finishes.
func openTokenStore(config *Config) (tokenstore.Store, io.Closer, error) {
	storeConfig, err := tokenStoreConfig(config)
	if err != nil {
		return nil, nil, err
	}

	if storeConfig.FilePath != "" {
		err = os.MkdirAll(filepath.Dir(storeConfig.FilePath), constants.ConfigDirPerm)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	store, closer, err := tokenstore.NewFromConfig(storeConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open token store: %w", err)
	}

	return store, closer, nil
}

// buildSDKConfig maps the CLI configuration onto an SDK config.
func buildSDKConfig(config *Config, store tokenstore.Store, logger hclog.Logger) *sdk.Config {
	sdkLogger := sdk.NewHCLogger(logger)

	chain := sdk.NewInterceptorChain()
	chain.AddRequestInterceptor(sdk.RequestIDInterceptor())
	chain.AddRequestInterceptor(sdk.LoggingInterceptor(sdkLogger))
	chain.AddResponseInterceptor(sdk.LoggingResponseInterceptor(sdkLogger))

	return &sdk.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		BaseURL:      config.BaseURL,
		Version:      config.APIVersion,
		TokenStore:   store,
		WireFormat:   sdk.WireFormat(config.WireFormat),
		Logger:       sdkLogger,
		Debug:        viper.GetBool("debug"),
		Interceptors: chain,
	}
}

// newClient builds an SDK client from the CLI configuration. The closer
// releases the token store.
func newClient(ctx context.Context, config *Config, logger hclog.Logger) (sdk.Client, io.Closer, error) {
	if config.ClientID == "" {
		return nil, nil, constants.ErrClientIDRequired
	}

	store, closer, err := openTokenStore(config)
	if err != nil {
		return nil, nil, err
	}

	client, err := sdkclient.New(ctx, buildSDKConfig(config, store, logger))
	if err != nil {
		_ = closer.Close()

		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, closer, nil
}

// withClient runs fn with a client built from the effective configuration.
func withClient(ctx context.Context, fn func(client sdk.Client) error) error {
	client, closer, err := newClient(ctx, loadConfig(), newLogger(os.Stderr))
	if err != nil {
		return err
	}

	defer func() {
		_ = closer.Close()
	}()

	return fn(client)
}
