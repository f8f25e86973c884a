package tokenstore

import (
	"errors"
	"fmt"
	"io"
)

// StoreType names a persistent backend.
type StoreType string

const (
	// StoreTypeMemory keeps the token in process memory.
	StoreTypeMemory StoreType = "memory"

	// StoreTypeFile keeps the token in a JSON file.
	StoreTypeFile StoreType = "file"

	// StoreTypeBadger keeps the token in a Badger database.
	StoreTypeBadger StoreType = "badger"

	// StoreTypeNATS keeps the token in a NATS KV bucket.
	StoreTypeNATS StoreType = "nats"
)

// Static errors for err113 compliance.
var (
	ErrFilePathRequired    = errors.New("file path required for file token store")
	ErrBadgerConfigMissing = errors.New("badger configuration required for badger token store")
	ErrNATSConfigRequired  = errors.New("NATS configuration required for NATS token store")
	ErrUnsupportedStore    = errors.New("unsupported token store type")
)

// Config selects and configures a backend. Cookie stores are bound to a
// jar or request and are built directly instead.
type Config struct {
	Type     StoreType
	FilePath string
	Badger   *BadgerConfig
	NATS     *NATSConfig
}

// NewFromConfig builds the configured store. The returned closer releases
// database or network resources and is never nil.
func NewFromConfig(config *Config) (Store, io.Closer, error) {
	if config == nil {
		config = &Config{Type: StoreTypeMemory}
	}

	switch config.Type {
	case StoreTypeMemory, "":
		return NewMemoryStore(), nopCloser{}, nil

	case StoreTypeFile:
		if config.FilePath == "" {
			return nil, nil, ErrFilePathRequired
		}

		return NewFileStore(config.FilePath), nopCloser{}, nil

	case StoreTypeBadger:
		if config.Badger == nil {
			return nil, nil, ErrBadgerConfigMissing
		}

		store, err := OpenBadgerStore(*config.Badger)
		if err != nil {
			return nil, nil, err
		}

		return store, store, nil

	case StoreTypeNATS:
		if config.NATS == nil {
			return nil, nil, ErrNATSConfigRequired
		}

		store, err := OpenNATSStore(*config.NATS)
		if err != nil {
			return nil, nil, err
		}

		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedStore, config.Type)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
