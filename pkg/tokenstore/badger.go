package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
)

// ErrBadgerDirRequired is returned when no directory is given and the
// store is not in-memory.
var ErrBadgerDirRequired = errors.New("badger: dir is required")

// BadgerConfig configures a BadgerStore opened by OpenBadgerStore.
type BadgerConfig struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps the database in memory only.
	InMemory bool

	// Key is the entry the token is stored under.
	Key string
}

// BadgerStore keeps the token as one key in a Badger database.
type BadgerStore struct {
	db     *badger.DB
	key    []byte
	ownsDB bool
}

// NewBadgerStore uses an already open database. Close does not close db.
func NewBadgerStore(db *badger.DB, key string) *BadgerStore {
	return &BadgerStore{db: db, key: []byte(key)}
}

// OpenBadgerStore opens a database owned by the returned store.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, ErrBadgerDirRequired
	}

	opts := badger.DefaultOptions(cfg.Dir).WithLogger(nil)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = "token"
	}

	return &BadgerStore{db: db, key: []byte(key), ownsDB: true}, nil
}

// GetToken reads the token entry. A corrupt entry is deleted.
func (s *BadgerStore) GetToken(ctx context.Context) (*Token, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)

		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("badger: get token: %w", err)
	}

	token, err := Decode(value)
	if err != nil {
		return nil, s.RemoveToken(ctx)
	}

	return token, nil
}

// SetToken writes the token entry.
func (s *BadgerStore) SetToken(_ context.Context, token *Token) error {
	data, err := Encode(token)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, data)
	})
	if err != nil {
		return fmt.Errorf("badger: set token: %w", err)
	}

	return nil
}

// RemoveToken deletes the token entry.
func (s *BadgerStore) RemoveToken(_ context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key)
	})
	if err != nil {
		return fmt.Errorf("badger: delete token: %w", err)
	}

	return nil
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}

	return s.db.Close()
}
