package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Static errors for err113 compliance.
var (
	ErrNATSURLRequired    = errors.New("NATS URL required")
	ErrNATSBucketRequired = errors.New("NATS bucket required")
)

// NATSConfig configures a NATSStore opened by OpenNATSStore.
type NATSConfig struct {
	URL    string
	Bucket string
	Key    string

	// TTL bounds how long an entry lives in a newly created bucket.
	TTL time.Duration

	// Options are passed to nats.Connect.
	Options []nats.Option
}

// NATSStore keeps the token as one entry of a JetStream key-value bucket,
// which lets several processes share a credential.
type NATSStore struct {
	kv   nats.KeyValue
	key  string
	conn *nats.Conn
}

// NewNATSStore uses an existing bucket handle.
func NewNATSStore(kv nats.KeyValue, key string) *NATSStore {
	return &NATSStore{kv: kv, key: key}
}

// OpenNATSStore connects and binds the bucket, creating it if needed. The
// returned store owns the connection.
func OpenNATSStore(cfg NATSConfig) (*NATSStore, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	if cfg.Bucket == "" {
		return nil, ErrNATSBucketRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.KeyValue(cfg.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      cfg.Bucket,
			Description: "marketplace SDK tokens",
			TTL:         cfg.TTL,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("failed to bind KV bucket %s: %w", cfg.Bucket, err)
	}

	key := cfg.Key
	if key == "" {
		key = "token"
	}

	return &NATSStore{kv: kv, key: key, conn: conn}, nil
}

// GetToken reads the entry. A corrupt entry is deleted.
func (s *NATSStore) GetToken(ctx context.Context) (*Token, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	entry, err := s.kv.Get(s.key)
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get token from NATS KV: %w", err)
	}

	token, err := Decode(entry.Value())
	if err != nil {
		return nil, s.RemoveToken(ctx)
	}

	return token, nil
}

// SetToken puts the entry.
func (s *NATSStore) SetToken(ctx context.Context, token *Token) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	data, err := Encode(token)
	if err != nil {
		return err
	}

	_, err = s.kv.Put(s.key, data)
	if err != nil {
		return fmt.Errorf("failed to put token to NATS KV: %w", err)
	}

	return nil
}

// RemoveToken deletes the entry.
func (s *NATSStore) RemoveToken(ctx context.Context) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	err = s.kv.Delete(s.key)
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete token from NATS KV: %w", err)
	}

	return nil
}

// Close drains the connection if the store opened it.
func (s *NATSStore) Close() error {
	if s.conn == nil {
		return nil
	}

	return s.conn.Drain()
}
