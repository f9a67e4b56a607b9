package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const DefaultBucket = "blogyard-timeline"

// NATSStore keeps entries in a JetStream key-value bucket, so every instance
// of the application shares one timeline. The bucket TTL expires entries.
type NATSStore struct {
	conn *nats.Conn
	kv   jetstream.KeyValue
}

func NewNATSStore(ctx context.Context, url, bucket string, ttl time.Duration) (*NATSStore, error) {
	conn, err := nats.Connect(url, nats.Name("blogyard"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "Rendered home timeline",
		TTL:         ttl,
		History:     1,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create kv bucket %s: %w", bucket, err)
	}

	return &NATSStore{conn: conn, kv: kv}, nil
}

func (n *NATSStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := n.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Value(), true, nil
}

func (n *NATSStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := n.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("failed to store key %s: %w", key, err)
	}
	return nil
}

func (n *NATSStore) Delete(ctx context.Context, key string) error {
	return n.kv.Purge(ctx, key)
}

func (n *NATSStore) Close() {
	n.conn.Close()
}
