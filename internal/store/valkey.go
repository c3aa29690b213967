package store

import (
	"context"
	"fmt"
	"net"

	"github.com/valkey-io/valkey-go"
)

// ValkeyStore keeps keys in Valkey without expiry.
type ValkeyStore struct {
	client valkey.Client
}

// NewValkeyStore connects to addr. Unlike Redis the client dials eagerly,
// so an unreachable server fails here.
func NewValkeyStore(addr string) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		Dialer:      net.Dialer{Timeout: dialTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &ValkeyStore{client: client}, nil
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key, value string) error {
	cmd := s.client.Do(ctx, s.client.B().Set().Key(key).Value(value).Build())
	if err := cmd.Error(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}
