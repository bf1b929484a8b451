package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

// RedisSecretStore keeps order secrets under secrets:<order hash> until they expire.
// The TTL should outlive the public cancellation stage of the escrows.
type RedisSecretStore struct {
	client *RedisClient
	ttl    time.Duration
	prefix string
}

func NewRedisSecretStore(client *RedisClient, ttl time.Duration) *RedisSecretStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisSecretStore{client: client, ttl: ttl, prefix: "secrets:"}
}

func (s *RedisSecretStore) SaveSecrets(ctx context.Context, orderHash common.Hash, secrets []common.Hash) error {
	payload, err := json.Marshal(secrets)
	if err != nil {
		return err
	}
	if err := s.client.Client.Set(ctx, s.key(orderHash), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save secrets: %w", err)
	}
	return nil
}

func (s *RedisSecretStore) LoadSecrets(ctx context.Context, orderHash common.Hash) ([]common.Hash, error) {
	raw, err := s.client.Client.Get(ctx, s.key(orderHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewNotFound("no secrets for order " + orderHash.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}
	return decodeSecrets(raw)
}

func (s *RedisSecretStore) key(orderHash common.Hash) string {
	return s.prefix + orderHash.Hex()
}

func decodeSecrets(raw []byte) ([]common.Hash, error) {
	var secrets []common.Hash
	if err := json.Unmarshal(raw, &secrets); err != nil {
		return nil, apperrors.NewDecode("secrets", "corrupt stored secrets", err)
	}
	if len(secrets) == 0 {
		return nil, apperrors.NewDecode("secrets", "empty stored secrets", nil)
	}
	return secrets, nil
}
