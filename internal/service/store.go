package service

import (
	"context"
	"slices"
	"sync"

	"github.com/GoPolymarket/fusiongate/internal/model"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
)

// SecretStore keeps the maker's secrets until the escrows they unlock are deployed.
type SecretStore interface {
	SaveSecrets(ctx context.Context, orderHash common.Hash, secrets []common.Hash) error
	// LoadSecrets returns a not found error for unknown orders.
	LoadSecrets(ctx context.Context, orderHash common.Hash) ([]common.Hash, error)
}

// OrderRepo persists prepared orders.
type OrderRepo interface {
	SaveOrder(ctx context.Context, rec *model.OrderRecord) error
	// GetOrder returns a not found error for unknown orders.
	GetOrder(ctx context.Context, orderHash common.Hash) (*model.OrderRecord, error)
	MarkSubmitted(ctx context.Context, orderHash common.Hash, signature string) error
}

// MemoryStore implements SecretStore and OrderRepo in process.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[common.Hash][]common.Hash
	orders  map[common.Hash]model.OrderRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		secrets: make(map[common.Hash][]common.Hash),
		orders:  make(map[common.Hash]model.OrderRecord),
	}
}

func (s *MemoryStore) SaveSecrets(_ context.Context, orderHash common.Hash, secrets []common.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[orderHash] = slices.Clone(secrets)
	return nil
}

func (s *MemoryStore) LoadSecrets(_ context.Context, orderHash common.Hash) ([]common.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	secrets, ok := s.secrets[orderHash]
	if !ok {
		return nil, apperrors.NewNotFound("no secrets for order " + orderHash.Hex())
	}
	return slices.Clone(secrets), nil
}

func (s *MemoryStore) SaveOrder(_ context.Context, rec *model.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	cp.SecretHashes = slices.Clone(rec.SecretHashes)
	s.orders[common.HexToHash(rec.Hash)] = cp
	return nil
}

func (s *MemoryStore) GetOrder(_ context.Context, orderHash common.Hash) (*model.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.orders[orderHash]
	if !ok {
		return nil, apperrors.NewNotFound("order " + orderHash.Hex() + " not found")
	}
	rec.SecretHashes = slices.Clone(rec.SecretHashes)
	return &rec, nil
}

func (s *MemoryStore) MarkSubmitted(_ context.Context, orderHash common.Hash, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[orderHash]
	if !ok {
		return apperrors.NewNotFound("order " + orderHash.Hex() + " not found")
	}
	rec.Signature = signature
	rec.Status = model.OrderStatusPending
	s.orders[orderHash] = rec
	return nil
}
