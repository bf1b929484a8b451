package crosschain

import (
	"fmt"
	"io"
	"slices"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/random"
	"github.com/ethereum/go-ethereum/common"
)

// SecretSet holds the maker's secrets for one order and the lock committing to them.
type SecretSet struct {
	secrets  []common.Hash
	hashLock HashLock
}

// NewSecretSet draws n secrets from rnd. One secret gives a single fill lock,
// more than two a Merkle lock; two is not a valid count.
func NewSecretSet(n int, rnd io.Reader) (*SecretSet, error) {
	if n < 1 {
		return nil, apperrors.NewValidation("secrets_count", fmt.Sprintf("must be positive, got %d", n))
	}
	if n == 2 {
		return nil, apperrors.NewUsage("2 secrets cannot be committed; use 1 or more than 2")
	}
	secrets := make([]common.Hash, n)
	for i := range secrets {
		s, err := random.Bytes32(rnd)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrInternal, "draw secret", err)
		}
		secrets[i] = s
	}
	return SecretSetFrom(secrets)
}

// SecretSetFrom rebuilds a set from stored secrets.
func SecretSetFrom(secrets []common.Hash) (*SecretSet, error) {
	set := &SecretSet{secrets: slices.Clone(secrets)}
	switch len(secrets) {
	case 0:
		return nil, apperrors.NewValidation("secrets", "empty")
	case 1:
		set.hashLock = ForSingleFill(secrets[0])
	default:
		lock, err := ForMultipleFills(secrets)
		if err != nil {
			return nil, err
		}
		set.hashLock = lock
	}
	return set, nil
}

func (s *SecretSet) HashLock() HashLock { return s.hashLock }

func (s *SecretSet) Len() int { return len(s.secrets) }

func (s *SecretSet) MultipleFills() bool { return len(s.secrets) > 1 }

func (s *SecretSet) Secrets() []common.Hash { return slices.Clone(s.secrets) }

// SecretHashes are keccak(secret) in index order, as the relayer expects them.
func (s *SecretSet) SecretHashes() []common.Hash {
	out := make([]common.Hash, len(s.secrets))
	for i, secret := range s.secrets {
		out[i] = HashSecret(secret)
	}
	return out
}

// Secret returns the secret a fill with index idx unlocks.
func (s *SecretSet) Secret(idx int) (common.Hash, error) {
	if idx < 0 || idx >= len(s.secrets) {
		return common.Hash{}, apperrors.NewValidation("idx", fmt.Sprintf("secret %d out of range [0,%d)", idx, len(s.secrets)))
	}
	return s.secrets[idx], nil
}

// Proof is the Merkle path of secret idx. Single fill sets have none.
func (s *SecretSet) Proof(idx int) ([]common.Hash, error) {
	if !s.MultipleFills() {
		return nil, nil
	}
	return MerkleProof(MerkleLeaves(s.secrets), idx)
}
