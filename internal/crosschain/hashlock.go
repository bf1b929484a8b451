package crosschain

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// HashLock commits to the secrets that unlock the escrows. For multiple fills
// the top two bytes hold the number of secrets.
type HashLock struct {
	value common.Hash
}

func NewHashLock(value common.Hash) HashLock {
	return HashLock{value: value}
}

func HashSecret(secret common.Hash) common.Hash {
	return crypto.Keccak256Hash(secret.Bytes())
}

func ForSingleFill(secret common.Hash) HashLock {
	return HashLock{value: HashSecret(secret)}
}

// ForMultipleFills commits to more than two secrets through a Merkle root.
func ForMultipleFills(secrets []common.Hash) (HashLock, error) {
	if len(secrets) <= 2 {
		return HashLock{}, apperrors.NewUsage(fmt.Sprintf("multiple fills need more than 2 secrets, got %d; use ForSingleFill", len(secrets)))
	}
	if len(secrets) > 0xffff {
		return HashLock{}, apperrors.NewValidation("secrets", fmt.Sprintf("at most %d secrets", 0xffff))
	}
	root := MerkleRoot(MerkleLeaves(secrets))
	binary.BigEndian.PutUint16(root[:2], uint16(len(secrets)))
	return HashLock{value: root}, nil
}

func (h HashLock) Value() common.Hash { return h.value }

func (h HashLock) String() string { return h.value.Hex() }

// PartsCount reads the secret count of a multiple fill lock.
func (h HashLock) PartsCount() uint16 {
	return binary.BigEndian.Uint16(h.value[:2])
}

// Matches reports whether root is the Merkle root behind this lock.
func (h HashLock) Matches(root common.Hash) bool {
	return bytes.Equal(h.value[2:], root[2:])
}

func (h HashLock) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.value)
}

func (h *HashLock) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &h.value)
}

// MerkleLeaves hashes each secret with its index: keccak(u32 idx || secret).
func MerkleLeaves(secrets []common.Hash) []common.Hash {
	leaves := make([]common.Hash, len(secrets))
	buf := make([]byte, 4+common.HashLength)
	for i, s := range secrets {
		binary.BigEndian.PutUint32(buf[:4], uint32(i))
		copy(buf[4:], s.Bytes())
		leaves[i] = crypto.Keccak256Hash(buf)
	}
	return leaves
}

// merkleTree lays the sorted leaves out as an array-backed complete binary tree:
// root at 0, children of i at 2i+1 and 2i+2, leaves at the end in reverse order.
func merkleTree(leaves []common.Hash) []common.Hash {
	sorted := slices.Clone(leaves)
	slices.SortFunc(sorted, func(a, b common.Hash) int { return bytes.Compare(a[:], b[:]) })

	tree := make([]common.Hash, 2*len(sorted)-1)
	for i, leaf := range sorted {
		tree[len(tree)-1-i] = leaf
	}
	for i := len(tree) - 1 - len(sorted); i >= 0; i-- {
		tree[i] = hashPair(tree[2*i+1], tree[2*i+2])
	}
	return tree
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

// MerkleRoot is the root over leaves, without the count.
func MerkleRoot(leaves []common.Hash) common.Hash {
	if len(leaves) == 0 {
		return common.Hash{}
	}
	return merkleTree(leaves)[0]
}

// MerkleProof returns the sibling path from leaves[idx] up to the root.
func MerkleProof(leaves []common.Hash, idx int) ([]common.Hash, error) {
	if idx < 0 || idx >= len(leaves) {
		return nil, apperrors.NewValidation("idx", fmt.Sprintf("leaf %d out of range [0,%d)", idx, len(leaves)))
	}
	tree := merkleTree(leaves)
	pos := slices.Index(tree[len(tree)-len(leaves):], leaves[idx])
	i := len(tree) - len(leaves) + pos

	var proof []common.Hash
	for i > 0 {
		sibling := i - 1
		if i%2 == 1 {
			sibling = i + 1
		}
		proof = append(proof, tree[sibling])
		i = (i - 1) / 2
	}
	return proof, nil
}

func VerifyMerkleProof(leaf common.Hash, proof []common.Hash, root common.Hash) bool {
	h := leaf
	for _, p := range proof {
		h = hashPair(h, p)
	}
	return h == root
}
