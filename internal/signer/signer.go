package signer

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/limit"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds a maker key. The gateway never needs one; it backs the local
// tooling and tests that play the maker's wallet.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner parses a hex private key, with or without 0x.
func NewSigner(privateKeyHex string) (*Signer, error) {
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key is required")
	}
	if len(privateKeyHex) > 1 && privateKeyHex[:2] == "0x" {
		privateKeyHex = privateKeyHex[2:]
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %v", err)
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// SignHash signs a 32-byte digest and returns R || S || V with V in {27, 28}.
func (s *Signer) SignHash(hash common.Hash) ([]byte, error) {
	signature, err := crypto.Sign(hash.Bytes(), s.key)
	if err != nil {
		return nil, err
	}
	// crypto.Sign yields V in {0, 1}; wallets and the relayer use 27/28.
	signature[64] += 27
	return signature, nil
}

// SignOrder signs the EIP-712 digest of order on chainID.
func (s *Signer) SignOrder(order *limit.Order, chainID chain.ID) ([]byte, error) {
	return s.SignHash(order.Hash(chainID))
}

func (s *Signer) Address() common.Address {
	return s.address
}
