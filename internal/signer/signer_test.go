package signer

import (
	"testing"

	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/limit"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/random"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t testing.TB) *Signer {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := NewSigner(hexutil.Encode(crypto.FromECDSA(key)))
	require.NoError(t, err)
	return s
}

func testOrder(t testing.TB, maker common.Address) *limit.Order {
	order, err := limit.NewOrder(limit.OrderInfo{
		MakerAsset:   common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"),
		TakerAsset:   chain.Ethereum.TrueERC20(),
		MakingAmount: uint256.NewInt(1_000_000),
		TakingAmount: uint256.NewInt(2_000_000),
		Maker:        maker,
	}, limit.DefaultMakerTraits(), limit.Extension{}, random.Seeded(1))
	require.NoError(t, err)
	return order
}

func TestSignerSignOrder(t *testing.T) {
	s := newTestSigner(t)
	order := testOrder(t, s.Address())

	sig, err := s.SignOrder(order, chain.Ethereum)
	require.NoError(t, err)
	assert.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	assert.NoError(t, VerifyHashSignature(order.Hash(chain.Ethereum), sig, s.Address()))

	err = VerifyHashSignature(order.Hash(chain.Arbitrum), sig, s.Address())
	assert.True(t, apperrors.Is(err, apperrors.ErrAuthFailed), "signature is bound to the chain")
}

func TestVerifyHashSignatureAcceptsBothV(t *testing.T) {
	s := newTestSigner(t)
	hash := crypto.Keccak256Hash([]byte("order"))
	sig, err := s.SignHash(hash)
	require.NoError(t, err)

	raw := append([]byte(nil), sig...)
	raw[64] -= 27
	assert.NoError(t, VerifyHashSignature(hash, raw, s.Address()))
	assert.NoError(t, VerifyHashSignature(hash, sig, s.Address()))
	assert.Equal(t, raw[64]+27, sig[64], "input is not mutated")
}

func TestVerifyHashSignatureRejects(t *testing.T) {
	s := newTestSigner(t)
	hash := crypto.Keccak256Hash([]byte("order"))
	sig, err := s.SignHash(hash)
	require.NoError(t, err)

	err = VerifyHashSignature(hash, sig, common.HexToAddress("0x0000000000000000000000000000000000000001"))
	assert.True(t, apperrors.Is(err, apperrors.ErrAuthFailed))

	err = VerifyHashSignature(hash, sig[:64], s.Address())
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestNewSignerRejectsBadKey(t *testing.T) {
	_, err := NewSigner("")
	assert.Error(t, err)
	_, err = NewSigner("0xzz")
	assert.Error(t, err)
}

func BenchmarkSignOrder(b *testing.B) {
	s := newTestSigner(b)
	order := testOrder(b, s.Address())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.SignOrder(order, chain.Ethereum)
	}
}
