package chain

import (
	"testing"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetwork(t *testing.T) {
	cases := map[string]ID{
		"ethereum": Ethereum,
		"ETH":      Ethereum,
		"arbitrum": Arbitrum,
		"arb":      Arbitrum,
		"optimism": Optimism,
		"op":       Optimism,
		"8453":     Base,
		" polygon": Polygon,
	}
	for in, want := range cases {
		got, err := ParseNetwork(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseNetwork("solana")
	assert.Error(t, err)
	_, err = ParseNetwork("31337")
	assert.Error(t, err)
}

func TestArbitrumIsNotOptimism(t *testing.T) {
	arb, err := ParseNetwork("arbitrum")
	require.NoError(t, err)
	op, err := ParseNetwork("optimism")
	require.NoError(t, err)
	assert.NotEqual(t, arb, op)
	assert.Equal(t, ID(42161), arb)
}

func TestContracts(t *testing.T) {
	assert.Equal(t, common.HexToAddress("0x111111125421ca6dc452d289314280a0f8842a65"), Ethereum.LimitOrderContract())
	assert.Equal(t, Ethereum.LimitOrderContract(), Arbitrum.LimitOrderContract())
	assert.NotEqual(t, Ethereum.LimitOrderContract(), ZkSync.LimitOrderContract())
	assert.Equal(t, common.HexToAddress("0xda0000d4000015a526378bb6fafc650cea5966f8"), Arbitrum.TrueERC20())
}

func TestTronAddress(t *testing.T) {
	raw := common.HexToAddress("0x5bc44f18b91f55540d11d612c08e4faad619eb55")
	tron := TronAddress{Addr: raw}
	assert.Equal(t, "TJLRfJUAHPRxoizJeyYFFZ7nEHit4L9FfE", tron.String())

	parsed, err := ParseAddress("TJLRfJUAHPRxoizJeyYFFZ7nEHit4L9FfE")
	require.NoError(t, err)
	assert.Equal(t, tron, parsed)
	assert.Equal(t, raw, parsed.Raw())
}

func TestParseEVMAddress(t *testing.T) {
	parsed, err := ParseAddress("0x5bc44f18b91f55540d11d612c08e4faad619eb55")
	require.NoError(t, err)
	assert.IsType(t, EVMAddress{}, parsed)
	assert.Equal(t, common.HexToAddress("0x5bc44f18b91f55540d11d612c08e4faad619eb55").Hex(), parsed.String())
}

func TestChainAddressRoundTrip(t *testing.T) {
	addr := ChainAddress{Addr: common.HexToAddress("0x5bc44f18b91f55540d11d612c08e4faad619eb55"), Chain: Arbitrum}
	assert.Equal(t, "arbitrum:0x5bc44f18b91f55540d11d612c08e4faad619eb55", addr.String())

	parsed, err := ParseAddress(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)
	assert.Equal(t, EVMAddress{Addr: addr.Addr}, addr.WithoutChain())

	_, err = ParseAddress("mars:0x5bc44f18b91f55540d11d612c08e4faad619eb55")
	assert.Error(t, err)
	_, err = ParseAddress("not-an-address")
	assert.Error(t, err)
}

func TestAccountOn(t *testing.T) {
	raw := common.HexToAddress("0x5bc44f18b91f55540d11d612c08e4faad619eb55")

	for _, s := range []string{
		"0x5bc44f18b91f55540d11d612c08e4faad619eb55",
		"arbitrum:0x5bc44f18b91f55540d11d612c08e4faad619eb55",
		"arb:0x5bc44f18b91f55540d11d612c08e4faad619eb55",
	} {
		got, err := AccountOn(s, Arbitrum)
		require.NoError(t, err, s)
		assert.Equal(t, raw, got, s)
	}

	zero, err := AccountOn("", Arbitrum)
	require.NoError(t, err)
	assert.Equal(t, common.Address{}, zero)

	for _, s := range []string{
		"base:0x5bc44f18b91f55540d11d612c08e4faad619eb55",
		"TJLRfJUAHPRxoizJeyYFFZ7nEHit4L9FfE",
		"not-an-address",
	} {
		_, err := AccountOn(s, Arbitrum)
		assert.True(t, apperrors.Is(err, apperrors.ErrValidation), s)
	}
}
