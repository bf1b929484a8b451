// Package chain holds network identifiers and per-network protocol contract addresses.
package chain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
)

type ID uint64

const (
	Ethereum  ID = 1
	Optimism  ID = 10
	BNB       ID = 56
	Gnosis    ID = 100
	Unichain  ID = 130
	Polygon   ID = 137
	Sonic     ID = 146
	ZkSync    ID = 324
	Base      ID = 8453
	Arbitrum  ID = 42161
	Avalanche ID = 43114
	Linea     ID = 59144
)

var names = map[ID]string{
	Ethereum:  "ethereum",
	Optimism:  "optimism",
	BNB:       "bnb",
	Gnosis:    "gnosis",
	Unichain:  "unichain",
	Polygon:   "polygon",
	Sonic:     "sonic",
	ZkSync:    "zksync",
	Base:      "base",
	Arbitrum:  "arbitrum",
	Avalanche: "avalanche",
	Linea:     "linea",
}

var aliases = map[string]ID{
	"eth":        Ethereum,
	"mainnet":    Ethereum,
	"op":         Optimism,
	"bsc":        BNB,
	"xdai":       Gnosis,
	"matic":      Polygon,
	"arb":        Arbitrum,
	"avax":       Avalanche,
	"zksync-era": ZkSync,
}

var (
	// NativeCurrency is the placeholder token address for the chain's native coin.
	NativeCurrency = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

	limitOrderProtocol       = common.HexToAddress("0x111111125421ca6dc452d289314280a0f8842a65")
	limitOrderProtocolZkSync = common.HexToAddress("0x6fd4383cb451173d5f9304f041c7bcbf27d561ff")
	trueERC20                = common.HexToAddress("0xda0000d4000015a526378bb6fafc650cea5966f8")
)

// Supported reports whether the protocol is deployed on id.
func (id ID) Supported() bool {
	_, ok := names[id]
	return ok
}

func (id ID) String() string {
	if name, ok := names[id]; ok {
		return name
	}
	return strconv.FormatUint(uint64(id), 10)
}

// LimitOrderContract is the order protocol contract, which is also the EIP-712 verifying contract.
func (id ID) LimitOrderContract() common.Address {
	if id == ZkSync {
		return limitOrderProtocolZkSync
	}
	return limitOrderProtocol
}

// TrueERC20 is the placeholder taker asset of cross-chain orders on the source chain.
func (id ID) TrueERC20() common.Address {
	return trueERC20
}

// ParseNetwork accepts a network name, a known alias, or a decimal chain id.
func ParseNetwork(s string) (ID, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for id, name := range names {
		if name == key {
			return id, nil
		}
	}
	if id, ok := aliases[key]; ok {
		return id, nil
	}
	if n, err := strconv.ParseUint(key, 10, 64); err == nil && ID(n).Supported() {
		return ID(n), nil
	}
	return 0, apperrors.NewValidation("network", fmt.Sprintf("unsupported network %q", s))
}
