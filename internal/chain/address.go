package chain

import (
	"fmt"
	"strings"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/common"
)

const tronVersion byte = 0x41

// Address is an account on one of the supported addressing schemes. The set of
// implementations is closed: EVMAddress, ChainAddress and TronAddress.
type Address interface {
	// Raw is the underlying 20-byte account.
	Raw() common.Address
	String() string
	isAddress()
}

// EVMAddress is a plain 20-byte address with no network tag.
type EVMAddress struct {
	Addr common.Address
}

func (a EVMAddress) Raw() common.Address { return a.Addr }
func (a EVMAddress) String() string      { return a.Addr.Hex() }
func (EVMAddress) isAddress()            {}

// ChainAddress is an EVM address tagged with its network, shown as "network:0x...".
type ChainAddress struct {
	Addr  common.Address
	Chain ID
}

func (a ChainAddress) Raw() common.Address { return a.Addr }

func (a ChainAddress) String() string {
	return a.Chain.String() + ":" + strings.ToLower(a.Addr.Hex())
}

func (ChainAddress) isAddress() {}

// WithoutChain drops the network tag.
func (a ChainAddress) WithoutChain() EVMAddress {
	return EVMAddress{Addr: a.Addr}
}

// TronAddress is shown as base58check over 0x41 || address.
type TronAddress struct {
	Addr common.Address
}

func (a TronAddress) Raw() common.Address { return a.Addr }
func (a TronAddress) String() string      { return base58.CheckEncode(a.Addr.Bytes(), tronVersion) }
func (TronAddress) isAddress()            {}

// ParseAddress recognises 0x hex, "network:0x..." and Tron base58check forms.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if common.IsHexAddress(s) {
		return EVMAddress{Addr: common.HexToAddress(s)}, nil
	}

	if network, hexAddr, ok := strings.Cut(s, ":"); ok {
		id, err := ParseNetwork(network)
		if err == nil && common.IsHexAddress(hexAddr) {
			return ChainAddress{Addr: common.HexToAddress(hexAddr), Chain: id}, nil
		}
		return nil, apperrors.NewValidation("address", fmt.Sprintf("invalid network address %q", s))
	}

	payload, version, err := base58.CheckDecode(s)
	if err == nil && version == tronVersion && len(payload) == common.AddressLength {
		return TronAddress{Addr: common.BytesToAddress(payload)}, nil
	}
	return nil, apperrors.NewValidation("address", fmt.Sprintf("unrecognised address %q", s))
}

// AccountOn resolves s to the account it names on network. An empty s is the
// zero address. A network-tagged address must be tagged with network.
func AccountOn(s string, network ID) (common.Address, error) {
	if strings.TrimSpace(s) == "" {
		return common.Address{}, nil
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return common.Address{}, err
	}
	switch a := addr.(type) {
	case ChainAddress:
		if a.Chain != network {
			return common.Address{}, apperrors.NewValidation("address", fmt.Sprintf("%s is tagged for %s, not %s", a, a.Chain, network))
		}
	case TronAddress:
		return common.Address{}, apperrors.NewValidation("address", fmt.Sprintf("tron address %s cannot receive on %s", a, network))
	}
	return addr.Raw(), nil
}
