package limit

import (
	"fmt"
	"math/big"

	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Constants for EIP-712
const (
	EIP712DomainName    = "1inch Aggregation Router"
	EIP712DomainVersion = "6"

	orderPrimaryType = "Order"
)

var (
	// EIP712DomainTypeHash is keccak256("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)")
	EIP712DomainTypeHash = crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))

	// OrderTypeHash is keccak256 of the limit order v4 type string.
	OrderTypeHash = crypto.Keccak256Hash([]byte("Order(uint256 salt,address maker,address receiver,address makerAsset,address takerAsset,uint256 makingAmount,uint256 takingAmount,uint256 makerTraits)"))

	domainNameHash    = crypto.Keccak256Hash([]byte(EIP712DomainName))
	domainVersionHash = crypto.Keccak256Hash([]byte(EIP712DomainVersion))
)

// DomainSeparator is hashStruct(EIP712Domain) for the order protocol on chainID.
func DomainSeparator(chainID chain.ID) common.Hash {
	// All fields are 32 bytes
	data := make([]byte, 32*5)
	copy(data[0:32], EIP712DomainTypeHash.Bytes())
	copy(data[32:64], domainNameHash.Bytes())
	copy(data[64:96], domainVersionHash.Bytes())
	copy(data[96:128], math.U256Bytes(new(big.Int).SetUint64(uint64(chainID))))
	copy(data[128+12:160], chainID.LimitOrderContract().Bytes())
	return crypto.Keccak256Hash(data)
}

// StructHash is hashStruct(Order).
func (o *Order) StructHash() common.Hash {
	// typeHash + 8 fields
	data := make([]byte, 32*9)
	copy(data[0:32], OrderTypeHash.Bytes())

	salt := o.Salt.Bytes32()
	copy(data[32:64], salt[:])
	copy(data[64+12:96], o.Maker.Bytes())
	copy(data[96+12:128], o.Receiver.Bytes())
	copy(data[128+12:160], o.MakerAsset.Bytes())
	copy(data[160+12:192], o.TakerAsset.Bytes())

	making := o.MakingAmount.Bytes32()
	copy(data[192:224], making[:])
	taking := o.TakingAmount.Bytes32()
	copy(data[224:256], taking[:])
	traits := o.MakerTraits.value.Bytes32()
	copy(data[256:288], traits[:])

	return crypto.Keccak256Hash(data)
}

// Hash is the EIP-712 signing hash keccak256("\x19\x01" || domainSeparator || hashStruct(order)).
func (o *Order) Hash(chainID chain.ID) common.Hash {
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, DomainSeparator(chainID).Bytes(), o.StructHash().Bytes())
}

// TypedData is the eth_signTypedData_v4 payload a wallet signs for this order.
func (o *Order) TypedData(chainID chain.ID) apitypes.TypedData {
	domain := apitypes.TypedDataDomain{
		Name:              EIP712DomainName,
		Version:           EIP712DomainVersion,
		ChainId:           (*math.HexOrDecimal256)(new(big.Int).SetUint64(uint64(chainID))),
		VerifyingContract: chainID.LimitOrderContract().Hex(),
	}
	typesDef := apitypes.Types{
		"EIP712Domain": {
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "address"},
		},
		orderPrimaryType: {
			{Name: "salt", Type: "uint256"},
			{Name: "maker", Type: "address"},
			{Name: "receiver", Type: "address"},
			{Name: "makerAsset", Type: "address"},
			{Name: "takerAsset", Type: "address"},
			{Name: "makingAmount", Type: "uint256"},
			{Name: "takingAmount", Type: "uint256"},
			{Name: "makerTraits", Type: "uint256"},
		},
	}
	message := apitypes.TypedDataMessage{
		"salt":         (*math.HexOrDecimal256)(o.Salt.ToBig()),
		"maker":        o.Maker.Hex(),
		"receiver":     o.Receiver.Hex(),
		"makerAsset":   o.MakerAsset.Hex(),
		"takerAsset":   o.TakerAsset.Hex(),
		"makingAmount": (*math.HexOrDecimal256)(o.MakingAmount.ToBig()),
		"takingAmount": (*math.HexOrDecimal256)(o.TakingAmount.ToBig()),
		"makerTraits":  (*math.HexOrDecimal256)(o.MakerTraits.value.ToBig()),
	}

	return apitypes.TypedData{
		Types:       typesDef,
		PrimaryType: orderPrimaryType,
		Domain:      domain,
		Message:     message,
	}
}

// TypedDataHash hashes TypedData through go-ethereum's generic encoder.
func (o *Order) TypedDataHash(chainID chain.ID) (common.Hash, error) {
	hash, _, err := apitypes.TypedDataAndHash(o.TypedData(chainID))
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return common.BytesToHash(hash), nil
}
