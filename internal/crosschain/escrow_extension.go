package crosschain

import (
	"fmt"
	"math/big"

	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/fusion"
	"github.com/GoPolymarket/fusiongate/internal/limit"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// escrowExtraDataLen is five ABI words.
const escrowExtraDataLen = 5 * 32

var escrowExtraArgs = func() abi.Arguments {
	bytes32Type, _ := abi.NewType("bytes32", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)
	addressType, _ := abi.NewType("address", "", nil)
	return abi.Arguments{
		{Type: bytes32Type}, // hashlock
		{Type: uint256Type}, // dst chain id
		{Type: addressType}, // dst token
		{Type: uint256Type}, // src deposit << 128 | dst deposit
		{Type: uint256Type}, // timelocks
	}
}()

// EscrowParams describe the escrows a fill deploys on both chains.
type EscrowParams struct {
	HashLock         HashLock
	DstChainID       chain.ID
	DstToken         common.Address
	SrcSafetyDeposit *uint256.Int
	DstSafetyDeposit *uint256.Int
	TimeLocks        TimeLocks
}

// EscrowExtension is an auction extension whose post interaction also carries
// the escrow parameters for the escrow factory.
type EscrowExtension struct {
	fusion.Extension

	HashLock         HashLock
	DstChainID       chain.ID
	DstToken         common.Address
	SrcSafetyDeposit uint256.Int
	DstSafetyDeposit uint256.Int
	TimeLocks        TimeLocks
}

func NewEscrowExtension(base *fusion.Extension, p EscrowParams) (*EscrowExtension, error) {
	deposits := []struct {
		field string
		v     *uint256.Int
	}{
		{"src_safety_deposit", p.SrcSafetyDeposit},
		{"dst_safety_deposit", p.DstSafetyDeposit},
	}
	for _, d := range deposits {
		if d.v == nil {
			return nil, apperrors.NewValidation(d.field, "required")
		}
		if d.v.BitLen() > 128 {
			return nil, apperrors.NewValidation(d.field, fmt.Sprintf("%s does not fit in 128 bits", d.v.Dec()))
		}
	}
	dstToken := p.DstToken
	if dstToken == (common.Address{}) {
		dstToken = chain.NativeCurrency
	}
	return &EscrowExtension{
		Extension:        *base,
		HashLock:         p.HashLock,
		DstChainID:       p.DstChainID,
		DstToken:         dstToken,
		SrcSafetyDeposit: *p.SrcSafetyDeposit,
		DstSafetyDeposit: *p.DstSafetyDeposit,
		TimeLocks:        p.TimeLocks,
	}, nil
}

// ExtraData is the ABI tuple
// (bytes32 hashlock, uint256 dstChainId, address dstToken, uint256 deposits, uint256 timelocks).
// Native destination tokens are encoded as the zero address.
func (e *EscrowExtension) ExtraData() ([]byte, error) {
	dstToken := e.DstToken
	if dstToken == chain.NativeCurrency {
		dstToken = common.Address{}
	}
	deposits := new(uint256.Int).Lsh(&e.SrcSafetyDeposit, 128)
	deposits.Or(deposits, &e.DstSafetyDeposit)

	out, err := escrowExtraArgs.Pack(
		e.HashLock.Value(),
		new(big.Int).SetUint64(uint64(e.DstChainID)),
		dstToken,
		deposits.ToBig(),
		e.TimeLocks.Build().ToBig(),
	)
	if err != nil {
		return nil, fmt.Errorf("pack escrow extra data: %w", err)
	}
	return out, nil
}

// Build appends the escrow parameters to the auction post interaction.
func (e *EscrowExtension) Build() (limit.Extension, error) {
	ext, err := e.Extension.Build()
	if err != nil {
		return limit.Extension{}, err
	}
	extra, err := e.ExtraData()
	if err != nil {
		return limit.Extension{}, err
	}
	return ext.AppendPostInteraction(extra), nil
}

// DecodeEscrowExtension recovers an EscrowExtension from what Build produced.
func DecodeEscrowExtension(ext limit.Extension) (*EscrowExtension, error) {
	post := ext.PostInteraction
	if len(post) < escrowExtraDataLen {
		return nil, apperrors.NewDecode("post_interaction", fmt.Sprintf("%d bytes cannot hold escrow data", len(post)), nil)
	}
	cut := len(post) - escrowExtraDataLen

	base, err := fusion.DecodeExtension(ext.WithPostInteraction(post[:cut]))
	if err != nil {
		return nil, err
	}

	values, err := escrowExtraArgs.Unpack(post[cut:])
	if err != nil {
		return nil, apperrors.NewDecode("escrow_extra_data", "malformed ABI tuple", err)
	}
	hashLock, _ := values[0].([32]byte)
	dstChain, _ := values[1].(*big.Int)
	dstToken, _ := values[2].(common.Address)
	depositsBig, _ := values[3].(*big.Int)
	timeLocksBig, _ := values[4].(*big.Int)
	if dstChain == nil || depositsBig == nil || timeLocksBig == nil || !dstChain.IsUint64() {
		return nil, apperrors.NewDecode("escrow_extra_data", "unexpected ABI values", nil)
	}

	deposits, _ := uint256.FromBig(depositsBig)
	timeLocks, _ := uint256.FromBig(timeLocksBig)
	mask128 := new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

	if dstToken == (common.Address{}) {
		dstToken = chain.NativeCurrency
	}
	return &EscrowExtension{
		Extension:        *base,
		HashLock:         NewHashLock(common.Hash(hashLock)),
		DstChainID:       chain.ID(dstChain.Uint64()),
		DstToken:         dstToken,
		SrcSafetyDeposit: *new(uint256.Int).Rsh(deposits, 128),
		DstSafetyDeposit: *new(uint256.Int).And(deposits, mask128),
		TimeLocks:        TimeLocksFromUint256(timeLocks),
	}, nil
}

// Params returns the escrow parameters of e.
func (e *EscrowExtension) Params() EscrowParams {
	return EscrowParams{
		HashLock:         e.HashLock,
		DstChainID:       e.DstChainID,
		DstToken:         e.DstToken,
		SrcSafetyDeposit: e.SrcSafetyDeposit.Clone(),
		DstSafetyDeposit: e.DstSafetyDeposit.Clone(),
		TimeLocks:        e.TimeLocks,
	}
}
