package model

import (
	"github.com/GoPolymarket/fusiongate/internal/limit"
	"github.com/GoPolymarket/fusiongate/internal/quote"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// PrepareOrderRequest carries the quote the maker accepted and their choices on top of it.
type PrepareOrderRequest struct {
	Request    quote.Request     `json:"request"`
	Quote      quote.Result      `json:"quote"`
	// DstAddress is 0x hex or "network:0x..." tagged with the destination chain.
	DstAddress string            `json:"dstAddress,omitempty"`
	Preset     *quote.PresetType `json:"preset,omitempty"`
	Fee        *OrderFee         `json:"fee,omitempty"`
	Permit     hexutil.Bytes     `json:"permit,omitempty"`
	Nonce      *uint64           `json:"nonce,omitempty"`
}

type OrderFee struct {
	TakingFeeBps      uint64         `json:"takingFeeBps"`
	TakingFeeReceiver common.Address `json:"takingFeeReceiver"`
}

// PrepareOrderResponse is everything the maker's wallet needs to sign.
type PrepareOrderResponse struct {
	OrderHash        common.Hash        `json:"orderHash"`
	QuoteID          string             `json:"quoteId"`
	Preset           quote.PresetType   `json:"preset"`
	TypedData        apitypes.TypedData `json:"typedData"`
	Order            limit.OrderV4      `json:"order"`
	Extension        hexutil.Bytes      `json:"extension"`
	SecretHashes     []common.Hash      `json:"secretHashes"`
	MultipleFills    bool               `json:"multipleFills"`
	AuctionStartTime uint64             `json:"auctionStartTime"`
	Deadline         uint64             `json:"deadline"`
}

type SubmitOrderRequest struct {
	Signature hexutil.Bytes `json:"signature" binding:"required"`
}

type OrderStatus string

const (
	// OrderStatusPrepared is local: the order was built but not yet submitted.
	OrderStatusPrepared  OrderStatus = "prepared"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusExecuted  OrderStatus = "executed"
	OrderStatusExpired   OrderStatus = "expired"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunding OrderStatus = "refunding"
	OrderStatusRefunded  OrderStatus = "refunded"
)

type FillStatus string

const (
	FillStatusPending   FillStatus = "pending"
	FillStatusExecuted  FillStatus = "executed"
	FillStatusRefunding FillStatus = "refunding"
	FillStatusRefunded  FillStatus = "refunded"
)

// ValidationStatus is the relayer's verdict on a submitted order.
type ValidationStatus string

const (
	ValidationValid                              ValidationStatus = "valid"
	ValidationOrderPredicateReturnedFalse        ValidationStatus = "order-predicate-returned-false"
	ValidationNotEnoughBalance                   ValidationStatus = "not-enough-balance"
	ValidationNotEnoughAllowance                 ValidationStatus = "not-enough-allowance"
	ValidationInvalidPermitSignature             ValidationStatus = "invalid-permit-signature"
	ValidationInvalidPermitSpender               ValidationStatus = "invalid-permit-spender"
	ValidationInvalidPermitSigner                ValidationStatus = "invalid-permit-signer"
	ValidationInvalidSignature                   ValidationStatus = "invalid-signature"
	ValidationFailedToParsePermitDetails         ValidationStatus = "failed-to-parse-permit-details"
	ValidationUnknownPermitVersion               ValidationStatus = "unknown-permit-version"
	ValidationWrongEpochManagerAndBitInvalidator ValidationStatus = "wrong-epoch-manager-and-bit-invalidator"
	ValidationFailedToDecodeRemainingMakerAmount ValidationStatus = "failed-to-decode-remaining-maker-amount"
	ValidationUnknownFailure                     ValidationStatus = "unknown-failure"
)

type EscrowEventSide string

const (
	EscrowSideSrc EscrowEventSide = "src"
	EscrowSideDst EscrowEventSide = "dst"
)

type EscrowEventAction string

const (
	EscrowActionSrcEscrowCreated EscrowEventAction = "src_escrow_created"
	EscrowActionDstEscrowCreated EscrowEventAction = "dst_escrow_created"
	EscrowActionWithdrawn        EscrowEventAction = "withdrawn"
	EscrowActionFundsRescued     EscrowEventAction = "funds_rescued"
	EscrowActionEscrowCancelled  EscrowEventAction = "escrow_cancelled"
)

type EscrowEventData struct {
	TransactionHash string            `json:"transactionHash"`
	Escrow          string            `json:"escrow"`
	Side            EscrowEventSide   `json:"side"`
	Action          EscrowEventAction `json:"action"`
	BlockTimestamp  uint64            `json:"blockTimestamp"`
}

type Fill struct {
	Status                   FillStatus        `json:"status"`
	TxHash                   string            `json:"txHash"`
	FilledMakerAmount        string            `json:"filledMakerAmount"`
	FilledAuctionTakerAmount string            `json:"filledAuctionTakerAmount"`
	EscrowEvents             []EscrowEventData `json:"escrowEvents"`
}

// ReadyToAcceptSecretFill reports that both escrows of fill Idx are deployed.
type ReadyToAcceptSecretFill struct {
	Idx                   uint64 `json:"idx"`
	SrcEscrowDeployTxHash string `json:"srcEscrowDeployTxHash"`
	DstEscrowDeployTxHash string `json:"dstEscrowDeployTxHash"`
}

type ReadyToAcceptSecretFills struct {
	Fills []ReadyToAcceptSecretFill `json:"fills"`
}

// ChainImmutables are the escrow parameters on one chain, as strings.
type ChainImmutables struct {
	OrderHash     string `json:"orderHash"`
	Hashlock      string `json:"hashlock"`
	Maker         string `json:"maker"`
	Taker         string `json:"taker"`
	Token         string `json:"token"`
	Amount        string `json:"amount"`
	SafetyDeposit string `json:"safetyDeposit"`
	Timelocks     string `json:"timelocks"`
}

// PublicSecret is a revealed secret with the escrows it unlocks. Proof is set
// for orders with multiple fills.
type PublicSecret struct {
	Idx           uint32          `json:"idx"`
	Secret        string          `json:"secret"`
	Proof         []common.Hash   `json:"proof,omitempty"`
	SrcImmutables ChainImmutables `json:"srcImmutables"`
	DstImmutables ChainImmutables `json:"dstImmutables"`
}

type OrderType string

const (
	OrderTypeSingleFill    OrderType = "SingleFill"
	OrderTypeMultipleFills OrderType = "MultipleFills"
)
