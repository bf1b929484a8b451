package crosschain

import (
	"fmt"
	"io"
	"time"

	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/fusion"
	"github.com/GoPolymarket/fusiongate/internal/limit"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/random"
	"github.com/GoPolymarket/fusiongate/internal/quote"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// maxNonce bounds a drawn nonce to the 40-bit traits field.
const maxNonce = 1 << 40

// Env is the clock and entropy an order is prepared with.
type Env struct {
	Now  func() time.Time
	Rand io.Reader
}

func DefaultEnv() Env {
	return Env{Now: time.Now, Rand: random.Default}
}

// Fee names who collects the integrator fee. The rate itself is the fee the
// quote was requested with; a non-zero TakingFeeBps must repeat it.
type Fee struct {
	TakingFeeBps      uint64
	TakingFeeReceiver common.Address
}

// OrderParams are the maker's choices on top of a quote.
type OrderParams struct {
	// DstAddress receives the funds on the destination chain. Zero means the maker.
	DstAddress common.Address
	HashLock   HashLock
	Fee        *Fee
	// Preset overrides the quote's recommended preset.
	Preset                  *quote.PresetType
	Permit                  []byte
	DelayAuctionStartTimeBy uint64
	// Options carry the service defaults. Fill permissions always come from the preset.
	Options fusion.Options
}

// PreparedOrder is an order ready to be signed by the maker.
type PreparedOrder struct {
	SrcChainID chain.ID
	DstChainID chain.ID
	QuoteID    string
	Order      *fusion.Order
	Escrow     *EscrowExtension
	Preset     quote.PresetType
	Hash       common.Hash
}

// PrepareOrder assembles a cross-chain order from a quote. Nothing is returned
// unless every part of the order validates.
func PrepareOrder(req quote.Request, res *quote.Result, params OrderParams, env Env) (*PreparedOrder, error) {
	if res.QuoteID == nil || *res.QuoteID == "" {
		return nil, apperrors.NewPrecondition("quote has no id; request it with enableEstimate=true")
	}
	if req.SrcChain == req.DstChain {
		return nil, apperrors.NewPrecondition("source and destination chains must differ")
	}
	if !req.SrcChain.Supported() {
		return nil, apperrors.NewValidation("srcChain", "unsupported chain "+req.SrcChain.String())
	}

	preset, presetType, err := res.SelectPreset(params.Preset)
	if err != nil {
		return nil, err
	}

	now := env.Now()
	details, err := preset.AuctionDetails(now, params.DelayAuctionStartTimeBy)
	if err != nil {
		return nil, err
	}

	opts := params.Options
	opts.AllowPartialFills = preset.AllowPartialFills
	opts.AllowMultipleFills = preset.AllowMultipleFills
	if (!opts.AllowPartialFills || !opts.AllowMultipleFills) && opts.Nonce == nil {
		n, err := random.Below(env.Rand, maxNonce)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrInternal, "draw nonce", err)
		}
		opts.Nonce = &n
	}
	if req.IsPermit2 {
		opts.EnablePermit2 = true
	}
	if opts.Source == "" {
		opts.Source = req.Source
	}

	fee, err := integratorFee(req.Fee, params.Fee)
	if err != nil {
		return nil, err
	}
	receiver := params.DstAddress
	post, err := fusion.NewPostInteractionData(fusion.SettlementSuffixData{
		Whitelist:          res.ResolverWhitelist(details.StartTime, preset.ExclusiveResolver),
		IntegratorFee:      fee,
		ResolvingStartTime: uint64(now.Unix()),
		CustomReceiver:     &receiver,
	})
	if err != nil {
		return nil, err
	}

	timeLocks, err := TimeLocksFromQuote(res.TimeLocks)
	if err != nil {
		return nil, err
	}

	var permit *limit.Interaction
	if len(params.Permit) > 0 {
		permit = &limit.Interaction{Target: req.SrcTokenAddress, Data: append([]byte(nil), params.Permit...)}
	}
	escrow, err := NewEscrowExtension(
		fusion.NewExtension(res.SrcEscrowFactory, details, post, permit),
		EscrowParams{
			HashLock:         params.HashLock,
			DstChainID:       req.DstChain,
			DstToken:         req.DstTokenAddress,
			SrcSafetyDeposit: res.SrcSafetyDeposit.Uint256(),
			DstSafetyDeposit: res.DstSafetyDeposit.Uint256(),
			TimeLocks:        timeLocks,
		},
	)
	if err != nil {
		return nil, err
	}

	order, err := fusion.NewOrder(escrow, limit.OrderInfo{
		MakerAsset:   req.SrcTokenAddress,
		TakerAsset:   req.SrcChain.TrueERC20(),
		MakingAmount: res.SrcTokenAmount.Uint256(),
		TakingAmount: preset.AuctionEndAmount.Uint256(),
		Maker:        req.WalletAddress,
		Receiver:     params.DstAddress,
	}, opts, env.Rand)
	if err != nil {
		return nil, err
	}

	return &PreparedOrder{
		SrcChainID: req.SrcChain,
		DstChainID: req.DstChain,
		QuoteID:    *res.QuoteID,
		Order:      order,
		Escrow:     escrow,
		Preset:     presetType,
		Hash:       order.Hash(req.SrcChain),
	}, nil
}

// TypedData is what the maker's wallet signs.
func (p *PreparedOrder) TypedData() apitypes.TypedData {
	return p.Order.TypedData(p.SrcChainID)
}

// Extension is the built extension the salt commits to.
func (p *PreparedOrder) Extension() limit.Extension {
	return p.Order.Extension()
}

func (p *PreparedOrder) MultipleFills() bool {
	return p.Order.MakerTraits.IsMultipleFillsAllowed()
}

// integratorFee builds the fee from the quoted bps. Without a receiver the fee
// still routes the taker amount through settlement, paid to the zero address.
func integratorFee(quotedBps uint64, fee *Fee) (*fusion.IntegratorFee, error) {
	if fee != nil && fee.TakingFeeBps != 0 && fee.TakingFeeBps != quotedBps {
		return nil, apperrors.NewValidation("fee", fmt.Sprintf("taking fee %d bps differs from the quoted %d bps", fee.TakingFeeBps, quotedBps))
	}
	ratio, err := fusion.FeeRatio("fee", quotedBps)
	if err != nil {
		return nil, err
	}
	if ratio == 0 {
		return nil, nil
	}
	out := &fusion.IntegratorFee{Ratio: ratio}
	if fee != nil {
		out.Receiver = fee.TakingFeeReceiver
	}
	return out, nil
}
