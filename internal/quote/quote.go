// Package quote holds the quoter API shapes an order is prepared from.
package quote

import (
	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/fusion"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Request asks the quoter for a cross-chain swap of Amount SrcTokenAddress.
type Request struct {
	SrcChain        chain.ID       `json:"srcChain"`
	DstChain        chain.ID       `json:"dstChain"`
	SrcTokenAddress common.Address `json:"srcTokenAddress"`
	DstTokenAddress common.Address `json:"dstTokenAddress"`
	Amount          Amount         `json:"amount"`
	// WalletAddress is the maker.
	WalletAddress  common.Address `json:"walletAddress"`
	EnableEstimate bool           `json:"enableEstimate"`
	// Fee is the integrator taking fee in basis points.
	Fee       uint64 `json:"fee,omitempty"`
	Source    string `json:"source,omitempty"`
	IsPermit2 bool   `json:"isPermit2,omitempty"`
}

func (r Request) Validate() error {
	switch {
	case !r.SrcChain.Supported():
		return apperrors.NewValidation("srcChain", "unsupported chain "+r.SrcChain.String())
	case !r.DstChain.Supported():
		return apperrors.NewValidation("dstChain", "unsupported chain "+r.DstChain.String())
	case r.SrcChain == r.DstChain:
		return apperrors.NewPrecondition("source and destination chains must differ")
	case r.Amount.IsZero():
		return apperrors.NewValidation("amount", "must be positive")
	case r.WalletAddress == (common.Address{}):
		return apperrors.NewValidation("walletAddress", "required")
	}
	_, err := fusion.FeeRatio("fee", r.Fee)
	return err
}

type TimeLocks struct {
	SrcWithdrawal         uint64 `json:"srcWithdrawal"`
	SrcPublicWithdrawal   uint64 `json:"srcPublicWithdrawal"`
	SrcCancellation       uint64 `json:"srcCancellation"`
	SrcPublicCancellation uint64 `json:"srcPublicCancellation"`
	DstWithdrawal         uint64 `json:"dstWithdrawal"`
	DstPublicWithdrawal   uint64 `json:"dstPublicWithdrawal"`
	DstCancellation       uint64 `json:"dstCancellation"`
}

type TokenPair struct {
	SrcToken decimal.Decimal `json:"srcToken"`
	DstToken decimal.Decimal `json:"dstToken"`
}

type PairCurrency struct {
	USD TokenPair `json:"usd"`
}

type Presets struct {
	Fast   Preset  `json:"fast"`
	Medium Preset  `json:"medium"`
	Slow   Preset  `json:"slow"`
	Custom *Preset `json:"custom,omitempty"`
}

// Result is a quote. QuoteID is only set when the request enabled estimation.
type Result struct {
	QuoteID           *string          `json:"quoteId"`
	SrcTokenAmount    Amount           `json:"srcTokenAmount"`
	DstTokenAmount    Amount           `json:"dstTokenAmount"`
	Presets           Presets          `json:"presets"`
	SrcEscrowFactory  common.Address   `json:"srcEscrowFactory"`
	DstEscrowFactory  common.Address   `json:"dstEscrowFactory"`
	Whitelist         []common.Address `json:"whitelist"`
	TimeLocks         TimeLocks        `json:"timeLocks"`
	SrcSafetyDeposit  Amount           `json:"srcSafetyDeposit"`
	DstSafetyDeposit  Amount           `json:"dstSafetyDeposit"`
	RecommendedPreset PresetType       `json:"recommendedPreset"`
	Prices            PairCurrency     `json:"prices"`
	Volume            PairCurrency     `json:"volume"`
}

// Preset returns the preset of type t, if the quote carries one.
func (r *Result) Preset(t PresetType) (*Preset, bool) {
	switch t {
	case PresetFast:
		return &r.Presets.Fast, true
	case PresetMedium:
		return &r.Presets.Medium, true
	case PresetSlow:
		return &r.Presets.Slow, true
	case PresetCustom:
		return r.Presets.Custom, r.Presets.Custom != nil
	}
	return nil, false
}

// Recommended falls back to the fast preset.
func (r *Result) Recommended() *Preset {
	if p, ok := r.Preset(r.RecommendedPreset); ok {
		return p
	}
	return &r.Presets.Fast
}

// SelectPreset resolves an optional override against the quote. Without one the
// recommended preset is used, falling back to fast.
func (r *Result) SelectPreset(override *PresetType) (*Preset, PresetType, error) {
	if override != nil {
		p, ok := r.Preset(*override)
		if !ok {
			return nil, "", apperrors.NewValidation("preset", "quote has no "+string(*override)+" preset")
		}
		return p, *override, nil
	}
	if p, ok := r.Preset(r.RecommendedPreset); ok {
		return p, r.RecommendedPreset, nil
	}
	return &r.Presets.Fast, PresetFast, nil
}

// ResolverWhitelist lists the quote's resolvers. An exclusive resolver may fill
// straight away and the others wait for the auction start; without one, every
// resolver may fill straight away.
func (r *Result) ResolverWhitelist(auctionStart uint64, exclusive *common.Address) []fusion.AuctionWhitelistItem {
	items := make([]fusion.AuctionWhitelistItem, 0, len(r.Whitelist))
	for _, addr := range r.Whitelist {
		allowFrom := uint64(0)
		if exclusive != nil && addr != *exclusive {
			allowFrom = auctionStart
		}
		items = append(items, fusion.AuctionWhitelistItem{Address: addr, AllowFrom: allowFrom})
	}
	return items
}

// SpreadUSD is the dollar value lost between what the maker gives and gets.
func (r *Result) SpreadUSD() decimal.Decimal {
	return r.Volume.USD.SrcToken.Sub(r.Volume.USD.DstToken)
}
