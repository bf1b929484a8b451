package fusion

import (
	"io"

	"github.com/GoPolymarket/fusiongate/internal/limit"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Options are the maker choices that shape the traits of an auction order.
type Options struct {
	// Nonce is required when partial or multiple fills are disabled.
	Nonce *uint64
	// UnwrapNative delivers the native currency instead of its wrapped token.
	UnwrapNative       bool
	EnablePermit2      bool
	AllowPartialFills  bool
	AllowMultipleFills bool
	// OrderExpirationDelay is added to the auction finish to get the order deadline.
	OrderExpirationDelay uint64
	// Source is folded into the salt as a track code. Empty leaves the field clear.
	Source string
}

func DefaultOptions() Options {
	return Options{
		AllowPartialFills:    true,
		AllowMultipleFills:   true,
		OrderExpirationDelay: 12,
	}
}

// Order is a limit order whose amounts follow an auction run by the settlement contract.
type Order struct {
	*limit.Order
	ext OrderExtension
}

// NewOrder builds the traits and receiver for ext and binds the salt to it.
func NewOrder(ext OrderExtension, info limit.OrderInfo, opts Options, rnd io.Reader) (*Order, error) {
	base := ext.Fusion()

	details := base.AuctionDetails
	deadline := details.StartTime + details.Duration + opts.OrderExpirationDelay
	traits, err := limit.DefaultMakerTraits().WithExpiration(deadline)
	if err != nil {
		return nil, err
	}
	traits = traits.
		WithPartialFills(opts.AllowPartialFills).
		WithMultipleFills(opts.AllowMultipleFills).
		WithPostInteraction(true).
		WithNativeUnwrap(opts.UnwrapNative).
		WithPermit2(opts.EnablePermit2)

	if traits.IsBitInvalidatorMode() && opts.Nonce == nil {
		return nil, apperrors.NewUsage("nonce is required when partial or multiple fills are disabled")
	}
	if opts.Nonce != nil {
		if traits, err = traits.WithNonce(*opts.Nonce); err != nil {
			return nil, err
		}
	}

	built, err := ext.Build()
	if err != nil {
		return nil, err
	}

	salt := info.Salt
	if salt == nil {
		if salt, err = limit.BuildSalt(built, nil, rnd); err != nil {
			return nil, err
		}
		salt = limit.InjectTrackCode(salt, opts.Source)
	}

	info.Salt = salt
	info.Receiver = receiverFor(base, info)
	inner, err := limit.NewOrder(info, traits, built, rnd)
	if err != nil {
		return nil, err
	}
	return &Order{Order: inner, ext: ext}, nil
}

// A nonzero integrator fee routes the taking amount through the settlement contract.
func receiverFor(ext *Extension, info limit.OrderInfo) common.Address {
	if fee := ext.PostInteraction.IntegratorFee; fee != nil && fee.Ratio > 0 {
		return ext.Settlement
	}
	if info.Receiver != (common.Address{}) {
		return info.Receiver
	}
	return info.Maker
}

func (o *Order) OrderExtension() OrderExtension {
	return o.ext
}

func (o *Order) AuctionDetails() AuctionDetails {
	return o.ext.Fusion().AuctionDetails
}

func (o *Order) PostInteractionData() PostInteractionData {
	return o.ext.Fusion().PostInteraction
}

// Calculator evaluates the auction as the settlement contract does.
func (o *Order) Calculator() AuctionCalculator {
	return FromAuctionData(o.PostInteractionData(), o.AuctionDetails())
}

// TakingAmountAt is the taking amount a resolver owes at t for the full order.
func (o *Order) TakingAmountAt(t uint64, baseFee *uint256.Int) (*uint256.Int, error) {
	return o.Calculator().TakingAmount(&o.TakingAmount, t, baseFee)
}

func (o *Order) CanExecuteAt(executor common.Address, t uint64) bool {
	return o.PostInteractionData().CanExecuteAt(executor, t)
}

func (o *Order) IsExclusiveResolver(wallet common.Address) bool {
	return o.PostInteractionData().IsExclusiveResolver(wallet)
}

// Expired reports whether the order deadline has passed at t.
func (o *Order) Expired(t uint64) bool {
	exp := o.MakerTraits.Expiration()
	return exp != 0 && t >= exp
}
