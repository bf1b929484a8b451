package fusion

import (
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/holiman/uint256"
)

const (
	// RateBumpDenominator is 100% in rate bump units.
	RateBumpDenominator = 10_000_000
	// GasPriceBase scales the gas price estimate carried in AuctionDetails.
	GasPriceBase = 1_000_000
)

// AuctionCalculator evaluates the rate bump of an auction at a point in time.
type AuctionCalculator struct {
	startTime       uint64
	duration        uint64
	initialRateBump uint64
	points          []AuctionPoint
	gasCost         GasCostConfig
}

func NewAuctionCalculator(details AuctionDetails) AuctionCalculator {
	return AuctionCalculator{
		startTime:       details.StartTime,
		duration:        details.Duration,
		initialRateBump: details.InitialRateBump,
		points:          details.Points,
		gasCost:         details.GasCost,
	}
}

// FromAuctionData evaluates the schedule from the moment resolvers may start
// filling, which is how the settlement contract reads it.
func FromAuctionData(post PostInteractionData, details AuctionDetails) AuctionCalculator {
	calc := NewAuctionCalculator(details)
	calc.startTime = uint64(post.ResolvingStartTime)
	return calc
}

func (c AuctionCalculator) FinishTime() uint64 {
	return c.startTime + c.duration
}

// AuctionBump is the rate bump at unix time t, ignoring gas.
func (c AuctionCalculator) AuctionBump(t uint64) uint64 {
	if t <= c.startTime {
		return c.initialRateBump
	}
	finish := c.FinishTime()
	if t >= finish {
		return 0
	}

	cur := c.startTime
	curBump := c.initialRateBump
	for _, p := range c.points {
		next := cur + p.Delay
		if t <= next {
			return interpolate(t, cur, next, curBump, p.Coefficient)
		}
		cur = next
		curBump = p.Coefficient
	}
	return interpolate(t, cur, finish, curBump, 0)
}

// interpolate walks linearly from fromBump at from to toBump at to, flooring.
func interpolate(t, from, to, fromBump, toBump uint64) uint64 {
	span := to - from
	if span == 0 {
		return toBump
	}
	elapsed := t - from
	remaining := to - t

	num := new(uint256.Int).Mul(uint256.NewInt(elapsed), uint256.NewInt(toBump))
	num.Add(num, new(uint256.Int).Mul(uint256.NewInt(remaining), uint256.NewInt(fromBump)))
	return num.Div(num, uint256.NewInt(span)).Uint64()
}

// GasPriceBump is the part of the bump covered by the gas price having moved
// away from the estimate the auction was priced at.
func (c AuctionCalculator) GasPriceBump(baseFee *uint256.Int) uint64 {
	if c.gasCost.GasBumpEstimate == 0 || c.gasCost.GasPriceEstimate == 0 || baseFee == nil || baseFee.IsZero() {
		return 0
	}
	v := new(uint256.Int).Mul(uint256.NewInt(c.gasCost.GasBumpEstimate), baseFee)
	v.Div(v, uint256.NewInt(c.gasCost.GasPriceEstimate))
	v.Div(v, uint256.NewInt(GasPriceBase))
	if !v.IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}

// RateBump is AuctionBump(t) minus GasPriceBump(baseFee), floored at zero.
func (c AuctionCalculator) RateBump(t uint64, baseFee *uint256.Int) uint64 {
	bump := c.AuctionBump(t)
	gas := c.GasPriceBump(baseFee)
	if gas >= bump {
		return 0
	}
	return bump - gas
}

// TakingAmount applies the rate bump at t to amount.
func (c AuctionCalculator) TakingAmount(amount *uint256.Int, t uint64, baseFee *uint256.Int) (*uint256.Int, error) {
	return AuctionTakingAmount(amount, c.RateBump(t, baseFee))
}

// AuctionTakingAmount is ceil(amount * (bump + denominator) / denominator).
// The product is taken at 512 bits; only a result above 2^256-1 fails.
func AuctionTakingAmount(amount *uint256.Int, bump uint64) (*uint256.Int, error) {
	den := uint256.NewInt(RateBumpDenominator)
	factor := new(uint256.Int).AddUint64(den, bump)
	out, overflow := new(uint256.Int).MulDivOverflow(amount, factor, den)
	if !overflow && !new(uint256.Int).MulMod(amount, factor, den).IsZero() {
		_, overflow = out.AddOverflow(out, uint256.NewInt(1))
	}
	if overflow {
		return nil, apperrors.NewValidation("taking_amount", "auction taking amount overflows uint256")
	}
	return out, nil
}

// CalcInitialRateBump is the bump that turns endAmount into startAmount.
func CalcInitialRateBump(startAmount, endAmount *uint256.Int) uint64 {
	if endAmount.IsZero() {
		return 0
	}
	v := new(uint256.Int).Mul(uint256.NewInt(RateBumpDenominator), startAmount)
	v.Div(v, endAmount)
	if v.Lt(uint256.NewInt(RateBumpDenominator)) {
		return 0
	}
	return v.SubUint64(v, RateBumpDenominator).Uint64()
}

// CalcGasBumpEstimate expresses a gas cost in destination tokens as a rate bump.
func CalcGasBumpEstimate(endTakingAmount, gasCostInToToken *uint256.Int) uint64 {
	if endTakingAmount.IsZero() {
		return 0
	}
	v := new(uint256.Int).Mul(gasCostInToToken, uint256.NewInt(RateBumpDenominator))
	return v.Div(v, endTakingAmount).Uint64()
}

func BaseFeeToGasPriceEstimate(baseFee *uint256.Int) uint64 {
	return new(uint256.Int).Div(baseFee, uint256.NewInt(GasPriceBase)).Uint64()
}
