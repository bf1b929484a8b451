package fusion

import (
	"fmt"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/codec"
)

const (
	maxUint16 = 1<<16 - 1
	maxUint24 = 1<<24 - 1
	maxUint32 = 1<<32 - 1
)

// AuctionPoint is a rate bump Coefficient reached Delay seconds after the previous point.
type AuctionPoint struct {
	Delay       uint64 `json:"delay"`
	Coefficient uint64 `json:"coefficient"`
}

type GasCostConfig struct {
	GasBumpEstimate  uint64 `json:"gasBumpEstimate"`
	GasPriceEstimate uint64 `json:"gasPriceEstimate"`
}

// AuctionDetails is the Dutch auction schedule read by the settlement contract.
type AuctionDetails struct {
	StartTime       uint64
	Duration        uint64
	InitialRateBump uint64
	Points          []AuctionPoint
	GasCost         GasCostConfig
}

// NewAuctionDetails validates every field against its packed width.
func NewAuctionDetails(startTime, duration, initialRateBump uint64, points []AuctionPoint, gas GasCostConfig) (AuctionDetails, error) {
	checks := []struct {
		field string
		value uint64
		max   uint64
	}{
		{"start_time", startTime, maxUint32},
		{"duration", duration, maxUint24},
		{"initial_rate_bump", initialRateBump, maxUint24},
		{"gas_bump_estimate", gas.GasBumpEstimate, maxUint24},
		{"gas_price_estimate", gas.GasPriceEstimate, maxUint32},
	}
	for i, p := range points {
		checks = append(checks,
			struct {
				field string
				value uint64
				max   uint64
			}{fmt.Sprintf("points[%d].coefficient", i), p.Coefficient, maxUint24},
			struct {
				field string
				value uint64
				max   uint64
			}{fmt.Sprintf("points[%d].delay", i), p.Delay, maxUint16},
		)
	}
	for _, c := range checks {
		if c.value > c.max {
			return AuctionDetails{}, apperrors.NewValidation(c.field, fmt.Sprintf("%d exceeds %d", c.value, c.max))
		}
	}

	var pts []AuctionPoint
	if len(points) > 0 {
		pts = append(pts, points...)
	}
	return AuctionDetails{
		StartTime:       startTime,
		Duration:        duration,
		InitialRateBump: initialRateBump,
		Points:          pts,
		GasCost:         gas,
	}, nil
}

// Encode packs
//
//	u24 gasBumpEstimate || u32 gasPriceEstimate || u32 startTime || u24 duration ||
//	u24 initialRateBump || (u24 coefficient || u16 delay)*
func (d AuctionDetails) Encode() []byte {
	b := codec.NewBuilder().
		Uint24(uint32(d.GasCost.GasBumpEstimate)).
		Uint32(uint32(d.GasCost.GasPriceEstimate)).
		Uint32(uint32(d.StartTime)).
		Uint24(uint32(d.Duration)).
		Uint24(uint32(d.InitialRateBump))
	for _, p := range d.Points {
		b.Uint24(uint32(p.Coefficient)).Uint16(uint16(p.Delay))
	}
	return b.Build()
}

// FinishTime is when the rate bump reaches zero.
func (d AuctionDetails) FinishTime() uint64 {
	return d.StartTime + d.Duration
}

func DecodeAuctionDetails(data []byte) (AuctionDetails, error) {
	r := codec.NewReader(data, "auction_details")
	var d AuctionDetails

	gasBump, err := r.Uint24(codec.Front)
	if err != nil {
		return AuctionDetails{}, err
	}
	gasPrice, err := r.Uint32(codec.Front)
	if err != nil {
		return AuctionDetails{}, err
	}
	start, err := r.Uint32(codec.Front)
	if err != nil {
		return AuctionDetails{}, err
	}
	duration, err := r.Uint24(codec.Front)
	if err != nil {
		return AuctionDetails{}, err
	}
	initial, err := r.Uint24(codec.Front)
	if err != nil {
		return AuctionDetails{}, err
	}
	d.GasCost = GasCostConfig{GasBumpEstimate: uint64(gasBump), GasPriceEstimate: uint64(gasPrice)}
	d.StartTime = uint64(start)
	d.Duration = uint64(duration)
	d.InitialRateBump = uint64(initial)

	for !r.Empty() {
		coef, err := r.Uint24(codec.Front)
		if err != nil {
			return AuctionDetails{}, err
		}
		delay, err := r.Uint16(codec.Front)
		if err != nil {
			return AuctionDetails{}, err
		}
		d.Points = append(d.Points, AuctionPoint{Delay: uint64(delay), Coefficient: uint64(coef)})
	}
	return d, nil
}
