package quote

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/GoPolymarket/fusiongate/internal/fusion"
	"github.com/ethereum/go-ethereum/common"
)

type PresetType string

const (
	PresetFast   PresetType = "fast"
	PresetMedium PresetType = "medium"
	PresetSlow   PresetType = "slow"
	PresetCustom PresetType = "custom"
)

func (t PresetType) Valid() bool {
	switch t {
	case PresetFast, PresetMedium, PresetSlow, PresetCustom:
		return true
	}
	return false
}

func (t *PresetType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !PresetType(s).Valid() {
		return fmt.Errorf("unknown preset %q", s)
	}
	*t = PresetType(s)
	return nil
}

type GasCost struct {
	GasBumpEstimate  Number `json:"gasBumpEstimate"`
	GasPriceEstimate Number `json:"gasPriceEstimate"`
}

// Preset is one auction profile offered by the quoter.
type Preset struct {
	AuctionDuration    uint64                `json:"auctionDuration"`
	StartAuctionIn     uint64                `json:"startAuctionIn"`
	InitialRateBump    uint64                `json:"initialRateBump"`
	AuctionStartAmount Amount                `json:"auctionStartAmount"`
	StartAmount        Amount                `json:"startAmount"`
	AuctionEndAmount   Amount                `json:"auctionEndAmount"`
	ExclusiveResolver  *common.Address       `json:"exclusiveResolver"`
	CostInDstToken     Amount                `json:"costInDstToken"`
	Points             []fusion.AuctionPoint `json:"points"`
	AllowPartialFills  bool                  `json:"allowPartialFills"`
	AllowMultipleFills bool                  `json:"allowMultipleFills"`
	GasCost            GasCost               `json:"gasCost"`
	SecretsCount       int                   `json:"secretsCount"`
}

// AuctionStartTime is now plus the extra delay plus the preset's own lead time.
func (p *Preset) AuctionStartTime(now time.Time, delay uint64) uint64 {
	return uint64(now.Unix()) + delay + p.StartAuctionIn
}

// AuctionDetails turns the preset into a validated auction schedule.
func (p *Preset) AuctionDetails(now time.Time, delay uint64) (fusion.AuctionDetails, error) {
	return fusion.NewAuctionDetails(
		p.AuctionStartTime(now, delay),
		p.AuctionDuration,
		p.InitialRateBump,
		p.Points,
		fusion.GasCostConfig{
			GasBumpEstimate:  uint64(p.GasCost.GasBumpEstimate),
			GasPriceEstimate: uint64(p.GasCost.GasPriceEstimate),
		},
	)
}
