package fusion

import (
	"fmt"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/holiman/uint256"
)

const (
	// FeeBase is 100% in fee ratio units.
	FeeBase  = 100_000
	bpsBase  = 10_000
	bpsRatio = FeeBase / bpsBase

	// MaxFeeBps is the largest fee whose ratio fits the 16-bit extension field.
	MaxFeeBps = 0xffff / bpsRatio
)

// BpsToRatio converts basis points into fee ratio units.
func BpsToRatio(bps uint64) uint64 {
	return bps * bpsRatio
}

// FeeRatio converts bps into the 16-bit ratio carried by the extension.
func FeeRatio(field string, bps uint64) (uint16, error) {
	if bps > MaxFeeBps {
		return 0, apperrors.NewValidation(field, fmt.Sprintf("fee %d bps exceeds %d", bps, MaxFeeBps))
	}
	return uint16(BpsToRatio(bps)), nil
}

// AddRatioToAmount is amount + amount*ratio/FeeBase.
func AddRatioToAmount(amount *uint256.Int, ratio uint64) (*uint256.Int, error) {
	fee, overflow := new(uint256.Int).MulDivOverflow(amount, uint256.NewInt(ratio), uint256.NewInt(FeeBase))
	if !overflow {
		_, overflow = fee.AddOverflow(fee, amount)
	}
	if overflow {
		return nil, apperrors.NewValidation("amount", "amount with fee overflows uint256")
	}
	return fee, nil
}
