package crosschain

import (
	"fmt"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/bitmask"
	"github.com/GoPolymarket/fusiongate/internal/quote"
	"github.com/holiman/uint256"
)

const maxUint32 = 1<<32 - 1

// TimeLocks are escrow stage offsets in seconds from DeployedAt.
type TimeLocks struct {
	SrcWithdrawal         uint64
	SrcPublicWithdrawal   uint64
	SrcCancellation       uint64
	SrcPublicCancellation uint64
	DstWithdrawal         uint64
	DstPublicWithdrawal   uint64
	DstCancellation       uint64
	DeployedAt            uint64
}

// NewTimeLocks checks widths and stage ordering on both chains.
func NewTimeLocks(t TimeLocks) (TimeLocks, error) {
	for i, v := range t.fields() {
		if v > maxUint32 {
			return TimeLocks{}, apperrors.NewValidation(timeLockNames[i], fmt.Sprintf("%d exceeds %d", v, uint64(maxUint32)))
		}
	}
	order := []struct {
		name       string
		prev, next uint64
	}{
		{"src_public_withdrawal", t.SrcWithdrawal, t.SrcPublicWithdrawal},
		{"src_cancellation", t.SrcPublicWithdrawal, t.SrcCancellation},
		{"src_public_cancellation", t.SrcCancellation, t.SrcPublicCancellation},
		{"dst_public_withdrawal", t.DstWithdrawal, t.DstPublicWithdrawal},
		{"dst_cancellation", t.DstPublicWithdrawal, t.DstCancellation},
	}
	for _, o := range order {
		if o.next <= o.prev {
			return TimeLocks{}, apperrors.NewValidation(o.name, fmt.Sprintf("must come after the previous stage (%d <= %d)", o.next, o.prev))
		}
	}
	return t, nil
}

// TimeLocksFromQuote validates the quoter's schedule. DeployedAt is filled on chain.
func TimeLocksFromQuote(q quote.TimeLocks) (TimeLocks, error) {
	return NewTimeLocks(TimeLocks{
		SrcWithdrawal:         q.SrcWithdrawal,
		SrcPublicWithdrawal:   q.SrcPublicWithdrawal,
		SrcCancellation:       q.SrcCancellation,
		SrcPublicCancellation: q.SrcPublicCancellation,
		DstWithdrawal:         q.DstWithdrawal,
		DstPublicWithdrawal:   q.DstPublicWithdrawal,
		DstCancellation:       q.DstCancellation,
	})
}

var timeLockNames = [8]string{
	"src_withdrawal",
	"src_public_withdrawal",
	"src_cancellation",
	"src_public_cancellation",
	"dst_withdrawal",
	"dst_public_withdrawal",
	"dst_cancellation",
	"deployed_at",
}

// fields is in packing order, lowest 32 bits first.
func (t TimeLocks) fields() [8]uint64 {
	return [8]uint64{
		t.SrcWithdrawal,
		t.SrcPublicWithdrawal,
		t.SrcCancellation,
		t.SrcPublicCancellation,
		t.DstWithdrawal,
		t.DstPublicWithdrawal,
		t.DstCancellation,
		t.DeployedAt,
	}
}

func timeLockMask(i int) bitmask.BitMask {
	return bitmask.MustNew(uint(32*i), uint(32*(i+1)))
}

// Build packs the schedule into one word, SrcWithdrawal in the lowest 32 bits.
func (t TimeLocks) Build() *uint256.Int {
	out := new(uint256.Int)
	for i, v := range t.fields() {
		out = timeLockMask(i).SetAt(out, uint256.NewInt(v))
	}
	return out
}

func TimeLocksFromUint256(v *uint256.Int) TimeLocks {
	var f [8]uint64
	for i := range f {
		f[i] = timeLockMask(i).GetFrom(v).Uint64()
	}
	return TimeLocks{
		SrcWithdrawal:         f[0],
		SrcPublicWithdrawal:   f[1],
		SrcCancellation:       f[2],
		SrcPublicCancellation: f[3],
		DstWithdrawal:         f[4],
		DstPublicWithdrawal:   f[5],
		DstCancellation:       f[6],
		DeployedAt:            f[7],
	}
}

func (t TimeLocks) WithDeployedAt(ts uint64) (TimeLocks, error) {
	t.DeployedAt = ts
	return NewTimeLocks(t)
}

// Stage is the escrow phase at a moment in time.
type Stage string

const (
	StageFinality            Stage = "finality"
	StagePrivateWithdrawal   Stage = "private_withdrawal"
	StagePublicWithdrawal    Stage = "public_withdrawal"
	StagePrivateCancellation Stage = "private_cancellation"
	StagePublicCancellation  Stage = "public_cancellation"
)

// SrcStage is the source escrow phase at unix time now.
func (t TimeLocks) SrcStage(now uint64) Stage {
	switch elapsed := now - min(now, t.DeployedAt); {
	case elapsed < t.SrcWithdrawal:
		return StageFinality
	case elapsed < t.SrcPublicWithdrawal:
		return StagePrivateWithdrawal
	case elapsed < t.SrcCancellation:
		return StagePublicWithdrawal
	case elapsed < t.SrcPublicCancellation:
		return StagePrivateCancellation
	default:
		return StagePublicCancellation
	}
}

// DstStage is the destination escrow phase. There is no public cancellation there.
func (t TimeLocks) DstStage(now uint64) Stage {
	switch elapsed := now - min(now, t.DeployedAt); {
	case elapsed < t.DstWithdrawal:
		return StageFinality
	case elapsed < t.DstPublicWithdrawal:
		return StagePrivateWithdrawal
	case elapsed < t.DstCancellation:
		return StagePublicWithdrawal
	default:
		return StagePrivateCancellation
	}
}
