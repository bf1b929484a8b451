package crosschain

import (
	"testing"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/quote"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTimeLocksWord = "0x1c8000001500000003c00000288000002100000017400000024"

func sampleTimeLocks() TimeLocks {
	return TimeLocks{
		SrcWithdrawal:         36,
		SrcPublicWithdrawal:   372,
		SrcCancellation:       528,
		SrcPublicCancellation: 648,
		DstWithdrawal:         60,
		DstPublicWithdrawal:   336,
		DstCancellation:       456,
	}
}

func TestTimeLocksPacking(t *testing.T) {
	tl, err := NewTimeLocks(sampleTimeLocks())
	require.NoError(t, err)

	word := tl.Build()
	assert.Equal(t, sampleTimeLocksWord, word.Hex())
	assert.Equal(t, tl, TimeLocksFromUint256(word))

	deployed, err := tl.WithDeployedAt(1_754_118_000)
	require.NoError(t, err)
	back := TimeLocksFromUint256(deployed.Build())
	assert.Equal(t, uint64(1_754_118_000), back.DeployedAt)
	assert.Equal(t, uint64(36), back.SrcWithdrawal)
}

func TestTimeLocksFromQuote(t *testing.T) {
	tl, err := TimeLocksFromQuote(quote.TimeLocks{
		SrcWithdrawal:         36,
		SrcPublicWithdrawal:   372,
		SrcCancellation:       528,
		SrcPublicCancellation: 648,
		DstWithdrawal:         60,
		DstPublicWithdrawal:   336,
		DstCancellation:       456,
	})
	require.NoError(t, err)
	assert.Equal(t, sampleTimeLocks(), tl)
}

func TestNewTimeLocksValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*TimeLocks)
	}{
		{"src stages equal", func(tl *TimeLocks) { tl.SrcPublicWithdrawal = tl.SrcWithdrawal }},
		{"src cancellation before withdrawal", func(tl *TimeLocks) { tl.SrcCancellation = 100 }},
		{"src public cancellation first", func(tl *TimeLocks) { tl.SrcPublicCancellation = 500 }},
		{"dst out of order", func(tl *TimeLocks) { tl.DstCancellation = 300 }},
		{"wider than 32 bits", func(tl *TimeLocks) { tl.DeployedAt = 1 << 32 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tl := sampleTimeLocks()
			tc.mutate(&tl)
			_, err := NewTimeLocks(tl)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
		})
	}
}

func TestTimeLocksStages(t *testing.T) {
	tl, err := sampleTimeLocks().WithDeployedAt(1_000)
	require.NoError(t, err)

	src := map[uint64]Stage{
		900:  StageFinality,
		1035: StageFinality,
		1036: StagePrivateWithdrawal,
		1371: StagePrivateWithdrawal,
		1372: StagePublicWithdrawal,
		1528: StagePrivateCancellation,
		1648: StagePublicCancellation,
		9999: StagePublicCancellation,
	}
	for now, want := range src {
		assert.Equal(t, want, tl.SrcStage(now), "src at %d", now)
	}

	dst := map[uint64]Stage{
		1059: StageFinality,
		1060: StagePrivateWithdrawal,
		1336: StagePublicWithdrawal,
		1456: StagePrivateCancellation,
		9999: StagePrivateCancellation,
	}
	for now, want := range dst {
		assert.Equal(t, want, tl.DstStage(now), "dst at %d", now)
	}
}

func TestTimeLocksDeployedAtIsTopField(t *testing.T) {
	word := new(uint256.Int).Lsh(uint256.NewInt(7), 224)
	assert.Equal(t, uint64(7), TimeLocksFromUint256(word).DeployedAt)
}
