package fusion

import (
	"testing"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sampleResolvingStart = 0x6887ccd3
	samplePostHex        = "0x6887ccd3cb4fa6eb00f6ea887a4a000072f8a0c8c415454f629c00005ba74b09ae44e823cf77000018"
)

var sampleResolvers = []common.Address{
	common.HexToAddress("0x11111111111111111111" + "cb4fa6eb00f6ea887a4a"),
	common.HexToAddress("0x22222222222222222222" + "72f8a0c8c415454f629c"),
	common.HexToAddress("0x33333333333333333333" + "5ba74b09ae44e823cf77"),
}

func samplePostData(t *testing.T) PostInteractionData {
	t.Helper()
	items := make([]AuctionWhitelistItem, len(sampleResolvers))
	for i, r := range sampleResolvers {
		items[i] = AuctionWhitelistItem{Address: r}
	}
	d, err := NewPostInteractionData(SettlementSuffixData{
		Whitelist:          items,
		ResolvingStartTime: sampleResolvingStart,
	})
	require.NoError(t, err)
	return d
}

func TestSamplePostInteractionEncoding(t *testing.T) {
	d := samplePostData(t)
	assert.Equal(t, samplePostHex, hexutil.Encode(d.Encode()))

	decoded, err := DecodePostInteractionData(hexutil.MustDecode(samplePostHex))
	require.NoError(t, err)
	assert.Equal(t, d, decoded)
	assert.Nil(t, decoded.IntegratorFee)
	assert.Zero(t, decoded.BankFee)
	require.Len(t, decoded.Whitelist, 3)
	assert.Equal(t, AddressHalf(sampleResolvers[2]), decoded.Whitelist[2].AddressHalf)
}

func TestPostInteractionFlagCombinations(t *testing.T) {
	feeReceiver := common.HexToAddress("0x90cbe4bdd538d6e9b379bff5fe72c3d67a521de5")
	custom := common.HexToAddress("0x00000000219ab540356cbb839cbe05303d7705fa")
	whitelist := []AuctionWhitelistItem{{Address: sampleResolvers[0], AllowFrom: 1_000}}

	cases := []struct {
		name      string
		in        SettlementSuffixData
		flags     uint8
		hasFee    bool
		hasCustom bool
	}{
		{name: "no fees", in: SettlementSuffixData{}, flags: 0x08},
		{name: "bank fee", in: SettlementSuffixData{BankFee: 7}, flags: 0x09},
		{
			name:   "integrator fee",
			in:     SettlementSuffixData{IntegratorFee: &IntegratorFee{Receiver: feeReceiver, Ratio: 50}},
			flags:  0x0a,
			hasFee: true,
		},
		{
			name:      "integrator fee and custom receiver",
			in:        SettlementSuffixData{BankFee: 3, IntegratorFee: &IntegratorFee{Receiver: feeReceiver, Ratio: 50}, CustomReceiver: &custom},
			flags:     0x0f,
			hasFee:    true,
			hasCustom: true,
		},
		{
			name:  "zero ratio is omitted",
			in:    SettlementSuffixData{IntegratorFee: &IntegratorFee{Receiver: feeReceiver}},
			flags: 0x08,
		},
		{
			name:  "custom receiver without fee is omitted",
			in:    SettlementSuffixData{CustomReceiver: &custom},
			flags: 0x08,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := c.in
			in.Whitelist = whitelist
			in.ResolvingStartTime = 900
			d, err := NewPostInteractionData(in)
			require.NoError(t, err)

			raw := d.Encode()
			assert.Equal(t, c.flags, raw[len(raw)-1])

			back, err := DecodePostInteractionData(raw)
			require.NoError(t, err)
			assert.Equal(t, d, back)
			assert.Equal(t, c.hasFee, back.IntegratorFee != nil)
			assert.Equal(t, c.hasCustom, back.CustomReceiver != nil)
			assert.Equal(t, uint16(100), back.Whitelist[0].Delay)
		})
	}
}

func TestWhitelistIsSortedAndDeltaEncoded(t *testing.T) {
	a, b, c := sampleResolvers[0], sampleResolvers[1], sampleResolvers[2]
	d, err := NewPostInteractionData(SettlementSuffixData{
		Whitelist: []AuctionWhitelistItem{
			{Address: a, AllowFrom: 1_100},
			{Address: b, AllowFrom: 0},
			{Address: c, AllowFrom: 1_050},
		},
		ResolvingStartTime: 1_000,
	})
	require.NoError(t, err)

	assert.Equal(t, []WhitelistItem{
		{AddressHalf: AddressHalf(b), Delay: 0},
		{AddressHalf: AddressHalf(c), Delay: 50},
		{AddressHalf: AddressHalf(a), Delay: 50},
	}, d.Whitelist)

	assert.True(t, d.CanExecuteAt(b, 1_000))
	assert.False(t, d.CanExecuteAt(c, 1_049))
	assert.True(t, d.CanExecuteAt(c, 1_050))
	assert.True(t, d.CanExecuteAt(a, 1_100))
	assert.False(t, d.CanExecuteAt(common.HexToAddress("0x01"), 5_000))

	assert.True(t, d.IsExclusiveResolver(b))
	assert.False(t, d.IsExclusiveResolver(c))
	assert.Equal(t, uint64(1_050), d.ExclusivityEnd())
}

func TestNoExclusiveResolverWhenAllStartTogether(t *testing.T) {
	d := samplePostData(t)
	assert.False(t, d.IsExclusiveResolver(sampleResolvers[0]))
}

func TestNewPostInteractionDataValidation(t *testing.T) {
	_, err := NewPostInteractionData(SettlementSuffixData{ResolvingStartTime: 1})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = NewPostInteractionData(SettlementSuffixData{
		Whitelist:          []AuctionWhitelistItem{{Address: sampleResolvers[0], AllowFrom: 1 + 1<<16}},
		ResolvingStartTime: 1,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = NewPostInteractionData(SettlementSuffixData{
		Whitelist:          []AuctionWhitelistItem{{Address: sampleResolvers[0], AllowFrom: maxUint16 + 1}},
		ResolvingStartTime: 1,
	})
	assert.NoError(t, err, "delay of exactly 2^16-1 fits")

	tooMany := make([]AuctionWhitelistItem, MaxWhitelistSize+1)
	_, err = NewPostInteractionData(SettlementSuffixData{Whitelist: tooMany})
	assert.Error(t, err)

	_, err = NewPostInteractionData(SettlementSuffixData{Whitelist: tooMany[:1], BankFee: 1 << 32})
	assert.Error(t, err)
}

func TestDecodePostInteractionMalformed(t *testing.T) {
	raw := hexutil.MustDecode(samplePostHex)

	for _, n := range []int{0, 1, 4, len(raw) - 2} {
		_, err := DecodePostInteractionData(raw[len(raw)-n:])
		require.Error(t, err, "suffix of %d bytes", n)
		assert.True(t, apperrors.Is(err, apperrors.ErrDecode))
	}

	withJunk := append([]byte{0xff}, raw...)
	_, err := DecodePostInteractionData(withJunk)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrDecode))
}

func TestBpsHelpers(t *testing.T) {
	assert.Equal(t, uint64(500), BpsToRatio(50))
	withFee, err := AddRatioToAmount(uint256.NewInt(1_000_000), 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_005_000), withFee.Uint64())

	_, err = AddRatioToAmount(new(uint256.Int).SetAllOne(), 500)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	ratio, err := FeeRatio("fee", MaxFeeBps)
	require.NoError(t, err)
	assert.Equal(t, uint16(65530), ratio)
	_, err = FeeRatio("fee", MaxFeeBps+1)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}
