package limit

import (
	"fmt"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/bitmask"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	allowedSenderMask = bitmask.MustNew(0, 80)
	expirationMask    = bitmask.MustNew(80, 120)
	nonceOrEpochMask  = bitmask.MustNew(120, 160)
	seriesMask        = bitmask.MustNew(160, 200)
)

const (
	noPartialFillsFlag        = 255
	allowMultipleFillsFlag    = 254
	preInteractionCallFlag    = 252
	postInteractionCallFlag   = 251
	needCheckEpochManagerFlag = 250
	hasExtensionFlag          = 249
	usePermit2Flag            = 248
	unwrapWethFlag            = 247
)

// MakerTraits is the packed behavior word of a limit order. Every setter returns
// a new value; the receiver is never modified.
//
// The zero value allows partial fills and forbids multiple fills.
type MakerTraits struct {
	value uint256.Int
}

func NewMakerTraits(value *uint256.Int) MakerTraits {
	return MakerTraits{value: *value}
}

func DefaultMakerTraits() MakerTraits {
	return MakerTraits{}
}

// Uint256 returns a copy of the packed word.
func (t MakerTraits) Uint256() *uint256.Int {
	return t.value.Clone()
}

func (t MakerTraits) String() string {
	return t.value.Dec()
}

func (t MakerTraits) bit(n uint) bool {
	return bitmask.Bit(n).IsSet(&t.value)
}

func (t MakerTraits) withBit(n uint, on bool) MakerTraits {
	var b uint256.Int
	if on {
		b.SetOne()
	}
	t.value = *bitmask.Bit(n).SetAt(&t.value, &b)
	return t
}

func (t MakerTraits) withField(m bitmask.BitMask, field string, v uint64) (MakerTraits, error) {
	bits := uint256.NewInt(v)
	if !m.Fits(bits) {
		return t, apperrors.NewValidation(field, fmt.Sprintf("%d does not fit in %d bits", v, m.Width()))
	}
	t.value = *m.SetAt(&t.value, bits)
	return t, nil
}

// AllowedSender returns the low 10 bytes of the only address allowed to fill, or zeros.
func (t MakerTraits) AllowedSender() [10]byte {
	var out [10]byte
	word := allowedSenderMask.GetFrom(&t.value).Bytes32()
	copy(out[:], word[22:])
	return out
}

func (t MakerTraits) IsPrivate() bool {
	return allowedSenderMask.IsSet(&t.value)
}

// WithAllowedSender restricts fills to sender. Use WithAnySender to lift the restriction.
func (t MakerTraits) WithAllowedSender(sender common.Address) (MakerTraits, error) {
	if sender == (common.Address{}) {
		return t, apperrors.NewValidation("allowed_sender", "zero address; use WithAnySender to remove the sender check")
	}
	low := new(uint256.Int).SetBytes(sender.Bytes()[10:])
	t.value = *allowedSenderMask.SetAt(&t.value, low)
	return t, nil
}

func (t MakerTraits) WithAnySender() MakerTraits {
	t.value = *allowedSenderMask.SetAt(&t.value, new(uint256.Int))
	return t
}

func (t MakerTraits) Expiration() uint64 {
	return expirationMask.GetFrom(&t.value).Uint64()
}

// WithExpiration sets the unix deadline after which the order cannot be filled. Zero means no expiry.
func (t MakerTraits) WithExpiration(expiration uint64) (MakerTraits, error) {
	return t.withField(expirationMask, "expiration", expiration)
}

func (t MakerTraits) NonceOrEpoch() uint64 {
	return nonceOrEpochMask.GetFrom(&t.value).Uint64()
}

func (t MakerTraits) WithNonce(nonce uint64) (MakerTraits, error) {
	return t.withField(nonceOrEpochMask, "nonce", nonce)
}

func (t MakerTraits) Series() uint64 {
	return seriesMask.GetFrom(&t.value).Uint64()
}

func (t MakerTraits) WithSeries(series uint64) (MakerTraits, error) {
	return t.withField(seriesMask, "series", series)
}

// WithEpoch enables the epoch manager check for the given series and epoch.
// Only legal when both partial and multiple fills are allowed.
func (t MakerTraits) WithEpoch(series, epoch uint64) (MakerTraits, error) {
	if t.IsBitInvalidatorMode() {
		return t, apperrors.NewUsage("epoch manager requires partial and multiple fills to be allowed")
	}
	out, err := t.WithSeries(series)
	if err != nil {
		return t, err
	}
	out, err = out.withField(nonceOrEpochMask, "epoch", epoch)
	if err != nil {
		return t, err
	}
	return out.withBit(needCheckEpochManagerFlag, true), nil
}

func (t MakerTraits) IsEpochManagerEnabled() bool {
	return t.bit(needCheckEpochManagerFlag)
}

func (t MakerTraits) HasExtension() bool {
	return t.bit(hasExtensionFlag)
}

func (t MakerTraits) WithExtension() MakerTraits {
	return t.withBit(hasExtensionFlag, true)
}

func (t MakerTraits) IsPartialFillAllowed() bool {
	return !t.bit(noPartialFillsFlag)
}

func (t MakerTraits) WithPartialFills(allow bool) MakerTraits {
	return t.withBit(noPartialFillsFlag, !allow)
}

func (t MakerTraits) IsMultipleFillsAllowed() bool {
	return t.bit(allowMultipleFillsFlag)
}

func (t MakerTraits) WithMultipleFills(allow bool) MakerTraits {
	return t.withBit(allowMultipleFillsFlag, allow)
}

func (t MakerTraits) HasPreInteraction() bool {
	return t.bit(preInteractionCallFlag)
}

func (t MakerTraits) WithPreInteraction(on bool) MakerTraits {
	return t.withBit(preInteractionCallFlag, on)
}

func (t MakerTraits) HasPostInteraction() bool {
	return t.bit(postInteractionCallFlag)
}

func (t MakerTraits) WithPostInteraction(on bool) MakerTraits {
	return t.withBit(postInteractionCallFlag, on)
}

func (t MakerTraits) IsPermit2() bool {
	return t.bit(usePermit2Flag)
}

func (t MakerTraits) WithPermit2(on bool) MakerTraits {
	return t.withBit(usePermit2Flag, on)
}

func (t MakerTraits) IsNativeUnwrapEnabled() bool {
	return t.bit(unwrapWethFlag)
}

func (t MakerTraits) WithNativeUnwrap(on bool) MakerTraits {
	return t.withBit(unwrapWethFlag, on)
}

// IsBitInvalidatorMode reports whether the order is invalidated through a nonce bit,
// which is the case unless both partial and multiple fills are allowed.
func (t MakerTraits) IsBitInvalidatorMode() bool {
	return !t.IsPartialFillAllowed() || !t.IsMultipleFillsAllowed()
}
