package fusion

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/codec"
	"github.com/ethereum/go-ethereum/common"
)

const (
	bankFeeFlag        = 0x01
	integratorFeeFlag  = 0x02
	customReceiverFlag = 0x04
	whitelistShift     = 3

	// MaxWhitelistSize is bounded by the 5-bit count in the flags byte.
	MaxWhitelistSize = 31
)

// WhitelistItem is a resolver address half and its delay after the previous item.
type WhitelistItem struct {
	AddressHalf [10]byte
	Delay       uint16
}

// AuctionWhitelistItem allows Address to fill from the AllowFrom unix time.
type AuctionWhitelistItem struct {
	Address   common.Address
	AllowFrom uint64
}

// IntegratorFee is paid out of the taking amount, Ratio in 1e5 units.
type IntegratorFee struct {
	Receiver common.Address
	Ratio    uint16
}

// SettlementSuffixData is the input to NewPostInteractionData.
type SettlementSuffixData struct {
	Whitelist          []AuctionWhitelistItem
	IntegratorFee      *IntegratorFee
	BankFee            uint64
	ResolvingStartTime uint64
	CustomReceiver     *common.Address
}

// PostInteractionData is the settlement suffix: fees, resolver whitelist and
// the time resolvers may start filling.
type PostInteractionData struct {
	Whitelist          []WhitelistItem
	IntegratorFee      *IntegratorFee
	BankFee            uint32
	ResolvingStartTime uint32
	CustomReceiver     *common.Address
}

func AddressHalf(a common.Address) [10]byte {
	var half [10]byte
	copy(half[:], a.Bytes()[10:])
	return half
}

func NewPostInteractionData(s SettlementSuffixData) (PostInteractionData, error) {
	if len(s.Whitelist) == 0 {
		return PostInteractionData{}, apperrors.NewValidation("whitelist", "whitelist cannot be empty")
	}
	if len(s.Whitelist) > MaxWhitelistSize {
		return PostInteractionData{}, apperrors.NewValidation("whitelist", fmt.Sprintf("at most %d resolvers, got %d", MaxWhitelistSize, len(s.Whitelist)))
	}
	if s.BankFee > maxUint32 {
		return PostInteractionData{}, apperrors.NewValidation("bank_fee", fmt.Sprintf("%d exceeds %d", s.BankFee, uint64(maxUint32)))
	}
	if s.ResolvingStartTime > maxUint32 {
		return PostInteractionData{}, apperrors.NewValidation("resolving_start_time", fmt.Sprintf("%d exceeds %d", s.ResolvingStartTime, uint64(maxUint32)))
	}

	items := make([]AuctionWhitelistItem, len(s.Whitelist))
	for i, w := range s.Whitelist {
		items[i] = AuctionWhitelistItem{Address: w.Address, AllowFrom: max(w.AllowFrom, s.ResolvingStartTime)}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].AllowFrom < items[j].AllowFrom })

	whitelist := make([]WhitelistItem, len(items))
	sum := s.ResolvingStartTime
	for i, it := range items {
		delay := it.AllowFrom - sum
		if delay > maxUint16 {
			return PostInteractionData{}, apperrors.NewValidation(fmt.Sprintf("whitelist[%d]", i), fmt.Sprintf("delay %d exceeds %d", delay, maxUint16))
		}
		whitelist[i] = WhitelistItem{AddressHalf: AddressHalf(it.Address), Delay: uint16(delay)}
		sum += delay
	}

	d := PostInteractionData{
		Whitelist:          whitelist,
		BankFee:            uint32(s.BankFee),
		ResolvingStartTime: uint32(s.ResolvingStartTime),
	}
	if s.IntegratorFee != nil && s.IntegratorFee.Ratio != 0 {
		fee := *s.IntegratorFee
		d.IntegratorFee = &fee
		if s.CustomReceiver != nil && *s.CustomReceiver != (common.Address{}) {
			r := *s.CustomReceiver
			d.CustomReceiver = &r
		}
	}
	return d, nil
}

func (d PostInteractionData) flags() uint8 {
	var f uint8
	if d.BankFee != 0 {
		f |= bankFeeFlag
	}
	if d.IntegratorFee != nil && d.IntegratorFee.Ratio != 0 {
		f |= integratorFeeFlag
		if d.CustomReceiver != nil {
			f |= customReceiverFlag
		}
	}
	return f | uint8(len(d.Whitelist))<<whitelistShift
}

func (d PostInteractionData) Encode() []byte {
	flags := d.flags()
	b := codec.NewBuilder()
	if flags&bankFeeFlag != 0 {
		b.Uint32(d.BankFee)
	}
	if flags&integratorFeeFlag != 0 {
		b.Uint16(d.IntegratorFee.Ratio).Address(d.IntegratorFee.Receiver)
		if flags&customReceiverFlag != 0 {
			b.Address(*d.CustomReceiver)
		}
	}
	b.Uint32(d.ResolvingStartTime)
	for _, w := range d.Whitelist {
		b.Bytes(w.AddressHalf[:]).Uint16(w.Delay)
	}
	return b.Uint8(flags).Build()
}

// DecodePostInteractionData parses exactly one encoded suffix.
func DecodePostInteractionData(data []byte) (PostInteractionData, error) {
	r := codec.NewReader(data, "post_interaction")
	flags, err := r.Uint8(codec.Back)
	if err != nil {
		return PostInteractionData{}, err
	}

	var d PostInteractionData
	if flags&bankFeeFlag != 0 {
		if d.BankFee, err = r.Uint32(codec.Front); err != nil {
			return PostInteractionData{}, err
		}
	}
	if flags&integratorFeeFlag != 0 {
		ratio, err := r.Uint16(codec.Front)
		if err != nil {
			return PostInteractionData{}, err
		}
		receiver, err := r.Address(codec.Front)
		if err != nil {
			return PostInteractionData{}, err
		}
		d.IntegratorFee = &IntegratorFee{Receiver: receiver, Ratio: ratio}
		if flags&customReceiverFlag != 0 {
			custom, err := r.Address(codec.Front)
			if err != nil {
				return PostInteractionData{}, err
			}
			d.CustomReceiver = &custom
		}
	}
	if d.ResolvingStartTime, err = r.Uint32(codec.Front); err != nil {
		return PostInteractionData{}, err
	}

	count := int(flags >> whitelistShift)
	if count > 0 {
		d.Whitelist = make([]WhitelistItem, count)
	}
	for i := range d.Whitelist {
		half, err := r.Next(10, codec.Front)
		if err != nil {
			return PostInteractionData{}, err
		}
		copy(d.Whitelist[i].AddressHalf[:], half)
		if d.Whitelist[i].Delay, err = r.Uint16(codec.Front); err != nil {
			return PostInteractionData{}, err
		}
	}
	if !r.Empty() {
		return PostInteractionData{}, apperrors.NewDecode("post_interaction", fmt.Sprintf("%d unexpected trailing bytes", r.Remaining()), nil)
	}
	return d, nil
}

// CanExecuteAt reports whether executor may fill at unix time t.
func (d PostInteractionData) CanExecuteAt(executor common.Address, t uint64) bool {
	half := AddressHalf(executor)
	allowedFrom := uint64(d.ResolvingStartTime)
	for _, w := range d.Whitelist {
		allowedFrom += uint64(w.Delay)
		if bytes.Equal(half[:], w.AddressHalf[:]) {
			return t >= allowedFrom
		}
		if t < allowedFrom {
			return false
		}
	}
	return false
}

// IsExclusiveResolver reports whether wallet is the only resolver allowed at the
// start of resolving.
func (d PostInteractionData) IsExclusiveResolver(wallet common.Address) bool {
	if len(d.Whitelist) == 0 {
		return false
	}
	if len(d.Whitelist) > 1 && d.Whitelist[1].Delay == 0 {
		return false
	}
	return d.Whitelist[0].AddressHalf == AddressHalf(wallet)
}

// ExclusivityEnd is when resolvers other than the first may fill.
func (d PostInteractionData) ExclusivityEnd() uint64 {
	if len(d.Whitelist) < 2 {
		return uint64(d.ResolvingStartTime)
	}
	return uint64(d.ResolvingStartTime) + uint64(d.Whitelist[0].Delay) + uint64(d.Whitelist[1].Delay)
}
