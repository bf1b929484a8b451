package limit

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// OrderInfo is what the maker decides; the salt is optional and derived when nil.
type OrderInfo struct {
	MakerAsset   common.Address
	TakerAsset   common.Address
	MakingAmount *uint256.Int
	TakingAmount *uint256.Int
	Maker        common.Address
	// Receiver defaults to the zero address, which the protocol reads as the maker.
	Receiver common.Address
	Salt     *uint256.Int
}

// Order is the 8-field record signed by the maker.
type Order struct {
	Salt         uint256.Int
	Maker        common.Address
	Receiver     common.Address
	MakerAsset   common.Address
	TakerAsset   common.Address
	MakingAmount uint256.Int
	TakingAmount uint256.Int
	MakerTraits  MakerTraits

	extension Extension
}

// NewOrder assembles an order committed to ext. A nil info.Salt is derived from
// a random base; a supplied salt must already commit to ext.
func NewOrder(info OrderInfo, traits MakerTraits, ext Extension, rnd io.Reader) (*Order, error) {
	if info.MakingAmount == nil || info.TakingAmount == nil {
		return nil, apperrors.NewValidation("amount", "making and taking amounts are required")
	}
	if info.MakerAsset == chain.NativeCurrency {
		return nil, apperrors.NewValidation("maker_asset", "native currency cannot be the maker asset; use the wrapped token")
	}

	salt := info.Salt
	if salt == nil {
		var err error
		salt, err = BuildSalt(ext, nil, rnd)
		if err != nil {
			return nil, err
		}
	}
	if err := VerifySalt(salt, ext); err != nil {
		return nil, err
	}
	if !ext.IsEmpty() {
		traits = traits.WithExtension()
	}

	return &Order{
		Salt:         *salt,
		Maker:        info.Maker,
		Receiver:     info.Receiver,
		MakerAsset:   info.MakerAsset,
		TakerAsset:   info.TakerAsset,
		MakingAmount: *info.MakingAmount,
		TakingAmount: *info.TakingAmount,
		MakerTraits:  traits,
		extension:    ext,
	}, nil
}

// Extension returns the extension the salt commits to.
func (o *Order) Extension() Extension {
	return o.extension
}

// Attach binds a parsed order to its extension once the salt is checked against it.
func (o *Order) Attach(ext Extension) error {
	if err := VerifySalt(&o.Salt, ext); err != nil {
		return err
	}
	o.extension = ext
	return nil
}

// OrderV4 is the JSON shape the relayer expects: uint256 fields as decimal strings.
type OrderV4 struct {
	Salt         string `json:"salt"`
	Maker        string `json:"maker"`
	Receiver     string `json:"receiver"`
	MakerAsset   string `json:"makerAsset"`
	TakerAsset   string `json:"takerAsset"`
	MakingAmount string `json:"makingAmount"`
	TakingAmount string `json:"takingAmount"`
	MakerTraits  string `json:"makerTraits"`
}

func (o *Order) V4() OrderV4 {
	return OrderV4{
		Salt:         o.Salt.Dec(),
		Maker:        lowerHex(o.Maker),
		Receiver:     lowerHex(o.Receiver),
		MakerAsset:   lowerHex(o.MakerAsset),
		TakerAsset:   lowerHex(o.TakerAsset),
		MakingAmount: o.MakingAmount.Dec(),
		TakingAmount: o.TakingAmount.Dec(),
		MakerTraits:  o.MakerTraits.String(),
	}
}

func (o *Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.V4())
}

// UnmarshalJSON parses the V4 shape. The extension is not part of it.
func (o *Order) UnmarshalJSON(data []byte) error {
	var v OrderV4
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := v.Order()
	if err != nil {
		return err
	}
	*o = *parsed
	return nil
}

// Order parses the wire form back into an Order without an extension.
func (v OrderV4) Order() (*Order, error) {
	var o Order
	nums := []struct {
		field string
		src   string
		dst   *uint256.Int
	}{
		{"salt", v.Salt, &o.Salt},
		{"makingAmount", v.MakingAmount, &o.MakingAmount},
		{"takingAmount", v.TakingAmount, &o.TakingAmount},
	}
	for _, n := range nums {
		if err := n.dst.SetFromDecimal(n.src); err != nil {
			return nil, apperrors.NewDecode(n.field, fmt.Sprintf("invalid uint256 %q", n.src), err)
		}
	}
	var traits uint256.Int
	if err := traits.SetFromDecimal(v.MakerTraits); err != nil {
		return nil, apperrors.NewDecode("makerTraits", fmt.Sprintf("invalid uint256 %q", v.MakerTraits), err)
	}
	o.MakerTraits = NewMakerTraits(&traits)

	addrs := []struct {
		field string
		src   string
		dst   *common.Address
	}{
		{"maker", v.Maker, &o.Maker},
		{"receiver", v.Receiver, &o.Receiver},
		{"makerAsset", v.MakerAsset, &o.MakerAsset},
		{"takerAsset", v.TakerAsset, &o.TakerAsset},
	}
	for _, a := range addrs {
		if !common.IsHexAddress(a.src) {
			return nil, apperrors.NewDecode(a.field, fmt.Sprintf("invalid address %q", a.src), nil)
		}
		*a.dst = common.HexToAddress(a.src)
	}
	return &o, nil
}

func lowerHex(a common.Address) string {
	return "0x" + common.Bytes2Hex(a.Bytes())
}
