package limit

import (
	"github.com/GoPolymarket/fusiongate/internal/pkg/codec"
	"github.com/ethereum/go-ethereum/common"
)

// Interaction is a callback the protocol makes into Target with Data.
type Interaction struct {
	Target common.Address
	Data   []byte
}

// Encode returns target || data.
func (i Interaction) Encode() []byte {
	return codec.NewBuilder().Address(i.Target).Bytes(i.Data).Build()
}

func DecodeInteraction(data []byte) (Interaction, error) {
	r := codec.NewReader(data, "interaction")
	target, err := r.Address(codec.Front)
	if err != nil {
		return Interaction{}, err
	}
	return Interaction{Target: target, Data: append([]byte(nil), r.Rest()...)}, nil
}
