package quote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
)

// Amount is a token amount in base units, carried as a decimal string on the wire.
type Amount struct {
	uint256.Int
}

func NewAmount(v uint64) Amount {
	return Amount{Int: *uint256.NewInt(v)}
}

func ParseAmount(s string) (Amount, error) {
	var a Amount
	if err := a.SetFromDecimal(s); err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return a, nil
}

// Uint256 returns a copy safe to hand to builders.
func (a Amount) Uint256() *uint256.Int {
	return a.Int.Clone()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Dec())
}

// UnmarshalJSON accepts a decimal string or a bare JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Number is a small integer some quoter versions send as a string.
type Number uint64

func (n *Number) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*n = Number(v)
	return nil
}
