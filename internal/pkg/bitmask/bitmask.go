// Package bitmask reads and writes contiguous bit ranges of a 256-bit word.
package bitmask

import (
	"fmt"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/holiman/uint256"
)

// BitMask selects bits [offset, offset+width) of a 256-bit word.
type BitMask struct {
	offset uint
	width  uint
	mask   uint256.Int
}

// New returns the mask covering bits [start, end).
func New(start, end uint) (BitMask, error) {
	if start >= end {
		return BitMask{}, apperrors.NewValidation("bitmask", fmt.Sprintf("start %d must be less than end %d", start, end))
	}
	if end > 256 {
		return BitMask{}, apperrors.NewValidation("bitmask", fmt.Sprintf("end %d exceeds 256 bits", end))
	}
	m := BitMask{offset: start, width: end - start}
	m.mask.SetAllOne()
	m.mask.Rsh(&m.mask, 256-m.width)
	return m, nil
}

// MustNew is New for package level layouts with constant bounds.
func MustNew(start, end uint) BitMask {
	m, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return m
}

// Bit returns the single-bit mask at position n.
func Bit(n uint) BitMask {
	return MustNew(n, n+1)
}

func (m BitMask) Offset() uint { return m.offset }

func (m BitMask) Width() uint { return m.width }

// Max is the largest value the range can hold.
func (m BitMask) Max() *uint256.Int {
	return m.mask.Clone()
}

// Fits reports whether bits can be stored without truncation.
func (m BitMask) Fits(bits *uint256.Int) bool {
	return !bits.Gt(&m.mask)
}

// GetFrom returns (value >> offset) & mask.
func (m BitMask) GetFrom(value *uint256.Int) *uint256.Int {
	out := new(uint256.Int).Rsh(value, m.offset)
	return out.And(out, &m.mask)
}

// SetAt returns value with the masked range replaced by bits. Bits wider than the
// range are truncated; callers that care check Fits first.
func (m BitMask) SetAt(value, bits *uint256.Int) *uint256.Int {
	shifted := new(uint256.Int).Lsh(&m.mask, m.offset)
	cleared := new(uint256.Int).Not(shifted)
	cleared.And(cleared, value)

	b := new(uint256.Int).And(bits, &m.mask)
	b.Lsh(b, m.offset)
	return cleared.Or(cleared, b)
}

// IsSet reports whether any bit of the range is set.
func (m BitMask) IsSet(value *uint256.Int) bool {
	return !m.GetFrom(value).IsZero()
}

func (m BitMask) String() string {
	return fmt.Sprintf("bits[%d:%d)", m.offset, m.offset+m.width)
}
