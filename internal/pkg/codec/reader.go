package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Side selects which end of the buffer a read consumes.
type Side int

const (
	Front Side = iota
	Back
)

// Reader consumes fixed-width big-endian fields from either end of a buffer.
// Reads past the remaining bytes fail with a decode error and consume nothing.
type Reader struct {
	data  []byte
	field string
}

// NewReader reads from data. field names the payload in decode errors.
func NewReader(data []byte, field string) *Reader {
	return &Reader{data: data, field: field}
}

func (r *Reader) Remaining() int {
	return len(r.data)
}

func (r *Reader) Empty() bool {
	return len(r.data) == 0
}

// Rest consumes and returns everything left.
func (r *Reader) Rest() []byte {
	out := r.data
	r.data = nil
	return out
}

// Next consumes n bytes from the given side.
func (r *Reader) Next(n int, side Side) ([]byte, error) {
	if n < 0 || n > len(r.data) {
		return nil, apperrors.NewDecode(r.field, fmt.Sprintf("need %d bytes, have %d", n, len(r.data)), nil)
	}
	var out []byte
	if side == Back {
		out = r.data[len(r.data)-n:]
		r.data = r.data[:len(r.data)-n]
	} else {
		out = r.data[:n]
		r.data = r.data[n:]
	}
	return out, nil
}

func (r *Reader) Uint8(side Side) (uint8, error) {
	p, err := r.Next(1, side)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (r *Reader) Uint16(side Side) (uint16, error) {
	p, err := r.Next(2, side)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

func (r *Reader) Uint24(side Side) (uint32, error) {
	p, err := r.Next(3, side)
	if err != nil {
		return 0, err
	}
	return uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2]), nil
}

func (r *Reader) Uint32(side Side) (uint32, error) {
	p, err := r.Next(4, side)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

func (r *Reader) Uint64(side Side) (uint64, error) {
	p, err := r.Next(8, side)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(p), nil
}

// Uint reads a size-byte unsigned integer.
func (r *Reader) Uint(size int, side Side) (*uint256.Int, error) {
	if size > 32 {
		return nil, apperrors.NewDecode(r.field, fmt.Sprintf("integer width %d exceeds 32 bytes", size), nil)
	}
	p, err := r.Next(size, side)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(p), nil
}

func (r *Reader) Uint256(side Side) (*uint256.Int, error) {
	return r.Uint(32, side)
}

func (r *Reader) Address(side Side) (common.Address, error) {
	p, err := r.Next(common.AddressLength, side)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(p), nil
}

func (r *Reader) Hash(side Side) (common.Hash, error) {
	p, err := r.Next(common.HashLength, side)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(p), nil
}
