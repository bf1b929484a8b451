// Package codec packs and unpacks the tightly laid out big-endian byte strings
// consumed by the settlement contracts.
package codec

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Builder appends fixed-width big-endian fields.
type Builder struct {
	buf []byte
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Uint8(v uint8) *Builder {
	b.buf = append(b.buf, v)
	return b
}

func (b *Builder) Uint16(v uint16) *Builder {
	b.buf = binary.BigEndian.AppendUint16(b.buf, v)
	return b
}

// Uint24 writes the low 24 bits of v.
func (b *Builder) Uint24(v uint32) *Builder {
	b.buf = append(b.buf, byte(v>>16), byte(v>>8), byte(v))
	return b
}

func (b *Builder) Uint32(v uint32) *Builder {
	b.buf = binary.BigEndian.AppendUint32(b.buf, v)
	return b
}

func (b *Builder) Uint64(v uint64) *Builder {
	b.buf = binary.BigEndian.AppendUint64(b.buf, v)
	return b
}

// Uint writes the low size bytes of v.
func (b *Builder) Uint(v *uint256.Int, size int) *Builder {
	word := v.Bytes32()
	b.buf = append(b.buf, word[32-size:]...)
	return b
}

func (b *Builder) Uint128(v *uint256.Int) *Builder { return b.Uint(v, 16) }

func (b *Builder) Uint160(v *uint256.Int) *Builder { return b.Uint(v, 20) }

func (b *Builder) Uint256(v *uint256.Int) *Builder { return b.Uint(v, 32) }

func (b *Builder) Address(a common.Address) *Builder {
	b.buf = append(b.buf, a.Bytes()...)
	return b
}

func (b *Builder) Hash(h common.Hash) *Builder {
	b.buf = append(b.buf, h.Bytes()...)
	return b
}

// Bytes appends raw bytes without a length prefix.
func (b *Builder) Bytes(p []byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}

func (b *Builder) Len() int {
	return len(b.buf)
}

// Build returns a copy of the accumulated bytes.
func (b *Builder) Build() []byte {
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}
