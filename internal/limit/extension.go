package limit

import (
	"fmt"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/codec"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

const segmentCount = 8

// Extension carries the variable-length order data read by the protocol callbacks.
//
// Wire layout when non-empty:
//
//	32-byte header of cumulative u32 offsets (segment i at bits [32i, 32i+32))
//	|| the 8 segments in field order || CustomData
type Extension struct {
	MakerAssetSuffix []byte
	TakerAssetSuffix []byte
	MakingAmountData []byte
	TakingAmountData []byte
	Predicate        []byte
	MakerPermit      []byte
	PreInteraction   []byte
	PostInteraction  []byte
	CustomData       []byte
}

func (e Extension) segments() [segmentCount][]byte {
	return [segmentCount][]byte{
		e.MakerAssetSuffix,
		e.TakerAssetSuffix,
		e.MakingAmountData,
		e.TakingAmountData,
		e.Predicate,
		e.MakerPermit,
		e.PreInteraction,
		e.PostInteraction,
	}
}

func (e *Extension) segmentPtrs() [segmentCount]*[]byte {
	return [segmentCount]*[]byte{
		&e.MakerAssetSuffix,
		&e.TakerAssetSuffix,
		&e.MakingAmountData,
		&e.TakingAmountData,
		&e.Predicate,
		&e.MakerPermit,
		&e.PreInteraction,
		&e.PostInteraction,
	}
}

func (e Extension) IsEmpty() bool {
	for _, s := range e.segments() {
		if len(s) > 0 {
			return false
		}
	}
	return len(e.CustomData) == 0
}

// Encode returns the wire bytes; an empty extension encodes to nothing.
func (e Extension) Encode() []byte {
	if e.IsEmpty() {
		return []byte{}
	}

	var header [32]byte
	sum := 0
	body := codec.NewBuilder()
	for i, s := range e.segments() {
		sum += len(s)
		// segment 0 lives in the least significant 4 bytes of the word
		pos := 28 - 4*i
		header[pos] = byte(sum >> 24)
		header[pos+1] = byte(sum >> 16)
		header[pos+2] = byte(sum >> 8)
		header[pos+3] = byte(sum)
		body.Bytes(s)
	}

	return codec.NewBuilder().
		Bytes(header[:]).
		Bytes(body.Build()).
		Bytes(e.CustomData).
		Build()
}

func (e Extension) Hex() string {
	return hexutil.Encode(e.Encode())
}

// Keccak256 hashes the encoded extension.
func (e Extension) Keccak256() common.Hash {
	return crypto.Keccak256Hash(e.Encode())
}

// WithPostInteraction returns a copy with the post-interaction segment replaced.
func (e Extension) WithPostInteraction(data []byte) Extension {
	e.PostInteraction = append([]byte(nil), data...)
	return e
}

// AppendPostInteraction returns a copy with data appended to the post-interaction segment.
func (e Extension) AppendPostInteraction(data []byte) Extension {
	joined := make([]byte, 0, len(e.PostInteraction)+len(data))
	joined = append(joined, e.PostInteraction...)
	e.PostInteraction = append(joined, data...)
	return e
}

// DecodeExtension parses the wire form produced by Encode.
func DecodeExtension(data []byte) (Extension, error) {
	var ext Extension
	if len(data) == 0 {
		return ext, nil
	}

	r := codec.NewReader(data, "extension")
	offsets, err := r.Uint256(codec.Front)
	if err != nil {
		return Extension{}, err
	}

	mask := uint256.NewInt(0xffffffff)
	consumed := uint64(0)
	for i, dst := range ext.segmentPtrs() {
		end := new(uint256.Int).Rsh(offsets, uint(32*i))
		end.And(end, mask)
		off := end.Uint64()
		if off < consumed {
			return Extension{}, apperrors.NewDecode("extension", fmt.Sprintf("offset of segment %d goes backwards", i), nil)
		}
		seg, err := r.Next(int(off-consumed), codec.Front)
		if err != nil {
			return Extension{}, err
		}
		*dst = append([]byte(nil), seg...)
		consumed = off
	}
	ext.CustomData = append([]byte(nil), r.Rest()...)
	return ext, nil
}

// DecodeExtensionHex accepts a 0x-prefixed hex string.
func DecodeExtensionHex(s string) (Extension, error) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return Extension{}, apperrors.NewDecode("extension", "invalid hex", err)
	}
	return DecodeExtension(raw)
}
