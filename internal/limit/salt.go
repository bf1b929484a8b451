package limit

import (
	"io"
	"regexp"

	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/bitmask"
	"github.com/GoPolymarket/fusiongate/internal/pkg/random"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

var (
	extensionHashMask = bitmask.MustNew(0, 160)
	trackCodeMask     = bitmask.MustNew(224, 256)

	hexSource = regexp.MustCompile(`^0x[0-9a-fA-F]*$`)
)

// saltBaseBytes is the width of a random salt base (96 bits).
const saltBaseBytes = 12

// BuildSalt derives an order salt bound to ext. A nil base is drawn from rnd.
// For a non-empty extension the low 160 bits carry keccak(ext).
func BuildSalt(ext Extension, base *uint256.Int, rnd io.Reader) (*uint256.Int, error) {
	if base == nil {
		b, err := random.Uint(rnd, saltBaseBytes)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrInternal, "draw salt base", err)
		}
		base = b
	}
	if base.BitLen() > saltBaseBytes*8 {
		return nil, apperrors.NewValidation("salt_base", "salt base exceeds 96 bits")
	}
	if ext.IsEmpty() {
		return base.Clone(), nil
	}

	hash := new(uint256.Int).SetBytes(ext.Keccak256().Bytes())
	salt := new(uint256.Int).Lsh(base, 160)
	return salt.Or(salt, extensionHashMask.GetFrom(hash)), nil
}

// VerifySalt checks that salt commits to ext.
func VerifySalt(salt *uint256.Int, ext Extension) error {
	if ext.IsEmpty() {
		return nil
	}
	hash := new(uint256.Int).SetBytes(ext.Keccak256().Bytes())
	if !extensionHashMask.GetFrom(salt).Eq(extensionHashMask.GetFrom(hash)) {
		return apperrors.NewValidation("salt", "low 160 bits do not match the extension hash")
	}
	return nil
}

// TrackCode maps a source tag to the 32-bit attribution code stored in the salt.
// A 0x-prefixed 4-byte hex tag is used as is, a 0x-prefixed 32-byte hex tag
// contributes its first 4 bytes, anything else is hashed.
func TrackCode(source string) *uint256.Int {
	if hexSource.MatchString(source) {
		switch len(source) {
		case 10:
			return uint256.MustFromHex(trimHexZeros(source))
		case 66:
			return uint256.MustFromHex(trimHexZeros(source[:10]))
		}
	}
	hash := crypto.Keccak256([]byte(source))
	return new(uint256.Int).SetBytes(hash[:5])
}

// InjectTrackCode writes the track code of source into bits [224, 256) of salt.
// An empty source clears the field.
func InjectTrackCode(salt *uint256.Int, source string) *uint256.Int {
	code := new(uint256.Int)
	if source != "" {
		code = TrackCode(source)
	}
	return trackCodeMask.SetAt(salt, code)
}

// uint256.FromHex rejects leading zeros, so strip them.
func trimHexZeros(s string) string {
	digits := s[2:]
	i := 0
	for i < len(digits)-1 && digits[i] == '0' {
		i++
	}
	return "0x" + digits[i:]
}
