package signer

import (
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// VerifyHashSignature checks that signature over hash recovers to expected.
// V may be given as 0/1 or 27/28.
func VerifyHashSignature(hash common.Hash, signature []byte, expected common.Address) error {
	if len(signature) != crypto.SignatureLength {
		return apperrors.NewValidation("signature", "must be 65 bytes")
	}
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, signature)
	// Normalize V to 0/1 for recovery.
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(hash.Bytes(), sig)
	if err != nil {
		return apperrors.New(apperrors.ErrAuthFailed, "signature recovery failed", err)
	}
	if recovered := crypto.PubkeyToAddress(*pub); recovered != expected {
		return apperrors.New(apperrors.ErrAuthFailed, "signature does not match the maker", nil)
	}
	return nil
}
