package crosschain

import (
	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/limit"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SubmissionPayload is the relayer request for a signed order.
type SubmissionPayload struct {
	SrcChainID   chain.ID      `json:"srcChainId"`
	Order        limit.OrderV4 `json:"order"`
	Signature    hexutil.Bytes `json:"signature"`
	QuoteID      string        `json:"quoteId"`
	Extension    hexutil.Bytes `json:"extension"`
	SecretHashes []common.Hash `json:"secretHashes,omitempty"`
}

// NewSubmission pairs an order with the maker's signature. Secret hashes are
// only sent for orders that can be filled more than once.
func NewSubmission(srcChain chain.ID, order *limit.Order, quoteID string, signature []byte, secretHashes []common.Hash) (*SubmissionPayload, error) {
	if len(signature) == 0 {
		return nil, apperrors.NewValidation("signature", "required")
	}
	payload := &SubmissionPayload{
		SrcChainID: srcChain,
		Order:      order.V4(),
		Signature:  append(hexutil.Bytes(nil), signature...),
		QuoteID:    quoteID,
		Extension:  order.Extension().Encode(),
	}
	if order.MakerTraits.IsMultipleFillsAllowed() {
		if len(secretHashes) == 0 {
			return nil, apperrors.NewValidation("secretHashes", "required for orders with multiple fills")
		}
		payload.SecretHashes = append([]common.Hash(nil), secretHashes...)
	}
	return payload, nil
}

func (p *PreparedOrder) Submission(signature []byte, secretHashes []common.Hash) (*SubmissionPayload, error) {
	return NewSubmission(p.SrcChainID, p.Order.Order, p.QuoteID, signature, secretHashes)
}
