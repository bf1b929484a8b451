package fusion

import (
	"bytes"

	"github.com/GoPolymarket/fusiongate/internal/limit"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
)

// OrderExtension is an extension shape an order can carry. The set is closed:
// *Extension and the cross-chain escrow extension, which embeds it.
type OrderExtension interface {
	// Build renders the limit order extension the salt commits to.
	Build() (limit.Extension, error)
	// Fusion returns the auction part shared by every shape.
	Fusion() *Extension
	sealed()
}

// Extension is the settlement extension of an auction order.
type Extension struct {
	Settlement      common.Address
	AuctionDetails  AuctionDetails
	PostInteraction PostInteractionData
	MakerPermit     *limit.Interaction
}

func NewExtension(settlement common.Address, details AuctionDetails, post PostInteractionData, permit *limit.Interaction) *Extension {
	return &Extension{
		Settlement:      settlement,
		AuctionDetails:  details,
		PostInteraction: post,
		MakerPermit:     permit,
	}
}

func (Extension) sealed() {}

func (e *Extension) Fusion() *Extension { return e }

// Build puts the auction schedule behind both amount getters and the suffix
// behind the post interaction, all targeting the settlement contract.
func (e *Extension) Build() (limit.Extension, error) {
	amountData := e.AuctionDetails.Encode()
	b := limit.NewExtensionBuilder().
		WithMakingAmountData(e.Settlement, amountData).
		WithTakingAmountData(e.Settlement, amountData).
		WithPostInteraction(limit.Interaction{Target: e.Settlement, Data: e.PostInteraction.Encode()})
	if e.MakerPermit != nil {
		b = b.WithMakerPermit(e.MakerPermit.Target, e.MakerPermit.Data)
	}
	return b.Build(), nil
}

// DecodeExtension recovers an Extension from what Build produced.
func DecodeExtension(ext limit.Extension) (*Extension, error) {
	making, err := limit.DecodeInteraction(ext.MakingAmountData)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(ext.MakingAmountData, ext.TakingAmountData) {
		return nil, apperrors.NewDecode("taking_amount_data", "does not match making amount data", nil)
	}
	details, err := DecodeAuctionDetails(making.Data)
	if err != nil {
		return nil, err
	}

	post, err := limit.DecodeInteraction(ext.PostInteraction)
	if err != nil {
		return nil, err
	}
	if post.Target != making.Target {
		return nil, apperrors.NewDecode("post_interaction", "settlement target differs from amount getter", nil)
	}
	data, err := DecodePostInteractionData(post.Data)
	if err != nil {
		return nil, err
	}

	out := &Extension{Settlement: making.Target, AuctionDetails: details, PostInteraction: data}
	if len(ext.MakerPermit) > 0 {
		permit, err := limit.DecodeInteraction(ext.MakerPermit)
		if err != nil {
			return nil, err
		}
		out.MakerPermit = &permit
	}
	return out, nil
}
