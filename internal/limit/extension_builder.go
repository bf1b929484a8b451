package limit

import (
	"github.com/ethereum/go-ethereum/common"
)

// ExtensionBuilder assembles an Extension segment by segment. Each With call
// returns an updated copy.
type ExtensionBuilder struct {
	ext Extension
}

func NewExtensionBuilder() ExtensionBuilder {
	return ExtensionBuilder{}
}

func (b ExtensionBuilder) WithMakerAssetSuffix(suffix []byte) ExtensionBuilder {
	b.ext.MakerAssetSuffix = clone(suffix)
	return b
}

func (b ExtensionBuilder) WithTakerAssetSuffix(suffix []byte) ExtensionBuilder {
	b.ext.TakerAssetSuffix = clone(suffix)
	return b
}

// WithMakingAmountData sets target || data as the making amount getter.
func (b ExtensionBuilder) WithMakingAmountData(target common.Address, data []byte) ExtensionBuilder {
	b.ext.MakingAmountData = Interaction{Target: target, Data: data}.Encode()
	return b
}

// WithTakingAmountData sets target || data as the taking amount getter.
func (b ExtensionBuilder) WithTakingAmountData(target common.Address, data []byte) ExtensionBuilder {
	b.ext.TakingAmountData = Interaction{Target: target, Data: data}.Encode()
	return b
}

func (b ExtensionBuilder) WithPredicate(predicate []byte) ExtensionBuilder {
	b.ext.Predicate = clone(predicate)
	return b
}

func (b ExtensionBuilder) WithMakerPermit(token common.Address, permit []byte) ExtensionBuilder {
	b.ext.MakerPermit = Interaction{Target: token, Data: permit}.Encode()
	return b
}

func (b ExtensionBuilder) WithPreInteraction(i Interaction) ExtensionBuilder {
	b.ext.PreInteraction = i.Encode()
	return b
}

func (b ExtensionBuilder) WithPostInteraction(i Interaction) ExtensionBuilder {
	b.ext.PostInteraction = i.Encode()
	return b
}

func (b ExtensionBuilder) WithCustomData(data []byte) ExtensionBuilder {
	b.ext.CustomData = clone(data)
	return b
}

func (b ExtensionBuilder) Build() Extension {
	return b.ext
}

func clone(p []byte) []byte {
	if len(p) == 0 {
		return nil
	}
	return append([]byte(nil), p...)
}
