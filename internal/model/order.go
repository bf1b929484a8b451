package model

import (
	"time"

	"github.com/GoPolymarket/fusiongate/internal/limit"
)

// OrderRecord is a prepared order as stored between preparation and submission.
type OrderRecord struct {
	Hash          string        `gorm:"primaryKey;size:66" json:"hash"`
	QuoteID       string        `gorm:"size:64;index" json:"quoteId"`
	SrcChainID    uint64        `json:"srcChainId"`
	DstChainID    uint64        `json:"dstChainId"`
	Maker         string        `gorm:"size:42;index" json:"maker"`
	Preset        string        `gorm:"size:16" json:"preset"`
	Order         limit.OrderV4 `gorm:"serializer:json" json:"order"`
	Extension     string        `gorm:"type:text" json:"extension"`
	SecretHashes  []string      `gorm:"serializer:json" json:"secretHashes"`
	MultipleFills bool          `json:"multipleFills"`
	Status        OrderStatus   `gorm:"size:16;index" json:"status"`
	Signature     string        `gorm:"type:text" json:"signature,omitempty"`
	// Client prepared the order and is the only one secrets are revealed to.
	Client        string        `gorm:"size:64;index" json:"-"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (OrderRecord) TableName() string {
	return "prepared_orders"
}

// Type tells whether resolvers expect one secret or a Merkle-indexed set.
func (r *OrderRecord) Type() OrderType {
	if r.MultipleFills {
		return OrderTypeMultipleFills
	}
	return OrderTypeSingleFill
}
