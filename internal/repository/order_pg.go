package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoPolymarket/fusiongate/internal/model"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// PostgresOrderRepo stores prepared orders in the prepared_orders table.
type PostgresOrderRepo struct {
	db *gorm.DB
}

func NewPostgresOrderRepo(db *gorm.DB) (*PostgresOrderRepo, error) {
	if err := db.AutoMigrate(&model.OrderRecord{}); err != nil {
		return nil, fmt.Errorf("migrate prepared_orders: %w", err)
	}
	return &PostgresOrderRepo{db: db}, nil
}

func (r *PostgresOrderRepo) SaveOrder(ctx context.Context, rec *model.OrderRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *PostgresOrderRepo) GetOrder(ctx context.Context, orderHash common.Hash) (*model.OrderRecord, error) {
	var rec model.OrderRecord
	err := r.db.WithContext(ctx).Where("hash = ?", orderHash.Hex()).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("order " + orderHash.Hex() + " not found")
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresOrderRepo) MarkSubmitted(ctx context.Context, orderHash common.Hash, signature string) error {
	res := r.db.WithContext(ctx).Model(&model.OrderRecord{}).
		Where("hash = ?", orderHash.Hex()).
		Updates(map[string]interface{}{
			"signature": signature,
			"status":    model.OrderStatusPending,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFound("order " + orderHash.Hex() + " not found")
	}
	return nil
}
