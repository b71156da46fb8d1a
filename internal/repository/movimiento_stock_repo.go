package repository

import (
	"context"

	"distripos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoStockRepository persists the append-only stock audit trail.
// Movements are never updated or deleted.
type MovimientoStockRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	List(ctx context.Context, productoID *uuid.UUID, page, limit int) ([]model.MovimientoStock, int64, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *movimientoStockRepo) List(ctx context.Context, productoID *uuid.UUID, page, limit int) ([]model.MovimientoStock, int64, error) {
	var movs []model.MovimientoStock
	var total int64

	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{})
	if productoID != nil {
		q = q.Where("producto_id = ?", *productoID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&movs).Error
	return movs, total, err
}
