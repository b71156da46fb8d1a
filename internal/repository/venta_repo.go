package repository

import (
	"context"

	"distripos/internal/dto"
	"distripos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	// CreateHeaderTx persists the venta row only; detalles go through
	// CreateDetallesTx so the engine controls the write sequence and can
	// compensate a partial failure.
	CreateHeaderTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	CreateDetallesTx(ctx context.Context, tx *gorm.DB, detalles []model.VentaDetalle) error
	// DeleteTx removes the venta and cascades its detalles.
	DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	UpdateTipo(ctx context.Context, id uuid.UUID, tipo string) error

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateHeaderTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Omit("Detalles").Create(v).Error
}

func (r *ventaRepo) CreateDetallesTx(ctx context.Context, tx *gorm.DB, detalles []model.VentaDetalle) error {
	return tx.WithContext(ctx).Create(&detalles).Error
}

func (r *ventaRepo) DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if err := tx.WithContext(ctx).Where("venta_id = ?", id).Delete(&model.VentaDetalle{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&model.Venta{}, id).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Detalles.Producto").First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Fecha != "" {
		q = q.Where("DATE(fecha_y_hora) = ?", filter.Fecha)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orden := "fecha_y_hora DESC"
	if filter.Orden == "asc" {
		orden = "fecha_y_hora ASC"
	}

	err := q.Preload("Detalles.Producto").
		Order(orden).
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) UpdateTipo(ctx context.Context, id uuid.UUID, tipo string) error {
	return r.db.WithContext(ctx).Model(&model.Venta{}).Where("id = ?", id).Update("tipo", tipo).Error
}
