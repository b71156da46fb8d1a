package repository

import (
	"context"

	"distripos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	// FindVentasAbiertasTx selects the open (caja_id null) sales under a
	// FOR UPDATE row lock: the snapshot is fixed here, concurrent closes
	// block on each other, and concurrently created sales stay out.
	FindVentasAbiertasTx(ctx context.Context, tx *gorm.DB) ([]model.Venta, error)
	CreateCajaTx(ctx context.Context, tx *gorm.DB, c *model.Caja) error
	// AsignarVentasTx stamps caja_id on exactly the snapshot ids — the set
	// is never re-evaluated.
	AsignarVentasTx(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID, ventaIDs []uuid.UUID) error

	SumVentasAbiertasPorTipo(ctx context.Context) (map[string]decimal.Decimal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	List(ctx context.Context, page, limit int) ([]model.Caja, int64, error)
	VentasPorCaja(ctx context.Context, cajaID uuid.UUID) ([]model.Venta, error)

	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) FindVentasAbiertasTx(ctx context.Context, tx *gorm.DB) ([]model.Venta, error) {
	var ventas []model.Venta
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("caja_id IS NULL").
		Find(&ventas).Error
	return ventas, err
}

func (r *cajaRepo) CreateCajaTx(ctx context.Context, tx *gorm.DB, c *model.Caja) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) AsignarVentasTx(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID, ventaIDs []uuid.UUID) error {
	return tx.WithContext(ctx).Model(&model.Venta{}).
		Where("id IN ?", ventaIDs).
		Update("caja_id", cajaID).Error
}

func (r *cajaRepo) SumVentasAbiertasPorTipo(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []struct {
		Tipo  string
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("tipo, COALESCE(SUM(importe_total), 0) AS total").
		Where("caja_id IS NULL").
		Group("tipo").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.Tipo] = row.Total
	}
	return sums, nil
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *cajaRepo) List(ctx context.Context, page, limit int) ([]model.Caja, int64, error) {
	var cajas []model.Caja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Caja{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("fecha_y_hora_cierre DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&cajas).Error
	return cajas, total, err
}

func (r *cajaRepo) VentasPorCaja(ctx context.Context, cajaID uuid.UUID) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").
		Where("caja_id = ?", cajaID).
		Order("fecha_y_hora ASC").
		Find(&ventas).Error
	return ventas, err
}
