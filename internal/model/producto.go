package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog entry of the distributor.
// PrecioFinal is derived from PrecioLista and UtilidadPct (or vice versa);
// exactly one of the two acts as driver per edit — see internal/pricing.
type Producto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string          `gorm:"index;not null"`
	CodigoBarras *string         `gorm:"uniqueIndex"`
	PrecioLista  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// UtilidadPct is the markup applied over PrecioLista
	UtilidadPct *decimal.Decimal `gorm:"type:decimal(5,2)"`
	PrecioFinal *decimal.Decimal `gorm:"type:decimal(10,2)"`
	// Stock may go transiently negative; every change is an atomic
	// stock = stock + delta statement plus a MovimientoStock record.
	Stock     int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PrecioVigente is the unit price a sale line takes by default.
func (p *Producto) PrecioVigente() decimal.Decimal {
	if p.PrecioFinal != nil {
		return *p.PrecioFinal
	}
	return p.PrecioLista
}
