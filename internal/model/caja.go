package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Caja is a cash-register closing: a point-in-time snapshot of the open
// sales of the day. TotalRecaudado is fixed at creation and never
// recomputed; cajas are append-only history, never updated or deleted.
type Caja struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FechaYHoraCierre  time.Time       `gorm:"index;not null"`
	TotalRecaudado    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CantidadVentas    int             `gorm:"not null;default:0"`
	CreatedAt         time.Time

	Ventas []Venta `gorm:"foreignKey:CajaID"`
}
