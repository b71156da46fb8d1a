package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is a sale transaction.
// Tipo: "orden_compra" | "factura_b"
// CajaID null means the sale is still open; once a caja closing assigns it,
// the venta and its detalles become immutable.
type Venta struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FechaYHora       time.Time       `gorm:"index;not null"`
	Tipo             string          `gorm:"type:varchar(20);not null;default:'orden_compra'"`
	ImporteTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DescuentoGeneral decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	CajaID           *uuid.UUID      `gorm:"type:uuid;index"`

	// Fiscal fields — populated only when the sale was invoiced through ARCA.
	// CAE present means Tipo can no longer change.
	TipoComprobante *string    `gorm:"type:varchar(30)"`
	NroComprobante  *string    `gorm:"type:varchar(20)"`
	CAE             *string    `gorm:"type:varchar(20);column:cae"`
	CAEVencimiento  *time.Time `gorm:"column:cae_vencimiento"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Detalles []VentaDetalle `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
	Caja     *Caja          `gorm:"foreignKey:CajaID"`
}

// VentaDetalle is one line of a sale. ProductoID null marks a manually
// entered, off-catalog item; NombreProducto is always the snapshot taken at
// sale time, independent of later catalog renames.
type VentaDetalle struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	ProductoID     *uuid.UUID `gorm:"type:uuid;index"`
	NombreProducto string     `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Cantidad       int             `gorm:"not null"`
	DescuentoPct   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM pluralization (venta_detalles keeps the original
// schema name).
func (VentaDetalle) TableName() string { return "venta_detalles" }
