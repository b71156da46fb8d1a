package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre  string `form:"nombre"`
	Barcode string `form:"barcode"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProductoRequest creates or replaces a product. Exactly one of UtilidadPct
// and PrecioFinal drives the derived price; the client states which with
// PrecioEditado ("utilidad" | "precio_final"). When both are omitted the
// product sells at list price.
type ProductoRequest struct {
	Nombre        string           `json:"nombre"        validate:"required,min=1"`
	CodigoBarras  *string          `json:"codigo_barras" validate:"omitempty,min=1"`
	PrecioLista   decimal.Decimal  `json:"precio_lista"  validate:"min=0"`
	UtilidadPct   *decimal.Decimal `json:"utilidad_pct"`
	PrecioFinal   *decimal.Decimal `json:"precio_final"`
	PrecioEditado string           `json:"precio_editado" validate:"omitempty,oneof=utilidad precio_final"`
	Stock         int              `json:"stock"`
}

type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID           string           `json:"id"`
	Nombre       string           `json:"nombre"`
	CodigoBarras *string          `json:"codigo_barras"`
	PrecioLista  decimal.Decimal  `json:"precio_lista"`
	UtilidadPct  *decimal.Decimal `json:"utilidad_pct"`
	PrecioFinal  *decimal.Decimal `json:"precio_final"`
	Stock        int              `json:"stock"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ConsultaPreciosResponse is the redis-cached payload of the public price
// check endpoint.
type ConsultaPreciosResponse struct {
	Nombre      string          `json:"nombre"`
	PrecioFinal decimal.Decimal `json:"precio_final"`
}

// MovimientoStockResponse is one entry of the stock audit trail.
type MovimientoStockResponse struct {
	ID            string  `json:"id"`
	ProductoID    string  `json:"producto_id"`
	Tipo          string  `json:"tipo"`
	Cantidad      int     `json:"cantidad"`
	StockAnterior int     `json:"stock_anterior"`
	StockNuevo    int     `json:"stock_nuevo"`
	Motivo        string  `json:"motivo"`
	ReferenciaID  *string `json:"referencia_id"`
	CreatedAt     string  `json:"created_at"`
}
