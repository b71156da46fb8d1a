package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha string `form:"fecha"`              // YYYY-MM-DD; empty = no date filter
	Orden string `form:"orden,default=desc"` // asc | desc, by fecha_y_hora
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// DetalleVentaRequest is one line of a new sale. ProductoID null means a
// manual, off-catalog item: NombreProducto and PrecioUnitario become
// mandatory. With a catalog product, PrecioUnitario nil takes the product's
// current final price.
//
// EditadoPorSubtotal states the driver field: when true, Subtotal is
// authoritative and DescuentoPct is back-solved; otherwise DescuentoPct
// drives and Subtotal is recomputed.
type DetalleVentaRequest struct {
	ProductoID         *string          `json:"producto_id"         validate:"omitempty,uuid"`
	NombreProducto     string           `json:"nombre_producto"`
	PrecioUnitario     *decimal.Decimal `json:"precio_unitario"`
	Cantidad           int              `json:"cantidad"            validate:"required,min=1"`
	DescuentoPct       decimal.Decimal  `json:"descuento_pct"       validate:"min=0,max=100"`
	Subtotal           decimal.Decimal  `json:"subtotal"`
	EditadoPorSubtotal bool             `json:"editado_por_subtotal"`
}

type RegistrarVentaRequest struct {
	Tipo             string                `json:"tipo"              validate:"required,oneof=orden_compra factura_b"`
	DescuentoGeneral decimal.Decimal       `json:"descuento_general" validate:"min=0,max=100"`
	Detalles         []DetalleVentaRequest `json:"detalles"          validate:"required,min=1,dive"`
	// Facturar requests fiscal emission through ARCA before the sale is
	// persisted. CuitCliente is optional (consumidor final when empty).
	Facturar    bool    `json:"facturar"`
	CuitCliente *string `json:"cuit_cliente" validate:"omitempty,min=11,max=13"`
}

type CambiarTipoRequest struct {
	Tipo string `json:"tipo" validate:"required,oneof=orden_compra factura_b"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleVentaResponse struct {
	ID             string          `json:"id"`
	ProductoID     *string         `json:"producto_id"`
	NombreProducto string          `json:"nombre_producto"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Cantidad       int             `json:"cantidad"`
	DescuentoPct   decimal.Decimal `json:"descuento_pct"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type ComprobanteResponse struct {
	TipoComprobante string `json:"tipo_comprobante"`
	NroComprobante  string `json:"nro_comprobante"`
	CAE             string `json:"cae"`
	CAEVencimiento  string `json:"cae_vencimiento"` // YYYY-MM-DD
}

type VentaResponse struct {
	ID               string                 `json:"id"`
	FechaYHora       string                 `json:"fecha_y_hora"`
	Tipo             string                 `json:"tipo"`
	ImporteTotal     decimal.Decimal        `json:"importe_total"`
	DescuentoGeneral decimal.Decimal        `json:"descuento_general"`
	CajaID           *string                `json:"caja_id"`
	Detalles         []DetalleVentaResponse `json:"detalles"`
	Comprobante      *ComprobanteResponse   `json:"comprobante,omitempty"`
}
