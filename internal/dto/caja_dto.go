package dto

import "github.com/shopspring/decimal"

// ResumenDiarioResponse sums the open (caja_id null) sales grouped by tipo.
// Bucket names keep the original API contract.
type ResumenDiarioResponse struct {
	TotalOrdenesCompra decimal.Decimal `json:"totalOrdenesCompra"`
	TotalFacturasB     decimal.Decimal `json:"totalFacturasB"`
	TotalDia           decimal.Decimal `json:"totalDia"`
}

type CajaResponse struct {
	ID               string          `json:"id"`
	TotalRecaudado   decimal.Decimal `json:"total_recaudado"`
	FechaYHoraCierre string          `json:"fecha_y_hora_cierre"`
	CantidadVentas   int             `json:"cantidad_ventas"`
}

type CajaListResponse struct {
	Data  []CajaResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
