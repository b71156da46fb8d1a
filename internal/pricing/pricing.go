// Package pricing holds the pure price arithmetic shared by the catalog and
// the sale engine: list price ↔ markup ↔ final price, and unit price ×
// quantity ↔ discount ↔ subtotal. All functions are side-effect free and
// round to 2 decimal places.
package pricing

import (
	"github.com/shopspring/decimal"

	"distripos/internal/apierror"
)

var cien = decimal.NewFromInt(100)

// PrecioFinal = precioLista × (1 + utilidadPct/100), rounded to 2 decimals.
func PrecioFinal(precioLista, utilidadPct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(utilidadPct.Div(cien))
	return precioLista.Mul(factor).Round(2)
}

// UtilidadDesdePrecio back-solves the markup from the final price.
// Fails when precioLista ≤ 0 (division by zero or a meaningless negative base).
func UtilidadDesdePrecio(precioLista, precioFinal decimal.Decimal) (decimal.Decimal, error) {
	if precioLista.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apierror.Validation("El precio de lista debe ser mayor a cero para calcular la utilidad")
	}
	return precioFinal.Div(precioLista).Sub(decimal.NewFromInt(1)).Mul(cien).Round(2), nil
}

// SubtotalLinea = precioUnitario × cantidad × (1 − descuentoPct/100).
func SubtotalLinea(precioUnitario decimal.Decimal, cantidad int, descuentoPct decimal.Decimal) decimal.Decimal {
	base := precioUnitario.Mul(decimal.NewFromInt(int64(cantidad)))
	return base.Mul(decimal.NewFromInt(1).Sub(descuentoPct.Div(cien))).Round(2)
}

// DescuentoDesdeSubtotal back-solves the line discount from an edited
// subtotal. Returns 0 when the base amount is not positive.
func DescuentoDesdeSubtotal(precioUnitario decimal.Decimal, cantidad int, subtotal decimal.Decimal) decimal.Decimal {
	base := precioUnitario.Mul(decimal.NewFromInt(int64(cantidad)))
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Sub(subtotal.Div(base)).Mul(cien).Round(2)
}

// TotalVenta applies the sale-level discount over the sum of line subtotals.
func TotalVenta(subtotales []decimal.Decimal, descuentoGeneralPct decimal.Decimal) decimal.Decimal {
	suma := decimal.Zero
	for _, s := range subtotales {
		suma = suma.Add(s)
	}
	return suma.Mul(decimal.NewFromInt(1).Sub(descuentoGeneralPct.Div(cien))).Round(2)
}

// ─── Driver-field resolution ─────────────────────────────────────────────────
// Exactly one of {utilidad, precio final} and one of {descuento, subtotal}
// is authoritative per edit. The caller states which with an explicit enum;
// the other field is always recomputed, never trusted from the input.

// CampoPrecio marks which product price field the user edited last.
type CampoPrecio int

const (
	CampoUtilidad CampoPrecio = iota
	CampoPrecioFinal
)

// ResolverPrecio returns the consistent (utilidadPct, precioFinal) pair for a
// product given the driver field.
func ResolverPrecio(driver CampoPrecio, precioLista, utilidadPct, precioFinal decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	switch driver {
	case CampoPrecioFinal:
		u, err := UtilidadDesdePrecio(precioLista, precioFinal)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		return u, precioFinal.Round(2), nil
	default:
		return utilidadPct.Round(2), PrecioFinal(precioLista, utilidadPct), nil
	}
}

// CampoLinea marks which sale-line field the user edited last.
type CampoLinea int

const (
	CampoDescuento CampoLinea = iota
	CampoSubtotal
)

// ResolverLinea returns the consistent (descuentoPct, subtotal) pair for a
// sale line given the driver field.
func ResolverLinea(driver CampoLinea, precioUnitario decimal.Decimal, cantidad int, descuentoPct, subtotal decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if driver == CampoSubtotal {
		return DescuentoDesdeSubtotal(precioUnitario, cantidad, subtotal), subtotal.Round(2)
	}
	return descuentoPct.Round(2), SubtotalLinea(precioUnitario, cantidad, descuentoPct)
}
