package service_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"distripos/internal/dto"
	"distripos/internal/infra"
	"distripos/internal/model"
	"distripos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory stubs backing the service unit tests. DB() returns nil so the
// services run their transaction bodies directly, without GORM.

// ── stubProductoRepo ──────────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos   map[uuid.UUID]*model.Producto
	detalleRefs map[uuid.UUID]int64 // producto → cantidad de detalles de venta
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos:   make(map[uuid.UUID]*model.Producto),
		detalleRefs: make(map[uuid.UUID]int64),
	}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByBarcode(_ context.Context, barcode string) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.CodigoBarras != nil && *p.CodigoBarras == barcode {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.productos, id)
	return nil
}

func (r *stubProductoRepo) CountDetalles(_ context.Context, productoID uuid.UUID) (int64, error) {
	return r.detalleRefs[productoID], nil
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	return nil
}

func (r *stubProductoRepo) AjustarStock(_ context.Context, id uuid.UUID, delta int) error {
	return r.UpdateStockTx(nil, id, delta)
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── stubVentaRepo ─────────────────────────────────────────────────────────────

type stubVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta

	failDetalles bool // forces CreateDetallesTx to fail
	deletedIDs   []uuid.UUID
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) CreateHeaderTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) CreateDetallesTx(_ context.Context, _ *gorm.DB, detalles []model.VentaDetalle) error {
	if r.failDetalles {
		return errors.New("insert detalles: connection reset")
	}
	if len(detalles) == 0 {
		return nil
	}
	if v, ok := r.ventas[detalles[0].VentaID]; ok {
		v.Detalles = detalles
	}
	return nil
}

func (r *stubVentaRepo) DeleteTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	delete(r.ventas, id)
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) UpdateTipo(_ context.Context, id uuid.UUID, tipo string) error {
	v, ok := r.ventas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Tipo = tipo
	return nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── stubCajaRepo ──────────────────────────────────────────────────────────────

type stubCajaRepo struct {
	ventas map[uuid.UUID]*model.Venta
	cajas  map[uuid.UUID]*model.Caja
}

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{
		ventas: make(map[uuid.UUID]*model.Venta),
		cajas:  make(map[uuid.UUID]*model.Caja),
	}
}

func (r *stubCajaRepo) seedVenta(tipo string, importe decimal.Decimal) *model.Venta {
	v := &model.Venta{
		ID:           uuid.New(),
		FechaYHora:   time.Now(),
		Tipo:         tipo,
		ImporteTotal: importe,
	}
	r.ventas[v.ID] = v
	return v
}

func (r *stubCajaRepo) FindVentasAbiertasTx(_ context.Context, _ *gorm.DB) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.CajaID == nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubCajaRepo) CreateCajaTx(_ context.Context, _ *gorm.DB, c *model.Caja) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cajas[c.ID] = c
	return nil
}

func (r *stubCajaRepo) AsignarVentasTx(_ context.Context, _ *gorm.DB, cajaID uuid.UUID, ventaIDs []uuid.UUID) error {
	for _, id := range ventaIDs {
		if v, ok := r.ventas[id]; ok {
			c := cajaID
			v.CajaID = &c
		}
	}
	return nil
}

func (r *stubCajaRepo) SumVentasAbiertasPorTipo(_ context.Context) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	for _, v := range r.ventas {
		if v.CajaID != nil {
			continue
		}
		sums[v.Tipo] = sums[v.Tipo].Add(v.ImporteTotal)
	}
	return sums, nil
}

func (r *stubCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	c, ok := r.cajas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCajaRepo) List(_ context.Context, _, _ int) ([]model.Caja, int64, error) {
	out := make([]model.Caja, 0, len(r.cajas))
	for _, c := range r.cajas {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCajaRepo) VentasPorCaja(_ context.Context, cajaID uuid.UUID) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.CajaID != nil && *v.CajaID == cajaID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubCajaRepo) DB() *gorm.DB { return nil }

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

// ── stubMovimientoRepo ───────────────────────────────────────────────────────

type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, productoID *uuid.UUID, _, _ int) ([]model.MovimientoStock, int64, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if productoID != nil && m.ProductoID != *productoID {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// ── stubGateway ──────────────────────────────────────────────────────────────

// stubGateway records emission calls and returns a fixed voucher or error.
type stubGateway struct {
	comprobante *infra.ComprobanteFiscal
	err         error

	llamadas   int
	totalVisto decimal.Decimal
}

func (g *stubGateway) Emitir(_ context.Context, total decimal.Decimal, _ *string) (*infra.ComprobanteFiscal, error) {
	g.llamadas++
	g.totalVisto = total
	if g.err != nil {
		return nil, g.err
	}
	return g.comprobante, nil
}

var _ infra.FacturacionGateway = (*stubGateway)(nil)

// ── seed helpers ─────────────────────────────────────────────────────────────

func seedProducto(repo *stubProductoRepo, nombre string, precioFinal decimal.Decimal, stock int) *model.Producto {
	p := &model.Producto{
		ID:          uuid.New(),
		Nombre:      nombre,
		PrecioLista: precioFinal,
		PrecioFinal: &precioFinal,
		Stock:       stock,
	}
	repo.productos[p.ID] = p
	return p
}
