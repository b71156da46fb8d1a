package service

import (
	"context"
	"fmt"
	"time"

	"distripos/internal/apierror"
	"distripos/internal/dto"
	"distripos/internal/infra"
	"distripos/internal/model"
	"distripos/internal/pricing"
	"distripos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	CambiarTipo(ctx context.Context, id uuid.UUID, tipo string) error
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	movRepo      repository.MovimientoStockRepository
	gateway      infra.FacturacionGateway
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	movRepo repository.MovimientoStockRepository,
	gateway infra.FacturacionGateway,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		movRepo:      movRepo,
		gateway:      gateway,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// resolvedDetalle is a sale line after product lookup and price resolution,
// ready to persist.
type resolvedDetalle struct {
	productoID *uuid.UUID
	nombre     string
	precio     decimal.Decimal
	cantidad   int
	descuento  decimal.Decimal
	subtotal   decimal.Decimal
}

// ── Registrar ────────────────────────────────────────────────────────────────
// Sequence: validate → resolve productos and line math (pre-flight, outside
// TX) → fiscal emission when requested (a rejected emission aborts the whole
// sale; no "invoice pending" state exists) → TX: header, detalles, atomic
// stock decrements with audit records.

func (s *ventaService) Registrar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	resolved, err := s.resolverDetalles(ctx, req.Detalles)
	if err != nil {
		return nil, err
	}

	subtotales := make([]decimal.Decimal, len(resolved))
	for i, r := range resolved {
		subtotales[i] = r.subtotal
	}
	total := pricing.TotalVenta(subtotales, req.DescuentoGeneral)

	venta := model.Venta{
		FechaYHora:       time.Now(),
		Tipo:             req.Tipo,
		ImporteTotal:     total,
		DescuentoGeneral: req.DescuentoGeneral,
	}

	// Fiscal emission happens BEFORE any persistence: a venta that requested
	// facturación never exists without its CAE.
	if req.Facturar {
		comp, err := s.gateway.Emitir(ctx, total, req.CuitCliente)
		if err != nil {
			return nil, apierror.External("No se pudo emitir el comprobante fiscal: la venta no fue registrada", err)
		}
		venta.CAE = &comp.CAE
		venta.CAEVencimiento = &comp.CAEVencimiento
		venta.NroComprobante = &comp.NroComprobante
		venta.TipoComprobante = &comp.TipoComprobante
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateHeaderTx(ctx, tx, &venta); err != nil {
			return err
		}

		detalles := make([]model.VentaDetalle, len(resolved))
		for i, r := range resolved {
			detalles[i] = model.VentaDetalle{
				VentaID:        venta.ID,
				ProductoID:     r.productoID,
				NombreProducto: r.nombre,
				PrecioUnitario: r.precio,
				Cantidad:       r.cantidad,
				DescuentoPct:   r.descuento,
				Subtotal:       r.subtotal,
			}
		}
		if err := s.repo.CreateDetallesTx(ctx, tx, detalles); err != nil {
			// Compensate: the system never leaves a venta header without
			// lines. Inside a real TX the rollback covers this; in nil-DB
			// mode the explicit delete is the only barrier.
			if delErr := s.repo.DeleteTx(ctx, tx, venta.ID); delErr != nil {
				log.Error().
					Str("venta_id", venta.ID.String()).
					AnErr("detalle_err", err).
					AnErr("delete_err", delErr).
					Msg("venta huérfana: falló la compensación del encabezado")
			}
			return apierror.Consistency("No se pudieron registrar los detalles de la venta", err)
		}
		venta.Detalles = detalles

		for _, r := range resolved {
			if r.productoID == nil {
				continue
			}
			if err := s.descontarStockTx(ctx, tx, *r.productoID, r.cantidad, venta.ID); err != nil {
				return fmt.Errorf("error descontando stock de %s: %w", r.nombre, err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return ventaToResponse(&venta), nil
}

func (s *ventaService) resolverDetalles(ctx context.Context, items []dto.DetalleVentaRequest) ([]resolvedDetalle, error) {
	if len(items) == 0 {
		return nil, apierror.Validation("La venta debe tener al menos un detalle")
	}

	resolved := make([]resolvedDetalle, 0, len(items))
	for i, item := range items {
		if item.Cantidad <= 0 {
			return nil, apierror.Validation(fmt.Sprintf("Detalle %d: la cantidad debe ser mayor a cero", i+1))
		}

		r := resolvedDetalle{cantidad: item.Cantidad}

		if item.ProductoID != nil {
			pid, err := uuid.Parse(*item.ProductoID)
			if err != nil {
				return nil, apierror.Validation(fmt.Sprintf("Detalle %d: producto_id inválido", i+1))
			}
			p, err := s.productoRepo.FindByID(ctx, pid)
			if err != nil {
				return nil, apierror.NotFound(fmt.Sprintf("Producto %s no encontrado", *item.ProductoID))
			}
			r.productoID = &pid
			r.nombre = p.Nombre
			r.precio = p.PrecioVigente()
		} else {
			// Manual, off-catalog line: name and price must come in the request.
			if item.NombreProducto == "" {
				return nil, apierror.Validation(fmt.Sprintf("Detalle %d: un item manual requiere nombre_producto", i+1))
			}
			if item.PrecioUnitario == nil {
				return nil, apierror.Validation(fmt.Sprintf("Detalle %d: un item manual requiere precio_unitario", i+1))
			}
			r.nombre = item.NombreProducto
		}
		if item.PrecioUnitario != nil {
			r.precio = *item.PrecioUnitario
		}
		if r.precio.IsNegative() {
			return nil, apierror.Validation(fmt.Sprintf("Detalle %d: el precio unitario no puede ser negativo", i+1))
		}

		driver := pricing.CampoDescuento
		if item.EditadoPorSubtotal {
			driver = pricing.CampoSubtotal
		}
		r.descuento, r.subtotal = pricing.ResolverLinea(driver, r.precio, r.cantidad, item.DescuentoPct, item.Subtotal)
		if r.descuento.IsNegative() || r.descuento.GreaterThan(decimal.NewFromInt(100)) {
			return nil, apierror.Validation(fmt.Sprintf("Detalle %d: el descuento debe estar entre 0 y 100", i+1))
		}

		resolved = append(resolved, r)
	}
	return resolved, nil
}

// descontarStockTx applies the atomic decrement and records the movimiento.
func (s *ventaService) descontarStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, cantidad int, ventaID uuid.UUID) error {
	stockAntes := 0
	if p, err := s.productoRepo.FindByID(ctx, productoID); err == nil && p != nil {
		stockAntes = p.Stock
	}

	if err := s.productoRepo.UpdateStockTx(tx, productoID, -cantidad); err != nil {
		return err
	}

	return s.movRepo.CreateTx(tx, &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          "venta",
		Cantidad:      -cantidad,
		StockAnterior: stockAntes,
		StockNuevo:    stockAntes - cantidad,
		Motivo:        fmt.Sprintf("Venta %s", ventaID),
		ReferenciaID:  &ventaID,
	})
}

// ── Obtener / Listar ─────────────────────────────────────────────────────────

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Venta no encontrada")
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Eliminar ─────────────────────────────────────────────────────────────────
// Only open sales can go away; the delete reverses every stock decrement
// before removing the venta and its detalles.

func (s *ventaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("Venta no encontrada")
	}
	if venta.CajaID != nil {
		return apierror.Denied("No se puede eliminar una venta ya cerrada en una caja")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, d := range venta.Detalles {
			if d.ProductoID == nil {
				continue
			}
			stockAntes := 0
			if p, err := s.productoRepo.FindByID(ctx, *d.ProductoID); err == nil && p != nil {
				stockAntes = p.Stock
			}
			if err := s.productoRepo.UpdateStockTx(tx, *d.ProductoID, d.Cantidad); err != nil {
				return err
			}
			ventaRef := venta.ID
			mov := &model.MovimientoStock{
				ProductoID:    *d.ProductoID,
				Tipo:          "restore_anulacion",
				Cantidad:      d.Cantidad,
				StockAnterior: stockAntes,
				StockNuevo:    stockAntes + d.Cantidad,
				Motivo:        fmt.Sprintf("Anulación venta %s", venta.ID),
				ReferenciaID:  &ventaRef,
			}
			if err := s.movRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return s.repo.DeleteTx(ctx, tx, id)
	})
}

// ── CambiarTipo ──────────────────────────────────────────────────────────────

func (s *ventaService) CambiarTipo(ctx context.Context, id uuid.UUID, tipo string) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("Venta no encontrada")
	}
	if venta.CajaID != nil {
		return apierror.Denied("No se puede modificar una venta ya cerrada en una caja")
	}
	if venta.CAE != nil {
		return apierror.Denied("No se puede cambiar el tipo: la venta ya tiene un comprobante fiscal emitido")
	}
	return s.repo.UpdateTipo(ctx, id, tipo)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	detalles := make([]dto.DetalleVentaResponse, 0, len(v.Detalles))
	for _, d := range v.Detalles {
		var pid *string
		if d.ProductoID != nil {
			s := d.ProductoID.String()
			pid = &s
		}
		detalles = append(detalles, dto.DetalleVentaResponse{
			ID:             d.ID.String(),
			ProductoID:     pid,
			NombreProducto: d.NombreProducto,
			PrecioUnitario: d.PrecioUnitario,
			Cantidad:       d.Cantidad,
			DescuentoPct:   d.DescuentoPct,
			Subtotal:       d.Subtotal,
		})
	}

	resp := &dto.VentaResponse{
		ID:               v.ID.String(),
		FechaYHora:       v.FechaYHora.Format(time.RFC3339),
		Tipo:             v.Tipo,
		ImporteTotal:     v.ImporteTotal,
		DescuentoGeneral: v.DescuentoGeneral,
		Detalles:         detalles,
	}
	if v.CajaID != nil {
		s := v.CajaID.String()
		resp.CajaID = &s
	}
	if v.CAE != nil {
		resp.Comprobante = &dto.ComprobanteResponse{
			TipoComprobante: deref(v.TipoComprobante),
			NroComprobante:  deref(v.NroComprobante),
			CAE:             *v.CAE,
		}
		if v.CAEVencimiento != nil {
			resp.Comprobante.CAEVencimiento = v.CAEVencimiento.Format("2006-01-02")
		}
	}
	return resp
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
