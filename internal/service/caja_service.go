package service

import (
	"context"
	"time"

	"distripos/internal/apierror"
	"distripos/internal/dto"
	"distripos/internal/model"
	"distripos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaService interface {
	ResumenDiario(ctx context.Context) (*dto.ResumenDiarioResponse, error)
	Cerrar(ctx context.Context) (*dto.CajaResponse, error)
	Listar(ctx context.Context, page, limit int) (*dto.CajaListResponse, error)
	VentasPorCaja(ctx context.Context, id uuid.UUID) ([]dto.VentaResponse, error)
}

type cajaService struct {
	repo repository.CajaRepository
}

func NewCajaService(repo repository.CajaRepository) CajaService {
	return &cajaService{repo: repo}
}

// ── ResumenDiario ────────────────────────────────────────────────────────────
// Read-only aggregation over the open (caja_id null) sales, grouped by tipo.
// Idempotent: two calls without intervening sales return the same totals.

func (s *cajaService) ResumenDiario(ctx context.Context) (*dto.ResumenDiarioResponse, error) {
	sums, err := s.repo.SumVentasAbiertasPorTipo(ctx)
	if err != nil {
		return nil, err
	}

	resumen := &dto.ResumenDiarioResponse{
		TotalOrdenesCompra: decimal.Zero,
		TotalFacturasB:     decimal.Zero,
		TotalDia:           decimal.Zero,
	}
	if oc, ok := sums["orden_compra"]; ok {
		resumen.TotalOrdenesCompra = oc
	}
	if fb, ok := sums["factura_b"]; ok {
		resumen.TotalFacturasB = fb
	}
	for _, total := range sums {
		resumen.TotalDia = resumen.TotalDia.Add(total)
	}
	return resumen, nil
}

// ── Cerrar ───────────────────────────────────────────────────────────────────
// One transaction: lock and snapshot the open sales, sum, insert the caja,
// stamp caja_id on exactly the snapshot ids. A venta created after the
// snapshot stays open for the next closing; a second concurrent close blocks
// on the row locks and then finds nothing to close.

func (s *cajaService) Cerrar(ctx context.Context) (*dto.CajaResponse, error) {
	var caja model.Caja

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ventas, err := s.repo.FindVentasAbiertasTx(ctx, tx)
		if err != nil {
			return err
		}
		if len(ventas) == 0 {
			return apierror.Validation("No hay ventas pendientes para cerrar")
		}

		total := decimal.Zero
		ids := make([]uuid.UUID, 0, len(ventas))
		for _, v := range ventas {
			total = total.Add(v.ImporteTotal)
			ids = append(ids, v.ID)
		}

		caja = model.Caja{
			FechaYHoraCierre: time.Now(),
			TotalRecaudado:   total,
			CantidadVentas:   len(ventas),
		}
		if err := s.repo.CreateCajaTx(ctx, tx, &caja); err != nil {
			return err
		}
		return s.repo.AsignarVentasTx(ctx, tx, caja.ID, ids)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("caja_id", caja.ID.String()).
		Str("total_recaudado", caja.TotalRecaudado.String()).
		Int("ventas", caja.CantidadVentas).
		Msg("caja cerrada")

	return cajaToResponse(&caja), nil
}

// ── Listar / VentasPorCaja ───────────────────────────────────────────────────

func (s *cajaService) Listar(ctx context.Context, page, limit int) (*dto.CajaListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	cajas, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CajaResponse, 0, len(cajas))
	for i := range cajas {
		items = append(items, *cajaToResponse(&cajas[i]))
	}
	return &dto.CajaListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *cajaService) VentasPorCaja(ctx context.Context, id uuid.UUID) ([]dto.VentaResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, apierror.NotFound("Caja no encontrada")
	}
	ventas, err := s.repo.VentasPorCaja(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		resp = append(resp, *ventaToResponse(&ventas[i]))
	}
	return resp, nil
}

func cajaToResponse(c *model.Caja) *dto.CajaResponse {
	return &dto.CajaResponse{
		ID:               c.ID.String(),
		TotalRecaudado:   c.TotalRecaudado,
		FechaYHoraCierre: c.FechaYHoraCierre.Format(time.RFC3339),
		CantidadVentas:   c.CantidadVentas,
	}
}
