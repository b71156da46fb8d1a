package service

import (
	"context"
	"fmt"
	"time"

	"distripos/internal/apierror"
	"distripos/internal/dto"
	"distripos/internal/model"
	"distripos/internal/pricing"
	"distripos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.ProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ProductoRequest) (*dto.ProductoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	ListarMovimientos(ctx context.Context, productoID *uuid.UUID, page, limit int) ([]dto.MovimientoStockResponse, int64, error)
}

type productoService struct {
	repo    repository.ProductoRepository
	movRepo repository.MovimientoStockRepository
	rdb     *redis.Client
}

func NewProductoService(repo repository.ProductoRepository, movRepo repository.MovimientoStockRepository, rdb *redis.Client) ProductoService {
	return &productoService{repo: repo, movRepo: movRepo, rdb: rdb}
}

// resolverPrecios derives the consistent (utilidad, precio final) pair.
// The driver field comes explicitly in precio_editado; when absent, the one
// field that is present drives. Neither present = the product sells at list
// price (both stay nil).
func resolverPrecios(req dto.ProductoRequest) (*decimal.Decimal, *decimal.Decimal, error) {
	driver := req.PrecioEditado
	if driver == "" {
		switch {
		case req.UtilidadPct != nil:
			driver = "utilidad"
		case req.PrecioFinal != nil:
			driver = "precio_final"
		default:
			return nil, nil, nil
		}
	}

	switch driver {
	case "utilidad":
		if req.UtilidadPct == nil {
			return nil, nil, apierror.Validation("precio_editado=utilidad requiere utilidad_pct")
		}
		u, f, err := pricing.ResolverPrecio(pricing.CampoUtilidad, req.PrecioLista, *req.UtilidadPct, decimal.Zero)
		if err != nil {
			return nil, nil, err
		}
		return &u, &f, nil
	default:
		if req.PrecioFinal == nil {
			return nil, nil, apierror.Validation("precio_editado=precio_final requiere precio_final")
		}
		u, f, err := pricing.ResolverPrecio(pricing.CampoPrecioFinal, req.PrecioLista, decimal.Zero, *req.PrecioFinal)
		if err != nil {
			return nil, nil, err
		}
		return &u, &f, nil
	}
}

func (s *productoService) Crear(ctx context.Context, req dto.ProductoRequest) (*dto.ProductoResponse, error) {
	if req.PrecioLista.IsNegative() {
		return nil, apierror.Validation("El precio de lista no puede ser negativo")
	}
	utilidad, final, err := resolverPrecios(req)
	if err != nil {
		return nil, err
	}

	p := &model.Producto{
		Nombre:       req.Nombre,
		CodigoBarras: req.CodigoBarras,
		PrecioLista:  req.PrecioLista,
		UtilidadPct:  utilidad,
		PrecioFinal:  final,
		Stock:        req.Stock,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Producto no encontrado")
	}
	if req.PrecioLista.IsNegative() {
		return nil, apierror.Validation("El precio de lista no puede ser negativo")
	}
	utilidad, final, err := resolverPrecios(req)
	if err != nil {
		return nil, err
	}

	p.Nombre = req.Nombre
	p.CodigoBarras = req.CodigoBarras
	p.PrecioLista = req.PrecioLista
	p.UtilidadPct = utilidad
	p.PrecioFinal = final
	p.Stock = req.Stock

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidarCachePrecio(ctx, p)
	return productoToResponse(p), nil
}

func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("Producto no encontrado")
	}

	// Referential guard: products referenced by sale lines never disappear.
	refs, err := s.repo.CountDetalles(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apierror.Denied(fmt.Sprintf(
			"No se puede eliminar %q: está referenciado por %d detalle(s) de venta", p.Nombre, refs))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidarCachePrecio(ctx, p)
	return nil
}

func (s *productoService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Producto no encontrado")
	}
	stockAntes := p.Stock

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateStockTx(tx, id, req.Delta); err != nil {
			return err
		}
		return s.movRepo.CreateTx(tx, &model.MovimientoStock{
			ProductoID:    id,
			Tipo:          "ajuste_manual",
			Cantidad:      req.Delta,
			StockAnterior: stockAntes,
			StockNuevo:    stockAntes + req.Delta,
			Motivo:        req.Motivo,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	p.Stock = stockAntes + req.Delta
	return productoToResponse(p), nil
}

func (s *productoService) ListarMovimientos(ctx context.Context, productoID *uuid.UUID, page, limit int) ([]dto.MovimientoStockResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	movs, total, err := s.movRepo.List(ctx, productoID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.MovimientoStockResponse, 0, len(movs))
	for _, m := range movs {
		item := dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			ProductoID:    m.ProductoID.String(),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		}
		if m.ReferenciaID != nil {
			ref := m.ReferenciaID.String()
			item.ReferenciaID = &ref
		}
		resp = append(resp, item)
	}
	return resp, total, nil
}

// invalidarCachePrecio drops the redis entry of the public price check after
// a price-affecting change. Best-effort: a miss just means a DB hit.
func (s *productoService) invalidarCachePrecio(ctx context.Context, p *model.Producto) {
	if s.rdb == nil || p.CodigoBarras == nil {
		return
	}
	s.rdb.Del(ctx, "precio:"+*p.CodigoBarras)
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:           p.ID.String(),
		Nombre:       p.Nombre,
		CodigoBarras: p.CodigoBarras,
		PrecioLista:  p.PrecioLista,
		UtilidadPct:  p.UtilidadPct,
		PrecioFinal:  p.PrecioFinal,
		Stock:        p.Stock,
	}
}
