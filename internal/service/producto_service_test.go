package service_test

import (
	"context"
	"testing"

	"distripos/internal/apierror"
	"distripos/internal/dto"
	"distripos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildProductoSvc() (service.ProductoService, *stubProductoRepo, *stubMovimientoRepo) {
	repo := newStubProductoRepo()
	movRepo := &stubMovimientoRepo{}
	svc := service.NewProductoService(repo, movRepo, nil)
	return svc, repo, movRepo
}

func TestCrearProducto_DerivaPrecioDesdeUtilidad(t *testing.T) {
	svc, _, _ := buildProductoSvc()

	resp, err := svc.Crear(context.Background(), dto.ProductoRequest{
		Nombre:        "Cerveza 473ml",
		PrecioLista:   decimal.NewFromInt(100),
		UtilidadPct:   decPtr("30"),
		PrecioEditado: "utilidad",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.PrecioFinal)
	assert.True(t, decimal.NewFromInt(130).Equal(*resp.PrecioFinal))
}

func TestCrearProducto_DerivaUtilidadDesdePrecioFinal(t *testing.T) {
	svc, _, _ := buildProductoSvc()

	resp, err := svc.Crear(context.Background(), dto.ProductoRequest{
		Nombre:        "Vino 750ml",
		PrecioLista:   decimal.NewFromInt(100),
		PrecioFinal:   decPtr("135"),
		PrecioEditado: "precio_final",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.UtilidadPct)
	assert.True(t, decimal.NewFromInt(35).Equal(*resp.UtilidadPct))
}

func TestCrearProducto_SinPreciosDerivados(t *testing.T) {
	// sin utilidad ni precio final el producto vende a precio de lista
	svc, _, _ := buildProductoSvc()

	resp, err := svc.Crear(context.Background(), dto.ProductoRequest{
		Nombre:      "Soda sifón",
		PrecioLista: decimal.RequireFromString("45.50"),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.UtilidadPct)
	assert.Nil(t, resp.PrecioFinal)
}

func TestCrearProducto_PrecioFinalConListaCero(t *testing.T) {
	svc, _, _ := buildProductoSvc()

	_, err := svc.Crear(context.Background(), dto.ProductoRequest{
		Nombre:        "Promo combo",
		PrecioLista:   decimal.Zero,
		PrecioFinal:   decPtr("135"),
		PrecioEditado: "precio_final",
	})
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.KindValidation, apiErr.Kind)
}

func TestActualizarProducto_ElDriverIgnoraElCampoViejo(t *testing.T) {
	svc, repo, _ := buildProductoSvc()
	p := seedProducto(repo, "Gancia 950ml", decimal.NewFromInt(130), 10)

	// el cliente edita el precio final; la utilidad que manda es obsoleta y
	// se recalcula igual
	resp, err := svc.Actualizar(context.Background(), p.ID, dto.ProductoRequest{
		Nombre:        "Gancia 950ml",
		PrecioLista:   decimal.NewFromInt(100),
		UtilidadPct:   decPtr("99"),
		PrecioFinal:   decPtr("150"),
		PrecioEditado: "precio_final",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.UtilidadPct)
	assert.True(t, decimal.NewFromInt(50).Equal(*resp.UtilidadPct))
	assert.True(t, decimal.NewFromInt(150).Equal(*resp.PrecioFinal))
}

func TestEliminarProducto_ConDetallesDeVenta(t *testing.T) {
	svc, repo, _ := buildProductoSvc()
	p := seedProducto(repo, "Quilmes 1L", decimal.NewFromInt(200), 10)
	repo.detalleRefs[p.ID] = 3

	err := svc.Eliminar(context.Background(), p.ID)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.KindDenied, apiErr.Kind)
	assert.Contains(t, apiErr.Detail, "Quilmes 1L")

	// sigue en el catálogo
	_, findErr := repo.FindByID(context.Background(), p.ID)
	assert.NoError(t, findErr)
}

func TestEliminarProducto_SinReferencias(t *testing.T) {
	svc, repo, _ := buildProductoSvc()
	p := seedProducto(repo, "Producto piloto", decimal.NewFromInt(10), 0)

	require.NoError(t, svc.Eliminar(context.Background(), p.ID))
	_, err := repo.FindByID(context.Background(), p.ID)
	assert.Error(t, err)
}

func TestAjustarStock(t *testing.T) {
	svc, repo, movRepo := buildProductoSvc()
	p := seedProducto(repo, "Coca 2.25L", decimal.NewFromInt(350), 12)

	resp, err := svc.AjustarStock(context.Background(), p.ID, dto.AjustarStockRequest{
		Delta:  -4,
		Motivo: "rotura en depósito",
	})
	require.NoError(t, err)
	assert.Equal(t, 8, resp.Stock)
	assert.Equal(t, 8, repo.productos[p.ID].Stock)

	require.Len(t, movRepo.movimientos, 1)
	mov := movRepo.movimientos[0]
	assert.Equal(t, "ajuste_manual", mov.Tipo)
	assert.Equal(t, -4, mov.Cantidad)
	assert.Equal(t, 12, mov.StockAnterior)
	assert.Equal(t, 8, mov.StockNuevo)
	assert.Equal(t, "rotura en depósito", mov.Motivo)
}

func TestAjustarStock_ProductoInexistente(t *testing.T) {
	svc, _, _ := buildProductoSvc()

	_, err := svc.AjustarStock(context.Background(), uuid.New(), dto.AjustarStockRequest{
		Delta:  5,
		Motivo: "reposición",
	})
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.KindNotFound, apiErr.Kind)
}

func TestListarMovimientos_FiltraPorProducto(t *testing.T) {
	svc, repo, _ := buildProductoSvc()
	p1 := seedProducto(repo, "Producto A", decimal.NewFromInt(100), 10)
	p2 := seedProducto(repo, "Producto B", decimal.NewFromInt(100), 10)

	_, err := svc.AjustarStock(context.Background(), p1.ID, dto.AjustarStockRequest{Delta: 1, Motivo: "reposición"})
	require.NoError(t, err)
	_, err = svc.AjustarStock(context.Background(), p2.ID, dto.AjustarStockRequest{Delta: 2, Motivo: "reposición"})
	require.NoError(t, err)

	movs, total, err := svc.ListarMovimientos(context.Background(), &p1.ID, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, movs, 1)
	assert.Equal(t, p1.ID.String(), movs[0].ProductoID)
}
