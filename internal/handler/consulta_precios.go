package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"distripos/internal/apierror"
	"distripos/internal/dto"
	"distripos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ConsultaPreciosHandler serves the public price check endpoint.
// Read-only, no side effects; responses are cached in redis keyed by barcode
// and invalidated by ProductoService on price changes.
type ConsultaPreciosHandler struct {
	repo repository.ProductoRepository
	rdb  *redis.Client
	ttl  time.Duration
}

func NewConsultaPreciosHandler(repo repository.ProductoRepository, rdb *redis.Client, ttl time.Duration) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{repo: repo, rdb: rdb, ttl: ttl}
}

// GetPrecioPorBarcode godoc
// @Summary Consulta de precio por codigo de barras
// @Tags precio
// @Produce json
// @Param barcode path string true "Codigo de barras"
// @Success 200 {object} dto.ConsultaPreciosResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/precio/{barcode} [get]
func (h *ConsultaPreciosHandler) GetPrecioPorBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "precio:" + barcode

	// 1. Try Redis cache
	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.ConsultaPreciosResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	// 2. Cache miss — query DB
	producto, err := h.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Producto no encontrado"))
		return
	}

	resp := dto.ConsultaPreciosResponse{
		Nombre:      producto.Nombre,
		PrecioFinal: producto.PrecioVigente(),
	}

	// 3. Populate cache — best-effort
	if h.rdb != nil {
		if payload, err := json.Marshal(resp); err == nil {
			h.rdb.Set(ctx, cacheKey, payload, h.ttl)
		}
	}

	c.JSON(http.StatusOK, resp)
}
