package handler

import (
	"net/http"
	"strconv"

	"distripos/internal/apierror"
	"distripos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.ProductoService }

func NewInventarioHandler(svc service.ProductoService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// Movimientos godoc
// @Summary Auditoría de movimientos de stock, más recientes primero
// @Tags inventario
// @Produce json
// @Param producto_id query string false "Filtrar por producto"
// @Param page        query int    false "Página (default 1)"
// @Param limit       query int    false "Registros por página (default 50)"
// @Success 200 {array} dto.MovimientoStockResponse
// @Router /v1/inventario/movimientos [get]
func (h *InventarioHandler) Movimientos(c *gin.Context) {
	var productoID *uuid.UUID
	if raw := c.Query("producto_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("producto_id invalido"))
			return
		}
		productoID = &id
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	movs, total, err := h.svc.ListarMovimientos(c.Request.Context(), productoID, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movs, "total": total, "page": page, "limit": limit})
}
