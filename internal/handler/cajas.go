package handler

import (
	"net/http"
	"strconv"

	"distripos/internal/apierror"
	"distripos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajasHandler struct{ svc service.CajaService }

func NewCajasHandler(svc service.CajaService) *CajasHandler { return &CajasHandler{svc: svc} }

// ResumenDiario godoc
// @Summary Totales del día agrupados por tipo sobre las ventas abiertas
// @Tags cajas
// @Produce json
// @Success 200 {object} dto.ResumenDiarioResponse
// @Router /v1/cajas/resumen-diario [get]
func (h *CajasHandler) ResumenDiario(c *gin.Context) {
	resp, err := h.svc.ResumenDiario(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Cierra la caja del día
// @Description Toma una foto de las ventas abiertas, crea la caja con el total recaudado y congela esas ventas.
// @Tags cajas
// @Produce json
// @Success 201 {object} dto.CajaResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cajas/cerrar [post]
func (h *CajasHandler) Cerrar(c *gin.Context) {
	resp, err := h.svc.Cerrar(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Historial de cajas cerradas, más recientes primero
// @Tags cajas
// @Produce json
// @Param page  query int false "Página (default 1)"
// @Param limit query int false "Registros por página (default 20)"
// @Success 200 {object} dto.CajaListResponse
// @Router /v1/cajas [get]
func (h *CajasHandler) Listar(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.Listar(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ventas godoc
// @Summary Ventas incluidas en una caja cerrada
// @Tags cajas
// @Produce json
// @Param id path string true "UUID de la caja"
// @Success 200 {array} dto.VentaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cajas/{id}/ventas [get]
func (h *CajasHandler) Ventas(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.VentasPorCaja(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
