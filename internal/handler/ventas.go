package handler

import (
	"net/http"

	"distripos/internal/apierror"
	"distripos/internal/dto"
	"distripos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Registrar godoc
// @Summary      Registrar una nueva venta
// @Description  Crea una venta con sus detalles, descuenta stock y opcionalmente emite el comprobante fiscal vía ARCA antes de persistir.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      422  {object} apierror.APIError
// @Failure      502  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary      Obtener una venta con sus detalles
// @Tags         ventas
// @Produce      json
// @Param        id path string true "UUID de la venta"
// @Success      200 {object} dto.VentaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id} [get]
func (h *VentasHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar ventas
// @Description  Retorna lista paginada de ventas, filtrada por fecha, ordenada por fecha_y_hora (desc por defecto).
// @Tags         ventas
// @Produce      json
// @Param        fecha query string false "Fecha YYYY-MM-DD"
// @Param        orden query string false "asc | desc"
// @Param        page  query int    false "Página (default 1)"
// @Param        limit query int    false "Registros por página (default 50)"
// @Success      200   {object} dto.VentaListResponse
// @Router       /v1/ventas [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar venta abierta
// @Description  Elimina una venta no cerrada en caja, restaurando el stock de cada detalle.
// @Tags         ventas
// @Param        id path string true "UUID de la venta"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/ventas/{id} [delete]
func (h *VentasHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CambiarTipo godoc
// @Summary      Cambiar el tipo de una venta abierta
// @Description  Solo mientras la venta no esté cerrada en caja ni tenga CAE emitido.
// @Tags         ventas
// @Accept       json
// @Param        id   path string                 true "UUID de la venta"
// @Param        body body dto.CambiarTipoRequest true "Nuevo tipo"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/ventas/{id}/tipo [patch]
func (h *VentasHandler) CambiarTipo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CambiarTipoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.CambiarTipo(c.Request.Context(), id, req.Tipo); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
