package router

import (
	"time"

	"distripos/internal/config"
	"distripos/internal/handler"
	"distripos/internal/infra"
	"distripos/internal/middleware"
	"distripos/internal/repository"
	"distripos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, arcaCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	arcaClient := infra.NewARCAClient(cfg.ARCAURL, cfg.CUITEmisor, arcaCB)
	cacheTTL := time.Duration(cfg.PrecioCacheTTLHoras) * time.Hour

	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	productoSvc := service.NewProductoService(productoRepo, movimientoStockRepo, rdb)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, movimientoStockRepo, arcaClient)
	cajaSvc := service.NewCajaService(cajaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productosH := handler.NewProductosHandler(productoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	cajasH := handler.NewCajasHandler(cajaSvc)
	inventarioH := handler.NewInventarioHandler(productoSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoRepo, rdb, cacheTTL)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, arcaCB))

	// Price check — public, kiosk-facing
	r.GET("/v1/precio/:barcode", consultaH.GetPrecioPorBarcode)

	v1 := r.Group("/v1")
	{
		ventas := v1.Group("/ventas")
		{
			ventas.POST("", ventasH.Registrar)
			ventas.GET("", ventasH.Listar)
			ventas.GET("/:id", ventasH.Obtener)
			ventas.DELETE("/:id", ventasH.Eliminar)
			ventas.PATCH("/:id/tipo", ventasH.CambiarTipo)
		}

		cajas := v1.Group("/cajas")
		{
			cajas.GET("/resumen-diario", cajasH.ResumenDiario)
			cajas.POST("/cerrar", cajasH.Cerrar)
			cajas.GET("", cajasH.Listar)
			cajas.GET("/:id/ventas", cajasH.Ventas)
		}

		productos := v1.Group("/productos")
		{
			productos.POST("", productosH.Crear)
			productos.GET("", productosH.Listar)
			productos.GET("/:id", productosH.Obtener)
			productos.PUT("/:id", productosH.Actualizar)
			productos.DELETE("/:id", productosH.Eliminar)
			productos.PATCH("/:id/stock", productosH.AjustarStock)
		}

		v1.GET("/inventario/movimientos", inventarioH.Movimientos)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
