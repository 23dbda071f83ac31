package router

import (
	"github.com/codeark35/legajos-sub000/internal/auditoria"
	"github.com/codeark35/legajos-sub000/internal/config"
	"github.com/codeark35/legajos-sub000/internal/handler"
	"github.com/codeark35/legajos-sub000/internal/ledger"
	"github.com/codeark35/legajos-sub000/internal/middleware"
	"github.com/codeark35/legajos-sub000/internal/periodos"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter arma el engine de Gin con todos los endpoints del API.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	trail := auditoria.NewTrail(db)
	svc := ledger.NewService(db, trail)
	resolver := periodos.NewResolver(db)

	api := r.Group("/api")

	// login (sin autenticación)
	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHours)
	api.POST("/auth/login", authHandler.Login)

	// el resto exige sesión
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db))

	protected.GET("/me", handler.GetMe)

	catalogoHandler := handler.NewCatalogoHandler(db)
	protected.GET("/categorias", catalogoHandler.ListCategorias)
	protected.POST("/categorias", catalogoHandler.CrearCategoria)
	protected.GET("/lineas", catalogoHandler.ListLineas)
	protected.POST("/lineas", catalogoHandler.CrearLinea)

	nombramientoHandler := handler.NewNombramientoHandler(db, resolver)
	protected.POST("/legajos", nombramientoHandler.CrearLegajo)
	protected.GET("/legajos", nombramientoHandler.ListLegajos)
	protected.POST("/nombramientos", nombramientoHandler.CrearNombramiento)
	protected.GET("/nombramientos", nombramientoHandler.ListNombramientos)
	protected.GET("/nombramientos/:id", nombramientoHandler.GetNombramiento)
	protected.GET("/nombramientos/:id/periodos", nombramientoHandler.GetPeriodos)

	asignacionHandler := handler.NewAsignacionHandler(db, svc)
	protected.POST("/asignaciones", asignacionHandler.Crear)
	protected.GET("/asignaciones/:id", asignacionHandler.Get)
	protected.POST("/asignaciones/:id/finalizar", asignacionHandler.Finalizar)
	protected.POST("/asignaciones/:id/reabrir", asignacionHandler.Reabrir)
	protected.DELETE("/asignaciones/:id", asignacionHandler.Eliminar)

	historicoHandler := handler.NewHistoricoHandler(svc, trail)
	protected.PUT("/asignaciones/:id/historico/:anio/:mes", historicoHandler.GuardarMes)
	protected.DELETE("/asignaciones/:id/historico/:anio/:mes", historicoHandler.EliminarMes)
	protected.GET("/asignaciones/:id/historico", historicoHandler.GetHistorico)
	protected.GET("/asignaciones/:id/historico/:anio", historicoHandler.GetAnio)
	protected.GET("/asignaciones/:id/historico/:anio/:mes", historicoHandler.GetMes)
	protected.GET("/asignaciones/:id/auditoria", historicoHandler.GetAuditoria)
	protected.GET("/asignaciones/:id/auditoria/:anio/:mes", historicoHandler.GetAuditoriaMes)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/asignaciones/:id/export/xlsx", exportHandler.ExportXLSX)

	return r
}
