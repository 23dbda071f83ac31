package handler

import (
	"errors"
	"net/http"

	"github.com/codeark35/legajos-sub000/internal/ledger"
	"github.com/codeark35/legajos-sub000/internal/models"
	"github.com/codeark35/legajos-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AsignacionHandler atiende el ciclo de vida de las asignaciones:
// alta en borrador, finalización, reapertura y eliminación.
type AsignacionHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Service
}

func NewAsignacionHandler(db *gorm.DB, svc *ledger.Service) *AsignacionHandler {
	return &AsignacionHandler{DB: db, Ledger: svc}
}

type crearAsignacionReq struct {
	NombramientoID uint            `json:"nombramiento_id" binding:"required"`
	CategoriaID    uint            `json:"categoria_id" binding:"required"`
	LineaID        uint            `json:"linea_id" binding:"required"`
	ObjetoGasto    string          `json:"objeto_gasto" binding:"max=32"`
	SueldoBase     decimal.Decimal `json:"sueldo_base"`
	Moneda         string          `json:"moneda" binding:"max=8"`
	FechaInicio    string          `json:"fecha_inicio"`
}

func (h *AsignacionHandler) Crear(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		abortNoAuth(c)
		return
	}

	var req crearAsignacionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "parámetros inválidos")
		return
	}

	in := ledger.CreateInput{
		NombramientoID: req.NombramientoID,
		CategoriaID:    req.CategoriaID,
		LineaID:        req.LineaID,
		ObjetoGasto:    req.ObjetoGasto,
		SueldoBase:     req.SueldoBase,
		Moneda:         req.Moneda,
	}
	if req.FechaInicio != "" {
		inicio, err := util.ParseFecha(req.FechaInicio)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "fecha_inicio: "+err.Error())
			return
		}
		in.FechaInicio = &inicio
	}

	asig, err := h.Ledger.Crear(in, actor)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"asignacion": asig})
}

func (h *AsignacionHandler) Get(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var asig models.AsignacionPresupuestaria
	if err := h.DB.
		Preload("Categoria").
		Preload("Linea").
		Preload("Historico", func(db *gorm.DB) *gorm.DB {
			return db.Order("anio ASC, mes ASC")
		}).
		First(&asig, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "asignación inexistente")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al consultar la asignación")
		}
		return
	}

	util.Success(c, util.Response{
		"asignacion": asig,
		"categoria":  asig.Categoria,
		"linea":      asig.Linea,
		"totales":    ledger.CalcularTotales(asig.Historico),
	})
}

type finalizarReq struct {
	FechaFin string `json:"fecha_fin" binding:"required"`
	Motivo   string `json:"motivo" binding:"max=255"`
}

func (h *AsignacionHandler) Finalizar(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		abortNoAuth(c)
		return
	}

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var req finalizarReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "parámetros inválidos")
		return
	}
	fechaFin, err := util.ParseFecha(req.FechaFin)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "fecha_fin: "+err.Error())
		return
	}

	asig, err := h.Ledger.Finalizar(id, fechaFin, req.Motivo, actor)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"asignacion": asig})
}

type reabrirReq struct {
	Motivo string `json:"motivo" binding:"required,max=255"`
}

func (h *AsignacionHandler) Reabrir(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		abortNoAuth(c)
		return
	}

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var req reabrirReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "parámetros inválidos")
		return
	}

	asig, err := h.Ledger.Reabrir(id, req.Motivo, actor)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"asignacion": asig})
}

func (h *AsignacionHandler) Eliminar(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		abortNoAuth(c)
		return
	}

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	if err := h.Ledger.Eliminar(id, actor); err != nil {
		abortServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
