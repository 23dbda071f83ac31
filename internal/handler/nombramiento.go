package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/codeark35/legajos-sub000/internal/models"
	"github.com/codeark35/legajos-sub000/internal/periodos"
	"github.com/codeark35/legajos-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NombramientoHandler atiende legajos y nombramientos (colaboradores
// finos del ledger) y la vista de períodos derivados.
type NombramientoHandler struct {
	DB       *gorm.DB
	Resolver *periodos.Resolver
}

func NewNombramientoHandler(db *gorm.DB, resolver *periodos.Resolver) *NombramientoHandler {
	return &NombramientoHandler{DB: db, Resolver: resolver}
}

// ---------- legajos ----------

type crearLegajoReq struct {
	Numero    string `json:"numero" binding:"required,max=32"`
	Documento string `json:"documento" binding:"max=32"`
	Nombres   string `json:"nombres" binding:"required,max=128"`
	Apellidos string `json:"apellidos" binding:"required,max=128"`
}

func (h *NombramientoHandler) CrearLegajo(c *gin.Context) {
	var req crearLegajoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "parámetros inválidos")
		return
	}

	legajo := models.Legajo{
		Numero:    strings.TrimSpace(req.Numero),
		Documento: strings.TrimSpace(req.Documento),
		Nombres:   strings.TrimSpace(req.Nombres),
		Apellidos: strings.TrimSpace(req.Apellidos),
	}
	if err := h.DB.Create(&legajo).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al guardar el legajo")
		return
	}
	util.Success(c, util.Response{"legajo": legajo})
}

func (h *NombramientoHandler) ListLegajos(c *gin.Context) {
	var legajos []models.Legajo
	if err := h.DB.Order("numero ASC").Find(&legajos).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al listar legajos")
		return
	}
	util.Success(c, util.Response{"legajos": legajos})
}

// ---------- nombramientos ----------

type crearNombramientoReq struct {
	LegajoID    uint            `json:"legajo_id" binding:"required"`
	Cargo       string          `json:"cargo" binding:"required,max=128"`
	FechaInicio string          `json:"fecha_inicio" binding:"required"`
	FechaFin    string          `json:"fecha_fin"`
	SueldoBase  decimal.Decimal `json:"sueldo_base"`
}

func (h *NombramientoHandler) CrearNombramiento(c *gin.Context) {
	var req crearNombramientoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "parámetros inválidos")
		return
	}

	inicio, err := util.ParseFecha(req.FechaInicio)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "fecha_inicio: "+err.Error())
		return
	}
	var fin *time.Time
	if req.FechaFin != "" {
		f, err := util.ParseFecha(req.FechaFin)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "fecha_fin: "+err.Error())
			return
		}
		if f.Before(inicio) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "fecha_fin: anterior a fecha_inicio")
			return
		}
		fin = &f
	}
	if !req.SueldoBase.IsPositive() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "sueldo_base: debe ser mayor que cero")
		return
	}

	var legajo models.Legajo
	if err := h.DB.First(&legajo, req.LegajoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "legajo inexistente")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al consultar el legajo")
		}
		return
	}

	nombramiento := models.Nombramiento{
		LegajoID:    req.LegajoID,
		Cargo:       strings.TrimSpace(req.Cargo),
		FechaInicio: inicio,
		FechaFin:    fin,
		SueldoBase:  req.SueldoBase,
	}
	if err := h.DB.Create(&nombramiento).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al guardar el nombramiento")
		return
	}
	util.Success(c, util.Response{"nombramiento": nombramientoResp(&nombramiento)})
}

func (h *NombramientoHandler) GetNombramiento(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var nombramiento models.Nombramiento
	if err := h.DB.Preload("Legajo").First(&nombramiento, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "nombramiento inexistente")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al consultar el nombramiento")
		}
		return
	}

	resp := nombramientoResp(&nombramiento)
	resp["legajo"] = nombramiento.Legajo
	util.Success(c, util.Response{"nombramiento": resp})
}

func (h *NombramientoHandler) ListNombramientos(c *gin.Context) {
	q := h.DB.Model(&models.Nombramiento{}).Order("fecha_inicio DESC")
	if legajoStr := c.Query("legajo_id"); legajoStr != "" {
		legajoID, err := util.ParseID(legajoStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		q = q.Where("legajo_id = ?", legajoID)
	}

	var nombramientos []models.Nombramiento
	if err := q.Find(&nombramientos).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al listar nombramientos")
		return
	}

	items := make([]gin.H, 0, len(nombramientos))
	for i := range nombramientos {
		items = append(items, nombramientoResp(&nombramientos[i]))
	}
	util.Success(c, util.Response{"nombramientos": items})
}

// GetPeriodos devuelve los períodos derivados del nombramiento,
// del más nuevo al más viejo. Dos asignaciones activas simultáneas
// se reportan como 409, no se elige una arbitrariamente.
func (h *NombramientoHandler) GetPeriodos(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	lista, err := h.Resolver.Resolve(id, time.Now())
	if err != nil {
		abortServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"periodos": lista})
}

func nombramientoResp(n *models.Nombramiento) gin.H {
	return gin.H{
		"id":           n.ID,
		"legajo_id":    n.LegajoID,
		"cargo":        n.Cargo,
		"fecha_inicio": n.FechaInicio,
		"fecha_fin":    n.FechaFin,
		"sueldo_base":  n.SueldoBase,
		"vigente":      n.Vigente(time.Now()),
	}
}
