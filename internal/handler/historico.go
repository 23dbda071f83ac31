package handler

import (
	"net/http"

	"github.com/codeark35/legajos-sub000/internal/auditoria"
	"github.com/codeark35/legajos-sub000/internal/ledger"
	"github.com/codeark35/legajos-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// HistoricoHandler atiende el histórico mensual de una asignación
// y la consulta de su auditoría.
type HistoricoHandler struct {
	Ledger *ledger.Service
	Audit  *auditoria.Trail
}

func NewHistoricoHandler(svc *ledger.Service, trail *auditoria.Trail) *HistoricoHandler {
	return &HistoricoHandler{Ledger: svc, Audit: trail}
}

type mesReq struct {
	Presupuestado     decimal.Decimal  `json:"presupuestado"`
	Devengado         *decimal.Decimal `json:"devengado"`
	AportesPatronales *decimal.Decimal `json:"aportes_patronales"`
	AportesPersonales *decimal.Decimal `json:"aportes_personales"`
	Descuentos        *decimal.Decimal `json:"descuentos"`
	NetoRecibido      *decimal.Decimal `json:"neto_recibido"`
	Observaciones     string           `json:"observaciones" binding:"max=1000"`
}

// claveHistorico parsea :id/:anio/:mes de la URL; la clave de mes es
// de formato fijo ("01", no "1").
func claveHistorico(c *gin.Context) (uint, int, int, bool) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return 0, 0, 0, false
	}
	anio, err := util.ParseAnio(c.Param("anio"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return 0, 0, 0, false
	}
	mes, err := util.ParseMes(c.Param("mes"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return 0, 0, 0, false
	}
	return id, anio, mes, true
}

// GuardarMes — PUT /asignaciones/:id/historico/:anio/:mes
func (h *HistoricoHandler) GuardarMes(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		abortNoAuth(c)
		return
	}
	id, anio, mes, ok := claveHistorico(c)
	if !ok {
		return
	}

	var req mesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "parámetros inválidos")
		return
	}

	in := ledger.MonthInput{
		Presupuestado:     req.Presupuestado,
		Devengado:         req.Devengado,
		AportesPatronales: req.AportesPatronales,
		AportesPersonales: req.AportesPersonales,
		Descuentos:        req.Descuentos,
		NetoRecibido:      req.NetoRecibido,
		Observaciones:     req.Observaciones,
	}

	fact, err := h.Ledger.GuardarMes(id, anio, mes, in, actor)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"historico": fact})
}

// EliminarMes — DELETE /asignaciones/:id/historico/:anio/:mes
func (h *HistoricoHandler) EliminarMes(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		abortNoAuth(c)
		return
	}
	id, anio, mes, ok := claveHistorico(c)
	if !ok {
		return
	}

	if err := h.Ledger.EliminarMes(id, anio, mes, actor); err != nil {
		abortServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMes — GET /asignaciones/:id/historico/:anio/:mes
func (h *HistoricoHandler) GetMes(c *gin.Context) {
	id, anio, mes, ok := claveHistorico(c)
	if !ok {
		return
	}

	fact, err := h.Ledger.ObtenerMes(id, anio, mes)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"historico": fact})
}

// GetAnio — GET /asignaciones/:id/historico/:anio
func (h *HistoricoHandler) GetAnio(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	anio, err := util.ParseAnio(c.Param("anio"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	meses, err := h.Ledger.ObtenerAnio(id, anio)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"historico": meses})
}

// GetHistorico — GET /asignaciones/:id/historico
func (h *HistoricoHandler) GetHistorico(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	historico, err := h.Ledger.ObtenerHistorico(id)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	util.Success(c, util.Response{"historico": historico})
}

// GetAuditoria — GET /asignaciones/:id/auditoria
// Devuelve entradas del histórico Y del ciclo de vida de la asignación,
// en orden cronológico.
func (h *HistoricoHandler) GetAuditoria(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	historico, err := h.Audit.QueryByRecord(ledger.TablaHistorico, id)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al consultar la auditoría")
		return
	}
	ciclo, err := h.Audit.QueryByRecord(ledger.TablaAsignaciones, id)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al consultar la auditoría")
		return
	}
	util.Success(c, util.Response{
		"historico": historico,
		"ciclo":     ciclo,
	})
}

// GetAuditoriaMes — GET /asignaciones/:id/auditoria/:anio/:mes
// "Qué cambió para ese mes": filtra por las columnas anio/mes de la
// entrada, no por el payload serializado.
func (h *HistoricoHandler) GetAuditoriaMes(c *gin.Context) {
	id, anio, mes, ok := claveHistorico(c)
	if !ok {
		return
	}

	entradas, err := h.Audit.QueryByPeriod(ledger.TablaHistorico, id, anio, mes)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al consultar la auditoría")
		return
	}
	util.Success(c, util.Response{"auditoria": entradas})
}
