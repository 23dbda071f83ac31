package handler

import (
	"net/http"
	"strings"

	"github.com/codeark35/legajos-sub000/internal/models"
	"github.com/codeark35/legajos-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogoHandler atiende los registros de consulta: categorías y
// líneas presupuestarias. Las asignaciones los referencian, no los
// poseen; acá solo hay alta y listado.
type CatalogoHandler struct {
	DB *gorm.DB
}

func NewCatalogoHandler(db *gorm.DB) *CatalogoHandler {
	return &CatalogoHandler{DB: db}
}

// ---------- categorías ----------

type crearCategoriaReq struct {
	Codigo       string           `json:"codigo" binding:"required,max=16"`
	Descripcion  string           `json:"descripcion" binding:"required,max=255"`
	SueldoMinimo *decimal.Decimal `json:"sueldo_minimo"`
	SueldoMaximo *decimal.Decimal `json:"sueldo_maximo"`
}

func (h *CatalogoHandler) ListCategorias(c *gin.Context) {
	q := h.DB.Model(&models.CategoriaPresupuestaria{}).Order("codigo ASC")
	if c.Query("activas") == "1" {
		q = q.Where("activa = ?", true)
	}

	var categorias []models.CategoriaPresupuestaria
	if err := q.Find(&categorias).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al listar categorías")
		return
	}
	util.Success(c, util.Response{"categorias": categorias})
}

func (h *CatalogoHandler) CrearCategoria(c *gin.Context) {
	var req crearCategoriaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "parámetros inválidos")
		return
	}

	req.Codigo = strings.ToUpper(strings.TrimSpace(req.Codigo))
	if req.Codigo == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "codigo: no puede estar vacío")
		return
	}
	// rango salarial coherente: min ≤ max cuando ambos están presentes
	if req.SueldoMinimo != nil && req.SueldoMaximo != nil &&
		req.SueldoMinimo.GreaterThan(*req.SueldoMaximo) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "sueldo_minimo: no puede superar a sueldo_maximo")
		return
	}

	var count int64
	if err := h.DB.Model(&models.CategoriaPresupuestaria{}).
		Where("codigo = ?", req.Codigo).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al verificar el código")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "codigo: ya existe una categoría con ese código")
		return
	}

	categoria := models.CategoriaPresupuestaria{
		Codigo:       req.Codigo,
		Descripcion:  strings.TrimSpace(req.Descripcion),
		SueldoMinimo: req.SueldoMinimo,
		SueldoMaximo: req.SueldoMaximo,
		Activa:       true,
	}
	if err := h.DB.Create(&categoria).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al guardar la categoría")
		return
	}
	util.Success(c, util.Response{"categoria": categoria})
}

// ---------- líneas ----------

type crearLineaReq struct {
	Codigo      string `json:"codigo" binding:"required,max=16"`
	Descripcion string `json:"descripcion" binding:"required,max=255"`
	Tipo        string `json:"tipo" binding:"max=32"`
}

func (h *CatalogoHandler) ListLineas(c *gin.Context) {
	q := h.DB.Model(&models.LineaPresupuestaria{}).Order("codigo ASC")
	if c.Query("activas") == "1" {
		q = q.Where("activa = ?", true)
	}

	var lineas []models.LineaPresupuestaria
	if err := q.Find(&lineas).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al listar líneas")
		return
	}
	util.Success(c, util.Response{"lineas": lineas})
}

func (h *CatalogoHandler) CrearLinea(c *gin.Context) {
	var req crearLineaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "parámetros inválidos")
		return
	}

	req.Codigo = strings.ToUpper(strings.TrimSpace(req.Codigo))
	if req.Codigo == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "codigo: no puede estar vacío")
		return
	}

	var count int64
	if err := h.DB.Model(&models.LineaPresupuestaria{}).
		Where("codigo = ?", req.Codigo).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al verificar el código")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "codigo: ya existe una línea con ese código")
		return
	}

	linea := models.LineaPresupuestaria{
		Codigo:      req.Codigo,
		Descripcion: strings.TrimSpace(req.Descripcion),
		Tipo:        strings.TrimSpace(req.Tipo),
		Activa:      true,
	}
	if err := h.DB.Create(&linea).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al guardar la línea")
		return
	}
	util.Success(c, util.Response{"linea": linea})
}
