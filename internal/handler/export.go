package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/codeark35/legajos-sub000/internal/ledger"
	"github.com/codeark35/legajos-sub000/internal/models"
	"github.com/codeark35/legajos-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler genera la planilla XLSX del histórico de una asignación.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

// ExportXLSX — GET /asignaciones/:id/export/xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
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

	f := excelize.NewFile()
	defer f.Close()

	const hoja = "Historico"
	f.SetSheetName("Sheet1", hoja)

	// encabezado con los datos de la asignación
	f.SetCellValue(hoja, "A1", "Asignación")
	f.SetCellValue(hoja, "B1", asig.ID)
	f.SetCellValue(hoja, "C1", "Categoría")
	f.SetCellValue(hoja, "D1", asig.Categoria.Codigo)
	f.SetCellValue(hoja, "E1", "Línea")
	f.SetCellValue(hoja, "F1", asig.Linea.Codigo)
	f.SetCellValue(hoja, "G1", "Moneda")
	f.SetCellValue(hoja, "H1", asig.Moneda)

	columnas := []string{"Año", "Mes", "Presupuestado", "Devengado",
		"Aportes patronales", "Aportes personales", "Descuentos", "Neto recibido", "Observaciones"}
	for i, titulo := range columnas {
		celda, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(hoja, celda, titulo)
	}

	fila := 4
	for i := range asig.Historico {
		m := &asig.Historico[i]
		valores := []interface{}{
			m.ClaveAnio(),
			m.ClaveMes(),
			m.Presupuestado.String(),
			m.Devengado.String(),
			opcionalExcel(m.AportesPatronales),
			opcionalExcel(m.AportesPersonales),
			opcionalExcel(m.Descuentos),
			opcionalExcel(m.NetoRecibido),
			m.Observaciones,
		}
		for col, v := range valores {
			celda, _ := excelize.CoordinatesToCellName(col+1, fila)
			f.SetCellValue(hoja, celda, v)
		}
		fila++
	}

	// fila de totales
	totales := ledger.CalcularTotales(asig.Historico)
	f.SetCellValue(hoja, fmt.Sprintf("B%d", fila), "Totales")
	f.SetCellValue(hoja, fmt.Sprintf("C%d", fila), totales.Presupuestado.String())
	f.SetCellValue(hoja, fmt.Sprintf("D%d", fila), totales.Devengado.String())
	f.SetCellValue(hoja, fmt.Sprintf("E%d", fila), totales.AportesPatronales.String())
	f.SetCellValue(hoja, fmt.Sprintf("F%d", fila), totales.AportesPersonales.String())

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"historico_asignacion_%d_%s.xlsx\"",
		asig.ID, time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al generar la planilla")
		return
	}
}

func opcionalExcel(v *decimal.Decimal) interface{} {
	if v == nil {
		return ""
	}
	return v.String()
}
