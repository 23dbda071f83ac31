// Package periodos deriva los períodos discretos de vigencia de un
// nombramiento a partir de sus asignaciones presupuestarias. No
// persiste nada: es una vista calculada al momento de la consulta.
package periodos

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/codeark35/legajos-sub000/internal/ledger"
	"github.com/codeark35/legajos-sub000/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Periodo resume la vigencia de una asignación con su histórico embebido.
type Periodo struct {
	AsignacionID  uint                      `json:"asignacion_id"`
	Categoria     string                    `json:"categoria"`
	Linea         string                    `json:"linea"`
	Sueldo        decimal.Decimal           `json:"sueldo"`
	Moneda        string                    `json:"moneda"`
	Estado        string                    `json:"estado"`
	FechaInicio   *time.Time                `json:"fecha_inicio"`
	FechaFin      *time.Time                `json:"fecha_fin"`
	Activo        bool                      `json:"activo"`
	Pendiente     bool                      `json:"pendiente"`
	Inconsistente bool                      `json:"inconsistente"`
	Historico     []models.HistoricoMensual `json:"historico"`
	Totales       ledger.Totales            `json:"totales"`
}

type Resolver struct {
	DB *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{DB: db}
}

// Resolve arma la lista de períodos de un nombramiento, de más nuevo
// a más viejo. Exactamente una asignación puede estar activa en un
// instante dado: dos activas simultáneas son un error de carga y se
// reportan como conflicto, nunca se elige una en silencio.
//
// Casos borde: una asignación sin meses y sin fechas es "pendiente"
// (ni activa ni finalizada) y ordena última. Una fecha fin anterior
// a su primer mes registrado se marca Inconsistente; no se corrige.
func (r *Resolver) Resolve(nombramientoID uint, now time.Time) ([]Periodo, error) {
	var nom models.Nombramiento
	if err := r.DB.First(&nom, nombramientoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ledger.NotFoundError{Entidad: "nombramiento", Clave: fmt.Sprint(nombramientoID)}
		}
		return nil, &ledger.StorageError{Err: err}
	}

	var asignaciones []models.AsignacionPresupuestaria
	if err := r.DB.
		Preload("Categoria").
		Preload("Linea").
		Preload("Historico", func(db *gorm.DB) *gorm.DB {
			return db.Order("anio ASC, mes ASC")
		}).
		Where("nombramiento_id = ?", nombramientoID).
		Find(&asignaciones).Error; err != nil {
		return nil, &ledger.StorageError{Err: err}
	}

	periodos := make([]Periodo, 0, len(asignaciones))
	activos := 0
	for i := range asignaciones {
		p := armarPeriodo(&asignaciones[i], now)
		if p.Activo {
			activos++
		}
		periodos = append(periodos, p)
	}

	if activos > 1 {
		return nil, &ledger.ConflictError{
			Motivo: fmt.Sprintf("el nombramiento %d tiene %d asignaciones activas simultáneas; corregir la carga", nombramientoID, activos),
		}
	}

	sort.SliceStable(periodos, func(i, j int) bool {
		a, b := periodos[i], periodos[j]
		// pendientes al final
		if a.Pendiente != b.Pendiente {
			return !a.Pendiente
		}
		if a.Pendiente {
			return a.AsignacionID > b.AsignacionID
		}
		if !a.FechaInicio.Equal(*b.FechaInicio) {
			return a.FechaInicio.After(*b.FechaInicio)
		}
		return a.AsignacionID > b.AsignacionID
	})

	return periodos, nil
}

func armarPeriodo(asig *models.AsignacionPresupuestaria, now time.Time) Periodo {
	p := Periodo{
		AsignacionID: asig.ID,
		Categoria:    asig.Categoria.Codigo,
		Linea:        asig.Linea.Codigo,
		Sueldo:       asig.SueldoBase,
		Moneda:       asig.Moneda,
		Estado:       asig.Estado,
		FechaFin:     asig.FechaFin,
		Historico:    asig.Historico,
		Totales:      ledger.CalcularTotales(asig.Historico),
	}

	// inicio efectivo: primer mes registrado, sino la fecha explícita
	var primerMes *time.Time
	if len(asig.Historico) > 0 {
		h := asig.Historico[0]
		t := time.Date(h.Anio, time.Month(h.Mes), 1, 0, 0, 0, 0, time.UTC)
		primerMes = &t
	}
	switch {
	case primerMes != nil:
		p.FechaInicio = primerMes
	case asig.FechaInicio != nil:
		p.FechaInicio = asig.FechaInicio
	default:
		p.Pendiente = true
	}

	if !p.Pendiente {
		p.Activo = asig.FechaFin == nil || !asig.FechaFin.Before(now)
	}

	if asig.FechaFin != nil && primerMes != nil && asig.FechaFin.Before(*primerMes) {
		p.Inconsistente = true
	}

	return p
}
