package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una asignación.
const (
	EstadoBorrador   = "borrador"   // creada, sin meses registrados
	EstadoActiva     = "activa"     // con al menos un mes, sin fecha de cierre
	EstadoFinalizada = "finalizada" // cerrada con fecha fin
)

// AsignacionPresupuestaria vincula un nombramiento con un par
// (categoría, línea) por un período acotado. El histórico mensual
// vive en su propia tabla (HistoricoMensual), no como blob JSON,
// así el formato de la clave (año, mes) queda tipado.
type AsignacionPresupuestaria struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	NombramientoID uint            `gorm:"index;not null" json:"nombramiento_id"`
	CategoriaID    uint            `gorm:"index;not null" json:"categoria_id"`
	LineaID        uint            `gorm:"index;not null" json:"linea_id"`
	ObjetoGasto    string          `gorm:"size:32" json:"objeto_gasto,omitempty"`
	SueldoBase     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"sueldo_base"`
	Moneda         string          `gorm:"size:8;default:PYG" json:"moneda"`
	Estado         string          `gorm:"size:16;index;default:borrador" json:"estado"`
	FechaInicio    *time.Time      `gorm:"index" json:"fecha_inicio,omitempty"`
	FechaFin       *time.Time      `gorm:"index" json:"fecha_fin,omitempty"`
	MotivoCierre   string          `gorm:"size:255" json:"motivo_cierre,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"-"`

	Nombramiento Nombramiento            `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Categoria    CategoriaPresupuestaria `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Linea        LineaPresupuestaria     `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Historico    []HistoricoMensual      `gorm:"foreignKey:AsignacionID" json:"-"`
}

func (AsignacionPresupuestaria) TableName() string { return "asignaciones_presupuestarias" }
