package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nombramiento es la designación de un funcionario en un cargo por
// un rango de fechas. Posee cero o más asignaciones presupuestarias.
type Nombramiento struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	LegajoID    uint            `gorm:"index;not null" json:"legajo_id"`
	Cargo       string          `gorm:"size:128;not null" json:"cargo"`
	FechaInicio time.Time       `gorm:"index;not null" json:"fecha_inicio"`
	FechaFin    *time.Time      `gorm:"index" json:"fecha_fin,omitempty"`
	SueldoBase  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"sueldo_base"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"-"`

	Legajo       Legajo                     `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Asignaciones []AsignacionPresupuestaria `gorm:"foreignKey:NombramientoID" json:"-"`
}

// Vigente indica si el nombramiento está en curso en el instante dado:
// inicio ≤ now y (sin fecha fin o now ≤ fin).
func (n *Nombramiento) Vigente(now time.Time) bool {
	if now.Before(n.FechaInicio) {
		return false
	}
	return n.FechaFin == nil || !now.After(*n.FechaFin)
}

func (Nombramiento) TableName() string { return "nombramientos" }
