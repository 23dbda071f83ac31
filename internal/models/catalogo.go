package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoriaPresupuestaria clasifica el cargo dentro del anexo de personal.
// El rango salarial [SueldoMinimo, SueldoMaximo] es opcional; cuando ambos
// están presentes debe cumplirse min ≤ max (se valida al crear/editar).
type CategoriaPresupuestaria struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	Codigo       string           `gorm:"size:16;uniqueIndex;not null" json:"codigo"`
	Descripcion  string           `gorm:"size:255;not null" json:"descripcion"`
	SueldoMinimo *decimal.Decimal `gorm:"type:decimal(15,2)" json:"sueldo_minimo,omitempty"`
	SueldoMaximo *decimal.Decimal `gorm:"type:decimal(15,2)" json:"sueldo_maximo,omitempty"`
	Activa       bool             `gorm:"index;default:true" json:"activa"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"-"`
}

// LineaPresupuestaria es la línea de financiamiento (rubro) que paga
// una asignación. Referenciada, nunca poseída, por las asignaciones.
type LineaPresupuestaria struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Codigo      string    `gorm:"size:16;uniqueIndex;not null" json:"codigo"`
	Descripcion string    `gorm:"size:255;not null" json:"descripcion"`
	Tipo        string    `gorm:"size:32" json:"tipo"` // permanente / contratado / jornal
	Activa      bool      `gorm:"index;default:true" json:"activa"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

func (CategoriaPresupuestaria) TableName() string { return "categorias_presupuestarias" }

func (LineaPresupuestaria) TableName() string { return "lineas_presupuestarias" }
