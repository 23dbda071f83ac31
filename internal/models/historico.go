package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// HistoricoMensual es el hecho monetario de un mes calendario de una
// asignación. A lo sumo una fila por (asignación, año, mes); el índice
// único compuesto hace cumplir la invariante en el esquema.
//
// En la API las claves se serializan como año de 4 dígitos y mes de
// 2 dígitos con cero a la izquierda ("01".."12").
type HistoricoMensual struct {
	ID           uint `gorm:"primaryKey" json:"-"`
	AsignacionID uint `gorm:"not null;uniqueIndex:idx_historico_clave,priority:1" json:"-"`
	Anio         int  `gorm:"not null;uniqueIndex:idx_historico_clave,priority:2" json:"anio"`
	Mes          int  `gorm:"not null;uniqueIndex:idx_historico_clave,priority:3" json:"mes"`

	Presupuestado     decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"presupuestado"`
	Devengado         decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0" json:"devengado"`
	AportesPatronales *decimal.Decimal `gorm:"type:decimal(15,2)" json:"aportes_patronales,omitempty"`
	AportesPersonales *decimal.Decimal `gorm:"type:decimal(15,2)" json:"aportes_personales,omitempty"`
	Descuentos        *decimal.Decimal `gorm:"type:decimal(15,2)" json:"descuentos,omitempty"`
	NetoRecibido      *decimal.Decimal `gorm:"type:decimal(15,2)" json:"neto_recibido,omitempty"`
	Observaciones     string           `gorm:"type:text" json:"observaciones,omitempty"`

	// FechaRegistro se estampa en la primera escritura y no cambia
	FechaRegistro   time.Time `json:"fecha_registro"`
	UsuarioRegistro *uint     `gorm:"index" json:"usuario_registro,omitempty"`
	UpdatedAt       time.Time `json:"-"`
}

// ClaveAnio devuelve el año como clave de 4 dígitos ("2024").
func (h *HistoricoMensual) ClaveAnio() string {
	return fmt.Sprintf("%04d", h.Anio)
}

// ClaveMes devuelve el mes como clave de 2 dígitos ("01".."12").
func (h *HistoricoMensual) ClaveMes() string {
	return fmt.Sprintf("%02d", h.Mes)
}

func (HistoricoMensual) TableName() string { return "historico_mensual" }
