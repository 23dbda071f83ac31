package models

import (
	"time"

	"github.com/google/uuid"
)

// HistorialCambio registra un cambio de campo sobre un registro.
// Las filas son inmutables: nunca se actualizan ni se eliminan
// (el paquete auditoria no expone ningún camino de mutación).
//
// Anio/Mes se completan cuando el cambio es de alcance mensual
// (histórico), para poder filtrar "qué cambió en marzo 2024" por
// columna en vez de buscar dentro del payload serializado.
type HistorialCambio struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Tabla         string    `gorm:"size:64;index:idx_historial_registro,priority:1;not null" json:"tabla"`
	RegistroID    uint      `gorm:"index:idx_historial_registro,priority:2;not null" json:"registro_id"`
	Campo         string    `gorm:"size:64;not null" json:"campo"`
	ValorAnterior string    `gorm:"size:512" json:"valor_anterior"`
	ValorNuevo    string    `gorm:"size:512" json:"valor_nuevo"`
	Anio          *int      `gorm:"index" json:"anio,omitempty"`
	Mes           *int      `gorm:"index" json:"mes,omitempty"`
	UsuarioID     *uint     `gorm:"index" json:"usuario_id,omitempty"`
	Motivo        string    `gorm:"size:255" json:"motivo,omitempty"`
	IP            string    `gorm:"size:64" json:"ip,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (HistorialCambio) TableName() string { return "historial_cambios" }
