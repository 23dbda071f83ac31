package models

import "time"

// Usuario es la cuenta que opera el sistema; se usa para la
// atribución de auditoría (usuarioRegistro en el histórico).
type Usuario struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	NombreUsuario  string    `gorm:"size:64;uniqueIndex;not null" json:"nombre_usuario"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	NombreCompleto string    `gorm:"size:128" json:"nombre_completo"`
	Activo         bool      `gorm:"default:true" json:"activo"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`

	UltimoAccesoEn *time.Time `json:"ultimo_acceso_en,omitempty"`
	UltimoAccesoIP string     `gorm:"size:64" json:"-"`
}

func (Usuario) TableName() string { return "usuarios" }
