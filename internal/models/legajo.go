package models

import "time"

// Legajo es la carpeta de antecedentes de un funcionario.
// Acá solo guardamos lo mínimo que el ledger necesita referenciar.
type Legajo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Numero    string    `gorm:"size:32;uniqueIndex;not null" json:"numero"`
	Documento string    `gorm:"size:32;index" json:"documento"`
	Nombres   string    `gorm:"size:128;not null" json:"nombres"`
	Apellidos string    `gorm:"size:128;not null" json:"apellidos"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (Legajo) TableName() string { return "legajos" }
