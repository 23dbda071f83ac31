package database

import (
	"fmt"

	"github.com/codeark35/legajos-sub000/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate crea/actualiza el esquema para todos los modelos.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Usuario{},
		&models.CategoriaPresupuestaria{},
		&models.LineaPresupuestaria{},
		&models.Legajo{},
		&models.Nombramiento{},
		&models.AsignacionPresupuestaria{},
		&models.HistoricoMensual{},
		&models.HistorialCambio{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
