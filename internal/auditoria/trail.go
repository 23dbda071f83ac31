package auditoria

import (
	"fmt"
	"time"

	"github.com/codeark35/legajos-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor identifica a quién se atribuye una mutación. Se pasa explícito
// en cada llamada: ningún servicio lee el usuario de estado ambiente.
type Actor struct {
	UsuarioID uint
	IP        string
}

// UsuarioRef devuelve el id como puntero para columnas opcionales,
// nil cuando el actor es anónimo (id cero).
func (a Actor) UsuarioRef() *uint {
	if a.UsuarioID == 0 {
		return nil
	}
	id := a.UsuarioID
	return &id
}

// Cambio describe una modificación de campo a registrar.
type Cambio struct {
	Tabla         string
	RegistroID    uint
	Campo         string
	ValorAnterior string
	ValorNuevo    string
	Anio          *int // solo para cambios de alcance mensual
	Mes           *int
	Motivo        string
}

// Trail es el registro de auditoría append-only. Solo expone
// inserción y consulta; no existe actualización ni borrado.
type Trail struct {
	DB *gorm.DB
}

func NewTrail(db *gorm.DB) *Trail {
	return &Trail{DB: db}
}

// Record inserta una entrada inmutable dentro de la transacción dada.
// El timestamp es el del momento de la llamada.
func (t *Trail) Record(tx *gorm.DB, actor Actor, c Cambio) error {
	entry := models.HistorialCambio{
		ID:            uuid.New(),
		Tabla:         c.Tabla,
		RegistroID:    c.RegistroID,
		Campo:         c.Campo,
		ValorAnterior: c.ValorAnterior,
		ValorNuevo:    c.ValorNuevo,
		Anio:          c.Anio,
		Mes:           c.Mes,
		UsuarioID:     actor.UsuarioRef(),
		Motivo:        c.Motivo,
		IP:            actor.IP,
		CreatedAt:     time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// RecordAll inserta un lote de cambios (una entrada por campo) en la
// misma transacción; o entran todas o ninguna.
func (t *Trail) RecordAll(tx *gorm.DB, actor Actor, cambios []Cambio) error {
	for _, c := range cambios {
		if err := t.Record(tx, actor, c); err != nil {
			return err
		}
	}
	return nil
}

// QueryByRecord devuelve las entradas de un registro en orden cronológico.
func (t *Trail) QueryByRecord(tabla string, registroID uint) ([]models.HistorialCambio, error) {
	var entries []models.HistorialCambio
	if err := t.DB.
		Where("tabla = ? AND registro_id = ?", tabla, registroID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("query audit by record: %w", err)
	}
	return entries, nil
}

// QueryByPeriod devuelve las entradas de un registro acotadas a un
// (año, mes): "qué cambió para marzo 2024".
func (t *Trail) QueryByPeriod(tabla string, registroID uint, anio, mes int) ([]models.HistorialCambio, error) {
	var entries []models.HistorialCambio
	if err := t.DB.
		Where("tabla = ? AND registro_id = ? AND anio = ? AND mes = ?", tabla, registroID, anio, mes).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("query audit by period: %w", err)
	}
	return entries, nil
}
