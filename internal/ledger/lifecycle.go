package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codeark35/legajos-sub000/internal/auditoria"
	"github.com/codeark35/legajos-sub000/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateInput son los datos para dar de alta una asignación en borrador.
type CreateInput struct {
	NombramientoID uint
	CategoriaID    uint
	LineaID        uint
	ObjetoGasto    string
	SueldoBase     decimal.Decimal
	Moneda         string
	FechaInicio    *time.Time
}

// Crear da de alta una asignación en estado borrador. Valida que el
// nombramiento exista y que la categoría y la línea existan Y estén
// activas; no se vincula financiamiento a códigos dados de baja.
func (s *Service) Crear(in CreateInput, actor auditoria.Actor) (*models.AsignacionPresupuestaria, error) {
	if !in.SueldoBase.IsPositive() {
		return nil, &ValidationError{Campo: "sueldo_base", Motivo: "debe ser mayor que cero"}
	}
	if in.Moneda == "" {
		in.Moneda = "PYG"
	}

	var asig models.AsignacionPresupuestaria
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var nom models.Nombramiento
		if err := tx.First(&nom, in.NombramientoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entidad: "nombramiento", Clave: fmt.Sprint(in.NombramientoID)}
			}
			return &StorageError{Err: err}
		}

		var cat models.CategoriaPresupuestaria
		if err := tx.First(&cat, in.CategoriaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entidad: "categoria", Clave: fmt.Sprint(in.CategoriaID)}
			}
			return &StorageError{Err: err}
		}
		if !cat.Activa {
			return &ValidationError{Campo: "categoria_id", Motivo: "la categoría está inactiva"}
		}

		var lin models.LineaPresupuestaria
		if err := tx.First(&lin, in.LineaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entidad: "linea", Clave: fmt.Sprint(in.LineaID)}
			}
			return &StorageError{Err: err}
		}
		if !lin.Activa {
			return &ValidationError{Campo: "linea_id", Motivo: "la línea está inactiva"}
		}

		asig = models.AsignacionPresupuestaria{
			NombramientoID: in.NombramientoID,
			CategoriaID:    in.CategoriaID,
			LineaID:        in.LineaID,
			ObjetoGasto:    in.ObjetoGasto,
			SueldoBase:     in.SueldoBase,
			Moneda:         in.Moneda,
			Estado:         models.EstadoBorrador,
			FechaInicio:    in.FechaInicio,
		}
		if err := tx.Create(&asig).Error; err != nil {
			return &StorageError{Err: err}
		}

		cambios := []auditoria.Cambio{
			{Tabla: TablaAsignaciones, RegistroID: asig.ID, Campo: "estado", ValorNuevo: models.EstadoBorrador},
			{Tabla: TablaAsignaciones, RegistroID: asig.ID, Campo: "categoria_id", ValorNuevo: cat.Codigo},
			{Tabla: TablaAsignaciones, RegistroID: asig.ID, Campo: "linea_id", ValorNuevo: lin.Codigo},
			{Tabla: TablaAsignaciones, RegistroID: asig.ID, Campo: "sueldo_base", ValorNuevo: in.SueldoBase.String()},
		}
		return s.Audit.RecordAll(tx, actor, cambios)
	})
	if err != nil {
		return nil, err
	}
	return &asig, nil
}

// Finalizar cierra una asignación activa con fecha fin y motivo.
// La fecha fin no puede ser anterior al inicio efectivo (el primer
// mes registrado, o la fecha de inicio explícita si no hay meses).
func (s *Service) Finalizar(asignacionID uint, fechaFin time.Time, motivo string, actor auditoria.Actor) (*models.AsignacionPresupuestaria, error) {
	var asig *models.AsignacionPresupuestaria
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		asig, err = buscarAsignacion(tx, asignacionID)
		if err != nil {
			return err
		}
		if asig.Estado != models.EstadoActiva {
			return &ConflictError{Motivo: fmt.Sprintf("solo una asignación activa puede finalizarse (estado actual: %s)", asig.Estado)}
		}

		inicio, err := inicioEfectivo(tx, asig)
		if err != nil {
			return err
		}
		if inicio != nil && fechaFin.Before(*inicio) {
			return &ConflictError{Motivo: fmt.Sprintf("fecha fin %s anterior al inicio efectivo %s",
				fechaFin.Format("2006-01-02"), inicio.Format("2006-01-02"))}
		}

		updates := map[string]interface{}{
			"estado":        models.EstadoFinalizada,
			"fecha_fin":     fechaFin,
			"motivo_cierre": motivo,
		}
		if err := tx.Model(asig).Updates(updates).Error; err != nil {
			return &StorageError{Err: err}
		}

		cambios := []auditoria.Cambio{
			{Tabla: TablaAsignaciones, RegistroID: asig.ID, Campo: "estado",
				ValorAnterior: models.EstadoActiva, ValorNuevo: models.EstadoFinalizada, Motivo: motivo},
			{Tabla: TablaAsignaciones, RegistroID: asig.ID, Campo: "fecha_fin",
				ValorNuevo: fechaFin.Format("2006-01-02"), Motivo: motivo},
		}
		return s.Audit.RecordAll(tx, actor, cambios)
	})
	if err != nil {
		return nil, err
	}
	return asig, nil
}

// Reabrir vuelve una asignación finalizada a activa para corrección
// histórica. Decisión de producto: la reapertura está permitida pero
// exige motivo y queda auditada como cambio de estado.
func (s *Service) Reabrir(asignacionID uint, motivo string, actor auditoria.Actor) (*models.AsignacionPresupuestaria, error) {
	if strings.TrimSpace(motivo) == "" {
		return nil, &ValidationError{Campo: "motivo", Motivo: "la reapertura exige un motivo"}
	}

	var asig *models.AsignacionPresupuestaria
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		asig, err = buscarAsignacion(tx, asignacionID)
		if err != nil {
			return err
		}
		if asig.Estado != models.EstadoFinalizada {
			return &ConflictError{Motivo: "solo una asignación finalizada puede reabrirse"}
		}

		fechaFinAnterior := ""
		if asig.FechaFin != nil {
			fechaFinAnterior = asig.FechaFin.Format("2006-01-02")
		}

		updates := map[string]interface{}{
			"estado":        models.EstadoActiva,
			"fecha_fin":     nil,
			"motivo_cierre": "",
		}
		if err := tx.Model(asig).Updates(updates).Error; err != nil {
			return &StorageError{Err: err}
		}

		cambios := []auditoria.Cambio{
			{Tabla: TablaAsignaciones, RegistroID: asig.ID, Campo: "estado",
				ValorAnterior: models.EstadoFinalizada, ValorNuevo: models.EstadoActiva, Motivo: motivo},
			{Tabla: TablaAsignaciones, RegistroID: asig.ID, Campo: "fecha_fin",
				ValorAnterior: fechaFinAnterior, Motivo: motivo},
		}
		return s.Audit.RecordAll(tx, actor, cambios)
	})
	if err != nil {
		return nil, err
	}
	return asig, nil
}

// Eliminar borra el contenedor solo si el ledger está vacío; una
// asignación con meses registrados no se elimina, se finaliza.
func (s *Service) Eliminar(asignacionID uint, actor auditoria.Actor) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		asig, err := buscarAsignacion(tx, asignacionID)
		if err != nil {
			return err
		}

		var meses int64
		if err := tx.Model(&models.HistoricoMensual{}).
			Where("asignacion_id = ?", asignacionID).
			Count(&meses).Error; err != nil {
			return &StorageError{Err: err}
		}
		if meses > 0 {
			return &ConflictError{Motivo: fmt.Sprintf("la asignación tiene %d meses registrados; finalizarla en vez de eliminarla", meses)}
		}

		if err := tx.Delete(asig).Error; err != nil {
			return &StorageError{Err: err}
		}

		cambio := auditoria.Cambio{
			Tabla:         TablaAsignaciones,
			RegistroID:    asig.ID,
			Campo:         "estado",
			ValorAnterior: asig.Estado,
			Motivo:        "eliminación de asignación sin histórico",
		}
		return s.Audit.Record(tx, actor, cambio)
	})
}

// inicioEfectivo: primer día del mes más antiguo registrado, o la
// fecha de inicio explícita si el histórico está vacío, o nil.
func inicioEfectivo(tx *gorm.DB, asig *models.AsignacionPresupuestaria) (*time.Time, error) {
	var primera models.HistoricoMensual
	err := tx.Where("asignacion_id = ?", asig.ID).
		Order("anio ASC, mes ASC").
		First(&primera).Error
	if err == nil {
		inicio := time.Date(primera.Anio, time.Month(primera.Mes), 1, 0, 0, 0, 0, time.UTC)
		return &inicio, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &StorageError{Err: err}
	}
	return asig.FechaInicio, nil
}
