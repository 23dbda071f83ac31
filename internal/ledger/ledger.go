package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/codeark35/legajos-sub000/internal/auditoria"
	"github.com/codeark35/legajos-sub000/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rango de años admitido para el histórico mensual.
const (
	AnioMinimo = 1997
	AnioMaximo = 2100
)

// Nombres de tabla que aparecen en las entradas de auditoría.
const (
	TablaAsignaciones = "asignaciones_presupuestarias"
	TablaHistorico    = "historico_mensual"
)

// Service implementa el ledger mensual de una asignación. Toda
// mutación corre dentro de UNA transacción que cubre la fila del
// histórico y sus entradas de auditoría: o persisten ambas o ninguna.
type Service struct {
	DB    *gorm.DB
	Audit *auditoria.Trail
}

func NewService(db *gorm.DB, trail *auditoria.Trail) *Service {
	return &Service{DB: db, Audit: trail}
}

// MonthInput es la carga de un mes. Presupuestado es obligatorio y
// positivo; el resto es opcional y no negativo.
type MonthInput struct {
	Presupuestado     decimal.Decimal
	Devengado         *decimal.Decimal
	AportesPatronales *decimal.Decimal
	AportesPersonales *decimal.Decimal
	Descuentos        *decimal.Decimal
	NetoRecibido      *decimal.Decimal
	Observaciones     string
}

// Totales acumula los campos sumables de un conjunto de meses.
type Totales struct {
	Presupuestado     decimal.Decimal `json:"presupuestado"`
	Devengado         decimal.Decimal `json:"devengado"`
	AportesPatronales decimal.Decimal `json:"aportes_patronales"`
	AportesPersonales decimal.Decimal `json:"aportes_personales"`
}

// ---------- validación ----------

func validarClave(anio, mes int) error {
	if anio < AnioMinimo || anio > AnioMaximo {
		return &ValidationError{Campo: "anio", Motivo: fmt.Sprintf("fuera de rango [%d, %d]", AnioMinimo, AnioMaximo)}
	}
	if mes < 1 || mes > 12 {
		return &ValidationError{Campo: "mes", Motivo: "fuera de rango [1, 12]"}
	}
	return nil
}

func validarMontos(in MonthInput) error {
	if !in.Presupuestado.IsPositive() {
		return &ValidationError{Campo: "presupuestado", Motivo: "debe ser mayor que cero"}
	}
	opcionales := map[string]*decimal.Decimal{
		"devengado":          in.Devengado,
		"aportes_patronales": in.AportesPatronales,
		"aportes_personales": in.AportesPersonales,
		"descuentos":         in.Descuentos,
		"neto_recibido":      in.NetoRecibido,
	}
	for campo, v := range opcionales {
		if v != nil && v.IsNegative() {
			return &ValidationError{Campo: campo, Motivo: "no puede ser negativo"}
		}
	}
	return nil
}

// ---------- operaciones ----------

// GuardarMes crea o sobreescribe el hecho mensual en la clave
// (asignación, año, mes). PUT idempotente: reenviar el mismo mes
// reemplaza sin error; la auditoría distingue alta de modificación
// porque el alta lleva ValorAnterior vacío. FechaRegistro se estampa
// solo en la primera escritura.
func (s *Service) GuardarMes(asignacionID uint, anio, mes int, in MonthInput, actor auditoria.Actor) (*models.HistoricoMensual, error) {
	if err := validarClave(anio, mes); err != nil {
		return nil, err
	}
	if err := validarMontos(in); err != nil {
		return nil, err
	}

	var guardado models.HistoricoMensual
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		asig, err := buscarAsignacion(tx, asignacionID)
		if err != nil {
			return err
		}
		if asig.Estado == models.EstadoFinalizada {
			return &ConflictError{Motivo: "la asignación está finalizada; reabrir antes de editar el histórico"}
		}

		var existente models.HistoricoMensual
		encontrado := true
		if err := tx.Where("asignacion_id = ? AND anio = ? AND mes = ?", asignacionID, anio, mes).
			First(&existente).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return &StorageError{Err: err}
			}
			encontrado = false
		}

		if encontrado {
			guardado = existente
		} else {
			guardado = models.HistoricoMensual{
				AsignacionID:    asignacionID,
				Anio:            anio,
				Mes:             mes,
				FechaRegistro:   time.Now(),
				UsuarioRegistro: actor.UsuarioRef(),
			}
		}
		aplicarInput(&guardado, in)

		var antes *models.HistoricoMensual
		if encontrado {
			antes = &existente
		}
		cambios := cambiosHistorico(asignacionID, anio, mes, antes, &guardado)

		if err := tx.Save(&guardado).Error; err != nil {
			return &StorageError{Err: err}
		}
		if err := s.Audit.RecordAll(tx, actor, cambios); err != nil {
			return &StorageError{Err: err}
		}

		// primer mes registrado: borrador pasa a activa
		if asig.Estado == models.EstadoBorrador {
			if err := tx.Model(asig).Update("estado", models.EstadoActiva).Error; err != nil {
				return &StorageError{Err: err}
			}
			cambioEstado := auditoria.Cambio{
				Tabla:         TablaAsignaciones,
				RegistroID:    asig.ID,
				Campo:         "estado",
				ValorAnterior: models.EstadoBorrador,
				ValorNuevo:    models.EstadoActiva,
			}
			if err := s.Audit.Record(tx, actor, cambioEstado); err != nil {
				return &StorageError{Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &guardado, nil
}

// EliminarMes quita la clave (año, mes) del histórico. Falla con
// NotFoundError si el mes no existe; nunca "borra" en silencio.
func (s *Service) EliminarMes(asignacionID uint, anio, mes int, actor auditoria.Actor) error {
	if err := validarClave(anio, mes); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := buscarAsignacion(tx, asignacionID); err != nil {
			return err
		}

		var existente models.HistoricoMensual
		if err := tx.Where("asignacion_id = ? AND anio = ? AND mes = ?", asignacionID, anio, mes).
			First(&existente).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entidad: "historico", Clave: claveMes(anio, mes)}
			}
			return &StorageError{Err: err}
		}

		cambios := cambiosHistorico(asignacionID, anio, mes, &existente, nil)

		if err := tx.Delete(&existente).Error; err != nil {
			return &StorageError{Err: err}
		}
		if err := s.Audit.RecordAll(tx, actor, cambios); err != nil {
			return &StorageError{Err: err}
		}
		return nil
	})
}

// ObtenerMes devuelve el hecho del mes o nil si la clave no existe.
func (s *Service) ObtenerMes(asignacionID uint, anio, mes int) (*models.HistoricoMensual, error) {
	if err := validarClave(anio, mes); err != nil {
		return nil, err
	}
	if _, err := buscarAsignacion(s.DB, asignacionID); err != nil {
		return nil, err
	}

	var h models.HistoricoMensual
	if err := s.DB.Where("asignacion_id = ? AND anio = ? AND mes = ?", asignacionID, anio, mes).
		First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &StorageError{Err: err}
	}
	return &h, nil
}

// ObtenerAnio devuelve el mapa (ralo) mes→hecho de un año,
// con claves "01".."12".
func (s *Service) ObtenerAnio(asignacionID uint, anio int) (map[string]models.HistoricoMensual, error) {
	if anio < AnioMinimo || anio > AnioMaximo {
		return nil, &ValidationError{Campo: "anio", Motivo: fmt.Sprintf("fuera de rango [%d, %d]", AnioMinimo, AnioMaximo)}
	}
	if _, err := buscarAsignacion(s.DB, asignacionID); err != nil {
		return nil, err
	}

	var filas []models.HistoricoMensual
	if err := s.DB.Where("asignacion_id = ? AND anio = ?", asignacionID, anio).
		Order("mes ASC").
		Find(&filas).Error; err != nil {
		return nil, &StorageError{Err: err}
	}

	meses := make(map[string]models.HistoricoMensual, len(filas))
	for _, f := range filas {
		meses[f.ClaveMes()] = f
	}
	return meses, nil
}

// ObtenerHistorico devuelve el mapa completo año→mes→hecho.
func (s *Service) ObtenerHistorico(asignacionID uint) (map[string]map[string]models.HistoricoMensual, error) {
	if _, err := buscarAsignacion(s.DB, asignacionID); err != nil {
		return nil, err
	}

	var filas []models.HistoricoMensual
	if err := s.DB.Where("asignacion_id = ?", asignacionID).
		Order("anio ASC, mes ASC").
		Find(&filas).Error; err != nil {
		return nil, &StorageError{Err: err}
	}

	historico := make(map[string]map[string]models.HistoricoMensual)
	for _, f := range filas {
		anio := f.ClaveAnio()
		if historico[anio] == nil {
			historico[anio] = make(map[string]models.HistoricoMensual)
		}
		historico[anio][f.ClaveMes()] = f
	}
	return historico, nil
}

// CalcularTotales suma presupuestado, devengado y aportes sobre los
// meses dados. Un opcional ausente aporta cero.
func CalcularTotales(facts []models.HistoricoMensual) Totales {
	t := Totales{
		Presupuestado:     decimal.Zero,
		Devengado:         decimal.Zero,
		AportesPatronales: decimal.Zero,
		AportesPersonales: decimal.Zero,
	}
	for i := range facts {
		f := &facts[i]
		t.Presupuestado = t.Presupuestado.Add(f.Presupuestado)
		t.Devengado = t.Devengado.Add(f.Devengado)
		if f.AportesPatronales != nil {
			t.AportesPatronales = t.AportesPatronales.Add(*f.AportesPatronales)
		}
		if f.AportesPersonales != nil {
			t.AportesPersonales = t.AportesPersonales.Add(*f.AportesPersonales)
		}
	}
	return t
}

// ---------- helpers ----------

func buscarAsignacion(tx *gorm.DB, id uint) (*models.AsignacionPresupuestaria, error) {
	var asig models.AsignacionPresupuestaria
	if err := tx.First(&asig, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entidad: "asignacion", Clave: fmt.Sprint(id)}
		}
		return nil, &StorageError{Err: err}
	}
	return &asig, nil
}

func claveMes(anio, mes int) string {
	return fmt.Sprintf("%04d-%02d", anio, mes)
}

func aplicarInput(h *models.HistoricoMensual, in MonthInput) {
	h.Presupuestado = in.Presupuestado
	if in.Devengado != nil {
		h.Devengado = *in.Devengado
	} else {
		h.Devengado = decimal.Zero
	}
	h.AportesPatronales = in.AportesPatronales
	h.AportesPersonales = in.AportesPersonales
	h.Descuentos = in.Descuentos
	h.NetoRecibido = in.NetoRecibido
	h.Observaciones = in.Observaciones
}

func valorOpcional(v *decimal.Decimal) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// snapshotCampos lista (campo, valor serializado) en orden fijo.
// Para h == nil devuelve todos los valores vacíos.
func snapshotCampos(h *models.HistoricoMensual) [][2]string {
	if h == nil {
		return [][2]string{
			{"presupuestado", ""},
			{"devengado", ""},
			{"aportes_patronales", ""},
			{"aportes_personales", ""},
			{"descuentos", ""},
			{"neto_recibido", ""},
			{"observaciones", ""},
		}
	}
	return [][2]string{
		{"presupuestado", h.Presupuestado.String()},
		{"devengado", h.Devengado.String()},
		{"aportes_patronales", valorOpcional(h.AportesPatronales)},
		{"aportes_personales", valorOpcional(h.AportesPersonales)},
		{"descuentos", valorOpcional(h.Descuentos)},
		{"neto_recibido", valorOpcional(h.NetoRecibido)},
		{"observaciones", h.Observaciones},
	}
}

// cambiosHistorico arma una entrada de auditoría por campo que cambió
// entre antes y después (nil = inexistente). Si nada cambió (reenvío
// idéntico) se registra igual UNA entrada de campo "registro" para que
// toda mutación exitosa deje rastro.
func cambiosHistorico(asignacionID uint, anio, mes int, antes, despues *models.HistoricoMensual) []auditoria.Cambio {
	a := anio
	m := mes
	sa := snapshotCampos(antes)
	sd := snapshotCampos(despues)

	var cambios []auditoria.Cambio
	for i := range sa {
		if sa[i][1] == sd[i][1] {
			continue
		}
		cambios = append(cambios, auditoria.Cambio{
			Tabla:         TablaHistorico,
			RegistroID:    asignacionID,
			Campo:         sa[i][0],
			ValorAnterior: sa[i][1],
			ValorNuevo:    sd[i][1],
			Anio:          &a,
			Mes:           &m,
		})
	}

	if len(cambios) == 0 {
		snap, _ := json.Marshal(mapaCampos(sd))
		cambios = append(cambios, auditoria.Cambio{
			Tabla:         TablaHistorico,
			RegistroID:    asignacionID,
			Campo:         "registro",
			ValorAnterior: string(snap),
			ValorNuevo:    string(snap),
			Anio:          &a,
			Mes:           &m,
			Motivo:        "reenvío sin cambios",
		})
	}
	return cambios
}

func mapaCampos(snap [][2]string) map[string]string {
	m := make(map[string]string, len(snap))
	for _, par := range snap {
		m[par[0]] = par[1]
	}
	return m
}
