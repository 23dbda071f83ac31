package ledger

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/codeark35/legajos-sub000/internal/auditoria"
	"github.com/codeark35/legajos-sub000/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
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
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testService(t *testing.T) (*Service, *auditoria.Trail) {
	t.Helper()
	db := testDB(t)
	trail := auditoria.NewTrail(db)
	return NewService(db, trail), trail
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

var actor = auditoria.Actor{UsuarioID: 1, IP: "127.0.0.1"}

// fixtureAsignacion deja una asignación en borrador con su nombramiento,
// categoría y línea, y devuelve la asignación creada.
func fixtureAsignacion(t *testing.T, s *Service) *models.AsignacionPresupuestaria {
	t.Helper()
	db := s.DB

	legajo := models.Legajo{Numero: "L-001", Nombres: "María", Apellidos: "González"}
	if err := db.Create(&legajo).Error; err != nil {
		t.Fatalf("create legajo: %v", err)
	}
	nombramiento := models.Nombramiento{
		LegajoID:    legajo.ID,
		Cargo:       "Profesor Titular",
		FechaInicio: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		SueldoBase:  dec(3000000),
	}
	if err := db.Create(&nombramiento).Error; err != nil {
		t.Fatalf("create nombramiento: %v", err)
	}
	categoria := models.CategoriaPresupuestaria{Codigo: "C01", Descripcion: "Docente", Activa: true}
	if err := db.Create(&categoria).Error; err != nil {
		t.Fatalf("create categoria: %v", err)
	}
	linea := models.LineaPresupuestaria{Codigo: "111", Descripcion: "Sueldos", Tipo: "permanente", Activa: true}
	if err := db.Create(&linea).Error; err != nil {
		t.Fatalf("create linea: %v", err)
	}

	asig, err := s.Crear(CreateInput{
		NombramientoID: nombramiento.ID,
		CategoriaID:    categoria.ID,
		LineaID:        linea.ID,
		SueldoBase:     dec(3000000),
	}, actor)
	if err != nil {
		t.Fatalf("crear asignacion: %v", err)
	}
	return asig
}

// ==================== GuardarMes ====================

func TestGuardarMes_RoundTrip(t *testing.T) {
	s, _ := testService(t)
	asig := fixtureAsignacion(t, s)

	in := MonthInput{
		Presupuestado: dec(3000000),
		Devengado:     decPtr(2950000),
		Descuentos:    decPtr(50000),
		Observaciones: "ajuste de marzo",
	}
	guardado, err := s.GuardarMes(asig.ID, 2024, 3, in, actor)
	if err != nil {
		t.Fatalf("GuardarMes() error = %v, want nil", err)
	}
	if guardado.FechaRegistro.IsZero() {
		t.Error("FechaRegistro no fue estampada en la primera escritura")
	}

	leido, err := s.ObtenerMes(asig.ID, 2024, 3)
	if err != nil {
		t.Fatalf("ObtenerMes() error = %v", err)
	}
	if leido == nil {
		t.Fatal("ObtenerMes() = nil, want hecho guardado")
	}
	if !leido.Presupuestado.Equal(dec(3000000)) {
		t.Errorf("Presupuestado = %s, want 3000000", leido.Presupuestado)
	}
	if !leido.Devengado.Equal(dec(2950000)) {
		t.Errorf("Devengado = %s, want 2950000", leido.Devengado)
	}
	if leido.Descuentos == nil || !leido.Descuentos.Equal(dec(50000)) {
		t.Errorf("Descuentos = %v, want 50000", leido.Descuentos)
	}
	if leido.AportesPatronales != nil {
		t.Errorf("AportesPatronales = %v, want nil", leido.AportesPatronales)
	}
	if leido.Observaciones != "ajuste de marzo" {
		t.Errorf("Observaciones = %q", leido.Observaciones)
	}
}

func TestGuardarMes_DevengadoAusente(t *testing.T) {
	s, _ := testService(t)
	asig := fixtureAsignacion(t, s)

	if _, err := s.GuardarMes(asig.ID, 2024, 1, MonthInput{Presupuestado: dec(3000000)}, actor); err != nil {
		t.Fatalf("GuardarMes() error = %v", err)
	}

	meses, err := s.ObtenerAnio(asig.ID, 2024)
	if err != nil {
		t.Fatalf("ObtenerAnio() error = %v", err)
	}
	fact, ok := meses["01"]
	if !ok {
		t.Fatalf("ObtenerAnio() sin clave %q, claves = %v", "01", claves(meses))
	}
	if !fact.Presupuestado.Equal(dec(3000000)) {
		t.Errorf("Presupuestado = %s, want 3000000", fact.Presupuestado)
	}
	if !fact.Devengado.IsZero() {
		t.Errorf("Devengado = %s, want 0", fact.Devengado)
	}
}

func claves(m map[string]models.HistoricoMensual) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestGuardarMes_PresupuestadoNoPositivo(t *testing.T) {
	s, _ := testService(t)
	asig := fixtureAsignacion(t, s)

	for _, v := range []int64{0, -1, -3000000} {
		_, err := s.GuardarMes(asig.ID, 2024, 1, MonthInput{Presupuestado: dec(v)}, actor)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("GuardarMes(presupuestado=%d) error = %v, want ValidationError", v, err)
			continue
		}
		if ve.Campo != "presupuestado" {
			t.Errorf("campo = %q, want presupuestado", ve.Campo)
		}
	}
}

func TestGuardarMes_ClaveFueraDeRango(t *testing.T) {
	testCases := []struct {
		anio, mes int
		campo     string
	}{
		{1996, 1, "anio"},
		{2101, 1, "anio"},
		{2024, 0, "mes"},
		{2024, 13, "mes"},
	}

	s, _ := testService(t)
	asig := fixtureAsignacion(t, s)

	for _, tc := range testCases {
		_, err := s.GuardarMes(asig.ID, tc.anio, tc.mes, MonthInput{Presupuestado: dec(1000)}, actor)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("GuardarMes(%d, %d) error = %v, want ValidationError", tc.anio, tc.mes, err)
			continue
		}
		if ve.Campo != tc.campo {
			t.Errorf("GuardarMes(%d, %d) campo = %q, want %q", tc.anio, tc.mes, ve.Campo, tc.campo)
		}
	}
}

func TestGuardarMes_MontoOpcionalNegativo(t *testing.T) {
	s, _ := testService(t)
	asig := fixtureAsignacion(t, s)

	in := MonthInput{Presupuestado: dec(1000), AportesPatronales: decPtr(-1)}
	_, err := s.GuardarMes(asig.ID, 2024, 1, in, actor)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if ve.Campo != "aportes_patronales" {
		t.Errorf("campo = %q, want aportes_patronales", ve.Campo)
	}
}

func TestGuardarMes_SobrescribeSinReestampar(t *testing.T) {
	s, _ := testService(t)
	asig := fixtureAsignacion(t, s)

	if _, err := s.GuardarMes(asig.ID, 2024, 5, MonthInput{Presupuestado: dec(1000)}, actor); err != nil {
		t.Fatalf("primera escritura: %v", err)
	}
	primero, _ := s.ObtenerMes(asig.ID, 2024, 5)

	// reenvío con otro monto: sobrescribe en silencio (PUT idempotente)
	if _, err := s.GuardarMes(asig.ID, 2024, 5, MonthInput{Presupuestado: dec(2000)}, actor); err != nil {
		t.Fatalf("segunda escritura: %v", err)
	}
	segundo, _ := s.ObtenerMes(asig.ID, 2024, 5)

	if !segundo.Presupuestado.Equal(dec(2000)) {
		t.Errorf("Presupuestado = %s, want 2000", segundo.Presupuestado)
	}
	if !segundo.FechaRegistro.Equal(primero.FechaRegistro) {
		t.Errorf("FechaRegistro cambió de %v a %v; debe estamparse solo una vez",
			primero.FechaRegistro, segundo.FechaRegistro)
	}

	// una sola fila para la clave
	var count int64
	s.DB.Model(&models.HistoricoMensual{}).
		Where("asignacion_id = ? AND anio = ? AND mes = ?", asig.ID, 2024, 5).
		Count(&count)
	if count != 1 {
		t.Errorf("filas para la clave = %d, want 1", count)
	}
}

func TestGuardarMes_AsignacionInexistente(t *testing.T) {
	s, _ := testService(t)

	_, err := s.GuardarMes(9999, 2024, 1, MonthInput{Presupuestado: dec(1000)}, actor)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestGuardarMes_AsignacionFinalizada(t *testing.T) {
	s, _ := testService(t)
	asig := fixtureAsignacion(t, s)

	if _, err := s.GuardarMes(asig.ID, 2024, 1, MonthInput{Presupuestado: dec(1000)}, actor); err != nil {
		t.Fatalf("GuardarMes() error = %v", err)
	}
	if _, err := s.Finalizar(asig.ID, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), "fin de contrato", actor); err != nil {
		t.Fatalf("Finalizar() error = %v", err)
	}

	_, err := s.GuardarMes(asig.ID, 2024, 2, MonthInput{Presupuestado: dec(1000)}, actor)
	var cf *ConflictError
	if !errors.As(err, &cf) {
		t.Fatalf("GuardarMes() sobre finalizada error = %v, want ConflictError", err)
	}
}

// ==================== EliminarMes ====================

func TestEliminarMes_NoExiste(t *testing.T) {
	s, _ := testService(t)
	asig := fixtureAsignacion(t, s)

	err := s.EliminarMes(asig.ID, 2024, 1, actor)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("EliminarMes() sobre clave ausente error = %v, want NotFoundError", err)
	}
}

func TestEliminarMes(t *testing.T) {
	s, _ := testService(t)
	asig := fixtureAsignacion(t, s)

	if _, err := s.GuardarMes(asig.ID, 2024, 1, MonthInput{Presupuestado: dec(1000)}, actor); err != nil {
		t.Fatalf("GuardarMes() error = %v", err)
	}
	if err := s.EliminarMes(asig.ID, 2024, 1, actor); err != nil {
		t.Fatalf("EliminarMes() error = %v", err)
	}

	fact, err := s.ObtenerMes(asig.ID, 2024, 1)
	if err != nil {
		t.Fatalf("ObtenerMes() error = %v", err)
	}
	if fact != nil {
		t.Errorf("ObtenerMes() tras eliminar = %+v, want nil", fact)
	}
}

// ==================== auditoría por mutación ====================

func TestAuditoria_CadaMutacionDejaRastro(t *testing.T) {
	s, trail := testService(t)
	asig := fixtureAsignacion(t, s)

	if _, err := s.GuardarMes(asig.ID, 2024, 3, MonthInput{Presupuestado: dec(3000000)}, actor); err != nil {
		t.Fatalf("GuardarMes() error = %v", err)
	}
	entradas, err := trail.QueryByPeriod(TablaHistorico, asig.ID, 2024, 3)
	if err != nil {
		t.Fatalf("QueryByPeriod() error = %v", err)
	}
	if len(entradas) == 0 {
		t.Fatal("alta de mes sin entradas de auditoría")
	}
	for _, e := range entradas {
		if e.RegistroID != asig.ID {
			t.Errorf("RegistroID = %d, want %d", e.RegistroID, asig.ID)
		}
	}
	trasAlta := len(entradas)

	// reenvío idéntico: igual deja al menos una entrada
	if _, err := s.GuardarMes(asig.ID, 2024, 3, MonthInput{Presupuestado: dec(3000000)}, actor); err != nil {
		t.Fatalf("reenvío error = %v", err)
	}
	entradas, _ = trail.QueryByPeriod(TablaHistorico, asig.ID, 2024, 3)
	if len(entradas) <= trasAlta {
		t.Errorf("reenvío idéntico no dejó rastro: %d entradas antes y después", trasAlta)
	}
	trasReenvio := len(entradas)

	if err := s.EliminarMes(asig.ID, 2024, 3, actor); err != nil {
		t.Fatalf("EliminarMes() error = %v", err)
	}
	entradas, _ = trail.QueryByPeriod(TablaHistorico, asig.ID, 2024, 3)
	if len(entradas) <= trasReenvio {
		t.Error("eliminación de mes sin entradas de auditoría")
	}
}

func TestAuditoria_AltaDistintaDeModificacion(t *testing.T) {
	s, trail := testService(t)
	asig := fixtureAsignacion(t, s)

	if _, err := s.GuardarMes(asig.ID, 2024, 1, MonthInput{Presupuestado: dec(1000)}, actor); err != nil {
		t.Fatalf("GuardarMes() error = %v", err)
	}
	if _, err := s.GuardarMes(asig.ID, 2024, 1, MonthInput{Presupuestado: dec(2000)}, actor); err != nil {
		t.Fatalf("GuardarMes() error = %v", err)
	}

	entradas, _ := trail.QueryByPeriod(TablaHistorico, asig.ID, 2024, 1)
	var alta, modificacion bool
	for _, e := range entradas {
		if e.Campo != "presupuestado" {
			continue
		}
		if e.ValorAnterior == "" && e.ValorNuevo == "1000" {
			alta = true
		}
		if e.ValorAnterior == "1000" && e.ValorNuevo == "2000" {
			modificacion = true
		}
	}
	if !alta {
		t.Error("falta la entrada de alta (valor anterior vacío)")
	}
	if !modificacion {
		t.Error("falta la entrada de modificación (1000 → 2000)")
	}
}

// ==================== totales ====================

func TestCalcularTotales_Vacio(t *testing.T) {
	tot := CalcularTotales(nil)
	if !tot.Presupuestado.IsZero() || !tot.Devengado.IsZero() ||
		!tot.AportesPatronales.IsZero() || !tot.AportesPersonales.IsZero() {
		t.Errorf("CalcularTotales(nil) = %+v, want todo cero", tot)
	}
}

func TestCalcularTotales_Suma(t *testing.T) {
	facts := []models.HistoricoMensual{
		{Presupuestado: dec(1000), Devengado: dec(900), AportesPatronales: decPtr(100)},
		{Presupuestado: dec(2000), Devengado: dec(1800)}, // opcionales ausentes aportan 0
		{Presupuestado: dec(3000), Devengado: dec(2700), AportesPatronales: decPtr(300), AportesPersonales: decPtr(150)},
	}

	tot := CalcularTotales(facts)
	if !tot.Presupuestado.Equal(dec(6000)) {
		t.Errorf("Presupuestado = %s, want 6000", tot.Presupuestado)
	}
	if !tot.Devengado.Equal(dec(5400)) {
		t.Errorf("Devengado = %s, want 5400", tot.Devengado)
	}
	if !tot.AportesPatronales.Equal(dec(400)) {
		t.Errorf("AportesPatronales = %s, want 400", tot.AportesPatronales)
	}
	if !tot.AportesPersonales.Equal(dec(150)) {
		t.Errorf("AportesPersonales = %s, want 150", tot.AportesPersonales)
	}
}
