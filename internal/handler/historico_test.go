package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/codeark35/legajos-sub000/internal/config"
	"github.com/codeark35/legajos-sub000/internal/handler"
	"github.com/codeark35/legajos-sub000/internal/models"
	"github.com/codeark35/legajos-sub000/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServer levanta el router completo contra una base sqlite
// temporal con un admin y una asignación de prueba ya cargados.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	if err := handler.SeedAdmin(db, "admin", "secreto123"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	legajo := models.Legajo{Numero: "L-001", Nombres: "María", Apellidos: "González"}
	if err := db.Create(&legajo).Error; err != nil {
		t.Fatalf("create legajo: %v", err)
	}
	nom := models.Nombramiento{
		LegajoID:    legajo.ID,
		Cargo:       "Profesor Titular",
		FechaInicio: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		SueldoBase:  decimal.NewFromInt(3000000),
	}
	if err := db.Create(&nom).Error; err != nil {
		t.Fatalf("create nombramiento: %v", err)
	}
	cat := models.CategoriaPresupuestaria{Codigo: "C01", Descripcion: "Docente", Activa: true}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("create categoria: %v", err)
	}
	lin := models.LineaPresupuestaria{Codigo: "111", Descripcion: "Sueldos", Tipo: "permanente", Activa: true}
	if err := db.Create(&lin).Error; err != nil {
		t.Fatalf("create linea: %v", err)
	}
	asig := models.AsignacionPresupuestaria{
		NombramientoID: nom.ID,
		CategoriaID:    cat.ID,
		LineaID:        lin.ID,
		SueldoBase:     decimal.NewFromInt(3000000),
		Moneda:         "PYG",
		Estado:         models.EstadoBorrador,
	}
	if err := db.Create(&asig).Error; err != nil {
		t.Fatalf("create asignacion: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.JWT.Secret = "clave-de-prueba"
	cfg.JWT.Issuer = "legajos-test"
	cfg.JWT.ExpireHours = 1

	return router.SetupRouter(cfg, db)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", `{"usuario":"admin","password":"secreto123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Code int `json:"code"`
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("login sin token")
	}
	return resp.Data.Token
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	r := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", `{"usuario":"admin","password":"otra"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestHistorico_SinToken(t *testing.T) {
	r := setupServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/asignaciones/1/historico", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestGuardarMes_HTTP(t *testing.T) {
	r := setupServer(t)
	token := login(t, r)

	path := "/api/asignaciones/1/historico/2024/03"
	body := `{"presupuestado":"3000000","devengado":"2950000","observaciones":"carga de marzo"}`

	w := doJSON(t, r, http.MethodPut, path, token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Historico models.HistoricoMensual `json:"historico"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != 0 {
		t.Errorf("code = %d, want 0", resp.Code)
	}
	h := resp.Data.Historico
	if h.Anio != 2024 || h.Mes != 3 {
		t.Errorf("clave guardada = (%d, %d), want (2024, 3)", h.Anio, h.Mes)
	}
	if !h.Presupuestado.Equal(decimal.NewFromInt(3000000)) {
		t.Errorf("presupuestado = %s, want 3000000", h.Presupuestado)
	}

	// vuelve por GET
	w = doJSON(t, r, http.MethodGet, path, token, "")
	if w.Code != http.StatusOK {
		t.Errorf("GET status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestGuardarMes_MesSinCeroALaIzquierda(t *testing.T) {
	r := setupServer(t)
	token := login(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/asignaciones/1/historico/2024/3", token, `{"presupuestado":"1000"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 para clave de mes %q", w.Code, "3")
	}
}

func TestGuardarMes_AnioFueraDeRango(t *testing.T) {
	r := setupServer(t)
	token := login(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/asignaciones/1/historico/1996/01", token, `{"presupuestado":"1000"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGuardarMes_PresupuestadoInvalido(t *testing.T) {
	r := setupServer(t)
	token := login(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/asignaciones/1/historico/2024/03", token, `{"presupuestado":"0"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
}

func TestEliminarMes_HTTP(t *testing.T) {
	r := setupServer(t)
	token := login(t, r)

	// borrar lo que no existe es 404
	w := doJSON(t, r, http.MethodDelete, "/api/asignaciones/1/historico/2024/03", token, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("DELETE inexistente status = %d, want 404", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/api/asignaciones/1/historico/2024/03", token, `{"presupuestado":"1000"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, "/api/asignaciones/1/historico/2024/03", token, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", w.Code)
	}
}

func TestAsignacionInexistente_HTTP(t *testing.T) {
	r := setupServer(t)
	token := login(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/asignaciones/999/historico/2024/03", token, `{"presupuestado":"1000"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404, body = %s", w.Code, w.Body.String())
	}
}

func TestAuditoriaMes_HTTP(t *testing.T) {
	r := setupServer(t)
	token := login(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/asignaciones/1/historico/2024/03", token, `{"presupuestado":"1000"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/asignaciones/1/auditoria/2024/03", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET auditoría status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Code int `json:"code"`
		Data struct {
			Entradas []models.HistorialCambio `json:"auditoria"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Entradas) == 0 {
		t.Error("la carga del mes no dejó entradas de auditoría para el período")
	}
}
