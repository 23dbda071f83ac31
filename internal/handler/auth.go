package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/codeark35/legajos-sub000/internal/models"
	"github.com/codeark35/legajos-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler atiende el inicio de sesión. El alta de usuarios es
// administrativa (seed por configuración), no hay registro público.
type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

func NewAuthHandler(db *gorm.DB, jwtSecret, issuer string, ttlHours int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		DB:        db,
		JWTSecret: jwtSecret,
		Issuer:    issuer,
		TokenTTL:  time.Duration(ttlHours) * time.Hour,
	}
}

type loginReq struct {
	Usuario  string `json:"usuario" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "parámetros inválidos")
		return
	}

	req.Usuario = strings.TrimSpace(req.Usuario)

	var usuario models.Usuario
	if err := h.DB.Where("nombre_usuario = ?", req.Usuario).First(&usuario).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "usuario o contraseña incorrectos")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al consultar el usuario")
		}
		return
	}
	if !usuario.Activo {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "usuario inactivo")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "usuario o contraseña incorrectos")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, usuario.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "no se pudo generar el token")
		return
	}

	now := time.Now()
	_ = h.DB.Model(&usuario).Updates(map[string]interface{}{
		"ultimo_acceso_en": now,
		"ultimo_acceso_ip": c.ClientIP(),
	}).Error

	util.Success(c, util.Response{
		"token": token,
		"usuario": gin.H{
			"id":              usuario.ID,
			"nombre_usuario":  usuario.NombreUsuario,
			"nombre_completo": usuario.NombreCompleto,
		},
	})
}

// GetMe devuelve el usuario actual (requiere AuthMiddleware).
func GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		abortNoAuth(c)
		return
	}

	util.Success(c, util.Response{
		"usuario": gin.H{
			"id":              user.ID,
			"nombre_usuario":  user.NombreUsuario,
			"nombre_completo": user.NombreCompleto,
			"created_at":      user.CreatedAt,
		},
	})
}

// SeedAdmin garantiza que exista el usuario administrador configurado.
// Idempotente: si ya existe no toca la contraseña.
func SeedAdmin(db *gorm.DB, usuario, password string) error {
	if usuario == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.Usuario{}).
		Where("nombre_usuario = ?", usuario).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Create(&models.Usuario{
		NombreUsuario:  usuario,
		PasswordHash:   string(hash),
		NombreCompleto: "Administrador",
		Activo:         true,
	}).Error
}
