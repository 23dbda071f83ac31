package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/codeark35/legajos-sub000/internal/models"
	"github.com/codeark35/legajos-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware valida el JWT y deja el usuario actual en el context.
// Los servicios NUNCA leen este valor: los handlers arman el actor y
// lo pasan explícito en cada llamada al ledger.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) query ?token=xxx (descargas donde no se puede setear header)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "no autenticado")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "sesión vencida, volver a iniciar sesión")
			c.Abort()
			return
		}

		var usuario models.Usuario
		if err := db.First(&usuario, claims.UsuarioID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "usuario inexistente")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error al consultar el usuario")
			}
			c.Abort()
			return
		}
		if !usuario.Activo {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "usuario inactivo")
			c.Abort()
			return
		}

		c.Set("currentUser", &usuario)
		c.Next()
	}
}
