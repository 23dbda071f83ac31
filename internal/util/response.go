package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response es el mapa de datos del sobre de respuesta.
type Response map[string]interface{}

// Códigos de negocio del sobre JSON.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
)

// Success respuesta exitosa uniforme.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error respuesta de error uniforme.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}
