package handler

import (
	"errors"
	"net/http"

	"github.com/codeark35/legajos-sub000/internal/auditoria"
	"github.com/codeark35/legajos-sub000/internal/ledger"
	"github.com/codeark35/legajos-sub000/internal/models"
	"github.com/codeark35/legajos-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser saca el usuario que dejó AuthMiddleware en el context.
func currentUser(c *gin.Context) (*models.Usuario, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.Usuario)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// currentActor arma el actor explícito que se pasa a cada llamada del
// ledger: ningún servicio vuelve a mirar el context de la request.
func currentActor(c *gin.Context) (auditoria.Actor, bool) {
	user, ok := currentUser(c)
	if !ok {
		return auditoria.Actor{}, false
	}
	return auditoria.Actor{UsuarioID: user.ID, IP: c.ClientIP()}, true
}

// abortNoAuth corta la request cuando no hay usuario en el context.
func abortNoAuth(c *gin.Context) {
	util.Error(c, http.StatusUnauthorized, util.CodeAuth, "no autenticado")
}

// abortServiceError mapea la taxonomía de errores del ledger a HTTP:
// validación→400, inexistente→404, conflicto→409, resto→500.
func abortServiceError(c *gin.Context, err error) {
	var ve *ledger.ValidationError
	var nf *ledger.NotFoundError
	var cf *ledger.ConflictError
	switch {
	case errors.As(err, &ve):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, ve.Error())
	case errors.As(err, &nf):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, nf.Error())
	case errors.As(err, &cf):
		util.Error(c, http.StatusConflict, util.CodeConflict, cf.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "error interno")
	}
}
