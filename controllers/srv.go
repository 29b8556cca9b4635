// controllers/srv.go
package controllers

import (
	"errors"
	"net/http"

	"bookminder/app"
	"bookminder/models"
	"bookminder/services"
	"bookminder/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Srv struct {
	Catalog     *services.Catalog
	Lending     *services.Lending
	Tokens      *session.Tokens
	Revocations app.RevocationList
	Metrics     *app.Metrics
	Logger      *zap.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Catalog:     services.NewCatalog(a.Catalog, a.Logger.Named("catalog")),
		Lending:     services.NewLending(a.Lending, a.Logger.Named("lending")),
		Tokens:      a.Tokens,
		Revocations: a.Revocations,
		Metrics:     a.Metrics,
		Logger:      a.Logger,
	}
}

// --- helpers ---

var errorStatus = []struct {
	err    error
	status int
}{
	{models.ErrNotFound, http.StatusNotFound},
	{models.ErrDuplicateName, http.StatusBadRequest},
	{models.ErrAlreadyBorrowed, http.StatusBadRequest},
	{models.ErrOutOfStock, http.StatusBadRequest},
	{models.ErrNotEnoughStock, http.StatusBadRequest},
	{models.ErrForbidden, http.StatusForbidden},
	{models.ErrUnauthorized, http.StatusUnauthorized},
}

// respondError maps a service error onto a status and a {message} body.
// Unclassified errors are logged and answered with 500.
func (s *Srv) respondError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, app.H{"message": err.Error()})
		return
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, app.H{"message": e.err.Error()})
			return
		}
	}
	_ = c.Error(err)
	s.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, app.H{"message": "internal server error"})
}
