package controllers

import (
	"net/http"
	"time"

	"bookminder/app"
	"bookminder/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

type tokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// setTokenCookie writes the session cookie. The client lives on another
// origin, hence SameSite=None, which browsers only accept with Secure.
func setTokenCookie(w http.ResponseWriter, value string, maxAge time.Duration) {
	ma := int(maxAge / time.Second)
	if maxAge < 0 {
		ma = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   ma,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// POST /api/v1/jwt
func (ac *AuthController) IssueToken(c *gin.Context) {
	var in tokenRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"message": err.Error()})
		return
	}
	token, _, err := ac.Tokens.Issue(in.Email)
	if err != nil {
		ac.respondError(c, err)
		return
	}
	setTokenCookie(c.Writer, token, ac.Tokens.TTL())
	c.JSON(http.StatusOK, app.H{"success": true})
}

// POST /api/v1/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(session.CookieName); err == nil && ck.Value != "" && ac.Revocations != nil {
		if claims, err := ac.Tokens.Parse(ck.Value); err == nil {
			if err := ac.Revocations.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
				// the cookie is cleared regardless
				ac.Logger.Warn("revoke token failed", zap.Error(err))
			}
		}
	}
	setTokenCookie(c.Writer, "", -1)
	c.JSON(http.StatusOK, app.H{"success": true})
}
