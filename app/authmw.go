package app

import (
	"bookminder/session"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const IdentityKey = "identity"

// RevocationList is the optional logout denylist.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthRequired verifies the session cookie and puts the borrower's email
// into the context under IdentityKey.
func AuthRequired(tokens *session.Tokens, revoked RevocationList, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(session.CookieName)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"message": "unauthorized access"})
			return
		}
		claims, err := tokens.Parse(ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"message": "unauthorized access"})
			return
		}

		if revoked != nil {
			gone, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Error("revocation lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, H{"message": "internal server error"})
				return
			}
			if gone {
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"message": "unauthorized access"})
				return
			}
		}

		c.Set(IdentityKey, claims.Email)
		c.Next()
	}
}

// Identity returns the email AuthRequired stored, if any.
func Identity(c *gin.Context) (string, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return "", false
	}
	email, _ := v.(string)
	return email, email != ""
}
