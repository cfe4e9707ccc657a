package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireme-ai/internal/apperr"
)

const claimsKey = "auth.claims"

// RequireSession rejects requests without a valid session before any later
// middleware runs.
func RequireSession(s *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.Parse(tokenFrom(c.Request))
		if err != nil {
			_ = c.Error(apperr.Unauthorized())
			c.Abort()
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireSession.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// UserID returns the signed-in user's ID or an Unauthorized error.
func UserID(c *gin.Context) (uint, error) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return 0, apperr.Unauthorized()
	}
	id, err := claims.UserID()
	if err != nil {
		return 0, apperr.Unauthorized()
	}
	return id, nil
}
