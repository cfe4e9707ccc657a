// Package auth signs users in with GitHub and guards routes with a session token.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/justsurfingit/hireme-ai/internal/config"
	"github.com/justsurfingit/hireme-ai/internal/models"
)

const SessionCookie = "hireme_session"

// Claims is the session payload. Subject holds the user ID.
type Claims struct {
	Login string `json:"login"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into a database ID.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid session subject %q", c.Subject)
	}
	return uint(id), nil
}

// DisplayName prefers the profile name over the login.
func (c *Claims) DisplayName() string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return c.Login
}

type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessions(cfg config.AuthConfig) (*Sessions, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}
	return &Sessions{
		secret: []byte(cfg.SessionSecret),
		ttl:    cfg.SessionTTL,
		secure: cfg.CookieSecure,
		now:    time.Now,
	}, nil
}

// Issue signs a session token for user.
func (s *Sessions) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		Login: user.Login,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies the signature and expiry of token.
func (s *Sessions) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("no session token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Sessions) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
}

func (s *Sessions) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", s.secure, true)
}

// tokenFrom reads the session cookie, falling back to a bearer token.
func tokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
