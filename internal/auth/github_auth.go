package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireme-ai/internal/apperr"
	"github.com/justsurfingit/hireme-ai/internal/config"
	"github.com/justsurfingit/hireme-ai/internal/models"
	"github.com/justsurfingit/hireme-ai/internal/services"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	stateCookie    = "hireme_oauth_state"
	stateCookieTTL = 10 * 60

	defaultUserAPI = "https://api.github.com/user"
	signInFailed   = "GitHub sign-in failed. Please try again."
)

// GitHubProfile is the subset of GET /user the app stores.
type GitHubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type Handler struct {
	OAuth       *oauth2.Config
	UserAPI     string
	FrontendURL string
	Users       *services.UserService
	Sessions    *Sessions
	Log         *zap.Logger
}

// NewGitHubConfig builds the OAuth client for GitHub with read-only profile access.
func NewGitHubConfig(cfg config.AuthConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Scopes:       []string{"read:user"},
		Endpoint:     github.Endpoint,
	}
}

func NewHandler(oauthCfg *oauth2.Config, frontendURL string, users *services.UserService, sessions *Sessions, log *zap.Logger) *Handler {
	return &Handler{
		OAuth:       oauthCfg,
		UserAPI:     defaultUserAPI,
		FrontendURL: frontendURL,
		Users:       users,
		Sessions:    sessions,
		Log:         log,
	}
}

// Login is GET /auth/github/login.
func (h *Handler) Login(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		_ = c.Error(apperr.Internal("Failed to start sign-in", err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateCookieTTL, "/", "", h.Sessions.secure, true)
	c.Redirect(http.StatusFound, h.OAuth.AuthCodeURL(state))
}

// Callback is GET /auth/github/callback.
func (h *Handler) Callback(c *gin.Context) {
	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		_ = c.Error(apperr.Unauthorized())
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", h.Sessions.secure, true)

	code := c.Query("code")
	if code == "" {
		_ = c.Error(apperr.Validation("code is required"))
		return
	}

	ctx := c.Request.Context()
	token, err := h.OAuth.Exchange(ctx, code)
	if err != nil {
		_ = c.Error(apperr.Upstream(signInFailed, err))
		return
	}

	profile, err := h.fetchProfile(c, token)
	if err != nil {
		_ = c.Error(apperr.Upstream(signInFailed, err))
		return
	}

	user, err := h.Users.UpsertGitHubUser(ctx, models.User{
		GitHubID:  profile.ID,
		Login:     profile.Login,
		Name:      profile.Name,
		Email:     profile.Email,
		AvatarURL: profile.AvatarURL,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	session, err := h.Sessions.Issue(user)
	if err != nil {
		_ = c.Error(apperr.Internal("Failed to start session", err))
		return
	}
	h.Sessions.SetCookie(c, session)

	h.Log.Info("user signed in", zap.Uint("user_id", user.ID), zap.String("login", user.Login))
	c.Redirect(http.StatusFound, h.FrontendURL)
}

// Session is GET /auth/session.
func (h *Handler) Session(c *gin.Context) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		_ = c.Error(apperr.Unauthorized())
		return
	}
	id, err := claims.UserID()
	if err != nil {
		_ = c.Error(apperr.Unauthorized())
		return
	}

	user, err := h.Users.Get(c.Request.Context(), id)
	if apperr.KindOf(err) == apperr.KindNotFound {
		// the account is gone; the token alone is not enough
		h.Sessions.ClearCookie(c)
		_ = c.Error(apperr.Unauthorized())
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":        user.ID,
			"login":     user.Login,
			"name":      name,
			"email":     user.Email,
			"avatarUrl": user.AvatarURL,
		},
		"expires": claims.ExpiresAt.Time,
	})
}

// Logout is POST /auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	h.Sessions.ClearCookie(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) fetchProfile(c *gin.Context, token *oauth2.Token) (*GitHubProfile, error) {
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, h.UserAPI, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := h.OAuth.Client(c.Request.Context(), token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch github profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch github profile: status %d", resp.StatusCode)
	}

	var profile GitHubProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode github profile: %w", err)
	}
	if profile.ID == 0 || profile.Login == "" {
		return nil, fmt.Errorf("github profile is missing id or login")
	}
	return &profile, nil
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
