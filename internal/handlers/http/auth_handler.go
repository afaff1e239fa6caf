package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/handlers/dto"
	"github.com/writify/writify-backend/internal/handlers/middleware"
	"github.com/writify/writify-backend/internal/infrastructure/oauth"
	"github.com/writify/writify-backend/internal/infrastructure/session"
	"github.com/writify/writify-backend/internal/services"
)

// Login outcomes reported to the frontend in the ?error= query parameter.
const (
	loginErrInvalidState  = "invalid_state"
	loginErrMissingCode   = "missing_code"
	loginErrOAuthFailed   = "oauth_failed"
	loginErrInvalidDomain = "invalid_domain"
	loginErrServer        = "server_error"
)

// AuthHandler performs the Google OAuth handoff and manages the login session.
type AuthHandler struct {
	provider    ports.IdentityProvider
	state       *oauth.StateSigner
	auth        *services.AuthService
	frontendURL string
	logger      ports.Logger
}

func NewAuthHandler(provider ports.IdentityProvider, state *oauth.StateSigner, auth *services.AuthService, frontendURL string, logger ports.Logger) *AuthHandler {
	return &AuthHandler{
		provider:    provider,
		state:       state,
		auth:        auth,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// GoogleLogin godoc
// @Summary  Start Google sign-in
// @Tags     auth
// @Success  302
// @Router   /auth/google [get]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	token, nonce, err := h.state.Issue()
	if err != nil {
		middleware.LoggerFrom(c, h.logger).Error("failed to issue oauth state", "error", err)
		h.redirect(c, url.Values{"error": {loginErrServer}})
		return
	}

	s := sessions.Default(c)
	s.Set(session.OAuthNonceKey, nonce)
	if err := s.Save(); err != nil {
		middleware.LoggerFrom(c, h.logger).Error("failed to save session", "error", err)
		h.redirect(c, url.Values{"error": {loginErrServer}})
		return
	}

	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(token))
}

// GoogleCallback godoc
// @Summary  Finish Google sign-in
// @Description Redirects to the frontend with ?login=success or ?error=invalid_state|missing_code|oauth_failed|invalid_domain|server_error.
// @Tags     auth
// @Param    state  query  string  true  "signed state"
// @Param    code   query  string  true  "authorization code"
// @Success  302
// @Router   /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	log := middleware.LoggerFrom(c, h.logger)
	s := sessions.Default(c)

	nonce, _ := s.Get(session.OAuthNonceKey).(string)
	s.Delete(session.OAuthNonceKey)

	if err := h.state.Verify(c.Query("state"), nonce); err != nil {
		log.Warn("oauth state rejected", "error", err)
		h.fail(c, s, loginErrInvalidState)
		return
	}
	if reason := c.Query("error"); reason != "" {
		log.Info("oauth consent not granted", "reason", reason)
		h.fail(c, s, loginErrOAuthFailed)
		return
	}
	code := c.Query("code")
	if code == "" {
		h.fail(c, s, loginErrMissingCode)
		return
	}

	identity, err := h.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Warn("oauth exchange failed", "error", err)
		h.fail(c, s, loginErrOAuthFailed)
		return
	}

	user, err := h.auth.Login(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidEmailDomain) {
			log.Info("login outside university domain", "email", identity.Email)
			h.fail(c, s, loginErrInvalidDomain)
			return
		}
		log.Error("login failed", "error", err)
		h.fail(c, s, loginErrServer)
		return
	}

	s.Clear()
	s.Set(session.UserIDKey, user.ID)
	if err := s.Save(); err != nil {
		log.Error("failed to save session", "error", err)
		h.redirect(c, url.Values{"error": {loginErrServer}})
		return
	}

	h.redirect(c, url.Values{"login": {"success"}})
}

func (h *AuthHandler) fail(c *gin.Context, s sessions.Session, code string) {
	if err := s.Save(); err != nil {
		middleware.LoggerFrom(c, h.logger).Warn("failed to save session", "error", err)
	}
	h.redirect(c, url.Values{"error": {code}})
}

// Status godoc
// @Summary  Session status
// @Tags     auth
// @Produce  json
// @Success  200  {object}  dto.AuthStatusResponse
// @Router   /api/auth/status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusOK, dto.AuthStatusResponse{IsAuthenticated: false})
		return
	}
	resp := dto.ToUserResponse(user)
	c.JSON(http.StatusOK, dto.AuthStatusResponse{IsAuthenticated: true, User: &resp})
}

// Logout godoc
// @Summary  Sign out
// @Tags     auth
// @Success  302
// @Router   /auth/logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := s.Save(); err != nil {
		middleware.LoggerFrom(c, h.logger).Warn("failed to destroy session", "error", err)
	}
	h.redirect(c, nil)
}

func (h *AuthHandler) redirect(c *gin.Context, params url.Values) {
	target := h.frontendURL
	if u, err := url.Parse(h.frontendURL); err == nil && len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q[k] = v
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}
	c.Redirect(http.StatusFound, target)
}
