package middleware

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/handlers/dto"
	"github.com/writify/writify-backend/internal/infrastructure/session"
)

const currentUserContextKey = "current_user"

// UserLoader resolves the user a session points at.
type UserLoader interface {
	CurrentUser(ctx context.Context, id string) (*entities.User, error)
}

type AuthMiddleware struct {
	users  UserLoader
	logger ports.Logger
}

func NewAuthMiddleware(users UserLoader, logger ports.Logger) *AuthMiddleware {
	return &AuthMiddleware{users: users, logger: logger}
}

// LoadUser puts the session's user in the context when there is one. A session
// pointing at a missing user is cleared. It never rejects the request.
func (m *AuthMiddleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		userID, _ := s.Get(session.UserIDKey).(string)
		if userID == "" {
			c.Next()
			return
		}

		user, err := m.users.CurrentUser(c.Request.Context(), userID)
		switch {
		case err == nil:
			SetCurrentUser(c, user)
		case domainerrors.KindOf(err) == domainerrors.KindNotFound:
			s.Delete(session.UserIDKey)
			if err := s.Save(); err != nil {
				LoggerFrom(c, m.logger).Warn("failed to clear stale session", "error", err)
			}
		default:
			dto.Abort(c, dto.NewErrorResponse(c, err))
			LoggerFrom(c, m.logger).Error("failed to load session user", "user_id", userID, "error", err)
			return
		}

		c.Next()
	}
}

// RequireAuth rejects requests without a signed-in user with 401.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			dto.Abort(c, dto.NewErrorResponse(c, domainerrors.ErrUnauthenticated))
			return
		}
		c.Next()
	}
}

// SetCurrentUser stores the signed-in user.
func SetCurrentUser(c *gin.Context, user *entities.User) {
	c.Set(currentUserContextKey, user)
}

// CurrentUser returns the signed-in user, or nil.
func CurrentUser(c *gin.Context) *entities.User {
	if v, ok := c.Get(currentUserContextKey); ok {
		if u, ok := v.(*entities.User); ok {
			return u
		}
	}
	return nil
}
