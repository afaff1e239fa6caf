package http

import (
	"github.com/gin-gonic/gin"

	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/handlers/dto"
	"github.com/writify/writify-backend/internal/handlers/middleware"
)

// respondError writes err as a problem. Unexpected errors are logged with the
// request id and attached to the gin context.
func respondError(c *gin.Context, logger ports.Logger, err error) {
	if domainerrors.KindOf(err) == domainerrors.KindServer {
		middleware.LoggerFrom(c, logger).Error("request failed", "path", c.FullPath(), "error", err)
		_ = c.Error(err)
	}
	dto.Abort(c, dto.NewErrorResponse(c, err))
}

// bindJSON decodes the body into req, writing a validation problem on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		dto.Abort(c, dto.BindingErrorResponse(c, err))
		return false
	}
	return true
}

// caller returns the signed-in user. Routes using it sit behind RequireAuth.
func caller(c *gin.Context) *entities.User {
	return middleware.CurrentUser(c)
}
