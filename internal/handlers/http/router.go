package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/writify/writify-backend/docs"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/handlers/dto"
	"github.com/writify/writify-backend/internal/handlers/middleware"
	"github.com/writify/writify-backend/internal/handlers/realtime"
	"github.com/writify/writify-backend/internal/infrastructure/i18n"
	"github.com/writify/writify-backend/internal/infrastructure/oauth"
	"github.com/writify/writify-backend/internal/services"
)

// Dependencies is everything the router wires together.
type Dependencies struct {
	Env            string
	BaseURL        string
	FrontendURL    string
	AllowedOrigins []string
	EnableSwagger  bool

	SessionName  string
	SessionStore sessions.Store

	I18n   *i18n.Service
	Logger ports.Logger

	Identity ports.IdentityProvider
	State    *oauth.StateSigner

	Auth        *services.AuthService
	Requests    *services.RequestService
	Assignments *services.AssignmentService
	Ratings     *services.RatingService
	Profiles    *services.ProfileService
	Writers     *services.WriterService

	Hub      *realtime.Hub
	Markdown func(string) string
	Ping     func(context.Context) error
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(d Dependencies) *gin.Engine {
	if err := middleware.RegisterValidators(); err != nil {
		d.Logger.Error("failed to register validators", "error", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Logger))
	router.Use(func(c *gin.Context) {
		c.Set(dto.BaseURLContextKey, d.BaseURL)
		c.Next()
	})
	router.Use(middleware.NewI18nMiddleware(d.I18n).DetectLanguage())
	router.Use(middleware.CORS(d.AllowedOrigins))
	router.Use(sessions.Sessions(d.SessionName, d.SessionStore))

	authMW := middleware.NewAuthMiddleware(d.Auth, d.Logger)
	router.Use(authMW.LoadUser())

	health := NewHealthHandler(d.Env, d.Ping)
	router.GET("/health", health.Health)

	if d.EnableSwagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := NewAuthHandler(d.Identity, d.State, d.Auth, d.FrontendURL, d.Logger)
	auth := router.Group("/auth")
	{
		auth.GET("/google", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
		auth.GET("/logout", authHandler.Logout)
	}

	requestHandler := NewRequestHandler(d.Requests, d.Logger)
	assignmentHandler := NewAssignmentHandler(d.Assignments, d.Logger)
	ratingHandler := NewRatingHandler(d.Ratings, d.Logger)
	profileHandler := NewProfileHandler(d.Profiles, d.Markdown, d.Logger)
	writerHandler := NewWriterHandler(d.Writers, d.Logger)

	api := router.Group("/api")
	api.GET("/auth/status", authHandler.Status)

	protected := api.Group("", authMW.RequireAuth())
	{
		protected.GET("/writers", writerHandler.List)
		protected.GET("/writers/:id", writerHandler.Get)

		protected.POST("/assignment-requests", requestHandler.Create)
		protected.GET("/assignment-requests", requestHandler.ListOpen)
		protected.POST("/assignment-requests/:id/accept", requestHandler.Accept)

		protected.PUT("/assignments/:id/complete", assignmentHandler.Complete)
		protected.GET("/my-assignments", assignmentHandler.MyAssignments)

		protected.POST("/ratings", ratingHandler.Submit)
		protected.GET("/my-ratings", ratingHandler.MyRatings)

		protected.GET("/profile", profileHandler.Get)
		protected.PUT("/profile", profileHandler.Update)
		protected.PUT("/profile/writer", profileHandler.UpdateWriterStatus)
		protected.POST("/profile/portfolio", profileHandler.UpsertPortfolio)

		if d.Hub != nil {
			protected.GET("/ws", realtime.NewHandler(d.Hub, d.AllowedOrigins, d.Logger).Serve)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		dto.Abort(c, dto.NewErrorResponse(c, domainerrors.ErrRouteNotFound))
	})

	return router
}
