// Package rest exposes the public HTTP API. Handlers stay thin: they bind
// and validate request shapes, call into the service layer, and translate
// service errors into the shared JSON error envelope.
package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aicodehub/aicodehub/internal/logging"
	"github.com/aicodehub/aicodehub/internal/server/auth"
	"github.com/aicodehub/aicodehub/internal/server/config"
	"github.com/aicodehub/aicodehub/internal/server/models"
)

// AuthService is the slice of the user service the HTTP layer needs.
type AuthService interface {
	Register(ctx context.Context, username string, email *string, password string) (*models.User, string, error)
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	Refresh(ctx context.Context, p *auth.Principal) (string, error)
	Authenticate(ctx context.Context, tokenString string) (*auth.Principal, error)
	GetUser(ctx context.Context, p *auth.Principal) (*models.User, error)
	UpdateProfile(ctx context.Context, p *auth.Principal, email *string, currentPassword, newPassword string) (*models.User, error)
	ExchangeClientCredentials(ctx context.Context, clientID, secret string) (string, error)
	CreateAPIClient(ctx context.Context, name string) (*models.APIClient, string, error)
}

// ProjectService covers project CRUD with the ownership policy applied.
type ProjectService interface {
	Create(ctx context.Context, p *auth.Principal, name string, description *string) (*models.Project, error)
	Get(ctx context.Context, p *auth.Principal, id int64) (*models.Project, error)
	List(ctx context.Context, p *auth.Principal) ([]*models.Project, error)
	Update(ctx context.Context, p *auth.Principal, id int64, name *string, description *string) (*models.Project, error)
	Delete(ctx context.Context, p *auth.Principal, id int64) error
}

// ModelService covers model CRUD and artifact presigning.
type ModelService interface {
	Create(ctx context.Context, p *auth.Principal, name, modelType, version string, description *string) (*models.Model, error)
	Get(ctx context.Context, p *auth.Principal, id int64) (*models.Model, error)
	List(ctx context.Context, p *auth.Principal) ([]*models.Model, error)
	Update(ctx context.Context, p *auth.Principal, id int64, name, modelType, version, status *string, description *string) (*models.Model, error)
	Delete(ctx context.Context, p *auth.Principal, id int64) error
	GetArtifactUploadURL(ctx context.Context, p *auth.Principal, id int64) (string, error)
	GetArtifactDownloadURL(ctx context.Context, p *auth.Principal, id int64) (string, error)
}

type Server struct {
	config   *config.Config
	logger   logging.Logger
	users    AuthService
	projects ProjectService
	models   ModelService
}

func NewServer(cfg *config.Config, l logging.Logger, us AuthService, ps ProjectService, ms ModelService) *Server {
	return &Server{
		config:   cfg,
		logger:   l.With("module", "rest_server"),
		users:    us,
		projects: ps,
		models:   ms,
	}
}

// Router builds the gin engine with middleware and all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(s.config.CORSAllowedOrigins, ",")
	if s.config.CORSAllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	} else {
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", s.handleRegister)
			authRoutes.POST("/login", s.handleLogin)
			authRoutes.POST("/client-credentials", s.handleClientCredentials)

			protected := authRoutes.Group("")
			protected.Use(s.RequireAuth())
			{
				protected.GET("/me", s.handleGetMe)
				protected.PUT("/me", s.handleUpdateMe)
				protected.POST("/refresh", s.handleRefresh)
				protected.POST("/logout", s.handleLogout)
				protected.POST("/clients", s.RequireSuperuser(), s.handleCreateClient)
			}
		}

		projects := api.Group("/projects", s.RequireAuth())
		{
			projects.POST("", s.handleCreateProject)
			projects.GET("", s.handleListProjects)
			projects.GET("/:id", s.handleGetProject)
			projects.PUT("/:id", s.handleUpdateProject)
			projects.DELETE("/:id", s.handleDeleteProject)
		}

		modelRoutes := api.Group("/models", s.RequireAuth())
		{
			modelRoutes.POST("", s.handleCreateModel)
			modelRoutes.GET("", s.handleListModels)
			modelRoutes.GET("/:id", s.handleGetModel)
			modelRoutes.PUT("/:id", s.handleUpdateModel)
			modelRoutes.DELETE("/:id", s.handleDeleteModel)
			modelRoutes.POST("/:id/artifact-upload-url", s.handleArtifactUploadURL)
			modelRoutes.GET("/:id/artifact-download-url", s.handleArtifactDownloadURL)
		}
	}

	return router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.Addr,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.config.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "aicodehub-api",
	})
}
