// Package server exposes the core over a small HTTP API for presentation
// code. It is an adapter: all semantics live in the inner packages.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tonify/internal/config"
	"tonify/internal/logging"
	"tonify/internal/ports"
)

// Server wraps the gin engine and its HTTP listener.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	logger     logging.Logger
}

// Deps carries the collaborators the handlers need.
type Deps struct {
	Scorer    ports.TraitScorer
	Generator ports.ContentGenerator
	Store     ports.ProfileStore
	Logger    logging.Logger
}

// New builds the server and registers all routes.
func New(cfg config.ServerConfig, deps Deps) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Owner-ID"}
		engine.Use(cors.New(corsConfig))
	}

	logger := logging.OrNop(deps.Logger)
	h := &handler{
		scorer:    deps.Scorer,
		generator: deps.Generator,
		store:     deps.Store,
		logger:    logger,
	}

	api := engine.Group("/api")
	api.Use(identityMiddleware())

	api.GET("/health", h.health)
	api.POST("/analyze", h.analyze)
	api.POST("/generate", h.generate)

	profiles := api.Group("/profiles")
	{
		profiles.GET("", h.listProfiles)
		profiles.POST("", h.createProfile)
		profiles.GET("/:id", h.getProfile)
		profiles.PUT("/:id", h.updateProfile)
		profiles.DELETE("/:id", h.deleteProfile)
		profiles.POST("/:id/duplicate", h.duplicateProfile)
	}

	server := &Server{
		engine: engine,
		logger: logger,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      engine,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second, // oracle retries can take a while
		},
	}
	return server
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// identityMiddleware resolves the owner identity from the X-Owner-ID header
// onto the request context. A real deployment fronts this with an auth
// provider; the core only needs a stable identity string.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ownerID := c.GetHeader("X-Owner-ID"); ownerID != "" {
			c.Request = c.Request.WithContext(ports.WithOwnerID(c.Request.Context(), ownerID))
		}
		c.Next()
	}
}
