package server

import (
	"fmt"
	"time"

	"todotracker/internal/config"
	"todotracker/internal/database"
	"todotracker/internal/handlers"
	"todotracker/internal/middleware"
	"todotracker/internal/monitoring"
	"todotracker/internal/store"
	"todotracker/internal/utils"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// New wires stores, token codec, metrics and handlers over an open database
// and returns the ready router.
func New(cfg *config.Config, db *database.DB, logger *log.Logger, startedAt time.Time) (*gin.Engine, error) {
	codec, err := utils.NewJWTCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	metrics := monitoring.NewMetrics(db.DB)

	h := &handlers.Handler{
		Users:         store.NewUsers(db, utils.BcryptHasher{Cost: cfg.Auth.BcryptCost}, cfg.Auth.MinPasswordLength),
		Todos:         store.NewTodos(db),
		Tokens:        codec,
		Metrics:       metrics,
		Monitor:       monitoring.NewService(startedAt, db),
		MonitoringKey: cfg.Monitoring.APIKey,
		Log:           logger,
	}

	return NewRouter(cfg.Server, h, codec), nil
}

// NewRouter registers every route on a fresh engine.
func NewRouter(cfg config.Server, h *handlers.Handler, verifier middleware.TokenVerifier) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(h.Log),
		middleware.Recovery(h.Log),
		monitoring.RequestMetricsMiddleware(h.Metrics),
	)
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.NoRoute(handlers.NotFound)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	api := router.Group("/api")
	api.GET("/status", handlers.Status)
	api.GET("/monitoring/status", h.MonitorStatus)
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(verifier, h.Log, h.Metrics))
	protected.GET("/verify", h.Verify)

	protected.GET("/todos", h.ListTodos)
	protected.POST("/todos", h.CreateTodo)
	protected.GET("/todos/:id", h.GetTodo)
	protected.PUT("/todos/:id", h.UpdateTodo)
	protected.PATCH("/todos/:id/toggle", h.ToggleTodo)
	protected.DELETE("/todos/:id", h.DeleteTodo)

	protected.POST("/todos/:id/comments", h.AddComment)
	protected.DELETE("/todos/:id/comments/:comment_id", h.DeleteComment)

	return router
}
