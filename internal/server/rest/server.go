// Package rest serves the JSON HTTP API.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/origin"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the business logic the handlers call into.
type Services struct {
	Auth  *services.AuthService
	Tasks *services.TaskService
	Users *services.UserService
}

type Server struct {
	address string
	engine  *gin.Engine
	logger  logging.Logger
}

func NewServer(address string, svc Services, gate *origin.Gate, storage Pinger, l logging.Logger) *Server {
	s := &Server{
		address: address,
		engine:  gin.New(),
		logger:  l.With("module", "http_server"),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestid.New())
	s.engine.Use(requestLogger(s.logger))
	s.engine.Use(originGate(gate, s.logger))
	s.engine.Use(cors.New(cors.Config{
		AllowOriginFunc:  gate.Allowed,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	s.engine.Use(gzip.Gzip(gzip.DefaultCompression))

	s.routes(svc, storage)
	return s
}

func (s *Server) routes(svc Services, storage Pinger) {
	health := newHealthController(storage)
	s.engine.GET("/health", health.Health)

	api := s.engine.Group("/api")

	authCtl := newAuthController(svc.Auth, s.logger)
	a := api.Group("/auth")
	a.POST("/signup", authCtl.Signup)
	a.POST("/signin", authCtl.Signin)
	a.POST("/refresh", authCtl.Refresh)
	a.POST("/logout", authCtl.Logout)
	a.GET("/verify", authCtl.Verify)

	gate := accessGate(svc.Auth, s.logger)

	taskCtl := newTaskController(svc.Tasks, s.logger)
	t := api.Group("/tasks", gate)
	t.POST("", taskCtl.Create)
	t.GET("", taskCtl.List)
	t.GET("/:id", taskCtl.Get)
	t.PUT("/:id", taskCtl.Update)
	t.DELETE("/:id", taskCtl.Delete)

	adminCtl := newAdminController(svc.Users, s.logger)
	ad := api.Group("/admin", gate, adminGate())
	ad.GET("/users", adminCtl.ListUsers)
	ad.PUT("/users/:id/role", adminCtl.ChangeRole)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
