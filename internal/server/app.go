// Package server wires configuration, storage, services and transports
// into a runnable application.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/config"
	"github.com/dmitrijs2005/taskmanager/internal/server/mailer"
	"github.com/dmitrijs2005/taskmanager/internal/server/origin"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskmanager/internal/server/rest"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/taskmanager/internal/server/grpc"
)

// RefreshTokenSweepInterval is how often expired refresh tokens are purged.
const RefreshTokenSweepInterval = time.Hour

type App struct {
	config  *config.Config
	logger  logging.Logger
	storage repomanager.RepositoryManager
	http    *rest.Server
	health  *gs.HealthServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.Production)
	if c.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	storage, err := repomanager.Open(ctx, c.DatabaseURI, c.RedisURL, logger.With("module", "storage"))
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(c, logger, storage)
	if err != nil {
		_ = storage.Close(ctx)
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, storage repomanager.RepositoryManager) (*App, error) {
	codec, err := auth.NewCodec([]byte(c.SecretKey), c.AccessTokenValidityDuration, c.VerificationTokenValidityDuration)
	if err != nil {
		return nil, err
	}

	mail := mailer.New(c.SMTP, logger.With("module", "mailer"))
	gate := origin.NewGate(c.ClientOrigins, logger.With("module", "origin"))

	svc := rest.Services{
		Auth:  services.NewAuthService(storage.Users(), storage.RefreshTokens(), codec, mail, c, logger.With("module", "auth")),
		Tasks: services.NewTaskService(storage.Tasks(), storage.Users(), logger.With("module", "tasks")),
		Users: services.NewUserService(storage.Users(), logger.With("module", "users")),
	}

	app := &App{
		config:  c,
		logger:  logger,
		storage: storage,
		http:    rest.NewServer(c.HTTPAddr, svc, gate, storage, logger),
	}
	if c.GRPCHealthAddr != "" {
		app.health = gs.NewHealthServer(c.GRPCHealthAddr, storage, gs.DefaultProbeInterval, logger)
	}
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// sweepRefreshTokens purges expired refresh tokens until ctx is done.
func (app *App) sweepRefreshTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.storage.RefreshTokens().DeleteExpired(ctx, time.Now())
			if err != nil {
				app.logger.Warn(ctx, "refresh token sweep failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired refresh tokens removed", "count", n)
			}
		}
	}
}

// Run starts every server and blocks until ctx is cancelled, a signal
// arrives or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.health.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				cancelFunc()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweepRefreshTokens(ctx, RefreshTokenSweepInterval)
	}()

	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.storage.Close(closeCtx); err != nil {
		app.logger.Error(closeCtx, "storage close", "error", err)
	}
	app.logger.Info(closeCtx, "App stopped")
}
