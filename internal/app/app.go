// Package app assembles the complaint service from its parts and owns their lifetimes.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/scheduler"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/worker"
)

// App is the top-level controller holding every long-lived component.
type App struct {
	Config        *config.Config
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Blobs         persistence.BlobStore
	Store         *repository.RecordStore
	Dispatcher    events.Dispatcher
	Scheduler     *scheduler.Scheduler
	Complaints    *service.ComplaintService
	Notifications *service.NotificationService
	Auth          *service.AuthService
	Progression   *worker.ProgressionWorker
	HTTP          *fiber.App
}

// Options override infrastructure pieces, mainly for tests.
type Options struct {
	Clock   scheduler.Clock
	Blobs   persistence.BlobStore
	Metrics *observability.Metrics
}

// New opens storage, loads state and wires services, workers and routes.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = scheduler.SystemClock()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}

	blobs := opts.Blobs
	if blobs == nil {
		var err error
		blobs, err = persistence.NewBlobStore(ctx, *cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("open blob store: %w", err)
		}
	}

	roster, err := service.HashRoster(repository.DefaultRoster(), cfg.Auth.BcryptCost)
	if err != nil {
		_ = blobs.Close()
		return nil, err
	}
	users := repository.NewStaticUserRepository(roster)

	store := repository.NewRecordStore(blobs, logger, metrics)
	st := store.Load(ctx)
	logger.Info("state loaded",
		zap.Int("complaints", len(st.Complaints)),
		zap.Int("feedbacks", len(st.Feedbacks)),
		zap.Int("notifications", len(st.Notifications)))

	dispatcher := events.NewInMemoryDispatcher()
	sched := scheduler.New(clock, logger, metrics)

	complaints := service.NewComplaintService(service.ComplaintDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Clock:      clock,
		Logger:     logger,
		Metrics:    metrics,
	})
	notifications := service.NewNotificationService(service.NotificationDependencies{
		Store:       store,
		Preferences: repository.NewPreferenceStore(blobs, logger),
		Users:       users,
		Dispatcher:  dispatcher,
		Clock:       clock,
		Logger:      logger,
		Metrics:     metrics,
		Config:      cfg.Notification,
	})
	notifications.RegisterHandlers()
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Users:      users,
		Sessions:   repository.NewSessionStore(blobs, logger),
		Dispatcher: dispatcher,
		Clock:      clock,
		Logger:     logger,
	})

	progression := worker.NewProgressionWorker(complaints, sched, cfg.Demo, logger)
	worker.StartProgressionWorker(progression, dispatcher)

	httpApp := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		Immutable:             true,
	})
	httptransport.RegisterMiddlewares(httpApp, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(httpApp, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Backend, blobs),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(complaints),
		Notifications:  handlers.NewNotificationsHandler(notifications),
		Analytics:      handlers.NewAnalyticsHandler(complaints),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		Metrics:        metrics.Handler(),
	})

	return &App{
		Config:        cfg,
		Logger:        logger,
		Metrics:       metrics,
		Blobs:         blobs,
		Store:         store,
		Dispatcher:    dispatcher,
		Scheduler:     sched,
		Complaints:    complaints,
		Notifications: notifications,
		Auth:          authService,
		Progression:   progression,
		HTTP:          httpApp,
	}, nil
}

// Listen serves HTTP until Shutdown is called.
func (a *App) Listen() error {
	a.Logger.Info("http server listening", zap.String("addr", a.Config.App.Addr()))
	return a.HTTP.Listen(a.Config.App.Addr())
}

// Shutdown stops timers, drains HTTP and closes storage.
func (a *App) Shutdown(ctx context.Context) error {
	a.Progression.Stop()
	a.Scheduler.Stop()

	var errs []error
	if err := a.HTTP.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.Store.Save(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.Blobs.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close blob store: %w", err))
	}
	return errors.Join(errs...)
}
