package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-portal/internal/api/http"
	"github.com/spec-kit/complaint-portal/internal/api/http/handlers"
	"github.com/spec-kit/complaint-portal/internal/attachment"
	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/events"
	"github.com/spec-kit/complaint-portal/internal/notify"
	"github.com/spec-kit/complaint-portal/internal/observability"
	"github.com/spec-kit/complaint-portal/internal/persistence"
	"github.com/spec-kit/complaint-portal/internal/repository"
	"github.com/spec-kit/complaint-portal/internal/service"
	"github.com/spec-kit/complaint-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	checks := map[string]handlers.Pinger{}
	var (
		complaintRepo repository.ComplaintRepository
		adminRepo     repository.AdminRepository
	)
	if pg.Enabled() {
		complaintRepo = repository.NewComplaintRepository(pg.PoolHandle())
		adminRepo = repository.NewAdminRepository(pg.PoolHandle())
		checks["postgres"] = pg
	} else {
		complaintRepo = repository.NewMemoryComplaintRepository()
		adminRepo = repository.NewMemoryAdminRepository()
	}

	var queue notify.Queue
	forwarderDone := make(chan error, 1)
	if cfg.Notification.QueueBackend == config.QueueBackendRedis {
		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		redisQueue := notify.NewRedisQueue(redis.Client, cfg.Notification.QueueKey, cfg.Notification.QueueSize, logger)
		go func() {
			forwarderDone <- redisQueue.Run(ctx)
		}()
		queue = redisQueue
		checks["redis"] = redis
	} else {
		forwarderDone <- nil
		queue = notify.NewMemoryQueue(cfg.Notification.QueueSize)
	}

	sender := notify.Sender{Email: cfg.Notification.EmailFrom, Name: cfg.Notification.FromName}
	var mailer notify.Mailer = notify.NewLogMailer(logger, sender)
	if cfg.Notification.MailerURL != "" {
		mailer = notify.NewHTTPMailer(cfg.Notification.MailerURL, sender, cfg.Notification.SendTimeout())
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	codec := attachment.NewCodec(cfg.Attachment.MaxBytes)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{AdminRepo: adminRepo})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		Auth:          authService,
		Codec:         codec,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
	})
	engine := service.NewLifecycleEngine(service.LifecycleDependencies{
		ComplaintRepo: complaintRepo,
		Auth:          authService,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
	})
	service.NewNotificationService(dispatcher, queue, logger, metrics, cfg.Notification).RegisterHandlers()

	notificationWorker := worker.NewNotificationWorker(queue, mailer, logger, metrics, cfg.Notification)
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- notificationWorker.Run(ctx)
	}()

	routes := map[domain.Domain]httptransport.DomainRoutes{}
	for _, d := range domain.Domains {
		routes[d] = httptransport.DomainRoutes{
			Complaints: handlers.NewComplaintsHandler(d, complaintService, engine),
			AdminAuth:  handlers.NewAdminAuthHandler(d, authService),
		}
	}

	app := httptransport.NewApp(cfg.App, cfg.Attachment,
		httptransport.MiddlewareConfig{
			Logger:           logger,
			Metrics:          metrics,
			RequestTimeout:   cfg.App.RequestTimeout(),
			CORSAllowOrigins: cfg.App.CORSAllowOrigins,
		},
		httptransport.RouteConfig{
			Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
			Domains: routes,
			Metrics: metrics,
		})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	if err := <-workerDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("notification worker stopped", zap.Error(err))
	}
	<-forwarderDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
