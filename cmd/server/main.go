package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/nextstep/nextstep/internal/api"
	"github.com/nextstep/nextstep/internal/api/cron"
	v1 "github.com/nextstep/nextstep/internal/api/v1"
	"github.com/nextstep/nextstep/internal/cache"
	"github.com/nextstep/nextstep/internal/config"
	"github.com/nextstep/nextstep/internal/domain/attendance"
	"github.com/nextstep/nextstep/internal/domain/payment"
	"github.com/nextstep/nextstep/internal/domain/reminder"
	"github.com/nextstep/nextstep/internal/domain/settings"
	"github.com/nextstep/nextstep/internal/domain/subscriber"
	"github.com/nextstep/nextstep/internal/idempotency"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/notification"
	"github.com/nextstep/nextstep/internal/postgres"
	pubsubRouter "github.com/nextstep/nextstep/internal/pubsub/router"
	"github.com/nextstep/nextstep/internal/redis"
	repo "github.com/nextstep/nextstep/internal/repository/postgres"
	"github.com/nextstep/nextstep/internal/sentry"
	"github.com/nextstep/nextstep/internal/service"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			sentry.NewService,
			newPostgresClient,
			newRedisClient,
			newCache,
			newRepositories,
			newChannels,
			newServiceParams,
			service.NewSubscriberService,
			service.NewPaymentService,
			service.NewAttendanceService,
			service.NewNotificationFeedService,
			service.NewReminderConfigService,
			service.NewSweepService,
			service.NewExportService,
			newHandlers,
			newRouter,
		),
		fx.Invoke(
			startServer,
			startConsumer,
		),
	).Run()
}

func newPostgresClient(cfg *config.Configuration, log *logger.Logger, lc fx.Lifecycle) (*postgres.Client, error) {
	client, err := postgres.NewClient(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newRedisClient(cfg *config.Configuration, log *logger.Logger, lc fx.Lifecycle) *redis.Client {
	if !cfg.Cache.Enabled || cfg.Cache.Type != "redis" {
		return nil
	}
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		log.Errorw("redis unavailable, falling back to in-memory cache", "error", err)
		return nil
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func newCache(cfg *config.Configuration, redisClient *redis.Client, log *logger.Logger) cache.Cache {
	return cache.Initialize(cfg, redisClient, log)
}

type repositories struct {
	fx.Out

	SubRepo        subscriber.Repository
	PaymentRepo    payment.Repository
	ReminderRepo   reminder.Repository
	AttendanceRepo attendance.Repository
	SettingsRepo   settings.Repository
}

func newRepositories(client *postgres.Client, log *logger.Logger) repositories {
	return repositories{
		SubRepo:        repo.NewSubscriberRepository(client, log),
		PaymentRepo:    repo.NewPaymentRepository(client, log),
		ReminderRepo:   repo.NewReminderRepository(client, log),
		AttendanceRepo: repo.NewAttendanceRepository(client, log),
		SettingsRepo:   repo.NewSettingsRepository(client, log),
	}
}

func newChannels(cfg *config.Configuration, log *logger.Logger) []notification.Channel {
	channels := make([]notification.Channel, 0, 2)
	if cfg.Email.Enabled {
		channels = append(channels, notification.NewEmailChannel(cfg, log))
	}
	if cfg.WhatsApp.Enabled {
		channels = append(channels, notification.NewWhatsAppChannel(cfg, log))
	}
	if len(channels) == 0 {
		log.Warnw("no notification channels enabled, reminder sweeps will not deliver")
	}
	return channels
}

func newServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	db *postgres.Client,
	c cache.Cache,
	subRepo subscriber.Repository,
	paymentRepo payment.Repository,
	reminderRepo reminder.Repository,
	attendanceRepo attendance.Repository,
	settingsRepo settings.Repository,
	channels []notification.Channel,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:         log,
		Config:         cfg,
		DB:             db,
		Cache:          c,
		SubRepo:        subRepo,
		PaymentRepo:    paymentRepo,
		ReminderRepo:   reminderRepo,
		AttendanceRepo: attendanceRepo,
		SettingsRepo:   settingsRepo,
		Channels:       channels,
		IdempGen:       idempotency.NewGenerator(),
	}
}

func newHandlers(
	subscriberService service.SubscriberService,
	paymentService service.PaymentService,
	attendanceService service.AttendanceService,
	notificationFeedService service.NotificationFeedService,
	exportService service.ExportService,
	reminderConfigService service.ReminderConfigService,
	sweepService service.SweepService,
	log *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Subscriber:     v1.NewSubscriberHandler(subscriberService, exportService, log),
		Payment:        v1.NewPaymentHandler(paymentService, exportService, log),
		Attendance:     v1.NewAttendanceHandler(attendanceService, log),
		Notification:   v1.NewNotificationHandler(notificationFeedService, log),
		ReminderConfig: v1.NewReminderConfigHandler(reminderConfigService, log),
		SweepCron:      cron.NewSweepCronHandler(sweepService, log),
	}
}

func newRouter(handlers api.Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, log)
}

func startServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
	sentryService *sentry.Service,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting http server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("http server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping http server")
			sentryService.Flush()
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func startConsumer(
	lc fx.Lifecycle,
	params service.ServiceParams,
	cfg *config.Configuration,
	log *logger.Logger,
) error {
	if !cfg.Kafka.Enabled {
		log.Infow("kafka disabled, payment event consumer not started")
		return nil
	}

	router, err := pubsubRouter.NewRouter(log)
	if err != nil {
		return err
	}

	consumer := service.NewPaymentEventConsumerService(params)
	consumer.RegisterHandler(router, cfg)

	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := router.Run(runCtx); err != nil {
					log.Errorw("message router stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return router.Close()
		},
	})
	return nil
}
