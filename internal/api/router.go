package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextstep/nextstep/internal/api/cron"
	v1 "github.com/nextstep/nextstep/internal/api/v1"
	"github.com/nextstep/nextstep/internal/config"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/rest/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Subscriber     *v1.SubscriberHandler
	Payment        *v1.PaymentHandler
	Attendance     *v1.AttendanceHandler
	Notification   *v1.NotificationHandler
	ReminderConfig *v1.ReminderConfigHandler
	SweepCron      *cron.SweepCronHandler
}

// NewRouter assembles the gin engine with the standard middleware chain.
func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SentryMiddleware(cfg))
	router.Use(middleware.ContextMiddleware())
	router.Use(middleware.SentryTenantContextMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.ErrorHandler(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/v1")
	{
		subscribers := api.Group("/subscribers")
		{
			subscribers.POST("", handlers.Subscriber.CreateSubscriber)
			subscribers.GET("", handlers.Subscriber.ListSubscribers)
			subscribers.GET("/export", handlers.Subscriber.ExportSubscribers)
			subscribers.GET("/:id", handlers.Subscriber.GetSubscriber)
			subscribers.PUT("/:id", handlers.Subscriber.UpdateSubscriber)
			subscribers.POST("/:id/renew", handlers.Subscriber.RenewSubscriber)
			subscribers.DELETE("/:id", handlers.Subscriber.DeleteSubscriber)
		}

		payments := api.Group("/payments")
		{
			payments.POST("", handlers.Payment.RecordPayment)
			payments.GET("", handlers.Payment.ListPayments)
			payments.GET("/export", handlers.Payment.ExportPayments)
			payments.GET("/:id", handlers.Payment.GetPayment)
		}

		attendance := api.Group("/attendance")
		{
			attendance.POST("", handlers.Attendance.CheckIn)
			attendance.GET("", handlers.Attendance.ListAttendance)
			attendance.PUT("/:id/checkout", handlers.Attendance.CheckOut)
		}

		api.GET("/notifications", handlers.Notification.ListNotifications)

		reminderConfig := api.Group("/reminders/config")
		{
			reminderConfig.GET("", handlers.ReminderConfig.GetConfig)
			reminderConfig.PUT("", handlers.ReminderConfig.UpdateConfig)
		}
	}

	cronGroup := router.Group("/cron", middleware.CronSecretMiddleware(cfg))
	{
		cronGroup.POST("/reminders/sweep", handlers.SweepCron.RunSweep)
	}

	return router
}
