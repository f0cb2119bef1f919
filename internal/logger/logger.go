package logger

import (
	"context"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nextstep/nextstep/internal/config"
	"github.com/nextstep/nextstep/internal/types"
)

// Logger wraps zap.SugaredLogger and optionally forwards structured records
// to a Fluentd sink.
type Logger struct {
	*zap.SugaredLogger
	fluentdLogger *fluent.Fluent
	serviceName   string
}

// Global logger for convenience. Scripts use it directly; everything else
// receives the logger through dependency injection.
var L *Logger

// NewLogger creates and returns a new Logger instance
func NewLogger(cfg *config.Configuration) (*Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.Logging.Level == types.LogLevelDebug {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.DisableStacktrace = true

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	var fluentdLogger *fluent.Fluent
	if cfg.Logging.FluentdEnabled && cfg.Logging.FluentdHost != "" && cfg.Logging.FluentdPort > 0 {
		fluentdLogger, err = fluent.New(fluent.Config{
			FluentHost:   cfg.Logging.FluentdHost,
			FluentPort:   cfg.Logging.FluentdPort,
			Async:        true,
			WriteTimeout: 3 * time.Second,
			MaxRetry:     5,
		})
		if err != nil {
			zapLogger.Sugar().Warnf("failed to initialize fluentd logger: %v, falling back to stdout only", err)
			fluentdLogger = nil
		}
	}

	return &Logger{
		SugaredLogger: zapLogger.Sugar(),
		fluentdLogger: fluentdLogger,
		serviceName:   string(cfg.Deployment.Mode),
	}, nil
}

func init() {
	L, _ = NewLogger(config.GetDefaultConfig())
}

func GetLogger() *Logger {
	if L == nil {
		L, _ = NewLogger(config.GetDefaultConfig())
	}
	return L
}

// WithContext returns a logger with the request-scoped identifiers attached
// to every record.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(
			"request_id", types.GetRequestID(ctx),
			"tenant_id", types.GetTenantID(ctx),
			"user_id", types.GetUserID(ctx),
		),
		fluentdLogger: l.fluentdLogger,
		serviceName:   l.serviceName,
	}
}

// With returns a logger with additional fields attached.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		fluentdLogger: l.fluentdLogger,
		serviceName:   l.serviceName,
	}
}

// sendToFluentd posts a structured record to Fluentd, non-blocking.
func (l *Logger) sendToFluentd(level, msg string, fields map[string]interface{}) {
	if l.fluentdLogger == nil {
		return
	}

	logData := map[string]interface{}{
		"level":     level,
		"message":   msg,
		"service":   l.serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		logData[k] = v
	}

	if err := l.fluentdLogger.Post("app.logs", logData); err != nil {
		l.SugaredLogger.Warnf("failed to send log to fluentd: %v", err)
	}
}

func (l *Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, keysAndValues...)
	l.sendToFluentd("debug", msg, keysAndValuesToMap(keysAndValues...))
}

func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, keysAndValues...)
	l.sendToFluentd("info", msg, keysAndValuesToMap(keysAndValues...))
}

func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, keysAndValues...)
	l.sendToFluentd("warning", msg, keysAndValuesToMap(keysAndValues...))
}

func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, keysAndValues...)
	l.sendToFluentd("error", msg, keysAndValuesToMap(keysAndValues...))
}

func keysAndValuesToMap(keysAndValues ...interface{}) map[string]interface{} {
	fields := make(map[string]interface{})
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}

// GetRetryableHTTPLogger adapts the logger to go-retryablehttp's interface.
func (l *Logger) GetRetryableHTTPLogger() retryableHTTPLogger {
	return retryableHTTPLogger{logger: l}
}

type retryableHTTPLogger struct {
	logger *Logger
}

func (r retryableHTTPLogger) Printf(format string, v ...interface{}) {
	r.logger.Debugf(format, v...)
}

// GetGinLogger adapts the logger to gin's io.Writer based logging.
func (l *Logger) GetGinLogger() ginLogger {
	return ginLogger{logger: l}
}

type ginLogger struct {
	logger *Logger
}

func (g ginLogger) Write(p []byte) (n int, err error) {
	g.logger.Info(string(p))
	return len(p), nil
}
