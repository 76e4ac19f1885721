package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithUserID adds user ID to logger context
func (l *Logger) WithUserID(userID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("user_id", userID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Business logic logging methods

// LogHoldPlaced logs when a hold claims items
func (l *Logger) LogHoldPlaced(ctx context.Context, holdID string, itemCount int, ttl time.Duration) {
	l.Logger.InfoContext(ctx,
		"Hold Placed",
		slog.String("hold_id", holdID),
		slog.Int("items", itemCount),
		slog.Duration("ttl", ttl),
	)
}

// LogHoldSwept logs a background sweep that reclaimed expired holds
func (l *Logger) LogHoldSwept(ctx context.Context, reclaimed int) {
	l.Logger.InfoContext(ctx,
		"Expired Holds Swept",
		slog.Int("reclaimed", reclaimed),
	)
}

// LogBookingFinalized logs when a confirmed reservation becomes a booking
func (l *Logger) LogBookingFinalized(ctx context.Context, bookingID, holdID, userID string, total int64) {
	l.Logger.InfoContext(ctx,
		"Booking Finalized",
		slog.String("booking_id", bookingID),
		slog.String("hold_id", holdID),
		slog.String("user_id", userID),
		slog.Int64("total", total),
	)
}

// LogBookingRefunded logs a refund with its compensating wallet debit
func (l *Logger) LogBookingRefunded(ctx context.Context, bookingID, userID string, amount int64) {
	l.Logger.InfoContext(ctx,
		"Booking Refunded",
		slog.String("booking_id", bookingID),
		slog.String("user_id", userID),
		slog.Int64("debit", amount),
	)
}

// LogPaymentFailed logs a declined capture; the hold is released by the caller
func (l *Logger) LogPaymentFailed(ctx context.Context, holdID, reason string) {
	l.Logger.WarnContext(ctx,
		"Payment Failed",
		slog.String("hold_id", holdID),
		slog.String("reason", reason),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
