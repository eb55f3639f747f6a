package logger

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap"
)

// NewMongoCommandMonitor returns a driver command monitor that logs failed
// commands at error level and commands slower than slowThreshold at warn level.
// Successful fast commands are logged at debug level.
func NewMongoCommandMonitor(zapLogger *zap.Logger, slowThreshold time.Duration) *event.CommandMonitor {
	l := zapLogger.Named("mongo")
	return &event.CommandMonitor{
		Succeeded: func(ctx context.Context, e *event.CommandSucceededEvent) {
			fields := mongoFields(ctx, e.CommandFinishedEvent)
			if slowThreshold > 0 && e.Duration > slowThreshold {
				l.Warn("Slow Mongo command", append(fields, zap.Duration("threshold", slowThreshold))...)
				return
			}
			l.Debug("Mongo command", fields...)
		},
		Failed: func(ctx context.Context, e *event.CommandFailedEvent) {
			fields := mongoFields(ctx, e.CommandFinishedEvent)
			l.Error("Mongo command failed", append(fields, zap.String("failure", e.Failure))...)
		},
	}
}

func mongoFields(ctx context.Context, e event.CommandFinishedEvent) []zap.Field {
	fields := []zap.Field{
		zap.String("command", e.CommandName),
		zap.String("database", e.DatabaseName),
		zap.Int64("request_id_wire", e.RequestID),
		zap.Duration("elapsed", e.Duration),
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	return fields
}
