package apiclient

import (
	"context"

	"go.uber.org/zap"
)

// Reporter receives server-class failures. Calls are fire-and-forget.
type Reporter interface {
	ReportError(ctx context.Context, err error, tags map[string]string)
}

// Warner surfaces non-blocking notices, such as a 403 on an otherwise valid session
type Warner interface {
	Warn(ctx context.Context, message string)
}

// LogReporter reports errors to the structured log
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter creates a reporter writing to logger
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// ReportError logs err with its tags
func (r *LogReporter) ReportError(_ context.Context, err error, tags map[string]string) {
	fields := make([]zap.Field, 0, len(tags)+1)
	fields = append(fields, zap.Error(err))
	for k, v := range tags {
		fields = append(fields, zap.String(k, v))
	}
	r.logger.Error("upstream server error", fields...)
}

// LogWarner writes warnings to the structured log
type LogWarner struct {
	logger *zap.Logger
}

// NewLogWarner creates a warner writing to logger
func NewLogWarner(logger *zap.Logger) *LogWarner {
	return &LogWarner{logger: logger}
}

// Warn logs message at warn level
func (w *LogWarner) Warn(_ context.Context, message string) {
	w.logger.Warn(message)
}
