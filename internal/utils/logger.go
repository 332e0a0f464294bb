package utils

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger. JSON in release mode, text otherwise.
func NewLogger(json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	slog.Info(message,
		slog.String("module", strings.ToLower(module)),
		slog.String("action", action),
		slog.String("request_id", strings.TrimSpace(requestID)),
	)
}

// LogError is LogEvent at error level with the failure attached.
func LogError(requestID, module, action string, err error) {
	slog.Error(action+" failed",
		slog.String("module", strings.ToLower(module)),
		slog.String("action", action),
		slog.String("request_id", strings.TrimSpace(requestID)),
		slog.Any("error", err),
	)
}
