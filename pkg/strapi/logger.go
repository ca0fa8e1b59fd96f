package strapi

// Logger is the logging interface the client reports through. Implementations
// adapt slog, zap, or any structured logger.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}
