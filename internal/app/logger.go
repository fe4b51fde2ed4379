package app

import (
	"os"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
)

// NewLogger returns a JSON logger writing to stdout at the configured level.
func NewLogger(cfg *config.Config) logx.Logger {
	return logx.NewJSON(os.Stdout, cfg.LogLevel).With(logx.String("service", "service-dispatch"))
}
