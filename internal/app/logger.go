package app

import (
	"os"

	"driver-companion/internal/config"
	"driver-companion/internal/logx"
)

// NewLogger builds the process logger from the log settings.
func NewLogger(cfg *config.Config) logx.Logger {
	return logx.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
}
