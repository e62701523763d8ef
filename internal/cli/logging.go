package cli

import (
	"io"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/logview/internal/level"
)

// SetupLogging creates a console logger on w at the named level and
// installs it as the default logger.
func SetupLogging(w io.Writer, name string) logger.ILogger {
	log := logger.NewConsoleLogger(w)

	switch level.Normalize(name) {
	case level.Trace:
		log.SetLevel(logger.LevelTrace)
	case level.Debug:
		log.SetLevel(logger.LevelDebug)
	case level.Warn:
		log.SetLevel(logger.LevelWarning)
	case level.Error:
		log.SetLevel(logger.LevelError)
	default:
		log.SetLevel(logger.LevelInfo)
	}

	logger.SetDefaultLogger(log)
	logger.SetCtxFallbackLogger(log)

	return log
}
