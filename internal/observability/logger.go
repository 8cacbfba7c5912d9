package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/csbwire/csbwire/internal/logging"
)

// InitLogger resolves the global logging configuration, tags the
// logger with the owning binary name, and installs it globally.
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime()
	logger := log.Logger.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
