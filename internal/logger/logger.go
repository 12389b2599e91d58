// internal/logger/logger.go
package logger

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/smsleopard-activation/internal/config"
)

// Log is the global logger instance
var Log = logrus.New()

// Init configures Log from cfg: JSON output in production and staging,
// coloured text everywhere else.
func Init(cfg *config.Config) {
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if cfg.IsProduction() {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
}

// WithTenant returns an entry tagged with the tenant id.
func WithTenant(tenantID int) *logrus.Entry {
	return Log.WithField("tenant_id", tenantID)
}
