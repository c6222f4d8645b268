package config

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// InitLogger configures the standard logrus logger
func InitLogger(cfg LoggerConfig) *logrus.Logger {
	logger := logrus.StandardLogger()

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.File != "" {
		file, err := openLogFile(cfg.File)
		if err == nil {
			logger.SetOutput(file)
		} else {
			logger.WithError(err).Warnf("cannot open log file %s, logging to stdout", cfg.File)
		}
	}
	return logger
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
}
