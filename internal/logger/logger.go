package logger

import (
	"io"
	"os"
	"strings"

	"grocery-analytics/internal/config"

	"github.com/sirupsen/logrus"
)

// Logger оборачивает logrus для единообразных структурированных логов
type Logger struct {
	*logrus.Logger
}

// New создает логгер по конфигурации. Неизвестный уровень трактуется как info.
// Если файл не открылся, логи идут только в stdout.
func New(cfg *config.LoggerConfig) *Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	}

	log.SetOutput(os.Stdout)
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.WithError(err).WithField("file", cfg.File).Warn("Failed to open log file, using stdout")
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, file))
		}
	}

	return &Logger{Logger: log}
}

// WithComponent возвращает запись с полем component.
func (l *Logger) WithComponent(name string) *logrus.Entry {
	return l.WithField("component", name)
}
