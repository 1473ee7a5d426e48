package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

func NewLoggerService() *logrus.Logger {
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	level, err := logrus.ParseLevel(GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	return Logger
}
