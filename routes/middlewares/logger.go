package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/zsmartex/powermatch/config"
)

func RequestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	entry := config.Logger.WithFields(logrus.Fields{
		"method":  c.Method(),
		"path":    c.Path(),
		"status":  c.Response().StatusCode(),
		"latency": time.Since(start).String(),
	})
	if err != nil {
		entry.Errorf("Request failed: %v", err)
		return err
	}

	entry.Debug("request served")
	return nil
}
