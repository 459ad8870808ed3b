package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const localLogger = "logger"

// RequestLogger asigna un request id y escribe una línea de log de acceso por petición.
func RequestLogger(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(fiber.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(fiber.HeaderXRequestID, reqID)
		l := base.With().Str("request_id", reqID).Logger()
		c.Locals(localLogger, l)

		err := c.Next()
		if err != nil {
			// dejar que el error handler de la app fije el estado antes de registrarlo
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		l.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("petición")
		return nil
	}
}

func requestLogger(c *fiber.Ctx) *zerolog.Logger {
	if l, ok := c.Locals(localLogger).(zerolog.Logger); ok {
		return &l
	}
	return &log.Logger
}
