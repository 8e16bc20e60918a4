package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	localLogger     = "logger"
	requestIDHeader = "X-Request-ID"
)

// RequestLogger asigna un request id (respeta el X-Request-ID entrante), deja un logger con el id
// en c.Locals y registra método, ruta, estado y latencia al terminar.
func RequestLogger(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		log := base.With().
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Logger()
		c.Set(requestIDHeader, requestID)
		c.Locals(localLogger, log)

		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Int("status", status).Dur("latency", time.Since(start)).Msg("petición completada")
		return err
	}
}

// requestLogger devuelve el logger de la petición o uno nulo si no pasó por RequestLogger.
func requestLogger(c *fiber.Ctx) *zerolog.Logger {
	if log, ok := c.Locals(localLogger).(zerolog.Logger); ok {
		return &log
	}
	nop := zerolog.Nop()
	return &nop
}
