package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"github.com/arnold/levelup-api/internal/logging"
	"github.com/arnold/levelup-api/internal/metrics"
)

// RequestID assigns every request an id, echoed in X-Request-ID and attached
// to the request context for logging.
func RequestID() fiber.Handler {
	return requestid.New()
}

// RequestLogger writes one log line per request and records request metrics.
// It must run after RequestID.
func RequestLogger(m *metrics.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		id := c.GetRespHeader(fiber.HeaderXRequestID)
		c.SetUserContext(logging.ContextWithRequestID(c.UserContext(), id))

		err := c.Next()
		if err != nil {
			// let the app's error handler set the final status before we read it
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)

		if m != nil {
			m.CounterRequests.WithLabelValues(c.Method(), strconv.Itoa(status)).Inc()
			m.HistRequestDuration.WithLabelValues(c.Method()).Observe(elapsed.Seconds())
		}

		entry := logging.WithContext(c.UserContext()).WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": elapsed.String(),
		})
		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("Request failed")
		case status >= fiber.StatusBadRequest:
			entry.Info("Request rejected")
		default:
			entry.Debug("Request served")
		}
		return nil
	}
}
