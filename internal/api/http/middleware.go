package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/pkg/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware translates the core's three error kinds into
// HTTP shape. Status mapping lives here and nowhere deeper.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = errorutil.NewDatabase("internal server error", nil)
			}
			if err != nil {
				kind, status, message := shapeError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), string(kind))
				}
				if status >= 500 {
					logger.Error("request failed", zap.Error(err))
				}
				c.Status(status)
				_ = c.JSON(fiber.Map{"error": fiber.Map{
					"kind":    kind,
					"message": message,
				}})
				err = nil
			}
		}()
		return c.Next()
	}
}

func shapeError(err error) (errorutil.Kind, int, string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return errorutil.KindValidation, fiberErr.Code, fiberErr.Message
	}

	switch errorutil.KindOf(err) {
	case errorutil.KindValidation:
		return errorutil.KindValidation, http.StatusBadRequest, err.Error()
	case errorutil.KindAuth:
		return errorutil.KindAuth, http.StatusUnauthorized, err.Error()
	case errorutil.KindDatabase:
		return errorutil.KindDatabase, http.StatusInternalServerError, "internal server error"
	}
	return errorutil.KindDatabase, http.StatusInternalServerError, "internal server error"
}
