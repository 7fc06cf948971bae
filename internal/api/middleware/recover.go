package middleware

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Recover turns a handler panic into an error returned up the chain, so the
// request logger and metrics middleware registered before it still see the
// failed request. The panic and its stack are logged on log.
func Recover(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RecoverWithConfig(echomiddleware.RecoverConfig{
		DisableStackAll:     true,
		DisableErrorHandler: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("uri", c.Request().RequestURI).
				Bytes("stack", stack).
				Msg("panic recovered")
			return err
		},
	})
}
