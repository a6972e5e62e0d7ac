package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/trezcool/mrejesho/core/session"
)

// roleMiddleware lets through sessions holding any of the roles.
func roleMiddleware(roles ...session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := currentSession(ctx)
			if err != nil {
				return err
			}
			if sess.HasRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// skipWithoutToken skips the JWT middleware on requests carrying no Authorization header.
func skipWithoutToken(ctx echo.Context) bool {
	return ctx.Request().Header.Get(echo.HeaderAuthorization) == ""
}

func corsConfig(origins []string) middleware.CORSConfig {
	conf := middleware.DefaultCORSConfig
	if len(origins) > 0 {
		conf.AllowOrigins = origins
	}
	conf.AllowHeaders = []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization}
	return conf
}
