package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/schedule"
	"github.com/trezcool/mrejesho/core/session"
	"github.com/trezcool/mrejesho/core/submission"
	backendapi "github.com/trezcool/mrejesho/services/backend"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden  = echo.NewHTTPError(http.StatusForbidden, core.ErrForbidden.Error())
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, core.ErrNotFound.Error())
	errBadBackendData = "unexpected backend response"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.TranslateErrors(origErr, translator)
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *backendapi.APIError:
			code = http.StatusBadGateway
			message = origErr.UserMessage()
			logger.Warn("backend call failed", err, profileOf(ctx))
		case *backendapi.SchemaError:
			code = http.StatusBadGateway
			message = errBadBackendData
			logger.Error(errBadBackendData, err, profileOf(ctx))
		default:
			switch origErr {
			case submission.ErrAlreadySubmitted, schedule.ErrNotEditable, core.ErrConflict:
				code = http.StatusConflict
				message = origErr.Error()
			case core.ErrNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			case core.ErrForbidden:
				code = http.StatusForbidden
				message = origErr.Error()
			case backendapi.ErrUnauthorized, session.ErrSessionNotFound:
				code = http.StatusUnauthorized
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg), profileOf(ctx))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// profileOf returns the acting profile for error reports; anonymous requests have a zero one.
func profileOf(ctx echo.Context) session.Profile {
	if sess, err := currentSession(ctx); err == nil {
		return sess.Profile
	}
	return session.Profile{}
}
