package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/session"
)

type (
	LoginResponse struct {
		Token     string          `json:"token"`
		ExpiresAt time.Time       `json:"expiresAt"`
		User      session.Profile `json:"user"`
	}

	sessionApi struct {
		conf     *core.Config
		svc      *session.Service
		validate *validator.Validate
	}
)

func registerSessionAPI(g *echo.Group, auth authMiddlewares, conf *core.Config, svc *session.Service, validate *validator.Validate) {
	api := sessionApi{conf: conf, svc: svc, validate: validate}

	sg := g.Group("/session")

	// un-authed endpoints
	sg.POST("/login", api.login)
	sg.POST("/forgot-password", api.forgotPassword)

	// authed endpoints
	sg.GET("", api.current, auth.required...)
	sg.DELETE("", api.logout, auth.required...)
}

func (api *sessionApi) login(ctx echo.Context) error {
	var data session.LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.Login(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	token, err := GenerateToken(api.conf, sess)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: sess.ExpiresAt, User: sess.Profile})
}

func (api *sessionApi) forgotPassword(ctx echo.Context) error {
	var data session.ForgotPasswordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ForgotPasswordRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	msg, err := api.svc.ForgotPassword(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": msg})
}

func (api *sessionApi) current(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) logout(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Logout(ctx.Request().Context(), sess.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
