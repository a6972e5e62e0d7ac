package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/session"
	"github.com/trezcool/mrejesho/core/submission"
)

type (
	listFunc func(ctx context.Context, sess session.Session, req core.PageRequest) (submission.List, error)

	studentApi struct {
		svc      *submission.Service
		validate *validator.Validate
	}
)

func registerStudentAPI(g *echo.Group, auth authMiddlewares, svc *submission.Service, validate *validator.Validate) {
	api := studentApi{svc: svc, validate: validate}

	mg := g.Group("/me", auth.with(roleMiddleware(session.RoleStudent))...)
	mg.GET("/pending", api.pending)
	mg.GET("/history", api.history)
	mg.POST("/submissions", api.submit)
	mg.GET("/submissions/:groupId", api.view)
}

func (api *studentApi) pending(ctx echo.Context) error {
	return api.list(ctx, api.svc.Pending)
}

func (api *studentApi) history(ctx echo.Context) error {
	return api.list(ctx, api.svc.History)
}

func (api *studentApi) list(ctx echo.Context, list listFunc) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	req, err := bindPage(ctx)
	if err != nil {
		return err
	}
	l, err := list(ctx.Request().Context(), sess, req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *studentApi) submit(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	var data submission.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	sub, err := api.svc.Submit(ctx.Request().Context(), sess, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *studentApi) view(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	groupID, err := idParam(ctx, "groupId")
	if err != nil {
		return err
	}
	answers, err := api.svc.View(ctx.Request().Context(), sess, groupID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, answers)
}
