package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core/feedbacktype"
	"github.com/trezcool/mrejesho/core/session"
)

type (
	UpdateResponse struct {
		FeedbackType feedbacktype.FeedbackType `json:"feedbackType"`
		Changed      bool                      `json:"changed"`
	}

	feedbackTypeApi struct {
		svc      *feedbacktype.Service
		validate *validator.Validate
	}
)

func registerFeedbackTypeAPI(g *echo.Group, auth authMiddlewares, svc *feedbacktype.Service, validate *validator.Validate) {
	api := feedbackTypeApi{svc: svc, validate: validate}

	fg := g.Group("/feedback-types", auth.with(roleMiddleware(session.RoleAdmin))...)
	fg.GET("", api.query)
	fg.POST("", api.create)

	// detail endpoints
	fg.GET("/:id", api.retrieve)
	fg.PUT("/:id", api.update)
	fg.DELETE("/:id", api.destroy)
	fg.GET("/:id/editable", api.editable)
	fg.GET("/:id/questions", api.questions)
}

func (api *feedbackTypeApi) query(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	var types []feedbacktype.Summary
	if group := ctx.QueryParam("group"); group != "" {
		types, err = api.svc.ListByGroup(ctx.Request().Context(), sess, group)
	} else {
		types, err = api.svc.List(ctx.Request().Context(), sess)
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, types)
}

func (api *feedbackTypeApi) create(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	var data feedbacktype.NewFeedbackType
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFeedbackType")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	if err = api.svc.Create(ctx.Request().Context(), sess, data); err != nil {
		return err
	}
	return created(ctx, "Feedback type created successfully.")
}

func (api *feedbackTypeApi) retrieve(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	ft, err := api.svc.Get(ctx.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ft)
}

func (api *feedbackTypeApi) update(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data feedbacktype.UpdateFeedbackType
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFeedbackType")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	ft, changed, err := api.svc.Update(ctx.Request().Context(), sess, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, UpdateResponse{FeedbackType: ft, Changed: changed})
}

func (api *feedbackTypeApi) destroy(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), sess, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *feedbackTypeApi) editable(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	editable, err := api.svc.CheckEditable(ctx.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"isEditable": editable})
}

func (api *feedbackTypeApi) questions(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	questions, err := api.svc.Questions(ctx.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, questions)
}
