package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/roster"
	"github.com/trezcool/mrejesho/core/schedule"
	"github.com/trezcool/mrejesho/core/session"
)

const (
	statusSubmitted = "submitted"
	statusRemaining = "remaining"
)

var errBadStatus = core.NewValidationError(
	errors.New("invalid status"),
	core.FieldError{Field: "status", Error: "status must be one of: submitted, remaining"},
)

type (
	ScheduleDetail struct {
		Schedule schedule.Schedule `json:"schedule"`
		Draft    schedule.Draft    `json:"draft"`
	}

	scheduleApi struct {
		svc       *schedule.Service
		rosterSvc *roster.Service
	}
)

func registerScheduleAPI(g *echo.Group, auth authMiddlewares, svc *schedule.Service, rosterSvc *roster.Service) {
	api := scheduleApi{svc: svc, rosterSvc: rosterSvc}

	sg := g.Group("/schedules", auth.with(roleMiddleware(session.RoleAdmin))...)
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.POST("/check", api.check)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)

	// feedback group endpoints
	gg := sg.Group("/groups/:id")
	gg.DELETE("", api.destroyGroup)
	gg.GET("/students", api.students)
	gg.GET("/roster", api.roster)
	gg.POST("/remind", api.remind)
}

func (api *scheduleApi) query(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	req, err := bindPage(ctx)
	if err != nil {
		return err
	}
	page, err := api.svc.ListPaged(ctx.Request().Context(), sess, req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *scheduleApi) bindDraft(ctx echo.Context) (session.Session, schedule.Draft, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return sess, schedule.Draft{}, err
	}
	var data schedule.Draft
	if err = ctx.Bind(&data); err != nil {
		return sess, data, errors.Wrap(err, "binding to Draft")
	}
	return sess, data, nil
}

func (api *scheduleApi) create(ctx echo.Context) error {
	sess, draft, err := api.bindDraft(ctx)
	if err != nil {
		return err
	}
	sched, err := api.svc.Create(ctx.Request().Context(), sess, draft)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sched)
}

// check validates a draft against live reference data without saving it.
func (api *scheduleApi) check(ctx echo.Context) error {
	sess, draft, err := api.bindDraft(ctx)
	if err != nil {
		return err
	}
	sched, err := api.svc.Check(ctx.Request().Context(), sess, draft)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sched)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	sched, err := api.svc.Get(ctx.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ScheduleDetail{Schedule: sched, Draft: schedule.DraftOf(sched)})
}

func (api *scheduleApi) update(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	sess, draft, err := api.bindDraft(ctx)
	if err != nil {
		return err
	}
	sched, err := api.svc.Update(ctx.Request().Context(), sess, id, draft)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sched)
}

func (api *scheduleApi) destroyGroup(ctx echo.Context) error {
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

func (api *scheduleApi) students(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var submitted bool
	switch ctx.QueryParam("status") {
	case statusSubmitted:
		submitted = true
	case statusRemaining, "":
	default:
		return errBadStatus
	}
	req, err := bindPage(ctx)
	if err != nil {
		return err
	}
	page, err := api.rosterSvc.Students(ctx.Request().Context(), sess, id, submitted, req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *scheduleApi) roster(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	part, err := api.rosterSvc.Partition(ctx.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, part)
}

func (api *scheduleApi) remind(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	sent, err := api.rosterSvc.Remind(ctx.Request().Context(), sess, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"sent": sent})
}
