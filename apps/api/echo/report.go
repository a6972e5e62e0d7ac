package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core/report"
	"github.com/trezcool/mrejesho/core/schedule"
	"github.com/trezcool/mrejesho/core/session"
)

type reportApi struct {
	svc         *report.Service
	scheduleSvc *schedule.Service
}

func registerReportAPI(g *echo.Group, auth authMiddlewares, svc *report.Service, scheduleSvc *schedule.Service) {
	api := reportApi{svc: svc, scheduleSvc: scheduleSvc}

	rg := g.Group("/reports", auth.with(roleMiddleware(session.RoleAdmin))...)
	rg.GET("/course-wise", api.courseWise)
	rg.GET("/dashboard", api.dashboard)
	rg.GET("/per-faculty", api.perFaculty)
	rg.GET("/faculty-summary", api.facultyOptions)
	rg.POST("/faculty-summary", api.facultySummary)

	// staff members see their own
	staff := auth.with(roleMiddleware(session.RoleAdmin, session.RoleStaff))
	g.GET("/staff/:id/dashboard", api.staffDashboard, staff...)
	g.GET("/staff/:id/schedules", api.staffSchedules, staff...)
}

func (api *reportApi) courseWise(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	var f report.CourseWiseFilter
	if err = ctx.Bind(&f); err != nil {
		return errors.Wrap(err, "binding to CourseWiseFilter")
	}
	rep, err := api.svc.CourseWise(ctx.Request().Context(), sess, f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) dashboard(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	var f report.DashboardFilter
	if err = ctx.Bind(&f); err != nil {
		return errors.Wrap(err, "binding to DashboardFilter")
	}
	rows, err := api.svc.Dashboard(ctx.Request().Context(), sess, f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *reportApi) perFaculty(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	var f report.PerFacultyFilter
	if err = ctx.Bind(&f); err != nil {
		return errors.Wrap(err, "binding to PerFacultyFilter")
	}
	ratings, err := api.svc.PerFaculty(ctx.Request().Context(), sess, f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ratings)
}

func (api *reportApi) facultyOptions(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	var f report.FacultyFilter
	if err = ctx.Bind(&f); err != nil {
		return errors.Wrap(err, "binding to FacultyFilter")
	}
	opts, err := api.svc.FacultyOptions(ctx.Request().Context(), sess, f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, opts)
}

func (api *reportApi) facultySummary(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	var f report.FacultyFilter
	if err = ctx.Bind(&f); err != nil {
		return errors.Wrap(err, "binding to FacultyFilter")
	}
	summary, err := api.svc.FacultySummary(ctx.Request().Context(), sess, f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *reportApi) staffDashboard(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	staffID, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	rows, err := api.svc.StaffDashboard(ctx.Request().Context(), sess, staffID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *reportApi) staffSchedules(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	staffID, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	scheds, err := api.scheduleSvc.ListForStaff(ctx.Request().Context(), sess, staffID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, scheds)
}
