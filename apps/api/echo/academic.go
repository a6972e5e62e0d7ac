package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core/academic"
	"github.com/trezcool/mrejesho/core/session"
)

type academicApi struct {
	svc      *academic.Service
	validate *validator.Validate
}

func registerAcademicAPI(g *echo.Group, auth authMiddlewares, svc *academic.Service, validate *validator.Validate) {
	api := academicApi{svc: svc, validate: validate}
	admin := auth.with(roleMiddleware(session.RoleAdmin))

	// public: the student registration form lists them
	g.GET("/courses", api.courses, auth.optional...)
	g.GET("/courses/:id/groups", api.groups, auth.optional...)
	g.POST("/students/register", api.registerStudent)

	g.POST("/courses", api.addCourse, admin...)
	g.GET("/course-types", api.courseTypes, admin...)
	g.GET("/course-types/:type/courses", api.coursesByType, admin...)
	g.GET("/courses/:id/modules", api.modulesByCourse, admin...)
	g.POST("/courses/:id/groups", api.addGroups, admin...)
	g.GET("/modules", api.modules, admin...)
	g.POST("/modules", api.addModule, admin...)
	g.GET("/staff", api.staff, admin...)
	g.POST("/staff", api.addStaff, admin...)
	g.GET("/staff/roles", api.staffRoles, admin...)
}

func (api *academicApi) courses(ctx echo.Context) error {
	courses, err := api.svc.Courses(ctx.Request().Context(), optionalSession(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *academicApi) groups(ctx echo.Context) error {
	courseID, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	groups, err := api.svc.GroupsByCourse(ctx.Request().Context(), optionalSession(ctx), courseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *academicApi) registerStudent(ctx echo.Context) error {
	var data academic.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	img, err := bindUpload(ctx)
	if err != nil {
		return err
	}
	data.Image = img

	if err = api.svc.RegisterStudent(ctx.Request().Context(), data); err != nil {
		return err
	}
	return created(ctx, "Student registered successfully.")
}

func (api *academicApi) addCourse(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	var data academic.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	if err = api.svc.AddCourse(ctx.Request().Context(), sess, data); err != nil {
		return err
	}
	return created(ctx, "Course added successfully.")
}

func (api *academicApi) courseTypes(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	types, err := api.svc.CourseTypes(ctx.Request().Context(), sess)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, types)
}

func (api *academicApi) coursesByType(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	courses, err := api.svc.CoursesByType(ctx.Request().Context(), sess, ctx.Param("type"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *academicApi) modulesByCourse(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	courseID, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	modules, err := api.svc.ModulesByCourse(ctx.Request().Context(), sess, courseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (api *academicApi) addGroups(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	courseID, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data academic.NewGroups
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroups")
	}
	data.CourseID = courseID
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	added, err := api.svc.AddGroups(ctx.Request().Context(), sess, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"groups": added})
}

func (api *academicApi) modules(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	modules, err := api.svc.Modules(ctx.Request().Context(), sess)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (api *academicApi) addModule(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	var data academic.NewModule
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	if err = api.svc.AddModule(ctx.Request().Context(), sess, data); err != nil {
		return err
	}
	return created(ctx, "Module added successfully.")
}

func (api *academicApi) staff(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	staff, err := api.svc.Staff(ctx.Request().Context(), sess)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, staff)
}

func (api *academicApi) addStaff(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	var data academic.NewStaff
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStaff")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	if data.Image, err = bindUpload(ctx); err != nil {
		return err
	}
	if err = api.svc.AddStaff(ctx.Request().Context(), sess, data); err != nil {
		return err
	}
	return created(ctx, "Staff added successfully.")
}

func (api *academicApi) staffRoles(ctx echo.Context) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	roles, err := api.svc.StaffRoles(ctx.Request().Context(), sess)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, roles)
}
