package academic

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/session"
)

type (
	// Gateway is the part of the feedback backend serving reference data.
	// An empty token sends an anonymous request.
	Gateway interface {
		ListCourses(ctx context.Context, token string) ([]Course, error)
		AddCourse(ctx context.Context, token string, nc NewCourse) error
		ListCourseTypes(ctx context.Context, token string) ([]string, error)
		ListCoursesByType(ctx context.Context, token, courseType string) ([]Course, error)
		ListModules(ctx context.Context, token string) ([]Module, error)
		AddModule(ctx context.Context, token string, nm NewModule) error
		ListModulesByCourse(ctx context.Context, token string, courseID int) ([]Module, error)
		ListGroupsByCourse(ctx context.Context, token string, courseID int) ([]Group, error)
		AddGroups(ctx context.Context, token string, ng NewGroups) error
		ListStaff(ctx context.Context, token string) ([]Staff, error)
		ListStaffRoles(ctx context.Context, token string) ([]StaffRole, error)
		AddStaff(ctx context.Context, token string, ns NewStaff) error
		RegisterStudent(ctx context.Context, ns NewStudent) error
	}

	Service struct {
		gw Gateway
	}
)

func NewService(gw Gateway) *Service {
	return &Service{gw: gw}
}

// token returns the backend token of sess; nil sessions are anonymous.
func token(sess *session.Session) string {
	if sess == nil {
		return ""
	}
	return sess.BackendToken
}

func (svc *Service) Courses(ctx context.Context, sess *session.Session) ([]Course, error) {
	return svc.gw.ListCourses(ctx, token(sess))
}

func (svc *Service) Course(ctx context.Context, sess *session.Session, id int) (Course, error) {
	courses, err := svc.Courses(ctx, sess)
	if err != nil {
		return Course{}, err
	}
	for _, c := range courses {
		if c.ID == id {
			return c, nil
		}
	}
	return Course{}, errors.Wrapf(core.ErrNotFound, "course %d", id)
}

func (svc *Service) AddCourse(ctx context.Context, sess session.Session, nc NewCourse) error {
	return svc.gw.AddCourse(ctx, sess.BackendToken, nc)
}

func (svc *Service) CourseTypes(ctx context.Context, sess session.Session) ([]string, error) {
	return svc.gw.ListCourseTypes(ctx, sess.BackendToken)
}

func (svc *Service) CoursesByType(ctx context.Context, sess session.Session, courseType string) ([]Course, error) {
	return svc.gw.ListCoursesByType(ctx, sess.BackendToken, core.CleanString(courseType))
}

func (svc *Service) Modules(ctx context.Context, sess session.Session) ([]Module, error) {
	return svc.gw.ListModules(ctx, sess.BackendToken)
}

func (svc *Service) AddModule(ctx context.Context, sess session.Session, nm NewModule) error {
	return svc.gw.AddModule(ctx, sess.BackendToken, nm)
}

func (svc *Service) ModulesByCourse(ctx context.Context, sess session.Session, courseID int) ([]Module, error) {
	return svc.gw.ListModulesByCourse(ctx, sess.BackendToken, courseID)
}

func (svc *Service) GroupsByCourse(ctx context.Context, sess *session.Session, courseID int) ([]Group, error) {
	return svc.gw.ListGroupsByCourse(ctx, token(sess), courseID)
}

// AddGroups adds the groups of ng that the course does not have yet.
func (svc *Service) AddGroups(ctx context.Context, sess session.Session, ng NewGroups) ([]string, error) {
	existing, err := svc.GroupsByCourse(ctx, &sess, ng.CourseID)
	if err != nil {
		return nil, errors.Wrap(err, "listing course groups")
	}
	known := make(map[string]bool, len(existing))
	for _, grp := range existing {
		known[core.CleanString(grp.Name, true /* lower */)] = true
	}
	groups := make([]string, 0, len(ng.Groups))
	for _, name := range ng.Groups {
		key := core.CleanString(name, true /* lower */)
		if !known[key] {
			known[key] = true
			groups = append(groups, name)
		}
	}
	if len(groups) == 0 {
		err := errors.New("Add at least one new group before saving.")
		return nil, core.NewValidationError(err, core.FieldError{Field: "groups", Error: err.Error()})
	}
	ng.Groups = groups
	return groups, svc.gw.AddGroups(ctx, sess.BackendToken, ng)
}

func (svc *Service) Staff(ctx context.Context, sess session.Session) ([]Staff, error) {
	return svc.gw.ListStaff(ctx, sess.BackendToken)
}

func (svc *Service) StaffRoles(ctx context.Context, sess session.Session) ([]StaffRole, error) {
	return svc.gw.ListStaffRoles(ctx, sess.BackendToken)
}

func (svc *Service) AddStaff(ctx context.Context, sess session.Session, ns NewStaff) error {
	return svc.gw.AddStaff(ctx, sess.BackendToken, ns)
}

// RegisterStudent creates a student account. It is an anonymous operation.
func (svc *Service) RegisterStudent(ctx context.Context, ns NewStudent) error {
	return svc.gw.RegisterStudent(ctx, ns)
}
