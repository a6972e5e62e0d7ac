package academic

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
)

var errEndBeforeStart = errors.New("Start Date cannot be greater than End Date.")

type Course struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Duration  int    `json:"duration,omitempty"` // days
	Type      string `json:"type,omitempty"`
}

type Module struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	CourseID int    `json:"courseId"`
}

type Group struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Staff struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (s Staff) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

type StaffRole struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Upload is an optional profile image attached to a registration.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

type NewCourse struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"startDate" validate:"required,date"`
	EndDate   string `json:"endDate" validate:"required,date"`
	Duration  int    `json:"duration" validate:"required,gt=0"`
	Type      string `json:"type" validate:"required,alphanum_"` // used as a path segment by course-types lookups
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Type = core.CleanString(nc.Type)
	if err := validate.Struct(nc); err != nil {
		return err
	}
	return checkDateOrder(nc.StartDate, nc.EndDate)
}

func checkDateOrder(start, end string) error {
	startDate, _ := core.ParseDate(start)
	endDate, _ := core.ParseDate(end)
	if startDate.After(endDate) {
		return core.NewValidationError(
			errEndBeforeStart,
			core.FieldError{Field: "startDate", Error: errEndBeforeStart.Error()},
		)
	}
	return nil
}

type NewModule struct {
	Name     string `json:"name" validate:"required"`
	Duration int    `json:"duration" validate:"required,gt=0"`
	CourseID int    `json:"courseId" validate:"required,gt=0"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	return validate.Struct(nm)
}

type NewGroups struct {
	CourseID int      `json:"courseId" validate:"required,gt=0"`
	Groups   []string `json:"groups" validate:"required,min=1,dive,required"`
}

// Validate drops blank group names before validating.
func (ng *NewGroups) Validate(validate *validator.Validate) error {
	groups := make([]string, 0, len(ng.Groups))
	for _, name := range ng.Groups {
		if name = core.CleanString(name); name != "" {
			groups = append(groups, name)
		}
	}
	ng.Groups = groups
	return validate.Struct(ng)
}

type NewStaff struct {
	RoleID    int     `json:"roleId" form:"roleId" validate:"required,gt=0"`
	FirstName string  `json:"firstName" form:"firstName" validate:"required"`
	LastName  string  `json:"lastName" form:"lastName" validate:"required"`
	Email     string  `json:"email" form:"email" validate:"required,email"`
	Password  string  `json:"password" form:"password" validate:"required,pwdminlen"`
	Image     *Upload `json:"-"`
}

func (ns *NewStaff) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

type NewStudent struct {
	FirstName string  `json:"firstName" form:"firstName" validate:"required"`
	LastName  string  `json:"lastName" form:"lastName" validate:"required"`
	Email     string  `json:"email" form:"email" validate:"required,email"`
	Password  string  `json:"password" form:"password" validate:"required,pwdminlen"`
	CourseID  int     `json:"courseId" form:"courseId" validate:"required,gt=0"`
	GroupID   int     `json:"groupId" form:"groupId" validate:"omitempty,gt=0"`
	Image     *Upload `json:"-"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}
