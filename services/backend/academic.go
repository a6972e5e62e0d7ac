package backendapi

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core/academic"
)

var _ academic.Gateway = (*Client)(nil)

type courseDTO struct {
	ID        int    `json:"course_id,omitempty" validate:"required"`
	Name      string `json:"course_name" validate:"required"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Duration  int    `json:"duration,omitempty"`
	Type      string `json:"course_type,omitempty"`
}

func (dto courseDTO) course() academic.Course {
	return academic.Course{
		ID:        dto.ID,
		Name:      dto.Name,
		StartDate: dto.StartDate,
		EndDate:   dto.EndDate,
		Duration:  dto.Duration,
		Type:      dto.Type,
	}
}

func courses(dtos []courseDTO) []academic.Course {
	cs := make([]academic.Course, 0, len(dtos))
	for _, dto := range dtos {
		cs = append(cs, dto.course())
	}
	return cs
}

type moduleDTO struct {
	ID       int    `json:"module_id,omitempty" validate:"required"`
	Name     string `json:"module_name" validate:"required"`
	Duration int    `json:"duration"`
	CourseID int    `json:"course_id"`
}

func modules(dtos []moduleDTO) []academic.Module {
	ms := make([]academic.Module, 0, len(dtos))
	for _, dto := range dtos {
		ms = append(ms, academic.Module{ID: dto.ID, Name: dto.Name, Duration: dto.Duration, CourseID: dto.CourseID})
	}
	return ms
}

type groupDTO struct {
	ID   int    `json:"group_id" validate:"required"`
	Name string `json:"group_name" validate:"required"`
}

type addGroupsRequest struct {
	CourseID int      `json:"course_id"`
	Groups   []string `json:"groups"`
}

type staffDTO struct {
	ID        int    `json:"staff_id" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type staffRoleDTO struct {
	ID   int    `json:"staffrole_id" validate:"required"`
	Name string `json:"staffrole_name" validate:"required"`
}

func (cl *Client) ListCourses(ctx context.Context, token string) ([]academic.Course, error) {
	var dtos []courseDTO
	if err := cl.do(ctx, get("GetAllCourse", "GetAllCourse").auth(token), &dtos); err != nil {
		return nil, err
	}
	return courses(dtos), nil
}

func (cl *Client) AddCourse(ctx context.Context, token string, nc academic.NewCourse) error {
	req := courseDTO{
		Name:      nc.Name,
		StartDate: nc.StartDate,
		EndDate:   nc.EndDate,
		Duration:  nc.Duration,
		Type:      nc.Type,
	}
	return cl.do(ctx, post("AddCourse", "AddCourse", req).auth(token), nil)
}

func (cl *Client) ListCourseTypes(ctx context.Context, token string) ([]string, error) {
	var types []string
	if err := cl.do(ctx, get("GetCourseTypes", "GetCourseTypes").auth(token), &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (cl *Client) ListCoursesByType(ctx context.Context, token, courseType string) ([]academic.Course, error) {
	var dtos []courseDTO
	c := get("GetCoursesByType/{type}", pathf("GetCoursesByType", courseType)).auth(token)
	if err := cl.do(ctx, c, &dtos); err != nil {
		return nil, err
	}
	return courses(dtos), nil
}

func (cl *Client) ListModules(ctx context.Context, token string) ([]academic.Module, error) {
	var dtos []moduleDTO
	if err := cl.do(ctx, get("Modules", "Modules").auth(token), &dtos); err != nil {
		return nil, err
	}
	return modules(dtos), nil
}

func (cl *Client) AddModule(ctx context.Context, token string, nm academic.NewModule) error {
	req := moduleDTO{Name: nm.Name, Duration: nm.Duration, CourseID: nm.CourseID}
	return cl.do(ctx, post("Modules", "Modules", req).auth(token), nil)
}

func (cl *Client) ListModulesByCourse(ctx context.Context, token string, courseID int) ([]academic.Module, error) {
	var dtos []moduleDTO
	c := get("Modules/ByCourse/{id}", pathf("Modules", "ByCourse", courseID)).auth(token)
	if err := cl.do(ctx, c, &dtos); err != nil {
		return nil, err
	}
	return modules(dtos), nil
}

func (cl *Client) ListGroupsByCourse(ctx context.Context, token string, courseID int) ([]academic.Group, error) {
	var dtos []groupDTO
	c := get("Groups/ByCourse/{id}", pathf("Groups", "ByCourse", courseID)).auth(token)
	if err := cl.do(ctx, c, &dtos); err != nil {
		return nil, err
	}
	groups := make([]academic.Group, 0, len(dtos))
	for _, dto := range dtos {
		groups = append(groups, academic.Group{ID: dto.ID, Name: dto.Name})
	}
	return groups, nil
}

func (cl *Client) AddGroups(ctx context.Context, token string, ng academic.NewGroups) error {
	req := addGroupsRequest{CourseID: ng.CourseID, Groups: ng.Groups}
	return cl.do(ctx, post("Groups/addGroups", "Groups/addGroups", req).auth(token), nil)
}

func (cl *Client) ListStaff(ctx context.Context, token string) ([]academic.Staff, error) {
	var dtos []staffDTO
	if err := cl.do(ctx, get("staff/getAllStaff", "staff/getAllStaff").auth(token), &dtos); err != nil {
		return nil, err
	}
	staff := make([]academic.Staff, 0, len(dtos))
	for _, dto := range dtos {
		staff = append(staff, academic.Staff{ID: dto.ID, FirstName: dto.FirstName, LastName: dto.LastName, Email: dto.Email})
	}
	return staff, nil
}

func (cl *Client) ListStaffRoles(ctx context.Context, token string) ([]academic.StaffRole, error) {
	var dtos []staffRoleDTO
	if err := cl.do(ctx, get("staff/GetStaffRoles", "staff/GetStaffRoles").auth(token), &dtos); err != nil {
		return nil, err
	}
	roles := make([]academic.StaffRole, 0, len(dtos))
	for _, dto := range dtos {
		roles = append(roles, academic.StaffRole{ID: dto.ID, Name: dto.Name})
	}
	return roles, nil
}

func (cl *Client) AddStaff(ctx context.Context, token string, ns academic.NewStaff) error {
	body, contentType, err := multipartForm([][2]string{
		{"staffrole_id", strconv.Itoa(ns.RoleID)},
		{"first_name", ns.FirstName},
		{"last_name", ns.LastName},
		{"email", ns.Email},
		{"password", ns.Password},
	}, ns.Image)
	if err != nil {
		return errors.Wrap(err, "encoding staff form")
	}
	return cl.do(ctx, upload("staff/addStaff", "staff/addStaff", body, contentType).auth(token), nil)
}

// RegisterStudent is a public endpoint: it needs no token.
func (cl *Client) RegisterStudent(ctx context.Context, ns academic.NewStudent) error {
	fields := [][2]string{
		{"FirstName", ns.FirstName},
		{"LastName", ns.LastName},
		{"Email", ns.Email},
		{"Password", ns.Password},
		{"CourseId", strconv.Itoa(ns.CourseID)},
	}
	if ns.GroupID > 0 {
		fields = append(fields, [2]string{"GroupId", strconv.Itoa(ns.GroupID)})
	}
	body, contentType, err := multipartForm(fields, ns.Image)
	if err != nil {
		return errors.Wrap(err, "encoding student form")
	}
	return cl.do(ctx, upload("StudentApi/UploadProfile", "StudentApi/UploadProfile", body, contentType), nil)
}

// multipartForm encodes fields in order, then image (if any) as the profileImage file.
func multipartForm(fields [][2]string, image *academic.Upload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if image != nil && len(image.Content) > 0 {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="profileImage"; filename="`+escapeQuotes(image.Filename)+`"`)
		ct := image.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err = part.Write(image.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
