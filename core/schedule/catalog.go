package schedule

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/mrejesho/core/academic"
	"github.com/trezcool/mrejesho/core/feedbacktype"
)

// ReferenceData is the part of the feedback backend a Catalog is loaded from.
type ReferenceData interface {
	ListFeedbackTypes(ctx context.Context, token string) ([]feedbacktype.Summary, error)
	ListCourses(ctx context.Context, token string) ([]academic.Course, error)
	ListModulesByCourse(ctx context.Context, token string, courseID int) ([]academic.Module, error)
	ListGroupsByCourse(ctx context.Context, token string, courseID int) ([]academic.Group, error)
	ListStaff(ctx context.Context, token string) ([]academic.Staff, error)
}

// Catalog is the reference data a Draft is checked against.
// Modules and Groups are those of CourseID.
type Catalog struct {
	FeedbackTypes []feedbacktype.Summary
	Courses       []academic.Course
	Staff         []academic.Staff
	CourseID      int
	Modules       []academic.Module
	Groups        []academic.Group
}

// LoadCatalog fetches the reference data, with the modules and groups of courseID (if set).
func LoadCatalog(ctx context.Context, ref ReferenceData, token string, courseID int) (*Catalog, error) {
	cat := &Catalog{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cat.FeedbackTypes, err = ref.ListFeedbackTypes(gctx, token)
		return errors.Wrap(err, "listing feedback types")
	})
	g.Go(func() (err error) {
		cat.Courses, err = ref.ListCourses(gctx, token)
		return errors.Wrap(err, "listing courses")
	})
	g.Go(func() (err error) {
		cat.Staff, err = ref.ListStaff(gctx, token)
		return errors.Wrap(err, "listing staff")
	})
	if courseID > 0 {
		g.Go(func() error {
			return cat.SelectCourse(gctx, ref, token, courseID)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cat, nil
}

// SelectCourse replaces the modules and groups of the catalog with those of courseID.
func (cat *Catalog) SelectCourse(ctx context.Context, ref ReferenceData, token string, courseID int) error {
	cat.CourseID = courseID
	cat.Modules, cat.Groups = nil, nil
	if courseID <= 0 {
		return nil
	}

	var modules []academic.Module
	var groups []academic.Group
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		modules, err = ref.ListModulesByCourse(gctx, token, courseID)
		return errors.Wrap(err, "listing course modules")
	})
	g.Go(func() (err error) {
		groups, err = ref.ListGroupsByCourse(gctx, token, courseID)
		return errors.Wrap(err, "listing course groups")
	})
	if err := g.Wait(); err != nil {
		return err
	}
	cat.Modules, cat.Groups = modules, groups
	return nil
}

func (cat *Catalog) feedbackType(id int) (feedbacktype.Summary, bool) {
	for _, ft := range cat.FeedbackTypes {
		if ft.ID == id {
			return ft, true
		}
	}
	return feedbacktype.Summary{}, false
}

func (cat *Catalog) hasCourse(id int) bool {
	for _, c := range cat.Courses {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (cat *Catalog) hasModule(id int) bool {
	for _, m := range cat.Modules {
		if m.ID == id && (m.CourseID == 0 || m.CourseID == cat.CourseID) {
			return true
		}
	}
	return false
}

func (cat *Catalog) hasGroup(id int) bool {
	for _, grp := range cat.Groups {
		if grp.ID == id {
			return true
		}
	}
	return false
}

func (cat *Catalog) hasStaff(id int) bool {
	for _, s := range cat.Staff {
		if s.ID == id {
			return true
		}
	}
	return false
}
