package report

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/academic"
	"github.com/trezcool/mrejesho/core/feedbacktype"
	"github.com/trezcool/mrejesho/core/schedule"
	"github.com/trezcool/mrejesho/core/session"
)

type (
	// Gateway is the reporting part of the feedback backend.
	Gateway interface {
		ListFeedbackTypes(ctx context.Context, token string) ([]feedbacktype.Summary, error)
		ListCourses(ctx context.Context, token string) ([]academic.Course, error)
		CourseWiseReport(ctx context.Context, token string) ([]CourseWiseCourse, error)
		CourseFeedbackReport(ctx context.Context, token string) ([]DashboardRaw, error)
		PerFacultySummary(ctx context.Context, token, courseType string, courseID int, feedbackTypeIDs string) ([]FacultyRating, error)
		DashboardRatings(ctx context.Context, token string) ([]RatingRow, error)
		FacultyFeedbackSummary(ctx context.Context, token string, req SummaryRequest) (SummaryResult, error)
		ListStaffSchedules(ctx context.Context, token string, staffID int) ([]schedule.StaffSchedule, error)
	}

	Service struct {
		gw Gateway
	}
)

func NewService(gw Gateway) *Service {
	return &Service{gw: gw}
}

// CourseWise returns the course-wise ratings of f.Course, with the course and template choices.
func (svc *Service) CourseWise(ctx context.Context, sess session.Session, f CourseWiseFilter) (CourseWiseReport, error) {
	var (
		courses []CourseWiseCourse
		types   []feedbacktype.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		courses, err = svc.gw.CourseWiseReport(gctx, sess.BackendToken)
		return errors.Wrap(err, "fetching course-wise report")
	})
	g.Go(func() (err error) {
		types, err = svc.gw.ListFeedbackTypes(gctx, sess.BackendToken)
		return errors.Wrap(err, "listing feedback types")
	})
	if err := g.Wait(); err != nil {
		return CourseWiseReport{}, err
	}

	return CourseWiseReport{
		Courses: courseNames(courses),
		Types:   SplitTypes(types),
		Rows:    FlattenCourseWise(courses, f),
	}, nil
}

// Dashboard returns the course feedback report, filtered by course and template.
// An id that matches no course (or template) yields no rows.
func (svc *Service) Dashboard(ctx context.Context, sess session.Session, f DashboardFilter) ([]DashboardRow, error) {
	var (
		raws         []DashboardRaw
		course, kind *string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		raws, err = svc.gw.CourseFeedbackReport(gctx, sess.BackendToken)
		return errors.Wrap(err, "fetching course feedback report")
	})
	if f.CourseID > 0 {
		g.Go(func() error {
			courses, err := svc.gw.ListCourses(gctx, sess.BackendToken)
			if err != nil {
				return errors.Wrap(err, "listing courses")
			}
			for i := range courses {
				if courses[i].ID == f.CourseID {
					course = &courses[i].Name
					break
				}
			}
			return nil
		})
	}
	if f.FeedbackTypeID > 0 {
		g.Go(func() error {
			types, err := svc.gw.ListFeedbackTypes(gctx, sess.BackendToken)
			if err != nil {
				return errors.Wrap(err, "listing feedback types")
			}
			for i := range types {
				if types[i].ID == f.FeedbackTypeID {
					kind = &types[i].Title
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if (f.CourseID > 0 && course == nil) || (f.FeedbackTypeID > 0 && kind == nil) {
		return []DashboardRow{}, nil
	}

	return FilterDashboard(MapDashboard(raws), course, kind), nil
}

func (svc *Service) PerFaculty(ctx context.Context, sess session.Session, f PerFacultyFilter) ([]FacultyRating, error) {
	typeIDs, err := f.Validate()
	if err != nil {
		return nil, err
	}
	return svc.gw.PerFacultySummary(ctx, sess.BackendToken, core.CleanString(f.CourseType), f.CourseID, typeIDs)
}

// FacultyOptions returns the choices left for f, with its date range once any row matches.
func (svc *Service) FacultyOptions(ctx context.Context, sess session.Session, f FacultyFilter) (FilterOptions, error) {
	rows, err := svc.gw.DashboardRatings(ctx, sess.BackendToken)
	if err != nil {
		return FilterOptions{}, errors.Wrap(err, "fetching dashboard ratings")
	}
	return Options(rows, f), nil
}

// FacultySummary returns the feedback summary of the first feedback group matching the full filter chain.
func (svc *Service) FacultySummary(ctx context.Context, sess session.Session, f FacultyFilter) (FacultySummary, error) {
	if err := f.Check(); err != nil {
		return FacultySummary{}, err
	}

	rows, err := svc.gw.DashboardRatings(ctx, sess.BackendToken)
	if err != nil {
		return FacultySummary{}, errors.Wrap(err, "fetching dashboard ratings")
	}
	dates, ok := DateRange(rows, f)
	if !ok {
		return FacultySummary{}, fieldErr(ErrNoDateRange, "date")
	}
	row, _ := MatchRow(rows, f)

	res, err := svc.gw.FacultyFeedbackSummary(ctx, sess.BackendToken, SummaryRequest{
		StaffName:       f.Faculty,
		ModuleName:      f.Module,
		CourseName:      f.Course,
		TypeName:        f.Type,
		Date:            dates,
		FeedbackTypeID:  row.FeedbackTypeID,
		FeedbackID:      row.FeedbackID,
		FeedbackGroupID: row.FeedbackGroupID,
	})
	if err != nil {
		return FacultySummary{}, errors.Wrap(err, "fetching faculty feedback summary")
	}

	questions := make([]QuestionSummary, 0, len(res.Questions))
	for _, q := range res.Questions {
		if qt, err := feedbacktype.ParseQuestionType(q.QuestionType); err == nil && qt != feedbacktype.Descriptive {
			questions = append(questions, q)
		}
	}
	return FacultySummary{
		FacultyFilter: f,
		DateRange:     dates,
		Submitted:     res.Submitted,
		Remaining:     res.Remaining,
		Rating:        formatRating(res.Rating),
		Questions:     questions,
	}, nil
}

// StaffDashboard returns the averaged ratings of a staff member's scheduled feedback.
func (svc *Service) StaffDashboard(ctx context.Context, sess session.Session, staffID int) ([]StaffDashboardRow, error) {
	if err := schedule.CheckStaffAccess(sess, staffID); err != nil {
		return nil, err
	}
	scheds, err := svc.gw.ListStaffSchedules(ctx, sess.BackendToken, staffID)
	if err != nil {
		return nil, errors.Wrap(err, "listing staff schedules")
	}
	return AggregateStaff(scheds), nil
}
