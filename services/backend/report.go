package backendapi

import (
	"context"
	"strconv"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mrejesho/core/report"
)

var _ report.Gateway = (*Client)(nil)

type typeRatingDTO struct {
	FeedbackTypeTitle string       `json:"feedbackTypeTitle" validate:"required"`
	AverageRating     null.Float64 `json:"averageRating"`
}

type courseWiseModuleDTO struct {
	ModuleName    string          `json:"moduleName" validate:"required"`
	FeedbackTypes []typeRatingDTO `json:"feedbackTypes" validate:"dive"`
}

type courseWiseDTO struct {
	CourseName string                `json:"courseName" validate:"required"`
	Modules    []courseWiseModuleDTO `json:"modules" validate:"dive"`
}

type courseFeedbackDTO struct {
	Date             string       `json:"date"`
	CourseName       string       `json:"courseName"`
	FeedbackTypeName string       `json:"feedbackTypeName"`
	Groups           null.String  `json:"groups"`
	Sessions         null.Int     `json:"sessions"`
	Rating           null.Float64 `json:"rating"`
}

type facultyRatingDTO struct {
	StaffName     string       `json:"staffName" validate:"required"`
	AverageRating null.Float64 `json:"averageRating"`
}

type questionSummaryDTO struct {
	QuestionText string   `json:"questionText"`
	QuestionType string   `json:"questionType"`
	Excellent    null.Int `json:"excellent"`
	Good         null.Int `json:"good"`
	Average      null.Int `json:"average"`
	Poor         null.Int `json:"poor"`
}

type summaryDTO struct {
	Submitted null.Int             `json:"submitted"`
	Remaining null.Int             `json:"remaining"`
	Rating    null.Float64         `json:"rating"`
	Questions []questionSummaryDTO `json:"questions"`
}

func (cl *Client) CourseWiseReport(ctx context.Context, token string) ([]report.CourseWiseCourse, error) {
	var dtos []courseWiseDTO
	c := get("Feedback/CourseWiseReportWithRating", "Feedback/CourseWiseReportWithRating").auth(token)
	if err := cl.do(ctx, c, &dtos); err != nil {
		return nil, err
	}
	courses := make([]report.CourseWiseCourse, 0, len(dtos))
	for _, dto := range dtos {
		course := report.CourseWiseCourse{CourseName: dto.CourseName, Modules: make([]report.CourseWiseModule, 0, len(dto.Modules))}
		for _, m := range dto.Modules {
			mod := report.CourseWiseModule{ModuleName: m.ModuleName, FeedbackTypes: make([]report.TypeRating, 0, len(m.FeedbackTypes))}
			for _, tr := range m.FeedbackTypes {
				mod.FeedbackTypes = append(mod.FeedbackTypes, report.TypeRating{
					FeedbackTypeTitle: tr.FeedbackTypeTitle,
					AverageRating:     tr.AverageRating.Float64,
				})
			}
			course.Modules = append(course.Modules, mod)
		}
		courses = append(courses, course)
	}
	return courses, nil
}

func (cl *Client) CourseFeedbackReport(ctx context.Context, token string) ([]report.DashboardRaw, error) {
	var dtos []courseFeedbackDTO
	c := get("FeedbackReport/course-feedback-report", "FeedbackReport/course-feedback-report").auth(token)
	if err := cl.do(ctx, c, &dtos); err != nil {
		return nil, err
	}
	rows := make([]report.DashboardRaw, 0, len(dtos))
	for _, dto := range dtos {
		rows = append(rows, report.DashboardRaw{
			Date:             dto.Date,
			CourseName:       dto.CourseName,
			FeedbackTypeName: dto.FeedbackTypeName,
			Groups:           dto.Groups.String,
			Sessions:         dto.Sessions.Int,
			Rating:           dto.Rating.Float64,
		})
	}
	return rows, nil
}

func (cl *Client) PerFacultySummary(ctx context.Context, token, courseType string, courseID int, feedbackTypeIDs string) ([]report.FacultyRating, error) {
	const endpoint = "FeedbackReport/PerFacultyFeedbackSummary"

	var dtos []facultyRatingDTO
	c := get(endpoint, endpoint).auth(token).params(
		"courseType", courseType,
		"courseId", strconv.Itoa(courseID),
		"feedbackTypeIds", feedbackTypeIDs,
	)
	if err := cl.do(ctx, c, &dtos); err != nil {
		return nil, err
	}
	rows := make([]report.FacultyRating, 0, len(dtos))
	for _, dto := range dtos {
		rows = append(rows, report.FacultyRating{StaffName: dto.StaffName, AverageRating: dto.AverageRating.Float64})
	}
	return rows, nil
}

func (cl *Client) DashboardRatings(ctx context.Context, token string) ([]report.RatingRow, error) {
	var rows []report.RatingRow
	c := get("Feedback/FeedbackDashboard-Rating", "Feedback/FeedbackDashboard-Rating").auth(token)
	if err := cl.do(ctx, c, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (cl *Client) FacultyFeedbackSummary(ctx context.Context, token string, req report.SummaryRequest) (report.SummaryResult, error) {
	var dto summaryDTO
	c := post("FeedbackReport/FacultyFeedbackSummary", "FeedbackReport/FacultyFeedbackSummary", req).auth(token)
	if err := cl.do(ctx, c, &dto); err != nil {
		return report.SummaryResult{}, err
	}
	res := report.SummaryResult{
		Submitted: dto.Submitted.Int,
		Remaining: dto.Remaining.Int,
		Rating:    dto.Rating.Float64,
		Questions: make([]report.QuestionSummary, 0, len(dto.Questions)),
	}
	for _, q := range dto.Questions {
		res.Questions = append(res.Questions, report.QuestionSummary{
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			Excellent:    q.Excellent.Int,
			Good:         q.Good.Int,
			Average:      q.Average.Int,
			Poor:         q.Poor.Int,
		})
	}
	return res, nil
}
