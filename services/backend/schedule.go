package backendapi

import (
	"context"
	"strconv"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mrejesho/core/schedule"
)

var _ schedule.Gateway = (*Client)(nil)

type feedbackGroupDTO struct {
	FeedbackGroupID int      `json:"feedbackGroupId"`
	GroupID         null.Int `json:"groupId"`
	StaffID         null.Int `json:"staffId"`
}

type scheduleDTO struct {
	FeedbackID     int                `json:"feedbackId"`
	FeedbackTypeID int                `json:"feedbackTypeId" validate:"required"`
	CourseID       int                `json:"courseId" validate:"required"`
	ModuleID       int                `json:"moduleId"`
	StaffID        null.Int           `json:"staffId"`
	Session        null.Int           `json:"session"`
	StartDate      string             `json:"startDate" validate:"required"`
	EndDate        string             `json:"endDate" validate:"required"`
	Status         null.String        `json:"status"`
	FeedbackGroups []feedbackGroupDTO `json:"feedbackGroups"`
}

func (dto scheduleDTO) schedule() schedule.Schedule {
	s := schedule.Schedule{
		FeedbackID:     dto.FeedbackID,
		FeedbackTypeID: dto.FeedbackTypeID,
		CourseID:       dto.CourseID,
		ModuleID:       dto.ModuleID,
		Session:        dto.Session.Int,
		StartDate:      dto.StartDate,
		EndDate:        dto.EndDate,
		Status:         dto.Status.String,
		FeedbackGroups: make([]schedule.FeedbackGroup, 0, len(dto.FeedbackGroups)),
	}
	if dto.StaffID.Valid {
		staffID := dto.StaffID.Int
		s.StaffID = &staffID
	}
	for _, fg := range dto.FeedbackGroups {
		s.FeedbackGroups = append(s.FeedbackGroups, schedule.FeedbackGroup{
			FeedbackGroupID: fg.FeedbackGroupID,
			GroupID:         fg.GroupID.Int,
			StaffID:         fg.StaffID.Int,
		})
	}
	// single mode schedules may carry their staff on their only group row
	if s.StaffID == nil && len(s.FeedbackGroups) == 1 && s.FeedbackGroups[0].StaffID > 0 {
		staffID := s.FeedbackGroups[0].StaffID
		s.StaffID = &staffID
	}
	return s
}

type listItemDTO struct {
	FeedbackID       int         `json:"feedbackId" validate:"required"`
	FeedbackGroupID  int         `json:"feedbackGroupId" validate:"required"`
	CourseName       string      `json:"courseName"`
	ModuleName       null.String `json:"moduleName"`
	FeedbackTypeName string      `json:"feedbackTypeName"`
	StaffName        null.String `json:"staffName"`
	GroupName        null.String `json:"groupName"`
	Session          null.Int    `json:"session"`
	StartDate        string      `json:"startDate"`
	EndDate          string      `json:"endDate"`
	Status           null.String `json:"status"`
}

type countsDTO struct {
	Submitted int `json:"submittedCount" validate:"gte=0"`
	Remaining int `json:"remainingCount" validate:"gte=0"`
}

type staffScheduleDTO struct {
	FeedbackTypeID   int          `json:"feedback_type_id" validate:"required"`
	FeedbackTypeName string       `json:"feedbackTypeName"`
	CourseName       string       `json:"courseName"`
	ModuleName       string       `json:"moduleName"`
	Session          null.Int     `json:"session"`
	StartDate        null.String  `json:"startDate"`
	Rating           null.Float64 `json:"rating"`
}

func (cl *Client) CreateSchedule(ctx context.Context, token string, s schedule.Schedule) error {
	s.FeedbackID = 0
	return cl.do(ctx, post("Feedback/Schedule", "Feedback/Schedule", s).auth(token), nil)
}

func (cl *Client) UpdateSchedule(ctx context.Context, token string, feedbackID int, s schedule.Schedule) error {
	s.FeedbackID = feedbackID
	return cl.do(ctx, put("Feedback/Update/{id}", pathf("Feedback", "Update", feedbackID), s).auth(token), nil)
}

func (cl *Client) GetSchedule(ctx context.Context, token string, feedbackID int) (schedule.Schedule, error) {
	var dto scheduleDTO
	c := get("Feedback/GetByFeedback/{id}", pathf("Feedback", "GetByFeedback", feedbackID)).auth(token)
	if err := cl.do(ctx, c, &dto); err != nil {
		return schedule.Schedule{}, err
	}
	s := dto.schedule()
	if s.FeedbackID == 0 {
		s.FeedbackID = feedbackID
	}
	return s, nil
}

// ListSchedules lists a page of feedback groups. page is 1-based.
func (cl *Client) ListSchedules(ctx context.Context, token string, page, pageSize int) ([]schedule.ListItem, int, error) {
	const endpoint = "Feedback/GetFeedbackPaged"

	var body pageBody
	c := get(endpoint, endpoint).auth(token).params("pageNumber", strconv.Itoa(page), "pageSize", strconv.Itoa(pageSize))
	if err := cl.do(ctx, c, &body); err != nil {
		return nil, 0, err
	}
	var dtos []listItemDTO
	if err := decodePage(endpoint, body, &dtos); err != nil {
		return nil, 0, err
	}
	items := make([]schedule.ListItem, 0, len(dtos))
	for _, dto := range dtos {
		items = append(items, schedule.ListItem{
			FeedbackID:       dto.FeedbackID,
			FeedbackGroupID:  dto.FeedbackGroupID,
			CourseName:       dto.CourseName,
			ModuleName:       dto.ModuleName.String,
			FeedbackTypeName: dto.FeedbackTypeName,
			StaffName:        dto.StaffName.String,
			GroupName:        dto.GroupName.String,
			Session:          dto.Session.Int,
			StartDate:        dto.StartDate,
			EndDate:          dto.EndDate,
			Status:           dto.Status.String,
		})
	}
	return items, body.TotalCount, nil
}

func (cl *Client) DeleteFeedbackGroup(ctx context.Context, token string, feedbackGroupID int) error {
	c := del("Feedback/DeleteFeedbackGroup/{id}", pathf("Feedback", "DeleteFeedbackGroup", feedbackGroupID))
	return cl.do(ctx, c.auth(token), nil)
}

func (cl *Client) SubmissionCounts(ctx context.Context, token string, feedbackGroupID int) (schedule.Counts, error) {
	var dto countsDTO
	c := get("StudentApi/FeedbackSubmit/{id}", pathf("StudentApi", "FeedbackSubmit", feedbackGroupID)).auth(token)
	if err := cl.do(ctx, c, &dto); err != nil {
		return schedule.Counts{}, err
	}
	return schedule.Counts{Submitted: dto.Submitted, Remaining: dto.Remaining}, nil
}

// ListStaffSchedules lists the feedback scheduled for a staff member. Unrated rows have a 0 rating.
func (cl *Client) ListStaffSchedules(ctx context.Context, token string, staffID int) ([]schedule.StaffSchedule, error) {
	var dtos []staffScheduleDTO
	c := get("staff/{id}/scheduledFeedback", pathf("staff", staffID, "scheduledFeedback")).auth(token)
	if err := cl.do(ctx, c, &dtos); err != nil {
		return nil, err
	}
	scheds := make([]schedule.StaffSchedule, 0, len(dtos))
	for _, dto := range dtos {
		scheds = append(scheds, schedule.StaffSchedule{
			FeedbackTypeID:   dto.FeedbackTypeID,
			FeedbackTypeName: dto.FeedbackTypeName,
			CourseName:       dto.CourseName,
			ModuleName:       dto.ModuleName,
			Session:          dto.Session.Int,
			StartDate:        dto.StartDate.String,
			Rating:           dto.Rating.Float64,
		})
	}
	return scheds, nil
}
