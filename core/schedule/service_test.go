package schedule

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/academic"
	"github.com/trezcool/mrejesho/core/feedbacktype"
	"github.com/trezcool/mrejesho/core/session"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fakeGateway struct {
	mu sync.Mutex

	types   []feedbacktype.Summary
	courses []academic.Course
	modules map[int][]academic.Module
	groups  map[int][]academic.Group
	staff   []academic.Staff

	stored    Schedule
	items     []ListItem
	counts    map[int]Counts
	created   []Schedule
	updated   []Schedule
	staffRows []StaffSchedule
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		types: []feedbacktype.Summary{
			{ID: 1, Title: "Module Mid", Group: feedbacktype.Single},
			{ID: 2, Title: "Lab End", Group: feedbacktype.Multiple},
		},
		courses: []academic.Course{{ID: 10, Name: "DAC"}, {ID: 20, Name: "DBDA"}},
		modules: map[int][]academic.Module{
			10: {{ID: 100, Name: "Java", CourseID: 10}, {ID: 101, Name: "Web", CourseID: 10}},
			20: {{ID: 200, Name: "Python", CourseID: 20}},
		},
		groups: map[int][]academic.Group{
			10: {{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
			20: {{ID: 3, Name: "C"}},
		},
		staff:  []academic.Staff{{ID: 7, FirstName: "X"}, {ID: 8, FirstName: "Y"}},
		counts: map[int]Counts{},
	}
}

func (gw *fakeGateway) ListFeedbackTypes(context.Context, string) ([]feedbacktype.Summary, error) {
	return gw.types, nil
}

func (gw *fakeGateway) ListCourses(context.Context, string) ([]academic.Course, error) {
	return gw.courses, nil
}

func (gw *fakeGateway) ListModulesByCourse(_ context.Context, _ string, courseID int) ([]academic.Module, error) {
	return gw.modules[courseID], nil
}

func (gw *fakeGateway) ListGroupsByCourse(_ context.Context, _ string, courseID int) ([]academic.Group, error) {
	return gw.groups[courseID], nil
}

func (gw *fakeGateway) ListStaff(context.Context, string) ([]academic.Staff, error) {
	return gw.staff, nil
}

func (gw *fakeGateway) CreateSchedule(_ context.Context, _ string, s Schedule) error {
	gw.created = append(gw.created, s)
	return nil
}

func (gw *fakeGateway) UpdateSchedule(_ context.Context, _ string, _ int, s Schedule) error {
	gw.updated = append(gw.updated, s)
	return nil
}

func (gw *fakeGateway) GetSchedule(context.Context, string, int) (Schedule, error) {
	return gw.stored, nil
}

func (gw *fakeGateway) ListSchedules(_ context.Context, _ string, _, _ int) ([]ListItem, int, error) {
	return gw.items, 12, nil
}

func (gw *fakeGateway) DeleteFeedbackGroup(context.Context, string, int) error {
	return nil
}

func (gw *fakeGateway) SubmissionCounts(_ context.Context, _ string, feedbackGroupID int) (Counts, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	c, ok := gw.counts[feedbackGroupID]
	if !ok {
		return Counts{}, errors.New("boom")
	}
	return c, nil
}

func (gw *fakeGateway) ListStaffSchedules(context.Context, string, int) ([]StaffSchedule, error) {
	return gw.staffRows, nil
}

func newTestService(gw *fakeGateway) *Service {
	validate, translator := core.NewValidator()
	feedbacktype.InitValidators(validate, translator)
	return NewService(gw, validate, nopLogger{})
}

func decodeDraft(t *testing.T, s string) Draft {
	var d Draft
	require.NoError(t, json.Unmarshal([]byte(s), &d))
	return d
}

func loadCatalog(t *testing.T, gw *fakeGateway, courseID int) *Catalog {
	cat, err := LoadCatalog(context.Background(), gw, "tok", courseID)
	require.NoError(t, err)
	return cat
}

func TestValidate(t *testing.T) {
	gw := newFakeGateway()
	cat := loadCatalog(t, gw, 10)
	validate, _ := core.NewValidator()

	tests := []struct {
		name    string
		draft   string
		wantErr error
		check   func(t *testing.T, s Schedule)
	}{
		{
			name:    "start after end",
			draft:   `{"startDate":"2024-02-01","endDate":"2024-01-31","feedbackTypeId":"1","courseId":"10","moduleId":"100","staffId":"7"}`,
			wantErr: ErrDateOrder,
		},
		{
			name:  "single mode drops group rows",
			draft: `{"startDate":"2024-01-01","endDate":"2024-01-01","feedbackTypeId":"1","courseId":"10","moduleId":"100","staffId":"7","session":2,"feedbackGroups":[{"groupId":1,"staffId":8}]}`,
			check: func(t *testing.T, s Schedule) {
				require.NotNil(t, s.StaffID)
				assert.Equal(t, 7, *s.StaffID)
				assert.Empty(t, s.FeedbackGroups)
				assert.Equal(t, 2, s.Session)
			},
		},
		{
			name:    "single mode without staff",
			draft:   `{"startDate":"2024-01-01","endDate":"2024-01-02","feedbackTypeId":1,"courseId":10,"moduleId":100,"staffId":""}`,
			wantErr: ErrNoStaff,
		},
		{
			name:  "multiple mode",
			draft: `{"startDate":"2024-01-01","endDate":"2024-01-02","feedbackTypeId":2,"courseId":10,"moduleId":101,"staffId":"7","feedbackGroups":[{"groupId":1,"staffId":"7"},{"groupId":2,"staffId":"8"}]}`,
			check: func(t *testing.T, s Schedule) {
				assert.Nil(t, s.StaffID)
				assert.Equal(t, []FeedbackGroup{{GroupID: 1, StaffID: 7}, {GroupID: 2, StaffID: 8}}, s.FeedbackGroups)
			},
		},
		{
			name:    "multiple mode with empty staff",
			draft:   `{"startDate":"2024-01-01","endDate":"2024-01-02","feedbackTypeId":2,"courseId":10,"moduleId":101,"feedbackGroups":[{"groupId":1,"staffId":"7"},{"groupId":2,"staffId":""}]}`,
			wantErr: ErrMissingStaff,
		},
		{
			name:    "multiple mode with duplicate staff",
			draft:   `{"startDate":"2024-01-01","endDate":"2024-01-02","feedbackTypeId":2,"courseId":10,"moduleId":101,"feedbackGroups":[{"groupId":1,"staffId":"7"},{"groupId":2,"staffId":"7"}]}`,
			wantErr: ErrDuplicateStaff,
		},
		{
			name:    "multiple mode missing a course group",
			draft:   `{"startDate":"2024-01-01","endDate":"2024-01-02","feedbackTypeId":2,"courseId":10,"moduleId":101,"feedbackGroups":[{"groupId":1,"staffId":"7"}]}`,
			wantErr: ErrGroupMismatch,
		},
		{
			name:    "module of another course",
			draft:   `{"startDate":"2024-01-01","endDate":"2024-01-02","feedbackTypeId":1,"courseId":10,"moduleId":200,"staffId":7}`,
			wantErr: errUnknownReference,
		},
		{
			name:    "unknown feedback type",
			draft:   `{"startDate":"2024-01-01","endDate":"2024-01-02","feedbackTypeId":9,"courseId":10,"moduleId":100,"staffId":7}`,
			wantErr: errUnknownReference,
		},
		{
			name:    "unknown staff",
			draft:   `{"startDate":"2024-01-01","endDate":"2024-01-02","feedbackTypeId":1,"courseId":10,"moduleId":100,"staffId":99}`,
			wantErr: errUnknownReference,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Validate(validate, decodeDraft(t, tt.draft), cat, "")
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, core.IsValidationError(err), "got %v", err)
				vErr := errors.Cause(err).(*core.ValidationError)
				assert.Equal(t, tt.wantErr, errors.Cause(vErr.Err))
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestValidate_Format(t *testing.T) {
	validate, _ := core.NewValidator()
	cat := loadCatalog(t, newFakeGateway(), 10)

	_, err := Validate(validate, Draft{StartDate: "01-01-2024", EndDate: "2024-01-02"}, cat, "")
	assert.Error(t, err)
	_, err = Validate(validate, Draft{StartDate: "2024-01-01", EndDate: "2024-01-02", Session: -1}, cat, "")
	assert.Error(t, err)
}

func TestDraft_ChangeCourse(t *testing.T) {
	gw := newFakeGateway()
	d := decodeDraft(t, `{"courseId":10,"moduleId":100,"feedbackGroups":[{"groupId":1,"staffId":7}]}`)
	cat := loadCatalog(t, gw, 10)

	d.ChangeCourse(10)
	assert.Equal(t, core.FormID(100), d.ModuleID)

	d.ChangeCourse(20)
	require.NoError(t, cat.SelectCourse(context.Background(), gw, "tok", 20))
	assert.Equal(t, core.FormID(0), d.ModuleID)
	assert.Empty(t, d.Groups)
	assert.Equal(t, gw.modules[20], cat.Modules)
	assert.Equal(t, gw.groups[20], cat.Groups)
}

func TestService_Create(t *testing.T) {
	gw := newFakeGateway()
	svc := newTestService(gw)

	d := decodeDraft(t, `{"startDate":"2024-01-01","endDate":"2024-01-02","feedbackTypeId":"2","courseId":"10","moduleId":"101","feedbackGroups":[{"groupId":1,"staffId":"7"},{"groupId":2,"staffId":"8"}]}`)
	s, err := svc.Create(context.Background(), session.Session{}, d)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, s.Status)
	require.Len(t, gw.created, 1)
	assert.Nil(t, gw.created[0].StaffID)

	d.StartDate = "2024-01-03"
	_, err = svc.Create(context.Background(), session.Session{}, d)
	assert.True(t, core.IsValidationError(err))
	assert.Len(t, gw.created, 1)
}

func TestService_Update(t *testing.T) {
	gw := newFakeGateway()
	svc := newTestService(gw)
	svc.nowFunc = func() time.Time { return time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC) }
	staffID := 7
	gw.stored = Schedule{
		FeedbackID: 5, FeedbackTypeID: 1, CourseID: 10, ModuleID: 100, StaffID: &staffID,
		StartDate: "2024-01-11T00:00:00", EndDate: "2024-01-20T00:00:00", Status: StatusActive,
		FeedbackGroups: []FeedbackGroup{{FeedbackGroupID: 50, GroupID: 1, StaffID: 7}},
	}

	d := DraftOf(gw.stored)
	assert.Equal(t, "2024-01-11", d.StartDate)
	d.StaffID = 8
	s, err := svc.Update(context.Background(), session.Session{}, 5, d)
	require.NoError(t, err)
	assert.Equal(t, 5, s.FeedbackID)
	require.NotNil(t, s.StaffID)
	assert.Equal(t, 8, *s.StaffID)
	assert.Empty(t, s.FeedbackGroups)
	assert.Len(t, gw.updated, 1)

	t.Run("started today", func(t *testing.T) {
		gw.stored.StartDate = "2024-01-10"
		_, err := svc.Update(context.Background(), session.Session{}, 5, d)
		assert.Equal(t, ErrNotEditable, err)
		assert.Len(t, gw.updated, 1)
	})
}

func TestService_UpdateDetectsMultipleMode(t *testing.T) {
	gw := newFakeGateway()
	svc := newTestService(gw)
	svc.nowFunc = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	gw.stored = Schedule{
		FeedbackID: 6, FeedbackTypeID: 1, CourseID: 10, ModuleID: 100,
		StartDate: "2024-02-01", EndDate: "2024-02-10",
		FeedbackGroups: []FeedbackGroup{{FeedbackGroupID: 60, GroupID: 1, StaffID: 7}, {FeedbackGroupID: 61, GroupID: 2, StaffID: 8}},
	}

	s, err := svc.Update(context.Background(), session.Session{}, 6, DraftOf(gw.stored))
	require.NoError(t, err)
	assert.Nil(t, s.StaffID)
	assert.Equal(t, gw.stored.FeedbackGroups, s.FeedbackGroups)
}

func TestService_ListPaged(t *testing.T) {
	gw := newFakeGateway()
	gw.items = []ListItem{{FeedbackGroupID: 1}, {FeedbackGroupID: 2}, {FeedbackGroupID: 3}}
	gw.counts[1] = Counts{Submitted: 3, Remaining: 2}
	gw.counts[3] = Counts{Submitted: 1}
	svc := newTestService(gw)

	page, err := svc.ListPaged(context.Background(), session.Session{}, core.PageRequest{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 12, page.TotalCount)
	assert.Equal(t, core.DefaultPageSize, page.PageSize)
	assert.Equal(t, 3, page.TotalPages)

	items := page.Data.([]ListItem)
	assert.Equal(t, Counts{Submitted: 3, Remaining: 2}, items[0].Counts)
	assert.Equal(t, Counts{}, items[1].Counts)
	assert.Equal(t, Counts{Submitted: 1}, items[2].Counts)
}

func TestCheckStaffAccess(t *testing.T) {
	admin := session.Session{Profile: session.Profile{ID: "1", Role: session.RoleAdmin}}
	staff := session.Session{Profile: session.Profile{ID: "7", Role: session.RoleStaff}}
	student := session.Session{Profile: session.Profile{ID: "7", Role: session.RoleStudent}}

	assert.NoError(t, CheckStaffAccess(admin, 7))
	assert.NoError(t, CheckStaffAccess(staff, 7))
	assert.Equal(t, core.ErrForbidden, CheckStaffAccess(staff, 8))
	assert.Equal(t, core.ErrForbidden, CheckStaffAccess(student, 7))
}
