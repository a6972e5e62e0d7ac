package schedule

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/feedbacktype"
	"github.com/trezcool/mrejesho/core/session"
)

// maxConcurrentCounts bounds the count requests issued for one list page.
const maxConcurrentCounts = 4

var (
	// errors
	ErrNotEditable = errors.New("You cannot update feedback after start date.")
)

type (
	// Gateway is the part of the feedback backend serving schedules.
	Gateway interface {
		ReferenceData

		CreateSchedule(ctx context.Context, token string, s Schedule) error
		UpdateSchedule(ctx context.Context, token string, feedbackID int, s Schedule) error
		GetSchedule(ctx context.Context, token string, feedbackID int) (Schedule, error)
		ListSchedules(ctx context.Context, token string, page, pageSize int) ([]ListItem, int, error)
		DeleteFeedbackGroup(ctx context.Context, token string, feedbackGroupID int) error
		SubmissionCounts(ctx context.Context, token string, feedbackGroupID int) (Counts, error)
		ListStaffSchedules(ctx context.Context, token string, staffID int) ([]StaffSchedule, error)
	}

	Service struct {
		gw       Gateway
		validate *validator.Validate
		logger   core.Logger
		nowFunc  func() time.Time
	}
)

func NewService(gw Gateway, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		gw:       gw,
		validate: validate,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// Check validates the draft against live reference data, without saving it.
func (svc *Service) Check(ctx context.Context, sess session.Session, d Draft) (Schedule, error) {
	cat, err := LoadCatalog(ctx, svc.gw, sess.BackendToken, int(d.CourseID))
	if err != nil {
		return Schedule{}, errors.Wrap(err, "loading catalog")
	}
	return Validate(svc.validate, d, cat, "")
}

func (svc *Service) Create(ctx context.Context, sess session.Session, d Draft) (Schedule, error) {
	sched, err := svc.Check(ctx, sess, d)
	if err != nil {
		return Schedule{}, err
	}
	sched.Status = StatusActive
	if err = svc.gw.CreateSchedule(ctx, sess.BackendToken, sched); err != nil {
		return Schedule{}, err
	}
	return sched, nil
}

// Update replaces a schedule that has not started yet.
// The group mode is the stored one: more than one group row means multiple.
func (svc *Service) Update(ctx context.Context, sess session.Session, feedbackID int, d Draft) (Schedule, error) {
	stored, err := svc.gw.GetSchedule(ctx, sess.BackendToken, feedbackID)
	if err != nil {
		return Schedule{}, errors.Wrap(err, "getting stored schedule")
	}
	if err = svc.checkEditable(stored); err != nil {
		return Schedule{}, err
	}

	mode := feedbacktype.Single
	if len(stored.FeedbackGroups) > 1 {
		mode = feedbacktype.Multiple
	}

	cat, err := LoadCatalog(ctx, svc.gw, sess.BackendToken, int(d.CourseID))
	if err != nil {
		return Schedule{}, errors.Wrap(err, "loading catalog")
	}
	sched, err := Validate(svc.validate, d, cat, mode)
	if err != nil {
		return Schedule{}, err
	}
	sched.FeedbackID = feedbackID
	sched.Status = stored.Status

	if err = svc.gw.UpdateSchedule(ctx, sess.BackendToken, feedbackID, sched); err != nil {
		return Schedule{}, err
	}
	return sched, nil
}

func (svc *Service) checkEditable(stored Schedule) error {
	start, err := core.ParseDate(stored.StartDate)
	if err != nil {
		return errors.Wrapf(err, "schedule %d start date", stored.FeedbackID)
	}
	if !start.After(core.Today(svc.nowFunc())) {
		return ErrNotEditable
	}
	return nil
}

func (svc *Service) Get(ctx context.Context, sess session.Session, feedbackID int) (Schedule, error) {
	return svc.gw.GetSchedule(ctx, sess.BackendToken, feedbackID)
}

func (svc *Service) Delete(ctx context.Context, sess session.Session, feedbackGroupID int) error {
	return svc.gw.DeleteFeedbackGroup(ctx, sess.BackendToken, feedbackGroupID)
}

// ListPaged lists a page of schedule rows, each with its submission counts.
// A row whose counts cannot be fetched shows 0/0.
func (svc *Service) ListPaged(ctx context.Context, sess session.Session, req core.PageRequest) (core.Page, error) {
	req.Clean()
	items, total, err := svc.gw.ListSchedules(ctx, sess.BackendToken, req.Page, req.PageSize)
	if err != nil {
		return core.Page{}, err
	}

	sem := make(chan struct{}, maxConcurrentCounts)
	g, gctx := errgroup.WithContext(ctx)
	for i := range items {
		item := &items[i]
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			counts, err := svc.gw.SubmissionCounts(gctx, sess.BackendToken, item.FeedbackGroupID)
			if err != nil {
				svc.logger.Warn("fetching submission counts", err, map[string]interface{}{"feedbackGroupId": item.FeedbackGroupID}, sess.Profile)
				counts = Counts{}
			}
			item.Counts = counts
			return nil
		})
	}
	_ = g.Wait()

	if items == nil {
		items = []ListItem{}
	}
	return core.NewPage(items, total, req), nil
}

// ListForStaff lists the feedback scheduled for staffID. Staff members can only list their own.
func (svc *Service) ListForStaff(ctx context.Context, sess session.Session, staffID int) ([]StaffSchedule, error) {
	if err := CheckStaffAccess(sess, staffID); err != nil {
		return nil, err
	}
	return svc.gw.ListStaffSchedules(ctx, sess.BackendToken, staffID)
}

// CheckStaffAccess allows admins, and staff members acting on their own ID.
func CheckStaffAccess(sess session.Session, staffID int) error {
	if sess.IsAdmin() {
		return nil
	}
	if sess.IsStaff() && sess.Profile.ID == itoa(staffID) {
		return nil
	}
	return core.ErrForbidden
}
