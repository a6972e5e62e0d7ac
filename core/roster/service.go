package roster

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/schedule"
	"github.com/trezcool/mrejesho/core/session"
)

const (
	reminderTemplate = "feedback_reminder"
	lookupPageSize   = 20
)

type (
	// Gateway is the part of the feedback backend serving rosters.
	Gateway interface {
		ListSubmitted(ctx context.Context, token string, feedbackGroupID int) ([]Student, error)
		ListNotSubmitted(ctx context.Context, token string, feedbackGroupID int) ([]Student, error)
		SubmissionCounts(ctx context.Context, token string, feedbackGroupID int) (schedule.Counts, error)
		ListSchedules(ctx context.Context, token string, page, pageSize int) ([]schedule.ListItem, int, error)
	}

	Service struct {
		gw      Gateway
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(gw Gateway, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{gw: gw, mailSvc: mailSvc, logger: logger}
}

// Partition fetches both sides of the roster of a feedback group, and reconciles them with its counts.
// A list that cannot be fetched is left empty and reported in Partition.Errors. Failing to fetch the
// counts only skips reconciliation.
func (svc *Service) Partition(ctx context.Context, sess session.Session, feedbackGroupID int) (Partition, error) {
	p := Partition{FeedbackGroupID: feedbackGroupID}
	var submittedErr, notSubmittedErr, countsErr error
	var counts schedule.Counts

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.Submitted, submittedErr = svc.gw.ListSubmitted(gctx, sess.BackendToken, feedbackGroupID)
		return nil
	})
	g.Go(func() error {
		p.NotSubmitted, notSubmittedErr = svc.gw.ListNotSubmitted(gctx, sess.BackendToken, feedbackGroupID)
		return nil
	})
	g.Go(func() error {
		counts, countsErr = svc.gw.SubmissionCounts(gctx, sess.BackendToken, feedbackGroupID)
		return nil
	})
	_ = g.Wait()

	extras := map[string]interface{}{"feedbackGroupId": feedbackGroupID}
	if submittedErr != nil {
		svc.logger.Warn("fetching submitted students", submittedErr, extras, sess.Profile)
		p.Submitted = nil
		p.Errors = append(p.Errors, "Failed to load submitted students.")
	}
	if notSubmittedErr != nil {
		svc.logger.Warn("fetching remaining students", notSubmittedErr, extras, sess.Profile)
		p.NotSubmitted = nil
		p.Errors = append(p.Errors, "Failed to load remaining students.")
	}
	if countsErr != nil {
		svc.logger.Warn("fetching submission counts", countsErr, extras, sess.Profile)
		counts = schedule.Counts{}
		p.Errors = append(p.Errors, "Failed to load submission counts.")
	}
	if p.Submitted == nil {
		p.Submitted = []Student{}
	}
	if p.NotSubmitted == nil {
		p.NotSubmitted = []Student{}
	}

	p.SubmittedCount, p.RemainingCount = len(p.Submitted), len(p.NotSubmitted)
	p.RosterSize = counts.Total()
	if len(p.Errors) == 0 {
		if err := Reconcile(p, p.RosterSize); err != nil {
			svc.logger.Warn("roster mismatch", err, extras, sess.Profile)
			p.Mismatch = err.Error()
		}
	}
	return p, nil
}

func (svc *Service) Counts(ctx context.Context, sess session.Session, feedbackGroupID int) (schedule.Counts, error) {
	return svc.gw.SubmissionCounts(ctx, sess.BackendToken, feedbackGroupID)
}

// Students pages one side of the roster.
func (svc *Service) Students(ctx context.Context, sess session.Session, feedbackGroupID int, submitted bool, req core.PageRequest) (core.Page, error) {
	req.Clean()
	var students []Student
	var err error
	if submitted {
		students, err = svc.gw.ListSubmitted(ctx, sess.BackendToken, feedbackGroupID)
	} else {
		students, err = svc.gw.ListNotSubmitted(ctx, sess.BackendToken, feedbackGroupID)
	}
	if err != nil {
		return core.Page{}, err
	}
	start, end := core.PageBounds(len(students), req)
	return core.NewPage(students[start:end], len(students), req), nil
}

// Remind emails every student of the feedback group who has not submitted yet. It returns the number of reminders sent.
func (svc *Service) Remind(ctx context.Context, sess session.Session, feedbackGroupID int) (int, error) {
	item, err := svc.findItem(ctx, sess, feedbackGroupID)
	if err != nil {
		return 0, err
	}
	students, err := svc.gw.ListNotSubmitted(ctx, sess.BackendToken, feedbackGroupID)
	if err != nil {
		return 0, errors.Wrap(err, "listing remaining students")
	}

	messages := make([]*core.EmailMessage, 0, len(students))
	for _, st := range students {
		if st.Email == "" {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: st.FullName(), Address: st.Email}},
			Subject:      "Pending feedback: " + item.FeedbackTypeName,
			TemplateName: reminderTemplate,
			TemplateData: newReminderData(st, item),
		})
	}
	if len(messages) > 0 {
		svc.mailSvc.SendMessages(messages...)
	}
	svc.logger.Info("feedback reminders sent", map[string]interface{}{"feedbackGroupId": feedbackGroupID, "count": len(messages)}, sess.Profile)
	return len(messages), nil
}

// findItem looks the feedback group up in the schedule list.
func (svc *Service) findItem(ctx context.Context, sess session.Session, feedbackGroupID int) (schedule.ListItem, error) {
	for page := 1; ; page++ {
		items, total, err := svc.gw.ListSchedules(ctx, sess.BackendToken, page, lookupPageSize)
		if err != nil {
			return schedule.ListItem{}, errors.Wrap(err, "listing schedules")
		}
		for _, item := range items {
			if item.FeedbackGroupID == feedbackGroupID {
				return item, nil
			}
		}
		if len(items) == 0 || page*lookupPageSize >= total {
			return schedule.ListItem{}, errors.Wrapf(core.ErrNotFound, "feedback group %d", feedbackGroupID)
		}
	}
}
