package submission

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/feedbacktype"
	"github.com/trezcool/mrejesho/core/session"
)

const (
	lookupPageSize = 20
	// claims older than this are considered abandoned
	claimTimeout = 5 * time.Minute

	noPendingMessage = "No pending feedback schedules found"
	noHistoryMessage = "No submitted feedback found"
)

var (
	// errors
	ErrAlreadySubmitted = errors.New("feedback already submitted")
)

type (
	ReceiptRepository interface {
		// ClaimReceipt records a claimed receipt. It fails with ErrAlreadySubmitted when a receipt
		// exists for the same feedback, group and student, unless it is a claim older than staleBefore.
		ClaimReceipt(ctx context.Context, r Receipt, staleBefore time.Time) (Receipt, error)
		ConfirmReceipt(ctx context.Context, id int, at time.Time) error
		ReleaseReceipt(ctx context.Context, id int) error
	}

	// Gateway is the part of the feedback backend serving students.
	Gateway interface {
		ListPending(ctx context.Context, token, studentID string, page, pageSize int) ([]Scheduled, int, error)
		ListHistory(ctx context.Context, token, studentID string, page, pageSize int) ([]Scheduled, int, error)
		ListQuestions(ctx context.Context, token string, feedbackTypeID int) ([]feedbacktype.Question, error)
		SubmitAnswers(ctx context.Context, token string, s Submission) error
		ViewSubmission(ctx context.Context, token string, feedbackGroupID int, studentID string) ([]SubmittedAnswer, error)
	}

	Service struct {
		repo    ReceiptRepository
		gw      Gateway
		logger  core.Logger
		nowFunc func() time.Time
	}
)

func NewService(repo ReceiptRepository, gw Gateway, logger core.Logger) *Service {
	return &Service{repo: repo, gw: gw, logger: logger, nowFunc: time.Now}
}

func checkStudent(sess session.Session) error {
	if !sess.IsStudent() || sess.Profile.ID == "" {
		return core.ErrForbidden
	}
	return nil
}

// Submit posts the answers of the session's student. A feedback can only be submitted once.
func (svc *Service) Submit(ctx context.Context, sess session.Session, ns NewSubmission) (Submission, error) {
	if err := checkStudent(sess); err != nil {
		return Submission{}, err
	}
	studentID := sess.Profile.ID

	item, err := svc.findScheduled(ctx, sess, ns.FeedbackGroupID, svc.gw.ListPending)
	if err != nil {
		if errors.Cause(err) != core.ErrNotFound {
			return Submission{}, err
		}
		if _, hErr := svc.findScheduled(ctx, sess, ns.FeedbackGroupID, svc.gw.ListHistory); hErr == nil {
			return Submission{}, ErrAlreadySubmitted
		}
		return Submission{}, err
	}

	questions, err := svc.gw.ListQuestions(ctx, sess.BackendToken, item.FeedbackTypeID)
	if err != nil {
		return Submission{}, errors.Wrap(err, "listing questions")
	}
	answers, err := ValidateAnswers(questions, ns.Answers)
	if err != nil {
		var unanswered *UnansweredError
		if errors.As(err, &unanswered) {
			svc.logger.Info("incomplete submission", unanswered.Fields(), sess.Profile)
			return Submission{}, core.NewValidationError(ErrIncomplete)
		}
		return Submission{}, err
	}

	now := svc.nowFunc().UTC()
	rcpt, err := svc.repo.ClaimReceipt(ctx, Receipt{
		FeedbackID:      item.FeedbackID,
		FeedbackGroupID: item.FeedbackGroupID,
		StudentID:       studentID,
		Status:          ReceiptClaimed,
		ClaimedAt:       now,
	}, now.Add(-claimTimeout))
	if err != nil {
		return Submission{}, err
	}

	sub := Submission{
		FeedbackID:      item.FeedbackID,
		FeedbackGroupID: item.FeedbackGroupID,
		StudentID:       studentID,
		Answers:         answers,
	}
	if err = svc.gw.SubmitAnswers(ctx, sess.BackendToken, sub); err != nil {
		if errors.Cause(err) == core.ErrConflict {
			svc.confirm(ctx, sess, rcpt.ID)
			return Submission{}, ErrAlreadySubmitted
		}
		if rErr := svc.repo.ReleaseReceipt(ctx, rcpt.ID); rErr != nil {
			svc.logger.Error("releasing submission receipt", rErr, map[string]interface{}{"receipt": rcpt.ID}, sess.Profile)
		}
		return Submission{}, errors.Wrap(err, "submitting answers")
	}
	svc.confirm(ctx, sess, rcpt.ID)
	return sub, nil
}

// confirm marks the receipt as confirmed. The backend holds the submission, so failures are only logged.
func (svc *Service) confirm(ctx context.Context, sess session.Session, receiptID int) {
	if err := svc.repo.ConfirmReceipt(ctx, receiptID, svc.nowFunc().UTC()); err != nil {
		svc.logger.Error("confirming submission receipt", err, map[string]interface{}{"receipt": receiptID}, sess.Profile)
	}
}

type listFunc func(ctx context.Context, token, studentID string, page, pageSize int) ([]Scheduled, int, error)

// findScheduled looks a feedback group up in the student's pending or history list.
func (svc *Service) findScheduled(ctx context.Context, sess session.Session, feedbackGroupID int, list listFunc) (Scheduled, error) {
	for page := 1; ; page++ {
		items, total, err := list(ctx, sess.BackendToken, sess.Profile.ID, page, lookupPageSize)
		if err != nil {
			return Scheduled{}, errors.Wrap(err, "listing scheduled feedback")
		}
		for _, item := range items {
			if item.FeedbackGroupID == feedbackGroupID {
				return item, nil
			}
		}
		if len(items) == 0 || page*lookupPageSize >= total {
			return Scheduled{}, errors.Wrapf(core.ErrNotFound, "feedback group %d", feedbackGroupID)
		}
	}
}

func (svc *Service) Pending(ctx context.Context, sess session.Session, req core.PageRequest) (List, error) {
	return svc.list(ctx, sess, req, svc.gw.ListPending, noPendingMessage)
}

func (svc *Service) History(ctx context.Context, sess session.Session, req core.PageRequest) (List, error) {
	return svc.list(ctx, sess, req, svc.gw.ListHistory, noHistoryMessage)
}

func (svc *Service) list(ctx context.Context, sess session.Session, req core.PageRequest, list listFunc, emptyMsg string) (List, error) {
	if err := checkStudent(sess); err != nil {
		return List{}, err
	}
	req.Clean()
	items, total, err := list(ctx, sess.BackendToken, sess.Profile.ID, req.Page, req.PageSize)
	if err != nil {
		return List{}, err
	}
	if items == nil {
		items = []Scheduled{}
	}
	l := List{Page: core.NewPage(items, total, req)}
	if len(items) == 0 {
		l.Empty = true
		l.Message = emptyMsg
	}
	return l, nil
}

// View returns the answers the session's student submitted for a feedback group.
func (svc *Service) View(ctx context.Context, sess session.Session, feedbackGroupID int) ([]SubmittedAnswer, error) {
	if err := checkStudent(sess); err != nil {
		return nil, err
	}
	return svc.gw.ViewSubmission(ctx, sess.BackendToken, feedbackGroupID, sess.Profile.ID)
}
