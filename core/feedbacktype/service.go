package feedbacktype

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/session"
)

var (
	// errors
	errGroupLocked = errors.New("group cannot change once the feedback type is scheduled")
	errInUse       = errors.New("feedback type could not be deleted")
)

type (
	// Gateway is the part of the feedback backend serving feedback templates.
	Gateway interface {
		ListFeedbackTypes(ctx context.Context, token string) ([]Summary, error)
		ListFeedbackTypesByGroup(ctx context.Context, token string, group GroupMode) ([]Summary, error)
		GetFeedbackType(ctx context.Context, token string, id int) (FeedbackType, error)
		ListQuestions(ctx context.Context, token string, feedbackTypeID int) ([]Question, error)
		CreateFeedbackType(ctx context.Context, token string, nft NewFeedbackType) error
		UpdateFeedbackType(ctx context.Context, token string, id int, uft UpdateFeedbackType) error
		DeleteFeedbackType(ctx context.Context, token string, id int) error
		CheckFeedbackTypeEditable(ctx context.Context, token string, id int) (bool, error)
	}

	Service struct {
		gw     Gateway
		logger core.Logger
	}
)

func NewService(gw Gateway, logger core.Logger) *Service {
	return &Service{gw: gw, logger: logger}
}

func (svc *Service) List(ctx context.Context, sess session.Session) ([]Summary, error) {
	return svc.gw.ListFeedbackTypes(ctx, sess.BackendToken)
}

func (svc *Service) ListByGroup(ctx context.Context, sess session.Session, group string) ([]Summary, error) {
	mode, err := ParseGroupMode(group)
	if err != nil {
		return nil, core.NewValidationError(err, core.FieldError{Field: "group", Error: groupModeText})
	}
	return svc.gw.ListFeedbackTypesByGroup(ctx, sess.BackendToken, mode)
}

func (svc *Service) Get(ctx context.Context, sess session.Session, id int) (FeedbackType, error) {
	return svc.gw.GetFeedbackType(ctx, sess.BackendToken, id)
}

func (svc *Service) Questions(ctx context.Context, sess session.Session, feedbackTypeID int) ([]Question, error) {
	return svc.gw.ListQuestions(ctx, sess.BackendToken, feedbackTypeID)
}

func (svc *Service) CheckEditable(ctx context.Context, sess session.Session, id int) (bool, error) {
	return svc.gw.CheckFeedbackTypeEditable(ctx, sess.BackendToken, id)
}

func (svc *Service) Create(ctx context.Context, sess session.Session, nft NewFeedbackType) error {
	return svc.gw.CreateFeedbackType(ctx, sess.BackendToken, nft)
}

// Update replaces the template with id. It reports whether anything changed:
// an unmodified payload is not sent to the backend.
func (svc *Service) Update(ctx context.Context, sess session.Session, id int, uft UpdateFeedbackType) (FeedbackType, bool, error) {
	stored, err := svc.gw.GetFeedbackType(ctx, sess.BackendToken, id)
	if err != nil {
		return FeedbackType{}, false, errors.Wrap(err, "getting stored feedback type")
	}
	updated := uft.toFeedbackType(id)

	diff, err := Diff(stored, updated)
	if err != nil {
		return FeedbackType{}, false, errors.Wrap(err, "diffing feedback type")
	}
	if diff == "" {
		return stored, false, nil
	}

	if updated.Group != stored.Group {
		editable, err := svc.gw.CheckFeedbackTypeEditable(ctx, sess.BackendToken, id)
		if err != nil {
			return FeedbackType{}, false, errors.Wrap(err, "checking feedback type editable")
		}
		if !editable {
			return FeedbackType{}, false, core.NewValidationError(
				errGroupLocked,
				core.FieldError{Field: "group", Error: errGroupLocked.Error()},
			)
		}
	}

	if err = svc.gw.UpdateFeedbackType(ctx, sess.BackendToken, id, uft); err != nil {
		return FeedbackType{}, false, err
	}
	svc.logger.Info("feedback type updated", map[string]interface{}{"id": id, "diff": diff}, sess.Profile)
	return updated, true, nil
}

// Delete removes the template. A backend rejection (e.g. the template is scheduled) is a validation error.
func (svc *Service) Delete(ctx context.Context, sess session.Session, id int) error {
	err := svc.gw.DeleteFeedbackType(ctx, sess.BackendToken, id)
	if err != nil {
		if msg, ok := core.UserMessage(err); ok {
			return core.NewValidationError(errInUse, core.FieldError{Field: "id", Error: msg})
		}
	}
	return err
}
