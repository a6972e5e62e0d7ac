package feedbacktype

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
)

type QuestionType string

// Question types
const (
	MCQ         QuestionType = "mcq"
	Rating      QuestionType = "rating"
	Descriptive QuestionType = "descriptive"
)

func ParseQuestionType(s string) (QuestionType, error) {
	switch qt := QuestionType(core.CleanString(s, true /* lower */)); qt {
	case MCQ, Rating, Descriptive:
		return qt, nil
	}
	return "", errors.Errorf("unknown question type %q", s)
}

// GroupMode tells whether a schedule binds one staff member, or one per course group.
type GroupMode string

// Group modes
const (
	Single   GroupMode = "single"
	Multiple GroupMode = "multiple"
)

func ParseGroupMode(s string) (GroupMode, error) {
	switch gm := GroupMode(core.CleanString(s, true /* lower */)); gm {
	case Single, Multiple:
		return gm, nil
	}
	return "", errors.Errorf("unknown group mode %q", s)
}

type Question struct {
	ID   int          `json:"id,omitempty"`
	Text string       `json:"question" validate:"required"`
	Type QuestionType `json:"questionType" validate:"required,questiontype"`
}

// FeedbackType is a feedback template: behaviour flags and a question set.
type FeedbackType struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsModule    bool       `json:"isModule"`
	Group       GroupMode  `json:"group"`
	IsStaff     bool       `json:"isStaff"`
	IsSession   bool       `json:"isSession"`
	Behaviour   bool       `json:"behaviour"` // compulsory
	Questions   []Question `json:"questions"`
}

// Summary is a FeedbackType as listed, without its questions.
type Summary struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Group       GroupMode `json:"group"`
	IsStaff     bool      `json:"isStaff"`
	IsSession   bool      `json:"isSession"`
	Behaviour   bool      `json:"behaviour"`
}

type NewFeedbackType struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	IsModule    bool       `json:"isModule"`
	Group       GroupMode  `json:"group" validate:"required,groupmode"`
	IsStaff     bool       `json:"isStaff"`
	IsSession   bool       `json:"isSession"`
	Behaviour   bool       `json:"behaviour"`
	Questions   []Question `json:"questions" validate:"dive"`
}

func (nft *NewFeedbackType) Validate(validate *validator.Validate) error {
	nft.clean()
	return validate.Struct(nft)
}

func (nft *NewFeedbackType) clean() {
	nft.Title = core.CleanString(nft.Title)
	nft.Description = core.CleanString(nft.Description)
	nft.Group = GroupMode(core.CleanString(string(nft.Group), true /* lower */))
	for i := range nft.Questions {
		q := &nft.Questions[i]
		q.Text = core.CleanString(q.Text)
		q.Type = QuestionType(core.CleanString(string(q.Type), true /* lower */))
	}
}

func (nft NewFeedbackType) toFeedbackType(id int) FeedbackType {
	return FeedbackType{
		ID:          id,
		Title:       nft.Title,
		Description: nft.Description,
		IsModule:    nft.IsModule,
		Group:       nft.Group,
		IsStaff:     nft.IsStaff,
		IsSession:   nft.IsSession,
		Behaviour:   nft.Behaviour,
		Questions:   nft.Questions,
	}
}

// UpdateFeedbackType is the full replacement payload of a template.
type UpdateFeedbackType struct {
	NewFeedbackType
}
