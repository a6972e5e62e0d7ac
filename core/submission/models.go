package submission

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
)

// MCQOptions are the only valid answers to an mcq question.
var MCQOptions = []string{"Excellent", "Good", "Average", "Poor"}

// Answer holds either a text (mcq, descriptive) or a rating.
type Answer struct {
	Text    string
	Rating  int
	numeric bool
}

func TextAnswer(s string) Answer {
	return Answer{Text: s}
}

func RatingAnswer(n int) Answer {
	return Answer{Rating: n, numeric: true}
}

func (a Answer) IsRating() bool {
	return a.numeric
}

func (a Answer) String() string {
	if a.numeric {
		return strconv.Itoa(a.Rating)
	}
	return a.Text
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.numeric {
		return []byte(strconv.Itoa(a.Rating)), nil
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Answer{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	default:
		n, err := strconv.Atoi(string(data))
		if err != nil {
			return errors.Errorf("answer must be a text or an integer, got %s", data)
		}
		*a = RatingAnswer(n)
	}
	return nil
}

// Answers maps question IDs to answers.
type Answers map[int]Answer

// NewSubmission is a student's answer set. The student is the session's.
type NewSubmission struct {
	FeedbackGroupID int     `json:"feedbackGroupId" validate:"required,gt=0"`
	Answers         Answers `json:"answers" validate:"required"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

// Submission is what the backend receives.
type Submission struct {
	FeedbackID      int     `json:"feedbackId"`
	FeedbackGroupID int     `json:"feedbackGroupId"`
	StudentID       string  `json:"studentId"`
	Answers         Answers `json:"answers"`
}

// Scheduled is a feedback scheduled for a student, pending or submitted.
type Scheduled struct {
	FeedbackID       int    `json:"feedbackId"`
	FeedbackGroupID  int    `json:"feedbackGroupId"`
	FeedbackTypeID   int    `json:"feedbackTypeId"`
	FeedbackTypeName string `json:"feedbackTypeName"`
	CourseName       string `json:"courseName"`
	ModuleName       string `json:"moduleName"`
	StaffName        string `json:"staffName"`
	Session          int    `json:"session"`
	StartDate        string `json:"startDate,omitempty"`
	EndDate          string `json:"endDate,omitempty"`
}

// List is a page of Scheduled rows. Message is set when the page is empty.
type List struct {
	core.Page
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
}

// SubmittedAnswer is one answer of a submitted feedback, as viewed afterwards.
type SubmittedAnswer struct {
	QuestionID   int    `json:"questionId"`
	QuestionText string `json:"questionText"`
	AnswerText   string `json:"answerText"`
}

// Receipt statuses
const (
	ReceiptClaimed   = "claimed"
	ReceiptConfirmed = "confirmed"
)

// Receipt records locally that a student submitted (or is submitting) a feedback.
type Receipt struct {
	ID              int
	FeedbackID      int
	FeedbackGroupID int
	StudentID       string
	Status          string
	ClaimedAt       time.Time
	ConfirmedAt     *time.Time
}
