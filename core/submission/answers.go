package submission

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/feedbacktype"
)

var ErrIncomplete = errors.New("Please fill out all the questions.")

// UnansweredError lists the questions left without a valid answer.
type UnansweredError struct {
	Questions []core.FieldError
}

func (err *UnansweredError) Error() string {
	msgs := make([]string, len(err.Questions))
	for i, q := range err.Questions {
		msgs[i] = q.Error
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the per-question messages keyed by answer field, for logging.
func (err *UnansweredError) Fields() map[string]interface{} {
	flds := make(map[string]interface{}, len(err.Questions))
	for _, q := range err.Questions {
		flds[q.Field] = q.Error
	}
	return flds
}

func isMCQOption(s string) bool {
	for _, opt := range MCQOptions {
		if s == opt {
			return true
		}
	}
	return false
}

func answered(q feedbacktype.Question, a Answer) bool {
	switch q.Type {
	case feedbacktype.MCQ:
		return !a.IsRating() && isMCQOption(a.Text)
	case feedbacktype.Rating:
		return a.IsRating() && a.Rating >= 1 && a.Rating <= 5
	case feedbacktype.Descriptive:
		return !a.IsRating() && strings.TrimSpace(a.Text) != ""
	}
	return false
}

// ValidateAnswers checks that every question has a valid answer, and returns the answers
// to those questions only. Failures are listed in the returned *UnansweredError.
func ValidateAnswers(questions []feedbacktype.Question, answers Answers) (Answers, error) {
	valid := make(Answers, len(questions))
	var fldErrs []core.FieldError
	for _, q := range questions {
		a, ok := answers[q.ID]
		if !ok || !answered(q, a) {
			fldErrs = append(fldErrs, core.FieldError{
				Field: fmt.Sprintf("answers.%d", q.ID),
				Error: fmt.Sprintf("Please answer Q.%d: %s", q.ID, q.Text),
			})
			continue
		}
		if q.Type == feedbacktype.Descriptive {
			a = TextAnswer(strings.TrimSpace(a.Text))
		}
		valid[q.ID] = a
	}
	if len(fldErrs) > 0 {
		sort.Slice(fldErrs, func(i, j int) bool { return fldErrs[i].Field < fldErrs[j].Field })
		return nil, &UnansweredError{Questions: fldErrs}
	}
	return valid, nil
}
