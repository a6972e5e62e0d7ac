package roster

import (
	"strings"

	"github.com/trezcool/mrejesho/core/schedule"
)

type Student struct {
	RollNo    string `json:"rollNo"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Partition splits the roster of a feedback group by submission status.
type Partition struct {
	FeedbackGroupID int       `json:"feedbackGroupId"`
	Submitted       []Student `json:"submitted"`
	NotSubmitted    []Student `json:"notSubmitted"`
	SubmittedCount  int       `json:"submittedCount"`
	RemainingCount  int       `json:"remainingCount"`
	RosterSize      int       `json:"rosterSize"`
	Mismatch        string    `json:"mismatch,omitempty"`
	Errors          []string  `json:"errors,omitempty"` // lists that could not be fetched
}

// ReminderData feeds the feedback_reminder email template.
type ReminderData struct {
	StudentName  string
	FeedbackType string
	ModuleName   string
	CourseName   string
	EndDate      string
}

func newReminderData(st Student, item schedule.ListItem) ReminderData {
	return ReminderData{
		StudentName:  st.FullName(),
		FeedbackType: item.FeedbackTypeName,
		ModuleName:   item.ModuleName,
		CourseName:   item.CourseName,
		EndDate:      item.EndDate,
	}
}
