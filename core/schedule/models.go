package schedule

import (
	"strconv"

	"github.com/trezcool/mrejesho/core"
)

const StatusActive = "active"

// Schedule binds a feedback template to a course module, a date window and its staff.
type Schedule struct {
	FeedbackID     int             `json:"feedbackId,omitempty"`
	FeedbackTypeID int             `json:"feedbackTypeId"`
	CourseID       int             `json:"courseId"`
	ModuleID       int             `json:"moduleId"`
	StaffID        *int            `json:"staffId"` // nil in multiple group mode
	Session        int             `json:"session"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	Status         string          `json:"status,omitempty"`
	FeedbackGroups []FeedbackGroup `json:"feedbackGroups"`
}

type FeedbackGroup struct {
	FeedbackGroupID int `json:"feedbackGroupId,omitempty"`
	GroupID         int `json:"groupId"`
	StaffID         int `json:"staffId"`
}

// ListItem is one feedback group row of the schedule list.
type ListItem struct {
	FeedbackID       int    `json:"feedbackId"`
	FeedbackGroupID  int    `json:"feedbackGroupId"`
	CourseName       string `json:"courseName"`
	ModuleName       string `json:"moduleName"`
	FeedbackTypeName string `json:"feedbackTypeName"`
	StaffName        string `json:"staffName"`
	GroupName        string `json:"groupName"`
	Session          int    `json:"session"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	Status           string `json:"status"`
	Counts
}

// Counts is the submission progress of a feedback group.
type Counts struct {
	Submitted int `json:"submittedCount"`
	Remaining int `json:"remainingCount"`
}

func (c Counts) Total() int {
	return c.Submitted + c.Remaining
}

// StaffSchedule is a feedback scheduled for a staff member, with its rating so far.
type StaffSchedule struct {
	FeedbackTypeID   int     `json:"feedbackTypeId"`
	FeedbackTypeName string  `json:"feedbackTypeName"`
	CourseName       string  `json:"courseName"`
	ModuleName       string  `json:"moduleName"`
	Session          int     `json:"session"`
	StartDate        string  `json:"startDate"`
	Rating           float64 `json:"rating"`
}

// Assignment is a course group row of a Draft.
type Assignment struct {
	FeedbackGroupID int         `json:"feedbackGroupId,omitempty"`
	GroupID         core.FormID `json:"groupId"`
	StaffID         core.FormID `json:"staffId"`
}

// Draft is a schedule form as filled in a UI.
type Draft struct {
	StartDate      string       `json:"startDate" validate:"required,date"`
	EndDate        string       `json:"endDate" validate:"required,date"`
	FeedbackTypeID core.FormID  `json:"feedbackTypeId"`
	CourseID       core.FormID  `json:"courseId"`
	ModuleID       core.FormID  `json:"moduleId"`
	StaffID        core.FormID  `json:"staffId"`
	Session        int          `json:"session" validate:"gte=0"`
	Groups         []Assignment `json:"feedbackGroups"`
}

// ChangeCourse selects another course, discarding the module and group rows picked for the previous one.
func (d *Draft) ChangeCourse(courseID int) {
	if int(d.CourseID) == courseID {
		return
	}
	d.CourseID = core.FormID(courseID)
	d.ModuleID = 0
	d.Groups = nil
}

// DraftOf turns a stored Schedule back into a Draft.
func DraftOf(s Schedule) Draft {
	d := Draft{
		StartDate:      dateOnly(s.StartDate),
		EndDate:        dateOnly(s.EndDate),
		FeedbackTypeID: core.FormID(s.FeedbackTypeID),
		CourseID:       core.FormID(s.CourseID),
		ModuleID:       core.FormID(s.ModuleID),
		Session:        s.Session,
	}
	if s.StaffID != nil {
		d.StaffID = core.FormID(*s.StaffID)
	}
	for _, fg := range s.FeedbackGroups {
		d.Groups = append(d.Groups, Assignment{
			FeedbackGroupID: fg.FeedbackGroupID,
			GroupID:         core.FormID(fg.GroupID),
			StaffID:         core.FormID(fg.StaffID),
		})
	}
	return d
}

func dateOnly(s string) string {
	if len(s) > len(core.DateLayout) {
		return s[:len(core.DateLayout)]
	}
	return s
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
