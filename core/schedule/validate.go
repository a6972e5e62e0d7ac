package schedule

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/feedbacktype"
)

var (
	// rule errors
	ErrDateOrder        = errors.New("Start Date cannot be greater than End Date.")
	ErrMissingStaff     = errors.New("Please select staff for all groups before submitting.")
	ErrDuplicateStaff   = errors.New("Each group must be assigned a different staff member.")
	ErrNoStaff          = errors.New("Please select a staff member.")
	ErrNoCourseGroups   = errors.New("The selected course has no groups.")
	ErrGroupMismatch    = errors.New("Please assign staff to every group of the course.")
	errUnknownReference = errors.New("invalid selection")
)

func fieldErr(err error, field string) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

func unknownRef(field string) error {
	return fieldErr(errors.Wrapf(errUnknownReference, "%s not found", field), field)
}

// Validate checks d against the catalog and returns the normalized Schedule.
// mode is the template group mode; when empty it is read from the draft's feedback type.
// The checks run in order: field format, date order, group mode, then references.
func Validate(validate *validator.Validate, d Draft, cat *Catalog, mode feedbacktype.GroupMode) (Schedule, error) {
	if err := validate.Struct(d); err != nil {
		return Schedule{}, err
	}

	start, _ := core.ParseDate(d.StartDate)
	end, _ := core.ParseDate(d.EndDate)
	if start.After(end) {
		return Schedule{}, fieldErr(ErrDateOrder, "startDate")
	}

	if mode == "" {
		ft, ok := cat.feedbackType(int(d.FeedbackTypeID))
		if !ok {
			return Schedule{}, unknownRef("feedbackTypeId")
		}
		mode = ft.Group
	}

	sched := Schedule{
		FeedbackTypeID: int(d.FeedbackTypeID),
		CourseID:       int(d.CourseID),
		ModuleID:       int(d.ModuleID),
		Session:        d.Session,
		StartDate:      dateOnly(d.StartDate),
		EndDate:        dateOnly(d.EndDate),
		FeedbackGroups: []FeedbackGroup{},
	}

	switch mode {
	case feedbacktype.Single:
		if d.StaffID <= 0 {
			return Schedule{}, fieldErr(ErrNoStaff, "staffId")
		}
		staffID := int(d.StaffID)
		sched.StaffID = &staffID
	case feedbacktype.Multiple:
		groups, err := checkAssignments(d.Groups)
		if err != nil {
			return Schedule{}, err
		}
		sched.FeedbackGroups = groups
	default:
		return Schedule{}, errors.Errorf("unknown group mode %q", mode)
	}

	if err := checkReferences(sched, cat); err != nil {
		return Schedule{}, err
	}
	return sched, nil
}

func checkAssignments(rows []Assignment) ([]FeedbackGroup, error) {
	if len(rows) == 0 {
		return nil, fieldErr(ErrMissingStaff, "feedbackGroups")
	}
	groups := make([]FeedbackGroup, 0, len(rows))
	for _, row := range rows {
		if row.StaffID <= 0 {
			return nil, fieldErr(ErrMissingStaff, "feedbackGroups")
		}
		groups = append(groups, FeedbackGroup{
			FeedbackGroupID: row.FeedbackGroupID,
			GroupID:         int(row.GroupID),
			StaffID:         int(row.StaffID),
		})
	}
	seen := make(map[int]bool, len(groups))
	for _, fg := range groups {
		if seen[fg.StaffID] {
			return nil, fieldErr(ErrDuplicateStaff, "feedbackGroups")
		}
		seen[fg.StaffID] = true
	}
	return groups, nil
}

func checkReferences(s Schedule, cat *Catalog) error {
	if _, ok := cat.feedbackType(s.FeedbackTypeID); !ok {
		return unknownRef("feedbackTypeId")
	}
	if !cat.hasCourse(s.CourseID) {
		return unknownRef("courseId")
	}
	if cat.CourseID != s.CourseID {
		return errors.Errorf("catalog holds course %d, not %d", cat.CourseID, s.CourseID)
	}
	if !cat.hasModule(s.ModuleID) {
		return unknownRef("moduleId")
	}
	if s.StaffID != nil && !cat.hasStaff(*s.StaffID) {
		return unknownRef("staffId")
	}

	if len(s.FeedbackGroups) == 0 {
		return nil
	}
	if len(cat.Groups) == 0 {
		return fieldErr(ErrNoCourseGroups, "feedbackGroups")
	}
	seen := make(map[int]bool, len(s.FeedbackGroups))
	for _, fg := range s.FeedbackGroups {
		if !cat.hasGroup(fg.GroupID) || seen[fg.GroupID] {
			return unknownRef("groupId")
		}
		seen[fg.GroupID] = true
		if !cat.hasStaff(fg.StaffID) {
			return unknownRef("staffId")
		}
	}
	if len(seen) != len(cat.Groups) {
		return fieldErr(ErrGroupMismatch, "feedbackGroups")
	}
	return nil
}
