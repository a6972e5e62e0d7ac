package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/feedbacktype"
	"github.com/trezcool/mrejesho/core/schedule"
)

var (
	// filter chain errors, in order
	ErrNoCourse    = errors.New("Please select a Course")
	ErrNoModule    = errors.New("Please select a Module")
	ErrNoFaculty   = errors.New("Please select a Faculty")
	ErrNoType      = errors.New("Please select a Feedback Type")
	ErrNoDateRange = errors.New("Invalid Date Range for this selection")

	ErrNoCourseType = errors.New("Please select a Course Type")
	ErrNoTypes      = errors.New("Please select at least one Feedback Type")
)

func fieldErr(err error, field string) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// SplitTypes sorts templates into the mid, end and infra columns by title.
// A template may fit more than one column.
func SplitTypes(types []feedbacktype.Summary) TypeSplit {
	split := TypeSplit{
		Mid:   []feedbacktype.Summary{},
		End:   []feedbacktype.Summary{},
		Infra: []feedbacktype.Summary{},
	}
	for _, ft := range types {
		title := strings.ToLower(ft.Title)
		if strings.Contains(title, "mid") {
			split.Mid = append(split.Mid, ft)
		}
		if strings.Contains(title, "end") {
			split.End = append(split.End, ft)
		}
		if strings.Contains(title, "infra") {
			split.Infra = append(split.Infra, ft)
		}
	}
	return split
}

// FlattenCourseWise returns one row per module of the filtered course, with the ratings of the selected types.
func FlattenCourseWise(courses []CourseWiseCourse, f CourseWiseFilter) []CourseWiseRow {
	rows := []CourseWiseRow{}
	if f.Course == "" {
		return rows
	}
	for _, c := range courses {
		if c.CourseName != f.Course {
			continue
		}
		for _, m := range c.Modules {
			rows = append(rows, CourseWiseRow{
				ModuleName:     m.ModuleName,
				MidModule:      typeRating(m, f.Mid),
				ModuleEnd:      typeRating(m, f.End),
				Infrastructure: typeRating(m, f.Infra),
			})
		}
		break
	}
	return rows
}

func typeRating(m CourseWiseModule, title string) string {
	if title == "" {
		return notRated
	}
	for _, tr := range m.FeedbackTypes {
		if tr.FeedbackTypeTitle == title {
			if tr.AverageRating == 0 {
				return notRated
			}
			return formatRating(tr.AverageRating)
		}
	}
	return notRated
}

func courseNames(courses []CourseWiseCourse) []string {
	names := make([]string, 0, len(courses))
	for _, c := range courses {
		names = append(names, c.CourseName)
	}
	return names
}

// MapDashboard formats the course feedback report rows.
func MapDashboard(raws []DashboardRaw) []DashboardRow {
	rows := make([]DashboardRow, 0, len(raws))
	for _, raw := range raws {
		row := DashboardRow{
			Date:         formatDay(raw.Date),
			Course:       raw.CourseName,
			FeedbackType: raw.FeedbackTypeName,
			Group:        labName,
			Sessions:     raw.Sessions,
		}
		if strings.EqualFold(raw.Groups, string(feedbacktype.Single)) {
			row.Group = theoryName
		}
		if raw.Rating != 0 {
			row.Rating = formatRating(raw.Rating)
		}
		rows = append(rows, row)
	}
	return rows
}

// FilterDashboard keeps the rows of course and feedbackType, compared case-insensitively.
// A nil name does not filter.
func FilterDashboard(rows []DashboardRow, course, feedbackType *string) []DashboardRow {
	filtered := make([]DashboardRow, 0, len(rows))
	for _, row := range rows {
		if course != nil && !strings.EqualFold(row.Course, *course) {
			continue
		}
		if feedbackType != nil && !strings.EqualFold(row.FeedbackType, *feedbackType) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// Validate checks the filter, and returns the feedbackTypeIds parameter: sorted, unique and comma-joined.
func (f PerFacultyFilter) Validate() (string, error) {
	if core.CleanString(f.CourseType) == "" {
		return "", fieldErr(ErrNoCourseType, "courseType")
	}
	if f.CourseID <= 0 {
		return "", fieldErr(ErrNoCourse, "courseId")
	}
	ids := make([]int, 0, len(f.FeedbackTypeIDs))
	seen := make(map[int]bool, len(f.FeedbackTypeIDs))
	for _, id := range f.FeedbackTypeIDs {
		if id > 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", fieldErr(ErrNoTypes, "feedbackTypeIds")
	}
	sort.Ints(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ","), nil
}

// Check reports the first missing link of the filter chain.
func (f FacultyFilter) Check() error {
	switch {
	case f.Course == "":
		return fieldErr(ErrNoCourse, "course")
	case f.Module == "":
		return fieldErr(ErrNoModule, "module")
	case f.Faculty == "":
		return fieldErr(ErrNoFaculty, "faculty")
	case f.Type == "":
		return fieldErr(ErrNoType, "type")
	}
	return nil
}

func distinct(rows []RatingRow, keep func(RatingRow) bool, value func(RatingRow) string) []string {
	values := []string{}
	seen := make(map[string]bool)
	for _, r := range rows {
		if !keep(r) {
			continue
		}
		if v := value(r); !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	return values
}

// Options returns the distinct choices of each link of the chain, given the links already set.
func Options(rows []RatingRow, f FacultyFilter) FilterOptions {
	opts := FilterOptions{
		Courses:   distinct(rows, func(RatingRow) bool { return true }, func(r RatingRow) string { return r.CourseName }),
		Modules:   []string{},
		Faculties: []string{},
		Types:     []string{},
	}
	if f.Course != "" {
		opts.Modules = distinct(rows, FacultyFilter{Course: f.Course}.matches, func(r RatingRow) string { return r.ModuleName })
	}
	if f.Course != "" && f.Module != "" {
		opts.Faculties = distinct(rows, FacultyFilter{Course: f.Course, Module: f.Module}.matches, func(r RatingRow) string { return r.StaffName })
	}
	if f.Course != "" && f.Module != "" && f.Faculty != "" {
		opts.Types = distinct(rows, FacultyFilter{Course: f.Course, Module: f.Module, Faculty: f.Faculty}.matches, func(r RatingRow) string { return r.FeedbackTypeName })
	}
	opts.DateRange, _ = DateRange(rows, f)
	return opts
}

// DateRange spans the earliest start to the latest end of all rows matching f, as "dd-mm-yyyy to dd-mm-yyyy".
func DateRange(rows []RatingRow, f FacultyFilter) (string, bool) {
	var minStart, maxEnd string
	found := false
	for _, r := range rows {
		if !f.matches(r) {
			continue
		}
		start, sErr := core.ParseDate(r.StartDate)
		end, eErr := core.ParseDate(r.EndDate)
		if sErr != nil || eErr != nil {
			continue
		}
		s, e := start.Format(core.DateLayout), end.Format(core.DateLayout)
		if !found || s < minStart {
			minStart = s
		}
		if !found || e > maxEnd {
			maxEnd = e
		}
		found = true
	}
	if !found {
		return "", false
	}
	return formatDay(minStart) + " to " + formatDay(maxEnd), true
}

// MatchRow returns the first row matching the full filter chain.
func MatchRow(rows []RatingRow, f FacultyFilter) (RatingRow, bool) {
	for _, r := range rows {
		if f.matches(r) {
			return r, true
		}
	}
	return RatingRow{}, false
}

// AggregateStaff groups a staff member's scheduled feedback by module and template, averaging the ratings.
// Unrated schedules count as 0.
func AggregateStaff(scheds []schedule.StaffSchedule) []StaffDashboardRow {
	type key struct {
		module string
		typeID int
	}
	rows := []StaffDashboardRow{}
	index := make(map[key]int)
	sums := []float64{}
	for _, s := range scheds {
		k := key{s.ModuleName, s.FeedbackTypeID}
		i, ok := index[k]
		if !ok {
			date := formatDay(s.StartDate)
			if date == "" {
				date = notDated
			}
			i = len(rows)
			index[k] = i
			rows = append(rows, StaffDashboardRow{
				Course:         s.CourseName,
				Date:           date,
				Module:         s.ModuleName,
				Type:           s.FeedbackTypeName,
				FeedbackTypeID: s.FeedbackTypeID,
				Session:        s.Session,
			})
			sums = append(sums, 0)
		}
		rows[i].Ratings++
		sums[i] += s.Rating
	}
	for i := range rows {
		rows[i].Rating = round2(sums[i] / float64(rows[i].Ratings))
	}
	return rows
}
