package report

import (
	"math"
	"strconv"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/feedbacktype"
)

const (
	dayLayout  = "02-01-2006"
	notRated   = "-"
	notDated   = "N/A"
	theoryName = "Theory"
	labName    = "Lab"
)

// formatDay formats the leading calendar date of s as dd-mm-yyyy, or returns "" if it has none.
func formatDay(s string) string {
	d, err := core.ParseDate(s)
	if err != nil {
		return ""
	}
	return d.Format(dayLayout)
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', 2, 64)
}

func round2(r float64) float64 {
	return math.Round(r*100) / 100
}

// Course-wise report

type TypeRating struct {
	FeedbackTypeTitle string  `json:"feedbackTypeTitle"`
	AverageRating     float64 `json:"averageRating"`
}

type CourseWiseModule struct {
	ModuleName    string       `json:"moduleName"`
	FeedbackTypes []TypeRating `json:"feedbackTypes"`
}

type CourseWiseCourse struct {
	CourseName string             `json:"courseName"`
	Modules    []CourseWiseModule `json:"modules"`
}

// TypeSplit partitions templates by the column of the course-wise report they fit.
type TypeSplit struct {
	Mid   []feedbacktype.Summary `json:"mid"`
	End   []feedbacktype.Summary `json:"end"`
	Infra []feedbacktype.Summary `json:"infra"`
}

type CourseWiseFilter struct {
	Course string `query:"course" json:"course"`
	Mid    string `query:"mid" json:"mid"`
	End    string `query:"end" json:"end"`
	Infra  string `query:"infra" json:"infra"`
}

type CourseWiseRow struct {
	ModuleName     string `json:"moduleName"`
	MidModule      string `json:"midModule"`
	ModuleEnd      string `json:"moduleEnd"`
	Infrastructure string `json:"infrastructure"`
}

type CourseWiseReport struct {
	Courses []string        `json:"courses"`
	Types   TypeSplit       `json:"types"`
	Rows    []CourseWiseRow `json:"rows"`
}

// Dashboard

type DashboardRaw struct {
	Date             string
	CourseName       string
	FeedbackTypeName string
	Groups           string
	Sessions         int
	Rating           float64
}

type DashboardRow struct {
	Date         string `json:"date"`
	Course       string `json:"course"`
	FeedbackType string `json:"feedbackType"`
	Group        string `json:"group"`
	Sessions     int    `json:"sessions"`
	Rating       string `json:"rating"`
}

type DashboardFilter struct {
	CourseID       int `query:"courseId" json:"courseId"`
	FeedbackTypeID int `query:"feedbackTypeId" json:"feedbackTypeId"`
}

// Per-faculty summary

type PerFacultyFilter struct {
	CourseType      string `query:"courseType" json:"courseType"`
	CourseID        int    `query:"courseId" json:"courseId"`
	FeedbackTypeIDs []int  `query:"feedbackTypeIds" json:"feedbackTypeIds"`
}

type FacultyRating struct {
	StaffName     string  `json:"staffName"`
	AverageRating float64 `json:"averageRating"`
}

// Faculty feedback summary

// RatingRow is a scheduled feedback group, as listed by the rating dashboard.
type RatingRow struct {
	FeedbackID       int    `json:"feedbackId"`
	FeedbackTypeID   int    `json:"feedbackTypeId"`
	FeedbackGroupID  int    `json:"feedbackGroupId"`
	CourseName       string `json:"courseName"`
	ModuleName       string `json:"moduleName"`
	StaffName        string `json:"staffName"`
	FeedbackTypeName string `json:"feedbackTypeName"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
}

// FacultyFilter is the course, module, faculty and type chain of the faculty summary.
type FacultyFilter struct {
	Course  string `query:"course" json:"course"`
	Module  string `query:"module" json:"module"`
	Faculty string `query:"faculty" json:"faculty"`
	Type    string `query:"type" json:"type"`
}

func (f FacultyFilter) matches(r RatingRow) bool {
	return (f.Course == "" || r.CourseName == f.Course) &&
		(f.Module == "" || r.ModuleName == f.Module) &&
		(f.Faculty == "" || r.StaffName == f.Faculty) &&
		(f.Type == "" || r.FeedbackTypeName == f.Type)
}

// FilterOptions are the choices left at each link of a FacultyFilter.
type FilterOptions struct {
	Courses   []string `json:"courses"`
	Modules   []string `json:"modules"`
	Faculties []string `json:"faculties"`
	Types     []string `json:"types"`
	DateRange string   `json:"dateRange,omitempty"`
}

// SummaryRequest asks the backend for the summary of one feedback group.
type SummaryRequest struct {
	StaffName       string `json:"staff_name"`
	ModuleName      string `json:"module_name"`
	CourseName      string `json:"course_name"`
	TypeName        string `json:"type_name"`
	Date            string `json:"date"`
	FeedbackTypeID  int    `json:"feedbackTypeId"`
	FeedbackID      int    `json:"feedbackId"`
	FeedbackGroupID int    `json:"feedbackGroupId"`
}

type QuestionSummary struct {
	QuestionText string `json:"questionText"`
	QuestionType string `json:"questionType"`
	Excellent    int    `json:"excellent"`
	Good         int    `json:"good"`
	Average      int    `json:"average"`
	Poor         int    `json:"poor"`
}

type SummaryResult struct {
	Submitted int
	Remaining int
	Rating    float64
	Questions []QuestionSummary
}

type FacultySummary struct {
	FacultyFilter
	DateRange string            `json:"dateRange"`
	Submitted int               `json:"submitted"`
	Remaining int               `json:"remaining"`
	Rating    string            `json:"rating"`
	Questions []QuestionSummary `json:"questions"`
}

// Staff dashboard

type StaffDashboardRow struct {
	Course         string  `json:"course"`
	Date           string  `json:"date"`
	Module         string  `json:"module"`
	Type           string  `json:"type"`
	FeedbackTypeID int     `json:"feedbackTypeId"`
	Session        int     `json:"session"`
	Ratings        int     `json:"ratings"` // number of schedules averaged
	Rating         float64 `json:"rating"`
}
