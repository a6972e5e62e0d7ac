package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mrejesho/tests"
)

func Test_academicApi_courses(t *testing.T) {
	t.Run("public", func(t *testing.T) {
		app := setup(t)
		app.backend.JSON("GetAllCourse", http.StatusOK, `[{"course_id": 1, "course_name": "DAC", "course_type": "PG"}]`)
		app.backend.JSON("Groups/ByCourse/1", http.StatusOK, `[{"group_id": 11, "group_name": "A"}]`)
		app.run(t, []httpTest{
			{
				name:     "courses",
				method:   http.MethodGet,
				path:     "/v1/courses",
				wantCode: http.StatusOK,
				wantData: []byte(`[{"id": 1, "name": "DAC", "type": "PG"}]`),
			},
			{
				name:     "course groups",
				method:   http.MethodGet,
				path:     "/v1/courses/1/groups",
				wantCode: http.StatusOK,
				wantData: []byte(`[{"id": 11, "name": "A"}]`),
			},
		})
	})

	t.Run("backend down", func(t *testing.T) {
		app := setup(t)
		app.backend.JSON("GetAllCourse", http.StatusServiceUnavailable, `{"message": "Database unavailable"}`)
		app.run(t, []httpTest{{
			name:     "courses",
			method:   http.MethodGet,
			path:     "/v1/courses",
			wantCode: http.StatusBadGateway,
			wantData: marshallObj(t, httpErr{Error: "Database unavailable"}),
		}})
	})

	t.Run("bad backend payload", func(t *testing.T) {
		app := setup(t)
		app.backend.JSON("GetAllCourse", http.StatusOK, `[{"course_name": "DAC"}]`)
		app.run(t, []httpTest{{
			name:     "courses",
			method:   http.MethodGet,
			path:     "/v1/courses",
			wantCode: http.StatusBadGateway,
			wantData: marshallObj(t, errBackendPayload),
		}})
	})
}

func Test_reportApi_perFaculty(t *testing.T) {
	app := setup(t)
	token := app.login(t, "admin@x.io")

	var query string
	app.backend.Handle("FeedbackReport/PerFacultyFeedbackSummary", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("feedbackTypeIds")
		testutil.WriteJSON(w, http.StatusOK, `[{"staffName": "Juma Mwangi", "averageRating": 4.25}, {"staffName": "Neema Kibet"}]`)
	})

	app.run(t, []httpTest{
		{
			name:     "no templates",
			method:   http.MethodGet,
			path:     "/v1/reports/per-faculty?courseType=PG&courseId=1",
			token:    token,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "summary",
			method:   http.MethodGet,
			path:     "/v1/reports/per-faculty?courseType=PG&courseId=1&feedbackTypeIds=3&feedbackTypeIds=1&feedbackTypeIds=3",
			token:    token,
			wantCode: http.StatusOK,
			wantData: []byte(`[{"staffName": "Juma Mwangi", "averageRating": 4.25}, {"staffName": "Neema Kibet", "averageRating": 0}]`),
		},
	})
	assert.Equal(t, "1,3", query)
	assert.Equal(t, 1, app.backend.Calls("FeedbackReport/PerFacultyFeedbackSummary"))
}

func Test_reportApi_staffDashboard(t *testing.T) {
	app := setup(t)
	app.backend.JSON("staff/7/scheduledFeedback", http.StatusOK, `[]`)
	staff := app.login(t, "staff@x.io")

	app.run(t, []httpTest{
		{
			name:     "own dashboard",
			method:   http.MethodGet,
			path:     "/v1/staff/7/dashboard",
			token:    staff,
			wantCode: http.StatusOK,
		},
		{
			name:     "own schedules",
			method:   http.MethodGet,
			path:     "/v1/staff/7/schedules",
			token:    staff,
			wantCode: http.StatusOK,
		},
	})
	assert.Equal(t, 2, app.backend.Calls("staff/7/scheduledFeedback"))
}
