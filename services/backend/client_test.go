package backendapi

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/academic"
	"github.com/trezcool/mrejesho/core/feedbacktype"
	"github.com/trezcool/mrejesho/core/report"
	"github.com/trezcool/mrejesho/core/schedule"
	"github.com/trezcool/mrejesho/core/session"
	"github.com/trezcool/mrejesho/core/submission"
)

const token = "t0k3n"

// newTestClient serves mux and returns a client of it.
func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(core.BackendConfig{BaseURL: srv.URL + "/api/", Timeout: 5 * time.Second})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func requireToken(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
}

func TestClient_Login(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))

		var creds credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		switch creds.Password {
		case "good":
			writeJSON(w, http.StatusOK, `{
				"message": "Login successful",
				"token": "backend-token",
				"user": {"id": 42, "first_name": "Jane", "last_name": "Doe", "email": "Jane@X.io", "role": "Trainer"}
			}`)
		case "empty":
			writeJSON(w, http.StatusOK, `{"message": "User not found"}`)
		default:
			writeJSON(w, http.StatusUnauthorized, `{"message": "Invalid credentials"}`)
		}
	})
	cl := newTestClient(t, mux)
	ctx := context.Background()

	res, err := cl.Login(ctx, "jane@x.io", "good")
	require.NoError(t, err)
	assert.Equal(t, "backend-token", res.Token)
	assert.Equal(t, session.Profile{
		ID:        "42",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@x.io",
		Role:      session.RoleStaff,
	}, res.Profile)

	_, err = cl.Login(ctx, "jane@x.io", "bad")
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	assert.Equal(t, "Invalid email or password.", err.Error())

	_, err = cl.Login(ctx, "jane@x.io", "empty")
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	assert.Equal(t, "User not found", err.Error())
}

func TestClient_LoginRejectedWithMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"message": "Account locked"}`)
	})
	_, err := newTestClient(t, mux).Login(context.Background(), "a@b.c", "x")
	require.Error(t, err)
	assert.Equal(t, "Account locked", err.Error())
}

func TestClient_LoginSchema(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"token": "x", "user": {"id": 1, "role": "janitor"}}`)
	})
	_, err := newTestClient(t, mux).Login(context.Background(), "a@b.c", "x")
	assert.True(t, IsSchemaError(err))
}

func TestClient_LoginMissingTokenOrUser(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no token", body: `{"message": "Login successful.", "user": {"id": 1, "role": "Admin"}}`},
		{name: "no user", body: `{"message": "Login successful.", "token": "x"}`},
		{name: "no message", body: `{"token": "x"}`},
		{name: "empty body", body: `{}`},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/Login", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tc.body)
			})
			_, err := newTestClient(t, mux).Login(context.Background(), "a@b.c", "x")
			require.Error(t, err)
			assert.True(t, IsSchemaError(err))
			assert.False(t, core.IsValidationError(err))
		})
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{http.StatusUnauthorized, ``, func(t *testing.T, err error) { assert.True(t, errors.Is(err, ErrUnauthorized)) }},
		{http.StatusForbidden, ``, func(t *testing.T, err error) { assert.True(t, errors.Is(err, core.ErrForbidden)) }},
		{http.StatusNotFound, ``, func(t *testing.T, err error) { assert.True(t, errors.Is(err, core.ErrNotFound)) }},
		{http.StatusConflict, ``, func(t *testing.T, err error) { assert.True(t, errors.Is(err, core.ErrConflict)) }},
		{http.StatusBadRequest, `{"message": "Feedback type is in use"}`, func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			msg, ok := core.UserMessage(err)
			assert.True(t, ok)
			assert.Equal(t, "Feedback type is in use", msg)
		}},
		{http.StatusInternalServerError, `<html>oops</html>`, func(t *testing.T, err error) {
			msg, _ := core.UserMessage(err)
			assert.Equal(t, "request failed", msg)
		}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/FeedbackType/5", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				requireToken(t, r)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			err := newTestClient(t, mux).DeleteFeedbackType(context.Background(), token, 5)
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestClient_Metrics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/GetCourseTypes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `["PG", "Modular"]`)
	})
	cl := newTestClient(t, mux)

	counter := requestsTotal.WithLabelValues("GetCourseTypes", "200")
	before := testutil.ToFloat64(counter)
	types, err := cl.ListCourseTypes(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, []string{"PG", "Modular"}, types)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestClient_ListCourses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/GetAllCourse", func(w http.ResponseWriter, r *http.Request) {
		requireToken(t, r)
		writeJSON(w, http.StatusOK, `[
			{"course_id": 1, "course_name": "DAC", "start_date": "2024-01-01T00:00:00", "end_date": "2024-06-30T00:00:00", "duration": 180, "course_type": "PG"}
		]`)
	})
	mux.HandleFunc("/api/GetCoursesByType/PG Diploma", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"course_id": 1}]`)
	})
	cl := newTestClient(t, mux)
	ctx := context.Background()

	courses, err := cl.ListCourses(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, []academic.Course{{
		ID: 1, Name: "DAC", StartDate: "2024-01-01T00:00:00", EndDate: "2024-06-30T00:00:00", Duration: 180, Type: "PG",
	}}, courses)

	// course_name missing
	_, err = cl.ListCoursesByType(ctx, token, "PG Diploma")
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "GetCoursesByType/{type}", se.Endpoint)
}

func TestClient_AddCourse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/AddCourse", func(w http.ResponseWriter, r *http.Request) {
		requireToken(t, r)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{
			"course_name": "DAC",
			"start_date":  "2024-01-01",
			"end_date":    "2024-06-30",
			"duration":    float64(180),
			"course_type": "PG",
		}, body)
		writeJSON(w, http.StatusCreated, `{"message": "ok"}`)
	})
	err := newTestClient(t, mux).AddCourse(context.Background(), token, academic.NewCourse{
		Name: "DAC", StartDate: "2024-01-01", EndDate: "2024-06-30", Duration: 180, Type: "PG",
	})
	assert.NoError(t, err)
}

func TestClient_RegisterStudent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/StudentApi/UploadProfile", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Jane", r.FormValue("FirstName"))
		assert.Equal(t, "jane@x.io", r.FormValue("Email"))
		assert.Equal(t, "3", r.FormValue("CourseId"))
		assert.Empty(t, r.MultipartForm.Value["GroupId"])

		f, fh, err := r.FormFile("profileImage")
		require.NoError(t, err)
		defer f.Close()
		content, err := ioutil.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "me.png", fh.Filename)
		assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))
		assert.Equal(t, []byte("png!"), content)
		w.WriteHeader(http.StatusOK)
	})
	err := newTestClient(t, mux).RegisterStudent(context.Background(), academic.NewStudent{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@x.io",
		Password:  "secret",
		CourseID:  3,
		Image:     &academic.Upload{Filename: "me.png", ContentType: "image/png", Content: []byte("png!")},
	})
	assert.NoError(t, err)
}

func TestClient_FeedbackTypes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/FeedbackType/GetFeedbackType", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"feedback_type_id": 1, "feedback_type_title": "Module End", "group": "Single", "is_staff": true}]`)
	})
	mux.HandleFunc("/api/FeedbackType/1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, `{
				"feedbackTypeTitle": "Module End", "group": "Single", "isModule": true,
				"questions": [{"question": "Pace?", "questionType": "MCQ"}]
			}`)
		case http.MethodPut:
			var body feedbackTypeDTO
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Multiple", body.Group)
			assert.Equal(t, []templateQuestionDTO{{Text: "Pace?", Type: "mcq"}}, body.Questions)
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/api/FeedbackType/CheckEditable/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"isEditable": false}`)
	})
	mux.HandleFunc("/api/FeedbackType/CheckEditable/2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	cl := newTestClient(t, mux)
	ctx := context.Background()

	types, err := cl.ListFeedbackTypes(ctx, token)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, feedbacktype.Single, types[0].Group)
	assert.True(t, types[0].IsStaff)

	ft, err := cl.GetFeedbackType(ctx, token, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, ft.ID)
	assert.Equal(t, []feedbacktype.Question{{Text: "Pace?", Type: feedbacktype.MCQ}}, ft.Questions)

	upd := feedbacktype.UpdateFeedbackType{NewFeedbackType: feedbacktype.NewFeedbackType{
		Title:     "Module End",
		Group:     feedbacktype.Multiple,
		Questions: []feedbacktype.Question{{Text: "Pace?", Type: feedbacktype.MCQ}},
	}}
	require.NoError(t, cl.UpdateFeedbackType(ctx, token, 1, upd))

	editable, err := cl.CheckFeedbackTypeEditable(ctx, token, 1)
	require.NoError(t, err)
	assert.False(t, editable)

	_, err = cl.CheckFeedbackTypeEditable(ctx, token, 2)
	assert.True(t, IsSchemaError(err))
}

func TestClient_GetSchedule(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Feedback/GetByFeedback/9", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"feedbackId": 9, "feedbackTypeId": 2, "courseId": 10, "moduleId": 100, "staffId": null,
			"session": null, "startDate": "2024-01-01T00:00:00", "endDate": "2024-01-10T00:00:00", "status": "active",
			"feedbackGroups": [
				{"feedbackGroupId": 91, "groupId": 1, "staffId": 7},
				{"feedbackGroupId": 92, "groupId": 2, "staffId": 8}
			]
		}`)
	})
	mux.HandleFunc("/api/Feedback/GetByFeedback/8", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"feedbackId": 8, "feedbackTypeId": 1, "courseId": 10, "moduleId": 100, "staffId": null, "session": 2,
			"startDate": "2024-01-01", "endDate": "2024-01-10",
			"feedbackGroups": [{"feedbackGroupId": 81, "groupId": null, "staffId": 7}]
		}`)
	})
	cl := newTestClient(t, mux)
	ctx := context.Background()

	s, err := cl.GetSchedule(ctx, token, 9)
	require.NoError(t, err)
	assert.Nil(t, s.StaffID)
	assert.Equal(t, []schedule.FeedbackGroup{
		{FeedbackGroupID: 91, GroupID: 1, StaffID: 7},
		{FeedbackGroupID: 92, GroupID: 2, StaffID: 8},
	}, s.FeedbackGroups)

	s, err = cl.GetSchedule(ctx, token, 8)
	require.NoError(t, err)
	require.NotNil(t, s.StaffID)
	assert.Equal(t, 7, *s.StaffID)
	assert.Equal(t, 2, s.Session)
}

func TestClient_ListSchedules(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Feedback/GetFeedbackPaged", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("pageNumber"))
		assert.Equal(t, "5", r.URL.Query().Get("pageSize"))
		writeJSON(w, http.StatusOK, `{
			"data": [{"feedbackId": 1, "feedbackGroupId": 11, "courseName": "DAC", "staffName": null, "groupName": "A", "session": 1}],
			"totalCount": 6
		}`)
	})
	mux.HandleFunc("/api/StudentApi/FeedbackSubmit/11", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"submittedCount": 3, "remainingCount": 2}`)
	})
	cl := newTestClient(t, mux)
	ctx := context.Background()

	items, total, err := cl.ListSchedules(ctx, token, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].GroupName)
	assert.Empty(t, items[0].StaffName)

	counts, err := cl.SubmissionCounts(ctx, token, 11)
	require.NoError(t, err)
	assert.Equal(t, schedule.Counts{Submitted: 3, Remaining: 2}, counts)
}

func TestClient_Submission(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Feedback/GetScheduledFeedbackByStudent/S-01", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, `{"data": null, "totalCount": 0}`)
	})
	mux.HandleFunc("/api/QuestionAnswer/SubmitFeedbackAnswers", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"1": "Good", "2": float64(4)}, body["answers"])
		assert.Equal(t, "S-01", body["studentId"])
		writeJSON(w, http.StatusConflict, `{"message": "already submitted"}`)
	})
	mux.HandleFunc("/api/Feedback/GetSubmittedFeedbackDetailsForView/11/S-01", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"answers": [
			{"questionId": 1, "questionText": "Pace?", "answerText": "Good"},
			{"questionId": 2, "questionText": "Overall", "answerText": 4}
		]}`)
	})
	cl := newTestClient(t, mux)
	ctx := context.Background()

	items, total, err := cl.ListPending(ctx, token, "S-01", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	err = cl.SubmitAnswers(ctx, token, submission.Submission{
		FeedbackID:      1,
		FeedbackGroupID: 11,
		StudentID:       "S-01",
		Answers:         submission.Answers{1: submission.TextAnswer("Good"), 2: submission.RatingAnswer(4)},
	})
	assert.True(t, errors.Is(err, ErrConflict))

	answers, err := cl.ViewSubmission(ctx, token, 11, "S-01")
	require.NoError(t, err)
	assert.Equal(t, []submission.SubmittedAnswer{
		{QuestionID: 1, QuestionText: "Pace?", AnswerText: "Good"},
		{QuestionID: 2, QuestionText: "Overall", AnswerText: "4"},
	}, answers)
}

func TestClient_Roster(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/StudentApi/Submitted/11", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"student_rollno": 240001, "first_name": "A", "email": "A@X.IO"}, {"student_rollno": "R2"}]`)
	})
	mux.HandleFunc("/api/StudentApi/NotSubmitted/11", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"student_rollno": 1.5}]`)
	})
	cl := newTestClient(t, mux)
	ctx := context.Background()

	students, err := cl.ListSubmitted(ctx, token, 11)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "240001", students[0].RollNo)
	assert.Equal(t, "a@x.io", students[0].Email)
	assert.Equal(t, "R2", students[1].RollNo)

	_, err = cl.ListNotSubmitted(ctx, token, 11)
	assert.True(t, IsSchemaError(err))
}

func TestClient_Reports(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/FeedbackReport/PerFacultyFeedbackSummary", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "PG", q.Get("courseType"))
		assert.Equal(t, "10", q.Get("courseId"))
		assert.Equal(t, "1,3", q.Get("feedbackTypeIds"))
		writeJSON(w, http.StatusOK, `[{"staffName": "Jane Doe", "averageRating": null}]`)
	})
	mux.HandleFunc("/api/FeedbackReport/FacultyFeedbackSummary", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Jane Doe", body["staff_name"])
		assert.Equal(t, float64(11), body["feedbackGroupId"])
		writeJSON(w, http.StatusOK, `{"submitted": 4, "remaining": null, "rating": 3.5,
			"questions": [{"questionText": "Pace?", "questionType": "mcq", "excellent": 2, "poor": null}]}`)
	})
	mux.HandleFunc("/api/staff/7/scheduledFeedback", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"moduleName": "Java", "feedback_type_id": 1, "courseName": "DAC", "rating": null, "session": 2}]`)
	})
	cl := newTestClient(t, mux)
	ctx := context.Background()

	ratings, err := cl.PerFacultySummary(ctx, token, "PG", 10, "1,3")
	require.NoError(t, err)
	assert.Equal(t, []report.FacultyRating{{StaffName: "Jane Doe"}}, ratings)

	res, err := cl.FacultyFeedbackSummary(ctx, token, report.SummaryRequest{StaffName: "Jane Doe", FeedbackGroupID: 11})
	require.NoError(t, err)
	assert.Equal(t, report.SummaryResult{
		Submitted: 4,
		Rating:    3.5,
		Questions: []report.QuestionSummary{{QuestionText: "Pace?", QuestionType: "mcq", Excellent: 2}},
	}, res)

	scheds, err := cl.ListStaffSchedules(ctx, token, 7)
	require.NoError(t, err)
	assert.Equal(t, []schedule.StaffSchedule{{FeedbackTypeID: 1, CourseName: "DAC", ModuleName: "Java", Session: 2}}, scheds)
}
