package tests

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mrejesho/tests"
)

const pendingPage = `{
	"data": [{"feedbackId": 9, "feedbackGroupId": 31, "feedbackTypeId": 4, "feedbackTypeName": "Module End",
		"courseName": "DAC", "moduleName": "Java", "staffName": "Juma Mwangi", "session": 1,
		"startDate": "2030-01-01", "endDate": "2030-01-05"}],
	"totalCount": 1
}`

func serveStudentFeedback(b *testutil.Backend) {
	b.JSON("Feedback/GetScheduledFeedbackByStudent/240001", http.StatusOK, pendingPage)
	b.JSON("Feedback/GetSubmittedFeedbackHistory/240001", http.StatusOK, `{"data": [], "totalCount": 0}`)
	b.JSON("QuestionAnswer/GetAllQuestions/4", http.StatusOK, `[
		{"question_id": 1, "question": "How was the pace?", "question_type": "rating"},
		{"question_id": 2, "question": "Overall?", "question_type": "MCQ"},
		{"question_id": 3, "question": "Comments", "question_type": "descriptive"}
	]`)
}

func Test_studentApi_lists(t *testing.T) {
	app := setup(t)
	serveStudentFeedback(app.backend)
	token := app.login(t, "student@x.io")

	t.Run("pending", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/me/pending?page=1&page_size=10", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res struct {
			Items []struct {
				FeedbackGroupID int    `json:"feedbackGroupId"`
				CourseName      string `json:"courseName"`
			} `json:"data"`
			Empty bool `json:"empty"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Len(t, res.Items, 1)
		assert.Equal(t, 31, res.Items[0].FeedbackGroupID)
		assert.Equal(t, "DAC", res.Items[0].CourseName)
		assert.False(t, res.Empty)
	})

	t.Run("empty history", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/me/history", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res struct {
			Empty   bool   `json:"empty"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.True(t, res.Empty)
		assert.Equal(t, "No submitted feedback found", res.Message)
	})
}

func Test_studentApi_submit(t *testing.T) {
	app := setup(t)
	serveStudentFeedback(app.backend)

	var (
		mu       sync.Mutex
		received []map[string]interface{}
	)
	app.backend.Handle("QuestionAnswer/SubmitFeedbackAnswers", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		received = append(received, payload)
		mu.Unlock()
		testutil.WriteJSON(w, http.StatusOK, `{"message": "Feedback submitted successfully"}`)
	})
	token := app.login(t, "student@x.io")

	app.run(t, []httpTest{
		{
			name:     "missing group",
			method:   http.MethodPost,
			path:     "/v1/me/submissions",
			token:    token,
			body:     []byte(`{"answers": {"1": 5}}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"feedbackGroupId": "this field is required"}`),
		},
		{
			name:     "unknown group",
			method:   http.MethodPost,
			path:     "/v1/me/submissions",
			token:    token,
			body:     []byte(`{"feedbackGroupId": 99, "answers": {"1": 5}}`),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "incomplete answers",
			method:   http.MethodPost,
			path:     "/v1/me/submissions",
			token:    token,
			body:     []byte(`{"feedbackGroupId": 31, "answers": {"1": 6, "2": "Good", "3": "  "}}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "Please fill out all the questions."}),
		},
		{
			name:     "submitted",
			method:   http.MethodPost,
			path:     "/v1/me/submissions",
			token:    token,
			body:     []byte(`{"feedbackGroupId": 31, "answers": {"1": 4, "2": "Good", "3": " Well paced. ", "7": "ignored"}}`),
			wantCode: http.StatusCreated,
			wantData: []byte(`{
				"feedbackId": 9, "feedbackGroupId": 31, "studentId": "240001",
				"answers": {"1": 4, "2": "Good", "3": "Well paced."}
			}`),
		},
		{
			name:     "submitted twice",
			method:   http.MethodPost,
			path:     "/v1/me/submissions",
			token:    token,
			body:     []byte(`{"feedbackGroupId": 31, "answers": {"1": 4, "2": "Good", "3": "Again"}}`),
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: "feedback already submitted"}),
		},
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "240001", received[0]["studentId"])
	assert.Equal(t, 9.0, received[0]["feedbackId"])
}

func Test_studentApi_submitConflict(t *testing.T) {
	app := setup(t)
	serveStudentFeedback(app.backend)
	app.backend.JSON("QuestionAnswer/SubmitFeedbackAnswers", http.StatusConflict, `{"message": "Already submitted"}`)
	token := app.login(t, "student@x.io")

	body := []byte(`{"feedbackGroupId": 31, "answers": {"1": 3, "2": "Poor", "3": "Too fast"}}`)
	app.run(t, []httpTest{
		{
			name:     "backend conflict",
			method:   http.MethodPost,
			path:     "/v1/me/submissions",
			token:    token,
			body:     body,
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: "feedback already submitted"}),
		},
		{
			name:     "receipt kept",
			method:   http.MethodPost,
			path:     "/v1/me/submissions",
			token:    token,
			body:     body,
			wantCode: http.StatusConflict,
			wantData: marshallObj(t, httpErr{Error: "feedback already submitted"}),
		},
	})
	assert.Equal(t, 1, app.backend.Calls("QuestionAnswer/SubmitFeedbackAnswers"))
}

func Test_studentApi_submitBackendFailure(t *testing.T) {
	app := setup(t)
	serveStudentFeedback(app.backend)
	app.backend.JSON("QuestionAnswer/SubmitFeedbackAnswers", http.StatusInternalServerError, `{"message": "Database unavailable"}`)
	token := app.login(t, "student@x.io")

	body := []byte(`{"feedbackGroupId": 31, "answers": {"1": 3, "2": "Poor", "3": "Too fast"}}`)
	tt := httpTest{
		method:   http.MethodPost,
		path:     "/v1/me/submissions",
		token:    token,
		body:     body,
		wantCode: http.StatusBadGateway,
		wantData: marshallObj(t, httpErr{Error: "Database unavailable"}),
	}
	tt.name = "first attempt"
	app.run(t, []httpTest{tt})

	// the receipt is released, so retrying reaches the backend again
	tt.name = "retry"
	app.run(t, []httpTest{tt})
	assert.Equal(t, 2, app.backend.Calls("QuestionAnswer/SubmitFeedbackAnswers"))
}
