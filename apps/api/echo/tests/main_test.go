package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/trezcool/mrejesho/apps/api/echo"
	"github.com/trezcool/mrejesho/apps/shared"
	"github.com/trezcool/mrejesho/core"
	appfs "github.com/trezcool/mrejesho/fs"
	backendapi "github.com/trezcool/mrejesho/services/backend"
	emailsvc "github.com/trezcool/mrejesho/services/email"
	"github.com/trezcool/mrejesho/storage/database/inmem"
	"github.com/trezcool/mrejesho/tests"
)

const password = "s3cret-pwd"

// backend accounts, by email
var accounts = map[string]string{
	"admin@x.io":   `{"id": 1, "first_name": "Ada", "last_name": "Okafor", "email": "admin@x.io", "role": "Admin"}`,
	"staff@x.io":   `{"id": 7, "first_name": "Juma", "last_name": "Mwangi", "email": "staff@x.io", "role": "Trainer"}`,
	"student@x.io": `{"id": 240001, "first_name": "Amina", "last_name": "Hassan", "email": "Student@X.io", "role": "Student"}`,
}

var (
	errMissingToken   = httpErr{Error: "missing or malformed jwt"}
	errNotAuthed      = httpErr{Error: "user not authenticated"}
	errPermDenied     = httpErr{Error: "permission denied"}
	errBackendPayload = httpErr{Error: "unexpected backend response"}
)

type testApp struct {
	*Server
	backend *testutil.Backend
	mail    *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) *testApp {
	t.Helper()

	backend := testutil.NewBackend(t)
	backend.Handle("Login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string
			Password string
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		usr, ok := accounts[creds.Email]
		switch {
		case !ok:
			testutil.WriteJSON(w, http.StatusUnauthorized, `{"title": "Unauthorized"}`)
		case creds.Password != password:
			testutil.WriteJSON(w, http.StatusBadRequest, `{"message": "Incorrect password."}`)
		default:
			testutil.WriteJSON(w, http.StatusOK, fmt.Sprintf(`{"message": "Login successful", "token": "tok-%s", "user": %s}`, creds.Email, usr))
		}
	})

	conf := testutil.Config(backend.URL())
	logger := testutil.NopLogger{}

	tmpls, err := core.ParseEmailTemplates(appfs.FS, conf)
	require.NoError(t, err)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, tmpls, logger)

	db := inmemdb.NewDB()
	validate, translator := shared.NewValidator()
	svcs := shared.NewServices(
		conf,
		logger,
		validate,
		shared.Repositories{
			Session: inmemdb.NewSessionRepository(db),
			Receipt: inmemdb.NewReceiptRepository(db),
		},
		backendapi.NewClient(conf.Backend),
		mailSvc,
	)

	server := NewServer(ServerDeps{
		Conf:            conf,
		Logger:          logger,
		Validate:        validate,
		Translator:      translator,
		SessionSvc:      svcs.Session,
		AcademicSvc:     svcs.Academic,
		FeedbackTypeSvc: svcs.FeedbackType,
		ScheduleSvc:     svcs.Schedule,
		RosterSvc:       svcs.Roster,
		SubmissionSvc:   svcs.Submission,
		ReportSvc:       svcs.Report,
	})
	return &testApp{Server: server, backend: backend, mail: mailSvc}
}

// login signs in as one of the accounts and returns the app token.
func (app *testApp) login(t *testing.T, email string) string {
	t.Helper()
	req, rec := newRequest(http.MethodPost, "/v1/session/login", marshallObj(t, map[string]string{"email": email, "password": password}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v (body %s)", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
