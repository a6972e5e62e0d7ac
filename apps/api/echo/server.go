package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/academic"
	"github.com/trezcool/mrejesho/core/feedbacktype"
	"github.com/trezcool/mrejesho/core/report"
	"github.com/trezcool/mrejesho/core/roster"
	"github.com/trezcool/mrejesho/core/schedule"
	"github.com/trezcool/mrejesho/core/session"
	"github.com/trezcool/mrejesho/core/submission"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		SessionSvc      *session.Service
		AcademicSvc     *academic.Service
		FeedbackTypeSvc *feedbacktype.Service
		ScheduleSvc     *schedule.Service
		RosterSvc       *roster.Service
		SubmissionSvc   *submission.Service
		ReportSvc       *report.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		shutdown chan os.Signal
		errors   chan error
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(corsConfig(conf.Server.AllowedOrigins)))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	jwtConf := newJWTConfig(conf)
	optJWTConf := jwtConf
	optJWTConf.Skipper = skipWithoutToken

	auth := authMiddlewares{
		required: []echo.MiddlewareFunc{
			middleware.JWTWithConfig(jwtConf),
			sessionMiddleware(s.deps.SessionSvc, false),
		},
		optional: []echo.MiddlewareFunc{
			middleware.JWTWithConfig(optJWTConf),
			sessionMiddleware(s.deps.SessionSvc, true),
		},
	}

	v1 := s.app.Group("/v1")
	registerSessionAPI(v1, auth, s.deps.Conf, s.deps.SessionSvc, s.deps.Validate)
	registerAcademicAPI(v1, auth, s.deps.AcademicSvc, s.deps.Validate)
	registerFeedbackTypeAPI(v1, auth, s.deps.FeedbackTypeSvc, s.deps.Validate)
	registerScheduleAPI(v1, auth, s.deps.ScheduleSvc, s.deps.RosterSvc)
	registerReportAPI(v1, auth, s.deps.ReportSvc, s.deps.ScheduleSvc)
	registerStudentAPI(v1, auth, s.deps.SubmissionSvc, s.deps.Validate)
}

// authMiddlewares holds the middleware chains of authenticated and optionally authenticated routes.
type authMiddlewares struct {
	required []echo.MiddlewareFunc
	optional []echo.MiddlewareFunc
}

// with returns the required chain followed by m.
func (a authMiddlewares) with(m ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	chain := make([]echo.MiddlewareFunc, 0, len(a.required)+len(m))
	chain = append(chain, a.required...)
	return append(chain, m...)
}

func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Mrejesho API!")
}
