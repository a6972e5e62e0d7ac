package shared

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/academic"
	"github.com/trezcool/mrejesho/core/feedbacktype"
	"github.com/trezcool/mrejesho/core/report"
	"github.com/trezcool/mrejesho/core/roster"
	"github.com/trezcool/mrejesho/core/schedule"
	"github.com/trezcool/mrejesho/core/session"
	"github.com/trezcool/mrejesho/core/submission"
	appfs "github.com/trezcool/mrejesho/fs"
	backendapi "github.com/trezcool/mrejesho/services/backend"
	emailsvc "github.com/trezcool/mrejesho/services/email"
	logsvc "github.com/trezcool/mrejesho/services/logger"
)

type (
	Repositories struct {
		Session session.Repository
		Receipt submission.ReceiptRepository
	}

	Services struct {
		Session      *session.Service
		Academic     *academic.Service
		FeedbackType *feedbacktype.Service
		Schedule     *schedule.Service
		Roster       *roster.Service
		Submission   *submission.Service
		Report       *report.Service
	}
)

// NewLogger returns a Rollbar logger printing to stdout with the given prefix. Rollbar is off in debug mode.
func NewLogger(prefix string, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, prefix+" : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	return logger
}

// NewMailService parses the embedded email templates and returns the console service in debug mode,
// SendGrid otherwise.
func NewMailService(conf *core.Config, logger core.Logger) (core.EmailService, error) {
	tmpls, err := core.ParseEmailTemplates(appfs.FS, conf)
	if err != nil {
		return nil, errors.Wrap(err, "parsing email templates")
	}
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, tmpls, logger), nil
	}
	return emailsvc.NewSendgridService(conf, tmpls, logger), nil
}

// NewServices wires the domain services over the backend client.
func NewServices(
	conf *core.Config,
	logger core.Logger,
	validate *validator.Validate,
	repos Repositories,
	backend *backendapi.Client,
	mailSvc core.EmailService,
) Services {
	return Services{
		Session:      session.NewService(repos.Session, backend, conf),
		Academic:     academic.NewService(backend),
		FeedbackType: feedbacktype.NewService(backend, logger),
		Schedule:     schedule.NewService(backend, validate, logger),
		Roster:       roster.NewService(backend, mailSvc, logger),
		Submission:   submission.NewService(repos.Receipt, backend, logger),
		Report:       report.NewService(backend),
	}
}
