package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	echoapi "github.com/trezcool/mrejesho/apps/api/echo"
	"github.com/trezcool/mrejesho/apps/shared"
	"github.com/trezcool/mrejesho/core"
	backendapi "github.com/trezcool/mrejesho/services/backend"
	"github.com/trezcool/mrejesho/storage/database"
	boiledrepos "github.com/trezcool/mrejesho/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/mrejesho/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// set up loggers
	logger := shared.NewLogger("API", conf)
	dbLogger := shared.NewLogger("DB", conf)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	mailSvc, err := shared.NewMailService(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up mail service: %v", err), err)
	}
	validate, translator := shared.NewValidator()
	svcs := shared.NewServices(
		conf,
		logger,
		validate,
		shared.Repositories{
			Session: boiledrepos.NewSessionRepository(db),
			Receipt: sqlxrepos.NewReceiptRepository(db),
		},
		backendapi.NewClient(conf.Backend),
		mailSvc,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - backend client metrics.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	http.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
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
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
