package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/mrejesho/apps/shared"
	"github.com/trezcool/mrejesho/core"
	backendapi "github.com/trezcool/mrejesho/services/backend"
	"github.com/trezcool/mrejesho/storage/database"
	boiledrepos "github.com/trezcool/mrejesho/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/mrejesho/storage/database/sqlx"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger := shared.NewLogger("ADMIN", conf)

	// set up DB
	db, err := database.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	// set up services
	mailSvc, err := shared.NewMailService(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up mail service: %v", err), err)
	}
	validate, _ := shared.NewValidator()
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

	// start CLI
	cli := commandLine{
		db:          db,
		validate:    validate,
		sessionSvc:  svcs.Session,
		scheduleSvc: svcs.Schedule,
		rosterSvc:   svcs.Roster,
		mailSvc:     mailSvc,
		out:         os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
