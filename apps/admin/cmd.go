package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/mrejesho/apps"
	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/roster"
	"github.com/trezcool/mrejesho/core/schedule"
	"github.com/trezcool/mrejesho/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db          *sql.DB
	validate    *validator.Validate
	sessionSvc  *session.Service
	scheduleSvc *schedule.Service
	rosterSvc   *roster.Service
	mailSvc     core.EmailService
	out         io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...] - run a migrations command (up, down, status, redo, version...)")
	fmt.Fprintln(cli.out, "  sessions [-ordering FIELDS] - list the stored sessions")
	fmt.Fprintln(cli.out, "  purgesessions [-before DATETIME] - delete the sessions expired before DATETIME (default: now)")
	fmt.Fprintln(cli.out, "  remind -feedback-group ID -email EMAIL - email the students yet to submit a feedback group")
	fmt.Fprintln(cli.out, "  checkschedule -file PATH -email EMAIL - check a schedule draft against the backend reference data")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "sessions":
		cmd := cli.newFlagSet("sessions")
		ordering := cmd.String("ordering", "-created_at", "Comma separated fields to order by; prefix with - for descending.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listSessions(*ordering)

	case "purgesessions":
		cmd := cli.newFlagSet("purgesessions")
		before := cmd.String("before", "", "RFC3339 date time; sessions expired before it are deleted (default: now).")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.purgeSessions(*before)

	case "remind":
		cmd := cli.newFlagSet("remind")
		groupID := cmd.Int("feedback-group", 0, "The feedback group ID.")
		email := cmd.String("email", "", "The admin account to sign in with. The password will be prompted next.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *groupID <= 0 || *email == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.remind(*email, *groupID)

	case "checkschedule":
		cmd := cli.newFlagSet("checkschedule")
		file := cmd.String("file", "", "Path of the JSON schedule draft.")
		email := cmd.String("email", "", "The admin account to sign in with. The password will be prompted next.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *file == "" || *email == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.checkSchedule(*email, *file)

	default:
		cli.printUsage()
		return errHelp
	}
}

// promptPassword reads a password from the terminal without echoing it.
func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", apps.NewArgumentError("a password is required")
	}
	return string(pwd), nil
}
