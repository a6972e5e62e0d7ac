package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/apps"
	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/schedule"
	"github.com/trezcool/mrejesho/core/session"
)

// signIn opens an admin session; the caller must close it with signOut.
func (cli *commandLine) signIn(ctx context.Context, email string) (session.Session, error) {
	pwd, err := cli.promptPassword()
	if err != nil {
		return session.Session{}, err
	}
	lr := session.LoginRequest{Email: email, Password: pwd}
	if err = lr.Validate(cli.validate); err != nil {
		return session.Session{}, err
	}
	sess, err := cli.sessionSvc.Login(ctx, lr)
	if err != nil {
		return session.Session{}, err
	}
	if !sess.IsAdmin() {
		cli.signOut(ctx, sess)
		return session.Session{}, core.ErrForbidden
	}
	return sess, nil
}

func (cli *commandLine) signOut(ctx context.Context, sess session.Session) {
	if err := cli.sessionSvc.Logout(ctx, sess.ID); err != nil {
		fmt.Fprintf(cli.out, "warning: %v\n", err)
	}
}

func (cli *commandLine) remind(email string, feedbackGroupID int) error {
	ctx := context.Background()
	sess, err := cli.signIn(ctx, email)
	if err != nil {
		return err
	}
	defer cli.signOut(ctx, sess)

	sent, err := cli.rosterSvc.Remind(ctx, sess, feedbackGroupID)
	if err != nil {
		return err
	}
	// async mail services must be drained before the process exits
	if w, ok := cli.mailSvc.(interface{ Wait() }); ok {
		w.Wait()
	}
	fmt.Fprintf(cli.out, "%d reminder(s) sent\n", sent)
	return nil
}

func (cli *commandLine) checkSchedule(email, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, "reading draft")
	}
	var draft schedule.Draft
	if err = json.Unmarshal(data, &draft); err != nil {
		return apps.NewArgumentError(fmt.Sprintf("%s is not a valid schedule draft: %v", file, err))
	}

	ctx := context.Background()
	sess, err := cli.signIn(ctx, email)
	if err != nil {
		return err
	}
	defer cli.signOut(ctx, sess)

	sched, err := cli.scheduleSvc.Check(ctx, sess, draft)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(sched, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s\nschedule is valid\n", out)
	return nil
}
