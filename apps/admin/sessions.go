package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/trezcool/mrejesho/apps"
	"github.com/trezcool/mrejesho/core"
)

// parseOrdering reads "-created_at,email" as created_at DESC, email ASC.
func parseOrdering(s string) []core.DBOrdering {
	var ords []core.DBOrdering
	for _, fld := range strings.Split(s, ",") {
		fld = core.CleanString(fld, true /* lower */)
		if fld == "" || fld == "-" {
			continue
		}
		if strings.HasPrefix(fld, "-") {
			ords = append(ords, core.DBOrdering{Field: fld[1:]})
		} else {
			ords = append(ords, core.DBOrdering{Field: fld, Ascending: true})
		}
	}
	return ords
}

func (cli *commandLine) listSessions(ordering string) error {
	sessions, err := cli.sessionSvc.Query(context.Background(), parseOrdering(ordering))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tROLE\tCREATED\tEXPIRES\tLAST SEEN")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Profile.Email, s.Profile.Role,
			s.CreatedAt.Format(time.RFC3339), s.ExpiresAt.Format(time.RFC3339), s.LastSeenAt.Format(time.RFC3339),
		)
	}
	if err = w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d session(s)\n", len(sessions))
	return nil
}

func (cli *commandLine) purgeSessions(before string) error {
	t := time.Now()
	if before != "" {
		var err error
		if t, err = time.Parse(time.RFC3339, before); err != nil {
			return apps.NewArgumentError(fmt.Sprintf("-before must be an RFC3339 date time (got %q)", before))
		}
	}
	cnt, err := cli.sessionSvc.Purge(context.Background(), t)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d expired session(s) deleted\n", cnt)
	return nil
}
