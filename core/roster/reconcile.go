package roster

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrRosterMismatch = errors.New("roster mismatch")

// Reconcile checks that the two sides of p are disjoint and together cover the roster.
func Reconcile(p Partition, rosterSize int) error {
	var problems []string

	seen := make(map[string]bool, len(p.Submitted))
	for _, st := range p.Submitted {
		seen[st.RollNo] = true
	}
	var both []string
	for _, st := range p.NotSubmitted {
		if seen[st.RollNo] {
			both = append(both, st.RollNo)
		}
	}
	if len(both) > 0 {
		problems = append(problems, "in both lists: "+strings.Join(both, ", "))
	}

	if got := len(p.Submitted) + len(p.NotSubmitted); got != rosterSize {
		problems = append(problems, errors.Errorf("%d students listed, roster has %d", got, rosterSize).Error())
	}

	if len(problems) > 0 {
		return errors.Wrap(ErrRosterMismatch, strings.Join(problems, "; "))
	}
	return nil
}
