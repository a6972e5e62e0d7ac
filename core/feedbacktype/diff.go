package feedbacktype

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// lines renders the editable content of a template, one attribute per line.
func (ft FeedbackType) lines() []string {
	lines := []string{
		fmt.Sprintf("title: %s\n", ft.Title),
		fmt.Sprintf("description: %s\n", ft.Description),
		fmt.Sprintf("isModule: %t\n", ft.IsModule),
		fmt.Sprintf("group: %s\n", ft.Group),
		fmt.Sprintf("isStaff: %t\n", ft.IsStaff),
		fmt.Sprintf("isSession: %t\n", ft.IsSession),
		fmt.Sprintf("behaviour: %t\n", ft.Behaviour),
	}
	for i, q := range ft.Questions {
		lines = append(lines, fmt.Sprintf("question %d: [%s] %s\n", i+1, q.Type, strings.TrimSpace(q.Text)))
	}
	return lines
}

// Diff returns a unified diff from stored to updated, empty when nothing changed.
func Diff(stored, updated FeedbackType) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        stored.lines(),
		B:        updated.lines(),
		FromFile: fmt.Sprintf("feedbacktype/%d", stored.ID),
		ToFile:   fmt.Sprintf("feedbacktype/%d (update)", updated.ID),
		Context:  1,
	})
}
