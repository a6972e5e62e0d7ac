package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the calendar date format exchanged with the backend and the UI.
const DateLayout = "2006-01-02"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ParseDate parses the leading YYYY-MM-DD part of s, so that both "2024-01-05" and
// "2024-01-05T00:00:00" are accepted.
func ParseDate(s string) (time.Time, error) {
	s = CleanString(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	return time.Parse(DateLayout, s)
}

// Today returns the current calendar date (UTC, midnight).
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormID is an entity id as sent by a form: a JSON number, a numeric string, "" or null.
// Zero means unset.
type FormID int

func (id *FormID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s = CleanString(s); s == "" {
			*id = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return errors.Errorf("invalid id %s", data)
	}
	*id = FormID(n)
	return nil
}
