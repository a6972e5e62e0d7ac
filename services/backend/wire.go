package backendapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
)

// flexID is an identifier the backend sends either as a number or as a string.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(core.CleanString(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Errorf("id must be a number or a string, got %s", data)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return errors.Errorf("id must be an integer, got %s", data)
	}
	*id = flexID(n.String())
	return nil
}

// page is a paginated list response.
type pageBody struct {
	Data       json.RawMessage `json:"data"`
	TotalCount int             `json:"totalCount" validate:"gte=0"`
}

func decodePage(endpoint string, body pageBody, out interface{}) error {
	if len(body.Data) == 0 || bytes.Equal(body.Data, []byte("null")) {
		return nil
	}
	return decode(endpoint, body.Data, out)
}

type message struct {
	Message string `json:"message"`
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func itemErr(item int, err error) error {
	return errors.Wrapf(err, "item %d", item)
}

// flexText is a text the backend may send as a string, a number or null.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = flexText(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.Errorf("expected a text or a number, got %s", data)
		}
		*t = flexText(n.String())
	}
	return nil
}
