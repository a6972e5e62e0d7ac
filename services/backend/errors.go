package backendapi

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
)

const fallbackMessage = "request failed"

var (
	ErrUnauthorized = errors.New("backend token rejected")
	ErrConflict     = core.ErrConflict
)

// APIError is a failed backend call that maps to no sentinel error.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Endpoint, e.Status, e.UserMessage())
}

// UserMessage returns the backend's message, or a generic one.
func (e *APIError) UserMessage() string {
	if e.Message == "" {
		return fallbackMessage
	}
	return e.Message
}

// SchemaError is a backend response that does not have the expected shape.
type SchemaError struct {
	Endpoint string
	Err      error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected %s response: %v", e.Endpoint, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

func statusError(endpoint string, status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return core.ErrForbidden
	case http.StatusNotFound:
		return core.ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}
	return &APIError{Endpoint: endpoint, Status: status, Message: errorMessage(body)}
}
