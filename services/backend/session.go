package backendapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/session"
)

const (
	invalidCredentials = "Invalid email or password."
	loginSuccessful    = "login successful"
)

var _ session.Gateway = (*Client)(nil)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginUser struct {
	ID        flexID `json:"id" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role" validate:"required"`
	Image     string `json:"image"`
}

type loginResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    *loginUser `json:"user"`
}

// Login signs in to the backend. Rejected credentials give a *core.ValidationError with the backend's message.
func (cl *Client) Login(ctx context.Context, email, password string) (session.LoginResult, error) {
	const endpoint = "Login"

	var (
		res    loginResponse
		apiErr *APIError
	)
	err := cl.do(ctx, post(endpoint, "Login", credentials{email, password}), &res)
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		return session.LoginResult{}, rejectedLogin(apiErr.Message)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, core.ErrNotFound):
		return session.LoginResult{}, rejectedLogin("")
	case err != nil:
		return session.LoginResult{}, err
	}

	if res.Token == "" || res.User == nil {
		// a 2xx carrying its own failure message is a rejection, anything else is a broken response
		if res.Message != "" && !loginSucceeded(res.Message) {
			return session.LoginResult{}, rejectedLogin(res.Message)
		}
		return session.LoginResult{}, &SchemaError{Endpoint: endpoint, Err: errors.New("token and user are required")}
	}
	if err = checkShape(res.User); err != nil {
		return session.LoginResult{}, &SchemaError{Endpoint: endpoint, Err: err}
	}
	role, err := session.ParseRole(res.User.Role)
	if err != nil {
		return session.LoginResult{}, &SchemaError{Endpoint: endpoint, Err: err}
	}

	return session.LoginResult{
		Message: res.Message,
		Token:   res.Token,
		Profile: session.Profile{
			ID:        string(res.User.ID),
			FirstName: res.User.FirstName,
			LastName:  res.User.LastName,
			Email:     core.CleanString(res.User.Email, true /* lower */),
			Role:      role,
			Image:     res.User.Image,
		},
	}, nil
}

func loginSucceeded(msg string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(msg)), loginSuccessful)
}

func rejectedLogin(msg string) error {
	if msg == "" {
		msg = invalidCredentials
	}
	return core.NewValidationError(errors.New(msg))
}

func (cl *Client) ForgotPassword(ctx context.Context, email, password string) (string, error) {
	var res message
	if err := cl.do(ctx, post("Forgot-Password", "Forgot-Password", credentials{email, password}), &res); err != nil {
		return "", err
	}
	return res.Message, nil
}
