package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/session"
)

var (
	contextTokenKey   = "sessionToken"
	contextSessionKey = "session"
	tokenAudience     = "mrejesho-ui"
)

// Claims represents the authorization claims transmitted via a JWT.
// The session itself (and the backend token) never leaves the server.
type Claims struct {
	jwt.StandardClaims
	SessionID string       `json:"sid"`
	Role      session.Role `json:"role"`
	Email     string       `json:"email,omitempty"`
}

func newClaims(conf *core.Config, sess session.Session) *Claims {
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   sess.Profile.ID,
			Audience:  tokenAudience,
			ExpiresAt: sess.ExpiresAt.Unix(),
			IssuedAt:  sess.CreatedAt.Unix(),
		},
		SessionID: sess.ID,
		Role:      sess.Profile.Role,
		Email:     sess.Profile.Email,
	}
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// GenerateToken generates a signed JWT token string for the session.
func GenerateToken(conf *core.Config, sess session.Session) (string, error) {
	jwtConf := newJWTConfig(conf)
	token := jwt.NewWithClaims(jwt.GetSigningMethod(jwtConf.SigningMethod), newClaims(conf, sess))

	ss, err := token.SignedString(jwtConf.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// sessionMiddleware resolves the session named by the JWT claims and stores it in the context.
// When optional, requests without a token go through anonymously.
func sessionMiddleware(svc *session.Service, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				if optional {
					return next(ctx)
				}
				return err
			}
			sess, err := svc.Resolve(ctx.Request().Context(), claims.SessionID)
			if err != nil {
				if errors.Cause(err) == session.ErrSessionNotFound {
					return errUnauthorized
				}
				return errors.Wrap(err, "resolving session")
			}
			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}

// currentSession is the single read path to the session of a request.
func currentSession(ctx echo.Context) (session.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(session.Session); ok {
		return sess, nil
	}
	return session.Session{}, errUnauthorized
}

// optionalSession returns the request session, or nil for anonymous requests.
func optionalSession(ctx echo.Context) *session.Session {
	if sess, err := currentSession(ctx); err == nil {
		return &sess
	}
	return nil
}
