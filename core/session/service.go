package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core"
)

var (
	// errors
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrInvalidEmail    = errors.New("Invalid email.")
)

type (
	Repository interface {
		CreateSession(ctx context.Context, rec Record) error
		GetSession(ctx context.Context, id string) (Record, error)
		TouchSession(ctx context.Context, id string, at time.Time) error
		QuerySessions(ctx context.Context, ordering []core.DBOrdering) ([]Record, error)
		DeleteSessionsByID(ctx context.Context, ids ...string) (int, error)
		DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error)
	}

	// Gateway is the part of the feedback backend sessions need.
	Gateway interface {
		Login(ctx context.Context, email, password string) (LoginResult, error)
		ForgotPassword(ctx context.Context, email, password string) (string, error)
	}

	Service struct {
		repo        Repository
		gw          Gateway
		sealer      *Sealer
		ttl         time.Duration
		rememberTTL time.Duration
		nowFunc     func() time.Time
	}
)

func NewService(repo Repository, gw Gateway, conf *core.Config) *Service {
	return &Service{
		repo:        repo,
		gw:          gw,
		sealer:      NewSealer(conf.SecretKey),
		ttl:         conf.Server.JWTExpirationDelta,
		rememberTTL: conf.Server.JWTRememberExpirationDelta,
		nowFunc:     time.Now,
	}
}

// Login authenticates against the backend and opens a new Session.
func (svc *Service) Login(ctx context.Context, lr LoginRequest) (Session, error) {
	res, err := svc.gw.Login(ctx, lr.Email, lr.Password)
	if err != nil {
		return Session{}, errors.Wrap(err, "logging in to backend")
	}

	now := svc.nowFunc().UTC()
	ttl := svc.ttl
	if lr.RememberMe {
		ttl = svc.rememberTTL
	}
	sess := Session{
		ID:           uuid.New().String(),
		Profile:      res.Profile,
		BackendToken: res.Token,
		RememberMe:   lr.RememberMe,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastSeenAt:   now,
	}

	sealed, err := svc.sealer.Seal(sess.BackendToken)
	if err != nil {
		return Session{}, errors.Wrap(err, "sealing backend token")
	}
	rec := Record{
		ID:          sess.ID,
		Profile:     sess.Profile,
		SealedToken: sealed,
		RememberMe:  sess.RememberMe,
		CreatedAt:   sess.CreatedAt,
		ExpiresAt:   sess.ExpiresAt,
		LastSeenAt:  sess.LastSeenAt,
	}
	if err = svc.repo.CreateSession(ctx, rec); err != nil {
		return Session{}, errors.Wrap(err, "creating session")
	}
	return sess, nil
}

// Resolve loads the live Session with the given ID.
func (svc *Service) Resolve(ctx context.Context, id string) (Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Session{}, ErrSessionNotFound
	}
	rec, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrSessionNotFound {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, errors.Wrap(err, "getting session")
	}

	now := svc.nowFunc().UTC()
	if !rec.ExpiresAt.After(now) {
		return Session{}, ErrSessionNotFound
	}
	sess, err := svc.unseal(rec)
	if err != nil {
		return Session{}, err
	}
	if err = svc.repo.TouchSession(ctx, id, now); err != nil {
		return Session{}, errors.Wrap(err, "touching session")
	}
	sess.LastSeenAt = now
	return sess, nil
}

func (svc *Service) unseal(rec Record) (Session, error) {
	token, err := svc.sealer.Open(rec.SealedToken)
	if err != nil {
		return Session{}, errors.Wrapf(err, "session %s", rec.ID)
	}
	return Session{
		ID:           rec.ID,
		Profile:      rec.Profile,
		BackendToken: token,
		RememberMe:   rec.RememberMe,
		CreatedAt:    rec.CreatedAt,
		ExpiresAt:    rec.ExpiresAt,
		LastSeenAt:   rec.LastSeenAt,
	}, nil
}

// Logout closes the Session. It is the only way to end a Session before it expires.
func (svc *Service) Logout(ctx context.Context, id string) error {
	if _, err := svc.repo.DeleteSessionsByID(ctx, id); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

// Purge deletes the Sessions that expired before the given time.
func (svc *Service) Purge(ctx context.Context, before time.Time) (int, error) {
	cnt, err := svc.repo.DeleteExpiredSessions(ctx, before.UTC())
	return cnt, errors.Wrap(err, "deleting expired sessions")
}

// Query lists stored Sessions. Backend tokens are not unsealed.
func (svc *Service) Query(ctx context.Context, ordering []core.DBOrdering) ([]Session, error) {
	recs, err := svc.repo.QuerySessions(ctx, ordering)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	sessions := make([]Session, 0, len(recs))
	for _, rec := range recs {
		sessions = append(sessions, Session{
			ID:         rec.ID,
			Profile:    rec.Profile,
			RememberMe: rec.RememberMe,
			CreatedAt:  rec.CreatedAt,
			ExpiresAt:  rec.ExpiresAt,
			LastSeenAt: rec.LastSeenAt,
		})
	}
	return sessions, nil
}

// ForgotPassword resets the password of the account with the given email.
func (svc *Service) ForgotPassword(ctx context.Context, fr ForgotPasswordRequest) (string, error) {
	msg, err := svc.gw.ForgotPassword(ctx, fr.Email, fr.Password)
	if err != nil {
		return "", errors.Wrap(err, "resetting password")
	}
	if msg == ErrInvalidEmail.Error() {
		return "", core.NewValidationError(ErrInvalidEmail, core.FieldError{Field: "email", Error: msg})
	}
	return msg, nil
}
