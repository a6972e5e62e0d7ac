package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mrejesho/core"
)

type fakeGateway struct {
	res    LoginResult
	err    error
	resMsg string
}

func (gw *fakeGateway) Login(_ context.Context, _, _ string) (LoginResult, error) {
	return gw.res, gw.err
}

func (gw *fakeGateway) ForgotPassword(_ context.Context, _, _ string) (string, error) {
	return gw.resMsg, gw.err
}

type memRepo struct {
	mu   sync.Mutex
	recs map[string]Record
}

func newMemRepo() *memRepo {
	return &memRepo{recs: make(map[string]Record)}
}

func (r *memRepo) CreateSession(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.ID] = rec
	return nil
}

func (r *memRepo) GetSession(_ context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return Record{}, ErrSessionNotFound
	}
	return rec, nil
}

func (r *memRepo) TouchSession(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.recs[id]
	rec.LastSeenAt = at
	r.recs[id] = rec
	return nil
}

func (r *memRepo) QuerySessions(context.Context, []core.DBOrdering) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := make([]Record, 0, len(r.recs))
	for _, rec := range r.recs {
		recs = append(recs, rec)
	}
	return recs, nil
}

func (r *memRepo) DeleteSessionsByID(_ context.Context, ids ...string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cnt := 0
	for _, id := range ids {
		if _, ok := r.recs[id]; ok {
			delete(r.recs, id)
			cnt++
		}
	}
	return cnt, nil
}

func (r *memRepo) DeleteExpiredSessions(_ context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cnt := 0
	for id, rec := range r.recs {
		if rec.ExpiresAt.Before(before) {
			delete(r.recs, id)
			cnt++
		}
	}
	return cnt, nil
}

func newTestService(gw Gateway) (*Service, *memRepo) {
	repo := newMemRepo()
	conf := &core.Config{SecretKey: "secret"}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.JWTRememberExpirationDelta = 24 * time.Hour
	return NewService(repo, gw, conf), repo
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		want    Role
		wantErr bool
	}{
		{name: "Admin", want: RoleAdmin},
		{name: " trainer ", want: RoleStaff},
		{name: "Staff", want: RoleStaff},
		{name: "STUDENT", want: RoleStudent},
		{name: "guest", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := ParseRole(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestSealer(t *testing.T) {
	sealer := NewSealer("secret")

	sealed, err := sealer.Seal("bearer-token")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "bearer-token")

	token, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "bearer-token", token)

	_, err = NewSealer("other").Open(sealed)
	assert.Error(t, err)
	_, err = sealer.Open([]byte("short"))
	assert.Error(t, err)
}

func TestService_LoginResolveLogout(t *testing.T) {
	gw := &fakeGateway{res: LoginResult{
		Token:   "bearer-token",
		Profile: Profile{ID: "7", FirstName: "Ada", LastName: "Lovelace", Email: "ada@test.test", Role: RoleStaff},
	}}
	svc, repo := newTestService(gw)
	ctx := context.Background()

	sess, err := svc.Login(ctx, LoginRequest{Email: "ada@test.test", Password: "pwd"})
	require.NoError(t, err)
	assert.Equal(t, "bearer-token", sess.BackendToken)
	assert.Equal(t, time.Hour, sess.ExpiresAt.Sub(sess.CreatedAt))
	assert.True(t, sess.IsStaff())
	assert.Equal(t, "Ada Lovelace", sess.Profile.FullName())

	rec := repo.recs[sess.ID]
	assert.NotContains(t, string(rec.SealedToken), "bearer-token")

	got, err := svc.Resolve(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "bearer-token", got.BackendToken)
	assert.Equal(t, sess.Profile, got.Profile)

	require.NoError(t, svc.Logout(ctx, sess.ID))
	_, err = svc.Resolve(ctx, sess.ID)
	assert.Equal(t, ErrSessionNotFound, err)
}

func TestService_LoginRememberMe(t *testing.T) {
	svc, _ := newTestService(&fakeGateway{res: LoginResult{Token: "t", Profile: Profile{ID: "1", Role: RoleAdmin}}})

	sess, err := svc.Login(context.Background(), LoginRequest{Email: "a@test.test", Password: "pwd", RememberMe: true})
	require.NoError(t, err)
	assert.True(t, sess.RememberMe)
	assert.Equal(t, 24*time.Hour, sess.ExpiresAt.Sub(sess.CreatedAt))
}

func TestService_LoginBackendError(t *testing.T) {
	backendErr := errors.New("boom")
	svc, repo := newTestService(&fakeGateway{err: backendErr})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@test.test", Password: "pwd"})
	assert.Equal(t, backendErr, errors.Cause(err))
	assert.Empty(t, repo.recs)
}

func TestService_Resolve(t *testing.T) {
	svc, _ := newTestService(&fakeGateway{res: LoginResult{Token: "t", Profile: Profile{ID: "1", Role: RoleStudent}}})
	ctx := context.Background()

	sess, err := svc.Login(ctx, LoginRequest{Email: "a@test.test", Password: "pwd"})
	require.NoError(t, err)

	t.Run("invalid id", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "lol")
		assert.Equal(t, ErrSessionNotFound, err)
	})
	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "0b5a1f0c-5d2e-4a6b-9f37-8f8a3c0c6d11")
		assert.Equal(t, ErrSessionNotFound, err)
	})
	t.Run("expired", func(t *testing.T) {
		svc.nowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.nowFunc = time.Now }()
		_, err := svc.Resolve(ctx, sess.ID)
		assert.Equal(t, ErrSessionNotFound, err)
	})
}

func TestService_Purge(t *testing.T) {
	svc, repo := newTestService(&fakeGateway{res: LoginResult{Token: "t", Profile: Profile{ID: "1", Role: RoleStudent}}})
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Email: "a@test.test", Password: "pwd"})
	require.NoError(t, err)
	kept, err := svc.Login(ctx, LoginRequest{Email: "a@test.test", Password: "pwd", RememberMe: true})
	require.NoError(t, err)

	cnt, err := svc.Purge(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, cnt)
	assert.Len(t, repo.recs, 1)

	sessions, err := svc.Query(ctx, nil)
	require.NoError(t, err)
	if assert.Len(t, sessions, 1) {
		assert.Equal(t, kept.ID, sessions[0].ID)
		assert.Empty(t, sessions[0].BackendToken)
	}
}

func TestService_ForgotPassword(t *testing.T) {
	gw := &fakeGateway{resMsg: "Invalid email."}
	svc, _ := newTestService(gw)
	ctx := context.Background()

	_, err := svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "x@test.test", Password: "secret1"})
	assert.True(t, core.IsValidationError(err))

	gw.resMsg = "Password updated successfully."
	msg, err := svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "x@test.test", Password: "secret1"})
	assert.NoError(t, err)
	assert.Equal(t, "Password updated successfully.", msg)
}

func TestForgotPasswordRequest_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	fr := ForgotPasswordRequest{Email: " X@Test.Test ", Password: "abc"}
	err := fr.Validate(validate)
	assert.Error(t, err)
	assert.Equal(t, "x@test.test", fr.Email)

	fr.Password = "abcdef"
	assert.NoError(t, fr.Validate(validate))
}
