package boiledrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/strmangle"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/session"
)

const sessionColumns = `id, profile_id, first_name, last_name, email, role, image,
	backend_token, remember_me, created_at, expires_at, last_seen_at`

var sessionOrderFields = []string{"created_at", "expires_at", "last_seen_at", "email", "role"}

// sessionRow is a row of the "session" table.
type sessionRow struct {
	ID           string      `boil:"id"`
	ProfileID    string      `boil:"profile_id"`
	FirstName    null.String `boil:"first_name"`
	LastName     null.String `boil:"last_name"`
	Email        string      `boil:"email"`
	Role         string      `boil:"role"`
	Image        null.String `boil:"image"`
	BackendToken []byte      `boil:"backend_token"`
	RememberMe   bool        `boil:"remember_me"`
	CreatedAt    time.Time   `boil:"created_at"`
	ExpiresAt    time.Time   `boil:"expires_at"`
	LastSeenAt   null.Time   `boil:"last_seen_at"`
}

func boil(rec session.Record) sessionRow {
	p := rec.Profile
	return sessionRow{
		ID:           rec.ID,
		ProfileID:    p.ID,
		FirstName:    null.NewString(p.FirstName, p.FirstName != ""),
		LastName:     null.NewString(p.LastName, p.LastName != ""),
		Email:        p.Email,
		Role:         string(p.Role),
		Image:        null.NewString(p.Image, p.Image != ""),
		BackendToken: rec.SealedToken,
		RememberMe:   rec.RememberMe,
		CreatedAt:    rec.CreatedAt.UTC(),
		ExpiresAt:    rec.ExpiresAt.UTC(),
		LastSeenAt:   null.NewTime(rec.LastSeenAt.UTC(), !rec.LastSeenAt.IsZero()),
	}
}

func (row sessionRow) unboil() session.Record {
	return session.Record{
		ID: row.ID,
		Profile: session.Profile{
			ID:        row.ProfileID,
			FirstName: row.FirstName.String,
			LastName:  row.LastName.String,
			Email:     row.Email,
			Role:      session.Role(row.Role),
			Image:     row.Image.String,
		},
		SealedToken: row.BackendToken,
		RememberMe:  row.RememberMe,
		CreatedAt:   row.CreatedAt,
		ExpiresAt:   row.ExpiresAt,
		LastSeenAt:  row.LastSeenAt.Time,
	}
}

type sessionRepository struct {
	exec core.DBExecutor
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(exec core.DBExecutor) *sessionRepository {
	return &sessionRepository{exec: exec}
}

func (repo sessionRepository) CreateSession(ctx context.Context, rec session.Record) error {
	row := boil(rec)
	_, err := queries.Raw(
		`INSERT INTO "session" (`+sessionColumns+`)
		VALUES (`+strmangle.Placeholders(true, 12, 1, 1)+`)`,
		row.ID, row.ProfileID, row.FirstName, row.LastName, row.Email, row.Role, row.Image,
		row.BackendToken, row.RememberMe, row.CreatedAt, row.ExpiresAt, row.LastSeenAt,
	).ExecContext(ctx, repo.exec)
	return errors.Wrap(err, "inserting session")
}

func (repo sessionRepository) GetSession(ctx context.Context, id string) (session.Record, error) {
	var row sessionRow
	err := queries.Raw(`SELECT `+sessionColumns+` FROM "session" WHERE id = $1`, id).Bind(ctx, repo.exec, &row)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return session.Record{}, session.ErrSessionNotFound
		}
		return session.Record{}, errors.Wrap(err, "selecting session")
	}
	return row.unboil(), nil
}

func (repo sessionRepository) TouchSession(ctx context.Context, id string, at time.Time) error {
	res, err := queries.Raw(`UPDATE "session" SET last_seen_at = $1 WHERE id = $2`, at.UTC(), id).ExecContext(ctx, repo.exec)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func (repo sessionRepository) QuerySessions(ctx context.Context, ordering []core.DBOrdering) ([]session.Record, error) {
	orderBy := core.OrderByClause(ordering, sessionOrderFields, "created_at DESC")

	var rows []sessionRow
	if err := queries.Raw(`SELECT `+sessionColumns+` FROM "session" ORDER BY `+orderBy).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "selecting sessions")
	}
	recs := make([]session.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.unboil())
	}
	return recs, nil
}

func (repo sessionRepository) DeleteSessionsByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := queries.Raw(
		`DELETE FROM "session" WHERE id IN (`+strmangle.Placeholders(true, len(ids), 1, 1)+`)`, args...,
	).ExecContext(ctx, repo.exec)
	return affected(res, err, "deleting sessions")
}

func (repo sessionRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error) {
	res, err := queries.Raw(`DELETE FROM "session" WHERE expires_at <= $1`, before.UTC()).ExecContext(ctx, repo.exec)
	return affected(res, err, "deleting expired sessions")
}

func affected(res sql.Result, err error, msg string) (int, error) {
	if err != nil {
		return 0, errors.Wrap(err, msg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, msg)
	}
	return int(n), nil
}
