package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/mrejesho/core"
	"github.com/trezcool/mrejesho/core/session"
)

type sessionRepository struct {
	db *sessionTable
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *DB) *sessionRepository {
	return &sessionRepository{db: db.session}
}

func (repo *sessionRepository) CreateSession(_ context.Context, rec session.Record) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.table[rec.ID] = rec
	return nil
}

func (repo *sessionRepository) GetSession(_ context.Context, id string) (session.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	if rec, ok := repo.db.table[id]; ok {
		return rec, nil
	}
	return session.Record{}, session.ErrSessionNotFound
}

func (repo *sessionRepository) TouchSession(_ context.Context, id string, at time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	rec, ok := repo.db.table[id]
	if !ok {
		return session.ErrSessionNotFound
	}
	rec.LastSeenAt = at
	repo.db.table[id] = rec
	return nil
}

// QuerySessions sorts by the first known ordering field, or by creation date (newest first).
func (repo *sessionRepository) QuerySessions(_ context.Context, ordering []core.DBOrdering) ([]session.Record, error) {
	repo.db.mutex.RLock()
	recs := make([]session.Record, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		recs = append(recs, rec)
	}
	repo.db.mutex.RUnlock()

	ord := core.DBOrdering{Field: "created_at"}
	for _, o := range ordering {
		if _, ok := sessionSortKeys[o.Field]; ok {
			ord = o
			break
		}
	}
	less := sessionSortKeys[ord.Field]
	sort.SliceStable(recs, func(i, j int) bool {
		if ord.Ascending {
			return less(recs[i], recs[j])
		}
		return less(recs[j], recs[i])
	})
	return recs, nil
}

var sessionSortKeys = map[string]func(a, b session.Record) bool{
	"created_at":   func(a, b session.Record) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"expires_at":   func(a, b session.Record) bool { return a.ExpiresAt.Before(b.ExpiresAt) },
	"last_seen_at": func(a, b session.Record) bool { return a.LastSeenAt.Before(b.LastSeenAt) },
	"email":        func(a, b session.Record) bool { return a.Profile.Email < b.Profile.Email },
	"role":         func(a, b session.Record) bool { return a.Profile.Role < b.Profile.Role },
}

func (repo *sessionRepository) DeleteSessionsByID(_ context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}

func (repo *sessionRepository) DeleteExpiredSessions(_ context.Context, before time.Time) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	n := 0
	for id, rec := range repo.db.table {
		if !rec.ExpiresAt.After(before) {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}
