package inmemdb

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core/submission"
)

type receiptRepository struct {
	db *receiptTable
}

var _ submission.ReceiptRepository = (*receiptRepository)(nil)

func NewReceiptRepository(db *DB) *receiptRepository {
	return &receiptRepository{db: db.receipt}
}

func (repo *receiptRepository) ClaimReceipt(_ context.Context, r submission.Receipt, staleBefore time.Time) (submission.Receipt, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := receiptKey{r.FeedbackID, r.FeedbackGroupID, r.StudentID}
	if id, ok := repo.db.keys[key]; ok {
		existing := repo.db.table[id]
		if existing.Status != submission.ReceiptClaimed || !existing.ClaimedAt.Before(staleBefore) {
			return submission.Receipt{}, submission.ErrAlreadySubmitted
		}
		existing.ClaimedAt = r.ClaimedAt
		return *existing, nil
	}

	repo.db.pk++
	r.ID = repo.db.pk
	r.Status = submission.ReceiptClaimed
	r.ConfirmedAt = nil
	repo.db.table[r.ID] = &r
	repo.db.keys[key] = r.ID
	return r, nil
}

func (repo *receiptRepository) ConfirmReceipt(_ context.Context, id int, at time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	r, ok := repo.db.table[id]
	if !ok {
		return errors.Errorf("receipt %d not found", id)
	}
	r.Status = submission.ReceiptConfirmed
	r.ConfirmedAt = &at
	return nil
}

func (repo *receiptRepository) ReleaseReceipt(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	r, ok := repo.db.table[id]
	if !ok || r.Status != submission.ReceiptClaimed {
		return nil
	}
	delete(repo.db.keys, receiptKey{r.FeedbackID, r.FeedbackGroupID, r.StudentID})
	delete(repo.db.table, id)
	return nil
}
