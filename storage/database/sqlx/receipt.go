package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/mrejesho/core/submission"
)

const uniqueViolation = "23505"

type receiptRow struct {
	ID              int          `db:"id"`
	FeedbackID      int          `db:"feedback_id"`
	FeedbackGroupID int          `db:"feedback_group_id"`
	StudentID       string       `db:"student_id"`
	Status          string       `db:"status"`
	ClaimedAt       time.Time    `db:"claimed_at"`
	ConfirmedAt     sql.NullTime `db:"confirmed_at"`
}

func (row receiptRow) receipt() submission.Receipt {
	r := submission.Receipt{
		ID:              row.ID,
		FeedbackID:      row.FeedbackID,
		FeedbackGroupID: row.FeedbackGroupID,
		StudentID:       row.StudentID,
		Status:          row.Status,
		ClaimedAt:       row.ClaimedAt,
	}
	if row.ConfirmedAt.Valid {
		t := row.ConfirmedAt.Time
		r.ConfirmedAt = &t
	}
	return r
}

type receiptRepository struct {
	db *sqlx.DB
}

var _ submission.ReceiptRepository = (*receiptRepository)(nil)

func NewReceiptRepository(db *sql.DB) *receiptRepository {
	return &receiptRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo receiptRepository) ClaimReceipt(ctx context.Context, r submission.Receipt, staleBefore time.Time) (submission.Receipt, error) {
	row := receiptRow{
		FeedbackID:      r.FeedbackID,
		FeedbackGroupID: r.FeedbackGroupID,
		StudentID:       r.StudentID,
		Status:          submission.ReceiptClaimed,
		ClaimedAt:       r.ClaimedAt.UTC(),
	}

	q, args, err := repo.db.BindNamed(`
		INSERT INTO submission_receipt (feedback_id, feedback_group_id, student_id, status, claimed_at)
		VALUES (:feedback_id, :feedback_group_id, :student_id, :status, :claimed_at)
		RETURNING id`, row)
	if err != nil {
		return submission.Receipt{}, errors.Wrap(err, "binding receipt")
	}
	err = repo.db.GetContext(ctx, &row.ID, q, args...)
	if err == nil {
		return row.receipt(), nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return submission.Receipt{}, errors.Wrap(err, "inserting receipt")
	}

	// take over a claim left behind by a failed submission
	err = repo.db.GetContext(ctx, &row.ID, `
		UPDATE submission_receipt SET claimed_at = $1
		WHERE feedback_id = $2 AND feedback_group_id = $3 AND student_id = $4
			AND status = $5 AND claimed_at < $6
		RETURNING id`,
		row.ClaimedAt, row.FeedbackID, row.FeedbackGroupID, row.StudentID, submission.ReceiptClaimed, staleBefore.UTC(),
	)
	switch {
	case err == sql.ErrNoRows:
		return submission.Receipt{}, submission.ErrAlreadySubmitted
	case err != nil:
		return submission.Receipt{}, errors.Wrap(err, "taking over receipt")
	}
	return row.receipt(), nil
}

func (repo receiptRepository) ConfirmReceipt(ctx context.Context, id int, at time.Time) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE submission_receipt SET status = $1, confirmed_at = $2 WHERE id = $3`,
		submission.ReceiptConfirmed, at.UTC(), id,
	)
	if err != nil {
		return errors.Wrap(err, "confirming receipt")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Errorf("receipt %d not found", id)
	}
	return nil
}

func (repo receiptRepository) ReleaseReceipt(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM submission_receipt WHERE id = $1 AND status = $2`, id, submission.ReceiptClaimed)
	return errors.Wrap(err, "releasing receipt")
}
