package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Monkachunkaa/tote-storage-api/internal/usecase"
)

var ErrNotFound = errors.New("not found")

// MySQLFollowUpRepo stores post-payment side effects that failed and need
// a human: the one piece of local durable state this service keeps.
//
// Schema:
//
//	CREATE TABLE followups (
//	    id                 VARCHAR(36) PRIMARY KEY,
//	    payment_intent_id  VARCHAR(64)  NOT NULL,
//	    customer_id        VARCHAR(64)  NOT NULL,
//	    reason             VARCHAR(64)  NOT NULL,
//	    details            TEXT         NOT NULL,
//	    status             VARCHAR(16)  NOT NULL DEFAULT 'OPEN',
//	    created_at         DATETIME     NOT NULL,
//	    resolved_at        DATETIME     NULL
//	);
type MySQLFollowUpRepo struct{ db *sql.DB }

func NewMySQLFollowUpRepo(db *sql.DB) *MySQLFollowUpRepo { return &MySQLFollowUpRepo{db: db} }

func (r *MySQLFollowUpRepo) Insert(ctx context.Context, f *usecase.FollowUp) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO followups (id,payment_intent_id,customer_id,reason,details,status,created_at)
VALUES (?,?,?,?,?,'OPEN',NOW())
`, f.ID, f.PaymentIntentID, f.CustomerID, f.Reason, f.Details)
	return err
}

func (r *MySQLFollowUpRepo) ListOpen(ctx context.Context) ([]*usecase.FollowUp, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,payment_intent_id,customer_id,reason,details
FROM followups WHERE status='OPEN' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*usecase.FollowUp
	for rows.Next() {
		var f usecase.FollowUp
		if err := rows.Scan(&f.ID, &f.PaymentIntentID, &f.CustomerID, &f.Reason, &f.Details); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (r *MySQLFollowUpRepo) Resolve(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE followups SET status='RESOLVED', resolved_at=NOW()
WHERE id=? AND status='OPEN'`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

var _ usecase.FollowUpRepo = (*MySQLFollowUpRepo)(nil)
