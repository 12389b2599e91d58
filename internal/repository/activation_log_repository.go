package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/unclebandit/smsleopard-activation/internal/model"
)

type ActivationLogRepositoryInterface interface {
	Create(ctx context.Context, rec *model.ActivationRecord) error
}

type ActivationLogRepository struct {
	DB *sql.DB
}

// Create inserts an audit row. Redelivered messages hit the unique
// request_id and are ignored, so the worker can ack them safely.
func (r *ActivationLogRepository) Create(ctx context.Context, rec *model.ActivationRecord) error {
	rec.CreatedAt = time.Now()

	query := `
        INSERT INTO activation_log (request_id, tenant_id, event_ids, sms_required, outcome, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (request_id) DO NOTHING
        RETURNING id
    `
	err := r.DB.QueryRowContext(
		ctx,
		query,
		rec.RequestID,
		rec.TenantID,
		pq.Array(rec.EventIDs),
		rec.SMSRequired,
		rec.Outcome,
		rec.CreatedAt,
	).Scan(&rec.ID)
	if err == sql.ErrNoRows {
		return nil
	}
	return err
}

var _ ActivationLogRepositoryInterface = (*ActivationLogRepository)(nil)
