package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/smsleopard-activation/internal/errors"
	"github.com/unclebandit/smsleopard-activation/internal/model"
)

type EventRepositoryInterface interface {
	GetByID(ctx context.Context, tenantID, id int) (*model.Event, error)
	ListByIDs(ctx context.Context, tenantID int, ids []int) ([]model.Event, error)
	ListByTenant(ctx context.Context, tenantID int, kind string, offset, limit int) ([]model.Event, int, error)

	// SetActive is the bulk activation/deactivation update. It returns the
	// number of rows changed.
	SetActive(ctx context.Context, tenantID int, ids []int, active bool) (int, error)
}

type EventRepository struct {
	DB *sql.DB
}

const eventColumns = `id, tenant_id, name, kind, audience_override, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	var audience []byte
	if err := row.Scan(&e.ID, &e.TenantID, &e.Name, &e.Kind, &audience, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Audience = model.ParseAudienceRule(audience)
	return &e, nil
}

func (r *EventRepository) GetByID(ctx context.Context, tenantID, id int) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE tenant_id=$1 AND id=$2`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewEventNotFound(tenantID, id)
		}
		return nil, err
	}
	return e, nil
}

// ListByIDs returns the requested events in the order of ids. Any id that
// does not belong to the tenant yields ErrEventNotFound.
func (r *EventRepository) ListByIDs(ctx context.Context, tenantID int, ids []int) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE tenant_id=$1 AND id = ANY($2)`
	rows, err := r.DB.QueryContext(ctx, query, tenantID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int]model.Event, len(ids))
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		found[e.ID] = *e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(ids))
	for _, id := range ids {
		e, ok := found[id]
		if !ok {
			return nil, appErrors.NewEventNotFound(tenantID, id)
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *EventRepository) ListByTenant(ctx context.Context, tenantID int, kind string, offset, limit int) ([]model.Event, int, error) {
	where := ` WHERE tenant_id=$1`
	args := []any{tenantID}
	argPos := 2

	if kind != "" {
		where += fmt.Sprintf(" AND kind=$%d", argPos)
		args = append(args, kind)
		argPos++
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + eventColumns + ` FROM events` + where +
		fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	rows, err := r.DB.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *EventRepository) SetActive(ctx context.Context, tenantID int, ids []int, active bool) (int, error) {
	query := `
        UPDATE events
        SET is_active=$1, updated_at=NOW()
        WHERE tenant_id=$2 AND id = ANY($3) AND is_active <> $1
    `
	res, err := r.DB.ExecContext(ctx, query, active, tenantID, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

var _ EventRepositoryInterface = (*EventRepository)(nil)
