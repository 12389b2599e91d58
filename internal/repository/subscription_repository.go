package repository

import (
	"context"
	"database/sql"

	appErrors "github.com/unclebandit/smsleopard-activation/internal/errors"
	"github.com/unclebandit/smsleopard-activation/internal/model"
)

type SubscriptionRepositoryInterface interface {
	GetByTenant(ctx context.Context, tenantID int) (*model.Subscription, error)
	ListTenantIDs(ctx context.Context) ([]int, error)
}

type SubscriptionRepository struct {
	DB *sql.DB
}

// GetByTenant returns the tenant's current subscription, i.e. the one whose
// billing period is the latest to start.
func (r *SubscriptionRepository) GetByTenant(ctx context.Context, tenantID int) (*model.Subscription, error) {
	query := `
        SELECT tenant_id, plan, sms_total, sms_used, period_start, period_end
        FROM subscriptions
        WHERE tenant_id=$1
        ORDER BY period_start DESC
        LIMIT 1
    `
	var s model.Subscription
	err := r.DB.QueryRowContext(ctx, query, tenantID).Scan(&s.TenantID, &s.Plan, &s.SMSTotal, &s.SMSUsed, &s.PeriodStart, &s.PeriodEnd)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewSubscriptionNotFound(tenantID)
		}
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) ListTenantIDs(ctx context.Context) ([]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT DISTINCT tenant_id FROM subscriptions ORDER BY tenant_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ SubscriptionRepositoryInterface = (*SubscriptionRepository)(nil)
