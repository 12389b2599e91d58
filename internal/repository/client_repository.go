package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/smsleopard-activation/internal/errors"
	"github.com/unclebandit/smsleopard-activation/internal/model"
)

// ClientRepositoryInterface defines methods used by service
type ClientRepositoryInterface interface {
	PopulationStats(ctx context.Context, tenantID int) (*model.ClientPopulationStats, error)
	GetByID(ctx context.Context, tenantID, id int) (*model.Client, error)
	ListByTenant(ctx context.Context, tenantID, offset, limit int) ([]model.Client, int, error)
}

// ClientRepository is the concrete implementation
type ClientRepository struct {
	DB *sql.DB
}

const clientSelect = `
        SELECT c.id, c.tenant_id, c.phone, COALESCE(c.first_name, ''), COALESCE(c.last_name, ''),
               COALESCE(c.gender, ''), c.birthday,
               COALESCE(array_agg(ct.tag_id ORDER BY ct.tag_id) FILTER (WHERE ct.tag_id IS NOT NULL), '{}')
        FROM clients c
        LEFT JOIN client_tags ct ON ct.client_id = c.id
    `

func scanClient(row rowScanner) (*model.Client, error) {
	var c model.Client
	var tags []string
	if err := row.Scan(&c.ID, &c.TenantID, &c.Phone, &c.FirstName, &c.LastName, &c.Gender, &c.Birthday, pq.Array(&tags)); err != nil {
		return nil, err
	}
	c.TagIDs = tags
	if c.TagIDs == nil {
		c.TagIDs = []string{}
	}
	return &c, nil
}

// PopulationStats counts a tenant's clients overall and per tag.
func (r *ClientRepository) PopulationStats(ctx context.Context, tenantID int) (*model.ClientPopulationStats, error) {
	stats := &model.ClientPopulationStats{TagCounts: map[string]int{}}

	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE tenant_id = $1`, tenantID).Scan(&stats.Total)
	if err != nil {
		return nil, err
	}

	query := `
        SELECT ct.tag_id, COUNT(DISTINCT ct.client_id)
        FROM client_tags ct
        JOIN clients c ON c.id = ct.client_id
        WHERE c.tenant_id = $1
        GROUP BY ct.tag_id
    `
	rows, err := r.DB.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tagID string
		var count int
		if err := rows.Scan(&tagID, &count); err != nil {
			return nil, err
		}
		stats.TagCounts[tagID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetByID loads one client with its tags.
func (r *ClientRepository) GetByID(ctx context.Context, tenantID, id int) (*model.Client, error) {
	query := clientSelect + ` WHERE c.tenant_id=$1 AND c.id=$2 GROUP BY c.id`
	c, err := scanClient(r.DB.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewClientNotFound(tenantID, id)
		}
		return nil, err
	}
	return c, nil
}

// ListByTenant returns one page of clients, newest first, and the total count.
func (r *ClientRepository) ListByTenant(ctx context.Context, tenantID, offset, limit int) ([]model.Client, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE tenant_id=$1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := clientSelect + ` WHERE c.tenant_id=$1 GROUP BY c.id ORDER BY c.id DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	clients := []model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

var _ ClientRepositoryInterface = (*ClientRepository)(nil)
