// internal/model/event.go
package model

import "time"

// Event kinds. Automatic events and manual campaigns share one table and one
// activation flow.
const (
	KindBirthday  = "birthday"
	KindHoliday   = "holiday"
	KindRecurring = "recurring"
	KindCampaign  = "campaign"
)

type Event struct {
	ID        int          `db:"id" json:"id"`
	TenantID  int          `db:"tenant_id" json:"tenant_id"`
	Name      string       `db:"name" json:"name"`
	Kind      string       `db:"kind" json:"kind"`
	Audience  AudienceRule `db:"audience_override" json:"audience_override"`
	IsActive  bool         `db:"is_active" json:"is_active"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time   `db:"updated_at" json:"updated_at,omitempty"`
}

// EventIDs returns the ids of events in order.
func EventIDs(events []Event) []int {
	ids := make([]int, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
