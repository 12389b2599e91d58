// internal/model/activation.go
package model

import "time"

// ActivationRequest is a batch activation waiting for the user to confirm a
// quota overrun. It is discarded once confirmed, cancelled or expired.
type ActivationRequest struct {
	ID          string    `json:"id"`
	TenantID    int       `json:"tenant_id"`
	EventIDs    []int     `json:"event_ids"`
	PeriodLabel string    `json:"period_label"`
	SMSRequired int       `json:"sms_required"`
	Available   int       `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (r *ActivationRequest) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// ActivationCommitted is published once a batch has been switched on.
type ActivationCommitted struct {
	RequestID   string `json:"request_id"`
	TenantID    int    `json:"tenant_id"`
	EventIDs    []int  `json:"event_ids"`
	SMSRequired int    `json:"sms_required"`
	Confirmed   bool   `json:"confirmed"`
}

const (
	OutcomeProceeded = "proceeded"
	OutcomeConfirmed = "confirmed"
)

// ActivationRecord is the audit row the worker writes per committed batch.
type ActivationRecord struct {
	ID          int       `db:"id" json:"id"`
	RequestID   string    `db:"request_id" json:"request_id"`
	TenantID    int       `db:"tenant_id" json:"tenant_id"`
	EventIDs    []int     `db:"event_ids" json:"event_ids"`
	SMSRequired int       `db:"sms_required" json:"sms_required"`
	Outcome     string    `db:"outcome" json:"outcome"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

func NewActivationRecord(msg ActivationCommitted) *ActivationRecord {
	outcome := OutcomeProceeded
	if msg.Confirmed {
		outcome = OutcomeConfirmed
	}
	return &ActivationRecord{
		RequestID:   msg.RequestID,
		TenantID:    msg.TenantID,
		EventIDs:    msg.EventIDs,
		SMSRequired: msg.SMSRequired,
		Outcome:     outcome,
	}
}
