// internal/model/quota.go
package model

import (
	"fmt"
	"time"
)

// QuotaState is the SMS allowance of a billing period.
// Available is always Total - Used, and no field is negative.
type QuotaState struct {
	Available int `json:"available"`
	Used      int `json:"used"`
	Total     int `json:"total"`
}

// NewQuotaState builds a consistent QuotaState, clamping negative inputs to
// zero and overuse to an empty allowance.
func NewQuotaState(total, used int) QuotaState {
	if total < 0 {
		total = 0
	}
	if used < 0 {
		used = 0
	}
	available := total - used
	if available < 0 {
		available = 0
	}
	return QuotaState{Available: available, Used: used, Total: total}
}

// Subscription is the billing row a tenant's quota comes from.
type Subscription struct {
	TenantID    int       `db:"tenant_id" json:"tenant_id"`
	Plan        string    `db:"plan" json:"plan"`
	SMSTotal    int       `db:"sms_total" json:"sms_total"`
	SMSUsed     int       `db:"sms_used" json:"sms_used"`
	PeriodStart time.Time `db:"period_start" json:"period_start"`
	PeriodEnd   time.Time `db:"period_end" json:"period_end"`
}

func (s *Subscription) Quota() QuotaState {
	return NewQuotaState(s.SMSTotal, s.SMSUsed)
}

// PeriodLabel renders the billing period for confirmation prompts,
// e.g. "Jan 2 - Feb 1, 2026".
func (s *Subscription) PeriodLabel() string {
	if s.PeriodStart.IsZero() || s.PeriodEnd.IsZero() {
		return "current period"
	}
	if s.PeriodStart.Year() == s.PeriodEnd.Year() {
		return fmt.Sprintf("%s - %s", s.PeriodStart.Format("Jan 2"), s.PeriodEnd.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s - %s", s.PeriodStart.Format("Jan 2, 2006"), s.PeriodEnd.Format("Jan 2, 2006"))
}
