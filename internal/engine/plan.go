package engine

import (
	"math"

	"github.com/unclebandit/smsleopard-activation/internal/model"
)

type Outcome string

const (
	OutcomeProceed           Outcome = "proceed"
	OutcomeNeedsConfirmation Outcome = "needs_confirmation"
)

// ActivationDecision is the result of planning a batch activation.
// PeriodLabel is only set when confirmation is needed.
type ActivationDecision struct {
	Outcome     Outcome `json:"decision"`
	TargetIDs   []int   `json:"event_ids"`
	SMSRequired int     `json:"sms_required"`
	PeriodLabel string  `json:"period_label,omitempty"`
}

func (d ActivationDecision) NeedsConfirmation() bool {
	return d.Outcome == OutcomeNeedsConfirmation
}

// RequiredSMS sums the per-target estimates. Targets sharing recipients are
// not deduplicated. The sum saturates at math.MaxInt.
func RequiredSMS(targets []model.Event, stats model.ClientPopulationStats) int {
	total := 0
	for _, t := range targets {
		n := EstimateRequiredRecipients(t.Audience, stats)
		if n > math.MaxInt-total {
			return math.MaxInt
		}
		total += n
	}
	return total
}

// PlanActivation decides whether targets can be activated straight away or
// need the user to accept a quota overrun first. It mutates nothing.
func PlanActivation(targets []model.Event, stats model.ClientPopulationStats, quota model.QuotaState, periodLabel string) ActivationDecision {
	required := RequiredSMS(targets, stats)
	ids := model.EventIDs(targets)

	if CanActivate(required, quota) {
		return ActivationDecision{
			Outcome:     OutcomeProceed,
			TargetIDs:   ids,
			SMSRequired: required,
		}
	}
	return ActivationDecision{
		Outcome:     OutcomeNeedsConfirmation,
		TargetIDs:   ids,
		SMSRequired: required,
		PeriodLabel: periodLabel,
	}
}
