package engine

import (
	"errors"
	"fmt"

	"github.com/unclebandit/smsleopard-activation/internal/model"
)

type State string

const (
	StateIdle                State = "idle"
	StateEstimating          State = "estimating"
	StateProceed             State = "proceed"
	StatePendingConfirmation State = "pending_confirmation"
	StateConfirmed           State = "confirmed"
	StateCancelled           State = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid activation state transition")

// Flow tracks one batch through
//
//	idle -> estimating -> proceed
//	                   -> pending_confirmation -> confirmed | cancelled
//
// A Flow is not safe for concurrent use.
type Flow struct {
	state    State
	decision ActivationDecision
}

func NewFlow() *Flow {
	return &Flow{state: StateIdle}
}

// ResumeFlow rebuilds a flow that was left waiting for confirmation.
func ResumeFlow(decision ActivationDecision) *Flow {
	return &Flow{state: StatePendingConfirmation, decision: decision}
}

func (f *Flow) State() State { return f.state }

func (f *Flow) Decision() ActivationDecision { return f.decision }

// Plan estimates the batch and moves to proceed or pending_confirmation.
func (f *Flow) Plan(targets []model.Event, stats model.ClientPopulationStats, quota model.QuotaState, periodLabel string) (ActivationDecision, error) {
	if f.state != StateIdle {
		return ActivationDecision{}, f.invalid(StateEstimating)
	}
	f.state = StateEstimating

	f.decision = PlanActivation(targets, stats, quota, periodLabel)
	if f.decision.NeedsConfirmation() {
		f.state = StatePendingConfirmation
	} else {
		f.state = StateProceed
	}
	return f.decision, nil
}

// Confirm accepts the overrun.
func (f *Flow) Confirm() error {
	if f.state != StatePendingConfirmation {
		return f.invalid(StateConfirmed)
	}
	f.state = StateConfirmed
	return nil
}

// Cancel drops the batch without activating anything.
func (f *Flow) Cancel() error {
	if f.state != StatePendingConfirmation {
		return f.invalid(StateCancelled)
	}
	f.state = StateCancelled
	return nil
}

func (f *Flow) Done() bool {
	switch f.state {
	case StateProceed, StateConfirmed, StateCancelled:
		return true
	}
	return false
}

// Commits reports whether the flow ended in a state that activates targets.
func (f *Flow) Commits() bool {
	return f.state == StateProceed || f.state == StateConfirmed
}

func (f *Flow) invalid(to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.state, to)
}
