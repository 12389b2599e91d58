package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/smsleopard-activation/internal/engine"
	"github.com/unclebandit/smsleopard-activation/internal/model"
)

func sampleStats() model.ClientPopulationStats {
	return model.ClientPopulationStats{
		Total:     1000,
		TagCounts: map[string]int{"vip": 40, "new": 25, "all_regulars": 990},
	}
}

func TestEstimateRequiredRecipients(t *testing.T) {
	stats := sampleStats()

	tests := []struct {
		name string
		rule model.AudienceRule
		want int
	}{
		{"all", model.AllClients(), 1000},
		{"zero value defaults to all", model.AudienceRule{}, 1000},
		{"unknown kind defaults to all", model.AudienceRule{Kind: "lookalike"}, 1000},
		{"gender", model.ByGender(model.GenderMale), 500},
		{"tags", model.ByTags("vip", "new"), 65},
		{"missing tag counts zero", model.ByTags("vip", "ghost"), 40},
		{"tags capped at total", model.ByTags("all_regulars", "vip"), 1000},
		{"no tags", model.ByTags(), 0},
		{"birthday", model.BirthdayHeuristic(), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.EstimateRequiredRecipients(tt.rule, stats))
		})
	}
}

func TestEstimateBoundsAndPurity(t *testing.T) {
	rules := []model.AudienceRule{
		model.AllClients(),
		model.ByGender(model.GenderFemale),
		model.ByTags("vip", "new", "all_regulars"),
		model.BirthdayHeuristic(),
	}
	populations := []model.ClientPopulationStats{
		{},
		{Total: 1},
		{Total: 7, TagCounts: map[string]int{"vip": 9}},
		{Total: -20, TagCounts: map[string]int{"vip": -4}},
		{Total: math.MaxInt, TagCounts: map[string]int{"vip": math.MaxInt - 1, "new": 5}},
		sampleStats(),
	}

	for _, stats := range populations {
		for _, rule := range rules {
			got := engine.EstimateRequiredRecipients(rule, stats)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, stats.ClientCount())
			assert.Equal(t, got, engine.EstimateRequiredRecipients(rule, stats))
		}
		assert.Equal(t, stats.ClientCount(), engine.EstimateRequiredRecipients(model.AllClients(), stats))
	}
}

func TestHugePopulationsDoNotOverflow(t *testing.T) {
	stats := model.ClientPopulationStats{Total: math.MaxInt, TagCounts: map[string]int{"vip": math.MaxInt - 1, "new": 5}}

	assert.Equal(t, math.MaxInt/2+1, engine.EstimateRequiredRecipients(model.ByGender(model.GenderMale), stats))
	assert.Equal(t, math.MaxInt/365+1, engine.EstimateRequiredRecipients(model.BirthdayHeuristic(), stats))
	assert.Equal(t, math.MaxInt, engine.EstimateRequiredRecipients(model.ByTags("vip", "new"), stats))

	targets := []model.Event{
		{ID: 1, Audience: model.AllClients()},
		{ID: 2, Audience: model.AllClients()},
	}
	assert.Equal(t, math.MaxInt, engine.RequiredSMS(targets, stats))

	decision := engine.PlanActivation(targets, stats, model.QuotaState{Available: 10}, "Oct")
	assert.Equal(t, engine.OutcomeNeedsConfirmation, decision.Outcome)
	assert.Equal(t, math.MaxInt, decision.SMSRequired)
}

func TestCanActivate(t *testing.T) {
	q := model.NewQuotaState(1000, 950)

	assert.True(t, engine.CanActivate(0, q))
	assert.True(t, engine.CanActivate(q.Available, q))
	assert.False(t, engine.CanActivate(q.Available+1, q))

	// a malformed negative allowance behaves like an empty one
	assert.True(t, engine.CanActivate(0, model.QuotaState{Available: -3}))
	assert.False(t, engine.CanActivate(1, model.QuotaState{Available: -3}))
}

func TestPlanActivation(t *testing.T) {
	stats := sampleStats()
	quota := model.QuotaState{Available: 50, Used: 950, Total: 1000}

	t.Run("over quota needs confirmation", func(t *testing.T) {
		targets := []model.Event{
			{ID: 7, Audience: model.ByTags("vip", "new")},
		}
		d := engine.PlanActivation(targets, stats, quota, "March 2026")
		assert.Equal(t, engine.OutcomeNeedsConfirmation, d.Outcome)
		assert.Equal(t, 65, d.SMSRequired)
		assert.Equal(t, []int{7}, d.TargetIDs)
		assert.Equal(t, "March 2026", d.PeriodLabel)
	})

	t.Run("within quota proceeds", func(t *testing.T) {
		targets := []model.Event{
			{ID: 7, Audience: model.ByTags("vip")},
		}
		d := engine.PlanActivation(targets, stats, quota, "March 2026")
		assert.Equal(t, engine.OutcomeProceed, d.Outcome)
		assert.Equal(t, 40, d.SMSRequired)
		assert.Equal(t, []int{7}, d.TargetIDs)
		assert.Empty(t, d.PeriodLabel)
	})

	t.Run("sums across targets without dedup", func(t *testing.T) {
		targets := []model.Event{
			{ID: 3, Audience: model.ByTags("vip")},
			{ID: 1, Audience: model.BirthdayHeuristic()},
			{ID: 2, Audience: model.ByTags("vip")},
		}
		d := engine.PlanActivation(targets, stats, quota, "")
		assert.Equal(t, 83, d.SMSRequired)
		assert.Equal(t, []int{3, 1, 2}, d.TargetIDs)
		assert.True(t, d.NeedsConfirmation())
	})

	t.Run("boundary", func(t *testing.T) {
		targets := []model.Event{{ID: 1, Audience: model.ByTags("vip")}}
		assert.Equal(t, engine.OutcomeProceed, engine.PlanActivation(targets, stats, model.NewQuotaState(40, 0), "").Outcome)
		assert.Equal(t, engine.OutcomeNeedsConfirmation, engine.PlanActivation(targets, stats, model.NewQuotaState(39, 0), "").Outcome)
	})

	t.Run("empty batch proceeds", func(t *testing.T) {
		d := engine.PlanActivation(nil, stats, model.QuotaState{}, "")
		assert.Equal(t, engine.OutcomeProceed, d.Outcome)
		assert.Equal(t, 0, d.SMSRequired)
		assert.Empty(t, d.TargetIDs)
	})
}

func TestFlow(t *testing.T) {
	stats := sampleStats()
	quota := model.QuotaState{Available: 50, Used: 950, Total: 1000}
	over := []model.Event{{ID: 1, Audience: model.AllClients()}}
	under := []model.Event{{ID: 2, Audience: model.BirthdayHeuristic()}}

	t.Run("proceed is terminal", func(t *testing.T) {
		f := engine.NewFlow()
		assert.Equal(t, engine.StateIdle, f.State())

		d, err := f.Plan(under, stats, quota, "")
		require.NoError(t, err)
		assert.Equal(t, engine.OutcomeProceed, d.Outcome)
		assert.Equal(t, engine.StateProceed, f.State())
		assert.True(t, f.Done())
		assert.True(t, f.Commits())

		assert.ErrorIs(t, f.Confirm(), engine.ErrInvalidTransition)
		assert.ErrorIs(t, f.Cancel(), engine.ErrInvalidTransition)
		_, err = f.Plan(under, stats, quota, "")
		assert.ErrorIs(t, err, engine.ErrInvalidTransition)
	})

	t.Run("confirm", func(t *testing.T) {
		f := engine.NewFlow()
		d, err := f.Plan(over, stats, quota, "this month")
		require.NoError(t, err)
		assert.True(t, d.NeedsConfirmation())
		assert.Equal(t, engine.StatePendingConfirmation, f.State())
		assert.False(t, f.Done())
		assert.False(t, f.Commits())

		require.NoError(t, f.Confirm())
		assert.Equal(t, engine.StateConfirmed, f.State())
		assert.True(t, f.Commits())
		assert.ErrorIs(t, f.Cancel(), engine.ErrInvalidTransition)
	})

	t.Run("cancel", func(t *testing.T) {
		f := engine.NewFlow()
		_, err := f.Plan(over, stats, quota, "this month")
		require.NoError(t, err)

		require.NoError(t, f.Cancel())
		assert.Equal(t, engine.StateCancelled, f.State())
		assert.True(t, f.Done())
		assert.False(t, f.Commits())
		assert.ErrorIs(t, f.Confirm(), engine.ErrInvalidTransition)
	})

	t.Run("idle cannot confirm", func(t *testing.T) {
		assert.ErrorIs(t, engine.NewFlow().Confirm(), engine.ErrInvalidTransition)
	})

	t.Run("resume", func(t *testing.T) {
		d := engine.ActivationDecision{Outcome: engine.OutcomeNeedsConfirmation, TargetIDs: []int{1}, SMSRequired: 1000}
		f := engine.ResumeFlow(d)
		assert.Equal(t, engine.StatePendingConfirmation, f.State())
		assert.Equal(t, d, f.Decision())
		require.NoError(t, f.Confirm())
	})
}
