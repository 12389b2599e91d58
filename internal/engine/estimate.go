// Package engine decides whether a batch of events or campaigns can be
// switched on within a tenant's SMS quota.
//
// Everything here is pure: callers pass in population and quota snapshots
// and receive a decision. Persisting the decision is up to the caller.
package engine

import "github.com/unclebandit/smsleopard-activation/internal/model"

// EstimateRequiredRecipients returns how many clients rule is expected to
// reach. The result is always within [0, stats.Total].
func EstimateRequiredRecipients(rule model.AudienceRule, stats model.ClientPopulationStats) int {
	total := stats.ClientCount()

	switch rule.Kind {
	case model.AudienceGender:
		return stats.GenderBucket()
	case model.AudienceTags:
		// Overlapping tags are counted once per tag, hence the cap.
		sum := 0
		for _, id := range rule.TagIDs {
			n := stats.TagCount(id)
			if n >= total-sum {
				return total
			}
			sum += n
		}
		return sum
	case model.AudienceBirthday:
		return stats.BirthdaysPerDay()
	default:
		return total
	}
}

// CanActivate reports whether requiredSMS fits in the remaining allowance.
func CanActivate(requiredSMS int, quota model.QuotaState) bool {
	available := quota.Available
	if available < 0 {
		available = 0
	}
	return requiredSMS <= available
}
