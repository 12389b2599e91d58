// internal/model/client.go
package model

import "time"

type Client struct {
	ID        int        `db:"id" json:"id"`
	TenantID  int        `db:"tenant_id" json:"tenant_id"`
	Phone     string     `db:"phone" json:"phone"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Gender    string     `db:"gender" json:"gender,omitempty"`
	Birthday  *time.Time `db:"birthday" json:"birthday,omitempty"`
	TagIDs    []string   `db:"-" json:"tag_ids"`
}

// ClientPopulationStats is a read-only snapshot of a tenant's client base.
// Negative counts are treated as zero by every accessor.
type ClientPopulationStats struct {
	Total     int            `json:"total"`
	TagCounts map[string]int `json:"tag_counts"`
}

// ClientCount returns Total clamped at zero.
func (s ClientPopulationStats) ClientCount() int {
	if s.Total < 0 {
		return 0
	}
	return s.Total
}

// TagCount returns the number of clients carrying tagID, or zero when unknown.
func (s ClientPopulationStats) TagCount(tagID string) int {
	n := s.TagCounts[tagID]
	if n < 0 {
		return 0
	}
	return n
}

// GenderBucket approximates the size of a single gender bucket as half the
// population, rounded up. There is no per-gender aggregation behind it.
func (s ClientPopulationStats) GenderBucket() int {
	return ceilDiv(s.ClientCount(), 2)
}

// BirthdaysPerDay approximates how many clients share any given birthday.
func (s ClientPopulationStats) BirthdaysPerDay() int {
	return ceilDiv(s.ClientCount(), 365)
}

func ceilDiv(n, d int) int {
	q := n / d
	if n%d != 0 {
		q++
	}
	return q
}
