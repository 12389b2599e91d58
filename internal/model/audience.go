// internal/model/audience.go
package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// AudienceKind selects which clients an event or campaign targets.
type AudienceKind string

const (
	AudienceAll      AudienceKind = "all"
	AudienceGender   AudienceKind = "gender"
	AudienceTags     AudienceKind = "tags"
	AudienceBirthday AudienceKind = "birthday"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// AudienceRule is a closed set of targeting rules. Only the fields relevant
// to Kind are meaningful; the zero value targets all clients.
type AudienceRule struct {
	Kind   AudienceKind
	Gender Gender
	TagIDs []string
}

func AllClients() AudienceRule { return AudienceRule{Kind: AudienceAll} }

func ByGender(g Gender) AudienceRule { return AudienceRule{Kind: AudienceGender, Gender: g} }

func ByTags(ids ...string) AudienceRule { return AudienceRule{Kind: AudienceTags, TagIDs: ids} }

func BirthdayHeuristic() AudienceRule { return AudienceRule{Kind: AudienceBirthday} }

// audienceOverride is the stored shape of an event's audience_override column.
type audienceOverride struct {
	Logic  string            `json:"logic"`
	Gender string            `json:"gender,omitempty"`
	Tags   []json.RawMessage `json:"tags,omitempty"`
}

// ParseAudienceRule decodes an audience_override document. Anything it cannot
// map onto a known rule (null, malformed JSON, unknown logic, unknown gender,
// empty tag list) falls back to AllClients.
func ParseAudienceRule(raw []byte) AudienceRule {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return AllClients()
	}

	var o audienceOverride
	if err := json.Unmarshal(raw, &o); err != nil {
		return AllClients()
	}

	switch AudienceKind(strings.ToLower(strings.TrimSpace(o.Logic))) {
	case AudienceGender:
		switch g := Gender(strings.ToLower(strings.TrimSpace(o.Gender))); g {
		case GenderMale, GenderFemale:
			return ByGender(g)
		}
		return AllClients()
	case AudienceTags:
		ids := parseTagIDs(o.Tags)
		if len(ids) == 0 {
			return AllClients()
		}
		return ByTags(ids...)
	case AudienceBirthday:
		return BirthdayHeuristic()
	default:
		return AllClients()
	}
}

// parseTagIDs accepts string and numeric ids and skips anything else.
func parseTagIDs(raw []json.RawMessage) []string {
	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				ids = append(ids, s)
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(r, &n); err == nil {
			ids = append(ids, n.String())
		}
	}
	return ids
}

func (r AudienceRule) MarshalJSON() ([]byte, error) {
	o := struct {
		Logic  string   `json:"logic"`
		Gender string   `json:"gender,omitempty"`
		Tags   []string `json:"tags,omitempty"`
	}{Logic: string(AudienceAll)}

	switch r.Kind {
	case AudienceGender:
		o.Logic = string(AudienceGender)
		o.Gender = string(r.Gender)
	case AudienceTags:
		o.Logic = string(AudienceTags)
		o.Tags = r.TagIDs
	case AudienceBirthday:
		o.Logic = string(AudienceBirthday)
	}
	return json.Marshal(o)
}

func (r *AudienceRule) UnmarshalJSON(data []byte) error {
	*r = ParseAudienceRule(data)
	return nil
}
