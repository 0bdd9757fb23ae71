package domain

import "time"

// MatchType defines how a rule's trigger keywords are compared against
// incoming message text.
type MatchType string

const (
	MatchExact      MatchType = "exact"
	MatchContains   MatchType = "contains"
	MatchStartsWith MatchType = "starts_with"
	MatchEndsWith   MatchType = "ends_with"
	MatchRegex      MatchType = "regex"
)

// MatchTypes lists every supported match type, in no particular order.
var MatchTypes = []MatchType{MatchExact, MatchContains, MatchStartsWith, MatchEndsWith, MatchRegex}

func (m MatchType) Valid() bool {
	for _, t := range MatchTypes {
		if m == t {
			return true
		}
	}
	return false
}

// ResponseType defines the kind of content a rule answers with.
type ResponseType string

const (
	ResponseText     ResponseType = "text"
	ResponseImage    ResponseType = "image"
	ResponseDocument ResponseType = "document"
	ResponseMenu     ResponseType = "menu"
	ResponseContact  ResponseType = "contact"
	ResponseLocation ResponseType = "location"
)

// Rule is a configured keyword-trigger-to-response mapping owned by a
// company. A rule with an empty InstanceID applies to every messaging
// instance of its company; otherwise it is scoped to a single instance.
type Rule struct {
	ID              string       `json:"id"`
	CompanyID       string       `json:"company_id"`
	InstanceID      string       `json:"instance_id,omitempty"`
	TriggerKeywords []string     `json:"trigger_keywords"`
	ResponseMessage string       `json:"response_message"`
	ResponseType    ResponseType `json:"response_type"`
	MediaURL        string       `json:"media_url,omitempty"`
	MatchType       MatchType    `json:"match_type"`
	CaseSensitive   bool         `json:"case_sensitive"`
	Priority        int          `json:"priority"`
	ResponseDelay   int          `json:"response_delay"` // seconds, applied by the sender
	UsageCount      int64        `json:"usage_count"`
	LastUsedAt      *time.Time   `json:"last_used_at,omitempty"`
	IsActive        bool         `json:"is_active"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
