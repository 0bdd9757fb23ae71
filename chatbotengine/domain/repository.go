package domain

import (
	"context"
	"time"
)

// InstanceStore reads messaging-instance configuration. The engine never
// writes through this interface; instance lifecycle is owned by the
// management API.
type InstanceStore interface {
	// GetByInstanceID returns the instance regardless of its active flag so
	// the admission gate can distinguish "not found" from "inactive".
	GetByInstanceID(ctx context.Context, instanceID string) (Instance, error)
}

// RuleStore reads the effective rule set for one inbound message: the union
// of company-wide and instance-scoped active rules, ordered by creation time
// ascending then id ascending. That ordering is the matcher's tie-break.
type RuleStore interface {
	EffectiveRules(ctx context.Context, companyID, instanceID string) ([]Rule, error)
}

// UsageLedger records that a rule fired. Implementations must increment
// atomically (no read-modify-write at the caller) and must never move
// last_used_at backward.
type UsageLedger interface {
	RecordUsage(ctx context.Context, ruleID string, firedAt time.Time) error
}

// RateLimitStore is a fixed-window counter keyed by arbitrary strings.
// Hit atomically increments the counter for key, creating a fresh window
// with the given TTL when none exists or the previous one expired, and
// returns the count after the increment.
type RateLimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ActivityTracker stamps when an instance last received an admitted webhook
// call. Best-effort: the engine logs failures and moves on.
type ActivityTracker interface {
	TouchActivity(ctx context.Context, instanceID string, at time.Time) error
}

// Sender delivers resolved responses through the messaging gateway.
type Sender interface {
	SendText(ctx context.Context, instance Instance, phone, message string) error
	// SendMedia delivers a media response; the caption travels with it the
	// way the gateway's image endpoint expects.
	SendMedia(ctx context.Context, instance Instance, phone string, mediaType ResponseType, mediaURL, caption string) error
}
