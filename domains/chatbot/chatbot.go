package chatbot

import (
	"context"

	"github.com/zapedidos/zapedidos/chatbotengine/domain"
)

type CreateRuleRequest struct {
	CompanyID       string   `json:"company_id"`
	InstanceID      string   `json:"instance_id"`
	TriggerKeywords []string `json:"trigger_keywords"`
	ResponseMessage string   `json:"response_message"`
	ResponseType    string   `json:"response_type"`
	MediaURL        string   `json:"media_url"`
	MatchType       string   `json:"match_type"`
	CaseSensitive   bool     `json:"case_sensitive"`
	Priority        int      `json:"priority"`
	ResponseDelay   int      `json:"response_delay"`
}

type UpdateRuleRequest struct {
	TriggerKeywords []string `json:"trigger_keywords"`
	ResponseMessage string   `json:"response_message"`
	ResponseType    string   `json:"response_type"`
	MediaURL        string   `json:"media_url"`
	MatchType       string   `json:"match_type"`
	CaseSensitive   bool     `json:"case_sensitive"`
	Priority        int      `json:"priority"`
	ResponseDelay   int      `json:"response_delay"`
	IsActive        bool     `json:"is_active"`
}

// RuleStats is the usage-ledger view of one rule for the dashboard.
type RuleStats struct {
	RuleID        string `json:"rule_id"`
	UsageCount    int64  `json:"usage_count"`
	LastUsedAt    string `json:"last_used_at,omitempty"`
	LastUsedHuman string `json:"last_used_human,omitempty"`
}

type IChatbotUsecase interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (domain.Rule, error)
	ListRules(ctx context.Context, companyID string) ([]domain.Rule, error)
	GetRule(ctx context.Context, id string) (domain.Rule, error)
	UpdateRule(ctx context.Context, id string, req UpdateRuleRequest) (domain.Rule, error)
	DeleteRule(ctx context.Context, id string) error
	RuleStats(ctx context.Context, id string) (RuleStats, error)
}
