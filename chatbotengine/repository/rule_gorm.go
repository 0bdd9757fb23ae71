package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zapedidos/zapedidos/chatbotengine/domain"
	pkgError "github.com/zapedidos/zapedidos/pkg/error"
	"gorm.io/gorm"
)

// ruleModel is the GORM persistence model for chatbot rules. The schema
// mirrors the production chatbot_responses table; the domain struct stays
// free of GORM tags.
type ruleModel struct {
	ID              string `gorm:"primaryKey"`
	CompanyID       string `gorm:"column:company_id;not null;index:idx_rules_company_active"`
	InstanceID      string `gorm:"column:instance_id;index:idx_rules_instance_active"`
	TriggerKeywords string `gorm:"column:trigger_keywords;not null"` // JSON array
	ResponseMessage string `gorm:"column:response_message;not null"`
	ResponseType    string `gorm:"column:response_type;not null"`
	MediaURL        string `gorm:"column:media_url"`
	MatchType       string `gorm:"column:match_type;not null"`
	CaseSensitive   bool   `gorm:"column:case_sensitive;not null"`
	Priority        int    `gorm:"column:priority;not null"`
	ResponseDelay   int    `gorm:"column:response_delay;not null"`
	UsageCount      int64  `gorm:"column:usage_count;not null"`
	LastUsedAt      *time.Time
	IsActive        bool      `gorm:"column:is_active;not null;index:idx_rules_company_active;index:idx_rules_instance_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (ruleModel) TableName() string {
	return "chatbot_rules"
}

// RuleGormStore implements domain.RuleStore and domain.UsageLedger, plus the
// CRUD surface used by the management API.
type RuleGormStore struct {
	db *gorm.DB
}

func NewRuleGormStore(db *gorm.DB) *RuleGormStore {
	return &RuleGormStore{db: db}
}

// Init creates or migrates the schema.
func (r *RuleGormStore) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&ruleModel{})
}

// EffectiveRules returns active company-wide and instance-scoped rules,
// ordered by creation time then id. The matcher relies on this ordering for
// its tie-break, so it is explicit here rather than left to the driver.
func (r *RuleGormStore) EffectiveRules(ctx context.Context, companyID, instanceID string) ([]domain.Rule, error) {
	var models []ruleModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Where("instance_id = ? OR instance_id = ?", "", instanceID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	rules := make([]domain.Rule, 0, len(models))
	for _, m := range models {
		rules = append(rules, fromRuleModel(m))
	}
	return rules, nil
}

// RecordUsage atomically increments usage_count and advances last_used_at.
// The CASE keeps last_used_at monotonic when late calls arrive out of order.
func (r *RuleGormStore) RecordUsage(ctx context.Context, ruleID string, firedAt time.Time) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE chatbot_rules
		 SET usage_count = usage_count + 1,
		     last_used_at = CASE WHEN last_used_at IS NULL OR last_used_at < ? THEN ? ELSE last_used_at END
		 WHERE id = ?`,
		firedAt, firedAt, ruleID,
	).Error
}

// Create inserts a new rule.
func (r *RuleGormStore) Create(ctx context.Context, rule domain.Rule) error {
	model := toRuleModel(rule)
	return r.db.WithContext(ctx).Create(&model).Error
}

// GetByID looks a rule up by id.
func (r *RuleGormStore) GetByID(ctx context.Context, id string) (domain.Rule, error) {
	var model ruleModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Rule{}, pkgError.NotFoundError("chatbot rule not found")
		}
		return domain.Rule{}, err
	}
	return fromRuleModel(model), nil
}

// ListByCompany returns every rule of a company, newest last.
func (r *RuleGormStore) ListByCompany(ctx context.Context, companyID string) ([]domain.Rule, error) {
	var models []ruleModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	rules := make([]domain.Rule, 0, len(models))
	for _, m := range models {
		rules = append(rules, fromRuleModel(m))
	}
	return rules, nil
}

// Update persists the mutable configuration fields of a rule. Ledger fields
// are deliberately excluded so an operator edit cannot clobber a concurrent
// usage increment.
func (r *RuleGormStore) Update(ctx context.Context, rule domain.Rule) error {
	model := toRuleModel(rule)
	res := r.db.WithContext(ctx).Model(&ruleModel{}).
		Where("id = ?", rule.ID).
		Select("company_id", "instance_id", "trigger_keywords", "response_message",
			"response_type", "media_url", "match_type", "case_sensitive",
			"priority", "response_delay", "is_active").
		Updates(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgError.NotFoundError("chatbot rule not found")
	}
	return nil
}

// Delete removes a rule permanently. Only the management API calls this;
// the matching path never deletes.
func (r *RuleGormStore) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&ruleModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgError.NotFoundError("chatbot rule not found")
	}
	return nil
}

func toRuleModel(rule domain.Rule) ruleModel {
	keywords, _ := json.Marshal(rule.TriggerKeywords)
	return ruleModel{
		ID:              rule.ID,
		CompanyID:       rule.CompanyID,
		InstanceID:      rule.InstanceID,
		TriggerKeywords: string(keywords),
		ResponseMessage: rule.ResponseMessage,
		ResponseType:    string(rule.ResponseType),
		MediaURL:        rule.MediaURL,
		MatchType:       string(rule.MatchType),
		CaseSensitive:   rule.CaseSensitive,
		Priority:        rule.Priority,
		ResponseDelay:   rule.ResponseDelay,
		UsageCount:      rule.UsageCount,
		LastUsedAt:      rule.LastUsedAt,
		IsActive:        rule.IsActive,
		CreatedAt:       rule.CreatedAt,
		UpdatedAt:       rule.UpdatedAt,
	}
}

func fromRuleModel(m ruleModel) domain.Rule {
	var keywords []string
	if m.TriggerKeywords != "" {
		_ = json.Unmarshal([]byte(m.TriggerKeywords), &keywords)
	}
	return domain.Rule{
		ID:              m.ID,
		CompanyID:       m.CompanyID,
		InstanceID:      m.InstanceID,
		TriggerKeywords: keywords,
		ResponseMessage: m.ResponseMessage,
		ResponseType:    domain.ResponseType(m.ResponseType),
		MediaURL:        m.MediaURL,
		MatchType:       domain.MatchType(m.MatchType),
		CaseSensitive:   m.CaseSensitive,
		Priority:        m.Priority,
		ResponseDelay:   m.ResponseDelay,
		UsageCount:      m.UsageCount,
		LastUsedAt:      m.LastUsedAt,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
