package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/zapedidos/zapedidos/chatbotengine/domain"
	"github.com/zapedidos/zapedidos/chatbotengine/repository"
	domainChatbot "github.com/zapedidos/zapedidos/domains/chatbot"
	pkgError "github.com/zapedidos/zapedidos/pkg/error"
	"github.com/zapedidos/zapedidos/validations"
)

type chatbotService struct {
	rules *repository.RuleGormStore
}

func NewChatbotService(rules *repository.RuleGormStore) domainChatbot.IChatbotUsecase {
	return &chatbotService{rules: rules}
}

func (s *chatbotService) CreateRule(ctx context.Context, req domainChatbot.CreateRuleRequest) (domain.Rule, error) {
	if err := validations.ValidateCreateRule(ctx, req); err != nil {
		return domain.Rule{}, err
	}

	rule := domain.Rule{
		ID:              uuid.NewString(),
		CompanyID:       req.CompanyID,
		InstanceID:      strings.TrimSpace(req.InstanceID),
		TriggerKeywords: trimKeywords(req.TriggerKeywords),
		ResponseMessage: req.ResponseMessage,
		ResponseType:    domain.ResponseType(req.ResponseType),
		MediaURL:        req.MediaURL,
		MatchType:       domain.MatchType(req.MatchType),
		CaseSensitive:   req.CaseSensitive,
		Priority:        req.Priority,
		ResponseDelay:   req.ResponseDelay,
		IsActive:        true,
	}
	if rule.MatchType == "" {
		rule.MatchType = domain.MatchContains
	}
	if rule.ResponseType == "" {
		rule.ResponseType = domain.ResponseText
	}
	if rule.Priority == 0 {
		rule.Priority = 1
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return domain.Rule{}, err
	}
	return s.rules.GetByID(ctx, rule.ID)
}

func (s *chatbotService) ListRules(ctx context.Context, companyID string) ([]domain.Rule, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, pkgError.ValidationError("company_id: cannot be blank.")
	}
	return s.rules.ListByCompany(ctx, companyID)
}

func (s *chatbotService) GetRule(ctx context.Context, id string) (domain.Rule, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Rule{}, pkgError.ValidationError("id: cannot be blank.")
	}
	return s.rules.GetByID(ctx, id)
}

func (s *chatbotService) UpdateRule(ctx context.Context, id string, req domainChatbot.UpdateRuleRequest) (domain.Rule, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Rule{}, pkgError.ValidationError("id: cannot be blank.")
	}
	if err := validations.ValidateUpdateRule(ctx, req); err != nil {
		return domain.Rule{}, err
	}

	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return domain.Rule{}, err
	}

	rule.TriggerKeywords = trimKeywords(req.TriggerKeywords)
	rule.ResponseMessage = req.ResponseMessage
	rule.ResponseType = domain.ResponseType(req.ResponseType)
	rule.MediaURL = req.MediaURL
	rule.MatchType = domain.MatchType(req.MatchType)
	rule.CaseSensitive = req.CaseSensitive
	rule.Priority = req.Priority
	rule.ResponseDelay = req.ResponseDelay
	rule.IsActive = req.IsActive

	if err := s.rules.Update(ctx, rule); err != nil {
		return domain.Rule{}, err
	}
	return s.rules.GetByID(ctx, id)
}

func (s *chatbotService) DeleteRule(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgError.ValidationError("id: cannot be blank.")
	}
	return s.rules.Delete(ctx, id)
}

func (s *chatbotService) RuleStats(ctx context.Context, id string) (domainChatbot.RuleStats, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return domainChatbot.RuleStats{}, err
	}

	stats := domainChatbot.RuleStats{
		RuleID:     rule.ID,
		UsageCount: rule.UsageCount,
	}
	if rule.LastUsedAt != nil {
		stats.LastUsedAt = rule.LastUsedAt.UTC().Format(time.RFC3339)
		stats.LastUsedHuman = humanize.Time(*rule.LastUsedAt)
	}
	return stats, nil
}

func trimKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if trimmed := strings.TrimSpace(kw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
