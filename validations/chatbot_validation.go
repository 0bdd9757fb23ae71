package validations

import (
	"context"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/zapedidos/zapedidos/chatbotengine/domain"
	domainChatbot "github.com/zapedidos/zapedidos/domains/chatbot"
	pkgError "github.com/zapedidos/zapedidos/pkg/error"
)

var matchTypeValues = func() []any {
	values := make([]any, 0, len(domain.MatchTypes))
	for _, t := range domain.MatchTypes {
		values = append(values, string(t))
	}
	return values
}()

var responseTypeValues = []any{
	string(domain.ResponseText), string(domain.ResponseImage),
	string(domain.ResponseDocument), string(domain.ResponseMenu),
	string(domain.ResponseContact), string(domain.ResponseLocation),
}

func ValidateCreateRule(ctx context.Context, request domainChatbot.CreateRuleRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.CompanyID, validation.Required),
		validation.Field(&request.TriggerKeywords, validation.Required, validation.Length(1, 0)),
		validation.Field(&request.ResponseMessage, validation.Required),
		validation.Field(&request.MatchType, validation.In(matchTypeValues...)),
		validation.Field(&request.ResponseType, validation.In(responseTypeValues...)),
		validation.Field(&request.Priority, validation.Min(0)),
		validation.Field(&request.ResponseDelay, validation.Min(0)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return validateRegexKeywords(request.MatchType, request.TriggerKeywords)
}

func ValidateUpdateRule(ctx context.Context, request domainChatbot.UpdateRuleRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.TriggerKeywords, validation.Required, validation.Length(1, 0)),
		validation.Field(&request.ResponseMessage, validation.Required),
		validation.Field(&request.MatchType, validation.In(matchTypeValues...)),
		validation.Field(&request.ResponseType, validation.In(responseTypeValues...)),
		validation.Field(&request.Priority, validation.Min(0)),
		validation.Field(&request.ResponseDelay, validation.Min(0)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return validateRegexKeywords(request.MatchType, request.TriggerKeywords)
}

// validateRegexKeywords rejects regex rules whose patterns do not compile.
// The matcher would skip them anyway, but surfacing the mistake at save time
// spares operators a silently dead rule.
func validateRegexKeywords(matchType string, keywords []string) error {
	if matchType != string(domain.MatchRegex) {
		return nil
	}
	for _, kw := range keywords {
		if _, err := regexp.Compile(kw); err != nil {
			return pkgError.ValidationError(fmt.Sprintf("trigger_keywords: invalid regex %q: %v", kw, err))
		}
	}
	return nil
}
