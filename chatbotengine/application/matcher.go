package application

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zapedidos/zapedidos/chatbotengine/domain"
)

// Resolve selects at most one rule that should answer the given message
// text. Rules are evaluated as supplied; among all matching active rules the
// highest priority wins, and on equal priority the one appearing first in
// the input keeps its place (stores return rules ordered by creation time,
// so the tie-break is deterministic).
//
// Resolve is pure: it never touches usage counters. Recording a hit is the
// ledger's job, after the outbound send succeeded.
func Resolve(text string, rules []domain.Rule) *domain.Rule {
	var best *domain.Rule
	for i := range rules {
		rule := &rules[i]
		if !rule.IsActive {
			continue
		}
		if !ruleMatches(rule, text) {
			continue
		}
		if best == nil || rule.Priority > best.Priority {
			best = rule
		}
	}
	return best
}

// ruleMatches reports whether any trigger keyword of the rule satisfies its
// match type against the text. Normalization is per-rule: a case-insensitive
// rule lowers both sides, leaving other rules untouched.
func ruleMatches(rule *domain.Rule, text string) bool {
	subject := text
	if !rule.CaseSensitive && rule.MatchType != domain.MatchRegex {
		subject = strings.ToLower(text)
	}

	for _, keyword := range rule.TriggerKeywords {
		if keyword == "" {
			continue
		}
		if rule.MatchType == domain.MatchRegex {
			if regexMatches(rule, keyword, text) {
				return true
			}
			continue
		}

		kw := keyword
		if !rule.CaseSensitive {
			kw = strings.ToLower(keyword)
		}

		switch rule.MatchType {
		case domain.MatchExact:
			if subject == kw {
				return true
			}
		case domain.MatchContains:
			if strings.Contains(subject, kw) {
				return true
			}
		case domain.MatchStartsWith:
			if strings.HasPrefix(subject, kw) {
				return true
			}
		case domain.MatchEndsWith:
			if strings.HasSuffix(subject, kw) {
				return true
			}
		}
	}
	return false
}

// regexMatches compiles the keyword as a pattern and tests it against the
// raw text. Case-insensitive rules get the (?i) flag instead of lowering the
// pattern, which would corrupt escapes. A keyword that fails to compile is
// treated as non-matching: misconfigured rules must never fail the webhook.
func regexMatches(rule *domain.Rule, keyword, text string) bool {
	pattern := keyword
	if !rule.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"rule_id": rule.ID,
			"pattern": keyword,
		}).Warn("chatbot rule has an invalid regex keyword, skipping")
		return false
	}
	return re.MatchString(text)
}
