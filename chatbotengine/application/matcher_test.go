package application

import (
	"testing"

	"github.com/zapedidos/zapedidos/chatbotengine/domain"
)

func activeRule(id string, priority int, matchType domain.MatchType, keywords ...string) domain.Rule {
	return domain.Rule{
		ID:              id,
		MatchType:       matchType,
		TriggerKeywords: keywords,
		Priority:        priority,
		IsActive:        true,
	}
}

func TestResolve_HighestPriorityWins(t *testing.T) {
	rules := []domain.Rule{
		activeRule("low", 1, domain.MatchExact, "oi"),
		activeRule("high", 5, domain.MatchExact, "oi"),
	}

	got := Resolve("oi", rules)
	if got == nil {
		t.Fatalf("Resolve() returned nil, want rule %q", "high")
	}
	if got.ID != "high" {
		t.Fatalf("Resolve() = %q, want %q", got.ID, "high")
	}
}

func TestResolve_StableTieBreakOnEqualPriority(t *testing.T) {
	rules := []domain.Rule{
		activeRule("first", 1, domain.MatchContains, "pedido"),
		activeRule("second", 1, domain.MatchContains, "pedido"),
	}

	got := Resolve("quero fazer um pedido", rules)
	if got == nil || got.ID != "first" {
		t.Fatalf("Resolve() should keep the first rule on ties, got %+v", got)
	}
}

func TestResolve_NeverReturnsInactiveRule(t *testing.T) {
	inactive := activeRule("dead", 10, domain.MatchExact, "oi")
	inactive.IsActive = false
	rules := []domain.Rule{
		inactive,
		activeRule("alive", 1, domain.MatchExact, "oi"),
	}

	got := Resolve("oi", rules)
	if got == nil || got.ID != "alive" {
		t.Fatalf("Resolve() must skip inactive rules, got %+v", got)
	}

	if got := Resolve("oi", []domain.Rule{inactive}); got != nil {
		t.Fatalf("Resolve() returned inactive rule %q", got.ID)
	}
}

func TestResolve_ExactCaseInsensitive(t *testing.T) {
	rules := []domain.Rule{activeRule("menu", 1, domain.MatchExact, "Menu")}

	if got := Resolve("MENU", rules); got == nil {
		t.Fatalf("exact match should be case-insensitive by default")
	}
	if got := Resolve("see menu please", rules); got != nil {
		t.Fatalf("exact match must not match substrings, got %q", got.ID)
	}
}

func TestResolve_CaseSensitiveRule(t *testing.T) {
	rule := activeRule("menu", 1, domain.MatchExact, "Menu")
	rule.CaseSensitive = true

	if got := Resolve("MENU", []domain.Rule{rule}); got != nil {
		t.Fatalf("case-sensitive rule must not match different casing")
	}
	if got := Resolve("Menu", []domain.Rule{rule}); got == nil {
		t.Fatalf("case-sensitive rule should match identical casing")
	}
}

func TestResolve_Contains(t *testing.T) {
	rules := []domain.Rule{activeRule("cardapio", 1, domain.MatchContains, "cardapio")}

	if got := Resolve("quero ver o cardapio hoje", rules); got == nil {
		t.Fatalf("contains match failed")
	}
	if got := Resolve("quero ver as promos", rules); got != nil {
		t.Fatalf("contains matched unrelated text, got %q", got.ID)
	}
}

func TestResolve_StartsWithAndEndsWith(t *testing.T) {
	starts := activeRule("starts", 1, domain.MatchStartsWith, "bom dia")
	ends := activeRule("ends", 1, domain.MatchEndsWith, "obrigado")

	if got := Resolve("bom dia, tudo bem?", []domain.Rule{starts}); got == nil {
		t.Fatalf("starts_with match failed")
	}
	if got := Resolve("ok bom dia", []domain.Rule{starts}); got != nil {
		t.Fatalf("starts_with matched mid-text")
	}
	if got := Resolve("era isso, obrigado", []domain.Rule{ends}); got == nil {
		t.Fatalf("ends_with match failed")
	}
}

func TestResolve_RegexAndInvalidPattern(t *testing.T) {
	valid := activeRule("hours", 1, domain.MatchRegex, `hor[aá]rio`)
	broken := activeRule("broken", 10, domain.MatchRegex, `([`)

	got := Resolve("qual o horário de hoje?", []domain.Rule{broken, valid})
	if got == nil || got.ID != "hours" {
		t.Fatalf("invalid regex must be non-matching, got %+v", got)
	}

	// Regex rules default to case-insensitive like the others.
	if got := Resolve("HORARIO de funcionamento", []domain.Rule{valid}); got == nil {
		t.Fatalf("regex match should be case-insensitive by default")
	}
}

func TestResolve_AnyKeywordTriggers(t *testing.T) {
	rules := []domain.Rule{activeRule("greet", 1, domain.MatchExact, "oi", "ola", "hello")}

	if got := Resolve("hello", rules); got == nil {
		t.Fatalf("any keyword of a rule should trigger it")
	}
	if got := Resolve("tchau", rules); got != nil {
		t.Fatalf("unrelated text matched, got %q", got.ID)
	}
}

func TestResolve_EmptyRuleSet(t *testing.T) {
	if got := Resolve("oi", nil); got != nil {
		t.Fatalf("empty rule set must resolve to nil, got %q", got.ID)
	}
}
