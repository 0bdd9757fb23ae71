package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/zapedidos/zapedidos/chatbotengine/domain"
	pkgError "github.com/zapedidos/zapedidos/pkg/error"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "rules.db") + "?_journal_mode=WAL&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newTestRuleStore(t *testing.T) *RuleGormStore {
	t.Helper()

	store := NewRuleGormStore(newTestDB(t))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return store
}

func seedRule(t *testing.T, store *RuleGormStore, rule domain.Rule) {
	t.Helper()
	if err := store.Create(context.Background(), rule); err != nil {
		t.Fatalf("failed to seed rule %s: %v", rule.ID, err)
	}
}

func TestEffectiveRules_ScopingAndOrdering(t *testing.T) {
	store := newTestRuleStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	seedRule(t, store, domain.Rule{
		ID: "rule-global", CompanyID: "company-1",
		TriggerKeywords: []string{"oi"}, ResponseMessage: "Olá!",
		MatchType: domain.MatchContains, IsActive: true, CreatedAt: base,
	})
	seedRule(t, store, domain.Rule{
		ID: "rule-scoped", CompanyID: "company-1", InstanceID: "inst-1",
		TriggerKeywords: []string{"menu"}, ResponseMessage: "Segue o menu",
		MatchType: domain.MatchContains, IsActive: true, CreatedAt: base.Add(time.Minute),
	})
	seedRule(t, store, domain.Rule{
		ID: "rule-other-instance", CompanyID: "company-1", InstanceID: "inst-2",
		TriggerKeywords: []string{"menu"}, ResponseMessage: "outro",
		MatchType: domain.MatchContains, IsActive: true, CreatedAt: base,
	})
	seedRule(t, store, domain.Rule{
		ID: "rule-inactive", CompanyID: "company-1",
		TriggerKeywords: []string{"oi"}, ResponseMessage: "desativada",
		MatchType: domain.MatchContains, IsActive: false, CreatedAt: base,
	})
	seedRule(t, store, domain.Rule{
		ID: "rule-other-company", CompanyID: "company-2",
		TriggerKeywords: []string{"oi"}, ResponseMessage: "vizinha",
		MatchType: domain.MatchContains, IsActive: true, CreatedAt: base,
	})

	rules, err := store.EffectiveRules(ctx, "company-1", "inst-1")
	if err != nil {
		t.Fatalf("EffectiveRules() error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("EffectiveRules() returned %d rules, want 2", len(rules))
	}
	if rules[0].ID != "rule-global" || rules[1].ID != "rule-scoped" {
		t.Fatalf("rules out of order: got [%s %s]", rules[0].ID, rules[1].ID)
	}
	if len(rules[0].TriggerKeywords) != 1 || rules[0].TriggerKeywords[0] != "oi" {
		t.Fatalf("keywords not round-tripped: %v", rules[0].TriggerKeywords)
	}
}

func TestEffectiveRules_TieBreakByID(t *testing.T) {
	store := newTestRuleStore(t)
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	seedRule(t, store, domain.Rule{
		ID: "rule-b", CompanyID: "company-1", TriggerKeywords: []string{"oi"},
		MatchType: domain.MatchContains, IsActive: true, CreatedAt: created,
	})
	seedRule(t, store, domain.Rule{
		ID: "rule-a", CompanyID: "company-1", TriggerKeywords: []string{"oi"},
		MatchType: domain.MatchContains, IsActive: true, CreatedAt: created,
	})

	rules, err := store.EffectiveRules(context.Background(), "company-1", "inst-1")
	if err != nil {
		t.Fatalf("EffectiveRules() error: %v", err)
	}
	if len(rules) != 2 || rules[0].ID != "rule-a" || rules[1].ID != "rule-b" {
		t.Fatalf("equal created_at must fall back to id order, got %+v", rules)
	}
}

func TestRecordUsage_IncrementsAndAdvancesTimestamp(t *testing.T) {
	store := newTestRuleStore(t)
	ctx := context.Background()

	seedRule(t, store, domain.Rule{
		ID: "rule-1", CompanyID: "company-1", TriggerKeywords: []string{"oi"},
		MatchType: domain.MatchContains, IsActive: true,
	})

	first := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	if err := store.RecordUsage(ctx, "rule-1", first); err != nil {
		t.Fatalf("RecordUsage() error: %v", err)
	}
	if err := store.RecordUsage(ctx, "rule-1", first.Add(time.Minute)); err != nil {
		t.Fatalf("RecordUsage() error: %v", err)
	}

	rule, err := store.GetByID(ctx, "rule-1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if rule.UsageCount != 2 {
		t.Fatalf("usage_count = %d, want 2", rule.UsageCount)
	}
	if rule.LastUsedAt == nil || !rule.LastUsedAt.Equal(first.Add(time.Minute)) {
		t.Fatalf("last_used_at = %v, want %v", rule.LastUsedAt, first.Add(time.Minute))
	}
}

func TestRecordUsage_LateCallKeepsTimestampMonotonic(t *testing.T) {
	store := newTestRuleStore(t)
	ctx := context.Background()

	seedRule(t, store, domain.Rule{
		ID: "rule-1", CompanyID: "company-1", TriggerKeywords: []string{"oi"},
		MatchType: domain.MatchContains, IsActive: true,
	})

	later := time.Date(2026, 2, 1, 10, 5, 0, 0, time.UTC)
	if err := store.RecordUsage(ctx, "rule-1", later); err != nil {
		t.Fatalf("RecordUsage() error: %v", err)
	}
	if err := store.RecordUsage(ctx, "rule-1", later.Add(-time.Minute)); err != nil {
		t.Fatalf("RecordUsage() error: %v", err)
	}

	rule, err := store.GetByID(ctx, "rule-1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if rule.UsageCount != 2 {
		t.Fatalf("usage_count = %d, want 2 (late call still counts)", rule.UsageCount)
	}
	if rule.LastUsedAt == nil || !rule.LastUsedAt.Equal(later) {
		t.Fatalf("last_used_at regressed to %v, want %v", rule.LastUsedAt, later)
	}
}

func TestRecordUsage_ConcurrentIncrementsLoseNoUpdate(t *testing.T) {
	store := newTestRuleStore(t)
	ctx := context.Background()

	seedRule(t, store, domain.Rule{
		ID: "rule-1", CompanyID: "company-1", TriggerKeywords: []string{"oi"},
		MatchType: domain.MatchContains, IsActive: true,
	})

	const calls = 20
	firedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := store.RecordUsage(ctx, "rule-1", firedAt.Add(time.Duration(i)*time.Second)); err != nil {
				t.Errorf("RecordUsage() error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	rule, err := store.GetByID(ctx, "rule-1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if rule.UsageCount != calls {
		t.Fatalf("usage_count = %d, want %d", rule.UsageCount, calls)
	}
}

func TestUpdate_PreservesLedgerFields(t *testing.T) {
	store := newTestRuleStore(t)
	ctx := context.Background()

	seedRule(t, store, domain.Rule{
		ID: "rule-1", CompanyID: "company-1", TriggerKeywords: []string{"oi"},
		ResponseMessage: "original", MatchType: domain.MatchContains, IsActive: true,
	})
	if err := store.RecordUsage(ctx, "rule-1", time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("RecordUsage() error: %v", err)
	}

	if err := store.Update(ctx, domain.Rule{
		ID: "rule-1", CompanyID: "company-1", TriggerKeywords: []string{"ola"},
		ResponseMessage: "editada", MatchType: domain.MatchContains, IsActive: true,
	}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	rule, err := store.GetByID(ctx, "rule-1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if rule.ResponseMessage != "editada" {
		t.Fatalf("ResponseMessage = %q, want %q", rule.ResponseMessage, "editada")
	}
	if rule.UsageCount != 1 || rule.LastUsedAt == nil {
		t.Fatalf("operator edit clobbered ledger fields: count=%d last=%v", rule.UsageCount, rule.LastUsedAt)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	store := newTestRuleStore(t)

	_, err := store.GetByID(context.Background(), "ghost")
	if _, ok := err.(pkgError.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDelete_MissingRule(t *testing.T) {
	store := newTestRuleStore(t)

	err := store.Delete(context.Background(), "ghost")
	if _, ok := err.(pkgError.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
