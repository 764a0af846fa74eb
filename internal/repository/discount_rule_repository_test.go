package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ruleRepoTestSeq int

func setupDiscountRuleRepositoryTest(t *testing.T) *GormDiscountRuleRepository {
	t.Helper()
	ruleRepoTestSeq++
	dsn := fmt.Sprintf("file:discount_rule_repo_test_%d?mode=memory&cache=shared", ruleRepoTestSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.DiscountRule{}); err != nil {
		t.Fatalf("migrate discount rules failed: %v", err)
	}
	return NewDiscountRuleRepository(db)
}

func createTestRule(t *testing.T, repo *GormDiscountRuleRepository, title string, priority int, active bool, startsAt, expiresAt time.Time) *models.DiscountRule {
	t.Helper()
	// 直接以目标启停状态写入：停用规则不得因插入被吞掉 false 而变成启用
	rule := &models.DiscountRule{
		Title:     title,
		Type:      constants.DiscountTypePercentage,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Priority:  priority,
		StartsAt:  startsAt,
		ExpiresAt: expiresAt,
		IsActive:  active,
	}
	if err := repo.Create(rule); err != nil {
		t.Fatalf("create rule failed: %v", err)
	}
	return rule
}

func TestListActiveAtWindowAndOrder(t *testing.T) {
	repo := setupDiscountRuleRepositoryTest(t)

	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	createTestRule(t, repo, "低优先级", 10, true, past, future)
	createTestRule(t, repo, "高优先级", 100, true, past, future)
	createTestRule(t, repo, "已停用", 50, false, past, future)
	createTestRule(t, repo, "未开始", 50, true, future, future.Add(24*time.Hour))
	createTestRule(t, repo, "已过期", 50, true, past.Add(-24*time.Hour), past)

	rules, err := repo.ListActiveAt(now)
	if err != nil {
		t.Fatalf("list active rules failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("active rules want 2 got %d", len(rules))
	}
	if rules[0].Title != "高优先级" || rules[1].Title != "低优先级" {
		t.Fatalf("rules should order by priority desc, got %s/%s", rules[0].Title, rules[1].Title)
	}
}

func TestDiscountRuleListFilter(t *testing.T) {
	repo := setupDiscountRuleRepositoryTest(t)

	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	createTestRule(t, repo, "周年庆九折", 10, true, past, future)
	createTestRule(t, repo, "会员日满减", 20, false, past, future)

	active := true
	rules, total, err := repo.List(DiscountRuleListFilter{Page: 1, PageSize: 10, IsActive: &active})
	if err != nil {
		t.Fatalf("list rules failed: %v", err)
	}
	if total != 1 || len(rules) != 1 {
		t.Fatalf("active filter want 1 got total=%d len=%d", total, len(rules))
	}
	if rules[0].Title != "周年庆九折" {
		t.Fatalf("filtered rule want 周年庆九折 got %s", rules[0].Title)
	}

	rules, total, err = repo.List(DiscountRuleListFilter{Page: 1, PageSize: 10, Search: "会员"})
	if err != nil {
		t.Fatalf("search rules failed: %v", err)
	}
	if total != 1 || rules[0].Title != "会员日满减" {
		t.Fatalf("search want 会员日满减 got total=%d", total)
	}
}

func TestDiscountRuleSoftDelete(t *testing.T) {
	repo := setupDiscountRuleRepositoryTest(t)

	now := time.Now()
	rule := createTestRule(t, repo, "待删除", 10, true, now.Add(-time.Hour), now.Add(time.Hour))

	if err := repo.Delete(rule.ID); err != nil {
		t.Fatalf("delete rule failed: %v", err)
	}

	got, err := repo.GetByID(rule.ID)
	if err != nil {
		t.Fatalf("get deleted rule failed: %v", err)
	}
	if got != nil {
		t.Fatalf("soft deleted rule should not be found, got %+v", got)
	}

	rules, err := repo.ListActiveAt(now)
	if err != nil {
		t.Fatalf("list active after delete failed: %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("deleted rule should not appear in snapshot, got %d", len(rules))
	}
}
