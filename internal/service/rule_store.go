package service

import (
	"context"
	"time"

	"github.com/hairlab-next/internal/cache"
	"github.com/hairlab-next/internal/logger"
	"github.com/hairlab-next/internal/models"
	"github.com/hairlab-next/internal/repository"
)

const ruleSnapshotCacheKey = "pricing:rule_snapshot"

// RuleSnapshot 一次定价评估所见的规则视图。
// 只读：评估期间新增或失效的规则不影响已取出的快照。
type RuleSnapshot struct {
	Rules   []models.DiscountRule  `json:"rules"`
	Bundles []models.ProductBundle `json:"bundles"`
	TakenAt time.Time              `json:"taken_at"`
}

// RuleStore 规则快照加载器。配置由外部后台维护，
// 这里只读取启用且在时间窗内的行，短 TTL 缓存降低热点查询压力。
type RuleStore struct {
	ruleRepo   repository.DiscountRuleRepository
	bundleRepo repository.ProductBundleRepository
	cacheTTL   time.Duration
}

// NewRuleStore 创建规则快照加载器，cacheTTLSeconds 为 0 时关闭缓存
func NewRuleStore(ruleRepo repository.DiscountRuleRepository, bundleRepo repository.ProductBundleRepository, cacheTTLSeconds int) *RuleStore {
	return &RuleStore{
		ruleRepo:   ruleRepo,
		bundleRepo: bundleRepo,
		cacheTTL:   time.Duration(cacheTTLSeconds) * time.Second,
	}
}

// Snapshot 取指定时刻的规则快照
func (s *RuleStore) Snapshot(ctx context.Context, now time.Time) (*RuleSnapshot, error) {
	if s.cacheTTL > 0 {
		var cached RuleSnapshot
		hit, cacheErr := cache.GetJSON(ctx, ruleSnapshotCacheKey, &cached)
		if cacheErr != nil {
			logger.Warnw("rule_snapshot_cache_read_failed", "error", cacheErr)
		}
		if cacheErr == nil && hit && now.Sub(cached.TakenAt) < s.cacheTTL {
			return &cached, nil
		}
	}

	rules, err := s.ruleRepo.ListActiveAt(now)
	if err != nil {
		return nil, err
	}
	bundles, err := s.bundleRepo.ListActive()
	if err != nil {
		return nil, err
	}
	snapshot := &RuleSnapshot{
		Rules:   rules,
		Bundles: bundles,
		TakenAt: now,
	}
	if s.cacheTTL > 0 {
		if err := cache.SetJSON(ctx, ruleSnapshotCacheKey, snapshot, s.cacheTTL); err != nil {
			logger.Warnw("rule_snapshot_cache_write_failed", "error", err)
		}
	}
	return snapshot, nil
}

// Invalidate 规则配置变更后清除快照缓存
func (s *RuleStore) Invalidate(ctx context.Context) {
	if err := cache.Del(ctx, ruleSnapshotCacheKey); err != nil {
		logger.Warnw("rule_snapshot_cache_del_failed", "error", err)
	}
}
