package service

import (
	"context"
	"strings"
	"time"

	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/models"
	"github.com/hairlab-next/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ruleValidator = validator.New()

// DiscountAdminService 自动折扣规则与套装管理服务。
// 任何写操作成功后使规则快照缓存失效。
type DiscountAdminService struct {
	ruleRepo   repository.DiscountRuleRepository
	bundleRepo repository.ProductBundleRepository
	ruleStore  *RuleStore
}

// NewDiscountAdminService 创建折扣管理服务
func NewDiscountAdminService(
	ruleRepo repository.DiscountRuleRepository,
	bundleRepo repository.ProductBundleRepository,
	ruleStore *RuleStore,
) *DiscountAdminService {
	return &DiscountAdminService{
		ruleRepo:   ruleRepo,
		bundleRepo: bundleRepo,
		ruleStore:  ruleStore,
	}
}

// DiscountRuleInput 创建/更新自动折扣规则输入
type DiscountRuleInput struct {
	Title      string
	Type       string
	Value      models.Money
	Conditions models.RuleConditions
	Priority   int
	Stackable  bool
	StartsAt   time.Time
	ExpiresAt  time.Time
	IsActive   *bool
}

// ProductBundleInput 创建/更新套装输入
type ProductBundleInput struct {
	Title         string
	ProductIDs    []uint
	DiscountType  string
	DiscountValue models.Money
	IsActive      *bool
}

// ListRules 查询规则列表
func (s *DiscountAdminService) ListRules(filter repository.DiscountRuleListFilter) ([]models.DiscountRule, int64, error) {
	return s.ruleRepo.List(filter)
}

// GetRule 按ID获取规则
func (s *DiscountAdminService) GetRule(id uint) (*models.DiscountRule, error) {
	rule, err := s.ruleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrRuleNotFound
	}
	return rule, nil
}

// CreateRule 创建自动折扣规则
func (s *DiscountAdminService) CreateRule(input DiscountRuleInput) (*models.DiscountRule, error) {
	rule, err := s.buildRule(input)
	if err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Create(rule); err != nil {
		return nil, err
	}
	s.invalidate()
	return rule, nil
}

// UpdateRule 更新自动折扣规则
func (s *DiscountAdminService) UpdateRule(id uint, input DiscountRuleInput) (*models.DiscountRule, error) {
	existing, err := s.GetRule(id)
	if err != nil {
		return nil, err
	}
	rule, err := s.buildRule(input)
	if err != nil {
		return nil, err
	}
	rule.ID = existing.ID
	rule.CreatedAt = existing.CreatedAt
	if err := s.ruleRepo.Update(rule); err != nil {
		return nil, err
	}
	s.invalidate()
	return rule, nil
}

// DeactivateRule 停用规则（下架而非删除，保留历史配置）
func (s *DiscountAdminService) DeactivateRule(id uint) (*models.DiscountRule, error) {
	rule, err := s.GetRule(id)
	if err != nil {
		return nil, err
	}
	if rule.IsActive {
		rule.IsActive = false
		rule.UpdatedAt = time.Now()
		if err := s.ruleRepo.Update(rule); err != nil {
			return nil, err
		}
		s.invalidate()
	}
	return rule, nil
}

// DeleteRule 删除规则（软删除）
func (s *DiscountAdminService) DeleteRule(id uint) error {
	if _, err := s.GetRule(id); err != nil {
		return err
	}
	if err := s.ruleRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// ListBundles 查询套装列表
func (s *DiscountAdminService) ListBundles(filter repository.ProductBundleListFilter) ([]models.ProductBundle, int64, error) {
	return s.bundleRepo.List(filter)
}

// GetBundle 按ID获取套装
func (s *DiscountAdminService) GetBundle(id uint) (*models.ProductBundle, error) {
	bundle, err := s.bundleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, ErrBundleNotFound
	}
	return bundle, nil
}

// CreateBundle 创建套装
func (s *DiscountAdminService) CreateBundle(input ProductBundleInput) (*models.ProductBundle, error) {
	bundle, err := buildBundle(input)
	if err != nil {
		return nil, err
	}
	if err := s.bundleRepo.Create(bundle); err != nil {
		return nil, err
	}
	s.invalidate()
	return bundle, nil
}

// UpdateBundle 更新套装
func (s *DiscountAdminService) UpdateBundle(id uint, input ProductBundleInput) (*models.ProductBundle, error) {
	existing, err := s.GetBundle(id)
	if err != nil {
		return nil, err
	}
	bundle, err := buildBundle(input)
	if err != nil {
		return nil, err
	}
	bundle.ID = existing.ID
	bundle.CreatedAt = existing.CreatedAt
	if err := s.bundleRepo.Update(bundle); err != nil {
		return nil, err
	}
	s.invalidate()
	return bundle, nil
}

// DeleteBundle 删除套装（软删除）
func (s *DiscountAdminService) DeleteBundle(id uint) error {
	if _, err := s.GetBundle(id); err != nil {
		return err
	}
	if err := s.bundleRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *DiscountAdminService) invalidate() {
	if s.ruleStore != nil {
		s.ruleStore.Invalidate(context.Background())
	}
}

// buildRule 归一化并校验规则输入
func (s *DiscountAdminService) buildRule(input DiscountRuleInput) (*models.DiscountRule, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrRuleConfigInvalid
	}
	ruleType := strings.TrimSpace(input.Type)
	switch ruleType {
	case constants.DiscountTypePercentage:
		if input.Value.Decimal.IsNegative() || input.Value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return nil, ErrRuleConfigInvalid
		}
	case constants.DiscountTypeFixed:
		if input.Value.Decimal.IsNegative() {
			return nil, ErrRuleConfigInvalid
		}
	case constants.DiscountTypeBuyXGetY:
		if input.Conditions.BuyQuantity == nil || *input.Conditions.BuyQuantity <= 0 ||
			input.Conditions.GetQuantity == nil || *input.Conditions.GetQuantity <= 0 {
			return nil, ErrRuleConfigInvalid
		}
	default:
		return nil, ErrRuleConfigInvalid
	}
	if input.StartsAt.IsZero() || input.ExpiresAt.IsZero() || !input.StartsAt.Before(input.ExpiresAt) {
		return nil, ErrRuleConfigInvalid
	}
	if err := ruleValidator.Struct(input.Conditions); err != nil {
		return nil, ErrRuleConfigInvalid
	}
	if input.Conditions.MinOrderAmount != nil && input.Conditions.MinOrderAmount.Decimal.IsNegative() {
		return nil, ErrRuleConfigInvalid
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	now := time.Now()
	return &models.DiscountRule{
		Title:      title,
		Type:       ruleType,
		Value:      input.Value,
		Conditions: input.Conditions,
		Priority:   input.Priority,
		Stackable:  input.Stackable,
		StartsAt:   input.StartsAt,
		ExpiresAt:  input.ExpiresAt,
		IsActive:   isActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// buildBundle 归一化并校验套装输入（≥2 个去重商品）
func buildBundle(input ProductBundleInput) (*models.ProductBundle, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrBundleInvalid
	}
	seen := make(map[uint]struct{}, len(input.ProductIDs))
	ids := make(models.UintArray, 0, len(input.ProductIDs))
	for _, id := range input.ProductIDs {
		if id == 0 {
			return nil, ErrBundleInvalid
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) < 2 {
		return nil, ErrBundleInvalid
	}

	switch strings.TrimSpace(input.DiscountType) {
	case constants.BundleDiscountTypePercentage:
		if input.DiscountValue.Decimal.IsNegative() || input.DiscountValue.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return nil, ErrBundleInvalid
		}
	case constants.BundleDiscountTypeFixed:
		if input.DiscountValue.Decimal.IsNegative() {
			return nil, ErrBundleInvalid
		}
	default:
		return nil, ErrBundleInvalid
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	now := time.Now()
	return &models.ProductBundle{
		Title:         title,
		ProductIDs:    ids,
		DiscountType:  strings.TrimSpace(input.DiscountType),
		DiscountValue: input.DiscountValue,
		IsActive:      isActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
