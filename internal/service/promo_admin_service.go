package service

import (
	"strings"
	"time"

	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/models"
	"github.com/hairlab-next/internal/repository"

	"github.com/shopspring/decimal"
)

// PromoAdminService 促销码管理服务
type PromoAdminService struct {
	promoRepo repository.PromotionRepository
	usageRepo repository.PromotionUsageRepository
}

// NewPromoAdminService 创建促销码管理服务
func NewPromoAdminService(promoRepo repository.PromotionRepository, usageRepo repository.PromotionUsageRepository) *PromoAdminService {
	return &PromoAdminService{
		promoRepo: promoRepo,
		usageRepo: usageRepo,
	}
}

// PromotionInput 创建/更新促销码输入
type PromotionInput struct {
	Code              string
	Title             string
	Type              string
	Value             models.Money
	MinOrderAmount    models.Money
	MaxDiscountAmount models.Money
	UsageLimit        int
	PerCustomerLimit  int
	StartsAt          *time.Time
	ExpiresAt         *time.Time
	IsActive          *bool
}

// List 查询促销码列表
func (s *PromoAdminService) List(filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	return s.promoRepo.List(filter)
}

// Get 按ID获取促销码
func (s *PromoAdminService) Get(id uint) (*models.Promotion, error) {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}
	return promo, nil
}

// ListUsages 查询促销码使用记录
func (s *PromoAdminService) ListUsages(filter repository.PromotionUsageListFilter) ([]models.PromotionUsage, int64, error) {
	return s.usageRepo.List(filter)
}

// Create 创建促销码（码全大写存储，全局唯一）
func (s *PromoAdminService) Create(input PromotionInput) (*models.Promotion, error) {
	promo, err := buildPromotion(input)
	if err != nil {
		return nil, err
	}
	dup, err := s.promoRepo.GetByCode(promo.Code)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, ErrPromoConfigInvalid
	}
	if err := s.promoRepo.Create(promo); err != nil {
		return nil, err
	}
	return promo, nil
}

// Update 更新促销码
func (s *PromoAdminService) Update(id uint, input PromotionInput) (*models.Promotion, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	promo, err := buildPromotion(input)
	if err != nil {
		return nil, err
	}
	if promo.Code != existing.Code {
		dup, err := s.promoRepo.GetByCode(promo.Code)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, ErrPromoConfigInvalid
		}
	}
	promo.ID = existing.ID
	promo.CreatedAt = existing.CreatedAt
	if err := s.promoRepo.Update(promo); err != nil {
		return nil, err
	}
	return promo, nil
}

// Deactivate 停用促销码（保留使用记录）
func (s *PromoAdminService) Deactivate(id uint) (*models.Promotion, error) {
	promo, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if promo.IsActive {
		promo.IsActive = false
		promo.UpdatedAt = time.Now()
		if err := s.promoRepo.Update(promo); err != nil {
			return nil, err
		}
	}
	return promo, nil
}

// Delete 删除促销码（软删除）
func (s *PromoAdminService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.promoRepo.Delete(id)
}

// buildPromotion 归一化并校验促销码输入
func buildPromotion(input PromotionInput) (*models.Promotion, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, ErrPromoConfigInvalid
	}
	promoType := strings.TrimSpace(input.Type)
	switch promoType {
	case constants.PromoTypePercentage:
		if input.Value.Decimal.LessThanOrEqual(decimal.Zero) || input.Value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return nil, ErrPromoConfigInvalid
		}
	case constants.PromoTypeFixed:
		if input.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return nil, ErrPromoConfigInvalid
		}
	case constants.PromoTypeFreeShipping:
		// 数值无意义，折扣额由订单运费决定
	default:
		return nil, ErrPromoConfigInvalid
	}
	if input.MinOrderAmount.Decimal.IsNegative() || input.MaxDiscountAmount.Decimal.IsNegative() {
		return nil, ErrPromoConfigInvalid
	}
	if input.UsageLimit < 0 || input.PerCustomerLimit < 0 {
		return nil, ErrPromoConfigInvalid
	}
	if input.StartsAt != nil && input.ExpiresAt != nil && !input.StartsAt.Before(*input.ExpiresAt) {
		return nil, ErrPromoConfigInvalid
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	now := time.Now()
	return &models.Promotion{
		Code:              code,
		Title:             strings.TrimSpace(input.Title),
		Type:              promoType,
		Value:             input.Value,
		MinOrderAmount:    input.MinOrderAmount,
		MaxDiscountAmount: input.MaxDiscountAmount,
		UsageLimit:        input.UsageLimit,
		PerCustomerLimit:  input.PerCustomerLimit,
		StartsAt:          input.StartsAt,
		ExpiresAt:         input.ExpiresAt,
		IsActive:          isActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}
