package service

import (
	"strings"
	"time"

	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/logger"
	"github.com/hairlab-next/internal/models"
	"github.com/hairlab-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromoService 促销码服务。每单至多应用一个促销码，
// 促销折扣叠加在自动折扣与套装折扣之后（最后一条折扣通道）。
type PromoService struct {
	promoRepo repository.PromotionRepository
	usageRepo repository.PromotionUsageRepository
}

// NewPromoService 创建促销码服务
func NewPromoService(promoRepo repository.PromotionRepository, usageRepo repository.PromotionUsageRepository) *PromoService {
	return &PromoService{
		promoRepo: promoRepo,
		usageRepo: usageRepo,
	}
}

// ValidatedPromo 校验通过的促销码及其折扣额
type ValidatedPromo struct {
	Promotion models.Promotion `json:"promotion"`
	Discount  models.Money     `json:"discount"`
}

// Validate 校验促销码。按序短路：存在且启用 → 时间窗 →
// 订单门槛 → 全局限次 → 客户限次；首个失败立即返回对应错误。
func (s *PromoService) Validate(code string, cart CartSnapshot, now time.Time) (*models.Promotion, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, ErrPromoNotFound
	}
	promo, err := s.promoRepo.GetByCode(trimmed)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}
	if !promo.IsActive {
		return nil, ErrPromoInactive
	}
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return nil, ErrPromoNotStarted
	}
	if promo.ExpiresAt != nil && !now.Before(*promo.ExpiresAt) {
		return nil, ErrPromoExpired
	}
	if promo.MinOrderAmount.Decimal.GreaterThan(decimal.Zero) &&
		cart.Subtotal.Decimal.LessThan(promo.MinOrderAmount.Decimal) {
		return nil, ErrPromoBelowMinimum
	}
	if promo.UsageLimit > 0 {
		count, err := s.usageRepo.CountByPromotion(promo.ID)
		if err != nil {
			return nil, err
		}
		if count >= int64(promo.UsageLimit) {
			return nil, ErrPromoUsageLimit
		}
	}
	if promo.PerCustomerLimit > 0 && (cart.CustomerID != 0 || strings.TrimSpace(cart.Email) != "") {
		count, err := s.usageRepo.CountByCustomer(promo.ID, cart.CustomerID, cart.Email)
		if err != nil {
			return nil, err
		}
		if count >= int64(promo.PerCustomerLimit) {
			return nil, ErrPromoCustomerLimit
		}
	}
	return promo, nil
}

// Apply 校验促销码并计算折扣额。discountedSubtotal 为扣除自动折扣
// 与套装折扣之后的小计，促销折扣以其为计价基数。
func (s *PromoService) Apply(code string, cart CartSnapshot, discountedSubtotal models.Money, now time.Time) (*ValidatedPromo, error) {
	promo, err := s.Validate(code, cart, now)
	if err != nil {
		return nil, err
	}
	discount, err := computePromoDiscount(promo, discountedSubtotal.Decimal, cart.ShippingTotal.Decimal)
	if err != nil {
		return nil, err
	}
	return &ValidatedPromo{
		Promotion: *promo,
		Discount:  models.NewMoneyFromDecimal(discount),
	}, nil
}

// RecordPromoUsageInput 订单完成后的用量登记输入
type RecordPromoUsageInput struct {
	Code           string
	CustomerID     uint
	Email          string
	OrderID        uint
	DiscountAmount models.Money
}

// RecordUsage 登记促销码用量。仅在订单真正完成时调用（试算与
// 弃单不计次）；按订单ID幂等，限次在行锁内复核，防止并发超发。
func (s *PromoService) RecordUsage(input RecordPromoUsageInput) (*models.PromotionUsage, error) {
	if input.OrderID == 0 {
		return nil, ErrPromoConfigInvalid
	}
	if input.CustomerID == 0 && strings.TrimSpace(input.Email) == "" {
		return nil, ErrPromoUsageCustomerMissing
	}

	var result *models.PromotionUsage
	err := s.usageRepo.Transaction(func(tx *gorm.DB) error {
		promoRepo := s.promoRepo.WithTx(tx)
		usageRepo := s.usageRepo.WithTx(tx)

		promo, err := promoRepo.GetByCodeForUpdate(input.Code)
		if err != nil {
			return err
		}
		if promo == nil {
			return ErrPromoNotFound
		}

		existing, err := usageRepo.GetByOrder(input.OrderID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		if promo.UsageLimit > 0 {
			count, err := usageRepo.CountByPromotion(promo.ID)
			if err != nil {
				return err
			}
			if count >= int64(promo.UsageLimit) {
				return ErrPromoUsageLimit
			}
		}
		if promo.PerCustomerLimit > 0 {
			count, err := usageRepo.CountByCustomer(promo.ID, input.CustomerID, input.Email)
			if err != nil {
				return err
			}
			if count >= int64(promo.PerCustomerLimit) {
				return ErrPromoCustomerLimit
			}
		}

		usage := &models.PromotionUsage{
			PromotionID:    promo.ID,
			CustomerID:     input.CustomerID,
			Email:          strings.ToLower(strings.TrimSpace(input.Email)),
			OrderID:        input.OrderID,
			DiscountAmount: input.DiscountAmount,
			CreatedAt:      time.Now(),
		}
		if err := usageRepo.Create(usage); err != nil {
			return err
		}
		result = usage
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result != nil && result.ID != 0 {
		logger.Infow("promo_usage_recorded",
			"promotion_id", result.PromotionID,
			"order_id", result.OrderID,
			"customer_id", result.CustomerID,
		)
	}
	return result, nil
}

// computePromoDiscount 计算促销折扣额。百分比受 max_discount_amount
// 约束；固定金额不超过计价基数；free_shipping 抵扣运费。
func computePromoDiscount(promo *models.Promotion, base, shippingTotal decimal.Decimal) (decimal.Decimal, error) {
	switch promo.Type {
	case constants.PromoTypePercentage:
		if promo.Value.Decimal.IsNegative() || promo.Value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return decimal.Zero, ErrPromoConfigInvalid
		}
		discount := base.Mul(promo.Value.Decimal).Div(decimal.NewFromInt(100)).Round(2)
		if promo.MaxDiscountAmount.Decimal.GreaterThan(decimal.Zero) &&
			discount.GreaterThan(promo.MaxDiscountAmount.Decimal) {
			discount = promo.MaxDiscountAmount.Decimal
		}
		return discount, nil
	case constants.PromoTypeFixed:
		if promo.Value.Decimal.IsNegative() {
			return decimal.Zero, ErrPromoConfigInvalid
		}
		return decimal.Min(promo.Value.Decimal, base).Round(2), nil
	case constants.PromoTypeFreeShipping:
		return shippingTotal.Round(2), nil
	default:
		return decimal.Zero, ErrPromoConfigInvalid
	}
}
