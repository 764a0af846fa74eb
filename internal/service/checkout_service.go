package service

import (
	"errors"

	"github.com/hairlab-next/internal/logger"
	"github.com/hairlab-next/internal/models"
)

// CheckoutService 订单完成事件处理。履约已经结束，这里只做
// 结算后动作：登记促销码用量、扣减抵扣积分、发放获得积分与
// 推荐奖励。各动作自身按订单幂等，整体失败安全重试。
type CheckoutService struct {
	promoSvc   *PromoService
	loyaltySvc *LoyaltyService
}

// NewCheckoutService 创建订单完成事件服务
func NewCheckoutService(promoSvc *PromoService, loyaltySvc *LoyaltyService) *CheckoutService {
	return &CheckoutService{
		promoSvc:   promoSvc,
		loyaltySvc: loyaltySvc,
	}
}

// CheckoutCompletedInput 订单完成事件载荷
type CheckoutCompletedInput struct {
	OrderID       uint         `json:"order_id"`
	CustomerID    uint         `json:"customer_id"`
	Email         string       `json:"email"`
	PromoCode     string       `json:"promo_code"`
	PromoDiscount models.Money `json:"promo_discount"`
	EarnBase      models.Money `json:"earn_base"` // 折后商品小计，获点基数
	PointsSpent   int64        `json:"points_spent"`
}

// HandleCompleted 处理订单完成事件。子动作失败不互相阻塞，
// 逐项记录后合并返回，交由队列重试（子动作均幂等）。
func (s *CheckoutService) HandleCompleted(input CheckoutCompletedInput) error {
	if input.OrderID == 0 {
		return ErrCartInvalid
	}
	var errs []error

	if input.PromoCode != "" {
		if _, err := s.promoSvc.RecordUsage(RecordPromoUsageInput{
			Code:           input.PromoCode,
			CustomerID:     input.CustomerID,
			Email:          input.Email,
			OrderID:        input.OrderID,
			DiscountAmount: input.PromoDiscount,
		}); err != nil {
			logger.Errorw("checkout_promo_usage_failed",
				"order_id", input.OrderID,
				"code", input.PromoCode,
				"error", err,
			)
			errs = append(errs, err)
		}
	}

	if input.CustomerID != 0 {
		// 先扣后发：抵扣基于下单时余额，获点不影响本单抵扣
		if input.PointsSpent > 0 {
			if _, err := s.loyaltySvc.SpendPoints(LoyaltySpendInput{
				CustomerID: input.CustomerID,
				OrderID:    input.OrderID,
				Points:     input.PointsSpent,
			}); err != nil {
				logger.Errorw("checkout_points_spend_failed",
					"order_id", input.OrderID,
					"customer_id", input.CustomerID,
					"points", input.PointsSpent,
					"error", err,
				)
				errs = append(errs, err)
			}
		}
		if _, err := s.loyaltySvc.EarnPoints(LoyaltyEarnInput{
			CustomerID: input.CustomerID,
			OrderID:    input.OrderID,
			BaseAmount: input.EarnBase,
		}); err != nil {
			logger.Errorw("checkout_points_earn_failed",
				"order_id", input.OrderID,
				"customer_id", input.CustomerID,
				"error", err,
			)
			errs = append(errs, err)
		}
		if _, err := s.loyaltySvc.CreditReferral(input.CustomerID, input.OrderID); err != nil {
			logger.Errorw("checkout_referral_credit_failed",
				"order_id", input.OrderID,
				"customer_id", input.CustomerID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
