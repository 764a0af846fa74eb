package service

import (
	"context"
	"time"

	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/models"

	"github.com/shopspring/decimal"
)

// PricingService 定价编排。对一份购物车快照按固定顺序求值：
// 小计 → 自动折扣+套装折扣 → 促销码 → 积分抵扣 → 运费。
// 纯计算，不落任何持久化，同一输入同一时刻结果可重放。
type PricingService struct {
	discountSvc *DiscountService
	promoSvc    *PromoService
	loyaltySvc  *LoyaltyService
}

// NewPricingService 创建定价服务
func NewPricingService(discountSvc *DiscountService, promoSvc *PromoService, loyaltySvc *LoyaltyService) *PricingService {
	return &PricingService{
		discountSvc: discountSvc,
		promoSvc:    promoSvc,
		loyaltySvc:  loyaltySvc,
	}
}

// PriceRequest 定价请求
type PriceRequest struct {
	Cart            CartSnapshot `json:"cart"`
	PromoCode       string       `json:"promo_code"`
	RequestedPoints int64        `json:"requested_points"`
}

// Quote 定价结果。各折扣通道单独列出，便于前端展示与对账。
type Quote struct {
	Subtotal          models.Money      `json:"subtotal"`
	AutomaticDiscount models.Money      `json:"automatic_discount"`
	BundleDiscount    models.Money      `json:"bundle_discount"`
	AppliedDiscounts  []AppliedDiscount `json:"applied_discounts"`
	PromoCode         string            `json:"promo_code,omitempty"`
	PromoDiscount     models.Money      `json:"promo_discount"`
	RedeemBudget      int64             `json:"redeem_budget"`
	PointsApplied     int64             `json:"points_applied"`
	PointsValue       models.Money      `json:"points_value"`
	ShippingTotal     models.Money      `json:"shipping_total"`
	Total             models.Money      `json:"total"`
}

// Price 对购物车求值。促销码校验失败原样返回错误；
// 申请抵扣的积分超出本单额度时静默压到额度上限。
func (s *PricingService) Price(ctx context.Context, req PriceRequest, now time.Time) (*Quote, error) {
	if err := ValidateCart(req.Cart); err != nil {
		return nil, err
	}
	if req.RequestedPoints < 0 {
		return nil, ErrLoyaltyInvalidAmount
	}

	discounts, err := s.discountSvc.Resolve(ctx, req.Cart, now)
	if err != nil {
		return nil, err
	}
	discounted := req.Cart.Subtotal.Decimal.
		Sub(discounts.AutomaticDiscount.Decimal).
		Sub(discounts.BundleDiscount.Decimal).
		Round(2)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}

	quote := &Quote{
		Subtotal:          req.Cart.Subtotal,
		AutomaticDiscount: discounts.AutomaticDiscount,
		BundleDiscount:    discounts.BundleDiscount,
		AppliedDiscounts:  discounts.Applied,
		ShippingTotal:     req.Cart.ShippingTotal,
	}

	// 促销码通道：free_shipping 抵扣运费，其余抵扣商品小计
	shipping := req.Cart.ShippingTotal.Decimal.Round(2)
	if req.PromoCode != "" {
		validated, err := s.promoSvc.Apply(req.PromoCode, req.Cart, models.NewMoneyFromDecimal(discounted), now)
		if err != nil {
			return nil, err
		}
		quote.PromoCode = validated.Promotion.Code
		quote.PromoDiscount = validated.Discount
		if validated.Promotion.Type == constants.PromoTypeFreeShipping {
			shipping = shipping.Sub(validated.Discount.Decimal)
			if shipping.IsNegative() {
				shipping = decimal.Zero
			}
		} else {
			discounted = discounted.Sub(validated.Discount.Decimal).Round(2)
			if discounted.IsNegative() {
				discounted = decimal.Zero
			}
		}
	}

	// 积分通道：额度以促销后的商品小计为基数，超额申请压到上限
	if s.loyaltySvc != nil && req.Cart.CustomerID != 0 {
		budget, err := s.loyaltySvc.RedeemBudget(req.Cart.CustomerID, models.NewMoneyFromDecimal(discounted))
		if err != nil {
			return nil, err
		}
		quote.RedeemBudget = budget
		points := req.RequestedPoints
		if points > budget {
			points = budget
		}
		if points > 0 {
			quote.PointsApplied = points
			quote.PointsValue = models.NewMoneyFromDecimal(decimal.NewFromInt(points))
			discounted = discounted.Sub(quote.PointsValue.Decimal).Round(2)
			if discounted.IsNegative() {
				discounted = decimal.Zero
			}
		}
	}

	total := discounted.Add(shipping).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}
	quote.Total = models.NewMoneyFromDecimal(total)
	return quote, nil
}
