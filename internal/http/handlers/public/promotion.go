package public

import (
	"time"

	"github.com/hairlab-next/internal/http/response"
	"github.com/hairlab-next/internal/models"
	"github.com/hairlab-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ValidatePromotionRequest 促销码校验请求
type ValidatePromotionRequest struct {
	Code string               `json:"code" binding:"required"`
	Cart service.CartSnapshot `json:"cart" binding:"required"`
}

// ValidatePromotion 校验促销码并试算折扣额。折扣基数为扣除自动
// 折扣与套装折扣后的小计，与下单定价口径一致。
func (h *Handler) ValidatePromotion(c *gin.Context) {
	var req ValidatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	if err := service.ValidateCart(req.Cart); err != nil {
		respondPromoValidateError(c, err)
		return
	}

	req.Cart.CustomerID = optionalCustomerID(c)
	if email := customerEmail(c); email != "" {
		req.Cart.Email = email
	}

	now := time.Now()
	discounts, err := h.DiscountService.Resolve(c.Request.Context(), req.Cart, now)
	if err != nil {
		respondPromoValidateError(c, err)
		return
	}
	discounted := req.Cart.Subtotal.Decimal.
		Sub(discounts.AutomaticDiscount.Decimal).
		Sub(discounts.BundleDiscount.Decimal)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}

	validated, err := h.PromoService.Apply(req.Code, req.Cart, models.NewMoneyFromDecimal(discounted), now)
	if err != nil {
		respondPromoValidateError(c, err)
		return
	}

	response.Success(c, gin.H{
		"code":     validated.Promotion.Code,
		"title":    validated.Promotion.Title,
		"type":     validated.Promotion.Type,
		"discount": validated.Discount,
	})
}
