package public

import (
	"time"

	"github.com/hairlab-next/internal/http/response"
	"github.com/hairlab-next/internal/service"

	"github.com/gin-gonic/gin"
)

// QuoteRequest 定价试算请求
type QuoteRequest struct {
	Cart            service.CartSnapshot `json:"cart" binding:"required"`
	PromoCode       string               `json:"promo_code"`
	RequestedPoints int64                `json:"requested_points"`
}

// Quote 购物车定价试算。匿名可用；携带客户令牌时积分抵扣额度
// 以令牌主体为准，忽略快照里自带的客户标识。
func (h *Handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	// 未登录请求不允许指定客户身份，防止探测他人积分余额
	req.Cart.CustomerID = optionalCustomerID(c)
	if email := customerEmail(c); email != "" {
		req.Cart.Email = email
	}
	if req.Cart.CustomerID == 0 {
		req.RequestedPoints = 0
	}

	quote, err := h.PricingService.Price(c.Request.Context(), service.PriceRequest{
		Cart:            req.Cart,
		PromoCode:       req.PromoCode,
		RequestedPoints: req.RequestedPoints,
	}, time.Now())
	if err != nil {
		respondQuoteError(c, err)
		return
	}

	response.Success(c, quote)
}
