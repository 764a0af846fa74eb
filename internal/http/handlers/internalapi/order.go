package internalapi

import (
	handlershared "github.com/hairlab-next/internal/http/handlers/shared"
	"github.com/hairlab-next/internal/http/response"
	"github.com/hairlab-next/internal/queue"
	"github.com/hairlab-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderCompleted 接收订单系统的订单完成事件：登记促销码用量、
// 扣减与发放积分、结算推荐奖励。队列可用时异步处理，否则同步
// 执行。事件按订单ID幂等，重复投递安全。
func (h *Handler) OrderCompleted(c *gin.Context) {
	var payload queue.CheckoutCompletedPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	if payload.OrderID == 0 {
		handlershared.RespondError(c, response.CodeBadRequest, "订单标识不合法", nil)
		return
	}

	if h.QueueClient != nil && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueCheckoutCompleted(payload); err != nil {
			handlershared.RespondError(c, response.CodeInternal, "订单完成事件入队失败", err)
			return
		}
		response.SuccessWithMsg(c, "已入队", gin.H{"order_id": payload.OrderID, "queued": true})
		return
	}

	// 队列未启用时退化为同步处理
	if err := h.CheckoutService.HandleCompleted(service.CheckoutCompletedInput{
		OrderID:       payload.OrderID,
		CustomerID:    payload.CustomerID,
		Email:         payload.Email,
		PromoCode:     payload.PromoCode,
		PromoDiscount: payload.PromoDiscount,
		EarnBase:      payload.EarnBase,
		PointsSpent:   payload.PointsSpent,
	}); err != nil {
		handlershared.RespondError(c, response.CodeInternal, "订单完成事件处理失败", err)
		return
	}

	response.SuccessWithMsg(c, "处理完成", gin.H{"order_id": payload.OrderID, "queued": false})
}
