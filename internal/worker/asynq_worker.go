package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hairlab-next/internal/logger"
	"github.com/hairlab-next/internal/provider"
	"github.com/hairlab-next/internal/queue"
	"github.com/hairlab-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCheckoutCompleted, c.handleCheckoutCompleted)
	mux.HandleFunc(queue.TaskLoyaltyExpire, c.handleLoyaltyExpire)
}

func (c *Consumer) handleCheckoutCompleted(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_checkout_completed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CheckoutCompletedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_checkout_completed_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_checkout_completed_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.CheckoutService == nil {
		logger.Warnw("worker_checkout_completed_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	err := c.CheckoutService.HandleCompleted(service.CheckoutCompletedInput{
		OrderID:       payload.OrderID,
		CustomerID:    payload.CustomerID,
		Email:         payload.Email,
		PromoCode:     payload.PromoCode,
		PromoDiscount: payload.PromoDiscount,
		EarnBase:      payload.EarnBase,
		PointsSpent:   payload.PointsSpent,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoyaltyInsufficientBalance):
			// 余额不足重试无益，留给人工对账
			logger.Warnw("worker_checkout_completed_insufficient_balance",
				"order_id", payload.OrderID,
				"customer_id", payload.CustomerID,
				"points", payload.PointsSpent,
			)
			return nil
		case errors.Is(err, service.ErrPromoUsageLimit), errors.Is(err, service.ErrPromoCustomerLimit):
			// 限次在完成时刻已被并发订单占满，同样留给对账
			logger.Warnw("worker_checkout_completed_promo_limit",
				"order_id", payload.OrderID,
				"code", payload.PromoCode,
				"error", err,
			)
			return nil
		default:
			logger.Warnw("worker_checkout_completed_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleLoyaltyExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_loyalty_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LoyaltyExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_loyalty_expire_unmarshal_failed", "error", err)
		return err
	}
	if c.LoyaltyService == nil {
		logger.Warnw("worker_loyalty_expire_skip_service_nil")
		return nil
	}
	expired, err := c.LoyaltyService.ExpirePoints(time.Now())
	if err != nil {
		logger.Warnw("worker_loyalty_expire_failed", "error", err)
		return err
	}
	logger.Infow("worker_loyalty_expire_done", "total_expired", expired)
	return nil
}
