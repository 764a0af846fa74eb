package queue

import (
	"encoding/json"

	"github.com/hairlab-next/internal/constants"
	"github.com/hairlab-next/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TaskCheckoutCompleted 订单完成结算任务
	TaskCheckoutCompleted = constants.TaskCheckoutCompleted
	// TaskLoyaltyExpire 积分过期清扫任务
	TaskLoyaltyExpire = constants.TaskLoyaltyExpire
)

// CheckoutCompletedPayload 订单完成结算任务载荷
type CheckoutCompletedPayload struct {
	OrderID       uint         `json:"order_id"`
	CustomerID    uint         `json:"customer_id"`
	Email         string       `json:"email"`
	PromoCode     string       `json:"promo_code"`
	PromoDiscount models.Money `json:"promo_discount"`
	EarnBase      models.Money `json:"earn_base"`
	PointsSpent   int64        `json:"points_spent"`
}

// LoyaltyExpirePayload 积分过期清扫任务载荷（按入队时间清扫）
type LoyaltyExpirePayload struct {
	RequestedAtUnix int64 `json:"requested_at_unix"`
}

// NewCheckoutCompletedTask 创建订单完成结算任务
func NewCheckoutCompletedTask(payload CheckoutCompletedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCheckoutCompleted, body), nil
}

// NewLoyaltyExpireTask 创建积分过期清扫任务
func NewLoyaltyExpireTask(payload LoyaltyExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLoyaltyExpire, body), nil
}
