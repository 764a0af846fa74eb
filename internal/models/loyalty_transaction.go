package models

import (
	"time"

	"gorm.io/gorm"
)

// LoyaltyTransaction 积分流水（只追加，不修改不删除）。
// points_amount 恒为正数，方向由 transaction_type 决定；
// balance_after 必须等于该笔提交后账户的 points_balance，
// 按序重放全部流水可精确重建余额。
type LoyaltyTransaction struct {
	ID                uint           `gorm:"primarykey" json:"id"`                       // 主键
	CustomerID        uint           `gorm:"index;not null" json:"customer_id"`          // 客户ID
	TransactionType   string         `gorm:"not null" json:"transaction_type"`           // 类型（earned/spent/expired/welcome/referral/adjustment）
	PointsAmount      int64          `gorm:"not null" json:"points_amount"`              // 积分数额（adjustment 存带符号增量，其余存正值）
	OrderID           *uint          `gorm:"index" json:"order_id"`                      // 关联订单ID（幂等键）
	RelatedCustomerID uint           `gorm:"index" json:"related_customer_id,omitempty"` // 关联客户ID（referral 记对方客户，每对只记一次）
	Description       string         `json:"description"`                                // 说明
	BalanceAfter      int64          `gorm:"not null" json:"balance_after"`              // 提交后余额
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt         time.Time      `json:"updated_at"`                                 // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间
}

// TableName 指定表名
func (LoyaltyTransaction) TableName() string {
	return "loyalty_transaction"
}

// SignedAmount 返回带方向的积分变动值
func (t LoyaltyTransaction) SignedAmount() int64 {
	switch t.TransactionType {
	case "spent", "expired":
		return -t.PointsAmount
	case "adjustment":
		// 调整类直接存带符号增量
		return t.PointsAmount
	default:
		return t.PointsAmount
	}
}
