package models

import (
	"time"

	"gorm.io/gorm"
)

// PromotionUsage 促销码使用记录。仅在订单完成时写入，
// 同一 (promotion, customer/email) 的行数受 per_customer_limit 约束。
type PromotionUsage struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	PromotionID    uint           `gorm:"index;not null" json:"promotion_id"`                           // 促销码ID
	CustomerID     uint           `gorm:"index" json:"customer_id"`                                     // 客户ID（游客单为 0）
	Email          string         `gorm:"index" json:"email"`                                           // 客户邮箱（游客单按邮箱限次）
	OrderID        uint           `gorm:"uniqueIndex:idx_promo_usage_order;not null" json:"order_id"`   // 订单ID
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 实际优惠金额
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (PromotionUsage) TableName() string {
	return "promotion_usages"
}
