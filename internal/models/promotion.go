package models

import (
	"time"

	"gorm.io/gorm"
)

// Promotion 促销码（每单仅可应用一个，叠加在自动折扣与套装折扣之后）
type Promotion struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                          // 主键
	Code              string         `gorm:"uniqueIndex;not null" json:"code"`                              // 促销码（大写存储）
	Title             string         `json:"title"`                                                         // 名称
	Type              string         `gorm:"not null" json:"type"`                                          // 类型（percentage/fixed/free_shipping）
	Value             Money          `gorm:"type:decimal(20,2);not null" json:"value"`                      // 数值
	MinOrderAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"` // 使用门槛（0 表示不限制）
	MaxDiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount_amount"` // 百分比折扣上限（0 表示不限制）
	UsageLimit        int            `gorm:"not null;default:0" json:"usage_limit"`                         // 总使用上限（0 表示不限制）
	PerCustomerLimit  int            `gorm:"not null;default:0" json:"per_customer_limit"`                  // 每客户使用上限（0 表示不限制）
	StartsAt          *time.Time     `gorm:"index" json:"starts_at"`                                        // 生效时间
	ExpiresAt         *time.Time     `gorm:"index" json:"expires_at"`                                       // 失效时间
	IsActive          bool           `gorm:"not null" json:"is_active"`                                     // 是否启用
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}
