package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductBundle 商品套装折扣。套装在购物车中"齐备"当且仅当
// product_ids 中每个商品数量均 ≥1。
type ProductBundle struct {
	ID            uint           `gorm:"primarykey" json:"id"`                              // 主键
	Title         string         `gorm:"not null" json:"title"`                             // 名称
	ProductIDs    UintArray      `gorm:"type:text;not null" json:"product_ids" validate:"min=2,unique,dive,gt=0"` // 套装商品集合（≥2，去重）
	DiscountType  string         `gorm:"not null" json:"discount_type"`                     // 折扣类型（percentage/fixed）
	DiscountValue Money          `gorm:"type:decimal(20,2);not null" json:"discount_value"` // 折扣数值
	IsActive      bool           `gorm:"not null" json:"is_active"`                         // 是否启用
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (ProductBundle) TableName() string {
	return "product_bundles"
}
